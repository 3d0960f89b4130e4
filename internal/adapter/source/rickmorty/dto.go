package rickmorty

// PageResponse is the envelope returned by list endpoints
type PageResponse struct {
	Info    Info        `json:"info"`
	Results []Character `json:"results"`
}

// Info carries pagination metadata. Next and Prev are absolute URLs or null.
type Info struct {
	Count int     `json:"count"`
	Pages int     `json:"pages"`
	Next  *string `json:"next"`
	Prev  *string `json:"prev"`
}

// Character is a character resource
type Character struct {
	ID       int         `json:"id"`
	Name     string      `json:"name"`
	Status   string      `json:"status"`
	Species  string      `json:"species"`
	Type     string      `json:"type"`
	Gender   string      `json:"gender"`
	Origin   NamedAPIRef `json:"origin"`
	Location NamedAPIRef `json:"location"`
	Image    string      `json:"image"`
	Episode  []string    `json:"episode"`
	URL      string      `json:"url"`
	Created  string      `json:"created"`
}

// NamedAPIRef is a name plus the URL of the referenced resource
type NamedAPIRef struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// ErrorResponse is the body returned with non-2xx statuses
type ErrorResponse struct {
	Error string `json:"error"`
}
