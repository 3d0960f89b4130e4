package domain

import (
	"fmt"
	"strings"
	"time"
)

// CharacterStatus is the life status reported by the catalog
type CharacterStatus string

const (
	StatusAlive   CharacterStatus = "Alive"
	StatusDead    CharacterStatus = "Dead"
	StatusUnknown CharacterStatus = "unknown"
)

// Place is a named reference to an origin or location resource
type Place struct {
	Name string
	URL  string
}

// Character is a single catalog entry. Values are treated as immutable once
// produced by a source.
type Character struct {
	ID       int             // Stable catalog identifier
	Name     string          // Display name
	Status   CharacterStatus // Alive, Dead or unknown
	Species  string
	Type     string // Sub-species or variant, often empty
	Gender   string
	Origin   Place
	Location Place // Last known location
	ImageURL string
	Episodes []string // Episode resource URLs
	URL      string   // Canonical resource URL
	Created  time.Time
}

// GetTitle returns the display title
func (c Character) GetTitle() string {
	return c.Name
}

// GetDescription returns secondary info for list rendering
func (c Character) GetDescription() string {
	parts := []string{}
	if c.Species != "" {
		parts = append(parts, c.Species)
	}
	if c.Status != "" {
		parts = append(parts, string(c.Status))
	}
	return strings.Join(parts, " · ")
}

// EpisodeCount returns the number of episodes the character appears in
func (c Character) EpisodeCount() int {
	return len(c.Episodes)
}

// FormatEpisodes returns a human readable episode count
func (c Character) FormatEpisodes() string {
	n := c.EpisodeCount()
	if n == 1 {
		return "1 episode"
	}
	return fmt.Sprintf("%d episodes", n)
}

// PageKey identifies a page in the remote pagination sequence. Keys are
// 1-based; the zero value means "no key".
type PageKey int

const (
	// NoKey marks an absent neighbour or "start from the beginning"
	NoKey PageKey = 0

	// FirstPage is the key a refresh without a hint resolves to
	FirstPage PageKey = 1
)

// Valid reports whether the key refers to a real page
func (k PageKey) Valid() bool {
	return k >= FirstPage
}

// Page is one loaded page of characters together with its neighbour keys
type Page struct {
	Key        PageKey
	Characters []Character
	PrevKey    PageKey // NoKey on the first page
	NextKey    PageKey // NoKey when the source reported no further page
}

// Len returns the number of characters on the page
func (p Page) Len() int {
	return len(p.Characters)
}

// PageResponse is what a CharacterSource returns for a single page request.
// Count and Pages are informational totals reported by the API.
type PageResponse struct {
	Characters []Character
	HasNext    bool
	Count      int
	Pages      int
}
