package rickmorty

import (
	"time"

	"github.com/mmcdole/citadel/internal/domain"
)

// MapPage converts a list envelope to a domain page response
func MapPage(resp PageResponse) domain.PageResponse {
	return domain.PageResponse{
		Characters: MapCharacters(resp.Results),
		HasNext:    resp.Info.Next != nil && *resp.Info.Next != "",
		Count:      resp.Info.Count,
		Pages:      resp.Info.Pages,
	}
}

// MapCharacters converts API characters to domain characters
func MapCharacters(results []Character) []domain.Character {
	characters := make([]domain.Character, 0, len(results))
	for _, r := range results {
		characters = append(characters, MapCharacter(r))
	}
	return characters
}

// MapCharacter converts a single API character
func MapCharacter(r Character) domain.Character {
	c := domain.Character{
		ID:       r.ID,
		Name:     r.Name,
		Status:   mapStatus(r.Status),
		Species:  r.Species,
		Type:     r.Type,
		Gender:   r.Gender,
		Origin:   domain.Place{Name: r.Origin.Name, URL: r.Origin.URL},
		Location: domain.Place{Name: r.Location.Name, URL: r.Location.URL},
		ImageURL: r.Image,
		URL:      r.URL,
	}

	if len(r.Episode) > 0 {
		c.Episodes = make([]string, len(r.Episode))
		copy(c.Episodes, r.Episode)
	}

	// Unparseable timestamps are left zero rather than failing the page
	if t, err := time.Parse(time.RFC3339, r.Created); err == nil {
		c.Created = t
	}

	return c
}

func mapStatus(s string) domain.CharacterStatus {
	switch s {
	case "Alive", "alive":
		return domain.StatusAlive
	case "Dead", "dead":
		return domain.StatusDead
	default:
		return domain.StatusUnknown
	}
}
