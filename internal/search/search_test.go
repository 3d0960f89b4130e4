package search

import (
	"testing"

	"github.com/mmcdole/citadel/internal/domain"
)

func sampleCharacters() []domain.Character {
	names := []string{"Rick Sanchez", "Morty Smith", "Summer Smith", "Beth Smith", "Jerry Smith", "Evil Morty"}
	out := make([]domain.Character, len(names))
	for i, n := range names {
		out[i] = domain.Character{ID: i + 1, Name: n}
	}
	return out
}

func TestIndexFilter(t *testing.T) {
	idx := NewIndex(sampleCharacters())

	results := idx.Filter("morty")
	if len(results) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(results))
	}
	for _, r := range results {
		if r.Character.Name != "Morty Smith" && r.Character.Name != "Evil Morty" {
			t.Errorf("unexpected match %q", r.Character.Name)
		}
		if len(r.MatchedIndexes) != len("morty") {
			t.Errorf("expected 5 matched indexes, got %v", r.MatchedIndexes)
		}
		if idx.characters[r.Position].ID != r.Character.ID {
			t.Errorf("position %d does not point at %q", r.Position, r.Character.Name)
		}
	}
}

func TestIndexFilterCaseInsensitive(t *testing.T) {
	idx := NewIndex(sampleCharacters())

	results := idx.Filter("RICK")
	if len(results) != 1 || results[0].Character.ID != 1 {
		t.Fatalf("expected Rick Sanchez, got %+v", results)
	}
}

func TestIndexFilterEmptyQuery(t *testing.T) {
	idx := NewIndex(sampleCharacters())

	if results := idx.Filter("   "); results != nil {
		t.Errorf("expected nil for blank query, got %d results", len(results))
	}
	if results := idx.Filter("zzz"); results == nil || len(results) != 0 {
		t.Errorf("expected empty non-nil result for no match, got %v", results)
	}
}

func TestSuggest(t *testing.T) {
	characters := sampleCharacters()

	got := Suggest("smith", characters, 0)
	if len(got) != 4 {
		t.Fatalf("expected 4 Smiths, got %d", len(got))
	}
	// Equal distances keep catalog order
	if got[0].Name != "Beth Smith" || got[3].Name != "Summer Smith" {
		t.Errorf("unexpected order: %v", names(got))
	}

	if limited := Suggest("smith", characters, 2); len(limited) != 2 {
		t.Errorf("expected limit of 2, got %d", len(limited))
	}
	if none := Suggest("", characters, 0); none != nil {
		t.Errorf("expected nil for empty query, got %v", names(none))
	}
}

func names(characters []domain.Character) []string {
	out := make([]string, len(characters))
	for i, c := range characters {
		out[i] = c.Name
	}
	return out
}
