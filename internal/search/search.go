package search

import (
	"sort"
	"strings"

	lfuzzy "github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/sahilm/fuzzy"

	"github.com/mmcdole/citadel/internal/domain"
)

// Result is a filter match with highlight positions
type Result struct {
	Character      domain.Character
	Position       int   // Index in the indexed slice
	MatchedIndexes []int // Rune positions in the name that matched
	Score          int   // Higher is better
}

// Index implements sahilm/fuzzy.Source over character names
type Index struct {
	characters []domain.Character
	lowerNames []string
}

// NewIndex builds an index over characters. The slice is not copied and must
// not be modified while the index is in use.
func NewIndex(characters []domain.Character) *Index {
	lower := make([]string, len(characters))
	for i, c := range characters {
		lower[i] = strings.ToLower(c.Name)
	}
	return &Index{characters: characters, lowerNames: lower}
}

// String returns the lowercase name at index i (implements fuzzy.Source)
func (idx *Index) String(i int) string { return idx.lowerNames[i] }

// Len returns the number of indexed characters (implements fuzzy.Source)
func (idx *Index) Len() int { return len(idx.characters) }

// Filter returns characters whose names fuzzily match query, best first.
// An empty query returns nil.
func (idx *Index) Filter(query string) []Result {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return nil
	}

	matches := fuzzy.FindFrom(query, idx)
	results := make([]Result, 0, len(matches))
	for _, m := range matches {
		results = append(results, Result{
			Character:      idx.characters[m.Index],
			Position:       m.Index,
			MatchedIndexes: m.MatchedIndexes,
			Score:          m.Score,
		})
	}
	return results
}

// Suggest ranks characters whose names contain query as a fuzzy
// subsequence, closest first, ties broken by catalog order. A limit of 0
// returns all matches.
func Suggest(query string, characters []domain.Character, limit int) []domain.Character {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil
	}

	names := make([]string, len(characters))
	for i, c := range characters {
		names[i] = c.Name
	}

	ranks := lfuzzy.RankFindNormalizedFold(query, names)
	sort.SliceStable(ranks, func(i, j int) bool {
		if ranks[i].Distance != ranks[j].Distance {
			return ranks[i].Distance < ranks[j].Distance
		}
		return ranks[i].OriginalIndex < ranks[j].OriginalIndex
	})

	if limit > 0 && len(ranks) > limit {
		ranks = ranks[:limit]
	}

	out := make([]domain.Character, len(ranks))
	for i, r := range ranks {
		out[i] = characters[r.OriginalIndex]
	}
	return out
}
