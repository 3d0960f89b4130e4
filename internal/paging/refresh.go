package paging

import "github.com/mmcdole/citadel/internal/domain"

// ClosestPage returns the page whose item range contains anchor, or the
// nearest page when the anchor falls outside the loaded range. Empty pages
// never contain an anchor. Returns false when no page holds any items.
func ClosestPage(pages []domain.Page, anchor int) (domain.Page, bool) {
	last := -1
	for i, p := range pages {
		if p.Len() > 0 {
			last = i
		}
	}
	if last < 0 {
		return domain.Page{}, false
	}

	index := anchor
	if index < 0 {
		index = 0
	}

	// Anchors past the end clamp to the last page holding items
	i := 0
	for i < last && index > pages[i].Len()-1 {
		index -= pages[i].Len()
		i++
	}
	return pages[i], true
}

// RefreshKey infers which key a reload should start from so that it lands
// near where the consumer was looking. Without an anchor it returns NoKey.
//
// The closest page's own key is not used directly: after invalidation it may
// no longer be valid, so the key is rebuilt from a neighbour instead
// (PrevKey+1, else NextKey-1). A page with neither neighbour yields NoKey,
// which restarts from the first page.
func RefreshKey(pages []domain.Page, anchor int, hasAnchor bool) domain.PageKey {
	if !hasAnchor {
		return domain.NoKey
	}

	page, ok := ClosestPage(pages, anchor)
	if !ok {
		return domain.NoKey
	}

	if page.PrevKey.Valid() {
		return page.PrevKey + 1
	}
	if page.NextKey.Valid() {
		return page.NextKey - 1
	}
	return domain.NoKey
}
