package paging

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mmcdole/citadel/internal/domain"
)

// DefaultPageSize is the number of characters the catalog API returns per page.
// Keys are sequential page numbers, so a different server page size only
// affects how many requests a scroll needs.
const DefaultPageSize = 20

// Loader fetches one page per call and maps it to a LoadResult.
// It holds no state besides its dependencies and is safe for concurrent use.
type Loader struct {
	source domain.CharacterSource
	logger *slog.Logger
}

// NewLoader creates a new page loader.
func NewLoader(source domain.CharacterSource, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{source: source, logger: logger}
}

// Load fetches the page identified by key. NoKey loads the first page.
// Neighbour keys are derived from the requested key and the source's
// has-next flag only; no remote cursor is trusted. Failures are returned as
// ErrorResult and never retried here.
func (l *Loader) Load(ctx context.Context, key domain.PageKey) LoadResult {
	if !key.Valid() {
		key = domain.FirstPage
	}

	resp, err := l.source.FetchPage(ctx, int(key))
	if err != nil {
		l.logger.Warn("page load failed", "key", int(key), "error", err)
		return ErrorResult{Key: key, Err: err}
	}

	page := domain.Page{
		Key:        key,
		Characters: resp.Characters,
		PrevKey:    domain.NoKey,
		NextKey:    domain.NoKey,
	}
	if key > domain.FirstPage {
		page.PrevKey = key - 1
	}
	if resp.HasNext {
		page.NextKey = key + 1
	}

	l.logger.Debug("loaded page", "key", int(key), "count", len(resp.Characters), "next", int(page.NextKey))
	return PageResult{Page: page}
}

// LoadPage is a convenience wrapper around Load for callers that prefer
// (page, error) returns.
func (l *Loader) LoadPage(ctx context.Context, key domain.PageKey) (domain.Page, error) {
	switch r := l.Load(ctx, key).(type) {
	case PageResult:
		return r.Page, nil
	case ErrorResult:
		return domain.Page{}, r.Err
	default:
		return domain.Page{}, fmt.Errorf("unexpected load result %T", r)
	}
}
