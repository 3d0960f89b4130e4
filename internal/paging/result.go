package paging

import "github.com/mmcdole/citadel/internal/domain"

// LoadResult is the outcome of a single page load. It is either a PageResult
// or an ErrorResult; the set of variants is closed.
type LoadResult interface {
	loadResult()
}

// PageResult is a successful load
type PageResult struct {
	Page domain.Page
}

// ErrorResult is a failed load. Err is the unmodified cause.
type ErrorResult struct {
	Key domain.PageKey // Key that was requested, for retries
	Err error
}

func (PageResult) loadResult()  {}
func (ErrorResult) loadResult() {}

// Error implements the error interface
func (r ErrorResult) Error() string {
	return r.Err.Error()
}

// Unwrap returns the underlying cause
func (r ErrorResult) Unwrap() error {
	return r.Err
}
