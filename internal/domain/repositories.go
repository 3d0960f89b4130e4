package domain

import (
	"context"
)

// CharacterSource fetches pages of the remote character catalog.
// Implementations must be safe for concurrent use with independent pages.
type CharacterSource interface {
	// FetchPage returns the characters on the given 1-based page and whether
	// the API reports another page after it
	FetchPage(ctx context.Context, page int) (PageResponse, error)
}

// CharacterSourceFunc adapts a function to CharacterSource
type CharacterSourceFunc func(ctx context.Context, page int) (PageResponse, error)

// FetchPage calls f(ctx, page)
func (f CharacterSourceFunc) FetchPage(ctx context.Context, page int) (PageResponse, error) {
	return f(ctx, page)
}
