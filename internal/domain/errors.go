package domain

import "errors"

// Sentinel errors for domain operations
var (
	// ErrTransport indicates the catalog API could not be reached or answered
	// with an unexpected status
	ErrTransport = errors.New("catalog request failed")

	// ErrDecode indicates the catalog API returned a malformed response
	ErrDecode = errors.New("malformed catalog response")

	// ErrNotFound indicates the requested page or character does not exist
	ErrNotFound = errors.New("catalog resource not found")

	// ErrRateLimited indicates the API rejected the request as too frequent
	ErrRateLimited = errors.New("rate limited by catalog API")
)
