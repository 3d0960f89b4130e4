package tui

import "github.com/mmcdole/citadel/internal/paging"

// Message types for the TUI

// ErrMsg represents an error
type ErrMsg struct {
	Err     error
	Context string
}

// Error implements the error interface
func (e ErrMsg) Error() string {
	if e.Context != "" {
		return e.Context + ": " + e.Err.Error()
	}
	return e.Err.Error()
}

// StreamUpdatedMsg carries a new paged stream state
type StreamUpdatedMsg struct {
	State paging.StreamState
}

// StreamClosedMsg signals that the stream subscription ended
type StreamClosedMsg struct{}

// StatusMsg displays a status message
type StatusMsg struct {
	Message string
	IsError bool
}

// ClearStatusMsg clears the status message
type ClearStatusMsg struct{}
