package paging

import "github.com/mmcdole/citadel/internal/domain"

// Edge is one end of the combined list
type Edge int

const (
	EdgeStart Edge = iota
	EdgeEnd
)

func (e Edge) String() string {
	switch e {
	case EdgeStart:
		return "start"
	case EdgeEnd:
		return "end"
	default:
		return "unknown"
	}
}

// Status is the load status of an edge or of the refresh
type Status int

const (
	StatusIdle Status = iota
	StatusLoading
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusLoading:
		return "loading"
	case StatusError:
		return "error"
	default:
		return "unknown"
	}
}

// LoadState describes one load slot. Err is set only when Status is
// StatusError. Exhausted means the last load reported no further key in
// that direction.
type LoadState struct {
	Status    Status
	Err       error
	Exhausted bool
}

// CanLoad reports whether a new load may be started for this slot
func (s LoadState) CanLoad() bool {
	return s.Status == StatusIdle && !s.Exhausted
}

// LoadStates groups the refresh and per-edge states
type LoadStates struct {
	Refresh LoadState
	Start   LoadState
	End     LoadState
}

// IsLoading reports whether any load is in flight
func (s LoadStates) IsLoading() bool {
	return s.Refresh.Status == StatusLoading ||
		s.Start.Status == StatusLoading ||
		s.End.Status == StatusLoading
}

// FirstError returns the first error found, refresh first
func (s LoadStates) FirstError() error {
	for _, st := range []LoadState{s.Refresh, s.Start, s.End} {
		if st.Status == StatusError {
			return st.Err
		}
	}
	return nil
}

// StreamState is what subscribers of a Stream receive. Items is shared and
// must not be modified.
type StreamState struct {
	Version uint64
	Items   []domain.Character
	States  LoadStates
}

// Config controls stream behaviour
type Config struct {
	PageSize         int // Expected items per page (informational)
	PrefetchDistance int // Items from an edge at which the next page is requested, at least 1
}

// DefaultConfig returns the default stream configuration
func DefaultConfig() Config {
	return Config{
		PageSize:         DefaultPageSize,
		PrefetchDistance: 2,
	}
}
