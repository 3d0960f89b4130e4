package catalog

import (
	"context"
	"log/slog"
	"sync"

	"github.com/mmcdole/citadel/internal/domain"
	"github.com/mmcdole/citadel/internal/observe"
	"github.com/mmcdole/citadel/internal/paging"
)

// Snapshot is the flat, non-paginated view of the first catalog page.
// It is replaced wholesale on every transition; Error is empty when absent.
type Snapshot struct {
	Characters []domain.Character
	IsLoading  bool
	Error      string
}

// HasError reports whether the last fetch failed
func (s Snapshot) HasError() bool {
	return s.Error != ""
}

// Phase names the snapshot's position in idle -> loading -> loaded | error
func (s Snapshot) Phase() string {
	switch {
	case s.IsLoading:
		return "loading"
	case s.Error != "":
		return "error"
	case s.Characters != nil:
		return "loaded"
	default:
		return "idle"
	}
}

// SnapshotLoader loads exactly one page and publishes it as a Snapshot.
type SnapshotLoader struct {
	loader *paging.Loader
	logger *slog.Logger

	mu      sync.Mutex
	loading bool
	state   *observe.Value[Snapshot]
}

// NewSnapshotLoader creates a loader in the idle state.
func NewSnapshotLoader(loader *paging.Loader, logger *slog.Logger) *SnapshotLoader {
	if logger == nil {
		logger = slog.Default()
	}
	return &SnapshotLoader{
		loader: loader,
		logger: logger,
		state:  observe.NewValue(Snapshot{}),
	}
}

// Fetch loads the first page and blocks until the snapshot reaches a terminal
// state. A Fetch while another is running is a no-op and returns false.
func (l *SnapshotLoader) Fetch(ctx context.Context) bool {
	if !l.tryBegin() {
		return false
	}
	l.run(ctx)
	return true
}

// tryBegin marks a fetch as running. It returns false if one already is.
func (l *SnapshotLoader) tryBegin() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.loading {
		return false
	}
	l.loading = true
	return true
}

// run performs a fetch claimed by tryBegin
func (l *SnapshotLoader) run(ctx context.Context) {
	defer func() {
		l.mu.Lock()
		l.loading = false
		l.mu.Unlock()
	}()

	var prev Snapshot
	l.state.Update(func(current Snapshot) Snapshot {
		prev = current
		return Snapshot{Characters: current.Characters, IsLoading: true}
	})

	page, err := l.loader.LoadPage(ctx, domain.NoKey)
	if ctx.Err() != nil {
		// Scope ended while loading; fall back to the state before the fetch
		l.logger.Debug("snapshot fetch abandoned", "error", ctx.Err())
		l.state.Set(prev)
		return
	}
	if err != nil {
		l.logger.Error("failed to fetch characters", "error", err)
		// Characters from an earlier successful fetch stay visible
		l.state.Update(func(current Snapshot) Snapshot {
			return Snapshot{Characters: current.Characters, Error: err.Error()}
		})
		return
	}

	characters := page.Characters
	if characters == nil {
		characters = []domain.Character{}
	}
	l.state.Set(Snapshot{Characters: characters})
	l.logger.Debug("fetched characters", "count", len(characters))
}

// Loading reports whether a fetch is in flight
func (l *SnapshotLoader) Loading() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.loading
}

// Current returns the last published snapshot
func (l *SnapshotLoader) Current() Snapshot {
	return l.state.Get()
}

// Subscribe returns a channel of snapshot updates, starting with the current one
func (l *SnapshotLoader) Subscribe(buffer int) (<-chan Snapshot, func()) {
	return l.state.Subscribe(buffer)
}

// Close closes all subscriptions
func (l *SnapshotLoader) Close() {
	l.state.Close()
}
