package paging

import (
	"context"
	"log/slog"
	"sync"

	"github.com/mmcdole/citadel/internal/domain"
	"github.com/mmcdole/citadel/internal/observe"
)

// slot tracks one load slot (refresh or an edge) and the key it will load next
type slot struct {
	LoadState
	key domain.PageKey
}

// Stream owns the pages loaded so far and extends them on demand.
//
// Loads run in their own goroutines; every mutation of the page list happens
// under mu. Each slot has at most one load in flight. Results are tagged with
// the generation they were issued under and dropped if a refresh or Close
// happened in between.
type Stream struct {
	loader *Loader
	cfg    Config
	logger *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc

	mu          sync.Mutex
	idle        *sync.Cond
	inflight    int
	pages       []domain.Page      // ascending by key
	items       []domain.Character // flattened pages, replaced on every change
	refresh     slot
	edges       [2]slot
	anchor      int
	hasAnchor   bool
	generation  uint64
	initialized bool
	closed      bool
	version     uint64

	state *observe.Value[StreamState]
}

// NewStream creates an empty stream. Nothing is loaded until Refresh,
// LoadMore or Access is called. Cancelling ctx abandons in-flight loads.
func NewStream(ctx context.Context, loader *Loader, cfg Config, logger *slog.Logger) *Stream {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = DefaultPageSize
	}
	// The edge item itself must always trigger a load
	if cfg.PrefetchDistance < 1 {
		cfg.PrefetchDistance = 1
	}

	ctx, cancel := context.WithCancel(ctx)
	s := &Stream{
		loader: loader,
		cfg:    cfg,
		logger: logger,
		ctx:    ctx,
		cancel: cancel,
		state:  observe.NewValue(StreamState{}),
	}
	s.idle = sync.NewCond(&s.mu)
	return s
}

// Refresh discards the current load chain and reloads starting near the last
// anchor. Already loaded pages stay visible until the refresh succeeds.
// Returns false if a refresh is already running or the stream is closed.
func (s *Stream) Refresh() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed || s.refresh.Status == StatusLoading {
		return false
	}
	key := RefreshKey(s.pages, s.anchor, s.hasAnchor)
	s.startRefreshLocked(key)
	return true
}

// LoadMore requests the next page for the given edge. It is a no-op when the
// edge is already loading, has failed (use Retry), is exhausted, or while a
// refresh is running. Before the first successful refresh it starts the
// initial refresh instead. Returns true if a new edge load was started.
func (s *Stream) LoadMore(edge Edge) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return false
	}
	if !s.initialized {
		if s.refresh.Status == StatusIdle {
			s.startRefreshLocked(RefreshKey(s.pages, s.anchor, s.hasAnchor))
		}
		return false
	}
	if s.refresh.Status == StatusLoading {
		return false
	}

	e := &s.edges[edge]
	if !e.CanLoad() {
		return false
	}
	s.startEdgeLocked(edge, e.key)
	return true
}

// Access records position as the consumer's anchor and requests more data if
// the position is within the prefetch distance of either edge.
func (s *Stream) Access(position int) {
	s.mu.Lock()
	s.anchor = position
	s.hasAnchor = true
	n := len(s.items)
	s.mu.Unlock()

	if n == 0 {
		s.LoadMore(EdgeEnd)
		return
	}
	if position >= n-s.cfg.PrefetchDistance {
		s.LoadMore(EdgeEnd)
	}
	if position < s.cfg.PrefetchDistance {
		s.LoadMore(EdgeStart)
	}
}

// Retry re-issues the failed load of every slot in the error state, using
// the same key that failed. Returns the number of loads started.
func (s *Stream) Retry() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return 0
	}
	if s.refresh.Status == StatusError {
		s.startRefreshLocked(s.refresh.key)
		return 1
	}

	started := 0
	for _, edge := range []Edge{EdgeStart, EdgeEnd} {
		if s.edges[edge].Status == StatusError {
			s.startEdgeLocked(edge, s.edges[edge].key)
			started++
		}
	}
	return started
}

// Close abandons in-flight loads and closes subscriptions. Results that
// arrive afterwards are discarded. Close does not wait for loads to return.
func (s *Stream) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.generation++
	s.cancel()
	s.mu.Unlock()

	s.state.Close()
	s.logger.Debug("stream closed")
}

// Wait blocks until no load is in flight.
func (s *Stream) Wait() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for s.inflight > 0 {
		s.idle.Wait()
	}
}

// Closed reports whether Close has been called
func (s *Stream) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// Len returns the number of loaded characters
func (s *Stream) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// Get returns the character at position i. Positions outside the loaded
// range return false and should render as placeholders.
func (s *Stream) Get(i int) (domain.Character, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i < 0 || i >= len(s.items) {
		return domain.Character{}, false
	}
	return s.items[i], true
}

// Items returns a copy of all loaded characters in page order
func (s *Stream) Items() []domain.Character {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Character, len(s.items))
	copy(out, s.items)
	return out
}

// Pages returns a copy of the loaded pages in ascending key order
func (s *Stream) Pages() []domain.Page {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Page, len(s.pages))
	copy(out, s.pages)
	return out
}

// Find returns the loaded character with the given id
func (s *Stream) Find(id int) (domain.Character, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.items {
		if c.ID == id {
			return c, true
		}
	}
	return domain.Character{}, false
}

// States returns the current refresh and edge load states
func (s *Stream) States() LoadStates {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.statesLocked()
}

// State returns the last published stream state
func (s *Stream) State() StreamState {
	return s.state.Get()
}

// Subscribe returns a channel that yields the current state immediately and
// every change afterwards. Call cancel to detach; the stream and its pages
// are unaffected.
func (s *Stream) Subscribe() (<-chan StreamState, func()) {
	return s.state.Subscribe(1)
}

// --- Private helpers (caller holds s.mu) ---

func (s *Stream) startRefreshLocked(key domain.PageKey) {
	s.generation++
	gen := s.generation
	s.refresh = slot{LoadState: LoadState{Status: StatusLoading}, key: key}
	for i := range s.edges {
		if s.edges[i].Status == StatusLoading {
			s.edges[i].Status = StatusIdle
		}
	}
	s.publishLocked()

	s.logger.Debug("refresh started", "key", int(key), "generation", gen)
	s.launchLocked(func(ctx context.Context) {
		res := s.loader.Load(ctx, key)
		s.applyRefresh(gen, res)
	})
}

func (s *Stream) startEdgeLocked(edge Edge, key domain.PageKey) {
	gen := s.generation
	e := &s.edges[edge]
	e.Status = StatusLoading
	e.Err = nil
	s.publishLocked()

	s.logger.Debug("edge load started", "edge", edge.String(), "key", int(key))
	s.launchLocked(func(ctx context.Context) {
		res := s.loader.Load(ctx, key)
		s.applyEdge(gen, edge, res)
	})
}

func (s *Stream) launchLocked(fn func(ctx context.Context)) {
	s.inflight++
	ctx := s.ctx
	go func() {
		defer func() {
			s.mu.Lock()
			s.inflight--
			if s.inflight == 0 {
				s.idle.Broadcast()
			}
			s.mu.Unlock()
		}()
		fn(ctx)
	}()
}

func (s *Stream) staleLocked(gen uint64) bool {
	return s.closed || gen != s.generation || s.ctx.Err() != nil
}

func (s *Stream) applyRefresh(gen uint64, res LoadResult) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.staleLocked(gen) {
		s.logger.Debug("dropping stale refresh result", "generation", gen)
		return
	}

	switch r := res.(type) {
	case PageResult:
		s.pages = []domain.Page{r.Page}
		s.rebuildLocked()
		s.refresh = slot{key: r.Page.Key}
		s.edges[EdgeStart] = edgeSlot(r.Page.PrevKey)
		s.edges[EdgeEnd] = edgeSlot(r.Page.NextKey)
		s.hasAnchor = false
		s.initialized = true
		s.logger.Info("refreshed", "key", int(r.Page.Key), "count", r.Page.Len())
	case ErrorResult:
		s.refresh.Status = StatusError
		s.refresh.Err = r.Err
		s.logger.Warn("refresh failed", "key", int(s.refresh.key), "error", r.Err)
	}
	s.publishLocked()
}

func (s *Stream) applyEdge(gen uint64, edge Edge, res LoadResult) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.staleLocked(gen) {
		s.logger.Debug("dropping stale page", "edge", edge.String(), "generation", gen)
		return
	}

	e := &s.edges[edge]
	switch r := res.(type) {
	case PageResult:
		e.Status = StatusIdle
		if !s.spliceLocked(edge, r.Page) {
			s.logger.Warn("discarding out-of-order page", "edge", edge.String(), "key", int(r.Page.Key))
			break
		}
		next := r.Page.NextKey
		if edge == EdgeStart {
			next = r.Page.PrevKey
		}
		*e = edgeSlot(next)
	case ErrorResult:
		e.Status = StatusError
		e.Err = r.Err
	}
	s.publishLocked()
}

// spliceLocked adds page at the given edge if it continues the chain there.
func (s *Stream) spliceLocked(edge Edge, page domain.Page) bool {
	if page.Key != s.edges[edge].key || len(s.pages) == 0 {
		return false
	}

	switch edge {
	case EdgeEnd:
		if page.Key <= s.pages[len(s.pages)-1].Key {
			return false
		}
		pages := make([]domain.Page, 0, len(s.pages)+1)
		pages = append(pages, s.pages...)
		s.pages = append(pages, page)
	case EdgeStart:
		if page.Key >= s.pages[0].Key {
			return false
		}
		pages := make([]domain.Page, 0, len(s.pages)+1)
		pages = append(pages, page)
		s.pages = append(pages, s.pages...)
	default:
		return false
	}
	s.rebuildLocked()
	return true
}

func (s *Stream) rebuildLocked() {
	n := 0
	for _, p := range s.pages {
		n += p.Len()
	}
	items := make([]domain.Character, 0, n)
	for _, p := range s.pages {
		items = append(items, p.Characters...)
	}
	s.items = items
}

func (s *Stream) statesLocked() LoadStates {
	return LoadStates{
		Refresh: s.refresh.LoadState,
		Start:   s.edges[EdgeStart].LoadState,
		End:     s.edges[EdgeEnd].LoadState,
	}
}

func (s *Stream) publishLocked() {
	s.version++
	s.state.Set(StreamState{
		Version: s.version,
		Items:   s.items,
		States:  s.statesLocked(),
	})
}

func edgeSlot(key domain.PageKey) slot {
	return slot{
		LoadState: LoadState{Status: StatusIdle, Exhausted: !key.Valid()},
		key:       key,
	}
}
