package catalog

import (
	"context"
	"log/slog"
	"sync"

	"github.com/mmcdole/citadel/internal/domain"
	"github.com/mmcdole/citadel/internal/paging"
)

// Projector is the scope-bound entry point consumers observe.
//
// On construction it starts the flat snapshot fetch. The paged stream is
// built on first access and then reused for the Projector's whole lifetime,
// so consumers can detach and reattach without losing loaded pages. Close
// ends the scope; a new Projector starts from scratch.
type Projector struct {
	loader *paging.Loader
	cfg    paging.Config
	logger *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	snapshot *SnapshotLoader

	mu     sync.Mutex
	stream *paging.Stream
	closed bool
}

// NewProjector creates a projector bound to ctx and immediately starts the
// initial snapshot fetch in the background.
func NewProjector(ctx context.Context, loader *paging.Loader, cfg paging.Config, logger *slog.Logger) *Projector {
	if logger == nil {
		logger = slog.Default()
	}
	ctx, cancel := context.WithCancel(ctx)
	p := &Projector{
		loader:   loader,
		cfg:      cfg,
		logger:   logger,
		ctx:      ctx,
		cancel:   cancel,
		snapshot: NewSnapshotLoader(loader, logger),
	}
	p.Reload()
	return p
}

// Reload starts a new snapshot fetch in the background. It returns false if a
// fetch is already running or the projector is closed.
func (p *Projector) Reload() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed || !p.snapshot.tryBegin() {
		return false
	}

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		p.snapshot.run(p.ctx)
	}()
	return true
}

// Snapshot returns the last published flat snapshot
func (p *Projector) Snapshot() Snapshot {
	return p.snapshot.Current()
}

// SubscribeSnapshot returns snapshot updates, starting with the current one
func (p *Projector) SubscribeSnapshot(buffer int) (<-chan Snapshot, func()) {
	return p.snapshot.Subscribe(buffer)
}

// Stream returns the cached paged stream, creating it and starting its
// initial refresh on first call. After Close it returns a closed stream.
func (p *Projector) Stream() *paging.Stream {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.stream == nil {
		p.stream = paging.NewStream(p.ctx, p.loader, p.cfg, p.logger)
		if p.closed {
			p.stream.Close()
			return p.stream
		}
		p.stream.Refresh()
		p.logger.Debug("paged stream created")
	}
	return p.stream
}

// Character looks up a cached character by id, checking the paged stream
// before the flat snapshot.
func (p *Projector) Character(id int) (domain.Character, bool) {
	p.mu.Lock()
	stream := p.stream
	p.mu.Unlock()

	if stream != nil {
		if c, ok := stream.Find(id); ok {
			return c, true
		}
	}
	for _, c := range p.snapshot.Current().Characters {
		if c.ID == id {
			return c, true
		}
	}
	return domain.Character{}, false
}

// Closed reports whether the projector's scope has ended
func (p *Projector) Closed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closed
}

// Close ends the owning scope: in-flight loads are cancelled, their results
// discarded, and all subscriptions closed. Safe to call more than once.
func (p *Projector) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	p.cancel()
	stream := p.stream
	p.mu.Unlock()

	if stream != nil {
		stream.Close()
	}
	p.snapshot.Close()
	p.logger.Debug("projector closed")
}

// Wait blocks until background snapshot fetches and stream loads finish.
func (p *Projector) Wait() {
	p.wg.Wait()

	p.mu.Lock()
	stream := p.stream
	p.mu.Unlock()
	if stream != nil {
		stream.Wait()
	}
}
