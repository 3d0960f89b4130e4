package paging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/mmcdole/citadel/internal/domain"
)

// fakeSource serves a catalog of pageCount pages with pageSize characters
// each. Pages can be gated to control completion order and can fail once.
type fakeSource struct {
	pageSize  int
	pageCount int

	mu       sync.Mutex
	calls    map[int]int
	gates    map[int]chan struct{}
	failures map[int]error
}

func newFakeSource(pageCount, pageSize int) *fakeSource {
	return &fakeSource{
		pageSize:  pageSize,
		pageCount: pageCount,
		calls:     make(map[int]int),
		gates:     make(map[int]chan struct{}),
		failures:  make(map[int]error),
	}
}

// gate blocks fetches of page until the returned function is called
func (f *fakeSource) gate(page int) func() {
	ch := make(chan struct{})
	f.mu.Lock()
	f.gates[page] = ch
	f.mu.Unlock()

	var once sync.Once
	return func() { once.Do(func() { close(ch) }) }
}

// failOnce makes the next fetch of page return err
func (f *fakeSource) failOnce(page int, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failures[page] = err
}

func (f *fakeSource) callCount(page int) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[page]
}

func (f *fakeSource) FetchPage(ctx context.Context, page int) (domain.PageResponse, error) {
	f.mu.Lock()
	f.calls[page]++
	gate := f.gates[page]
	f.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return domain.PageResponse{}, ctx.Err()
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if err, ok := f.failures[page]; ok {
		delete(f.failures, page)
		return domain.PageResponse{}, err
	}
	if page < 1 || (page > f.pageCount && page != 1) {
		return domain.PageResponse{}, fmt.Errorf("%w: page %d", domain.ErrNotFound, page)
	}
	if f.pageCount == 0 {
		return domain.PageResponse{Characters: []domain.Character{}}, nil
	}

	characters := make([]domain.Character, f.pageSize)
	for i := range characters {
		id := (page-1)*f.pageSize + i + 1
		characters[i] = domain.Character{ID: id, Name: fmt.Sprintf("Character %d", id)}
	}
	return domain.PageResponse{
		Characters: characters,
		HasNext:    page < f.pageCount,
		Count:      f.pageCount * f.pageSize,
		Pages:      f.pageCount,
	}, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestStream(t *testing.T, src *fakeSource) *Stream {
	t.Helper()
	s := NewStream(context.Background(), NewLoader(src, testLogger()), DefaultConfig(), testLogger())
	t.Cleanup(func() {
		s.Close()
		s.Wait()
	})
	return s
}

func ids(characters []domain.Character) []int {
	out := make([]int, len(characters))
	for i, c := range characters {
		out[i] = c.ID
	}
	return out
}

func assertIDRange(t *testing.T, characters []domain.Character, first, last int) {
	t.Helper()
	if want := last - first + 1; len(characters) != want {
		t.Fatalf("expected %d characters, got %d", want, len(characters))
	}
	for i, c := range characters {
		if c.ID != first+i {
			t.Fatalf("position %d: expected id %d, got %d", i, first+i, c.ID)
		}
	}
}

// waitForState reads from ch until pred holds or the timeout expires
func waitForState(t *testing.T, ch <-chan StreamState, pred func(StreamState) bool) StreamState {
	t.Helper()
	timeout := time.After(2 * time.Second)
	for {
		select {
		case st, ok := <-ch:
			if !ok {
				t.Fatal("subscription closed while waiting")
			}
			if pred(st) {
				return st
			}
		case <-timeout:
			t.Fatal("timed out waiting for stream state")
		}
	}
}
