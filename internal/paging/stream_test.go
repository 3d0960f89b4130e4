package paging

import (
	"context"
	"errors"
	"testing"

	"github.com/mmcdole/citadel/internal/domain"
)

func TestStreamRefreshLoadsFirstPage(t *testing.T) {
	s := newTestStream(t, newFakeSource(3, 20))

	if !s.Refresh() {
		t.Fatal("expected refresh to start")
	}
	s.Wait()

	assertIDRange(t, s.Items(), 1, 20)

	st := s.States()
	if st.Refresh.Status != StatusIdle {
		t.Errorf("expected refresh idle, got %s", st.Refresh.Status)
	}
	if !st.Start.Exhausted {
		t.Error("expected start edge exhausted on the first page")
	}
	if st.End.Exhausted || st.End.Status != StatusIdle {
		t.Errorf("expected end edge idle and loadable, got %+v", st.End)
	}
}

func TestStreamLoadsToExhaustion(t *testing.T) {
	src := newFakeSource(2, 20)
	s := newTestStream(t, src)

	s.Refresh()
	s.Wait()
	if !s.LoadMore(EdgeEnd) {
		t.Fatal("expected load of page 2 to start")
	}
	s.Wait()

	assertIDRange(t, s.Items(), 1, 40)

	pages := s.Pages()
	if len(pages) != 2 || pages[0].PrevKey != domain.NoKey {
		t.Fatalf("unexpected pages: %+v", pages)
	}

	st := s.States()
	if !st.End.Exhausted {
		t.Error("expected end edge exhausted")
	}

	// Exhausted edges issue no further calls
	if s.LoadMore(EdgeEnd) {
		t.Error("expected no-op on exhausted edge")
	}
	s.Access(39)
	s.Wait()
	if src.callCount(3) != 0 {
		t.Errorf("expected no call for page 3, got %d", src.callCount(3))
	}
}

func TestStreamOrderIndependentOfCompletion(t *testing.T) {
	src := newFakeSource(5, 20)
	s := newTestStream(t, src)

	// Land on page 3 alone
	s.Refresh()
	s.Wait()
	s.LoadMore(EdgeEnd)
	s.Wait()
	s.LoadMore(EdgeEnd)
	s.Wait()
	s.Access(45)
	s.Refresh()
	s.Wait()
	assertIDRange(t, s.Items(), 41, 60)

	releasePrev := src.gate(2)
	releaseNext := src.gate(4)

	s.Access(19)
	s.Access(0)

	st := s.States()
	if st.Start.Status != StatusLoading || st.End.Status != StatusLoading {
		t.Fatalf("expected both edges loading, got %+v", st)
	}

	// Later key completes first
	releaseNext()
	releasePrev()
	s.Wait()

	assertIDRange(t, s.Items(), 21, 80)
}

func TestStreamSingleLoadPerEdge(t *testing.T) {
	src := newFakeSource(3, 20)
	s := newTestStream(t, src)

	s.Refresh()
	s.Wait()

	release := src.gate(2)
	if !s.LoadMore(EdgeEnd) {
		t.Fatal("expected first load to start")
	}
	if s.LoadMore(EdgeEnd) {
		t.Error("expected second load to be a no-op")
	}
	s.Access(19)

	release()
	s.Wait()

	if n := src.callCount(2); n != 1 {
		t.Errorf("expected exactly 1 call for page 2, got %d", n)
	}
	assertIDRange(t, s.Items(), 1, 40)
}

func TestStreamEdgeErrorAndRetry(t *testing.T) {
	src := newFakeSource(2, 20)
	s := newTestStream(t, src)

	s.Refresh()
	s.Wait()

	boom := errors.New("connection reset")
	src.failOnce(2, boom)
	s.LoadMore(EdgeEnd)
	s.Wait()

	assertIDRange(t, s.Items(), 1, 20)
	st := s.States()
	if st.End.Status != StatusError || !errors.Is(st.End.Err, boom) {
		t.Fatalf("expected end edge error, got %+v", st.End)
	}

	// Errors only clear through Retry
	if s.LoadMore(EdgeEnd) {
		t.Error("expected LoadMore to be a no-op on an errored edge")
	}

	if n := s.Retry(); n != 1 {
		t.Fatalf("expected 1 retry, got %d", n)
	}
	s.Wait()

	assertIDRange(t, s.Items(), 1, 40)
	st = s.States()
	if st.End.Status != StatusIdle || st.End.Err != nil {
		t.Errorf("expected end edge cleared, got %+v", st.End)
	}
	if src.callCount(1) != 1 {
		t.Errorf("expected page 1 fetched once, got %d", src.callCount(1))
	}
}

func TestStreamRefreshErrorAndRetry(t *testing.T) {
	src := newFakeSource(2, 20)
	src.failOnce(1, domain.ErrTransport)
	s := newTestStream(t, src)

	s.Refresh()
	s.Wait()

	st := s.States()
	if st.Refresh.Status != StatusError {
		t.Fatalf("expected refresh error, got %s", st.Refresh.Status)
	}
	if s.Len() != 0 {
		t.Errorf("expected no items, got %d", s.Len())
	}

	// Access does not restart a failed refresh on its own
	s.Access(0)
	s.Wait()
	if src.callCount(1) != 1 {
		t.Errorf("expected 1 call, got %d", src.callCount(1))
	}

	if n := s.Retry(); n != 1 {
		t.Fatalf("expected 1 retry, got %d", n)
	}
	s.Wait()
	assertIDRange(t, s.Items(), 1, 20)
}

func TestStreamRefreshNearAnchor(t *testing.T) {
	src := newFakeSource(5, 20)
	s := newTestStream(t, src)

	s.Refresh()
	s.Wait()
	s.LoadMore(EdgeEnd)
	s.Wait()
	s.LoadMore(EdgeEnd)
	s.Wait()

	s.Access(25)
	s.Refresh()
	s.Wait()

	pages := s.Pages()
	if len(pages) != 1 || pages[0].Key != 2 {
		t.Fatalf("expected to restart at page 2, got %+v", pages)
	}
	st := s.States()
	if st.Start.Exhausted || st.End.Exhausted {
		t.Errorf("expected both edges loadable, got %+v", st)
	}
}

func TestStreamRefreshKeepsPagesUntilSuccess(t *testing.T) {
	src := newFakeSource(3, 20)
	s := newTestStream(t, src)

	s.Refresh()
	s.Wait()

	src.failOnce(1, domain.ErrTransport)
	s.Refresh()
	s.Wait()

	assertIDRange(t, s.Items(), 1, 20)
	if s.States().Refresh.Status != StatusError {
		t.Error("expected refresh error")
	}
}

func TestStreamDropsEdgeResultAfterRefresh(t *testing.T) {
	src := newFakeSource(3, 20)
	s := newTestStream(t, src)

	s.Refresh()
	s.Wait()

	release := src.gate(2)
	s.LoadMore(EdgeEnd)
	s.Refresh()
	release()
	s.Wait()

	pages := s.Pages()
	if len(pages) != 1 || pages[0].Key != 1 {
		t.Fatalf("expected only page 1 after refresh, got %d pages", len(pages))
	}
	if st := s.States(); st.End.Status != StatusIdle {
		t.Errorf("expected end edge idle, got %s", st.End.Status)
	}
}

func TestStreamCloseDiscardsInFlight(t *testing.T) {
	src := newFakeSource(3, 20)
	s := newTestStream(t, src)

	ch, cancel := s.Subscribe()
	defer cancel()

	release := src.gate(1)
	s.Refresh()
	s.Close()
	release()
	s.Wait()

	if s.Len() != 0 {
		t.Errorf("expected no items after close, got %d", s.Len())
	}
	if !s.Closed() {
		t.Error("expected stream closed")
	}
	if s.Refresh() || s.LoadMore(EdgeEnd) || s.Retry() != 0 {
		t.Error("expected closed stream to ignore load requests")
	}

	for range ch {
	}
}

func TestStreamAccessBeforeRefresh(t *testing.T) {
	s := newTestStream(t, newFakeSource(2, 20))

	s.Access(0)
	s.Wait()

	assertIDRange(t, s.Items(), 1, 20)
}

func TestStreamAccessPrefetch(t *testing.T) {
	src := newFakeSource(3, 20)
	s := newTestStream(t, src)

	s.Refresh()
	s.Wait()

	s.Access(17)
	s.Wait()
	if src.callCount(2) != 0 {
		t.Fatal("expected no prefetch outside the prefetch distance")
	}

	s.Access(18)
	s.Wait()
	assertIDRange(t, s.Items(), 1, 40)
}

func TestStreamAccessZeroPrefetchDistance(t *testing.T) {
	src := newFakeSource(3, 20)
	s := NewStream(context.Background(), NewLoader(src, testLogger()), Config{PrefetchDistance: 0}, testLogger())
	t.Cleanup(func() {
		s.Close()
		s.Wait()
	})

	s.Refresh()
	s.Wait()

	s.Access(s.Len() - 2)
	s.Wait()
	if src.callCount(2) != 0 {
		t.Fatal("expected no prefetch before the last item")
	}

	s.Access(s.Len() - 1)
	s.Wait()
	if src.callCount(2) != 1 {
		t.Fatalf("expected page 2 fetched from the last item, got %d calls", src.callCount(2))
	}
	assertIDRange(t, s.Items(), 1, 40)
}

func TestStreamEmptyCatalog(t *testing.T) {
	src := newFakeSource(0, 20)
	s := newTestStream(t, src)

	s.Refresh()
	s.Wait()

	if s.Len() != 0 {
		t.Fatalf("expected empty stream, got %d", s.Len())
	}
	st := s.States()
	if !st.Start.Exhausted || !st.End.Exhausted {
		t.Errorf("expected both edges exhausted, got %+v", st)
	}

	s.Access(0)
	s.Wait()
	if src.callCount(2) != 0 || src.callCount(1) != 1 {
		t.Error("expected no further loads for an empty catalog")
	}
}

func TestStreamSubscribeAfterDetach(t *testing.T) {
	s := newTestStream(t, newFakeSource(2, 20))

	ch, cancel := s.Subscribe()
	s.Refresh()
	waitForState(t, ch, func(st StreamState) bool { return len(st.Items) == 20 })
	cancel()

	// A new subscriber sees the retained pages immediately
	ch, cancel = s.Subscribe()
	defer cancel()
	st := <-ch
	if len(st.Items) != 20 {
		t.Fatalf("expected 20 retained items, got %d", len(st.Items))
	}

	s.LoadMore(EdgeEnd)
	st = waitForState(t, ch, func(st StreamState) bool { return len(st.Items) == 40 })
	if got := ids(st.Items); got[20] != 21 {
		t.Errorf("expected page 2 appended, got id %d at 20", got[20])
	}
}
