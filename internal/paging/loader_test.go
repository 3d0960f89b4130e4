package paging

import (
	"context"
	"errors"
	"testing"

	"github.com/mmcdole/citadel/internal/domain"
)

func TestLoaderNeighbourKeys(t *testing.T) {
	loader := NewLoader(newFakeSource(3, 20), testLogger())

	tests := []struct {
		name     string
		key      domain.PageKey
		wantKey  domain.PageKey
		wantPrev domain.PageKey
		wantNext domain.PageKey
	}{
		{"no key loads first page", domain.NoKey, 1, domain.NoKey, 2},
		{"first page", 1, 1, domain.NoKey, 2},
		{"middle page", 2, 2, 1, 3},
		{"last page", 3, 3, 2, domain.NoKey},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := loader.Load(context.Background(), tt.key)
			pr, ok := res.(PageResult)
			if !ok {
				t.Fatalf("expected PageResult, got %T", res)
			}
			if pr.Page.Key != tt.wantKey {
				t.Errorf("key: expected %d, got %d", tt.wantKey, pr.Page.Key)
			}
			if pr.Page.PrevKey != tt.wantPrev {
				t.Errorf("prev: expected %d, got %d", tt.wantPrev, pr.Page.PrevKey)
			}
			if pr.Page.NextKey != tt.wantNext {
				t.Errorf("next: expected %d, got %d", tt.wantNext, pr.Page.NextKey)
			}
			if pr.Page.Len() != 20 {
				t.Errorf("expected 20 characters, got %d", pr.Page.Len())
			}
		})
	}
}

func TestLoaderErrorResult(t *testing.T) {
	src := newFakeSource(3, 20)
	boom := errors.New("boom")
	src.failOnce(2, boom)
	loader := NewLoader(src, testLogger())

	res := loader.Load(context.Background(), 2)
	er, ok := res.(ErrorResult)
	if !ok {
		t.Fatalf("expected ErrorResult, got %T", res)
	}
	if er.Key != 2 {
		t.Errorf("expected failed key 2, got %d", er.Key)
	}
	if !errors.Is(er, boom) {
		t.Errorf("expected error to wrap cause, got %v", er.Err)
	}

	// Failure was one-shot; the loader itself never retried
	if src.callCount(2) != 1 {
		t.Errorf("expected 1 call, got %d", src.callCount(2))
	}
}

func TestLoadPage(t *testing.T) {
	loader := NewLoader(newFakeSource(1, 5), testLogger())

	page, err := loader.LoadPage(context.Background(), domain.NoKey)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if page.Len() != 5 || page.NextKey != domain.NoKey {
		t.Errorf("unexpected page: len=%d next=%d", page.Len(), page.NextKey)
	}

	_, err = loader.LoadPage(context.Background(), 4)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
