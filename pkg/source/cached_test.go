package source

import (
	"context"
	"testing"

	"github.com/convoflow/convoflow/pkg/cache"
	"github.com/convoflow/convoflow/pkg/errors"
	"github.com/convoflow/convoflow/pkg/message"
)

// countingSource records how many fetches reach the backend.
type countingSource struct {
	fetches int
	entries []message.Entry
}

func (s *countingSource) Fetch(ctx context.Context, conversationID string) ([]message.Entry, error) {
	s.fetches++
	if conversationID == "missing" {
		return nil, errors.New(errors.ErrCodeConversationNotFound, "conversation %s not found", conversationID)
	}
	return s.entries, nil
}

func (s *countingSource) List(ctx context.Context) ([]Info, error) {
	return []Info{{ID: "conv-1"}}, nil
}

func (s *countingSource) Close(ctx context.Context) error { return nil }

func TestCachedSourceReadThrough(t *testing.T) {
	ctx := context.Background()
	inner := &countingSource{entries: []message.Entry{
		{ID: "m1", Role: "user", Content: "hi"},
	}}

	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	s := NewCachedSource(inner, "test", fc, nil)

	// First fetch hits the backend
	entries, err := s.Fetch(ctx, "conv-1")
	if err != nil {
		t.Fatalf("Fetch error: %v", err)
	}
	if len(entries) != 1 || inner.fetches != 1 {
		t.Fatalf("first fetch: entries=%d backend fetches=%d", len(entries), inner.fetches)
	}

	// Second fetch is served from cache
	entries, err = s.Fetch(ctx, "conv-1")
	if err != nil {
		t.Fatalf("Fetch error: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("cached fetch: entries=%d", len(entries))
	}
	if inner.fetches != 1 {
		t.Errorf("backend fetches = %d, want 1 (second fetch should be cached)", inner.fetches)
	}
}

func TestCachedSourceErrorsNotCached(t *testing.T) {
	ctx := context.Background()
	inner := &countingSource{}

	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	s := NewCachedSource(inner, "test", fc, nil)

	for i := 0; i < 2; i++ {
		if _, err := s.Fetch(ctx, "missing"); !errors.Is(err, errors.ErrCodeConversationNotFound) {
			t.Fatalf("Fetch should report not found, got %v", err)
		}
	}
	if inner.fetches != 2 {
		t.Errorf("backend fetches = %d, want 2 (errors must not be cached)", inner.fetches)
	}
}

// flakySource fails with a transient error a set number of times before
// succeeding.
type flakySource struct {
	countingSource
	failures int
}

func (s *flakySource) Fetch(ctx context.Context, conversationID string) ([]message.Entry, error) {
	s.fetches++
	if s.fetches <= s.failures {
		return nil, errors.New(errors.ErrCodeNetwork, "backend unavailable")
	}
	return s.entries, nil
}

func TestCachedSourceRetriesTransientErrors(t *testing.T) {
	ctx := context.Background()
	inner := &flakySource{failures: 1}
	inner.entries = []message.Entry{{ID: "m1", Role: "user", Content: "hi"}}

	s := NewCachedSource(inner, "test", nil, nil)

	entries, err := s.Fetch(ctx, "conv-1")
	if err != nil {
		t.Fatalf("Fetch error: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("entries = %d, want 1", len(entries))
	}
	if inner.fetches != 2 {
		t.Errorf("backend fetches = %d, want 2 (transient failure should be retried)", inner.fetches)
	}
}

func TestCachedSourceDoesNotRetryNotFound(t *testing.T) {
	inner := &countingSource{}
	s := NewCachedSource(inner, "test", nil, nil)

	if _, err := s.Fetch(context.Background(), "missing"); !errors.Is(err, errors.ErrCodeConversationNotFound) {
		t.Fatalf("Fetch should report not found, got %v", err)
	}
	if inner.fetches != 1 {
		t.Errorf("backend fetches = %d, want 1 (not-found must not be retried)", inner.fetches)
	}
}

func TestCachedSourceNilCache(t *testing.T) {
	ctx := context.Background()
	inner := &countingSource{entries: []message.Entry{{Role: "user", Content: "hi"}}}
	s := NewCachedSource(inner, "test", nil, nil)

	for i := 0; i < 2; i++ {
		if _, err := s.Fetch(ctx, "conv-1"); err != nil {
			t.Fatalf("Fetch error: %v", err)
		}
	}
	if inner.fetches != 2 {
		t.Errorf("backend fetches = %d, want 2 (nil cache disables caching)", inner.fetches)
	}
}

func TestCachedSourceListDelegates(t *testing.T) {
	s := NewCachedSource(&countingSource{}, "test", nil, nil)
	infos, err := s.List(context.Background())
	if err != nil {
		t.Fatalf("List error: %v", err)
	}
	if len(infos) != 1 || infos[0].ID != "conv-1" {
		t.Errorf("unexpected listing: %+v", infos)
	}
}
