package source

import (
	"context"
	"encoding/json"

	"github.com/convoflow/convoflow/pkg/cache"
	"github.com/convoflow/convoflow/pkg/errors"
	"github.com/convoflow/convoflow/pkg/message"
	"github.com/convoflow/convoflow/pkg/observability"
)

// CachedSource wraps a Source with a read-through cache on Fetch.
// Listings are never cached; they are cheap and should stay fresh.
type CachedSource struct {
	inner   Source
	backend string
	cache   cache.Cache
	keyer   cache.Keyer
}

// NewCachedSource wraps inner with the given cache.
// backend names the wrapped source in cache keys ("mongo", "file").
// A nil cache disables caching; a nil keyer uses the default.
func NewCachedSource(inner Source, backend string, c cache.Cache, keyer cache.Keyer) *CachedSource {
	if c == nil {
		c = cache.NewNullCache()
	}
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	return &CachedSource{
		inner:   inner,
		backend: backend,
		cache:   c,
		keyer:   keyer,
	}
}

// Fetch returns the cached message stream, falling back to the wrapped
// source on a miss. Cache failures degrade to a direct fetch, and transient
// backend failures are retried with backoff before giving up.
func (s *CachedSource) Fetch(ctx context.Context, conversationID string) ([]message.Entry, error) {
	key := s.keyer.SourceKey(s.backend, conversationID)

	if data, hit, err := s.cache.Get(ctx, key); err == nil && hit {
		var entries []message.Entry
		if err := json.Unmarshal(data, &entries); err == nil {
			observability.Cache().OnCacheHit(ctx, "source")
			return entries, nil
		}
	}
	observability.Cache().OnCacheMiss(ctx, "source")

	var entries []message.Entry
	err := cache.RetryWithBackoff(ctx, func() error {
		fetched, err := s.inner.Fetch(ctx, conversationID)
		if err != nil {
			if errors.Is(err, errors.ErrCodeNetwork) || errors.Is(err, errors.ErrCodeTimeout) {
				return cache.Retryable(err)
			}
			return err
		}
		entries = fetched
		return nil
	})
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(entries); err == nil {
		if err := s.cache.Set(ctx, key, data, cache.TTLSource); err == nil {
			observability.Cache().OnCacheSet(ctx, "source", len(data))
		}
	}
	return entries, nil
}

// List delegates to the wrapped source.
func (s *CachedSource) List(ctx context.Context) ([]Info, error) {
	return s.inner.List(ctx)
}

// Close closes the wrapped source. The cache is owned by the caller.
func (s *CachedSource) Close(ctx context.Context) error {
	return s.inner.Close(ctx)
}

// Ensure CachedSource implements Source.
var _ Source = (*CachedSource)(nil)
