package catalog

import (
	"context"
	"log/slog"
	"time"
)

// DocumentCache is a byte cache with expiry. The platform Redis cache
// satisfies it.
type DocumentCache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

const cacheKeyPrefix = "quiz:doc:"

// CacheKey returns the cache key under which path is stored.
func CacheKey(path string) string {
	return cacheKeyPrefix + path
}

// CachedStore is a read-through cache in front of another store. Cache
// errors are logged and fall through to the inner store; failed fetches
// are never cached.
type CachedStore struct {
	inner DocumentStore
	cache DocumentCache
	ttl   time.Duration
}

// NewCachedStore wraps inner with cache.
func NewCachedStore(inner DocumentStore, cache DocumentCache, ttl time.Duration) *CachedStore {
	return &CachedStore{inner: inner, cache: cache, ttl: ttl}
}

func (s *CachedStore) Fetch(ctx context.Context, path string) ([]byte, error) {
	key := CacheKey(path)

	data, found, err := s.cache.Get(ctx, key)
	switch {
	case err != nil:
		slog.Warn("document cache read failed", "path", path, "error", err)
	case found:
		return data, nil
	}

	data, err = s.inner.Fetch(ctx, path)
	if err != nil {
		return nil, err
	}

	if err := s.cache.Set(ctx, key, data, s.ttl); err != nil {
		slog.Warn("document cache write failed", "path", path, "error", err)
	}
	return data, nil
}
