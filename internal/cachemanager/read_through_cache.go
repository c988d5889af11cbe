package cachemanager

import (
	"context"
	"sync/atomic"
	"time"
)

// Stats counts ReadThroughCache lookups.
type Stats struct {
	Hits   uint64
	Misses uint64
	Errors uint64

	// Entries is the number of stored values, 0 when caching is off.
	Entries int
}

// HitRate is Hits over all successful lookups, 0 when there were none.
func (s Stats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}

// ReadThroughCache computes values with fn on a miss and stores them.
// A nil CacheManager turns it into a plain call to fn.
type ReadThroughCache[K comparable, V any, I any] struct {
	cache CacheManager[K, V]
	fn    func(ctx context.Context, input I) (V, error)

	hits, misses, errors atomic.Uint64
}

// NewReadThroughCache wraps cache. With shouldSkipCache every call goes to fn.
func NewReadThroughCache[K comparable, V any, I any](
	cache CacheManager[K, V],
	fn func(ctx context.Context, input I) (V, error),
	shouldSkipCache bool,
) *ReadThroughCache[K, V, I] {
	if shouldSkipCache {
		cache = nil
	}
	return &ReadThroughCache[K, V, I]{cache: cache, fn: fn}
}

// Get returns the cached value for key, or computes it from input.
func (r *ReadThroughCache[K, V, I]) Get(ctx context.Context, key K, input I, ttl time.Duration) (V, error) {
	return r.get(ctx, key, input, ttl, false)
}

// GetWithRefresh is Get, extending the TTL of a hit.
func (r *ReadThroughCache[K, V, I]) GetWithRefresh(ctx context.Context, key K, input I, ttl time.Duration) (V, error) {
	return r.get(ctx, key, input, ttl, true)
}

// Stats returns lookup counters since creation.
func (r *ReadThroughCache[K, V, I]) Stats() Stats {
	return Stats{
		Hits:    r.hits.Load(),
		Misses:  r.misses.Load(),
		Errors:  r.errors.Load(),
		Entries: r.entries(),
	}
}

func (r *ReadThroughCache[K, V, I]) entries() int {
	if r.cache == nil {
		return 0
	}
	return r.cache.Len()
}

func (r *ReadThroughCache[K, V, I]) get(ctx context.Context, key K, input I, ttl time.Duration, refresh bool) (V, error) {
	if r.cache != nil {
		var (
			value V
			ok    bool
		)
		if refresh {
			value, ok = r.cache.GetWithRefresh(ctx, key, ttl)
		} else {
			value, ok = r.cache.Get(ctx, key)
		}
		if ok {
			r.hits.Add(1)
			return value, nil
		}
	}

	value, err := r.fn(ctx, input)
	if err != nil {
		r.errors.Add(1)
		return value, err
	}
	r.misses.Add(1)

	if r.cache != nil {
		r.cache.Set(ctx, key, value, ttl)
	}
	return value, nil
}
