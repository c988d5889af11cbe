package cachemanager

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/zjrosen/textstate/internal/log"
)

const (
	DefaultExpiration      = 10 * time.Minute
	DefaultCleanupInterval = 30 * time.Minute
)

// InMemoryCacheManager stores values in a go-cache instance. Keys are any
// string type so callers can use their own key names.
type InMemoryCacheManager[K ~string, V any] struct {
	name  string
	store *gocache.Cache
}

var _ CacheManager[string, int] = (*InMemoryCacheManager[string, int])(nil)

// NewInMemoryCacheManager creates a cache; name identifies it in log output.
func NewInMemoryCacheManager[K ~string, V any](name string, ttl, cleanup time.Duration) *InMemoryCacheManager[K, V] {
	return &InMemoryCacheManager[K, V]{name: name, store: gocache.New(ttl, cleanup)}
}

func (c *InMemoryCacheManager[K, V]) Get(_ context.Context, key K) (V, bool) {
	var zero V
	raw, found := c.store.Get(string(key))
	if !found {
		return zero, false
	}
	v, ok := raw.(V)
	if !ok {
		log.Error(log.CatCache, "cached value has wrong type", "cache", c.name, "key", key)
		c.store.Delete(string(key))
		return zero, false
	}
	return v, true
}

// GetWithRefresh is Get, re-storing a hit so it lives another ttl.
func (c *InMemoryCacheManager[K, V]) GetWithRefresh(ctx context.Context, key K, ttl time.Duration) (V, bool) {
	v, ok := c.Get(ctx, key)
	if ok {
		c.Set(ctx, key, v, ttl)
	}
	return v, ok
}

func (c *InMemoryCacheManager[K, V]) Set(_ context.Context, key K, value V, ttl time.Duration) {
	c.store.Set(string(key), value, ttl)
}

func (c *InMemoryCacheManager[K, V]) Len() int {
	return c.store.ItemCount()
}
