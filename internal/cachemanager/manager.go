// Package cachemanager provides typed caches over go-cache. The playground
// uses them to keep per-line cell layouts between renders.
package cachemanager

import (
	"context"
	"time"
)

// CacheManager is a typed key/value cache with per-entry TTLs.
type CacheManager[K comparable, V any] interface {
	Get(ctx context.Context, key K) (V, bool)
	GetWithRefresh(ctx context.Context, key K, ttl time.Duration) (V, bool)
	Set(ctx context.Context, key K, value V, ttl time.Duration)
	// Len counts stored entries, expired ones included until cleanup runs.
	Len() int
}
