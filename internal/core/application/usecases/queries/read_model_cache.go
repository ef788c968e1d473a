package queries

import (
	"context"
	"strings"

	"tracking/internal/core/ports"
	"tracking/internal/pkg/keylock"
)

// ReadModelCache is the cache shared by the query handlers and the commands.
// A refill (miss, load, store) and an invalidation of the same key never overlap:
// a value loaded before a mutation committed is either stored before the
// mutation's invalidation, which then removes it, or not stored at all.
//
// Keys under AnalyticsCachePrefix form one group, since mutations invalidate
// them by prefix. Every other key is its own group.
//
// The fence is per process. Instances sharing a redis backend are still bounded
// by the entry TTL.
//
// Example:
//
//	readModels := NewReadModelCache(cache.NewMemoryCache(ctx, time.Minute, nil))
//	snapshots := NewGetTrackingSnapshotQueryHandler(db, readModels)
//	// commands receive readModels as their ports.Cache
type ReadModelCache struct {
	ports.Cache
	fills *keylock.KeyedMutex
}

// NewReadModelCache wraps backend with refill fencing.
func NewReadModelCache(backend ports.Cache) *ReadModelCache {
	return &ReadModelCache{Cache: backend, fills: &keylock.KeyedMutex{}}
}

// Invalidate removes key, waiting for an in-flight refill of its group.
func (c *ReadModelCache) Invalidate(ctx context.Context, key string) {
	unlock := c.fills.Lock(fillGroup(key))
	defer unlock()
	c.Cache.Invalidate(ctx, key)
}

// InvalidateByPrefix removes every key under prefix, waiting for an in-flight
// refill of the prefix group.
func (c *ReadModelCache) InvalidateByPrefix(ctx context.Context, prefix string) {
	unlock := c.fills.Lock(fillGroup(prefix))
	defer unlock()
	c.Cache.InvalidateByPrefix(ctx, prefix)
}

// lockFill holds the refill lock of key's group until the returned func is called.
func (c *ReadModelCache) lockFill(key string) (unlock func()) {
	return c.fills.Lock(fillGroup(key))
}

func fillGroup(key string) string {
	if strings.HasPrefix(key, AnalyticsCachePrefix) {
		return AnalyticsCachePrefix
	}
	return key
}
