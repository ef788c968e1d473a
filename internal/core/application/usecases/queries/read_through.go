// Package queries contains read operations for retrieving system state.
// Query handlers read with plain SQL and sit behind the read-through cache:
// a hit is served from the cache, a miss (or an unreachable cache) falls
// through to the database and refills the entry.
package queries

import (
	"context"
	"encoding/json"
	"time"

	"tracking/internal/core/domain/model/shipment"
	"tracking/internal/core/ports"
)

const (
	trackingCachePrefix = "track:"

	// AnalyticsCachePrefix covers every aggregate read model; any shipment mutation invalidates it.
	AnalyticsCachePrefix = "analytics:"

	AnalyticsOverviewCacheKey = AnalyticsCachePrefix + "overview"
	ShipmentsPerDayCacheKey   = AnalyticsCachePrefix + "per-day"

	TrackingSnapshotTTL = 30 * time.Second
	AnalyticsTTL        = 10 * time.Minute
)

// TrackingCacheKey is the cache key of the public snapshot of one shipment.
func TrackingCacheKey(number shipment.TrackingNumber) string {
	return trackingCachePrefix + number.String()
}

// readThrough returns the cached value of key, or loads, stores and returns it.
// Cache problems never fail the read: an undecodable entry is dropped and reloaded.
// The miss path runs under the refill lock of key, so an invalidation issued
// while load is running takes effect after the store.
func readThrough[T any](
	ctx context.Context,
	cache *ReadModelCache,
	key string,
	ttl time.Duration,
	load func(ctx context.Context) (T, error),
) (T, error) {
	if cached, ok := lookup[T](ctx, cache.Cache, key); ok {
		return cached, nil
	}

	unlock := cache.lockFill(key)
	defer unlock()

	// another reader may have refilled the entry while we waited
	if cached, ok := lookup[T](ctx, cache.Cache, key); ok {
		return cached, nil
	}

	value, err := load(ctx)
	if err != nil {
		var zero T
		return zero, err
	}

	store(ctx, cache.Cache, key, ttl, value)
	return value, nil
}

// refresh loads and overwrites key under its refill lock.
func refresh[T any](
	ctx context.Context,
	cache *ReadModelCache,
	key string,
	ttl time.Duration,
	load func(ctx context.Context) (T, error),
) (T, error) {
	unlock := cache.lockFill(key)
	defer unlock()

	value, err := load(ctx)
	if err != nil {
		var zero T
		return zero, err
	}

	store(ctx, cache.Cache, key, ttl, value)
	return value, nil
}

func lookup[T any](ctx context.Context, backend ports.Cache, key string) (T, bool) {
	var cached T
	raw, ok := backend.Get(ctx, key)
	if !ok {
		return cached, false
	}
	if err := json.Unmarshal(raw, &cached); err != nil {
		backend.Invalidate(ctx, key)
		var zero T
		return zero, false
	}
	return cached, true
}

func store[T any](ctx context.Context, backend ports.Cache, key string, ttl time.Duration, value T) {
	raw, err := json.Marshal(value)
	if err != nil {
		return
	}
	backend.Set(ctx, key, raw, ttl)
}
