package ports

import (
	"context"
	"time"
)

// Cache is a best-effort key/value store for read models.
// None of the methods report errors: an unreachable backend behaves like an
// empty cache and the caller recomputes.
type Cache interface {
	// Get returns the stored value and true on a hit.
	Get(ctx context.Context, key string) ([]byte, bool)

	Set(ctx context.Context, key string, value []byte, ttl time.Duration)

	// Invalidate removes one key.
	Invalidate(ctx context.Context, key string)

	// InvalidateByPrefix removes every key starting with prefix.
	InvalidateByPrefix(ctx context.Context, prefix string)
}
