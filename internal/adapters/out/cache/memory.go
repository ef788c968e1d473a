package cache

import (
	"context"
	"strings"
	"sync"
	"time"
)

type memoryEntry struct {
	value     []byte
	expiresAt time.Time
}

// MemoryCache is a process local TTL map. Expired entries are skipped on read
// and swept by a background loop when a cleanup interval is set.
type MemoryCache struct {
	mu       sync.RWMutex
	items    map[string]memoryEntry
	recorder Recorder
	now      func() time.Time
}

// NewMemoryCache creates the cache. With cleanupInterval > 0 a sweeper runs until ctx is done.
func NewMemoryCache(ctx context.Context, cleanupInterval time.Duration, recorder Recorder) *MemoryCache {
	if recorder == nil {
		recorder = nopRecorder{}
	}
	c := &MemoryCache{
		items:    make(map[string]memoryEntry),
		recorder: recorder,
		now:      time.Now,
	}
	if cleanupInterval > 0 {
		go c.cleanup(ctx, cleanupInterval)
	}
	return c
}

func (c *MemoryCache) Get(_ context.Context, key string) ([]byte, bool) {
	c.mu.RLock()
	entry, ok := c.items[key]
	c.mu.RUnlock()

	if !ok || !c.now().Before(entry.expiresAt) {
		c.recorder.RecordCacheLookup(false)
		return nil, false
	}

	c.recorder.RecordCacheLookup(true)
	out := make([]byte, len(entry.value))
	copy(out, entry.value)
	return out, true
}

func (c *MemoryCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	stored := make([]byte, len(value))
	copy(stored, value)

	c.mu.Lock()
	c.items[key] = memoryEntry{value: stored, expiresAt: c.now().Add(ttl)}
	c.mu.Unlock()
}

func (c *MemoryCache) Invalidate(_ context.Context, key string) {
	c.mu.Lock()
	delete(c.items, key)
	c.mu.Unlock()
}

func (c *MemoryCache) InvalidateByPrefix(_ context.Context, prefix string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for key := range c.items {
		if strings.HasPrefix(key, prefix) {
			delete(c.items, key)
		}
	}
}

// Len counts stored entries, expired ones included until swept.
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

func (c *MemoryCache) sweep() {
	now := c.now()

	c.mu.Lock()
	defer c.mu.Unlock()

	for key, entry := range c.items {
		if !now.Before(entry.expiresAt) {
			delete(c.items, key)
		}
	}
}

func (c *MemoryCache) cleanup(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.sweep()
		}
	}
}
