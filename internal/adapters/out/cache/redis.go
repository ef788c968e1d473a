package cache

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// DefaultOpTimeout bounds every Redis round trip.
	DefaultOpTimeout = 500 * time.Millisecond

	scanBatch = 200
)

var globEscaper = strings.NewReplacer(`\`, `\\`, `*`, `\*`, `?`, `\?`, `[`, `\[`, `]`, `\]`)

// RedisCache stores values in Redis with SET EX and expires them server side.
type RedisCache struct {
	client    redis.UniversalClient
	opTimeout time.Duration
	logger    *slog.Logger
	recorder  Recorder
}

// NewRedisClient parses a redis:// URL.
func NewRedisClient(rawURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(rawURL)
	if err != nil {
		return nil, err
	}
	return redis.NewClient(opts), nil
}

// NewRedisCache wraps client. A nil logger uses slog.Default, a nil recorder counts nothing.
func NewRedisCache(client redis.UniversalClient, logger *slog.Logger, recorder Recorder) *RedisCache {
	if logger == nil {
		logger = slog.Default()
	}
	if recorder == nil {
		recorder = nopRecorder{}
	}
	return &RedisCache{
		client:    client,
		opTimeout: DefaultOpTimeout,
		logger:    logger.With("component", "redis-cache"),
		recorder:  recorder,
	}
}

func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, bool) {
	ctx, cancel := context.WithTimeout(ctx, c.opTimeout)
	defer cancel()

	value, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		c.recorder.RecordCacheLookup(false)
		return nil, false
	}
	if err != nil {
		c.fail("get", key, err)
		c.recorder.RecordCacheLookup(false)
		return nil, false
	}

	c.recorder.RecordCacheLookup(true)
	return value, true
}

func (c *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) {
	ctx, cancel := context.WithTimeout(ctx, c.opTimeout)
	defer cancel()

	if err := c.client.Set(ctx, key, value, ttl).Err(); err != nil {
		c.fail("set", key, err)
	}
}

func (c *RedisCache) Invalidate(ctx context.Context, key string) {
	ctx, cancel := context.WithTimeout(ctx, c.opTimeout)
	defer cancel()

	if err := c.client.Del(ctx, key).Err(); err != nil {
		c.fail("invalidate", key, err)
	}
}

// InvalidateByPrefix walks the keyspace with SCAN and deletes matches in batches.
// Keys written while the scan runs may survive; they expire with their TTL.
func (c *RedisCache) InvalidateByPrefix(ctx context.Context, prefix string) {
	ctx, cancel := context.WithTimeout(ctx, 4*c.opTimeout)
	defer cancel()

	pattern := globEscaper.Replace(prefix) + "*"
	iter := c.client.Scan(ctx, 0, pattern, scanBatch).Iterator()

	batch := make([]string, 0, scanBatch)
	flush := func() bool {
		if len(batch) == 0 {
			return true
		}
		if err := c.client.Del(ctx, batch...).Err(); err != nil {
			c.fail("invalidate_prefix", prefix, err)
			return false
		}
		batch = batch[:0]
		return true
	}

	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) == scanBatch && !flush() {
			return
		}
	}
	if err := iter.Err(); err != nil {
		c.fail("invalidate_prefix", prefix, err)
	}
	flush()
}

// Ping reports whether Redis answers.
func (c *RedisCache) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, c.opTimeout)
	defer cancel()
	return c.client.Ping(ctx).Err()
}

func (c *RedisCache) fail(op, key string, err error) {
	c.recorder.RecordCacheError(op)
	c.logger.Warn("cache operation failed", "op", op, "key", key, "error", err)
}
