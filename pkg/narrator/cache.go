package narrator

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const cacheKeyPrefix = "wavefront:narration:"

// Cache memoizes narration responses in Redis, keyed by a snapshot
// fingerprint. Identical traversal states reuse the cached text
// instead of a repeat model round-trip. Any Redis failure degrades
// silently to a live call.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCache creates a cache over an existing Redis client.
func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	return &Cache{client: client, ttl: ttl}
}

// NewCacheAddr dials addr and verifies connectivity before returning
// a cache.
func NewCacheAddr(ctx context.Context, addr string, ttl time.Duration) (*Cache, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to ping redis at %s: %w", addr, err)
	}
	return NewCache(client, ttl), nil
}

// Get returns a cached narration for the fingerprint, if any.
func (c *Cache) Get(ctx context.Context, fingerprint string) (string, bool) {
	text, err := c.client.Get(ctx, cacheKeyPrefix+fingerprint).Result()
	if err != nil {
		if err != redis.Nil {
			slog.Warn("narration cache read failed", "error", err)
		}
		return "", false
	}
	return text, true
}

// Set stores a narration under the fingerprint with the cache TTL.
func (c *Cache) Set(ctx context.Context, fingerprint, text string) {
	if err := c.client.Set(ctx, cacheKeyPrefix+fingerprint, text, c.ttl).Err(); err != nil {
		slog.Warn("narration cache write failed", "error", err)
	}
}

// Close releases the underlying Redis client.
func (c *Cache) Close() error {
	return c.client.Close()
}
