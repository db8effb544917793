// Package cache provides a Redis-backed key/value cache with explicit
// invalidation, used by the destination registry.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jonesrussell/feedgate/internal/logger"
)

// ErrMiss is returned by Get when the key is absent.
var ErrMiss = errors.New("cache miss")

// Cache defines the get/set/invalidate contract. Every write path that
// mutates a cached entity must invalidate both the specific key and any
// aggregate key derived from it.
type Cache interface {
	Get(ctx context.Context, key string, target any) error
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Invalidate(ctx context.Context, keys ...string) error
}

// RedisCache implements Cache on a Redis client with JSON-encoded values.
type RedisCache struct {
	client redis.UniversalClient
	prefix string
	logger logger.Logger
}

// NewRedisCache creates a new Redis-backed cache. All keys are namespaced
// under the given prefix.
func NewRedisCache(client redis.UniversalClient, prefix string, log logger.Logger) *RedisCache {
	return &RedisCache{
		client: client,
		prefix: prefix,
		logger: log,
	}
}

func (c *RedisCache) key(key string) string {
	return c.prefix + ":" + key
}

// Get retrieves and decodes the value stored under key into target.
// Returns ErrMiss when the key is absent.
func (c *RedisCache) Get(ctx context.Context, key string, target any) error {
	data, err := c.client.Get(ctx, c.key(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return ErrMiss
		}
		return fmt.Errorf("cache get %q: %w", key, err)
	}

	if unmarshalErr := json.Unmarshal(data, target); unmarshalErr != nil {
		return fmt.Errorf("cache decode %q: %w", key, unmarshalErr)
	}
	return nil
}

// Set stores value under key with the given TTL. A zero TTL means the entry
// lives until explicitly invalidated.
func (c *RedisCache) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache encode %q: %w", key, err)
	}

	if setErr := c.client.Set(ctx, c.key(key), data, ttl).Err(); setErr != nil {
		return fmt.Errorf("cache set %q: %w", key, setErr)
	}
	return nil
}

// Invalidate removes the given keys.
func (c *RedisCache) Invalidate(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}

	namespaced := make([]string, 0, len(keys))
	for _, k := range keys {
		namespaced = append(namespaced, c.key(k))
	}

	if err := c.client.Del(ctx, namespaced...).Err(); err != nil {
		return fmt.Errorf("cache invalidate: %w", err)
	}

	c.logger.Debug("cache keys invalidated", logger.Strings("keys", keys))
	return nil
}
