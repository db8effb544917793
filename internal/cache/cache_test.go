package cache_test

import (
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/feedgate/internal/cache"
	"github.com/jonesrussell/feedgate/internal/logger"
)

func newTestCache(t *testing.T) (*cache.RedisCache, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return cache.NewRedisCache(client, "feedgate", logger.NewNopLogger()), mr
}

func TestCacheSetGet(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := t.Context()

	type entry struct {
		Name   string `json:"name"`
		Active bool   `json:"active"`
	}

	require.NoError(t, c.Set(ctx, "destination:msn_news", entry{Name: "msn_news", Active: true}, 0))

	// Keys are namespaced under the prefix.
	assert.True(t, mr.Exists("feedgate:destination:msn_news"))

	var got entry
	require.NoError(t, c.Get(ctx, "destination:msn_news", &got))
	assert.Equal(t, entry{Name: "msn_news", Active: true}, got)
}

func TestCacheGetMiss(t *testing.T) {
	c, _ := newTestCache(t)

	var got map[string]any
	err := c.Get(t.Context(), "destination:absent", &got)
	assert.ErrorIs(t, err, cache.ErrMiss)
}

func TestCacheTTLExpiry(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := t.Context()

	require.NoError(t, c.Set(ctx, "destination:msn_news", "v", time.Minute))

	mr.FastForward(2 * time.Minute)

	var got string
	err := c.Get(ctx, "destination:msn_news", &got)
	assert.ErrorIs(t, err, cache.ErrMiss)
}

func TestCacheZeroTTLPersists(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := t.Context()

	require.NoError(t, c.Set(ctx, "destination:msn_news", "v", 0))

	mr.FastForward(24 * time.Hour)

	var got string
	require.NoError(t, c.Get(ctx, "destination:msn_news", &got))
	assert.Equal(t, "v", got)
}

func TestCacheInvalidate(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := t.Context()

	require.NoError(t, c.Set(ctx, "destination:msn_news", "a", 0))
	require.NoError(t, c.Set(ctx, "active_destinations", "b", 0))

	require.NoError(t, c.Invalidate(ctx, "destination:msn_news", "active_destinations"))

	var got string
	assert.ErrorIs(t, c.Get(ctx, "destination:msn_news", &got), cache.ErrMiss)
	assert.ErrorIs(t, c.Get(ctx, "active_destinations", &got), cache.ErrMiss)
}

func TestCacheInvalidateNoKeys(t *testing.T) {
	c, _ := newTestCache(t)
	assert.NoError(t, c.Invalidate(t.Context()))
}
