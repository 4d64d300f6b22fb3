package repository

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) (*RedisAvailabilityCache, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return NewRedisAvailabilityCache(client, 5*time.Second), mr
}

func TestAvailabilityCache_SetGetInvalidate(t *testing.T) {
	cache, mr := newTestCache(t)
	ctx := context.Background()

	_, gen, ok := cache.Get(ctx, 1)
	assert.False(t, ok)

	cache.Set(ctx, 1, 42, gen)
	got, _, ok := cache.Get(ctx, 1)
	require.True(t, ok)
	assert.Equal(t, 42, got)
	assert.True(t, mr.Exists("stock:available:1"))

	cache.Invalidate(ctx, 1)
	_, _, ok = cache.Get(ctx, 1)
	assert.False(t, ok)
}

func TestAvailabilityCache_SetAfterInvalidateIsDropped(t *testing.T) {
	cache, mr := newTestCache(t)
	ctx := context.Background()

	// reader misses, then a mutation invalidates before the reader stores
	_, gen, ok := cache.Get(ctx, 1)
	require.False(t, ok)
	cache.Invalidate(ctx, 1)
	cache.Set(ctx, 1, 10, gen)

	_, _, ok = cache.Get(ctx, 1)
	assert.False(t, ok)
	assert.False(t, mr.Exists("stock:available:1"))

	// a reader that starts after the invalidation may store again
	_, gen, ok = cache.Get(ctx, 1)
	require.False(t, ok)
	cache.Set(ctx, 1, 7, gen)
	got, _, ok := cache.Get(ctx, 1)
	require.True(t, ok)
	assert.Equal(t, 7, got)
}

func TestAvailabilityCache_GenerationOutlivesValue(t *testing.T) {
	cache, mr := newTestCache(t)
	ctx := context.Background()

	cache.Invalidate(ctx, 4)
	cache.Invalidate(ctx, 4)
	mr.FastForward(time.Hour)

	_, gen, ok := cache.Get(ctx, 4)
	assert.False(t, ok)
	assert.Equal(t, int64(2), gen)
	assert.Zero(t, mr.TTL("stock:available:4:gen"))
}

func TestAvailabilityCache_EntriesExpire(t *testing.T) {
	cache, mr := newTestCache(t)
	ctx := context.Background()

	cache.Set(ctx, 7, 3, 0)
	mr.FastForward(6 * time.Second)

	_, _, ok := cache.Get(ctx, 7)
	assert.False(t, ok)
}

func TestAvailabilityCache_BackendDownIsMiss(t *testing.T) {
	cache, mr := newTestCache(t)
	ctx := context.Background()

	cache.Set(ctx, 1, 10, 0)
	mr.Close()

	_, _, ok := cache.Get(ctx, 1)
	assert.False(t, ok)
	cache.Set(ctx, 1, 10, 0)
	cache.Invalidate(ctx, 1)
}

func TestAvailabilityCache_NilIsNoop(t *testing.T) {
	cache := NewRedisAvailabilityCache(nil, time.Second)
	ctx := context.Background()

	cache.Set(ctx, 1, 10, 0)
	_, _, ok := cache.Get(ctx, 1)
	assert.False(t, ok)
	cache.Invalidate(ctx, 1)
}
