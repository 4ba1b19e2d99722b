package services

import (
	"context"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryCache_SetGet(t *testing.T) {
	ctx := context.Background()
	cache := NewMemoryCache(clockwork.NewFakeClock())

	require.True(t, cache.Set(ctx, "k", map[string]string{"hello": "world"}, time.Minute))

	raw, ok := cache.Get(ctx, "k")
	require.True(t, ok)
	assert.JSONEq(t, `{"hello":"world"}`, string(raw))
}

func TestMemoryCache_Miss(t *testing.T) {
	cache := NewMemoryCache(clockwork.NewFakeClock())

	_, ok := cache.Get(context.Background(), "absent")
	assert.False(t, ok)
}

func TestMemoryCache_Expiry(t *testing.T) {
	ctx := context.Background()
	clock := clockwork.NewFakeClock()
	cache := NewMemoryCache(clock)

	cache.Set(ctx, "k", "value", time.Minute)

	clock.Advance(59 * time.Second)
	_, ok := cache.Get(ctx, "k")
	assert.True(t, ok)

	clock.Advance(time.Second)
	_, ok = cache.Get(ctx, "k")
	assert.False(t, ok, "entry at exactly its expiry is expired")
}

func TestMemoryCache_SetOverwrites(t *testing.T) {
	ctx := context.Background()
	cache := NewMemoryCache(clockwork.NewFakeClock())

	cache.Set(ctx, "k", "first", time.Minute)
	cache.Set(ctx, "k", "second", time.Minute)

	raw, ok := cache.Get(ctx, "k")
	require.True(t, ok)
	assert.Equal(t, `"second"`, string(raw))
}

func TestMemoryCache_Delete(t *testing.T) {
	ctx := context.Background()
	cache := NewMemoryCache(clockwork.NewFakeClock())

	cache.Set(ctx, "k", "value", time.Minute)
	assert.True(t, cache.Delete(ctx, "k"))

	_, ok := cache.Get(ctx, "k")
	assert.False(t, ok)
}

func TestMemoryCache_ClearExpired(t *testing.T) {
	ctx := context.Background()
	clock := clockwork.NewFakeClock()
	cache := NewMemoryCache(clock)

	cache.Set(ctx, "short", "v", time.Minute)
	cache.Set(ctx, "long", "v", time.Hour)

	clock.Advance(30 * time.Minute)
	require.True(t, cache.ClearExpired(ctx))

	_, ok := cache.Get(ctx, "short")
	assert.False(t, ok)
	_, ok = cache.Get(ctx, "long")
	assert.True(t, ok)
}

func TestCacheGet_DecodeFailureIsMiss(t *testing.T) {
	ctx := context.Background()
	cache := NewMemoryCache(clockwork.NewFakeClock())

	cache.Set(ctx, "k", "not an object", time.Minute)

	var out map[string]int
	assert.False(t, cacheGet(ctx, cache, "k", &out))

	// The poisoned entry is dropped, not returned again.
	_, ok := cache.Get(ctx, "k")
	assert.False(t, ok)
}
