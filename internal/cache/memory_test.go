package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryClientRoundTrip(t *testing.T) {
	c := NewMemoryClient(100)
	ctx := context.Background()

	_, err := c.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrCacheMiss)

	require.NoError(t, c.Set(ctx, "k1", []byte("v1"), time.Minute))
	got, err := c.Get(ctx, "k1")
	require.NoError(t, err)
	assert.Equal(t, []byte("v1"), got)

	require.NoError(t, c.Delete(ctx, "k1"))
	_, err = c.Get(ctx, "k1")
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestMemoryClientTTLExpiry(t *testing.T) {
	c := NewMemoryClient(100)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "short", []byte("v"), 10*time.Millisecond))
	time.Sleep(30 * time.Millisecond)

	_, err := c.Get(ctx, "short")
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestMemoryClientDeleteByPrefix(t *testing.T) {
	c := NewMemoryClient(100)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "w:abc:tenant", []byte("1"), time.Minute))
	require.NoError(t, c.Set(ctx, "w:abc:other", []byte("2"), time.Minute))
	require.NoError(t, c.Set(ctx, "w:xyz:tenant", []byte("3"), time.Minute))

	require.NoError(t, c.DeleteByPrefix(ctx, "w:abc:"))

	_, err := c.Get(ctx, "w:abc:tenant")
	assert.ErrorIs(t, err, ErrCacheMiss)
	_, err = c.Get(ctx, "w:abc:other")
	assert.ErrorIs(t, err, ErrCacheMiss)

	got, err := c.Get(ctx, "w:xyz:tenant")
	require.NoError(t, err)
	assert.Equal(t, []byte("3"), got)
}

func TestMemoryClientEviction(t *testing.T) {
	c := NewMemoryClient(2)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "a", []byte("1"), time.Minute))
	require.NoError(t, c.Set(ctx, "b", []byte("2"), 2*time.Minute))
	require.NoError(t, c.Set(ctx, "c", []byte("3"), 3*time.Minute))

	// "a" had the earliest expiry and is evicted to make room.
	_, err := c.Get(ctx, "a")
	assert.ErrorIs(t, err, ErrCacheMiss)

	_, err = c.Get(ctx, "b")
	assert.NoError(t, err)
	_, err = c.Get(ctx, "c")
	assert.NoError(t, err)
}

func TestCacheKeyHelpers(t *testing.T) {
	assert.Equal(t, "a:b:c", CacheKey("a", "b", "c"))
	assert.Equal(t, "t:tid:faqs", TenantCacheKey("tid", "faqs"))
	assert.Equal(t, "w:wk_123:tenant", WidgetCacheKey("wk_123", "tenant"))
}
