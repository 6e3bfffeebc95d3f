package cache

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryCache_BasicOperations(t *testing.T) {
	cache := NewMemoryCache(1024)

	require.NoError(t, cache.Put("science/1/1", []byte("segment")))

	got, ok := cache.Get("science/1/1")
	require.True(t, ok)
	assert.Equal(t, []byte("segment"), got)
	assert.True(t, cache.Contains("science/1/1"))
	assert.Equal(t, int64(7), cache.Stats().Size)

	require.NoError(t, cache.Delete("science/1/1"))
	assert.False(t, cache.Contains("science/1/1"))
	assert.Zero(t, cache.Stats().Size)

	// deleting a missing key is fine
	assert.NoError(t, cache.Delete("missing"))
}

func TestMemoryCache_LRUEviction(t *testing.T) {
	cache := NewMemoryCache(100)

	for i := 0; i < 5; i++ {
		require.NoError(t, cache.Put(fmt.Sprintf("key-%d", i), make([]byte, 20)))
	}

	cache.Get("key-0")
	cache.Get("key-1")

	require.NoError(t, cache.Put("key-new", make([]byte, 30)))

	assert.False(t, cache.Contains("key-2"), "least recently used entry should be evicted")
	assert.False(t, cache.Contains("key-3"))
	for _, k := range []string{"key-0", "key-1", "key-4", "key-new"} {
		assert.True(t, cache.Contains(k), k)
	}

	stats := cache.Stats()
	assert.Equal(t, int64(2), stats.Evictions)
	assert.LessOrEqual(t, stats.Size, int64(100))
}

func TestMemoryCache_ReplaceKeepsSizeAccurate(t *testing.T) {
	cache := NewMemoryCache(100)

	require.NoError(t, cache.Put("k", make([]byte, 40)))
	require.NoError(t, cache.Put("k", make([]byte, 10)))

	stats := cache.Stats()
	assert.Equal(t, int64(10), stats.Size)
	assert.Equal(t, int64(1), stats.ItemCount)
}

func TestMemoryCache_ItemTooLarge(t *testing.T) {
	cache := NewMemoryCache(10)
	assert.ErrorIs(t, cache.Put("big", make([]byte, 11)), ErrItemTooLarge)
}

func TestMemoryCache_HitRate(t *testing.T) {
	cache := NewMemoryCache(100)
	require.NoError(t, cache.Put("a", []byte("x")))

	cache.Get("a")
	cache.Get("a")
	cache.Get("b")

	stats := cache.Stats()
	assert.Equal(t, int64(2), stats.Hits)
	assert.Equal(t, int64(1), stats.Misses)
	assert.InDelta(t, 2.0/3.0, stats.HitRate, 0.0001)
}

func TestMemoryCache_Prune(t *testing.T) {
	cache := NewMemoryCache(100)
	require.NoError(t, cache.Put("old", []byte("x")))
	time.Sleep(20 * time.Millisecond)
	require.NoError(t, cache.Put("new", []byte("y")))

	assert.Equal(t, 1, cache.Prune(10*time.Millisecond))
	assert.False(t, cache.Contains("old"))
	assert.True(t, cache.Contains("new"))
}
