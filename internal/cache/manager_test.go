package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T) Config {
	t.Helper()
	return Config{
		MemoryCapacity:   1024,
		DiskCapacity:     10240,
		DiskPath:         t.TempDir(),
		CompressionLevel: 3,
	}
}

func TestManager_BasicOperations(t *testing.T) {
	m, err := NewManager(testConfig(t), nil)
	require.NoError(t, err)
	defer m.Close() //nolint:errcheck

	require.NoError(t, m.Put("science/1/3", []byte("answer")))

	got, ok := m.Get("science/1/3")
	require.True(t, ok)
	assert.Equal(t, []byte("answer"), got)
	assert.True(t, m.Contains("science/1/3"))

	require.NoError(t, m.Delete("science/1/3"))
	_, ok = m.Get("science/1/3")
	assert.False(t, ok)
}

func TestManager_DiskPath(t *testing.T) {
	cfg := testConfig(t)
	m, err := NewManager(cfg, nil)
	require.NoError(t, err)
	defer m.Close() //nolint:errcheck
	assert.Equal(t, cfg.DiskPath, m.DiskPath())

	memOnly, err := NewManager(Config{MemoryCapacity: 1024}, nil)
	require.NoError(t, err)
	defer memOnly.Close() //nolint:errcheck
	assert.Empty(t, memOnly.DiskPath())
}

func TestManager_PromotesDiskHitsToMemory(t *testing.T) {
	m, err := NewManager(testConfig(t), nil)
	require.NoError(t, err)
	defer m.Close() //nolint:errcheck

	require.NoError(t, m.disk.Put("k", []byte("from disk")))
	assert.False(t, m.memory.Contains("k"))

	got, ok := m.Get("k")
	require.True(t, ok)
	assert.Equal(t, []byte("from disk"), got)
	assert.True(t, m.memory.Contains("k"))
}

func TestManager_LargeValueSkipsMemory(t *testing.T) {
	m, err := NewManager(testConfig(t), nil)
	require.NoError(t, err)
	defer m.Close() //nolint:errcheck

	require.NoError(t, m.Put("big", make([]byte, 2048)))
	assert.False(t, m.memory.Contains("big"))
	assert.True(t, m.disk.Contains("big"))
}

func TestManager_MemoryOnly(t *testing.T) {
	m, err := NewManager(Config{MemoryCapacity: 100}, nil)
	require.NoError(t, err)
	defer m.Close() //nolint:errcheck

	require.NoError(t, m.Put("k", []byte("v")))
	assert.True(t, m.Contains("k"))

	stats := m.TierStats()
	assert.Contains(t, stats, LevelMemory)
	assert.NotContains(t, stats, LevelDisk)
}

func TestManager_StatsAggregate(t *testing.T) {
	m, err := NewManager(testConfig(t), nil)
	require.NoError(t, err)
	defer m.Close() //nolint:errcheck

	require.NoError(t, m.Put("k", []byte("v")))
	m.Get("k")
	m.Get("missing")

	stats := m.Stats()
	assert.Equal(t, int64(2), stats.ItemCount)
	assert.Equal(t, int64(1), stats.Hits)
	// a full miss is counted by both tiers
	assert.Equal(t, int64(2), stats.Misses)
}

func TestManager_CleanupLoopPrunesExpired(t *testing.T) {
	cfg := testConfig(t)
	cfg.TTL = 10 * time.Millisecond
	cfg.CleanupInterval = 5 * time.Millisecond

	m, err := NewManager(cfg, nil)
	require.NoError(t, err)
	defer m.Close() //nolint:errcheck

	require.NoError(t, m.Put("k", []byte("v")))
	assert.Eventually(t, func() bool { return !m.Contains("k") }, time.Second, 5*time.Millisecond)
}

func TestManager_CloseIsIdempotent(t *testing.T) {
	m, err := NewManager(testConfig(t), nil)
	require.NoError(t, err)
	require.NoError(t, m.Close())
	require.NoError(t, m.Close())
}
