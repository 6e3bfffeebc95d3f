package cache

import (
	"errors"
	"time"
)

var (
	// ErrItemTooLarge is returned when an item exceeds the cache capacity.
	ErrItemTooLarge = errors.New("item too large for cache")

	// ErrClosed is returned by operations on a closed cache.
	ErrClosed = errors.New("cache is closed")
)

// Level identifies a cache tier.
type Level int

const (
	// LevelMemory is the in-process LRU.
	LevelMemory Level = iota
	// LevelDisk is the persistent compressed store.
	LevelDisk
)

// String returns the string representation of the cache level.
func (l Level) String() string {
	switch l {
	case LevelMemory:
		return "memory"
	case LevelDisk:
		return "disk"
	default:
		return "unknown"
	}
}

// Stats holds cache performance metrics.
type Stats struct {
	Capacity  int64 // bytes
	Size      int64 // bytes currently held
	ItemCount int64
	Hits      int64
	Misses    int64
	Evictions int64
	HitRate   float64
}

func (s *Stats) computeHitRate() {
	if total := s.Hits + s.Misses; total > 0 {
		s.HitRate = float64(s.Hits) / float64(total)
	}
}

// Config holds configuration for a Manager.
type Config struct {
	MemoryCapacity int64 // bytes; 0 disables L1

	DiskCapacity     int64  // bytes; 0 disables L2
	DiskPath         string // directory for cache files
	CompressionLevel int    // zstd level (1-22), 0 disables compression

	TTL             time.Duration // entries older than this are pruned
	CleanupInterval time.Duration // 0 disables the background cleaner
}

// DefaultConfig returns the default cache configuration. DiskPath is left
// empty; callers decide where segments live.
func DefaultConfig() Config {
	return Config{
		MemoryCapacity:   64 * 1024 * 1024,
		DiskCapacity:     512 * 1024 * 1024,
		CompressionLevel: 3,
		TTL:              7 * 24 * time.Hour,
		CleanupInterval:  time.Hour,
	}
}
