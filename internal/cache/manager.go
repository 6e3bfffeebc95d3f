package cache

import (
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

// Manager coordinates the memory and disk tiers: reads fall through L1 to
// L2 and promote disk hits into memory, writes go to both.
type Manager struct {
	memory *MemoryCache // nil when disabled
	disk   *DiskCache   // nil when disabled
	config Config
	logger *log.Logger

	cleanupStop chan struct{}
	cleanupWg   sync.WaitGroup
	closeOnce   sync.Once
}

// NewManager builds the tiers enabled by cfg and starts the background
// TTL cleaner when configured.
func NewManager(cfg Config, logger *log.Logger) (*Manager, error) {
	if logger == nil {
		logger = log.Default()
	}

	m := &Manager{
		config:      cfg,
		logger:      logger.WithPrefix("cache"),
		cleanupStop: make(chan struct{}),
	}

	if cfg.MemoryCapacity > 0 {
		m.memory = NewMemoryCache(cfg.MemoryCapacity)
	}
	if cfg.DiskCapacity > 0 && cfg.DiskPath != "" {
		disk, err := NewDiskCache(cfg.DiskPath, cfg.DiskCapacity, cfg.CompressionLevel)
		if err != nil {
			return nil, err
		}
		m.disk = disk
	}

	if cfg.CleanupInterval > 0 && cfg.TTL > 0 {
		m.cleanup()
		m.cleanupWg.Add(1)
		go m.cleanupLoop()
	}

	return m, nil
}

// Get checks memory, then disk.
func (m *Manager) Get(key string) ([]byte, bool) {
	if m.memory != nil {
		if data, ok := m.memory.Get(key); ok {
			return data, true
		}
	}
	if m.disk != nil {
		if data, ok := m.disk.Get(key); ok {
			if m.memory != nil {
				_ = m.memory.Put(key, data)
			}
			return data, true
		}
	}
	return nil, false
}

// Put writes to every enabled tier. A value too large for memory may still
// land on disk; only a disk failure is reported.
func (m *Manager) Put(key string, value []byte) error {
	if m.memory != nil {
		if err := m.memory.Put(key, value); err != nil {
			m.logger.Debug("memory cache rejected segment", "key", key, "err", err)
		}
	}
	if m.disk != nil {
		return m.disk.Put(key, value)
	}
	return nil
}

// Delete removes key from every tier.
func (m *Manager) Delete(key string) error {
	if m.memory != nil {
		_ = m.memory.Delete(key)
	}
	if m.disk != nil {
		return m.disk.Delete(key)
	}
	return nil
}

// Clear empties every tier.
func (m *Manager) Clear() error {
	if m.memory != nil {
		_ = m.memory.Clear()
	}
	if m.disk != nil {
		return m.disk.Clear()
	}
	return nil
}

// Contains reports whether any tier holds key.
func (m *Manager) Contains(key string) bool {
	return (m.memory != nil && m.memory.Contains(key)) ||
		(m.disk != nil && m.disk.Contains(key))
}

// Stats aggregates both tiers.
func (m *Manager) Stats() Stats {
	var total Stats
	for _, s := range m.tierStats() {
		total.Capacity += s.Capacity
		total.Size += s.Size
		total.ItemCount += s.ItemCount
		total.Hits += s.Hits
		total.Misses += s.Misses
		total.Evictions += s.Evictions
	}
	total.computeHitRate()
	return total
}

// DiskPath returns the directory of the disk tier, or "" when it is
// disabled.
func (m *Manager) DiskPath() string {
	if m.disk == nil {
		return ""
	}
	return m.disk.Path()
}

// TierStats returns per-tier statistics keyed by level.
func (m *Manager) TierStats() map[Level]Stats {
	return m.tierStats()
}

func (m *Manager) tierStats() map[Level]Stats {
	out := make(map[Level]Stats, 2)
	if m.memory != nil {
		out[LevelMemory] = m.memory.Stats()
	}
	if m.disk != nil {
		out[LevelDisk] = m.disk.Stats()
	}
	return out
}

// Close stops the cleaner and persists the disk index.
func (m *Manager) Close() error {
	var err error
	m.closeOnce.Do(func() {
		close(m.cleanupStop)
		m.cleanupWg.Wait()
		if m.disk != nil {
			err = m.disk.Close()
		}
	})
	return err
}

func (m *Manager) cleanupLoop() {
	defer m.cleanupWg.Done()

	ticker := time.NewTicker(m.config.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-m.cleanupStop:
			return
		case <-ticker.C:
			m.cleanup()
		}
	}
}

func (m *Manager) cleanup() {
	removed := 0
	if m.memory != nil {
		removed += m.memory.Prune(m.config.TTL)
	}
	if m.disk != nil {
		removed += m.disk.RemoveOlderThan(time.Now().Add(-m.config.TTL))
	}
	if removed > 0 {
		m.logger.Debug("pruned expired segments", "count", removed)
	}
}
