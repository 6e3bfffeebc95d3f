package main

import (
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/mitchellh/go-homedir"
	gap "github.com/muesli/go-app-paths"
	"github.com/spf13/viper"

	"github.com/dgnsrekt/quizbuzz/internal/audio"
	"github.com/dgnsrekt/quizbuzz/internal/cache"
	"github.com/dgnsrekt/quizbuzz/internal/catalog"
	"github.com/dgnsrekt/quizbuzz/internal/segment"
)

const megabyte = 1 << 20

// settings gathers component configuration from viper.
type settings struct {
	Segments segment.Config
	Catalog  catalog.Config
	Cache    cache.Config
	Audio    audio.OtoConfig
}

func setDefaults() {
	seg := segment.DefaultConfig()
	viper.SetDefault("segments.base_url", seg.BaseURL)
	viper.SetDefault("segments.timeout", seg.Timeout)
	viper.SetDefault("segments.requests_per_second", seg.RequestsPerSecond)
	viper.SetDefault("segments.max_bytes", seg.MaxBytes)

	viper.SetDefault("catalog.index_url", "")
	viper.SetDefault("catalog.dataset_dir", "")

	viper.SetDefault("cache.dir", "")
	viper.SetDefault("cache.memory_mb", 64)
	viper.SetDefault("cache.disk_mb", 512)
	viper.SetDefault("cache.ttl_days", 7)

	dev := audio.DefaultOtoConfig()
	viper.SetDefault("audio.sample_rate", dev.SampleRate)
	viper.SetDefault("audio.volume", dev.Volume)

	viper.SetDefault("log.level", "info")
}

func loadSettings() (settings, error) {
	var s settings

	s.Segments = segment.Config{
		BaseURL:           viper.GetString("segments.base_url"),
		Timeout:           viper.GetDuration("segments.timeout"),
		RequestsPerSecond: viper.GetFloat64("segments.requests_per_second"),
		MaxBytes:          viper.GetInt64("segments.max_bytes"),
	}

	indexURL := viper.GetString("catalog.index_url")
	if indexURL == "" {
		indexURL = strings.TrimRight(s.Segments.BaseURL, "/") + "/index.json"
	}
	datasetDir, err := homedir.Expand(viper.GetString("catalog.dataset_dir"))
	if err != nil {
		return s, fmt.Errorf("invalid catalog.dataset_dir: %w", err)
	}
	s.Catalog = catalog.Config{
		IndexURL:   indexURL,
		DatasetDir: datasetDir,
		Timeout:    s.Segments.Timeout,
		Client:     &http.Client{},
	}

	cacheDir, err := segmentCacheDir()
	if err != nil {
		return s, err
	}
	s.Cache = cache.DefaultConfig()
	s.Cache.DiskPath = cacheDir
	s.Cache.MemoryCapacity = viper.GetInt64("cache.memory_mb") * megabyte
	s.Cache.DiskCapacity = viper.GetInt64("cache.disk_mb") * megabyte
	s.Cache.TTL = time.Duration(viper.GetInt("cache.ttl_days")) * 24 * time.Hour

	s.Audio = audio.DefaultOtoConfig()
	s.Audio.SampleRate = viper.GetInt("audio.sample_rate")
	s.Audio.Volume = viper.GetFloat64("audio.volume")

	return s, nil
}

// segmentCacheDir returns cache.dir with ~ expanded, or the per-user cache
// directory.
func segmentCacheDir() (string, error) {
	if dir := viper.GetString("cache.dir"); dir != "" {
		expanded, err := homedir.Expand(dir)
		if err != nil {
			return "", fmt.Errorf("invalid cache.dir: %w", err)
		}
		return expanded, nil
	}

	dir, err := gap.NewScope(gap.User, "quizbuzz").CacheDir()
	if err != nil {
		return "", fmt.Errorf("unable to find cache directory: %w", err)
	}
	return filepath.Join(dir, "segments"), nil
}
