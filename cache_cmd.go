package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/dgnsrekt/quizbuzz/internal/cache"
)

var (
	cacheCmd = &cobra.Command{
		Use:   "cache",
		Short: "Inspect or clear downloaded question audio",
		Args:  cobra.NoArgs,
	}

	cacheInfoCmd = &cobra.Command{
		Use:     "info",
		Short:   "Show where segments are cached and how much space they use",
		Example: paragraph("quizbuzz cache info"),
		Args:    cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			m, cfg, err := openCache()
			if err != nil {
				return err
			}
			defer m.Close() //nolint:errcheck

			location := m.DiskPath()
			if location == "" {
				location = "none (disk cache disabled)"
			}
			fmt.Printf("%s %s\n", keyword("Location:"), location)
			tiers := m.TierStats()
			for _, level := range []cache.Level{cache.LevelMemory, cache.LevelDisk} {
				s, ok := tiers[level]
				if !ok {
					fmt.Printf("%s disabled\n", keyword(level.String()+":"))
					continue
				}
				fmt.Printf("%s %d segments, %s of %s\n",
					keyword(level.String()+":"),
					s.ItemCount,
					humanize.IBytes(uint64(s.Size)),     //nolint:gosec
					humanize.IBytes(uint64(s.Capacity)), //nolint:gosec
				)
			}
			fmt.Printf("%s %s\n", keyword("Expires after:"), cfg.TTL)
			return nil
		},
	}

	cacheClearCmd = &cobra.Command{
		Use:     "clear",
		Short:   "Delete every cached segment",
		Example: paragraph("quizbuzz cache clear"),
		Args:    cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			m, cfg, err := openCache()
			if err != nil {
				return err
			}
			defer m.Close() //nolint:errcheck

			before := m.Stats()
			if err := m.Clear(); err != nil {
				return fmt.Errorf("unable to clear cache: %w", err)
			}
			log.Info("segment cache cleared", "dir", cfg.DiskPath, "segments", before.ItemCount)
			fmt.Fprintf(os.Stdout, "Removed %d segments (%s) from %s\n",
				before.ItemCount, humanize.IBytes(uint64(before.Size)), cfg.DiskPath) //nolint:gosec
			return nil
		},
	}
)

// openCache opens the configured disk tier without starting the TTL
// cleaner, so inspecting the cache never changes it.
func openCache() (*cache.Manager, cache.Config, error) {
	s, err := loadSettings()
	if err != nil {
		return nil, cache.Config{}, err
	}
	cfg := s.Cache
	cfg.CleanupInterval = 0
	m, err := cache.NewManager(cfg, log.Default())
	if err != nil {
		return nil, cfg, fmt.Errorf("unable to open cache: %w", err)
	}
	return m, cfg, nil
}

func init() {
	cacheCmd.AddCommand(cacheInfoCmd, cacheClearCmd)
}
