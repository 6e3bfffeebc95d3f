package catalog

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"
)

// Config describes where the catalog comes from.
type Config struct {
	IndexURL   string
	DatasetDir string // empty uses the bundled datasets
	Timeout    time.Duration
	Client     *http.Client
}

// Load fetches the index and reads the text datasets concurrently. Missing
// text is not an error; a missing or invalid index is.
func Load(ctx context.Context, cfg Config, logger *log.Logger, opts ...Option) (*Catalog, error) {
	if logger == nil {
		logger = log.Default()
	}
	logger = logger.WithPrefix("catalog")

	if cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}

	var (
		counts   map[string]int
		datasets map[string][]Record
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		counts, err = LoadIndex(gctx, cfg.Client, cfg.IndexURL)
		return err
	})
	g.Go(func() error {
		var err error
		if cfg.DatasetDir != "" {
			datasets, err = DirDatasets(cfg.DatasetDir)
		} else {
			datasets, err = BundledDatasets()
		}
		if err != nil {
			logger.Warn("question text unavailable", "err", err)
			datasets = nil
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("unable to load catalog: %w", err)
	}

	for name := range counts {
		if len(datasets[name]) == 0 {
			logger.Debug("no question text for category", "category", name)
		}
	}
	logger.Info("catalog loaded", "categories", len(counts))

	return New(counts, datasets, opts...), nil
}
