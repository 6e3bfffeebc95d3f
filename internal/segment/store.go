package segment

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"
)

var (
	// ErrNotFound is returned when the server reports the segment missing.
	ErrNotFound = errors.New("segment not found")
	// ErrBadStatus is returned for any other non-success response.
	ErrBadStatus = errors.New("unexpected response status")
	// ErrTooLarge is returned when a segment exceeds Config.MaxBytes.
	ErrTooLarge = errors.New("segment too large")
)

// Cache is the subset of a byte cache the store needs.
type Cache interface {
	Get(key string) ([]byte, bool)
	Put(key string, value []byte) error
	Delete(key string) error
	Contains(key string) bool
}

// Config holds store settings.
type Config struct {
	BaseURL           string        // root of the segment tree
	Timeout           time.Duration // per request
	RequestsPerSecond float64       // outbound request budget
	MaxBytes          int64         // download size cap
}

// DefaultConfig returns the default store configuration.
func DefaultConfig() Config {
	return Config{
		BaseURL:           "https://6d1564fa.terminal-551.pages.dev",
		Timeout:           15 * time.Second,
		RequestsPerSecond: 8,
		MaxBytes:          20 << 20,
	}
}

// Store resolves, probes and downloads question segments.
type Store struct {
	cfg     Config
	client  *http.Client
	limiter *rate.Limiter
	cache   Cache
	logger  *log.Logger

	flight singleflight.Group

	probeMu sync.Mutex
	probed  map[string]bool
}

// Option configures a Store.
type Option func(*Store)

// WithHTTPClient sets the HTTP client used for probes and downloads.
func WithHTTPClient(c *http.Client) Option {
	return func(s *Store) { s.client = c }
}

// WithCache puts a byte cache in front of downloads.
func WithCache(c Cache) Option {
	return func(s *Store) { s.cache = c }
}

// WithLogger sets the logger.
func WithLogger(l *log.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// NewStore validates cfg and returns a Store.
func NewStore(cfg Config, opts ...Option) (*Store, error) {
	u, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid segment base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid segment base url %q: scheme must be http or https", cfg.BaseURL)
	}

	def := DefaultConfig()
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = def.RequestsPerSecond
	}
	if cfg.MaxBytes <= 0 {
		cfg.MaxBytes = def.MaxBytes
	}

	s := &Store{
		cfg:     cfg,
		client:  http.DefaultClient,
		limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 2),
		probed:  make(map[string]bool),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = log.Default()
	}
	s.logger = s.logger.WithPrefix("segments")

	return s, nil
}

// Locate builds the locator of one part of a question. It performs no I/O;
// index is expected in [1, count] for the category.
func (s *Store) Locate(category string, index int, part Part) Locator {
	return Locator{
		Category: category,
		Index:    index,
		Part:     part,
		URL:      segmentURL(s.cfg.BaseURL, category, index, part),
	}
}

// Cue returns the locator of the bundled transition cue.
func (s *Store) Cue() Locator {
	return Locator{Asset: CueAsset}
}

// Exists reports whether a segment can be played. Only the optional clue
// segment is probed; everything else is assumed present. Any probe failure
// counts as absent. Definitive answers are remembered.
func (s *Store) Exists(ctx context.Context, loc Locator) bool {
	if !loc.Optional() {
		return true
	}

	key := loc.Key()
	s.probeMu.Lock()
	known, ok := s.probed[key]
	s.probeMu.Unlock()
	if ok {
		return known
	}

	exists, definitive := s.probe(ctx, loc)
	if definitive {
		s.probeMu.Lock()
		s.probed[key] = exists
		s.probeMu.Unlock()
	}
	return exists
}

func (s *Store) probe(ctx context.Context, loc Locator) (exists, definitive bool) {
	if err := s.limiter.Wait(ctx); err != nil {
		s.logger.Debug("probe cancelled", "segment", loc, "err", err)
		return false, false
	}

	ctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, loc.URL, nil)
	if err != nil {
		s.logger.Debug("probe request", "segment", loc, "err", err)
		return false, false
	}
	resp, err := s.client.Do(req)
	if err != nil {
		s.logger.Debug("probe failed", "segment", loc, "err", err)
		return false, false
	}
	_ = resp.Body.Close()

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return true, true
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone:
		return false, true
	default:
		s.logger.Debug("probe status", "segment", loc, "status", resp.StatusCode)
		return false, false
	}
}

// Fetch returns the encoded audio of a segment: bundled assets come from the
// binary, remote segments from the cache or a download. Concurrent fetches
// of the same segment share one download.
func (s *Store) Fetch(ctx context.Context, loc Locator) ([]byte, error) {
	if loc.Bundled() {
		return readAsset(loc.Asset)
	}

	key := loc.Key()
	if s.cache != nil {
		data, ok := s.cache.Get(key)
		if ok && len(data) > 0 {
			return data, nil
		}
		if ok {
			// a truncated entry is never playable
			s.logger.Debug("dropping empty cached segment", "segment", loc)
			_ = s.cache.Delete(key)
		}
	}

	v, err, _ := s.flight.Do(key, func() (any, error) {
		data, err := s.download(ctx, loc)
		if err != nil {
			return nil, err
		}
		if s.cache != nil {
			if err := s.cache.Put(key, data); err != nil {
				s.logger.Debug("segment not cached", "segment", loc, "err", err)
			}
		}
		return data, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]byte), nil
}

// Prefetch warms the cache for loc in the background unless it is already
// cached. Failures are logged.
func (s *Store) Prefetch(ctx context.Context, loc Locator) {
	if loc.Bundled() || s.cache == nil || s.cache.Contains(loc.Key()) {
		return
	}
	go func() {
		if _, err := s.Fetch(ctx, loc); err != nil && !errors.Is(err, context.Canceled) {
			s.logger.Debug("prefetch failed", "segment", loc, "err", err)
		}
	}()
}

func (s *Store) download(ctx context.Context, loc Locator) ([]byte, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, loc.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("unable to build request: %w", err)
	}

	start := time.Now()
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("unable to get %s: %w", loc, err)
	}
	defer resp.Body.Close() //nolint:errcheck

	switch {
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone:
		return nil, fmt.Errorf("%w: %s", ErrNotFound, loc)
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return nil, fmt.Errorf("%w: %s: HTTP %d", ErrBadStatus, loc, resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, s.cfg.MaxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("unable to read %s: %w", loc, err)
	}
	if int64(len(data)) > s.cfg.MaxBytes {
		return nil, fmt.Errorf("%w: %s exceeds %d bytes", ErrTooLarge, loc, s.cfg.MaxBytes)
	}

	s.logger.Debug("segment downloaded", "segment", loc, "bytes", len(data), "took", time.Since(start))
	return data, nil
}
