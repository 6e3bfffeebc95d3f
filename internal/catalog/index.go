package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/charmbracelet/log"
)

const maxIndexBytes = 1 << 20

// LoadIndex fetches the JSON index mapping category names to question
// counts, e.g. {"science": 120, "history": 95}.
func LoadIndex(ctx context.Context, client *http.Client, url string) (map[string]int, error) {
	if client == nil {
		client = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("unable to build index request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("unable to get index: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: HTTP status %d", ErrBadIndex, resp.StatusCode)
	}

	return ParseIndex(io.LimitReader(resp.Body, maxIndexBytes))
}

// ParseIndex decodes an index document. Entries that are not a positive
// integer count (metadata such as a version string) are skipped; at least
// one category must remain.
func ParseIndex(r io.Reader) (map[string]int, error) {
	var raw map[string]json.RawMessage
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadIndex, err)
	}

	counts := make(map[string]int, len(raw))
	for name, value := range raw {
		var n int
		if err := json.Unmarshal(value, &n); err != nil || n <= 0 || name == "" {
			log.Debug("index entry skipped", "key", name, "value", string(value))
			continue
		}
		counts[name] = n
	}
	if len(counts) == 0 {
		return nil, fmt.Errorf("%w: no categories", ErrBadIndex)
	}
	return counts, nil
}
