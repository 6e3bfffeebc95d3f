package catalog

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"sort"
	"sync"
)

var (
	// ErrUnknownCategory is returned for a category with no questions.
	ErrUnknownCategory = errors.New("unknown category")
	// ErrBadIndex is returned when the index document is unusable.
	ErrBadIndex = errors.New("invalid question index")
)

// Category is a named partition of questions, numbered 1..Count.
type Category struct {
	Name  string
	Count int
}

// Record is the text of one question. Records are immutable.
type Record struct {
	Index    int    `yaml:"index"`
	Question string `yaml:"question"`
	Answer   string `yaml:"answer"`
}

// Intn is the randomness the catalog needs. *rand.Rand satisfies it.
type Intn interface {
	IntN(n int) int
}

type globalRand struct{}

func (globalRand) IntN(n int) int { return rand.IntN(n) }

// Catalog answers count, random selection and text lookups.
type Catalog struct {
	counts  map[string]int
	records map[string]map[int]Record

	randMu sync.Mutex
	rng    Intn
}

// Option configures a Catalog.
type Option func(*Catalog)

// WithRand sets the random source used by RandomIndex.
func WithRand(r Intn) Option {
	return func(c *Catalog) { c.rng = r }
}

// New builds a catalog from per-category counts and text datasets. Counts
// are copied; categories with a non-positive count are ignored.
func New(counts map[string]int, datasets map[string][]Record, opts ...Option) *Catalog {
	c := &Catalog{
		counts:  make(map[string]int, len(counts)),
		records: make(map[string]map[int]Record, len(datasets)),
		rng:     globalRand{},
	}
	for name, n := range counts {
		if n > 0 {
			c.counts[name] = n
		}
	}
	for name, recs := range datasets {
		byIndex := make(map[int]Record, len(recs))
		for _, r := range recs {
			byIndex[r.Index] = r
		}
		c.records[name] = byIndex
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Categories returns every category with questions, sorted by name.
func (c *Catalog) Categories() []Category {
	out := make([]Category, 0, len(c.counts))
	for name, n := range c.counts {
		out = append(out, Category{Name: name, Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// CategoryCount returns the number of questions in category, 0 if unknown.
func (c *Catalog) CategoryCount(category string) int {
	return c.counts[category]
}

// RandomIndex picks a question uniformly from the inclusive range
// [1, CategoryCount(category)].
func (c *Catalog) RandomIndex(category string) (int, error) {
	n := c.counts[category]
	if n <= 0 {
		return 0, fmt.Errorf("%w: %q", ErrUnknownCategory, category)
	}

	c.randMu.Lock()
	defer c.randMu.Unlock()
	return c.rng.IntN(n) + 1, nil
}

// Record looks up the text of question index (1-based). It never panics: a
// valid index without text yields a record carrying only the index and
// ok == false.
func (c *Catalog) Record(category string, index int) (Record, bool) {
	if r, ok := c.records[category][index]; ok {
		return r, true
	}
	return Record{Index: index}, false
}
