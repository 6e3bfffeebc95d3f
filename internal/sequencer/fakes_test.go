package sequencer

import (
	"context"
	"fmt"
	"sync"

	"github.com/dgnsrekt/quizbuzz/internal/catalog"
	"github.com/dgnsrekt/quizbuzz/internal/segment"
)

type playCall struct {
	loc      segment.Locator
	onFinish func()
}

// fakePlayer records Play calls; tests complete them with finish.
type fakePlayer struct {
	mu    sync.Mutex
	calls []playCall
	stops int
}

func (p *fakePlayer) Play(_ context.Context, loc segment.Locator, onFinish func()) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = append(p.calls, playCall{loc: loc, onFinish: onFinish})
}

func (p *fakePlayer) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stops++
}

// finish runs the completion callback of the i-th Play call.
func (p *fakePlayer) finish(i int) {
	p.mu.Lock()
	fn := p.calls[i].onFinish
	p.mu.Unlock()
	fn()
}

// finishLast completes the most recent Play call.
func (p *fakePlayer) finishLast() {
	p.finish(p.count() - 1)
}

func (p *fakePlayer) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.calls)
}

func (p *fakePlayer) stopCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stops
}

// played lists the locators passed to Play as strings.
func (p *fakePlayer) played() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.calls))
	for i, c := range p.calls {
		out[i] = c.loc.String()
	}
	return out
}

// fakeSegments answers Exists from a per-index table. When gate is set,
// probes block until it is closed or their context ends.
type fakeSegments struct {
	mu         sync.Mutex
	absent     map[int]bool
	gate       chan struct{}
	probes     int
	probeErr   error
	prefetched []string
}

func newFakeSegments() *fakeSegments {
	return &fakeSegments{absent: map[int]bool{}}
}

func (f *fakeSegments) Locate(category string, index int, part segment.Part) segment.Locator {
	return segment.Locator{
		Category: category,
		Index:    index,
		Part:     part,
		URL:      fmt.Sprintf("https://example.test/%s/%s-%d-%d.mp3", category, category, index, int(part)),
	}
}

func (f *fakeSegments) Cue() segment.Locator {
	return segment.Locator{Asset: segment.CueAsset}
}

func (f *fakeSegments) Exists(ctx context.Context, loc segment.Locator) bool {
	f.mu.Lock()
	f.probes++
	gate := f.gate
	absent := f.absent[loc.Index]
	f.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			f.mu.Lock()
			f.probeErr = ctx.Err()
			f.mu.Unlock()
			return false
		}
	}
	return !absent
}

func (f *fakeSegments) Prefetch(_ context.Context, loc segment.Locator) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prefetched = append(f.prefetched, loc.String())
}

func (f *fakeSegments) probeCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.probes
}

// sequence returns indexes from a fixed list, cycling.
type sequence struct {
	mu     sync.Mutex
	values []int
	next   int
}

func (s *sequence) IntN(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	v := s.values[s.next%len(s.values)]
	s.next++
	return v % n
}

// newScienceCatalog has ten science questions; draws yield 7, 3, 10, 1, ...
func newScienceCatalog() *catalog.Catalog {
	return catalog.New(
		map[string]int{"science": 10},
		map[string][]catalog.Record{"science": {
			{Index: 7, Question: "What is the chemical symbol for gold?", Answer: "Au"},
		}},
		catalog.WithRand(&sequence{values: []int{6, 2, 9, 0}}),
	)
}

// recorder collects published snapshots.
type recorder struct {
	mu    sync.Mutex
	snaps []Snapshot
}

func (r *recorder) record(s Snapshot) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.snaps = append(r.snaps, s)
}

func (r *recorder) states() []State {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]State, len(r.snaps))
	for i, s := range r.snaps {
		out[i] = s.State
	}
	return out
}
