package audio

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/dgnsrekt/quizbuzz/internal/segment"
)

// Source supplies encoded segment audio.
type Source interface {
	Fetch(ctx context.Context, loc segment.Locator) ([]byte, error)
}

// Engine plays one segment at a time. Play and Stop may be called from any
// goroutine; completion callbacks run on an engine goroutine.
type Engine struct {
	source Source
	device Device
	logger *log.Logger
	poll   time.Duration

	mu     sync.Mutex
	seq    uint64 // bumped by every Play and Stop
	slot   *playback
	cancel context.CancelFunc // in-flight load
	closed bool

	wg sync.WaitGroup
}

type playback struct {
	loc    segment.Locator
	handle Handle
	stop   chan struct{}
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithLogger sets the logger.
func WithLogger(l *log.Logger) EngineOption {
	return func(e *Engine) { e.logger = l }
}

// WithPollInterval sets how often a playing handle is checked for
// completion.
func WithPollInterval(d time.Duration) EngineOption {
	return func(e *Engine) { e.poll = d }
}

// NewEngine returns an engine reading from source and playing on device.
func NewEngine(source Source, device Device, opts ...EngineOption) *Engine {
	e := &Engine{
		source: source,
		device: device,
		poll:   50 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = log.Default()
	}
	e.logger = e.logger.WithPrefix("audio")
	return e
}

// Play releases whatever is playing, then loads and starts loc in the
// background. onFinish runs once when loc plays to its end, or when it
// cannot be played at all. It never runs if the request is superseded by a
// later Play or Stop.
func (e *Engine) Play(ctx context.Context, loc segment.Locator, onFinish func()) {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		e.logger.Debug("play after close ignored", "segment", loc)
		return
	}
	e.seq++
	id := e.seq
	e.releaseLocked()

	ctx, cancel := context.WithCancel(ctx)
	e.cancel = cancel
	e.wg.Add(1)
	e.mu.Unlock()

	go e.run(ctx, cancel, id, loc, onFinish)
}

// Stop releases the current handle and abandons any pending load. It is
// safe to call at any time.
func (e *Engine) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.seq++
	e.releaseLocked()
}

// Active returns the number of handles the engine holds, 0 or 1.
func (e *Engine) Active() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.slot != nil {
		return 1
	}
	return 0
}

// Close stops playback, waits for background work and closes the device.
func (e *Engine) Close() error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return nil
	}
	e.closed = true
	e.seq++
	e.releaseLocked()
	e.mu.Unlock()

	e.wg.Wait()
	return e.device.Close()
}

func (e *Engine) run(ctx context.Context, cancel context.CancelFunc, id uint64, loc segment.Locator, onFinish func()) {
	defer e.wg.Done()
	defer cancel()

	pcm, err := e.load(ctx, loc)

	e.mu.Lock()
	if id != e.seq {
		e.mu.Unlock()
		return
	}
	var p *playback
	if err == nil {
		var h Handle
		if h, err = e.device.Open(pcm.Data); err == nil {
			p = &playback{loc: loc, handle: h, stop: make(chan struct{})}
			e.slot = p
			h.Start()
		}
	}
	e.mu.Unlock()

	if err != nil {
		e.logger.Warn("segment skipped", "segment", loc, "err", err)
		finish(onFinish)
		return
	}

	e.logger.Debug("playing", "segment", loc, "duration", pcm.Duration())
	e.monitor(p, onFinish)
}

func (e *Engine) load(ctx context.Context, loc segment.Locator) (PCM, error) {
	data, err := e.source.Fetch(ctx, loc)
	if err != nil {
		return PCM{}, err
	}
	return Decode(data, e.device.SampleRate())
}

// monitor waits for p to finish or be released.
func (e *Engine) monitor(p *playback, onFinish func()) {
	ticker := time.NewTicker(e.poll)
	defer ticker.Stop()

	for {
		select {
		case <-p.stop:
			return
		case <-ticker.C:
			if !p.handle.Done() {
				continue
			}
			e.mu.Lock()
			if e.slot != p {
				e.mu.Unlock()
				return
			}
			e.releaseLocked()
			e.mu.Unlock()

			e.logger.Debug("finished", "segment", p.loc)
			finish(onFinish)
			return
		}
	}
}

// releaseLocked must be called with e.mu held.
func (e *Engine) releaseLocked() {
	if e.cancel != nil {
		e.cancel()
		e.cancel = nil
	}
	p := e.slot
	if p == nil {
		return
	}
	e.slot = nil
	close(p.stop)
	if err := p.handle.Close(); err != nil && !errors.Is(err, ErrClosed) {
		e.logger.Warn("unable to release audio handle", "segment", p.loc, "err", err)
	}
}

func finish(fn func()) {
	if fn != nil {
		fn()
	}
}
