package audio

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dgnsrekt/quizbuzz/internal/segment"
)

func loc(index int, part segment.Part) segment.Locator {
	return segment.Locator{Category: "science", Index: index, Part: part, URL: "https://example.test/" + part.String()}
}

func newTestEngine(t *testing.T, src Source, dev *MockDevice) *Engine {
	t.Helper()
	e := NewEngine(src, dev, WithPollInterval(time.Millisecond))
	t.Cleanup(func() { _ = e.Close() })
	return e
}

// counter records how often a callback ran.
type counter struct{ n atomic.Int32 }

func (c *counter) fn() {
	c.n.Add(1)
}

func (c *counter) get() int {
	return int(c.n.Load())
}

func waitStarted(t *testing.T, dev *MockDevice, n int) *MockHandle {
	t.Helper()
	require.Eventually(t, func() bool {
		hs := dev.Handles()
		return len(hs) == n && hs[n-1].Started()
	}, time.Second, time.Millisecond)
	return dev.Last()
}

func TestEngine_NaturalCompletionCallsOnFinishOnce(t *testing.T) {
	dev := NewMockDevice(44100)
	e := newTestEngine(t, newFakeSource(), dev)

	var done counter
	e.Play(context.Background(), loc(1, segment.PartLeadIn), done.fn)

	h := waitStarted(t, dev, 1)
	assert.Equal(t, 1, e.Active())
	assert.Equal(t, 441*BytesPerFrame, h.Size)

	h.Finish()
	require.Eventually(t, func() bool { return done.get() == 1 }, time.Second, time.Millisecond)
	assert.Equal(t, 0, e.Active())
	assert.True(t, h.Closed())

	time.Sleep(10 * time.Millisecond)
	assert.Equal(t, 1, done.get())
}

func TestEngine_StopSuppressesOnFinish(t *testing.T) {
	dev := NewMockDevice(44100)
	e := newTestEngine(t, newFakeSource(), dev)

	var done counter
	e.Play(context.Background(), loc(1, segment.PartLeadIn), done.fn)
	h := waitStarted(t, dev, 1)

	e.Stop()
	h.Finish()
	time.Sleep(10 * time.Millisecond)

	assert.Zero(t, done.get())
	assert.Zero(t, e.Active())
	assert.True(t, h.Closed())
}

func TestEngine_StopSwallowsDeviceError(t *testing.T) {
	dev := NewMockDevice(44100)
	dev.CloseErr = errors.New("device went away")
	e := newTestEngine(t, newFakeSource(), dev)

	var stopped counter
	e.Play(context.Background(), loc(1, segment.PartLeadIn), stopped.fn)
	h1 := waitStarted(t, dev, 1)

	e.Stop()
	assert.True(t, h1.Closed())
	assert.Zero(t, e.Active())

	var next counter
	e.Play(context.Background(), loc(1, segment.PartAnswer), next.fn)
	h2 := waitStarted(t, dev, 2)
	assert.Equal(t, 1, e.Active())

	h1.Finish()
	h2.Finish()
	require.Eventually(t, func() bool { return next.get() == 1 }, time.Second, time.Millisecond)

	assert.Zero(t, stopped.get())
	assert.Zero(t, e.Active())
	assert.Zero(t, dev.OpenHandles())
}

func TestEngine_StopIsIdempotent(t *testing.T) {
	dev := NewMockDevice(44100)
	e := newTestEngine(t, newFakeSource(), dev)

	e.Stop()
	e.Play(context.Background(), loc(1, segment.PartLeadIn), nil)
	waitStarted(t, dev, 1)
	for i := 0; i < 3; i++ {
		e.Stop()
	}
	assert.Zero(t, e.Active())
	assert.Zero(t, dev.OpenHandles())
}

func TestEngine_PlayReleasesPreviousHandleFirst(t *testing.T) {
	dev := NewMockDevice(44100)
	e := newTestEngine(t, newFakeSource(), dev)

	var first, second counter
	e.Play(context.Background(), loc(1, segment.PartLeadIn), first.fn)
	h1 := waitStarted(t, dev, 1)

	e.Play(context.Background(), loc(1, segment.PartAnswer), second.fn)
	assert.True(t, h1.Closed(), "previous handle is released before Play returns")

	h2 := waitStarted(t, dev, 2)
	h1.Finish()
	h2.Finish()
	require.Eventually(t, func() bool { return second.get() == 1 }, time.Second, time.Millisecond)

	assert.Zero(t, first.get())
	assert.Equal(t, 1, dev.MaxOpenHandles())
}

func TestEngine_FailureCallsOnFinish(t *testing.T) {
	src := newFakeSource()
	broken := loc(2, segment.PartClue)
	src.missing[broken.Key()] = true

	dev := NewMockDevice(44100)
	e := newTestEngine(t, src, dev)

	var done counter
	e.Play(context.Background(), broken, done.fn)
	require.Eventually(t, func() bool { return done.get() == 1 }, time.Second, time.Millisecond)
	assert.Empty(t, dev.Handles())
}

func TestEngine_OpenFailureCallsOnFinish(t *testing.T) {
	dev := NewMockDevice(44100)
	dev.OpenErr = errors.New("device busy")
	e := newTestEngine(t, newFakeSource(), dev)

	var done counter
	e.Play(context.Background(), loc(1, segment.PartLeadIn), done.fn)
	require.Eventually(t, func() bool { return done.get() == 1 }, time.Second, time.Millisecond)
	assert.Zero(t, e.Active())
}

func TestEngine_SupersededLoadIsSilent(t *testing.T) {
	src := newFakeSource()
	slow := loc(3, segment.PartClue)
	gate := src.block(slow)

	dev := NewMockDevice(44100)
	e := newTestEngine(t, src, dev)

	var stale, fresh counter
	e.Play(context.Background(), slow, stale.fn)
	e.Play(context.Background(), loc(3, segment.PartAnswer), fresh.fn)
	close(gate)

	h := waitStarted(t, dev, 1)
	h.Finish()
	require.Eventually(t, func() bool { return fresh.get() == 1 }, time.Second, time.Millisecond)

	time.Sleep(10 * time.Millisecond)
	assert.Zero(t, stale.get())
	assert.Len(t, dev.Handles(), 1, "superseded load never opened a handle")
}

func TestEngine_StopDuringLoadIsSilent(t *testing.T) {
	src := newFakeSource()
	slow := loc(4, segment.PartLeadIn)
	src.block(slow)

	dev := NewMockDevice(44100)
	e := newTestEngine(t, src, dev)

	var done counter
	e.Play(context.Background(), slow, done.fn)
	e.Stop()

	time.Sleep(10 * time.Millisecond)
	assert.Zero(t, done.get(), "cancelled fetch is not reported as a failure")
	assert.Empty(t, dev.Handles())
}

func TestEngine_NeverHoldsTwoHandles(t *testing.T) {
	dev := NewMockDevice(44100)
	dev.AutoFinish = 2 * time.Millisecond
	e := newTestEngine(t, newFakeSource(), dev)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				if j%5 == 4 {
					e.Stop()
					continue
				}
				e.Play(context.Background(), loc(i+1, segment.Part(j%3+1)), nil)
			}
		}(i)
	}
	wg.Wait()
	e.Stop()

	assert.LessOrEqual(t, dev.MaxOpenHandles(), 1)
	require.Eventually(t, func() bool { return dev.OpenHandles() == 0 }, time.Second, time.Millisecond)
}

func TestEngine_Close(t *testing.T) {
	dev := NewMockDevice(44100)
	e := NewEngine(newFakeSource(), dev, WithPollInterval(time.Millisecond))

	var done counter
	e.Play(context.Background(), loc(1, segment.PartLeadIn), done.fn)
	h := waitStarted(t, dev, 1)

	require.NoError(t, e.Close())
	require.NoError(t, e.Close())
	assert.True(t, h.Closed())

	e.Play(context.Background(), loc(1, segment.PartAnswer), done.fn)
	time.Sleep(10 * time.Millisecond)
	assert.Zero(t, done.get())
	assert.Len(t, dev.Handles(), 1)
}
