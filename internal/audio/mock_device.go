package audio

import (
	"sync"
	"time"
)

// MockDevice is an in-memory Device for tests. Handles stay playing until
// Finish is called on them, or until AutoFinish elapses when it is set.
type MockDevice struct {
	// OpenErr, when set, makes every Open fail.
	OpenErr error
	// AutoFinish completes each handle this long after Start.
	AutoFinish time.Duration
	// CloseErr is handed to every handle opened afterwards.
	CloseErr error

	rate int

	mu      sync.Mutex
	open    int
	maxOpen int
	handles []*MockHandle
	closed  bool
}

// NewMockDevice returns a mock device running at sampleRate.
func NewMockDevice(sampleRate int) *MockDevice {
	return &MockDevice{rate: sampleRate}
}

// SampleRate implements Device.
func (d *MockDevice) SampleRate() int { return d.rate }

// Open implements Device.
func (d *MockDevice) Open(pcm []byte) (Handle, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return nil, ErrClosed
	}
	if d.OpenErr != nil {
		return nil, d.OpenErr
	}

	h := &MockHandle{dev: d, Size: len(pcm), CloseErr: d.CloseErr}
	d.handles = append(d.handles, h)
	d.open++
	if d.open > d.maxOpen {
		d.maxOpen = d.open
	}
	return h, nil
}

// Close implements Device.
func (d *MockDevice) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closed = true
	return nil
}

// OpenHandles is the number of handles opened and not yet closed.
func (d *MockDevice) OpenHandles() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.open
}

// MaxOpenHandles is the highest OpenHandles value ever observed.
func (d *MockDevice) MaxOpenHandles() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.maxOpen
}

// Handles returns every handle opened so far, oldest first.
func (d *MockDevice) Handles() []*MockHandle {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]*MockHandle(nil), d.handles...)
}

// Last returns the most recently opened handle, or nil.
func (d *MockDevice) Last() *MockHandle {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.handles) == 0 {
		return nil
	}
	return d.handles[len(d.handles)-1]
}

// MockHandle is a handle created by MockDevice.
type MockHandle struct {
	Size int

	// CloseErr is returned by Close after the handle is released.
	CloseErr error

	dev *MockDevice

	mu      sync.Mutex
	started bool
	done    bool
	closed  bool
}

// Start implements Handle.
func (h *MockHandle) Start() {
	h.mu.Lock()
	h.started = true
	h.mu.Unlock()

	if d := h.dev.AutoFinish; d > 0 {
		time.AfterFunc(d, h.Finish)
	}
}

// Done implements Handle.
func (h *MockHandle) Done() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.done
}

// Finish simulates the sound reaching its end.
func (h *MockHandle) Finish() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.started && !h.closed {
		h.done = true
	}
}

// Started reports whether Start was called.
func (h *MockHandle) Started() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.started
}

// Closed reports whether Close was called.
func (h *MockHandle) Closed() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.closed
}

// Close implements Handle.
func (h *MockHandle) Close() error {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return nil
	}
	h.closed = true
	h.mu.Unlock()

	h.dev.mu.Lock()
	h.dev.open--
	h.dev.mu.Unlock()
	return h.CloseErr
}
