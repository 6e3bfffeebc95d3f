package audio

import (
	"context"
	"encoding/binary"
	"errors"
	"sync"

	"github.com/dgnsrekt/quizbuzz/internal/segment"
)

// wavBytes builds a 16-bit PCM WAV with a ramp so resampling is visible.
func wavBytes(rate, channels, frames int) []byte {
	body := make([]byte, frames*channels*2)
	for i := 0; i < frames*channels; i++ {
		binary.LittleEndian.PutUint16(body[i*2:], uint16(int16(i%1000)))
	}

	buf := make([]byte, 0, 44+len(body))
	buf = append(buf, "RIFF"...)
	buf = binary.LittleEndian.AppendUint32(buf, uint32(36+len(body)))
	buf = append(buf, "WAVE"...)
	buf = append(buf, "fmt "...)
	buf = binary.LittleEndian.AppendUint32(buf, 16)
	buf = binary.LittleEndian.AppendUint16(buf, 1)
	buf = binary.LittleEndian.AppendUint16(buf, uint16(channels))
	buf = binary.LittleEndian.AppendUint32(buf, uint32(rate))
	buf = binary.LittleEndian.AppendUint32(buf, uint32(rate*channels*2))
	buf = binary.LittleEndian.AppendUint16(buf, uint16(channels*2))
	buf = binary.LittleEndian.AppendUint16(buf, 16)
	buf = append(buf, "data"...)
	buf = binary.LittleEndian.AppendUint32(buf, uint32(len(body)))
	return append(buf, body...)
}

var errMissing = errors.New("missing")

// fakeSource serves WAV data for every locator except those in missing.
// Fetches of locators in gate block until the gate is closed.
type fakeSource struct {
	mu      sync.Mutex
	missing map[string]bool
	gate    map[string]chan struct{}
	fetches []string
}

func newFakeSource() *fakeSource {
	return &fakeSource{missing: map[string]bool{}, gate: map[string]chan struct{}{}}
}

func (f *fakeSource) block(loc segment.Locator) chan struct{} {
	f.mu.Lock()
	defer f.mu.Unlock()
	ch := make(chan struct{})
	f.gate[loc.Key()] = ch
	return ch
}

func (f *fakeSource) Fetch(ctx context.Context, loc segment.Locator) ([]byte, error) {
	f.mu.Lock()
	f.fetches = append(f.fetches, loc.String())
	gate := f.gate[loc.Key()]
	missing := f.missing[loc.Key()]
	f.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if missing {
		return nil, errMissing
	}
	return wavBytes(44100, 2, 441), nil
}
