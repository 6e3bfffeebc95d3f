//go:build !nocgo
// +build !nocgo

package audio

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ebitengine/oto/v3"
)

// OtoConfig configures the system sound device.
type OtoConfig struct {
	SampleRate int           // 44100 or 48000 Hz
	BufferSize time.Duration // device buffer; 0 lets oto choose
	Volume     float64       // 0.0 to 1.0
}

// DefaultOtoConfig returns the default device configuration.
func DefaultOtoConfig() OtoConfig {
	return OtoConfig{
		SampleRate: 44100,
		Volume:     1.0,
	}
}

var (
	otoOnce sync.Once
	otoCtx  *oto.Context
	otoRate int
	otoErr  error
)

// OtoDevice plays PCM through oto. oto allows a single context per process,
// so every OtoDevice shares it.
type OtoDevice struct {
	ctx    *oto.Context
	rate   int
	volume float64
	closed atomic.Bool
}

// NewOtoDevice opens the system sound device and waits until it is ready.
func NewOtoDevice(cfg OtoConfig) (*OtoDevice, error) {
	if cfg.SampleRate != 44100 && cfg.SampleRate != 48000 {
		return nil, fmt.Errorf("sample rate must be 44100 or 48000 Hz, got %d", cfg.SampleRate)
	}
	if cfg.Volume < 0 || cfg.Volume > 1 {
		return nil, fmt.Errorf("volume must be between 0.0 and 1.0, got %f", cfg.Volume)
	}

	otoOnce.Do(func() {
		ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
			SampleRate:   cfg.SampleRate,
			ChannelCount: Channels,
			Format:       oto.FormatSignedInt16LE,
			BufferSize:   cfg.BufferSize,
		})
		if err != nil {
			otoErr = fmt.Errorf("failed to create oto context: %w", err)
			return
		}
		<-ready
		otoCtx, otoRate = ctx, cfg.SampleRate
	})
	if otoErr != nil {
		return nil, otoErr
	}
	if otoRate != cfg.SampleRate {
		return nil, fmt.Errorf("audio device already open at %d Hz", otoRate)
	}

	return &OtoDevice{ctx: otoCtx, rate: otoRate, volume: cfg.Volume}, nil
}

// SampleRate implements Device.
func (d *OtoDevice) SampleRate() int { return d.rate }

// Open implements Device.
func (d *OtoDevice) Open(pcm []byte) (Handle, error) {
	if d.closed.Load() {
		return nil, ErrClosed
	}
	if len(pcm) == 0 {
		return nil, errors.New("audio data is empty")
	}

	h := &otoHandle{reader: &trackingReader{r: bytes.NewReader(pcm), size: int64(len(pcm))}}
	h.player = d.ctx.NewPlayer(h.reader)
	if h.player == nil {
		return nil, errors.New("failed to create oto player")
	}
	h.player.SetVolume(d.volume)
	return h, nil
}

// Close marks the device closed. The oto context itself lives until exit.
func (d *OtoDevice) Close() error {
	d.closed.Store(true)
	return d.ctx.Err()
}

type otoHandle struct {
	player *oto.Player
	reader *trackingReader
	once   sync.Once
}

func (h *otoHandle) Start() { h.player.Play() }

// Done needs both conditions: IsPlaying also reports false before the
// first buffer is queued.
func (h *otoHandle) Done() bool {
	return h.reader.exhausted() && !h.player.IsPlaying()
}

func (h *otoHandle) Close() error {
	var err error
	h.once.Do(func() {
		h.player.Pause()
		err = h.player.Close()
	})
	return err
}

// trackingReader records how far oto has pulled the PCM.
type trackingReader struct {
	r    *bytes.Reader
	size int64
	read atomic.Int64
}

func (t *trackingReader) Read(p []byte) (int, error) {
	n, err := t.r.Read(p)
	t.read.Add(int64(n))
	return n, err
}

func (t *trackingReader) exhausted() bool {
	return t.read.Load() >= t.size
}

var _ io.Reader = (*trackingReader)(nil)
