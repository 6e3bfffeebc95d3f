//go:build nocgo
// +build nocgo

package audio

import (
	"errors"
	"time"
)

// OtoConfig configures the system sound device.
type OtoConfig struct {
	SampleRate int
	BufferSize time.Duration
	Volume     float64
}

// DefaultOtoConfig returns the default device configuration.
func DefaultOtoConfig() OtoConfig {
	return OtoConfig{SampleRate: 44100, Volume: 1.0}
}

// OtoDevice is unavailable without cgo.
type OtoDevice struct{}

// NewOtoDevice always fails in nocgo builds.
func NewOtoDevice(OtoConfig) (*OtoDevice, error) {
	return nil, errors.New("audio not available in nocgo build")
}

// SampleRate implements Device.
func (d *OtoDevice) SampleRate() int {
	return 0
}

// Open implements Device.
func (d *OtoDevice) Open([]byte) (Handle, error) {
	return nil, ErrClosed
}

// Close implements Device.
func (d *OtoDevice) Close() error {
	return nil
}
