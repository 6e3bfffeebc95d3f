package audio

import "errors"

var (
	// ErrClosed is returned once the engine or device has been closed.
	ErrClosed = errors.New("audio: closed")
	// ErrUnsupportedFormat is returned for data that is neither MP3 nor
	// PCM WAV.
	ErrUnsupportedFormat = errors.New("audio: unsupported format")
)

const (
	// Channels is the channel count of all PCM handed to a Device.
	Channels = 2
	// BytesPerFrame is one interleaved 16-bit stereo frame.
	BytesPerFrame = Channels * 2
)

// Device turns signed 16-bit little-endian stereo PCM into playable handles.
type Device interface {
	// Open prepares pcm for playback. The handle does not make a sound until
	// Start is called.
	Open(pcm []byte) (Handle, error)
	// SampleRate is the rate pcm passed to Open must be in.
	SampleRate() int
	Close() error
}

// Handle is one playing (or playable) sound.
type Handle interface {
	Start()
	// Done reports whether the sound has played through to its end.
	Done() bool
	// Close stops the sound and frees its resources. It is safe to call more
	// than once.
	Close() error
}
