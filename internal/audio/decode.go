package audio

import (
	"bytes"
	"fmt"
	"io"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/mp3"
	"github.com/gopxl/beep/v2/wav"
)

// resampleQuality trades CPU for fewer artifacts; beep accepts 1 to 64.
const resampleQuality = 4

// streamChunk is how many frames are pulled from a streamer at a time.
const streamChunk = 512

// PCM is decoded audio: interleaved signed 16-bit little-endian stereo.
type PCM struct {
	Data       []byte
	SampleRate int
}

// Duration is the play time of p.
func (p PCM) Duration() time.Duration {
	if p.SampleRate <= 0 {
		return 0
	}
	frames := len(p.Data) / BytesPerFrame
	return time.Duration(frames) * time.Second / time.Duration(p.SampleRate)
}

// Decode converts an encoded segment (MP3 or PCM WAV) to stereo PCM at the
// given sample rate. A sampleRate of 0 keeps the source rate.
func Decode(data []byte, sampleRate int) (PCM, error) {
	var (
		s      beep.StreamSeekCloser
		format beep.Format
		err    error
	)
	switch {
	case isWAV(data):
		s, format, err = wav.Decode(bytes.NewReader(data))
	case isMP3(data):
		s, format, err = mp3.Decode(io.NopCloser(bytes.NewReader(data)))
	default:
		return PCM{}, ErrUnsupportedFormat
	}
	if err != nil {
		return PCM{}, fmt.Errorf("%w: %v", ErrUnsupportedFormat, err)
	}
	defer s.Close() //nolint:errcheck

	if format.SampleRate <= 0 || format.NumChannels < 1 || format.NumChannels > 2 {
		return PCM{}, fmt.Errorf("%w: %d channels at %d Hz", ErrUnsupportedFormat, format.NumChannels, format.SampleRate)
	}

	var (
		src    beep.Streamer = s
		rate                 = format.SampleRate
		frames               = s.Len()
	)
	if sampleRate > 0 && beep.SampleRate(sampleRate) != format.SampleRate {
		rate = beep.SampleRate(sampleRate)
		src = beep.Resample(resampleQuality, format.SampleRate, rate, s)
		frames = int(int64(frames) * int64(rate) / int64(format.SampleRate))
	}

	out, err := encodePCM(src, frames)
	if err != nil {
		return PCM{}, err
	}
	if len(out) == 0 {
		return PCM{}, fmt.Errorf("%w: no audio frames", ErrUnsupportedFormat)
	}
	return PCM{Data: out, SampleRate: int(rate)}, nil
}

func isWAV(data []byte) bool {
	return len(data) >= 12 && string(data[0:4]) == "RIFF" && string(data[8:12]) == "WAVE"
}

func isMP3(data []byte) bool {
	if len(data) >= 3 && string(data[:3]) == "ID3" {
		return true
	}
	// frame sync: 11 set bits
	return len(data) >= 2 && data[0] == 0xFF && data[1]&0xE0 == 0xE0
}

// encodePCM drains s into the byte layout a Device takes. Mono sources
// already arrive with both channels filled.
func encodePCM(s beep.Streamer, sizeHint int) ([]byte, error) {
	out := beep.Format{NumChannels: Channels, Precision: 2}
	buf := make([]byte, 0, max(sizeHint, 0)*BytesPerFrame)
	samples := make([][2]float64, streamChunk)
	frame := make([]byte, BytesPerFrame)

	for {
		n, ok := s.Stream(samples)
		for _, sample := range samples[:n] {
			out.EncodeSigned(frame, sample)
			buf = append(buf, frame...)
		}
		if !ok {
			break
		}
	}
	if err := s.Err(); err != nil {
		return nil, fmt.Errorf("unable to decode audio: %w", err)
	}
	return buf, nil
}
