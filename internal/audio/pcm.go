package audio

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"io"
	"math"
	"time"
)

// Fixed PCM contract of the speech service: mono, 16-bit, 24kHz.
const (
	SampleRate = 24000
	Channels   = 1
	BitDepth   = 16
)

// Decode decodes a standard base64 payload and interprets the bytes as
// little-endian signed 16-bit samples.
func Decode(payload string) ([]int16, error) {
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, &DecodeError{Err: err}
	}
	if len(data)%2 != 0 {
		return nil, &DecodeError{Err: ErrOddLength}
	}

	samples := make([]int16, len(data)/2)
	for i := range samples {
		samples[i] = int16(binary.LittleEndian.Uint16(data[i*2:])) //nolint:gosec
	}
	return samples, nil
}

// Buffer holds de-interleaved, normalized samples ready for playback.
type Buffer struct {
	sampleRate int
	planes     [][]float32
}

// ToBuffer de-interleaves samples into channel planes and normalizes every
// value into [-1.0, 1.0]. A trailing partial frame is dropped.
func ToBuffer(samples []int16, sampleRate, channels int) (*Buffer, error) {
	if sampleRate <= 0 {
		return nil, ErrInvalidSampleRate
	}
	if channels <= 0 {
		return nil, ErrInvalidChannels
	}

	frames := len(samples) / channels
	planes := make([][]float32, channels)
	for ch := range planes {
		plane := make([]float32, frames)
		for i := 0; i < frames; i++ {
			plane[i] = float32(samples[i*channels+ch]) / 32768.0
		}
		planes[ch] = plane
	}

	return &Buffer{sampleRate: sampleRate, planes: planes}, nil
}

// DecodePCM decodes a speech payload into a mono 24kHz buffer.
func DecodePCM(payload string) (*Buffer, error) {
	samples, err := Decode(payload)
	if err != nil {
		return nil, err
	}
	return ToBuffer(samples, SampleRate, Channels)
}

// SampleRate returns the buffer's sample rate in Hz.
func (b *Buffer) SampleRate() int { return b.sampleRate }

// Channels returns the number of channel planes.
func (b *Buffer) Channels() int { return len(b.planes) }

// Frames returns the number of frames per channel.
func (b *Buffer) Frames() int {
	if b == nil || len(b.planes) == 0 {
		return 0
	}
	return len(b.planes[0])
}

// Channel returns the samples of channel ch.
func (b *Buffer) Channel(ch int) []float32 { return b.planes[ch] }

// Duration returns the playback length of the buffer.
func (b *Buffer) Duration() time.Duration {
	if b.Frames() == 0 || b.sampleRate == 0 {
		return 0
	}
	return time.Duration(b.Frames()) * time.Second / time.Duration(b.sampleRate)
}

// Size returns the number of bytes Reader yields.
func (b *Buffer) Size() int {
	return b.Frames() * b.Channels() * 4
}

// Reader returns the buffer re-interleaved as float32 little-endian bytes,
// the format the output device is opened with.
func (b *Buffer) Reader() io.Reader {
	data := make([]byte, b.Size())
	n := b.Channels()
	for i := 0; i < b.Frames(); i++ {
		for ch := 0; ch < n; ch++ {
			off := (i*n + ch) * 4
			binary.LittleEndian.PutUint32(data[off:], math.Float32bits(b.planes[ch][i]))
		}
	}
	return bytes.NewReader(data)
}
