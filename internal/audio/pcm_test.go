package audio

import (
	"encoding/base64"
	"encoding/binary"
	"errors"
	"io"
	"math"
	"testing"
	"time"
)

func encodeSamples(samples ...int16) string {
	data := make([]byte, len(samples)*2)
	for i, s := range samples {
		binary.LittleEndian.PutUint16(data[i*2:], uint16(s)) //nolint:gosec
	}
	return base64.StdEncoding.EncodeToString(data)
}

func TestDecode(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		want    []int16
		wantErr error
	}{
		{name: "empty", payload: "", want: []int16{}},
		{name: "single sample", payload: encodeSamples(1), want: []int16{1}},
		{name: "extremes", payload: encodeSamples(-32768, 32767, 0), want: []int16{-32768, 32767, 0}},
		{name: "little endian", payload: base64.StdEncoding.EncodeToString([]byte{0x34, 0x12}), want: []int16{0x1234}},
		{name: "odd length", payload: base64.StdEncoding.EncodeToString([]byte{1, 2, 3}), wantErr: ErrOddLength},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Decode(tt.payload)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Decode() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Decode() unexpected error: %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("Decode() len = %d, want %d", len(got), len(tt.want))
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("Decode()[%d] = %d, want %d", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestDecodeInvalidBase64(t *testing.T) {
	_, err := Decode("not base64!")
	var decErr *DecodeError
	if !errors.As(err, &decErr) {
		t.Fatalf("Decode() error = %v, want *DecodeError", err)
	}
}

func TestToBufferSampleCountAndRange(t *testing.T) {
	for _, channels := range []int{1, 2} {
		for _, n := range []int{0, 2, 10, 4801} {
			samples := make([]int16, n)
			for i := range samples {
				samples[i] = int16((i*7919)%65536 - 32768) //nolint:gosec
			}
			payload := encodeSamples(samples...)

			decoded, err := Decode(payload)
			if err != nil {
				t.Fatalf("Decode() unexpected error: %v", err)
			}
			buf, err := ToBuffer(decoded, SampleRate, channels)
			if err != nil {
				t.Fatalf("ToBuffer() unexpected error: %v", err)
			}

			raw, _ := base64.StdEncoding.DecodeString(payload)
			if want := len(raw) / 2 / channels; buf.Frames() != want {
				t.Errorf("channels=%d n=%d: Frames() = %d, want %d", channels, n, buf.Frames(), want)
			}
			if buf.Channels() != channels {
				t.Errorf("Channels() = %d, want %d", buf.Channels(), channels)
			}
			for ch := 0; ch < channels; ch++ {
				for i, v := range buf.Channel(ch) {
					if v < -1.0 || v > 1.0 {
						t.Fatalf("Channel(%d)[%d] = %f, out of range", ch, i, v)
					}
				}
			}
		}
	}
}

func TestToBufferNormalization(t *testing.T) {
	buf, err := ToBuffer([]int16{-32768, 0, 16384, 32767}, SampleRate, 1)
	if err != nil {
		t.Fatalf("ToBuffer() unexpected error: %v", err)
	}
	want := []float32{-1.0, 0, 0.5, 32767.0 / 32768.0}
	for i, v := range buf.Channel(0) {
		if v != want[i] {
			t.Errorf("Channel(0)[%d] = %f, want %f", i, v, want[i])
		}
	}
}

func TestToBufferDeinterleaves(t *testing.T) {
	buf, err := ToBuffer([]int16{16384, -16384, 8192, -8192, 100}, SampleRate, 2)
	if err != nil {
		t.Fatalf("ToBuffer() unexpected error: %v", err)
	}
	if buf.Frames() != 2 {
		t.Fatalf("Frames() = %d, want 2", buf.Frames())
	}
	if l := buf.Channel(0); l[0] != 0.5 || l[1] != 0.25 {
		t.Errorf("left = %v, want [0.5 0.25]", l)
	}
	if r := buf.Channel(1); r[0] != -0.5 || r[1] != -0.25 {
		t.Errorf("right = %v, want [-0.5 -0.25]", r)
	}
}

func TestToBufferInvalidFormat(t *testing.T) {
	tests := []struct {
		name       string
		sampleRate int
		channels   int
		want       error
	}{
		{"zero sample rate", 0, 1, ErrInvalidSampleRate},
		{"zero channels", SampleRate, 0, ErrInvalidChannels},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ToBuffer([]int16{1}, tt.sampleRate, tt.channels); !errors.Is(err, tt.want) {
				t.Errorf("ToBuffer() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestDecodePCMEmpty(t *testing.T) {
	buf, err := DecodePCM("")
	if err != nil {
		t.Fatalf("DecodePCM() unexpected error: %v", err)
	}
	if buf.Frames() != 0 {
		t.Errorf("Frames() = %d, want 0", buf.Frames())
	}
	if buf.Duration() != 0 {
		t.Errorf("Duration() = %v, want 0", buf.Duration())
	}
}

func TestBufferDurationAndReader(t *testing.T) {
	samples := make([]int16, SampleRate/2)
	samples[0] = 16384
	buf, err := ToBuffer(samples, SampleRate, Channels)
	if err != nil {
		t.Fatalf("ToBuffer() unexpected error: %v", err)
	}
	if buf.Duration() != 500*time.Millisecond {
		t.Errorf("Duration() = %v, want 500ms", buf.Duration())
	}

	data, err := io.ReadAll(buf.Reader())
	if err != nil {
		t.Fatalf("ReadAll() unexpected error: %v", err)
	}
	if len(data) != buf.Size() {
		t.Fatalf("Reader() yielded %d bytes, want %d", len(data), buf.Size())
	}
	if got := math.Float32frombits(binary.LittleEndian.Uint32(data)); got != 0.5 {
		t.Errorf("first sample = %f, want 0.5", got)
	}
}
