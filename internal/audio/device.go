package audio

import "io"

// Voice is one stream of samples on a Device. *oto.Player satisfies it.
type Voice interface {
	Play()
	Pause()
	IsPlaying() bool
	Close() error
	Err() error
}

// Device is an audio output device opened for float32 samples at the fixed
// sample rate and channel count.
type Device interface {
	NewVoice(r io.Reader) Voice
	Resume() error
	Suspend() error
}

// DeviceOpener opens the output device. A Player calls it on first use.
type DeviceOpener func() (Device, error)
