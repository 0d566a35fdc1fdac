package audio

import "errors"

var (
	// ErrInterrupted is returned by Play when a later Play or Stop superseded it.
	ErrInterrupted = errors.New("playback interrupted")
	// ErrClosed is returned by Play after Close.
	ErrClosed = errors.New("playback controller is closed")

	ErrOddLength         = errors.New("PCM data has an odd number of bytes")
	ErrInvalidSampleRate = errors.New("invalid sample rate")
	ErrInvalidChannels   = errors.New("invalid number of channels")
	ErrDeviceUnavailable = errors.New("audio output device is not available")
)

// DecodeError reports a payload that could not be turned into samples.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return "unable to decode audio payload: " + e.Err.Error()
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// PlaybackError reports a failure of the output device.
type PlaybackError struct {
	Op  string // "open", "resume" or "play"
	Err error
}

func (e *PlaybackError) Error() string {
	return "unable to " + e.Op + " audio device: " + e.Err.Error()
}

func (e *PlaybackError) Unwrap() error {
	return e.Err
}
