package audio

import (
	"errors"
	"io"
	"sync"
)

// MockDevice is an in-memory Device for tests. Voices stay playing until
// Finish is called, unless AutoFinish is set.
type MockDevice struct {
	AutoFinish bool
	ResumeErr  error

	mu           sync.Mutex
	voices       []*MockVoice
	resumeCount  int
	suspendCount int
}

// NewVoice implements Device.
func (d *MockDevice) NewVoice(r io.Reader) Voice {
	data, _ := io.ReadAll(r)
	v := &MockVoice{data: data, autoFinish: d.AutoFinish}

	d.mu.Lock()
	d.voices = append(d.voices, v)
	d.mu.Unlock()
	return v
}

// Resume implements Device.
func (d *MockDevice) Resume() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.resumeCount++
	return d.ResumeErr
}

// Suspend implements Device.
func (d *MockDevice) Suspend() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.suspendCount++
	return nil
}

// Voices returns the voices created so far.
func (d *MockDevice) Voices() []*MockVoice {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]*MockVoice(nil), d.voices...)
}

// ResumeCount returns how many times Resume was called.
func (d *MockDevice) ResumeCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.resumeCount
}

// SuspendCount returns how many times Suspend was called.
func (d *MockDevice) SuspendCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.suspendCount
}

// Opener returns a DeviceOpener that hands out d and counts calls.
func (d *MockDevice) Opener(calls *int) DeviceOpener {
	return func() (Device, error) {
		if calls != nil {
			*calls++
		}
		return d, nil
	}
}

// FailingOpener returns a DeviceOpener that always fails.
func FailingOpener() DeviceOpener {
	return func() (Device, error) {
		return nil, errors.New("no audio device")
	}
}

// MockVoice is a Voice created by MockDevice.
type MockVoice struct {
	mu         sync.Mutex
	data       []byte
	autoFinish bool
	playing    bool
	closed     bool
	err        error
}

// Play implements Voice.
func (v *MockVoice) Play() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.playing = !v.autoFinish && !v.closed
}

// Pause implements Voice.
func (v *MockVoice) Pause() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.playing = false
}

// IsPlaying implements Voice.
func (v *MockVoice) IsPlaying() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.playing
}

// Close implements Voice.
func (v *MockVoice) Close() error {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.playing = false
	v.closed = true
	return nil
}

// Err implements Voice.
func (v *MockVoice) Err() error {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.err
}

// Finish simulates the voice reaching the end of its data.
func (v *MockVoice) Finish() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.playing = false
}

// Fail simulates the voice ending with err.
func (v *MockVoice) Fail(err error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.playing = false
	v.err = err
}

// Closed reports whether Close was called.
func (v *MockVoice) Closed() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.closed
}

// Bytes returns the data the voice was created with.
func (v *MockVoice) Bytes() []byte {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.data
}
