package audio

import (
	"context"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

const defaultPollInterval = 10 * time.Millisecond

// Player owns the output device and at most one active playback. The device
// is opened on the first non-empty Play and reused until Close.
type Player struct {
	open         DeviceOpener
	pollInterval time.Duration

	mu        sync.Mutex
	device    Device
	suspended bool
	current   *playback
	closed    bool
}

// playback is the ownership token for one audible buffer.
type playback struct {
	voice   Voice
	stopped chan struct{}
}

// NewPlayer returns a Player that opens its device with open.
func NewPlayer(open DeviceOpener) *Player {
	return &Player{
		open:         open,
		pollInterval: defaultPollInterval,
	}
}

// Play stops any active playback, then plays buf and blocks until it ends.
// It returns nil only when buf played to the end, ErrInterrupted when a later
// Play or Stop superseded it, and ctx.Err() when ctx was cancelled.
func (p *Player) Play(ctx context.Context, buf *Buffer) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return ErrClosed
	}

	p.stopLocked()

	if err := ctx.Err(); err != nil {
		p.mu.Unlock()
		return err
	}
	if buf.Frames() == 0 {
		p.mu.Unlock()
		return nil
	}

	dev, err := p.deviceLocked()
	if err != nil {
		p.mu.Unlock()
		return &PlaybackError{Op: "open", Err: err}
	}

	if p.suspended {
		if err := dev.Resume(); err != nil {
			p.mu.Unlock()
			return &PlaybackError{Op: "resume", Err: err}
		}
		p.suspended = false
	}

	pb := &playback{
		voice:   dev.NewVoice(buf.Reader()),
		stopped: make(chan struct{}),
	}
	p.current = pb
	pb.voice.Play()
	p.mu.Unlock()

	log.Debug("playback started", "frames", buf.Frames(), "duration", buf.Duration())
	return p.wait(ctx, pb)
}

// Stop halts and releases the active playback, if any.
func (p *Player) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopLocked()
}

// Suspend puts the device into its suspended state. The next Play resumes it.
func (p *Player) Suspend() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.suspendLocked()
}

// Close stops playback and suspends the device. Play fails afterwards.
func (p *Player) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopLocked()
	p.closed = true
	return p.suspendLocked()
}

func (p *Player) deviceLocked() (Device, error) {
	if p.device != nil {
		return p.device, nil
	}
	if p.open == nil {
		return nil, ErrDeviceUnavailable
	}
	dev, err := p.open()
	if err != nil {
		return nil, err
	}
	p.device = dev
	return dev, nil
}

func (p *Player) suspendLocked() error {
	if p.device == nil || p.suspended {
		return nil
	}
	if err := p.device.Suspend(); err != nil {
		return &PlaybackError{Op: "suspend", Err: err}
	}
	p.suspended = true
	return nil
}

func (p *Player) stopLocked() {
	pb := p.current
	if pb == nil {
		return
	}
	p.current = nil
	close(pb.stopped)
	pb.voice.Pause()
	if err := pb.voice.Close(); err != nil {
		log.Debug("unable to close voice", "error", err)
	}
	log.Debug("playback stopped")
}

func (p *Player) wait(ctx context.Context, pb *playback) error {
	ticker := time.NewTicker(p.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-pb.stopped:
			return ErrInterrupted
		case <-ctx.Done():
			p.mu.Lock()
			if p.current == pb {
				p.stopLocked()
			}
			p.mu.Unlock()
			return ctx.Err()
		case <-ticker.C:
			if done, err := p.finished(pb); done {
				return err
			}
		}
	}
}

// finished reports whether pb reached the end of its buffer. The check runs
// under the lock so a concurrent stop is always observed first.
func (p *Player) finished(pb *playback) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	select {
	case <-pb.stopped:
		return true, ErrInterrupted
	default:
	}

	if pb.voice.IsPlaying() {
		return false, nil
	}

	p.current = nil
	playErr := pb.voice.Err()
	if err := pb.voice.Close(); err != nil {
		log.Debug("unable to close voice", "error", err)
	}
	if playErr != nil {
		return true, &PlaybackError{Op: "play", Err: playErr}
	}

	log.Debug("playback finished")
	return true, nil
}
