//go:build !nocgo
// +build !nocgo

package audio

import (
	"errors"
	"fmt"
	"io"
	"runtime"
	"time"

	"github.com/charmbracelet/log"
	"github.com/ebitengine/oto/v3"
)

const readyTimeout = 5 * time.Second

type otoDevice struct {
	ctx *oto.Context
}

// OpenOto opens the system audio output with oto. Only one oto context can
// exist per process, so it must be called at most once.
func OpenOto() (Device, error) {
	options := &oto.NewContextOptions{
		SampleRate:   SampleRate,
		ChannelCount: Channels,
		Format:       oto.FormatFloat32LE,
	}

	switch runtime.GOOS {
	case "darwin":
		options.BufferSize = 100 * time.Millisecond
	case "windows":
		options.BufferSize = 80 * time.Millisecond
	default:
		options.BufferSize = 50 * time.Millisecond
	}

	log.Debug("opening audio device",
		"sample_rate", options.SampleRate,
		"channels", options.ChannelCount,
		"buffer_size", options.BufferSize)

	ctx, ready, err := oto.NewContext(options)
	if err != nil {
		return nil, fmt.Errorf("failed to create audio context: %w", err)
	}

	select {
	case <-ready:
	case <-time.After(readyTimeout):
		// oto contexts cannot be closed; it is left to the runtime.
		return nil, errors.New("audio context initialization timeout")
	}

	return &otoDevice{ctx: ctx}, nil
}

func (d *otoDevice) NewVoice(r io.Reader) Voice {
	return d.ctx.NewPlayer(r)
}

func (d *otoDevice) Resume() error {
	return d.ctx.Resume()
}

func (d *otoDevice) Suspend() error {
	return d.ctx.Suspend()
}
