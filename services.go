package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/charmbracelet/log"
	"github.com/dgnsrekt/documentarian/internal/audio"
	"github.com/dgnsrekt/documentarian/internal/gemini"
	"github.com/dgnsrekt/documentarian/internal/oembed"
	"github.com/dgnsrekt/documentarian/internal/session"
	"github.com/spf13/viper"
)

var errMissingAPIKey = errors.New("API_KEY environment variable not set")

type credentials struct {
	APIKey string `env:"API_KEY,notEmpty"`
}

// services holds everything a command needs to talk to the outside world.
type services struct {
	session *session.Session
	player  *audio.Player
}

func newServices(ctx context.Context) (*services, error) {
	creds, err := env.ParseAs[credentials]()
	if err != nil {
		log.Debug("unable to parse credentials", "error", err)
		return nil, errMissingAPIKey
	}

	gen, err := gemini.NewGenerator(ctx, creds.APIKey)
	if err != nil {
		return nil, fmt.Errorf("unable to set up gemini: %w", err)
	}

	summaryModel := viper.GetString("gemini.summary_model")
	speechModel := viper.GetString("gemini.speech_model")
	voice := viper.GetString("gemini.voice")
	log.Debug("services", "summary_model", summaryModel, "speech_model", speechModel, "voice", voice)

	player := audio.NewPlayer(audio.OpenOto)
	sess := session.New(
		oembed.New(viper.GetString("oembed.endpoint"), nil),
		gemini.NewSummarizer(gen, summaryModel),
		gemini.NewSpeaker(gen, speechModel, voice),
		player,
	)

	return &services{session: sess, player: player}, nil
}

// Close stops any read-aloud and releases the audio device.
func (s *services) Close() {
	s.session.Close()
	if err := s.player.Close(); err != nil {
		log.Debug("unable to close player", "error", err)
	}
}
