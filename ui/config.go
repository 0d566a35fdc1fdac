package ui

import "time"

// Config contains TUI-specific configuration.
type Config struct {
	GlamourMaxWidth uint
	GlamourStyle    string `env:"GLAMOUR_STYLE"`
	EnableMouse     bool

	// Transcript file to summarize on start, optionally re-summarized on
	// every change.
	TranscriptPath string
	Watch          bool
	WatchInterval  time.Duration

	// For debugging the UI
	GlamourEnabled bool `env:"DOCUMENTARIAN_ENABLE_GLAMOUR" envDefault:"true"`
}
