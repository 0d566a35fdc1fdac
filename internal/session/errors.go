package session

import (
	"errors"
	"fmt"

	"github.com/dgnsrekt/documentarian/internal/audio"
	"github.com/dgnsrekt/documentarian/internal/gemini"
)

var (
	// ErrBusy is returned when a summarize request is already in flight.
	ErrBusy = errors.New("a summary is already being generated")
	// ErrSuperseded is returned when a newer action replaced the request's
	// result before it arrived.
	ErrSuperseded = errors.New("request was superseded")
	// ErrNoSummary is returned by ReadAloud when there is nothing to read.
	ErrNoSummary = errors.New("no summary to read")
	// ErrInvalidTarget is returned by ReadAloud for an unknown segment.
	ErrInvalidTarget = errors.New("invalid read-aloud target")
)

// User-facing messages.
const (
	MsgInvalidURL       = "Please enter a valid YouTube URL."
	MsgEmptyTranscript  = "Please provide a transcript to summarize."
	MsgSummaryFailed    = "Failed to generate summary. The video might be private, unlisted, or search engines haven't indexed it yet."
	MsgAnalysisFailed   = "AI analysis failed. Please ensure the link is public and accessible."
	MsgTranscriptFailed = "Failed to summarize the transcript."
	MsgSampleFailed     = "Failed to generate summary from sample."
	MsgSpeechFailed     = "Could not generate speech for this text."
	MsgDecodeFailed     = "The generated audio could not be decoded."
	MsgPlaybackFailed   = "Audio playback failed."
)

// ValidationError reports input that is not a recognized video link.
type ValidationError struct {
	Input   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid input %q: %s", e.Input, e.Message)
}

// videoFailureMessage maps a video summary failure to a banner message.
func videoFailureMessage(err error) string {
	var sumErr *gemini.SummarizationError
	if errors.As(err, &sumErr) && sumErr.Reason != "" {
		return MsgAnalysisFailed + " (" + sumErr.Reason + ")"
	}
	return MsgSummaryFailed
}

func transcriptFailureMessage(err error) string {
	var sumErr *gemini.SummarizationError
	if errors.As(err, &sumErr) && sumErr.Reason != "" {
		return MsgTranscriptFailed + " (" + sumErr.Reason + ")"
	}
	return MsgTranscriptFailed
}

func sampleFailureMessage(error) string {
	return MsgSampleFailed
}

// readFailureMessage maps a read-aloud failure to the message shown next to
// the read-aloud control.
func readFailureMessage(err error) string {
	var (
		decErr *audio.DecodeError
		pbErr  *audio.PlaybackError
	)
	switch {
	case errors.As(err, &decErr):
		return MsgDecodeFailed
	case errors.As(err, &pbErr):
		return MsgPlaybackFailed
	default:
		return MsgSpeechFailed
	}
}
