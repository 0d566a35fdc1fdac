package gemini

import (
	"errors"

	"google.golang.org/genai"
)

var (
	// ErrEmptySummary is returned when the model produced no text.
	ErrEmptySummary = errors.New("model returned no summary text")
	// ErrNoAudio is returned when the speech model produced no audio payload.
	ErrNoAudio = errors.New("no audio data returned from Gemini")
)

// SummarizationError reports a failed summary request.
type SummarizationError struct {
	Op     string // "video" or "text"
	Reason string // specific reason given by the service, if any
	Err    error
}

func (e *SummarizationError) Error() string {
	return "summarize " + e.Op + ": " + e.Err.Error()
}

func (e *SummarizationError) Unwrap() error {
	return e.Err
}

// SpeechError reports a failed speech request.
type SpeechError struct {
	Err error
}

func (e *SpeechError) Error() string {
	return "synthesize speech: " + e.Err.Error()
}

func (e *SpeechError) Unwrap() error {
	return e.Err
}

// serviceReason extracts the message of an API error, if err carries one.
func serviceReason(err error) string {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil {
		return apiErrPtr.Message
	}
	return ""
}
