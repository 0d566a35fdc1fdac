// Package gemini talks to the Gemini API: search-grounded summaries of videos
// and transcripts, and speech synthesis of summary text.
package gemini

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

// Default models and voice.
const (
	DefaultSummaryModel = "gemini-3-pro-preview"
	DefaultSpeechModel  = "gemini-2.5-flash-preview-tts"
	DefaultVoice        = "Kore"
)

// Generator is the subset of the genai models service we use.
// *genai.Models satisfies it.
type Generator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// NewGenerator creates a Gemini API client for apiKey.
func NewGenerator(ctx context.Context, apiKey string) (Generator, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create client: %w", err)
	}
	return client.Models, nil
}

// firstCandidate returns the first candidate of resp, or nil.
func firstCandidate(resp *genai.GenerateContentResponse) *genai.Candidate {
	if resp == nil || len(resp.Candidates) == 0 {
		return nil
	}
	return resp.Candidates[0]
}
