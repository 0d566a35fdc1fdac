package gemini

import (
	"context"
	"strings"

	"github.com/charmbracelet/log"
	"google.golang.org/genai"
)

// TranscriptSource is the only source reported for transcript summaries.
const TranscriptSource = "Provided Transcript"

// Result is a generated summary and the sources it cites.
type Result struct {
	Text    string
	Sources []string
}

// Summarizer produces bilingual summaries of videos and transcripts.
type Summarizer struct {
	gen   Generator
	model string
}

// NewSummarizer returns a Summarizer using model, or DefaultSummaryModel.
func NewSummarizer(gen Generator, model string) *Summarizer {
	if model == "" {
		model = DefaultSummaryModel
	}
	return &Summarizer{gen: gen, model: model}
}

var blockNone = []*genai.SafetySetting{
	{Category: genai.HarmCategoryHateSpeech, Threshold: genai.HarmBlockThresholdBlockNone},
	{Category: genai.HarmCategorySexuallyExplicit, Threshold: genai.HarmBlockThresholdBlockNone},
	{Category: genai.HarmCategoryHarassment, Threshold: genai.HarmBlockThresholdBlockNone},
	{Category: genai.HarmCategoryDangerousContent, Threshold: genai.HarmBlockThresholdBlockNone},
}

// SummarizeVideo summarizes the video at videoURL using search grounding.
// Sources are the cited web URIs, de-duplicated in first-seen order.
func (s *Summarizer) SummarizeVideo(ctx context.Context, videoURL string, hints Hints) (Result, error) {
	config := &genai.GenerateContentConfig{
		Tools:          []*genai.Tool{{GoogleSearch: &genai.GoogleSearch{}}},
		SafetySettings: blockNone,
	}

	log.Debug("summarizing video", "url", videoURL, "title", hints.Title, "model", s.model)
	resp, err := s.gen.GenerateContent(ctx, s.model, genai.Text(videoPrompt(videoURL, hints)), config)
	if err != nil {
		return Result{}, &SummarizationError{Op: "video", Reason: serviceReason(err), Err: err}
	}

	text := responseText(resp)
	if strings.TrimSpace(text) == "" {
		return Result{}, &SummarizationError{Op: "video", Err: ErrEmptySummary}
	}

	sources := groundingSources(resp)
	log.Debug("video summarized", "chars", len(text), "sources", len(sources))
	return Result{Text: text, Sources: sources}, nil
}

// SummarizeText summarizes a transcript without search grounding.
func (s *Summarizer) SummarizeText(ctx context.Context, text string) (Result, error) {
	log.Debug("summarizing text", "chars", len(text), "model", s.model)
	resp, err := s.gen.GenerateContent(ctx, s.model, genai.Text(textPrompt(text)), nil)
	if err != nil {
		return Result{}, &SummarizationError{Op: "text", Reason: serviceReason(err), Err: err}
	}

	summary := responseText(resp)
	if strings.TrimSpace(summary) == "" {
		return Result{}, &SummarizationError{Op: "text", Err: ErrEmptySummary}
	}
	return Result{Text: summary, Sources: []string{TranscriptSource}}, nil
}

// responseText concatenates the non-thought text parts of the first candidate.
func responseText(resp *genai.GenerateContentResponse) string {
	c := firstCandidate(resp)
	if c == nil || c.Content == nil {
		return ""
	}
	var b strings.Builder
	for _, part := range c.Content.Parts {
		if part == nil || part.Thought {
			continue
		}
		b.WriteString(part.Text)
	}
	return b.String()
}

// groundingSources returns the web URIs of the first candidate's grounding
// chunks without duplicates, in first-seen order.
func groundingSources(resp *genai.GenerateContentResponse) []string {
	sources := []string{}
	c := firstCandidate(resp)
	if c == nil || c.GroundingMetadata == nil {
		return sources
	}

	seen := make(map[string]struct{})
	for _, chunk := range c.GroundingMetadata.GroundingChunks {
		if chunk == nil || chunk.Web == nil || chunk.Web.URI == "" {
			continue
		}
		if _, ok := seen[chunk.Web.URI]; ok {
			continue
		}
		seen[chunk.Web.URI] = struct{}{}
		sources = append(sources, chunk.Web.URI)
	}
	return sources
}
