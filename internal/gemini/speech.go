package gemini

import (
	"context"
	"encoding/base64"

	"github.com/charmbracelet/log"
	"google.golang.org/genai"
)

// MaxSpeechChars bounds the text sent for synthesis.
const MaxSpeechChars = 3000

// Speaker synthesizes speech with a Gemini TTS model.
type Speaker struct {
	gen   Generator
	model string
	voice string
}

// NewSpeaker returns a Speaker using model and voice, or the defaults.
func NewSpeaker(gen Generator, model, voice string) *Speaker {
	if model == "" {
		model = DefaultSpeechModel
	}
	if voice == "" {
		voice = DefaultVoice
	}
	return &Speaker{gen: gen, model: model, voice: voice}
}

// Synthesize returns the base64 PCM payload for text. literal asks for a
// verbatim reading; otherwise the model speaks a short bilingual synopsis.
func (s *Speaker) Synthesize(ctx context.Context, text string, literal bool) (string, error) {
	config := &genai.GenerateContentConfig{
		ResponseModalities: []string{string(genai.ModalityAudio)},
		SpeechConfig: &genai.SpeechConfig{
			VoiceConfig: &genai.VoiceConfig{
				PrebuiltVoiceConfig: &genai.PrebuiltVoiceConfig{VoiceName: s.voice},
			},
		},
	}
	contents := []*genai.Content{genai.NewContentFromText(speechInstruction(text, literal), genai.RoleUser)}

	log.Debug("synthesizing speech", "chars", len(text), "literal", literal, "voice", s.voice)
	resp, err := s.gen.GenerateContent(ctx, s.model, contents, config)
	if err != nil {
		return "", &SpeechError{Err: err}
	}

	blob := inlineAudio(resp)
	if blob == nil || len(blob.Data) == 0 {
		return "", &SpeechError{Err: ErrNoAudio}
	}
	log.Debug("speech synthesized", "bytes", len(blob.Data), "mime", blob.MIMEType)

	// The SDK decodes the wire payload; re-encode so every payload goes
	// through the same decoder.
	return base64.StdEncoding.EncodeToString(blob.Data), nil
}

func speechInstruction(text string, literal bool) string {
	text = truncateRunes(text, MaxSpeechChars)
	if literal {
		return "Read the following text exactly as written, clearly and naturally: " + text
	}
	return "Read aloud a concise summary of this content in BOTH English and Chinese. " +
		"Structure: First read a short English overview, then immediately read its Chinese translation. " +
		"Keep the total duration under 90 seconds. Content: " + text
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

// inlineAudio returns the first inline data part of the first candidate.
func inlineAudio(resp *genai.GenerateContentResponse) *genai.Blob {
	c := firstCandidate(resp)
	if c == nil || c.Content == nil {
		return nil
	}
	for _, part := range c.Content.Parts {
		if part != nil && part.InlineData != nil {
			return part.InlineData
		}
	}
	return nil
}
