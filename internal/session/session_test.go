package session

import (
	"context"
	"encoding/base64"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dgnsrekt/documentarian/internal/audio"
	"github.com/dgnsrekt/documentarian/internal/gemini"
	"github.com/dgnsrekt/documentarian/internal/oembed"
)

const testSummary = `# Stellar Phone X
A premium phone with a great camera.
## Highlights
* Titanium frame
* 钛金属边框`

var testPayload = base64.StdEncoding.EncodeToString([]byte{0, 0, 0, 64, 0, 192, 255, 127})

type fakeMetadata struct {
	mu    sync.Mutex
	meta  *oembed.VideoMetadata
	calls int
}

func (f *fakeMetadata) Fetch(_ context.Context, _ string) *oembed.VideoMetadata {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.meta
}

func (f *fakeMetadata) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeSummarizer struct {
	result gemini.Result
	err    error
	gate   chan struct{}

	mu         sync.Mutex
	videoCalls int
	textCalls  int
	hints      gemini.Hints
	text       string
}

func (f *fakeSummarizer) SummarizeVideo(_ context.Context, _ string, hints gemini.Hints) (gemini.Result, error) {
	f.mu.Lock()
	f.videoCalls++
	f.hints = hints
	f.mu.Unlock()
	if f.gate != nil {
		<-f.gate
	}
	return f.result, f.err
}

func (f *fakeSummarizer) SummarizeText(_ context.Context, text string) (gemini.Result, error) {
	f.mu.Lock()
	f.textCalls++
	f.text = text
	f.mu.Unlock()
	if f.gate != nil {
		<-f.gate
	}
	return f.result, f.err
}

func (f *fakeSummarizer) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.videoCalls + f.textCalls
}

type speechCall struct {
	text    string
	literal bool
}

type fakeSpeech struct {
	payload string
	err     error
	gate    chan struct{}

	mu    sync.Mutex
	calls []speechCall
}

func (f *fakeSpeech) Synthesize(_ context.Context, text string, literal bool) (string, error) {
	f.mu.Lock()
	f.calls = append(f.calls, speechCall{text: text, literal: literal})
	gate := f.gate
	f.mu.Unlock()
	if gate != nil {
		<-gate
	}
	return f.payload, f.err
}

func (f *fakeSpeech) Calls() []speechCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]speechCall(nil), f.calls...)
}

// fakePlayer blocks in Play until Stop, ctx cancellation or a value on
// finish.
type fakePlayer struct {
	finish chan struct{}

	mu      sync.Mutex
	events  []string
	stopped chan struct{}
}

func newFakePlayer() *fakePlayer {
	return &fakePlayer{finish: make(chan struct{})}
}

func (p *fakePlayer) Play(ctx context.Context, _ *audio.Buffer) error {
	p.mu.Lock()
	p.events = append(p.events, "play")
	stopped := make(chan struct{})
	p.stopped = stopped
	p.mu.Unlock()

	select {
	case <-stopped:
		return audio.ErrInterrupted
	case <-ctx.Done():
		return ctx.Err()
	case <-p.finish:
		return nil
	}
}

func (p *fakePlayer) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, "stop")
	if p.stopped != nil {
		close(p.stopped)
		p.stopped = nil
	}
}

func (p *fakePlayer) Events() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.events...)
}

func (p *fakePlayer) Plays() int {
	n := 0
	for _, e := range p.Events() {
		if e == "play" {
			n++
		}
	}
	return n
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(time.Millisecond)
	}
}

type fixture struct {
	meta    *fakeMetadata
	sum     *fakeSummarizer
	speech  *fakeSpeech
	player  *fakePlayer
	session *Session
}

func newFixture() *fixture {
	f := &fixture{
		meta:   &fakeMetadata{},
		sum:    &fakeSummarizer{result: gemini.Result{Text: testSummary, Sources: []string{"https://www.example.com/review"}}},
		speech: &fakeSpeech{payload: testPayload},
		player: newFakePlayer(),
	}
	f.session = New(f.meta, f.sum, f.speech, f.player)
	return f
}

// ready returns a fixture whose session holds testSummary.
func ready(t *testing.T) *fixture {
	t.Helper()
	f := newFixture()
	if err := f.session.SummarizeURL(context.Background(), "https://youtu.be/abc123"); err != nil {
		t.Fatalf("SummarizeURL() unexpected error: %v", err)
	}
	return f
}

func TestSummarizeURL(t *testing.T) {
	tests := []struct {
		name      string
		meta      *oembed.VideoMetadata
		wantHints gemini.Hints
	}{
		{
			name:      "with metadata",
			meta:      &oembed.VideoMetadata{Title: "Review", AuthorName: "TechFlow"},
			wantHints: gemini.Hints{Title: "Review", Author: "TechFlow"},
		},
		{
			name: "metadata unavailable",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			f.meta.meta = tt.meta

			if err := f.session.SummarizeURL(context.Background(), "  https://www.youtube.com/watch?v=abc123 "); err != nil {
				t.Fatalf("SummarizeURL() error = %v", err)
			}

			st := f.session.Snapshot()
			if st.Phase != PhaseReady {
				t.Errorf("Phase = %v, want %v", st.Phase, PhaseReady)
			}
			if st.Summary != testSummary {
				t.Errorf("Summary = %q", st.Summary)
			}
			if len(st.Sources) != 1 {
				t.Errorf("Sources = %v, want one source", st.Sources)
			}
			if st.Metadata != tt.meta {
				t.Errorf("Metadata = %v, want %v", st.Metadata, tt.meta)
			}
			if st.URL != "https://www.youtube.com/watch?v=abc123" {
				t.Errorf("URL = %q", st.URL)
			}
			if f.sum.hints != tt.wantHints {
				t.Errorf("hints = %+v, want %+v", f.sum.hints, tt.wantHints)
			}
		})
	}
}

func TestSummarizeURLInvalid(t *testing.T) {
	f := newFixture()

	err := f.session.SummarizeURL(context.Background(), "https://vimeo.com/123")

	var valErr *ValidationError
	if !errors.As(err, &valErr) {
		t.Fatalf("SummarizeURL() error = %v, want ValidationError", err)
	}
	st := f.session.Snapshot()
	if st.Phase != PhaseError || st.Err != MsgInvalidURL {
		t.Errorf("state = %v %q, want error %q", st.Phase, st.Err, MsgInvalidURL)
	}
	if f.meta.Calls() != 0 || f.sum.Calls() != 0 {
		t.Errorf("network calls made: metadata=%d summary=%d", f.meta.Calls(), f.sum.Calls())
	}
}

func TestSummarizeURLFailure(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		wantMsg string
	}{
		{
			name:    "no reason",
			err:     &gemini.SummarizationError{Op: "summarize video", Err: gemini.ErrEmptySummary},
			wantMsg: MsgSummaryFailed,
		},
		{
			name:    "service reason",
			err:     &gemini.SummarizationError{Op: "summarize video", Reason: "quota exceeded", Err: errors.New("429")},
			wantMsg: MsgAnalysisFailed + " (quota exceeded)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			f.sum.err = tt.err

			if err := f.session.SummarizeURL(context.Background(), "youtube.com/watch?v=x"); !errors.Is(err, tt.err) {
				t.Fatalf("SummarizeURL() error = %v, want %v", err, tt.err)
			}
			st := f.session.Snapshot()
			if st.Phase != PhaseError {
				t.Errorf("Phase = %v, want error", st.Phase)
			}
			if st.Err != tt.wantMsg {
				t.Errorf("Err = %q, want %q", st.Err, tt.wantMsg)
			}
			if st.Summary != "" {
				t.Errorf("Summary = %q, want empty", st.Summary)
			}
		})
	}
}

func TestSample(t *testing.T) {
	f := newFixture()

	if err := f.session.Sample(context.Background()); err != nil {
		t.Fatalf("Sample() error = %v", err)
	}
	if f.meta.Calls() != 0 {
		t.Errorf("metadata fetched %d times, want 0", f.meta.Calls())
	}
	if f.sum.text != SampleTranscript {
		t.Error("sample transcript was not summarized")
	}
	st := f.session.Snapshot()
	if st.Metadata == nil || st.Metadata.Title != SampleMetadata.Title {
		t.Errorf("Metadata = %v, want sample metadata", st.Metadata)
	}
	if st.Phase != PhaseReady {
		t.Errorf("Phase = %v, want ready", st.Phase)
	}
}

func TestSampleFailure(t *testing.T) {
	f := newFixture()
	f.sum.err = &gemini.SummarizationError{Op: "summarize text", Reason: "boom", Err: errors.New("boom")}

	if err := f.session.Sample(context.Background()); err == nil {
		t.Fatal("Sample() error = nil, want error")
	}
	if st := f.session.Snapshot(); st.Err != MsgSampleFailed {
		t.Errorf("Err = %q, want %q", st.Err, MsgSampleFailed)
	}
}

func TestSummarizeTranscriptEmpty(t *testing.T) {
	f := newFixture()

	var valErr *ValidationError
	if err := f.session.SummarizeTranscript(context.Background(), " \n ", nil); !errors.As(err, &valErr) {
		t.Fatalf("SummarizeTranscript() error = %v, want ValidationError", err)
	}
	if f.sum.Calls() != 0 {
		t.Error("summarizer called for empty transcript")
	}
}

func TestSummarizeBusy(t *testing.T) {
	f := newFixture()
	f.sum.gate = make(chan struct{})

	done := make(chan error, 1)
	go func() { done <- f.session.SummarizeURL(context.Background(), "https://youtu.be/abc") }()
	waitFor(t, "summarizing", func() bool { return f.session.Snapshot().Phase == PhaseSummarizing })

	if err := f.session.Sample(context.Background()); !errors.Is(err, ErrBusy) {
		t.Errorf("Sample() while loading error = %v, want ErrBusy", err)
	}

	close(f.sum.gate)
	if err := <-done; err != nil {
		t.Fatalf("SummarizeURL() error = %v", err)
	}
	if f.sum.Calls() != 1 {
		t.Errorf("summarizer called %d times, want 1", f.sum.Calls())
	}
}

func TestResetDiscardsStaleSummary(t *testing.T) {
	f := newFixture()
	f.sum.gate = make(chan struct{})

	done := make(chan error, 1)
	go func() { done <- f.session.SummarizeURL(context.Background(), "https://youtu.be/abc") }()
	waitFor(t, "summarizing", func() bool { return f.session.Snapshot().Phase == PhaseSummarizing })

	f.session.Reset()
	close(f.sum.gate)

	if err := <-done; !errors.Is(err, ErrSuperseded) {
		t.Fatalf("SummarizeURL() error = %v, want ErrSuperseded", err)
	}
	if st := f.session.Snapshot(); st.Phase != PhaseIdle || st.Summary != "" {
		t.Errorf("state = %v %q, want idle and empty", st.Phase, st.Summary)
	}
}

func TestReadAloudWithoutSummary(t *testing.T) {
	f := newFixture()
	if err := f.session.ReadAloud(context.Background(), FullDocument); !errors.Is(err, ErrNoSummary) {
		t.Errorf("ReadAloud() error = %v, want ErrNoSummary", err)
	}
}

func TestReadAloudInvalidTarget(t *testing.T) {
	f := ready(t)
	for _, target := range []Target{-2, 5, 100} {
		if err := f.session.ReadAloud(context.Background(), target); !errors.Is(err, ErrInvalidTarget) {
			t.Errorf("ReadAloud(%v) error = %v, want ErrInvalidTarget", target, err)
		}
	}
}

func TestReadAloudCompletes(t *testing.T) {
	tests := []struct {
		name        string
		target      Target
		wantLiteral bool
		wantText    string
	}{
		{name: "full document", target: FullDocument, wantLiteral: false, wantText: "Stellar Phone X"},
		{name: "segment", target: 3, wantLiteral: true, wantText: "Titanium frame"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := ready(t)

			done := make(chan error, 1)
			go func() { done <- f.session.ReadAloud(context.Background(), tt.target) }()
			waitFor(t, "playing", func() bool { return f.session.Snapshot().Playback == PlaybackPlaying })

			st := f.session.Snapshot()
			if !st.Reading(tt.target) {
				t.Errorf("Reading(%v) = false while playing", tt.target)
			}

			f.player.finish <- struct{}{}
			if err := <-done; err != nil {
				t.Fatalf("ReadAloud() error = %v", err)
			}

			calls := f.speech.Calls()
			if len(calls) != 1 {
				t.Fatalf("speech called %d times, want 1", len(calls))
			}
			if calls[0].literal != tt.wantLiteral {
				t.Errorf("literal = %v, want %v", calls[0].literal, tt.wantLiteral)
			}
			if !strings.Contains(calls[0].text, tt.wantText) {
				t.Errorf("text = %q, want it to contain %q", calls[0].text, tt.wantText)
			}
			if strings.ContainsAny(calls[0].text, "*#") {
				t.Errorf("text = %q still contains markup", calls[0].text)
			}

			st = f.session.Snapshot()
			if st.Playback != PlaybackIdle || st.HasTarget {
				t.Errorf("after completion playback = %v target = %v", st.Playback, st.HasTarget)
			}
		})
	}
}

func TestReadAloudToggleOff(t *testing.T) {
	f := ready(t)

	first := make(chan error, 1)
	go func() { first <- f.session.ReadAloud(context.Background(), 1) }()
	waitFor(t, "playing", func() bool { return f.player.Plays() == 1 })

	if err := f.session.ReadAloud(context.Background(), 1); err != nil {
		t.Fatalf("toggle ReadAloud() error = %v", err)
	}
	if err := <-first; !errors.Is(err, audio.ErrInterrupted) {
		t.Errorf("first ReadAloud() error = %v, want ErrInterrupted", err)
	}

	if n := len(f.speech.Calls()); n != 1 {
		t.Errorf("speech called %d times, want 1", n)
	}
	if got := f.player.Events(); strings.Join(got, ",") != "play,stop" {
		t.Errorf("player events = %v, want [play stop]", got)
	}
	if st := f.session.Snapshot(); st.Playback != PlaybackIdle || st.HasTarget {
		t.Errorf("after toggle playback = %v target = %v", st.Playback, st.HasTarget)
	}
}

func TestReadAloudSwitchTarget(t *testing.T) {
	f := ready(t)

	first := make(chan error, 1)
	go func() { first <- f.session.ReadAloud(context.Background(), 1) }()
	waitFor(t, "first play", func() bool { return f.player.Plays() == 1 })

	second := make(chan error, 1)
	go func() { second <- f.session.ReadAloud(context.Background(), 3) }()
	waitFor(t, "second play", func() bool { return f.player.Plays() == 2 })

	if err := <-first; !errors.Is(err, audio.ErrInterrupted) {
		t.Errorf("first ReadAloud() error = %v, want ErrInterrupted", err)
	}
	if got := f.player.Events(); strings.Join(got, ",") != "play,stop,play" {
		t.Errorf("player events = %v, want [play stop play]", got)
	}
	if st := f.session.Snapshot(); !st.Reading(3) {
		t.Errorf("Reading(3) = false, state %+v", st)
	}

	f.player.finish <- struct{}{}
	if err := <-second; err != nil {
		t.Errorf("second ReadAloud() error = %v", err)
	}
}

func TestReadAloudStaleSpeechDiscarded(t *testing.T) {
	f := ready(t)
	f.speech.gate = make(chan struct{})

	done := make(chan error, 1)
	go func() { done <- f.session.ReadAloud(context.Background(), FullDocument) }()
	waitFor(t, "preparing", func() bool { return f.session.Snapshot().Playback == PlaybackPreparing })

	f.session.StopReading()
	close(f.speech.gate)

	if err := <-done; !errors.Is(err, audio.ErrInterrupted) {
		t.Errorf("ReadAloud() error = %v, want ErrInterrupted", err)
	}
	if n := f.player.Plays(); n != 0 {
		t.Errorf("player started %d times, want 0", n)
	}
	if st := f.session.Snapshot(); st.Playback != PlaybackIdle {
		t.Errorf("Playback = %v, want idle", st.Playback)
	}
}

func TestReadAloudFailure(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		err     error
		wantMsg string
	}{
		{
			name:    "speech error",
			err:     &gemini.SpeechError{Err: gemini.ErrNoAudio},
			wantMsg: MsgSpeechFailed,
		},
		{
			name:    "odd payload",
			payload: base64.StdEncoding.EncodeToString([]byte{1, 2, 3}),
			wantMsg: MsgDecodeFailed,
		},
		{
			name:    "not base64",
			payload: "%%%",
			wantMsg: MsgDecodeFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := ready(t)
			f.speech.payload = tt.payload
			f.speech.err = tt.err

			if err := f.session.ReadAloud(context.Background(), 0); err == nil {
				t.Fatal("ReadAloud() error = nil, want error")
			}

			st := f.session.Snapshot()
			if st.ReadErr != tt.wantMsg {
				t.Errorf("ReadErr = %q, want %q", st.ReadErr, tt.wantMsg)
			}
			if st.Playback != PlaybackIdle || st.HasTarget {
				t.Errorf("playback = %v target = %v, want idle", st.Playback, st.HasTarget)
			}
			if st.Phase != PhaseReady {
				t.Errorf("Phase = %v, want ready", st.Phase)
			}
			if n := f.player.Plays(); n != 0 {
				t.Errorf("player started %d times, want 0", n)
			}
		})
	}
}

func TestNewSummaryStopsReading(t *testing.T) {
	f := ready(t)

	done := make(chan error, 1)
	go func() { done <- f.session.ReadAloud(context.Background(), FullDocument) }()
	waitFor(t, "playing", func() bool { return f.player.Plays() == 1 })

	if err := f.session.Sample(context.Background()); err != nil {
		t.Fatalf("Sample() error = %v", err)
	}
	if err := <-done; !errors.Is(err, audio.ErrInterrupted) {
		t.Errorf("ReadAloud() error = %v, want ErrInterrupted", err)
	}
	if st := f.session.Snapshot(); st.Playback != PlaybackIdle {
		t.Errorf("Playback = %v, want idle", st.Playback)
	}
}

func TestSubscribeLatestWins(t *testing.T) {
	f := newFixture()
	updates := f.session.Subscribe()

	if err := f.session.SummarizeURL(context.Background(), "https://youtu.be/abc"); err != nil {
		t.Fatalf("SummarizeURL() error = %v", err)
	}

	select {
	case st := <-updates:
		if st.Phase != PhaseReady {
			t.Errorf("latest Phase = %v, want ready", st.Phase)
		}
	default:
		t.Fatal("no update delivered")
	}

	f.session.Close()
	if _, ok := <-updates; ok {
		t.Error("channel still open after Close")
	}
}

func TestValidURL(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"https://www.youtube.com/watch?v=dQw4w9WgXcQ", true},
		{"http://youtube.com/watch?v=x", true},
		{"https://m.youtube.com/watch?v=x", true},
		{"youtu.be/abc", true},
		{"https://youtu.be/abc", true},
		{"https://youtube.com/shorts/abc", true},
		{"  https://youtu.be/abc  ", true},
		{"https://youtube.com/", false},
		{"https://vimeo.com/123", false},
		{"not a url", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := ValidURL(tt.input); got != tt.want {
			t.Errorf("ValidURL(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}
