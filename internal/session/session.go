package session

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/dgnsrekt/documentarian/internal/audio"
	"github.com/dgnsrekt/documentarian/internal/document"
	"github.com/dgnsrekt/documentarian/internal/gemini"
	"github.com/dgnsrekt/documentarian/internal/oembed"
)

// MetadataFetcher looks up video metadata. A nil result means the session
// proceeds without it.
type MetadataFetcher interface {
	Fetch(ctx context.Context, url string) *oembed.VideoMetadata
}

// Summarizer produces summaries of videos and transcripts.
type Summarizer interface {
	SummarizeVideo(ctx context.Context, url string, hints gemini.Hints) (gemini.Result, error)
	SummarizeText(ctx context.Context, text string) (gemini.Result, error)
}

// Synthesizer converts text to a base64 PCM payload.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string, literal bool) (string, error)
}

// Player plays decoded audio. Play blocks until the buffer ends or is
// stopped.
type Player interface {
	Play(ctx context.Context, buf *audio.Buffer) error
	Stop()
}

// Session sequences one summarize flow and its read-aloud sub-flow. All
// methods are safe for concurrent use; Summarize and ReadAloud block until
// their work completes, so callers usually run them in a goroutine.
type Session struct {
	metadata   MetadataFetcher
	summarizer Summarizer
	speech     Synthesizer
	player     Player

	mu          sync.Mutex
	state       State
	phase       *StateMachine[Phase]
	playback    *StateMachine[PlaybackPhase]
	generation  uint64
	readGen     uint64
	cancelRead  context.CancelFunc
	subscribers []chan State
}

// New returns an idle session.
func New(metadata MetadataFetcher, summarizer Summarizer, speech Synthesizer, player Player) *Session {
	return &Session{
		metadata:   metadata,
		summarizer: summarizer,
		speech:     speech,
		player:     player,
		phase:      newPhaseMachine(),
		playback:   newPlaybackMachine(),
	}
}

// Subscribe returns a channel that receives a snapshot after every state
// change. Slow receivers only see the latest snapshot.
func (s *Session) Subscribe() <-chan State {
	s.mu.Lock()
	defer s.mu.Unlock()

	ch := make(chan State, 1)
	s.subscribers = append(s.subscribers, ch)
	return ch
}

// Snapshot returns the current state.
func (s *Session) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Segments returns the display segments of the current summary.
func (s *Session) Segments() []document.Segment {
	s.mu.Lock()
	defer s.mu.Unlock()
	return document.Segments(s.state.Summary)
}

// SummarizeURL validates input, looks up metadata and summarizes the video.
// Metadata failures never fail the flow.
func (s *Session) SummarizeURL(ctx context.Context, input string) error {
	input = strings.TrimSpace(input)

	s.mu.Lock()
	if s.state.Loading() {
		s.mu.Unlock()
		return ErrBusy
	}
	if !ValidURL(input) {
		s.failLocked(MsgInvalidURL)
		s.mu.Unlock()
		return &ValidationError{Input: input, Message: MsgInvalidURL}
	}
	gen := s.beginLocked(input, nil)
	s.setPhaseLocked(PhaseMetadataPending)
	s.mu.Unlock()

	meta := s.metadata.Fetch(ctx, input)

	s.mu.Lock()
	if gen != s.generation {
		s.mu.Unlock()
		return ErrSuperseded
	}
	s.state.Metadata = meta
	s.setPhaseLocked(PhaseSummarizing)
	s.mu.Unlock()

	var hints gemini.Hints
	if meta != nil {
		hints = gemini.Hints{Title: meta.Title, Author: meta.AuthorName}
	}

	res, err := s.summarizer.SummarizeVideo(ctx, input, hints)
	return s.finish(gen, res, err, videoFailureMessage)
}

// SummarizeTranscript summarizes text directly. meta is optional display
// metadata.
func (s *Session) SummarizeTranscript(ctx context.Context, text string, meta *oembed.VideoMetadata) error {
	return s.summarizeText(ctx, text, meta, transcriptFailureMessage)
}

// Sample summarizes the built-in sample transcript.
func (s *Session) Sample(ctx context.Context) error {
	meta := SampleMetadata
	return s.summarizeText(ctx, SampleTranscript, &meta, sampleFailureMessage)
}

func (s *Session) summarizeText(ctx context.Context, text string, meta *oembed.VideoMetadata, message func(error) string) error {
	s.mu.Lock()
	if s.state.Loading() {
		s.mu.Unlock()
		return ErrBusy
	}
	if strings.TrimSpace(text) == "" {
		s.failLocked(MsgEmptyTranscript)
		s.mu.Unlock()
		return &ValidationError{Message: MsgEmptyTranscript}
	}
	gen := s.beginLocked("", meta)
	s.setPhaseLocked(PhaseSummarizing)
	s.mu.Unlock()

	res, err := s.summarizer.SummarizeText(ctx, text)
	return s.finish(gen, res, err, message)
}

// Reset stops reading and returns the session to idle. Results of requests
// still in flight are discarded.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.generation++
	s.stopReadingLocked()
	s.state = State{}
	s.phase = newPhaseMachine()
	s.notifyLocked()
}

// ReadAloud synthesizes and plays target. Asking for the target that is
// already being prepared or played stops it instead. Any other active
// read-aloud is stopped first. It returns nil when playback ran to the end
// or was toggled off, and audio.ErrInterrupted when a later action replaced
// it. Failures are also recorded in State.ReadErr.
func (s *Session) ReadAloud(ctx context.Context, target Target) error {
	s.mu.Lock()
	if s.state.Phase != PhaseReady {
		s.mu.Unlock()
		return ErrNoSummary
	}

	text, literal, err := s.textLocked(target)
	if err != nil {
		s.mu.Unlock()
		return err
	}

	if s.state.Reading(target) {
		log.Debug("toggling read-aloud off", "target", target)
		s.stopReadingLocked()
		s.notifyLocked()
		s.mu.Unlock()
		return nil
	}

	s.stopReadingLocked()
	gen := s.readGen
	readCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	s.cancelRead = cancel
	s.state.Target = target
	s.state.HasTarget = true
	s.state.ReadErr = ""
	s.setPlaybackLocked(PlaybackPreparing)
	s.mu.Unlock()

	payload, err := s.speech.Synthesize(ctx, document.Speakable(text), literal)

	s.mu.Lock()
	if gen != s.readGen {
		s.mu.Unlock()
		log.Debug("discarding stale speech", "target", target)
		return audio.ErrInterrupted
	}
	if err != nil {
		s.failReadLocked(err)
		s.mu.Unlock()
		return err
	}

	buf, err := audio.DecodePCM(payload)
	if err != nil {
		s.failReadLocked(err)
		s.mu.Unlock()
		return err
	}
	s.setPlaybackLocked(PlaybackPlaying)
	s.mu.Unlock()

	playErr := s.player.Play(readCtx, buf)

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.readGen {
		return audio.ErrInterrupted
	}
	if playErr != nil && !errors.Is(playErr, audio.ErrInterrupted) && ctx.Err() == nil {
		s.failReadLocked(playErr)
		return playErr
	}
	s.clearReadingLocked()
	s.notifyLocked()
	return playErr
}

// StopReading stops any active read-aloud.
func (s *Session) StopReading() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state.Playback == PlaybackIdle {
		return
	}
	s.stopReadingLocked()
	s.notifyLocked()
}

// Close stops reading and closes all subscriber channels.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopReadingLocked()
	for _, ch := range s.subscribers {
		close(ch)
	}
	s.subscribers = nil
}

func (s *Session) textLocked(target Target) (string, bool, error) {
	if target == FullDocument {
		return s.state.Summary, false, nil
	}
	segs := document.Segments(s.state.Summary)
	if target < 0 || int(target) >= len(segs) {
		return "", false, ErrInvalidTarget
	}
	return segs[target].Raw, true, nil
}

// beginLocked starts a new summarize action and returns its generation.
func (s *Session) beginLocked(url string, meta *oembed.VideoMetadata) uint64 {
	s.generation++
	s.stopReadingLocked()
	s.state = State{URL: url, Metadata: meta}
	s.phase = newPhaseMachine()
	return s.generation
}

func (s *Session) finish(gen uint64, res gemini.Result, err error, message func(error) string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.generation {
		log.Debug("discarding stale summary")
		return ErrSuperseded
	}
	if err != nil {
		log.Error("summary failed", "error", err)
		s.failLocked(message(err))
		return err
	}

	s.state.Summary = res.Text
	s.state.Sources = res.Sources
	s.setPhaseLocked(PhaseReady)
	return nil
}

func (s *Session) failLocked(msg string) {
	s.state.Err = msg
	s.setPhaseLocked(PhaseError)
}

func (s *Session) setPhaseLocked(to Phase) {
	from := s.phase.Current()
	if !s.phase.Transition(to) {
		log.Warn("invalid phase transition", "from", from, "to", to)
	}
	s.state.Phase = s.phase.Current()
	log.Debug("phase changed", "from", from, "to", s.state.Phase)
	s.notifyLocked()
}

func (s *Session) setPlaybackLocked(to PlaybackPhase) {
	if s.playback.Current() == to {
		return
	}
	if !s.playback.Transition(to) {
		log.Warn("invalid playback transition", "from", s.playback.Current(), "to", to)
	}
	s.state.Playback = s.playback.Current()
	s.notifyLocked()
}

// stopReadingLocked invalidates the active read-aloud and halts its audio.
func (s *Session) stopReadingLocked() {
	s.readGen++
	if s.cancelRead != nil {
		s.cancelRead()
		s.cancelRead = nil
	}
	if s.state.Playback != PlaybackIdle {
		s.player.Stop()
	}
	s.clearReadingLocked()
}

func (s *Session) clearReadingLocked() {
	s.state.HasTarget = false
	s.state.Target = 0
	if s.playback.Current() != PlaybackIdle {
		s.playback.Transition(PlaybackIdle)
	}
	s.state.Playback = PlaybackIdle
}

func (s *Session) failReadLocked(err error) {
	log.Error("read aloud failed", "target", s.state.Target, "error", err)
	s.state.ReadErr = readFailureMessage(err)
	s.clearReadingLocked()
	s.notifyLocked()
}

func (s *Session) snapshotLocked() State {
	snap := s.state
	if s.state.Sources != nil {
		snap.Sources = append([]string(nil), s.state.Sources...)
	}
	return snap
}

func (s *Session) notifyLocked() {
	snap := s.snapshotLocked()
	for _, ch := range s.subscribers {
		select {
		case <-ch:
		default:
		}
		ch <- snap
	}
}
