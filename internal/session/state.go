package session

import (
	"strconv"

	"github.com/dgnsrekt/documentarian/internal/oembed"
)

// Phase is the state of the summarize flow.
type Phase int

const (
	// PhaseIdle indicates nothing has been requested yet.
	PhaseIdle Phase = iota
	// PhaseMetadataPending indicates the metadata lookup is in flight.
	PhaseMetadataPending
	// PhaseSummarizing indicates the summary request is in flight.
	PhaseSummarizing
	// PhaseReady indicates a summary is available.
	PhaseReady
	// PhaseError indicates the last request failed.
	PhaseError
)

// String returns the string representation of the phase.
func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseMetadataPending:
		return "metadata pending"
	case PhaseSummarizing:
		return "summarizing"
	case PhaseReady:
		return "ready"
	case PhaseError:
		return "error"
	default:
		return "unknown"
	}
}

// PlaybackPhase is the state of the read-aloud sub-flow.
type PlaybackPhase int

const (
	// PlaybackIdle indicates nothing is being read.
	PlaybackIdle PlaybackPhase = iota
	// PlaybackPreparing indicates speech is being synthesized.
	PlaybackPreparing
	// PlaybackPlaying indicates audio is playing.
	PlaybackPlaying
)

// String returns the string representation of the playback phase.
func (p PlaybackPhase) String() string {
	switch p {
	case PlaybackIdle:
		return "idle"
	case PlaybackPreparing:
		return "preparing"
	case PlaybackPlaying:
		return "playing"
	default:
		return "unknown"
	}
}

// Target identifies what is being read aloud: a segment index, or
// FullDocument.
type Target int

// FullDocument targets the whole summary.
const FullDocument Target = -1

// String returns "full" or the segment index.
func (t Target) String() string {
	if t == FullDocument {
		return "full"
	}
	return "segment " + strconv.Itoa(int(t))
}

// State is a snapshot of the session.
type State struct {
	Phase    Phase
	Err      string // user-facing message when Phase is PhaseError
	Summary  string
	Sources  []string
	Metadata *oembed.VideoMetadata
	URL      string // the link being summarized, empty for transcripts

	Playback  PlaybackPhase
	Target    Target // valid only when HasTarget
	HasTarget bool
	ReadErr   string // last read-aloud failure, cleared by the next attempt
}

// Loading reports whether a summarize request is in flight.
func (s State) Loading() bool {
	return s.Phase == PhaseMetadataPending || s.Phase == PhaseSummarizing
}

// Reading reports whether target is being prepared or played.
func (s State) Reading(target Target) bool {
	return s.HasTarget && s.Target == target && s.Playback != PlaybackIdle
}

// StateMachine validates transitions between states of type T.
type StateMachine[T comparable] struct {
	current     T
	transitions map[T][]T
	onEnter     map[T]func()
}

// NewStateMachine returns a machine starting at initial.
func NewStateMachine[T comparable](initial T, transitions map[T][]T) *StateMachine[T] {
	return &StateMachine[T]{
		current:     initial,
		transitions: transitions,
		onEnter:     make(map[T]func()),
	}
}

func newPhaseMachine() *StateMachine[Phase] {
	return NewStateMachine(PhaseIdle, map[Phase][]Phase{
		PhaseIdle:            {PhaseMetadataPending, PhaseSummarizing, PhaseError},
		PhaseMetadataPending: {PhaseSummarizing, PhaseError},
		PhaseSummarizing:     {PhaseReady, PhaseError},
		PhaseReady:           {PhaseMetadataPending, PhaseSummarizing, PhaseError},
		PhaseError:           {PhaseMetadataPending, PhaseSummarizing, PhaseError},
	})
}

func newPlaybackMachine() *StateMachine[PlaybackPhase] {
	return NewStateMachine(PlaybackIdle, map[PlaybackPhase][]PlaybackPhase{
		PlaybackIdle:      {PlaybackPreparing},
		PlaybackPreparing: {PlaybackPlaying, PlaybackIdle},
		PlaybackPlaying:   {PlaybackIdle},
	})
}

// Transition moves to to if the transition table allows it.
func (sm *StateMachine[T]) Transition(to T) bool {
	valid := false
	for _, s := range sm.transitions[sm.current] {
		if s == to {
			valid = true
			break
		}
	}
	if !valid {
		return false
	}

	sm.current = to
	if fn, ok := sm.onEnter[to]; ok && fn != nil {
		fn()
	}
	return true
}

// Current returns the current state.
func (sm *StateMachine[T]) Current() T {
	return sm.current
}

// OnEnter registers a callback for entering a state.
func (sm *StateMachine[T]) OnEnter(state T, fn func()) {
	sm.onEnter[state] = fn
}
