package session

import "testing"

func TestPhaseMachineTransitions(t *testing.T) {
	tests := []struct {
		name  string
		steps []Phase
		want  []bool
	}{
		{
			name:  "video flow",
			steps: []Phase{PhaseMetadataPending, PhaseSummarizing, PhaseReady},
			want:  []bool{true, true, true},
		},
		{
			name:  "transcript flow",
			steps: []Phase{PhaseSummarizing, PhaseError, PhaseSummarizing, PhaseReady},
			want:  []bool{true, true, true, true},
		},
		{
			name:  "ready requires summarizing",
			steps: []Phase{PhaseMetadataPending, PhaseReady},
			want:  []bool{true, false},
		},
		{
			name:  "no way back to idle",
			steps: []Phase{PhaseError, PhaseIdle},
			want:  []bool{true, false},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sm := newPhaseMachine()
			for i, step := range tt.steps {
				if got := sm.Transition(step); got != tt.want[i] {
					t.Errorf("Transition(%v) = %v, want %v", step, got, tt.want[i])
				}
			}
		})
	}
}

func TestPlaybackMachine(t *testing.T) {
	sm := newPlaybackMachine()

	if sm.Transition(PlaybackPlaying) {
		t.Error("idle -> playing allowed, want preparing first")
	}

	entered := 0
	sm.OnEnter(PlaybackPlaying, func() { entered++ })

	for _, to := range []PlaybackPhase{PlaybackPreparing, PlaybackPlaying, PlaybackIdle} {
		if !sm.Transition(to) {
			t.Fatalf("Transition(%v) rejected from %v", to, sm.Current())
		}
	}
	if entered != 1 {
		t.Errorf("OnEnter(playing) ran %d times, want 1", entered)
	}
	if sm.Current() != PlaybackIdle {
		t.Errorf("Current() = %v, want idle", sm.Current())
	}
}

func TestStateHelpers(t *testing.T) {
	st := State{Phase: PhaseSummarizing}
	if !st.Loading() {
		t.Error("Loading() = false while summarizing")
	}

	st = State{Phase: PhaseReady, Playback: PlaybackPreparing, Target: 2, HasTarget: true}
	if !st.Reading(2) {
		t.Error("Reading(2) = false while preparing segment 2")
	}
	if st.Reading(FullDocument) {
		t.Error("Reading(full) = true while preparing segment 2")
	}

	if got := FullDocument.String(); got != "full" {
		t.Errorf("FullDocument.String() = %q", got)
	}
	if got := Target(3).String(); got != "segment 3" {
		t.Errorf("Target(3).String() = %q", got)
	}
}
