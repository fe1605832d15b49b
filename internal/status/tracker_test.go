package status

import (
	"errors"
	"testing"
	"time"
)

var allStates = []State{
	StateUploaded, StateTranscribing, StateTranscribed, StateParsing,
	StateParsed, StateEnhancing, StateEnhanced, StateCompleted, StateFailed,
}

func trackerAt(modality Modality, state State) *Tracker {
	t := NewTracker(modality)
	t.Current = state
	return t
}

func TestTransitionTableVoice(t *testing.T) {
	valid := map[State][]State{
		StateUploaded:     {StateTranscribing},
		StateTranscribing: {StateTranscribed, StateFailed},
		StateTranscribed:  {StateParsing, StateFailed},
		StateParsing:      {StateParsed, StateFailed},
		StateParsed:       {StateEnhancing, StateFailed},
		StateEnhancing:    {StateEnhanced, StateFailed},
		StateEnhanced:     {StateCompleted, StateFailed},
		StateCompleted:    {},
		StateFailed:       {StateTranscribing},
	}

	for from, targets := range valid {
		allowed := make(map[State]bool, len(targets))
		for _, to := range targets {
			allowed[to] = true
		}
		for _, to := range allStates {
			tr := trackerAt(ModalityVoice, from)
			err := tr.Transition(to, nil)
			if allowed[to] {
				if err != nil {
					t.Errorf("voice %s -> %s: unexpected error %v", from, to, err)
					continue
				}
				if tr.Current != to {
					t.Errorf("voice %s -> %s: current = %s", from, to, tr.Current)
				}
				if len(tr.History) != 1 {
					t.Errorf("voice %s -> %s: history entries = %d, want 1", from, to, len(tr.History))
				}
				continue
			}
			if !errors.Is(err, ErrInvalidTransition) {
				t.Errorf("voice %s -> %s: error = %v, want ErrInvalidTransition", from, to, err)
			}
			if tr.Current != from {
				t.Errorf("voice %s -> %s: state mutated to %s on invalid transition", from, to, tr.Current)
			}
			if len(tr.History) != 0 {
				t.Errorf("voice %s -> %s: history mutated on invalid transition", from, to)
			}
		}
	}
}

func TestTransitionTableDocumentSkipsTranscription(t *testing.T) {
	tr := NewTracker(ModalityDocument)
	if err := tr.Transition(StateTranscribing, nil); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("document uploaded -> transcribing: error = %v, want ErrInvalidTransition", err)
	}
	if err := tr.Transition(StateParsing, nil); err != nil {
		t.Fatalf("document uploaded -> parsing: %v", err)
	}

	failed := trackerAt(ModalityDocument, StateFailed)
	if err := failed.Transition(StateTranscribing, nil); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("document failed -> transcribing: error = %v, want ErrInvalidTransition", err)
	}
	if err := failed.Transition(StateParsing, nil); err != nil {
		t.Fatalf("document failed -> parsing: %v", err)
	}
}

func TestSelfTransitionRejected(t *testing.T) {
	for _, s := range allStates {
		tr := trackerAt(ModalityVoice, s)
		if err := tr.Transition(s, nil); !errors.Is(err, ErrInvalidTransition) {
			t.Errorf("%s -> %s: error = %v, want ErrInvalidTransition", s, s, err)
		}
	}
}

func TestTransitionRecordsMetadataAndDuration(t *testing.T) {
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	offset := 0
	tr := NewTracker(ModalityVoice)
	tr.now = func() time.Time {
		offset++
		return base.Add(time.Duration(offset) * time.Second)
	}

	steps := []State{
		StateTranscribing, StateTranscribed, StateParsing, StateParsed,
		StateEnhancing, StateEnhanced, StateCompleted,
	}
	for _, s := range steps {
		if err := tr.Transition(s, map[string]any{"stage": string(s)}); err != nil {
			t.Fatalf("transition to %s: %v", s, err)
		}
	}

	if len(tr.History) != len(steps) {
		t.Fatalf("history entries = %d, want %d", len(tr.History), len(steps))
	}
	if tr.History[0].Metadata["stage"] != "transcribing" {
		t.Errorf("metadata not recorded: %v", tr.History[0].Metadata)
	}
	if tr.FinishedAt == nil || tr.StartedAt == nil {
		t.Fatal("started/finished timestamps not stamped")
	}
	if tr.TotalDurationMs != 6000 {
		t.Errorf("total duration = %v ms, want 6000", tr.TotalDurationMs)
	}
}

func TestRetryResetsTiming(t *testing.T) {
	tr := trackerAt(ModalityVoice, StateFailed)
	finished := time.Now().UTC()
	tr.FinishedAt = &finished
	tr.TotalDurationMs = 1234

	if err := tr.Transition(StateTranscribing, nil); err != nil {
		t.Fatalf("retry transition: %v", err)
	}
	if tr.FinishedAt != nil || tr.TotalDurationMs != 0 {
		t.Errorf("retry did not reset finish timing: finishedAt=%v totalMs=%v", tr.FinishedAt, tr.TotalDurationMs)
	}
	if tr.StartedAt == nil {
		t.Error("retry did not restart the processing clock")
	}
}

func TestProgressPercent(t *testing.T) {
	forward := []State{
		StateUploaded, StateTranscribing, StateTranscribed, StateParsing,
		StateParsed, StateEnhancing, StateEnhanced, StateCompleted,
	}
	prev := -1
	for _, s := range forward {
		p := ProgressPercent(s)
		if p <= prev {
			t.Errorf("progress not increasing at %s: %d after %d", s, p, prev)
		}
		prev = p
	}
	if ProgressPercent(StateCompleted) != 100 {
		t.Errorf("completed = %d, want 100", ProgressPercent(StateCompleted))
	}
	if ProgressPercent(StateFailed) != 0 {
		t.Errorf("failed = %d, want 0", ProgressPercent(StateFailed))
	}
	if ProgressPercent(State("bogus")) != 0 {
		t.Errorf("unknown state should report 0")
	}
}
