package status

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidTransition indicates a transition outside the allowed-next set.
var ErrInvalidTransition = errors.New("invalid status transition")

// Entry records one applied transition.
type Entry struct {
	State     State          `json:"state"`
	Timestamp time.Time      `json:"timestamp"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// Tracker holds a resume's current state and transition history. The
// allowed-next sets depend on modality: document records skip the
// transcription stages entirely, and retry from failed re-enters at each
// modality's first AI-calling stage.
type Tracker struct {
	Current         State      `json:"current"`
	History         []Entry    `json:"history,omitempty"`
	StartedAt       *time.Time `json:"startedAt,omitempty"`
	FinishedAt      *time.Time `json:"finishedAt,omitempty"`
	TotalDurationMs float64    `json:"totalDurationMs,omitempty"`

	modality Modality
	now      func() time.Time
}

// NewTracker returns a Tracker starting at uploaded.
func NewTracker(modality Modality) *Tracker {
	return &Tracker{Current: StateUploaded, modality: modality}
}

// Restore rebinds the modality-dependent transition rules after a Tracker
// has been loaded from storage.
func (t *Tracker) Restore(modality Modality) {
	t.modality = modality
}

// RetryEntry is the state a failed record re-enters on retry.
func RetryEntry(m Modality) State {
	if m == ModalityDocument {
		return StateParsing
	}
	return StateTranscribing
}

func (t *Tracker) allowedNext(from State) []State {
	voice := t.modality != ModalityDocument
	switch from {
	case StateUploaded:
		if voice {
			return []State{StateTranscribing}
		}
		return []State{StateParsing}
	case StateTranscribing:
		return []State{StateTranscribed, StateFailed}
	case StateTranscribed:
		return []State{StateParsing, StateFailed}
	case StateParsing:
		return []State{StateParsed, StateFailed}
	case StateParsed:
		return []State{StateEnhancing, StateFailed}
	case StateEnhancing:
		return []State{StateEnhanced, StateFailed}
	case StateEnhanced:
		return []State{StateCompleted, StateFailed}
	case StateFailed:
		return []State{RetryEntry(t.modality)}
	default: // completed is terminal
		return nil
	}
}

// CanTransition reports whether target is reachable from the current state.
func (t *Tracker) CanTransition(target State) bool {
	for _, next := range t.allowedNext(t.Current) {
		if next == target {
			return true
		}
	}
	return false
}

// Transition moves the tracker to target, appending a history entry. On an
// invalid target the tracker is left untouched and the returned error wraps
// ErrInvalidTransition. Reaching completed or failed stamps the total
// elapsed processing time.
func (t *Tracker) Transition(target State, metadata map[string]any) error {
	if !t.CanTransition(target) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, t.Current, target)
	}

	now := t.timeNow()
	t.History = append(t.History, Entry{State: target, Timestamp: now, Metadata: metadata})

	if t.Current == StateUploaded || t.Current == StateFailed {
		t.StartedAt = &now
		t.FinishedAt = nil
		t.TotalDurationMs = 0
	}
	t.Current = target

	if target == StateCompleted || target == StateFailed {
		t.FinishedAt = &now
		if t.StartedAt != nil {
			t.TotalDurationMs = float64(now.Sub(*t.StartedAt).Microseconds()) / 1000.0
		}
	}
	return nil
}

func (t *Tracker) timeNow() time.Time {
	if t.now != nil {
		return t.now()
	}
	return time.Now().UTC()
}
