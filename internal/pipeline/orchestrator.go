// Package pipeline drives a resume record through its processing stages:
// transcription (voice only), parsing, enhancement, and confidence
// aggregation, persisting each stage's output and status transition.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"resume-pipeline/internal/confidence"
	"resume-pipeline/internal/resumes"
	"resume-pipeline/internal/shared/metrics"
	"resume-pipeline/internal/shared/telemetry"
	"resume-pipeline/internal/status"
	"resume-pipeline/internal/transcription"
)

// ErrStateConflict reports an operation on a record whose current state
// does not admit it, such as a run delivered twice. Re-running the same
// operation can never succeed.
var ErrStateConflict = errors.New("record state does not admit this operation")

// ErrNotConfigured reports a stage whose external adapter was never
// wired. The record fails at that stage rather than the process
// crashing.
var ErrNotConfigured = errors.New("stage adapter not configured")

// Transcriber converts a referenced audio file into a transcription
// payload.
type Transcriber interface {
	Transcribe(ctx context.Context, ref string, sizeBytes int64, format string) (*resumes.TranscriptionPayload, error)
}

// Parser extracts structured fields from resume text.
type Parser interface {
	Parse(ctx context.Context, text string) (*resumes.ParsedPayload, error)
}

// Enhancer enriches a parse in place. It degrades rather than fails.
type Enhancer interface {
	Enhance(ctx context.Context, parsed *resumes.ParsedPayload, sourceText string)
}

// TextExtractor pulls plain text from a referenced document.
type TextExtractor interface {
	ExtractText(ctx context.Context, ref, mimeType, fileName string) (string, error)
}

// Orchestrator runs the pipeline for one record at a time. Exactly one
// invocation per record may be in flight; the record store sees a single
// writer.
type Orchestrator struct {
	Repo        resumes.Repo
	Transcriber Transcriber
	Parser      Parser
	Enhancer    Enhancer
	Extractor   TextExtractor

	// ScratchDir holds inter-stage handoff files. Empty means the OS
	// temp dir.
	ScratchDir string
}

// Run drives a freshly uploaded record to completed or failed.
func (o *Orchestrator) Run(ctx context.Context, resumeID string) error {
	r, err := o.Repo.GetByID(ctx, resumeID)
	if err != nil {
		return fmt.Errorf("load resume %s: %w", resumeID, err)
	}
	if r.Status != status.StateUploaded {
		return fmt.Errorf("resume %s is %s, expected %s: %w", resumeID, r.Status, status.StateUploaded, ErrStateConflict)
	}
	return o.process(ctx, r)
}

// Retry re-runs a failed record from its modality's first AI-calling
// stage. It is the only way out of the failed state.
func (o *Orchestrator) Retry(ctx context.Context, resumeID string) error {
	r, err := o.Repo.GetByID(ctx, resumeID)
	if err != nil {
		return fmt.Errorf("load resume %s: %w", resumeID, err)
	}
	if r.Status != status.StateFailed {
		return fmt.Errorf("resume %s is %s, only %s records can be retried: %w", resumeID, r.Status, status.StateFailed, ErrStateConflict)
	}
	return o.process(ctx, r)
}

func (o *Orchestrator) process(ctx context.Context, r resumes.Resume) error {
	tracker := restoreTracker(r)
	metrics.IncPipelineStarted()
	telemetry.Info("pipeline.start", map[string]any{
		"resumeId": r.ID,
		"modality": string(r.Modality),
		"from":     string(r.Status),
	})

	var sourceText string

	if r.Modality == status.ModalityDocument {
		if err := o.transition(ctx, tracker, r.ID, status.StateParsing, nil); err != nil {
			return err
		}
		if o.Extractor == nil {
			return o.fail(ctx, tracker, r.ID, fmt.Errorf("text extraction: %w", ErrNotConfigured))
		}
		text, err := o.Extractor.ExtractText(ctx, r.StorageRef, r.ContentType, r.FileName)
		if err != nil {
			return o.fail(ctx, tracker, r.ID, err)
		}
		sourceText = text
	} else {
		if err := o.transition(ctx, tracker, r.ID, status.StateTranscribing, nil); err != nil {
			return err
		}
		if o.Transcriber == nil {
			return o.fail(ctx, tracker, r.ID, fmt.Errorf("transcription: %w", ErrNotConfigured))
		}
		payload, err := o.Transcriber.Transcribe(ctx, r.StorageRef, r.SizeBytes, audioFormat(r))
		if err != nil {
			return o.fail(ctx, tracker, r.ID, err)
		}
		if err := o.Repo.UpdateTranscription(ctx, r.ID, payload); err != nil {
			return o.fail(ctx, tracker, r.ID, err)
		}
		r.Transcription = payload
		if err := o.transition(ctx, tracker, r.ID, status.StateTranscribed, map[string]any{
			"wordCount": payload.WordCount,
			"quality":   payload.Quality.Level,
		}); err != nil {
			return err
		}

		// The formatted transcript is handed to parsing through a
		// scratch file, removed on every exit path.
		scratch, err := o.writeScratch(r.ID, transcription.FormatSections(payload.Text))
		if err != nil {
			return o.failAfter(ctx, tracker, r.ID, status.StateParsing, err)
		}
		defer os.Remove(scratch)

		if err := o.transition(ctx, tracker, r.ID, status.StateParsing, nil); err != nil {
			return err
		}
		formatted, err := os.ReadFile(scratch)
		if err != nil {
			return o.fail(ctx, tracker, r.ID, err)
		}
		sourceText = string(formatted)
	}

	if o.Parser == nil {
		return o.fail(ctx, tracker, r.ID, fmt.Errorf("parsing: %w", ErrNotConfigured))
	}
	parsed, err := o.Parser.Parse(ctx, sourceText)
	if err != nil {
		return o.fail(ctx, tracker, r.ID, err)
	}
	if err := o.Repo.UpdateParsed(ctx, r.ID, parsed); err != nil {
		return o.fail(ctx, tracker, r.ID, err)
	}
	if err := o.transition(ctx, tracker, r.ID, status.StateParsed, map[string]any{
		"extractionConfidence": parsed.ExtractionConfidence,
	}); err != nil {
		return err
	}

	if err := o.transition(ctx, tracker, r.ID, status.StateEnhancing, nil); err != nil {
		return err
	}
	if o.Enhancer == nil {
		return o.fail(ctx, tracker, r.ID, fmt.Errorf("enhancement: %w", ErrNotConfigured))
	}
	o.Enhancer.Enhance(ctx, parsed, sourceText)
	if err := o.Repo.UpdateParsed(ctx, r.ID, parsed); err != nil {
		return o.fail(ctx, tracker, r.ID, err)
	}
	r.Parsed = parsed
	if err := o.transition(ctx, tracker, r.ID, status.StateEnhanced, map[string]any{
		"enhanced": parsed.Enhanced,
	}); err != nil {
		return err
	}

	summary := confidence.Compute(&r)
	if err := o.Repo.UpdateConfidence(ctx, r.ID, &summary); err != nil {
		return o.fail(ctx, tracker, r.ID, err)
	}
	if err := o.transition(ctx, tracker, r.ID, status.StateCompleted, map[string]any{
		"overallScore": summary.OverallScore,
		"level":        summary.Level,
	}); err != nil {
		return err
	}
	if err := o.Repo.ClearError(ctx, r.ID); err != nil {
		return err
	}

	metrics.IncPipelineCompleted()
	metrics.ObservePipelineDurationMs(tracker.TotalDurationMs)
	telemetry.Info("pipeline.completed", map[string]any{
		"resumeId":   r.ID,
		"durationMs": tracker.TotalDurationMs,
		"score":      summary.OverallScore,
	})
	return nil
}

// transition applies a tracker transition and persists the resulting
// status field-group.
func (o *Orchestrator) transition(ctx context.Context, tracker *status.Tracker, resumeID string, target status.State, metadata map[string]any) error {
	if err := tracker.Transition(target, metadata); err != nil {
		return err
	}
	metrics.IncStage(string(target))

	update := resumes.StatusUpdate{
		State:               target,
		HistoryEntry:        tracker.History[len(tracker.History)-1],
		ProcessingStartedAt: tracker.StartedAt,
	}
	now := update.HistoryEntry.Timestamp
	switch target {
	case status.StateTranscribed:
		update.TranscribedAt = &now
	case status.StateParsed:
		update.ParsedAt = &now
	case status.StateCompleted, status.StateFailed:
		update.CompletedAt = tracker.FinishedAt
		update.TotalDurationMs = &tracker.TotalDurationMs
	}
	if err := o.Repo.UpdateStatus(ctx, resumeID, update); err != nil {
		return fmt.Errorf("persist %s transition: %w", target, err)
	}
	return nil
}

// fail records the stage error and moves the record to failed. The stage
// is the state the tracker was in when its work errored.
func (o *Orchestrator) fail(ctx context.Context, tracker *status.Tracker, resumeID string, cause error) error {
	stage := tracker.Current
	payload := &resumes.ErrorPayload{
		Message:       cause.Error(),
		FailedAtStage: stage,
		CanRetry:      true,
		OccurredAt:    time.Now().UTC(),
	}
	if err := o.Repo.SetError(ctx, resumeID, payload); err != nil {
		telemetry.Error("pipeline.seterror", map[string]any{"resumeId": resumeID, "error": err.Error()})
	}
	if err := o.transition(ctx, tracker, resumeID, status.StateFailed, map[string]any{
		"stage": string(stage),
		"error": cause.Error(),
	}); err != nil {
		telemetry.Error("pipeline.failtransition", map[string]any{"resumeId": resumeID, "error": err.Error()})
	}

	metrics.IncPipelineFailed()
	telemetry.Error("pipeline.failed", map[string]any{
		"resumeId": resumeID,
		"stage":    string(stage),
		"error":    cause.Error(),
	})
	return fmt.Errorf("pipeline stage %s: %w", stage, cause)
}

// failAfter first moves to the named stage, then fails there. Used when
// preparing a stage's input errors before the stage transition happened.
func (o *Orchestrator) failAfter(ctx context.Context, tracker *status.Tracker, resumeID string, stage status.State, cause error) error {
	if err := o.transition(ctx, tracker, resumeID, stage, nil); err != nil {
		telemetry.Error("pipeline.failtransition", map[string]any{"resumeId": resumeID, "error": err.Error()})
	}
	return o.fail(ctx, tracker, resumeID, cause)
}

func (o *Orchestrator) writeScratch(resumeID, text string) (string, error) {
	dir := o.ScratchDir
	if dir == "" {
		dir = os.TempDir()
	}
	f, err := os.CreateTemp(dir, "transcript-"+resumeID+"-*.txt")
	if err != nil {
		return "", fmt.Errorf("create scratch transcript: %w", err)
	}
	if _, err := f.WriteString(text); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", fmt.Errorf("write scratch transcript: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("close scratch transcript: %w", err)
	}
	return f.Name(), nil
}

// restoreTracker rebuilds the status tracker from persisted record state.
func restoreTracker(r resumes.Resume) *status.Tracker {
	tracker := &status.Tracker{
		Current:   r.Status,
		History:   r.StatusHistory,
		StartedAt: r.ProcessingStartedAt,
	}
	tracker.Restore(r.Modality)
	return tracker
}

// audioFormat derives the speech container format from the stored file
// name, falling back to the content type's subtype.
func audioFormat(r resumes.Resume) string {
	if ext := strings.TrimPrefix(filepath.Ext(r.FileName), "."); ext != "" {
		return ext
	}
	if i := strings.LastIndex(r.ContentType, "/"); i >= 0 {
		return r.ContentType[i+1:]
	}
	return ""
}
