package resumes

import (
	"context"
	"time"

	"resume-pipeline/internal/status"
)

// StatusUpdate is the field-group written at every stage boundary.
type StatusUpdate struct {
	State               status.State
	HistoryEntry        status.Entry
	ProcessingStartedAt *time.Time
	TranscribedAt       *time.Time
	ParsedAt            *time.Time
	CompletedAt         *time.Time
	TotalDurationMs     *float64
}

// Repo defines persistence operations for resume records. Updates are
// partial: each method touches only its own field-group, last writer wins
// within a group. The pipeline guarantees a single writer per record.
type Repo interface {
	Create(ctx context.Context, resume Resume) error
	GetByID(ctx context.Context, resumeID string) (Resume, error)
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]Resume, error)
	UpdateStatus(ctx context.Context, resumeID string, update StatusUpdate) error
	UpdateTranscription(ctx context.Context, resumeID string, payload *TranscriptionPayload) error
	UpdateParsed(ctx context.Context, resumeID string, payload *ParsedPayload) error
	UpdateConfidence(ctx context.Context, resumeID string, summary *ConfidenceSummary) error
	SetError(ctx context.Context, resumeID string, errPayload *ErrorPayload) error
	ClearError(ctx context.Context, resumeID string) error
}
