package resumes

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"resume-pipeline/internal/status"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

const resumeColumns = `id, user_id, file_name, storage_ref, size_bytes, content_type, modality,
	status, status_history, uploaded_at, processing_started_at, transcribed_at, parsed_at,
	completed_at, total_duration_ms, transcription, parsed, confidence, last_error,
	created_at, updated_at`

// Create inserts a new resume record.
func (r *PGRepo) Create(ctx context.Context, resume Resume) error {
	if err := Validate(resume); err != nil {
		return err
	}
	history, err := marshalJSON(resume.StatusHistory)
	if err != nil {
		return fmt.Errorf("marshal status history: %w", err)
	}
	_, err = r.DB.ExecContext(ctx, `
		INSERT INTO resumes (
			id, user_id, file_name, storage_ref, size_bytes, content_type, modality,
			status, status_history, uploaded_at, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		resume.ID, resume.UserID, resume.FileName, resume.StorageRef, resume.SizeBytes,
		resume.ContentType, string(resume.Modality), string(resume.Status), history,
		resume.UploadedAt, resume.CreatedAt, resume.UpdatedAt,
	)
	return err
}

// GetByID returns a resume by its ID.
func (r *PGRepo) GetByID(ctx context.Context, resumeID string) (Resume, error) {
	row := r.DB.QueryRowContext(ctx, `SELECT `+resumeColumns+` FROM resumes WHERE id = $1`, resumeID)
	return scanResume(row)
}

// ListByUser returns a user's resumes, newest first.
func (r *PGRepo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]Resume, error) {
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 {
		limit = 20
	}
	rows, err := r.DB.QueryContext(ctx, `
		SELECT `+resumeColumns+` FROM resumes
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Resume{}
	for rows.Next() {
		resume, err := scanResume(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, resume)
	}
	return out, rows.Err()
}

// UpdateStatus applies a status field-group update.
func (r *PGRepo) UpdateStatus(ctx context.Context, resumeID string, update StatusUpdate) error {
	return r.withResume(ctx, resumeID, func(resume *Resume) {
		resume.Status = update.State
		if update.HistoryEntry.State != "" {
			resume.StatusHistory = append(resume.StatusHistory, update.HistoryEntry)
		}
		if update.ProcessingStartedAt != nil {
			resume.ProcessingStartedAt = update.ProcessingStartedAt
		}
		if update.TranscribedAt != nil {
			resume.TranscribedAt = update.TranscribedAt
		}
		if update.ParsedAt != nil {
			resume.ParsedAt = update.ParsedAt
		}
		if update.CompletedAt != nil {
			resume.CompletedAt = update.CompletedAt
		}
		if update.TotalDurationMs != nil {
			resume.TotalDurationMs = *update.TotalDurationMs
		}
	})
}

// UpdateTranscription stores the transcription payload.
func (r *PGRepo) UpdateTranscription(ctx context.Context, resumeID string, payload *TranscriptionPayload) error {
	return r.withResume(ctx, resumeID, func(resume *Resume) {
		resume.Transcription = payload
	})
}

// UpdateParsed stores the parsed payload.
func (r *PGRepo) UpdateParsed(ctx context.Context, resumeID string, payload *ParsedPayload) error {
	return r.withResume(ctx, resumeID, func(resume *Resume) {
		resume.Parsed = payload
	})
}

// UpdateConfidence stores the confidence summary.
func (r *PGRepo) UpdateConfidence(ctx context.Context, resumeID string, summary *ConfidenceSummary) error {
	return r.withResume(ctx, resumeID, func(resume *Resume) {
		resume.Confidence = summary
	})
}

// SetError stores the error payload.
func (r *PGRepo) SetError(ctx context.Context, resumeID string, errPayload *ErrorPayload) error {
	return r.withResume(ctx, resumeID, func(resume *Resume) {
		resume.LastError = errPayload
	})
}

// ClearError removes a previously recorded error payload.
func (r *PGRepo) ClearError(ctx context.Context, resumeID string) error {
	return r.withResume(ctx, resumeID, func(resume *Resume) {
		resume.LastError = nil
	})
}

// withResume runs a read-modify-write cycle in a transaction. The row lock
// is uncontended in practice (single pipeline writer per record) but keeps
// serialized retries honest.
func (r *PGRepo) withResume(ctx context.Context, resumeID string, apply func(*Resume)) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	row := tx.QueryRowContext(ctx, `SELECT `+resumeColumns+` FROM resumes WHERE id = $1 FOR UPDATE`, resumeID)
	resume, err := scanResume(row)
	if err != nil {
		return err
	}

	apply(&resume)
	resume.UpdatedAt = time.Now().UTC()
	if err := Validate(resume); err != nil {
		return err
	}

	history, err := marshalJSON(resume.StatusHistory)
	if err != nil {
		return fmt.Errorf("marshal status history: %w", err)
	}
	transcription, err := marshalJSON(resume.Transcription)
	if err != nil {
		return fmt.Errorf("marshal transcription: %w", err)
	}
	parsed, err := marshalJSON(resume.Parsed)
	if err != nil {
		return fmt.Errorf("marshal parsed: %w", err)
	}
	confidence, err := marshalJSON(resume.Confidence)
	if err != nil {
		return fmt.Errorf("marshal confidence: %w", err)
	}
	lastError, err := marshalJSON(resume.LastError)
	if err != nil {
		return fmt.Errorf("marshal last error: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE resumes SET
			status = $2, status_history = $3, processing_started_at = $4,
			transcribed_at = $5, parsed_at = $6, completed_at = $7,
			total_duration_ms = $8, transcription = $9, parsed = $10,
			confidence = $11, last_error = $12, updated_at = $13
		WHERE id = $1`,
		resume.ID, string(resume.Status), history, resume.ProcessingStartedAt,
		resume.TranscribedAt, resume.ParsedAt, resume.CompletedAt,
		resume.TotalDurationMs, transcription, parsed, confidence, lastError,
		resume.UpdatedAt,
	); err != nil {
		return err
	}
	return tx.Commit()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanResume(row rowScanner) (Resume, error) {
	var (
		resume                             Resume
		modality, state                    string
		history, transcription, parsed     []byte
		confidence, lastError              []byte
		processingStartedAt, transcribedAt sql.NullTime
		parsedAt, completedAt              sql.NullTime
		totalDurationMs                    sql.NullFloat64
	)
	err := row.Scan(
		&resume.ID, &resume.UserID, &resume.FileName, &resume.StorageRef,
		&resume.SizeBytes, &resume.ContentType, &modality, &state, &history,
		&resume.UploadedAt, &processingStartedAt, &transcribedAt, &parsedAt,
		&completedAt, &totalDurationMs, &transcription, &parsed, &confidence,
		&lastError, &resume.CreatedAt, &resume.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return Resume{}, ErrNotFound
	}
	if err != nil {
		return Resume{}, err
	}

	resume.Modality = status.Modality(modality)
	resume.Status = status.State(state)
	resume.ProcessingStartedAt = nullTimePtr(processingStartedAt)
	resume.TranscribedAt = nullTimePtr(transcribedAt)
	resume.ParsedAt = nullTimePtr(parsedAt)
	resume.CompletedAt = nullTimePtr(completedAt)
	if totalDurationMs.Valid {
		resume.TotalDurationMs = totalDurationMs.Float64
	}

	if err := unmarshalJSON(history, &resume.StatusHistory); err != nil {
		return Resume{}, fmt.Errorf("unmarshal status history: %w", err)
	}
	if err := unmarshalJSON(transcription, &resume.Transcription); err != nil {
		return Resume{}, fmt.Errorf("unmarshal transcription: %w", err)
	}
	if err := unmarshalJSON(parsed, &resume.Parsed); err != nil {
		return Resume{}, fmt.Errorf("unmarshal parsed: %w", err)
	}
	if err := unmarshalJSON(confidence, &resume.Confidence); err != nil {
		return Resume{}, fmt.Errorf("unmarshal confidence: %w", err)
	}
	if err := unmarshalJSON(lastError, &resume.LastError); err != nil {
		return Resume{}, fmt.Errorf("unmarshal last error: %w", err)
	}
	return resume, nil
}

func marshalJSON(v any) ([]byte, error) {
	if v == nil {
		return nil, nil
	}
	switch typed := v.(type) {
	case *TranscriptionPayload:
		if typed == nil {
			return nil, nil
		}
	case *ParsedPayload:
		if typed == nil {
			return nil, nil
		}
	case *ConfidenceSummary:
		if typed == nil {
			return nil, nil
		}
	case *ErrorPayload:
		if typed == nil {
			return nil, nil
		}
	case []status.Entry:
		if typed == nil {
			return nil, nil
		}
	}
	return json.Marshal(v)
}

func unmarshalJSON(data []byte, dest any) error {
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, dest)
}

func nullTimePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	utc := t.Time.UTC()
	return &utc
}
