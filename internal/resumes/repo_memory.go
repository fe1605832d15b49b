package resumes

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryRepo stores resumes in memory and is safe for concurrent use.
type MemoryRepo struct {
	mu     sync.RWMutex
	byID   map[string]Resume
	byUser map[string][]string
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		byID:   make(map[string]Resume),
		byUser: make(map[string][]string),
	}
}

// Create stores the resume record.
func (r *MemoryRepo) Create(ctx context.Context, resume Resume) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := Validate(resume); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[resume.ID] = resume
	r.byUser[resume.UserID] = append(r.byUser[resume.UserID], resume.ID)
	return nil
}

// GetByID returns a resume by its ID.
func (r *MemoryRepo) GetByID(ctx context.Context, resumeID string) (Resume, error) {
	if err := ctx.Err(); err != nil {
		return Resume{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	resume, ok := r.byID[resumeID]
	if !ok {
		return Resume{}, ErrNotFound
	}
	return resume, nil
}

// ListByUser returns a user's resumes, newest first, with limit/offset.
func (r *MemoryRepo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]Resume, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 {
		limit = 20
	}

	r.mu.RLock()
	ids := r.byUser[userID]
	out := make([]Resume, 0, len(ids))
	for _, id := range ids {
		if resume, ok := r.byID[id]; ok {
			out = append(out, resume)
		}
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if offset >= len(out) {
		return []Resume{}, nil
	}
	out = out[offset:]
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// UpdateStatus applies a status field-group update.
func (r *MemoryRepo) UpdateStatus(ctx context.Context, resumeID string, update StatusUpdate) error {
	return r.mutate(ctx, resumeID, func(resume *Resume) {
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
func (r *MemoryRepo) UpdateTranscription(ctx context.Context, resumeID string, payload *TranscriptionPayload) error {
	return r.mutate(ctx, resumeID, func(resume *Resume) {
		resume.Transcription = payload
	})
}

// UpdateParsed stores the parsed payload.
func (r *MemoryRepo) UpdateParsed(ctx context.Context, resumeID string, payload *ParsedPayload) error {
	return r.mutate(ctx, resumeID, func(resume *Resume) {
		resume.Parsed = payload
	})
}

// UpdateConfidence stores the confidence summary.
func (r *MemoryRepo) UpdateConfidence(ctx context.Context, resumeID string, summary *ConfidenceSummary) error {
	return r.mutate(ctx, resumeID, func(resume *Resume) {
		resume.Confidence = summary
	})
}

// SetError stores the error payload.
func (r *MemoryRepo) SetError(ctx context.Context, resumeID string, errPayload *ErrorPayload) error {
	return r.mutate(ctx, resumeID, func(resume *Resume) {
		resume.LastError = errPayload
	})
}

// ClearError removes a previously recorded error payload.
func (r *MemoryRepo) ClearError(ctx context.Context, resumeID string) error {
	return r.mutate(ctx, resumeID, func(resume *Resume) {
		resume.LastError = nil
	})
}

func (r *MemoryRepo) mutate(ctx context.Context, resumeID string, apply func(*Resume)) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	resume, ok := r.byID[resumeID]
	if !ok {
		return ErrNotFound
	}
	apply(&resume)
	resume.UpdatedAt = time.Now().UTC()
	if err := Validate(resume); err != nil {
		return err
	}
	r.byID[resumeID] = resume
	return nil
}
