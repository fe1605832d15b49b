package comparison

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"
)

// ErrNotFound indicates the comparison does not exist.
var ErrNotFound = errors.New("comparison not found")

// Repo persists comparison history. Records are write-once.
type Repo interface {
	Create(ctx context.Context, c JobComparison) error
	GetByID(ctx context.Context, id string) (JobComparison, error)
	ListByResume(ctx context.Context, resumeID string) ([]JobComparison, error)
}

// MemoryRepo is the in-memory Repo used by tests and local runs.
type MemoryRepo struct {
	mu   sync.RWMutex
	byID map[string]JobComparison
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{byID: map[string]JobComparison{}}
}

func (r *MemoryRepo) Create(ctx context.Context, c JobComparison) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byID[c.ID]; exists {
		return fmt.Errorf("comparison %s already exists", c.ID)
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
	r.byID[c.ID] = c
	return nil
}

func (r *MemoryRepo) GetByID(ctx context.Context, id string) (JobComparison, error) {
	if err := ctx.Err(); err != nil {
		return JobComparison{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.byID[id]
	if !ok {
		return JobComparison{}, ErrNotFound
	}
	return c, nil
}

func (r *MemoryRepo) ListByResume(ctx context.Context, resumeID string) ([]JobComparison, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []JobComparison
	for _, c := range r.byID {
		if c.ResumeID == resumeID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// PGRepo stores comparisons in Postgres.
type PGRepo struct {
	DB *sql.DB
}

func NewPGRepo(db *sql.DB) *PGRepo {
	return &PGRepo{DB: db}
}

const comparisonColumns = `id, resume_id, user_id, job_description, result, created_at`

func (r *PGRepo) Create(ctx context.Context, c JobComparison) error {
	result, err := json.Marshal(c.Result)
	if err != nil {
		return fmt.Errorf("marshal comparison result: %w", err)
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
	_, err = r.DB.ExecContext(ctx, `
		INSERT INTO job_comparisons (`+comparisonColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		c.ID, c.ResumeID, c.UserID, c.JobDescription, result, c.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert comparison %s: %w", c.ID, err)
	}
	return nil
}

func (r *PGRepo) GetByID(ctx context.Context, id string) (JobComparison, error) {
	row := r.DB.QueryRowContext(ctx, `SELECT `+comparisonColumns+` FROM job_comparisons WHERE id = $1`, id)
	c, err := scanComparison(row)
	if errors.Is(err, sql.ErrNoRows) {
		return JobComparison{}, ErrNotFound
	}
	if err != nil {
		return JobComparison{}, fmt.Errorf("get comparison %s: %w", id, err)
	}
	return c, nil
}

func (r *PGRepo) ListByResume(ctx context.Context, resumeID string) ([]JobComparison, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT `+comparisonColumns+` FROM job_comparisons
		WHERE resume_id = $1 ORDER BY created_at DESC`, resumeID)
	if err != nil {
		return nil, fmt.Errorf("list comparisons for %s: %w", resumeID, err)
	}
	defer rows.Close()

	var out []JobComparison
	for rows.Next() {
		c, err := scanComparison(rows)
		if err != nil {
			return nil, fmt.Errorf("scan comparison: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanComparison(row rowScanner) (JobComparison, error) {
	var c JobComparison
	var result []byte
	if err := row.Scan(&c.ID, &c.ResumeID, &c.UserID, &c.JobDescription, &result, &c.CreatedAt); err != nil {
		return JobComparison{}, err
	}
	if err := json.Unmarshal(result, &c.Result); err != nil {
		return JobComparison{}, fmt.Errorf("unmarshal comparison result: %w", err)
	}
	return c, nil
}
