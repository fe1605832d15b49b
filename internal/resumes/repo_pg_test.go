package resumes

import (
	"context"
	"encoding/json"
	"errors"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"

	"resume-pipeline/internal/status"
)

var resumeColumnNames = []string{
	"id", "user_id", "file_name", "storage_ref", "size_bytes", "content_type", "modality",
	"status", "status_history", "uploaded_at", "processing_started_at", "transcribed_at",
	"parsed_at", "completed_at", "total_duration_ms", "transcription", "parsed",
	"confidence", "last_error", "created_at", "updated_at",
}

func addResumeRow(t *testing.T, rows *sqlmock.Rows, r Resume) {
	t.Helper()
	history, err := json.Marshal(r.StatusHistory)
	if err != nil {
		t.Fatalf("marshal history: %v", err)
	}
	var transcription, parsed, confidence, lastError any
	if r.Transcription != nil {
		b, _ := json.Marshal(r.Transcription)
		transcription = b
	}
	if r.Parsed != nil {
		b, _ := json.Marshal(r.Parsed)
		parsed = b
	}
	if r.Confidence != nil {
		b, _ := json.Marshal(r.Confidence)
		confidence = b
	}
	if r.LastError != nil {
		b, _ := json.Marshal(r.LastError)
		lastError = b
	}
	rows.AddRow(
		r.ID, r.UserID, r.FileName, r.StorageRef, r.SizeBytes, r.ContentType,
		string(r.Modality), string(r.Status), history, r.UploadedAt,
		r.ProcessingStartedAt, r.TranscribedAt, r.ParsedAt, r.CompletedAt,
		r.TotalDurationMs, transcription, parsed, confidence, lastError,
		r.CreatedAt, r.UpdatedAt,
	)
}

func pgVoiceResume(id string) Resume {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return Resume{
		ID:          id,
		UserID:      "user-1",
		FileName:    "resume.mp3",
		StorageRef:  "stored/resume.mp3",
		SizeBytes:   2048,
		ContentType: "audio/mpeg",
		Modality:    status.ModalityVoice,
		Status:      status.StateUploaded,
		UploadedAt:  now,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func TestPGRepoCreate(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()
	repo := &PGRepo{DB: db}

	r := pgVoiceResume("res-1")
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO resumes")).
		WithArgs(r.ID, r.UserID, r.FileName, r.StorageRef, r.SizeBytes, r.ContentType,
			string(r.Modality), string(r.Status), sqlmock.AnyArg(), r.UploadedAt,
			r.CreatedAt, r.UpdatedAt).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.Create(context.Background(), r); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestPGRepoCreateRejectsInvalid(t *testing.T) {
	db, _, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()
	repo := &PGRepo{DB: db}

	bad := pgVoiceResume("res-1")
	bad.Modality = "video"
	if err := repo.Create(context.Background(), bad); !errors.Is(err, ErrInvalid) {
		t.Fatalf("err = %v, want ErrInvalid", err)
	}
}

func TestPGRepoGetByID(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()
	repo := &PGRepo{DB: db}

	stored := pgVoiceResume("res-1")
	stored.Status = status.StateCompleted
	stored.Transcription = &TranscriptionPayload{Text: "hello", WordCount: 1, CharCount: 5,
		Quality: QualityAssessment{Level: QualityHigh}}
	stored.Parsed = &ParsedPayload{Name: "Jane Doe", Enhanced: true}
	stored.StatusHistory = []status.Entry{{State: status.StateCompleted, Timestamp: stored.UpdatedAt}}

	rows := sqlmock.NewRows(resumeColumnNames)
	addResumeRow(t, rows, stored)
	mock.ExpectQuery("SELECT .* FROM resumes WHERE id = \\$1").
		WithArgs("res-1").
		WillReturnRows(rows)

	got, err := repo.GetByID(context.Background(), "res-1")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Transcription == nil || got.Transcription.Text != "hello" {
		t.Errorf("Transcription = %+v", got.Transcription)
	}
	if got.Parsed == nil || got.Parsed.Name != "Jane Doe" {
		t.Errorf("Parsed = %+v", got.Parsed)
	}
	if len(got.StatusHistory) != 1 {
		t.Errorf("StatusHistory = %v", got.StatusHistory)
	}
}

func TestPGRepoGetByIDNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()
	repo := &PGRepo{DB: db}

	mock.ExpectQuery("SELECT .* FROM resumes WHERE id = \\$1").
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows(resumeColumnNames))

	if _, err := repo.GetByID(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestPGRepoUpdateStatusReadModifyWrite(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()
	repo := &PGRepo{DB: db}

	stored := pgVoiceResume("res-1")
	rows := sqlmock.NewRows(resumeColumnNames)
	addResumeRow(t, rows, stored)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT .* FROM resumes WHERE id = \\$1 FOR UPDATE").
		WithArgs("res-1").
		WillReturnRows(rows)
	mock.ExpectExec("UPDATE resumes SET").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	now := time.Now().UTC()
	err = repo.UpdateStatus(context.Background(), "res-1", StatusUpdate{
		State:               status.StateTranscribing,
		HistoryEntry:        status.Entry{State: status.StateTranscribing, Timestamp: now},
		ProcessingStartedAt: &now,
	})
	if err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestPGRepoUpdateRollsBackOnInvalidState(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()
	repo := &PGRepo{DB: db}

	stored := pgVoiceResume("res-1")
	rows := sqlmock.NewRows(resumeColumnNames)
	addResumeRow(t, rows, stored)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT .* FROM resumes WHERE id = \\$1 FOR UPDATE").
		WithArgs("res-1").
		WillReturnRows(rows)
	mock.ExpectRollback()

	// failed without an error payload violates the record invariants
	err = repo.UpdateStatus(context.Background(), "res-1", StatusUpdate{State: status.StateFailed})
	if !errors.Is(err, ErrInvalid) {
		t.Fatalf("err = %v, want ErrInvalid", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}
