package resumes

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"resume-pipeline/internal/fileref"
	"resume-pipeline/internal/queue"
	"resume-pipeline/internal/shared/server/middleware"
	"resume-pipeline/internal/shared/server/respond"
	"resume-pipeline/internal/shared/telemetry"
	"resume-pipeline/internal/status"
)

const maxUploadBytes = 25 << 20

var allowedDocumentTypes = map[string]struct{}{
	"application/pdf": {},
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": {},
	"text/plain": {},
}

var allowedVoiceTypes = map[string]struct{}{
	"audio/mpeg":  {},
	"audio/mp3":   {},
	"audio/mp4":   {},
	"audio/wav":   {},
	"audio/x-wav": {},
	"audio/webm":  {},
	"audio/ogg":   {},
	"audio/x-m4a": {},
}

// Handler wires the intake and status HTTP surface to the record store
// and the processing queue.
type Handler struct {
	Repo  Repo
	Store *fileref.Local
	Queue queue.Client

	poll *pollLimiter
	now  func() time.Time
}

// NewHandler constructs a Handler. queueClient may be nil when no queue is
// configured; uploads are then accepted but stay at uploaded until a
// worker picks them up by other means.
func NewHandler(repo Repo, store *fileref.Local, queueClient queue.Client) *Handler {
	return &Handler{
		Repo:  repo,
		Store: store,
		Queue: queueClient,
		poll:  newPollLimiter(pollLimitWindow, nil),
		now:   time.Now,
	}
}

// RegisterRoutes attaches resume routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/resumes", h.upload)
	rg.GET("/resumes", h.list)
	rg.GET("/resumes/:id", h.get)
	rg.POST("/resumes/:id/retry", h.retry)
}

func (h *Handler) upload(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	modality := status.Modality(strings.TrimSpace(c.PostForm("modality")))
	if !modality.Valid() {
		respond.Error(c, http.StatusBadRequest, "validation_error", "modality must be voice or document", nil)
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "file is required", nil)
		return
	}
	if fileHeader.Size <= 0 || fileHeader.Size > maxUploadBytes {
		respond.Error(c, http.StatusBadRequest, "validation_error", "file size exceeds limit", nil)
		return
	}

	contentType := fileHeader.Header.Get("Content-Type")
	if base, _, found := strings.Cut(contentType, ";"); found {
		contentType = base
	}
	contentType = strings.TrimSpace(contentType)
	if !contentTypeAllowed(modality, contentType) {
		respond.Error(c, http.StatusBadRequest, "validation_error", "content type is not allowed for this modality", nil)
		return
	}

	src, err := fileHeader.Open()
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to read upload", nil)
		return
	}
	defer src.Close()

	ref, size, sniffedType, err := h.Store.Save(c.Request.Context(), userID, fileHeader.Filename, src)
	if err != nil {
		telemetry.Error("resumes.upload.save_failed", map[string]any{
			"user_id": userID,
			"error":   err.Error(),
		})
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to store upload", nil)
		return
	}
	if contentType == "" {
		contentType = sniffedType
	}

	now := h.now().UTC()
	record := Resume{
		ID:          uuid.NewString(),
		UserID:      userID,
		FileName:    fileHeader.Filename,
		StorageRef:  ref,
		SizeBytes:   size,
		ContentType: contentType,
		Modality:    modality,
		Status:      status.StateUploaded,
		StatusHistory: []status.Entry{
			{State: status.StateUploaded, Timestamp: now},
		},
		UploadedAt: now,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := h.Repo.Create(c.Request.Context(), record); err != nil {
		if errors.Is(err, ErrInvalid) {
			respond.Error(c, http.StatusBadRequest, "validation_error", "invalid resume record", nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to create resume", nil)
		return
	}

	h.enqueue(c, record.ID, queue.OpRun)

	respond.JSON(c, http.StatusAccepted, gin.H{
		"id":       record.ID,
		"status":   record.Status,
		"modality": record.Modality,
		"fileName": record.FileName,
	})
}

func (h *Handler) get(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	resumeID := c.Param("id")
	if resumeID == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "resume id is required", nil)
		return
	}

	if !h.poll.Allow(userID, resumeID) {
		c.Header("Retry-After", strconv.Itoa(h.poll.RetryAfterSeconds()))
		respond.Error(c, http.StatusTooManyRequests, "rate_limited", "polling too frequently", nil)
		return
	}

	record, err := h.Repo.GetByID(c.Request.Context(), resumeID)
	if err != nil {
		h.respondRepoError(c, err, "failed to fetch resume")
		return
	}
	if record.UserID != userID {
		respond.Error(c, http.StatusNotFound, "not_found", "resume not found", nil)
		return
	}

	respond.OK(c, statusResponse(record))
}

func (h *Handler) list(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	limit := 20
	offset := 0
	if v := c.Query("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	if limit > 100 {
		limit = 100
	}
	if v := c.Query("offset"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed >= 0 {
			offset = parsed
		}
	}

	records, err := h.Repo.ListByUser(c.Request.Context(), userID, limit, offset)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list resumes", nil)
		return
	}

	items := make([]gin.H, 0, len(records))
	for _, r := range records {
		items = append(items, summaryResponse(r))
	}
	respond.OK(c, gin.H{
		"items":  items,
		"limit":  limit,
		"offset": offset,
	})
}

func (h *Handler) retry(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	resumeID := c.Param("id")
	if resumeID == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "resume id is required", nil)
		return
	}

	record, err := h.Repo.GetByID(c.Request.Context(), resumeID)
	if err != nil {
		h.respondRepoError(c, err, "failed to fetch resume")
		return
	}
	if record.UserID != userID {
		respond.Error(c, http.StatusNotFound, "not_found", "resume not found", nil)
		return
	}
	if record.Status != status.StateFailed {
		respond.Error(c, http.StatusConflict, "invalid_state", "only failed resumes can be retried", nil)
		return
	}
	if record.LastError != nil && !record.LastError.CanRetry {
		respond.Error(c, http.StatusConflict, "invalid_state", "this failure is not retryable", nil)
		return
	}

	h.enqueue(c, record.ID, queue.OpRetry)

	respond.JSON(c, http.StatusAccepted, gin.H{
		"id":     record.ID,
		"status": record.Status,
	})
}

func (h *Handler) enqueue(c *gin.Context, resumeID, op string) {
	if h.Queue == nil {
		return
	}
	msg := queue.Message{
		ResumeID:   resumeID,
		Operation:  op,
		RequestID:  c.GetString("requestId"),
		EnqueuedAt: h.now().UTC().Format(time.RFC3339),
		Version:    queue.MessageVersion,
	}
	if err := h.Queue.Send(c.Request.Context(), msg); err != nil {
		telemetry.Error("resumes.enqueue_failed", map[string]any{
			"resume_id": resumeID,
			"operation": op,
			"error":     err.Error(),
		})
	}
}

func (h *Handler) respondRepoError(c *gin.Context, err error, msg string) {
	if errors.Is(err, ErrNotFound) {
		respond.Error(c, http.StatusNotFound, "not_found", "resume not found", nil)
		return
	}
	respond.Error(c, http.StatusInternalServerError, "internal_error", msg, nil)
}

func contentTypeAllowed(m status.Modality, contentType string) bool {
	if contentType == "" || contentType == "application/octet-stream" {
		// Some clients omit the part content type; the pipeline sniffs it.
		return true
	}
	if m == status.ModalityVoice {
		_, ok := allowedVoiceTypes[contentType]
		return ok
	}
	_, ok := allowedDocumentTypes[contentType]
	return ok
}

func summaryResponse(r Resume) gin.H {
	resp := gin.H{
		"id":         r.ID,
		"fileName":   r.FileName,
		"modality":   r.Modality,
		"status":     r.Status,
		"progress":   status.ProgressPercent(r.Status),
		"uploadedAt": r.UploadedAt,
	}
	if r.CompletedAt != nil {
		resp["completedAt"] = r.CompletedAt
	}
	return resp
}

func statusResponse(r Resume) gin.H {
	resp := gin.H{
		"id":         r.ID,
		"fileName":   r.FileName,
		"modality":   r.Modality,
		"status":     r.Status,
		"progress":   status.ProgressPercent(r.Status),
		"uploadedAt": r.UploadedAt,
	}
	if r.ProcessingStartedAt != nil {
		resp["processingStartedAt"] = r.ProcessingStartedAt
	}
	if r.TranscribedAt != nil {
		resp["transcribedAt"] = r.TranscribedAt
	}
	if r.ParsedAt != nil {
		resp["parsedAt"] = r.ParsedAt
	}
	if r.CompletedAt != nil {
		resp["completedAt"] = r.CompletedAt
		resp["totalDurationMs"] = r.TotalDurationMs
	}
	if r.LastError != nil {
		resp["lastError"] = r.LastError
	}
	if r.Status == status.StateCompleted {
		if r.Transcription != nil {
			resp["transcription"] = r.Transcription
		}
		if r.Parsed != nil {
			resp["parsed"] = r.Parsed
		}
		if r.Confidence != nil {
			resp["confidence"] = r.Confidence
		}
	}
	return resp
}
