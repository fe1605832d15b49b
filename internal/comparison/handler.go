package comparison

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"resume-pipeline/internal/resumes"
	"resume-pipeline/internal/shared/server/middleware"
	"resume-pipeline/internal/shared/server/respond"
	"resume-pipeline/internal/status"
)

const maxJobDescriptionChars = 20000

// Handler exposes job-description comparison over HTTP.
type Handler struct {
	Engine  *Engine
	Repo    Repo
	Resumes resumes.Repo

	now func() time.Time
}

// NewHandler constructs a Handler.
func NewHandler(engine *Engine, repo Repo, resumeRepo resumes.Repo) *Handler {
	return &Handler{Engine: engine, Repo: repo, Resumes: resumeRepo, now: time.Now}
}

// RegisterRoutes attaches comparison routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/resumes/:id/compare", h.compare)
	rg.GET("/resumes/:id/comparisons", h.list)
}

type compareRequest struct {
	JobDescription string `json:"jobDescription"`
}

func (h *Handler) compare(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	resumeID := c.Param("id")

	var req compareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	req.JobDescription = strings.TrimSpace(req.JobDescription)
	if req.JobDescription == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "jobDescription is required", nil)
		return
	}
	if len(req.JobDescription) > maxJobDescriptionChars {
		respond.Error(c, http.StatusBadRequest, "validation_error", "jobDescription exceeds length limit", nil)
		return
	}

	record, err := h.Resumes.GetByID(c.Request.Context(), resumeID)
	if err != nil {
		if errors.Is(err, resumes.ErrNotFound) {
			respond.Error(c, http.StatusNotFound, "not_found", "resume not found", nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to fetch resume", nil)
		return
	}
	if record.UserID != userID {
		respond.Error(c, http.StatusNotFound, "not_found", "resume not found", nil)
		return
	}
	if record.Status != status.StateCompleted || record.Parsed == nil {
		respond.Error(c, http.StatusConflict, "invalid_state", "resume processing is not complete", nil)
		return
	}

	result := h.Engine.Compare(c.Request.Context(), record.Parsed, req.JobDescription)

	comparison := JobComparison{
		ID:             uuid.NewString(),
		ResumeID:       record.ID,
		UserID:         userID,
		JobDescription: req.JobDescription,
		Result:         result,
		CreatedAt:      h.now().UTC(),
	}
	if err := h.Repo.Create(c.Request.Context(), comparison); err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to save comparison", nil)
		return
	}

	respond.JSON(c, http.StatusCreated, comparison)
}

func (h *Handler) list(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	resumeID := c.Param("id")

	record, err := h.Resumes.GetByID(c.Request.Context(), resumeID)
	if err != nil {
		if errors.Is(err, resumes.ErrNotFound) {
			respond.Error(c, http.StatusNotFound, "not_found", "resume not found", nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to fetch resume", nil)
		return
	}
	if record.UserID != userID {
		respond.Error(c, http.StatusNotFound, "not_found", "resume not found", nil)
		return
	}

	items, err := h.Repo.ListByResume(c.Request.Context(), resumeID)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list comparisons", nil)
		return
	}

	respond.OK(c, gin.H{"items": items})
}
