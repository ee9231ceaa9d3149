package handler

import (
	"context"
	"net/http"

	"admissions_crm_backend/internal/leads/scoring"
	"admissions_crm_backend/platform/httpkit"
	"admissions_crm_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RescoreEnqueuer hands the recalculate-all run to a background worker.
// When nil, the run executes inline.
type RescoreEnqueuer interface {
	EnqueueRescoreAll(ctx context.Context, orgID uuid.UUID) (string, error)
}

// ScoringHandler exposes the scoring engine over HTTP.
type ScoringHandler struct {
	svc      *scoring.Service
	enqueuer RescoreEnqueuer
	validate *validator.Validator
}

// NewScoringHandler creates the scoring HTTP handler.
func NewScoringHandler(svc *scoring.Service, enqueuer RescoreEnqueuer, validate *validator.Validator) *ScoringHandler {
	return &ScoringHandler{svc: svc, enqueuer: enqueuer, validate: validate}
}

// RegisterRoutes mounts scoring routes under the authenticated group.
func (h *ScoringHandler) RegisterRoutes(leads, scoringGroup *gin.RouterGroup) {
	leads.POST("/:id/score", h.Score)
	scoringGroup.POST("/batch", h.ScoreBatch)
}

// RegisterAdminRoutes mounts the recalculate-all route.
func (h *ScoringHandler) RegisterAdminRoutes(admin *gin.RouterGroup) {
	admin.POST("/scoring/recalculate-all", h.RecalculateAll)
}

// Score recomputes and persists all sub-scores for one lead.
func (h *ScoringHandler) Score(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	result, err := h.svc.Calculate(c.Request.Context(), id)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}

	httpkit.OK(c, result)
}

type scoreBatchRequest struct {
	LeadIDs []uuid.UUID `json:"leadIds" validate:"required,min=1,max=500"`
}

// ScoreBatch scores a set of leads, reporting per-lead outcomes.
func (h *ScoringHandler) ScoreBatch(c *gin.Context) {
	var req scoreBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	items := h.svc.CalculateBatch(c.Request.Context(), req.LeadIDs)
	httpkit.OK(c, gin.H{"results": items, "total": len(items)})
}

// RecalculateAll rescores every lead in the organization. With a background
// worker configured the run is enqueued and a task id returned; otherwise it
// executes inline.
func (h *ScoringHandler) RecalculateAll(c *gin.Context) {
	orgID, ok := resolveOrgID(c)
	if !ok {
		return
	}

	if h.enqueuer != nil {
		taskID, err := h.enqueuer.EnqueueRescoreAll(c.Request.Context(), orgID)
		if err != nil {
			httpkit.HandleError(c, err)
			return
		}
		httpkit.JSON(c, http.StatusAccepted, gin.H{"taskId": taskID, "status": "queued"})
		return
	}

	items, err := h.svc.RecalculateAll(c.Request.Context(), orgID)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.OK(c, gin.H{"results": items, "total": len(items)})
}

func resolveOrgID(c *gin.Context) (uuid.UUID, bool) {
	if value, exists := c.Get(httpkit.ContextOrgIDKey); exists {
		if id, ok := value.(uuid.UUID); ok {
			return id, true
		}
	}
	httpkit.Error(c, http.StatusBadRequest, "organization not resolved", nil)
	return uuid.Nil, false
}
