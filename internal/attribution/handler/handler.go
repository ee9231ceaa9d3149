package handler

import (
	"net/http"

	"admissions_crm_backend/internal/attribution/service"
	"admissions_crm_backend/internal/attribution/transport"
	"admissions_crm_backend/platform/httpkit"
	"admissions_crm_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
)

type Handler struct {
	svc      *service.Service
	validate *validator.Validator
}

func New(svc *service.Service, validate *validator.Validator) *Handler {
	return &Handler{svc: svc, validate: validate}
}

// RegisterPublicRoutes mounts the tracking endpoints hit by the marketing
// site.
func (h *Handler) RegisterPublicRoutes(rg *gin.RouterGroup) {
	rg.POST("/journeys", h.StartJourney)
	rg.POST("/journeys/:id/touchpoints", h.RecordTouchpoint)
}

// RegisterRoutes mounts the authenticated attribution routes.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/journeys/:id", h.GetJourney)
	rg.POST("/journeys/:id/bind-lead", h.BindLead)
}

func (h *Handler) StartJourney(c *gin.Context) {
	orgID, ok := orgFromRequest(c)
	if !ok {
		return
	}

	var req transport.StartJourneyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	journey, err := h.svc.StartJourney(c.Request.Context(), orgID, req)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}

	httpkit.Created(c, journey)
}

func (h *Handler) RecordTouchpoint(c *gin.Context) {
	journeyID, ok := pathID(c)
	if !ok {
		return
	}

	var req transport.RecordTouchpointRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	tp, err := h.svc.RecordTouchpoint(c.Request.Context(), journeyID, req)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}

	httpkit.Created(c, tp)
}

func (h *Handler) BindLead(c *gin.Context) {
	journeyID, ok := pathID(c)
	if !ok {
		return
	}

	var req transport.BindLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	if err := h.svc.BindLead(c.Request.Context(), journeyID, req.LeadID); err != nil {
		httpkit.HandleError(c, err)
		return
	}

	httpkit.OK(c, gin.H{"status": "bound"})
}

func (h *Handler) GetJourney(c *gin.Context) {
	journeyID, ok := pathID(c)
	if !ok {
		return
	}

	journey, err := h.svc.GetJourney(c.Request.Context(), journeyID)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}

	httpkit.OK(c, journey)
}

func pathID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return uuid.Nil, false
	}
	return id, true
}

// orgFromRequest resolves the organization from the auth context, falling
// back to the orgId query parameter for public tracking calls.
func orgFromRequest(c *gin.Context) (uuid.UUID, bool) {
	if value, exists := c.Get(httpkit.ContextOrgIDKey); exists {
		if id, ok := value.(uuid.UUID); ok {
			return id, true
		}
	}
	if raw := c.Query("orgId"); raw != "" {
		if id, err := uuid.Parse(raw); err == nil {
			return id, true
		}
	}
	httpkit.Error(c, http.StatusBadRequest, "organization not resolved", nil)
	return uuid.Nil, false
}
