package handler

import (
	"net/http"
	"strconv"

	"admissions_crm_backend/internal/leads/service"
	"admissions_crm_backend/internal/leads/transport"
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

// RegisterRoutes mounts the authenticated lead routes.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.List)
	rg.POST("", h.Create)
	rg.GET("/:id", h.GetByID)
	rg.PUT("/:id", h.Update)
	rg.GET("/:id/education", h.ListEducation)
	rg.POST("/:id/education", h.AddEducation)
	rg.GET("/:id/experience", h.ListExperience)
	rg.POST("/:id/experience", h.AddExperience)
	rg.GET("/:id/test-scores", h.ListTestScores)
	rg.POST("/:id/test-scores", h.AddTestScore)
}

// RegisterPublicRoutes mounts the unauthenticated capture endpoint used by
// the marketing site form. The router applies rate limiting.
func (h *Handler) RegisterPublicRoutes(rg *gin.RouterGroup) {
	rg.POST("/capture", h.Create)
}

func (h *Handler) Create(c *gin.Context) {
	orgID, ok := h.orgID(c)
	if !ok {
		return
	}

	var req transport.CaptureLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	lead, err := h.svc.Capture(c.Request.Context(), orgID, req)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}

	httpkit.Created(c, lead)
}

func (h *Handler) List(c *gin.Context) {
	orgID, ok := h.orgID(c)
	if !ok {
		return
	}

	query := service.ListQuery{
		Status:  c.Query("status"),
		Stage:   c.Query("stage"),
		Hotness: c.Query("hotness"),
		Limit:   intQuery(c, "limit", 0),
		Offset:  intQuery(c, "offset", 0),
	}
	if counselor := c.Query("counselorId"); counselor != "" {
		id, err := uuid.Parse(counselor)
		if err != nil {
			httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
			return
		}
		query.AssignedCounselor = &id
	}

	leads, err := h.svc.List(c.Request.Context(), orgID, query)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}

	httpkit.OK(c, leads)
}

func (h *Handler) GetByID(c *gin.Context) {
	id, ok := h.leadID(c)
	if !ok {
		return
	}

	lead, err := h.svc.GetDetail(c.Request.Context(), id)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}

	httpkit.OK(c, lead)
}

func (h *Handler) Update(c *gin.Context) {
	id, ok := h.leadID(c)
	if !ok {
		return
	}

	var req transport.UpdateLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	lead, err := h.svc.Update(c.Request.Context(), id, req)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}

	httpkit.OK(c, lead)
}

func (h *Handler) AddEducation(c *gin.Context) {
	id, ok := h.leadID(c)
	if !ok {
		return
	}

	var req transport.AddEducationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	rec, err := h.svc.AddEducation(c.Request.Context(), id, req)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}

	httpkit.Created(c, rec)
}

func (h *Handler) ListEducation(c *gin.Context) {
	id, ok := h.leadID(c)
	if !ok {
		return
	}

	detail, err := h.svc.GetDetail(c.Request.Context(), id)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}

	httpkit.OK(c, detail.Education)
}

func (h *Handler) AddExperience(c *gin.Context) {
	id, ok := h.leadID(c)
	if !ok {
		return
	}

	var req transport.AddExperienceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	rec, err := h.svc.AddExperience(c.Request.Context(), id, req)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}

	httpkit.Created(c, rec)
}

func (h *Handler) ListExperience(c *gin.Context) {
	id, ok := h.leadID(c)
	if !ok {
		return
	}

	detail, err := h.svc.GetDetail(c.Request.Context(), id)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}

	httpkit.OK(c, detail.Experience)
}

func (h *Handler) AddTestScore(c *gin.Context) {
	id, ok := h.leadID(c)
	if !ok {
		return
	}

	var req transport.AddTestScoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	rec, err := h.svc.AddTestScore(c.Request.Context(), id, req)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}

	httpkit.Created(c, rec)
}

func (h *Handler) ListTestScores(c *gin.Context) {
	id, ok := h.leadID(c)
	if !ok {
		return
	}

	detail, err := h.svc.GetDetail(c.Request.Context(), id)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}

	httpkit.OK(c, detail.TestScores)
}

func (h *Handler) leadID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return uuid.Nil, false
	}
	return id, true
}

// orgID resolves the organization from the auth context, falling back to the
// orgId query parameter for the public capture endpoint.
func (h *Handler) orgID(c *gin.Context) (uuid.UUID, bool) {
	if value, exists := c.Get(httpkit.ContextOrgIDKey); exists {
		if id, ok := value.(uuid.UUID); ok {
			return id, true
		}
	}
	if raw := c.Query("orgId"); raw != "" {
		id, err := uuid.Parse(raw)
		if err == nil {
			return id, true
		}
	}
	httpkit.Error(c, http.StatusBadRequest, "organization not resolved", nil)
	return uuid.Nil, false
}

func intQuery(c *gin.Context, key string, fallback int) int {
	raw := c.Query(key)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}
