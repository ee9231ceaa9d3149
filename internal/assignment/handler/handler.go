package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"admissions_crm_backend/internal/assignment/service"
	"admissions_crm_backend/internal/assignment/transport"
	"admissions_crm_backend/platform/httpkit"
	"admissions_crm_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
)

// BulkEnqueuer hands a bulk assignment run to a background worker. When nil,
// the run executes inline.
type BulkEnqueuer interface {
	EnqueueBulkAssign(ctx context.Context, orgID uuid.UUID, leadIDs []uuid.UUID) (string, error)
}

type Handler struct {
	svc      *service.Service
	enqueuer BulkEnqueuer
	validate *validator.Validator
}

func New(svc *service.Service, enqueuer BulkEnqueuer, validate *validator.Validator) *Handler {
	return &Handler{svc: svc, enqueuer: enqueuer, validate: validate}
}

// RegisterRoutes mounts the assignment routes.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/leads/:id/assign", h.Assign)
	rg.POST("/leads/:id/reassign", h.Reassign)
	rg.POST("/bulk", h.BulkAssign)
	rg.GET("/rules", h.ListRules)
	rg.GET("/leads/:id/logs", h.ListLogs)
	rg.GET("/teams/:id/counselors", h.ListCounselors)
	rg.GET("/counselors/:id/workload", h.GetWorkload)
	rg.GET("/overview", h.GetOverview)
	rg.GET("/stats", h.GetStats)
}

// Assign routes one lead through the organization's rules.
func (h *Handler) Assign(c *gin.Context) {
	leadID, ok := pathID(c)
	if !ok {
		return
	}
	orgID, ok := orgFromContext(c)
	if !ok {
		return
	}

	result, err := h.svc.Assign(c.Request.Context(), leadID, orgID)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}

	httpkit.OK(c, result)
}

// Reassign manually overrides a lead's assignment.
func (h *Handler) Reassign(c *gin.Context) {
	leadID, ok := pathID(c)
	if !ok {
		return
	}

	var req transport.ReassignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	result, err := h.svc.Reassign(c.Request.Context(), leadID, req.CounselorID, req.Reason)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}

	httpkit.OK(c, result)
}

// BulkAssign routes a set of leads. With a background worker configured the
// run is enqueued; otherwise it executes inline and returns the summary.
func (h *Handler) BulkAssign(c *gin.Context) {
	orgID, ok := orgFromContext(c)
	if !ok {
		return
	}

	var req transport.BulkAssignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	if h.enqueuer != nil {
		taskID, err := h.enqueuer.EnqueueBulkAssign(c.Request.Context(), orgID, req.LeadIDs)
		if err != nil {
			httpkit.HandleError(c, err)
			return
		}
		httpkit.JSON(c, http.StatusAccepted, gin.H{"taskId": taskID, "status": "queued"})
		return
	}

	summary := h.svc.BulkAssign(c.Request.Context(), req.LeadIDs, orgID)
	httpkit.OK(c, summary)
}

// ListRules returns the organization's active rules in evaluation order.
func (h *Handler) ListRules(c *gin.Context) {
	orgID, ok := orgFromContext(c)
	if !ok {
		return
	}

	rules, err := h.svc.ListRules(c.Request.Context(), orgID)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}

	resp := make([]transport.RuleResponse, 0, len(rules))
	for _, rule := range rules {
		resp = append(resp, transport.RuleResponse{
			ID:           rule.ID,
			TeamID:       rule.TeamID,
			TeamName:     rule.TeamName,
			Name:         rule.Name,
			Type:         rule.Type,
			Priority:     rule.Priority,
			CountryCode:  rule.CountryCode,
			ProgramMatch: rule.ProgramEquals,
			MinLeadScore: rule.MinLeadScore,
		})
	}

	httpkit.OK(c, resp)
}

// ListCounselors returns the counselors a team can currently route leads to.
func (h *Handler) ListCounselors(c *gin.Context) {
	teamID, ok := pathID(c)
	if !ok {
		return
	}

	pool, err := h.svc.ListEligibleCounselors(c.Request.Context(), teamID)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}

	resp := make([]transport.EligibleCounselorResponse, 0, len(pool))
	for _, counselor := range pool {
		resp = append(resp, transport.EligibleCounselorResponse{
			ID:               counselor.ID,
			Name:             counselor.Name(),
			Email:            counselor.Email,
			CapacityDaily:    counselor.CapacityDaily,
			WorkloadWeight:   counselor.WorkloadWeight,
			CurrentDailyLoad: counselor.CurrentDailyLoad,
		})
	}

	httpkit.OK(c, resp)
}

// GetOverview returns the org-level workload dashboard.
func (h *Handler) GetOverview(c *gin.Context) {
	orgID, ok := orgFromContext(c)
	if !ok {
		return
	}

	overview, err := h.svc.GetOverview(c.Request.Context(), orgID)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}

	resp := make([]transport.TeamOverviewResponse, 0, len(overview))
	for _, row := range overview {
		resp = append(resp, transport.TeamOverviewResponse{
			TeamID:           row.TeamID,
			TeamName:         row.TeamName,
			TotalCounselors:  row.TotalCounselors,
			ActiveCounselors: row.ActiveCounselors,
			TotalCapacity:    row.TotalCapacity,
			TodayAssigned:    row.TodayAssigned,
			WeekAssigned:     row.WeekAssigned,
			MonthConverted:   row.MonthConverted,
		})
	}

	httpkit.OK(c, resp)
}

// ListLogs returns a lead's assignment history.
func (h *Handler) ListLogs(c *gin.Context) {
	leadID, ok := pathID(c)
	if !ok {
		return
	}

	limit := intQuery(c, "limit", 25)
	offset := intQuery(c, "offset", 0)

	entries, total, err := h.svc.ListLogs(c.Request.Context(), leadID, limit, offset)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}

	resp := transport.ListLogsResponse{
		Logs:   make([]transport.LogEntryResponse, 0, len(entries)),
		Total:  total,
		Limit:  limit,
		Offset: offset,
	}
	for _, entry := range entries {
		resp.Logs = append(resp.Logs, transport.LogEntryResponse{
			ID:          entry.ID,
			LeadID:      entry.LeadID,
			CounselorID: entry.CounselorID,
			TeamID:      entry.TeamID,
			RuleID:      entry.RuleID,
			Snapshot:    entry.Snapshot,
			AssignedAt:  entry.AssignedAt,
		})
	}

	httpkit.OK(c, resp)
}

// GetWorkload returns a counselor's assignment counts.
func (h *Handler) GetWorkload(c *gin.Context) {
	counselorID, ok := pathID(c)
	if !ok {
		return
	}
	days := intQuery(c, "days", 7)

	workload, err := h.svc.GetWorkload(c.Request.Context(), counselorID, days)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}

	httpkit.OK(c, transport.WorkloadResponse{
		CounselorID:    counselorID,
		Days:           days,
		TotalAssigned:  workload.TotalAssigned,
		TodayAssigned:  workload.TodayAssigned,
		PeriodAssigned: workload.PeriodAssigned,
	})
}

// GetStats returns per-team assignment statistics. The window defaults to the
// trailing 30 days.
func (h *Handler) GetStats(c *gin.Context) {
	orgID, ok := orgFromContext(c)
	if !ok {
		return
	}

	end := time.Now()
	start := end.AddDate(0, 0, -30)
	if raw := c.Query("start"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
			return
		}
		start = parsed
	}
	if raw := c.Query("end"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
			return
		}
		end = parsed.Add(24*time.Hour - time.Nanosecond)
	}

	stats, err := h.svc.GetStats(c.Request.Context(), orgID, start, end)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}

	resp := make([]transport.TeamStatsResponse, 0, len(stats))
	for _, s := range stats {
		resp = append(resp, transport.TeamStatsResponse{
			TeamID:           s.TeamID,
			TeamName:         s.TeamName,
			AssignedLeads:    s.AssignedLeads,
			ActiveCounselors: s.ActiveCounselors,
			ConvertedLeads:   s.ConvertedLeads,
			ConversionRate:   s.ConversionRate,
		})
	}

	httpkit.OK(c, resp)
}

func pathID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return uuid.Nil, false
	}
	return id, true
}

func orgFromContext(c *gin.Context) (uuid.UUID, bool) {
	if value, exists := c.Get(httpkit.ContextOrgIDKey); exists {
		if id, ok := value.(uuid.UUID); ok {
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
