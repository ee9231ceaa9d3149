package transport

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// ReassignRequest overrides a lead's assignment to a specific counselor.
type ReassignRequest struct {
	CounselorID uuid.UUID `json:"counselorId" validate:"required"`
	Reason      string    `json:"reason" validate:"required,min=1,max=500"`
}

// BulkAssignRequest routes a set of leads through the rule engine.
type BulkAssignRequest struct {
	LeadIDs []uuid.UUID `json:"leadIds" validate:"required,min=1,max=500"`
}

// LogEntryResponse is one assignment audit record. The snapshot is emitted
// verbatim as stored.
type LogEntryResponse struct {
	ID          uuid.UUID       `json:"id"`
	LeadID      uuid.UUID       `json:"leadId"`
	CounselorID uuid.UUID       `json:"counselorId"`
	TeamID      uuid.UUID       `json:"teamId"`
	RuleID      *uuid.UUID      `json:"ruleId,omitempty"`
	Snapshot    json.RawMessage `json:"snapshot"`
	AssignedAt  time.Time       `json:"assignedAt"`
}

// ListLogsResponse is a paginated assignment history.
type ListLogsResponse struct {
	Logs   []LogEntryResponse `json:"logs"`
	Total  int                `json:"total"`
	Limit  int                `json:"limit"`
	Offset int                `json:"offset"`
}

// WorkloadResponse summarizes a counselor's assignment counts.
type WorkloadResponse struct {
	CounselorID    uuid.UUID `json:"counselorId"`
	Days           int       `json:"days"`
	TotalAssigned  int       `json:"totalAssigned"`
	TodayAssigned  int       `json:"todayAssigned"`
	PeriodAssigned int       `json:"periodAssigned"`
}

// RuleResponse is one active assignment rule in evaluation order.
type RuleResponse struct {
	ID           uuid.UUID `json:"id"`
	TeamID       uuid.UUID `json:"teamId"`
	TeamName     string    `json:"teamName"`
	Name         string    `json:"name"`
	Type         string    `json:"type"`
	Priority     int       `json:"priority"`
	CountryCode  *string   `json:"countryCode,omitempty"`
	ProgramMatch *string   `json:"programMatch,omitempty"`
	MinLeadScore *float64  `json:"minLeadScore,omitempty"`
}

// EligibleCounselorResponse is one counselor a team can route leads to.
type EligibleCounselorResponse struct {
	ID               uuid.UUID `json:"id"`
	Name             string    `json:"name"`
	Email            string    `json:"email"`
	CapacityDaily    *int      `json:"capacityDaily,omitempty"`
	WorkloadWeight   *float64  `json:"workloadWeight,omitempty"`
	CurrentDailyLoad int       `json:"currentDailyLoad"`
}

// TeamOverviewResponse is one row of the org workload dashboard.
type TeamOverviewResponse struct {
	TeamID           uuid.UUID `json:"teamId"`
	TeamName         string    `json:"teamName"`
	TotalCounselors  int       `json:"totalCounselors"`
	ActiveCounselors int       `json:"activeCounselors"`
	TotalCapacity    *int      `json:"totalCapacity,omitempty"`
	TodayAssigned    int       `json:"todayAssigned"`
	WeekAssigned     int       `json:"weekAssigned"`
	MonthConverted   int       `json:"monthConverted"`
}

// TeamStatsResponse is the per-team reporting row.
type TeamStatsResponse struct {
	TeamID           uuid.UUID `json:"teamId"`
	TeamName         string    `json:"teamName"`
	AssignedLeads    int       `json:"assignedLeads"`
	ActiveCounselors int       `json:"activeCounselors"`
	ConvertedLeads   int       `json:"convertedLeads"`
	ConversionRate   float64   `json:"conversionRate"`
}
