package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"admissions_crm_backend/internal/assignment/repository"
	"admissions_crm_backend/internal/events"
	"admissions_crm_backend/platform/apperr"
	"admissions_crm_backend/platform/logger"

	"github.com/google/uuid"
)

const (
	msgNoMatchingRule        = "no matching assignment rule found"
	msgNoAvailableCounselors = "no available counselors found for assignment"
)

// AssignResult is the outcome of binding a lead to a counselor.
type AssignResult struct {
	LeadID        uuid.UUID `json:"lead_id"`
	CounselorID   uuid.UUID `json:"counselor_id"`
	CounselorName string    `json:"counselor_name"`
	TeamID        uuid.UUID `json:"team_id"`
	TeamName      string    `json:"team_name"`
	RuleName      string    `json:"rule_name"`
	AssignedAt    time.Time `json:"assigned_at"`
}

// BulkItem is one entry of a bulk assignment run.
type BulkItem struct {
	LeadID uuid.UUID     `json:"lead_id"`
	Result *AssignResult `json:"result,omitempty"`
	Error  string        `json:"error,omitempty"`
}

// BulkSummary aggregates a bulk assignment run. Per-item failures never abort
// the batch.
type BulkSummary struct {
	Assigned   []BulkItem `json:"assigned"`
	Errors     []BulkItem `json:"errors"`
	Total      int        `json:"total"`
	Successful int        `json:"successful"`
	Failed     int        `json:"failed"`
}

// Service is the assignment engine: it matches a lead against the
// organization's ordered rules, selects a counselor by the team's load
// strategy, and persists the assignment with an audit log entry.
type Service struct {
	store    repository.Store
	selector *Selector
	cache    *StatsCache
	bus      events.Bus
	log      *logger.Logger
	now      func() time.Time
}

// New creates the assignment engine.
func New(store repository.Store, selector *Selector, cache *StatsCache, bus events.Bus, log *logger.Logger) *Service {
	return &Service{
		store:    store,
		selector: selector,
		cache:    cache,
		bus:      bus,
		log:      log,
		now:      time.Now,
	}
}

// Assign routes a lead through the organization's rules. Rules are evaluated
// strictly in priority order; the first match wins.
func (s *Service) Assign(ctx context.Context, leadID, orgID uuid.UUID) (AssignResult, error) {
	lead, err := s.store.GetLeadRouting(ctx, leadID)
	if err != nil {
		if errors.Is(err, repository.ErrLeadNotFound) {
			return AssignResult{}, apperr.NotFound("lead not found")
		}
		return AssignResult{}, apperr.Persistence("assignment.get_lead", err)
	}

	rules, err := s.store.GetActiveRules(ctx, orgID)
	if err != nil {
		return AssignResult{}, apperr.Persistence("assignment.get_rules", err)
	}

	rule, cond, found := findMatchingRule(lead, rules)
	if !found {
		return AssignResult{}, apperr.Unprocessable(msgNoMatchingRule)
	}

	pool, err := s.store.GetEligibleCounselors(ctx, rule.TeamID)
	if err != nil {
		return AssignResult{}, apperr.Persistence("assignment.get_counselors", err)
	}
	if len(pool) == 0 {
		return AssignResult{}, apperr.Unprocessable(msgNoAvailableCounselors)
	}

	strategy, err := s.store.GetTeamStrategy(ctx, rule.TeamID)
	if err != nil {
		if errors.Is(err, repository.ErrTeamNotFound) {
			return AssignResult{}, apperr.NotFound("team not found")
		}
		return AssignResult{}, apperr.Persistence("assignment.get_strategy", err)
	}

	selected, err := s.selector.Select(ctx, rule.TeamID, strategy.LoadStrategy, pool)
	if err != nil {
		return AssignResult{}, apperr.Persistence("assignment.select_counselor", err)
	}

	snapshot := RuleSnapshot{
		RuleID:            rule.ID,
		RuleName:          rule.Name,
		Type:              cond.Type(),
		Priority:          rule.Priority,
		MatchedConditions: cond.Audit(lead),
		Timestamp:         s.now().UTC(),
	}
	snapshotJSON, err := json.Marshal(snapshot)
	if err != nil {
		return AssignResult{}, apperr.Internal("marshal rule snapshot").WithOp("assignment.snapshot")
	}

	ruleID := rule.ID
	assignedAt, err := s.store.Assign(ctx, repository.AssignParams{
		LeadID:      leadID,
		CounselorID: selected.ID,
		TeamID:      rule.TeamID,
		RuleID:      &ruleID,
		Snapshot:    snapshotJSON,
	})
	if err != nil {
		if errors.Is(err, repository.ErrLeadNotFound) {
			return AssignResult{}, apperr.NotFound("lead not found")
		}
		return AssignResult{}, apperr.Persistence("assignment.write", err)
	}

	result := AssignResult{
		LeadID:        leadID,
		CounselorID:   selected.ID,
		CounselorName: selected.Name(),
		TeamID:        rule.TeamID,
		TeamName:      rule.TeamName,
		RuleName:      rule.Name,
		AssignedAt:    assignedAt,
	}

	s.log.AssignmentEvent(leadID.String(), selected.ID.String(), rule.TeamID.String(), rule.Name)

	if s.bus != nil {
		s.bus.Publish(ctx, events.NewLeadAssigned(
			leadID,
			lead.FirstName+" "+lead.LastName,
			selected.ID,
			selected.Email,
			selected.Name(),
			rule.TeamName,
			rule.Name,
		))
	}

	return result, nil
}

// Reassign binds a lead to a specific counselor, bypassing rule matching.
// The audit snapshot records the previous counselor and team plus the
// caller-supplied reason.
func (s *Service) Reassign(ctx context.Context, leadID, newCounselorID uuid.UUID, reason string) (AssignResult, error) {
	lead, err := s.store.GetLeadRouting(ctx, leadID)
	if err != nil {
		if errors.Is(err, repository.ErrLeadNotFound) {
			return AssignResult{}, apperr.NotFound("lead not found")
		}
		return AssignResult{}, apperr.Persistence("assignment.get_lead", err)
	}

	newTeam, err := s.store.GetCounselorTeam(ctx, newCounselorID)
	if err != nil {
		if errors.Is(err, repository.ErrCounselorNotFound) {
			return AssignResult{}, apperr.NotFound("counselor not found")
		}
		return AssignResult{}, apperr.Persistence("assignment.get_counselor_team", err)
	}

	snapshot := ReassignmentSnapshot{
		Type:              "reassignment",
		Reason:            reason,
		PreviousCounselor: lead.AssignedCounselor,
		Timestamp:         s.now().UTC(),
	}
	if lead.AssignedCounselor != nil {
		if prevTeam, err := s.store.GetCounselorTeam(ctx, *lead.AssignedCounselor); err == nil {
			snapshot.PreviousTeam = &TeamRef{TeamID: prevTeam.TeamID, TeamName: prevTeam.TeamName}
		}
	}
	snapshotJSON, err := json.Marshal(snapshot)
	if err != nil {
		return AssignResult{}, apperr.Internal("marshal reassignment snapshot").WithOp("assignment.snapshot")
	}

	assignedAt, err := s.store.Assign(ctx, repository.AssignParams{
		LeadID:      leadID,
		CounselorID: newCounselorID,
		TeamID:      newTeam.TeamID,
		Snapshot:    snapshotJSON,
	})
	if err != nil {
		if errors.Is(err, repository.ErrLeadNotFound) {
			return AssignResult{}, apperr.NotFound("lead not found")
		}
		return AssignResult{}, apperr.Persistence("assignment.write", err)
	}

	result := AssignResult{
		LeadID:        leadID,
		CounselorID:   newCounselorID,
		CounselorName: newTeam.CounselorName,
		TeamID:        newTeam.TeamID,
		TeamName:      newTeam.TeamName,
		AssignedAt:    assignedAt,
	}

	s.log.AssignmentEvent(leadID.String(), newCounselorID.String(), newTeam.TeamID.String(), "reassignment")

	if s.bus != nil {
		// No rule name: manual reassignments bypass the rule engine.
		s.bus.Publish(ctx, events.NewLeadAssigned(
			leadID,
			lead.FirstName+" "+lead.LastName,
			newCounselorID,
			newTeam.CounselorEmail,
			newTeam.CounselorName,
			newTeam.TeamName,
			"",
		))
	}

	return result, nil
}

// BulkAssign routes a set of leads sequentially, isolating per-item failures
// and always returning an aggregate summary.
func (s *Service) BulkAssign(ctx context.Context, leadIDs []uuid.UUID, orgID uuid.UUID) BulkSummary {
	summary := BulkSummary{
		Assigned: make([]BulkItem, 0, len(leadIDs)),
		Errors:   make([]BulkItem, 0),
		Total:    len(leadIDs),
	}

	for _, leadID := range leadIDs {
		result, err := s.Assign(ctx, leadID, orgID)
		if err != nil {
			summary.Errors = append(summary.Errors, BulkItem{LeadID: leadID, Error: err.Error()})
			summary.Failed++
			continue
		}
		summary.Assigned = append(summary.Assigned, BulkItem{LeadID: leadID, Result: &result})
		summary.Successful++
	}

	return summary
}

// ListRules returns the organization's active rules in evaluation order.
func (s *Service) ListRules(ctx context.Context, orgID uuid.UUID) ([]repository.Rule, error) {
	rules, err := s.store.GetActiveRules(ctx, orgID)
	if err != nil {
		return nil, apperr.Persistence("assignment.list_rules", err)
	}
	return rules, nil
}

// ListEligibleCounselors returns the counselors a team can currently route
// leads to, with their derived daily load.
func (s *Service) ListEligibleCounselors(ctx context.Context, teamID uuid.UUID) ([]repository.Counselor, error) {
	pool, err := s.store.GetEligibleCounselors(ctx, teamID)
	if err != nil {
		return nil, apperr.Persistence("assignment.list_counselors", err)
	}
	return pool, nil
}

// GetOverview returns the org-level workload dashboard, cached briefly like
// the other reporting reads.
func (s *Service) GetOverview(ctx context.Context, orgID uuid.UUID) ([]repository.TeamOverview, error) {
	var overview []repository.TeamOverview
	key := fmt.Sprintf("assignment:overview:%s", orgID)
	if s.cache.Get(ctx, key, &overview) {
		return overview, nil
	}

	overview, err := s.store.GetWorkloadOverview(ctx, orgID)
	if err != nil {
		return nil, apperr.Persistence("assignment.overview", err)
	}

	s.cache.Set(ctx, key, overview)
	return overview, nil
}

// ListLogs returns a lead's assignment history, newest first.
func (s *Service) ListLogs(ctx context.Context, leadID uuid.UUID, limit, offset int) ([]repository.LogEntry, int, error) {
	if limit <= 0 {
		limit = 25
	}
	if offset < 0 {
		offset = 0
	}
	entries, total, err := s.store.ListLogs(ctx, leadID, limit, offset)
	if err != nil {
		return nil, 0, apperr.Persistence("assignment.list_logs", err)
	}
	return entries, total, nil
}

// GetWorkload returns a counselor's assignment counts over the trailing
// window.
func (s *Service) GetWorkload(ctx context.Context, counselorID uuid.UUID, days int) (repository.Workload, error) {
	if days <= 0 {
		days = 7
	}
	since := s.now().AddDate(0, 0, -days)

	var workload repository.Workload
	key := fmt.Sprintf("assignment:workload:%s:%d", counselorID, days)
	if s.cache.Get(ctx, key, &workload) {
		return workload, nil
	}

	workload, err := s.store.GetCounselorWorkload(ctx, counselorID, since)
	if err != nil {
		return repository.Workload{}, apperr.Persistence("assignment.workload", err)
	}

	s.cache.Set(ctx, key, workload)
	return workload, nil
}

// GetStats returns per-team assignment statistics for the reporting window.
func (s *Service) GetStats(ctx context.Context, orgID uuid.UUID, start, end time.Time) ([]repository.TeamStats, error) {
	var stats []repository.TeamStats
	key := fmt.Sprintf("assignment:stats:%s:%s:%s", orgID, start.Format("2006-01-02"), end.Format("2006-01-02"))
	if s.cache.Get(ctx, key, &stats) {
		return stats, nil
	}

	stats, err := s.store.GetAssignmentStats(ctx, orgID, start, end)
	if err != nil {
		return nil, apperr.Persistence("assignment.stats", err)
	}

	s.cache.Set(ctx, key, stats)
	return stats, nil
}
