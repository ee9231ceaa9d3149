package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"admissions_crm_backend/internal/assignment/repository"
	"admissions_crm_backend/platform/apperr"
	"admissions_crm_backend/platform/logger"

	"github.com/google/uuid"
)

type fakeStore struct {
	lead       repository.LeadRouting
	leadErr    error
	rules      []repository.Rule
	counselors []repository.Counselor
	strategy   repository.TeamStrategy
	teams      map[uuid.UUID]repository.CounselorTeam
	overview   []repository.TeamOverview

	assigned   []repository.AssignParams
	assignedAt time.Time
	assignErr  error
}

func (f *fakeStore) GetLeadRouting(context.Context, uuid.UUID) (repository.LeadRouting, error) {
	if f.leadErr != nil {
		return repository.LeadRouting{}, f.leadErr
	}
	return f.lead, nil
}

func (f *fakeStore) GetActiveRules(context.Context, uuid.UUID) ([]repository.Rule, error) {
	return f.rules, nil
}

func (f *fakeStore) GetEligibleCounselors(context.Context, uuid.UUID) ([]repository.Counselor, error) {
	return f.counselors, nil
}

func (f *fakeStore) GetTeamStrategy(context.Context, uuid.UUID) (repository.TeamStrategy, error) {
	return f.strategy, nil
}

func (f *fakeStore) GetCounselorTeam(_ context.Context, counselorID uuid.UUID) (repository.CounselorTeam, error) {
	team, ok := f.teams[counselorID]
	if !ok {
		return repository.CounselorTeam{}, repository.ErrCounselorNotFound
	}
	return team, nil
}

func (f *fakeStore) IncrementRoundRobinOffset(context.Context, uuid.UUID, int) (int, error) {
	return 0, nil
}

func (f *fakeStore) Assign(_ context.Context, params repository.AssignParams) (time.Time, error) {
	if f.assignErr != nil {
		return time.Time{}, f.assignErr
	}
	f.assigned = append(f.assigned, params)
	if f.assignedAt.IsZero() {
		f.assignedAt = time.Now().UTC()
	}
	return f.assignedAt, nil
}

func (f *fakeStore) ListLogs(context.Context, uuid.UUID, int, int) ([]repository.LogEntry, int, error) {
	return nil, 0, nil
}

func (f *fakeStore) GetCounselorWorkload(context.Context, uuid.UUID, time.Time) (repository.Workload, error) {
	return repository.Workload{}, nil
}

func (f *fakeStore) GetAssignmentStats(context.Context, uuid.UUID, time.Time, time.Time) ([]repository.TeamStats, error) {
	return nil, nil
}

func (f *fakeStore) GetWorkloadOverview(context.Context, uuid.UUID) ([]repository.TeamOverview, error) {
	return f.overview, nil
}

func newTestService(store *fakeStore) *Service {
	svc := New(store, &Selector{offsets: store}, NewStatsCache(nil, 0), nil, logger.New("test"))
	return svc
}

func TestAssign_FirstMatchingRuleWins(t *testing.T) {
	teamID := uuid.New()
	leadID := uuid.New()
	counselor := repository.Counselor{ID: uuid.New(), FirstName: "Dana", LastName: "Reyes", Email: "dana@example.com"}

	store := &fakeStore{
		lead: repository.LeadRouting{ID: leadID, CountryCode: strPtr("US"), LeadScore: 80},
		rules: []repository.Rule{
			{ID: uuid.New(), TeamID: uuid.New(), Name: "canada", Type: RuleTypeGeography, Priority: 1, CountryCode: strPtr("CA"), TeamName: "North"},
			{ID: uuid.New(), TeamID: teamID, Name: "domestic", Type: RuleTypeGeography, Priority: 2, CountryCode: strPtr("US"), TeamName: "Domestic"},
		},
		counselors: []repository.Counselor{counselor},
		strategy:   repository.TeamStrategy{LoadStrategy: StrategyRoundRobin},
	}

	result, err := newTestService(store).Assign(context.Background(), leadID, uuid.New())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.RuleName != "domestic" {
		t.Fatalf("expected domestic rule, got %s", result.RuleName)
	}
	if result.CounselorID != counselor.ID {
		t.Fatalf("expected selected counselor")
	}
	if result.CounselorName != "Dana Reyes" {
		t.Fatalf("expected counselor display name, got %s", result.CounselorName)
	}
	if result.TeamName != "Domestic" {
		t.Fatalf("expected team name Domestic, got %s", result.TeamName)
	}

	if len(store.assigned) != 1 {
		t.Fatalf("expected one persisted assignment, got %d", len(store.assigned))
	}
	params := store.assigned[0]
	if params.RuleID == nil {
		t.Fatalf("expected rule-based assignment to carry a rule id")
	}

	var snapshot RuleSnapshot
	if err := json.Unmarshal(params.Snapshot, &snapshot); err != nil {
		t.Fatalf("snapshot is not valid JSON: %v", err)
	}
	if snapshot.RuleName != "domestic" || snapshot.Type != RuleTypeGeography {
		t.Fatalf("unexpected snapshot: %+v", snapshot)
	}
	check, ok := snapshot.MatchedConditions["country_code"]
	if !ok || !check.Matched {
		t.Fatalf("expected matched country_code condition in snapshot")
	}
}

func TestAssign_LeadNotFound(t *testing.T) {
	store := &fakeStore{leadErr: repository.ErrLeadNotFound}

	_, err := newTestService(store).Assign(context.Background(), uuid.New(), uuid.New())
	if !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestAssign_NoMatchingRule(t *testing.T) {
	store := &fakeStore{
		lead: repository.LeadRouting{ID: uuid.New(), CountryCode: strPtr("DE")},
		rules: []repository.Rule{
			{ID: uuid.New(), Type: RuleTypeGeography, CountryCode: strPtr("US")},
		},
	}

	_, err := newTestService(store).Assign(context.Background(), uuid.New(), uuid.New())
	if !apperr.Is(err, apperr.KindUnprocessable) {
		t.Fatalf("expected unprocessable, got %v", err)
	}
	if err.Error() != msgNoMatchingRule {
		t.Fatalf("expected %q, got %q", msgNoMatchingRule, err.Error())
	}
}

func TestAssign_NoAvailableCounselors(t *testing.T) {
	store := &fakeStore{
		lead: repository.LeadRouting{ID: uuid.New()},
		rules: []repository.Rule{
			{ID: uuid.New(), TeamID: uuid.New(), Type: RuleTypeLoadBalancing},
		},
		counselors: []repository.Counselor{},
	}

	_, err := newTestService(store).Assign(context.Background(), uuid.New(), uuid.New())
	if !apperr.Is(err, apperr.KindUnprocessable) {
		t.Fatalf("expected unprocessable, got %v", err)
	}
	if err.Error() != msgNoAvailableCounselors {
		t.Fatalf("expected %q, got %q", msgNoAvailableCounselors, err.Error())
	}
}

func TestReassign_RecordsPreviousAssignmentInSnapshot(t *testing.T) {
	leadID := uuid.New()
	prevCounselor := uuid.New()
	newCounselor := uuid.New()
	prevTeam := repository.CounselorTeam{CounselorName: "Sam Okafor", TeamID: uuid.New(), TeamName: "Old Team"}
	newTeam := repository.CounselorTeam{CounselorName: "Rin Sato", CounselorEmail: "rin@example.com", TeamID: uuid.New(), TeamName: "New Team"}

	store := &fakeStore{
		lead: repository.LeadRouting{ID: leadID, AssignedCounselor: &prevCounselor},
		teams: map[uuid.UUID]repository.CounselorTeam{
			prevCounselor: prevTeam,
			newCounselor:  newTeam,
		},
	}

	result, err := newTestService(store).Reassign(context.Background(), leadID, newCounselor, "counselor on leave")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.TeamID != newTeam.TeamID || result.TeamName != "New Team" {
		t.Fatalf("expected reassignment onto the new counselor's team")
	}
	if result.CounselorName != "Rin Sato" {
		t.Fatalf("expected new counselor's display name, got %q", result.CounselorName)
	}

	params := store.assigned[0]
	if params.RuleID != nil {
		t.Fatalf("expected manual reassignment to carry no rule id")
	}

	var snapshot ReassignmentSnapshot
	if err := json.Unmarshal(params.Snapshot, &snapshot); err != nil {
		t.Fatalf("snapshot is not valid JSON: %v", err)
	}
	if snapshot.Type != "reassignment" {
		t.Fatalf("expected reassignment snapshot type, got %s", snapshot.Type)
	}
	if snapshot.Reason != "counselor on leave" {
		t.Fatalf("unexpected reason %q", snapshot.Reason)
	}
	if snapshot.PreviousCounselor == nil || *snapshot.PreviousCounselor != prevCounselor {
		t.Fatalf("expected previous counselor recorded")
	}
	if snapshot.PreviousTeam == nil || snapshot.PreviousTeam.TeamName != "Old Team" {
		t.Fatalf("expected previous team recorded")
	}
}

func TestReassign_UnknownCounselor(t *testing.T) {
	store := &fakeStore{
		lead:  repository.LeadRouting{ID: uuid.New()},
		teams: map[uuid.UUID]repository.CounselorTeam{},
	}

	_, err := newTestService(store).Reassign(context.Background(), uuid.New(), uuid.New(), "x")
	if !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestListRules_PreservesEvaluationOrder(t *testing.T) {
	store := &fakeStore{
		rules: []repository.Rule{
			{ID: uuid.New(), Name: "vip", Priority: 1},
			{ID: uuid.New(), Name: "domestic", Priority: 2},
			{ID: uuid.New(), Name: "catch-all", Priority: 99},
		},
	}

	rules, err := newTestService(store).ListRules(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rules) != 3 || rules[0].Name != "vip" || rules[2].Name != "catch-all" {
		t.Fatalf("expected rules in stored order, got %+v", rules)
	}
}

func TestListEligibleCounselors_ReturnsDerivedLoad(t *testing.T) {
	store := &fakeStore{
		counselors: []repository.Counselor{
			{ID: uuid.New(), FirstName: "Dana", LastName: "Reyes", CurrentDailyLoad: 2},
		},
	}

	pool, err := newTestService(store).ListEligibleCounselors(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(pool) != 1 || pool[0].Name() != "Dana Reyes" || pool[0].CurrentDailyLoad != 2 {
		t.Fatalf("unexpected counselor pool: %+v", pool)
	}
}

func TestGetOverview_ReturnsTeamRows(t *testing.T) {
	store := &fakeStore{
		overview: []repository.TeamOverview{
			{TeamID: uuid.New(), TeamName: "Domestic", TotalCounselors: 4, ActiveCounselors: 3, TodayAssigned: 7, MonthConverted: 5},
			{TeamID: uuid.New(), TeamName: "International", TotalCounselors: 2, ActiveCounselors: 2, MonthConverted: 1},
		},
	}

	overview, err := newTestService(store).GetOverview(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(overview) != 2 || overview[0].TeamName != "Domestic" || overview[0].TodayAssigned != 7 {
		t.Fatalf("unexpected overview: %+v", overview)
	}
}

func TestBulkAssign_IsolatesPerLeadFailures(t *testing.T) {
	teamID := uuid.New()
	counselor := repository.Counselor{ID: uuid.New(), FirstName: "Lee", LastName: "Park"}

	store := &fakeStore{
		lead: repository.LeadRouting{CountryCode: strPtr("DE")},
		rules: []repository.Rule{
			{ID: uuid.New(), TeamID: teamID, Name: "catch-all", Type: RuleTypeLoadBalancing, Priority: 99},
		},
		counselors: []repository.Counselor{counselor},
		strategy:   repository.TeamStrategy{LoadStrategy: StrategyLeastLoad},
	}
	svc := newTestService(store)

	ids := []uuid.UUID{uuid.New(), uuid.New(), uuid.New()}
	summary := svc.BulkAssign(context.Background(), ids, uuid.New())

	if summary.Total != 3 || summary.Successful != 3 || summary.Failed != 0 {
		t.Fatalf("unexpected summary: %+v", summary)
	}

	// Make the next run fail entirely by removing the counselor pool.
	store.counselors = nil
	summary = svc.BulkAssign(context.Background(), ids[:2], uuid.New())
	if summary.Total != 2 || summary.Successful != 0 || summary.Failed != 2 {
		t.Fatalf("unexpected failure summary: %+v", summary)
	}
	if len(summary.Errors) != 2 || summary.Errors[0].Error != msgNoAvailableCounselors {
		t.Fatalf("expected per-lead errors, got %+v", summary.Errors)
	}
}
