package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrLeadNotFound      = errors.New("lead not found")
	ErrTeamNotFound      = errors.New("team not found")
	ErrCounselorNotFound = errors.New("counselor not found")
)

// LeadRouting is the slice of a lead the assignment engine needs: matching
// inputs plus the current assignment for reassignment snapshots.
type LeadRouting struct {
	ID                uuid.UUID
	OrganizationID    uuid.UUID
	FirstName         string
	LastName          string
	CountryCode       *string
	ProgramInterest   *string
	LeadScore         int
	AssignedCounselor *uuid.UUID
}

// Rule is one assignment rule row joined with its team's routing attributes,
// as returned by GetActiveRules in evaluation order.
type Rule struct {
	ID               uuid.UUID
	TeamID           uuid.UUID
	Name             string
	Type             string
	Priority         int
	CountryCode      *string
	ProgramEquals    *string
	MinLeadScore     *float64
	TeamName         string
	LoadStrategy     string
	RoundRobinOffset int
}

// Counselor is an eligible assignment target with its derived current-day
// load.
type Counselor struct {
	ID               uuid.UUID
	FirstName        string
	LastName         string
	Email            string
	TeamID           uuid.UUID
	CapacityDaily    *int
	WorkloadWeight   *float64
	CurrentDailyLoad int
}

// Name returns the counselor's display name.
func (c Counselor) Name() string {
	return c.FirstName + " " + c.LastName
}

// TeamStrategy is a team's load-balancing policy and round-robin state.
type TeamStrategy struct {
	LoadStrategy     string
	RoundRobinOffset int
}

// CounselorTeam is a counselor's display identity joined with the team they
// belong to.
type CounselorTeam struct {
	CounselorName  string
	CounselorEmail string
	TeamID         uuid.UUID
	TeamName       string
}

// AssignParams binds a lead to a counselor. RuleID is nil for manual
// reassignments.
type AssignParams struct {
	LeadID      uuid.UUID
	CounselorID uuid.UUID
	TeamID      uuid.UUID
	RuleID      *uuid.UUID
	Snapshot    []byte
}

// LogEntry is one immutable assignment audit record.
type LogEntry struct {
	ID          uuid.UUID
	LeadID      uuid.UUID
	CounselorID uuid.UUID
	TeamID      uuid.UUID
	RuleID      *uuid.UUID
	Snapshot    []byte
	AssignedAt  time.Time
}

// Workload aggregates a counselor's assignment counts.
type Workload struct {
	TotalAssigned  int
	TodayAssigned  int
	PeriodAssigned int
}

// TeamOverview is one row of the org-level workload dashboard.
type TeamOverview struct {
	TeamID           uuid.UUID
	TeamName         string
	TotalCounselors  int
	ActiveCounselors int
	TotalCapacity    *int
	TodayAssigned    int
	WeekAssigned     int
	MonthConverted   int
}

// TeamStats is the per-team assignment summary over a reporting window.
type TeamStats struct {
	TeamID           uuid.UUID
	TeamName         string
	AssignedLeads    int
	ActiveCounselors int
	ConvertedLeads   int
	ConversionRate   float64
}

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

var _ Store = (*Repository)(nil)

func (r *Repository) GetLeadRouting(ctx context.Context, leadID uuid.UUID) (LeadRouting, error) {
	var lead LeadRouting
	err := r.pool.QueryRow(ctx, `
		SELECT id, organization_id, first_name, last_name, country_code, program_interest,
			lead_score, assigned_counselor
		FROM leads
		WHERE id = $1 AND deleted_at IS NULL
	`, leadID).Scan(
		&lead.ID, &lead.OrganizationID, &lead.FirstName, &lead.LastName,
		&lead.CountryCode, &lead.ProgramInterest, &lead.LeadScore, &lead.AssignedCounselor,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return LeadRouting{}, ErrLeadNotFound
	}
	if err != nil {
		return LeadRouting{}, err
	}
	return lead, nil
}

// GetActiveRules returns active rules of active, lead-receiving teams in
// strict evaluation order: priority ascending, rule id as tie-break.
func (r *Repository) GetActiveRules(ctx context.Context, orgID uuid.UUID) ([]Rule, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT ar.id, ar.team_id, ar.name, ar.type, ar.priority,
			ar.country_code, ar.program_equals, ar.min_lead_score,
			t.name, t.load_strategy, t.round_robin_offset
		FROM assignment_rules ar
		INNER JOIN teams t ON ar.team_id = t.id
		WHERE ar.active = TRUE
			AND t.is_active = TRUE
			AND t.can_receive_leads = TRUE
			AND t.organization_id = $1
		ORDER BY ar.priority ASC, ar.id ASC
	`, orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	rules := make([]Rule, 0)
	for rows.Next() {
		var rule Rule
		if err := rows.Scan(
			&rule.ID, &rule.TeamID, &rule.Name, &rule.Type, &rule.Priority,
			&rule.CountryCode, &rule.ProgramEquals, &rule.MinLeadScore,
			&rule.TeamName, &rule.LoadStrategy, &rule.RoundRobinOffset,
		); err != nil {
			return nil, err
		}
		rules = append(rules, rule)
	}
	return rules, rows.Err()
}

// GetEligibleCounselors returns active, lead-receiving counselors on the team
// with headroom under their daily capacity, ordered by name for deterministic
// strategy selection. The current-day load is derived, never stored.
func (r *Repository) GetEligibleCounselors(ctx context.Context, teamID uuid.UUID) ([]Counselor, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT u.id, u.first_name, u.last_name, u.email, u.team_id,
			u.capacity_daily, u.workload_weight,
			COALESCE(load.today_count, 0) AS current_daily_load
		FROM users u
		INNER JOIN teams t ON u.team_id = t.id
		LEFT JOIN (
			SELECT assigned_counselor, COUNT(*) AS today_count
			FROM leads
			WHERE assignment_date::date = CURRENT_DATE
				AND status <> 'disqualified'
				AND deleted_at IS NULL
			GROUP BY assigned_counselor
		) load ON load.assigned_counselor = u.id
		WHERE u.team_id = $1
			AND u.status = 'active'
			AND u.can_receive_leads = TRUE
			AND t.is_active = TRUE
			AND (u.capacity_daily IS NULL OR COALESCE(load.today_count, 0) < u.capacity_daily)
		ORDER BY u.first_name, u.last_name
	`, teamID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counselors := make([]Counselor, 0)
	for rows.Next() {
		var c Counselor
		if err := rows.Scan(
			&c.ID, &c.FirstName, &c.LastName, &c.Email, &c.TeamID,
			&c.CapacityDaily, &c.WorkloadWeight, &c.CurrentDailyLoad,
		); err != nil {
			return nil, err
		}
		counselors = append(counselors, c)
	}
	return counselors, rows.Err()
}

func (r *Repository) GetTeamStrategy(ctx context.Context, teamID uuid.UUID) (TeamStrategy, error) {
	var strategy TeamStrategy
	err := r.pool.QueryRow(ctx, `
		SELECT load_strategy, round_robin_offset FROM teams WHERE id = $1
	`, teamID).Scan(&strategy.LoadStrategy, &strategy.RoundRobinOffset)
	if errors.Is(err, pgx.ErrNoRows) {
		return TeamStrategy{}, ErrTeamNotFound
	}
	if err != nil {
		return TeamStrategy{}, err
	}
	return strategy, nil
}

// IncrementRoundRobinOffset advances the team's counter in a single
// conditional update so two concurrent assignments cannot observe the same
// offset. The returned value is the index into the current eligible pool.
func (r *Repository) IncrementRoundRobinOffset(ctx context.Context, teamID uuid.UUID, poolSize int) (int, error) {
	var selectedIndex int
	err := r.pool.QueryRow(ctx, `
		UPDATE teams
		SET round_robin_offset = (round_robin_offset % $2) + 1
		WHERE id = $1
		RETURNING round_robin_offset - 1
	`, teamID, poolSize).Scan(&selectedIndex)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, ErrTeamNotFound
	}
	if err != nil {
		return 0, err
	}
	return selectedIndex, nil
}

func (r *Repository) GetCounselorTeam(ctx context.Context, counselorID uuid.UUID) (CounselorTeam, error) {
	var team CounselorTeam
	err := r.pool.QueryRow(ctx, `
		SELECT u.first_name || ' ' || u.last_name, u.email, t.id, t.name
		FROM teams t
		INNER JOIN users u ON u.team_id = t.id
		WHERE u.id = $1
	`, counselorID).Scan(&team.CounselorName, &team.CounselorEmail, &team.TeamID, &team.TeamName)
	if errors.Is(err, pgx.ErrNoRows) {
		return CounselorTeam{}, ErrCounselorNotFound
	}
	if err != nil {
		return CounselorTeam{}, err
	}
	return team, nil
}

// Assign binds the lead to the counselor and appends the audit log entry in
// one transaction. The log is append-only; prior entries are never touched.
func (r *Repository) Assign(ctx context.Context, params AssignParams) (time.Time, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return time.Time{}, err
	}
	defer tx.Rollback(ctx)

	assignedAt := time.Now().UTC()

	tag, err := tx.Exec(ctx, `
		UPDATE leads
		SET assigned_counselor = $2,
			assignment_date = $3,
			assignment_rule = $4,
			followup_status = 'pending',
			updated_at = $3
		WHERE id = $1 AND deleted_at IS NULL
	`, params.LeadID, params.CounselorID, assignedAt, params.Snapshot)
	if err != nil {
		return time.Time{}, err
	}
	if tag.RowsAffected() == 0 {
		return time.Time{}, ErrLeadNotFound
	}

	if _, err := tx.Exec(ctx, `
		INSERT INTO assignment_logs (
			lead_id, assigned_counselor, team_id, rule_id, rule_snapshot, assigned_at, followup_status
		) VALUES ($1, $2, $3, $4, $5, $6, 'pending')
	`, params.LeadID, params.CounselorID, params.TeamID, params.RuleID, params.Snapshot, assignedAt); err != nil {
		return time.Time{}, err
	}

	return assignedAt, tx.Commit(ctx)
}

// ListLogs returns a lead's assignment history, newest first.
func (r *Repository) ListLogs(ctx context.Context, leadID uuid.UUID, limit, offset int) ([]LogEntry, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM assignment_logs WHERE lead_id = $1
	`, leadID).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx, `
		SELECT id, lead_id, assigned_counselor, team_id, rule_id, rule_snapshot, assigned_at
		FROM assignment_logs
		WHERE lead_id = $1
		ORDER BY assigned_at DESC
		LIMIT $2 OFFSET $3
	`, leadID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	entries := make([]LogEntry, 0)
	for rows.Next() {
		var entry LogEntry
		if err := rows.Scan(
			&entry.ID, &entry.LeadID, &entry.CounselorID, &entry.TeamID,
			&entry.RuleID, &entry.Snapshot, &entry.AssignedAt,
		); err != nil {
			return nil, 0, err
		}
		entries = append(entries, entry)
	}
	if rows.Err() != nil {
		return nil, 0, rows.Err()
	}
	return entries, total, nil
}

func (r *Repository) GetCounselorWorkload(ctx context.Context, counselorID uuid.UUID, since time.Time) (Workload, error) {
	var w Workload
	err := r.pool.QueryRow(ctx, `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE assignment_date::date = CURRENT_DATE),
			COUNT(*) FILTER (WHERE assignment_date >= $2)
		FROM leads
		WHERE assigned_counselor = $1
			AND status <> 'disqualified'
			AND deleted_at IS NULL
	`, counselorID, since).Scan(&w.TotalAssigned, &w.TodayAssigned, &w.PeriodAssigned)
	if err != nil {
		return Workload{}, err
	}
	return w, nil
}

// GetWorkloadOverview aggregates per-team counselor headcount, capacity, and
// recent assignment volume. Lead counts are taken per counselor in a lateral
// subquery so the join cannot inflate the capacity sums.
func (r *Repository) GetWorkloadOverview(ctx context.Context, orgID uuid.UUID) ([]TeamOverview, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT
			t.id,
			t.name,
			COUNT(u.id) AS total_counselors,
			COUNT(u.id) FILTER (WHERE u.can_receive_leads) AS active_counselors,
			SUM(u.capacity_daily) AS total_capacity,
			COALESCE(SUM(la.today_assigned), 0) AS today_assigned,
			COALESCE(SUM(la.week_assigned), 0) AS week_assigned,
			COALESCE(SUM(la.month_converted), 0) AS month_converted
		FROM teams t
		LEFT JOIN users u ON u.team_id = t.id
		LEFT JOIN LATERAL (
			SELECT
				COUNT(*) FILTER (WHERE l.assignment_date::date = CURRENT_DATE) AS today_assigned,
				COUNT(*) FILTER (WHERE l.assignment_date >= CURRENT_DATE - INTERVAL '7 days') AS week_assigned,
				COUNT(*) FILTER (WHERE l.status = 'converted' AND l.assignment_date >= CURRENT_DATE - INTERVAL '30 days') AS month_converted
			FROM leads l
			WHERE l.assigned_counselor = u.id AND l.deleted_at IS NULL
		) la ON TRUE
		WHERE t.organization_id = $1 AND t.is_active = TRUE
		GROUP BY t.id, t.name
		ORDER BY month_converted DESC, t.name ASC
	`, orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	overview := make([]TeamOverview, 0)
	for rows.Next() {
		var row TeamOverview
		if err := rows.Scan(
			&row.TeamID, &row.TeamName, &row.TotalCounselors, &row.ActiveCounselors,
			&row.TotalCapacity, &row.TodayAssigned, &row.WeekAssigned, &row.MonthConverted,
		); err != nil {
			return nil, err
		}
		overview = append(overview, row)
	}
	return overview, rows.Err()
}

func (r *Repository) GetAssignmentStats(ctx context.Context, orgID uuid.UUID, start, end time.Time) ([]TeamStats, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT
			t.id,
			t.name,
			COUNT(*) AS assigned_leads,
			COUNT(DISTINCT l.assigned_counselor) AS active_counselors,
			COUNT(*) FILTER (WHERE l.status = 'converted') AS converted_leads,
			COUNT(*) FILTER (WHERE l.status = 'converted')::float / COUNT(*) * 100 AS conversion_rate
		FROM leads l
		INNER JOIN users u ON l.assigned_counselor = u.id
		INNER JOIN teams t ON u.team_id = t.id
		WHERE l.organization_id = $1
			AND l.assignment_date >= $2
			AND l.assignment_date <= $3
			AND l.assigned_counselor IS NOT NULL
			AND l.deleted_at IS NULL
		GROUP BY t.id, t.name
		ORDER BY assigned_leads DESC
	`, orgID, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stats := make([]TeamStats, 0)
	for rows.Next() {
		var s TeamStats
		if err := rows.Scan(
			&s.TeamID, &s.TeamName, &s.AssignedLeads, &s.ActiveCounselors,
			&s.ConvertedLeads, &s.ConversionRate,
		); err != nil {
			return nil, err
		}
		stats = append(stats, s)
	}
	return stats, rows.Err()
}
