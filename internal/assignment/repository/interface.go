package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// RuleReader provides read access to routing inputs.
type RuleReader interface {
	GetLeadRouting(ctx context.Context, leadID uuid.UUID) (LeadRouting, error)
	GetActiveRules(ctx context.Context, orgID uuid.UUID) ([]Rule, error)
}

// CounselorReader provides read access to counselor pools and teams.
type CounselorReader interface {
	GetEligibleCounselors(ctx context.Context, teamID uuid.UUID) ([]Counselor, error)
	GetTeamStrategy(ctx context.Context, teamID uuid.UUID) (TeamStrategy, error)
	GetCounselorTeam(ctx context.Context, counselorID uuid.UUID) (CounselorTeam, error)
}

// OffsetIncrementer advances a team's round-robin counter atomically relative
// to concurrent assignment attempts for the same team.
type OffsetIncrementer interface {
	IncrementRoundRobinOffset(ctx context.Context, teamID uuid.UUID, poolSize int) (int, error)
}

// AssignmentWriter persists assignments and their audit trail.
type AssignmentWriter interface {
	Assign(ctx context.Context, params AssignParams) (time.Time, error)
}

// LogReader provides read access to the append-only assignment log.
type LogReader interface {
	ListLogs(ctx context.Context, leadID uuid.UUID, limit, offset int) ([]LogEntry, int, error)
}

// StatsReader provides the thin reporting queries.
type StatsReader interface {
	GetCounselorWorkload(ctx context.Context, counselorID uuid.UUID, since time.Time) (Workload, error)
	GetAssignmentStats(ctx context.Context, orgID uuid.UUID, start, end time.Time) ([]TeamStats, error)
	GetWorkloadOverview(ctx context.Context, orgID uuid.UUID) ([]TeamOverview, error)
}

// Store is the full persistence surface the assignment engine consumes.
type Store interface {
	RuleReader
	CounselorReader
	OffsetIncrementer
	AssignmentWriter
	LogReader
	StatsReader
}
