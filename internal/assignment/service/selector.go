package service

import (
	"context"
	"math/rand"

	"admissions_crm_backend/internal/assignment/repository"

	"github.com/google/uuid"
)

// Load strategies.
const (
	StrategyRoundRobin = "round_robin"
	StrategyLeastLoad  = "least_load"
	StrategyWeighted   = "weighted"
)

// Selector picks one counselor from an eligible pool according to the team's
// load strategy. The random source is injected so weighted selection is
// testable.
type Selector struct {
	offsets repository.OffsetIncrementer
	randF   func() float64
}

// NewSelector creates a selector backed by the persisted round-robin counter.
func NewSelector(offsets repository.OffsetIncrementer) *Selector {
	return &Selector{offsets: offsets, randF: rand.Float64}
}

// Select picks a counselor for the team using the given strategy. The pool
// must be non-empty and ordered deterministically by the caller. An unknown
// strategy falls back to the first counselor.
func (s *Selector) Select(ctx context.Context, teamID uuid.UUID, strategy string, pool []repository.Counselor) (repository.Counselor, error) {
	switch strategy {
	case StrategyRoundRobin:
		return s.selectRoundRobin(ctx, teamID, pool)
	case StrategyLeastLoad:
		return selectLeastLoad(pool), nil
	case StrategyWeighted:
		return s.selectWeighted(pool), nil
	default:
		return pool[0], nil
	}
}

// selectRoundRobin indexes the current pool with the team's atomically
// advanced counter. The pool can shrink or grow between calls, so the index
// is advisory over this snapshot rather than a stable cursor into a fixed
// ring.
func (s *Selector) selectRoundRobin(ctx context.Context, teamID uuid.UUID, pool []repository.Counselor) (repository.Counselor, error) {
	index, err := s.offsets.IncrementRoundRobinOffset(ctx, teamID, len(pool))
	if err != nil {
		return repository.Counselor{}, err
	}
	if index < 0 || index >= len(pool) {
		index = 0
	}
	return pool[index], nil
}

// selectLeastLoad returns the counselor with the smallest current-day load,
// ties resolved by pool order.
func selectLeastLoad(pool []repository.Counselor) repository.Counselor {
	least := pool[0]
	for _, c := range pool[1:] {
		if c.CurrentDailyLoad < least.CurrentDailyLoad {
			least = c
		}
	}
	return least
}

// selectWeighted performs weighted-random selection. Each counselor's weight
// is workload_weight times its remaining daily headroom, floored at 1 so a
// counselor without capacity data still participates. Falls back to the first
// counselor on floating-point edge cases.
func (s *Selector) selectWeighted(pool []repository.Counselor) repository.Counselor {
	weights := make([]float64, len(pool))
	total := 0.0
	for i, c := range pool {
		base := 1.0
		if c.WorkloadWeight != nil && *c.WorkloadWeight > 0 {
			base = *c.WorkloadWeight
		}
		headroom := 1.0
		if c.CapacityDaily != nil {
			if remaining := float64(*c.CapacityDaily - c.CurrentDailyLoad); remaining > 1 {
				headroom = remaining
			}
		}
		weights[i] = base * headroom
		total += weights[i]
	}

	remainder := s.randF() * total
	for i, weight := range weights {
		if weight <= 0 {
			continue
		}
		remainder -= weight
		if remainder <= 0 {
			return pool[i]
		}
	}

	return pool[0]
}
