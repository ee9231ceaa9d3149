package service

import (
	"context"
	"testing"

	"admissions_crm_backend/internal/assignment/repository"

	"github.com/google/uuid"
)

type fakeOffsets struct {
	next     int
	err      error
	lastSize int
}

func (f *fakeOffsets) IncrementRoundRobinOffset(_ context.Context, _ uuid.UUID, poolSize int) (int, error) {
	f.lastSize = poolSize
	return f.next, f.err
}

func counselorPool(n int) []repository.Counselor {
	pool := make([]repository.Counselor, n)
	for i := range pool {
		pool[i] = repository.Counselor{ID: uuid.New(), FirstName: string(rune('a' + i))}
	}
	return pool
}

func TestSelect_RoundRobinUsesPersistedCounter(t *testing.T) {
	offsets := &fakeOffsets{next: 2}
	s := &Selector{offsets: offsets}
	pool := counselorPool(4)

	selected, err := s.Select(context.Background(), uuid.New(), StrategyRoundRobin, pool)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if selected.ID != pool[2].ID {
		t.Fatalf("expected counselor at index 2")
	}
	if offsets.lastSize != 4 {
		t.Fatalf("expected counter advanced modulo pool size 4, got %d", offsets.lastSize)
	}
}

func TestSelect_RoundRobinGuardsStaleIndex(t *testing.T) {
	// The persisted counter can exceed the pool size when the pool shrinks
	// between assignments.
	s := &Selector{offsets: &fakeOffsets{next: 9}}
	pool := counselorPool(3)

	selected, err := s.Select(context.Background(), uuid.New(), StrategyRoundRobin, pool)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if selected.ID != pool[0].ID {
		t.Fatalf("expected out-of-range index to fall back to first counselor")
	}
}

func TestSelect_LeastLoadPrefersFirstEncounteredMinimum(t *testing.T) {
	s := &Selector{}
	pool := counselorPool(3)
	pool[0].CurrentDailyLoad = 5
	pool[1].CurrentDailyLoad = 2
	pool[2].CurrentDailyLoad = 2

	selected, err := s.Select(context.Background(), uuid.New(), StrategyLeastLoad, pool)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if selected.ID != pool[1].ID {
		t.Fatalf("expected first counselor with minimum load")
	}
}

func TestSelect_WeightedRespectsWeightsAndHeadroom(t *testing.T) {
	capacity := 10
	weight := 3.0
	pool := counselorPool(2)
	// Counselor 0: weight 3, headroom 8 => 24. Counselor 1: defaults => 1.
	pool[0].WorkloadWeight = &weight
	pool[0].CapacityDaily = &capacity
	pool[0].CurrentDailyLoad = 2

	s := &Selector{randF: func() float64 { return 0.9 }}
	selected, err := s.Select(context.Background(), uuid.New(), StrategyWeighted, pool)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Draw 0.9 * 25 = 22.5 lands inside counselor 0's 24-wide band.
	if selected.ID != pool[0].ID {
		t.Fatalf("expected draw to land on the heavier counselor")
	}

	s.randF = func() float64 { return 0.99 }
	selected, err = s.Select(context.Background(), uuid.New(), StrategyWeighted, pool)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Draw 0.99 * 25 = 24.75 lands past counselor 0's band.
	if selected.ID != pool[1].ID {
		t.Fatalf("expected high draw to land on the second counselor")
	}
}

func TestSelect_WeightedDefaultsForMissingAttributes(t *testing.T) {
	zero := 0.0
	pool := counselorPool(2)
	// Zero and missing workload weights both fall back to 1.0, and missing
	// capacity yields unit headroom, so the draw splits evenly.
	pool[0].WorkloadWeight = &zero

	s := &Selector{randF: func() float64 { return 0.4 }}
	selected, err := s.Select(context.Background(), uuid.New(), StrategyWeighted, pool)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if selected.ID != pool[0].ID {
		t.Fatalf("expected low draw to select the first counselor")
	}

	s.randF = func() float64 { return 0.6 }
	selected, err = s.Select(context.Background(), uuid.New(), StrategyWeighted, pool)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if selected.ID != pool[1].ID {
		t.Fatalf("expected high draw to select the second counselor")
	}
}

func TestSelect_UnknownStrategyFallsBackToFirst(t *testing.T) {
	s := &Selector{}
	pool := counselorPool(3)

	selected, err := s.Select(context.Background(), uuid.New(), "fill_rate", pool)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if selected.ID != pool[0].ID {
		t.Fatalf("expected unknown strategy to fall back to first counselor")
	}
}
