package service

import (
	"context"
	"testing"
	"time"

	"admissions_crm_backend/internal/assignment/repository"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestStatsCache_RoundTrip(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	cache := NewStatsCache(rdb, time.Minute)
	ctx := context.Background()

	var missed repository.Workload
	if cache.Get(ctx, "assignment:workload:x:7", &missed) {
		t.Fatalf("expected miss on empty cache")
	}

	stored := repository.Workload{TotalAssigned: 12, TodayAssigned: 3, PeriodAssigned: 7}
	cache.Set(ctx, "assignment:workload:x:7", stored)

	var got repository.Workload
	if !cache.Get(ctx, "assignment:workload:x:7", &got) {
		t.Fatalf("expected hit after set")
	}
	if got != stored {
		t.Fatalf("expected %+v, got %+v", stored, got)
	}
}

func TestStatsCache_ExpiryAndInvalidate(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	cache := NewStatsCache(rdb, time.Minute)
	ctx := context.Background()

	cache.Set(ctx, "k", repository.Workload{TotalAssigned: 1})

	mr.FastForward(2 * time.Minute)
	var expired repository.Workload
	if cache.Get(ctx, "k", &expired) {
		t.Fatalf("expected miss after TTL expiry")
	}

	cache.Set(ctx, "k", repository.Workload{TotalAssigned: 2})
	cache.Invalidate(ctx, "k")
	if cache.Get(ctx, "k", &expired) {
		t.Fatalf("expected miss after invalidation")
	}
}

func TestStatsCache_NilClientDegradesToMiss(t *testing.T) {
	var cache *StatsCache
	ctx := context.Background()

	cache.Set(ctx, "k", repository.Workload{})
	var dest repository.Workload
	if cache.Get(ctx, "k", &dest) {
		t.Fatalf("expected nil cache to miss")
	}

	disabled := NewStatsCache(nil, 0)
	disabled.Set(ctx, "k", repository.Workload{})
	if disabled.Get(ctx, "k", &dest) {
		t.Fatalf("expected cache without redis to miss")
	}
}
