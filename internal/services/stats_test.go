package services

import (
	"context"
	"testing"
	"time"

	"github.com/yungbote/pulsenet-backend/internal/clients/ledger"
	"github.com/yungbote/pulsenet-backend/internal/commitment"
	"github.com/yungbote/pulsenet-backend/internal/platform/logger"
)

func TestPlatformStatsUsesCacheUntilStoreChanges(t *testing.T) {
	t.Parallel()

	st := newStore(t)
	relay := &fakeRelay{stats: ledger.ChainStats{TotalSubmissions: 4, UniqueContributors: 2}}
	cache := &memCache{}
	stats := NewStatsService(logger.Nop(), st, relay, cache, nil, time.Second)
	ctx := context.Background()

	first, err := stats.PlatformStats(ctx)
	if err != nil {
		t.Fatalf("PlatformStats: %v", err)
	}
	if first.Platform.TotalSubmissions != 0 || first.Platform.AverageMetrics != nil {
		t.Fatalf("unexpected empty platform view: %+v", first.Platform)
	}
	if first.Platform.Blockchain.TotalSubmissions != 4 {
		t.Fatalf("unexpected chain stats: %+v", first.Platform.Blockchain)
	}
	if first.Metadata.DataSource != "anonymized_aggregation" || first.Metadata.PrivacyLevel != "high" {
		t.Fatalf("unexpected metadata: %+v", first.Metadata)
	}

	if _, err := stats.PlatformStats(ctx); err != nil {
		t.Fatalf("PlatformStats: %v", err)
	}
	if relay.statCalls != 1 {
		t.Fatalf("second read should hit the cache: relay calls=%d", relay.statCalls)
	}

	// A write the cache did not see must not be served stale.
	sub := NewSubmissionService(logger.Nop(), commitment.NewSimulatedScheme(), st, relay, nil, nil, SubmissionConfig{})
	if _, err := sub.Submit(ctx, input(alice, 70)); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	third, err := stats.PlatformStats(ctx)
	if err != nil {
		t.Fatalf("PlatformStats: %v", err)
	}
	if third.Platform.TotalSubmissions != 1 {
		t.Fatalf("stale stats served: got=%d want=1", third.Platform.TotalSubmissions)
	}
	if relay.statCalls != 2 {
		t.Fatalf("expected a fresh assembly: relay calls=%d", relay.statCalls)
	}
}

func TestPlatformStatsRelayFailureWarnsAndSkipsCache(t *testing.T) {
	t.Parallel()

	cache := &memCache{}
	stats := NewStatsService(logger.Nop(), newStore(t), &fakeRelay{fail: true}, cache, nil, time.Second)
	res, err := stats.PlatformStats(context.Background())
	if err != nil {
		t.Fatalf("PlatformStats: %v", err)
	}
	if len(res.Warnings) == 0 {
		t.Fatalf("expected warnings")
	}
	if res.Platform.Blockchain != (ledger.ChainStats{}) {
		t.Fatalf("expected zero chain stats: %+v", res.Platform.Blockchain)
	}
	if cache.raw != nil {
		t.Fatalf("degraded result must not be cached")
	}
}

func TestUserStats(t *testing.T) {
	t.Parallel()

	st := newStore(t)
	relay := &fakeRelay{count: 3, balance: "30.0"}
	sub := NewSubmissionService(logger.Nop(), commitment.NewSimulatedScheme(), st, relay, nil, nil, SubmissionConfig{})
	ctx := context.Background()
	for i := 0; i < 2; i++ {
		if _, err := sub.Submit(ctx, input(alice, 70)); err != nil {
			t.Fatalf("Submit: %v", err)
		}
	}

	stats := NewStatsService(logger.Nop(), st, relay, nil, nil, time.Second)
	res, err := stats.UserStats(ctx, alice)
	if err != nil {
		t.Fatalf("UserStats: %v", err)
	}
	if res.Submissions.OffChain != 2 || res.Submissions.OnChain != 3 {
		t.Fatalf("unexpected counts: %+v", res.Submissions)
	}
	if res.Rewards.TokenBalance != "30.0" || res.Rewards.TotalEarned != "30" {
		t.Fatalf("unexpected rewards: %+v", res.Rewards)
	}

	if _, err := stats.UserStats(ctx, "0x123"); err == nil {
		t.Fatalf("malformed address should fail")
	}

	relay.fail = true
	res, err = stats.UserStats(ctx, alice)
	if err != nil {
		t.Fatalf("relay failure must not fail UserStats: %v", err)
	}
	if res.Submissions.OnChain != 0 || res.Rewards.TokenBalance != "0" || len(res.Warnings) != 2 {
		t.Fatalf("unexpected degraded user stats: %+v", res)
	}
}
