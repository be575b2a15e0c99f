package services

import (
	"context"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/yungbote/pulsenet-backend/internal/aggregation"
	"github.com/yungbote/pulsenet-backend/internal/clients/ledger"
	"github.com/yungbote/pulsenet-backend/internal/clients/redis"
	"github.com/yungbote/pulsenet-backend/internal/observability"
	"github.com/yungbote/pulsenet-backend/internal/platform/logger"
	"github.com/yungbote/pulsenet-backend/internal/store"
	"github.com/yungbote/pulsenet-backend/internal/validation"
)

type PlatformView struct {
	aggregation.Snapshot
	Blockchain ledger.ChainStats `json:"blockchain"`
}

type StatsMetadata struct {
	DataSource   string    `json:"dataSource"`
	PrivacyLevel string    `json:"privacyLevel"`
	LastUpdated  time.Time `json:"lastUpdated"`
}

type StatsResult struct {
	Platform PlatformView  `json:"platform"`
	Metadata StatsMetadata `json:"metadata"`
	Warnings []string      `json:"warnings,omitempty"`
}

type SubmissionCounts struct {
	OffChain int   `json:"offChain"`
	OnChain  int64 `json:"onChain"`
}

type UserRewards struct {
	TokenBalance string `json:"tokenBalance"`
	TotalEarned  string `json:"totalEarned"`
}

type UserStats struct {
	UserAddress string           `json:"userAddress"`
	Submissions SubmissionCounts `json:"submissions"`
	Rewards     UserRewards      `json:"rewards"`
	LastUpdated time.Time        `json:"lastUpdated"`
	Warnings    []string         `json:"warnings,omitempty"`
}

type StatsService interface {
	PlatformStats(ctx context.Context) (*StatsResult, error)
	UserStats(ctx context.Context, addr string) (*UserStats, error)
}

type statsService struct {
	log     *logger.Logger
	store   *store.Store
	relay   ledger.Relay
	cache   redis.StatsCache
	metrics *observability.Metrics
	timeout time.Duration
	group   singleflight.Group
	now     func() time.Time
}

func NewStatsService(
	baseLog *logger.Logger,
	st *store.Store,
	relay ledger.Relay,
	cache redis.StatsCache,
	metrics *observability.Metrics,
	relayTimeout time.Duration,
) StatsService {
	if relayTimeout <= 0 {
		relayTimeout = 30 * time.Second
	}
	if cache == nil {
		cache = redis.NopStatsCache{}
	}
	return &statsService{
		log:     baseLog.With("service", "StatsService"),
		store:   st,
		relay:   relay,
		cache:   cache,
		metrics: metrics,
		timeout: relayTimeout,
		now:     time.Now,
	}
}

// PlatformStats serves a cached result while it still describes the current
// store. Concurrent misses share one assembly.
func (s *statsService) PlatformStats(ctx context.Context) (*StatsResult, error) {
	current := s.store.Stats().TotalSubmissions

	var cached StatsResult
	hit, err := s.cache.Get(ctx, &cached)
	if err != nil {
		s.log.Warn("stats cache read failed", "error", err)
	}
	if hit && cached.Platform.TotalSubmissions == current {
		return &cached, nil
	}

	v, err, _ := s.group.Do("platform", func() (any, error) {
		return s.assemble(ctx)
	})
	if err != nil {
		return nil, err
	}
	res := v.(*StatsResult)
	out := *res
	return &out, nil
}

func (s *statsService) assemble(ctx context.Context) (*StatsResult, error) {
	ctx, span := observability.Tracer().Start(ctx, "stats.assemble")
	defer span.End()

	snap := s.store.Snapshot()
	res := &StatsResult{
		Platform: PlatformView{Snapshot: snap},
		Metadata: StatsMetadata{
			DataSource:   "anonymized_aggregation",
			PrivacyLevel: "high",
			LastUpdated:  snap.LastUpdated,
		},
	}

	relayCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	chain, err := s.relay.PlatformStats(relayCtx)
	s.metrics.ObserveRelay("getPlatformStats", err)
	if err != nil {
		s.log.Warn("blockchain stats unavailable", "error", err)
		res.Warnings = append(res.Warnings, "blockchain stats unavailable: "+err.Error())
		chain = ledger.ChainStats{}
	}
	res.Platform.Blockchain = chain

	if len(res.Warnings) == 0 {
		if err := s.cache.Set(ctx, res); err != nil {
			s.log.Warn("stats cache write failed", "error", err)
		}
	}
	return res, nil
}

func (s *statsService) UserStats(ctx context.Context, addr string) (*UserStats, error) {
	if err := validation.Address(addr); err != nil {
		return nil, err
	}

	res := &UserStats{
		UserAddress: addr,
		Submissions: SubmissionCounts{OffChain: s.store.CountByUser(addr)},
		LastUpdated: s.now().UTC(),
	}

	relayCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var (
		onChain    int64
		balance    string
		countErr   error
		balanceErr error
	)
	g, gctx := errgroup.WithContext(relayCtx)
	g.Go(func() error {
		onChain, countErr = s.relay.SubmissionCount(gctx, addr)
		return nil
	})
	g.Go(func() error {
		balance, balanceErr = s.relay.TokenBalance(gctx, addr)
		return nil
	})
	_ = g.Wait()

	s.metrics.ObserveRelay("getSubmissionCount", countErr)
	s.metrics.ObserveRelay("balanceOf", balanceErr)
	if countErr != nil {
		s.log.Warn("on-chain submission count unavailable", "error", countErr)
		res.Warnings = append(res.Warnings, "on-chain submission count unavailable: "+countErr.Error())
		onChain = 0
	}
	if balanceErr != nil {
		s.log.Warn("token balance unavailable", "error", balanceErr)
		res.Warnings = append(res.Warnings, "token balance unavailable: "+balanceErr.Error())
		balance = "0"
	}

	res.Submissions.OnChain = onChain
	res.Rewards = UserRewards{
		TokenBalance: balance,
		TotalEarned:  strconv.FormatInt(onChain*ledger.RewardPerSubmission, 10),
	}
	return res, nil
}
