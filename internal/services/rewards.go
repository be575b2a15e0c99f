package services

import (
	"context"
	"strconv"
	"time"

	"github.com/yungbote/pulsenet-backend/internal/aggregation"
	"github.com/yungbote/pulsenet-backend/internal/clients/ledger"
	"github.com/yungbote/pulsenet-backend/internal/domain"
	"github.com/yungbote/pulsenet-backend/internal/observability"
	"github.com/yungbote/pulsenet-backend/internal/platform/logger"
	"github.com/yungbote/pulsenet-backend/internal/store"
	"github.com/yungbote/pulsenet-backend/internal/validation"
)

const DefaultLeaderboardSize = 5

type BalanceResult struct {
	Address         string    `json:"address"`
	Balance         string    `json:"balance"`
	SubmissionCount int64     `json:"submissionCount"`
	TotalEarned     string    `json:"totalEarned"`
	LastUpdated     time.Time `json:"lastUpdated"`
	Warnings        []string  `json:"warnings,omitempty"`
}

type ManualRewardResult struct {
	UserAddress string         `json:"userAddress"`
	Amount      string         `json:"amount"`
	Transaction ledger.Receipt `json:"transaction"`
	Timestamp   time.Time      `json:"timestamp"`
}

type LeaderboardResult struct {
	Leaderboard             []aggregation.LeaderboardEntry `json:"leaderboard"`
	TotalContributors       int64                          `json:"totalContributors"`
	TotalRewardsDistributed string                         `json:"totalRewardsDistributed"`
	LastUpdated             time.Time                      `json:"lastUpdated"`
}

type RewardsService interface {
	Balance(ctx context.Context, addr string) (*BalanceResult, error)
	// ManualReward mints amount whole tokens to addr through the relay.
	ManualReward(ctx context.Context, addr, amount string) (*ManualRewardResult, error)
	Leaderboard(ctx context.Context, limit int) (*LeaderboardResult, error)
}

type rewardsService struct {
	log     *logger.Logger
	store   *store.Store
	relay   ledger.Relay
	metrics *observability.Metrics
	timeout time.Duration
	now     func() time.Time
}

func NewRewardsService(baseLog *logger.Logger, st *store.Store, relay ledger.Relay, metrics *observability.Metrics, relayTimeout time.Duration) RewardsService {
	if relayTimeout <= 0 {
		relayTimeout = 30 * time.Second
	}
	return &rewardsService{
		log:     baseLog.With("service", "RewardsService"),
		store:   st,
		relay:   relay,
		metrics: metrics,
		timeout: relayTimeout,
		now:     time.Now,
	}
}

func (s *rewardsService) Balance(ctx context.Context, addr string) (*BalanceResult, error) {
	if err := validation.Address(addr); err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	res := &BalanceResult{Address: addr, LastUpdated: s.now().UTC()}

	balance, err := s.relay.TokenBalance(ctx, addr)
	s.metrics.ObserveRelay("balanceOf", err)
	if err != nil {
		s.log.Warn("token balance unavailable", "error", err)
		res.Warnings = append(res.Warnings, "token balance unavailable: "+err.Error())
		balance = "0"
	}
	count, err := s.relay.SubmissionCount(ctx, addr)
	s.metrics.ObserveRelay("getSubmissionCount", err)
	if err != nil {
		s.log.Warn("on-chain submission count unavailable", "error", err)
		res.Warnings = append(res.Warnings, "on-chain submission count unavailable: "+err.Error())
		count = 0
	}

	res.Balance = balance
	res.SubmissionCount = count
	res.TotalEarned = strconv.FormatInt(count*ledger.RewardPerSubmission, 10)
	return res, nil
}

func (s *rewardsService) ManualReward(ctx context.Context, addr, amount string) (*ManualRewardResult, error) {
	if err := validation.Address(addr); err != nil {
		return nil, err
	}
	wei, err := ledger.ParseEther(amount)
	if err != nil || wei.Sign() <= 0 {
		return nil, domain.NewValidationError("amount", "Invalid reward amount")
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	receipt, err := s.relay.RewardUser(ctx, addr, wei)
	s.metrics.ObserveRelay("rewardUser", err)
	if err != nil {
		s.log.Error("manual reward failed", "error", err)
		return nil, err
	}
	s.log.Info("manual reward processed", "amount", amount, "tx_hash", receipt.TransactionHash)
	return &ManualRewardResult{
		UserAddress: addr,
		Amount:      amount,
		Transaction: receipt,
		Timestamp:   s.now().UTC(),
	}, nil
}

// Leaderboard ranks contributors by off-chain submissions. Addresses are
// withheld.
func (s *rewardsService) Leaderboard(ctx context.Context, limit int) (*LeaderboardResult, error) {
	if limit <= 0 {
		limit = DefaultLeaderboardSize
	}
	records := s.store.Records()
	stats := s.store.Stats()
	board := aggregation.Leaderboard(records, limit, ledger.RewardPerSubmission)
	return &LeaderboardResult{
		Leaderboard:             board,
		TotalContributors:       stats.UniqueContributors,
		TotalRewardsDistributed: strconv.FormatInt(stats.TotalSubmissions*ledger.RewardPerSubmission, 10),
		LastUpdated:             stats.LastUpdated,
	}, nil
}
