package services

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/yungbote/pulsenet-backend/internal/clients/ledger"
	"github.com/yungbote/pulsenet-backend/internal/clients/redis"
	"github.com/yungbote/pulsenet-backend/internal/commitment"
	"github.com/yungbote/pulsenet-backend/internal/domain"
	"github.com/yungbote/pulsenet-backend/internal/observability"
	"github.com/yungbote/pulsenet-backend/internal/platform/logger"
	"github.com/yungbote/pulsenet-backend/internal/store"
	"github.com/yungbote/pulsenet-backend/internal/validation"
)

type ProofInfo struct {
	Verified bool   `json:"verified"`
	Proof    string `json:"proof"`
	// VerificationTime is the proof generation time in milliseconds.
	VerificationTime int64 `json:"verificationTime"`
}

// ChainResult is the relay outcome reported to the caller.
type ChainResult struct {
	Success bool `json:"success"`
	*ledger.Receipt
	Error string `json:"error,omitempty"`
}

type UserSnapshot struct {
	Address         string `json:"address"`
	SubmissionCount int    `json:"submissionCount"`
	TokenBalance    string `json:"tokenBalance"`
}

type SubmitResult struct {
	ID         string       `json:"id"`
	ZKProof    ProofInfo    `json:"zkProof"`
	Blockchain ChainResult  `json:"blockchain"`
	User       UserSnapshot `json:"user"`
	DataHash   string       `json:"dataHash"`
	Timestamp  time.Time    `json:"timestamp"`
	Degraded   bool         `json:"degraded"`
	Warnings   []string     `json:"warnings,omitempty"`
}

type VerifyResult struct {
	Valid      bool      `json:"valid"`
	Proof      string    `json:"proof"`
	DataHash   string    `json:"dataHash"`
	VerifiedAt time.Time `json:"verifiedAt"`
}

type SubmissionService interface {
	// Submit validates, commits, stores and relays one submission. Only
	// validation and storage failures are returned; relay failures degrade
	// the result.
	Submit(ctx context.Context, in validation.SubmissionInput) (*SubmitResult, error)
	VerifyProof(ctx context.Context, proof, dataHash string) (*VerifyResult, error)
}

type SubmissionConfig struct {
	RelayTimeout time.Duration
}

type submissionService struct {
	log     *logger.Logger
	scheme  commitment.Scheme
	store   *store.Store
	relay   ledger.Relay
	cache   redis.StatsCache
	metrics *observability.Metrics
	cfg     SubmissionConfig
	now     func() time.Time
}

func NewSubmissionService(
	baseLog *logger.Logger,
	scheme commitment.Scheme,
	st *store.Store,
	relay ledger.Relay,
	cache redis.StatsCache,
	metrics *observability.Metrics,
	cfg SubmissionConfig,
) SubmissionService {
	if cfg.RelayTimeout <= 0 {
		cfg.RelayTimeout = 30 * time.Second
	}
	if cache == nil {
		cache = redis.NopStatsCache{}
	}
	return &submissionService{
		log:     baseLog.With("service", "SubmissionService"),
		scheme:  scheme,
		store:   st,
		relay:   relay,
		cache:   cache,
		metrics: metrics,
		cfg:     cfg,
		now:     time.Now,
	}
}

func (s *submissionService) Submit(ctx context.Context, in validation.SubmissionInput) (*SubmitResult, error) {
	ctx, span := observability.Tracer().Start(ctx, "submission.submit")
	defer span.End()

	sub, err := validation.Submission(in, s.now())
	if err != nil {
		s.metrics.ObserveSubmission("invalid")
		span.SetStatus(codes.Error, "validation")
		return nil, err
	}
	span.SetAttributes(attribute.Int64("submission.timestamp", sub.Timestamp))

	c, err := s.scheme.Generate(sub)
	if err != nil {
		s.metrics.ObserveSubmission("invalid")
		span.RecordError(err)
		return nil, err
	}

	id, err := s.store.Append(ctx, sub, c)
	if err != nil {
		s.metrics.ObserveSubmission("failed")
		span.RecordError(err)
		span.SetStatus(codes.Error, "storage")
		s.log.Error("submission not stored", "error", err)
		return nil, err
	}
	s.metrics.SetStoreSize(s.store.Stats().TotalSubmissions)
	if err := s.cache.Invalidate(ctx); err != nil {
		s.log.Warn("stats cache invalidate failed", "error", err)
	}

	res := &SubmitResult{
		ID: id,
		ZKProof: ProofInfo{
			Verified:         true,
			Proof:            c.Proof,
			VerificationTime: c.Duration.Milliseconds(),
		},
		DataHash:  c.DataHash,
		Timestamp: c.GeneratedAt.UTC(),
	}

	relayCtx, cancel := context.WithTimeout(ctx, s.cfg.RelayTimeout)
	receipt, err := s.relay.SubmitHash(relayCtx, c.DataHash)
	cancel()
	s.metrics.ObserveRelay("submitData", err)
	if err != nil {
		res.degrade("blockchain submission failed: " + err.Error())
		res.Blockchain = ChainResult{Success: false, Error: err.Error()}
		s.log.Warn("blockchain submission failed, stored off-chain only", "error", err, "submission_id", id)
	} else {
		res.Blockchain = ChainResult{Success: true, Receipt: &receipt}
	}

	balanceCtx, cancelBalance := context.WithTimeout(ctx, s.cfg.RelayTimeout)
	balance, err := s.relay.TokenBalance(balanceCtx, sub.UserAddress)
	cancelBalance()
	s.metrics.ObserveRelay("balanceOf", err)
	if err != nil {
		res.degrade("token balance unavailable: " + err.Error())
		s.log.Warn("token balance lookup failed", "error", err)
		balance = "0"
	}
	res.User = UserSnapshot{
		Address:         sub.UserAddress,
		SubmissionCount: s.store.CountByUser(sub.UserAddress),
		TokenBalance:    balance,
	}

	if res.Degraded {
		s.metrics.ObserveSubmission("degraded")
		span.SetAttributes(attribute.Bool("submission.degraded", true))
	} else {
		s.metrics.ObserveSubmission("accepted")
	}
	s.log.Info("health data submitted", "submission_id", id, "degraded", res.Degraded)
	return res, nil
}

func (r *SubmitResult) degrade(warning string) {
	r.Degraded = true
	r.Warnings = append(r.Warnings, warning)
}

func (s *submissionService) VerifyProof(ctx context.Context, proof, dataHash string) (*VerifyResult, error) {
	if proof == "" || dataHash == "" {
		return nil, domain.NewValidationError("", "Missing proof or dataHash")
	}
	return &VerifyResult{
		Valid:      s.scheme.Verify(proof, dataHash),
		Proof:      proof,
		DataHash:   dataHash,
		VerifiedAt: s.now().UTC(),
	}, nil
}
