package services

import (
	"context"
	"errors"
	"time"

	"github.com/yungbote/pulsenet-backend/internal/domain"
	"github.com/yungbote/pulsenet-backend/internal/observability"
	"github.com/yungbote/pulsenet-backend/internal/platform/logger"
	"github.com/yungbote/pulsenet-backend/internal/registry"
	"github.com/yungbote/pulsenet-backend/internal/validation"
)

type RegistrationSummary struct {
	registry.Summary
	Timestamp time.Time `json:"timestamp"`
}

type RegistrationService interface {
	// Register returns created=false when the same pair was already bound. A nil
	// or zero timestamp (ms) means now.
	Register(ctx context.Context, wallet, fingerprint string, timestamp *float64) (domain.UserRegistration, bool, error)
	Verify(ctx context.Context, wallet, fingerprint string) (domain.UserRegistration, error)
	Get(ctx context.Context, wallet string) (domain.UserRegistration, error)
	Summary(ctx context.Context) RegistrationSummary
}

type registrationService struct {
	log      *logger.Logger
	registry *registry.Registry
	metrics  *observability.Metrics
	now      func() time.Time
}

func NewRegistrationService(baseLog *logger.Logger, reg *registry.Registry, metrics *observability.Metrics) RegistrationService {
	return &registrationService{
		log:      baseLog.With("service", "RegistrationService"),
		registry: reg,
		metrics:  metrics,
		now:      time.Now,
	}
}

func (s *registrationService) Register(ctx context.Context, wallet, fingerprint string, timestamp *float64) (domain.UserRegistration, bool, error) {
	ctx, span := observability.Tracer().Start(ctx, "registration.register")
	defer span.End()

	ms, err := validation.Timestamp(timestamp, s.now())
	if err != nil {
		s.metrics.ObserveRegistration("register", "invalid")
		return domain.UserRegistration{}, false, err
	}
	reg, created, err := s.registry.Register(ctx, wallet, fingerprint, time.UnixMilli(ms))
	s.metrics.ObserveRegistration("register", registrationOutcome(err, created))
	if err != nil {
		span.RecordError(err)
		return domain.UserRegistration{}, false, err
	}
	return reg, created, nil
}

func (s *registrationService) Verify(ctx context.Context, wallet, fingerprint string) (domain.UserRegistration, error) {
	reg, err := s.registry.Verify(ctx, wallet, fingerprint)
	s.metrics.ObserveRegistration("verify", registrationOutcome(err, false))
	if err != nil {
		return domain.UserRegistration{}, err
	}
	s.log.Info("user verified", "registration_id", reg.RegistrationID)
	return reg, nil
}

func (s *registrationService) Get(ctx context.Context, wallet string) (domain.UserRegistration, error) {
	if err := validation.Address(wallet); err != nil {
		return domain.UserRegistration{}, err
	}
	reg, ok := s.registry.Get(wallet)
	if !ok {
		return domain.UserRegistration{}, &domain.NotFoundError{Resource: "registration", Key: wallet}
	}
	return reg, nil
}

func (s *registrationService) Summary(ctx context.Context) RegistrationSummary {
	return RegistrationSummary{Summary: s.registry.Summary(), Timestamp: s.now().UTC()}
}

func registrationOutcome(err error, created bool) string {
	var (
		ve *domain.ValidationError
		ce *domain.ConflictError
		ne *domain.NotFoundError
	)
	switch {
	case err == nil && created:
		return "created"
	case err == nil:
		return "ok"
	case errors.As(err, &ve):
		return "invalid"
	case errors.As(err, &ce):
		return ce.Reason
	case errors.As(err, &ne):
		return "not_found"
	default:
		return "error"
	}
}
