// Package registry binds wallets to device fingerprints one-to-one.
package registry

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/pulsenet-backend/internal/domain"
	"github.com/yungbote/pulsenet-backend/internal/platform/logger"
	"github.com/yungbote/pulsenet-backend/internal/validation"
)

// Backend persists registrations. Writes happen before the in-memory indices
// change.
type Backend interface {
	LoadAll(ctx context.Context) ([]domain.UserRegistration, error)
	Insert(ctx context.Context, reg domain.UserRegistration) error
	Touch(ctx context.Context, registrationID string, at time.Time) error
}

// Projector mirrors new bindings into a secondary system. Failures are logged
// and never undo a registration.
type Projector interface {
	ProjectBinding(ctx context.Context, reg domain.UserRegistration) error
}

type Summary struct {
	TotalUsers    int `json:"totalUsers"`
	TotalDevices  int `json:"totalDevices"`
	VerifiedUsers int `json:"verifiedUsers"`
}

type Registry struct {
	mu       sync.RWMutex
	byWallet map[string]*domain.UserRegistration
	byDevice map[string]string

	backend    Backend
	projectors []Projector
	log        *logger.Logger

	now   func() time.Time
	newID func() string
}

func Open(ctx context.Context, backend Backend, log *logger.Logger, projectors ...Projector) (*Registry, error) {
	if log == nil {
		log = logger.Nop()
	}
	r := &Registry{
		byWallet:   map[string]*domain.UserRegistration{},
		byDevice:   map[string]string{},
		backend:    backend,
		projectors: projectors,
		log:        log.With("service", "RegistrationRegistry"),
		now:        time.Now,
		newID:      func() string { return uuid.New().String() },
	}
	regs, err := backend.LoadAll(ctx)
	if err != nil {
		return nil, &domain.StorageError{Op: "load registrations", Err: err}
	}
	for i := range regs {
		reg := regs[i]
		key := domain.WalletKey(reg.WalletAddress)
		r.byWallet[key] = &reg
		r.byDevice[reg.DeviceFingerprint] = key
	}
	r.log.Info("registry loaded", "registrations", len(regs))
	return r, nil
}

// Register binds wallet to fingerprint. Re-registering the same pair returns
// the existing record with created=false. A zero at means now.
func (r *Registry) Register(ctx context.Context, wallet, fingerprint string, at time.Time) (domain.UserRegistration, bool, error) {
	if err := validation.Registration(wallet, fingerprint); err != nil {
		return domain.UserRegistration{}, false, err
	}
	reg, created, err := r.register(ctx, wallet, fingerprint, at)
	if err != nil || !created {
		return reg, created, err
	}
	for _, p := range r.projectors {
		if perr := p.ProjectBinding(ctx, reg); perr != nil {
			r.log.Warn("binding projection failed", "error", perr, "registration_id", reg.RegistrationID)
		}
	}
	r.log.Info("user registered", "registration_id", reg.RegistrationID, "device_fingerprint", fingerprint)
	return reg, true, nil
}

func (r *Registry) register(ctx context.Context, wallet, fingerprint string, at time.Time) (domain.UserRegistration, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := domain.WalletKey(wallet)
	if owner, ok := r.byDevice[fingerprint]; ok && owner != key {
		return domain.UserRegistration{}, false, &domain.ConflictError{Reason: domain.ReasonDeviceAlreadyRegistered}
	}
	if existing, ok := r.byWallet[key]; ok {
		if existing.DeviceFingerprint != fingerprint {
			return domain.UserRegistration{}, false, &domain.ConflictError{Reason: domain.ReasonWalletAlreadyRegistered}
		}
		return *existing, false, nil
	}

	now := r.now().UTC()
	if at.IsZero() {
		at = now
	}
	at = at.UTC()
	reg := domain.UserRegistration{
		RegistrationID:    r.newID(),
		WalletAddress:     wallet,
		WalletKey:         key,
		DeviceFingerprint: fingerprint,
		RegisteredAt:      at,
		Verified:          true,
		LastActivity:      now,
	}
	if err := r.backend.Insert(ctx, reg); err != nil {
		return domain.UserRegistration{}, false, &domain.StorageError{Op: "insert registration", Err: err}
	}
	r.byWallet[key] = &reg
	r.byDevice[fingerprint] = key
	return reg, true, nil
}

// Verify checks that wallet is bound to fingerprint and records the activity.
func (r *Registry) Verify(ctx context.Context, wallet, fingerprint string) (domain.UserRegistration, error) {
	if err := validation.Address(wallet); err != nil {
		return domain.UserRegistration{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	reg, ok := r.byWallet[domain.WalletKey(wallet)]
	if !ok {
		return domain.UserRegistration{}, &domain.NotFoundError{Resource: "registration", Key: wallet}
	}
	if reg.DeviceFingerprint != fingerprint {
		return domain.UserRegistration{}, &domain.ConflictError{Reason: domain.ReasonFingerprintMismatch}
	}
	at := r.now().UTC()
	if err := r.backend.Touch(ctx, reg.RegistrationID, at); err != nil {
		return domain.UserRegistration{}, &domain.StorageError{Op: "touch registration", Err: err}
	}
	reg.LastActivity = at
	return *reg, nil
}

func (r *Registry) Get(wallet string) (domain.UserRegistration, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	reg, ok := r.byWallet[domain.WalletKey(wallet)]
	if !ok {
		return domain.UserRegistration{}, false
	}
	return *reg, true
}

func (r *Registry) Summary() Summary {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s := Summary{TotalUsers: len(r.byWallet), TotalDevices: len(r.byDevice)}
	for _, reg := range r.byWallet {
		if reg.Verified {
			s.VerifiedUsers++
		}
	}
	return s
}
