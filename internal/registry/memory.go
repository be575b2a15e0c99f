package registry

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/yungbote/pulsenet-backend/internal/domain"
)

type MemoryBackend struct {
	mu   sync.Mutex
	regs map[string]domain.UserRegistration
}

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{regs: map[string]domain.UserRegistration{}}
}

func (m *MemoryBackend) LoadAll(ctx context.Context) ([]domain.UserRegistration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.UserRegistration, 0, len(m.regs))
	for _, reg := range m.regs {
		out = append(out, reg)
	}
	return out, nil
}

func (m *MemoryBackend) Insert(ctx context.Context, reg domain.UserRegistration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.regs[reg.RegistrationID]; ok {
		return fmt.Errorf("registration %s exists", reg.RegistrationID)
	}
	m.regs[reg.RegistrationID] = reg
	return nil
}

func (m *MemoryBackend) Touch(ctx context.Context, registrationID string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	reg, ok := m.regs[registrationID]
	if !ok {
		return &domain.NotFoundError{Resource: "registration", Key: registrationID}
	}
	reg.LastActivity = at
	m.regs[registrationID] = reg
	return nil
}
