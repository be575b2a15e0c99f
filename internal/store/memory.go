package store

import (
	"context"
	"sync"

	"github.com/yungbote/pulsenet-backend/internal/domain"
)

// MemoryLog keeps the log in process memory. Nothing survives a restart.
type MemoryLog struct {
	mu      sync.Mutex
	records []domain.HealthSubmission
	stats   *domain.PlatformStats
}

func NewMemoryLog() *MemoryLog {
	return &MemoryLog{}
}

func (m *MemoryLog) Append(ctx context.Context, rec domain.HealthSubmission, stats domain.PlatformStats) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = append(m.records, rec)
	st := stats
	m.stats = &st
	return nil
}

func (m *MemoryLog) LoadAll(ctx context.Context) ([]domain.HealthSubmission, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.HealthSubmission(nil), m.records...), nil
}

func (m *MemoryLog) LoadStats(ctx context.Context) (*domain.PlatformStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.stats == nil {
		return nil, nil
	}
	st := *m.stats
	return &st, nil
}
