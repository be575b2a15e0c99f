package identity

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/yungbote/pulsenet-backend/internal/domain"
	"github.com/yungbote/pulsenet-backend/internal/platform/logger"
)

// RegistrationBackend is the SQL-backed registry.Backend.
type RegistrationBackend struct {
	repo RegistrationRepo
}

func NewRegistrationBackend(db *gorm.DB, baseLog *logger.Logger) *RegistrationBackend {
	return &RegistrationBackend{repo: NewRegistrationRepo(db, baseLog)}
}

func (b *RegistrationBackend) LoadAll(ctx context.Context) ([]domain.UserRegistration, error) {
	rows, err := b.repo.ListAll(ctx, nil)
	if err != nil {
		return nil, err
	}
	out := make([]domain.UserRegistration, 0, len(rows))
	for _, r := range rows {
		out = append(out, *r)
	}
	return out, nil
}

func (b *RegistrationBackend) Insert(ctx context.Context, reg domain.UserRegistration) error {
	return b.repo.Create(ctx, nil, &reg)
}

func (b *RegistrationBackend) Touch(ctx context.Context, registrationID string, at time.Time) error {
	return b.repo.UpdateLastActivity(ctx, nil, registrationID, at)
}
