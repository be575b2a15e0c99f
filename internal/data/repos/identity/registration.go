package identity

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/yungbote/pulsenet-backend/internal/domain"
	"github.com/yungbote/pulsenet-backend/internal/platform/logger"
)

type RegistrationRepo interface {
	Create(ctx context.Context, tx *gorm.DB, reg *domain.UserRegistration) error
	ListAll(ctx context.Context, tx *gorm.DB) ([]*domain.UserRegistration, error)
	UpdateLastActivity(ctx context.Context, tx *gorm.DB, registrationID string, at time.Time) error
}

type registrationRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewRegistrationRepo(db *gorm.DB, baseLog *logger.Logger) RegistrationRepo {
	repoLog := baseLog.With("repo", "RegistrationRepo")
	return &registrationRepo{db: db, log: repoLog}
}

func (rr *registrationRepo) Create(ctx context.Context, tx *gorm.DB, reg *domain.UserRegistration) error {
	transaction := tx
	if transaction == nil {
		transaction = rr.db
	}
	return transaction.WithContext(ctx).Create(reg).Error
}

func (rr *registrationRepo) ListAll(ctx context.Context, tx *gorm.DB) ([]*domain.UserRegistration, error) {
	transaction := tx
	if transaction == nil {
		transaction = rr.db
	}

	var results []*domain.UserRegistration
	if err := transaction.WithContext(ctx).
		Order("registered_at ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (rr *registrationRepo) UpdateLastActivity(ctx context.Context, tx *gorm.DB, registrationID string, at time.Time) error {
	transaction := tx
	if transaction == nil {
		transaction = rr.db
	}
	res := transaction.WithContext(ctx).
		Model(&domain.UserRegistration{}).
		Where("registration_id = ?", registrationID).
		UpdateColumn("last_activity", at)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return &domain.NotFoundError{Resource: "registration", Key: registrationID}
	}
	return nil
}
