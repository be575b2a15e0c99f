package health

import (
	"context"

	"gorm.io/gorm"

	"github.com/yungbote/pulsenet-backend/internal/domain"
	"github.com/yungbote/pulsenet-backend/internal/platform/logger"
)

type SubmissionRepo interface {
	Create(ctx context.Context, tx *gorm.DB, rec *domain.HealthSubmission) error
	ListAll(ctx context.Context, tx *gorm.DB) ([]*domain.HealthSubmission, error)
}

type submissionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSubmissionRepo(db *gorm.DB, baseLog *logger.Logger) SubmissionRepo {
	repoLog := baseLog.With("repo", "SubmissionRepo")
	return &submissionRepo{db: db, log: repoLog}
}

func (sr *submissionRepo) Create(ctx context.Context, tx *gorm.DB, rec *domain.HealthSubmission) error {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}
	return transaction.WithContext(ctx).Create(rec).Error
}

func (sr *submissionRepo) ListAll(ctx context.Context, tx *gorm.DB) ([]*domain.HealthSubmission, error) {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}

	var results []*domain.HealthSubmission
	if err := transaction.WithContext(ctx).
		Order("seq ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
