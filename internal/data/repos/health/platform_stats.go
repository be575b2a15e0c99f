package health

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yungbote/pulsenet-backend/internal/domain"
	"github.com/yungbote/pulsenet-backend/internal/platform/logger"
)

type PlatformStatsRepo interface {
	Upsert(ctx context.Context, tx *gorm.DB, stats *domain.PlatformStats) error
	// Get returns nil when no snapshot row exists.
	Get(ctx context.Context, tx *gorm.DB) (*domain.PlatformStats, error)
}

type platformStatsRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPlatformStatsRepo(db *gorm.DB, baseLog *logger.Logger) PlatformStatsRepo {
	repoLog := baseLog.With("repo", "PlatformStatsRepo")
	return &platformStatsRepo{db: db, log: repoLog}
}

func (pr *platformStatsRepo) Upsert(ctx context.Context, tx *gorm.DB, stats *domain.PlatformStats) error {
	transaction := tx
	if transaction == nil {
		transaction = pr.db
	}
	if stats.ID == "" {
		stats.ID = domain.PlatformStatsID
	}
	return transaction.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			UpdateAll: true,
		}).
		Create(stats).Error
}

func (pr *platformStatsRepo) Get(ctx context.Context, tx *gorm.DB) (*domain.PlatformStats, error) {
	transaction := tx
	if transaction == nil {
		transaction = pr.db
	}

	var row domain.PlatformStats
	err := transaction.WithContext(ctx).
		Where("id = ?", domain.PlatformStatsID).
		Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}
