package health

import (
	"context"

	"gorm.io/gorm"

	"github.com/yungbote/pulsenet-backend/internal/domain"
	"github.com/yungbote/pulsenet-backend/internal/platform/logger"
)

// SubmissionLog is the SQL-backed store.Log. A record and its stats snapshot
// commit in one transaction.
type SubmissionLog struct {
	db    *gorm.DB
	subs  SubmissionRepo
	stats PlatformStatsRepo
}

func NewSubmissionLog(db *gorm.DB, baseLog *logger.Logger) *SubmissionLog {
	return &SubmissionLog{
		db:    db,
		subs:  NewSubmissionRepo(db, baseLog),
		stats: NewPlatformStatsRepo(db, baseLog),
	}
}

func (l *SubmissionLog) Append(ctx context.Context, rec domain.HealthSubmission, stats domain.PlatformStats) error {
	return l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := l.subs.Create(ctx, tx, &rec); err != nil {
			return err
		}
		return l.stats.Upsert(ctx, tx, &stats)
	})
}

func (l *SubmissionLog) LoadAll(ctx context.Context) ([]domain.HealthSubmission, error) {
	rows, err := l.subs.ListAll(ctx, nil)
	if err != nil {
		return nil, err
	}
	out := make([]domain.HealthSubmission, 0, len(rows))
	for _, r := range rows {
		out = append(out, *r)
	}
	return out, nil
}

func (l *SubmissionLog) LoadStats(ctx context.Context) (*domain.PlatformStats, error) {
	return l.stats.Get(ctx, nil)
}
