package domain

import (
	"github.com/yungbote/pulsenet-backend/internal/domain/health"
	"github.com/yungbote/pulsenet-backend/internal/domain/identity"
)

type HealthSubmission = health.HealthSubmission
type PlatformStats = health.PlatformStats
type UserRegistration = identity.UserRegistration

const PlatformStatsID = health.PlatformStatsID

var WalletKey = identity.WalletKey

// Models lists every persisted type, in migration order.
func Models() []any {
	return []any{
		&HealthSubmission{},
		&PlatformStats{},
		&UserRegistration{},
	}
}
