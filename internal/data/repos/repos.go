package repos

import (
	"github.com/yungbote/pulsenet-backend/internal/data/repos/health"
	"github.com/yungbote/pulsenet-backend/internal/data/repos/identity"
)

type SubmissionRepo = health.SubmissionRepo
type PlatformStatsRepo = health.PlatformStatsRepo
type RegistrationRepo = identity.RegistrationRepo

type SubmissionLog = health.SubmissionLog
type RegistrationBackend = identity.RegistrationBackend

var (
	NewSubmissionRepo      = health.NewSubmissionRepo
	NewPlatformStatsRepo   = health.NewPlatformStatsRepo
	NewRegistrationRepo    = identity.NewRegistrationRepo
	NewSubmissionLog       = health.NewSubmissionLog
	NewRegistrationBackend = identity.NewRegistrationBackend
)
