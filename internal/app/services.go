package app

import (
	"github.com/yungbote/pulsenet-backend/internal/commitment"
	"github.com/yungbote/pulsenet-backend/internal/observability"
	"github.com/yungbote/pulsenet-backend/internal/platform/logger"
	"github.com/yungbote/pulsenet-backend/internal/services"
)

type Services struct {
	Submission   services.SubmissionService
	Stats        services.StatsService
	Registration services.RegistrationService
	Rewards      services.RewardsService
	Health       services.HealthService
}

func wireServices(log *logger.Logger, cfg Config, storage *Storage, clients Clients, metrics *observability.Metrics) Services {
	log.Info("Wiring services...")
	timeout := cfg.Relay.Timeout
	return Services{
		Submission: services.NewSubmissionService(
			log,
			commitment.NewSimulatedScheme(),
			storage.Store,
			clients.Relay,
			clients.StatsCache,
			metrics,
			services.SubmissionConfig{RelayTimeout: timeout},
		),
		Stats:        services.NewStatsService(log, storage.Store, clients.Relay, clients.StatsCache, metrics, timeout),
		Registration: services.NewRegistrationService(log, storage.Registry, metrics),
		Rewards:      services.NewRewardsService(log, storage.Store, clients.Relay, metrics, timeout),
		Health:       services.NewHealthService(storage.Store, clients.Relay),
	}
}
