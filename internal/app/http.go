package app

import (
	"time"

	"github.com/yungbote/pulsenet-backend/internal/http"
	httpH "github.com/yungbote/pulsenet-backend/internal/http/handlers"
	httpMW "github.com/yungbote/pulsenet-backend/internal/http/middleware"
	"github.com/yungbote/pulsenet-backend/internal/observability"
	"github.com/yungbote/pulsenet-backend/internal/platform/logger"
)

type Handlers struct {
	Data    *httpH.DataHandler
	User    *httpH.UserHandler
	Rewards *httpH.RewardsHandler
	Health  *httpH.HealthHandler
}

func wireHandlers(log *logger.Logger, cfg Config, services Services) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Data:    httpH.NewDataHandler(log, services.Submission, services.Stats),
		User:    httpH.NewUserHandler(log, services.Registration),
		Rewards: httpH.NewRewardsHandler(log, services.Rewards),
		Health:  httpH.NewHealthHandler(services.Health, cfg.Environment),
	}
}

func wireServer(log *logger.Logger, cfg Config, handlers Handlers, metrics *observability.Metrics) *http.Server {
	var limiter *httpMW.RateLimiter
	if cfg.RateLimitRPS > 0 {
		limiter = httpMW.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst, 15*time.Minute)
	}
	return http.NewServer(http.RouterConfig{
		Log:             log,
		ServiceName:     "pulsenet-backend",
		CORSOrigins:     cfg.CORSOrigins,
		MaxRequestBytes: cfg.MaxRequestBytes,
		RateLimiter:     limiter,
		Metrics:         metrics,
		MetricsEnabled:  cfg.MetricsEnabled,
		AdminAuth:       httpMW.NewAdminAuthMiddleware(log, cfg.AdminJWTSecret),
		DataHandler:     handlers.Data,
		UserHandler:     handlers.User,
		RewardsHandler:  handlers.Rewards,
		HealthHandler:   handlers.Health,
	})
}
