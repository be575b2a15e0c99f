package http

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/pulsenet-backend/internal/http/handlers"
	httpMW "github.com/yungbote/pulsenet-backend/internal/http/middleware"
	"github.com/yungbote/pulsenet-backend/internal/observability"
	"github.com/yungbote/pulsenet-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log         *logger.Logger
	ServiceName string

	CORSOrigins     []string
	MaxRequestBytes int64
	RateLimiter     *httpMW.RateLimiter
	Metrics         *observability.Metrics
	MetricsEnabled  bool

	AdminAuth *httpMW.AdminAuthMiddleware

	DataHandler    *httpH.DataHandler
	UserHandler    *httpH.UserHandler
	RewardsHandler *httpH.RewardsHandler
	HealthHandler  *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	log := cfg.Log
	if log == nil {
		log = logger.Nop()
	}
	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = "pulsenet"
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(otelgin.Middleware(serviceName))
	r.Use(httpMW.TraceContext())
	r.Use(httpMW.RequestLogger(log))
	r.Use(httpMW.Metrics(cfg.Metrics))
	r.Use(httpMW.CORS(cfg.CORSOrigins))
	r.Use(httpMW.BodyLimit(cfg.MaxRequestBytes))

	if cfg.MetricsEnabled && cfg.Metrics != nil {
		r.GET("/metrics", gin.WrapH(cfg.Metrics.Handler()))
	}

	api := r.Group("/api")
	api.Use(httpMW.RateLimit(cfg.RateLimiter))
	{
		// Health
		if cfg.HealthHandler != nil {
			api.GET("/health", cfg.HealthHandler.Health)
			api.GET("/health/detailed", cfg.HealthHandler.Detailed)
			api.GET("/status", cfg.HealthHandler.Status)
		}

		// Health data
		if cfg.DataHandler != nil {
			api.POST("/data/submit", cfg.DataHandler.Submit)
			api.GET("/data/stats", cfg.DataHandler.Stats)
			api.GET("/data/user/:address", cfg.DataHandler.UserStats)
			api.POST("/data/verify", cfg.DataHandler.VerifyProof)
		}

		// Registration
		if cfg.UserHandler != nil {
			api.POST("/user/register", cfg.UserHandler.Register)
			api.POST("/user/verify", cfg.UserHandler.Verify)
			api.GET("/user/stats/summary", cfg.UserHandler.Summary)
			api.GET("/user/:address", cfg.UserHandler.Get)
		}

		// Rewards
		if cfg.RewardsHandler != nil {
			api.GET("/rewards/balance/:address", cfg.RewardsHandler.Balance)
			api.GET("/rewards/leaderboard", cfg.RewardsHandler.Leaderboard)

			admin := api.Group("/rewards")
			if cfg.AdminAuth != nil {
				admin.Use(cfg.AdminAuth.RequireAdmin())
			}
			admin.POST("/manual", cfg.RewardsHandler.Manual)
		}
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error":   "Route not found",
			"message": fmt.Sprintf("Cannot %s %s", c.Request.Method, c.Request.URL.Path),
		})
	})

	return r
}
