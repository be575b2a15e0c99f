package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/pulsenet-backend/internal/services"
)

type HealthHandler struct {
	health      services.HealthService
	environment string
}

func NewHealthHandler(health services.HealthService, environment string) *HealthHandler {
	return &HealthHandler{health: health, environment: environment}
}

// GET /api/health
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"service":   "PulseNet Backend",
		"timestamp": time.Now().UTC(),
		"version":   services.ServiceVersion,
	})
}

// GET /api/health/detailed
func (h *HealthHandler) Detailed(c *gin.Context) {
	report, healthy := h.health.Detailed(c.Request.Context())
	status := http.StatusOK
	if !healthy {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, report)
}

// GET /api/status
func (h *HealthHandler) Status(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":      "healthy",
		"timestamp":   time.Now().UTC(),
		"version":     services.ServiceVersion,
		"environment": h.environment,
		"uptime":      h.health.Uptime().Seconds(),
	})
}
