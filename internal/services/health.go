package services

import (
	"context"
	"time"

	"github.com/yungbote/pulsenet-backend/internal/clients/ledger"
	"github.com/yungbote/pulsenet-backend/internal/store"
)

const ServiceVersion = "1.0.0"

type ComponentCheck struct {
	Status     string `json:"status"`
	Connected  *bool  `json:"connected,omitempty"`
	Writable   *bool  `json:"writable,omitempty"`
	Simulation *bool  `json:"simulation,omitempty"`
	Records    *int64 `json:"records,omitempty"`
}

type HealthReport struct {
	Status    string                    `json:"status"`
	Checks    map[string]ComponentCheck `json:"checks"`
	Timestamp time.Time                 `json:"timestamp"`
	Uptime    float64                   `json:"uptime"`
}

type HealthService interface {
	// Detailed reports per-component health; healthy is false when any
	// component is not.
	Detailed(ctx context.Context) (report HealthReport, healthy bool)
	Uptime() time.Duration
}

type healthService struct {
	store   *store.Store
	relay   ledger.Relay
	started time.Time
	now     func() time.Time
}

func NewHealthService(st *store.Store, relay ledger.Relay) HealthService {
	return &healthService{store: st, relay: relay, started: time.Now(), now: time.Now}
}

func (s *healthService) Uptime() time.Duration { return s.now().Sub(s.started) }

func (s *healthService) Detailed(ctx context.Context) (HealthReport, bool) {
	yes := true
	connected := s.relay.Ready()
	records := s.store.Stats().TotalSubmissions

	checks := map[string]ComponentCheck{
		"api":        {Status: "healthy"},
		"blockchain": {Status: statusOf(connected), Connected: &connected},
		"storage":    {Status: "healthy", Writable: &yes, Records: &records},
		"zkProof":    {Status: "healthy", Simulation: &yes},
	}
	healthy := true
	for _, c := range checks {
		if c.Status != "healthy" {
			healthy = false
		}
	}
	report := HealthReport{
		Status:    "healthy",
		Checks:    checks,
		Timestamp: s.now().UTC(),
		Uptime:    s.Uptime().Seconds(),
	}
	if !healthy {
		report.Status = "degraded"
	}
	return report, healthy
}

func statusOf(ok bool) string {
	if ok {
		return "healthy"
	}
	return "unhealthy"
}
