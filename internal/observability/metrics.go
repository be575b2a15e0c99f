package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics owns a private Prometheus registry. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	registry *prometheus.Registry

	apiRequests  *prometheus.CounterVec
	apiLatency   *prometheus.HistogramVec
	apiInflight  prometheus.Gauge
	submissions  *prometheus.CounterVec
	relayCalls   *prometheus.CounterVec
	registration *prometheus.CounterVec
	storeSize    prometheus.Gauge
}

func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		apiRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pulsenet",
			Name:      "api_requests_total",
			Help:      "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		apiLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "pulsenet",
			Name:      "api_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		apiInflight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "pulsenet",
			Name:      "api_inflight_requests",
			Help:      "Requests currently being served.",
		}),
		submissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pulsenet",
			Name:      "submissions_total",
			Help:      "Submission pipeline outcomes.",
		}, []string{"outcome"}),
		relayCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pulsenet",
			Name:      "ledger_relay_calls_total",
			Help:      "Ledger relay calls by operation and outcome.",
		}, []string{"op", "outcome"}),
		registration: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pulsenet",
			Name:      "registrations_total",
			Help:      "Registration and verification outcomes.",
		}, []string{"op", "outcome"}),
		storeSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "pulsenet",
			Name:      "offchain_submissions",
			Help:      "Submissions held in the off-chain store.",
		}),
	}
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.apiRequests,
		m.apiLatency,
		m.apiInflight,
		m.submissions,
		m.relayCalls,
		m.registration,
		m.storeSize,
	)
	return m
}

func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) ApiInflightInc() {
	if m == nil {
		return
	}
	m.apiInflight.Inc()
}

func (m *Metrics) ApiInflightDec() {
	if m == nil {
		return
	}
	m.apiInflight.Dec()
}

func (m *Metrics) ObserveAPI(method, route, status string, dur time.Duration) {
	if m == nil {
		return
	}
	m.apiRequests.WithLabelValues(method, route, status).Inc()
	m.apiLatency.WithLabelValues(method, route).Observe(dur.Seconds())
}

// ObserveSubmission records a pipeline outcome: accepted, degraded, invalid
// or failed.
func (m *Metrics) ObserveSubmission(outcome string) {
	if m == nil {
		return
	}
	m.submissions.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ObserveRelay(op string, err error) {
	if m == nil {
		return
	}
	m.relayCalls.WithLabelValues(op, outcomeOf(err)).Inc()
}

func (m *Metrics) ObserveRegistration(op, outcome string) {
	if m == nil {
		return
	}
	m.registration.WithLabelValues(op, outcome).Inc()
}

func (m *Metrics) SetStoreSize(n int64) {
	if m == nil {
		return
	}
	m.storeSize.Set(float64(n))
}

func outcomeOf(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
