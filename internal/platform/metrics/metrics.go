package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the rail ledger.
type Metrics struct {
	CredentialsIssued   prometheus.Counter
	CredentialsRevoked  prometheus.Counter
	StakesCreated       prometheus.Counter
	RailsIssued         prometheus.Counter
	DrawsExecuted       prometheus.Counter
	RailsRevoked        *prometheus.CounterVec
	KillSwitchLatencyMs prometheus.Histogram
	GatewaySubmissions  *prometheus.CounterVec
	ReserveRejections   prometheus.Counter
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	return &Metrics{
		CredentialsIssued: promauto.NewCounter(prometheus.CounterOpts{
			Name: "railguard_credentials_issued_total",
			Help: "Total number of identity credentials issued",
		}),
		CredentialsRevoked: promauto.NewCounter(prometheus.CounterOpts{
			Name: "railguard_credentials_revoked_total",
			Help: "Total number of identity credentials revoked",
		}),
		StakesCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "railguard_stakes_created_total",
			Help: "Total number of stakes created or re-staked",
		}),
		RailsIssued: promauto.NewCounter(prometheus.CounterOpts{
			Name: "railguard_rails_issued_total",
			Help: "Total number of compliance rails issued",
		}),
		DrawsExecuted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "railguard_draws_executed_total",
			Help: "Total number of draws executed against rails",
		}),
		RailsRevoked: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "railguard_rails_revoked_total",
			Help: "Total number of rails revoked, by reason",
		}, []string{"reason"}),
		KillSwitchLatencyMs: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "railguard_kill_switch_latency_ms",
			Help:    "Latency of bulk rail revocation in milliseconds",
			Buckets: []float64{0.5, 1, 2.5, 5, 10, 25, 50, 100, 250, 500},
		}),
		GatewaySubmissions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "railguard_gateway_submissions_total",
			Help: "Contract gateway submissions, by final status",
		}, []string{"status"}),
		ReserveRejections: promauto.NewCounter(prometheus.CounterOpts{
			Name: "railguard_reserve_rejections_total",
			Help: "Reservations rejected for insufficient capacity or expiry",
		}),
	}
}

// ObserveKillSwitch records one bulk revocation.
func (m *Metrics) ObserveKillSwitch(revoked int, durationMs float64) {
	m.RailsRevoked.WithLabelValues("kill_switch").Add(float64(revoked))
	m.KillSwitchLatencyMs.Observe(durationMs)
}
