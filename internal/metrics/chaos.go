package metrics

import "github.com/prometheus/client_golang/prometheus"

// Namespace prefixes every metric exported by this module.
const Namespace = "aaisp"

// CHAOS API client metrics.
var (
	ChaosRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "chaos_requests_total",
			Help:      "Total number of CHAOS API requests",
		},
		[]string{"command", "status"},
	)

	ChaosRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "chaos_request_duration_seconds",
			Help:      "CHAOS API request duration in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"command"},
	)

	ChaosErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "chaos_errors_total",
			Help:      "Total CHAOS API errors by type",
		},
		[]string{"command", "error_type"},
	)
)

// RegisterChaosMetrics registers the CHAOS client metrics on reg.
// Safe to call more than once per registry.
func RegisterChaosMetrics(reg prometheus.Registerer) error {
	return register(reg, ChaosRequestsTotal, ChaosRequestDuration, ChaosErrorsTotal)
}
