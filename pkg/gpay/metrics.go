package gpay

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus collectors updated by the client.
// A nil *Metrics records nothing.
type Metrics struct {
	requestsTotal        *prometheus.CounterVec
	requestDuration      *prometheus.HistogramVec
	verificationFailures *prometheus.CounterVec
}

// NewMetrics registers the client collectors with reg
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		requestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gpay_client_requests_total",
				Help: "Total number of GPay API calls by operation and outcome",
			},
			[]string{"operation", "outcome"},
		),
		requestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "gpay_client_request_duration_seconds",
				Help:    "GPay API call duration in seconds, signing and verification included",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		verificationFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gpay_client_verification_failures_total",
				Help: "Responses rejected by signature verification",
			},
			[]string{"operation", "reason"},
		),
	}
}

func (m *Metrics) observe(operation string, outcome Outcome, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.requestsTotal.WithLabelValues(operation, string(outcome)).Inc()
	m.requestDuration.WithLabelValues(operation).Observe(elapsed.Seconds())
	if outcome.IntegrityFailure() {
		m.verificationFailures.WithLabelValues(operation, string(outcome)).Inc()
	}
}
