package sandbox

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the sandbox collectors. A nil *Metrics records nothing.
type Metrics struct {
	requestsTotal       *prometheus.CounterVec
	requestDuration     *prometheus.HistogramVec
	signatureRejections *prometheus.CounterVec
}

// NewMetrics registers the sandbox collectors with reg
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		requestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gpay_sandbox_requests_total",
				Help: "Requests served by the sandbox by route and status code",
			},
			[]string{"route", "status"},
		),
		requestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "gpay_sandbox_request_duration_seconds",
				Help:    "Sandbox request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"route"},
		),
		signatureRejections: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gpay_sandbox_signature_rejections_total",
				Help: "Requests rejected before reaching a handler",
			},
			[]string{"reason"},
		),
	}
}

func (m *Metrics) observe(route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.requestsTotal.WithLabelValues(route, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(route).Observe(elapsed.Seconds())
}

func (m *Metrics) rejected(reason string) {
	if m == nil {
		return
	}
	m.signatureRejections.WithLabelValues(reason).Inc()
}
