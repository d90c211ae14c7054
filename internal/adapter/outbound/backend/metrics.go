package backend

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Request outcomes recorded in RequestsTotal.
const (
	outcomeOK        = "ok"
	outcomeAPIError  = "api_error"
	outcomeTransport = "transport_error"
	outcomeDecode    = "decode_error"
)

// Metrics holds the Prometheus metrics of the request client.
type Metrics struct {
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
}

// NewMetrics creates and registers the client metrics with the given registry.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		RequestsTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "sofisoft",
				Subsystem: "client",
				Name:      "requests_total",
				Help:      "Total number of backend requests issued",
			},
			[]string{"method", "path", "outcome"},
		),
		RequestDuration: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "sofisoft",
				Subsystem: "client",
				Name:      "request_duration_seconds",
				Help:      "Backend request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
	}
}

func (m *Metrics) observe(method, path, outcome string, seconds float64) {
	if m == nil {
		return
	}
	m.RequestsTotal.WithLabelValues(method, path, outcome).Inc()
	m.RequestDuration.WithLabelValues(method, path).Observe(seconds)
}
