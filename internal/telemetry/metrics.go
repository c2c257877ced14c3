package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the service.
type Metrics struct {
	RateRequestsTotal   *prometheus.CounterVec
	RateRequestDuration *prometheus.HistogramVec
	CarrierErrors       *prometheus.CounterVec
}

// NewMetrics creates and registers Prometheus metrics.
func NewMetrics() *Metrics {
	return &Metrics{
		RateRequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rategate_rate_requests_total",
				Help: "Total number of rate requests by carrier and status",
			},
			[]string{"carrier", "status"},
		),
		RateRequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "rategate_rate_request_duration_seconds",
				Help:    "Rate request duration in seconds by carrier",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"carrier"},
		),
		CarrierErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rategate_carrier_errors_total",
				Help: "Total carrier API errors by carrier and error code",
			},
			[]string{"carrier", "code"},
		),
	}
}

// RecordRequest records a rate request metric.
func (m *Metrics) RecordRequest(carrier, status string, duration float64) {
	m.RateRequestsTotal.WithLabelValues(carrier, status).Inc()
	m.RateRequestDuration.WithLabelValues(carrier).Observe(duration)
}

// RecordError records a carrier error metric.
func (m *Metrics) RecordError(carrier, code string) {
	m.CarrierErrors.WithLabelValues(carrier, code).Inc()
}
