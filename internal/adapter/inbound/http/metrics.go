// Package http provides the HTTP transport adapter for the refund notary.
package http

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the refund notary.
// Pass to components that need to record metrics.
type Metrics struct {
	RequestsTotal       *prometheus.CounterVec
	RequestDuration     *prometheus.HistogramVec
	VerdictsTotal       *prometheus.CounterVec
	OracleUpstreamTotal *prometheus.CounterVec
}

// NewMetrics creates and registers all metrics with the given registry.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		RequestsTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "refund_notary",
				Name:      "requests_total",
				Help:      "Total number of HTTP requests processed",
			},
			[]string{"method", "status"}, // status=ok/error
		),
		RequestDuration: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "refund_notary",
				Name:      "request_duration_seconds",
				Help:      "Request duration in seconds",
				Buckets:   prometheus.DefBuckets, // 5ms to 10s
			},
			[]string{"method"},
		),
		VerdictsTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "refund_notary",
				Name:      "verdicts_total",
				Help:      "Total eligibility verdicts computed",
			},
			[]string{"verdict", "code"},
		),
		OracleUpstreamTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "refund_notary",
				Name:      "oracle_upstream_total",
				Help:      "Total oracle answers by outcome",
			},
			[]string{"outcome"}, // outcome=yes/no/unclear
		),
	}
}

// RecordVerdict increments the verdict counter. Safe on a nil receiver so
// handlers can run without metrics in tests.
func (m *Metrics) RecordVerdict(verdict, code string) {
	if m == nil {
		return
	}
	m.VerdictsTotal.WithLabelValues(verdict, code).Inc()
}

// RecordOracleOutcome increments the oracle outcome counter.
func (m *Metrics) RecordOracleOutcome(outcome string) {
	if m == nil {
		return
	}
	m.OracleUpstreamTotal.WithLabelValues(outcome).Inc()
}
