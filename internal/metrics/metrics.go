// Package metrics defines the Prometheus collectors of the scanner.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "janus"

// Metrics groups the scanner collectors
type Metrics struct {
	ScansTotal        *prometheus.CounterVec
	OpportunitiesSeen *prometheus.CounterVec
	QuotesProcessed   *prometheus.CounterVec
	ScanDuration      *prometheus.HistogramVec
	RequestsRemaining prometheus.Gauge
	SinkErrors        *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them on reg. A nil reg
// leaves them unregistered, which tests use to avoid global state.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		ScansTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "scans_total",
			Help:      "Sport scans by outcome",
		}, []string{"sport", "status"}),
		OpportunitiesSeen: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "opportunities_detected_total",
			Help:      "Arbitrage opportunities detected",
		}, []string{"sport"}),
		QuotesProcessed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "quotes_processed_total",
			Help:      "Flattened quotes fed to the engine",
		}, []string{"sport"}),
		ScanDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "scan_duration_seconds",
			Help:      "Fetch plus detection latency of one sport",
			Buckets:   prometheus.DefBuckets,
		}, []string{"sport"}),
		RequestsRemaining: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "provider_requests_remaining",
			Help:      "Odds provider quota left",
		}),
		SinkErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sink_errors_total",
			Help:      "Failed opportunity deliveries per sink",
		}, []string{"sink"}),
	}

	if reg != nil {
		reg.MustRegister(
			m.ScansTotal,
			m.OpportunitiesSeen,
			m.QuotesProcessed,
			m.ScanDuration,
			m.RequestsRemaining,
			m.SinkErrors,
		)
	}
	return m
}
