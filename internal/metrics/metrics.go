// Package metrics exposes Prometheus counters for pipeline runs, platform
// requests and report exports.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "submission_report"

// Metrics is safe to use as a nil pointer; every method is then a no-op.
type Metrics struct {
	requestsTotal *prometheus.CounterVec
	recordsTotal  *prometheus.CounterVec
	runsTotal     *prometheus.CounterVec
	exportsTotal  *prometheus.CounterVec
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "requests_total",
				Help:      "Platform API requests by endpoint and outcome",
			},
			[]string{"endpoint", "outcome"},
		),
		recordsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "records_total",
				Help:      "Records received from the platform by endpoint",
			},
			[]string{"endpoint"},
		),
		runsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "runs_total",
				Help:      "Pipeline runs by outcome",
			},
			[]string{"outcome"},
		),
		exportsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "exports_total",
				Help:      "Rendered reports by format",
			},
			[]string{"format"},
		),
	}

	if reg != nil {
		reg.MustRegister(m.requestsTotal, m.recordsTotal, m.runsTotal, m.exportsTotal)
	}
	return m
}

func (m *Metrics) ObserveRequest(endpoint, outcome string) {
	if m == nil {
		return
	}
	m.requestsTotal.WithLabelValues(endpoint, outcome).Inc()
}

func (m *Metrics) ObserveRecords(endpoint string, n int) {
	if m == nil {
		return
	}
	m.recordsTotal.WithLabelValues(endpoint).Add(float64(n))
}

func (m *Metrics) ObserveRun(outcome string) {
	if m == nil {
		return
	}
	m.runsTotal.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ObserveExport(format string) {
	if m == nil {
		return
	}
	m.exportsTotal.WithLabelValues(format).Inc()
}
