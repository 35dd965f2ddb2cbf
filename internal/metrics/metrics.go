package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the analysis counters exported at /metrics
type Metrics struct {
	Reports  *prometheus.CounterVec
	Degraded *prometheus.CounterVec
	Latency  prometheus.Histogram
}

// New registers the analysis metrics on reg
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Reports: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fjd_reports_total",
				Help: "Reports produced, by label",
			},
			[]string{"label"},
		),
		Degraded: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fjd_degraded_signals_total",
				Help: "Signals that fell back to a degraded value, by source",
			},
			[]string{"source"},
		),
		Latency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "fjd_analysis_duration_seconds",
			Help:    "End-to-end analysis latency",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 10),
		}),
	}
	reg.MustRegister(m.Reports, m.Degraded, m.Latency)
	return m
}

// ObserveReport records one finished analysis
func (m *Metrics) ObserveReport(label string, took time.Duration) {
	if m == nil {
		return
	}
	m.Reports.WithLabelValues(label).Inc()
	m.Latency.Observe(took.Seconds())
}

// ObserveDegraded records a signal that fell back
func (m *Metrics) ObserveDegraded(source string) {
	if m == nil {
		return
	}
	m.Degraded.WithLabelValues(source).Inc()
}
