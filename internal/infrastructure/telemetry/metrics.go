package telemetry

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/breachradar/breach-risk-backend/internal/domain/issue"
)

// Metrics holds the Prometheus collectors for the scan pipeline.
type Metrics struct {
	ScansTotal     prometheus.Counter
	ScanDuration   prometheus.Histogram
	IssuesDetected *prometheus.CounterVec
	RiskScore      prometheus.Gauge
}

// NewMetrics creates and registers the scan metrics against the given
// registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		ScansTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "breachradar",
			Name:      "scans_total",
			Help:      "Total number of completed scan cycles.",
		}),
		ScanDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "breachradar",
			Name:      "scan_duration_seconds",
			Help:      "Duration of scan cycles.",
			Buckets:   prometheus.DefBuckets,
		}),
		IssuesDetected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "breachradar",
			Name:      "issues_detected_total",
			Help:      "Issues detected, labeled by issue type and severity.",
		}, []string{"type", "severity"}),
		RiskScore: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "breachradar",
			Name:      "risk_score",
			Help:      "Risk score of the most recent scan.",
		}),
	}

	reg.MustRegister(m.ScansTotal, m.ScanDuration, m.IssuesDetected, m.RiskScore)
	return m
}

// ObserveScan records one completed scan cycle.
func (m *Metrics) ObserveScan(duration time.Duration, score int, issues []issue.Issue) {
	m.ScansTotal.Inc()
	m.ScanDuration.Observe(duration.Seconds())
	m.RiskScore.Set(float64(score))
	for _, is := range issues {
		m.IssuesDetected.WithLabelValues(is.Type.String(), is.Severity.String()).Inc()
	}
}
