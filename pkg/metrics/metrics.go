package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all application metrics
type Metrics struct {
	// Analysis pipeline metrics
	AnalysisInvocations prometheus.Counter
	AnalysisFailures    *prometheus.CounterVec
	AnalysisDuration    prometheus.Histogram

	// Report metrics
	ReportsCreated prometheus.Counter

	// PDF artifact metrics
	PDFGenerations   *prometheus.CounterVec
	PDFRegenerations prometheus.Counter
}

// NewMetrics creates and registers all application metrics
func NewMetrics(namespace, subsystem string) *Metrics {
	return &Metrics{
		AnalysisInvocations: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "analysis_invocations_total",
			Help:      "Total number of successful analysis engine invocations",
		}),
		AnalysisFailures: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "analysis_failures_total",
			Help:      "Total number of failed analysis engine invocations by reason",
		}, []string{"reason"}),
		AnalysisDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "analysis_duration_seconds",
			Help:      "Time spent waiting on the analysis engine subprocess",
			Buckets:   []float64{.1, .25, .5, 1, 2.5, 5, 10, 30, 60, 120},
		}),
		ReportsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "reports_created_total",
			Help:      "Total number of reports persisted",
		}),
		PDFGenerations: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "pdf_generations_total",
			Help:      "Total number of PDF artifact generations by outcome",
		}, []string{"outcome"}),
		PDFRegenerations: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "pdf_regenerations_total",
			Help:      "Total number of PDF artifacts regenerated at retrieval time",
		}),
	}
}
