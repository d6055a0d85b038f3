// Package metrics exposes Prometheus instrumentation for watch runs.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/seenimoa/edgarwatch/pkg/models"
)

const namespace = "edgarwatch"

// Metrics holds the collectors for one registry. A nil *Metrics is valid
// and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	// companies counts processed companies by outcome ("ok", "failed")
	companies *prometheus.CounterVec

	// filings counts filing attempts by form type and outcome ("emitted", "failed")
	filings *prometheus.CounterVec

	// changes counts compared filings that changed, by severity
	changes *prometheus.CounterVec

	// changeScore tracks the distribution of change scores
	changeScore prometheus.Histogram

	// filingDuration tracks end-to-end processing time per filing
	filingDuration prometheus.Histogram

	// webhooks counts webhook notifications by result ("sent", "skipped", "failed")
	webhooks *prometheus.CounterVec

	// narrativeFailures counts absorbed narrative errors
	narrativeFailures prometheus.Counter
}

// New registers the collectors on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)
	return &Metrics{
		registry: reg,
		companies: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "companies_processed_total",
			Help:      "Companies processed by outcome",
		}, []string{"outcome"}),
		filings: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "filings_processed_total",
			Help:      "Filing attempts by form type and outcome",
		}, []string{"form_type", "outcome"}),
		changes: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "changes_detected_total",
			Help:      "Filings with detected changes by severity",
		}, []string{"severity"}),
		changeScore: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "change_score",
			Help:      "Change score of compared filings",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.2, 0.3, 0.4, 0.5, 0.75, 1},
		}),
		filingDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "filing_processing_duration_seconds",
			Help:      "Time to process one filing in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 12), // 10ms to ~40s
		}),
		webhooks: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "webhooks_total",
			Help:      "Webhook notifications by result",
		}, []string{"result"}),
		narrativeFailures: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "narrative_failures_total",
			Help:      "Narrative analyses that failed and were skipped",
		}),
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) CompanyProcessed(failed bool) {
	if m == nil {
		return
	}
	outcome := "ok"
	if failed {
		outcome = "failed"
	}
	m.companies.WithLabelValues(outcome).Inc()
}

func (m *Metrics) FilingEmitted(formType string, report models.ChangeReport, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.filings.WithLabelValues(formType, "emitted").Inc()
	m.filingDuration.Observe(elapsed.Seconds())
	if report.HasBaseline {
		m.changeScore.Observe(report.ChangeScore)
	}
	if report.HasChanges {
		m.changes.WithLabelValues(string(report.EffectiveSeverity())).Inc()
	}
}

func (m *Metrics) FilingFailed(formType string) {
	if m == nil {
		return
	}
	m.filings.WithLabelValues(formType, "failed").Inc()
}

// Webhook records a notification result: "sent", "skipped" or "failed".
func (m *Metrics) Webhook(result string) {
	if m == nil {
		return
	}
	m.webhooks.WithLabelValues(result).Inc()
}

func (m *Metrics) NarrativeFailed() {
	if m == nil {
		return
	}
	m.narrativeFailures.Inc()
}
