// Package metrics contains Prometheus metrics for the compliance
// pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the pipeline's Prometheus collectors.
type Metrics struct {
	// Evaluations
	evaluations   *prometheus.CounterVec
	riskScore     prometheus.Histogram
	evalDuration  prometheus.Histogram
	modelDuration prometheus.Histogram

	// Cache
	cacheLookups *prometheus.CounterVec

	// Degradations and remediation
	stageDegradations *prometheus.CounterVec
	autoFixes         *prometheus.CounterVec
}

// New creates the collectors and registers them on reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		evaluations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "compliance_evaluations_total",
				Help: "Total number of completed compliance evaluations",
			},
			[]string{"verdict", "content_type"},
		),

		riskScore: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "compliance_risk_score",
				Help:    "Distribution of aggregated risk scores",
				Buckets: prometheus.LinearBuckets(0, 10, 11),
			},
		),

		evalDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "compliance_evaluation_duration_seconds",
				Help:    "End-to-end evaluation latency, cache misses only",
				Buckets: prometheus.DefBuckets,
			},
		),

		modelDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "compliance_model_call_duration_seconds",
				Help:    "Semantic evaluator model call latency",
				Buckets: prometheus.DefBuckets,
			},
		),

		cacheLookups: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "compliance_cache_lookups_total",
				Help: "Cache lookups by outcome",
			},
			[]string{"outcome"},
		),

		stageDegradations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "compliance_stage_degradations_total",
				Help: "Evaluations where a stage degraded instead of running",
			},
			[]string{"stage", "reason"},
		),

		autoFixes: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "compliance_autofix_total",
				Help: "Auto-fix attempts by outcome",
			},
			[]string{"outcome"},
		),
	}
}

// ObserveEvaluation records one completed evaluation.
func (m *Metrics) ObserveEvaluation(compliant bool, contentType string, riskScore int, seconds float64) {
	verdict := "non_compliant"
	if compliant {
		verdict = "compliant"
	}
	m.evaluations.WithLabelValues(verdict, contentType).Inc()
	m.riskScore.Observe(float64(riskScore))
	m.evalDuration.Observe(seconds)
}

// ObserveModelCall records one semantic evaluator call.
func (m *Metrics) ObserveModelCall(seconds float64) {
	m.modelDuration.Observe(seconds)
}

// ObserveCacheLookup records a cache hit, miss or bypass.
func (m *Metrics) ObserveCacheLookup(outcome string) {
	m.cacheLookups.WithLabelValues(outcome).Inc()
}

// ObserveDegradation records a stage that degraded.
func (m *Metrics) ObserveDegradation(stage, reason string) {
	m.stageDegradations.WithLabelValues(stage, reason).Inc()
}

// ObserveAutoFix records an auto-fix attempt outcome.
func (m *Metrics) ObserveAutoFix(outcome string) {
	m.autoFixes.WithLabelValues(outcome).Inc()
}
