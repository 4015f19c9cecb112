package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "sentinel"

// Metrics holds every Sentinel collector on one registry.
//
// Metrics:
//   - sentinel_requests_total: gateway requests by provider and decision
//   - sentinel_request_duration_seconds: end-to-end gateway request duration
//   - sentinel_policy_evaluations_total: policy evaluations by decision
//   - sentinel_policy_violations_total: violations by policy and severity
//   - sentinel_evaluator_latency_seconds: evaluator operation latency
//   - sentinel_evaluator_healthy: 1 when an evaluator's last health check passed
type Metrics struct {
	registry *prometheus.Registry

	requestsTotal    *prometheus.CounterVec
	requestDuration  *prometheus.HistogramVec
	evaluationsTotal *prometheus.CounterVec
	violationsTotal  *prometheus.CounterVec
	evaluatorLatency *prometheus.HistogramVec
	evaluatorHealthy *prometheus.GaugeVec
}

// New creates a Metrics value with a fresh registry carrying the standard
// Go runtime and process collectors alongside the Sentinel collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),

		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "requests_total",
				Help:      "Total gateway requests by provider and decision",
			},
			[]string{"provider", "decision"},
		),

		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "request_duration_seconds",
				Help:      "End-to-end gateway request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"provider"},
		),

		evaluationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "policy_evaluations_total",
				Help:      "Total policy set evaluations by decision",
			},
			[]string{"decision"},
		),

		violationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "policy_violations_total",
				Help:      "Total policy violations by policy and severity",
			},
			[]string{"policy_id", "severity"},
		),

		evaluatorLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "evaluator_latency_seconds",
				Help:      "Evaluator operation latency in seconds",
				// Heuristic evaluators are fast; sub-millisecond buckets
				// keep the histogram useful.
				Buckets: prometheus.ExponentialBuckets(0.00001, 4, 10),
			},
			[]string{"evaluator", "operation"},
		),

		evaluatorHealthy: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "evaluator_healthy",
				Help:      "1 when the evaluator's last health check passed, 0 otherwise",
			},
			[]string{"evaluator"},
		),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.requestsTotal,
		m.requestDuration,
		m.evaluationsTotal,
		m.violationsTotal,
		m.evaluatorLatency,
		m.evaluatorHealthy,
	)

	return m
}

// Handler returns the HTTP handler serving this registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// RecordRequest records one gateway request.
func (m *Metrics) RecordRequest(provider, decision string, duration time.Duration) {
	m.requestsTotal.WithLabelValues(provider, decision).Inc()
	m.requestDuration.WithLabelValues(provider).Observe(duration.Seconds())
}

// RecordEvaluation records one policy set evaluation and its violations.
func (m *Metrics) RecordEvaluation(decision string, violations []ViolationLabel) {
	m.evaluationsTotal.WithLabelValues(decision).Inc()
	for _, v := range violations {
		m.violationsTotal.WithLabelValues(v.PolicyID, v.Severity).Inc()
	}
}

// ViolationLabel is the label set for one recorded violation.
type ViolationLabel struct {
	PolicyID string
	Severity string
}

// ObserveEvaluatorLatency records one evaluator operation's duration.
func (m *Metrics) ObserveEvaluatorLatency(evaluator, operation string, duration time.Duration) {
	m.evaluatorLatency.WithLabelValues(evaluator, operation).Observe(duration.Seconds())
}

// SetEvaluatorHealth records an evaluator health check outcome.
func (m *Metrics) SetEvaluatorHealth(evaluator string, healthy bool) {
	v := 0.0
	if healthy {
		v = 1.0
	}
	m.evaluatorHealthy.WithLabelValues(evaluator).Set(v)
}
