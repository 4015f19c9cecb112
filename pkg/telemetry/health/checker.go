package health

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"sentinel-hq/sentinel/pkg/evaluation/manager"
	"sentinel-hq/sentinel/pkg/telemetry/metrics"
)

// Overall health states reported by Check.
const (
	StatusHealthy  = "healthy"
	StatusDegraded = "degraded"
)

// Report is one health snapshot.
type Report struct {
	// Status is "healthy" when every loaded evaluator passed its check,
	// "degraded" otherwise (including when nothing is loaded yet).
	Status string `json:"status"`

	// Evaluators maps each loaded evaluator to its health check outcome.
	Evaluators map[string]bool `json:"evaluators"`

	// IsLoading reports whether evaluator loading is in progress.
	IsLoading bool `json:"is_loading"`

	// Timestamp is when the snapshot was taken.
	Timestamp time.Time `json:"timestamp"`
}

// Healthy reports whether the snapshot represents a fully healthy system.
func (r Report) Healthy() bool { return r.Status == StatusHealthy }

// Checker runs evaluator health checks and keeps the health gauge current.
type Checker struct {
	manager *manager.Manager
	metrics *metrics.Metrics
	logger  *slog.Logger
	cron    *cron.Cron
}

// NewChecker builds a Checker over the evaluator manager. metrics may be
// nil when metrics are disabled.
func NewChecker(m *manager.Manager, mx *metrics.Metrics, logger *slog.Logger) *Checker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Checker{
		manager: m,
		metrics: mx,
		logger:  logger.With("component", "health.checker"),
	}
}

// Check snapshots the health of every loaded evaluator and updates the
// evaluator health gauge.
func (c *Checker) Check(ctx context.Context) Report {
	results := c.manager.HealthCheckAll(ctx)

	status := StatusHealthy
	if len(results) == 0 {
		status = StatusDegraded
	}
	for name, healthy := range results {
		if c.metrics != nil {
			c.metrics.SetEvaluatorHealth(name, healthy)
		}
		if !healthy {
			status = StatusDegraded
			c.logger.Warn("evaluator unhealthy", "evaluator", name)
		}
	}

	return Report{
		Status:     status,
		Evaluators: results,
		IsLoading:  c.manager.IsLoading(),
		Timestamp:  time.Now().UTC(),
	}
}

// StartSweep runs Check on the given cron schedule (e.g. "@every 1m")
// until StopSweep is called. An empty schedule disables the sweep.
func (c *Checker) StartSweep(schedule string) error {
	if schedule == "" {
		return nil
	}
	if c.cron != nil {
		return fmt.Errorf("health sweep already started")
	}

	runner := cron.New()
	if _, err := runner.AddFunc(schedule, func() {
		report := c.Check(context.Background())
		c.logger.Debug("health sweep completed",
			"status", report.Status,
			"evaluator_count", len(report.Evaluators),
		)
	}); err != nil {
		return fmt.Errorf("invalid health sweep schedule %q: %w", schedule, err)
	}

	c.cron = runner
	runner.Start()
	c.logger.Info("health sweep scheduled", "schedule", schedule)
	return nil
}

// StopSweep stops the scheduled sweep and waits for a running check to
// finish.
func (c *Checker) StopSweep() {
	if c.cron == nil {
		return
	}
	<-c.cron.Stop().Done()
	c.cron = nil
}
