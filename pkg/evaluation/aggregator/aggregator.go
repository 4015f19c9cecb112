package aggregator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"sentinel-hq/sentinel/pkg/evaluation"
	"sentinel-hq/sentinel/pkg/evaluation/manager"
)

// ErrEmptyBatch is returned when EvaluateComprehensive is called with no
// requests. No partial work is performed.
var ErrEmptyBatch = errors.New("no evaluation requests provided")

// maxConcurrentEvaluators bounds how many evaluator sub-tasks run at once.
const maxConcurrentEvaluators = 4

// Aggregator runs batches of evaluation requests across all loaded
// primary-capable evaluators.
type Aggregator struct {
	manager *manager.Manager
	logger  *slog.Logger
}

// New creates an Aggregator over the given evaluator manager.
func New(m *manager.Manager, logger *slog.Logger) *Aggregator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Aggregator{
		manager: m,
		logger:  logger.With("component", "evaluation.aggregator"),
	}
}

// EvaluateComprehensive runs every request against every loaded evaluator
// that exposes a primary evaluate operation.
//
// Sub-tasks run concurrently per evaluator; within a sub-task requests are
// evaluated sequentially in batch order. A sub-task failure is recorded in
// the report's Error field together with any results collected before the
// failure; the other sub-tasks always run to completion.
//
// If includeRegression is set and baseline results are supplied, the report
// carries an explicit not-implemented marker for the regression step.
func (a *Aggregator) EvaluateComprehensive(
	ctx context.Context,
	requests []*evaluation.EvaluationRequest,
	includeRegression bool,
	baseline []*evaluation.EvaluationResult,
) (*Report, error) {
	if len(requests) == 0 {
		return nil, ErrEmptyBatch
	}

	start := time.Now()
	report := &Report{
		TotalRequests: len(requests),
		Evaluations:   make(map[string][]*evaluation.EvaluationResult),
		Summary:       make(map[string]Summary),
		Timing:        make(map[string]float64),
	}

	var (
		mu       sync.Mutex
		taskErrs []string
	)

	var g errgroup.Group
	g.SetLimit(maxConcurrentEvaluators)

	for _, e := range a.manager.Evaluators() {
		primary, ok := e.(evaluation.PrimaryEvaluator)
		if !ok || !e.Loaded() {
			continue
		}

		g.Go(func() error {
			name := primary.Name()
			taskStart := time.Now()

			results := make([]*evaluation.EvaluationResult, 0, len(requests))
			var taskErr error
			for _, req := range requests {
				result, err := primary.EvaluatePrimary(ctx, req)
				if err != nil {
					taskErr = fmt.Errorf("evaluator %q: %w", name, err)
					break
				}
				results = append(results, result)
			}

			mu.Lock()
			report.Evaluations[name] = results
			report.Timing[name+"_ms"] = float64(time.Since(taskStart).Microseconds()) / 1000.0
			if taskErr != nil {
				taskErrs = append(taskErrs, taskErr.Error())
			}
			mu.Unlock()
			return nil
		})
	}

	// Sub-task errors are collected into the report, never returned.
	_ = g.Wait()

	for name, results := range report.Evaluations {
		if len(results) == 0 {
			continue
		}
		report.Summary[name] = summarize(results)
	}

	if includeRegression && baseline != nil {
		// Regression comparison against a baseline is a deferred
		// capability; surface that explicitly instead of silently
		// ignoring the flag.
		report.Regression = map[string]any{"status": "not_implemented"}
	}

	if len(taskErrs) > 0 {
		sort.Strings(taskErrs)
		report.Error = strings.Join(taskErrs, "; ")
	}

	report.Timing["total_ms"] = float64(time.Since(start).Microseconds()) / 1000.0

	a.logger.Info("comprehensive evaluation completed",
		"requests", len(requests),
		"evaluators", len(report.Evaluations),
		"duration", time.Since(start),
		"errors", len(taskErrs),
	)

	return report, nil
}
