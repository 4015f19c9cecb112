package aggregator

import "sentinel-hq/sentinel/pkg/evaluation"

// Report is the result of one comprehensive evaluation run. It is always a
// best-effort payload: sub-task failures are embedded under Error rather
// than replacing the report.
type Report struct {
	// TotalRequests is the size of the input batch.
	TotalRequests int `json:"total_requests"`

	// Evaluations maps evaluator name to its ordered result list, one
	// entry per request in batch order.
	Evaluations map[string][]*evaluation.EvaluationResult `json:"evaluations"`

	// Summary maps evaluator name to its computed summary statistics.
	Summary map[string]Summary `json:"summary"`

	// Timing maps "<evaluator>_ms" to that sub-task's elapsed time and
	// "total_ms" to the whole run's elapsed time.
	Timing map[string]float64 `json:"timing"`

	// Regression reports the status of the regression-comparison step.
	// Present only when the caller requested regression analysis; the
	// capability is currently deferred, so the status is always
	// "not_implemented".
	Regression map[string]any `json:"regression,omitempty"`

	// Error describes sub-task failures, if any occurred.
	Error string `json:"error,omitempty"`
}

// Summary holds per-evaluator pass-rate, score, and latency statistics.
type Summary struct {
	// TotalTests is the number of results produced by the evaluator.
	TotalTests int `json:"total_tests"`

	// PassedTests is the number of results with Passed=true.
	PassedTests int `json:"passed_tests"`

	// PassRate is PassedTests / TotalTests, in [0, 1].
	PassRate float64 `json:"pass_rate"`

	// AvgScore, MinScore, and MaxScore summarize the result scores.
	AvgScore float64 `json:"avg_score"`
	MinScore float64 `json:"min_score"`
	MaxScore float64 `json:"max_score"`

	// AvgLatencyMS is the mean per-result latency in milliseconds.
	AvgLatencyMS float64 `json:"avg_latency_ms"`
}

// summarize computes a Summary over a non-empty result list.
func summarize(results []*evaluation.EvaluationResult) Summary {
	s := Summary{
		TotalTests: len(results),
		MinScore:   results[0].Score,
		MaxScore:   results[0].Score,
	}

	var scoreSum, latencySum float64
	for _, r := range results {
		if r.Passed {
			s.PassedTests++
		}
		scoreSum += r.Score
		latencySum += r.LatencyMS
		if r.Score < s.MinScore {
			s.MinScore = r.Score
		}
		if r.Score > s.MaxScore {
			s.MaxScore = r.Score
		}
	}

	s.PassRate = float64(s.PassedTests) / float64(s.TotalTests)
	s.AvgScore = scoreSum / float64(s.TotalTests)
	s.AvgLatencyMS = latencySum / float64(s.TotalTests)
	return s
}
