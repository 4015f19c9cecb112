package evaluation

import (
	"errors"
	"fmt"
)

var (
	// ErrNotLoaded is returned when an evaluate operation is invoked on an
	// evaluator that has not been loaded. Callers must treat this as a
	// hard failure, never as a passed or failed evaluation.
	ErrNotLoaded = errors.New("evaluator not loaded")
)

// NotLoadedError wraps ErrNotLoaded with the evaluator's name.
func NotLoadedError(name string) error {
	return fmt.Errorf("evaluator %q: %w", name, ErrNotLoaded)
}

// Degraded builds the degraded EvaluationResult an evaluator returns when
// its operation failed internally: score 0, passed false, error recorded.
func Degraded(err error, latencyMS float64) *EvaluationResult {
	return &EvaluationResult{
		Score:     0.0,
		Passed:    false,
		LatencyMS: latencyMS,
		Error:     err.Error(),
		Details: map[string]any{
			"error": err.Error(),
		},
	}
}
