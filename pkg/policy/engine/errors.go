package engine

import (
	"errors"
	"fmt"
)

var (
	// ErrEvaluatorUnavailable is returned when a policy condition requires
	// an evaluator that is not registered or not loaded. This is an
	// engine-level failure for the caller to handle; it is never
	// downgraded to a policy violation or a silent pass.
	ErrEvaluatorUnavailable = errors.New("evaluator unavailable")
)

// UnavailableError wraps ErrEvaluatorUnavailable with the condition type
// that needed the evaluator.
func UnavailableError(conditionType string) error {
	return fmt.Errorf("condition %q: %w", conditionType, ErrEvaluatorUnavailable)
}
