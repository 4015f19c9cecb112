package manager

import (
	"errors"
	"fmt"
)

var (
	// ErrNilEvaluator is returned when the registry is constructed with a
	// nil evaluator. Fatal to startup.
	ErrNilEvaluator = errors.New("nil evaluator in registry")

	// ErrDuplicateEvaluator is returned when two evaluators share a
	// registry name. Fatal to startup.
	ErrDuplicateEvaluator = errors.New("duplicate evaluator name")
)

// DuplicateEvaluatorError wraps ErrDuplicateEvaluator with the offending name.
func DuplicateEvaluatorError(name string) error {
	return fmt.Errorf("%w: %q", ErrDuplicateEvaluator, name)
}
