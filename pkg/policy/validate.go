package policy

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingID is returned for a policy without an ID.
	ErrMissingID = errors.New("policy id is required")

	// ErrMissingName is returned for a policy without a name.
	ErrMissingName = errors.New("policy name is required")

	// ErrInvalidSeverity is returned for a severity outside
	// low/medium/high/critical.
	ErrInvalidSeverity = errors.New("invalid policy severity")
)

// recognizedConditionTypes is the set of condition types currently wired to
// an evaluator. Unknown types are legal in a stored policy (forward
// compatibility) but Validate reports them so misconfigurations are visible
// before the engine quietly skips them.
var recognizedConditionTypes = map[string]struct{}{
	ConditionKeywordFilter: {},
	ConditionContentSafety: {},
	ConditionSemantic:      {},
}

// RecognizedConditionType reports whether the engine has an evaluator wired
// for the given condition type.
func RecognizedConditionType(t string) bool {
	_, ok := recognizedConditionTypes[t]
	return ok
}

// Validate checks a policy's structural invariants. It returns the first
// problem found, or nil for a well-formed policy.
func Validate(p *Policy) error {
	if p.ID == "" {
		return ErrMissingID
	}
	if p.Name == "" {
		return ErrMissingName
	}
	if !p.Severity.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidSeverity, p.Severity)
	}
	for i, c := range p.Conditions {
		if c.Type == "" {
			return fmt.Errorf("condition %d: type is required", i)
		}
	}
	return nil
}

// UnrecognizedConditions returns the condition types in p that no evaluator
// implements, in declared order.
func UnrecognizedConditions(p *Policy) []string {
	var unknown []string
	for _, c := range p.Conditions {
		if !RecognizedConditionType(c.Type) {
			unknown = append(unknown, c.Type)
		}
	}
	return unknown
}
