package policy

import (
	"time"

	"github.com/google/uuid"
)

// Decision is the engine's final verdict for a request.
type Decision string

const (
	// DecisionAllow lets the request proceed unchanged.
	DecisionAllow Decision = "allow"

	// DecisionWarn lets the request proceed but flags the violations.
	DecisionWarn Decision = "warn"

	// DecisionBlock rejects the request.
	DecisionBlock Decision = "block"
)

// Severity orders policies and their violations from least to most severe.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Rank returns the severity's position in the low < medium < high <
// critical ordering. Unknown severities rank above low so that the
// aggregation rule treats them fail-closed.
func (s Severity) Rank() int {
	switch s {
	case SeverityLow:
		return 0
	case SeverityMedium:
		return 1
	case SeverityHigh:
		return 2
	case SeverityCritical:
		return 3
	default:
		return 1
	}
}

// Valid reports whether s is one of the four defined severities.
func (s Severity) Valid() bool {
	switch s {
	case SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical:
		return true
	}
	return false
}

// Condition type names recognized by the evaluation engine. A condition
// whose type is not listed here is ignored during evaluation and surfaced
// in the result metadata.
const (
	ConditionKeywordFilter = "keyword_filter"
	ConditionContentSafety = "content_safety"
	ConditionSemantic      = "semantic"
)

// Condition binds a condition type to its evaluator parameters. Conditions
// are stored as an ordered list; the engine evaluates them in declared
// order and that order is observable in the resulting violation list.
type Condition struct {
	// Type names the evaluator capability this condition maps to, e.g.
	// "keyword_filter".
	Type string `json:"type" yaml:"type"`

	// Parameters is forwarded verbatim to the evaluator as request
	// metadata (thresholds and the like). May be nil.
	Parameters map[string]any `json:"parameters,omitempty" yaml:"parameters,omitempty"`
}

// Actions describes what a policy does when its conditions are violated.
type Actions struct {
	// Type is "block" or "warn". Any other or missing value is treated
	// as block (fail-closed).
	Type string `json:"type" yaml:"type"`
}

// Policy is a named rule combining ordered conditions with an action and a
// severity. The engine only reads policies; they are created and updated
// through a Store.
type Policy struct {
	// ID uniquely identifies the policy.
	ID string `json:"id" yaml:"id"`

	// Name is the human-readable policy name.
	Name string `json:"name" yaml:"name"`

	// Description explains the policy's intent.
	Description string `json:"description" yaml:"description"`

	// Severity is carried into every violation this policy produces and
	// drives the multi-policy decision rule.
	Severity Severity `json:"severity" yaml:"severity"`

	// Enabled gates the policy; a disabled policy always evaluates to
	// allow with zero violations.
	Enabled bool `json:"enabled" yaml:"enabled"`

	// Conditions are evaluated in declared order.
	Conditions []Condition `json:"conditions" yaml:"conditions"`

	// Actions selects the per-policy decision on violation.
	Actions Actions `json:"actions" yaml:"actions"`

	// Provider scopes the policy to an upstream provider; empty means
	// all providers.
	Provider string `json:"provider" yaml:"provider"`

	CreatedAt time.Time `json:"created_at" yaml:"created_at,omitempty"`
	UpdatedAt time.Time `json:"updated_at" yaml:"updated_at,omitempty"`
}

// Violation records that one policy condition failed for one request.
// Violations are transient; they exist only inside one evaluation's result.
type Violation struct {
	// ID uniquely identifies this violation instance.
	ID string `json:"id"`

	// PolicyID and PolicyName reference the originating policy.
	PolicyID   string `json:"policy_id"`
	PolicyName string `json:"policy_name"`

	// Reason is a human-readable description of what failed.
	Reason string `json:"reason"`

	// Severity is the originating policy's severity.
	Severity Severity `json:"severity"`

	// Details is the evaluator-supplied diagnostic payload.
	Details map[string]any `json:"details"`

	// Timestamp is when the violation was recorded.
	Timestamp time.Time `json:"timestamp"`
}

// NewViolation builds a Violation for the given policy with a fresh ID.
func NewViolation(p *Policy, reason string, details map[string]any) Violation {
	if details == nil {
		details = make(map[string]any)
	}
	return Violation{
		ID:         uuid.NewString(),
		PolicyID:   p.ID,
		PolicyName: p.Name,
		Reason:     reason,
		Severity:   p.Severity,
		Details:    details,
		Timestamp:  time.Now().UTC(),
	}
}

// EvaluationResult is the outcome of evaluating one policy or a policy set
// against a request.
type EvaluationResult struct {
	// Decision is the final verdict.
	Decision Decision `json:"decision"`

	// Violations lists every condition failure, in condition order
	// within a policy and policy order across policies.
	Violations []Violation `json:"violations"`

	// Metadata carries evaluation context such as the policy count or a
	// disabled-policy marker.
	Metadata map[string]any `json:"metadata"`

	// Timestamp is when the evaluation completed.
	Timestamp time.Time `json:"timestamp"`
}
