package evaluation

import "context"

// Evaluator is the base capability contract implemented by every pluggable
// evaluator. Implementations must be safe for concurrent use after Load.
//
// Typed evaluate operations (see the capability interfaces below) must catch
// their own internal failures and return a degraded EvaluationResult
// (score 0, passed false, error set) rather than letting the failure escape.
// The one exception is the not-loaded precondition, which is signaled as a
// hard error wrapping ErrNotLoaded.
type Evaluator interface {
	// Name returns the evaluator's stable registry name.
	Name() string

	// Load acquires the evaluator's resources. Idempotent when already
	// loaded. Returns an error only if required resources cannot be
	// acquired.
	Load(ctx context.Context) error

	// Unload releases the evaluator's resources. Idempotent when already
	// unloaded.
	Unload(ctx context.Context) error

	// Loaded reports whether the evaluator is currently loaded.
	Loaded() bool

	// HealthCheck reports whether the evaluator is operational. It must
	// not panic and returns false on any internal failure.
	HealthCheck(ctx context.Context) bool

	// ModelInfo returns a snapshot describing the evaluator's backing
	// model and current state.
	ModelInfo() ModelInfo
}

// SimilarityEvaluator scores how semantically close an output is to an
// expected reference.
type SimilarityEvaluator interface {
	Evaluator

	// EvaluateSemanticMatch compares InputText (or ActualOutput) against
	// ExpectedOutput and scores their similarity.
	EvaluateSemanticMatch(ctx context.Context, req *EvaluationRequest) (*EvaluationResult, error)
}

// EfficiencyEvaluator scores response efficiency from latency and
// input/output shape heuristics.
type EfficiencyEvaluator interface {
	Evaluator

	// EvaluateEfficiency scores token efficiency and response quality.
	EvaluateEfficiency(ctx context.Context, req *EvaluationRequest) (*EvaluationResult, error)
}

// SafetyEvaluator classifies content toxicity.
type SafetyEvaluator interface {
	Evaluator

	// EvaluateContentSafety scores the toxicity of InputText against a
	// configurable threshold.
	EvaluateContentSafety(ctx context.Context, req *EvaluationRequest) (*EvaluationResult, error)
}

// KeywordEvaluator matches banned keywords and patterns.
type KeywordEvaluator interface {
	Evaluator

	// EvaluateKeywordFilter checks InputText against the banned keyword
	// and pattern lists.
	EvaluateKeywordFilter(ctx context.Context, req *EvaluationRequest) (*EvaluationResult, error)
}

// PrimaryEvaluator is implemented by evaluators that expose a single
// headline evaluate operation suitable for batch aggregation. Currently the
// similarity and efficiency evaluators qualify.
type PrimaryEvaluator interface {
	Evaluator

	// EvaluatePrimary runs the evaluator's headline operation.
	EvaluatePrimary(ctx context.Context, req *EvaluationRequest) (*EvaluationResult, error)
}
