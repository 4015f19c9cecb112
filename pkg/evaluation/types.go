package evaluation

// EvaluationRequest is the input to a single evaluate operation.
// It is constructed per call and never mutated after construction.
type EvaluationRequest struct {
	// InputText is the text under evaluation (typically the prompt).
	InputText string `json:"input_text"`

	// ExpectedOutput is the reference text for comparison-based
	// evaluators (e.g. semantic match). May be empty.
	ExpectedOutput string `json:"expected_output"`

	// ActualOutput is the model's actual response. May be empty for
	// request-side checks.
	ActualOutput string `json:"actual_output"`

	// Metadata carries evaluator-specific parameters such as thresholds.
	// Never nil after NewRequest.
	Metadata map[string]any `json:"metadata"`
}

// NewRequest constructs an EvaluationRequest with a non-nil metadata map.
func NewRequest(input, expected, actual string, metadata map[string]any) *EvaluationRequest {
	if metadata == nil {
		metadata = make(map[string]any)
	}
	return &EvaluationRequest{
		InputText:      input,
		ExpectedOutput: expected,
		ActualOutput:   actual,
		Metadata:       metadata,
	}
}

// EvaluationResult is the outcome of a single evaluate operation.
//
// By convention Score is in [0, 1] with 0.0 worst and 1.0 best, though the
// exact semantics are evaluator-defined. A result with Error set always has
// Passed=false.
type EvaluationResult struct {
	// Score is the evaluator-defined quality or safety score.
	Score float64 `json:"score"`

	// Passed indicates whether the evaluation met its threshold.
	Passed bool `json:"passed"`

	// Details is an evaluator-defined diagnostic payload.
	Details map[string]any `json:"details"`

	// LatencyMS is the time spent producing this result, in milliseconds.
	LatencyMS float64 `json:"latency_ms"`

	// Error is set only when the evaluator failed internally and returned
	// a degraded result instead of aborting.
	Error string `json:"error,omitempty"`
}

// ModelInfo describes an evaluator's backing model or resource. It is
// produced on demand from the evaluator's current state and not persisted.
type ModelInfo struct {
	// Name is the evaluator's stable registry name.
	Name string `json:"name"`

	// Version is the evaluator implementation version.
	Version string `json:"version"`

	// SizeMB is the estimated on-disk size of the backing model.
	SizeMB float64 `json:"size_mb"`

	// Loaded reports whether the evaluator is currently loaded.
	Loaded bool `json:"loaded"`

	// MemoryUsageMB is the estimated resident memory when loaded.
	MemoryUsageMB float64 `json:"memory_usage_mb"`

	// Metadata carries evaluator-specific descriptive fields.
	Metadata map[string]any `json:"metadata"`
}
