package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"sentinel-hq/sentinel/pkg/evaluation"
	"sentinel-hq/sentinel/pkg/evaluation/manager"
	"sentinel-hq/sentinel/pkg/policy"
)

// Request is the ambient request data a policy set is evaluated against.
// InputText is the primary text; Prompt is a fallback used when InputText
// is empty. ExpectedOutput is only consulted by semantic conditions.
type Request struct {
	InputText      string `json:"input_text"`
	Prompt         string `json:"prompt"`
	ExpectedOutput string `json:"expected_output"`
}

// Text returns the text a condition evaluates: InputText, falling back to
// Prompt.
func (r Request) Text() string {
	if r.InputText != "" {
		return r.InputText
	}
	return r.Prompt
}

// Engine evaluates policies against requests using the evaluators owned by
// a manager. The engine holds no mutable state of its own and is safe for
// concurrent use.
type Engine struct {
	manager *manager.Manager
	logger  *slog.Logger
}

// New constructs an Engine over the given evaluator manager.
func New(m *manager.Manager, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		manager: m,
		logger:  logger.With("component", "policy.engine"),
	}
}

// EvaluatePolicy evaluates a single policy against the request.
//
// A disabled policy is terminal: allow, no violations, no evaluator calls.
// Otherwise each condition is evaluated in the policy's declared order and
// every failed evaluation appends one violation in that same order. The
// returned decision applies the policy's action to the violation set.
//
// An error is returned only when a condition's evaluator is unavailable;
// evaluator-internal failures come back as degraded results and count as
// violations.
func (e *Engine) EvaluatePolicy(ctx context.Context, p *policy.Policy, req Request) (*policy.EvaluationResult, error) {
	if !p.Enabled {
		return &policy.EvaluationResult{
			Decision:   policy.DecisionAllow,
			Violations: []policy.Violation{},
			Metadata:   map[string]any{"reason": "policy disabled"},
			Timestamp:  time.Now().UTC(),
		}, nil
	}

	var (
		violations []policy.Violation
		skipped    []string
	)

	for _, cond := range p.Conditions {
		var (
			failed  bool
			reason  string
			details map[string]any
			err     error
		)

		switch cond.Type {
		case policy.ConditionKeywordFilter:
			failed, reason, details, err = e.evaluateKeywordFilter(ctx, cond, req)
		case policy.ConditionContentSafety:
			failed, reason, details, err = e.evaluateContentSafety(ctx, cond, req)
		case policy.ConditionSemantic:
			failed, reason, details, err = e.evaluateSemantic(ctx, cond, req)
		default:
			// Forward compatibility: unknown condition types don't fail
			// the evaluation, but they are surfaced rather than silently
			// dropped.
			e.logger.Warn("skipping unrecognized condition type",
				"policy_id", p.ID,
				"condition_type", cond.Type,
			)
			skipped = append(skipped, cond.Type)
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("policy %q: %w", p.ID, err)
		}
		if failed {
			violations = append(violations, policy.NewViolation(p, reason, details))
		}
	}

	metadata := map[string]any{
		"policy_id":   p.ID,
		"policy_name": p.Name,
	}
	if len(skipped) > 0 {
		metadata["skipped_condition_types"] = skipped
	}

	return &policy.EvaluationResult{
		Decision:   DecideForPolicy(p, violations),
		Violations: violations,
		Metadata:   metadata,
		Timestamp:  time.Now().UTC(),
	}, nil
}

// EvaluatePolicies evaluates each policy independently and combines all
// violations, in policy list order, under the overall decision rule. The
// per-policy decisions are discarded; only violations propagate.
//
// An empty policy list evaluates to allow with metadata noting that no
// policies matched.
func (e *Engine) EvaluatePolicies(ctx context.Context, policies []*policy.Policy, req Request) (*policy.EvaluationResult, error) {
	if len(policies) == 0 {
		return &policy.EvaluationResult{
			Decision:   policy.DecisionAllow,
			Violations: []policy.Violation{},
			Metadata:   map[string]any{"reason": "no policies matched"},
			Timestamp:  time.Now().UTC(),
		}, nil
	}

	var all []policy.Violation
	for _, p := range policies {
		result, err := e.EvaluatePolicy(ctx, p, req)
		if err != nil {
			return nil, err
		}
		all = append(all, result.Violations...)
	}

	decision := OverallDecision(all)
	e.logger.Info("policies evaluated",
		"policy_count", len(policies),
		"violation_count", len(all),
		"decision", decision,
	)

	return &policy.EvaluationResult{
		Decision:   decision,
		Violations: all,
		Metadata:   map[string]any{"total_policies": len(policies)},
		Timestamp:  time.Now().UTC(),
	}, nil
}

func (e *Engine) evaluateKeywordFilter(ctx context.Context, cond policy.Condition, req Request) (bool, string, map[string]any, error) {
	text := req.Text()
	if text == "" {
		return false, "", nil, nil
	}

	eval, err := e.keywordEvaluator()
	if err != nil {
		return false, "", nil, err
	}

	result, err := eval.EvaluateKeywordFilter(ctx, evaluation.NewRequest(text, "", "", cond.Parameters))
	if err != nil {
		return false, "", nil, fmt.Errorf("condition %q: %w", policy.ConditionKeywordFilter, err)
	}
	if result.Passed {
		return false, "", nil, nil
	}

	reason := fmt.Sprintf("keyword filter violation: %v", result.Details["found_keywords"])
	return true, reason, result.Details, nil
}

func (e *Engine) evaluateContentSafety(ctx context.Context, cond policy.Condition, req Request) (bool, string, map[string]any, error) {
	text := req.Text()
	if text == "" {
		return false, "", nil, nil
	}

	eval, err := e.safetyEvaluator()
	if err != nil {
		return false, "", nil, err
	}

	result, err := eval.EvaluateContentSafety(ctx, evaluation.NewRequest(text, "", "", cond.Parameters))
	if err != nil {
		return false, "", nil, fmt.Errorf("condition %q: %w", policy.ConditionContentSafety, err)
	}
	if result.Passed {
		return false, "", nil, nil
	}

	toxicity, _ := result.Details["max_toxicity"].(float64)
	reason := fmt.Sprintf("content safety violation: toxicity score %.2f", toxicity)
	return true, reason, result.Details, nil
}

func (e *Engine) evaluateSemantic(ctx context.Context, cond policy.Condition, req Request) (bool, string, map[string]any, error) {
	text := req.Text()
	// A semantic check needs both sides of the comparison.
	if text == "" || req.ExpectedOutput == "" {
		return false, "", nil, nil
	}

	eval, err := e.similarityEvaluator()
	if err != nil {
		return false, "", nil, err
	}

	result, err := eval.EvaluateSemanticMatch(ctx, evaluation.NewRequest(text, req.ExpectedOutput, "", cond.Parameters))
	if err != nil {
		return false, "", nil, fmt.Errorf("condition %q: %w", policy.ConditionSemantic, err)
	}
	if result.Passed {
		return false, "", nil, nil
	}

	return true, "semantic similarity violation", result.Details, nil
}

func (e *Engine) keywordEvaluator() (evaluation.KeywordEvaluator, error) {
	eval, ok := e.manager.Get(policy.ConditionKeywordFilter)
	if !ok {
		return nil, UnavailableError(policy.ConditionKeywordFilter)
	}
	typed, ok := eval.(evaluation.KeywordEvaluator)
	if !ok || !typed.Loaded() {
		return nil, UnavailableError(policy.ConditionKeywordFilter)
	}
	return typed, nil
}

func (e *Engine) safetyEvaluator() (evaluation.SafetyEvaluator, error) {
	eval, ok := e.manager.Get(policy.ConditionContentSafety)
	if !ok {
		return nil, UnavailableError(policy.ConditionContentSafety)
	}
	typed, ok := eval.(evaluation.SafetyEvaluator)
	if !ok || !typed.Loaded() {
		return nil, UnavailableError(policy.ConditionContentSafety)
	}
	return typed, nil
}

func (e *Engine) similarityEvaluator() (evaluation.SimilarityEvaluator, error) {
	eval, ok := e.manager.Get(policy.ConditionSemantic)
	if !ok {
		return nil, UnavailableError(policy.ConditionSemantic)
	}
	typed, ok := eval.(evaluation.SimilarityEvaluator)
	if !ok || !typed.Loaded() {
		return nil, UnavailableError(policy.ConditionSemantic)
	}
	return typed, nil
}
