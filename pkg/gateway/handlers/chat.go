package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"sentinel-hq/sentinel/pkg/policy"
	"sentinel-hq/sentinel/pkg/policy/engine"
	"sentinel-hq/sentinel/pkg/policy/store"
	"sentinel-hq/sentinel/pkg/providers"
	"sentinel-hq/sentinel/pkg/telemetry/metrics"
)

// DecisionHeader carries the policy decision on every chat completion
// response.
const DecisionHeader = "X-Sentinel-Decision"

// ChatCompletionRequest is the chat endpoint's request body: a chat
// completion plus an optional provider selector.
type ChatCompletionRequest struct {
	providers.ChatRequest

	// Provider names the upstream to forward to; empty uses the default.
	Provider string `json:"provider,omitempty"`
}

// ChatCompletionResponse wraps the upstream response with the policy
// outcome.
type ChatCompletionResponse struct {
	providers.ChatResponse

	// Policy reports the decision and, for warn decisions, the
	// violations that produced it.
	Policy PolicyOutcome `json:"policy"`
}

// PolicyOutcome is the policy section of a chat completion response.
type PolicyOutcome struct {
	Decision   policy.Decision    `json:"decision"`
	Violations []policy.Violation `json:"violations,omitempty"`
}

// Chat enforces policies on chat completion requests before forwarding
// them upstream.
type Chat struct {
	engine   *engine.Engine
	store    store.Store
	registry *providers.Registry
	metrics  *metrics.Metrics
	logger   *slog.Logger
}

// NewChat builds the chat completions handler. metrics may be nil.
func NewChat(e *engine.Engine, s store.Store, r *providers.Registry, mx *metrics.Metrics, logger *slog.Logger) *Chat {
	if logger == nil {
		logger = slog.Default()
	}
	return &Chat{
		engine:   e,
		store:    s,
		registry: r,
		metrics:  mx,
		logger:   logger.With("component", "gateway.chat"),
	}
}

// ServeHTTP handles POST /v1/chat/completions.
//
// Enabled policies scoped to the selected provider are evaluated against
// the last user message. Block rejects the request with 403 and the
// violation list; warn forwards but reports the violations; allow forwards
// cleanly.
func (h *Chat) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ctx := r.Context()

	var req ChatCompletionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, errTypeInvalidRequest, "invalid JSON body: "+err.Error())
		return
	}
	if len(req.Messages) == 0 {
		writeError(w, http.StatusBadRequest, errTypeInvalidRequest, "messages must not be empty")
		return
	}

	provider, err := h.registry.Get(req.Provider)
	if err != nil {
		writeError(w, http.StatusBadRequest, errTypeInvalidRequest, err.Error())
		return
	}

	policies, err := h.store.List(ctx, store.Filter{
		Provider:    provider.Name(),
		EnabledOnly: true,
	})
	if err != nil {
		h.logger.Error("policy listing failed", "error", err)
		writeError(w, http.StatusInternalServerError, errTypeInternal, "failed to load policies")
		return
	}

	result, err := h.engine.EvaluatePolicies(ctx, policies, engine.Request{
		InputText: req.UserText(),
	})
	if err != nil {
		if errors.Is(err, engine.ErrEvaluatorUnavailable) {
			writeError(w, http.StatusServiceUnavailable, errTypeUnavailable, err.Error())
			return
		}
		h.logger.Error("policy evaluation failed", "error", err)
		writeError(w, http.StatusInternalServerError, errTypeInternal, "policy evaluation failed")
		return
	}

	if h.metrics != nil {
		labels := make([]metrics.ViolationLabel, len(result.Violations))
		for i, v := range result.Violations {
			labels[i] = metrics.ViolationLabel{PolicyID: v.PolicyID, Severity: string(v.Severity)}
		}
		h.metrics.RecordEvaluation(string(result.Decision), labels)
		defer func() {
			h.metrics.RecordRequest(provider.Name(), string(result.Decision), time.Since(start))
		}()
	}

	w.Header().Set(DecisionHeader, string(result.Decision))

	if result.Decision == policy.DecisionBlock {
		h.logger.Warn("request blocked",
			"provider", provider.Name(),
			"violation_count", len(result.Violations),
		)
		writeJSON(w, http.StatusForbidden, map[string]any{
			"error": errorDetail{
				Type:    errTypePolicyViolation,
				Message: "request blocked by policy",
			},
			"decision":   result.Decision,
			"violations": result.Violations,
		})
		return
	}

	upstream, err := provider.ChatCompletion(ctx, req.ChatRequest)
	if err != nil {
		h.logger.Error("upstream call failed", "provider", provider.Name(), "error", err)
		writeError(w, http.StatusBadGateway, errTypeUpstream, err.Error())
		return
	}

	resp := ChatCompletionResponse{
		ChatResponse: *upstream,
		Policy:       PolicyOutcome{Decision: result.Decision},
	}
	if result.Decision == policy.DecisionWarn {
		resp.Policy.Violations = result.Violations
	}
	writeJSON(w, http.StatusOK, resp)
}
