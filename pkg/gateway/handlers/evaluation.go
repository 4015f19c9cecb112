package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"sentinel-hq/sentinel/pkg/evaluation"
	"sentinel-hq/sentinel/pkg/evaluation/aggregator"
)

// ComprehensiveRequest is the body of POST /v1/evaluation/comprehensive.
type ComprehensiveRequest struct {
	// Requests is the non-empty evaluation batch.
	Requests []*evaluation.EvaluationRequest `json:"requests"`

	// IncludeRegression requests a regression comparison against the
	// baseline results.
	IncludeRegression bool `json:"include_regression"`

	// Baseline supplies the results to compare against.
	Baseline []*evaluation.EvaluationResult `json:"baseline,omitempty"`
}

// Evaluation serves the comprehensive evaluation endpoint.
type Evaluation struct {
	aggregator *aggregator.Aggregator
	logger     *slog.Logger
}

// NewEvaluation builds the comprehensive evaluation handler.
func NewEvaluation(a *aggregator.Aggregator, logger *slog.Logger) *Evaluation {
	if logger == nil {
		logger = slog.Default()
	}
	return &Evaluation{
		aggregator: a,
		logger:     logger.With("component", "gateway.evaluation"),
	}
}

// ServeHTTP handles POST /v1/evaluation/comprehensive.
func (h *Evaluation) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req ComprehensiveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, errTypeInvalidRequest, "invalid JSON body: "+err.Error())
		return
	}

	report, err := h.aggregator.EvaluateComprehensive(r.Context(), req.Requests, req.IncludeRegression, req.Baseline)
	if err != nil {
		if errors.Is(err, aggregator.ErrEmptyBatch) {
			writeError(w, http.StatusBadRequest, errTypeInvalidRequest, err.Error())
			return
		}
		h.logger.Error("comprehensive evaluation failed", "error", err)
		writeError(w, http.StatusInternalServerError, errTypeInternal, "evaluation failed")
		return
	}

	writeJSON(w, http.StatusOK, report)
}
