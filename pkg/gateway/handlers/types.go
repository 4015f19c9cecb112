package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// errorPayload is the JSON error envelope returned by every endpoint.
type errorPayload struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// Error type values used across handlers.
const (
	errTypeInvalidRequest  = "invalid_request"
	errTypeNotFound        = "not_found"
	errTypePolicyViolation = "policy_violation"
	errTypeUnavailable     = "unavailable"
	errTypeUpstream        = "upstream_error"
	errTypeInternal        = "internal_error"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, errType, msg string) {
	writeJSON(w, status, errorPayload{Error: errorDetail{Type: errType, Message: msg}})
}
