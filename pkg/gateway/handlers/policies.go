package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"sentinel-hq/sentinel/pkg/policy"
	"sentinel-hq/sentinel/pkg/policy/store"
)

// Policies serves the policy CRUD endpoints over the configured store.
type Policies struct {
	store  store.Store
	logger *slog.Logger
}

// NewPolicies builds the policy CRUD handler.
func NewPolicies(s store.Store, logger *slog.Logger) *Policies {
	if logger == nil {
		logger = slog.Default()
	}
	return &Policies{
		store:  s,
		logger: logger.With("component", "gateway.policies"),
	}
}

// List handles GET /v1/policies. Supports ?provider= and ?enabled=true
// filtering.
func (h *Policies) List(w http.ResponseWriter, r *http.Request) {
	filter := store.Filter{Provider: r.URL.Query().Get("provider")}
	if v := r.URL.Query().Get("enabled"); v != "" {
		enabled, err := strconv.ParseBool(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, errTypeInvalidRequest, "enabled must be a boolean")
			return
		}
		filter.EnabledOnly = enabled
	}

	policies, err := h.store.List(r.Context(), filter)
	if err != nil {
		h.logger.Error("policy listing failed", "error", err)
		writeError(w, http.StatusInternalServerError, errTypeInternal, "failed to list policies")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"policies": policies,
		"count":    len(policies),
	})
}

// Get handles GET /v1/policies/{id}.
func (h *Policies) Get(w http.ResponseWriter, r *http.Request) {
	p, err := h.store.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, errTypeNotFound, err.Error())
			return
		}
		h.logger.Error("policy lookup failed", "error", err)
		writeError(w, http.StatusInternalServerError, errTypeInternal, "failed to load policy")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// Create handles POST /v1/policies.
func (h *Policies) Create(w http.ResponseWriter, r *http.Request) {
	var p policy.Policy
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeError(w, http.StatusBadRequest, errTypeInvalidRequest, "invalid JSON body: "+err.Error())
		return
	}
	h.put(w, r, &p, http.StatusCreated)
}

// Update handles PUT /v1/policies/{id}. The path ID wins over any ID in
// the body.
func (h *Policies) Update(w http.ResponseWriter, r *http.Request) {
	var p policy.Policy
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeError(w, http.StatusBadRequest, errTypeInvalidRequest, "invalid JSON body: "+err.Error())
		return
	}
	p.ID = r.PathValue("id")
	h.put(w, r, &p, http.StatusOK)
}

func (h *Policies) put(w http.ResponseWriter, r *http.Request, p *policy.Policy, okStatus int) {
	if err := h.store.Put(r.Context(), p); err != nil {
		switch {
		case errors.Is(err, store.ErrReadOnly):
			writeError(w, http.StatusForbidden, errTypeInvalidRequest, err.Error())
		case isValidationError(err):
			writeError(w, http.StatusBadRequest, errTypeInvalidRequest, err.Error())
		default:
			h.logger.Error("policy save failed", "policy_id", p.ID, "error", err)
			writeError(w, http.StatusInternalServerError, errTypeInternal, "failed to save policy")
		}
		return
	}

	h.logger.Info("policy saved", "policy_id", p.ID)
	writeJSON(w, okStatus, p)
}

// Delete handles DELETE /v1/policies/{id}.
func (h *Policies) Delete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := h.store.Delete(r.Context(), id); err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			writeError(w, http.StatusNotFound, errTypeNotFound, err.Error())
		case errors.Is(err, store.ErrReadOnly):
			writeError(w, http.StatusForbidden, errTypeInvalidRequest, err.Error())
		default:
			h.logger.Error("policy delete failed", "policy_id", id, "error", err)
			writeError(w, http.StatusInternalServerError, errTypeInternal, "failed to delete policy")
		}
		return
	}

	h.logger.Info("policy deleted", "policy_id", id)
	w.WriteHeader(http.StatusNoContent)
}

func isValidationError(err error) bool {
	return errors.Is(err, policy.ErrMissingID) ||
		errors.Is(err, policy.ErrMissingName) ||
		errors.Is(err, policy.ErrInvalidSeverity)
}
