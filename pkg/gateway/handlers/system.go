package handlers

import (
	"net/http"

	"sentinel-hq/sentinel/pkg/evaluation/manager"
	"sentinel-hq/sentinel/pkg/providers"
	"sentinel-hq/sentinel/pkg/telemetry/health"
)

// System serves the introspection endpoints: system info and health.
type System struct {
	manager  *manager.Manager
	checker  *health.Checker
	registry *providers.Registry
	version  string
}

// NewSystem builds the system introspection handler.
func NewSystem(m *manager.Manager, c *health.Checker, r *providers.Registry, version string) *System {
	return &System{
		manager:  m,
		checker:  c,
		registry: r,
		version:  version,
	}
}

// Info handles GET /v1/system/info: version, evaluator snapshots, and
// configured providers.
func (h *System) Info(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"version":    h.version,
		"evaluators": h.manager.SystemInfo(),
		"providers":  h.registry.Names(),
	})
}

// Health handles GET /v1/system/health. Degraded systems answer 503 so
// load balancers can rotate the instance out.
func (h *System) Health(w http.ResponseWriter, r *http.Request) {
	report := h.checker.Check(r.Context())

	status := http.StatusOK
	if !report.Healthy() {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, report)
}
