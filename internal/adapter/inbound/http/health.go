package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"runtime"
)

// HealthResponse is the JSON response from the /health endpoint.
type HealthResponse struct {
	Status       string            `json:"status"` // "healthy" or "unhealthy"
	Checks       map[string]string `json:"checks"`
	RulesVersion string            `json:"rules_version,omitempty"`
	Version      string            `json:"version,omitempty"`
}

// HealthChecker verifies component health.
type HealthChecker struct {
	rulesVersion string
	vendorCount  int
	oracleReady  bool
	auditOutput  string
	version      string
}

// NewHealthChecker creates a HealthChecker describing the wired components.
func NewHealthChecker(rulesVersion string, vendorCount int, oracleReady bool, auditOutput, version string) *HealthChecker {
	return &HealthChecker{
		rulesVersion: rulesVersion,
		vendorCount:  vendorCount,
		oracleReady:  oracleReady,
		auditOutput:  auditOutput,
		version:      version,
	}
}

// Check reports the component status. The engine is pure and in-process,
// so an empty policy table is the only way the service can be unhealthy.
func (h *HealthChecker) Check() HealthResponse {
	checks := make(map[string]string)
	healthy := true

	if h.vendorCount > 0 {
		checks["rules"] = fmt.Sprintf("ok: %d vendors", h.vendorCount)
	} else {
		checks["rules"] = "no vendors loaded"
		healthy = false
	}

	if h.oracleReady {
		checks["oracle"] = "ok"
	} else {
		checks["oracle"] = "not configured"
	}

	if h.auditOutput != "" {
		checks["audit"] = h.auditOutput
	} else {
		checks["audit"] = "not configured"
	}

	checks["goroutines"] = fmt.Sprintf("%d", runtime.NumGoroutine())

	status := "healthy"
	if !healthy {
		status = "unhealthy"
	}

	return HealthResponse{
		Status:       status,
		Checks:       checks,
		RulesVersion: h.rulesVersion,
		Version:      h.version,
	}
}

// Handler returns an HTTP handler for the health endpoint.
func (h *HealthChecker) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		health := h.Check()

		w.Header().Set("Content-Type", "application/json")
		if health.Status != "healthy" {
			w.WriteHeader(http.StatusServiceUnavailable) // 503
		} else {
			w.WriteHeader(http.StatusOK) // 200
		}

		_ = json.NewEncoder(w).Encode(health)
	})
}

// healthHandler returns an HTTP handler that responds with 200 OK for health checks.
func healthHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
}
