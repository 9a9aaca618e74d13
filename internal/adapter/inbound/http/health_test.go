package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestHealthChecker_Healthy(t *testing.T) {
	hc := NewHealthChecker("v-test", 10, true, "stdout", "1.2.3")

	health := hc.Check()

	if health.Status != "healthy" {
		t.Errorf("status = %q, want healthy", health.Status)
	}
	if health.RulesVersion != "v-test" {
		t.Errorf("rules_version = %q", health.RulesVersion)
	}
	if health.Checks["oracle"] != "ok" {
		t.Errorf("oracle check = %q", health.Checks["oracle"])
	}
	if health.Checks["rules"] != "ok: 10 vendors" {
		t.Errorf("rules check = %q", health.Checks["rules"])
	}
}

func TestHealthChecker_NoVendorsIsUnhealthy(t *testing.T) {
	hc := NewHealthChecker("v-test", 0, false, "none", "")

	health := hc.Check()

	if health.Status != "unhealthy" {
		t.Errorf("status = %q, want unhealthy", health.Status)
	}
}

func TestHealthHandler_StatusCodes(t *testing.T) {
	cases := []struct {
		name        string
		vendorCount int
		wantStatus  int
	}{
		{"healthy", 5, http.StatusOK},
		{"unhealthy", 0, http.StatusServiceUnavailable},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			hc := NewHealthChecker("v-test", tc.vendorCount, false, "stdout", "")
			req := httptest.NewRequest(http.MethodGet, "/health", nil)
			rec := httptest.NewRecorder()
			hc.Handler().ServeHTTP(rec, req)

			if rec.Code != tc.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tc.wantStatus)
			}
			var health HealthResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &health); err != nil {
				t.Fatalf("decode health: %v", err)
			}
		})
	}
}
