package metrics

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestUpdateComponent(t *testing.T) {
	healthChecker = newHealthChecker()

	UpdateComponent(ComponentStore, true, "running")

	if len(healthChecker.components) != 1 {
		t.Errorf("expected 1 component, got %d", len(healthChecker.components))
	}

	comp := healthChecker.components[ComponentStore]
	if !comp.Healthy {
		t.Error("component should be healthy")
	}
	if comp.Message != "running" {
		t.Errorf("expected message 'running', got '%s'", comp.Message)
	}
}

func TestGetHealth(t *testing.T) {
	tests := []struct {
		name       string
		backendOK  bool
		wantStatus string
	}{
		{name: "all healthy", backendOK: true, wantStatus: "healthy"},
		{name: "backend unhealthy", backendOK: false, wantStatus: "unhealthy"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			healthChecker = newHealthChecker()
			SetVersion("1.0.0")
			UpdateComponent(ComponentStore, true, "")
			UpdateComponent(ComponentBackend, tt.backendOK, "storage full")

			health := GetHealth()
			if health.Status != tt.wantStatus {
				t.Errorf("expected status '%s', got '%s'", tt.wantStatus, health.Status)
			}
			if len(health.Components) != 2 {
				t.Errorf("expected 2 components, got %d", len(health.Components))
			}
			if health.Version != "1.0.0" {
				t.Errorf("expected version '1.0.0', got '%s'", health.Version)
			}
		})
	}
}

func TestGetReadiness_NotRegistered(t *testing.T) {
	healthChecker = newHealthChecker()
	UpdateComponent(ComponentStore, true, "")

	readiness := GetReadiness()
	if readiness.Status != "not_ready" {
		t.Errorf("expected status 'not_ready', got '%s'", readiness.Status)
	}
	if readiness.Components[ComponentBackend] != "not registered" {
		t.Errorf("unexpected backend status: %s", readiness.Components[ComponentBackend])
	}
}

func TestReadyHandler(t *testing.T) {
	healthChecker = newHealthChecker()
	UpdateComponent(ComponentBackend, true, "")

	req := httptest.NewRequest(http.MethodGet, "/ready", nil)
	w := httptest.NewRecorder()
	ReadyHandler()(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", w.Code)
	}

	var response HealthStatus
	if err := json.NewDecoder(w.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if response.Status != "ready" {
		t.Errorf("expected status 'ready', got '%s'", response.Status)
	}
}

func TestHealthHandler_Unhealthy(t *testing.T) {
	healthChecker = newHealthChecker()
	UpdateComponent(ComponentBackend, false, "disk gone")

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	HealthHandler()(w, req)

	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("expected status 503, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("expected JSON content type, got %s", ct)
	}
}
