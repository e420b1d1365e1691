package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/gin-gonic/gin"
)

// mockHealthChecker is a test implementation of HealthChecker
type mockHealthChecker struct {
	ready   bool
	healthy bool
}

func (m *mockHealthChecker) IsReady() bool   { return m.ready }
func (m *mockHealthChecker) IsHealthy() bool { return m.healthy }

func serveHealth(t *testing.T, hh *HealthHandler, path string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	hh.RegisterRoutes(r)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))

	var resp map[string]any
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return w, resp
}

func TestHealthHandler_Ready(t *testing.T) {
	tests := []struct {
		name           string
		ready          bool
		shuttingDown   bool
		expectedStatus int
		expectedBody   string
	}{
		{
			name:           "ready returns 200",
			ready:          true,
			expectedStatus: http.StatusOK,
			expectedBody:   "ready",
		},
		{
			name:           "not ready returns 503",
			ready:          false,
			expectedStatus: http.StatusServiceUnavailable,
			expectedBody:   "not_ready",
		},
		{
			name:           "shutting down returns 503",
			ready:          true,
			shuttingDown:   true,
			expectedStatus: http.StatusServiceUnavailable,
			expectedBody:   "shutting_down",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var shuttingDown atomic.Bool
			shuttingDown.Store(tt.shuttingDown)
			hh := NewHealthHandler(&mockHealthChecker{ready: tt.ready, healthy: true}, &shuttingDown)

			w, resp := serveHealth(t, hh, "/health/ready")
			if w.Code != tt.expectedStatus {
				t.Errorf("expected status %d, got %d", tt.expectedStatus, w.Code)
			}
			if resp["status"] != tt.expectedBody {
				t.Errorf("expected status %q, got %q", tt.expectedBody, resp["status"])
			}
		})
	}
}

func TestHealthHandler_Live(t *testing.T) {
	tests := []struct {
		name           string
		healthy        bool
		shuttingDown   bool
		expectedStatus int
		expectedBody   string
	}{
		{
			name:           "healthy returns 200",
			healthy:        true,
			expectedStatus: http.StatusOK,
			expectedBody:   "healthy",
		},
		{
			name:           "unhealthy returns 503",
			healthy:        false,
			expectedStatus: http.StatusServiceUnavailable,
			expectedBody:   "unhealthy",
		},
		{
			name:           "shutting down returns 503",
			healthy:        true,
			shuttingDown:   true,
			expectedStatus: http.StatusServiceUnavailable,
			expectedBody:   "shutting_down",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var shuttingDown atomic.Bool
			shuttingDown.Store(tt.shuttingDown)
			hh := NewHealthHandler(&mockHealthChecker{ready: true, healthy: tt.healthy}, &shuttingDown)

			w, resp := serveHealth(t, hh, "/health/live")
			if w.Code != tt.expectedStatus {
				t.Errorf("expected status %d, got %d", tt.expectedStatus, w.Code)
			}
			if resp["status"] != tt.expectedBody {
				t.Errorf("expected status %q, got %q", tt.expectedBody, resp["status"])
			}
		})
	}
}

func TestHealthHandler_Combined(t *testing.T) {
	tests := []struct {
		name           string
		ready          bool
		healthy        bool
		shuttingDown   bool
		expectedStatus int
		expectedBody   string
	}{
		{
			name:           "ready and healthy",
			ready:          true,
			healthy:        true,
			expectedStatus: http.StatusOK,
			expectedBody:   "ok",
		},
		{
			name:           "not ready is degraded",
			ready:          false,
			healthy:        true,
			expectedStatus: http.StatusServiceUnavailable,
			expectedBody:   "degraded",
		},
		{
			name:           "unhealthy is degraded",
			ready:          true,
			healthy:        false,
			expectedStatus: http.StatusServiceUnavailable,
			expectedBody:   "degraded",
		},
		{
			name:           "shutting down",
			ready:          true,
			healthy:        true,
			shuttingDown:   true,
			expectedStatus: http.StatusServiceUnavailable,
			expectedBody:   "shutting_down",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var shuttingDown atomic.Bool
			shuttingDown.Store(tt.shuttingDown)
			hh := NewHealthHandler(&mockHealthChecker{ready: tt.ready, healthy: tt.healthy}, &shuttingDown)

			w, resp := serveHealth(t, hh, "/health")
			if w.Code != tt.expectedStatus {
				t.Errorf("expected status %d, got %d", tt.expectedStatus, w.Code)
			}
			if resp["status"] != tt.expectedBody {
				t.Errorf("expected status %q, got %q", tt.expectedBody, resp["status"])
			}
			if resp["shuttingDown"] != tt.shuttingDown {
				t.Errorf("expected shuttingDown %v, got %v", tt.shuttingDown, resp["shuttingDown"])
			}
		})
	}
}

func TestHealth_FollowsStore(t *testing.T) {
	env := newTestEnv(t, false)

	w, _ := env.do(t, http.MethodGet, "/health/ready", nil)
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503 before first fetch, got %d", w.Code)
	}

	if err := env.store.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}
	w, _ = env.do(t, http.MethodGet, "/health/ready", nil)
	if w.Code != http.StatusOK {
		t.Errorf("expected 200 after first fetch, got %d", w.Code)
	}

	// A failed refetch still serves the stale list.
	env.provider.FailMarkets(errors.New("HTTP 500 Internal Server Error"))
	_ = env.store.Retry(context.Background())
	w, _ = env.do(t, http.MethodGet, "/health/live", nil)
	if w.Code != http.StatusOK {
		t.Errorf("expected 200 while serving stale coins, got %d", w.Code)
	}
}
