package http

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/CaseBridge/internal/config"
	"github.com/turtacn/CaseBridge/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/CaseBridge/internal/infrastructure/monitoring/prometheus"
)

func testDeps() RouterDeps {
	return RouterDeps{
		Config: &config.Config{
			Server:  config.ServerConfig{Mode: "test"},
			Metrics: config.MetricsConfig{Enabled: true, Path: "/metrics"},
		},
		Logger:  logging.NewNopLogger(),
		Metrics: prometheus.NewMetrics("router_test"),
		Version: "test",
	}
}

func TestNewRouter_HealthEndpoints(t *testing.T) {
	r := NewRouter(testDeps())

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestNewRouter_MetricsEndpoint(t *testing.T) {
	r := NewRouter(testDeps())

	// Drive one request through the middleware so the counter has a child
	// series before the scrape.
	warm := httptest.NewRecorder()
	r.ServeHTTP(warm, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "router_test_http_requests_total")
}

func TestNewRouter_UnknownRouteIs404(t *testing.T) {
	r := NewRouter(testDeps())

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/nope", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGinMode(t *testing.T) {
	assert.Equal(t, "debug", ginMode("debug"))
	assert.Equal(t, "test", ginMode("test"))
	assert.Equal(t, "release", ginMode("release"))
	assert.Equal(t, "release", ginMode("anything-else"))
}
