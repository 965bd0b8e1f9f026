package server

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"antiproxy-go/internal/config"
	"antiproxy-go/internal/dispatch"
	"antiproxy-go/internal/upstream"
)

func buildTestEngine(t *testing.T, endpoints ...string) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	cfg := config.Default()
	if len(endpoints) > 0 {
		cfg.Endpoints = endpoints
	}
	d := dispatch.New(dispatch.NewEndpointSet(cfg.Endpoints), dispatch.NewLimiter(0), upstream.New(cfg), 5*time.Second)
	return BuildEngine(cfg, d)
}

func TestHealthRoute(t *testing.T) {
	engine := buildTestEngine(t)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest("GET", "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "OK", w.Body.String())
}

func TestMetricsRoute(t *testing.T) {
	engine := buildTestEngine(t)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest("GET", "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "antiproxy_")
}

func TestProxyRouteEndToEnd(t *testing.T) {
	up := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		io.WriteString(w, "sse-body")
	}))
	defer up.Close()

	engine := buildTestEngine(t, up.URL)
	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/proxy",
		strings.NewReader(`{"model":"m","project":"p","access_token":"t","request":{}}`))
	req.Header.Set("Content-Type", "application/json")
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"success":true`)
	assert.Contains(t, w.Body.String(), "sse-body")
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestPreflightOnProxyRoute(t *testing.T) {
	engine := buildTestEngine(t)
	w := httptest.NewRecorder()
	req := httptest.NewRequest("OPTIONS", "/proxy", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	engine.ServeHTTP(w, req)
	assert.Equal(t, 204, w.Code)
}
