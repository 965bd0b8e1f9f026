package proxy

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"antiproxy-go/internal/config"
	"antiproxy-go/internal/dispatch"
	"antiproxy-go/internal/upstream"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestRouter(endpoints ...string) *gin.Engine {
	cfg := config.Default()
	cfg.Endpoints = endpoints
	d := dispatch.New(dispatch.NewEndpointSet(endpoints), dispatch.NewLimiter(0), upstream.New(cfg), 5*time.Second)
	h := New(d)
	r := gin.New()
	r.POST("/proxy", h.Proxy)
	r.GET("/health", h.Health)
	return r
}

func doProxy(t *testing.T, r *gin.Engine, body string) (*httptest.ResponseRecorder, ProxyResponse) {
	t.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/proxy", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	var out ProxyResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return w, out
}

func envelope(payload string) string {
	return `{"model":"gemini-3-pro","project":"p1","access_token":"tok","request":` + payload + `}`
}

func TestProxySuccess(t *testing.T) {
	up := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		io.WriteString(w, `data: {"done":true}`)
	}))
	defer up.Close()

	w, out := doProxy(t, newTestRouter(up.URL), envelope(`{"x":1}`))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, out.Success)
	require.NotNil(t, out.Data)
	assert.Equal(t, `data: {"done":true}`, *out.Data)
	assert.Nil(t, out.Error)
	assert.Nil(t, out.StatusCode)
	assert.NotContains(t, w.Body.String(), "status_code")
}

func TestProxyRateLimitedPassthrough(t *testing.T) {
	up := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		io.WriteString(w, `{"error":"quota"}`)
	}))
	defer up.Close()

	w, out := doProxy(t, newTestRouter(up.URL), envelope(`{}`))

	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.False(t, out.Success)
	require.NotNil(t, out.Error)
	assert.Equal(t, `{"error":"quota"}`, *out.Error)
	require.NotNil(t, out.StatusCode)
	assert.Equal(t, http.StatusTooManyRequests, *out.StatusCode)
}

func TestProxyExhausted(t *testing.T) {
	up := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer up.Close()

	w, out := doProxy(t, newTestRouter(up.URL, up.URL), envelope(`{}`))

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.False(t, out.Success)
	require.NotNil(t, out.Error)
	assert.Equal(t, dispatch.ExhaustedMessage, *out.Error)
	require.NotNil(t, out.StatusCode)
	assert.Equal(t, http.StatusServiceUnavailable, *out.StatusCode)
}

func TestProxyInvalidEnvelope(t *testing.T) {
	r := newTestRouter("http://127.0.0.1:0")

	cases := []struct {
		name string
		body string
	}{
		{"not json", "not-json"},
		{"missing model", `{"project":"p","access_token":"t","request":{}}`},
		{"missing token", `{"model":"m","project":"p","request":{}}`},
		{"missing request", `{"model":"m","project":"p","access_token":"t"}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w, out := doProxy(t, r, tc.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.False(t, out.Success)
			require.NotNil(t, out.Error)
		})
	}
}

func TestHealth(t *testing.T) {
	r := newTestRouter("http://127.0.0.1:0")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "OK", w.Body.String())
}

func TestToResponseOtherError(t *testing.T) {
	status, resp := toResponse(dispatch.Outcome{
		Kind:       dispatch.OutcomeOther,
		StatusCode: http.StatusNotFound,
		Body:       []byte("nope"),
	})
	assert.Equal(t, http.StatusNotFound, status)
	assert.False(t, resp.Success)
	assert.Equal(t, "nope", *resp.Error)
}
