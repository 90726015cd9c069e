package middleware

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/R3E-Network/petclinic/internal/app/metrics"
	"github.com/R3E-Network/petclinic/pkg/logger"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestTracingGeneratesAndPropagatesTraceID(t *testing.T) {
	var seen string
	h := NewTracingMiddleware(logger.Discard()).Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = TraceID(r.Context())
		w.WriteHeader(http.StatusTeapot)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.NotEmpty(t, seen)
	assert.Len(t, seen, 36)
	assert.Equal(t, seen, rec.Header().Get(TraceHeader))
	assert.Equal(t, http.StatusTeapot, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(TraceHeader, "abc-123")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", seen)
	assert.Equal(t, "abc-123", rec.Header().Get(TraceHeader))
}

func TestMetricsMiddlewareUsesRouteTemplate(t *testing.T) {
	router := mux.NewRouter()
	router.Use(MetricsMiddleware())
	router.Handle("/owners/{ownerId:[0-9]+}/checkup", okHandler())

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/owners/42/checkup", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	out := httptest.NewRecorder()
	metrics.Handler().ServeHTTP(out, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body, _ := io.ReadAll(out.Body)
	assert.Contains(t, string(body), `path="/owners/{ownerId:[0-9]+}/checkup"`)
	assert.NotContains(t, string(body), `path="/owners/42/checkup"`)
}

func TestRateLimiterRejectsBurstOverflow(t *testing.T) {
	rl := NewRateLimiter(1, 1, time.Minute, logger.Discard())
	h := rl.Handler(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/owners", nil)
	req.RemoteAddr = "10.0.0.1:5000"

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "true", rec.Header().Get("App-Error"))

	var body map[string]string
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "/owners", body["path"])

	other := httptest.NewRequest(http.MethodGet, "/owners", nil)
	other.RemoteAddr = "10.0.0.2:5000"
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, other)
	assert.Equal(t, http.StatusOK, rec.Code, "limits are per client")
}

func TestRateLimiterCleanupEvictsIdleClients(t *testing.T) {
	rl := NewRateLimiter(10, 10, time.Minute, logger.Discard())
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	rl.getLimiter("a")
	now = now.Add(30 * time.Second)
	rl.getLimiter("b")
	now = now.Add(45 * time.Second)

	assert.Equal(t, 1, rl.Cleanup())
	assert.Equal(t, 1, rl.Clients())
}

func TestRateLimiterLifecycle(t *testing.T) {
	rl := NewRateLimiter(1, 1, 10*time.Millisecond, logger.Discard())
	ctx := context.Background()

	assert.Equal(t, "rate-limiter", rl.Name())
	require.NoError(t, rl.Start(ctx))
	require.NoError(t, rl.Start(ctx))
	require.NoError(t, rl.Stop(ctx))
	require.NoError(t, rl.Stop(ctx))
}

func TestCORS(t *testing.T) {
	h := NewCORSMiddleware([]string{"https://clinic.example"}).Handler(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/vets", nil)
	req.Header.Set("Origin", "https://clinic.example")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "https://clinic.example", rec.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/vets", nil)
	req.Header.Set("Origin", "https://evil.example")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodOptions, "/vets", nil)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestRealIPOnlyTrustsConfiguredProxies(t *testing.T) {
	mw, err := NewRealIPMiddleware([]string{"10.0.0.0/8", "192.0.2.7"})
	require.NoError(t, err)

	var seen string
	h := mw.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = r.RemoteAddr
	}))

	cases := []struct {
		peer string
		want string
	}{
		{"203.0.113.5:4000", "203.0.113.5:4000"},
		{"10.1.2.3:4000", "198.51.100.9"},
		{"192.0.2.7:4000", "198.51.100.9"},
		{"192.0.2.8:4000", "192.0.2.8:4000"},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = tc.peer
		req.Header.Set("X-Forwarded-For", "198.51.100.9")
		h.ServeHTTP(httptest.NewRecorder(), req)
		assert.Equal(t, tc.want, seen, tc.peer)
	}

	_, err = NewRealIPMiddleware([]string{"not-an-ip"})
	assert.Error(t, err)
}
