package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Middleware(t *testing.T) {
	registry := prometheus.NewRegistry()
	metrics := NewMetrics(registry, []string{"ping", "/users/"})

	handler := metrics.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/users" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		_, _ = w.Write([]byte(`{}`))
	}))

	for _, path := range []string{"/ping", "/ping/", "/users", "/random", "/another"} {
		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	assert.InDelta(t, 2, testutil.ToFloat64(metrics.requests.WithLabelValues("ping", "get", "200")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.requests.WithLabelValues("users", "get", "400")), 0)
	assert.InDelta(t, 2, testutil.ToFloat64(metrics.requests.WithLabelValues("other", "get", "200")), 0)
	assert.InDelta(t, 0, testutil.ToFloat64(metrics.inFlight), 0)

	count, err := testutil.GatherAndCount(registry, "phoneauth_http_request_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestMetrics_MethodLabelIsBounded(t *testing.T) {
	registry := prometheus.NewRegistry()
	metrics := NewMetrics(registry, []string{"users"})

	handler := metrics.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusMethodNotAllowed)
	}))

	for _, method := range []string{"PATCH", "BREW", "X-CUSTOM-1", "X-CUSTOM-2", http.MethodDelete} {
		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(method, "/users", nil))
	}

	assert.InDelta(t, 4, testutil.ToFloat64(metrics.requests.WithLabelValues("users", "other", "405")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.requests.WithLabelValues("users", "delete", "405")), 0)

	// Только две серии: delete и other
	assert.Equal(t, 2, testutil.CollectAndCount(metrics.requests))
}

func TestMetrics_Exposition(t *testing.T) {
	registry := prometheus.NewRegistry()
	metrics := NewMetrics(registry, []string{"tokens"})

	handler := metrics.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusMethodNotAllowed)
	}))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPatch, "/tokens", nil))

	expected := `
# HELP phoneauth_http_requests_total Total number of HTTP requests by route, method and status
# TYPE phoneauth_http_requests_total counter
phoneauth_http_requests_total{method="patch",route="tokens",status="405"} 1
`
	err := testutil.GatherAndCompare(registry, strings.NewReader(expected), "phoneauth_http_requests_total")
	assert.NoError(t, err)
}

func TestNewMetrics_DuplicateRegistrationPanics(t *testing.T) {
	registry := prometheus.NewRegistry()
	NewMetrics(registry, nil)

	assert.Panics(t, func() {
		NewMetrics(registry, nil)
	})
}
