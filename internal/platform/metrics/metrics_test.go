package metrics_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/phrazzld/bionexus-api/internal/generation"
	"github.com/phrazzld/bionexus-api/internal/platform/metrics"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserver(t *testing.T) {
	t.Parallel()
	m := metrics.New()

	m.AttemptStarted(generation.ContextStudent, 1)
	m.AttemptStarted(generation.ContextStudent, 2)
	m.RetryScheduled(generation.ContextStudent, generation.KindCapacityExhausted, time.Second)
	m.CallFinished(generation.ContextStudent, generation.KindNone, 2)
	m.CallFinished(generation.ContextMedPro, generation.KindCapacityExhausted, 3)
	m.ParseFailed("exam")
	m.StaleResponse("medpro")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.GatewayAttempts.WithLabelValues("Student Mode")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.GatewayResults.WithLabelValues("success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.GatewayResults.WithLabelValues("capacity_exhausted")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ParseFailures.WithLabelValues("exam")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.StaleResponses.WithLabelValues("medpro")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.GatewayBackoff))
}

func TestMiddlewareAndHandler(t *testing.T) {
	t.Parallel()
	m := metrics.New()

	r := chi.NewRouter()
	r.Use(m.Middleware)
	r.Get("/api/sessions/{id}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	r.Handle("/metrics", m.Handler())

	req := httptest.NewRequest(http.MethodGet, "/api/sessions/123", nil)
	r.ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, 1.0, testutil.ToFloat64(
		m.HTTPRequestsTotal.WithLabelValues(http.MethodGet, "/api/sessions/{id}", "404")))

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "bionexus_http_requests_total")
	assert.Contains(t, string(body), "go_goroutines")
}
