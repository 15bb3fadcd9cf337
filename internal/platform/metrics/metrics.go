// Package metrics provides Prometheus instrumentation for the gateway, the
// structured parsers and the HTTP API. Every Metrics value owns its registry,
// so tests and multiple servers in one process do not collide.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/phrazzld/bionexus-api/internal/generation"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "bionexus"

// Metrics holds every collector of the service.
type Metrics struct {
	registry *prometheus.Registry

	GatewayAttempts *prometheus.CounterVec
	GatewayResults  *prometheus.CounterVec
	GatewayBackoff  prometheus.Histogram
	ParseFailures   *prometheus.CounterVec
	StaleResponses  *prometheus.CounterVec

	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
}

// New creates a Metrics with a fresh registry that also carries the Go and
// process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,

		GatewayAttempts: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "gateway",
				Name:      "attempts_total",
				Help:      "Total number of remote model attempts",
			},
			[]string{"context"},
		),
		GatewayResults: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "gateway",
				Name:      "results_total",
				Help:      "Total number of logical gateway calls by outcome",
			},
			[]string{"outcome"},
		),
		GatewayBackoff: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "gateway",
				Name:      "backoff_seconds",
				Help:      "Backoff delays scheduled before retries",
				Buckets:   []float64{.25, .5, 1, 2, 4, 8, 16},
			},
		),
		ParseFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "parse",
				Name:      "failures_total",
				Help:      "Structured responses that could not be parsed",
			},
			[]string{"kind"},
		),
		StaleResponses: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "session",
				Name:      "stale_responses_total",
				Help:      "Model responses dropped because the learner navigated away",
			},
			[]string{"view"},
		),

		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60},
			},
			[]string{"method", "path"},
		),
	}
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// AttemptStarted implements generation.Observer.
func (m *Metrics) AttemptStarted(tag generation.ContextTag, _ int) {
	m.GatewayAttempts.WithLabelValues(tag.String()).Inc()
}

// RetryScheduled implements generation.Observer.
func (m *Metrics) RetryScheduled(_ generation.ContextTag, _ generation.FailureKind, delay time.Duration) {
	m.GatewayBackoff.Observe(delay.Seconds())
}

// CallFinished implements generation.Observer.
func (m *Metrics) CallFinished(_ generation.ContextTag, kind generation.FailureKind, _ int) {
	outcome := "success"
	if kind != generation.KindNone {
		outcome = kind.String()
	}
	m.GatewayResults.WithLabelValues(outcome).Inc()
}

// ParseFailed counts a structured parse failure of the given payload kind
// (e.g. "exam", "essay_feedback").
func (m *Metrics) ParseFailed(kind string) {
	m.ParseFailures.WithLabelValues(kind).Inc()
}

// StaleResponse counts a response dropped by the session guard.
func (m *Metrics) StaleResponse(view string) {
	m.StaleResponses.WithLabelValues(view).Inc()
}

// Middleware records request count and latency, labelled by chi route pattern
// so that session IDs do not explode label cardinality.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		path := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				path = pattern
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		m.HTTPRequestsTotal.WithLabelValues(r.Method, path, strconv.Itoa(status)).Inc()
		m.HTTPRequestDuration.WithLabelValues(r.Method, path).Observe(time.Since(start).Seconds())
	})
}

var _ generation.Observer = (*Metrics)(nil)
