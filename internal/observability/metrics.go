// Package observability exposes Prometheus metrics for the HTTP API, the
// intent resolver and ledger projections.
package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics owns a private registry so tests can create as many as they like.
type Metrics struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	intentTotal     *prometheus.CounterVec
	intentDuration  prometheus.Histogram
	skippedRecords  *prometheus.CounterVec
}

func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "agenda_http_requests_total",
		Help: "HTTP requests by route and status code.",
	}, []string{"route", "code"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "agenda_http_request_duration_seconds",
		Help:    "HTTP request latency by route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"route"})
	intent := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "agenda_intent_resolutions_total",
		Help: "Intent resolver calls by result.",
	}, []string{"result"})
	intentDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "agenda_intent_resolution_duration_seconds",
		Help:    "Intent resolver latency, including timed out calls.",
		Buckets: prometheus.DefBuckets,
	})
	skipped := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "agenda_ledger_skipped_records_total",
		Help: "Malformed records left out of a ledger projection.",
	}, []string{"origin"})
	registry.MustRegister(requests, duration, intent, intentDuration, skipped)
	return &Metrics{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestsTotal:   requests,
		requestDuration: duration,
		intentTotal:     intent,
		intentDuration:  intentDuration,
		skippedRecords:  skipped,
	}
}

// Handler serves /metrics. A nil Metrics answers 503.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// Middleware records count and latency per chi route pattern.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(&rec, r)
		route := routePattern(r)
		m.requestsTotal.WithLabelValues(route, strconv.Itoa(rec.status)).Inc()
		m.requestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	})
}

// ObserveIntent implements intent.Recorder.
func (m *Metrics) ObserveIntent(result string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.intentTotal.WithLabelValues(result).Inc()
	if elapsed > 0 {
		m.intentDuration.Observe(elapsed.Seconds())
	}
}

// ObserveSkipped counts records a projection could not use.
func (m *Metrics) ObserveSkipped(origin string, n int) {
	if m == nil || n == 0 {
		return
	}
	m.skippedRecords.WithLabelValues(origin).Add(float64(n))
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func routePattern(r *http.Request) string {
	if rc := chi.RouteContext(r.Context()); rc != nil {
		if pattern := rc.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return "unknown"
}
