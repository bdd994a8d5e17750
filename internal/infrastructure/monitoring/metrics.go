// Package monitoring provides Prometheus metrics and OpenTelemetry tracing
// for the web frontend
package monitoring

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

const namespace = "trackeats"

// Metrics handles Prometheus metrics collection
type Metrics struct {
	logger   *zap.Logger
	registry *prometheus.Registry

	// HTTP metrics
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Backend API metrics
	backendRequestsTotal   *prometheus.CounterVec
	backendRequestDuration *prometheus.HistogramVec

	// Business metrics
	ledgerOperationsTotal *prometheus.CounterVec
	recipeSavesTotal      *prometheus.CounterVec
	loginsTotal           *prometheus.CounterVec
	staleLoadsTotal       prometheus.Counter
}

// NewMetrics creates the collectors on a private registry
func NewMetrics(logger *zap.Logger) *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		logger:   logger,
		registry: reg,

		httpRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "route", "status_code"},
		),
		httpRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),

		backendRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "backend_requests_total",
				Help:      "Total number of calls to the backend API",
			},
			[]string{"method", "endpoint", "status_code"},
		),
		backendRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "backend_request_duration_seconds",
				Help:      "Backend API call duration in seconds",
				Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			},
			[]string{"method", "endpoint"},
		),

		ledgerOperationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "ledger_operations_total",
				Help:      "Ingredient ledger operations by outcome",
			},
			[]string{"operation", "result"},
		),
		recipeSavesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "recipe_saves_total",
				Help:      "Recipe saves by outcome",
			},
			[]string{"result"},
		),
		loginsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "logins_total",
				Help:      "Login attempts by outcome",
			},
			[]string{"result"},
		),
		staleLoadsTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "stale_loads_discarded_total",
				Help:      "Recipe loads dropped because a newer one started",
			},
		),
	}
}

// Registry exposes the registry, mainly for tests
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the /metrics endpoint
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// HTTPMiddleware records request counts and latency per chi route pattern
func (m *Metrics) HTTPMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		route := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		m.httpRequestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
		m.httpRequestDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}

// ObserveBackend records one backend API call. Status 0 means the call
// failed before a response arrived.
func (m *Metrics) ObserveBackend(method, endpoint string, status int, elapsed time.Duration) {
	code := strconv.Itoa(status)
	if status == 0 {
		code = "error"
	}
	m.backendRequestsTotal.WithLabelValues(method, endpoint, code).Inc()
	m.backendRequestDuration.WithLabelValues(method, endpoint).Observe(elapsed.Seconds())
}

// RecordLedgerOperation counts an add, update, remove or move
func (m *Metrics) RecordLedgerOperation(operation string, err error) {
	m.ledgerOperationsTotal.WithLabelValues(operation, result(err)).Inc()
}

// RecordSave counts a recipe save; result is ok, partial or failed
func (m *Metrics) RecordSave(result string) {
	m.recipeSavesTotal.WithLabelValues(result).Inc()
}

// RecordLogin counts a login attempt
func (m *Metrics) RecordLogin(err error) {
	m.loginsTotal.WithLabelValues(result(err)).Inc()
}

// RecordStaleLoad counts a discarded recipe load
func (m *Metrics) RecordStaleLoad() {
	m.staleLoadsTotal.Inc()
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
