package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"worklog/internal/core"
)

// Metrics owns a private registry so several servers can coexist in tests.
type Metrics struct {
	Registry *prometheus.Registry

	requestDuration    *prometheus.HistogramVec
	refreshFailures    *prometheus.CounterVec
	rateLimitHits      prometheus.Counter
	suspiciousRequests prometheus.Counter
	externalErrors     *prometheus.CounterVec
}

func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,
		requestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "worklog_http_request_duration_seconds",
				Help:    "Duration of HTTP requests by route.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route", "status"},
		),
		refreshFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "worklog_snapshot_refresh_failures_total",
				Help: "Collections that failed to reload into the report snapshot.",
			},
			[]string{"kind"},
		),
		rateLimitHits: factory.NewCounter(prometheus.CounterOpts{
			Name: "worklog_rate_limit_hits_total",
			Help: "Write requests rejected by the rate limiter.",
		}),
		suspiciousRequests: factory.NewCounter(prometheus.CounterOpts{
			Name: "worklog_suspicious_requests_total",
			Help: "Requests matching a probe or scanner pattern.",
		}),
		externalErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "worklog_external_errors_total",
				Help: "Failed calls to external services.",
			},
			[]string{"service"},
		),
	}
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{Registry: m.Registry})
}

func (m *Metrics) IncRefreshFailure(kind core.Kind) {
	m.refreshFailures.WithLabelValues(kind.String()).Inc()
}

func (m *Metrics) IncExternalError(service string) {
	m.externalErrors.WithLabelValues(service).Inc()
}

// instrument records request durations labelled by the matched route
// pattern, never the raw path.
func (m *Metrics) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if p := rctx.RoutePattern(); p != "" {
				route = p
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		m.requestDuration.WithLabelValues(r.Method, route, strconv.Itoa(status)).Observe(time.Since(start).Seconds())
	})
}
