// Package http exposes the ledger, reports, labels, exports and the chat
// relay as a JSON API.
package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"worklog/internal/core"
	"worklog/internal/log"
	"worklog/internal/middleware/ratelimit"
	"worklog/internal/middleware/security"
	"worklog/internal/services"
)

// Chatter answers a single prompt. *chat.Client implements it.
type Chatter interface {
	Ask(ctx context.Context, prompt string) (string, error)
}

// Deps are the services the handlers call. Chat and Ready may be nil.
type Deps struct {
	Ledger  *services.LedgerService
	Reports *services.ReportService
	Labels  *services.LabelService
	Chat    Chatter
	Ready   func(ctx context.Context) error
}

type Options struct {
	RateLimitPerMinute int
	Logger             *log.Logger
	Metrics            *Metrics
	Now                func() time.Time
}

type Server struct {
	http.Server

	deps     Deps
	logger   *log.Logger
	metrics  *Metrics
	limiter  *ratelimit.Limiter
	detector *security.Detector
	now      func() time.Time

	shutdownOnce sync.Once
}

// NewServer wires the router and returns a server ready to ListenAndServe.
// Snapshot refresh failures are counted in the server metrics. Options.Now,
// when set, also drives the dashboard clock.
func NewServer(addr string, deps Deps, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default(log.ComponentHTTP)
	}
	metrics := opts.Metrics
	if metrics == nil {
		metrics = NewMetrics()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	s := &Server{
		deps:     deps,
		logger:   logger.WithComponent(log.ComponentHTTP),
		metrics:  metrics,
		limiter:  ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: opts.RateLimitPerMinute}),
		detector: security.NewDetector(),
		now:      now,
	}
	if deps.Reports != nil {
		deps.Reports.OnRefreshError(metrics.IncRefreshFailure)
		if opts.Now != nil {
			deps.Reports.SetClock(opts.Now)
		}
	}

	s.Server = http.Server{
		Addr:              addr,
		Handler:           s.routes(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(log.Middleware(s.logger))
	r.Use(log.RequestIDMiddleware(func(r *http.Request) string {
		return middleware.GetReqID(r.Context())
	}))
	r.Use(s.accessLog)
	r.Use(middleware.Recoverer)
	r.Use(s.metrics.instrument)
	r.Use(security.Headers(security.DefaultHeadersConfig()))
	r.Use(s.detector.Middleware(s.onSuspicious))

	r.Get("/healthz", handleHealth)
	r.Get("/readyz", s.handleReady)
	r.Handle("/metrics", s.metrics.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Use(s.limiter.Middleware(s.detector.ClientIP, ratelimit.WritesOnly, s.onRateLimited))

		r.Get("/records/{kind}", s.handleListRecords)
		r.Post("/records/{kind}", s.handleCreateRecord)
		r.Put("/records/{kind}/{id}", s.handleUpdateRecord)
		r.Delete("/records/{kind}", s.handleDeleteRecords)
		r.Get("/years/{kind}", s.handleYears)

		r.Get("/charts/{kind}", s.handleChart)
		r.Get("/dashboard", s.handleDashboard)
		r.Post("/refresh", s.handleRefresh)

		r.Get("/labels", s.handleAllLabels)
		r.Get("/labels/{set}", s.handleLabels)
		r.Post("/labels/{set}", s.handleAddLabel)
		r.Delete("/labels/{set}", s.handleRemoveLabel)

		r.Post("/chat", s.handleChat)

		r.Get("/export/chart.xlsx", s.handleExportChart)
		r.Get("/export/ledger.xlsx", s.handleExportLedger)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	})
	return r
}

func (s *Server) accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sl := log.NewStructuredLogger(log.FromContext(r.Context()))
		clientIP := s.detector.ClientIP(r)
		sl.LogHTTPStart(r.Context(), r, clientIP)

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		sl.LogHTTPEnd(r.Context(), r, status, time.Since(start).Milliseconds(), clientIP)
	})
}

func (s *Server) onRateLimited(w http.ResponseWriter, r *http.Request) {
	s.metrics.rateLimitHits.Inc()
	log.FromContext(r.Context()).WithComponent(log.ComponentRateLimit).WarnContext(r.Context(), "Rate limit exceeded",
		log.FieldClientIP, s.detector.ClientIP(r),
		log.FieldMethod, r.Method,
		log.FieldPath, r.URL.Path)
	writeError(w, http.StatusTooManyRequests, "rate limit exceeded, try again later")
}

func (s *Server) onSuspicious(r *http.Request) {
	s.metrics.suspiciousRequests.Inc()
	log.FromContext(r.Context()).WarnContext(r.Context(), "Suspicious request",
		log.FieldClientIP, s.detector.ClientIP(r),
		log.FieldMethod, r.Method,
		log.FieldPath, r.URL.Path,
		log.FieldUserAgent, r.Header.Get("User-Agent"))
}

// Shutdown stops the limiter and drains the HTTP server once.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		err = s.Server.Shutdown(ctx)
	})
	return err
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleReady checks the backend, then reports when each collection was
// last loaded into the snapshot.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.deps.Ready != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()
		if err := s.deps.Ready(ctx); err != nil {
			log.FromContext(r.Context()).WarnContext(r.Context(), "Readiness check failed", log.FieldError, err.Error())
			writeError(w, http.StatusServiceUnavailable, "backend not ready")
			return
		}
	}

	loaded := map[string]any{}
	if s.deps.Reports != nil {
		for _, kind := range core.Kinds() {
			if at, ok := s.deps.Reports.LoadedAt(kind); ok {
				loaded[kind.String()] = at.UTC().Format(time.RFC3339)
			}
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "ready", "loadedAt": loaded})
}
