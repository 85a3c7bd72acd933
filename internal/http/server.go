// Package http exposes bookings, the unified ledger and booking search as a
// JSON API.
package http

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/unrolled/secure"

	"agenda/internal/config"
	"agenda/internal/log"
	"agenda/internal/observability"
	"agenda/internal/services"
)

// Pinger reports whether the record store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Dependencies are the collaborators the handlers call into. Metrics and
// Store may be nil.
type Dependencies struct {
	Records *services.RecordService
	Ledger  *services.LedgerService
	Search  *services.SearchService
	Store   Pinger
	Metrics *observability.Metrics
	Money   *MoneyFormatter
	Logger  *log.Logger
}

// Server wraps http.Server with the API routes.
type Server struct {
	*http.Server
	deps      Dependencies
	logger    *log.Logger
	rateLimit int
	started   time.Time
}

// NewServer builds the server listening on cfg.Port.
func NewServer(cfg *config.Config, deps Dependencies) *Server {
	logger := deps.Logger
	if logger == nil {
		logger = log.Discard()
	}
	if deps.Money == nil {
		deps.Money = DefaultMoneyFormatter()
	}
	s := &Server{
		deps:      deps,
		logger:    logger.WithComponent(log.ComponentHTTP),
		rateLimit: cfg.RateLimit,
		started:   time.Now(),
	}
	s.Server = &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           s.Routes(),
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

// Routes assembles the middleware chain and every endpoint.
func (s *Server) Routes() http.Handler {
	headers := secure.New(secure.Options{
		FrameDeny:             true,
		ContentTypeNosniff:    true,
		BrowserXssFilter:      true,
		ReferrerPolicy:        "strict-origin-when-cross-origin",
		ContentSecurityPolicy: "default-src 'none'",
	})

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(log.Middleware(s.logger, func(r *http.Request) string {
		return middleware.GetReqID(r.Context())
	}))
	r.Use(middleware.Recoverer)
	r.Use(headers.Handler)
	r.Use(s.deps.Metrics.Middleware)

	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)
	r.Handle("/metrics", s.deps.Metrics.Handler())

	r.Route("/api", func(r chi.Router) {
		if s.rateLimit > 0 {
			r.Use(httprate.Limit(s.rateLimit, time.Minute,
				httprate.WithKeyFuncs(httprate.KeyByIP),
				httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
					log.FromContext(r.Context()).WithComponent(log.ComponentRateLimit).
						WarnContext(r.Context(), "Rate limit exceeded", log.FieldClientIP, r.RemoteAddr)
					writeError(w, r, http.StatusTooManyRequests, "rate limit exceeded")
				}),
			))
		}

		r.Route("/bookings", func(r chi.Router) {
			r.Get("/", s.handleListBookings)
			r.Post("/", s.handleCreateBooking)
			r.Get("/{id}", s.handleGetBooking)
			r.Patch("/{id}", s.handleUpdateBooking)
			r.Delete("/{id}", s.handleDeleteBooking)
		})

		r.Route("/ledger", func(r chi.Router) {
			r.Get("/entries", s.handleListEntries)
			r.Post("/entries", s.handleCreateEntry)
			r.Get("/entries/{id}", s.handleGetEntry)
			r.Patch("/entries/{id}", s.handleUpdateEntry)
			r.Delete("/entries/{id}", s.handleDeleteEntry)

			r.Get("/transactions", s.handleTransactions)
			r.Get("/balance", s.handleBalance)
			r.Get("/monthly", s.handleMonthly)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, http.StatusNotFound, "not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
	})
	return r
}

// Shutdown stops accepting requests and waits for in-flight ones.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down HTTP server", log.FieldOperation, log.OpShutdown)
	return s.Server.Shutdown(ctx)
}
