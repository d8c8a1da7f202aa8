package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rezonant/cardsagainst/internal/config"
	localMiddleware "github.com/rezonant/cardsagainst/internal/middleware"
)

// RouterOptions allows customization of router setup for tests
type RouterOptions struct {
	DisableRateLimiting  bool
	DisableRequestLogger bool
	RateLimiter          *localMiddleware.RateLimiter // built from cfg when nil
	CustomMiddleware     []func(http.Handler) http.Handler
}

// SetupRouter creates the application router with all routes and middleware
func SetupRouter(h *Handler, cfg *config.ServerConfig, opts *RouterOptions) *chi.Mux {
	if opts == nil {
		opts = &RouterOptions{}
	}

	r := chi.NewRouter()

	// Chi's built-in middleware (conditionally applied)
	if !opts.DisableRequestLogger {
		r.Use(middleware.Logger)
	}
	r.Use(middleware.Recoverer)

	// Our custom middleware
	r.Use(localMiddleware.SecurityHeaders())

	// Rate limiting (conditionally applied)
	if !opts.DisableRateLimiting {
		rateLimiter := opts.RateLimiter
		if rateLimiter == nil {
			rateLimiter = localMiddleware.NewRateLimiter(cfg.Server.RateLimit, cfg.Server.RateLimitBurst)
		}
		r.Use(rateLimiter.Middleware())
	}

	// Apply custom middleware if provided
	for _, mw := range opts.CustomMiddleware {
		r.Use(mw)
	}

	// Request/response API; streams below must not inherit the timeout
	r.Route("/api", func(r chi.Router) {
		if cfg.Server.RequestTimeout > 0 {
			r.Use(middleware.Timeout(cfg.Server.RequestTimeout))
		}
		r.Use(localMiddleware.RequestSizeLimiter(cfg.Server.MaxRequestSize))

		r.Get("/decks", h.ListDecks)
		r.Post("/sessions", h.CreateSession)
		r.Get("/sessions/{id}", h.GetSession)
		r.Get("/sessions/{id}/history", h.SessionHistory)
		r.Get("/sessions/{id}/qr", h.SessionQRCode)
	})

	// Long-lived streams
	r.Group(func(r chi.Router) {
		r.Use(localMiddleware.NewConnectionLimiter(cfg.Server.MaxConnections).Middleware())

		r.Get("/ws/sessions/{id}", h.PlayerSocket)
		r.Get("/sse/sessions/{id}", ValidateSSERequest(h.SpectateSession))
	})

	// Health check endpoints (no auth required)
	r.Get("/health/live", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	r.Get("/health/ready", func(w http.ResponseWriter, r *http.Request) {
		// Ready as long as the registry is reachable
		if h.registry == nil {
			http.Error(w, "registry unavailable", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	return r
}
