package web

import (
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/shindakun/storefront/internal/auth"
	"github.com/shindakun/storefront/internal/config"
	"github.com/shindakun/storefront/internal/metrics"
	"github.com/shindakun/storefront/internal/web/handlers"
	webmiddleware "github.com/shindakun/storefront/internal/web/middleware"
)

// NewRouter wires the storefront routes and middleware
func NewRouter(cfg *config.Config, h *handlers.Handlers, sessionManager *auth.SessionManager, m *metrics.Metrics, logger *log.Logger) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(webmiddleware.LoggingMiddleware(logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(webmiddleware.SecurityHeaders(cfg))
	r.Use(webmiddleware.MaxBytesMiddleware(cfg.Server.Security.MaxRequestBytes))

	// Machine endpoints stay outside CSRF protection
	r.Get("/healthz", h.Health)
	r.Method(http.MethodGet, "/metrics", m.Handler())
	r.Get("/static/*", h.ServeStatic)

	r.Group(func(r chi.Router) {
		if cfg.Server.Security.CSRFEnabled {
			r.Use(webmiddleware.CSRFProtection([]byte(cfg.Session.Secret), cfg.CookieSecure()))
		}

		r.Get("/", h.Home)

		r.Route("/auth", func(r chi.Router) {
			r.Get("/login", h.LoginPage)
			r.Post("/login", h.LoginSubmit)
			r.Get("/logout", h.Logout)
		})

		// Protected routes (require authentication)
		r.Group(func(r chi.Router) {
			r.Use(webmiddleware.RequireAuth(sessionManager))
			r.Get("/account", h.Account)
		})

		// 404 handler
		r.NotFound(h.NotFound)
	})

	return r
}
