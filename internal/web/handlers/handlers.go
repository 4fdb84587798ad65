package handlers

import (
	"database/sql"
	"encoding/json"
	"html/template"
	"log"
	"net/http"

	"github.com/shindakun/storefront/internal/auth"
	"github.com/shindakun/storefront/internal/login"
	"github.com/shindakun/storefront/internal/metrics"
	"github.com/shindakun/storefront/internal/models"
	"github.com/shindakun/storefront/internal/version"
	"github.com/shindakun/storefront/internal/web/middleware"
	"github.com/shindakun/storefront/internal/web/static"
)

// Handlers holds dependencies for HTTP handlers
type Handlers struct {
	db             *sql.DB
	sessionManager *auth.SessionManager
	authClient     login.Authenticator
	metrics        *metrics.Metrics
	logger         *log.Logger

	pages   map[string]*template.Template
	assets  http.Handler
	version string
}

// New creates a new Handlers instance, parsing the embedded templates once
func New(db *sql.DB, sessionManager *auth.SessionManager, authClient login.Authenticator, m *metrics.Metrics, logger *log.Logger) (*Handlers, error) {
	pages, err := parseTemplates()
	if err != nil {
		return nil, err
	}

	return &Handlers{
		db:             db,
		sessionManager: sessionManager,
		authClient:     authClient,
		metrics:        m,
		logger:         logger,
		pages:          pages,
		assets:         http.StripPrefix("/static/", http.FileServer(http.FS(static.FS))),
		version:        version.GetVersion(),
	}, nil
}

// Home renders the storefront landing page, the target of a successful login
func (h *Handlers) Home(w http.ResponseWriter, r *http.Request) {
	session := h.optionalSession(r)

	if err := h.renderTemplate(w, http.StatusOK, "home", TemplateData{Session: session}); err != nil {
		h.logger.Printf("Error rendering home template: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

// Account renders the signed-in user's session details (protected route)
func (h *Handlers) Account(w http.ResponseWriter, r *http.Request) {
	session, ok := auth.GetSessionFromContext(r.Context())
	if !ok || session == nil {
		http.Redirect(w, r, middleware.LoginPath, http.StatusSeeOther)
		return
	}

	if err := h.renderTemplate(w, http.StatusOK, "account", TemplateData{Session: session}); err != nil {
		h.logger.Printf("Error rendering account template: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

// Logout clears the session and returns to the landing page
func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.sessionManager.ClearSession(w, r); err != nil {
		// Log error but continue with logout
		h.logger.Printf("Error clearing session: %v", err)
	}
	h.metrics.ObserveLogout()

	http.Redirect(w, r, login.HomePath, http.StatusSeeOther)
}

// Health reports whether the database is reachable
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	status := http.StatusOK
	body := map[string]string{
		"status":  "ok",
		"version": h.version,
	}
	if err := h.db.PingContext(r.Context()); err != nil {
		h.logger.Printf("Health check failed: %v", err)
		status = http.StatusServiceUnavailable
		body["status"] = "unavailable"
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

// ServeStatic serves the embedded stylesheet and assets
func (h *Handlers) ServeStatic(w http.ResponseWriter, r *http.Request) {
	h.assets.ServeHTTP(w, r)
}

// NotFound renders the 404 error page
func (h *Handlers) NotFound(w http.ResponseWriter, r *http.Request) {
	session := h.optionalSession(r)

	if err := h.renderTemplate(w, http.StatusNotFound, "404", TemplateData{Session: session}); err != nil {
		h.logger.Printf("Error rendering 404 template: %v", err)
		http.Error(w, "Not Found", http.StatusNotFound)
	}
}

// optionalSession returns the session for pages that work signed in or out
func (h *Handlers) optionalSession(r *http.Request) *models.Session {
	session, err := h.sessionManager.GetSession(r)
	if err != nil {
		return nil
	}
	middleware.SetLogUser(r.Context(), session.Username)
	return session
}
