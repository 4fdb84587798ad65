package middleware

import (
	"net/http"

	"github.com/shindakun/storefront/internal/auth"
	"github.com/shindakun/storefront/internal/models"
)

// LoginPath is where unauthenticated visitors are sent
const LoginPath = "/auth/login"

// SessionSource resolves the session carried by a request
type SessionSource interface {
	GetSession(r *http.Request) (*models.Session, error)
}

// RequireAuth is a middleware that requires authentication
// Redirects to /auth/login if no valid session is found
func RequireAuth(sessions SessionSource) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			session, err := sessions.GetSession(r)
			if err != nil || session == nil {
				if IsHTMX(r) {
					// HTMX follows HX-Redirect on the client
					w.Header().Set("HX-Redirect", LoginPath)
					w.WriteHeader(http.StatusUnauthorized)
					return
				}
				http.Redirect(w, r, LoginPath, http.StatusSeeOther)
				return
			}

			SetLogUser(r.Context(), session.Username)
			ctx := auth.SetSessionInContext(r.Context(), session)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// IsHTMX reports whether the request was issued by htmx
func IsHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}
