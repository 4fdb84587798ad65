package middleware

import (
	"net/http"

	"github.com/shindakun/storefront/internal/config"
)

// SecurityHeaders creates middleware that adds HTTP security headers to all responses
func SecurityHeaders(cfg *config.Config) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			headers := cfg.Server.Security.Headers

			if headers.XFrameOptions != "" {
				w.Header().Set("X-Frame-Options", headers.XFrameOptions)
			}
			if headers.XContentTypeOptions != "" {
				w.Header().Set("X-Content-Type-Options", headers.XContentTypeOptions)
			}
			if headers.ReferrerPolicy != "" {
				w.Header().Set("Referrer-Policy", headers.ReferrerPolicy)
			}
			if headers.ContentSecurityPolicy != "" {
				w.Header().Set("Content-Security-Policy", headers.ContentSecurityPolicy)
			}

			// HSTS only makes sense when the public URL is HTTPS
			if cfg.IsHTTPS() && headers.StrictTransportSecurity != "" {
				w.Header().Set("Strict-Transport-Security", headers.StrictTransportSecurity)
			}

			next.ServeHTTP(w, r)
		})
	}
}
