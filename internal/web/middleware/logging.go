package middleware

import (
	"context"
	"log"
	"net/http"
	"time"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
	written    int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	n, err := rw.ResponseWriter.Write(b)
	rw.written += n
	return n, err
}

// Unwrap lets http.ResponseController reach the underlying writer
func (rw *responseWriter) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}

type logUserKey struct{}

// logUser is filled in by handlers further down the chain
type logUser struct {
	name string
}

// SetLogUser records the signed-in username for the access log line
func SetLogUser(ctx context.Context, username string) {
	if u, ok := ctx.Value(logUserKey{}).(*logUser); ok {
		u.name = username
	}
}

// LoggingMiddleware logs HTTP requests with method, path, status, duration and user
func LoggingMiddleware(logger *log.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			rw := &responseWriter{
				ResponseWriter: w,
				statusCode:     http.StatusOK,
			}
			user := &logUser{}
			ctx := context.WithValue(r.Context(), logUserKey{}, user)

			next.ServeHTTP(rw, r.WithContext(ctx))

			name := user.name
			if name == "" {
				name = "-"
			}
			reqID := chimiddleware.GetReqID(r.Context())
			if reqID == "" {
				reqID = "-"
			}

			logger.Printf(
				"method=%s path=%s status=%d duration=%s user=%s bytes=%d request_id=%s",
				r.Method,
				r.URL.Path,
				rw.statusCode,
				time.Since(start).Round(time.Millisecond),
				name,
				rw.written,
				reqID,
			)
		})
	}
}
