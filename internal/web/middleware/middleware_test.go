package middleware

import (
	"bytes"
	"errors"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gorilla/csrf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shindakun/storefront/internal/auth"
	"github.com/shindakun/storefront/internal/config"
	"github.com/shindakun/storefront/internal/models"
)

type fakeSessions struct {
	session *models.Session
}

func (f fakeSessions) GetSession(*http.Request) (*models.Session, error) {
	if f.session == nil {
		return nil, errors.New("no session")
	}
	return f.session, nil
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestRequireAuthRedirectsAnonymous(t *testing.T) {
	h := RequireAuth(fakeSessions{})(okHandler())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/account", nil))
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, LoginPath, rec.Header().Get("Location"))
}

func TestRequireAuthHTMXRedirect(t *testing.T) {
	h := RequireAuth(fakeSessions{})(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/account", nil)
	req.Header.Set("HX-Request", "true")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, LoginPath, rec.Header().Get("HX-Redirect"))
}

func TestRequireAuthAddsSessionToContext(t *testing.T) {
	want := &models.Session{ID: "s1", Username: "john"}

	var got *models.Session
	h := RequireAuth(fakeSessions{session: want})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = auth.GetSessionFromContext(r.Context())
	}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/account", nil))
	assert.Same(t, want, got)
}

func TestLoggingMiddlewareRecordsUser(t *testing.T) {
	var buf bytes.Buffer
	logger := log.New(&buf, "", 0)

	chain := LoggingMiddleware(logger)(RequireAuth(fakeSessions{session: &models.Session{Username: "mor_2314"}})(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTeapot)
			w.Write([]byte("hello"))
		}),
	))

	chain.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/account", nil))

	line := buf.String()
	assert.Contains(t, line, "method=GET")
	assert.Contains(t, line, "path=/account")
	assert.Contains(t, line, "status=418")
	assert.Contains(t, line, "user=mor_2314")
	assert.Contains(t, line, "bytes=5")
}

func TestLoggingMiddlewareAnonymous(t *testing.T) {
	var buf bytes.Buffer
	LoggingMiddleware(log.New(&buf, "", 0))(okHandler()).
		ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Contains(t, buf.String(), "user=-")
	assert.Contains(t, buf.String(), "status=200")
}

func TestSecurityHeaders(t *testing.T) {
	cfg := &config.Config{}
	cfg.Server.BaseURL = "https://shop.example.com"
	cfg.Server.Security.Headers = config.SecurityHeadersConfig{
		XFrameOptions:           "DENY",
		XContentTypeOptions:     "nosniff",
		ReferrerPolicy:          "same-origin",
		ContentSecurityPolicy:   "default-src 'self'",
		StrictTransportSecurity: "max-age=31536000",
	}

	rec := httptest.NewRecorder()
	SecurityHeaders(cfg)(okHandler()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "same-origin", rec.Header().Get("Referrer-Policy"))
	assert.Equal(t, "default-src 'self'", rec.Header().Get("Content-Security-Policy"))
	assert.Equal(t, "max-age=31536000", rec.Header().Get("Strict-Transport-Security"))

	// No HSTS over plain HTTP
	cfg.Server.BaseURL = "http://localhost:8080"
	rec = httptest.NewRecorder()
	SecurityHeaders(cfg)(okHandler()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Empty(t, rec.Header().Get("Strict-Transport-Security"))
}

func TestMaxBytesMiddleware(t *testing.T) {
	var readErr error
	h := MaxBytesMiddleware(8)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, readErr = io.ReadAll(r.Body)
	}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/", strings.NewReader("0123456789")))
	var maxErr *http.MaxBytesError
	assert.ErrorAs(t, readErr, &maxErr)

	readErr = nil
	MaxBytesMiddleware(0)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, readErr = io.ReadAll(r.Body)
	})).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/", strings.NewReader("0123456789")))
	assert.NoError(t, readErr)
}

func TestCSRFRejectsPostWithoutToken(t *testing.T) {
	h := CSRFProtection([]byte("session-secret-0123456789abcdef!!"), false)(okHandler())

	form := url.Values{"username": {"john"}}
	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestCSRFAcceptsRoundTrippedToken(t *testing.T) {
	var token string
	h := CSRFProtection([]byte("session-secret-0123456789abcdef!!"), false)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			token = csrf.Token(r)
		}
		w.WriteHeader(http.StatusOK)
	}))

	getRec := httptest.NewRecorder()
	h.ServeHTTP(getRec, httptest.NewRequest(http.MethodGet, "/auth/login", nil))
	require.NotEmpty(t, token)

	form := url.Values{CSRFFieldName: {token}, "username": {"john"}}
	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for _, c := range getRec.Result().Cookies() {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCSRFFailureHandlerHTMX(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/auth/login", nil)
	req.Header.Set("HX-Request", "true")
	rec := httptest.NewRecorder()
	CSRFFailureHandler(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rec.Body.String(), `role="alert"`)
}
