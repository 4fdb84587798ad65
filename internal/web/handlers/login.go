package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/csrf"

	"github.com/shindakun/storefront/internal/auth"
	"github.com/shindakun/storefront/internal/authapi"
	"github.com/shindakun/storefront/internal/login"
	"github.com/shindakun/storefront/internal/models"
	"github.com/shindakun/storefront/internal/web/middleware"
)

// LoginPage renders the sign-in form. Signed-in visitors go straight home.
func (h *Handlers) LoginPage(w http.ResponseWriter, r *http.Request) {
	if session := h.optionalSession(r); session != nil {
		http.Redirect(w, r, login.HomePath, http.StatusSeeOther)
		return
	}

	h.renderLogin(w, r, http.StatusOK, models.LoginPageData{})
}

// LoginSubmit runs one login form submission
func (h *Handlers) LoginSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.logger.Printf("Failed to parse login form: %v", err)
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}

	nav := &redirectNavigator{w: w, r: r}
	store := &sessionDispatcher{sessions: h.sessionManager, w: w, r: r}

	upstream := &timedAuthenticator{next: h.authClient, now: time.Now}

	form := login.New(upstream, store, nav)
	form.SetUsername(r.PostFormValue("username"))
	form.SetPassword(r.PostFormValue("password"))

	outcome, err := form.Submit(r.Context())
	h.metrics.ObserveLogin(string(outcome), upstream.elapsed)

	state := form.State()
	if err != nil {
		h.logger.Printf("Login for %q could not be completed: %v", state.Username, err)
	} else {
		h.logger.Printf("Login outcome=%s user=%q", outcome, state.Username)
	}

	if nav.navigated {
		return
	}

	h.renderLogin(w, r, http.StatusOK, models.LoginPageData{
		Username: state.Username,
		Error:    state.Error,
		Loading:  state.Loading,
	})
}

// renderLogin renders the form partial for htmx swaps and the full page otherwise
func (h *Handlers) renderLogin(w http.ResponseWriter, r *http.Request, status int, data models.LoginPageData) {
	data.Title = "Sign in"
	data.CSRFField = csrf.TemplateField(r)

	var err error
	if middleware.IsHTMX(r) {
		err = h.renderPartial(w, status, "login-form", data)
	} else {
		err = h.renderTemplate(w, status, "login", TemplateData{Login: data})
	}
	if err != nil {
		h.logger.Printf("Error rendering login form: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

// timedAuthenticator records how long the upstream login call took
type timedAuthenticator struct {
	next    login.Authenticator
	now     func() time.Time
	elapsed time.Duration
}

func (a *timedAuthenticator) Login(ctx context.Context, creds authapi.Credentials) (*authapi.AuthResult, error) {
	start := a.now()
	res, err := a.next.Login(ctx, creds)
	a.elapsed += a.now().Sub(start)
	return res, err
}

// sessionDispatcher hands the "user authenticated" event to the session store
type sessionDispatcher struct {
	sessions *auth.SessionManager
	w        http.ResponseWriter
	r        *http.Request
}

func (d *sessionDispatcher) LoginUser(ctx context.Context, payload models.LoginPayload) error {
	if _, err := d.sessions.LoginUser(d.w, d.r.WithContext(ctx), payload); err != nil {
		return err
	}
	middleware.SetLogUser(ctx, payload.User.Username)
	return nil
}

// redirectNavigator turns a navigation into an HX-Redirect for htmx or a 303 otherwise
type redirectNavigator struct {
	w         http.ResponseWriter
	r         *http.Request
	navigated bool
}

func (n *redirectNavigator) Navigate(path string) error {
	if middleware.IsHTMX(n.r) {
		n.w.Header().Set("HX-Redirect", path)
		n.w.WriteHeader(http.StatusOK)
	} else {
		http.Redirect(n.w, n.r, path, http.StatusSeeOther)
	}
	n.navigated = true
	return nil
}
