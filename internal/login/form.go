// Package login implements the storefront sign-in form: its local state, the
// single submission to the auth service and the hand-off to the auth store.
package login

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/shindakun/storefront/internal/authapi"
	"github.com/shindakun/storefront/internal/models"
)

// Messages shown under the form
const (
	MsgCredentialsRejected = "Login failed. Please check your credentials."
	MsgUnexpected          = "An unexpected error occurred. Please try again."
)

// HomePath is where a successful login navigates to
const HomePath = "/"

// Authenticator performs the remote login call
type Authenticator interface {
	Login(ctx context.Context, creds authapi.Credentials) (*authapi.AuthResult, error)
}

// Dispatcher receives the "user authenticated" event
type Dispatcher interface {
	LoginUser(ctx context.Context, payload models.LoginPayload) error
}

// Navigator changes the displayed screen
type Navigator interface {
	Navigate(path string) error
}

// Outcome describes how a submission ended
type Outcome string

const (
	OutcomeSuccess  Outcome = "success"
	OutcomeNoToken  Outcome = "no_token"
	OutcomeRejected Outcome = "rejected"
	OutcomeError    Outcome = "error"
)

// State is a snapshot of the form's UI state
type State struct {
	Username string
	Loading  bool
	Error    string
}

// Form holds the username, password, error message and loading flag of one
// mounted login form
type Form struct {
	auth  Authenticator
	store Dispatcher
	nav   Navigator

	mu       sync.Mutex
	username string
	password string
	errMsg   string
	loading  bool
}

// New creates an empty form
func New(auth Authenticator, store Dispatcher, nav Navigator) *Form {
	return &Form{auth: auth, store: store, nav: nav}
}

// SetUsername updates the username field. No validation is applied.
func (f *Form) SetUsername(v string) {
	f.mu.Lock()
	f.username = v
	f.mu.Unlock()
}

// SetPassword updates the password field. No validation is applied.
func (f *Form) SetPassword(v string) {
	f.mu.Lock()
	f.password = v
	f.mu.Unlock()
}

// State returns the current UI state
func (f *Form) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return State{Username: f.username, Loading: f.loading, Error: f.errMsg}
}

// Submit sends the current credentials once. Authentication failures never
// escape: they become the form's error message and are reported through the
// returned Outcome. The error return is only for a failed dispatch or
// navigation after the service accepted the credentials.
func (f *Form) Submit(ctx context.Context) (Outcome, error) {
	f.mu.Lock()
	f.loading = true
	f.errMsg = ""
	creds := authapi.Credentials{Username: f.username, Password: f.password}
	f.mu.Unlock()

	defer func() {
		f.mu.Lock()
		f.loading = false
		f.mu.Unlock()
	}()

	res, err := f.auth.Login(ctx, creds)
	if err != nil {
		outcome, msg := classify(err)
		f.setError(msg)
		return outcome, nil
	}

	if res == nil || res.Token == "" {
		f.setError(MsgCredentialsRejected)
		return OutcomeNoToken, nil
	}

	payload := models.LoginPayload{
		User: models.User{Username: creds.Username},
		JWT:  res.Token,
	}
	if err := f.store.LoginUser(ctx, payload); err != nil {
		f.setError(MsgUnexpected)
		return OutcomeError, fmt.Errorf("failed to store login: %w", err)
	}
	if err := f.nav.Navigate(HomePath); err != nil {
		return OutcomeSuccess, fmt.Errorf("failed to navigate: %w", err)
	}

	return OutcomeSuccess, nil
}

func (f *Form) setError(msg string) {
	f.mu.Lock()
	f.errMsg = msg
	f.mu.Unlock()
}

// classify maps a failed login call to its user-facing message. A response
// that carried a body shows the server's error text, or the credentials
// message when it had none. No response at all is unexpected.
func classify(err error) (Outcome, string) {
	var apiErr *authapi.APIError
	if errors.As(err, &apiErr) && apiErr.HasBody {
		if apiErr.Message != "" {
			return OutcomeRejected, apiErr.Message
		}
		return OutcomeRejected, MsgCredentialsRejected
	}
	return OutcomeError, MsgUnexpected
}
