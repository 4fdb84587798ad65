package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/sessions"

	"github.com/shindakun/storefront/internal/models"
	"github.com/shindakun/storefront/internal/storage"
)

const (
	sessionName         = "storefront-session"
	sessionKeySessionID = "session_id"
)

// ErrNoSession is returned when the request carries no usable session
var ErrNoSession = errors.New("no session")

type contextKey struct{}

// SessionManager is the application-wide auth store. The signed cookie only
// carries a session id; the username and token live in the database.
type SessionManager struct {
	store  *sessions.CookieStore
	db     *sql.DB
	maxAge time.Duration
	now    func() time.Time
}

// InitSessions creates a session manager with HTTP-only cookies that expire after maxAge seconds
func InitSessions(secret string, maxAge int, secure bool, sameSite http.SameSite, db *sql.DB) *SessionManager {
	store := sessions.NewCookieStore([]byte(secret))

	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true, // Prevent JavaScript access
		Secure:   secure,
		SameSite: sameSite,
	}

	return &SessionManager{
		store:  store,
		db:     db,
		maxAge: time.Duration(maxAge) * time.Second,
		now:    time.Now,
	}
}

// LoginUser stores the authenticated user and token and points the
// browser's cookie at the new session
func (sm *SessionManager) LoginUser(w http.ResponseWriter, r *http.Request, payload models.LoginPayload) (*models.Session, error) {
	now := sm.now()
	session := &models.Session{
		ID:        uuid.New().String(),
		Username:  payload.User.Username,
		Token:     payload.JWT,
		ExpiresAt: TokenExpiry(payload.JWT, now, now.Add(sm.maxAge)),
		CreatedAt: now,
	}
	if err := session.Validate(); err != nil {
		return nil, fmt.Errorf("invalid session: %w", err)
	}

	// A stale or tampered cookie still hands back a usable new session
	cookieSession, _ := sm.store.Get(r, sessionName)

	// Replace any previous session held by this browser
	if oldID, ok := cookieSession.Values[sessionKeySessionID].(string); ok && oldID != "" {
		if err := storage.DeleteSession(r.Context(), sm.db, oldID); err != nil {
			return nil, err
		}
	}

	if err := storage.SaveSession(r.Context(), sm.db, session); err != nil {
		return nil, err
	}

	cookieSession.Values[sessionKeySessionID] = session.ID
	if maxAge := int(session.ExpiresAt.Sub(now).Seconds()); maxAge > 0 && maxAge < sm.store.Options.MaxAge {
		cookieSession.Options.MaxAge = maxAge
	}
	if err := cookieSession.Save(r, w); err != nil {
		return nil, fmt.Errorf("failed to save cookie session: %w", err)
	}

	return session, nil
}

// GetSession retrieves session data from cookie and database
func (sm *SessionManager) GetSession(r *http.Request) (*models.Session, error) {
	cookieSession, err := sm.store.Get(r, sessionName)
	if err != nil {
		return nil, fmt.Errorf("failed to get cookie session: %w", err)
	}

	id, ok := cookieSession.Values[sessionKeySessionID].(string)
	if !ok || id == "" {
		return nil, ErrNoSession
	}

	session, err := storage.GetSession(r.Context(), sm.db, id)
	if errors.Is(err, storage.ErrSessionNotFound) {
		return nil, ErrNoSession
	}
	if err != nil {
		return nil, err
	}

	if !sm.now().Before(session.ExpiresAt) {
		// Clean up expired session
		if err := storage.DeleteSession(r.Context(), sm.db, id); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("session has expired: %w", ErrNoSession)
	}

	return session, nil
}

// ClearSession removes session from cookie and database (logout)
func (sm *SessionManager) ClearSession(w http.ResponseWriter, r *http.Request) error {
	cookieSession, err := sm.store.Get(r, sessionName)
	if err != nil {
		// Unreadable cookie, overwrite it below
		cookieSession = sessions.NewSession(sm.store, sessionName)
		cookieSession.Options = &sessions.Options{Path: "/"}
	}

	if id, ok := cookieSession.Values[sessionKeySessionID].(string); ok && id != "" {
		if err := storage.DeleteSession(r.Context(), sm.db, id); err != nil {
			return err
		}
	}

	cookieSession.Values = map[any]any{}
	cookieSession.Options.MaxAge = -1
	if err := cookieSession.Save(r, w); err != nil {
		return fmt.Errorf("failed to clear cookie session: %w", err)
	}

	return nil
}

// PurgeExpired deletes sessions whose expiry has passed
func (sm *SessionManager) PurgeExpired(ctx context.Context) (int64, error) {
	return storage.DeleteExpiredSessions(ctx, sm.db, sm.now())
}

// GetSessionFromContext retrieves session from request context
func GetSessionFromContext(ctx context.Context) (*models.Session, bool) {
	session, ok := ctx.Value(contextKey{}).(*models.Session)
	return session, ok
}

// SetSessionInContext stores session in request context
func SetSessionInContext(ctx context.Context, session *models.Session) context.Context {
	return context.WithValue(ctx, contextKey{}, session)
}
