package models

import (
	"fmt"
	"time"
)

// User is the identity the storefront knows about after login
type User struct {
	Username string `json:"username"`
}

// LoginPayload is the "user authenticated" event dispatched to the auth store
type LoginPayload struct {
	User User   `json:"user"`
	JWT  string `json:"jwt"`
}

// Session represents a signed-in browser and the upstream token it holds
type Session struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Token     string    `json:"-"` // Never serialize to JSON
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

// SessionState represents the current state of a session
type SessionState string

const (
	SessionStateActive  SessionState = "active"
	SessionStateExpired SessionState = "expired"
)

// Validate checks if the session fields are valid
func (s *Session) Validate() error {
	if s.ID == "" {
		return fmt.Errorf("session id is required")
	}
	if s.Token == "" {
		return fmt.Errorf("token is required")
	}
	if s.ExpiresAt.IsZero() {
		return fmt.Errorf("expires_at is required")
	}
	return nil
}

// State returns the current state of the session
func (s *Session) State() SessionState {
	if !time.Now().Before(s.ExpiresAt) {
		return SessionStateExpired
	}
	return SessionStateActive
}

// IsActive returns true if the session is currently active
func (s *Session) IsActive() bool {
	return s.State() == SessionStateActive
}

// IsExpired returns true if the session has expired
func (s *Session) IsExpired() bool {
	return s.State() == SessionStateExpired
}
