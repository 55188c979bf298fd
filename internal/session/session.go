// Package session holds process-wide authentication state: signed-in
// sessions, their storage, and the auth-change notifications that pages and
// per-session state subscribe to.
package session

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrNoSession covers every reason a request is not authenticated: missing,
// malformed, expired, or signed-out tokens all look the same to callers.
var ErrNoSession = errors.New("no active session")

// Event names an auth state change.
type Event string

const (
	SignedIn       Event = "SIGNED_IN"
	SignedOut      Event = "SIGNED_OUT"
	TokenRefreshed Event = "TOKEN_REFRESHED"
)

// Session is the server-side record behind a session token.
type Session struct {
	ID        string    `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	Email     string    `json:"email"`
	IssuedAt  time.Time `json:"issued_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Expired reports whether the session is past its expiry at now.
func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// Change is delivered to auth state subscribers.
type Change struct {
	Event   Event   `json:"event"`
	Session Session `json:"session"`
}
