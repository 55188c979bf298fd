package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/pageza/nutriplan/backend/internal/session"
)

// SessionCookie carries the session token for server-rendered pages.
const SessionCookie = "nutriplan_session"

// Gin context keys set by SessionGuard.
const (
	ContextUserID    = "user_id"
	ContextSessionID = "session_id"
	ContextEmail     = "email"
	ContextSession   = "session"
	ContextToken     = "token"
)

// SignInPath is where unauthenticated visitors are sent.
const SignInPath = "/auth"

// SessionResolver resolves a token to a live session.
type SessionResolver interface {
	GetSession(ctx context.Context, token string) (*session.Session, error)
}

// SessionGuard admits only requests with a live session. Browsers asking
// for HTML are redirected to the sign-in page without a body; API clients
// get a 401 that names the same destination.
func SessionGuard(resolver SessionResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		if attach(c, resolver) {
			c.Next()
			return
		}

		if WantsHTML(c.Request) {
			c.Header("Location", SignInPath)
			c.AbortWithStatus(http.StatusFound)
			return
		}
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"error":    session.ErrNoSession.Error(),
			"redirect": SignInPath,
		})
	}
}

// OptionalSession attaches the session when there is one and never blocks.
func OptionalSession(resolver SessionResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		attach(c, resolver)
		c.Next()
	}
}

func attach(c *gin.Context, resolver SessionResolver) bool {
	token := TokenFrom(c.Request)
	if token == "" {
		return false
	}
	s, err := resolver.GetSession(c.Request.Context(), token)
	if err != nil {
		return false
	}

	c.Set(ContextUserID, s.UserID)
	c.Set(ContextSessionID, s.ID)
	c.Set(ContextEmail, s.Email)
	c.Set(ContextSession, s)
	c.Set(ContextToken, token)
	return true
}

// TokenFrom reads a bearer token, falling back to the session cookie.
func TokenFrom(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		parts := strings.SplitN(h, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return strings.TrimSpace(parts[1])
		}
		return ""
	}
	if cookie, err := r.Cookie(SessionCookie); err == nil {
		return cookie.Value
	}
	return ""
}

// WantsHTML reports whether the request is a page load rather than an API
// call.
func WantsHTML(r *http.Request) bool {
	if strings.HasPrefix(r.URL.Path, "/api/") {
		return false
	}
	return strings.Contains(r.Header.Get("Accept"), "text/html")
}

// CurrentSession returns the session attached by SessionGuard.
func CurrentSession(c *gin.Context) (*session.Session, bool) {
	v, ok := c.Get(ContextSession)
	if !ok {
		return nil, false
	}
	s, ok := v.(*session.Session)
	return s, ok
}

// UserID returns the signed-in user's id, or uuid.Nil.
func UserID(c *gin.Context) uuid.UUID {
	if v, ok := c.Get(ContextUserID); ok {
		if id, ok := v.(uuid.UUID); ok {
			return id
		}
	}
	return uuid.Nil
}

// Token returns the token the session was resolved from.
func Token(c *gin.Context) string {
	return c.GetString(ContextToken)
}
