package types

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenClaims represents the claims in a session token. RegisteredClaims.ID
// carries the server-side session id.
type TokenClaims struct {
	jwt.RegisteredClaims
	UserID uuid.UUID `json:"user_id"`
	Email  string    `json:"email"`
}

// SessionID returns the jti claim.
func (c *TokenClaims) SessionID() string {
	return c.RegisteredClaims.ID
}
