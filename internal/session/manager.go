package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pageza/nutriplan/backend/internal/types"
)

const issuer = "nutriplan"

// Manager issues and resolves session tokens. A token is a signed JWT whose
// jti names a stored session. Signing out deletes the stored session, which
// invalidates the token before its own expiry.
type Manager struct {
	store  Store
	events Publisher
	secret []byte
	ttl    time.Duration
	now    func() time.Time
	log    *zap.Logger
}

func NewManager(store Store, events Publisher, secret string, ttl time.Duration, log *zap.Logger) *Manager {
	return &Manager{
		store:  store,
		events: events,
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
		log:    log,
	}
}

// SignIn starts a new session for the user and announces SIGNED_IN.
func (m *Manager) SignIn(ctx context.Context, userID uuid.UUID, email string) (string, *Session, error) {
	now := m.now()
	s := &Session{
		ID:        uuid.NewString(),
		UserID:    userID,
		Email:     email,
		IssuedAt:  now,
		ExpiresAt: now.Add(m.ttl),
	}
	if err := m.store.Save(ctx, s); err != nil {
		return "", nil, fmt.Errorf("failed to save session: %w", err)
	}

	token, err := m.sign(s)
	if err != nil {
		return "", nil, err
	}

	m.announce(ctx, SignedIn, s)
	return token, s, nil
}

// GetSession resolves a token to its live session. Any failure is reported
// as ErrNoSession.
func (m *Manager) GetSession(ctx context.Context, token string) (*Session, error) {
	claims, err := m.parse(token)
	if err != nil {
		return nil, err
	}

	s, err := m.store.Get(ctx, claims.SessionID())
	if err != nil {
		if !errors.Is(err, ErrNoSession) {
			m.log.Warn("session lookup failed", zap.Error(err))
		}
		return nil, ErrNoSession
	}
	if s.UserID != claims.UserID || s.Expired(m.now()) {
		return nil, ErrNoSession
	}
	return s, nil
}

// Refresh extends the session behind token and returns a new token for it.
func (m *Manager) Refresh(ctx context.Context, token string) (string, *Session, error) {
	s, err := m.GetSession(ctx, token)
	if err != nil {
		return "", nil, err
	}

	s.ExpiresAt = m.now().Add(m.ttl)
	if err := m.store.Save(ctx, s); err != nil {
		return "", nil, fmt.Errorf("failed to save session: %w", err)
	}

	fresh, err := m.sign(s)
	if err != nil {
		return "", nil, err
	}

	m.announce(ctx, TokenRefreshed, s)
	return fresh, s, nil
}

// SignOut ends the session behind token and announces SIGNED_OUT.
func (m *Manager) SignOut(ctx context.Context, token string) error {
	s, err := m.GetSession(ctx, token)
	if err != nil {
		return err
	}
	return m.End(ctx, s)
}

// End removes a resolved session and announces SIGNED_OUT.
func (m *Manager) End(ctx context.Context, s *Session) error {
	if err := m.store.Delete(ctx, s.ID); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	m.announce(ctx, SignedOut, s)
	return nil
}

// ValidateToken checks the signature and expiry without consulting the store.
func (m *Manager) ValidateToken(token string) (*types.TokenClaims, error) {
	return m.parse(token)
}

func (m *Manager) announce(ctx context.Context, ev Event, s *Session) {
	if err := m.events.Publish(ctx, Change{Event: ev, Session: *s}); err != nil {
		m.log.Error("failed to publish auth change",
			zap.String("event", string(ev)),
			zap.String("session_id", s.ID),
			zap.Error(err))
	}
}

func (m *Manager) sign(s *Session) (string, error) {
	claims := &types.TokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        s.ID,
			Issuer:    issuer,
			Subject:   s.UserID.String(),
			IssuedAt:  jwt.NewNumericDate(s.IssuedAt),
			ExpiresAt: jwt.NewNumericDate(s.ExpiresAt),
		},
		UserID: s.UserID,
		Email:  s.Email,
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return token, nil
}

func (m *Manager) parse(token string) (*types.TokenClaims, error) {
	if token == "" {
		return nil, ErrNoSession
	}

	claims := &types.TokenClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil || !parsed.Valid || claims.SessionID() == "" {
		return nil, ErrNoSession
	}
	return claims, nil
}
