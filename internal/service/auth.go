package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/pageza/nutriplan/backend/internal/models"
	"github.com/pageza/nutriplan/backend/internal/repository"
	"github.com/pageza/nutriplan/backend/internal/session"
	"github.com/pageza/nutriplan/backend/internal/types"
)

var ErrInvalidCredentials = errors.New("invalid email or password")

// dummyHash is compared against when the e-mail is unknown so both failure
// paths cost one bcrypt comparison.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("not-a-real-password"), bcrypt.DefaultCost)

// AuthResult is a signed-in session and its token.
type AuthResult struct {
	Token   string
	Session *session.Session
}

// Response converts the result to its API form.
func (r *AuthResult) Response() types.AuthResponse {
	return types.AuthResponse{
		Token:     r.Token,
		ExpiresAt: r.Session.ExpiresAt,
		User:      types.UserResponse{ID: r.Session.UserID, Email: r.Session.Email},
	}
}

type AuthService struct {
	users    *repository.UserRepository
	sessions *session.Manager
	log      *zap.Logger
}

func NewAuthService(users *repository.UserRepository, sessions *session.Manager, log *zap.Logger) *AuthService {
	return &AuthService{users: users, sessions: sessions, log: log}
}

// Register creates the account and its profile, then signs the user in.
func (s *AuthService) Register(ctx context.Context, req *types.RegisterRequest) (*AuthResult, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{Email: req.Email, PasswordHash: string(hash)}
	if err := s.users.CreateWithProfile(ctx, user, req.FirstName, req.LastName); err != nil {
		return nil, err
	}
	s.log.Info("user registered", zap.String("user_id", user.ID.String()))

	return s.signIn(ctx, user)
}

func (s *AuthService) Login(ctx context.Context, req *types.LoginRequest) (*AuthResult, error) {
	user, err := s.users.FindByEmail(ctx, req.Email)
	if errors.Is(err, repository.ErrUserNotFound) {
		_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(req.Password))
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return s.signIn(ctx, user)
}

func (s *AuthService) signIn(ctx context.Context, user *models.User) (*AuthResult, error) {
	token, sess, err := s.sessions.SignIn(ctx, user.ID, user.Email)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Token: token, Session: sess}, nil
}

// Session resolves a token. Every failure is session.ErrNoSession.
func (s *AuthService) Session(ctx context.Context, token string) (*session.Session, error) {
	return s.sessions.GetSession(ctx, token)
}

func (s *AuthService) Refresh(ctx context.Context, token string) (*AuthResult, error) {
	fresh, sess, err := s.sessions.Refresh(ctx, token)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Token: fresh, Session: sess}, nil
}

func (s *AuthService) Logout(ctx context.Context, token string) error {
	return s.sessions.SignOut(ctx, token)
}
