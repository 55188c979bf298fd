package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"

	"github.com/pageza/nutriplan/backend/internal/middleware"
	"github.com/pageza/nutriplan/backend/internal/mocks"
	"github.com/pageza/nutriplan/backend/internal/repository"
	"github.com/pageza/nutriplan/backend/internal/service"
	"github.com/pageza/nutriplan/backend/internal/session"
	"github.com/pageza/nutriplan/backend/internal/types"
)

func setupAuthRouter(auth service.IAuthService, broker *session.Broker, s *session.Session) *gin.Engine {
	r := gin.New()
	h := NewAuthHandler(auth, broker, false, nil, zap.NewNop())
	h.RegisterRoutes(r.Group("/api/v1"), signedIn(s))
	return r
}

func TestAuthHandler_Register(t *testing.T) {
	sess := testSession()
	auth := new(mocks.MockAuthService)
	router := setupAuthRouter(auth, session.NewBroker(zap.NewNop()), sess)

	auth.On("Register", mock.Anything, mock.MatchedBy(func(r *types.RegisterRequest) bool {
		return r.Email == "new@example.com"
	})).Return(&service.AuthResult{Token: "tok", Session: sess}, nil).Once()
	auth.On("Register", mock.Anything, mock.Anything).Return(nil, repository.ErrUserExists).Once()

	w := doJSON(t, router, http.MethodPost, "/api/v1/auth/register", map[string]string{
		"email": "new@example.com", "password": "secret1",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var resp types.AuthResponse
	decode(t, w, &resp)
	assert.Equal(t, "tok", resp.Token)
	assert.Equal(t, sess.UserID, resp.User.ID)
	assert.Contains(t, w.Header().Get("Set-Cookie"), middleware.SessionCookie+"=tok")

	w = doJSON(t, router, http.MethodPost, "/api/v1/auth/register", map[string]string{
		"email": "dup@example.com", "password": "secret1",
	})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = doJSON(t, router, http.MethodPost, "/api/v1/auth/register", map[string]string{
		"email": "not-an-email", "password": "1",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	auth.AssertExpectations(t)
}

func TestAuthHandler_Login(t *testing.T) {
	sess := testSession()
	auth := new(mocks.MockAuthService)
	router := setupAuthRouter(auth, session.NewBroker(zap.NewNop()), sess)

	auth.On("Login", mock.Anything, mock.Anything).Return(nil, service.ErrInvalidCredentials)

	w := doJSON(t, router, http.MethodPost, "/api/v1/auth/login", map[string]string{
		"email": "a@example.com", "password": "wrong-password",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.JSONEq(t, `{"error":"invalid email or password","redirect":"/auth"}`, w.Body.String())
}

func TestAuthHandler_SessionAndLogout(t *testing.T) {
	sess := testSession()
	auth := new(mocks.MockAuthService)
	router := setupAuthRouter(auth, session.NewBroker(zap.NewNop()), sess)

	w := doJSON(t, router, http.MethodGet, "/api/v1/auth/session", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var resp types.SessionResponse
	decode(t, w, &resp)
	assert.Equal(t, sess.ID, resp.SessionID)
	assert.Equal(t, sess.Email, resp.User.Email)

	// a failed sign-out still clears the cookie
	auth.On("Logout", mock.Anything, "token-"+sess.ID).Return(errors.New("redis down"))
	w = doJSON(t, router, http.MethodPost, "/api/v1/auth/logout", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"redirect":"/auth"`)
	assert.Contains(t, w.Body.String(), "Signed out successfully")
	assert.Contains(t, w.Header().Get("Set-Cookie"), "Max-Age=0")
}

func TestAuthHandler_Refresh(t *testing.T) {
	sess := testSession()
	auth := new(mocks.MockAuthService)
	router := setupAuthRouter(auth, session.NewBroker(zap.NewNop()), sess)

	auth.On("Refresh", mock.Anything, "token-"+sess.ID).
		Return(&service.AuthResult{Token: "fresh", Session: sess}, nil)

	w := doJSON(t, router, http.MethodPost, "/api/v1/auth/refresh", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"token":"fresh"`)
}

type streamRecorder struct {
	*httptest.ResponseRecorder
	closed chan bool
}

func (r *streamRecorder) CloseNotify() <-chan bool { return r.closed }

func TestAuthHandler_EventsEndsOnSignOut(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	sess := testSession()
	broker := session.NewBroker(zap.NewNop())
	router := setupAuthRouter(new(mocks.MockAuthService), broker, sess)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/events", nil).WithContext(ctx)
	w := &streamRecorder{ResponseRecorder: httptest.NewRecorder(), closed: make(chan bool)}

	done := make(chan struct{})
	go func() {
		defer close(done)
		router.ServeHTTP(w, req)
	}()

	require.Eventually(t, func() bool { return broker.Subscribers() == 1 }, time.Second, 5*time.Millisecond)

	other := *testSession()
	_ = broker.Publish(ctx, session.Change{Event: session.SignedIn, Session: other})
	_ = broker.Publish(ctx, session.Change{Event: session.TokenRefreshed, Session: *sess})
	_ = broker.Publish(ctx, session.Change{Event: session.SignedOut, Session: *sess})

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("event stream did not end on sign-out")
	}
	cancel()
	require.Eventually(t, func() bool { return broker.Subscribers() == 0 }, time.Second, 5*time.Millisecond)

	body := w.Body.String()
	assert.Equal(t, 2, strings.Count(body, "event:auth"))
	assert.Contains(t, body, "TOKEN_REFRESHED")
	assert.Contains(t, body, "SIGNED_OUT")
	assert.NotContains(t, body, other.ID)
}
