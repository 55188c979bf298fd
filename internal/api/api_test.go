package api

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/pageza/nutriplan/backend/internal/middleware"
	"github.com/pageza/nutriplan/backend/internal/session"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func testSession() *session.Session {
	now := time.Now()
	return &session.Session{
		ID:        uuid.NewString(),
		UserID:    uuid.New(),
		Email:     "test@example.com",
		IssuedAt:  now,
		ExpiresAt: now.Add(time.Hour),
	}
}

// signedIn stands in for SessionGuard with a fixed session.
func signedIn(s *session.Session) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.ContextUserID, s.UserID)
		c.Set(middleware.ContextSessionID, s.ID)
		c.Set(middleware.ContextEmail, s.Email)
		c.Set(middleware.ContextSession, s)
		c.Set(middleware.ContextToken, "token-"+s.ID)
		c.Next()
	}
}

func doJSON(t *testing.T, router http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}
