package api

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/pageza/nutriplan/backend/internal/middleware"
	"github.com/pageza/nutriplan/backend/internal/service"
	"github.com/pageza/nutriplan/backend/internal/session"
	"github.com/pageza/nutriplan/backend/internal/types"
)

// AuthHandler serves sign-up, sign-in and the session endpoints.
type AuthHandler struct {
	auth          service.IAuthService
	broker        *session.Broker
	secureCookies bool
	limiter       gin.HandlerFunc
	log           *zap.Logger
}

func NewAuthHandler(auth service.IAuthService, broker *session.Broker, secureCookies bool, limiter gin.HandlerFunc, log *zap.Logger) *AuthHandler {
	return &AuthHandler{auth: auth, broker: broker, secureCookies: secureCookies, limiter: limiter, log: log}
}

func (h *AuthHandler) RegisterRoutes(router *gin.RouterGroup, guard gin.HandlerFunc) {
	auth := router.Group("/auth")

	public := auth.Group("")
	if h.limiter != nil {
		public.Use(h.limiter)
	}
	public.POST("/register", h.Register)
	public.POST("/login", h.Login)

	protected := auth.Group("")
	protected.Use(guard)
	protected.GET("/session", h.Session)
	protected.POST("/refresh", h.Refresh)
	protected.POST("/logout", h.Logout)
	protected.GET("/events", h.Events)
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req types.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	res, err := h.auth.Register(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	SetSessionCookie(c, res.Token, res.Session.ExpiresAt, h.secureCookies)
	c.JSON(http.StatusCreated, res.Response())
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req types.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	res, err := h.auth.Login(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	SetSessionCookie(c, res.Token, res.Session.ExpiresAt, h.secureCookies)
	c.JSON(http.StatusOK, res.Response())
}

func (h *AuthHandler) Session(c *gin.Context) {
	s := currentSession(c)
	c.JSON(http.StatusOK, types.SessionResponse{
		SessionID: s.ID,
		ExpiresAt: s.ExpiresAt,
		User:      types.UserResponse{ID: s.UserID, Email: s.Email},
	})
}

func (h *AuthHandler) Refresh(c *gin.Context) {
	res, err := h.auth.Refresh(c.Request.Context(), middleware.Token(c))
	if err != nil {
		respondError(c, err)
		return
	}
	SetSessionCookie(c, res.Token, res.Session.ExpiresAt, h.secureCookies)
	c.JSON(http.StatusOK, res.Response())
}

// Logout always clears the cookie and answers with the sign-in page, even
// when ending the session fails.
func (h *AuthHandler) Logout(c *gin.Context) {
	ClearSessionCookie(c, h.secureCookies)
	if err := h.auth.Logout(c.Request.Context(), middleware.Token(c)); err != nil && !errors.Is(err, session.ErrNoSession) {
		h.log.Error("sign out failed", zap.Error(err))
	}
	c.JSON(http.StatusOK, gin.H{
		"redirect":     middleware.SignInPath,
		"notification": types.Notice("Signed out successfully", ""),
	})
}

// Events streams the caller's auth changes as server-sent events. The
// stream ends when the client goes away or this session signs out.
func (h *AuthHandler) Events(c *gin.Context) {
	s := currentSession(c)
	changes := h.broker.Watch(c.Request.Context(), func(ch session.Change) bool {
		return ch.Session.UserID == s.UserID
	})

	c.Header("Cache-Control", "no-cache")
	c.Header("X-Accel-Buffering", "no")
	c.Stream(func(io.Writer) bool {
		ch, ok := <-changes
		if !ok {
			return false
		}
		c.SSEvent("auth", gin.H{"event": ch.Event, "session_id": ch.Session.ID})
		return !(ch.Event == session.SignedOut && ch.Session.ID == s.ID)
	})
}

// SetSessionCookie stores the token for page requests.
func SetSessionCookie(c *gin.Context, token string, expires time.Time, secure bool) {
	maxAge := int(time.Until(expires).Seconds())
	if maxAge < 1 {
		maxAge = 1
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.SessionCookie, token, maxAge, "/", "", secure, true)
}

func ClearSessionCookie(c *gin.Context, secure bool) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.SessionCookie, "", -1, "/", "", secure, true)
}
