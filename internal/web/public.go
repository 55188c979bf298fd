package web

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/pageza/nutriplan/backend/internal/api"
	"github.com/pageza/nutriplan/backend/internal/middleware"
	"github.com/pageza/nutriplan/backend/internal/repository"
	"github.com/pageza/nutriplan/backend/internal/service"
	"github.com/pageza/nutriplan/backend/internal/session"
	"github.com/pageza/nutriplan/backend/internal/types"
)

func (p *Pages) Index(c *gin.Context) {
	p.render(c, http.StatusOK, "index.html", "NutriPlan", p.content)
}

func (p *Pages) Professionals(c *gin.Context) {
	p.render(c, http.StatusOK, "professionals.html", "NutriPlan Pro", p.content.Professionals)
}

type authView struct {
	SignUp bool
}

// AuthPage shows the sign-in form, or sign-up with ?mode=sign-up. Visitors
// who are already signed in go to the dashboard.
func (p *Pages) AuthPage(c *gin.Context) {
	if _, ok := middleware.CurrentSession(c); ok {
		c.Redirect(http.StatusFound, api.DashboardPath)
		return
	}
	p.render(c, http.StatusOK, "auth.html", "Sign In", authView{SignUp: c.Query("mode") == "sign-up"})
}

func (p *Pages) SignIn(c *gin.Context) {
	var req types.LoginRequest
	if err := c.ShouldBind(&req); err != nil {
		p.redirect(c, middleware.SignInPath, types.Alert("Error signing in", "Please enter your email and password."))
		return
	}
	req.Email = strings.TrimSpace(req.Email)

	res, err := p.auth.Login(c.Request.Context(), &req)
	if err != nil {
		desc := "Something went wrong. Please try again."
		if errors.Is(err, service.ErrInvalidCredentials) {
			desc = "Invalid email or password."
		} else {
			p.log.Error("sign in failed", zap.Error(err))
		}
		p.redirect(c, middleware.SignInPath, types.Alert("Error signing in", desc))
		return
	}

	api.SetSessionCookie(c, res.Token, res.Session.ExpiresAt, p.secure)
	p.redirect(c, api.DashboardPath, nil)
}

func (p *Pages) SignUp(c *gin.Context) {
	back := middleware.SignInPath + "?mode=sign-up"
	var req types.RegisterRequest
	if err := c.ShouldBind(&req); err != nil {
		p.redirect(c, back, types.Alert("Error signing up", "Please enter a valid email and a password of at least 6 characters."))
		return
	}
	req.Email = strings.TrimSpace(req.Email)

	res, err := p.auth.Register(c.Request.Context(), &req)
	if err != nil {
		desc := "Something went wrong. Please try again."
		if errors.Is(err, repository.ErrUserExists) {
			desc = "An account with this email already exists."
		} else {
			p.log.Error("sign up failed", zap.Error(err))
		}
		p.redirect(c, back, types.Alert("Error signing up", desc))
		return
	}

	api.SetSessionCookie(c, res.Token, res.Session.ExpiresAt, p.secure)
	p.redirect(c, api.DashboardPath, types.Notice("Account created", "Welcome to NutriPlan!"))
}

// SignOut ends the session. The cookie is cleared and the user is sent to
// the sign-in page even when ending the session fails.
func (p *Pages) SignOut(c *gin.Context) {
	api.ClearSessionCookie(c, p.secure)
	if err := p.auth.Logout(c.Request.Context(), middleware.Token(c)); err != nil && !errors.Is(err, session.ErrNoSession) {
		p.log.Error("sign out failed", zap.Error(err))
	}
	p.redirect(c, middleware.SignInPath, types.Notice("Signed out successfully", ""))
}

// NotFound answers unknown routes: a 404 page for browsers, JSON for the
// API.
func (p *Pages) NotFound(c *gin.Context) {
	path := c.Request.URL.Path
	p.log.Warn("route not found", zap.String("path", path))
	if strings.HasPrefix(path, "/api/") || !middleware.WantsHTML(c.Request) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	p.render(c, http.StatusNotFound, "not_found.html", "Page not found", path)
}
