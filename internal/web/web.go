// Package web serves the server-rendered pages. Protected pages sit behind
// the session guard, so no protected markup is written without a session.
package web

import (
	"errors"
	"html/template"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/pageza/nutriplan/backend/internal/service"
	"github.com/pageza/nutriplan/backend/internal/viewer"
	"github.com/pageza/nutriplan/backend/internal/wizard"
)

// Deps are the services the pages render from.
type Deps struct {
	Auth          service.IAuthService
	Profiles      service.IProfileService
	Plans         service.IPlanService
	Dashboard     service.IDashboardService
	Feedback      service.IFeedbackService
	Wizard        *wizard.Service
	Registry      *viewer.Registry
	Content       *Content
	FlashKey      []byte // signs the flash cookie
	SecureCookies bool
	Log           *zap.Logger
}

// Middleware wraps the page routes. Guard and Optional are required; the
// rest may be nil.
type Middleware struct {
	Guard       gin.HandlerFunc
	Optional    gin.HandlerFunc
	CSRF        gin.HandlerFunc
	SignInLimit gin.HandlerFunc
	PlanLimit   gin.HandlerFunc
}

// Pages renders every page of the site.
type Pages struct {
	auth       service.IAuthService
	profiles   service.IProfileService
	plans      service.IPlanService
	dashboard  service.IDashboardService
	feedback   service.IFeedbackService
	wizard     *wizard.Service
	registry   *viewer.Registry
	content    *Content
	assessment *viewer.Document
	templates  map[string]*template.Template
	flashes    *flashes
	secure     bool
	log        *zap.Logger
}

func NewPages(d Deps) (*Pages, error) {
	if len(d.FlashKey) == 0 {
		return nil, errors.New("web: a flash key is required")
	}
	templates, err := parseTemplates()
	if err != nil {
		return nil, err
	}
	content := d.Content
	if content == nil {
		if content, err = LoadContent(); err != nil {
			return nil, err
		}
	}
	return &Pages{
		auth:       d.Auth,
		profiles:   d.Profiles,
		plans:      d.Plans,
		dashboard:  d.Dashboard,
		feedback:   d.Feedback,
		wizard:     d.Wizard,
		registry:   d.Registry,
		content:    content,
		assessment: viewer.AssessmentDocument(),
		templates:  templates,
		flashes:    newFlashes(d.FlashKey, d.SecureCookies),
		secure:     d.SecureCookies,
		log:        d.Log,
	}, nil
}

func chain(handlers ...gin.HandlerFunc) []gin.HandlerFunc {
	out := make([]gin.HandlerFunc, 0, len(handlers))
	for _, h := range handlers {
		if h != nil {
			out = append(out, h)
		}
	}
	return out
}

func (p *Pages) RegisterRoutes(router *gin.Engine, mw Middleware) {
	pages := router.Group("")
	pages.Use(chain(mw.CSRF)...)

	public := pages.Group("")
	public.Use(mw.Optional)
	public.GET("/", p.Index)
	public.GET("/professionals", p.Professionals)
	public.GET("/auth", p.AuthPage)
	public.POST("/auth/sign-in", chain(mw.SignInLimit, p.SignIn)...)
	public.POST("/auth/sign-up", chain(mw.SignInLimit, p.SignUp)...)

	protected := pages.Group("")
	protected.Use(mw.Guard)
	protected.POST("/auth/sign-out", p.SignOut)
	protected.GET("/dashboard", p.Dashboard)
	protected.GET("/profile", p.Profile)
	protected.POST("/profile", p.UpdateProfile)
	protected.GET("/create-plan", p.CreatePlan)
	protected.POST("/create-plan", chain(mw.PlanLimit, p.RequestPlan)...)
	protected.GET("/plan/:id", p.PlanDetail)
	protected.POST("/plan/:id/open", p.OpenPlan)
	protected.POST("/plan/:id/copy", p.CopyPlan)
	protected.GET("/plan/:id/download", p.DownloadPlan)
	protected.GET("/health-assessment", p.Assessment)
	protected.POST("/health-assessment", p.AssessmentAction)
	protected.POST("/health-assessment/results", p.ResultsAction)
	protected.GET("/health-assessment/download", p.DownloadResults)

	router.NoRoute(mw.Optional, p.NotFound)
}
