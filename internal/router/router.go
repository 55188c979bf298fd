package router

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/pageza/nutriplan/backend/internal/api"
	"github.com/pageza/nutriplan/backend/internal/middleware"
	"github.com/pageza/nutriplan/backend/internal/web"
)

// Options is everything the router mounts.
type Options struct {
	Log            *zap.Logger
	AllowedOrigins []string
	Sessions       middleware.SessionResolver
	API            api.Handlers
	Pages          *web.Pages
	// CSRF protects the page forms. Nil disables it.
	CSRF        gin.HandlerFunc
	SignInLimit gin.HandlerFunc
	PlanLimit   gin.HandlerFunc
}

// SetupRouter configures the application routes
func SetupRouter(o Options) *gin.Engine {
	router := gin.New()
	router.Use(middleware.Recovery(o.Log))
	router.Use(middleware.RequestLogger(o.Log))
	router.Use(middleware.CORS(o.AllowedOrigins))

	guard := middleware.SessionGuard(o.Sessions)

	// API v1 routes
	api.RegisterRoutes(router, o.API, guard)

	// Pages, including the catch-all not-found page
	o.Pages.RegisterRoutes(router, web.Middleware{
		Guard:       guard,
		Optional:    middleware.OptionalSession(o.Sessions),
		CSRF:        o.CSRF,
		SignInLimit: o.SignInLimit,
		PlanLimit:   o.PlanLimit,
	})

	return router
}
