package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/securecookie"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/pageza/nutriplan/backend/config"
	"github.com/pageza/nutriplan/backend/internal/api"
	"github.com/pageza/nutriplan/backend/internal/middleware"
	"github.com/pageza/nutriplan/backend/internal/repository"
	"github.com/pageza/nutriplan/backend/internal/router"
	"github.com/pageza/nutriplan/backend/internal/service"
	"github.com/pageza/nutriplan/backend/internal/session"
	"github.com/pageza/nutriplan/backend/internal/viewer"
	"github.com/pageza/nutriplan/backend/internal/web"
	"github.com/pageza/nutriplan/backend/internal/wizard"
)

const shutdownTimeout = 10 * time.Second

// Deps are the connections the server is built on. Redis and Exports may be
// nil: sessions, drafts and rate limits then live in process memory and plan
// exports are disabled.
type Deps struct {
	DB      *gorm.DB
	Redis   *redis.Client
	Exports service.ObjectStore
	Log     *zap.Logger
}

// Server represents the HTTP server
type Server struct {
	cfg    *config.Config
	router *gin.Engine
	http   *http.Server
	log    *zap.Logger

	broker *session.Broker
	bridge *session.RedisBridge
	subs   []*session.Subscription
}

// New wires repositories, services and handlers into a ready server.
func New(cfg *config.Config, d Deps) (*Server, error) {
	log := d.Log
	gin.SetMode(cfg.Environment.GinMode())

	broker := session.NewBroker(log)
	var (
		publisher session.Publisher = broker
		store     session.Store     = session.NewMemoryStore()
		drafts    wizard.DraftStore = wizard.NewMemoryDraftStore()
		bridge    *session.RedisBridge
	)
	if d.Redis != nil {
		bridge = session.NewRedisBridge(d.Redis, broker, log)
		publisher = bridge
		store = session.NewRedisStore(d.Redis)
		drafts = wizard.NewRedisDraftStore(d.Redis, cfg.DraftTTL)
	} else {
		log.Warn("redis not configured, keeping sessions and drafts in memory")
	}
	sessions := session.NewManager(store, publisher, cfg.JWTSecret, cfg.SessionTTL, log)

	// Repositories
	users := repository.NewUserRepository(d.DB)
	profiles := repository.NewProfileRepository(d.DB)
	healthInfo := repository.NewHealthInfoStore(d.DB)
	plans := repository.NewPlanRepository(d.DB)

	// Services
	authService := service.NewAuthService(users, sessions, log)
	profileService := service.NewProfileService(profiles, users, log)
	healthService := service.NewHealthService(healthInfo, log)
	planService := service.NewPlanService(plans, log)
	dashboardService := service.NewDashboardService(plans, profiles, log)
	feedbackService := service.NewFeedbackService(log)

	var exportService service.IExportService
	if d.Exports != nil {
		exportService = service.NewExportService(planService, d.Exports, cfg.ExportURLExpiry, log)
	}

	assessments := wizard.NewService(drafts, healthService, healthService.FromDraft, cfg.SubmitDelay, log)
	registry := viewer.NewRegistry(cfg.DraftTTL, log)

	signInLimit := middleware.NewSignInRateLimiter(d.Redis, cfg.RateLimitWindow, cfg.RateLimitRequests, log).RateLimitMiddleware()
	planLimit := middleware.NewPlanRequestRateLimiter(d.Redis, cfg.RateLimitWindow, cfg.RateLimitRequests, log).RateLimitMiddleware()

	secure := cfg.Environment.SecureCookies()
	key := formKey(cfg, log)

	pages, err := web.NewPages(web.Deps{
		Auth:          authService,
		Profiles:      profileService,
		Plans:         planService,
		Dashboard:     dashboardService,
		Feedback:      feedbackService,
		Wizard:        assessments,
		Registry:      registry,
		FlashKey:      key,
		SecureCookies: secure,
		Log:           log,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build pages: %w", err)
	}

	engine := router.SetupRouter(router.Options{
		Log:            log,
		AllowedOrigins: cfg.AllowedOrigins,
		Sessions:       sessions,
		API: api.Handlers{
			Auth:       api.NewAuthHandler(authService, broker, secure, signInLimit, log),
			Profile:    api.NewProfileHandler(profileService, healthService),
			Assessment: api.NewAssessmentHandler(assessments, registry, feedbackService, log),
			Plans:      api.NewPlanHandler(planService, dashboardService, exportService, registry, planLimit, log),
			Health:     api.NewHealthHandler(d.DB, d.Redis),
		},
		Pages:       pages,
		CSRF:        middleware.CSRF(key, secure),
		SignInLimit: signInLimit,
		PlanLimit:   planLimit,
	})

	return &Server{
		cfg:    cfg,
		router: engine,
		log:    log,
		broker: broker,
		bridge: bridge,
		subs: []*session.Subscription{
			assessments.DiscardOnSignOut(broker),
			registry.DropOnSignOut(broker),
		},
	}, nil
}

// formKey is the key signing CSRF tokens and flash cookies. Outside
// production a missing key is replaced by a random one, which invalidates
// open forms on restart.
func formKey(cfg *config.Config, log *zap.Logger) []byte {
	if len(cfg.CSRFKey) == 32 {
		return []byte(cfg.CSRFKey)
	}
	log.Warn("csrf_key not set, using a random key for this process")
	return securecookie.GenerateRandomKey(32)
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves HTTP and relays auth changes from other instances until ctx is
// cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	s.http = &http.Server{
		Addr:              s.cfg.Addr(),
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.log.Info("starting server", zap.String("addr", s.http.Addr))
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("failed to start server: %w", err)
		}
		return nil
	})
	if s.bridge != nil {
		g.Go(func() error {
			return s.bridge.Run(ctx)
		})
	}
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return s.Stop(shutdownCtx)
	})

	return g.Wait()
}

// Stop gracefully stops the HTTP server and ends the session subscriptions.
func (s *Server) Stop(ctx context.Context) error {
	for _, sub := range s.subs {
		sub.Unsubscribe()
	}
	s.subs = nil

	if s.http != nil {
		s.log.Info("shutting down server")
		return s.http.Shutdown(ctx)
	}
	return nil
}
