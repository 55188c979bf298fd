// Package api serves the JSON interface under /api/v1.
package api

import (
	"github.com/gin-gonic/gin"
)

// Handlers groups every JSON handler.
type Handlers struct {
	Auth       *AuthHandler
	Profile    *ProfileHandler
	Assessment *AssessmentHandler
	Plans      *PlanHandler
	Health     *HealthHandler
}

// RegisterRoutes registers all API routes. guard protects everything except
// sign-up, sign-in and the health check.
func RegisterRoutes(router *gin.Engine, h Handlers, guard gin.HandlerFunc) {
	router.GET("/health", h.Health.HealthCheck)

	v1 := router.Group("/api/v1")
	v1.GET("/health", h.Health.HealthCheck)
	h.Auth.RegisterRoutes(v1, guard)

	protected := v1.Group("")
	protected.Use(guard)
	h.Profile.RegisterRoutes(protected)
	h.Assessment.RegisterRoutes(protected)
	h.Plans.RegisterRoutes(protected)
}
