package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pageza/nutriplan/backend/internal/models"
	"github.com/pageza/nutriplan/backend/internal/service"
	"github.com/pageza/nutriplan/backend/internal/types"
	"github.com/pageza/nutriplan/backend/internal/wizard"
)

// ProfileHandler serves the profile and the single-form health record.
type ProfileHandler struct {
	profiles service.IProfileService
	health   service.IHealthService
}

func NewProfileHandler(profiles service.IProfileService, health service.IHealthService) *ProfileHandler {
	return &ProfileHandler{profiles: profiles, health: health}
}

func (h *ProfileHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/profile", h.GetProfile)
	router.PUT("/profile", h.UpdateProfile)
	router.GET("/health-info", h.GetHealthInfo)
	router.PUT("/health-info", h.SaveHealthInfo)
}

func (h *ProfileHandler) GetProfile(c *gin.Context) {
	profile, err := h.profiles.GetProfile(c.Request.Context(), currentSession(c).UserID)
	if err != nil {
		respondErrorWith(c, err, types.Alert("Error fetching profile", ""))
		return
	}
	c.JSON(http.StatusOK, profile)
}

func (h *ProfileHandler) UpdateProfile(c *gin.Context) {
	var req types.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	profile, err := h.profiles.UpdateProfile(c.Request.Context(), currentSession(c).UserID, &req)
	if err != nil {
		respondErrorWith(c, err, types.Alert("Error updating profile", ""))
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"profile":      profile,
		"notification": types.Notice("Profile updated successfully", ""),
	})
}

// HealthInfoResponse is the saved record, or the form defaults when there
// is none yet.
type HealthInfoResponse struct {
	Exists       bool                `json:"exists"`
	Draft        wizard.Draft        `json:"health_info"`
	PlanDuration *string             `json:"plan_duration,omitempty"`
	Notification *types.Notification `json:"notification,omitempty"`
}

func healthInfoResponse(info *models.HealthInfo, ok bool) HealthInfoResponse {
	resp := HealthInfoResponse{Exists: ok, Draft: wizard.DraftFromHealthInfo(info)}
	if info != nil {
		resp.PlanDuration = info.PlanDuration
	}
	return resp
}

func (h *ProfileHandler) GetHealthInfo(c *gin.Context) {
	info, ok, err := h.health.Get(c.Request.Context(), currentSession(c).UserID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, healthInfoResponse(info, ok))
}

func (h *ProfileHandler) SaveHealthInfo(c *gin.Context) {
	var req types.HealthInfoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	info, err := h.health.Save(c.Request.Context(), currentSession(c).UserID, &req)
	if err != nil {
		respondErrorWith(c, err, types.Alert("Error saving health information", ""))
		return
	}

	resp := healthInfoResponse(info, true)
	resp.Notification = types.Notice("Health information saved", "Your health profile has been updated successfully")
	c.JSON(http.StatusOK, resp)
}
