package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pageza/nutriplan/backend/internal/models"
	"github.com/pageza/nutriplan/backend/internal/repository"
	"github.com/pageza/nutriplan/backend/internal/service"
	"github.com/pageza/nutriplan/backend/internal/types"
	"github.com/pageza/nutriplan/backend/internal/viewer"
)

// DashboardPath is where plan errors send the user.
const DashboardPath = "/dashboard"

var errExportsDisabled = errors.New("plan exports are not configured")

// PlanDetailResponse is a saved plan and its view state.
type PlanDetailResponse struct {
	ID        uuid.UUID         `json:"id"`
	Goal      string            `json:"goal"`
	Status    models.PlanStatus `json:"status"`
	Badge     types.Badge       `json:"badge"`
	Document  DocumentView      `json:"document"`
	View      viewer.ViewState  `json:"view"`
	CreatedAt string            `json:"created_at"`
}

// PlanHandler serves the dashboard, the plan list and plan details.
type PlanHandler struct {
	plans     service.IPlanService
	dashboard service.IDashboardService
	exports   service.IExportService
	registry  *viewer.Registry
	limiter   gin.HandlerFunc
	log       *zap.Logger
}

// NewPlanHandler builds the handler. exports and limiter may be nil.
func NewPlanHandler(plans service.IPlanService, dashboard service.IDashboardService, exports service.IExportService, registry *viewer.Registry, limiter gin.HandlerFunc, log *zap.Logger) *PlanHandler {
	return &PlanHandler{plans: plans, dashboard: dashboard, exports: exports, registry: registry, limiter: limiter, log: log}
}

func (h *PlanHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/dashboard", h.Dashboard)

	plans := router.Group("/plans")
	plans.GET("", h.List)
	if h.limiter != nil {
		plans.POST("", h.limiter, h.Request)
	} else {
		plans.POST("", h.Request)
	}
	plans.GET("/:id", h.Get)
	plans.POST("/:id/open", h.Open)
	plans.PUT("/:id/tab", h.SelectTab)
	plans.POST("/:id/copy", h.Copy)
	plans.GET("/:id/download", h.Download)
	plans.POST("/:id/export", h.Export)
}

func (h *PlanHandler) Dashboard(c *gin.Context) {
	s := currentSession(c)
	resp, err := h.dashboard.Load(c.Request.Context(), s.UserID, s.Email)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *PlanHandler) List(c *gin.Context) {
	plans, err := h.plans.List(c.Request.Context(), currentSession(c).UserID)
	if err != nil {
		respondErrorWith(c, err, types.Alert("Error fetching diet plans", ""))
		return
	}
	c.JSON(http.StatusOK, gin.H{"plans": service.Summaries(plans)})
}

// Request accepts the quick plan form.
func (h *PlanHandler) Request(c *gin.Context) {
	var req types.QuickPlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":        err.Error(),
			"notification": types.Alert("Error creating diet plan", ""),
		})
		return
	}

	if err := h.plans.RequestQuickPlan(c.Request.Context(), currentSession(c).UserID, &req); err != nil {
		respondErrorWith(c, err, types.Alert("Error creating diet plan", ""))
		return
	}
	c.JSON(http.StatusAccepted, gin.H{
		"redirect":     DashboardPath,
		"notification": types.Notice("Diet plan request submitted", "We'll prepare your personalized plan shortly!"),
	})
}

func planID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		planError(c, repository.ErrPlanNotFound)
		return uuid.Nil, false
	}
	return id, true
}

// planError answers plan lookups: unknown plans send the user back to the
// dashboard, anything else is a load failure.
func planError(c *gin.Context, err error) {
	if errors.Is(err, repository.ErrPlanNotFound) {
		c.JSON(http.StatusNotFound, gin.H{
			"error":        err.Error(),
			"redirect":     DashboardPath,
			"notification": types.Alert("Plan not found", "The requested diet plan could not be found"),
		})
		return
	}
	respondErrorWith(c, err, types.Alert("Error loading diet plan", ""))
}

// Open checks that a plan can be viewed before navigating to it.
func (h *PlanHandler) Open(c *gin.Context) {
	id, ok := planID(c)
	if !ok {
		return
	}
	_, err := h.plans.Open(c.Request.Context(), currentSession(c).UserID, id)
	if errors.Is(err, service.ErrPlanProcessing) {
		c.JSON(http.StatusConflict, gin.H{
			"error":        err.Error(),
			"notification": types.Notice("Plan not ready", "Your plan is still being processed. Check back later!"),
		})
		return
	}
	if err != nil {
		planError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"redirect": "/plan/" + id.String()})
}

func (h *PlanHandler) document(c *gin.Context) (*viewer.Document, *models.DietPlan, bool) {
	id, ok := planID(c)
	if !ok {
		return nil, nil, false
	}
	doc, plan, err := h.plans.Document(c.Request.Context(), currentSession(c).UserID, id)
	if err != nil {
		planError(c, err)
		return nil, nil, false
	}
	return doc, plan, true
}

func (h *PlanHandler) Get(c *gin.Context) {
	doc, plan, ok := h.document(c)
	if !ok {
		return
	}
	b := plan.Status.Badge()
	c.JSON(http.StatusOK, PlanDetailResponse{
		ID:        plan.ID,
		Goal:      plan.Goal,
		Status:    plan.Status,
		Badge:     types.Badge{Label: b.Label, Color: b.Color},
		Document:  documentView(doc),
		View:      h.registry.Render(currentSession(c).ID, doc),
		CreatedAt: plan.CreatedAt.Format("2006-01-02"),
	})
}

func (h *PlanHandler) SelectTab(c *gin.Context) {
	doc, _, ok := h.document(c)
	if !ok {
		return
	}
	var req types.SelectTabRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	view, err := h.registry.SelectTab(currentSession(c).ID, doc, req.Tab)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ViewResponse{View: view})
}

func (h *PlanHandler) Copy(c *gin.Context) {
	doc, _, ok := h.document(c)
	if !ok {
		return
	}
	text, view := h.registry.Copy(currentSession(c).ID, doc)
	c.JSON(http.StatusOK, ViewResponse{View: view, Text: text})
}

func (h *PlanHandler) Download(c *gin.Context) {
	doc, _, ok := h.document(c)
	if !ok {
		return
	}
	SendDownload(c, doc)
}

// Export uploads the plan to object storage and returns a download link.
func (h *PlanHandler) Export(c *gin.Context) {
	if h.exports == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": errExportsDisabled.Error()})
		return
	}
	id, ok := planID(c)
	if !ok {
		return
	}
	resp, err := h.exports.Export(c.Request.Context(), currentSession(c).UserID, id)
	if err != nil {
		h.log.Error("plan export failed", zap.String("plan_id", id.String()), zap.Error(err))
		planError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
