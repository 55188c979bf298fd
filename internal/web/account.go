package web

import (
	"errors"
	"math"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pageza/nutriplan/backend/internal/api"
	"github.com/pageza/nutriplan/backend/internal/middleware"
	"github.com/pageza/nutriplan/backend/internal/models"
	"github.com/pageza/nutriplan/backend/internal/repository"
	"github.com/pageza/nutriplan/backend/internal/service"
	"github.com/pageza/nutriplan/backend/internal/session"
	"github.com/pageza/nutriplan/backend/internal/types"
	"github.com/pageza/nutriplan/backend/internal/viewer"
)

// GoalOption is one choice of the quick plan form.
type GoalOption struct {
	Value string
	Label string
}

var quickPlanGoals = []GoalOption{
	{"weight-loss", "Weight Loss"},
	{"muscle-gain", "Muscle Gain"},
	{"maintenance", "Maintenance"},
	{"general-health", "General Health"},
}

func currentSession(c *gin.Context) *session.Session {
	s, _ := middleware.CurrentSession(c)
	return s
}

func (p *Pages) Dashboard(c *gin.Context) {
	s := currentSession(c)
	resp, err := p.dashboard.Load(c.Request.Context(), s.UserID, s.Email)
	if err != nil {
		p.log.Error("failed to load dashboard", zap.Error(err))
		resp = &types.DashboardResponse{
			Greeting:     "Welcome, " + s.Email + "!",
			Email:        s.Email,
			Actions:      service.DashboardActions,
			EmptyState:   &service.EmptyPlans,
			Notification: types.Alert("Error fetching diet plans", ""),
		}
	}
	p.renderPage(c, http.StatusOK, "dashboard.html", &page{
		Title: "Dashboard",
		Flash: resp.Notification,
		Data:  resp,
	})
}

func (p *Pages) Profile(c *gin.Context) {
	profile, err := p.profiles.GetProfile(c.Request.Context(), currentSession(c).UserID)
	if err != nil {
		p.log.Error("failed to fetch profile", zap.Error(err))
		p.renderPage(c, http.StatusOK, "profile.html", &page{
			Title: "Your Profile",
			Flash: types.Alert("Error fetching profile", ""),
		})
		return
	}
	p.render(c, http.StatusOK, "profile.html", "Your Profile", profile)
}

func (p *Pages) UpdateProfile(c *gin.Context) {
	var req types.UpdateProfileRequest
	if err := c.ShouldBind(&req); err != nil {
		p.redirect(c, "/profile", types.Alert("Error updating profile", "Names must be at most 100 characters."))
		return
	}
	if _, err := p.profiles.UpdateProfile(c.Request.Context(), currentSession(c).UserID, &req); err != nil {
		p.log.Error("failed to update profile", zap.Error(err))
		p.redirect(c, "/profile", types.Alert("Error updating profile", ""))
		return
	}
	p.redirect(c, "/profile", types.Notice("Profile updated successfully", ""))
}

func (p *Pages) CreatePlan(c *gin.Context) {
	p.render(c, http.StatusOK, "create_plan.html", "Create New Diet Plan", quickPlanGoals)
}

// RequestPlan accepts the quick plan form. Nothing is stored yet.
func (p *Pages) RequestPlan(c *gin.Context) {
	var req types.QuickPlanRequest
	if err := c.ShouldBind(&req); err != nil {
		p.redirect(c, "/create-plan", types.Alert("Error creating diet plan", "Please select your goal."))
		return
	}
	if err := p.plans.RequestQuickPlan(c.Request.Context(), currentSession(c).UserID, &req); err != nil {
		p.log.Error("quick plan request failed", zap.Error(err))
		p.redirect(c, "/create-plan", types.Alert("Error creating diet plan", ""))
		return
	}
	p.redirect(c, api.DashboardPath, types.Notice("Diet plan request submitted", "We'll prepare your personalized plan shortly!"))
}

// planFailure sends the user back to the dashboard with the reason.
func (p *Pages) planFailure(c *gin.Context, err error) {
	if errors.Is(err, repository.ErrPlanNotFound) {
		p.redirect(c, api.DashboardPath, types.Alert("Plan not found", "The requested diet plan could not be found"))
		return
	}
	p.log.Error("failed to load diet plan", zap.Error(err))
	p.redirect(c, api.DashboardPath, types.Alert("Error loading diet plan", ""))
}

func (p *Pages) planID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		p.planFailure(c, repository.ErrPlanNotFound)
		return uuid.Nil, false
	}
	return id, true
}

// OpenPlan navigates to a plan once it is ready.
func (p *Pages) OpenPlan(c *gin.Context) {
	id, ok := p.planID(c)
	if !ok {
		return
	}
	_, err := p.plans.Open(c.Request.Context(), currentSession(c).UserID, id)
	switch {
	case errors.Is(err, service.ErrPlanProcessing):
		p.redirect(c, api.DashboardPath, types.Notice("Plan not ready", "Your plan is still being processed. Check back later!"))
	case err != nil:
		p.planFailure(c, err)
	default:
		c.Redirect(http.StatusSeeOther, "/plan/"+id.String())
	}
}

type planView struct {
	Plan   *models.DietPlan
	Title  string
	Badge  models.Badge
	Doc    *viewer.Document
	Active viewer.Tab
	View   viewer.ViewState
	// CopyText is shown while the copy acknowledgment lasts.
	CopyText string
}

func (p *Pages) planDocument(c *gin.Context) (*viewer.Document, *models.DietPlan, bool) {
	id, ok := p.planID(c)
	if !ok {
		return nil, nil, false
	}
	doc, plan, err := p.plans.Document(c.Request.Context(), currentSession(c).UserID, id)
	if err != nil {
		p.planFailure(c, err)
		return nil, nil, false
	}
	return doc, plan, true
}

// PlanDetail shows a saved plan. ?tab= switches tabs.
func (p *Pages) PlanDetail(c *gin.Context) {
	doc, plan, ok := p.planDocument(c)
	if !ok {
		return
	}
	sid := currentSession(c).ID
	view := p.registry.Render(sid, doc)
	if tab := c.Query("tab"); tab != "" {
		if v, err := p.registry.SelectTab(sid, doc, tab); err == nil {
			view = v
		}
	}

	active, _ := doc.Tab(view.ActiveTab)
	data := planView{
		Plan:   plan,
		Title:  viewer.PlanTitle(plan),
		Badge:  plan.Status.Badge(),
		Doc:    doc,
		Active: active,
		View:   view,
	}
	if view.Copied {
		data.CopyText = doc.CopyText()
	}
	p.renderPage(c, http.StatusOK, "plan.html", &page{
		Title:   "Your Diet Plan",
		Refresh: refreshAfter(view),
		Data:    data,
	})
}

func (p *Pages) CopyPlan(c *gin.Context) {
	doc, plan, ok := p.planDocument(c)
	if !ok {
		return
	}
	p.registry.Copy(currentSession(c).ID, doc)
	c.Redirect(http.StatusSeeOther, "/plan/"+plan.ID.String())
}

func (p *Pages) DownloadPlan(c *gin.Context) {
	doc, _, ok := p.planDocument(c)
	if !ok {
		return
	}
	api.SendDownload(c, doc)
}

// refreshAfter is the number of seconds until the view changes on its own:
// the copy acknowledgment ending or the rating prompt opening. Zero means
// nothing is pending.
func refreshAfter(v viewer.ViewState) int {
	var next *time.Time
	if v.Copied && v.CopiedUntil != nil {
		next = v.CopiedUntil
	}
	if pr := v.RatingPrompt; pr != nil && pr.OpensAt != nil {
		if next == nil || pr.OpensAt.Before(*next) {
			next = pr.OpensAt
		}
	}
	if next == nil {
		return 0
	}
	secs := int(math.Ceil(time.Until(*next).Seconds()))
	if secs < 1 {
		secs = 1
	}
	return secs
}
