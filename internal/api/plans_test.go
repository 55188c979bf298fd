package api

import (
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"github.com/pageza/nutriplan/backend/internal/mocks"
	"github.com/pageza/nutriplan/backend/internal/models"
	"github.com/pageza/nutriplan/backend/internal/repository"
	"github.com/pageza/nutriplan/backend/internal/service"
	"github.com/pageza/nutriplan/backend/internal/session"
	"github.com/pageza/nutriplan/backend/internal/types"
	"github.com/pageza/nutriplan/backend/internal/viewer"
)

type planFixture struct {
	router    *gin.Engine
	plans     *mocks.MockPlanService
	dashboard *mocks.MockDashboardService
	sess      *session.Session
}

func setupPlans(t *testing.T, exports service.IExportService) *planFixture {
	t.Helper()
	f := &planFixture{
		plans:     new(mocks.MockPlanService),
		dashboard: new(mocks.MockDashboardService),
		sess:      testSession(),
	}
	f.router = gin.New()
	group := f.router.Group("/api/v1")
	group.Use(signedIn(f.sess))
	registry := viewer.NewRegistry(time.Hour, zap.NewNop())
	NewPlanHandler(f.plans, f.dashboard, exports, registry, nil, zap.NewNop()).RegisterRoutes(group)
	return f
}

func completedPlan(userID uuid.UUID) *models.DietPlan {
	data := datatypes.JSON(`{"nutritional_requirements":"2000 kcal","meal_plan":"Oats","grocery_list":"Oats, milk"}`)
	return &models.DietPlan{
		ID:        uuid.New(),
		UserID:    userID,
		Goal:      "weight-loss",
		Status:    models.PlanCompleted,
		PlanData:  &data,
		CreatedAt: time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC),
	}
}

func TestPlanHandler_Dashboard(t *testing.T) {
	f := setupPlans(t, nil)
	f.dashboard.On("Load", mock.Anything, f.sess.UserID, f.sess.Email).Return(&types.DashboardResponse{
		Greeting:   "Welcome back!",
		Email:      f.sess.Email,
		Actions:    service.DashboardActions,
		Plans:      []types.PlanSummary{},
		EmptyState: &service.EmptyPlans,
	}, nil)

	w := doJSON(t, f.router, http.MethodGet, "/api/v1/dashboard", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var resp types.DashboardResponse
	decode(t, w, &resp)
	assert.Len(t, resp.Actions, 3)
	assert.NotNil(t, resp.EmptyState)
}

func TestPlanHandler_List(t *testing.T) {
	f := setupPlans(t, nil)
	plan := completedPlan(f.sess.UserID)
	f.plans.On("List", mock.Anything, f.sess.UserID).Return([]models.DietPlan{*plan}, nil).Once()
	f.plans.On("List", mock.Anything, f.sess.UserID).Return(nil, errors.New("connection reset")).Once()

	w := doJSON(t, f.router, http.MethodGet, "/api/v1/plans", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Plans []types.PlanSummary `json:"plans"`
	}
	decode(t, w, &resp)
	require.Len(t, resp.Plans, 1)
	assert.Equal(t, "View Plan", resp.Plans[0].Action)

	w = doJSON(t, f.router, http.MethodGet, "/api/v1/plans", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "connection reset")
	assert.Contains(t, w.Body.String(), "Error fetching diet plans")
}

func TestPlanHandler_RequestQuickPlan(t *testing.T) {
	f := setupPlans(t, nil)
	f.plans.On("RequestQuickPlan", mock.Anything, f.sess.UserID, mock.Anything).Return(nil)

	w := doJSON(t, f.router, http.MethodPost, "/api/v1/plans", map[string]string{"goal": "weight-loss"})
	require.Equal(t, http.StatusAccepted, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"redirect":"/dashboard"`)
	assert.Contains(t, w.Body.String(), "Diet plan request submitted")

	w = doJSON(t, f.router, http.MethodPost, "/api/v1/plans", map[string]string{"goal": "bulk-forever"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Error creating diet plan")
	f.plans.AssertNumberOfCalls(t, "RequestQuickPlan", 1)
}

func TestPlanHandler_Open(t *testing.T) {
	f := setupPlans(t, nil)
	ready := uuid.New()
	pending := uuid.New()
	missing := uuid.New()
	f.plans.On("Open", mock.Anything, f.sess.UserID, ready).Return(&models.DietPlan{ID: ready, Status: models.PlanCompleted}, nil)
	f.plans.On("Open", mock.Anything, f.sess.UserID, pending).Return(nil, service.ErrPlanProcessing)
	f.plans.On("Open", mock.Anything, f.sess.UserID, missing).Return(nil, repository.ErrPlanNotFound)

	w := doJSON(t, f.router, http.MethodPost, "/api/v1/plans/"+ready.String()+"/open", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"redirect":"/plan/`+ready.String()+`"`)

	w = doJSON(t, f.router, http.MethodPost, "/api/v1/plans/"+pending.String()+"/open", nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "Plan not ready")

	w = doJSON(t, f.router, http.MethodPost, "/api/v1/plans/"+missing.String()+"/open", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), `"redirect":"/dashboard"`)

	w = doJSON(t, f.router, http.MethodPost, "/api/v1/plans/not-a-uuid/open", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPlanHandler_Detail(t *testing.T) {
	f := setupPlans(t, nil)
	plan := completedPlan(f.sess.UserID)
	doc, err := viewer.PlanDocument(plan)
	require.NoError(t, err)
	f.plans.On("Document", mock.Anything, f.sess.UserID, plan.ID).Return(doc, plan, nil)

	base := "/api/v1/plans/" + plan.ID.String()
	w := doJSON(t, f.router, http.MethodGet, base, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp PlanDetailResponse
	decode(t, w, &resp)
	assert.Equal(t, "2026-03-14", resp.CreatedAt)
	assert.Equal(t, doc.DefaultTab, resp.View.ActiveTab)
	assert.Nil(t, resp.View.RatingPrompt)

	w = doJSON(t, f.router, http.MethodPut, base+"/tab", map[string]string{"tab": doc.Tabs[1].ID})
	require.Equal(t, http.StatusOK, w.Code)
	var vr ViewResponse
	decode(t, w, &vr)
	assert.Equal(t, doc.Tabs[1].ID, vr.View.ActiveTab)

	w = doJSON(t, f.router, http.MethodPost, base+"/copy", nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &vr)
	assert.True(t, vr.View.Copied)
	assert.Equal(t, doc.CopyText(), vr.Text)

	w = doJSON(t, f.router, http.MethodGet, base+"/download", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), doc.Filename)
	assert.Equal(t, doc.DownloadText(), w.Body.String())
}

func TestPlanHandler_DetailErrors(t *testing.T) {
	f := setupPlans(t, nil)
	missing := uuid.New()
	broken := uuid.New()
	f.plans.On("Document", mock.Anything, f.sess.UserID, missing).Return(nil, nil, repository.ErrPlanNotFound)
	f.plans.On("Document", mock.Anything, f.sess.UserID, broken).Return(nil, nil, errors.New("bad row"))

	w := doJSON(t, f.router, http.MethodGet, "/api/v1/plans/"+missing.String(), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "Plan not found")

	w = doJSON(t, f.router, http.MethodGet, "/api/v1/plans/"+broken.String(), nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "Error loading diet plan")
}

func TestPlanHandler_Export(t *testing.T) {
	f := setupPlans(t, nil)
	w := doJSON(t, f.router, http.MethodPost, "/api/v1/plans/"+uuid.NewString()+"/export", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	exports := new(mocks.MockExportService)
	f = setupPlans(t, exports)
	id := uuid.New()
	expires := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	exports.On("Export", mock.Anything, f.sess.UserID, id).Return(&types.ExportResponse{
		Key: "exports/x/plan.md", URL: "https://example.com/plan.md", ExpiresAt: expires,
	}, nil)

	w = doJSON(t, f.router, http.MethodPost, "/api/v1/plans/"+id.String()+"/export", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var resp types.ExportResponse
	decode(t, w, &resp)
	assert.Equal(t, "https://example.com/plan.md", resp.URL)
	assert.True(t, expires.Equal(resp.ExpiresAt))
}
