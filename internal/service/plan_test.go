package service_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/pageza/nutriplan/backend/internal/models"
	"github.com/pageza/nutriplan/backend/internal/repository"
	"github.com/pageza/nutriplan/backend/internal/service"
	"github.com/pageza/nutriplan/backend/internal/testhelpers"
	"github.com/pageza/nutriplan/backend/internal/types"
)

func createPlan(t *testing.T, db *gorm.DB, userID uuid.UUID, goal string, status models.PlanStatus, data string) *models.DietPlan {
	t.Helper()
	plan := &models.DietPlan{UserID: userID, Goal: goal, Status: status}
	if data != "" {
		raw := datatypes.JSON(data)
		plan.PlanData = &raw
	}
	require.NoError(t, repository.NewPlanRepository(db).Upsert(context.Background(), plan))
	return plan
}

func TestPlanService_OpenAndDocument(t *testing.T) {
	db := testhelpers.NewSQLiteDB(t)
	svc := service.NewPlanService(repository.NewPlanRepository(db), zap.NewNop())
	ctx := context.Background()
	user := createUser(t, db, "p@example.com")

	done := createPlan(t, db, user.ID, "muscle-gain", models.PlanCompleted,
		`{"nutritional_requirements":"2,800 kcal","meal_plan":"Oats"}`)
	pending := createPlan(t, db, user.ID, "weight-loss", models.PlanPending, "")

	_, err := svc.Open(ctx, user.ID, done.ID)
	require.NoError(t, err)

	_, err = svc.Open(ctx, user.ID, pending.ID)
	assert.ErrorIs(t, err, service.ErrPlanProcessing)

	doc, plan, err := svc.Document(ctx, user.ID, done.ID)
	require.NoError(t, err)
	assert.Equal(t, done.ID, plan.ID)
	assert.Equal(t, "Muscle Gain Plan", doc.Title)
	assert.Equal(t, "NUTRITIONAL REQUIREMENTS\n2,800 kcal\n\nMEAL PLAN\nOats", doc.CopyText())

	// pending plans can still be opened by direct link
	doc, _, err = svc.Document(ctx, user.ID, pending.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, doc.CopyText())

	_, _, err = svc.Document(ctx, uuid.New(), done.ID)
	assert.ErrorIs(t, err, repository.ErrPlanNotFound)
}

func TestPlanService_RequestQuickPlanStoresNothing(t *testing.T) {
	db := testhelpers.NewSQLiteDB(t)
	svc := service.NewPlanService(repository.NewPlanRepository(db), zap.NewNop())
	user := createUser(t, db, "q@example.com")

	err := svc.RequestQuickPlan(context.Background(), user.ID, &types.QuickPlanRequest{Goal: "maintenance"})
	require.NoError(t, err)

	plans, err := svc.List(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Empty(t, plans)
}

func TestSummaries(t *testing.T) {
	plans := []models.DietPlan{
		{ID: uuid.New(), Goal: "general-health", Status: models.PlanCompleted},
		{ID: uuid.New(), Goal: "weight-loss", Status: models.PlanPending},
	}
	got := service.Summaries(plans)
	require.Len(t, got, 2)

	assert.Equal(t, "General Health Plan", got[0].Title)
	assert.Equal(t, "View Plan", got[0].Action)
	assert.True(t, got[0].Navigable)
	assert.Equal(t, types.Badge{Label: "Completed", Color: "green"}, got[0].Badge)

	assert.Equal(t, "Plan in Progress", got[1].Action)
	assert.False(t, got[1].Navigable)
	assert.Equal(t, "Processing", got[1].Badge.Label)
}

type stubPlans struct {
	plans []models.DietPlan
	err   error
}

func (s stubPlans) ListByOwner(context.Context, uuid.UUID) ([]models.DietPlan, error) {
	return s.plans, s.err
}

type stubProfiles struct {
	profile *models.Profile
	err     error
}

func (s stubProfiles) Get(context.Context, uuid.UUID) (*models.Profile, error) {
	return s.profile, s.err
}

func TestDashboardService_Load(t *testing.T) {
	first := "Ada"
	plans := stubPlans{plans: []models.DietPlan{{ID: uuid.New(), Goal: "maintenance", Status: models.PlanCompleted}}}
	svc := service.NewDashboardService(plans, stubProfiles{profile: &models.Profile{FirstName: &first}}, zap.NewNop())

	got, err := svc.Load(context.Background(), uuid.New(), "ada@example.com")
	require.NoError(t, err)
	assert.Equal(t, "Welcome, ada@example.com!", got.Greeting)
	assert.Equal(t, "Ada", got.DisplayName)
	assert.Len(t, got.Actions, 3)
	assert.Len(t, got.Plans, 1)
	assert.Nil(t, got.EmptyState)
	assert.Nil(t, got.Notification)
}

func TestDashboardService_LoadDegrades(t *testing.T) {
	svc := service.NewDashboardService(
		stubPlans{err: errors.New("connection refused")},
		stubProfiles{err: repository.ErrProfileNotFound},
		zap.NewNop(),
	)

	got, err := svc.Load(context.Background(), uuid.New(), "x@example.com")
	require.NoError(t, err)
	assert.Empty(t, got.DisplayName)
	assert.Empty(t, got.Plans)
	require.NotNil(t, got.Notification)
	assert.Equal(t, "Error fetching diet plans", got.Notification.Title)
	assert.Equal(t, types.VariantDestructive, got.Notification.Variant)
	require.NotNil(t, got.EmptyState)
	assert.Equal(t, "Create Your First Plan", got.EmptyState.Label)
}

type fakeObjectStore struct {
	objects map[string]string
	failPut bool
}

func (f *fakeObjectStore) Upload(_ context.Context, key string, body []byte, _ string) error {
	if f.failPut {
		return errors.New("access denied")
	}
	f.objects[key] = string(body)
	return nil
}

func (f *fakeObjectStore) GeneratePresignedURL(_ context.Context, key string, _ time.Duration) (string, error) {
	return "https://bucket.example.com/" + key + "?sig=1", nil
}

func TestExportService(t *testing.T) {
	db := testhelpers.NewSQLiteDB(t)
	plans := service.NewPlanService(repository.NewPlanRepository(db), zap.NewNop())
	store := &fakeObjectStore{objects: map[string]string{}}
	svc := service.NewExportService(plans, store, 15*time.Minute, zap.NewNop())
	ctx := context.Background()

	user := createUser(t, db, "e@example.com")
	plan := createPlan(t, db, user.ID, "maintenance", models.PlanCompleted, `{"grocery_list":"Rice"}`)

	got, err := svc.Export(ctx, user.ID, plan.ID)
	require.NoError(t, err)
	wantKey := "exports/" + user.ID.String() + "/diet_plan_" + plan.ID.String() + ".md"
	assert.Equal(t, wantKey, got.Key)
	assert.True(t, strings.HasPrefix(got.URL, "https://bucket.example.com/"+wantKey))
	assert.Equal(t, "# GROCERY LIST\nRice", store.objects[wantKey])

	store.failPut = true
	_, err = svc.Export(ctx, user.ID, plan.ID)
	assert.Error(t, err)

	_, err = svc.Export(ctx, user.ID, uuid.New())
	assert.ErrorIs(t, err, repository.ErrPlanNotFound)
}
