package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/pageza/nutriplan/backend/internal/models"
	"github.com/pageza/nutriplan/backend/internal/service"
	"github.com/pageza/nutriplan/backend/internal/types"
	"github.com/pageza/nutriplan/backend/internal/viewer"
)

// MockPlanService is a mock implementation of the PlanService interface
type MockPlanService struct {
	mock.Mock
}

var _ service.IPlanService = (*MockPlanService)(nil)

func (m *MockPlanService) List(ctx context.Context, userID uuid.UUID) ([]models.DietPlan, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.DietPlan), args.Error(1)
}

func (m *MockPlanService) Get(ctx context.Context, userID, id uuid.UUID) (*models.DietPlan, error) {
	args := m.Called(ctx, userID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.DietPlan), args.Error(1)
}

func (m *MockPlanService) Open(ctx context.Context, userID, id uuid.UUID) (*models.DietPlan, error) {
	args := m.Called(ctx, userID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.DietPlan), args.Error(1)
}

func (m *MockPlanService) Document(ctx context.Context, userID, id uuid.UUID) (*viewer.Document, *models.DietPlan, error) {
	args := m.Called(ctx, userID, id)
	var doc *viewer.Document
	if d := args.Get(0); d != nil {
		doc = d.(*viewer.Document)
	}
	var plan *models.DietPlan
	if p := args.Get(1); p != nil {
		plan = p.(*models.DietPlan)
	}
	return doc, plan, args.Error(2)
}

func (m *MockPlanService) RequestQuickPlan(ctx context.Context, userID uuid.UUID, req *types.QuickPlanRequest) error {
	args := m.Called(ctx, userID, req)
	return args.Error(0)
}

// MockDashboardService is a mock implementation of the DashboardService interface
type MockDashboardService struct {
	mock.Mock
}

var _ service.IDashboardService = (*MockDashboardService)(nil)

func (m *MockDashboardService) Load(ctx context.Context, userID uuid.UUID, email string) (*types.DashboardResponse, error) {
	args := m.Called(ctx, userID, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.DashboardResponse), args.Error(1)
}

// MockExportService is a mock implementation of the ExportService interface
type MockExportService struct {
	mock.Mock
}

var _ service.IExportService = (*MockExportService)(nil)

func (m *MockExportService) Export(ctx context.Context, userID, planID uuid.UUID) (*types.ExportResponse, error) {
	args := m.Called(ctx, userID, planID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.ExportResponse), args.Error(1)
}
