package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/pageza/nutriplan/backend/internal/models"
	"github.com/pageza/nutriplan/backend/internal/service"
	"github.com/pageza/nutriplan/backend/internal/types"
	"github.com/pageza/nutriplan/backend/internal/wizard"
)

// MockProfileService is a mock implementation of the ProfileService interface
type MockProfileService struct {
	mock.Mock
}

var _ service.IProfileService = (*MockProfileService)(nil)

func (m *MockProfileService) GetProfile(ctx context.Context, userID uuid.UUID) (*types.ProfileResponse, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.ProfileResponse), args.Error(1)
}

func (m *MockProfileService) UpdateProfile(ctx context.Context, userID uuid.UUID, req *types.UpdateProfileRequest) (*types.ProfileResponse, error) {
	args := m.Called(ctx, userID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.ProfileResponse), args.Error(1)
}

// MockHealthService is a mock implementation of the HealthService interface
type MockHealthService struct {
	mock.Mock
}

var _ service.IHealthService = (*MockHealthService)(nil)

func (m *MockHealthService) Get(ctx context.Context, userID uuid.UUID) (*models.HealthInfo, bool, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*models.HealthInfo), args.Bool(1), args.Error(2)
}

func (m *MockHealthService) Save(ctx context.Context, userID uuid.UUID, req *types.HealthInfoRequest) (*models.HealthInfo, error) {
	args := m.Called(ctx, userID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.HealthInfo), args.Error(1)
}

func (m *MockHealthService) FromDraft(ctx context.Context, userID uuid.UUID, d wizard.Draft) error {
	args := m.Called(ctx, userID, d)
	return args.Error(0)
}
