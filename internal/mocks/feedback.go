package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/pageza/nutriplan/backend/internal/service"
)

// MockFeedbackService is a mock implementation of the FeedbackService interface
type MockFeedbackService struct {
	mock.Mock
}

var _ service.IFeedbackService = (*MockFeedbackService)(nil)

func (m *MockFeedbackService) RecordRating(ctx context.Context, userID uuid.UUID, document string, rating int) error {
	args := m.Called(ctx, userID, document, rating)
	return args.Error(0)
}
