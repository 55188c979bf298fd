package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/pageza/nutriplan/backend/internal/models"
	"github.com/pageza/nutriplan/backend/internal/session"
	"github.com/pageza/nutriplan/backend/internal/types"
	"github.com/pageza/nutriplan/backend/internal/viewer"
	"github.com/pageza/nutriplan/backend/internal/wizard"
)

// IAuthService defines the interface for authentication operations
type IAuthService interface {
	Register(ctx context.Context, req *types.RegisterRequest) (*AuthResult, error)
	Login(ctx context.Context, req *types.LoginRequest) (*AuthResult, error)
	Session(ctx context.Context, token string) (*session.Session, error)
	Refresh(ctx context.Context, token string) (*AuthResult, error)
	Logout(ctx context.Context, token string) error
}

// IProfileService defines the interface for user profile operations
type IProfileService interface {
	GetProfile(ctx context.Context, userID uuid.UUID) (*types.ProfileResponse, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, req *types.UpdateProfileRequest) (*types.ProfileResponse, error)
}

// IHealthService defines the interface for the per-user health record
type IHealthService interface {
	Get(ctx context.Context, userID uuid.UUID) (*models.HealthInfo, bool, error)
	Save(ctx context.Context, userID uuid.UUID, req *types.HealthInfoRequest) (*models.HealthInfo, error)
	FromDraft(ctx context.Context, userID uuid.UUID, d wizard.Draft) error
}

// IPlanService defines the interface for diet plan operations
type IPlanService interface {
	List(ctx context.Context, userID uuid.UUID) ([]models.DietPlan, error)
	Get(ctx context.Context, userID, id uuid.UUID) (*models.DietPlan, error)
	Open(ctx context.Context, userID, id uuid.UUID) (*models.DietPlan, error)
	Document(ctx context.Context, userID, id uuid.UUID) (*viewer.Document, *models.DietPlan, error)
	RequestQuickPlan(ctx context.Context, userID uuid.UUID, req *types.QuickPlanRequest) error
}

// IDashboardService defines the interface for the dashboard view
type IDashboardService interface {
	Load(ctx context.Context, userID uuid.UUID, email string) (*types.DashboardResponse, error)
}

// IExportService defines the interface for plan exports
type IExportService interface {
	Export(ctx context.Context, userID, planID uuid.UUID) (*types.ExportResponse, error)
}

// IFeedbackService defines the interface for viewer ratings
type IFeedbackService interface {
	RecordRating(ctx context.Context, userID uuid.UUID, document string, rating int) error
}

var (
	_ IAuthService      = (*AuthService)(nil)
	_ IProfileService   = (*ProfileService)(nil)
	_ IHealthService    = (*HealthService)(nil)
	_ IPlanService      = (*PlanService)(nil)
	_ IFeedbackService  = (*FeedbackService)(nil)
	_ IDashboardService = (*DashboardService)(nil)
	_ IExportService    = (*ExportService)(nil)
)
