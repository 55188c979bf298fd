package service

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/pageza/nutriplan/backend/internal/models"
	"github.com/pageza/nutriplan/backend/internal/types"
)

// PlanLister lists a user's plans.
type PlanLister interface {
	ListByOwner(ctx context.Context, userID uuid.UUID) ([]models.DietPlan, error)
}

// ProfileGetter loads a profile.
type ProfileGetter interface {
	Get(ctx context.Context, id uuid.UUID) (*models.Profile, error)
}

// DashboardActions are the three cards shown above the plan list.
var DashboardActions = []types.CallToAction{
	{Title: "Create Diet Plan", Description: "Generate a simple diet plan quickly.", Label: "Quick Plan", Href: "/create-plan"},
	{Title: "Health Assessment", Description: "Get a detailed plan based on your health profile.", Label: "Detailed Plan", Href: "/health-assessment"},
	{Title: "Your Profile", Description: "Update your personal information.", Label: "Edit Profile", Href: "/profile"},
}

// EmptyPlans is shown when the user has no plans.
var EmptyPlans = types.CallToAction{
	Title:       "No Diet Plans Yet",
	Description: "Create your first personalized diet plan to get started.",
	Label:       "Create Your First Plan",
	Href:        "/create-plan",
}

type DashboardService struct {
	plans    PlanLister
	profiles ProfileGetter
	log      *zap.Logger
}

func NewDashboardService(plans PlanLister, profiles ProfileGetter, log *zap.Logger) *DashboardService {
	return &DashboardService{plans: plans, profiles: profiles, log: log}
}

// Load fetches the profile and the plan list concurrently. Neither failure
// fails the page: a plan error shows a notification over an empty list and a
// profile error only loses the display name.
func (s *DashboardService) Load(ctx context.Context, userID uuid.UUID, email string) (*types.DashboardResponse, error) {
	var (
		plans   []models.DietPlan
		planErr error
		profile *models.Profile
	)

	var g errgroup.Group
	g.Go(func() error {
		plans, planErr = s.plans.ListByOwner(ctx, userID)
		return nil
	})
	g.Go(func() error {
		p, err := s.profiles.Get(ctx, userID)
		if err != nil {
			s.log.Warn("dashboard profile lookup failed",
				zap.String("user_id", userID.String()),
				zap.Error(err))
			return nil
		}
		profile = p
		return nil
	})
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	resp := &types.DashboardResponse{
		Greeting: "Welcome, " + email + "!",
		Email:    email,
		Actions:  DashboardActions,
		Plans:    []types.PlanSummary{},
	}
	if profile != nil {
		resp.DisplayName = profile.DisplayName()
	}

	if planErr != nil {
		s.log.Error("failed to fetch diet plans",
			zap.String("user_id", userID.String()),
			zap.Error(planErr))
		resp.Notification = types.Alert("Error fetching diet plans", "")
	} else {
		resp.Plans = Summaries(plans)
	}
	if len(resp.Plans) == 0 {
		empty := EmptyPlans
		resp.EmptyState = &empty
	}
	return resp, nil
}
