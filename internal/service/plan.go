package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pageza/nutriplan/backend/internal/models"
	"github.com/pageza/nutriplan/backend/internal/repository"
	"github.com/pageza/nutriplan/backend/internal/types"
	"github.com/pageza/nutriplan/backend/internal/viewer"
)

var ErrPlanProcessing = errors.New("plan is still being processed")

const (
	actionViewPlan   = "View Plan"
	actionInProgress = "Plan in Progress"
)

type PlanService struct {
	plans *repository.PlanRepository
	log   *zap.Logger
}

func NewPlanService(plans *repository.PlanRepository, log *zap.Logger) *PlanService {
	return &PlanService{plans: plans, log: log}
}

// List returns the user's plans, newest first.
func (s *PlanService) List(ctx context.Context, userID uuid.UUID) ([]models.DietPlan, error) {
	return s.plans.ListByOwner(ctx, userID)
}

func (s *PlanService) Get(ctx context.Context, userID, id uuid.UUID) (*models.DietPlan, error) {
	return s.plans.Get(ctx, userID, id)
}

// Open is the dashboard's navigation check: only completed plans open.
func (s *PlanService) Open(ctx context.Context, userID, id uuid.UUID) (*models.DietPlan, error) {
	plan, err := s.plans.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if !plan.Status.Navigable() {
		return plan, ErrPlanProcessing
	}
	return plan, nil
}

// Document loads a plan for the detail view. The status is not checked, so
// a direct link to a pending plan shows the fallback content.
func (s *PlanService) Document(ctx context.Context, userID, id uuid.UUID) (*viewer.Document, *models.DietPlan, error) {
	plan, err := s.plans.Get(ctx, userID, id)
	if err != nil {
		return nil, nil, err
	}
	doc, err := viewer.PlanDocument(plan)
	if err != nil {
		s.log.Warn("unreadable plan data",
			zap.String("plan_id", plan.ID.String()),
			zap.Error(err))
		return nil, plan, err
	}
	return doc, plan, nil
}

// RequestQuickPlan accepts the quick plan form. Generation is handled
// elsewhere; nothing is stored here.
func (s *PlanService) RequestQuickPlan(ctx context.Context, userID uuid.UUID, req *types.QuickPlanRequest) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.log.Info("quick plan requested",
		zap.String("user_id", userID.String()),
		zap.String("goal", req.Goal),
		zap.Bool("has_restrictions", req.DietaryRestrictions != ""),
		zap.Bool("has_allergies", req.Allergies != ""),
	)
	return nil
}

// Summaries converts plans into dashboard rows.
func Summaries(plans []models.DietPlan) []types.PlanSummary {
	out := make([]types.PlanSummary, 0, len(plans))
	for i := range plans {
		p := &plans[i]
		b := p.Status.Badge()
		action := actionInProgress
		if p.Status.Navigable() {
			action = actionViewPlan
		}
		out = append(out, types.PlanSummary{
			ID:        p.ID,
			Goal:      p.Goal,
			Title:     viewer.PlanTitle(p),
			Status:    string(p.Status),
			Badge:     types.Badge{Label: b.Label, Color: b.Color},
			Navigable: p.Status.Navigable(),
			Action:    action,
			CreatedAt: p.CreatedAt,
		})
	}
	return out
}
