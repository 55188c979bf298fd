package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pageza/nutriplan/backend/internal/models"
	"github.com/pageza/nutriplan/backend/internal/repository"
	"github.com/pageza/nutriplan/backend/internal/types"
	"github.com/pageza/nutriplan/backend/internal/wizard"
)

var ErrInvalidHealthInfo = errors.New("invalid health information")

// HealthService reads and writes the single health record of each user.
type HealthService struct {
	store *repository.HealthInfoStore
	log   *zap.Logger
}

func NewHealthService(store *repository.HealthInfoStore, log *zap.Logger) *HealthService {
	return &HealthService{store: store, log: log}
}

func (s *HealthService) Get(ctx context.Context, userID uuid.UUID) (*models.HealthInfo, bool, error) {
	return s.store.Get(ctx, userID)
}

// Save upserts the record from the health form. Enumerated fields accept
// their listed values or the empty string.
func (s *HealthService) Save(ctx context.Context, userID uuid.UUID, req *types.HealthInfoRequest) (*models.HealthInfo, error) {
	checks := []struct {
		field wizard.Field
		value string
	}{
		{wizard.FieldGender, req.Gender},
		{wizard.FieldActivityLevel, req.ActivityLevel},
		{wizard.FieldCookingAbility, req.CookingAbility},
		{wizard.FieldBudget, req.Budget},
	}
	for _, c := range checks {
		if c.value != "" && !oneOf(wizard.Choices(c.field), c.value) {
			return nil, fmt.Errorf("%w: %q is not a valid %s", ErrInvalidHealthInfo, c.value, c.field)
		}
	}

	goals := make(models.StringList, 0, len(req.Goals))
	for _, g := range req.Goals {
		if !oneOf(wizard.NutritionGoals, g) {
			return nil, fmt.Errorf("%w: unknown goal %q", ErrInvalidHealthInfo, g)
		}
		if !oneOf(goals, g) {
			goals = append(goals, g)
		}
	}

	info := models.HealthInfo{
		Age:               req.Age,
		Gender:            &req.Gender,
		Height:            &req.Height,
		Weight:            &req.Weight,
		ActivityLevel:     &req.ActivityLevel,
		Goals:             goals,
		MedicalConditions: &req.MedicalConditions,
		Medications:       &req.Medications,
		Allergies:         &req.Allergies,
		FoodPreferences:   &req.FoodPreferences,
		CookingAbility:    &req.CookingAbility,
		Budget:            &req.Budget,
		CulturalFactors:   &req.CulturalFactors,
		PlanDuration:      req.PlanDuration,
	}

	stored, err := s.store.Put(ctx, userID, info)
	if err != nil {
		return nil, err
	}
	s.log.Info("health information saved", zap.String("user_id", userID.String()))
	return stored, nil
}

// FromDraft persists a submitted assessment.
func (s *HealthService) FromDraft(ctx context.Context, userID uuid.UUID, d wizard.Draft) error {
	if _, err := s.store.Put(ctx, userID, d.ToHealthInfo()); err != nil {
		return err
	}
	s.log.Info("health assessment saved", zap.String("user_id", userID.String()))
	return nil
}

func oneOf(values []string, v string) bool {
	for _, x := range values {
		if x == v {
			return true
		}
	}
	return false
}
