package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/pageza/nutriplan/backend/internal/models"
)

type PlanRepository struct {
	db *gorm.DB
}

func NewPlanRepository(db *gorm.DB) *PlanRepository {
	return &PlanRepository{db: db}
}

// ListByOwner returns the owner's plans, newest first.
func (r *PlanRepository) ListByOwner(ctx context.Context, userID uuid.UUID) ([]models.DietPlan, error) {
	plans := []models.DietPlan{}
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&plans).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list plans: %w", err)
	}
	return plans, nil
}

// Get returns ErrPlanNotFound for unknown ids and for plans owned by someone else.
func (r *PlanRepository) Get(ctx context.Context, userID, id uuid.UUID) (*models.DietPlan, error) {
	var plan models.DietPlan
	err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Take(&plan).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrPlanNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get plan: %w", err)
	}
	return &plan, nil
}

// Upsert writes a plan keyed by its id.
func (r *PlanRepository) Upsert(ctx context.Context, plan *models.DietPlan) error {
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"goal", "status", "plan_data", "dietary_restrictions",
			"allergies", "additional_notes", "updated_at",
		}),
	}).Create(plan).Error
	if err != nil {
		return fmt.Errorf("failed to upsert plan: %w", err)
	}
	return nil
}
