package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/pageza/nutriplan/backend/internal/models"
)

// healthColumns are overwritten on every Put. plan_duration is only written
// when the caller provides it.
var healthColumns = []string{
	"age", "gender", "height", "weight", "activity_level", "goals",
	"medical_conditions", "medications", "allergies", "food_preferences",
	"cooking_ability", "budget", "cultural_factors", "updated_at",
}

// HealthInfoStore is keyed by owner: each user has at most one row and the
// store offers no way to address anything else.
type HealthInfoStore struct {
	db *gorm.DB
}

func NewHealthInfoStore(db *gorm.DB) *HealthInfoStore {
	return &HealthInfoStore{db: db}
}

// Get returns the owner's row. ok is false when nothing has been saved yet.
func (s *HealthInfoStore) Get(ctx context.Context, userID uuid.UUID) (info *models.HealthInfo, ok bool, err error) {
	var row models.HealthInfo
	err = s.db.WithContext(ctx).Where("user_id = ?", userID).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to get health info: %w", err)
	}
	return &row, true, nil
}

// Put inserts or replaces the owner's row (upsert on user_id). The stored row
// is returned.
func (s *HealthInfoStore) Put(ctx context.Context, userID uuid.UUID, info models.HealthInfo) (*models.HealthInfo, error) {
	info.ID = uuid.Nil
	info.UserID = userID
	info.UpdatedAt = time.Now()

	columns := healthColumns
	if info.PlanDuration != nil {
		columns = append(append([]string{}, healthColumns...), "plan_duration")
	}

	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns(columns),
	}).Create(&info).Error
	if err != nil {
		return nil, fmt.Errorf("failed to upsert health info: %w", err)
	}

	stored, _, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	return stored, nil
}
