package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// StringList is a JSON array column that reads NULL as an empty list.
type StringList []string

// Value implements the driver.Valuer interface
func (l StringList) Value() (driver.Value, error) {
	if len(l) == 0 {
		return "[]", nil
	}
	b, err := json.Marshal([]string(l))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements the sql.Scanner interface
func (l *StringList) Scan(value interface{}) error {
	if value == nil {
		*l = StringList{}
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return fmt.Errorf("unsupported type %T for StringList", value)
	}

	return json.Unmarshal(bytes, (*[]string)(l))
}

// HealthInfo is the single per-user health questionnaire row.
type HealthInfo struct {
	ID                uuid.UUID  `gorm:"type:varchar(36);primarykey" json:"id"`
	UserID            uuid.UUID  `gorm:"type:varchar(36);not null;uniqueIndex" json:"user_id"`
	Age               *int       `json:"age"`
	Gender            *string    `gorm:"size:20" json:"gender"`
	Height            *string    `gorm:"size:50" json:"height"`
	Weight            *string    `gorm:"size:50" json:"weight"`
	ActivityLevel     *string    `gorm:"size:50" json:"activity_level"`
	Goals             StringList `gorm:"type:jsonb" json:"goals"`
	MedicalConditions *string    `gorm:"type:text" json:"medical_conditions"`
	Medications       *string    `gorm:"type:text" json:"medications"`
	Allergies         *string    `gorm:"type:text" json:"allergies"`
	FoodPreferences   *string    `gorm:"type:text" json:"food_preferences"`
	CookingAbility    *string    `gorm:"size:50" json:"cooking_ability"`
	Budget            *string    `gorm:"size:50" json:"budget"`
	CulturalFactors   *string    `gorm:"type:text" json:"cultural_factors"`
	PlanDuration      *string    `gorm:"size:50" json:"plan_duration"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

func (HealthInfo) TableName() string { return "user_health_info" }

func (h *HealthInfo) BeforeCreate(tx *gorm.DB) error {
	if h.ID == uuid.Nil {
		h.ID = uuid.New()
	}
	return nil
}
