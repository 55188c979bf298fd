package models

import (
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// PlanStatus is the lifecycle of a diet plan. Plans start pending and become
// completed once generated; failed covers anything else the generator reports.
type PlanStatus string

const (
	PlanPending   PlanStatus = "pending"
	PlanCompleted PlanStatus = "completed"
	PlanFailed    PlanStatus = "failed"
)

// Badge is the dashboard label and colour for a status.
type Badge struct {
	Label string `json:"label"`
	Color string `json:"color"`
}

// Badge renders pending as "Processing"; any other status is capitalised.
func (s PlanStatus) Badge() Badge {
	b := Badge{Label: "Processing", Color: "gray"}
	switch s {
	case PlanPending:
		b.Color = "yellow"
		return b
	case PlanCompleted:
		b.Color = "green"
	}
	if s != "" {
		b.Label = Capitalize(string(s))
	} else {
		b.Label = "Unknown"
	}
	return b
}

// Capitalize upper-cases the first rune of s.
func Capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

// Navigable reports whether the plan detail view may be opened.
func (s PlanStatus) Navigable() bool {
	return s == PlanCompleted
}

// DietPlan is a generated (or requested) meal plan.
type DietPlan struct {
	ID                  uuid.UUID       `gorm:"type:varchar(36);primarykey" json:"id"`
	UserID              uuid.UUID       `gorm:"type:varchar(36);not null;index" json:"user_id"`
	Goal                string          `gorm:"size:50;not null" json:"goal"`
	Status              PlanStatus      `gorm:"size:20;not null;default:'pending'" json:"status"`
	PlanData            *datatypes.JSON `gorm:"type:jsonb" json:"plan_data"`
	DietaryRestrictions *string         `gorm:"type:text" json:"dietary_restrictions"`
	Allergies           *string         `gorm:"type:text" json:"allergies"`
	AdditionalNotes     *string         `gorm:"type:text" json:"additional_notes"`
	CreatedAt           time.Time       `gorm:"index" json:"created_at"`
	UpdatedAt           time.Time       `json:"updated_at"`
}

func (DietPlan) TableName() string { return "diet_plans" }

func (p *DietPlan) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// GoalTitle turns a goal slug such as "weight-loss" into "weight loss".
func (p *DietPlan) GoalTitle() string {
	return strings.ReplaceAll(p.Goal, "-", " ")
}
