package types

import (
	"time"

	"github.com/google/uuid"
)

// ProfileResponse is a user's profile.
type ProfileResponse struct {
	ID          uuid.UUID `json:"id"`
	Email       string    `json:"email"`
	FirstName   string    `json:"first_name"`
	LastName    string    `json:"last_name"`
	DisplayName string    `json:"display_name"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// UpdateProfileRequest replaces both names. Empty strings are stored as
// given.
type UpdateProfileRequest struct {
	FirstName string `json:"first_name" form:"first_name" binding:"max=100"`
	LastName  string `json:"last_name" form:"last_name" binding:"max=100"`
}

// HealthInfoRequest is the single-form health page. Goals replace the saved
// list; omitted fields are cleared.
type HealthInfoRequest struct {
	Age               *int     `json:"age" binding:"omitempty,min=1,max=120"`
	Gender            string   `json:"gender"`
	Height            string   `json:"height" binding:"max=50"`
	Weight            string   `json:"weight" binding:"max=50"`
	ActivityLevel     string   `json:"activity_level"`
	Goals             []string `json:"goals"`
	MedicalConditions string   `json:"medical_conditions" binding:"max=2000"`
	Medications       string   `json:"medications" binding:"max=2000"`
	Allergies         string   `json:"allergies" binding:"max=2000"`
	FoodPreferences   string   `json:"food_preferences" binding:"max=2000"`
	CookingAbility    string   `json:"cooking_ability"`
	Budget            string   `json:"budget"`
	CulturalFactors   string   `json:"cultural_factors" binding:"max=2000"`
	PlanDuration      *string  `json:"plan_duration,omitempty" binding:"omitempty,max=50"`
}
