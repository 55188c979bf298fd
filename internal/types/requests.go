package types

import (
	"time"

	"github.com/google/uuid"
)

// RegisterRequest is the sign-up form.
type RegisterRequest struct {
	Email     string  `json:"email" form:"email" binding:"required,email"`
	Password  string  `json:"password" form:"password" binding:"required,min=6"`
	FirstName *string `json:"first_name,omitempty" form:"first_name"`
	LastName  *string `json:"last_name,omitempty" form:"last_name"`
}

// LoginRequest is the sign-in form.
type LoginRequest struct {
	Email    string `json:"email" form:"email" binding:"required,email"`
	Password string `json:"password" form:"password" binding:"required"`
}

type UserResponse struct {
	ID    uuid.UUID `json:"id"`
	Email string    `json:"email"`
}

// AuthResponse is returned by sign-in, sign-up and refresh.
type AuthResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      UserResponse `json:"user"`
}

// SessionResponse describes the caller's live session.
type SessionResponse struct {
	SessionID string       `json:"session_id"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      UserResponse `json:"user"`
}

// QuickPlanRequest is the quick "create plan" form. It is accepted and
// logged but nothing is stored.
type QuickPlanRequest struct {
	Goal                string `json:"goal" form:"goal" binding:"required,oneof=weight-loss muscle-gain maintenance general-health"`
	DietaryRestrictions string `json:"dietary_restrictions" form:"dietary_restrictions" binding:"max=1000"`
	Allergies           string `json:"allergies" form:"allergies" binding:"max=1000"`
	AdditionalNotes     string `json:"additional_notes" form:"additional_notes" binding:"max=4000"`
}

type ToggleGoalRequest struct {
	Goal string `json:"goal" form:"goal" binding:"required"`
}

type SelectTabRequest struct {
	Tab string `json:"tab" form:"tab" binding:"required"`
}

// RatingRequest carries a 1 to 5 star rating. Zero means nothing was
// selected.
type RatingRequest struct {
	Rating int `json:"rating" form:"rating"`
}

// Notification is a toast shown to the user.
type Notification struct {
	Variant     string `json:"variant"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}

const (
	VariantDefault     = "default"
	VariantDestructive = "destructive"
)

// Notice builds a default notification.
func Notice(title, description string) *Notification {
	return &Notification{Variant: VariantDefault, Title: title, Description: description}
}

// Alert builds a destructive notification.
func Alert(title, description string) *Notification {
	return &Notification{Variant: VariantDestructive, Title: title, Description: description}
}

// Badge is a status label and its colour.
type Badge struct {
	Label string `json:"label"`
	Color string `json:"color"`
}

// PlanSummary is one row of the plan list.
type PlanSummary struct {
	ID        uuid.UUID `json:"id"`
	Goal      string    `json:"goal"`
	Title     string    `json:"title"`
	Status    string    `json:"status"`
	Badge     Badge     `json:"badge"`
	Navigable bool      `json:"navigable"`
	Action    string    `json:"action"`
	CreatedAt time.Time `json:"created_at"`
}

// CallToAction is a labelled link.
type CallToAction struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Label       string `json:"label"`
	Href        string `json:"href"`
}

// DashboardResponse is everything the dashboard renders.
type DashboardResponse struct {
	Greeting     string         `json:"greeting"`
	Email        string         `json:"email"`
	DisplayName  string         `json:"display_name,omitempty"`
	Actions      []CallToAction `json:"actions"`
	Plans        []PlanSummary  `json:"plans"`
	EmptyState   *CallToAction  `json:"empty_state,omitempty"`
	Notification *Notification  `json:"notification,omitempty"`
}

// ExportResponse points at an exported plan file.
type ExportResponse struct {
	Key       string    `json:"key"`
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expires_at"`
}
