// Package wizard implements the three-step health assessment: a draft record
// edited step by step and handed off exactly once on submit.
package wizard

import "fmt"

// Step identifies one page of the assessment.
type Step int

const (
	StepBasicInfo Step = iota
	StepHealthDetails
	StepPreferences
)

// FirstStep and LastStep bound navigation.
const (
	FirstStep = StepBasicInfo
	LastStep  = StepPreferences
)

// Steps returns every step in order.
func Steps() []Step {
	return []Step{StepBasicInfo, StepHealthDetails, StepPreferences}
}

// Valid reports whether s is a known step.
func (s Step) Valid() bool {
	return s >= FirstStep && s <= LastStep
}

// Title is the short name shown in the progress indicator.
func (s Step) Title() string {
	switch s {
	case StepBasicInfo:
		return "Basic Info"
	case StepHealthDetails:
		return "Health Details"
	case StepPreferences:
		return "Preferences"
	default:
		panic(fmt.Sprintf("wizard: unknown step %d", int(s)))
	}
}

// Heading is the step's page heading.
func (s Step) Heading() string {
	switch s {
	case StepBasicInfo:
		return "Personal Information"
	case StepHealthDetails:
		return "Health Information"
	case StepPreferences:
		return "Preferences & Lifestyle"
	default:
		panic(fmt.Sprintf("wizard: unknown step %d", int(s)))
	}
}

func (s Step) Description() string {
	switch s {
	case StepBasicInfo:
		return "Let's start with some basic information about you."
	case StepHealthDetails:
		return "Help us understand your health context for better recommendations."
	case StepPreferences:
		return "Tell us about your preferences to personalize your plan."
	default:
		panic(fmt.Sprintf("wizard: unknown step %d", int(s)))
	}
}

// Fields lists the draft fields edited on the step.
func (s Step) Fields() []Field {
	switch s {
	case StepBasicInfo:
		return []Field{FieldAge, FieldGender, FieldHeight, FieldWeight, FieldActivityLevel, FieldGoals}
	case StepHealthDetails:
		return []Field{FieldMedicalConditions, FieldMedications, FieldAllergies}
	case StepPreferences:
		return []Field{FieldFoodPreferences, FieldCookingAbility, FieldBudget, FieldCulturalFactors}
	default:
		panic(fmt.Sprintf("wizard: unknown step %d", int(s)))
	}
}

// Has reports whether f is edited on step s.
func (s Step) Has(f Field) bool {
	for _, sf := range s.Fields() {
		if sf == f {
			return true
		}
	}
	return false
}
