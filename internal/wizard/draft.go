package wizard

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/pageza/nutriplan/backend/internal/models"
)

const (
	DefaultAge            = 30
	DefaultGender         = "Male"
	DefaultActivityLevel  = "Moderately Active"
	DefaultGoal           = "General Health"
	DefaultCookingAbility = "Average"
	DefaultBudget         = "Moderate"
)

// Draft is the working copy of a user's health assessment. Age is nil when
// the input was empty or not a positive number.
type Draft struct {
	Age               *int     `json:"age"`
	Gender            string   `json:"gender"`
	Height            string   `json:"height"`
	Weight            string   `json:"weight"`
	ActivityLevel     string   `json:"activity_level"`
	Goals             []string `json:"goals"`
	MedicalConditions string   `json:"medical_conditions"`
	Medications       string   `json:"medications"`
	Allergies         string   `json:"allergies"`
	FoodPreferences   string   `json:"food_preferences"`
	CookingAbility    string   `json:"cooking_ability"`
	Budget            string   `json:"budget"`
	CulturalFactors   string   `json:"cultural_factors"`
}

func DefaultDraft() Draft {
	age := DefaultAge
	return Draft{
		Age:            &age,
		Gender:         DefaultGender,
		ActivityLevel:  DefaultActivityLevel,
		Goals:          []string{DefaultGoal},
		CookingAbility: DefaultCookingAbility,
		Budget:         DefaultBudget,
	}
}

// DraftFromHealthInfo seeds a draft from a saved record. Empty columns fall
// back to the defaults; the saved goal list is taken as-is, even when empty.
func DraftFromHealthInfo(h *models.HealthInfo) Draft {
	d := DefaultDraft()
	if h == nil {
		return d
	}

	if h.Age != nil && *h.Age != 0 {
		age := *h.Age
		d.Age = &age
	}
	d.Gender = orDefault(h.Gender, DefaultGender)
	d.Height = orDefault(h.Height, "")
	d.Weight = orDefault(h.Weight, "")
	d.ActivityLevel = orDefault(h.ActivityLevel, DefaultActivityLevel)
	d.Goals = append([]string{}, h.Goals...)
	d.MedicalConditions = orDefault(h.MedicalConditions, "")
	d.Medications = orDefault(h.Medications, "")
	d.Allergies = orDefault(h.Allergies, "")
	d.FoodPreferences = orDefault(h.FoodPreferences, "")
	d.CookingAbility = orDefault(h.CookingAbility, DefaultCookingAbility)
	d.Budget = orDefault(h.Budget, DefaultBudget)
	d.CulturalFactors = orDefault(h.CulturalFactors, "")
	return d
}

func orDefault(v *string, def string) string {
	if v == nil || *v == "" {
		return def
	}
	return *v
}

// ToHealthInfo converts the draft into the columns written on submit.
// plan_duration is left nil so an existing value survives the upsert.
func (d Draft) ToHealthInfo() models.HealthInfo {
	info := models.HealthInfo{
		Gender:            strPtr(d.Gender),
		Height:            strPtr(d.Height),
		Weight:            strPtr(d.Weight),
		ActivityLevel:     strPtr(d.ActivityLevel),
		Goals:             models.StringList(append([]string{}, d.Goals...)),
		MedicalConditions: strPtr(d.MedicalConditions),
		Medications:       strPtr(d.Medications),
		Allergies:         strPtr(d.Allergies),
		FoodPreferences:   strPtr(d.FoodPreferences),
		CookingAbility:    strPtr(d.CookingAbility),
		Budget:            strPtr(d.Budget),
		CulturalFactors:   strPtr(d.CulturalFactors),
	}
	if d.Age != nil {
		age := *d.Age
		info.Age = &age
	}
	return info
}

func strPtr(s string) *string {
	return &s
}

// Clone returns a deep copy.
func (d Draft) Clone() Draft {
	c := d
	if d.Age != nil {
		age := *d.Age
		c.Age = &age
	}
	if d.Goals != nil {
		c.Goals = append([]string{}, d.Goals...)
	}
	return c
}

// HasGoal reports whether goal is selected.
func (d Draft) HasGoal(goal string) bool {
	return contains(d.Goals, goal)
}

// ParseAge reads the leading integer of s, the way a number input is read.
// "45", " 45 years" and "45.9" all give 45. Empty, unparsable, zero and
// negative input give nil.
func ParseAge(s string) *int {
	s = strings.TrimLeftFunc(s, unicode.IsSpace)
	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	digits := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digits {
		return nil
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil || n <= 0 {
		return nil
	}
	return &n
}

// Value returns the draft field as the string a form input would show.
func (d Draft) Value(f Field) string {
	switch f {
	case FieldAge:
		if d.Age == nil {
			return ""
		}
		return strconv.Itoa(*d.Age)
	case FieldGender:
		return d.Gender
	case FieldHeight:
		return d.Height
	case FieldWeight:
		return d.Weight
	case FieldActivityLevel:
		return d.ActivityLevel
	case FieldGoals:
		return strings.Join(d.Goals, ", ")
	case FieldMedicalConditions:
		return d.MedicalConditions
	case FieldMedications:
		return d.Medications
	case FieldAllergies:
		return d.Allergies
	case FieldFoodPreferences:
		return d.FoodPreferences
	case FieldCookingAbility:
		return d.CookingAbility
	case FieldBudget:
		return d.Budget
	case FieldCulturalFactors:
		return d.CulturalFactors
	default:
		return ""
	}
}
