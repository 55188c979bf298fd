package wizard

// Field names a draft attribute. Values match the JSON keys of Draft.
type Field string

const (
	FieldAge               Field = "age"
	FieldGender            Field = "gender"
	FieldHeight            Field = "height"
	FieldWeight            Field = "weight"
	FieldActivityLevel     Field = "activity_level"
	FieldGoals             Field = "goals"
	FieldMedicalConditions Field = "medical_conditions"
	FieldMedications       Field = "medications"
	FieldAllergies         Field = "allergies"
	FieldFoodPreferences   Field = "food_preferences"
	FieldCookingAbility    Field = "cooking_ability"
	FieldBudget            Field = "budget"
	FieldCulturalFactors   Field = "cultural_factors"
)

var (
	Genders = []string{"Male", "Female", "Other"}

	ActivityLevels = []string{
		"Sedentary",
		"Lightly Active",
		"Moderately Active",
		"Very Active",
		"Extremely Active",
	}

	NutritionGoals = []string{
		"Weight Loss",
		"Weight Gain",
		"Maintenance",
		"Muscle Building",
		"Better Energy",
		"Improved Athletic Performance",
		"Disease Management",
		"General Health",
	}

	CookingSkills = []string{
		"Very Limited",
		"Basic/Quick Meals",
		"Average",
		"Advanced/Can Spend Time",
		"Professional Level",
	}

	BudgetLevels = []string{
		"Very Limited",
		"Budget Conscious",
		"Moderate",
		"Flexible",
		"No Constraints",
	}
)

// Choices returns the allowed values of an enumerated field, or nil for
// free-text fields.
func Choices(f Field) []string {
	switch f {
	case FieldGender:
		return Genders
	case FieldActivityLevel:
		return ActivityLevels
	case FieldGoals:
		return NutritionGoals
	case FieldCookingAbility:
		return CookingSkills
	case FieldBudget:
		return BudgetLevels
	default:
		return nil
	}
}

func contains(values []string, v string) bool {
	for _, x := range values {
		if x == v {
			return true
		}
	}
	return false
}

// Label is the form label for a field.
func (f Field) Label() string {
	switch f {
	case FieldAge:
		return "Age"
	case FieldGender:
		return "Gender"
	case FieldHeight:
		return `Height (e.g., 5'10" or 178 cm)`
	case FieldWeight:
		return "Weight (e.g., 160 lbs or 73 kg)"
	case FieldActivityLevel:
		return "Activity Level"
	case FieldGoals:
		return "Nutrition Goals (Select all that apply)"
	case FieldMedicalConditions:
		return "Medical Conditions (separate with commas)"
	case FieldMedications:
		return "Current Medications (separate with commas)"
	case FieldAllergies:
		return "Food Allergies/Intolerances (separate with commas)"
	case FieldFoodPreferences:
		return "Food Preferences & Dislikes"
	case FieldCookingAbility:
		return "Cooking Skills & Available Time"
	case FieldBudget:
		return "Budget Considerations"
	case FieldCulturalFactors:
		return "Cultural or Religious Dietary Factors"
	default:
		return string(f)
	}
}

// Placeholder is the hint shown in an empty free-text input.
func (f Field) Placeholder() string {
	switch f {
	case FieldHeight:
		return "Enter your height"
	case FieldWeight:
		return "Enter your weight"
	case FieldMedicalConditions:
		return "E.g., Diabetes Type 2, Hypertension, Hypothyroidism..."
	case FieldMedications:
		return "E.g., Metformin, Lisinopril, Levothyroxine..."
	case FieldAllergies:
		return "E.g., Lactose, Gluten, Shellfish, Peanuts..."
	case FieldFoodPreferences:
		return "E.g., Prefer plant-based, dislike seafood..."
	case FieldCulturalFactors:
		return "E.g., Halal, Kosher, Mediterranean tradition..."
	default:
		return ""
	}
}
