package viewer

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var ErrInvalidPlanData = errors.New("plan data must be a JSON object")

// Entry is one key of a plan_data object.
type Entry struct {
	Key   string
	Value string
}

// PlanData is a plan_data object with its key order preserved. String
// values are kept as-is; anything else is kept as compact JSON text.
type PlanData []Entry

// ParsePlanData decodes a plan_data column. JSON null gives nil.
func ParsePlanData(raw []byte) (PlanData, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, nil
	}

	dec := json.NewDecoder(bytes.NewReader(trimmed))
	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("failed to read plan data: %w", err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, ErrInvalidPlanData
	}

	data := PlanData{}
	index := map[string]int{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("failed to read plan data: %w", err)
		}
		key, ok := tok.(string)
		if !ok {
			return nil, ErrInvalidPlanData
		}

		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return nil, fmt.Errorf("failed to read plan data %q: %w", key, err)
		}
		text, err := valueText(value)
		if err != nil {
			return nil, fmt.Errorf("failed to read plan data %q: %w", key, err)
		}

		// A repeated key keeps its first position and its last value.
		if i, seen := index[key]; seen {
			data[i].Value = text
			continue
		}
		index[key] = len(data)
		data = append(data, Entry{Key: key, Value: text})
	}
	return data, nil
}

func valueText(v json.RawMessage) (string, error) {
	if len(v) > 0 && v[0] == '"' {
		var s string
		if err := json.Unmarshal(v, &s); err != nil {
			return "", err
		}
		return s, nil
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, v); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// Get returns the value stored under key.
func (p PlanData) Get(key string) (string, bool) {
	for _, e := range p {
		if e.Key == key {
			return e.Value, true
		}
	}
	return "", false
}

// Heading turns a key such as "meal_plan" into "MEAL PLAN".
func Heading(key string) string {
	return strings.ToUpper(strings.ReplaceAll(key, "_", " "))
}

// CopyText joins every entry as a heading line followed by its value.
func (p PlanData) CopyText() string {
	parts := make([]string, 0, len(p))
	for _, e := range p {
		parts = append(parts, Heading(e.Key)+"\n"+e.Value)
	}
	return strings.Join(parts, "\n\n")
}

// DownloadText is CopyText with Markdown headings.
func (p PlanData) DownloadText() string {
	parts := make([]string, 0, len(p))
	for _, e := range p {
		parts = append(parts, "# "+Heading(e.Key)+"\n"+e.Value)
	}
	return strings.Join(parts, "\n\n")
}

// FallbackPlanData is shown for saved plans that have no plan_data yet.
func FallbackPlanData() PlanData {
	return PlanData{
		{Key: "nutritional_requirements", Value: `- Daily Caloric Needs: 2,100 calories
- Protein: 120-150g (25-30% of total calories)
- Carbohydrates: 210-260g (40-50% of total calories)
- Fats: 58-70g (25-30% of total calories)
- Water: Minimum 3 liters daily`},
		{Key: "medical_considerations", Value: `- Limited Sodium: Keep below 2,000mg daily
- Increased Potassium: Aim for 3,500-4,700mg daily
- Moderate Glycemic Index: Focus on low GI carbohydrates
- Avoid: Processed foods with artificial preservatives`},
		{Key: "meal_plan", Value: `### Day 1

**Breakfast:**
- Overnight oats with almond milk, berries, and 1 tbsp flaxseeds
- 1 medium apple
- Green tea (unsweetened)

**Lunch:**
- Grilled chicken salad with mixed greens, cherry tomatoes, cucumber
- 1/2 cup brown rice
- 8oz water with lemon

**Dinner:**
- Baked salmon (4oz) with dill and lemon
- Steamed broccoli and carrots
- Small sweet potato`},
		{Key: "grocery_list", Value: `### Proteins:
- Chicken breast (organic if possible)
- Wild-caught salmon
- Ground turkey (lean)
- Tofu (firm)
- Greek yogurt
- Eggs

### Vegetables:
- Spinach
- Broccoli
- Zucchini
- Carrots
- Mixed greens`},
		{Key: "supplementation", Value: `Based on your profile, consider these supplements (consult with your healthcare provider first):
- Vitamin D3: 1000-2000 IU daily
- Magnesium: 300mg daily
- Omega-3: 1000mg daily`},
	}
}
