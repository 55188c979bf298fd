// Package viewer turns a finished plan into tabbed, copyable and
// downloadable content, and tracks the per-session view state around it.
package viewer

import (
	_ "embed"
	"errors"
	"fmt"
	"strings"

	"github.com/pageza/nutriplan/backend/internal/models"
)

//go:embed sample_plan.md
var samplePlan string

// AssessmentFilename is the download name for the assessment results.
const AssessmentFilename = "my_nutrition_plan.md"

// AssessmentKey identifies the assessment results document in the registry.
const AssessmentKey = "assessment"

var ErrUnknownTab = errors.New("unknown tab")

// Section is one headed block of plan content, in Markdown.
type Section struct {
	Key   string `json:"key"`
	Title string `json:"title"`
	Body  string `json:"body"`
}

// Tab groups the sections shown together.
type Tab struct {
	ID       string    `json:"id"`
	Label    string    `json:"label"`
	Sections []Section `json:"sections"`
}

// Document is a plan prepared for display. Copy and download text are fixed
// when the document is built.
type Document struct {
	Key        string
	Title      string
	Tabs       []Tab
	DefaultTab string
	Filename   string
	// Rated documents show the rating prompt.
	Rated bool

	copyText     string
	downloadText string
}

func (d *Document) Tab(id string) (Tab, bool) {
	for _, t := range d.Tabs {
		if t.ID == id {
			return t, true
		}
	}
	return Tab{}, false
}

// CopyText is what the copy action puts on the clipboard.
func (d *Document) CopyText() string { return d.copyText }

// DownloadText is the body of the downloaded file.
func (d *Document) DownloadText() string { return d.downloadText }

// SamplePlan returns the Markdown plan shown after an assessment.
func SamplePlan() string { return samplePlan }

// SampleSections splits the sample plan at its level-two headings.
func SampleSections() []Section {
	var sections []Section
	var cur *Section
	var body []string

	flush := func() {
		if cur != nil {
			cur.Body = strings.TrimSpace(strings.Join(body, "\n"))
			sections = append(sections, *cur)
		}
		body = body[:0]
	}

	for _, line := range strings.Split(samplePlan, "\n") {
		if title, ok := strings.CutPrefix(line, "## "); ok {
			flush()
			title = strings.TrimSpace(title)
			cur = &Section{Key: sectionKey(title), Title: title}
			continue
		}
		if cur != nil {
			body = append(body, line)
		}
	}
	flush()
	return sections
}

func sectionKey(title string) string {
	return strings.ReplaceAll(strings.ToLower(title), " ", "_")
}

// AssessmentDocument is the results view shown once the assessment is
// submitted. Copy and download both carry the whole sample plan.
func AssessmentDocument() *Document {
	byTitle := map[string]Section{}
	for _, s := range SampleSections() {
		byTitle[s.Title] = s
	}
	pick := func(titles ...string) []Section {
		out := make([]Section, 0, len(titles))
		for _, t := range titles {
			out = append(out, byTitle[t])
		}
		return out
	}

	return &Document{
		Key:   AssessmentKey,
		Title: "Your Personalized Nutrition Plan",
		Tabs: []Tab{
			{ID: "plan", Label: "Nutrition Plan", Sections: pick(
				"Nutritional Requirements", "Medical Considerations", "Supplementation Recommendations")},
			{ID: "meals", Label: "Meal Plan", Sections: pick("7-Day Meal Plan")},
			{ID: "grocery", Label: "Grocery List", Sections: pick("Grocery List")},
		},
		DefaultTab:   "plan",
		Filename:     AssessmentFilename,
		Rated:        true,
		copyText:     samplePlan,
		downloadText: samplePlan,
	}
}

var planTabs = []struct {
	id, label, key string
}{
	{"nutritional", "Nutritional Requirements", "nutritional_requirements"},
	{"medical", "Medical Considerations", "medical_considerations"},
	{"meal", "Meal Plan", "meal_plan"},
	{"grocery", "Grocery List", "grocery_list"},
}

// PlanFilename is the download name of a saved plan.
func PlanFilename(plan *models.DietPlan) string {
	return fmt.Sprintf("diet_plan_%s.md", plan.ID)
}

// PlanKey identifies a saved plan's document in the registry.
func PlanKey(plan *models.DietPlan) string {
	return "plan:" + plan.ID.String()
}

// PlanDocument prepares a saved plan. A plan without plan_data shows the
// fallback content, and copy and download use the same fallback.
func PlanDocument(plan *models.DietPlan) (*Document, error) {
	data := FallbackPlanData()
	if plan.PlanData != nil && len(*plan.PlanData) > 0 {
		parsed, err := ParsePlanData(*plan.PlanData)
		if err != nil {
			return nil, err
		}
		if parsed != nil {
			data = parsed
		}
	}

	tabs := make([]Tab, 0, len(planTabs))
	for _, t := range planTabs {
		body, _ := data.Get(t.key)
		tabs = append(tabs, Tab{
			ID:       t.id,
			Label:    t.label,
			Sections: []Section{{Key: t.key, Title: t.label, Body: strings.TrimSpace(body)}},
		})
	}

	return &Document{
		Key:          PlanKey(plan),
		Title:        PlanTitle(plan),
		Tabs:         tabs,
		DefaultTab:   "nutritional",
		Filename:     PlanFilename(plan),
		copyText:     data.CopyText(),
		downloadText: data.DownloadText(),
	}, nil
}

// PlanTitle is the heading shown for a plan, e.g. "Weight Loss Plan".
func PlanTitle(plan *models.DietPlan) string {
	return titleCase(plan.GoalTitle()) + " Plan"
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = models.Capitalize(w)
	}
	return strings.Join(words, " ")
}
