package viewer

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"github.com/pageza/nutriplan/backend/internal/models"
	"github.com/pageza/nutriplan/backend/internal/session"
)

func TestSampleSections(t *testing.T) {
	var titles []string
	for _, s := range SampleSections() {
		titles = append(titles, s.Title)
		assert.NotEmpty(t, s.Body, s.Title)
	}
	assert.Equal(t, []string{
		"Nutritional Requirements",
		"Medical Considerations",
		"7-Day Meal Plan",
		"Grocery List",
		"Supplementation Recommendations",
		"Monitoring Progress",
		"Adjustments",
	}, titles)
}

func TestAssessmentDocument(t *testing.T) {
	doc := AssessmentDocument()

	assert.Equal(t, "my_nutrition_plan.md", doc.Filename)
	assert.Equal(t, "plan", doc.DefaultTab)
	assert.Equal(t, SamplePlan(), doc.CopyText())
	assert.Equal(t, SamplePlan(), doc.DownloadText())
	assert.True(t, strings.HasPrefix(doc.CopyText(), "# Personalized Nutrition Plan"))

	plan, ok := doc.Tab("plan")
	require.True(t, ok)
	require.Len(t, plan.Sections, 3)
	assert.Equal(t, "Supplementation Recommendations", plan.Sections[2].Title)
	assert.Contains(t, plan.Sections[0].Body, "2,100 calories")

	meals, ok := doc.Tab("meals")
	require.True(t, ok)
	assert.Contains(t, meals.Sections[0].Body, "### Day 1")

	_, ok = doc.Tab("nutritional")
	assert.False(t, ok)
}

func TestParsePlanData_PreservesOrder(t *testing.T) {
	raw := []byte(`{"zeta":"last letter","meal_plan":"eat","calories":2100,"tags":["a", "b"],"meal_plan":"eat more"}`)
	data, err := ParsePlanData(raw)
	require.NoError(t, err)

	assert.Equal(t, PlanData{
		{Key: "zeta", Value: "last letter"},
		{Key: "meal_plan", Value: "eat more"},
		{Key: "calories", Value: "2100"},
		{Key: "tags", Value: `["a","b"]`},
	}, data)

	assert.Equal(t, "ZETA\nlast letter\n\nMEAL PLAN\neat more\n\nCALORIES\n2100\n\nTAGS\n[\"a\",\"b\"]", data.CopyText())
	assert.Equal(t, "# ZETA\nlast letter\n\n# MEAL PLAN\neat more\n\n# CALORIES\n2100\n\n# TAGS\n[\"a\",\"b\"]", data.DownloadText())
}

func TestParsePlanData_Invalid(t *testing.T) {
	data, err := ParsePlanData([]byte("null"))
	require.NoError(t, err)
	assert.Nil(t, data)

	_, err = ParsePlanData([]byte(`["not", "an", "object"]`))
	assert.ErrorIs(t, err, ErrInvalidPlanData)

	_, err = ParsePlanData([]byte(`{"broken":`))
	assert.Error(t, err)
}

func TestPlanDocument(t *testing.T) {
	id := uuid.MustParse("0f8e3bb4-5a2c-4d44-9a55-2b5f5d3f1c01")
	raw := datatypes.JSON(`{"nutritional_requirements":"  - 1,800 calories\n","meal_plan":"### Day 1","extra_notes":"hydrate"}`)
	plan := &models.DietPlan{ID: id, Goal: "weight-loss", Status: models.PlanCompleted, PlanData: &raw}

	doc, err := PlanDocument(plan)
	require.NoError(t, err)
	assert.Equal(t, "diet_plan_0f8e3bb4-5a2c-4d44-9a55-2b5f5d3f1c01.md", doc.Filename)
	assert.Equal(t, "Weight Loss Plan", doc.Title)
	assert.Equal(t, "nutritional", doc.DefaultTab)

	tab, ok := doc.Tab("nutritional")
	require.True(t, ok)
	assert.Equal(t, "- 1,800 calories", tab.Sections[0].Body)
	medical, _ := doc.Tab("medical")
	assert.Empty(t, medical.Sections[0].Body)

	assert.Equal(t, "NUTRITIONAL REQUIREMENTS\n  - 1,800 calories\n\n\nMEAL PLAN\n### Day 1\n\nEXTRA NOTES\nhydrate", doc.CopyText())
	assert.True(t, strings.HasPrefix(doc.DownloadText(), "# NUTRITIONAL REQUIREMENTS\n"))
}

func TestPlanDocument_Fallback(t *testing.T) {
	plan := &models.DietPlan{ID: uuid.New(), Goal: "maintenance", Status: models.PlanCompleted}

	doc, err := PlanDocument(plan)
	require.NoError(t, err)

	grocery, ok := doc.Tab("grocery")
	require.True(t, ok)
	assert.Contains(t, grocery.Sections[0].Body, "### Proteins:")
	assert.Equal(t, FallbackPlanData().CopyText(), doc.CopyText())
	assert.Contains(t, doc.DownloadText(), "# SUPPLEMENTATION\n")
}

func TestPlanTitle(t *testing.T) {
	tests := map[string]string{
		"weight-loss":     "Weight Loss Plan",
		"general-health":  "General Health Plan",
		"énergie-durable": "Énergie Durable Plan",
	}
	for goal, want := range tests {
		assert.Equal(t, want, PlanTitle(&models.DietPlan{Goal: goal}), goal)
	}
}

func TestClipboard_Window(t *testing.T) {
	t0 := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	var c Clipboard
	assert.False(t, c.Copied(t0))

	c.Copy(t0)
	assert.True(t, c.Copied(t0))
	assert.True(t, c.Copied(t0.Add(CopyWindow-time.Nanosecond)))
	assert.False(t, c.Copied(t0.Add(CopyWindow)))

	// A second click restarts the window.
	c.Copy(t0.Add(time.Second))
	assert.True(t, c.Copied(t0.Add(CopyWindow)))
	assert.False(t, c.Copied(t0.Add(time.Second+CopyWindow)))
}

func TestRatingPrompt(t *testing.T) {
	t0 := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)

	p := NewRatingPrompt(t0)
	assert.False(t, p.Poll(t0.Add(RatingDelay-time.Millisecond)))
	assert.ErrorIs(t, p.Submit(4), ErrPromptNotOpen)
	assert.True(t, p.Poll(t0.Add(RatingDelay)))

	assert.ErrorIs(t, p.Submit(0), ErrRatingRequired)
	assert.ErrorIs(t, p.Submit(6), ErrInvalidRating)
	assert.True(t, p.Poll(t0.Add(RatingDelay)))

	require.NoError(t, p.Submit(4))
	assert.Equal(t, 4, p.Rating())
	assert.False(t, p.Poll(t0.Add(time.Hour)))

	skipped := NewRatingPrompt(t0)
	skipped.Skip()
	assert.False(t, skipped.Poll(t0.Add(time.Hour)))
	assert.Zero(t, skipped.Rating())
}

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func TestRegistry_ViewLifecycle(t *testing.T) {
	clock := &fakeClock{t: time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)}
	reg := NewRegistry(24*time.Hour, zap.NewNop()).WithClock(clock.now)
	doc := AssessmentDocument()

	st := reg.Render("s1", doc)
	assert.Equal(t, "plan", st.ActiveTab)
	require.NotNil(t, st.RatingPrompt)
	assert.False(t, st.RatingPrompt.Open)
	require.NotNil(t, st.RatingPrompt.OpensAt)

	st, err := reg.SelectTab("s1", doc, "grocery")
	require.NoError(t, err)
	assert.Equal(t, "grocery", st.ActiveTab)
	_, err = reg.SelectTab("s1", doc, "nutritional")
	assert.ErrorIs(t, err, ErrUnknownTab)

	text, st := reg.Copy("s1", doc)
	assert.Equal(t, SamplePlan(), text)
	assert.True(t, st.Copied)

	clock.advance(CopyWindow)
	st = reg.Render("s1", doc)
	assert.False(t, st.Copied)
	assert.Equal(t, "grocery", st.ActiveTab)

	clock.advance(RatingDelay)
	st = reg.Render("s1", doc)
	assert.True(t, st.RatingPrompt.Open)

	st, err = reg.Rate("s1", doc, 0)
	assert.ErrorIs(t, err, ErrRatingRequired)
	assert.True(t, st.RatingPrompt.Open)

	st, err = reg.Rate("s1", doc, 5)
	require.NoError(t, err)
	assert.True(t, st.RatingPrompt.Closed)
	assert.Equal(t, 5, st.RatingPrompt.Rating)

	clock.advance(time.Minute)
	st = reg.Render("s1", doc)
	assert.False(t, st.RatingPrompt.Open)

	reg.Reset("s1", doc.Key)
	st = reg.Render("s1", doc)
	assert.Equal(t, "plan", st.ActiveTab)
	assert.False(t, st.RatingPrompt.Closed)
}

func TestRegistry_PlanDocumentsHaveNoPrompt(t *testing.T) {
	reg := NewRegistry(time.Hour, zap.NewNop())
	doc, err := PlanDocument(&models.DietPlan{ID: uuid.New(), Goal: "maintenance"})
	require.NoError(t, err)

	st := reg.Render("s1", doc)
	assert.Nil(t, st.RatingPrompt)
	_, err = reg.Rate("s1", doc, 3)
	assert.ErrorIs(t, err, ErrPromptNotOpen)
}

func TestRegistry_DropOnSignOutAndIdle(t *testing.T) {
	clock := &fakeClock{t: time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)}
	reg := NewRegistry(time.Hour, zap.NewNop()).WithClock(clock.now)
	broker := session.NewBroker(zap.NewNop())
	sub := reg.DropOnSignOut(broker)
	defer sub.Unsubscribe()

	doc := AssessmentDocument()
	reg.Render("s1", doc)
	reg.Render("s2", doc)
	require.Equal(t, 2, reg.Len())

	require.NoError(t, broker.Publish(context.Background(), session.Change{
		Event:   session.SignedOut,
		Session: session.Session{ID: "s1"},
	}))
	assert.Equal(t, 1, reg.Len())

	clock.advance(2 * time.Hour)
	reg.Render("s3", doc)
	assert.Equal(t, 1, reg.Len())
}
