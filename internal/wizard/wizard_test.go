package wizard

import (
	"context"
	"errors"
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/nutriplan/backend/internal/models"
)

func intPtr(n int) *int { return &n }

func TestStep_ExhaustiveMetadata(t *testing.T) {
	titles := []string{}
	for _, s := range Steps() {
		titles = append(titles, s.Title())
		assert.NotEmpty(t, s.Heading())
		assert.NotEmpty(t, s.Fields())
	}
	assert.Equal(t, []string{"Basic Info", "Health Details", "Preferences"}, titles)
	assert.Panics(t, func() { _ = Step(7).Title() })
	assert.False(t, Step(-1).Valid())
}

func TestParseAge(t *testing.T) {
	tests := []struct {
		in   string
		want *int
	}{
		{"45", intPtr(45)},
		{"  45 years", intPtr(45)},
		{"45.9", intPtr(45)},
		{"+7", intPtr(7)},
		{"", nil},
		{"abc", nil},
		{"0", nil},
		{"-5", nil},
		{"-", nil},
		{"99999999999999999999999", nil},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseAge(tt.in))
		})
	}
}

func TestWizard_ExampleScenario(t *testing.T) {
	w := New(DefaultDraft())

	require.NoError(t, w.Set(FieldAge, "45"))
	require.NoError(t, w.ToggleGoal("Weight Loss"))
	require.NoError(t, w.ToggleGoal("General Health"))
	for i := 0; i < 2; i++ {
		effect, err := w.Next()
		require.NoError(t, err)
		assert.Equal(t, EffectScrollTop, effect)
	}

	var handed []Draft
	err := w.Submit(context.Background(), func(_ context.Context, d Draft) error {
		handed = append(handed, d)
		return nil
	})
	require.NoError(t, err)

	want := Draft{
		Age:            intPtr(45),
		Gender:         "Male",
		ActivityLevel:  "Moderately Active",
		Goals:          []string{"Weight Loss"},
		CookingAbility: "Average",
		Budget:         "Moderate",
	}
	require.Len(t, handed, 1)
	if diff := cmp.Diff(want, handed[0]); diff != "" {
		t.Errorf("handoff payload mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, PhaseCompleted, w.Phase())
}

func TestWizard_NavigationClamps(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for run := 0; run < 200; run++ {
		w := New(DefaultDraft())
		want := 0
		for i := 0; i < 20; i++ {
			if rng.Intn(2) == 0 {
				effect, err := w.Next()
				require.NoError(t, err)
				if want < int(LastStep) {
					want++
					assert.Equal(t, EffectScrollTop, effect)
				} else {
					assert.Equal(t, EffectNone, effect)
				}
			} else {
				effect, err := w.Previous()
				require.NoError(t, err)
				if want > int(FirstStep) {
					want--
					assert.Equal(t, EffectScrollTop, effect)
				} else {
					assert.Equal(t, EffectNone, effect)
				}
			}
			require.Equal(t, Step(want), w.Step())
		}
	}
}

func TestWizard_ToggleIsItsOwnInverse(t *testing.T) {
	for _, goal := range NutritionGoals {
		w := New(DefaultDraft())
		before := w.Draft().Goals

		require.NoError(t, w.ToggleGoal(goal))
		require.NoError(t, w.ToggleGoal(goal))

		got := w.Draft().Goals
		assert.ElementsMatch(t, before, got, goal)
	}
}

func TestWizard_ToggleAppendsAndRemoves(t *testing.T) {
	w := New(DefaultDraft())
	require.NoError(t, w.ToggleGoal("Better Energy"))
	assert.Equal(t, []string{"General Health", "Better Energy"}, w.Draft().Goals)
	require.NoError(t, w.ToggleGoal("General Health"))
	assert.Equal(t, []string{"Better Energy"}, w.Draft().Goals)

	assert.ErrorIs(t, w.ToggleGoal("Eat More Cake"), ErrInvalidValue)

	_, err := w.Next()
	require.NoError(t, err)
	assert.ErrorIs(t, w.ToggleGoal("Weight Loss"), ErrGoalsLocked)
}

func TestWizard_SetRules(t *testing.T) {
	w := New(DefaultDraft())

	assert.ErrorIs(t, w.Set(FieldAllergies, "peanuts"), ErrFieldNotOnStep)
	assert.ErrorIs(t, w.Set(Field("shoe_size"), "42"), ErrUnknownField)
	assert.ErrorIs(t, w.Set(FieldGender, "Robot"), ErrInvalidValue)
	assert.ErrorIs(t, w.Set(FieldGoals, "Weight Loss"), ErrInvalidValue)

	require.NoError(t, w.Set(FieldGender, "Female"))
	require.NoError(t, w.Set(FieldHeight, "178 cm"))
	require.NoError(t, w.Set(FieldAge, "not a number"))

	d := w.Draft()
	assert.Equal(t, "Female", d.Gender)
	assert.Equal(t, "178 cm", d.Height)
	assert.Nil(t, d.Age)

	_, _ = w.Next()
	_, _ = w.Next()
	require.NoError(t, w.Set(FieldBudget, "Flexible"))
	assert.ErrorIs(t, w.Set(FieldCookingAbility, "Michelin"), ErrInvalidValue)
	assert.Equal(t, "Flexible", w.Draft().Budget)
}

func TestWizard_SubmitOnlyFromLastStep(t *testing.T) {
	w := New(DefaultDraft())
	called := 0
	err := w.Submit(context.Background(), func(context.Context, Draft) error {
		called++
		return nil
	})
	assert.ErrorIs(t, err, ErrNotAtLastStep)
	assert.Zero(t, called)
	assert.Equal(t, PhaseEditing, w.Phase())
}

func TestWizard_FailedSubmitPreservesDraft(t *testing.T) {
	w := New(DefaultDraft())
	require.NoError(t, w.Set(FieldAge, "52"))
	_, _ = w.Next()
	require.NoError(t, w.Set(FieldMedications, "Metformin"))
	_, _ = w.Next()
	before := w.Draft()

	boom := errors.New("backend rejected the upsert")
	err := w.Submit(context.Background(), func(context.Context, Draft) error { return boom })
	require.ErrorIs(t, err, boom)

	st := w.Snapshot()
	assert.Equal(t, PhaseEditing, st.Phase)
	assert.Equal(t, LastStep, st.Step)
	assert.Equal(t, boom.Error(), st.Error)
	assert.Nil(t, st.SubmitStartedAt)
	if diff := cmp.Diff(before, st.Draft); diff != "" {
		t.Errorf("draft changed after failed submit (-want +got):\n%s", diff)
	}

	calls := 0
	require.NoError(t, w.Submit(context.Background(), func(context.Context, Draft) error {
		calls++
		return nil
	}))
	assert.Equal(t, 1, calls)
	assert.Empty(t, w.Snapshot().Error)
}

func TestWizard_LockedWhileSubmittingAndAfter(t *testing.T) {
	w := New(DefaultDraft())
	_, _ = w.Next()
	_, _ = w.Next()

	_, err := w.BeginSubmit(testNow)
	require.NoError(t, err)

	_, err = w.BeginSubmit(testNow)
	assert.ErrorIs(t, err, ErrSubmitInProgress)
	_, err = w.Previous()
	assert.ErrorIs(t, err, ErrSubmitInProgress)
	assert.ErrorIs(t, w.Set(FieldBudget, "Flexible"), ErrSubmitInProgress)

	w.FinishSubmit(nil)
	assert.ErrorIs(t, w.Set(FieldBudget, "Flexible"), ErrCompleted)
	_, err = w.Next()
	assert.ErrorIs(t, err, ErrCompleted)
}

func TestRestore_RejectsCorruptState(t *testing.T) {
	_, err := Restore(State{Step: 9, Phase: PhaseEditing})
	assert.Error(t, err)
	_, err = Restore(State{Step: StepBasicInfo, Phase: "dancing"})
	assert.Error(t, err)

	w, err := Restore(State{Step: StepHealthDetails, Phase: PhaseEditing, Draft: DefaultDraft()})
	require.NoError(t, err)
	assert.Equal(t, StepHealthDetails, w.Step())
}

func TestDraftFromHealthInfo(t *testing.T) {
	empty := ""
	gender := "Female"
	info := &models.HealthInfo{
		Age:    intPtr(0),
		Gender: &gender,
		Budget: &empty,
		Goals:  models.StringList{},
	}

	d := DraftFromHealthInfo(info)
	assert.Equal(t, intPtr(DefaultAge), d.Age)
	assert.Equal(t, "Female", d.Gender)
	assert.Equal(t, DefaultBudget, d.Budget)
	assert.Equal(t, DefaultActivityLevel, d.ActivityLevel)
	assert.Empty(t, d.Goals)

	saved := d.ToHealthInfo()
	roundTrip := DraftFromHealthInfo(&saved)
	if diff := cmp.Diff(d, roundTrip); diff != "" {
		t.Errorf("draft did not survive conversion (-want +got):\n%s", diff)
	}
	assert.Nil(t, d.ToHealthInfo().PlanDuration)
}
