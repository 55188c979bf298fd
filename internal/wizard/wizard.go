package wizard

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

var (
	ErrNotAtLastStep    = errors.New("the assessment can only be submitted from the last step")
	ErrGoalsLocked      = errors.New("goals can only be changed on the basic info step")
	ErrFieldNotOnStep   = errors.New("field is not part of the current step")
	ErrUnknownField     = errors.New("unknown field")
	ErrInvalidValue     = errors.New("invalid value")
	ErrSubmitInProgress = errors.New("the assessment is being submitted")
	ErrCompleted        = errors.New("the assessment has already been submitted")
	ErrSubmitDiscarded  = errors.New("the assessment was restarted while it was being submitted")
)

// Phase is where the wizard is in its lifecycle.
type Phase string

const (
	PhaseEditing    Phase = "editing"
	PhaseSubmitting Phase = "submitting"
	PhaseCompleted  Phase = "completed"
)

// Effect is a presentation side effect requested by a transition.
type Effect string

const (
	EffectNone      Effect = ""
	EffectScrollTop Effect = "scroll_top"
)

// Handoff receives the finished draft. A returned error sends the wizard back
// to the last step with the draft intact.
type Handoff func(ctx context.Context, d Draft) error

// State is the serialisable form of a wizard.
type State struct {
	Step            Step       `json:"step"`
	Phase           Phase      `json:"phase"`
	Draft           Draft      `json:"draft"`
	Error           string     `json:"error,omitempty"`
	SubmitStartedAt *time.Time `json:"submit_started_at,omitempty"`
}

// Wizard is the assessment state machine. It is safe for concurrent use.
type Wizard struct {
	mu    sync.Mutex
	state State
}

// New starts a wizard at the first step editing d.
func New(d Draft) *Wizard {
	return &Wizard{state: State{Step: FirstStep, Phase: PhaseEditing, Draft: d.Clone()}}
}

// Restore rebuilds a wizard from a snapshot.
func Restore(s State) (*Wizard, error) {
	if !s.Step.Valid() {
		return nil, fmt.Errorf("wizard: invalid step %d", int(s.Step))
	}
	switch s.Phase {
	case PhaseEditing, PhaseSubmitting, PhaseCompleted:
	default:
		return nil, fmt.Errorf("wizard: invalid phase %q", s.Phase)
	}
	s.Draft = s.Draft.Clone()
	return &Wizard{state: s}, nil
}

// Snapshot returns a deep copy of the current state.
func (w *Wizard) Snapshot() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	s := w.state
	s.Draft = s.Draft.Clone()
	return s
}

func (w *Wizard) Step() Step {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state.Step
}

func (w *Wizard) Phase() Phase {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state.Phase
}

func (w *Wizard) Draft() Draft {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state.Draft.Clone()
}

func (w *Wizard) editable() error {
	switch w.state.Phase {
	case PhaseSubmitting:
		return ErrSubmitInProgress
	case PhaseCompleted:
		return ErrCompleted
	}
	return nil
}

// Next advances one step. At the last step it does nothing.
func (w *Wizard) Next() (Effect, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.editable(); err != nil {
		return EffectNone, err
	}
	if w.state.Step >= LastStep {
		return EffectNone, nil
	}
	w.state.Step++
	return EffectScrollTop, nil
}

// Previous goes back one step. At the first step it does nothing.
func (w *Wizard) Previous() (Effect, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.editable(); err != nil {
		return EffectNone, err
	}
	if w.state.Step <= FirstStep {
		return EffectNone, nil
	}
	w.state.Step--
	return EffectScrollTop, nil
}

// ToggleGoal selects goal, or removes it when already selected.
func (w *Wizard) ToggleGoal(goal string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.editable(); err != nil {
		return err
	}
	if !w.state.Step.Has(FieldGoals) {
		return ErrGoalsLocked
	}
	if !contains(NutritionGoals, goal) {
		return fmt.Errorf("%w: unknown goal %q", ErrInvalidValue, goal)
	}

	goals := make([]string, 0, len(w.state.Draft.Goals)+1)
	removed := false
	for _, g := range w.state.Draft.Goals {
		if g == goal && !removed {
			removed = true
			continue
		}
		goals = append(goals, g)
	}
	if !removed {
		goals = append(goals, goal)
	}
	w.state.Draft.Goals = goals
	return nil
}

// Set edits one field of the current step. Enumerated fields only accept
// their listed values; age is read with ParseAge.
func (w *Wizard) Set(f Field, value string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.editable(); err != nil {
		return err
	}
	if f == FieldGoals {
		return fmt.Errorf("%w: goals are changed one at a time", ErrInvalidValue)
	}
	if !known(f) {
		return fmt.Errorf("%w: %q", ErrUnknownField, f)
	}
	if !w.state.Step.Has(f) {
		return fmt.Errorf("%w: %s", ErrFieldNotOnStep, f)
	}
	if choices := Choices(f); choices != nil && !contains(choices, value) {
		return fmt.Errorf("%w: %q is not a valid %s", ErrInvalidValue, value, f)
	}

	d := &w.state.Draft
	switch f {
	case FieldAge:
		d.Age = ParseAge(value)
	case FieldGender:
		d.Gender = value
	case FieldHeight:
		d.Height = value
	case FieldWeight:
		d.Weight = value
	case FieldActivityLevel:
		d.ActivityLevel = value
	case FieldMedicalConditions:
		d.MedicalConditions = value
	case FieldMedications:
		d.Medications = value
	case FieldAllergies:
		d.Allergies = value
	case FieldFoodPreferences:
		d.FoodPreferences = value
	case FieldCookingAbility:
		d.CookingAbility = value
	case FieldBudget:
		d.Budget = value
	case FieldCulturalFactors:
		d.CulturalFactors = value
	}
	return nil
}

func known(f Field) bool {
	for _, s := range Steps() {
		if s.Has(f) {
			return true
		}
	}
	return false
}

// BeginSubmit moves to submitting and returns the draft to hand off. Only
// the last step may submit, and only once at a time.
func (w *Wizard) BeginSubmit(now time.Time) (Draft, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.editable(); err != nil {
		return Draft{}, err
	}
	if w.state.Step != LastStep {
		return Draft{}, ErrNotAtLastStep
	}
	w.state.Phase = PhaseSubmitting
	w.state.Error = ""
	w.state.SubmitStartedAt = &now
	return w.state.Draft.Clone(), nil
}

// FinishSubmit records the handoff result. A nil error completes the
// wizard; anything else returns it to the last step for another try.
func (w *Wizard) FinishSubmit(err error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.state.Phase != PhaseSubmitting {
		return
	}
	w.state.SubmitStartedAt = nil
	if err != nil {
		w.state.Phase = PhaseEditing
		w.state.Step = LastStep
		w.state.Error = err.Error()
		return
	}
	w.state.Phase = PhaseCompleted
	w.state.Error = ""
}

// Submit hands the draft to h and records the outcome.
func (w *Wizard) Submit(ctx context.Context, h Handoff) error {
	d, err := w.BeginSubmit(time.Now())
	if err != nil {
		return err
	}
	err = h(ctx, d)
	w.FinishSubmit(err)
	if err != nil {
		return fmt.Errorf("failed to submit assessment: %w", err)
	}
	return nil
}
