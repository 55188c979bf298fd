package web

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/pageza/nutriplan/backend/internal/api"
	"github.com/pageza/nutriplan/backend/internal/types"
	"github.com/pageza/nutriplan/backend/internal/viewer"
	"github.com/pageza/nutriplan/backend/internal/wizard"
)

// FieldView is one input of the current wizard step.
type FieldView struct {
	Name        string
	Label       string
	Placeholder string
	Value       string
	Choices     []string
	Multiline   bool
}

type goalView struct {
	Name     string
	Selected bool
}

type stepTab struct {
	Title   string
	Current bool
	Done    bool
}

type assessmentView struct {
	State  wizard.State
	Steps  []stepTab
	Fields []FieldView
	Goals  []goalView
	// ShowGoals is true on the step that edits goals.
	ShowGoals bool
	First     bool
	Last      bool
}

type resultsView struct {
	About    []api.AboutItem
	Doc      *viewer.Document
	Active   viewer.Tab
	View     viewer.ViewState
	CopyText string
}

func multiline(f wizard.Field) bool {
	switch f {
	case wizard.FieldMedicalConditions, wizard.FieldMedications, wizard.FieldAllergies,
		wizard.FieldFoodPreferences, wizard.FieldCulturalFactors:
		return true
	}
	return false
}

func newAssessmentView(st wizard.State) assessmentView {
	v := assessmentView{
		State: st,
		First: st.Step == wizard.FirstStep,
		Last:  st.Step == wizard.LastStep,
	}
	for _, s := range wizard.Steps() {
		v.Steps = append(v.Steps, stepTab{Title: s.Title(), Current: s == st.Step, Done: s < st.Step})
	}
	for _, f := range st.Step.Fields() {
		if f == wizard.FieldGoals {
			v.ShowGoals = true
			continue
		}
		v.Fields = append(v.Fields, FieldView{
			Name:        string(f),
			Label:       f.Label(),
			Placeholder: f.Placeholder(),
			Value:       st.Draft.Value(f),
			Choices:     wizard.Choices(f),
			Multiline:   multiline(f),
		})
	}
	if v.ShowGoals {
		for _, g := range wizard.NutritionGoals {
			v.Goals = append(v.Goals, goalView{Name: g, Selected: st.Draft.HasGoal(g)})
		}
	}
	return v
}

// Assessment shows the current wizard step, or the results once the
// assessment has been submitted.
func (p *Pages) Assessment(c *gin.Context) {
	st, err := p.wizard.Current(c.Request.Context(), currentSession(c))
	if err != nil {
		p.log.Error("failed to load assessment", zap.Error(err))
		p.redirect(c, api.DashboardPath, types.Alert("Error loading health assessment", ""))
		return
	}

	switch st.Phase {
	case wizard.PhaseCompleted:
		p.results(c, st)
	case wizard.PhaseSubmitting:
		p.renderPage(c, http.StatusOK, "assessment.html", &page{
			Title:   "Health Assessment",
			Refresh: 1,
			Data:    newAssessmentView(st),
		})
	default:
		p.render(c, http.StatusOK, "assessment.html", "Health Assessment", newAssessmentView(st))
	}
}

func (p *Pages) results(c *gin.Context, st wizard.State) {
	view := p.registry.Render(currentSession(c).ID, p.assessment)
	active, _ := p.assessment.Tab(view.ActiveTab)
	data := resultsView{
		About:  api.AboutYou(st.Draft),
		Doc:    p.assessment,
		Active: active,
		View:   view,
	}
	if view.Copied {
		data.CopyText = p.assessment.CopyText()
	}
	p.renderPage(c, http.StatusOK, "results.html", &page{
		Title:   p.assessment.Title,
		Refresh: refreshAfter(view),
		Data:    data,
	})
}

// stepValues reads the posted inputs of the current step. Inputs missing
// from the form are left alone.
func stepValues(c *gin.Context, step wizard.Step) map[wizard.Field]string {
	values := map[wizard.Field]string{}
	for _, f := range step.Fields() {
		if f == wizard.FieldGoals {
			continue
		}
		if v, ok := c.GetPostForm(string(f)); ok {
			values[f] = v
		}
	}
	return values
}

// AssessmentAction handles the wizard form. The posted inputs of the current
// step are saved before the requested action runs, except for start-over.
func (p *Pages) AssessmentAction(c *gin.Context) {
	ctx := c.Request.Context()
	sess := currentSession(c)
	action := c.PostForm("action")
	goal, toggling := c.GetPostForm("toggle")
	if toggling {
		action = "toggle-goal"
	}

	if action == "start-over" {
		if err := p.wizard.Discard(ctx, sess.ID); err != nil {
			p.log.Error("failed to discard assessment", zap.Error(err))
		}
		p.registry.Reset(sess.ID, viewer.AssessmentKey)
		p.redirect(c, api.AssessmentPath, nil)
		return
	}

	st, err := p.wizard.Current(ctx, sess)
	if err != nil {
		p.log.Error("failed to load assessment", zap.Error(err))
		p.redirect(c, api.AssessmentPath, types.Alert("Error loading health assessment", ""))
		return
	}
	if values := stepValues(c, st.Step); len(values) > 0 {
		if _, err := p.wizard.Update(ctx, sess, values); err != nil {
			p.redirect(c, api.AssessmentPath, types.Alert("Please check your answers", err.Error()))
			return
		}
	}

	var n *types.Notification
	switch action {
	case "next":
		_, _, err = p.wizard.Next(ctx, sess)
	case "previous":
		_, _, err = p.wizard.Previous(ctx, sess)
	case "toggle-goal":
		_, err = p.wizard.ToggleGoal(ctx, sess, goal)
	case "submit":
		var st wizard.State
		st, err = p.wizard.Submit(ctx, sess)
		if err == nil {
			p.registry.Reset(sess.ID, viewer.AssessmentKey)
			n = types.Notice("Health information saved", "Your health profile has been updated successfully")
		} else if st.Error != "" {
			n = types.Alert("Error saving health information", st.Error)
			err = nil
		}
	case "save", "":
	default:
		err = fmt.Errorf("%w: unknown action %q", wizard.ErrInvalidValue, action)
	}

	if err != nil {
		n = p.wizardAlert(err)
	}
	p.redirect(c, api.AssessmentPath, n)
}

func (p *Pages) wizardAlert(err error) *types.Notification {
	switch {
	case errors.Is(err, wizard.ErrNotAtLastStep),
		errors.Is(err, wizard.ErrGoalsLocked),
		errors.Is(err, wizard.ErrFieldNotOnStep),
		errors.Is(err, wizard.ErrUnknownField),
		errors.Is(err, wizard.ErrInvalidValue),
		errors.Is(err, wizard.ErrSubmitInProgress),
		errors.Is(err, wizard.ErrCompleted),
		errors.Is(err, wizard.ErrSubmitDiscarded):
		return types.Alert("Please check your answers", err.Error())
	default:
		p.log.Error("assessment action failed", zap.Error(err))
		return types.Alert("Error saving health information", "")
	}
}

// completed loads a submitted assessment, sending the user back to the
// wizard otherwise.
func (p *Pages) completed(c *gin.Context) bool {
	st, err := p.wizard.Current(c.Request.Context(), currentSession(c))
	if err != nil || st.Phase != wizard.PhaseCompleted {
		p.redirect(c, api.AssessmentPath, nil)
		return false
	}
	return true
}

// ResultsAction handles the results viewer: tabs, copy and the rating
// prompt.
func (p *Pages) ResultsAction(c *gin.Context) {
	if !p.completed(c) {
		return
	}
	sid := currentSession(c).ID

	var n *types.Notification
	switch c.PostForm("action") {
	case "tab":
		_, _ = p.registry.SelectTab(sid, p.assessment, c.PostForm("tab"))
	case "copy":
		p.registry.Copy(sid, p.assessment)
	case "skip":
		p.registry.SkipRating(sid, p.assessment)
	case "rate":
		rating, _ := strconv.Atoi(c.PostForm("rating"))
		_, err := p.registry.Rate(sid, p.assessment, rating)
		switch {
		case errors.Is(err, viewer.ErrRatingRequired):
			n = types.Alert("Please select a rating", "Please select a rating before submitting your feedback.")
		case err != nil:
			n = types.Alert("Could not submit rating", err.Error())
		default:
			if err := p.feedback.RecordRating(c.Request.Context(), currentSession(c).UserID, p.assessment.Key, rating); err != nil {
				p.log.Error("failed to record rating", zap.Error(err))
			}
			n = types.Notice("Thank you for your feedback!",
				fmt.Sprintf("You rated our meal plan %d out of 5 stars.", rating))
		}
	}
	p.redirect(c, api.AssessmentPath, n)
}

func (p *Pages) DownloadResults(c *gin.Context) {
	if !p.completed(c) {
		return
	}
	api.SendDownload(c, p.assessment)
}
