package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/pageza/nutriplan/backend/internal/service"
	"github.com/pageza/nutriplan/backend/internal/types"
	"github.com/pageza/nutriplan/backend/internal/viewer"
	"github.com/pageza/nutriplan/backend/internal/wizard"
)

// AssessmentPath is the page hosting the wizard and its results.
const AssessmentPath = "/health-assessment"

var errNotSubmitted = errors.New("the assessment has not been submitted")

// StepView describes the current wizard step.
type StepView struct {
	Index       int            `json:"index"`
	Title       string         `json:"title"`
	Heading     string         `json:"heading"`
	Description string         `json:"description"`
	Fields      []wizard.Field `json:"fields"`
	First       bool           `json:"first"`
	Last        bool           `json:"last"`
}

// AssessmentResponse is the wizard as the client renders it.
type AssessmentResponse struct {
	Phase        wizard.Phase        `json:"phase"`
	Step         StepView            `json:"step"`
	Steps        []string            `json:"steps"`
	Draft        wizard.Draft        `json:"draft"`
	Error        string              `json:"error,omitempty"`
	Effect       wizard.Effect       `json:"effect,omitempty"`
	Notification *types.Notification `json:"notification,omitempty"`
}

// NewAssessmentResponse builds the response for a wizard state.
func NewAssessmentResponse(st wizard.State, effect wizard.Effect) AssessmentResponse {
	titles := make([]string, 0, len(wizard.Steps()))
	for _, s := range wizard.Steps() {
		titles = append(titles, s.Title())
	}
	return AssessmentResponse{
		Phase: st.Phase,
		Step: StepView{
			Index:       int(st.Step),
			Title:       st.Step.Title(),
			Heading:     st.Step.Heading(),
			Description: st.Step.Description(),
			Fields:      st.Step.Fields(),
			First:       st.Step == wizard.FirstStep,
			Last:        st.Step == wizard.LastStep,
		},
		Steps:  titles,
		Draft:  st.Draft,
		Error:  st.Error,
		Effect: effect,
	}
}

// AboutItem is one line of the "About You" summary.
type AboutItem struct {
	Label  string   `json:"label"`
	Value  string   `json:"value,omitempty"`
	Values []string `json:"values,omitempty"`
}

// AboutYou summarises the submitted draft.
func AboutYou(d wizard.Draft) []AboutItem {
	age := ""
	if d.Age != nil {
		age = strconv.Itoa(*d.Age)
	}
	return []AboutItem{
		{Label: "Age", Value: age},
		{Label: "Gender", Value: d.Gender},
		{Label: "Height", Value: d.Height},
		{Label: "Weight", Value: d.Weight},
		{Label: "Activity", Value: d.ActivityLevel},
		{Label: "Goals", Values: d.Goals},
	}
}

// DocumentView is a viewer document without its copy and download bodies.
type DocumentView struct {
	Key        string       `json:"key"`
	Title      string       `json:"title"`
	Tabs       []viewer.Tab `json:"tabs"`
	DefaultTab string       `json:"default_tab"`
	Filename   string       `json:"filename"`
}

func documentView(doc *viewer.Document) DocumentView {
	return DocumentView{
		Key:        doc.Key,
		Title:      doc.Title,
		Tabs:       doc.Tabs,
		DefaultTab: doc.DefaultTab,
		Filename:   doc.Filename,
	}
}

// ResultsResponse is the results page of a submitted assessment.
type ResultsResponse struct {
	Title    string           `json:"title"`
	Subtitle string           `json:"subtitle"`
	About    []AboutItem      `json:"about"`
	Document DocumentView     `json:"document"`
	View     viewer.ViewState `json:"view"`
}

// ViewResponse carries view state and an optional notification.
type ViewResponse struct {
	View         viewer.ViewState    `json:"view"`
	Text         string              `json:"text,omitempty"`
	Notification *types.Notification `json:"notification,omitempty"`
}

// AssessmentHandler serves the wizard and the results viewer.
type AssessmentHandler struct {
	wizard   *wizard.Service
	registry *viewer.Registry
	feedback service.IFeedbackService
	doc      *viewer.Document
	log      *zap.Logger
}

func NewAssessmentHandler(w *wizard.Service, registry *viewer.Registry, feedback service.IFeedbackService, log *zap.Logger) *AssessmentHandler {
	return &AssessmentHandler{wizard: w, registry: registry, feedback: feedback, doc: viewer.AssessmentDocument(), log: log}
}

func (h *AssessmentHandler) RegisterRoutes(router *gin.RouterGroup) {
	a := router.Group("/assessment")
	a.GET("", h.Get)
	a.PATCH("", h.Update)
	a.DELETE("", h.StartOver)
	a.POST("/next", h.Next)
	a.POST("/previous", h.Previous)
	a.POST("/goals/toggle", h.ToggleGoal)
	a.POST("/submit", h.Submit)

	r := a.Group("/results")
	r.GET("", h.Results)
	r.PUT("/tab", h.SelectTab)
	r.POST("/copy", h.Copy)
	r.GET("/download", h.Download)
	r.GET("/rating", h.RatingState)
	r.POST("/rating", h.Rate)
	r.POST("/rating/skip", h.SkipRating)
}

func (h *AssessmentHandler) Get(c *gin.Context) {
	st, err := h.wizard.Current(c.Request.Context(), currentSession(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, NewAssessmentResponse(st, wizard.EffectNone))
}

// Update applies field edits. Values may be strings or numbers; null clears
// a field.
func (h *AssessmentHandler) Update(c *gin.Context) {
	var raw map[string]any
	if err := c.ShouldBindJSON(&raw); err != nil {
		badRequest(c, err)
		return
	}
	values, err := FormValues(raw)
	if err != nil {
		respondError(c, err)
		return
	}

	st, err := h.wizard.Update(c.Request.Context(), currentSession(c), values)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, NewAssessmentResponse(st, wizard.EffectNone))
}

// FormValues converts a decoded JSON object into wizard field values.
func FormValues(raw map[string]any) (map[wizard.Field]string, error) {
	values := make(map[wizard.Field]string, len(raw))
	for k, v := range raw {
		f := wizard.Field(k)
		switch x := v.(type) {
		case nil:
			values[f] = ""
		case string:
			values[f] = x
		case float64:
			values[f] = strconv.FormatFloat(x, 'f', -1, 64)
		case json.Number:
			values[f] = x.String()
		default:
			return nil, fmt.Errorf("%w: %s must be a string or a number", wizard.ErrInvalidValue, k)
		}
	}
	return values, nil
}

func (h *AssessmentHandler) Next(c *gin.Context) {
	st, effect, err := h.wizard.Next(c.Request.Context(), currentSession(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, NewAssessmentResponse(st, effect))
}

func (h *AssessmentHandler) Previous(c *gin.Context) {
	st, effect, err := h.wizard.Previous(c.Request.Context(), currentSession(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, NewAssessmentResponse(st, effect))
}

func (h *AssessmentHandler) ToggleGoal(c *gin.Context) {
	var req types.ToggleGoalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	st, err := h.wizard.ToggleGoal(c.Request.Context(), currentSession(c), req.Goal)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, NewAssessmentResponse(st, wizard.EffectNone))
}

// Submit saves the assessment. A failed save returns the wizard to the last
// step with the draft intact.
func (h *AssessmentHandler) Submit(c *gin.Context) {
	sess := currentSession(c)
	st, err := h.wizard.Submit(c.Request.Context(), sess)
	if err != nil {
		if st.Phase == "" || statusFor(err) != http.StatusInternalServerError {
			respondError(c, err)
			return
		}
		_ = c.Error(err)
		resp := NewAssessmentResponse(st, wizard.EffectNone)
		resp.Notification = types.Alert("Error saving health information", st.Error)
		c.JSON(http.StatusInternalServerError, resp)
		return
	}

	// a fresh submission starts a fresh results view
	h.registry.Reset(sess.ID, viewer.AssessmentKey)
	resp := NewAssessmentResponse(st, wizard.EffectScrollTop)
	resp.Notification = types.Notice("Health information saved", "Your health profile has been updated successfully")
	c.JSON(http.StatusOK, resp)
}

// StartOver discards the wizard and its results view.
func (h *AssessmentHandler) StartOver(c *gin.Context) {
	sess := currentSession(c)
	if err := h.wizard.Discard(c.Request.Context(), sess.ID); err != nil {
		respondError(c, err)
		return
	}
	h.registry.Reset(sess.ID, viewer.AssessmentKey)
	h.log.Debug("assessment restarted", zap.String("session_id", sess.ID))

	st, err := h.wizard.Current(c.Request.Context(), sess)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, NewAssessmentResponse(st, wizard.EffectScrollTop))
}

// completed loads the wizard and requires a finished submission.
func (h *AssessmentHandler) completed(c *gin.Context) (wizard.State, bool) {
	st, err := h.wizard.Current(c.Request.Context(), currentSession(c))
	if err != nil {
		respondError(c, err)
		return st, false
	}
	if st.Phase != wizard.PhaseCompleted {
		c.JSON(http.StatusConflict, gin.H{"error": errNotSubmitted.Error(), "redirect": AssessmentPath})
		return st, false
	}
	return st, true
}

func (h *AssessmentHandler) Results(c *gin.Context) {
	st, ok := h.completed(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, ResultsResponse{
		Title:    "Your Personalized Nutrition Plan",
		Subtitle: "Carefully crafted for your unique needs and preferences",
		About:    AboutYou(st.Draft),
		Document: documentView(h.doc),
		View:     h.registry.Render(currentSession(c).ID, h.doc),
	})
}

func (h *AssessmentHandler) SelectTab(c *gin.Context) {
	if _, ok := h.completed(c); !ok {
		return
	}
	var req types.SelectTabRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	view, err := h.registry.SelectTab(currentSession(c).ID, h.doc, req.Tab)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ViewResponse{View: view})
}

func (h *AssessmentHandler) Copy(c *gin.Context) {
	if _, ok := h.completed(c); !ok {
		return
	}
	text, view := h.registry.Copy(currentSession(c).ID, h.doc)
	c.JSON(http.StatusOK, ViewResponse{View: view, Text: text})
}

func (h *AssessmentHandler) Download(c *gin.Context) {
	if _, ok := h.completed(c); !ok {
		return
	}
	SendDownload(c, h.doc)
}

func (h *AssessmentHandler) RatingState(c *gin.Context) {
	if _, ok := h.completed(c); !ok {
		return
	}
	c.JSON(http.StatusOK, ViewResponse{View: h.registry.Render(currentSession(c).ID, h.doc)})
}

func (h *AssessmentHandler) Rate(c *gin.Context) {
	if _, ok := h.completed(c); !ok {
		return
	}
	var req types.RatingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	s := currentSession(c)
	view, err := h.registry.Rate(s.ID, h.doc, req.Rating)
	switch {
	case errors.Is(err, viewer.ErrRatingRequired):
		c.JSON(statusFor(err), gin.H{
			"error":        err.Error(),
			"view":         view,
			"notification": types.Alert("Please select a rating", "Please select a rating before submitting your feedback."),
		})
		return
	case err != nil:
		respondError(c, err)
		return
	}

	// The rating stands even when recording it fails.
	if err := h.feedback.RecordRating(c.Request.Context(), s.UserID, h.doc.Key, req.Rating); err != nil {
		h.log.Error("failed to record rating", zap.Error(err))
	}

	c.JSON(http.StatusOK, ViewResponse{
		View: view,
		Notification: types.Notice("Thank you for your feedback!",
			fmt.Sprintf("You rated our meal plan %d out of 5 stars.", req.Rating)),
	})
}

func (h *AssessmentHandler) SkipRating(c *gin.Context) {
	if _, ok := h.completed(c); !ok {
		return
	}
	c.JSON(http.StatusOK, ViewResponse{View: h.registry.SkipRating(currentSession(c).ID, h.doc)})
}

// SendDownload answers with the document's Markdown as an attachment.
func SendDownload(c *gin.Context, doc *viewer.Document) {
	name := strings.ReplaceAll(doc.Filename, `"`, "")
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, name))
	c.Data(http.StatusOK, "text/markdown; charset=utf-8", []byte(doc.DownloadText()))
}
