package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pageza/nutriplan/backend/internal/middleware"
	"github.com/pageza/nutriplan/backend/internal/repository"
	"github.com/pageza/nutriplan/backend/internal/service"
	"github.com/pageza/nutriplan/backend/internal/session"
	"github.com/pageza/nutriplan/backend/internal/types"
	"github.com/pageza/nutriplan/backend/internal/viewer"
	"github.com/pageza/nutriplan/backend/internal/wizard"
)

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, session.ErrNoSession),
		errors.Is(err, service.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, repository.ErrUserExists):
		return http.StatusConflict
	case errors.Is(err, repository.ErrUserNotFound),
		errors.Is(err, repository.ErrProfileNotFound),
		errors.Is(err, repository.ErrPlanNotFound):
		return http.StatusNotFound
	case errors.Is(err, wizard.ErrNotAtLastStep),
		errors.Is(err, wizard.ErrGoalsLocked),
		errors.Is(err, wizard.ErrSubmitInProgress),
		errors.Is(err, wizard.ErrCompleted),
		errors.Is(err, wizard.ErrSubmitDiscarded),
		errors.Is(err, service.ErrPlanProcessing),
		errors.Is(err, viewer.ErrPromptNotOpen):
		return http.StatusConflict
	case errors.Is(err, wizard.ErrFieldNotOnStep),
		errors.Is(err, wizard.ErrUnknownField),
		errors.Is(err, wizard.ErrInvalidValue),
		errors.Is(err, viewer.ErrUnknownTab),
		errors.Is(err, viewer.ErrRatingRequired),
		errors.Is(err, viewer.ErrInvalidRating),
		errors.Is(err, service.ErrInvalidHealthInfo):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes {"error": ...}. Internal errors are not echoed.
func respondError(c *gin.Context, err error) {
	respondErrorWith(c, err, nil)
}

func respondErrorWith(c *gin.Context, err error, n *types.Notification) {
	status := statusFor(err)
	body := gin.H{"error": err.Error()}
	if status == http.StatusInternalServerError {
		_ = c.Error(err)
		body["error"] = "internal server error"
	}
	if status == http.StatusUnauthorized {
		body["redirect"] = middleware.SignInPath
	}
	if n != nil {
		body["notification"] = n
	}
	c.JSON(status, body)
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}

// currentSession is only called behind SessionGuard.
func currentSession(c *gin.Context) *session.Session {
	s, _ := middleware.CurrentSession(c)
	return s
}
