package api

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/pageza/nutriplan/backend/internal/mocks"
	"github.com/pageza/nutriplan/backend/internal/models"
	"github.com/pageza/nutriplan/backend/internal/repository"
	"github.com/pageza/nutriplan/backend/internal/service"
	"github.com/pageza/nutriplan/backend/internal/session"
	"github.com/pageza/nutriplan/backend/internal/types"
	"github.com/pageza/nutriplan/backend/internal/wizard"
)

func setupProfileRouter(profiles *mocks.MockProfileService, health *mocks.MockHealthService, s *session.Session) *gin.Engine {
	r := gin.New()
	group := r.Group("/api/v1")
	group.Use(signedIn(s))
	NewProfileHandler(profiles, health).RegisterRoutes(group)
	return r
}

func TestProfileHandler_GetProfile(t *testing.T) {
	sess := testSession()
	profiles := new(mocks.MockProfileService)
	router := setupProfileRouter(profiles, new(mocks.MockHealthService), sess)

	profiles.On("GetProfile", mock.Anything, sess.UserID).Return(&types.ProfileResponse{
		ID: sess.UserID, Email: sess.Email, FirstName: "Ada",
	}, nil).Once()

	w := doJSON(t, router, http.MethodGet, "/api/v1/profile", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var resp types.ProfileResponse
	decode(t, w, &resp)
	assert.Equal(t, "Ada", resp.FirstName)

	profiles.On("GetProfile", mock.Anything, sess.UserID).Return(nil, repository.ErrProfileNotFound).Once()
	w = doJSON(t, router, http.MethodGet, "/api/v1/profile", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "Error fetching profile")
}

func TestProfileHandler_UpdateProfile(t *testing.T) {
	sess := testSession()
	profiles := new(mocks.MockProfileService)
	router := setupProfileRouter(profiles, new(mocks.MockHealthService), sess)

	profiles.On("UpdateProfile", mock.Anything, sess.UserID, &types.UpdateProfileRequest{FirstName: "Grace", LastName: "Hopper"}).
		Return(&types.ProfileResponse{ID: sess.UserID, FirstName: "Grace", LastName: "Hopper"}, nil)

	w := doJSON(t, router, http.MethodPut, "/api/v1/profile", map[string]string{
		"first_name": "Grace", "last_name": "Hopper",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), "Profile updated successfully")
	profiles.AssertExpectations(t)
}

func TestProfileHandler_HealthInfoDefaults(t *testing.T) {
	sess := testSession()
	health := new(mocks.MockHealthService)
	router := setupProfileRouter(new(mocks.MockProfileService), health, sess)

	health.On("Get", mock.Anything, sess.UserID).Return(nil, false, nil)

	w := doJSON(t, router, http.MethodGet, "/api/v1/health-info", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var resp HealthInfoResponse
	decode(t, w, &resp)
	assert.False(t, resp.Exists)
	assert.Equal(t, wizard.DefaultDraft(), resp.Draft)
}

func TestProfileHandler_SaveHealthInfo(t *testing.T) {
	sess := testSession()
	health := new(mocks.MockHealthService)
	router := setupProfileRouter(new(mocks.MockProfileService), health, sess)

	gender := "Female"
	health.On("Save", mock.Anything, sess.UserID, mock.MatchedBy(func(r *types.HealthInfoRequest) bool {
		return r.Gender == "Female"
	})).Return(&models.HealthInfo{UserID: sess.UserID, Gender: &gender, Goals: models.StringList{"Weight Loss"}}, nil)
	health.On("Save", mock.Anything, sess.UserID, mock.Anything).
		Return(nil, service.ErrInvalidHealthInfo)

	w := doJSON(t, router, http.MethodPut, "/api/v1/health-info", map[string]any{
		"gender": "Female", "goals": []string{"Weight Loss"},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp HealthInfoResponse
	decode(t, w, &resp)
	assert.True(t, resp.Exists)
	assert.Equal(t, "Female", resp.Draft.Gender)
	assert.Equal(t, []string{"Weight Loss"}, resp.Draft.Goals)
	require.NotNil(t, resp.Notification)
	assert.Equal(t, "Health information saved", resp.Notification.Title)

	w = doJSON(t, router, http.MethodPut, "/api/v1/health-info", map[string]any{"gender": "Robot"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = doJSON(t, router, http.MethodPut, "/api/v1/health-info", map[string]any{"age": 500})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
