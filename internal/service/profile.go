package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pageza/nutriplan/backend/internal/models"
	"github.com/pageza/nutriplan/backend/internal/repository"
	"github.com/pageza/nutriplan/backend/internal/types"
)

type ProfileService struct {
	profiles *repository.ProfileRepository
	users    *repository.UserRepository
	log      *zap.Logger
}

func NewProfileService(profiles *repository.ProfileRepository, users *repository.UserRepository, log *zap.Logger) *ProfileService {
	return &ProfileService{profiles: profiles, users: users, log: log}
}

func (s *ProfileService) GetProfile(ctx context.Context, userID uuid.UUID) (*types.ProfileResponse, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	profile, err := s.profiles.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	return profileResponse(user, profile), nil
}

// UpdateProfile replaces both names, creating the profile row if an older
// account never got one.
func (s *ProfileService) UpdateProfile(ctx context.Context, userID uuid.UUID, req *types.UpdateProfileRequest) (*types.ProfileResponse, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := s.profiles.Ensure(ctx, userID); err != nil {
		return nil, err
	}

	first := strings.TrimSpace(req.FirstName)
	last := strings.TrimSpace(req.LastName)
	profile, err := s.profiles.UpdateNames(ctx, userID, &first, &last)
	if err != nil {
		return nil, err
	}

	s.log.Info("profile updated", zap.String("user_id", userID.String()))
	return profileResponse(user, profile), nil
}

func profileResponse(user *models.User, p *models.Profile) *types.ProfileResponse {
	resp := &types.ProfileResponse{
		ID:          p.ID,
		Email:       user.Email,
		DisplayName: p.DisplayName(),
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
	if p.FirstName != nil {
		resp.FirstName = *p.FirstName
	}
	if p.LastName != nil {
		resp.LastName = *p.LastName
	}
	return resp
}
