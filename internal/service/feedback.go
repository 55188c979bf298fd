package service

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pageza/nutriplan/backend/internal/viewer"
)

// FeedbackService receives the star ratings accepted by the results viewer.
type FeedbackService struct {
	log *zap.Logger
}

func NewFeedbackService(log *zap.Logger) *FeedbackService {
	return &FeedbackService{log: log}
}

// RecordRating validates and logs a rating. Ratings are not stored.
func (s *FeedbackService) RecordRating(ctx context.Context, userID uuid.UUID, document string, rating int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if rating < 1 || rating > 5 {
		return viewer.ErrInvalidRating
	}

	s.log.Info("meal plan rated",
		zap.String("user_id", userID.String()),
		zap.String("document", document),
		zap.Int("rating", rating))
	return nil
}
