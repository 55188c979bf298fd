package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pageza/nutriplan/backend/internal/types"
	"github.com/pageza/nutriplan/backend/internal/viewer"
)

// ObjectStore is the slice of config.S3Config used for exports.
type ObjectStore interface {
	Upload(ctx context.Context, objectKey string, body []byte, contentType string) error
	GeneratePresignedURL(ctx context.Context, objectKey string, expiration time.Duration) (string, error)
}

// ExportService writes a plan's download text to object storage and hands
// back a time-limited link.
type ExportService struct {
	plans  *PlanService
	store  ObjectStore
	expiry time.Duration
	now    func() time.Time
	log    *zap.Logger
}

func NewExportService(plans *PlanService, store ObjectStore, expiry time.Duration, log *zap.Logger) *ExportService {
	return &ExportService{plans: plans, store: store, expiry: expiry, now: time.Now, log: log}
}

// ExportKey is the object key of a user's exported plan.
func ExportKey(userID uuid.UUID, doc *viewer.Document) string {
	return fmt.Sprintf("exports/%s/%s", userID, doc.Filename)
}

func (s *ExportService) Export(ctx context.Context, userID, planID uuid.UUID) (*types.ExportResponse, error) {
	doc, _, err := s.plans.Document(ctx, userID, planID)
	if err != nil {
		return nil, err
	}

	key := ExportKey(userID, doc)
	if err := s.store.Upload(ctx, key, []byte(doc.DownloadText()), "text/markdown; charset=utf-8"); err != nil {
		return nil, fmt.Errorf("failed to upload export: %w", err)
	}
	url, err := s.store.GeneratePresignedURL(ctx, key, s.expiry)
	if err != nil {
		return nil, fmt.Errorf("failed to presign export: %w", err)
	}

	s.log.Info("plan exported",
		zap.String("user_id", userID.String()),
		zap.String("plan_id", planID.String()),
		zap.String("key", key))
	return &types.ExportResponse{Key: key, URL: url, ExpiresAt: s.now().Add(s.expiry)}, nil
}
