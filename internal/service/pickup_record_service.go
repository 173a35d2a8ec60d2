package service

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/kita-admin-api/internal/models"
	appErrors "github.com/noah-isme/kita-admin-api/pkg/errors"
)

type pickupRecordRepository interface {
	ListByChild(ctx context.Context, childID string) ([]models.PickupRecord, error)
	Create(ctx context.Context, record *models.PickupRecord) error
}

// PickupRecordService documents actual child releases.
type PickupRecordService struct {
	repo      pickupRecordRepository
	access    scopeEvaluator
	validator *validator.Validate
	logger    *zap.Logger
}

// NewPickupRecordService constructs the service.
func NewPickupRecordService(repo pickupRecordRepository, access scopeEvaluator, validate *validator.Validate, logger *zap.Logger) *PickupRecordService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PickupRecordService{repo: repo, access: access, validator: validate, logger: logger}
}

// CreatePickupRecordRequest describes create payload.
type CreatePickupRecordRequest struct {
	PickedUpBy string     `json:"picked_up_by" validate:"required"`
	PickupTime *time.Time `json:"pickup_time"`
	Notes      *string    `json:"notes"`
}

// ListByChild returns the release history for a child, newest first.
func (s *PickupRecordService) ListByChild(ctx context.Context, claims *models.JWTClaims, childID string) ([]models.PickupRecord, error) {
	if err := s.access.Authorize(ctx, claims, childID); err != nil {
		return nil, err
	}
	records, err := s.repo.ListByChild(ctx, childID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list pickup records")
	}
	if records == nil {
		records = []models.PickupRecord{}
	}
	return records, nil
}

// Create documents a release. Only staff may record one.
func (s *PickupRecordService) Create(ctx context.Context, claims *models.JWTClaims, childID string, req CreatePickupRecordRequest) (*models.PickupRecord, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}
	if err := s.access.AuthorizeAction(ctx, claims, childID, ActionRecordPickup); err != nil {
		return nil, err
	}
	pickupTime := time.Now().UTC()
	if req.PickupTime != nil {
		pickupTime = *req.PickupTime
	}
	record := &models.PickupRecord{
		ChildID:    childID,
		PickedUpBy: req.PickedUpBy,
		PickupTime: pickupTime,
		RecordedBy: claims.UserID,
		Notes:      req.Notes,
	}
	if err := s.repo.Create(ctx, record); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create pickup record")
	}
	return record, nil
}
