package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/kita-admin-api/internal/models"
	appErrors "github.com/noah-isme/kita-admin-api/pkg/errors"
)

type behaviorRepository interface {
	FindByID(ctx context.Context, id string) (*models.BehavioralInfo, error)
	ListByChild(ctx context.Context, childID string) ([]models.BehavioralInfo, error)
	Create(ctx context.Context, note *models.BehavioralInfo) error
	Update(ctx context.Context, note *models.BehavioralInfo) error
	Delete(ctx context.Context, id string) error
}

// BehaviorService handles behavioural observations. Staff write them;
// parents read the notes about their own children.
type BehaviorService struct {
	repo      behaviorRepository
	access    scopeEvaluator
	validator *validator.Validate
	logger    *zap.Logger
}

// NewBehaviorService constructs the service.
func NewBehaviorService(repo behaviorRepository, access scopeEvaluator, validate *validator.Validate, logger *zap.Logger) *BehaviorService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BehaviorService{repo: repo, access: access, validator: validate, logger: logger}
}

// CreateBehaviorNoteRequest describes create payload.
type CreateBehaviorNoteRequest struct {
	Date        time.Time               `json:"date" validate:"required"`
	NoteType    models.BehaviorNoteType `json:"note_type" validate:"required,oneof=POSITIVE NEGATIVE NEUTRAL"`
	Description string                  `json:"description" validate:"required"`
}

// ListByChild returns all observations for a child.
func (s *BehaviorService) ListByChild(ctx context.Context, claims *models.JWTClaims, childID string) ([]models.BehavioralInfo, error) {
	if err := s.access.Authorize(ctx, claims, childID); err != nil {
		return nil, err
	}
	notes, err := s.repo.ListByChild(ctx, childID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list behavioral info")
	}
	if notes == nil {
		notes = []models.BehavioralInfo{}
	}
	return notes, nil
}

// Create records a new observation.
func (s *BehaviorService) Create(ctx context.Context, claims *models.JWTClaims, childID string, req CreateBehaviorNoteRequest) (*models.BehavioralInfo, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}
	if err := s.access.AuthorizeAction(ctx, claims, childID, ActionCreateBehavioralInfo); err != nil {
		return nil, err
	}
	note := &models.BehavioralInfo{
		ChildID:     childID,
		Date:        req.Date,
		NoteType:    req.NoteType,
		Description: req.Description,
		CreatedBy:   claims.UserID,
	}
	if err := s.repo.Create(ctx, note); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create behavioral info")
	}
	return note, nil
}

// Update modifies an observation.
func (s *BehaviorService) Update(ctx context.Context, claims *models.JWTClaims, id string, req CreateBehaviorNoteRequest) (*models.BehavioralInfo, error) {
	note, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "behavioral info not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load behavioral info")
	}
	if err := s.access.AuthorizeAction(ctx, claims, note.ChildID, ActionCreateBehavioralInfo); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}
	note.Date = req.Date
	note.NoteType = req.NoteType
	note.Description = req.Description
	if err := s.repo.Update(ctx, note); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update behavioral info")
	}
	return note, nil
}

// Delete removes an observation.
func (s *BehaviorService) Delete(ctx context.Context, claims *models.JWTClaims, id string) error {
	note, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "behavioral info not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load behavioral info")
	}
	if err := s.access.AuthorizeAction(ctx, claims, note.ChildID, ActionCreateBehavioralInfo); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete behavioral info")
	}
	return nil
}
