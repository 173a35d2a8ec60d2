package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/kita-admin-api/internal/models"
	appErrors "github.com/noah-isme/kita-admin-api/pkg/errors"
)

type consentRepository interface {
	FindByID(ctx context.Context, id string) (*models.Consent, error)
	ListByChild(ctx context.Context, childID string) ([]models.Consent, error)
	Create(ctx context.Context, consent *models.Consent) error
	Update(ctx context.Context, consent *models.Consent) error
	Delete(ctx context.Context, id string) error
}

// ConsentService handles parental consent records. Parents can grant and
// revise consents for their own children; deletion stays with management.
type ConsentService struct {
	repo      consentRepository
	access    scopeEvaluator
	validator *validator.Validate
	logger    *zap.Logger
}

// NewConsentService constructs the service.
func NewConsentService(repo consentRepository, access scopeEvaluator, validate *validator.Validate, logger *zap.Logger) *ConsentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ConsentService{repo: repo, access: access, validator: validate, logger: logger}
}

// UpsertConsentRequest describes create/update payload.
type UpsertConsentRequest struct {
	Type    models.ConsentType `json:"consent_type" validate:"required"`
	Granted bool               `json:"granted"`
	Notes   *string            `json:"notes"`
}

// ListByChild returns all consents for a child.
func (s *ConsentService) ListByChild(ctx context.Context, claims *models.JWTClaims, childID string) ([]models.Consent, error) {
	if err := s.access.Authorize(ctx, claims, childID); err != nil {
		return nil, err
	}
	consents, err := s.repo.ListByChild(ctx, childID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list consents")
	}
	if consents == nil {
		consents = []models.Consent{}
	}
	return consents, nil
}

// Create records a consent decision for a child.
func (s *ConsentService) Create(ctx context.Context, claims *models.JWTClaims, childID string, req UpsertConsentRequest) (*models.Consent, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}
	if !req.Type.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown consent type")
	}
	if err := s.access.Authorize(ctx, claims, childID); err != nil {
		return nil, err
	}
	consent := &models.Consent{
		ChildID:   childID,
		Type:      req.Type,
		Granted:   req.Granted,
		GrantedBy: &claims.UserID,
		Notes:     req.Notes,
	}
	if err := s.repo.Create(ctx, consent); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create consent")
	}
	return consent, nil
}

// Update revises an existing consent decision.
func (s *ConsentService) Update(ctx context.Context, claims *models.JWTClaims, id string, req UpsertConsentRequest) (*models.Consent, error) {
	consent, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "consent not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load consent")
	}
	if err := s.access.Authorize(ctx, claims, consent.ChildID); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}
	if !req.Type.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown consent type")
	}
	consent.Type = req.Type
	consent.Granted = req.Granted
	consent.GrantedBy = &claims.UserID
	consent.Notes = req.Notes
	if err := s.repo.Update(ctx, consent); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update consent")
	}
	return consent, nil
}

// Delete removes a consent record. Restricted to management roles.
func (s *ConsentService) Delete(ctx context.Context, claims *models.JWTClaims, id string) error {
	consent, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "consent not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load consent")
	}
	if err := s.access.AuthorizeAction(ctx, claims, consent.ChildID, ActionDeleteConsent); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete consent")
	}
	return nil
}
