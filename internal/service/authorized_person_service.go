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

type authorizedPersonRepository interface {
	FindByID(ctx context.Context, id string) (*models.AuthorizedPerson, error)
	ListByChild(ctx context.Context, childID string) ([]models.AuthorizedPerson, error)
	Create(ctx context.Context, person *models.AuthorizedPerson) error
	Update(ctx context.Context, person *models.AuthorizedPerson) error
	Delete(ctx context.Context, id string) error
}

// AuthorizedPersonService maintains the list of people cleared to pick a
// child up. Parents manage the list for their own children.
type AuthorizedPersonService struct {
	repo      authorizedPersonRepository
	access    scopeEvaluator
	validator *validator.Validate
	logger    *zap.Logger
}

// NewAuthorizedPersonService constructs the service.
func NewAuthorizedPersonService(repo authorizedPersonRepository, access scopeEvaluator, validate *validator.Validate, logger *zap.Logger) *AuthorizedPersonService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthorizedPersonService{repo: repo, access: access, validator: validate, logger: logger}
}

// UpsertAuthorizedPersonRequest describes create/update payload.
type UpsertAuthorizedPersonRequest struct {
	FullName     string  `json:"full_name" validate:"required"`
	Relationship string  `json:"relationship" validate:"required"`
	Phone        *string `json:"phone"`
	Active       bool    `json:"active"`
}

// ListByChild returns all authorized persons for a child.
func (s *AuthorizedPersonService) ListByChild(ctx context.Context, claims *models.JWTClaims, childID string) ([]models.AuthorizedPerson, error) {
	if err := s.access.Authorize(ctx, claims, childID); err != nil {
		return nil, err
	}
	persons, err := s.repo.ListByChild(ctx, childID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list authorized persons")
	}
	if persons == nil {
		persons = []models.AuthorizedPerson{}
	}
	return persons, nil
}

// Create adds an authorized person for a child.
func (s *AuthorizedPersonService) Create(ctx context.Context, claims *models.JWTClaims, childID string, req UpsertAuthorizedPersonRequest) (*models.AuthorizedPerson, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}
	if err := s.access.AuthorizeAction(ctx, claims, childID, ActionWriteAuthorizedPerson); err != nil {
		return nil, err
	}
	person := &models.AuthorizedPerson{
		ChildID:      childID,
		FullName:     req.FullName,
		Relationship: req.Relationship,
		Phone:        req.Phone,
		Active:       true,
	}
	if err := s.repo.Create(ctx, person); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create authorized person")
	}
	return person, nil
}

// Update modifies an authorized person.
func (s *AuthorizedPersonService) Update(ctx context.Context, claims *models.JWTClaims, id string, req UpsertAuthorizedPersonRequest) (*models.AuthorizedPerson, error) {
	person, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "authorized person not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load authorized person")
	}
	if err := s.access.AuthorizeAction(ctx, claims, person.ChildID, ActionWriteAuthorizedPerson); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}
	person.FullName = req.FullName
	person.Relationship = req.Relationship
	person.Phone = req.Phone
	person.Active = req.Active
	if err := s.repo.Update(ctx, person); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update authorized person")
	}
	return person, nil
}

// Delete removes an authorized person.
func (s *AuthorizedPersonService) Delete(ctx context.Context, claims *models.JWTClaims, id string) error {
	person, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "authorized person not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load authorized person")
	}
	if err := s.access.AuthorizeAction(ctx, claims, person.ChildID, ActionWriteAuthorizedPerson); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete authorized person")
	}
	return nil
}
