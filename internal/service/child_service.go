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

type childRepository interface {
	FindByID(ctx context.Context, id string) (*models.Child, error)
	List(ctx context.Context, filter models.ChildFilter) ([]models.Child, int, error)
	Create(ctx context.Context, child *models.Child) error
	Update(ctx context.Context, child *models.Child) error
	Deactivate(ctx context.Context, id string) error
}

type scopeEvaluator interface {
	Scope(ctx context.Context, claims *models.JWTClaims) (models.AccessScope, error)
	Authorize(ctx context.Context, claims *models.JWTClaims, childID string) error
	Allowed(action Action, role models.UserRole) bool
	AuthorizeAction(ctx context.Context, claims *models.JWTClaims, childID string, action Action) error
}

// ChildService handles the central child roster.
type ChildService struct {
	repo      childRepository
	access    scopeEvaluator
	validator *validator.Validate
	logger    *zap.Logger
}

// NewChildService constructs the service.
func NewChildService(repo childRepository, access scopeEvaluator, validate *validator.Validate, logger *zap.Logger) *ChildService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ChildService{repo: repo, access: access, validator: validate, logger: logger}
}

// CreateChildRequest describes create payload.
type CreateChildRequest struct {
	ParentID  string    `json:"parent_id" validate:"required"`
	GroupID   *string   `json:"group_id"`
	FirstName string    `json:"first_name" validate:"required"`
	LastName  string    `json:"last_name" validate:"required"`
	BirthDate time.Time `json:"birth_date" validate:"required"`
	Notes     *string   `json:"notes"`
}

// UpdateChildRequest describes update payload.
type UpdateChildRequest struct {
	ParentID  string    `json:"parent_id" validate:"required"`
	GroupID   *string   `json:"group_id"`
	FirstName string    `json:"first_name" validate:"required"`
	LastName  string    `json:"last_name" validate:"required"`
	BirthDate time.Time `json:"birth_date" validate:"required"`
	Notes     *string   `json:"notes"`
	Active    bool      `json:"active"`
}

// List returns the children inside the caller's access scope.
func (s *ChildService) List(ctx context.Context, claims *models.JWTClaims, filter models.ChildFilter) ([]models.Child, *models.Pagination, error) {
	scope, err := s.access.Scope(ctx, claims)
	if err != nil {
		return nil, nil, err
	}
	if !scope.All {
		ids := scope.ChildIDs
		if ids == nil {
			ids = []string{}
		}
		filter.ChildIDs = ids
	}
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 50
	}
	children, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list children")
	}
	pagination := &models.Pagination{Page: filter.Page, PageSize: filter.PageSize, TotalCount: total}
	return children, pagination, nil
}

// Get returns a single child after the ownership check.
func (s *ChildService) Get(ctx context.Context, claims *models.JWTClaims, id string) (*models.Child, error) {
	if err := s.access.Authorize(ctx, claims, id); err != nil {
		return nil, err
	}
	child, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "child not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load child")
	}
	return child, nil
}

// Create registers a new child.
func (s *ChildService) Create(ctx context.Context, claims *models.JWTClaims, req CreateChildRequest) (*models.Child, error) {
	if !s.access.Allowed(ActionManageChildren, claims.Role) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}
	child := &models.Child{
		ParentID:  req.ParentID,
		GroupID:   req.GroupID,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		BirthDate: req.BirthDate,
		Notes:     req.Notes,
		Active:    true,
	}
	if err := s.repo.Create(ctx, child); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create child")
	}
	return child, nil
}

// Update modifies an existing child.
func (s *ChildService) Update(ctx context.Context, claims *models.JWTClaims, id string, req UpdateChildRequest) (*models.Child, error) {
	if err := s.access.AuthorizeAction(ctx, claims, id, ActionManageChildren); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}
	child := &models.Child{
		ID:        id,
		ParentID:  req.ParentID,
		GroupID:   req.GroupID,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		BirthDate: req.BirthDate,
		Notes:     req.Notes,
		Active:    req.Active,
	}
	if err := s.repo.Update(ctx, child); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update child")
	}
	return child, nil
}

// Deactivate soft-deletes a child.
func (s *ChildService) Deactivate(ctx context.Context, claims *models.JWTClaims, id string) error {
	if err := s.access.AuthorizeAction(ctx, claims, id, ActionManageChildren); err != nil {
		return err
	}
	if err := s.repo.Deactivate(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to deactivate child")
	}
	return nil
}
