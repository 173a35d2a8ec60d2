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

type groupRepository interface {
	FindByID(ctx context.Context, id string) (*models.Group, error)
	List(ctx context.Context) ([]models.GroupDetail, error)
	Create(ctx context.Context, group *models.Group) error
	Update(ctx context.Context, group *models.Group) error
	Delete(ctx context.Context, id string) error
}

type groupStaffRepository interface {
	FindByID(ctx context.Context, id string) (*models.Staff, error)
	List(ctx context.Context) ([]models.StaffDetail, error)
	AssignGroup(ctx context.Context, staffID string, groupID *string) error
}

// GroupService manages classroom groups and teacher assignments.
type GroupService struct {
	repo      groupRepository
	staff     groupStaffRepository
	access    scopeEvaluator
	validator *validator.Validate
	logger    *zap.Logger
}

// NewGroupService constructs the service.
func NewGroupService(repo groupRepository, staff groupStaffRepository, access scopeEvaluator, validate *validator.Validate, logger *zap.Logger) *GroupService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GroupService{repo: repo, staff: staff, access: access, validator: validate, logger: logger}
}

// UpsertGroupRequest describes create/update payload.
type UpsertGroupRequest struct {
	Name     string  `json:"name" validate:"required"`
	Capacity int     `json:"capacity" validate:"required,gt=0"`
	AgeMin   int     `json:"age_min" validate:"gte=0"`
	AgeMax   int     `json:"age_max" validate:"gtefield=AgeMin"`
	Room     *string `json:"room"`
}

// AssignTeacherRequest assigns a staff member to a group; a nil group
// clears the assignment.
type AssignTeacherRequest struct {
	StaffID string  `json:"staff_id" validate:"required"`
	GroupID *string `json:"group_id"`
}

// List returns all groups with teacher and headcount. Staff only.
func (s *GroupService) List(ctx context.Context, claims *models.JWTClaims) ([]models.GroupDetail, error) {
	if !claims.Role.Staffer() {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "")
	}
	groups, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list groups")
	}
	if groups == nil {
		groups = []models.GroupDetail{}
	}
	return groups, nil
}

// Get returns a single group. Staff only.
func (s *GroupService) Get(ctx context.Context, claims *models.JWTClaims, id string) (*models.Group, error) {
	if !claims.Role.Staffer() {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "")
	}
	group, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "group not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load group")
	}
	return group, nil
}

// Create adds a new group.
func (s *GroupService) Create(ctx context.Context, claims *models.JWTClaims, req UpsertGroupRequest) (*models.Group, error) {
	if !s.access.Allowed(ActionManageGroups, claims.Role) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}
	group := &models.Group{
		Name:     req.Name,
		Capacity: req.Capacity,
		AgeMin:   req.AgeMin,
		AgeMax:   req.AgeMax,
		Room:     req.Room,
	}
	if err := s.repo.Create(ctx, group); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create group")
	}
	return group, nil
}

// Update modifies a group.
func (s *GroupService) Update(ctx context.Context, claims *models.JWTClaims, id string, req UpsertGroupRequest) (*models.Group, error) {
	if !s.access.Allowed(ActionManageGroups, claims.Role) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "")
	}
	group, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "group not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load group")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}
	group.Name = req.Name
	group.Capacity = req.Capacity
	group.AgeMin = req.AgeMin
	group.AgeMax = req.AgeMax
	group.Room = req.Room
	if err := s.repo.Update(ctx, group); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update group")
	}
	return group, nil
}

// Delete removes a group; member children keep their rows with a cleared
// group assignment.
func (s *GroupService) Delete(ctx context.Context, claims *models.JWTClaims, id string) error {
	if !s.access.Allowed(ActionManageGroups, claims.Role) {
		return appErrors.Clone(appErrors.ErrForbidden, "")
	}
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "group not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load group")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete group")
	}
	return nil
}

// ListStaff returns all staff records with user metadata.
func (s *GroupService) ListStaff(ctx context.Context, claims *models.JWTClaims) ([]models.StaffDetail, error) {
	if !s.access.Allowed(ActionManageGroups, claims.Role) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "")
	}
	staff, err := s.staff.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list staff")
	}
	if staff == nil {
		staff = []models.StaffDetail{}
	}
	return staff, nil
}

// AssignTeacher moves a staff member to a group, or clears the assignment
// when GroupID is nil.
func (s *GroupService) AssignTeacher(ctx context.Context, claims *models.JWTClaims, req AssignTeacherRequest) error {
	if !s.access.Allowed(ActionManageGroups, claims.Role) {
		return appErrors.Clone(appErrors.ErrForbidden, "")
	}
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}
	if _, err := s.staff.FindByID(ctx, req.StaffID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "staff member not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load staff member")
	}
	if req.GroupID != nil {
		if _, err := s.repo.FindByID(ctx, *req.GroupID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return appErrors.Clone(appErrors.ErrNotFound, "group not found")
			}
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load group")
		}
	}
	if err := s.staff.AssignGroup(ctx, req.StaffID, req.GroupID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to assign teacher")
	}
	return nil
}
