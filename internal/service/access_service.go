package service

import (
	"context"
	"database/sql"
	"errors"

	"go.uber.org/zap"

	"github.com/noah-isme/kita-admin-api/internal/models"
	appErrors "github.com/noah-isme/kita-admin-api/pkg/errors"
)

// Action identifies a mutating operation with its own role restrictions,
// applied on top of the ownership relation.
type Action string

const (
	ActionDeleteConsent          Action = "consent.delete"
	ActionDeletePayment          Action = "payment.delete"
	ActionWritePayment           Action = "payment.write"
	ActionWriteAuthorizedPerson  Action = "authorized_person.write"
	ActionCreateBehavioralInfo   Action = "behavioral_info.create"
	ActionWriteAttendance        Action = "attendance.write"
	ActionWriteHealthRecord      Action = "health.write"
	ActionRecordPickup           Action = "pickup_record.create"
	ActionVerifyPickupCode       Action = "pickup_code.verify"
	ActionReadPickupCode         Action = "pickup_code.read"
	ActionManageChildren         Action = "child.manage"
	ActionManageGroups           Action = "group.manage"
)

// actionRoles lists the roles each action is open to. Ownership of the
// target child is checked separately; both gates must pass.
var actionRoles = map[Action][]models.UserRole{
	ActionDeleteConsent:         {models.RoleHeadTeacher, models.RoleAdmin},
	ActionDeletePayment:         {models.RoleHeadTeacher, models.RoleAdmin},
	ActionWritePayment:          {models.RoleHeadTeacher, models.RoleAdmin},
	ActionWriteAuthorizedPerson: {models.RoleParent, models.RoleHeadTeacher, models.RoleAdmin},
	ActionCreateBehavioralInfo:  {models.RoleTeacher, models.RoleHeadTeacher, models.RoleAdmin},
	ActionWriteAttendance:       {models.RoleTeacher, models.RoleHeadTeacher, models.RoleAdmin},
	ActionWriteHealthRecord:     {models.RoleParent, models.RoleHeadTeacher, models.RoleAdmin},
	ActionRecordPickup:          {models.RoleTeacher, models.RoleHeadTeacher, models.RoleAdmin},
	ActionVerifyPickupCode:      {models.RoleTeacher, models.RoleHeadTeacher, models.RoleAdmin},
	ActionReadPickupCode:        {models.RoleParent, models.RoleHeadTeacher, models.RoleAdmin},
	ActionManageChildren:        {models.RoleHeadTeacher, models.RoleAdmin},
	ActionManageGroups:          {models.RoleHeadTeacher, models.RoleAdmin},
}

type accessChildRepository interface {
	FindByID(ctx context.Context, id string) (*models.Child, error)
	IDsByParent(ctx context.Context, parentID string) ([]string, error)
	IDsByGroup(ctx context.Context, groupID string) ([]string, error)
}

type accessStaffRepository interface {
	FindByUserID(ctx context.Context, userID string) (*models.Staff, error)
}

// AccessService is the single evaluator every resource handler goes
// through. A caller reaches a per-child record through exactly one of three
// relations: being the child's parent, teaching the child's group, or
// holding an unconditional role.
type AccessService struct {
	children accessChildRepository
	staff    accessStaffRepository
	metrics  *MetricsService
	logger   *zap.Logger
}

// NewAccessService constructs the evaluator.
func NewAccessService(children accessChildRepository, staff accessStaffRepository, metrics *MetricsService, logger *zap.Logger) *AccessService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AccessService{children: children, staff: staff, metrics: metrics, logger: logger}
}

// Scope computes the set of child IDs the caller may act upon. Admins and
// head teachers get the unrestricted sentinel. A teacher without a group
// assignment gets ErrNoGroupAssigned so handlers can answer 400 instead of
// an empty 200.
func (s *AccessService) Scope(ctx context.Context, claims *models.JWTClaims) (models.AccessScope, error) {
	if claims == nil {
		return models.AccessScope{}, appErrors.Clone(appErrors.ErrUnauthorized, "")
	}

	switch claims.Role {
	case models.RoleAdmin, models.RoleHeadTeacher:
		return models.ScopeAll(), nil
	case models.RoleParent:
		ids, err := s.children.IDsByParent(ctx, claims.UserID)
		if err != nil {
			return models.AccessScope{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve parent scope")
		}
		return models.ScopeOf(ids...), nil
	case models.RoleTeacher:
		staff, err := s.staff.FindByUserID(ctx, claims.UserID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return models.AccessScope{}, appErrors.Clone(appErrors.ErrNoGroupAssigned, "")
			}
			return models.AccessScope{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve staff record")
		}
		if staff.GroupID == nil {
			return models.AccessScope{}, appErrors.Clone(appErrors.ErrNoGroupAssigned, "")
		}
		ids, err := s.children.IDsByGroup(ctx, *staff.GroupID)
		if err != nil {
			return models.AccessScope{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve group scope")
		}
		return models.ScopeOf(ids...), nil
	default:
		return models.AccessScope{}, appErrors.Clone(appErrors.ErrForbidden, "")
	}
}

// CanAccessChild re-derives the ownership relation for a single child. The
// child is looked up first, so a missing ID surfaces as ErrNotFound before
// any access evaluation happens.
func (s *AccessService) CanAccessChild(ctx context.Context, claims *models.JWTClaims, childID string) (bool, error) {
	if claims == nil {
		return false, appErrors.Clone(appErrors.ErrUnauthorized, "")
	}

	child, err := s.children.FindByID(ctx, childID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, appErrors.Clone(appErrors.ErrNotFound, "child not found")
		}
		return false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load child")
	}

	allowed, err := s.evaluate(ctx, claims, child)
	if err != nil {
		return false, err
	}
	s.metrics.RecordAccessDecision(allowed)
	return allowed, nil
}

// CanAccessResource decides access to any record keyed by a child ID. All
// per-child record types share the same transitive ownership relation.
func (s *AccessService) CanAccessResource(ctx context.Context, claims *models.JWTClaims, ownerChildID string) (bool, error) {
	return s.CanAccessChild(ctx, claims, ownerChildID)
}

// Authorize is a convenience wrapper that converts a denied decision into
// ErrForbidden.
func (s *AccessService) Authorize(ctx context.Context, claims *models.JWTClaims, childID string) error {
	allowed, err := s.CanAccessChild(ctx, claims, childID)
	if err != nil {
		return err
	}
	if !allowed {
		return appErrors.Clone(appErrors.ErrForbidden, "")
	}
	return nil
}

// Allowed reports whether the role may perform the action at all. This is
// the second gate, checked after ownership passes.
func (s *AccessService) Allowed(action Action, role models.UserRole) bool {
	roles, ok := actionRoles[action]
	if !ok {
		return false
	}
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}

// AuthorizeAction combines the ownership gate and the role gate.
func (s *AccessService) AuthorizeAction(ctx context.Context, claims *models.JWTClaims, childID string, action Action) error {
	if err := s.Authorize(ctx, claims, childID); err != nil {
		return err
	}
	if !s.Allowed(action, claims.Role) {
		s.metrics.RecordAccessDecision(false)
		return appErrors.Clone(appErrors.ErrForbidden, "")
	}
	return nil
}

func (s *AccessService) evaluate(ctx context.Context, claims *models.JWTClaims, child *models.Child) (bool, error) {
	switch claims.Role {
	case models.RoleAdmin, models.RoleHeadTeacher:
		return true, nil
	case models.RoleParent:
		return child.ParentID == claims.UserID, nil
	case models.RoleTeacher:
		staff, err := s.staff.FindByUserID(ctx, claims.UserID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return false, nil
			}
			return false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve staff record")
		}
		if staff.GroupID == nil || child.GroupID == nil {
			return false, nil
		}
		return *staff.GroupID == *child.GroupID, nil
	default:
		return false, nil
	}
}
