package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/kita-admin-api/internal/models"
	appErrors "github.com/noah-isme/kita-admin-api/pkg/errors"
)

type fakeChildRepo struct {
	children map[string]*models.Child
	byParent map[string][]string
	byGroup  map[string][]string
}

func (f *fakeChildRepo) FindByID(_ context.Context, id string) (*models.Child, error) {
	child, ok := f.children[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return child, nil
}

func (f *fakeChildRepo) IDsByParent(_ context.Context, parentID string) ([]string, error) {
	return f.byParent[parentID], nil
}

func (f *fakeChildRepo) IDsByGroup(_ context.Context, groupID string) ([]string, error) {
	return f.byGroup[groupID], nil
}

type fakeStaffRepo struct {
	byUser map[string]*models.Staff
}

func (f *fakeStaffRepo) FindByUserID(_ context.Context, userID string) (*models.Staff, error) {
	staff, ok := f.byUser[userID]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return staff, nil
}

func strptr(s string) *string { return &s }

func claimsFor(userID string, role models.UserRole) *models.JWTClaims {
	return &models.JWTClaims{UserID: userID, Role: role}
}

func newAccessFixture() (*AccessService, *fakeChildRepo, *fakeStaffRepo) {
	children := &fakeChildRepo{
		children: map[string]*models.Child{
			"child-1": {ID: "child-1", ParentID: "parent-1", GroupID: strptr("group-a")},
			"child-2": {ID: "child-2", ParentID: "parent-2", GroupID: strptr("group-b")},
			"child-3": {ID: "child-3", ParentID: "parent-1", GroupID: nil},
		},
		byParent: map[string][]string{
			"parent-1": {"child-1", "child-3"},
			"parent-2": {"child-2"},
		},
		byGroup: map[string][]string{
			"group-a": {"child-1"},
			"group-b": {"child-2"},
		},
	}
	staff := &fakeStaffRepo{
		byUser: map[string]*models.Staff{
			"teacher-1": {ID: "staff-1", UserID: "teacher-1", GroupID: strptr("group-a")},
			"teacher-2": {ID: "staff-2", UserID: "teacher-2", GroupID: nil},
		},
	}
	return NewAccessService(children, staff, nil, nil), children, staff
}

func TestScope_AdminAndHeadTeacherUnrestricted(t *testing.T) {
	svc, _, _ := newAccessFixture()

	for _, role := range []models.UserRole{models.RoleAdmin, models.RoleHeadTeacher} {
		scope, err := svc.Scope(context.Background(), claimsFor("u-1", role))
		require.NoError(t, err)
		assert.True(t, scope.All)
	}
}

func TestScope_ParentLimitedToOwnChildren(t *testing.T) {
	svc, _, _ := newAccessFixture()

	scope, err := svc.Scope(context.Background(), claimsFor("parent-1", models.RoleParent))
	require.NoError(t, err)
	assert.False(t, scope.All)
	assert.ElementsMatch(t, []string{"child-1", "child-3"}, scope.ChildIDs)
}

func TestScope_TeacherLimitedToGroup(t *testing.T) {
	svc, _, _ := newAccessFixture()

	scope, err := svc.Scope(context.Background(), claimsFor("teacher-1", models.RoleTeacher))
	require.NoError(t, err)
	assert.False(t, scope.All)
	assert.Equal(t, []string{"child-1"}, scope.ChildIDs)
}

func TestScope_TeacherWithoutGroupIsAnError(t *testing.T) {
	svc, _, _ := newAccessFixture()

	_, err := svc.Scope(context.Background(), claimsFor("teacher-2", models.RoleTeacher))
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrNoGroupAssigned.Code, appErr.Code)
	assert.Equal(t, 400, appErr.Status)
}

func TestScope_TeacherWithoutStaffRecordIsAnError(t *testing.T) {
	svc, _, _ := newAccessFixture()

	_, err := svc.Scope(context.Background(), claimsFor("teacher-unknown", models.RoleTeacher))
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNoGroupAssigned.Code, appErrors.FromError(err).Code)
}

func TestScope_NilClaimsUnauthorized(t *testing.T) {
	svc, _, _ := newAccessFixture()

	_, err := svc.Scope(context.Background(), nil)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}

func TestCanAccessChild_ParentOwnVsForeign(t *testing.T) {
	svc, _, _ := newAccessFixture()
	ctx := context.Background()

	allowed, err := svc.CanAccessChild(ctx, claimsFor("parent-1", models.RoleParent), "child-1")
	require.NoError(t, err)
	assert.True(t, allowed)

	allowed, err = svc.CanAccessChild(ctx, claimsFor("parent-1", models.RoleParent), "child-2")
	require.NoError(t, err)
	assert.False(t, allowed)
}

func TestCanAccessChild_TeacherGroupMembership(t *testing.T) {
	svc, _, _ := newAccessFixture()
	ctx := context.Background()
	claims := claimsFor("teacher-1", models.RoleTeacher)

	allowed, err := svc.CanAccessChild(ctx, claims, "child-1")
	require.NoError(t, err)
	assert.True(t, allowed)

	allowed, err = svc.CanAccessChild(ctx, claims, "child-2")
	require.NoError(t, err)
	assert.False(t, allowed)

	// A child with no group assignment is invisible to every teacher.
	allowed, err = svc.CanAccessChild(ctx, claims, "child-3")
	require.NoError(t, err)
	assert.False(t, allowed)
}

func TestCanAccessChild_MissingChildIsNotFoundBeforeAccess(t *testing.T) {
	svc, _, _ := newAccessFixture()

	_, err := svc.CanAccessChild(context.Background(), claimsFor("parent-1", models.RoleParent), "child-missing")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestAuthorize_DeniedBecomesForbidden(t *testing.T) {
	svc, _, _ := newAccessFixture()

	err := svc.Authorize(context.Background(), claimsFor("parent-2", models.RoleParent), "child-1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}

func TestAllowed_RoleGates(t *testing.T) {
	svc, _, _ := newAccessFixture()

	assert.True(t, svc.Allowed(ActionDeleteConsent, models.RoleHeadTeacher))
	assert.True(t, svc.Allowed(ActionDeleteConsent, models.RoleAdmin))
	assert.False(t, svc.Allowed(ActionDeleteConsent, models.RoleTeacher))
	assert.False(t, svc.Allowed(ActionDeleteConsent, models.RoleParent))

	assert.True(t, svc.Allowed(ActionCreateBehavioralInfo, models.RoleTeacher))
	assert.False(t, svc.Allowed(ActionCreateBehavioralInfo, models.RoleParent))

	assert.True(t, svc.Allowed(ActionReadPickupCode, models.RoleParent))
	assert.False(t, svc.Allowed(ActionVerifyPickupCode, models.RoleParent))

	assert.False(t, svc.Allowed(Action("unknown"), models.RoleAdmin))
}

func TestAuthorizeAction_OwnershipThenRole(t *testing.T) {
	svc, _, _ := newAccessFixture()
	ctx := context.Background()

	// Parent owns the child but the action is staff-only.
	err := svc.AuthorizeAction(ctx, claimsFor("parent-1", models.RoleParent), "child-1", ActionVerifyPickupCode)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)

	// Teacher in the right group with a teacher-open action.
	err = svc.AuthorizeAction(ctx, claimsFor("teacher-1", models.RoleTeacher), "child-1", ActionVerifyPickupCode)
	assert.NoError(t, err)

	// Missing child surfaces as 404 before the role gate runs.
	err = svc.AuthorizeAction(ctx, claimsFor("teacher-1", models.RoleTeacher), "child-missing", ActionVerifyPickupCode)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
