package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/kita-admin-api/internal/models"
	appErrors "github.com/noah-isme/kita-admin-api/pkg/errors"
)

type fakePickupCodeRepo struct {
	rows map[string]*models.DailyPickupCode // key: childID + date

	insertCalls  int
	insertDenied bool // simulate losing the uniqueness race
}

func pickupKey(childID string, date time.Time) string {
	return childID + "|" + date.Format("2006-01-02")
}

func (f *fakePickupCodeRepo) FindByChildAndDate(_ context.Context, childID string, date time.Time) (*models.DailyPickupCode, error) {
	row, ok := f.rows[pickupKey(childID, date)]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return row, nil
}

func (f *fakePickupCodeRepo) Insert(_ context.Context, code *models.DailyPickupCode) (bool, error) {
	f.insertCalls++
	key := pickupKey(code.ChildID, code.CodeDate)
	if _, exists := f.rows[key]; exists || f.insertDenied {
		return false, nil
	}
	if f.rows == nil {
		f.rows = map[string]*models.DailyPickupCode{}
	}
	stored := *code
	f.rows[key] = &stored
	return true, nil
}

func (f *fakePickupCodeRepo) Consume(_ context.Context, childID, code string, date, usedAt time.Time) (bool, error) {
	row, ok := f.rows[pickupKey(childID, date)]
	if !ok || row.Code != code || row.IsUsed {
		return false, nil
	}
	row.IsUsed = true
	row.UsedAt = &usedAt
	return true, nil
}

type fakeSweepRepo struct {
	childIDs []string
}

func (f *fakeSweepRepo) ActiveIDsWithoutPickupCode(context.Context, time.Time) ([]string, error) {
	return f.childIDs, nil
}

type allowAllAccess struct{}

func (allowAllAccess) AuthorizeAction(context.Context, *models.JWTClaims, string, Action) error {
	return nil
}

type denyAllAccess struct{}

func (denyAllAccess) AuthorizeAction(context.Context, *models.JWTClaims, string, Action) error {
	return appErrors.Clone(appErrors.ErrForbidden, "")
}

type fakeLimiter struct {
	count int64
	err   error
}

func (f *fakeLimiter) Increment(context.Context, string, time.Duration) (int64, error) {
	return f.count, f.err
}

func newPickupService(repo *fakePickupCodeRepo, sweep *fakeSweepRepo, access accessEvaluator, cfg PickupCodeConfig) *PickupCodeService {
	svc := NewPickupCodeService(repo, sweep, access, nil, nil, nil, nil, nil, cfg)
	svc.now = func() time.Time { return time.Date(2026, 3, 9, 10, 30, 0, 0, time.UTC) }
	svc.intn = func(int) int { return 2345 } // -> code "12345"
	return svc
}

func TestGetOrCreate_IssuesLazily(t *testing.T) {
	repo := &fakePickupCodeRepo{}
	svc := newPickupService(repo, nil, allowAllAccess{}, PickupCodeConfig{})

	code, err := svc.GetOrCreate(context.Background(), claimsFor("parent-1", models.RoleParent), "child-1")
	require.NoError(t, err)
	assert.Equal(t, "12345", code.Code)
	assert.Equal(t, time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC), code.CodeDate)
	assert.False(t, code.IsUsed)
	assert.Equal(t, 1, repo.insertCalls)
}

func TestGetOrCreate_ReturnsExistingRowUnchanged(t *testing.T) {
	repo := &fakePickupCodeRepo{}
	svc := newPickupService(repo, nil, allowAllAccess{}, PickupCodeConfig{})
	ctx := context.Background()
	claims := claimsFor("parent-1", models.RoleParent)

	first, err := svc.GetOrCreate(ctx, claims, "child-1")
	require.NoError(t, err)

	second, err := svc.GetOrCreate(ctx, claims, "child-1")
	require.NoError(t, err)
	assert.Equal(t, first.Code, second.Code)
	assert.Equal(t, 1, repo.insertCalls)
}

func TestGetOrCreate_LostRaceReReadsWinner(t *testing.T) {
	winner := &models.DailyPickupCode{
		ChildID:  "child-1",
		Code:     "77777",
		CodeDate: time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC),
	}
	repo := &fakePickupCodeRepo{insertDenied: true}
	svc := newPickupService(repo, nil, allowAllAccess{}, PickupCodeConfig{})

	// The winner's row appears between our failed find and the insert.
	repo.rows = map[string]*models.DailyPickupCode{}
	svc.intn = func(int) int {
		// By the time we generate, the other writer has committed.
		repo.rows[pickupKey(winner.ChildID, winner.CodeDate)] = winner
		return 2345
	}

	code, err := svc.GetOrCreate(context.Background(), claimsFor("parent-1", models.RoleParent), "child-1")
	require.NoError(t, err)
	assert.Equal(t, "77777", code.Code)
}

func TestGetOrCreate_AccessDenied(t *testing.T) {
	svc := newPickupService(&fakePickupCodeRepo{}, nil, denyAllAccess{}, PickupCodeConfig{})

	_, err := svc.GetOrCreate(context.Background(), claimsFor("parent-2", models.RoleParent), "child-1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}

func TestVerify_ConsumesOnceThenFails(t *testing.T) {
	repo := &fakePickupCodeRepo{}
	svc := newPickupService(repo, nil, allowAllAccess{}, PickupCodeConfig{})
	ctx := context.Background()
	staff := claimsFor("teacher-1", models.RoleTeacher)

	issued, err := svc.GetOrCreate(ctx, claimsFor("parent-1", models.RoleParent), "child-1")
	require.NoError(t, err)

	ok, err := svc.Verify(ctx, staff, VerifyPickupCodeRequest{ChildID: "child-1", Code: issued.Code})
	require.NoError(t, err)
	assert.True(t, ok)

	// Second presentation of the same code must fail silently.
	ok, err = svc.Verify(ctx, staff, VerifyPickupCodeRequest{ChildID: "child-1", Code: issued.Code})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestVerify_WrongCodeSameResultAsMissing(t *testing.T) {
	repo := &fakePickupCodeRepo{}
	svc := newPickupService(repo, nil, allowAllAccess{}, PickupCodeConfig{})
	ctx := context.Background()
	staff := claimsFor("teacher-1", models.RoleTeacher)

	_, err := svc.GetOrCreate(ctx, claimsFor("parent-1", models.RoleParent), "child-1")
	require.NoError(t, err)

	// Wrong digits against an existing row.
	ok, err := svc.Verify(ctx, staff, VerifyPickupCodeRequest{ChildID: "child-1", Code: "99999"})
	require.NoError(t, err)
	assert.False(t, ok)

	// No row at all for the child.
	ok, err = svc.Verify(ctx, staff, VerifyPickupCodeRequest{ChildID: "child-2", Code: "12345"})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestVerify_CodeDoesNotCrossDays(t *testing.T) {
	repo := &fakePickupCodeRepo{}
	svc := newPickupService(repo, nil, allowAllAccess{}, PickupCodeConfig{})
	ctx := context.Background()
	staff := claimsFor("teacher-1", models.RoleTeacher)

	issued, err := svc.GetOrCreate(ctx, claimsFor("parent-1", models.RoleParent), "child-1")
	require.NoError(t, err)

	// Next day, yesterday's code must not verify.
	svc.now = func() time.Time { return time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC) }
	ok, err := svc.Verify(ctx, staff, VerifyPickupCodeRequest{ChildID: "child-1", Code: issued.Code})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestVerify_RejectsMalformedCode(t *testing.T) {
	svc := newPickupService(&fakePickupCodeRepo{}, nil, allowAllAccess{}, PickupCodeConfig{})

	for _, code := range []string{"", "123", "123456", "abcde"} {
		_, err := svc.Verify(context.Background(), claimsFor("teacher-1", models.RoleTeacher), VerifyPickupCodeRequest{ChildID: "child-1", Code: code})
		require.Error(t, err, "code %q", code)
		assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
	}
}

func TestVerify_RateLimitShortCircuits(t *testing.T) {
	repo := &fakePickupCodeRepo{}
	svc := NewPickupCodeService(repo, nil, allowAllAccess{}, &fakeLimiter{count: 21}, nil, nil, nil, nil, PickupCodeConfig{
		RateLimitEnabled: true,
		RateLimitPerHour: 20,
	})
	svc.now = func() time.Time { return time.Date(2026, 3, 9, 10, 30, 0, 0, time.UTC) }
	svc.intn = func(int) int { return 2345 }

	_, err := svc.GetOrCreate(context.Background(), claimsFor("parent-1", models.RoleParent), "child-1")
	require.NoError(t, err)

	ok, err := svc.Verify(context.Background(), claimsFor("teacher-1", models.RoleTeacher), VerifyPickupCodeRequest{ChildID: "child-1", Code: "12345"})
	require.NoError(t, err)
	assert.False(t, ok)

	// The correct code is still unused once the limiter allows again.
	svc.limiter = &fakeLimiter{count: 1}
	ok, err = svc.Verify(context.Background(), claimsFor("teacher-1", models.RoleTeacher), VerifyPickupCodeRequest{ChildID: "child-1", Code: "12345"})
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestSweep_IssuesForMissingChildrenOnly(t *testing.T) {
	repo := &fakePickupCodeRepo{}
	svc := newPickupService(repo, &fakeSweepRepo{childIDs: []string{"child-1", "child-2", "child-3"}}, allowAllAccess{}, PickupCodeConfig{})
	ctx := context.Background()

	// child-2 already has a code for today.
	_, err := svc.GetOrCreate(ctx, claimsFor("parent-2", models.RoleParent), "child-2")
	require.NoError(t, err)

	created, err := svc.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, created)
	assert.Len(t, repo.rows, 3)
}

func TestSweep_RerunIsANoop(t *testing.T) {
	repo := &fakePickupCodeRepo{}
	sweep := &fakeSweepRepo{childIDs: []string{"child-1", "child-2"}}
	svc := newPickupService(repo, sweep, allowAllAccess{}, PickupCodeConfig{})
	ctx := context.Background()

	created, err := svc.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, created)

	created, err = svc.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, created)
}

func TestGenerateCode_CoversFullRange(t *testing.T) {
	svc := newPickupService(&fakePickupCodeRepo{}, nil, allowAllAccess{}, PickupCodeConfig{})

	svc.intn = func(int) int { return 0 }
	assert.Equal(t, "10000", svc.generateCode())

	svc.intn = func(n int) int { return n - 1 }
	assert.Equal(t, "99999", svc.generateCode())
}
