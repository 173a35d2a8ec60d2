package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/kita-admin-api/internal/models"
	appErrors "github.com/noah-isme/kita-admin-api/pkg/errors"
)

type fakeUserRepo struct {
	byEmail map[string]*models.User
	byID    map[string]*models.User

	auditLogs []*models.AuditLog
	lastLogin *time.Time
	newHash   string
}

func (f *fakeUserRepo) FindByEmail(_ context.Context, email string) (*models.User, error) {
	user, ok := f.byEmail[email]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return user, nil
}

func (f *fakeUserRepo) FindByID(_ context.Context, id string) (*models.User, error) {
	user, ok := f.byID[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return user, nil
}

func (f *fakeUserRepo) UpdateLastLogin(_ context.Context, _ string, ts time.Time) error {
	f.lastLogin = &ts
	return nil
}

func (f *fakeUserRepo) UpdatePassword(_ context.Context, _, passwordHash string, _ time.Time) error {
	f.newHash = passwordHash
	return nil
}

func (f *fakeUserRepo) CreateAuditLog(_ context.Context, log *models.AuditLog) error {
	f.auditLogs = append(f.auditLogs, log)
	return nil
}

func newAuthFixture(t *testing.T) (*AuthService, *fakeUserRepo) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("correct-horse"), bcrypt.MinCost)
	require.NoError(t, err)

	user := &models.User{
		ID:           "user-1",
		Email:        "anna@example.com",
		PasswordHash: string(hash),
		FullName:     "Anna Example",
		Role:         models.RoleParent,
		Active:       true,
	}
	repo := &fakeUserRepo{
		byEmail: map[string]*models.User{user.Email: user},
		byID:    map[string]*models.User{user.ID: user},
	}
	svc := NewAuthService(repo, nil, nil, AuthConfig{
		TokenSecret: "test-secret",
		TokenExpiry: time.Hour,
		Issuer:      "kita-admin-api",
	})
	return svc, repo
}

func TestLogin_Success(t *testing.T) {
	svc, repo := newAuthFixture(t)

	res, err := svc.Login(context.Background(), models.LoginRequest{
		Email:    "anna@example.com",
		Password: "correct-horse",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, res.AccessToken)
	assert.Equal(t, int64(3600), res.ExpiresIn)
	assert.Equal(t, "user-1", res.User.ID)
	assert.Equal(t, models.RoleParent, res.User.Role)
	assert.NotNil(t, repo.lastLogin)
	require.Len(t, repo.auditLogs, 1)
	assert.Equal(t, models.AuditActionLogin, repo.auditLogs[0].Action)
}

func TestLogin_WrongPasswordAndUnknownEmailLookAlike(t *testing.T) {
	svc, _ := newAuthFixture(t)
	ctx := context.Background()

	_, errWrongPass := svc.Login(ctx, models.LoginRequest{Email: "anna@example.com", Password: "wrong"})
	_, errNoUser := svc.Login(ctx, models.LoginRequest{Email: "ghost@example.com", Password: "wrong"})

	require.Error(t, errWrongPass)
	require.Error(t, errNoUser)
	assert.Equal(t, appErrors.FromError(errWrongPass).Code, appErrors.FromError(errNoUser).Code)
	assert.Equal(t, appErrors.FromError(errWrongPass).Message, appErrors.FromError(errNoUser).Message)
}

func TestLogin_InactiveAccount(t *testing.T) {
	svc, repo := newAuthFixture(t)
	repo.byEmail["anna@example.com"].Active = false

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "anna@example.com", Password: "correct-horse"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInactiveAccount.Code, appErrors.FromError(err).Code)
}

func TestValidateToken_RoundTrip(t *testing.T) {
	svc, _ := newAuthFixture(t)

	res, err := svc.Login(context.Background(), models.LoginRequest{Email: "anna@example.com", Password: "correct-horse"})
	require.NoError(t, err)

	claims, err := svc.ValidateToken(res.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, models.RoleParent, claims.Role)
}

func TestValidateToken_FailuresAreUniform(t *testing.T) {
	svc, _ := newAuthFixture(t)

	res, err := svc.Login(context.Background(), models.LoginRequest{Email: "anna@example.com", Password: "correct-horse"})
	require.NoError(t, err)

	other := NewAuthService(nil, nil, nil, AuthConfig{TokenSecret: "other-secret", TokenExpiry: time.Hour})

	for name, token := range map[string]string{
		"garbage":      "not-a-token",
		"empty":        "",
		"wrong secret": res.AccessToken,
	} {
		_, err := other.ValidateToken(token)
		require.Error(t, err, name)
		appErr := appErrors.FromError(err)
		assert.Equal(t, appErrors.ErrUnauthorized.Code, appErr.Code, name)
		assert.Equal(t, appErrors.ErrUnauthorized.Message, appErr.Message, name)
	}
}

func TestValidateToken_ExpiredToken(t *testing.T) {
	expired := NewAuthService(nil, nil, nil, AuthConfig{TokenSecret: "test-secret", TokenExpiry: -time.Minute})
	token, err := expired.generateToken(&models.User{ID: "user-1", Role: models.RoleParent})
	require.NoError(t, err)

	svc, _ := newAuthFixture(t)
	_, err = svc.ValidateToken(token)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}

func TestChangePassword_VerifiesOldPassword(t *testing.T) {
	svc, repo := newAuthFixture(t)
	ctx := context.Background()

	err := svc.ChangePassword(ctx, "user-1", models.ChangePasswordRequest{
		OldPassword: "wrong",
		NewPassword: "new-password",
	})
	require.Error(t, err)
	assert.Empty(t, repo.newHash)

	err = svc.ChangePassword(ctx, "user-1", models.ChangePasswordRequest{
		OldPassword: "correct-horse",
		NewPassword: "new-password",
	})
	require.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(repo.newHash), []byte("new-password")))
}
