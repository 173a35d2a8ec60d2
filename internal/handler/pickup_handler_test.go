package handler

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/kita-admin-api/internal/middleware"
	"github.com/noah-isme/kita-admin-api/internal/models"
	"github.com/noah-isme/kita-admin-api/internal/service"
	appErrors "github.com/noah-isme/kita-admin-api/pkg/errors"
)

// stubAccess satisfies the service access interfaces with a single switch.
type stubAccess struct {
	deny bool
}

func (s stubAccess) Scope(context.Context, *models.JWTClaims) (models.AccessScope, error) {
	if s.deny {
		return models.AccessScope{}, appErrors.Clone(appErrors.ErrForbidden, "")
	}
	return models.AccessScope{All: true}, nil
}

func (s stubAccess) Authorize(context.Context, *models.JWTClaims, string) error {
	if s.deny {
		return appErrors.Clone(appErrors.ErrForbidden, "")
	}
	return nil
}

func (s stubAccess) Allowed(service.Action, models.UserRole) bool {
	return !s.deny
}

func (s stubAccess) AuthorizeAction(context.Context, *models.JWTClaims, string, service.Action) error {
	if s.deny {
		return appErrors.Clone(appErrors.ErrForbidden, "")
	}
	return nil
}

type memoryCodeRepo struct {
	rows map[string]*models.DailyPickupCode
}

func codeKey(childID string, date time.Time) string {
	return childID + "|" + date.Format("2006-01-02")
}

func (m *memoryCodeRepo) FindByChildAndDate(_ context.Context, childID string, date time.Time) (*models.DailyPickupCode, error) {
	row, ok := m.rows[codeKey(childID, date)]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return row, nil
}

func (m *memoryCodeRepo) Insert(_ context.Context, code *models.DailyPickupCode) (bool, error) {
	key := codeKey(code.ChildID, code.CodeDate)
	if _, exists := m.rows[key]; exists {
		return false, nil
	}
	if m.rows == nil {
		m.rows = map[string]*models.DailyPickupCode{}
	}
	stored := *code
	m.rows[key] = &stored
	return true, nil
}

func (m *memoryCodeRepo) Consume(_ context.Context, childID, code string, date, usedAt time.Time) (bool, error) {
	row, ok := m.rows[codeKey(childID, date)]
	if !ok || row.Code != code || row.IsUsed {
		return false, nil
	}
	row.IsUsed = true
	row.UsedAt = &usedAt
	return true, nil
}

type memorySweepRepo struct {
	childIDs []string
}

func (m *memorySweepRepo) ActiveIDsWithoutPickupCode(context.Context, time.Time) ([]string, error) {
	return m.childIDs, nil
}

type memoryRecordRepo struct {
	records []models.PickupRecord
}

func (m *memoryRecordRepo) ListByChild(_ context.Context, childID string) ([]models.PickupRecord, error) {
	var out []models.PickupRecord
	for _, r := range m.records {
		if r.ChildID == childID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *memoryRecordRepo) Create(_ context.Context, record *models.PickupRecord) error {
	m.records = append(m.records, *record)
	return nil
}

func newPickupHandler(codeRepo *memoryCodeRepo, sweepRepo *memorySweepRepo, access stubAccess) *PickupHandler {
	codes := service.NewPickupCodeService(codeRepo, sweepRepo, access, nil, nil, nil, nil, nil, service.PickupCodeConfig{})
	records := service.NewPickupRecordService(&memoryRecordRepo{}, access, nil, nil)
	return NewPickupHandler(codes, records)
}

func testContext(t *testing.T, method, target string, body []byte, claims *models.JWTClaims) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	var reader *bytes.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, target, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	if claims != nil {
		c.Set(middleware.ContextUserKey, claims)
	}
	return c, w
}

func TestPickupHandlerGetOrCreateCode(t *testing.T) {
	repo := &memoryCodeRepo{}
	handler := newPickupHandler(repo, nil, stubAccess{})

	c, w := testContext(t, http.MethodGet, "/children/child-1/pickup-code", nil, &models.JWTClaims{UserID: "parent-1", Role: models.RoleParent})
	c.Params = gin.Params{{Key: "id", Value: "child-1"}}

	handler.GetOrCreateCode(c)
	require.Equal(t, http.StatusOK, w.Code)

	var envelope struct {
		Data models.DailyPickupCode `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.Len(t, envelope.Data.Code, 5)
	assert.False(t, envelope.Data.IsUsed)
	assert.Len(t, repo.rows, 1)
}

func TestPickupHandlerGetOrCreateCodeForbidden(t *testing.T) {
	handler := newPickupHandler(&memoryCodeRepo{}, nil, stubAccess{deny: true})

	c, w := testContext(t, http.MethodGet, "/children/child-1/pickup-code", nil, &models.JWTClaims{UserID: "parent-2", Role: models.RoleParent})
	c.Params = gin.Params{{Key: "id", Value: "child-1"}}

	handler.GetOrCreateCode(c)
	require.Equal(t, http.StatusForbidden, w.Code)
}

func TestPickupHandlerVerifyCode(t *testing.T) {
	repo := &memoryCodeRepo{}
	handler := newPickupHandler(repo, nil, stubAccess{})
	staff := &models.JWTClaims{UserID: "teacher-1", Role: models.RoleTeacher}

	c, _ := testContext(t, http.MethodGet, "/children/child-1/pickup-code", nil, &models.JWTClaims{UserID: "parent-1", Role: models.RoleParent})
	c.Params = gin.Params{{Key: "id", Value: "child-1"}}
	handler.GetOrCreateCode(c)

	var issued string
	for _, row := range repo.rows {
		issued = row.Code
	}

	payload, _ := json.Marshal(service.VerifyPickupCodeRequest{ChildID: "child-1", Code: issued})
	c, w := testContext(t, http.MethodPost, "/pickup-codes/verify", payload, staff)
	handler.VerifyCode(c)
	require.Equal(t, http.StatusOK, w.Code)

	var envelope struct {
		Data map[string]bool `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.True(t, envelope.Data["success"])

	// Replaying the code flips to a failure with the same shape.
	c, w = testContext(t, http.MethodPost, "/pickup-codes/verify", payload, staff)
	handler.VerifyCode(c)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.False(t, envelope.Data["success"])
}

func TestPickupHandlerVerifyCodeInvalidBody(t *testing.T) {
	handler := newPickupHandler(&memoryCodeRepo{}, nil, stubAccess{})

	c, w := testContext(t, http.MethodPost, "/pickup-codes/verify", []byte(`{"child_id":`), &models.JWTClaims{UserID: "teacher-1", Role: models.RoleTeacher})
	handler.VerifyCode(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPickupHandlerSweep(t *testing.T) {
	handler := newPickupHandler(&memoryCodeRepo{}, &memorySweepRepo{childIDs: []string{"child-1", "child-2"}}, stubAccess{})

	c, w := testContext(t, http.MethodPost, "/cron/pickup-codes/sweep", nil, nil)
	handler.Sweep(c)
	require.Equal(t, http.StatusOK, w.Code)

	var envelope struct {
		Data map[string]int `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.Equal(t, 2, envelope.Data["created"])
}

func TestPickupHandlerCreateRecord(t *testing.T) {
	handler := newPickupHandler(&memoryCodeRepo{}, nil, stubAccess{})

	payload, _ := json.Marshal(service.CreatePickupRecordRequest{PickedUpBy: "Oma Keller"})
	c, w := testContext(t, http.MethodPost, "/children/child-1/pickup-records", payload, &models.JWTClaims{UserID: "teacher-1", Role: models.RoleTeacher})
	c.Params = gin.Params{{Key: "id", Value: "child-1"}}

	handler.CreateRecord(c)
	require.Equal(t, http.StatusCreated, w.Code)

	var envelope struct {
		Data models.PickupRecord `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.Equal(t, "Oma Keller", envelope.Data.PickedUpBy)
	assert.Equal(t, "teacher-1", envelope.Data.RecordedBy)
}
