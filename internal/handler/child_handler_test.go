package handler

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/kita-admin-api/internal/models"
	"github.com/noah-isme/kita-admin-api/internal/service"
	appErrors "github.com/noah-isme/kita-admin-api/pkg/errors"
)

// scopedAccess limits list scope to a fixed set of child IDs.
type scopedAccess struct {
	childIDs []string
}

func (s scopedAccess) Scope(context.Context, *models.JWTClaims) (models.AccessScope, error) {
	return models.AccessScope{ChildIDs: s.childIDs}, nil
}

func (s scopedAccess) Authorize(context.Context, *models.JWTClaims, string) error {
	return nil
}

func (s scopedAccess) Allowed(service.Action, models.UserRole) bool {
	return false
}

func (s scopedAccess) AuthorizeAction(context.Context, *models.JWTClaims, string, service.Action) error {
	return appErrors.Clone(appErrors.ErrForbidden, "")
}

type memoryChildRepo struct {
	children   map[string]*models.Child
	lastFilter models.ChildFilter
}

func (m *memoryChildRepo) FindByID(_ context.Context, id string) (*models.Child, error) {
	child, ok := m.children[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return child, nil
}

func (m *memoryChildRepo) List(_ context.Context, filter models.ChildFilter) ([]models.Child, int, error) {
	m.lastFilter = filter
	var out []models.Child
	for _, id := range filter.ChildIDs {
		if child, ok := m.children[id]; ok {
			out = append(out, *child)
		}
	}
	return out, len(out), nil
}

func (m *memoryChildRepo) Create(_ context.Context, child *models.Child) error {
	if m.children == nil {
		m.children = map[string]*models.Child{}
	}
	if child.ID == "" {
		child.ID = "child-new"
	}
	m.children[child.ID] = child
	return nil
}

func (m *memoryChildRepo) Update(_ context.Context, child *models.Child) error {
	m.children[child.ID] = child
	return nil
}

func (m *memoryChildRepo) Deactivate(_ context.Context, id string) error {
	if child, ok := m.children[id]; ok {
		child.Active = false
	}
	return nil
}

func TestChildHandlerListAppliesScope(t *testing.T) {
	repo := &memoryChildRepo{
		children: map[string]*models.Child{
			"child-1": {ID: "child-1", ParentID: "parent-1", FirstName: "Mia", LastName: "Keller", Active: true},
			"child-2": {ID: "child-2", ParentID: "parent-2", FirstName: "Ben", LastName: "Roth", Active: true},
		},
	}
	handler := NewChildHandler(service.NewChildService(repo, scopedAccess{childIDs: []string{"child-1"}}, nil, nil))

	c, w := testContext(t, http.MethodGet, "/children?page=1&limit=20", nil, &models.JWTClaims{UserID: "parent-1", Role: models.RoleParent})
	handler.List(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"child-1"}, repo.lastFilter.ChildIDs)

	var envelope struct {
		Data       []models.Child     `json:"data"`
		Pagination *models.Pagination `json:"pagination"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.Len(t, envelope.Data, 1)
	assert.Equal(t, "child-1", envelope.Data[0].ID)
	require.NotNil(t, envelope.Pagination)
	assert.Equal(t, 1, envelope.Pagination.TotalCount)
}

func TestChildHandlerGetMissingChild(t *testing.T) {
	handler := NewChildHandler(service.NewChildService(&memoryChildRepo{}, stubAccess{}, nil, nil))

	c, w := testContext(t, http.MethodGet, "/children/child-missing", nil, &models.JWTClaims{UserID: "admin-1", Role: models.RoleAdmin})
	c.Params = gin.Params{{Key: "id", Value: "child-missing"}}

	handler.Get(c)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestChildHandlerCreate(t *testing.T) {
	repo := &memoryChildRepo{}
	handler := NewChildHandler(service.NewChildService(repo, stubAccess{}, nil, nil))

	payload, _ := json.Marshal(service.CreateChildRequest{
		ParentID:  "parent-1",
		FirstName: "Mia",
		LastName:  "Keller",
		BirthDate: time.Date(2022, 5, 14, 0, 0, 0, 0, time.UTC),
	})
	c, w := testContext(t, http.MethodPost, "/children", payload, &models.JWTClaims{UserID: "admin-1", Role: models.RoleAdmin})

	handler.Create(c)
	require.Equal(t, http.StatusCreated, w.Code)
	require.Len(t, repo.children, 1)
}

func TestChildHandlerCreateForbidden(t *testing.T) {
	handler := NewChildHandler(service.NewChildService(&memoryChildRepo{}, stubAccess{deny: true}, nil, nil))

	payload, _ := json.Marshal(service.CreateChildRequest{
		ParentID:  "parent-1",
		FirstName: "Mia",
		LastName:  "Keller",
		BirthDate: time.Date(2022, 5, 14, 0, 0, 0, 0, time.UTC),
	})
	c, w := testContext(t, http.MethodPost, "/children", payload, &models.JWTClaims{UserID: "parent-1", Role: models.RoleParent})

	handler.Create(c)
	require.Equal(t, http.StatusForbidden, w.Code)
}

func TestChildHandlerDeactivate(t *testing.T) {
	repo := &memoryChildRepo{
		children: map[string]*models.Child{
			"child-1": {ID: "child-1", ParentID: "parent-1", Active: true},
		},
	}
	handler := NewChildHandler(service.NewChildService(repo, stubAccess{}, nil, nil))

	c, w := testContext(t, http.MethodDelete, "/children/child-1", nil, &models.JWTClaims{UserID: "admin-1", Role: models.RoleAdmin})
	c.Params = gin.Params{{Key: "id", Value: "child-1"}}

	handler.Deactivate(c)
	// c.Status defers the write; flush it the way ServeHTTP would.
	c.Writer.WriteHeaderNow()
	require.Equal(t, http.StatusNoContent, w.Code)
	assert.False(t, repo.children["child-1"].Active)
}
