package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/kita-admin-api/internal/models"
)

func newRBACRouter(handler gin.HandlerFunc, claims *models.JWTClaims) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(func(c *gin.Context) {
		if claims != nil {
			c.Set(ContextUserKey, claims)
		}
	})
	router.GET("/users/:id", handler, func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return router
}

func getUser(router *gin.Engine, id string) int {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/users/"+id, nil)
	router.ServeHTTP(w, req)
	return w.Code
}

func TestRequireRoles(t *testing.T) {
	admin := &models.JWTClaims{UserID: "admin-1", Role: models.RoleAdmin}
	parent := &models.JWTClaims{UserID: "parent-1", Role: models.RoleParent}

	require.Equal(t, http.StatusOK, getUser(newRBACRouter(RequireRoles(models.RoleAdmin), admin), "user-1"))
	require.Equal(t, http.StatusForbidden, getUser(newRBACRouter(RequireRoles(models.RoleAdmin), parent), "user-1"))
	require.Equal(t, http.StatusUnauthorized, getUser(newRBACRouter(RequireRoles(models.RoleAdmin), nil), "user-1"))
}

func TestRequireRolesOrSelf(t *testing.T) {
	parent := &models.JWTClaims{UserID: "parent-1", Role: models.RoleParent}
	guard := RequireRolesOrSelf(models.RoleAdmin)

	// Account owners reach their own record; everyone else's stays closed.
	require.Equal(t, http.StatusOK, getUser(newRBACRouter(guard, parent), "parent-1"))
	require.Equal(t, http.StatusForbidden, getUser(newRBACRouter(guard, parent), "parent-2"))

	admin := &models.JWTClaims{UserID: "admin-1", Role: models.RoleAdmin}
	require.Equal(t, http.StatusOK, getUser(newRBACRouter(guard, admin), "parent-1"))
}
