package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/kita-admin-api/internal/models"
	appErrors "github.com/noah-isme/kita-admin-api/pkg/errors"
	"github.com/noah-isme/kita-admin-api/pkg/response"
)

// RequireRoles restricts a route to callers holding one of the given roles.
func RequireRoles(roles ...models.UserRole) gin.HandlerFunc {
	return requireAccess(roles, false)
}

// RequireRolesOrSelf additionally admits a caller whose :id path parameter
// equals their own user ID, so account owners can reach their own record
// without holding a privileged role.
func RequireRolesOrSelf(roles ...models.UserRole) gin.HandlerFunc {
	return requireAccess(roles, true)
}

func requireAccess(roles []models.UserRole, allowSelf bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		claimsValue, exists := c.Get(ContextUserKey)
		if !exists {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}
		claims := claimsValue.(*models.JWTClaims)

		for _, role := range roles {
			if claims.Role == role {
				c.Next()
				return
			}
		}

		if allowSelf {
			if targetID := c.Param("id"); targetID != "" && targetID == claims.UserID {
				c.Next()
				return
			}
		}

		response.Error(c, appErrors.ErrForbidden)
		c.Abort()
	}
}
