package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/kita-admin-api/internal/middleware"
	"github.com/noah-isme/kita-admin-api/internal/models"
)

// claimsFromContext pulls the session claims the middleware stored. Nil on
// routes that run without a session; services treat nil as unauthorized.
func claimsFromContext(c *gin.Context) *models.JWTClaims {
	value, exists := c.Get(middleware.ContextUserKey)
	if !exists {
		return nil
	}
	claims, ok := value.(*models.JWTClaims)
	if !ok {
		return nil
	}
	return claims
}
