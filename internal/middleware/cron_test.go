package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func newCronRouter(secret string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.POST("/cron/sweep", CronAuth(secret), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return router
}

func TestCronAuthAcceptsSharedSecret(t *testing.T) {
	router := newCronRouter("sweep-secret")

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/cron/sweep", nil)
	req.Header.Set("Authorization", "Bearer sweep-secret")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
}

func TestCronAuthRejectsBadCallers(t *testing.T) {
	router := newCronRouter("sweep-secret")

	for name, header := range map[string]string{
		"missing header": "",
		"wrong secret":   "Bearer other-secret",
		"wrong scheme":   "Basic sweep-secret",
	} {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/cron/sweep", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		router.ServeHTTP(w, req)
		require.Equal(t, http.StatusUnauthorized, w.Code, name)
	}
}

func TestCronAuthWithEmptySecretRejectsEverything(t *testing.T) {
	router := newCronRouter("")

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/cron/sweep", nil)
	req.Header.Set("Authorization", "Bearer ")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusUnauthorized, w.Code)
}
