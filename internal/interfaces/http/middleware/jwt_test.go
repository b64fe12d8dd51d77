package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tierquote/backend/internal/domain/identity"
	"github.com/tierquote/backend/internal/infrastructure/auth"
	"github.com/tierquote/backend/internal/infrastructure/config"
)

func newTestJWTService(t *testing.T) *auth.JWTService {
	t.Helper()
	return auth.NewJWTService(config.JWTConfig{
		Secret:     "test-secret-test-secret-test-secret",
		Expiration: time.Hour,
		Issuer:     "tierquote-test",
	})
}

func issueTestToken(t *testing.T, svc *auth.JWTService) string {
	t.Helper()
	user, err := identity.NewUser("tech@example.com", "Field Tech", identity.RoleSales)
	require.NoError(t, err)
	issued, err := svc.GenerateToken(user)
	require.NoError(t, err)
	return issued.Token
}

func newProtectedRouter(svc *auth.JWTService) *gin.Engine {
	router := gin.New()
	router.Use(JWTAuthMiddlewareWithConfig(JWTMiddlewareConfig{
		JWTService: svc,
		SkipPaths:  []string{"/open"},
	}))
	router.GET("/open", func(c *gin.Context) {
		c.String(http.StatusOK, "open")
	})
	router.GET("/secure", func(c *gin.Context) {
		c.String(http.StatusOK, GetJWTUserID(c))
	})
	return router
}

func TestJWTAuthMiddleware(t *testing.T) {
	svc := newTestJWTService(t)
	router := newProtectedRouter(svc)

	t.Run("valid token passes and claims are set", func(t *testing.T) {
		token := issueTestToken(t, svc)

		req := httptest.NewRequest("GET", "/secure", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.NotEmpty(t, w.Body.String())
	})

	t.Run("missing header returns 401", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/secure", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "INVALID_TOKEN")
	})

	t.Run("malformed header returns 401", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/secure", nil)
		req.Header.Set("Authorization", "Token abc123")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("garbage token returns 401", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/secure", nil)
		req.Header.Set("Authorization", "Bearer not.a.jwt")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("expired token returns TOKEN_EXPIRED", func(t *testing.T) {
		expiredSvc := auth.NewJWTService(config.JWTConfig{
			Secret:     "test-secret-test-secret-test-secret",
			Expiration: -time.Hour,
			Issuer:     "tierquote-test",
		})
		token := issueTestToken(t, expiredSvc)

		req := httptest.NewRequest("GET", "/secure", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "TOKEN_EXPIRED")
	})

	t.Run("skip path bypasses authentication", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/open", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestJWTSkipPathPrefixes(t *testing.T) {
	svc := newTestJWTService(t)

	router := gin.New()
	router.Use(JWTAuthMiddlewareWithConfig(JWTMiddlewareConfig{
		JWTService:       svc,
		SkipPathPrefixes: []string{"/api/v1/proposals"},
	}))
	router.GET("/api/v1/proposals/:token", func(c *gin.Context) {
		c.String(http.StatusOK, "public")
	})

	req := httptest.NewRequest("GET", "/api/v1/proposals/abc123", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}
