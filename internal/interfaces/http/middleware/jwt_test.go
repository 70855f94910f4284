package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/pozinox/backend/internal/infrastructure/auth"
	"github.com/pozinox/backend/internal/infrastructure/config"
	"github.com/pozinox/backend/internal/infrastructure/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestJWTService() *auth.JWTService {
	return auth.NewJWTService(config.JWTConfig{
		Secret:                 "test-secret-key-at-least-32-chars",
		RefreshSecret:          "test-refresh-secret-key-32-chars",
		AccessTokenExpiration:  15 * time.Minute,
		RefreshTokenExpiration: 7 * 24 * time.Hour,
		Issuer:                 "pozinox-test",
		MaxRefreshCount:        10,
	})
}

func newTestTokenPair(t *testing.T, jwtService *auth.JWTService, superuser bool) (*auth.TokenPair, auth.GenerateTokenInput) {
	t.Helper()
	input := auth.GenerateTokenInput{
		UserID:      uuid.New(),
		Username:    "arojas",
		IsSuperuser: superuser,
	}
	pair, err := jwtService.GenerateTokenPair(input)
	require.NoError(t, err)
	return pair, input
}

func serve(router *gin.Engine, method, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestJWTAuthMiddleware(t *testing.T) {
	jwtService := newTestJWTService()

	t.Run("valid token exposes claims and user id", func(t *testing.T) {
		pair, input := newTestTokenPair(t, jwtService, false)

		router := gin.New()
		router.Use(JWTAuthMiddleware(jwtService))
		router.GET("/me", func(c *gin.Context) {
			claims := GetJWTClaims(c)
			require.NotNil(t, claims)
			assert.Equal(t, input.UserID.String(), GetJWTUserID(c))
			assert.Equal(t, "arojas", claims.Username)
			assert.False(t, IsSuperuser(c))

			id, ok := logger.GetUserID(c.Request.Context())
			assert.True(t, ok)
			assert.Equal(t, input.UserID, id)
			c.Status(http.StatusOK)
		})

		assert.Equal(t, http.StatusOK, serve(router, http.MethodGet, "/me", pair.AccessToken).Code)
	})

	t.Run("missing header", func(t *testing.T) {
		router := gin.New()
		router.Use(JWTAuthMiddleware(jwtService))
		router.GET("/me", func(c *gin.Context) { c.Status(http.StatusOK) })

		rec := serve(router, http.MethodGet, "/me", "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Contains(t, rec.Body.String(), "TOKEN_INVALID")
	})

	t.Run("refresh token is not an access token", func(t *testing.T) {
		pair, _ := newTestTokenPair(t, jwtService, false)
		router := gin.New()
		router.Use(JWTAuthMiddleware(jwtService))
		router.GET("/me", func(c *gin.Context) { c.Status(http.StatusOK) })

		rec := serve(router, http.MethodGet, "/me", pair.RefreshToken)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("logged out token is rejected", func(t *testing.T) {
		pair, _ := newTestTokenPair(t, jwtService, false)
		revocations := auth.NewMemoryRevocationStore()
		claims, err := jwtService.ValidateAccessToken(pair.AccessToken)
		require.NoError(t, err)
		require.NoError(t, revocations.RevokeToken(context.Background(), claims.ID, time.Hour))

		router := gin.New()
		router.Use(JWTAuthMiddlewareWithConfig(JWTMiddlewareConfig{
			JWTService:  jwtService,
			Revocations: revocations,
		}))
		router.GET("/me", func(c *gin.Context) { c.Status(http.StatusOK) })

		rec := serve(router, http.MethodGet, "/me", pair.AccessToken)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Contains(t, rec.Body.String(), "TOKEN_REVOKED")
	})
}

func TestRequireSuperuser(t *testing.T) {
	jwtService := newTestJWTService()

	newRouter := func() *gin.Engine {
		router := gin.New()
		router.Use(JWTAuthMiddleware(jwtService), RequireSuperuser())
		router.GET("/admin", func(c *gin.Context) { c.Status(http.StatusOK) })
		return router
	}

	t.Run("customer is forbidden", func(t *testing.T) {
		pair, _ := newTestTokenPair(t, jwtService, false)
		rec := serve(newRouter(), http.MethodGet, "/admin", pair.AccessToken)
		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.Contains(t, rec.Body.String(), "FORBIDDEN")
	})

	t.Run("superuser passes", func(t *testing.T) {
		pair, _ := newTestTokenPair(t, jwtService, true)
		rec := serve(newRouter(), http.MethodGet, "/admin", pair.AccessToken)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("without authentication", func(t *testing.T) {
		router := gin.New()
		router.Use(RequireSuperuser())
		router.GET("/admin", func(c *gin.Context) { c.Status(http.StatusOK) })
		assert.Equal(t, http.StatusUnauthorized, serve(router, http.MethodGet, "/admin", "").Code)
	})
}
