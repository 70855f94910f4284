package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/pozinox/backend/internal/domain/identity"
	"github.com/pozinox/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

const (
	// APITokenHeader carries the integration token
	APITokenHeader = "X-API-Token"
	// APITokenUserKey holds the authenticated *identity.User
	APITokenUserKey = "api_token_user"
)

// APITokenAuthenticator resolves a raw API token to its owner
type APITokenAuthenticator interface {
	Authenticate(ctx context.Context, token string) (*identity.User, error)
}

// APITokenAuth authenticates requests by the X-API-Token header
func APITokenAuth(authenticator APITokenAuthenticator, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := strings.TrimSpace(c.GetHeader(APITokenHeader))
		if token == "" {
			abortAPIToken(c, "API token required")
			return
		}

		user, err := authenticator.Authenticate(c.Request.Context(), token)
		if err != nil {
			if log != nil {
				log.Warn("API token rejected",
					zap.String("path", c.Request.URL.Path),
					zap.Error(err))
			}
			abortAPIToken(c, "Invalid or expired API token")
			return
		}

		c.Set(APITokenUserKey, user)
		c.Request = c.Request.WithContext(logger.WithUserID(c.Request.Context(), user.ID))
		c.Next()
	}
}

func abortAPIToken(c *gin.Context, message string) {
	abortWithError(c, http.StatusUnauthorized, "INVALID_API_TOKEN", message)
}

// GetAPITokenUser returns the user authenticated by APITokenAuth
func GetAPITokenUser(c *gin.Context) *identity.User {
	if v, ok := c.Get(APITokenUserKey); ok {
		if user, ok := v.(*identity.User); ok {
			return user
		}
	}
	return nil
}
