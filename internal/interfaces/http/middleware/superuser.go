package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// SuperuserConfig holds configuration for the superuser gate
type SuperuserConfig struct {
	// Logger for middleware logging
	Logger *zap.Logger
}

// RequireSuperuser allows only superusers through. It must run after
// JWTAuthMiddleware.
func RequireSuperuser() gin.HandlerFunc {
	return RequireSuperuserWithConfig(SuperuserConfig{})
}

// RequireSuperuserWithConfig creates the superuser gate with custom config
func RequireSuperuserWithConfig(cfg SuperuserConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := GetJWTClaims(c)
		if claims == nil {
			abortWithError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
			return
		}

		if !claims.IsSuperuser {
			if cfg.Logger != nil {
				cfg.Logger.Warn("Admin access denied",
					zap.String("user_id", claims.UserID),
					zap.String("path", c.Request.URL.Path),
				)
			}
			abortWithError(c, http.StatusForbidden, "FORBIDDEN", "Administrator privileges required")
			return
		}

		c.Next()
	}
}
