package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/pozinox/backend/internal/infrastructure/logger"
	"github.com/pozinox/backend/internal/interfaces/http/dto"
)

// RequestIDContextKey is the gin key holding the request ID
const RequestIDContextKey = "request_id"

// RequestID tags each request with the caller's X-Request-ID or a new UUID
// and echoes it on the response
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(RequestIDKey)
		if requestID == "" || len(requestID) > MaxRequestIDLength {
			requestID = uuid.NewString()
		}
		c.Set(RequestIDContextKey, requestID)
		c.Request = c.Request.WithContext(logger.WithRequestID(c.Request.Context(), requestID))
		c.Writer.Header().Set(RequestIDKey, requestID)
		c.Next()
	}
}

// ClientIP stores the caller's address on the request context so services
// can record it in the activity log
func ClientIP() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request = c.Request.WithContext(logger.WithClientIP(c.Request.Context(), c.ClientIP()))
		c.Next()
	}
}

// abortWithError ends the chain with the API error envelope
func abortWithError(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, dto.NewErrorResponseWithRequestID(code, message, getRequestID(c)))
}
