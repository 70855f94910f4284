package middleware

import (
	"fmt"

	"github.com/gin-gonic/gin"
)

// SecurityConfig holds the security headers sent with every response
type SecurityConfig struct {
	// HSTS needs TLS in front of the service, so it is off unless configured
	HSTSEnabled           bool
	HSTSMaxAge            int
	HSTSIncludeSubdomains bool

	// ContentSecurityPolicy is sent verbatim when non-empty
	ContentSecurityPolicy string
	// PermissionsPolicy is sent verbatim when non-empty
	PermissionsPolicy string
}

// DefaultSecurityConfig returns headers for a JSON API whose only embedded
// content is product imagery served from object storage over https
func DefaultSecurityConfig() SecurityConfig {
	return SecurityConfig{
		HSTSMaxAge:            31536000,
		HSTSIncludeSubdomains: true,
		ContentSecurityPolicy: "default-src 'none'; img-src 'self' data: https:; frame-ancestors 'none'; base-uri 'none'; form-action 'none'",
		PermissionsPolicy:     "camera=(), geolocation=(), microphone=(), payment=(), usb=()",
	}
}

// Secure adds security headers to responses using default configuration
func Secure() gin.HandlerFunc {
	return SecureWithConfig(DefaultSecurityConfig())
}

// SecureWithConfig adds security headers to responses
func SecureWithConfig(cfg SecurityConfig) gin.HandlerFunc {
	headers := map[string]string{
		"X-Frame-Options":        "DENY",
		"X-Content-Type-Options": "nosniff",
		"Referrer-Policy":        "strict-origin-when-cross-origin",
	}
	if cfg.ContentSecurityPolicy != "" {
		headers["Content-Security-Policy"] = cfg.ContentSecurityPolicy
	}
	if cfg.PermissionsPolicy != "" {
		headers["Permissions-Policy"] = cfg.PermissionsPolicy
	}
	if cfg.HSTSEnabled {
		hsts := fmt.Sprintf("max-age=%d", cfg.HSTSMaxAge)
		if cfg.HSTSIncludeSubdomains {
			hsts += "; includeSubDomains"
		}
		headers["Strict-Transport-Security"] = hsts
	}

	return func(c *gin.Context) {
		h := c.Writer.Header()
		for name, value := range headers {
			h.Set(name, value)
		}
		c.Next()
	}
}
