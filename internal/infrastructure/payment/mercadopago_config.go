package payment

import (
	"errors"
	"strings"
	"time"
)

const (
	mercadoPagoAPIBaseURL  = "https://api.mercadopago.com"
	mercadoPagoDefaultWait = 30 * time.Second
)

// MercadoPagoConfig contains configuration for the Mercado Pago REST API
type MercadoPagoConfig struct {
	// AccessToken is the seller's private access token
	AccessToken string
	// BaseURL overrides the API host (tests, proxies)
	BaseURL string
	// Timeout for each API call
	Timeout time.Duration
}

// Errors for configuration validation
var (
	ErrMercadoPagoMissingAccessToken = errors.New("mercadopago: missing access token")
)

// Validate validates the configuration
func (c *MercadoPagoConfig) Validate() error {
	if strings.TrimSpace(c.AccessToken) == "" {
		return ErrMercadoPagoMissingAccessToken
	}
	return nil
}

// IsSandbox reports whether the token belongs to a test account
func (c *MercadoPagoConfig) IsSandbox() bool {
	return strings.HasPrefix(c.AccessToken, "TEST-")
}

func (c *MercadoPagoConfig) baseURL() string {
	if c.BaseURL != "" {
		return strings.TrimRight(c.BaseURL, "/")
	}
	return mercadoPagoAPIBaseURL
}

func (c *MercadoPagoConfig) timeout() time.Duration {
	if c.Timeout > 0 {
		return c.Timeout
	}
	return mercadoPagoDefaultWait
}
