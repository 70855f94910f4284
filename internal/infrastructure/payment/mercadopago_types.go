package payment

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// Gateway errors
var (
	ErrGatewayUnavailable   = errors.New("payment gateway unavailable")
	ErrGatewayRequestFailed = errors.New("payment gateway request failed")
	ErrPaymentNotFound      = errors.New("payment not found at gateway")
)

type mpItem struct {
	Title      string  `json:"title"`
	Quantity   int     `json:"quantity"`
	UnitPrice  float64 `json:"unit_price"`
	CurrencyID string  `json:"currency_id"`
}

type mpPayer struct {
	Email string `json:"email,omitempty"`
}

type mpBackURLs struct {
	Success string `json:"success,omitempty"`
	Failure string `json:"failure,omitempty"`
	Pending string `json:"pending,omitempty"`
}

type mpPreferenceRequest struct {
	Items             []mpItem   `json:"items"`
	Payer             *mpPayer   `json:"payer,omitempty"`
	BackURLs          mpBackURLs `json:"back_urls"`
	AutoReturn        string     `json:"auto_return,omitempty"`
	ExternalReference string     `json:"external_reference"`
	NotificationURL   string     `json:"notification_url,omitempty"`
}

type mpPreferenceResponse struct {
	ID               string `json:"id"`
	InitPoint        string `json:"init_point"`
	SandboxInitPoint string `json:"sandbox_init_point"`
}

type mpPaymentResponse struct {
	ID                json.Number     `json:"id"`
	Status            string          `json:"status"`
	StatusDetail      string          `json:"status_detail"`
	ExternalReference string          `json:"external_reference"`
	TransactionAmount decimal.Decimal `json:"transaction_amount"`
	DateApproved      *time.Time      `json:"date_approved"`
}

type mpErrorResponse struct {
	Message string `json:"message"`
	Error   string `json:"error"`
	Status  int    `json:"status"`
}
