package trade

import (
	"context"
	"time"

	"github.com/google/uuid"
	partnerapp "github.com/pozinox/backend/internal/application/partner"
	"github.com/pozinox/backend/internal/domain/partner"
	"github.com/shopspring/decimal"
)

// PaymentGateway creates checkout preferences and looks up payments on the
// card payment provider
type PaymentGateway interface {
	CreatePreference(ctx context.Context, req PreferenceRequest) (*Preference, error)
	GetPayment(ctx context.Context, paymentID string) (*PaymentInfo, error)
}

// PreferenceItem is one line of a checkout preference
type PreferenceItem struct {
	Title      string
	Quantity   int
	UnitPrice  decimal.Decimal
	CurrencyID string
}

// BackURLs are the browser return addresses after checkout
type BackURLs struct {
	Success string
	Failure string
	Pending string
}

// PreferenceRequest describes a checkout to create
type PreferenceRequest struct {
	ExternalReference string
	Items             []PreferenceItem
	PayerEmail        string
	BackURLs          BackURLs
	NotificationURL   string
}

// Preference is a created checkout
type Preference struct {
	ID               string
	InitPoint        string
	SandboxInitPoint string
}

// PaymentInfo is the gateway's view of a payment
type PaymentInfo struct {
	ID                string
	Status            string
	StatusDetail      string
	ExternalReference string
	TransactionAmount decimal.Decimal
	DateApproved      *time.Time
}

// Gateway payment statuses
const (
	GatewayStatusApproved   = "approved"
	GatewayStatusPending    = "pending"
	GatewayStatusInProcess  = "in_process"
	GatewayStatusAuthorized = "authorized"
	GatewayStatusRejected   = "rejected"
	GatewayStatusCancelled  = "cancelled"
	GatewayStatusRefunded   = "refunded"
)

// StoreInfo is the company block printed on quotes
type StoreInfo struct {
	Name    string
	TaxID   string
	Address string
	Phone   string
	Email   string
}

// QuoteDocument is everything a renderer needs to print a quote or order
type QuoteDocument struct {
	Store      StoreInfo
	VATPercent decimal.Decimal
	Order      OrderResponse
	Customer   *OrderCustomer
	IssuedAt   time.Time
}

// QuoteRenderer renders a quote document to PDF
type QuoteRenderer interface {
	RenderQuote(ctx context.Context, doc QuoteDocument) ([]byte, error)
}

// CustomerResolver finds or lazily creates the customer behind a user
type CustomerResolver interface {
	FindForUser(ctx context.Context, userID uuid.UUID) (*partner.Customer, error)
	EnsureForUser(ctx context.Context, input partnerapp.EnsureCustomerInput) (*partner.Customer, error)
}

// OrderNumberSource reserves order numbers
type OrderNumberSource interface {
	Generate(ctx context.Context) (string, error)
}
