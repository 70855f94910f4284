package trade

import (
	"time"

	"github.com/google/uuid"
	"github.com/pozinox/backend/internal/domain/partner"
	"github.com/pozinox/backend/internal/domain/trade"
	"github.com/shopspring/decimal"
)

// ==================== Quote DTOs ====================

// CreateQuoteRequest opens a new quote. TaxID is only needed when the user
// has no customer record yet.
type CreateQuoteRequest struct {
	TaxID string `json:"tax_id" binding:"max=12"`
	Notes string `json:"notes" binding:"max=2000"`
}

// AddLineRequest adds a product to a quote
type AddLineRequest struct {
	ProductID uuid.UUID `json:"product_id" binding:"required"`
	Quantity  int       `json:"quantity" binding:"required,min=1,max=100000"`
}

// UpdateLineRequest changes a line quantity; zero removes the line
type UpdateLineRequest struct {
	Quantity *int `json:"quantity" binding:"required,min=0,max=100000"`
}

// FinalizeQuoteRequest closes a quote for editing
type FinalizeQuoteRequest struct {
	Notes        *string    `json:"notes" binding:"omitempty,max=2000"`
	DeliveryDate *time.Time `json:"delivery_date"`
}

// SelectPaymentMethodRequest chooses how a finalized quote is paid
type SelectPaymentMethodRequest struct {
	Method string `json:"method" binding:"required,oneof=cash transfer card check"`
}

// QuoteListFilter represents filter options for a customer's quotes and orders
type QuoteListFilter struct {
	Status   string `form:"status" binding:"omitempty,oneof=pending confirmed preparing ready shipped delivered cancelled"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// PaymentRedirect tells the client where to complete a card payment
type PaymentRedirect struct {
	OrderID      uuid.UUID `json:"order_id"`
	PreferenceID string    `json:"preference_id"`
	RedirectURL  string    `json:"redirect_url"`
}

// PaymentOutcome is the result reported by the gateway return URLs
type PaymentOutcome string

const (
	PaymentOutcomeSuccess PaymentOutcome = "success"
	PaymentOutcomeFailure PaymentOutcome = "failure"
	PaymentOutcomePending PaymentOutcome = "pending"
)

// IsValid reports whether the outcome is known
func (o PaymentOutcome) IsValid() bool {
	return o == PaymentOutcomeSuccess || o == PaymentOutcomeFailure || o == PaymentOutcomePending
}

// PaymentNotification is a gateway webhook delivery
type PaymentNotification struct {
	Type   string `json:"type"`
	Action string `json:"action"`
	Data   struct {
		ID string `json:"id"`
	} `json:"data"`
}

// ==================== Admin DTOs ====================

// OrderListFilter represents filter options for the admin order list
type OrderListFilter struct {
	Search        string     `form:"search"`
	Status        string     `form:"status" binding:"omitempty,oneof=pending confirmed preparing ready shipped delivered cancelled"`
	PaymentStatus string     `form:"payment_status" binding:"omitempty,oneof=none pending in_process approved rejected"`
	CustomerID    *uuid.UUID `form:"-"`
	Page          int        `form:"page" binding:"omitempty,min=1"`
	PageSize      int        `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy       string     `form:"order_by"`
	OrderDir      string     `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// ChangeStatusRequest moves an order along the status machine
type ChangeStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=pending confirmed preparing ready shipped delivered cancelled"`
}

// UpdateOrderRequest edits the administrative fields of an order
type UpdateOrderRequest struct {
	Notes         *string          `json:"notes" binding:"omitempty,max=2000"`
	InternalNotes *string          `json:"internal_notes" binding:"omitempty,max=2000"`
	DeliveryDate  *time.Time       `json:"delivery_date"`
	Discount      *decimal.Decimal `json:"discount"`
	PaymentMethod *string          `json:"payment_method" binding:"omitempty,oneof=cash transfer card check"`
}

// SetLineDiscountRequest sets a line discount percentage
type SetLineDiscountRequest struct {
	DiscountPercent decimal.Decimal `json:"discount_percent"`
}

// ==================== Responses ====================

// OrderLineResponse represents an order line in API responses
type OrderLineResponse struct {
	ID              uuid.UUID       `json:"id"`
	ProductID       uuid.UUID       `json:"product_id"`
	ProductCode     string          `json:"product_code"`
	ProductName     string          `json:"product_name"`
	Quantity        int             `json:"quantity"`
	UnitPrice       decimal.Decimal `json:"unit_price"`
	DiscountPercent decimal.Decimal `json:"discount_percent"`
	Subtotal        decimal.Decimal `json:"subtotal"`
}

// OrderCustomer is the customer summary embedded in order responses
type OrderCustomer struct {
	ID          uuid.UUID `json:"id"`
	DisplayName string    `json:"display_name"`
	TaxID       string    `json:"tax_id"`
	Email       string    `json:"email"`
	Phone       string    `json:"phone,omitempty"`
	Address     string    `json:"address,omitempty"`
	Commune     string    `json:"commune,omitempty"`
	City        string    `json:"city,omitempty"`
}

// OrderResponse represents an order or quote in API responses
type OrderResponse struct {
	ID               uuid.UUID           `json:"id"`
	OrderNumber      string              `json:"order_number"`
	CustomerID       uuid.UUID           `json:"customer_id"`
	Customer         *OrderCustomer      `json:"customer,omitempty"`
	Status           string              `json:"status"`
	IsQuote          bool                `json:"is_quote"`
	PaymentMethod    string              `json:"payment_method,omitempty"`
	PaymentStatus    string              `json:"payment_status"`
	PaymentReference string              `json:"payment_reference,omitempty"`
	Subtotal         decimal.Decimal     `json:"subtotal"`
	Discount         decimal.Decimal     `json:"discount"`
	Tax              decimal.Decimal     `json:"tax"`
	Total            decimal.Decimal     `json:"total"`
	Notes            string              `json:"notes"`
	InternalNotes    string              `json:"internal_notes,omitempty"`
	DeliveryDate     *time.Time          `json:"delivery_date,omitempty"`
	FinalizedAt      *time.Time          `json:"finalized_at,omitempty"`
	PaidAt           *time.Time          `json:"paid_at,omitempty"`
	ItemCount        int                 `json:"item_count"`
	Lines            []OrderLineResponse `json:"lines"`
	CreatedAt        time.Time           `json:"created_at"`
	UpdatedAt        time.Time           `json:"updated_at"`
	Version          int                 `json:"version"`
}

// OrderListItemResponse represents an order in list responses
type OrderListItemResponse struct {
	ID            uuid.UUID       `json:"id"`
	OrderNumber   string          `json:"order_number"`
	CustomerID    uuid.UUID       `json:"customer_id"`
	Status        string          `json:"status"`
	IsQuote       bool            `json:"is_quote"`
	PaymentMethod string          `json:"payment_method,omitempty"`
	PaymentStatus string          `json:"payment_status"`
	Total         decimal.Decimal `json:"total"`
	ItemCount     int             `json:"item_count"`
	DeliveryDate  *time.Time      `json:"delivery_date,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}

// ToOrderLineResponse converts a domain OrderLine
func ToOrderLineResponse(l *trade.OrderLine) OrderLineResponse {
	return OrderLineResponse{
		ID:              l.ID,
		ProductID:       l.ProductID,
		ProductCode:     l.ProductCode,
		ProductName:     l.ProductName,
		Quantity:        l.Quantity,
		UnitPrice:       l.UnitPrice,
		DiscountPercent: l.DiscountPercent,
		Subtotal:        l.Subtotal,
	}
}

// ToOrderResponse converts a domain Order. Internal notes are included only
// when internal is set.
func ToOrderResponse(o *trade.Order, internal bool) OrderResponse {
	lines := make([]OrderLineResponse, len(o.Lines))
	for i := range o.Lines {
		lines[i] = ToOrderLineResponse(&o.Lines[i])
	}
	response := OrderResponse{
		ID:               o.ID,
		OrderNumber:      o.OrderNumber,
		CustomerID:       o.CustomerID,
		Status:           string(o.Status),
		IsQuote:          o.IsQuote(),
		PaymentMethod:    string(o.PaymentMethod),
		PaymentStatus:    string(o.PaymentStatus),
		PaymentReference: o.PaymentReference,
		Subtotal:         o.Subtotal,
		Discount:         o.Discount,
		Tax:              o.Tax,
		Total:            o.Total,
		Notes:            o.Notes,
		DeliveryDate:     o.DeliveryDate,
		FinalizedAt:      o.FinalizedAt,
		PaidAt:           o.PaidAt,
		ItemCount:        o.ItemCount(),
		Lines:            lines,
		CreatedAt:        o.CreatedAt,
		UpdatedAt:        o.UpdatedAt,
		Version:          o.Version,
	}
	if internal {
		response.InternalNotes = o.InternalNotes
	}
	return response
}

// ToOrderListItemResponses converts a slice of orders
func ToOrderListItemResponses(orders []trade.Order) []OrderListItemResponse {
	items := make([]OrderListItemResponse, len(orders))
	for i := range orders {
		o := &orders[i]
		items[i] = OrderListItemResponse{
			ID:            o.ID,
			OrderNumber:   o.OrderNumber,
			CustomerID:    o.CustomerID,
			Status:        string(o.Status),
			IsQuote:       o.IsQuote(),
			PaymentMethod: string(o.PaymentMethod),
			PaymentStatus: string(o.PaymentStatus),
			Total:         o.Total,
			ItemCount:     o.ItemCount(),
			DeliveryDate:  o.DeliveryDate,
			CreatedAt:     o.CreatedAt,
		}
	}
	return items
}

// ToOrderCustomer summarizes a customer for order responses
func ToOrderCustomer(c *partner.Customer) *OrderCustomer {
	if c == nil {
		return nil
	}
	return &OrderCustomer{
		ID:          c.ID,
		DisplayName: c.DisplayName(),
		TaxID:       c.TaxID,
		Email:       c.Email,
		Phone:       c.Phone,
		Address:     c.Address.Street,
		Commune:     c.Address.Commune,
		City:        c.Address.City,
	}
}
