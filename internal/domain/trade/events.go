package trade

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/pozinox/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Aggregate type constant
const AggregateTypeOrder = "Order"

// Event type constants
const (
	EventTypeOrderCreated       = "OrderCreated"
	EventTypeOrderFinalized     = "OrderFinalized"
	EventTypeOrderStatusChanged = "OrderStatusChanged"
	EventTypeOrderPaid          = "OrderPaid"
)

// OrderCreatedEvent is raised when a new quote is opened
type OrderCreatedEvent struct {
	shared.BaseDomainEvent
	OrderID     uuid.UUID `json:"order_id"`
	OrderNumber string    `json:"order_number"`
	CustomerID  uuid.UUID `json:"customer_id"`
}

func NewOrderCreatedEvent(o *Order) *OrderCreatedEvent {
	return &OrderCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderCreated, AggregateTypeOrder, o.ID),
		OrderID:         o.ID,
		OrderNumber:     o.OrderNumber,
		CustomerID:      o.CustomerID,
	}
}

func (e *OrderCreatedEvent) Describe() string {
	return fmt.Sprintf("Quote %s created", e.OrderNumber)
}

// OrderFinalizedEvent is raised when a quote is closed for editing
type OrderFinalizedEvent struct {
	shared.BaseDomainEvent
	OrderID     uuid.UUID       `json:"order_id"`
	OrderNumber string          `json:"order_number"`
	CustomerID  uuid.UUID       `json:"customer_id"`
	Total       decimal.Decimal `json:"total"`
}

func NewOrderFinalizedEvent(o *Order) *OrderFinalizedEvent {
	return &OrderFinalizedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderFinalized, AggregateTypeOrder, o.ID),
		OrderID:         o.ID,
		OrderNumber:     o.OrderNumber,
		CustomerID:      o.CustomerID,
		Total:           o.Total,
	}
}

func (e *OrderFinalizedEvent) Describe() string {
	return fmt.Sprintf("Quote %s finalized, total %s", e.OrderNumber, e.Total.StringFixed(0))
}

// OrderStatusChangedEvent is raised on every fulfilment status change
type OrderStatusChangedEvent struct {
	shared.BaseDomainEvent
	OrderID     uuid.UUID   `json:"order_id"`
	OrderNumber string      `json:"order_number"`
	CustomerID  uuid.UUID   `json:"customer_id"`
	From        OrderStatus `json:"from"`
	To          OrderStatus `json:"to"`
}

func NewOrderStatusChangedEvent(o *Order, from, to OrderStatus) *OrderStatusChangedEvent {
	return &OrderStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderStatusChanged, AggregateTypeOrder, o.ID),
		OrderID:         o.ID,
		OrderNumber:     o.OrderNumber,
		CustomerID:      o.CustomerID,
		From:            from,
		To:              to,
	}
}

func (e *OrderStatusChangedEvent) Describe() string {
	return fmt.Sprintf("Order %s changed from %s to %s", e.OrderNumber, e.From, e.To)
}

// OrderPaidEvent is raised when an online payment is approved
type OrderPaidEvent struct {
	shared.BaseDomainEvent
	OrderID          uuid.UUID       `json:"order_id"`
	OrderNumber      string          `json:"order_number"`
	CustomerID       uuid.UUID       `json:"customer_id"`
	PaymentReference string          `json:"payment_reference"`
	Total            decimal.Decimal `json:"total"`
}

func NewOrderPaidEvent(o *Order) *OrderPaidEvent {
	return &OrderPaidEvent{
		BaseDomainEvent:  shared.NewBaseDomainEvent(EventTypeOrderPaid, AggregateTypeOrder, o.ID),
		OrderID:          o.ID,
		OrderNumber:      o.OrderNumber,
		CustomerID:       o.CustomerID,
		PaymentReference: o.PaymentReference,
		Total:            o.Total,
	}
}

func (e *OrderPaidEvent) Describe() string {
	return fmt.Sprintf("Order %s paid (payment %s)", e.OrderNumber, e.PaymentReference)
}
