package partner

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/pozinox/backend/internal/domain/shared"
)

// AggregateTypeCustomer is the aggregate type of customer events
const AggregateTypeCustomer = "Customer"

// Event type constants
const (
	EventTypeCustomerCreated = "CustomerCreated"
	EventTypeCustomerUpdated = "CustomerUpdated"
	EventTypeCustomerDeleted = "CustomerDeleted"
)

// CustomerEvent is published when a customer is created, edited or removed
type CustomerEvent struct {
	shared.BaseDomainEvent
	CustomerID  uuid.UUID `json:"customer_id"`
	DisplayName string    `json:"display_name"`
	TaxID       string    `json:"tax_id"`
}

func newCustomerEvent(eventType string, c *Customer) *CustomerEvent {
	return &CustomerEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(eventType, AggregateTypeCustomer, c.ID),
		CustomerID:      c.ID,
		DisplayName:     c.DisplayName(),
		TaxID:           c.TaxID,
	}
}

func NewCustomerCreatedEvent(c *Customer) *CustomerEvent {
	return newCustomerEvent(EventTypeCustomerCreated, c)
}

func NewCustomerUpdatedEvent(c *Customer) *CustomerEvent {
	return newCustomerEvent(EventTypeCustomerUpdated, c)
}

func NewCustomerDeletedEvent(c *Customer) *CustomerEvent {
	return newCustomerEvent(EventTypeCustomerDeleted, c)
}

func (e *CustomerEvent) Describe() string {
	switch e.EventType() {
	case EventTypeCustomerCreated:
		return fmt.Sprintf("Customer created: %s (%s)", e.DisplayName, e.TaxID)
	case EventTypeCustomerDeleted:
		return fmt.Sprintf("Customer deleted: %s (%s)", e.DisplayName, e.TaxID)
	default:
		return fmt.Sprintf("Customer updated: %s (%s)", e.DisplayName, e.TaxID)
	}
}
