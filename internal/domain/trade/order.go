package trade

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pozinox/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// ErrOrderAlreadyPaid is returned for changes that would alter the amount of a paid order
var ErrOrderAlreadyPaid = shared.NewDomainError("ALREADY_PAID", "Order is already paid")

// OrderStatus represents the fulfilment status of an order
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusConfirmed OrderStatus = "confirmed"
	OrderStatusPreparing OrderStatus = "preparing"
	OrderStatusReady     OrderStatus = "ready"
	OrderStatusShipped   OrderStatus = "shipped"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// IsValid checks if the status is a valid OrderStatus
func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusPending, OrderStatusConfirmed, OrderStatusPreparing, OrderStatusReady,
		OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

// CanTransitionTo checks if the status can transition to the target status
func (s OrderStatus) CanTransitionTo(target OrderStatus) bool {
	switch s {
	case OrderStatusPending:
		return target == OrderStatusConfirmed || target == OrderStatusCancelled
	case OrderStatusConfirmed:
		return target == OrderStatusPreparing || target == OrderStatusCancelled
	case OrderStatusPreparing:
		return target == OrderStatusReady || target == OrderStatusCancelled
	case OrderStatusReady:
		return target == OrderStatusShipped || target == OrderStatusDelivered || target == OrderStatusCancelled
	case OrderStatusShipped:
		return target == OrderStatusDelivered
	case OrderStatusDelivered, OrderStatusCancelled:
		return false // Terminal states
	}
	return false
}

// PaymentMethod is how the customer pays
type PaymentMethod string

const (
	PaymentMethodNone     PaymentMethod = ""
	PaymentMethodCash     PaymentMethod = "cash"
	PaymentMethodTransfer PaymentMethod = "transfer"
	PaymentMethodCard     PaymentMethod = "card"
	PaymentMethodCheck    PaymentMethod = "check"
)

// IsValid reports whether the method is selectable
func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentMethodCash, PaymentMethodTransfer, PaymentMethodCard, PaymentMethodCheck:
		return true
	}
	return false
}

// PaymentStatus tracks the online payment outcome
type PaymentStatus string

const (
	PaymentStatusNone      PaymentStatus = "none"
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusInProcess PaymentStatus = "in_process"
	PaymentStatusApproved  PaymentStatus = "approved"
	PaymentStatusRejected  PaymentStatus = "rejected"
)

// Order is a customer order. While pending and not finalized it is a quote
// whose lines can still be edited.
type Order struct {
	shared.BaseAggregateRoot
	OrderNumber         string
	CustomerID          uuid.UUID
	Status              OrderStatus
	PaymentMethod       PaymentMethod
	PaymentStatus       PaymentStatus
	PaymentReference    string
	PaymentPreferenceID string
	Subtotal            decimal.Decimal
	Discount            decimal.Decimal
	Tax                 decimal.Decimal
	Total               decimal.Decimal
	Notes               string
	InternalNotes       string
	DeliveryDate        *time.Time
	FinalizedAt         *time.Time
	PaidAt              *time.Time
	Lines               []OrderLine
}

// NewQuote creates an empty pending order carrying an already reserved number
func NewQuote(orderNumber string, customerID uuid.UUID) (*Order, error) {
	if orderNumber == "" {
		return nil, shared.NewDomainError("INVALID_ORDER_NUMBER", "Order number cannot be empty")
	}
	if customerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CUSTOMER", "Customer ID cannot be empty")
	}

	order := &Order{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		OrderNumber:       orderNumber,
		CustomerID:        customerID,
		Status:            OrderStatusPending,
		PaymentStatus:     PaymentStatusNone,
		Subtotal:          decimal.Zero,
		Discount:          decimal.Zero,
		Tax:               decimal.Zero,
		Total:             decimal.Zero,
		Lines:             make([]OrderLine, 0),
	}
	order.AddDomainEvent(NewOrderCreatedEvent(order))

	return order, nil
}

// IsQuote reports whether the order is still an editable quote
func (o *Order) IsQuote() bool {
	return o.Status == OrderStatusPending && o.FinalizedAt == nil
}

// IsFinalized reports whether the quote has been closed for editing
func (o *Order) IsFinalized() bool {
	return o.FinalizedAt != nil
}

// IsPaid reports whether an online payment was approved
func (o *Order) IsPaid() bool {
	return o.PaymentStatus == PaymentStatusApproved
}

// AddProduct adds a product line, merging into an existing line for the same product
func (o *Order) AddProduct(productID uuid.UUID, productCode, productName string, unitPrice decimal.Decimal, quantity int) (*OrderLine, error) {
	if err := o.ensureEditable(); err != nil {
		return nil, err
	}
	if quantity < 1 {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be at least 1")
	}

	for idx := range o.Lines {
		if o.Lines[idx].ProductID == productID {
			if err := o.Lines[idx].SetQuantity(o.Lines[idx].Quantity + quantity); err != nil {
				return nil, err
			}
			o.Touch()
			return &o.Lines[idx], nil
		}
	}

	line, err := NewOrderLine(o.ID, productID, productCode, productName, unitPrice, quantity)
	if err != nil {
		return nil, err
	}
	o.Lines = append(o.Lines, *line)
	o.Touch()

	return &o.Lines[len(o.Lines)-1], nil
}

// UpdateLineQuantity changes a line quantity. Zero removes the line.
func (o *Order) UpdateLineQuantity(lineID uuid.UUID, quantity int) error {
	if err := o.ensureEditable(); err != nil {
		return err
	}
	if quantity < 0 {
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity cannot be negative")
	}
	if quantity == 0 {
		return o.RemoveLine(lineID)
	}

	line := o.FindLine(lineID)
	if line == nil {
		return shared.NewDomainError("LINE_NOT_FOUND", "Order line not found")
	}
	if err := line.SetQuantity(quantity); err != nil {
		return err
	}
	o.Touch()
	return nil
}

// SetLineDiscount sets the discount percentage of a line
func (o *Order) SetLineDiscount(lineID uuid.UUID, percent decimal.Decimal) error {
	if o.IsPaid() {
		return ErrOrderAlreadyPaid
	}
	if o.Status == OrderStatusDelivered || o.Status == OrderStatusCancelled {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot change discounts on a %s order", o.Status))
	}
	line := o.FindLine(lineID)
	if line == nil {
		return shared.NewDomainError("LINE_NOT_FOUND", "Order line not found")
	}
	if err := line.SetDiscount(percent); err != nil {
		return err
	}
	o.Touch()
	return nil
}

// RemoveLine removes a line from the quote
func (o *Order) RemoveLine(lineID uuid.UUID) error {
	if err := o.ensureEditable(); err != nil {
		return err
	}
	for idx := range o.Lines {
		if o.Lines[idx].ID == lineID {
			o.Lines = append(o.Lines[:idx], o.Lines[idx+1:]...)
			o.Touch()
			return nil
		}
	}
	return shared.NewDomainError("LINE_NOT_FOUND", "Order line not found")
}

// FindLine returns the line with the given ID, or nil
func (o *Order) FindLine(lineID uuid.UUID) *OrderLine {
	for idx := range o.Lines {
		if o.Lines[idx].ID == lineID {
			return &o.Lines[idx]
		}
	}
	return nil
}

// SetDiscount sets the order-level discount amount
func (o *Order) SetDiscount(amount decimal.Decimal) error {
	if amount.IsNegative() {
		return shared.NewDomainError("INVALID_DISCOUNT", "Discount cannot be negative")
	}
	if o.IsPaid() && !amount.Equal(o.Discount) {
		return ErrOrderAlreadyPaid
	}
	o.Discount = amount
	o.Touch()
	return nil
}

// RecalculateTotals derives subtotal, tax and total from the lines.
// vatPercent is the VAT rate in percent (19 for Chile).
func (o *Order) RecalculateTotals(vatPercent decimal.Decimal) {
	subtotal := decimal.Zero
	for idx := range o.Lines {
		o.Lines[idx].Recalculate()
		subtotal = subtotal.Add(o.Lines[idx].Subtotal)
	}
	if o.Discount.GreaterThan(subtotal) {
		o.Discount = subtotal
	}
	taxable := subtotal.Sub(o.Discount)
	o.Subtotal = subtotal
	o.Tax = taxable.Mul(vatPercent).Div(hundred).Round(0)
	o.Total = taxable.Add(o.Tax)
}

// Finalize closes the quote for editing and fixes the delivery date
func (o *Order) Finalize(deliveryDate time.Time) error {
	if !o.IsQuote() {
		return shared.NewDomainError("QUOTE_NOT_EDITABLE", "Quote is already finalized")
	}
	if len(o.Lines) == 0 {
		return shared.NewDomainError("NO_LINES", "Cannot finalize a quote without products")
	}

	now := time.Now()
	o.FinalizedAt = &now
	o.DeliveryDate = &deliveryDate
	o.UpdatedAt = now
	o.AddDomainEvent(NewOrderFinalizedEvent(o))

	return nil
}

// SelectPaymentMethod records how a finalized quote will be paid
func (o *Order) SelectPaymentMethod(method PaymentMethod) error {
	if !method.IsValid() {
		return shared.NewDomainError("INVALID_PAYMENT_METHOD", "Unknown payment method")
	}
	if !o.IsFinalized() {
		return shared.NewDomainError("QUOTE_NOT_FINALIZED", "Quote must be finalized before selecting a payment method")
	}
	if o.IsPaid() {
		return ErrOrderAlreadyPaid
	}
	if o.Status == OrderStatusCancelled {
		return shared.NewDomainError("INVALID_STATE", "Order is cancelled")
	}
	o.PaymentMethod = method
	o.Touch()
	return nil
}

// StartOnlinePayment records the gateway preference created for this order
func (o *Order) StartOnlinePayment(preferenceID string) error {
	if !o.IsFinalized() {
		return shared.NewDomainError("QUOTE_NOT_FINALIZED", "Quote must be finalized before paying")
	}
	if o.IsPaid() {
		return ErrOrderAlreadyPaid
	}
	if o.Status == OrderStatusCancelled {
		return shared.NewDomainError("INVALID_STATE", "Order is cancelled")
	}
	if o.Total.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_AMOUNT", "Order total must be positive")
	}
	o.PaymentMethod = PaymentMethodCard
	o.PaymentStatus = PaymentStatusPending
	o.PaymentPreferenceID = preferenceID
	o.Touch()
	return nil
}

// MarkPaymentApproved records an approved card payment and confirms a pending order
func (o *Order) MarkPaymentApproved(reference string, paidAt time.Time) error {
	if o.IsPaid() {
		// gateways redeliver notifications
		return nil
	}
	if o.Status == OrderStatusCancelled {
		return shared.NewDomainError("INVALID_STATE", "Order is cancelled")
	}
	o.PaymentMethod = PaymentMethodCard
	o.PaymentStatus = PaymentStatusApproved
	o.PaymentReference = reference
	o.PaidAt = &paidAt
	o.Touch()
	o.AddDomainEvent(NewOrderPaidEvent(o))

	if o.Status == OrderStatusPending {
		if o.FinalizedAt == nil {
			o.FinalizedAt = &paidAt
		}
		return o.ChangeStatus(OrderStatusConfirmed)
	}
	return nil
}

// MarkPaymentRejected records a rejected card payment
func (o *Order) MarkPaymentRejected(reference string) {
	if o.IsPaid() {
		return
	}
	o.PaymentStatus = PaymentStatusRejected
	o.PaymentReference = reference
	o.Touch()
}

// MarkPaymentInProcess records a payment still being processed by the gateway
func (o *Order) MarkPaymentInProcess(reference string) {
	if o.IsPaid() {
		return
	}
	o.PaymentStatus = PaymentStatusInProcess
	o.PaymentReference = reference
	o.Touch()
}

// ChangeStatus moves the order along the fulfilment state machine
func (o *Order) ChangeStatus(target OrderStatus) error {
	if !target.IsValid() {
		return shared.NewDomainError("INVALID_STATUS", "Unknown order status")
	}
	if !o.Status.CanTransitionTo(target) {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot change order status from %s to %s", o.Status, target))
	}
	if o.Status == OrderStatusPending && target == OrderStatusConfirmed && !o.IsFinalized() {
		return shared.NewDomainError("QUOTE_NOT_FINALIZED", "Quote must be finalized before confirmation")
	}

	from := o.Status
	o.Status = target
	o.Touch()
	o.AddDomainEvent(NewOrderStatusChangedEvent(o, from, target))

	return nil
}

// UpdateNotes sets the customer-facing and internal notes
func (o *Order) UpdateNotes(notes, internalNotes string) {
	o.Notes = notes
	o.InternalNotes = internalNotes
	o.Touch()
}

// SetDeliveryDate changes the planned delivery date
func (o *Order) SetDeliveryDate(date time.Time) {
	o.DeliveryDate = &date
	o.Touch()
}

// ItemCount returns the total quantity across lines
func (o *Order) ItemCount() int {
	n := 0
	for _, l := range o.Lines {
		n += l.Quantity
	}
	return n
}

func (o *Order) ensureEditable() error {
	if !o.IsQuote() {
		return shared.NewDomainError("QUOTE_NOT_EDITABLE", "Only unfinalized pending quotes can be edited")
	}
	return nil
}
