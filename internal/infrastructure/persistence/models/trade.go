package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/pozinox/backend/internal/domain/shared"
	"github.com/pozinox/backend/internal/domain/trade"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// OrderModel is the persistence model for the Order aggregate root.
type OrderModel struct {
	AggregateModel
	OrderNumber         string              `gorm:"type:varchar(20);not null;uniqueIndex"`
	CustomerID          uuid.UUID           `gorm:"type:uuid;not null;index"`
	Status              trade.OrderStatus   `gorm:"type:varchar(20);not null;index"`
	PaymentMethod       trade.PaymentMethod `gorm:"type:varchar(20)"`
	PaymentStatus       trade.PaymentStatus `gorm:"type:varchar(20);not null;index"`
	PaymentReference    string              `gorm:"type:varchar(100)"`
	PaymentPreferenceID string              `gorm:"type:varchar(100);index"`
	Subtotal            decimal.Decimal     `gorm:"type:decimal(12,2);not null"`
	Discount            decimal.Decimal     `gorm:"type:decimal(12,2);not null"`
	Tax                 decimal.Decimal     `gorm:"type:decimal(12,2);not null"`
	Total               decimal.Decimal     `gorm:"type:decimal(12,2);not null"`
	Notes               string              `gorm:"type:text"`
	InternalNotes       string              `gorm:"type:text"`
	DeliveryDate        *time.Time
	FinalizedAt         *time.Time
	PaidAt              *time.Time
	Lines               []OrderLineModel `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for GORM
func (OrderModel) TableName() string {
	return "orders"
}

// ToDomain converts the persistence model to a domain Order entity.
func (m *OrderModel) ToDomain() *trade.Order {
	order := &trade.Order{
		BaseAggregateRoot:   m.ToAggregateRoot(),
		OrderNumber:         m.OrderNumber,
		CustomerID:          m.CustomerID,
		Status:              m.Status,
		PaymentMethod:       m.PaymentMethod,
		PaymentStatus:       m.PaymentStatus,
		PaymentReference:    m.PaymentReference,
		PaymentPreferenceID: m.PaymentPreferenceID,
		Subtotal:            m.Subtotal,
		Discount:            m.Discount,
		Tax:                 m.Tax,
		Total:               m.Total,
		Notes:               m.Notes,
		InternalNotes:       m.InternalNotes,
		DeliveryDate:        m.DeliveryDate,
		FinalizedAt:         m.FinalizedAt,
		PaidAt:              m.PaidAt,
		Lines:               make([]trade.OrderLine, len(m.Lines)),
	}
	for i := range m.Lines {
		order.Lines[i] = *m.Lines[i].ToDomain()
	}
	return order
}

// FromDomain populates the persistence model from a domain Order entity.
func (m *OrderModel) FromDomain(o *trade.Order) {
	m.FromDomainAggregateRoot(o.BaseAggregateRoot)
	m.OrderNumber = o.OrderNumber
	m.CustomerID = o.CustomerID
	m.Status = o.Status
	m.PaymentMethod = o.PaymentMethod
	m.PaymentStatus = o.PaymentStatus
	m.PaymentReference = o.PaymentReference
	m.PaymentPreferenceID = o.PaymentPreferenceID
	m.Subtotal = o.Subtotal
	m.Discount = o.Discount
	m.Tax = o.Tax
	m.Total = o.Total
	m.Notes = o.Notes
	m.InternalNotes = o.InternalNotes
	m.DeliveryDate = o.DeliveryDate
	m.FinalizedAt = o.FinalizedAt
	m.PaidAt = o.PaidAt
	m.Lines = make([]OrderLineModel, len(o.Lines))
	for i := range o.Lines {
		m.Lines[i].FromDomain(&o.Lines[i])
	}
}

// OrderModelFromDomain creates a new persistence model from a domain Order entity.
func OrderModelFromDomain(o *trade.Order) *OrderModel {
	m := &OrderModel{}
	m.FromDomain(o)
	return m
}

// OrderLineModel is the persistence model for an order line.
type OrderLineModel struct {
	BaseModel
	OrderID         uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_order_lines_order_product"`
	ProductID       uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_order_lines_order_product;index"`
	ProductCode     string          `gorm:"type:varchar(50);not null"`
	ProductName     string          `gorm:"type:varchar(200);not null"`
	Quantity        int             `gorm:"not null"`
	UnitPrice       decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	DiscountPercent decimal.Decimal `gorm:"type:decimal(5,2);not null"`
	Subtotal        decimal.Decimal `gorm:"type:decimal(12,2);not null"`
}

// TableName returns the table name for GORM
func (OrderLineModel) TableName() string {
	return "order_lines"
}

// BeforeSave recomputes the subtotal from price, discount and quantity
func (m *OrderLineModel) BeforeSave(tx *gorm.DB) error {
	m.Subtotal = trade.ComputeLineSubtotal(m.UnitPrice, m.DiscountPercent, m.Quantity)
	return nil
}

// ToDomain converts the persistence model to a domain OrderLine.
func (m *OrderLineModel) ToDomain() *trade.OrderLine {
	return &trade.OrderLine{
		ID:              m.ID,
		OrderID:         m.OrderID,
		ProductID:       m.ProductID,
		ProductCode:     m.ProductCode,
		ProductName:     m.ProductName,
		Quantity:        m.Quantity,
		UnitPrice:       m.UnitPrice,
		DiscountPercent: m.DiscountPercent,
		Subtotal:        m.Subtotal,
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}
}

// FromDomain populates the persistence model from a domain OrderLine.
func (m *OrderLineModel) FromDomain(l *trade.OrderLine) {
	m.FromDomainBaseEntity(shared.BaseEntity{ID: l.ID, CreatedAt: l.CreatedAt, UpdatedAt: l.UpdatedAt})
	m.OrderID = l.OrderID
	m.ProductID = l.ProductID
	m.ProductCode = l.ProductCode
	m.ProductName = l.ProductName
	m.Quantity = l.Quantity
	m.UnitPrice = l.UnitPrice
	m.DiscountPercent = l.DiscountPercent
	m.Subtotal = l.Subtotal
}

// OrderSequenceModel stores the last order number issued per calendar day.
// Day is formatted YYYYMMDD.
type OrderSequenceModel struct {
	Day       string    `gorm:"type:varchar(8);primaryKey"`
	LastValue int64     `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (OrderSequenceModel) TableName() string {
	return "order_sequences"
}
