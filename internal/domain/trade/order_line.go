package trade

import (
	"time"

	"github.com/google/uuid"
	"github.com/pozinox/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// ComputeLineSubtotal returns unitPrice * (1 - discountPercent/100) * quantity
func ComputeLineSubtotal(unitPrice, discountPercent decimal.Decimal, quantity int) decimal.Decimal {
	factor := decimal.NewFromInt(1).Sub(discountPercent.Div(hundred))
	return unitPrice.Mul(factor).Mul(decimal.NewFromInt(int64(quantity)))
}

// OrderLine is one product on an order. ProductCode, ProductName and UnitPrice
// are snapshots taken when the product was added.
type OrderLine struct {
	ID              uuid.UUID
	OrderID         uuid.UUID
	ProductID       uuid.UUID
	ProductCode     string
	ProductName     string
	Quantity        int
	UnitPrice       decimal.Decimal
	DiscountPercent decimal.Decimal
	Subtotal        decimal.Decimal
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// NewOrderLine creates a line with its subtotal computed
func NewOrderLine(orderID, productID uuid.UUID, productCode, productName string, unitPrice decimal.Decimal, quantity int) (*OrderLine, error) {
	if productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}
	if quantity < 1 {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be at least 1")
	}
	if unitPrice.IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Unit price cannot be negative")
	}

	now := time.Now()
	line := &OrderLine{
		ID:              uuid.New(),
		OrderID:         orderID,
		ProductID:       productID,
		ProductCode:     productCode,
		ProductName:     productName,
		Quantity:        quantity,
		UnitPrice:       unitPrice,
		DiscountPercent: decimal.Zero,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	line.Recalculate()
	return line, nil
}

// Recalculate refreshes the subtotal from price, discount and quantity
func (l *OrderLine) Recalculate() {
	l.Subtotal = ComputeLineSubtotal(l.UnitPrice, l.DiscountPercent, l.Quantity)
}

// SetQuantity changes the quantity and recomputes the subtotal
func (l *OrderLine) SetQuantity(quantity int) error {
	if quantity < 0 {
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity cannot be negative")
	}
	l.Quantity = quantity
	l.UpdatedAt = time.Now()
	l.Recalculate()
	return nil
}

// SetDiscount sets the discount percentage, bounded to [0, 100]
func (l *OrderLine) SetDiscount(percent decimal.Decimal) error {
	if percent.IsNegative() || percent.GreaterThan(hundred) {
		return shared.NewDomainError("INVALID_DISCOUNT", "Discount must be between 0 and 100")
	}
	l.DiscountPercent = percent
	l.UpdatedAt = time.Now()
	l.Recalculate()
	return nil
}

// SetUnitPrice changes the unit price and recomputes the subtotal
func (l *OrderLine) SetUnitPrice(price decimal.Decimal) error {
	if price.IsNegative() {
		return shared.NewDomainError("INVALID_PRICE", "Unit price cannot be negative")
	}
	l.UnitPrice = price
	l.UpdatedAt = time.Now()
	l.Recalculate()
	return nil
}
