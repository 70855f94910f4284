package catalog

import (
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/pozinox/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// DefaultMinimumStock is the reorder threshold for new products
const DefaultMinimumStock = 5

// DefaultUnitOfMeasure is used when a product has no explicit unit
const DefaultUnitOfMeasure = "unit"

// SteelType classifies the steel a product is made of
type SteelType string

const (
	SteelTypeStainless  SteelType = "stainless"
	SteelTypeCarbon     SteelType = "carbon"
	SteelTypeGalvanized SteelType = "galvanized"
	SteelTypeStructural SteelType = "structural"
)

// IsValid reports whether the steel type is known
func (s SteelType) IsValid() bool {
	switch s {
	case SteelTypeStainless, SteelTypeCarbon, SteelTypeGalvanized, SteelTypeStructural:
		return true
	}
	return false
}

// Dimensions holds the optional physical measurements of a product.
// Thickness, width and length are in millimetres, weight in kg per metre.
type Dimensions struct {
	Thickness      *decimal.Decimal
	Width          *decimal.Decimal
	Length         *decimal.Decimal
	WeightPerMeter *decimal.Decimal
}

func (d Dimensions) validate() error {
	for _, v := range []*decimal.Decimal{d.Thickness, d.Width, d.Length, d.WeightPerMeter} {
		if v != nil && v.IsNegative() {
			return shared.NewDomainError("INVALID_DIMENSIONS", "Dimensions cannot be negative")
		}
	}
	return nil
}

// Product is a sellable steel item
type Product struct {
	shared.BaseAggregateRoot
	Code          string
	Name          string
	Description   string
	CategoryID    uuid.UUID
	SteelType     SteelType
	Dimensions    Dimensions
	UnitPrice     decimal.Decimal
	PricePerMeter *decimal.Decimal
	PricePerKg    *decimal.Decimal
	StockLevel    int
	MinimumStock  int
	UnitOfMeasure string
	ImageKey      string
	Active        bool
}

// NewProduct creates an active product with default stock settings
func NewProduct(code, name string, categoryID uuid.UUID, steelType SteelType, unitPrice decimal.Decimal) (*Product, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	name = strings.TrimSpace(name)
	if err := validateProductCode(code); err != nil {
		return nil, err
	}
	if err := validateProductName(name); err != nil {
		return nil, err
	}
	if categoryID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CATEGORY", "Category is required")
	}
	if !steelType.IsValid() {
		return nil, shared.NewDomainError("INVALID_STEEL_TYPE", "Unknown steel type")
	}
	if unitPrice.IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Unit price cannot be negative")
	}

	product := &Product{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Code:              code,
		Name:              name,
		CategoryID:        categoryID,
		SteelType:         steelType,
		UnitPrice:         unitPrice,
		MinimumStock:      DefaultMinimumStock,
		UnitOfMeasure:     DefaultUnitOfMeasure,
		Active:            true,
	}
	product.AddDomainEvent(NewProductCreatedEvent(product))

	return product, nil
}

// Update changes the descriptive fields of the product
func (p *Product) Update(name, description string) error {
	name = strings.TrimSpace(name)
	if err := validateProductName(name); err != nil {
		return err
	}
	p.Name = name
	p.Description = description
	p.changed()
	return nil
}

// UpdateCode changes the product code
func (p *Product) UpdateCode(code string) error {
	code = strings.ToUpper(strings.TrimSpace(code))
	if err := validateProductCode(code); err != nil {
		return err
	}
	p.Code = code
	p.changed()
	return nil
}

// SetCategory moves the product to another category
func (p *Product) SetCategory(categoryID uuid.UUID) error {
	if categoryID == uuid.Nil {
		return shared.NewDomainError("INVALID_CATEGORY", "Category is required")
	}
	p.CategoryID = categoryID
	p.changed()
	return nil
}

// SetSteelType changes the steel classification
func (p *Product) SetSteelType(steelType SteelType) error {
	if !steelType.IsValid() {
		return shared.NewDomainError("INVALID_STEEL_TYPE", "Unknown steel type")
	}
	p.SteelType = steelType
	p.changed()
	return nil
}

// SetDimensions replaces the physical measurements
func (p *Product) SetDimensions(d Dimensions) error {
	if err := d.validate(); err != nil {
		return err
	}
	p.Dimensions = d
	p.changed()
	return nil
}

// SetPrices sets the per-unit price and the optional per-metre and per-kg prices
func (p *Product) SetPrices(unitPrice decimal.Decimal, perMeter, perKg *decimal.Decimal) error {
	if unitPrice.IsNegative() {
		return shared.NewDomainError("INVALID_PRICE", "Unit price cannot be negative")
	}
	if (perMeter != nil && perMeter.IsNegative()) || (perKg != nil && perKg.IsNegative()) {
		return shared.NewDomainError("INVALID_PRICE", "Prices cannot be negative")
	}
	p.UnitPrice = unitPrice
	p.PricePerMeter = perMeter
	p.PricePerKg = perKg
	p.changed()
	return nil
}

// SetStock sets the current stock level and the reorder threshold
func (p *Product) SetStock(level, minimum int) error {
	if level < 0 || minimum < 0 {
		return shared.NewDomainError("INVALID_STOCK", "Stock values cannot be negative")
	}
	p.StockLevel = level
	p.MinimumStock = minimum
	p.changed()
	return nil
}

// SetUnitOfMeasure sets the sale unit, falling back to the default unit
func (p *Product) SetUnitOfMeasure(unit string) {
	unit = strings.TrimSpace(unit)
	if unit == "" {
		unit = DefaultUnitOfMeasure
	}
	p.UnitOfMeasure = unit
	p.changed()
}

// SetImage stores the object storage key of the product image
func (p *Product) SetImage(key string) {
	p.ImageKey = key
	p.changed()
}

// SetActive toggles product visibility
func (p *Product) SetActive(active bool) {
	p.Active = active
	p.changed()
}

// IsLowStock reports whether stock has fallen to or below the minimum
func (p *Product) IsLowStock() bool {
	return p.StockLevel <= p.MinimumStock
}

// MarkDeleted records the deletion event before the repository removes the row
func (p *Product) MarkDeleted() {
	p.AddDomainEvent(NewProductDeletedEvent(p))
}

func (p *Product) changed() {
	p.Touch()
	p.IncrementVersion()
	if len(p.GetDomainEvents()) == 0 || p.GetDomainEvents()[len(p.GetDomainEvents())-1].EventType() != EventTypeProductUpdated {
		p.AddDomainEvent(NewProductUpdatedEvent(p))
	}
}

func validateProductCode(code string) error {
	if code == "" {
		return shared.NewDomainError("INVALID_CODE", "Product code cannot be empty")
	}
	if len(code) > 50 {
		return shared.NewDomainError("INVALID_CODE", "Product code cannot exceed 50 characters")
	}
	return nil
}

func validateProductName(name string) error {
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Product name cannot be empty")
	}
	if utf8.RuneCountInString(name) > 200 {
		return shared.NewDomainError("INVALID_NAME", "Product name cannot exceed 200 characters")
	}
	return nil
}
