package models

import (
	"github.com/google/uuid"
	"github.com/pozinox/backend/internal/domain/catalog"
	"github.com/shopspring/decimal"
)

// CategoryModel is the persistence model for the Category domain entity.
type CategoryModel struct {
	AggregateModel
	Name        string `gorm:"type:varchar(100);not null;uniqueIndex"`
	Description string `gorm:"type:text"`
	Active      bool   `gorm:"not null"`
}

// TableName returns the table name for GORM
func (CategoryModel) TableName() string {
	return "categories"
}

// ToDomain converts the persistence model to a domain Category entity.
func (m *CategoryModel) ToDomain() *catalog.Category {
	return &catalog.Category{
		BaseAggregateRoot: m.ToAggregateRoot(),
		Name:              m.Name,
		Description:       m.Description,
		Active:            m.Active,
	}
}

// FromDomain populates the persistence model from a domain Category entity.
func (m *CategoryModel) FromDomain(c *catalog.Category) {
	m.FromDomainAggregateRoot(c.BaseAggregateRoot)
	m.Name = c.Name
	m.Description = c.Description
	m.Active = c.Active
}

// CategoryModelFromDomain creates a new persistence model from a domain Category entity.
func CategoryModelFromDomain(c *catalog.Category) *CategoryModel {
	m := &CategoryModel{}
	m.FromDomain(c)
	return m
}

// ProductModel is the persistence model for the Product domain entity.
type ProductModel struct {
	AggregateModel
	Code           string            `gorm:"type:varchar(50);not null;uniqueIndex"`
	Name           string            `gorm:"type:varchar(200);not null"`
	Description    string            `gorm:"type:text"`
	CategoryID     uuid.UUID         `gorm:"type:uuid;not null;index"`
	SteelType      catalog.SteelType `gorm:"type:varchar(20);not null;index"`
	Thickness      *decimal.Decimal  `gorm:"type:decimal(10,2)"`
	Width          *decimal.Decimal  `gorm:"type:decimal(10,2)"`
	Length         *decimal.Decimal  `gorm:"type:decimal(10,2)"`
	WeightPerMeter *decimal.Decimal  `gorm:"type:decimal(10,3)"`
	UnitPrice      decimal.Decimal   `gorm:"type:decimal(12,2);not null"`
	PricePerMeter  *decimal.Decimal  `gorm:"type:decimal(12,2)"`
	PricePerKg     *decimal.Decimal  `gorm:"type:decimal(12,2)"`
	StockLevel     int               `gorm:"not null"`
	MinimumStock   int               `gorm:"not null"`
	UnitOfMeasure  string            `gorm:"type:varchar(20);not null"`
	ImageKey       string            `gorm:"type:varchar(255)"`
	Active         bool              `gorm:"not null;index"`
}

// TableName returns the table name for GORM
func (ProductModel) TableName() string {
	return "products"
}

// ToDomain converts the persistence model to a domain Product entity.
func (m *ProductModel) ToDomain() *catalog.Product {
	return &catalog.Product{
		BaseAggregateRoot: m.ToAggregateRoot(),
		Code:              m.Code,
		Name:              m.Name,
		Description:       m.Description,
		CategoryID:        m.CategoryID,
		SteelType:         m.SteelType,
		Dimensions: catalog.Dimensions{
			Thickness:      m.Thickness,
			Width:          m.Width,
			Length:         m.Length,
			WeightPerMeter: m.WeightPerMeter,
		},
		UnitPrice:     m.UnitPrice,
		PricePerMeter: m.PricePerMeter,
		PricePerKg:    m.PricePerKg,
		StockLevel:    m.StockLevel,
		MinimumStock:  m.MinimumStock,
		UnitOfMeasure: m.UnitOfMeasure,
		ImageKey:      m.ImageKey,
		Active:        m.Active,
	}
}

// FromDomain populates the persistence model from a domain Product entity.
func (m *ProductModel) FromDomain(p *catalog.Product) {
	m.FromDomainAggregateRoot(p.BaseAggregateRoot)
	m.Code = p.Code
	m.Name = p.Name
	m.Description = p.Description
	m.CategoryID = p.CategoryID
	m.SteelType = p.SteelType
	m.Thickness = p.Dimensions.Thickness
	m.Width = p.Dimensions.Width
	m.Length = p.Dimensions.Length
	m.WeightPerMeter = p.Dimensions.WeightPerMeter
	m.UnitPrice = p.UnitPrice
	m.PricePerMeter = p.PricePerMeter
	m.PricePerKg = p.PricePerKg
	m.StockLevel = p.StockLevel
	m.MinimumStock = p.MinimumStock
	m.UnitOfMeasure = p.UnitOfMeasure
	m.ImageKey = p.ImageKey
	m.Active = p.Active
}

// ProductModelFromDomain creates a new persistence model from a domain Product entity.
func ProductModelFromDomain(p *catalog.Product) *ProductModel {
	m := &ProductModel{}
	m.FromDomain(p)
	return m
}
