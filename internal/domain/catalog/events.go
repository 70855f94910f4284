package catalog

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/pozinox/backend/internal/domain/shared"
)

// Aggregate type constants
const (
	AggregateTypeCategory = "Category"
	AggregateTypeProduct  = "Product"
)

// Event type constants
const (
	EventTypeCategoryCreated = "CategoryCreated"
	EventTypeCategoryUpdated = "CategoryUpdated"
	EventTypeCategoryDeleted = "CategoryDeleted"
	EventTypeProductCreated  = "ProductCreated"
	EventTypeProductUpdated  = "ProductUpdated"
	EventTypeProductDeleted  = "ProductDeleted"
)

// CategoryCreatedEvent is published when a new category is created
type CategoryCreatedEvent struct {
	shared.BaseDomainEvent
	CategoryID uuid.UUID `json:"category_id"`
	Name       string    `json:"name"`
}

func NewCategoryCreatedEvent(c *Category) *CategoryCreatedEvent {
	return &CategoryCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeCategoryCreated, AggregateTypeCategory, c.ID),
		CategoryID:      c.ID,
		Name:            c.Name,
	}
}

func (e *CategoryCreatedEvent) Describe() string {
	return fmt.Sprintf("Category created: %s", e.Name)
}

// CategoryUpdatedEvent is published when a category is edited
type CategoryUpdatedEvent struct {
	shared.BaseDomainEvent
	CategoryID uuid.UUID `json:"category_id"`
	Name       string    `json:"name"`
	Active     bool      `json:"active"`
}

func NewCategoryUpdatedEvent(c *Category) *CategoryUpdatedEvent {
	return &CategoryUpdatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeCategoryUpdated, AggregateTypeCategory, c.ID),
		CategoryID:      c.ID,
		Name:            c.Name,
		Active:          c.Active,
	}
}

func (e *CategoryUpdatedEvent) Describe() string {
	return fmt.Sprintf("Category updated: %s", e.Name)
}

// CategoryDeletedEvent is published when a category and its products are removed
type CategoryDeletedEvent struct {
	shared.BaseDomainEvent
	CategoryID   uuid.UUID `json:"category_id"`
	Name         string    `json:"name"`
	ProductCount int64     `json:"product_count"`
}

func NewCategoryDeletedEvent(c *Category, productCount int64) *CategoryDeletedEvent {
	return &CategoryDeletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeCategoryDeleted, AggregateTypeCategory, c.ID),
		CategoryID:      c.ID,
		Name:            c.Name,
		ProductCount:    productCount,
	}
}

func (e *CategoryDeletedEvent) Describe() string {
	return fmt.Sprintf("Category deleted: %s (%d products)", e.Name, e.ProductCount)
}

// ProductCreatedEvent is published when a product is added to the catalog
type ProductCreatedEvent struct {
	shared.BaseDomainEvent
	ProductID uuid.UUID `json:"product_id"`
	Code      string    `json:"code"`
	Name      string    `json:"name"`
}

func NewProductCreatedEvent(p *Product) *ProductCreatedEvent {
	return &ProductCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeProductCreated, AggregateTypeProduct, p.ID),
		ProductID:       p.ID,
		Code:            p.Code,
		Name:            p.Name,
	}
}

func (e *ProductCreatedEvent) Describe() string {
	return fmt.Sprintf("Product created: %s %s", e.Code, e.Name)
}

// ProductUpdatedEvent is published when a product is edited
type ProductUpdatedEvent struct {
	shared.BaseDomainEvent
	ProductID uuid.UUID `json:"product_id"`
	Code      string    `json:"code"`
}

func NewProductUpdatedEvent(p *Product) *ProductUpdatedEvent {
	return &ProductUpdatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeProductUpdated, AggregateTypeProduct, p.ID),
		ProductID:       p.ID,
		Code:            p.Code,
	}
}

func (e *ProductUpdatedEvent) Describe() string {
	return fmt.Sprintf("Product updated: %s", e.Code)
}

// ProductDeletedEvent is published when a product is removed
type ProductDeletedEvent struct {
	shared.BaseDomainEvent
	ProductID uuid.UUID `json:"product_id"`
	Code      string    `json:"code"`
}

func NewProductDeletedEvent(p *Product) *ProductDeletedEvent {
	return &ProductDeletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeProductDeleted, AggregateTypeProduct, p.ID),
		ProductID:       p.ID,
		Code:            p.Code,
	}
}

func (e *ProductDeletedEvent) Describe() string {
	return fmt.Sprintf("Product deleted: %s", e.Code)
}
