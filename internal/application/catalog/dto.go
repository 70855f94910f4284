package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/pozinox/backend/internal/domain/catalog"
	"github.com/pozinox/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// CreateCategoryRequest represents a request to create a category
type CreateCategoryRequest struct {
	Name        string `json:"name" binding:"required,min=1,max=100"`
	Description string `json:"description" binding:"max=2000"`
	Active      *bool  `json:"active"`
}

// UpdateCategoryRequest represents a request to update a category
type UpdateCategoryRequest struct {
	Name        *string `json:"name" binding:"omitempty,min=1,max=100"`
	Description *string `json:"description" binding:"omitempty,max=2000"`
	Active      *bool   `json:"active"`
}

// CategoryResponse represents a category in API responses
type CategoryResponse struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Active      bool      `json:"active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// CategoryListFilter represents filter options for the category list
type CategoryListFilter struct {
	Search   string `form:"search"`
	Active   *bool  `form:"active"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy  string `form:"order_by"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// CategoryDeletion reports the products affected by deleting a category
type CategoryDeletion struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	ProductCount int64     `json:"product_count"`
	Deleted      bool      `json:"deleted"`
}

// CreateProductRequest represents a request to create a product
type CreateProductRequest struct {
	Code           string           `json:"code" binding:"required,min=1,max=50"`
	Name           string           `json:"name" binding:"required,min=1,max=200"`
	Description    string           `json:"description" binding:"max=5000"`
	CategoryID     uuid.UUID        `json:"category_id" binding:"required"`
	SteelType      string           `json:"steel_type" binding:"required,oneof=stainless carbon galvanized structural"`
	Thickness      *decimal.Decimal `json:"thickness"`
	Width          *decimal.Decimal `json:"width"`
	Length         *decimal.Decimal `json:"length"`
	WeightPerMeter *decimal.Decimal `json:"weight_per_meter"`
	UnitPrice      decimal.Decimal  `json:"unit_price"`
	PricePerMeter  *decimal.Decimal `json:"price_per_meter"`
	PricePerKg     *decimal.Decimal `json:"price_per_kg"`
	StockLevel     *int             `json:"stock_level" binding:"omitempty,min=0"`
	MinimumStock   *int             `json:"minimum_stock" binding:"omitempty,min=0"`
	UnitOfMeasure  string           `json:"unit_of_measure" binding:"max=20"`
	Active         *bool            `json:"active"`
}

// UpdateProductRequest represents a request to update a product.
// Nil fields are left unchanged.
type UpdateProductRequest struct {
	Code           *string          `json:"code" binding:"omitempty,min=1,max=50"`
	Name           *string          `json:"name" binding:"omitempty,min=1,max=200"`
	Description    *string          `json:"description" binding:"omitempty,max=5000"`
	CategoryID     *uuid.UUID       `json:"category_id"`
	SteelType      *string          `json:"steel_type" binding:"omitempty,oneof=stainless carbon galvanized structural"`
	Thickness      *decimal.Decimal `json:"thickness"`
	Width          *decimal.Decimal `json:"width"`
	Length         *decimal.Decimal `json:"length"`
	WeightPerMeter *decimal.Decimal `json:"weight_per_meter"`
	UnitPrice      *decimal.Decimal `json:"unit_price"`
	PricePerMeter  *decimal.Decimal `json:"price_per_meter"`
	PricePerKg     *decimal.Decimal `json:"price_per_kg"`
	StockLevel     *int             `json:"stock_level" binding:"omitempty,min=0"`
	MinimumStock   *int             `json:"minimum_stock" binding:"omitempty,min=0"`
	UnitOfMeasure  *string          `json:"unit_of_measure" binding:"omitempty,max=20"`
	Active         *bool            `json:"active"`
}

// ProductResponse represents a product in API responses
type ProductResponse struct {
	ID             uuid.UUID        `json:"id"`
	Code           string           `json:"code"`
	Name           string           `json:"name"`
	Description    string           `json:"description"`
	CategoryID     uuid.UUID        `json:"category_id"`
	SteelType      string           `json:"steel_type"`
	Thickness      *decimal.Decimal `json:"thickness,omitempty"`
	Width          *decimal.Decimal `json:"width,omitempty"`
	Length         *decimal.Decimal `json:"length,omitempty"`
	WeightPerMeter *decimal.Decimal `json:"weight_per_meter,omitempty"`
	UnitPrice      decimal.Decimal  `json:"unit_price"`
	PricePerMeter  *decimal.Decimal `json:"price_per_meter,omitempty"`
	PricePerKg     *decimal.Decimal `json:"price_per_kg,omitempty"`
	StockLevel     int              `json:"stock_level"`
	MinimumStock   int              `json:"minimum_stock"`
	LowStock       bool             `json:"low_stock"`
	UnitOfMeasure  string           `json:"unit_of_measure"`
	ImageKey       string           `json:"image_key,omitempty"`
	ImageURL       string           `json:"image_url,omitempty"`
	Active         bool             `json:"active"`
	CreatedAt      time.Time        `json:"created_at"`
	UpdatedAt      time.Time        `json:"updated_at"`
	Version        int              `json:"version"`
}

// ProductListFilter represents filter options for the product list
type ProductListFilter struct {
	Search     string     `form:"search"`
	CategoryID *uuid.UUID `form:"-"`
	SteelType  string     `form:"steel_type" binding:"omitempty,oneof=stainless carbon galvanized structural"`
	Active     *bool      `form:"active"`
	LowStock   bool       `form:"low_stock"`
	Page       int        `form:"page" binding:"omitempty,min=1"`
	PageSize   int        `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy    string     `form:"order_by"`
	OrderDir   string     `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// HomeResponse is the storefront landing payload
type HomeResponse struct {
	FeaturedProducts []ProductResponse  `json:"featured_products"`
	Categories       []CategoryResponse `json:"categories"`
}

// ToCategoryResponse converts a domain Category to CategoryResponse
func ToCategoryResponse(c *catalog.Category) CategoryResponse {
	return CategoryResponse{
		ID:          c.ID,
		Name:        c.Name,
		Description: c.Description,
		Active:      c.Active,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

// ToCategoryResponses converts a slice of categories
func ToCategoryResponses(categories []catalog.Category) []CategoryResponse {
	responses := make([]CategoryResponse, len(categories))
	for i := range categories {
		responses[i] = ToCategoryResponse(&categories[i])
	}
	return responses
}

// ToProductResponse converts a domain Product to ProductResponse.
// ImageURL is filled in by the service.
func ToProductResponse(p *catalog.Product) ProductResponse {
	return ProductResponse{
		ID:             p.ID,
		Code:           p.Code,
		Name:           p.Name,
		Description:    p.Description,
		CategoryID:     p.CategoryID,
		SteelType:      string(p.SteelType),
		Thickness:      p.Dimensions.Thickness,
		Width:          p.Dimensions.Width,
		Length:         p.Dimensions.Length,
		WeightPerMeter: p.Dimensions.WeightPerMeter,
		UnitPrice:      p.UnitPrice,
		PricePerMeter:  p.PricePerMeter,
		PricePerKg:     p.PricePerKg,
		StockLevel:     p.StockLevel,
		MinimumStock:   p.MinimumStock,
		LowStock:       p.IsLowStock(),
		UnitOfMeasure:  p.UnitOfMeasure,
		ImageKey:       p.ImageKey,
		Active:         p.Active,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
		Version:        p.Version,
	}
}

func toDomainFilter(page, pageSize int, orderBy, orderDir, search, defaultOrder string) shared.Filter {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	if orderBy == "" {
		orderBy = defaultOrder
	}
	if orderDir == "" {
		orderDir = "asc"
	}
	return shared.Filter{
		Page:     page,
		PageSize: pageSize,
		OrderBy:  orderBy,
		OrderDir: orderDir,
		Search:   search,
		Filters:  make(map[string]interface{}),
	}
}
