package catalog

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/pozinox/backend/internal/domain/catalog"
	"github.com/pozinox/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// ProductServiceConfig holds store-wide product defaults
type ProductServiceConfig struct {
	DefaultMinimumStock int
	FeaturedProducts    int
	FeaturedCategories  int
}

// DefaultProductServiceConfig returns the storefront defaults
func DefaultProductServiceConfig() ProductServiceConfig {
	return ProductServiceConfig{
		DefaultMinimumStock: catalog.DefaultMinimumStock,
		FeaturedProducts:    6,
		FeaturedCategories:  4,
	}
}

// ProductService handles product-related business operations
type ProductService struct {
	productRepo    catalog.ProductRepository
	categoryRepo   catalog.CategoryRepository
	images         ImageStorage
	config         ProductServiceConfig
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewProductService creates a new ProductService. images may be nil when
// object storage is disabled.
func NewProductService(
	productRepo catalog.ProductRepository,
	categoryRepo catalog.CategoryRepository,
	images ImageStorage,
	config ProductServiceConfig,
	logger *zap.Logger,
) *ProductService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProductService{
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
		images:       images,
		config:       config,
		logger:       logger,
	}
}

// SetEventPublisher sets the publisher used for activity logging
func (s *ProductService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Create creates a new product
func (s *ProductService) Create(ctx context.Context, req CreateProductRequest) (*ProductResponse, error) {
	exists, err := s.productRepo.ExistsByCode(ctx, req.Code)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "Product with this code already exists")
	}
	if err := s.ensureCategory(ctx, req.CategoryID); err != nil {
		return nil, err
	}

	product, err := catalog.NewProduct(req.Code, req.Name, req.CategoryID, catalog.SteelType(req.SteelType), req.UnitPrice)
	if err != nil {
		return nil, err
	}
	if req.Description != "" {
		if err := product.Update(product.Name, req.Description); err != nil {
			return nil, err
		}
	}
	if err := product.SetDimensions(catalog.Dimensions{
		Thickness:      req.Thickness,
		Width:          req.Width,
		Length:         req.Length,
		WeightPerMeter: req.WeightPerMeter,
	}); err != nil {
		return nil, err
	}
	if req.PricePerMeter != nil || req.PricePerKg != nil {
		if err := product.SetPrices(req.UnitPrice, req.PricePerMeter, req.PricePerKg); err != nil {
			return nil, err
		}
	}

	stock := 0
	if req.StockLevel != nil {
		stock = *req.StockLevel
	}
	minimum := s.config.DefaultMinimumStock
	if req.MinimumStock != nil {
		minimum = *req.MinimumStock
	}
	if err := product.SetStock(stock, minimum); err != nil {
		return nil, err
	}
	if req.UnitOfMeasure != "" {
		product.SetUnitOfMeasure(req.UnitOfMeasure)
	}
	if req.Active != nil {
		product.SetActive(*req.Active)
	}
	// the setters above record updates; a new product reports a single creation
	product.ClearDomainEvents()
	product.AddDomainEvent(catalog.NewProductCreatedEvent(product))

	if err := s.productRepo.Save(ctx, product); err != nil {
		return nil, err
	}
	s.publish(ctx, product)

	return s.toResponse(ctx, product), nil
}

// GetByID retrieves a product by ID
func (s *ProductService) GetByID(ctx context.Context, id uuid.UUID) (*ProductResponse, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.toResponse(ctx, product), nil
}

// GetActiveByID retrieves a product visible in the public catalog
func (s *ProductService) GetActiveByID(ctx context.Context, id uuid.UUID) (*ProductResponse, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !product.Active {
		return nil, shared.ErrNotFound
	}
	return s.toResponse(ctx, product), nil
}

// List retrieves products with filtering and pagination
func (s *ProductService) List(ctx context.Context, filter ProductListFilter) ([]ProductResponse, int64, error) {
	domainFilter := toDomainFilter(filter.Page, filter.PageSize, filter.OrderBy, filter.OrderDir, filter.Search, "name")
	if filter.CategoryID != nil {
		domainFilter.Filters["category_id"] = *filter.CategoryID
	}
	if filter.SteelType != "" {
		domainFilter.Filters["steel_type"] = filter.SteelType
	}
	if filter.Active != nil {
		domainFilter.Filters["active"] = *filter.Active
	}
	if filter.LowStock {
		domainFilter.Filters["low_stock"] = true
	}

	products, err := s.productRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.productRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]ProductResponse, len(products))
	for i := range products {
		responses[i] = *s.toResponse(ctx, &products[i])
	}
	return responses, total, nil
}

// ListPublic lists active products only
func (s *ProductService) ListPublic(ctx context.Context, filter ProductListFilter) ([]ProductResponse, int64, error) {
	active := true
	filter.Active = &active
	filter.LowStock = false
	return s.List(ctx, filter)
}

// Home returns the newest active products and categories for the landing page
func (s *ProductService) Home(ctx context.Context) (*HomeResponse, error) {
	productFilter := shared.Filter{
		Page:     1,
		PageSize: s.config.FeaturedProducts,
		OrderBy:  "created_at",
		OrderDir: "desc",
		Filters:  map[string]interface{}{"active": true},
	}
	products, err := s.productRepo.FindAll(ctx, productFilter)
	if err != nil {
		return nil, err
	}

	categoryFilter := shared.Filter{
		Page:     1,
		PageSize: s.config.FeaturedCategories,
		OrderBy:  "name",
		OrderDir: "asc",
		Filters:  map[string]interface{}{"active": true},
	}
	categories, err := s.categoryRepo.FindAll(ctx, categoryFilter)
	if err != nil {
		return nil, err
	}

	featured := make([]ProductResponse, len(products))
	for i := range products {
		featured[i] = *s.toResponse(ctx, &products[i])
	}
	return &HomeResponse{
		FeaturedProducts: featured,
		Categories:       ToCategoryResponses(categories),
	}, nil
}

// Update updates a product
func (s *ProductService) Update(ctx context.Context, id uuid.UUID, req UpdateProductRequest) (*ProductResponse, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Code != nil {
		existing, err := s.productRepo.FindByCode(ctx, *req.Code)
		if err != nil && !errors.Is(err, shared.ErrNotFound) {
			return nil, err
		}
		if existing != nil && existing.ID != product.ID {
			return nil, shared.NewDomainError("ALREADY_EXISTS", "Product with this code already exists")
		}
		if err := product.UpdateCode(*req.Code); err != nil {
			return nil, err
		}
	}

	if req.Name != nil || req.Description != nil {
		name, description := product.Name, product.Description
		if req.Name != nil {
			name = *req.Name
		}
		if req.Description != nil {
			description = *req.Description
		}
		if err := product.Update(name, description); err != nil {
			return nil, err
		}
	}

	if req.CategoryID != nil && *req.CategoryID != product.CategoryID {
		if err := s.ensureCategory(ctx, *req.CategoryID); err != nil {
			return nil, err
		}
		if err := product.SetCategory(*req.CategoryID); err != nil {
			return nil, err
		}
	}

	if req.SteelType != nil {
		if err := product.SetSteelType(catalog.SteelType(*req.SteelType)); err != nil {
			return nil, err
		}
	}

	if req.Thickness != nil || req.Width != nil || req.Length != nil || req.WeightPerMeter != nil {
		dims := product.Dimensions
		if req.Thickness != nil {
			dims.Thickness = req.Thickness
		}
		if req.Width != nil {
			dims.Width = req.Width
		}
		if req.Length != nil {
			dims.Length = req.Length
		}
		if req.WeightPerMeter != nil {
			dims.WeightPerMeter = req.WeightPerMeter
		}
		if err := product.SetDimensions(dims); err != nil {
			return nil, err
		}
	}

	if req.UnitPrice != nil || req.PricePerMeter != nil || req.PricePerKg != nil {
		unit, perMeter, perKg := product.UnitPrice, product.PricePerMeter, product.PricePerKg
		if req.UnitPrice != nil {
			unit = *req.UnitPrice
		}
		if req.PricePerMeter != nil {
			perMeter = req.PricePerMeter
		}
		if req.PricePerKg != nil {
			perKg = req.PricePerKg
		}
		if err := product.SetPrices(unit, perMeter, perKg); err != nil {
			return nil, err
		}
	}

	if req.StockLevel != nil || req.MinimumStock != nil {
		level, minimum := product.StockLevel, product.MinimumStock
		if req.StockLevel != nil {
			level = *req.StockLevel
		}
		if req.MinimumStock != nil {
			minimum = *req.MinimumStock
		}
		if err := product.SetStock(level, minimum); err != nil {
			return nil, err
		}
	}

	if req.UnitOfMeasure != nil {
		product.SetUnitOfMeasure(*req.UnitOfMeasure)
	}
	if req.Active != nil {
		product.SetActive(*req.Active)
	}

	if err := s.productRepo.Save(ctx, product); err != nil {
		return nil, err
	}
	s.publish(ctx, product)

	return s.toResponse(ctx, product), nil
}

// Delete removes a product and its image
func (s *ProductService) Delete(ctx context.Context, id uuid.UUID) error {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	product.MarkDeleted()

	if err := s.productRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.removeImage(ctx, product.ImageKey)
	s.publish(ctx, product)
	return nil
}

// UploadImage stores a new product image, replacing the previous one
func (s *ProductService) UploadImage(ctx context.Context, id uuid.UUID, upload ImageUpload) (*ProductResponse, error) {
	if s.images == nil {
		return nil, shared.NewDomainError("STORAGE_DISABLED", "Image storage is not configured")
	}
	if err := upload.validate(); err != nil {
		return nil, err
	}

	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	contentType := upload.contentType()
	key := imageKey(product.ID, contentType)
	if err := s.images.Upload(ctx, key, upload.Data, contentType); err != nil {
		return nil, err
	}

	previous := product.ImageKey
	product.SetImage(key)
	if err := s.productRepo.Save(ctx, product); err != nil {
		s.removeImage(ctx, key)
		return nil, err
	}
	s.removeImage(ctx, previous)
	s.publish(ctx, product)

	s.logger.Info("Product image uploaded",
		zap.String("product_id", product.ID.String()),
		zap.String("key", key),
		zap.Int("size", len(upload.Data)))

	return s.toResponse(ctx, product), nil
}

// RemoveImage clears the product image
func (s *ProductService) RemoveImage(ctx context.Context, id uuid.UUID) (*ProductResponse, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product.ImageKey == "" {
		return s.toResponse(ctx, product), nil
	}

	previous := product.ImageKey
	product.SetImage("")
	if err := s.productRepo.Save(ctx, product); err != nil {
		return nil, err
	}
	s.removeImage(ctx, previous)
	s.publish(ctx, product)

	return s.toResponse(ctx, product), nil
}

func (s *ProductService) ensureCategory(ctx context.Context, categoryID uuid.UUID) error {
	if _, err := s.categoryRepo.FindByID(ctx, categoryID); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return shared.NewDomainError("INVALID_CATEGORY", "Category not found")
		}
		return err
	}
	return nil
}

func (s *ProductService) removeImage(ctx context.Context, key string) {
	if key == "" || s.images == nil {
		return
	}
	if err := s.images.Delete(ctx, key); err != nil {
		s.logger.Warn("Failed to delete product image", zap.String("key", key), zap.Error(err))
	}
}

func (s *ProductService) toResponse(ctx context.Context, product *catalog.Product) *ProductResponse {
	response := ToProductResponse(product)
	if product.ImageKey != "" && s.images != nil {
		url, err := s.images.URL(ctx, product.ImageKey)
		if err != nil {
			s.logger.Warn("Failed to resolve product image URL", zap.String("key", product.ImageKey), zap.Error(err))
		} else {
			response.ImageURL = url
		}
	}
	return &response
}

func (s *ProductService) publish(ctx context.Context, product *catalog.Product) {
	events := product.GetDomainEvents()
	product.ClearDomainEvents()
	if s.eventPublisher == nil || len(events) == 0 {
		return
	}
	if err := s.eventPublisher.Publish(ctx, events...); err != nil {
		s.logger.Warn("Failed to publish product events", zap.Error(err))
	}
}
