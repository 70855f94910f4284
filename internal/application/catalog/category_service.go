package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/pozinox/backend/internal/domain/catalog"
	"github.com/pozinox/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// CategoryService handles category-related business operations
type CategoryService struct {
	categoryRepo   catalog.CategoryRepository
	productRepo    catalog.ProductRepository
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewCategoryService creates a new CategoryService
func NewCategoryService(
	categoryRepo catalog.CategoryRepository,
	productRepo catalog.ProductRepository,
	logger *zap.Logger,
) *CategoryService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CategoryService{
		categoryRepo: categoryRepo,
		productRepo:  productRepo,
		logger:       logger,
	}
}

// SetEventPublisher sets the publisher used for activity logging
func (s *CategoryService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Create creates a new category
func (s *CategoryService) Create(ctx context.Context, req CreateCategoryRequest) (*CategoryResponse, error) {
	exists, err := s.categoryRepo.ExistsByName(ctx, req.Name)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "Category with this name already exists")
	}

	category, err := catalog.NewCategory(req.Name, req.Description)
	if err != nil {
		return nil, err
	}
	if req.Active != nil && !*req.Active {
		category.Active = false
	}

	if err := s.categoryRepo.Save(ctx, category); err != nil {
		return nil, err
	}
	s.publish(ctx, category)

	response := ToCategoryResponse(category)
	return &response, nil
}

// GetByID retrieves a category by ID
func (s *CategoryService) GetByID(ctx context.Context, id uuid.UUID) (*CategoryResponse, error) {
	category, err := s.categoryRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	response := ToCategoryResponse(category)
	return &response, nil
}

// List retrieves categories with filtering and pagination
func (s *CategoryService) List(ctx context.Context, filter CategoryListFilter) ([]CategoryResponse, int64, error) {
	domainFilter := toDomainFilter(filter.Page, filter.PageSize, filter.OrderBy, filter.OrderDir, filter.Search, "name")
	if filter.Active != nil {
		domainFilter.Filters["active"] = *filter.Active
	}

	categories, err := s.categoryRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.categoryRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	return ToCategoryResponses(categories), total, nil
}

// Update updates a category
func (s *CategoryService) Update(ctx context.Context, id uuid.UUID, req UpdateCategoryRequest) (*CategoryResponse, error) {
	category, err := s.categoryRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	name := category.Name
	description := category.Description
	if req.Name != nil && *req.Name != category.Name {
		existing, err := s.categoryRepo.FindByName(ctx, *req.Name)
		if err != nil && !errors.Is(err, shared.ErrNotFound) {
			return nil, err
		}
		if existing != nil && existing.ID != category.ID {
			return nil, shared.NewDomainError("ALREADY_EXISTS", "Category with this name already exists")
		}
		name = *req.Name
	}
	if req.Description != nil {
		description = *req.Description
	}
	if name != category.Name || description != category.Description {
		if err := category.Update(name, description); err != nil {
			return nil, err
		}
	}
	if req.Active != nil {
		category.SetActive(*req.Active)
	}

	if err := s.categoryRepo.Save(ctx, category); err != nil {
		return nil, err
	}
	s.publish(ctx, category)

	response := ToCategoryResponse(category)
	return &response, nil
}

// DeletePreview reports how many products would be removed with the category
func (s *CategoryService) DeletePreview(ctx context.Context, id uuid.UUID) (*CategoryDeletion, error) {
	_, preview, err := s.loadForDeletion(ctx, id)
	return preview, err
}

// Delete removes a category. Products are deleted with it, so a category that
// still has products is only removed when force is set.
func (s *CategoryService) Delete(ctx context.Context, id uuid.UUID, force bool) (*CategoryDeletion, error) {
	category, preview, err := s.loadForDeletion(ctx, id)
	if err != nil {
		return nil, err
	}
	if preview.ProductCount > 0 && !force {
		return preview, shared.NewDomainError("CATEGORY_HAS_PRODUCTS",
			fmt.Sprintf("Category has %d products that will also be deleted", preview.ProductCount))
	}

	category.MarkDeleted(preview.ProductCount)
	if err := s.categoryRepo.Delete(ctx, id); err != nil {
		return nil, err
	}
	s.publish(ctx, category)

	if preview.ProductCount > 0 {
		s.logger.Info("Category deleted with products",
			zap.String("category_id", id.String()),
			zap.Int64("product_count", preview.ProductCount))
	}

	preview.Deleted = true
	return preview, nil
}

func (s *CategoryService) loadForDeletion(ctx context.Context, id uuid.UUID) (*catalog.Category, *CategoryDeletion, error) {
	category, err := s.categoryRepo.FindByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	count, err := s.productRepo.CountByCategory(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	return category, &CategoryDeletion{ID: category.ID, Name: category.Name, ProductCount: count}, nil
}

func (s *CategoryService) publish(ctx context.Context, category *catalog.Category) {
	events := category.GetDomainEvents()
	category.ClearDomainEvents()
	if s.eventPublisher == nil || len(events) == 0 {
		return
	}
	if err := s.eventPublisher.Publish(ctx, events...); err != nil {
		s.logger.Warn("Failed to publish category events", zap.Error(err))
	}
}
