package catalog

import (
	"context"

	"github.com/google/uuid"
	"github.com/pozinox/backend/internal/domain/shared"
)

// CategoryRepository defines persistence for categories
type CategoryRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Category, error)
	FindByName(ctx context.Context, name string) (*Category, error)
	// FindAll supports the "active" filter key
	FindAll(ctx context.Context, filter shared.Filter) ([]Category, error)
	Count(ctx context.Context, filter shared.Filter) (int64, error)
	ExistsByName(ctx context.Context, name string) (bool, error)
	Save(ctx context.Context, category *Category) error
	// Delete removes the category together with its products
	Delete(ctx context.Context, id uuid.UUID) error
}

// ProductRepository defines persistence for products
type ProductRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Product, error)
	FindByCode(ctx context.Context, code string) (*Product, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]Product, error)
	// FindAll supports the "category_id", "steel_type", "active" and "low_stock" filter keys
	FindAll(ctx context.Context, filter shared.Filter) ([]Product, error)
	Count(ctx context.Context, filter shared.Filter) (int64, error)
	ExistsByCode(ctx context.Context, code string) (bool, error)
	CountByCategory(ctx context.Context, categoryID uuid.UUID) (int64, error)
	CountLowStock(ctx context.Context) (int64, error)
	Save(ctx context.Context, product *Product) error
	Delete(ctx context.Context, id uuid.UUID) error
}
