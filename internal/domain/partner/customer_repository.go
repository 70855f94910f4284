package partner

import (
	"context"

	"github.com/google/uuid"
	"github.com/pozinox/backend/internal/domain/shared"
)

// CustomerRepository defines persistence for customers
type CustomerRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Customer, error)
	FindByEmail(ctx context.Context, email string) (*Customer, error)
	FindByTaxID(ctx context.Context, taxID string) (*Customer, error)
	FindByUserID(ctx context.Context, userID uuid.UUID) (*Customer, error)
	// FindAll supports the "type" and "active" filter keys
	FindAll(ctx context.Context, filter shared.Filter) ([]Customer, error)
	Count(ctx context.Context, filter shared.Filter) (int64, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	ExistsByTaxID(ctx context.Context, taxID string) (bool, error)
	Save(ctx context.Context, customer *Customer) error
	Delete(ctx context.Context, id uuid.UUID) error
}
