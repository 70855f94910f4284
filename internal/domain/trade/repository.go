package trade

import (
	"context"

	"github.com/google/uuid"
	"github.com/pozinox/backend/internal/domain/shared"
)

// OrderRepository defines persistence for orders and their lines
type OrderRepository interface {
	// FindByID loads the order with its lines
	FindByID(ctx context.Context, id uuid.UUID) (*Order, error)
	FindByOrderNumber(ctx context.Context, orderNumber string) (*Order, error)
	// FindByLineID loads the order owning the given line
	FindByLineID(ctx context.Context, lineID uuid.UUID) (*Order, error)
	// FindAll supports the "status", "customer_id" and "payment_status" filter keys
	FindAll(ctx context.Context, filter shared.Filter) ([]Order, error)
	Count(ctx context.Context, filter shared.Filter) (int64, error)
	CountByStatus(ctx context.Context, status OrderStatus) (int64, error)
	// Save inserts or updates the order and replaces its lines
	Save(ctx context.Context, order *Order) error
	// SaveWithLock saves only if the stored version matches, returning a
	// CONCURRENT_MODIFICATION domain error otherwise
	SaveWithLock(ctx context.Context, order *Order) error
	Delete(ctx context.Context, id uuid.UUID) error
}
