package trade

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/pozinox/backend/internal/domain/partner"
	"github.com/pozinox/backend/internal/domain/shared"
	"github.com/pozinox/backend/internal/domain/trade"
	"go.uber.org/zap"
)

// orderAccess loads orders on behalf of a signed-in user. Orders belonging
// to another customer are reported as not found.
type orderAccess struct {
	orderRepo trade.OrderRepository
	customers CustomerResolver
}

// customerFor returns the user's customer, or nil when the user has none yet
func (a orderAccess) customerFor(ctx context.Context, userID uuid.UUID) (*partner.Customer, error) {
	customer, err := a.customers.FindForUser(ctx, userID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return customer, nil
}

func (a orderAccess) load(ctx context.Context, userID, orderID uuid.UUID) (*trade.Order, *partner.Customer, error) {
	customer, err := a.customerFor(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	if customer == nil {
		return nil, nil, shared.ErrNotFound
	}
	order, err := a.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, nil, err
	}
	if order.CustomerID != customer.ID {
		return nil, nil, shared.ErrNotFound
	}
	return order, customer, nil
}

func (a orderAccess) loadByLine(ctx context.Context, userID, lineID uuid.UUID) (*trade.Order, error) {
	customer, err := a.customerFor(ctx, userID)
	if err != nil {
		return nil, err
	}
	if customer == nil {
		return nil, shared.ErrNotFound
	}
	order, err := a.orderRepo.FindByLineID(ctx, lineID)
	if err != nil {
		return nil, err
	}
	if order.CustomerID != customer.ID {
		return nil, shared.ErrNotFound
	}
	return order, nil
}

// publishOrderEvents drains the order's pending events to the publisher
func publishOrderEvents(ctx context.Context, publisher shared.EventPublisher, logger *zap.Logger, order *trade.Order) {
	events := order.GetDomainEvents()
	order.ClearDomainEvents()
	if publisher == nil || len(events) == 0 {
		return
	}
	if err := publisher.Publish(ctx, events...); err != nil {
		logger.Warn("Failed to publish order events",
			zap.String("order_id", order.ID.String()),
			zap.Error(err))
	}
}
