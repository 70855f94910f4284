package trade

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/pozinox/backend/internal/domain/partner"
	"github.com/pozinox/backend/internal/domain/shared"
	"github.com/pozinox/backend/internal/domain/trade"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// OrderService handles order administration
type OrderService struct {
	orderRepo      trade.OrderRepository
	customerRepo   partner.CustomerRepository
	vatPercent     decimal.Decimal
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewOrderService creates a new OrderService
func NewOrderService(orderRepo trade.OrderRepository, customerRepo partner.CustomerRepository, vatPercent decimal.Decimal, logger *zap.Logger) *OrderService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OrderService{
		orderRepo:    orderRepo,
		customerRepo: customerRepo,
		vatPercent:   vatPercent,
		logger:       logger,
	}
}

// SetEventPublisher sets the event publisher for domain events
func (s *OrderService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// List retrieves orders with filtering and pagination
func (s *OrderService) List(ctx context.Context, filter OrderListFilter) ([]OrderListItemResponse, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	if filter.OrderBy == "" {
		filter.OrderBy = "created_at"
	}
	if filter.OrderDir == "" {
		filter.OrderDir = "desc"
	}

	domainFilter := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		OrderBy:  filter.OrderBy,
		OrderDir: filter.OrderDir,
		Search:   filter.Search,
		Filters:  make(map[string]interface{}),
	}
	if filter.Status != "" {
		domainFilter.Filters["status"] = filter.Status
	}
	if filter.PaymentStatus != "" {
		domainFilter.Filters["payment_status"] = filter.PaymentStatus
	}
	if filter.CustomerID != nil {
		domainFilter.Filters["customer_id"] = *filter.CustomerID
	}

	orders, err := s.orderRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.orderRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	return ToOrderListItemResponses(orders), total, nil
}

// GetByID retrieves an order with its customer
func (s *OrderService) GetByID(ctx context.Context, id uuid.UUID) (*OrderResponse, error) {
	order, err := s.orderRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.respond(ctx, order)
}

// ChangeStatus moves an order along the status machine
func (s *OrderService) ChangeStatus(ctx context.Context, id uuid.UUID, req ChangeStatusRequest) (*OrderResponse, error) {
	order, err := s.orderRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	from := order.Status
	if err := order.ChangeStatus(trade.OrderStatus(req.Status)); err != nil {
		return nil, err
	}
	if err := s.orderRepo.SaveWithLock(ctx, order); err != nil {
		return nil, err
	}
	publishOrderEvents(ctx, s.eventPublisher, s.logger, order)

	s.logger.Info("Order status changed",
		zap.String("order_number", order.OrderNumber),
		zap.String("from", string(from)),
		zap.String("to", string(order.Status)))

	return s.respond(ctx, order)
}

// Update edits notes, delivery date, discount and payment method
func (s *OrderService) Update(ctx context.Context, id uuid.UUID, req UpdateOrderRequest) (*OrderResponse, error) {
	order, err := s.orderRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Notes != nil || req.InternalNotes != nil {
		notes, internal := order.Notes, order.InternalNotes
		if req.Notes != nil {
			notes = *req.Notes
		}
		if req.InternalNotes != nil {
			internal = *req.InternalNotes
		}
		order.UpdateNotes(notes, internal)
	}
	if req.DeliveryDate != nil {
		order.SetDeliveryDate(*req.DeliveryDate)
	}
	if req.Discount != nil {
		if err := order.SetDiscount(*req.Discount); err != nil {
			return nil, err
		}
		order.RecalculateTotals(s.vatPercent)
	}
	if req.PaymentMethod != nil {
		if err := order.SelectPaymentMethod(trade.PaymentMethod(*req.PaymentMethod)); err != nil {
			return nil, err
		}
	}

	if err := s.orderRepo.SaveWithLock(ctx, order); err != nil {
		return nil, err
	}
	return s.respond(ctx, order)
}

// SetLineDiscount sets a line discount and recomputes the totals
func (s *OrderService) SetLineDiscount(ctx context.Context, lineID uuid.UUID, req SetLineDiscountRequest) (*OrderResponse, error) {
	order, err := s.orderRepo.FindByLineID(ctx, lineID)
	if err != nil {
		return nil, err
	}
	if err := order.SetLineDiscount(lineID, req.DiscountPercent); err != nil {
		return nil, err
	}
	order.RecalculateTotals(s.vatPercent)

	if err := s.orderRepo.SaveWithLock(ctx, order); err != nil {
		return nil, err
	}
	return s.respond(ctx, order)
}

// Delete removes an order and its lines
func (s *OrderService) Delete(ctx context.Context, id uuid.UUID) error {
	order, err := s.orderRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.orderRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("Order deleted", zap.String("order_number", order.OrderNumber))
	return nil
}

func (s *OrderService) respond(ctx context.Context, order *trade.Order) (*OrderResponse, error) {
	response := ToOrderResponse(order, true)
	customer, err := s.customerRepo.FindByID(ctx, order.CustomerID)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}
	response.Customer = ToOrderCustomer(customer)
	return &response, nil
}
