package identity

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pozinox/backend/internal/domain/identity"
	"github.com/pozinox/backend/internal/domain/partner"
	"github.com/pozinox/backend/internal/domain/shared"
	"github.com/pozinox/backend/internal/domain/trade"
	"go.uber.org/zap"
)

var statusLabels = map[trade.OrderStatus]string{
	trade.OrderStatusPending:   "pendiente",
	trade.OrderStatusConfirmed: "confirmado",
	trade.OrderStatusPreparing: "en preparación",
	trade.OrderStatusReady:     "listo para despacho",
	trade.OrderStatusShipped:   "despachado",
	trade.OrderStatusDelivered: "entregado",
	trade.OrderStatusCancelled: "cancelado",
}

// NotificationService delivers in-account notifications to customers
type NotificationService struct {
	repo         identity.NotificationRepository
	customerRepo partner.CustomerRepository
	now          func() time.Time
	logger       *zap.Logger
}

// NewNotificationService creates a new NotificationService
func NewNotificationService(repo identity.NotificationRepository, customerRepo partner.CustomerRepository, logger *zap.Logger) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{
		repo:         repo,
		customerRepo: customerRepo,
		now:          time.Now,
		logger:       logger,
	}
}

// List returns the user's notifications, newest first, plus the unread count
func (s *NotificationService) List(ctx context.Context, userID uuid.UUID, filter NotificationListFilter) ([]NotificationResponse, int64, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	domainFilter := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		OrderBy:  "created_at",
		OrderDir: "desc",
		Filters:  make(map[string]interface{}),
	}
	if filter.Unread {
		domainFilter.Filters["unread"] = true
	}

	notifications, err := s.repo.FindByUser(ctx, userID, domainFilter)
	if err != nil {
		return nil, 0, 0, err
	}
	total, err := s.repo.CountByUser(ctx, userID, filter.Unread)
	if err != nil {
		return nil, 0, 0, err
	}
	unread := total
	if !filter.Unread {
		if unread, err = s.repo.CountByUser(ctx, userID, true); err != nil {
			return nil, 0, 0, err
		}
	}

	items := make([]NotificationResponse, len(notifications))
	for i := range notifications {
		items[i] = ToNotificationResponse(&notifications[i])
	}
	return items, total, unread, nil
}

// MarkRead marks one of the user's notifications read. Another user's
// notification is reported as not found.
func (s *NotificationService) MarkRead(ctx context.Context, userID, id uuid.UUID) (*NotificationResponse, error) {
	n, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if n.UserID != userID {
		return nil, shared.ErrNotFound
	}
	if !n.Read {
		n.MarkRead(s.now())
		if err := s.repo.Save(ctx, n); err != nil {
			return nil, err
		}
	}
	response := ToNotificationResponse(n)
	return &response, nil
}

// Notify creates a notification for a user
func (s *NotificationService) Notify(ctx context.Context, userID uuid.UUID, t identity.NotificationType, title, message string) error {
	n, err := identity.NewNotification(userID, t, title, message)
	if err != nil {
		return err
	}
	return s.repo.Create(ctx, n)
}

// Handle turns order events into notifications for the customer's account.
// Customers without a linked account are skipped.
func (s *NotificationService) Handle(ctx context.Context, event shared.DomainEvent) error {
	var (
		customerID uuid.UUID
		t          identity.NotificationType
		title, msg string
	)
	switch e := event.(type) {
	case *trade.OrderStatusChangedEvent:
		customerID = e.CustomerID
		t = identity.NotificationOrderStatus
		title = fmt.Sprintf("Pedido %s actualizado", e.OrderNumber)
		msg = fmt.Sprintf("Tu pedido %s ahora está %s.", e.OrderNumber, statusLabel(e.To))
	case *trade.OrderPaidEvent:
		customerID = e.CustomerID
		t = identity.NotificationPayment
		title = fmt.Sprintf("Pago recibido para %s", e.OrderNumber)
		msg = fmt.Sprintf("Recibimos el pago de tu pedido %s. Te avisaremos cuando esté en preparación.", e.OrderNumber)
	default:
		return nil
	}

	customer, err := s.customerRepo.FindByID(ctx, customerID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil
		}
		return err
	}
	if customer.UserID == nil {
		return nil
	}
	if err := s.Notify(ctx, *customer.UserID, t, title, msg); err != nil {
		return err
	}
	s.logger.Debug("Notification created",
		zap.String("user_id", customer.UserID.String()),
		zap.String("event_type", event.EventType()))
	return nil
}

// EventTypes returns the order events that notify customers
func (s *NotificationService) EventTypes() []string {
	return []string{trade.EventTypeOrderStatusChanged, trade.EventTypeOrderPaid}
}

func statusLabel(status trade.OrderStatus) string {
	if label, ok := statusLabels[status]; ok {
		return label
	}
	return string(status)
}

var _ shared.EventHandler = (*NotificationService)(nil)
