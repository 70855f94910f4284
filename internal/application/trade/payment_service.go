package trade

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pozinox/backend/internal/domain/shared"
	"github.com/pozinox/backend/internal/domain/trade"
	"github.com/pozinox/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

var (
	// ErrPaymentDisabled is returned when no payment gateway is configured
	ErrPaymentDisabled = shared.NewDomainError("PAYMENT_DISABLED", "Online payment is not available")
	// ErrPaymentNotVerified is returned when a return URL carries no payment to verify
	ErrPaymentNotVerified = shared.NewDomainError("PAYMENT_NOT_VERIFIED", "Payment could not be verified")
	// ErrPaymentMismatch is returned when a gateway payment belongs to another order
	ErrPaymentMismatch = shared.NewDomainError("PAYMENT_MISMATCH", "Payment does not belong to this order")
	// ErrPaymentAmountMismatch is returned when an approved payment does not
	// cover the order total
	ErrPaymentAmountMismatch = shared.NewDomainError("PAYMENT_AMOUNT_MISMATCH", "Payment amount does not match the order total")
)

// PaymentServiceConfig configures the checkout handoff
type PaymentServiceConfig struct {
	// ReturnBaseURL is the public base of the quote routes, e.g.
	// https://pozinox.cl/api/v1/quotes
	ReturnBaseURL   string
	NotificationURL string
	CurrencyID      string
	// Sandbox selects the gateway's sandbox checkout URL
	Sandbox bool
	Now     func() time.Time
}

// PaymentService hands quotes over to the card payment gateway and applies
// the verified outcome
type PaymentService struct {
	orderAccess
	gateway        PaymentGateway
	config         PaymentServiceConfig
	eventPublisher shared.EventPublisher
	storeMetrics   *telemetry.StoreMetrics
	logger         *zap.Logger
}

// NewPaymentService creates a new PaymentService. gateway may be nil, in
// which case online payment is disabled.
func NewPaymentService(
	orderRepo trade.OrderRepository,
	customers CustomerResolver,
	gateway PaymentGateway,
	config PaymentServiceConfig,
	logger *zap.Logger,
) *PaymentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.CurrencyID == "" {
		config.CurrencyID = "CLP"
	}
	if config.Now == nil {
		config.Now = time.Now
	}
	return &PaymentService{
		orderAccess: orderAccess{orderRepo: orderRepo, customers: customers},
		gateway:     gateway,
		config:      config,
		logger:      logger,
	}
}

// SetEventPublisher sets the event publisher for domain events
func (s *PaymentService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetStoreMetrics sets the business metrics collector
func (s *PaymentService) SetStoreMetrics(m *telemetry.StoreMetrics) {
	s.storeMetrics = m
}

// StartPayment creates a checkout preference for a finalized quote and
// returns where to send the customer
func (s *PaymentService) StartPayment(ctx context.Context, userID, orderID uuid.UUID) (*PaymentRedirect, error) {
	if s.gateway == nil {
		return nil, ErrPaymentDisabled
	}
	ctx, span := telemetry.StartServiceSpan(ctx, "payment", "start",
		telemetry.SpanAttrOrderID, orderID.String())
	defer span.End()

	order, customer, err := s.load(ctx, userID, orderID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if !order.IsFinalized() {
		return nil, shared.NewDomainError("QUOTE_NOT_FINALIZED", "Quote must be finalized before paying")
	}
	if order.IsPaid() {
		return nil, trade.ErrOrderAlreadyPaid
	}

	base := strings.TrimRight(s.config.ReturnBaseURL, "/") + "/" + order.ID.String() + "/payment/"
	preference, err := s.gateway.CreatePreference(ctx, PreferenceRequest{
		ExternalReference: order.ID.String(),
		Items: []PreferenceItem{{
			Title:      fmt.Sprintf("Cotización %s", order.OrderNumber),
			Quantity:   1,
			UnitPrice:  order.Total,
			CurrencyID: s.config.CurrencyID,
		}},
		PayerEmail: customer.Email,
		BackURLs: BackURLs{
			Success: base + string(PaymentOutcomeSuccess),
			Failure: base + string(PaymentOutcomeFailure),
			Pending: base + string(PaymentOutcomePending),
		},
		NotificationURL: s.config.NotificationURL,
	})
	if err != nil {
		s.logger.Error("Failed to create payment preference",
			zap.String("order_number", order.OrderNumber),
			zap.Error(err))
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("create payment preference: %w", err)
	}

	if err := order.StartOnlinePayment(preference.ID); err != nil {
		return nil, err
	}
	if err := s.orderRepo.SaveWithLock(ctx, order); err != nil {
		return nil, err
	}

	telemetry.SetAttributes(span,
		telemetry.SpanAttrOrderNumber, order.OrderNumber,
		telemetry.SpanAttrAmount, order.Total.String())

	redirect := preference.InitPoint
	if s.config.Sandbox && preference.SandboxInitPoint != "" {
		redirect = preference.SandboxInitPoint
	}
	s.logger.Info("Payment started",
		zap.String("order_number", order.OrderNumber),
		zap.String("preference_id", preference.ID))

	return &PaymentRedirect{
		OrderID:      order.ID,
		PreferenceID: preference.ID,
		RedirectURL:  redirect,
	}, nil
}

// HandleReturn applies the outcome reported when the customer comes back
// from checkout. The gateway is queried for the payment; the query string
// alone is never trusted.
func (s *PaymentService) HandleReturn(ctx context.Context, userID, orderID uuid.UUID, outcome PaymentOutcome, paymentID string) (*OrderResponse, error) {
	if s.gateway == nil {
		return nil, ErrPaymentDisabled
	}
	if !outcome.IsValid() {
		return nil, shared.NewDomainError("INVALID_OUTCOME", "Unknown payment outcome")
	}
	ctx, span := telemetry.StartServiceSpan(ctx, "payment", "handle_return",
		telemetry.SpanAttrOrderID, orderID.String(),
		telemetry.SpanAttrPaymentID, paymentID)
	defer span.End()

	order, customer, err := s.load(ctx, userID, orderID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	if paymentID == "" {
		if outcome != PaymentOutcomeFailure {
			return nil, ErrPaymentNotVerified
		}
		// checkout abandoned before a payment existed
		order.MarkPaymentRejected("")
		s.recordPayment(ctx, GatewayStatusCancelled, telemetry.PaymentChannelReturn)
	} else {
		if err := s.applyPayment(ctx, order, paymentID); err != nil {
			telemetry.RecordError(span, err)
			return nil, err
		}
	}

	if err := s.orderRepo.SaveWithLock(ctx, order); err != nil {
		return nil, err
	}
	publishOrderEvents(ctx, s.eventPublisher, s.logger, order)

	response := ToOrderResponse(order, false)
	response.Customer = ToOrderCustomer(customer)
	return &response, nil
}

// HandleWebhook processes a gateway notification. Non-payment topics are
// ignored.
func (s *PaymentService) HandleWebhook(ctx context.Context, notification PaymentNotification) error {
	if s.gateway == nil {
		return ErrPaymentDisabled
	}
	if notification.Type != "payment" || notification.Data.ID == "" {
		s.logger.Debug("Ignoring payment notification",
			zap.String("type", notification.Type),
			zap.String("action", notification.Action))
		return nil
	}

	ctx, span := telemetry.StartServiceSpan(ctx, "payment", "handle_webhook",
		telemetry.SpanAttrPaymentID, notification.Data.ID)
	defer span.End()

	payment, err := s.gateway.GetPayment(ctx, notification.Data.ID)
	if err != nil {
		err = fmt.Errorf("fetch payment %s: %w", notification.Data.ID, err)
		telemetry.RecordError(span, err)
		return err
	}
	orderID, err := uuid.Parse(payment.ExternalReference)
	if err != nil {
		s.logger.Warn("Payment notification without order reference",
			zap.String("payment_id", payment.ID),
			zap.String("external_reference", payment.ExternalReference))
		return nil
	}
	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		telemetry.RecordError(span, err)
		return err
	}
	telemetry.SetAttributes(span, telemetry.SpanAttrOrderNumber, order.OrderNumber)

	if err := s.applyStatus(ctx, order, payment, telemetry.PaymentChannelWebhook); err != nil {
		if errors.Is(err, ErrPaymentAmountMismatch) {
			// acknowledged so the gateway stops retrying; the order stays unpaid
			s.logger.Error("Ignoring approved payment with wrong amount",
				zap.String("order_number", order.OrderNumber),
				zap.String("payment_id", payment.ID))
			return nil
		}
		telemetry.RecordError(span, err)
		return err
	}
	if err := s.orderRepo.SaveWithLock(ctx, order); err != nil {
		return err
	}
	publishOrderEvents(ctx, s.eventPublisher, s.logger, order)
	return nil
}

func (s *PaymentService) applyPayment(ctx context.Context, order *trade.Order, paymentID string) error {
	payment, err := s.gateway.GetPayment(ctx, paymentID)
	if err != nil {
		return fmt.Errorf("fetch payment %s: %w", paymentID, err)
	}
	if payment.ExternalReference != order.ID.String() {
		s.logger.Warn("Payment reference mismatch",
			zap.String("order_id", order.ID.String()),
			zap.String("payment_id", payment.ID),
			zap.String("external_reference", payment.ExternalReference))
		return ErrPaymentMismatch
	}
	return s.applyStatus(ctx, order, payment, telemetry.PaymentChannelReturn)
}

// applyStatus maps a gateway status onto the order. An approval only
// counts when the charged amount equals the order total.
func (s *PaymentService) applyStatus(ctx context.Context, order *trade.Order, payment *PaymentInfo, channel string) error {
	switch payment.Status {
	case GatewayStatusApproved:
		if !order.IsPaid() && !payment.TransactionAmount.Equal(order.Total) {
			s.logger.Warn("Payment amount mismatch",
				zap.String("order_number", order.OrderNumber),
				zap.String("payment_id", payment.ID),
				zap.String("order_total", order.Total.String()),
				zap.String("transaction_amount", payment.TransactionAmount.String()))
			s.recordPayment(ctx, "amount_mismatch", channel)
			return ErrPaymentAmountMismatch
		}
		paidAt := s.config.Now()
		if payment.DateApproved != nil {
			paidAt = *payment.DateApproved
		}
		if err := order.MarkPaymentApproved(payment.ID, paidAt); err != nil {
			return err
		}
		s.logger.Info("Payment approved",
			zap.String("order_number", order.OrderNumber),
			zap.String("payment_id", payment.ID))
	case GatewayStatusRejected, GatewayStatusCancelled, GatewayStatusRefunded:
		order.MarkPaymentRejected(payment.ID)
		s.logger.Info("Payment rejected",
			zap.String("order_number", order.OrderNumber),
			zap.String("payment_id", payment.ID),
			zap.String("status_detail", payment.StatusDetail))
	default:
		order.MarkPaymentInProcess(payment.ID)
	}
	s.recordPayment(ctx, payment.Status, channel)
	return nil
}

func (s *PaymentService) recordPayment(ctx context.Context, status, channel string) {
	if s.storeMetrics != nil {
		s.storeMetrics.PaymentApplied(ctx, status, channel)
	}
}
