package trade

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	partnerapp "github.com/pozinox/backend/internal/application/partner"
	"github.com/pozinox/backend/internal/domain/catalog"
	"github.com/pozinox/backend/internal/domain/identity"
	"github.com/pozinox/backend/internal/domain/partner"
	"github.com/pozinox/backend/internal/domain/shared"
	"github.com/pozinox/backend/internal/domain/trade"
	"github.com/pozinox/backend/internal/infrastructure/telemetry"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ErrPDFDisabled is returned when no quote renderer is configured
var ErrPDFDisabled = shared.NewDomainError("PDF_DISABLED", "PDF export is not available")

// QuoteServiceConfig holds the store settings used by quotes
type QuoteServiceConfig struct {
	// VATPercent is the VAT rate in percent
	VATPercent   decimal.Decimal
	DeliveryDays int
	Location     *time.Location
	Store        StoreInfo
	Now          func() time.Time
}

// DefaultQuoteServiceConfig returns the Chilean defaults
func DefaultQuoteServiceConfig() QuoteServiceConfig {
	return QuoteServiceConfig{
		VATPercent:   decimal.NewFromInt(19),
		DeliveryDays: 7,
		Location:     time.UTC,
		Now:          time.Now,
	}
}

// QuoteService handles the customer side of quotes and orders
type QuoteService struct {
	orderAccess
	productRepo    catalog.ProductRepository
	userRepo       identity.UserRepository
	numbers        OrderNumberSource
	renderer       QuoteRenderer
	config         QuoteServiceConfig
	eventPublisher shared.EventPublisher
	storeMetrics   *telemetry.StoreMetrics
	logger         *zap.Logger
}

// NewQuoteService creates a new QuoteService. renderer may be nil, in which
// case PDF export is disabled.
func NewQuoteService(
	orderRepo trade.OrderRepository,
	productRepo catalog.ProductRepository,
	userRepo identity.UserRepository,
	customers CustomerResolver,
	numbers OrderNumberSource,
	renderer QuoteRenderer,
	config QuoteServiceConfig,
	logger *zap.Logger,
) *QuoteService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.Now == nil {
		config.Now = time.Now
	}
	if config.Location == nil {
		config.Location = time.UTC
	}
	return &QuoteService{
		orderAccess: orderAccess{orderRepo: orderRepo, customers: customers},
		productRepo: productRepo,
		userRepo:    userRepo,
		numbers:     numbers,
		renderer:    renderer,
		config:      config,
		logger:      logger,
	}
}

// SetEventPublisher sets the event publisher for domain events
func (s *QuoteService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetStoreMetrics sets the business metrics collector
func (s *QuoteService) SetStoreMetrics(m *telemetry.StoreMetrics) {
	s.storeMetrics = m
}

// ListForUser lists the user's quotes and orders, newest first
func (s *QuoteService) ListForUser(ctx context.Context, userID uuid.UUID, filter QuoteListFilter) ([]OrderListItemResponse, int64, error) {
	customer, err := s.customerFor(ctx, userID)
	if err != nil {
		return nil, 0, err
	}
	if customer == nil {
		return []OrderListItemResponse{}, 0, nil
	}

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
		Filters:  map[string]interface{}{"customer_id": customer.ID},
	}
	if filter.Status != "" {
		domainFilter.Filters["status"] = filter.Status
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

// Create opens a new quote for the user, creating their customer record
// from the profile on first use
func (s *QuoteService) Create(ctx context.Context, userID uuid.UUID, req CreateQuoteRequest) (*OrderResponse, error) {
	customer, err := s.customerFor(ctx, userID)
	if err != nil {
		return nil, err
	}
	if customer == nil {
		user, err := s.userRepo.FindByID(ctx, userID)
		if err != nil {
			return nil, err
		}
		customer, err = s.customers.EnsureForUser(ctx, partnerapp.EnsureCustomerInput{
			UserID:        user.ID,
			FirstName:     firstNonEmpty(user.FirstName, user.Username),
			LastName:      user.LastName,
			Email:         user.Email,
			EmailVerified: user.EmailVerified,
			TaxID:         req.TaxID,
			Phone:         user.Profile.Phone,
			Street:        user.Profile.Address,
			Commune:       user.Profile.Commune,
			City:          user.Profile.City,
		})
		if err != nil {
			return nil, err
		}
	}

	number, err := s.numbers.Generate(ctx)
	if err != nil {
		return nil, err
	}
	order, err := trade.NewQuote(number, customer.ID)
	if err != nil {
		return nil, err
	}
	if req.Notes != "" {
		order.UpdateNotes(req.Notes, "")
	}

	if err := s.orderRepo.Save(ctx, order); err != nil {
		return nil, err
	}
	publishOrderEvents(ctx, s.eventPublisher, s.logger, order)
	if s.storeMetrics != nil {
		s.storeMetrics.QuoteCreated(ctx)
	}

	s.logger.Info("Quote created",
		zap.String("order_number", order.OrderNumber),
		zap.String("customer_id", customer.ID.String()))

	return s.respond(order, customer), nil
}

// Get returns one of the user's orders
func (s *QuoteService) Get(ctx context.Context, userID, orderID uuid.UUID) (*OrderResponse, error) {
	order, customer, err := s.load(ctx, userID, orderID)
	if err != nil {
		return nil, err
	}
	return s.respond(order, customer), nil
}

// AddLine adds an active product to a quote, merging with an existing line
// for the same product
func (s *QuoteService) AddLine(ctx context.Context, userID, orderID uuid.UUID, req AddLineRequest) (*OrderResponse, error) {
	order, customer, err := s.load(ctx, userID, orderID)
	if err != nil {
		return nil, err
	}
	product, err := s.productRepo.FindByID(ctx, req.ProductID)
	if err != nil {
		return nil, err
	}
	if !product.Active {
		return nil, shared.NewDomainError("PRODUCT_UNAVAILABLE", "Product is not available")
	}

	if _, err := order.AddProduct(product.ID, product.Code, product.Name, product.UnitPrice, req.Quantity); err != nil {
		return nil, err
	}
	order.RecalculateTotals(s.config.VATPercent)

	if err := s.orderRepo.SaveWithLock(ctx, order); err != nil {
		return nil, err
	}
	return s.respond(order, customer), nil
}

// UpdateLine changes a line quantity; zero removes the line
func (s *QuoteService) UpdateLine(ctx context.Context, userID, lineID uuid.UUID, req UpdateLineRequest) (*OrderResponse, error) {
	order, err := s.loadByLine(ctx, userID, lineID)
	if err != nil {
		return nil, err
	}
	quantity := 0
	if req.Quantity != nil {
		quantity = *req.Quantity
	}
	if err := order.UpdateLineQuantity(lineID, quantity); err != nil {
		return nil, err
	}
	order.RecalculateTotals(s.config.VATPercent)

	if err := s.orderRepo.SaveWithLock(ctx, order); err != nil {
		return nil, err
	}
	return s.respond(order, nil), nil
}

// RemoveLine deletes a line from a quote
func (s *QuoteService) RemoveLine(ctx context.Context, userID, lineID uuid.UUID) (*OrderResponse, error) {
	order, err := s.loadByLine(ctx, userID, lineID)
	if err != nil {
		return nil, err
	}
	if err := order.RemoveLine(lineID); err != nil {
		return nil, err
	}
	order.RecalculateTotals(s.config.VATPercent)

	if err := s.orderRepo.SaveWithLock(ctx, order); err != nil {
		return nil, err
	}
	return s.respond(order, nil), nil
}

// Finalize closes a quote for editing. The delivery date defaults to today
// plus the store's default delivery days.
func (s *QuoteService) Finalize(ctx context.Context, userID, orderID uuid.UUID, req FinalizeQuoteRequest) (*OrderResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "quote", "finalize",
		telemetry.SpanAttrOrderID, orderID.String())
	defer span.End()

	order, customer, err := s.load(ctx, userID, orderID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if req.Notes != nil {
		order.UpdateNotes(*req.Notes, order.InternalNotes)
	}

	delivery := s.defaultDeliveryDate()
	if req.DeliveryDate != nil {
		delivery = *req.DeliveryDate
	}
	order.RecalculateTotals(s.config.VATPercent)
	if err := order.Finalize(delivery); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	if err := s.orderRepo.SaveWithLock(ctx, order); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	publishOrderEvents(ctx, s.eventPublisher, s.logger, order)
	telemetry.SetAttributes(span,
		telemetry.SpanAttrOrderNumber, order.OrderNumber,
		telemetry.SpanAttrCustomerID, order.CustomerID.String(),
		telemetry.SpanAttrAmount, order.Total.String())
	if s.storeMetrics != nil {
		s.storeMetrics.QuoteFinalized(ctx, order.Total)
	}

	s.logger.Info("Quote finalized",
		zap.String("order_number", order.OrderNumber),
		zap.String("total", order.Total.String()))

	return s.respond(order, customer), nil
}

// SelectPaymentMethod records how a finalized quote will be paid
func (s *QuoteService) SelectPaymentMethod(ctx context.Context, userID, orderID uuid.UUID, req SelectPaymentMethodRequest) (*OrderResponse, error) {
	order, customer, err := s.load(ctx, userID, orderID)
	if err != nil {
		return nil, err
	}
	if err := order.SelectPaymentMethod(trade.PaymentMethod(req.Method)); err != nil {
		return nil, err
	}
	if err := s.orderRepo.SaveWithLock(ctx, order); err != nil {
		return nil, err
	}
	return s.respond(order, customer), nil
}

// RenderPDF prints one of the user's quotes or orders. It returns the PDF
// bytes and a download file name.
func (s *QuoteService) RenderPDF(ctx context.Context, userID, orderID uuid.UUID) ([]byte, string, error) {
	if s.renderer == nil {
		return nil, "", ErrPDFDisabled
	}
	order, customer, err := s.load(ctx, userID, orderID)
	if err != nil {
		return nil, "", err
	}

	response := s.respond(order, customer)
	pdf, err := s.renderer.RenderQuote(ctx, QuoteDocument{
		Store:      s.config.Store,
		VATPercent: s.config.VATPercent,
		Order:      *response,
		Customer:   response.Customer,
		IssuedAt:   s.config.Now().In(s.config.Location),
	})
	if err != nil {
		s.logger.Error("Failed to render quote PDF",
			zap.String("order_number", order.OrderNumber),
			zap.Error(err))
		return nil, "", fmt.Errorf("render quote %s: %w", order.OrderNumber, err)
	}
	return pdf, fmt.Sprintf("cotizacion_%s.pdf", order.OrderNumber), nil
}

func (s *QuoteService) defaultDeliveryDate() time.Time {
	now := s.config.Now().In(s.config.Location)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, s.config.Location)
	return today.AddDate(0, 0, s.config.DeliveryDays)
}

func (s *QuoteService) respond(order *trade.Order, customer *partner.Customer) *OrderResponse {
	response := ToOrderResponse(order, false)
	response.Customer = ToOrderCustomer(customer)
	return &response
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
