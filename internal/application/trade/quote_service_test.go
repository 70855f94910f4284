package trade

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	partnerapp "github.com/pozinox/backend/internal/application/partner"
	"github.com/pozinox/backend/internal/domain/identity"
	"github.com/pozinox/backend/internal/domain/shared"
	"github.com/pozinox/backend/internal/domain/trade"
	"github.com/pozinox/backend/internal/infrastructure/telemetry"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

type quoteFixture struct {
	orders    *MockOrderRepository
	products  *MockProductRepository
	users     *MockUserRepository
	customers *MockCustomerResolver
	renderer  *MockQuoteRenderer
	publisher *recordingPublisher
	svc       *QuoteService
}

func newQuoteFixture(numbers ...string) *quoteFixture {
	f := &quoteFixture{
		orders:    new(MockOrderRepository),
		products:  new(MockProductRepository),
		users:     new(MockUserRepository),
		customers: new(MockCustomerResolver),
		renderer:  new(MockQuoteRenderer),
		publisher: &recordingPublisher{},
	}
	config := DefaultQuoteServiceConfig()
	config.Now = func() time.Time { return time.Date(2024, 5, 1, 15, 30, 0, 0, time.UTC) }
	config.Store = StoreInfo{Name: "Pozinox SpA", TaxID: "76.543.210-3"}
	f.svc = NewQuoteService(f.orders, f.products, f.users, f.customers, &fixedNumbers{numbers: numbers}, f.renderer, config, nil)
	f.svc.SetEventPublisher(f.publisher)
	return f
}

func TestQuoteService_ListForUser(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()

	t.Run("user without customer has no quotes", func(t *testing.T) {
		f := newQuoteFixture()
		f.customers.On("FindForUser", ctx, userID).Return(nil, shared.ErrNotFound)

		items, total, err := f.svc.ListForUser(ctx, userID, QuoteListFilter{})
		require.NoError(t, err)
		assert.Empty(t, items)
		assert.Equal(t, int64(0), total)
		f.orders.AssertNotCalled(t, "FindAll", mock.Anything, mock.Anything)
	})

	t.Run("filters by the user's customer", func(t *testing.T) {
		f := newQuoteFixture()
		customer := newTestCustomer(t)
		f.customers.On("FindForUser", ctx, userID).Return(customer, nil)

		matchCustomer := mock.MatchedBy(func(filter shared.Filter) bool {
			return filter.Filters["customer_id"] == customer.ID && filter.OrderDir == "desc"
		})
		f.orders.On("FindAll", ctx, matchCustomer).Return([]trade.Order{*newTestQuote(t, customer.ID)}, nil)
		f.orders.On("Count", ctx, matchCustomer).Return(int64(1), nil)

		items, total, err := f.svc.ListForUser(ctx, userID, QuoteListFilter{})
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.True(t, items[0].IsQuote)
		assert.Equal(t, 2, items[0].ItemCount)
		assert.Equal(t, int64(1), total)
	})
}

func TestQuoteService_Create(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()

	t.Run("opens quote for existing customer", func(t *testing.T) {
		f := newQuoteFixture("POZ20240501001")
		customer := newTestCustomer(t)
		f.customers.On("FindForUser", ctx, userID).Return(customer, nil)
		f.orders.On("Save", ctx, mock.AnythingOfType("*trade.Order")).Return(nil)

		resp, err := f.svc.Create(ctx, userID, CreateQuoteRequest{Notes: "Entrega en obra"})
		require.NoError(t, err)
		assert.Equal(t, "POZ20240501001", resp.OrderNumber)
		assert.Equal(t, "pending", resp.Status)
		assert.True(t, resp.IsQuote)
		assert.Equal(t, "Entrega en obra", resp.Notes)
		assert.Equal(t, customer.ID, resp.Customer.ID)
		assert.Equal(t, []string{trade.EventTypeOrderCreated}, f.publisher.types())
	})

	t.Run("creates customer from profile on first quote", func(t *testing.T) {
		f := newQuoteFixture("POZ20240501002")
		user, err := identity.NewUser("ana", "ana@aceros.cl", "secreto123", "Ana", "Rojas")
		require.NoError(t, err)
		user.ID = userID
		user.UpdateProfile("+56 9 1234 5678", "Av. Pajaritos 123", "Maipu", "Santiago")
		user.MarkEmailVerified(time.Now())
		customer := newTestCustomer(t)

		f.customers.On("FindForUser", ctx, userID).Return(nil, shared.ErrNotFound)
		f.users.On("FindByID", ctx, userID).Return(user, nil)
		f.customers.On("EnsureForUser", ctx, mock.MatchedBy(func(in partnerapp.EnsureCustomerInput) bool {
			return in.UserID == userID && in.TaxID == "12.345.678-5" && in.Commune == "Maipu" && in.Email == "ana@aceros.cl" &&
				in.EmailVerified
		})).Return(customer, nil)
		f.orders.On("Save", ctx, mock.AnythingOfType("*trade.Order")).Return(nil)

		resp, err := f.svc.Create(ctx, userID, CreateQuoteRequest{TaxID: "12.345.678-5"})
		require.NoError(t, err)
		assert.Equal(t, customer.ID, resp.CustomerID)
		f.customers.AssertExpectations(t)
	})

	t.Run("asks for RUT when the profile is incomplete", func(t *testing.T) {
		f := newQuoteFixture("POZ20240501003")
		user, err := identity.NewUser("ana", "ana@aceros.cl", "secreto123", "Ana", "Rojas")
		require.NoError(t, err)
		f.customers.On("FindForUser", ctx, userID).Return(nil, shared.ErrNotFound)
		f.users.On("FindByID", ctx, userID).Return(user, nil)
		f.customers.On("EnsureForUser", ctx, mock.Anything).Return(nil, partnerapp.ErrCustomerProfileIncomplete)

		_, err = f.svc.Create(ctx, userID, CreateQuoteRequest{})
		assert.ErrorIs(t, err, partnerapp.ErrCustomerProfileIncomplete)
		f.orders.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})
}

func TestQuoteService_Get(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()

	t.Run("hides orders of other customers", func(t *testing.T) {
		f := newQuoteFixture()
		customer := newTestCustomer(t)
		order := newTestQuote(t, uuid.New())
		f.customers.On("FindForUser", ctx, userID).Return(customer, nil)
		f.orders.On("FindByID", ctx, order.ID).Return(order, nil)

		_, err := f.svc.Get(ctx, userID, order.ID)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("does not expose internal notes", func(t *testing.T) {
		f := newQuoteFixture()
		customer := newTestCustomer(t)
		order := newTestQuote(t, customer.ID)
		order.UpdateNotes("visible", "margen bajo")
		f.customers.On("FindForUser", ctx, userID).Return(customer, nil)
		f.orders.On("FindByID", ctx, order.ID).Return(order, nil)

		resp, err := f.svc.Get(ctx, userID, order.ID)
		require.NoError(t, err)
		assert.Equal(t, "visible", resp.Notes)
		assert.Empty(t, resp.InternalNotes)
	})
}

func TestQuoteService_Lines(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()

	t.Run("adds and merges product lines", func(t *testing.T) {
		f := newQuoteFixture()
		customer := newTestCustomer(t)
		order, err := trade.NewQuote("POZ20240501001", customer.ID)
		require.NoError(t, err)
		product := newTestProduct(t, "PL-304", 10000)

		f.customers.On("FindForUser", ctx, userID).Return(customer, nil)
		f.orders.On("FindByID", ctx, order.ID).Return(order, nil)
		f.products.On("FindByID", ctx, product.ID).Return(product, nil)
		f.orders.On("SaveWithLock", ctx, order).Return(nil)

		_, err = f.svc.AddLine(ctx, userID, order.ID, AddLineRequest{ProductID: product.ID, Quantity: 2})
		require.NoError(t, err)
		resp, err := f.svc.AddLine(ctx, userID, order.ID, AddLineRequest{ProductID: product.ID, Quantity: 1})
		require.NoError(t, err)

		require.Len(t, resp.Lines, 1)
		assert.Equal(t, 3, resp.Lines[0].Quantity)
		assert.Equal(t, "PL-304", resp.Lines[0].ProductCode)
		assert.True(t, decimal.NewFromInt(30000).Equal(resp.Subtotal))
		assert.True(t, decimal.NewFromInt(5700).Equal(resp.Tax))
		assert.True(t, decimal.NewFromInt(35700).Equal(resp.Total))
	})

	t.Run("rejects inactive product", func(t *testing.T) {
		f := newQuoteFixture()
		customer := newTestCustomer(t)
		order := newTestQuote(t, customer.ID)
		product := newTestProduct(t, "TB-20", 5000)
		product.SetActive(false)

		f.customers.On("FindForUser", ctx, userID).Return(customer, nil)
		f.orders.On("FindByID", ctx, order.ID).Return(order, nil)
		f.products.On("FindByID", ctx, product.ID).Return(product, nil)

		_, err := f.svc.AddLine(ctx, userID, order.ID, AddLineRequest{ProductID: product.ID, Quantity: 1})
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "PRODUCT_UNAVAILABLE", domainErr.Code)
	})

	t.Run("quantity zero removes the line", func(t *testing.T) {
		f := newQuoteFixture()
		customer := newTestCustomer(t)
		order := newTestQuote(t, customer.ID)
		lineID := order.Lines[0].ID

		f.customers.On("FindForUser", ctx, userID).Return(customer, nil)
		f.orders.On("FindByLineID", ctx, lineID).Return(order, nil)
		f.orders.On("SaveWithLock", ctx, order).Return(nil)

		zero := 0
		resp, err := f.svc.UpdateLine(ctx, userID, lineID, UpdateLineRequest{Quantity: &zero})
		require.NoError(t, err)
		assert.Empty(t, resp.Lines)
		assert.True(t, resp.Total.IsZero())
	})

	t.Run("finalized quote is read-only", func(t *testing.T) {
		f := newQuoteFixture()
		customer := newTestCustomer(t)
		order := newFinalizedOrder(t, customer.ID)
		lineID := order.Lines[0].ID

		f.customers.On("FindForUser", ctx, userID).Return(customer, nil)
		f.orders.On("FindByLineID", ctx, lineID).Return(order, nil)

		_, err := f.svc.RemoveLine(ctx, userID, lineID)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "QUOTE_NOT_EDITABLE", domainErr.Code)
		f.orders.AssertNotCalled(t, "SaveWithLock", mock.Anything, mock.Anything)
	})
}

func TestQuoteService_Finalize(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()

	t.Run("defaults delivery date to store lead time", func(t *testing.T) {
		f := newQuoteFixture()
		customer := newTestCustomer(t)
		order := newTestQuote(t, customer.ID)
		f.customers.On("FindForUser", mock.Anything, userID).Return(customer, nil)
		f.orders.On("FindByID", mock.Anything, order.ID).Return(order, nil)
		f.orders.On("SaveWithLock", mock.Anything, order).Return(nil)

		resp, err := f.svc.Finalize(ctx, userID, order.ID, FinalizeQuoteRequest{})
		require.NoError(t, err)
		assert.False(t, resp.IsQuote)
		require.NotNil(t, resp.DeliveryDate)
		assert.Equal(t, time.Date(2024, 5, 8, 0, 0, 0, 0, time.UTC), *resp.DeliveryDate)
		assert.True(t, decimal.NewFromInt(23800).Equal(resp.Total))
		assert.Equal(t, []string{trade.EventTypeOrderFinalized}, f.publisher.types())
	})

	t.Run("records finalized quote metrics", func(t *testing.T) {
		reader := sdkmetric.NewManualReader()
		provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
		t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })
		metrics, err := telemetry.NewStoreMetrics(provider.Meter("test"))
		require.NoError(t, err)

		f := newQuoteFixture()
		f.svc.SetStoreMetrics(metrics)
		customer := newTestCustomer(t)
		order := newTestQuote(t, customer.ID)
		f.customers.On("FindForUser", mock.Anything, userID).Return(customer, nil)
		f.orders.On("FindByID", mock.Anything, order.ID).Return(order, nil)
		f.orders.On("SaveWithLock", mock.Anything, order).Return(nil)

		_, err = f.svc.Finalize(ctx, userID, order.ID, FinalizeQuoteRequest{})
		require.NoError(t, err)

		var rm metricdata.ResourceMetrics
		require.NoError(t, reader.Collect(ctx, &rm))
		recorded := map[string]bool{}
		for _, sm := range rm.ScopeMetrics {
			for _, m := range sm.Metrics {
				recorded[m.Name] = true
			}
		}
		assert.True(t, recorded["pozinox_quotes_finalized_total"])
		assert.True(t, recorded["pozinox_quote_value_clp"])
		assert.False(t, recorded["pozinox_quotes_created_total"])
	})

	t.Run("empty quote cannot be finalized", func(t *testing.T) {
		f := newQuoteFixture()
		customer := newTestCustomer(t)
		order, err := trade.NewQuote("POZ20240501001", customer.ID)
		require.NoError(t, err)
		f.customers.On("FindForUser", mock.Anything, userID).Return(customer, nil)
		f.orders.On("FindByID", mock.Anything, order.ID).Return(order, nil)

		_, err = f.svc.Finalize(ctx, userID, order.ID, FinalizeQuoteRequest{})
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "NO_LINES", domainErr.Code)
	})
}

func TestQuoteService_SelectPaymentMethod(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	f := newQuoteFixture()
	customer := newTestCustomer(t)
	order := newFinalizedOrder(t, customer.ID)
	f.customers.On("FindForUser", ctx, userID).Return(customer, nil)
	f.orders.On("FindByID", ctx, order.ID).Return(order, nil)
	f.orders.On("SaveWithLock", ctx, order).Return(nil)

	resp, err := f.svc.SelectPaymentMethod(ctx, userID, order.ID, SelectPaymentMethodRequest{Method: "transfer"})
	require.NoError(t, err)
	assert.Equal(t, "transfer", resp.PaymentMethod)
}

func TestQuoteService_RenderPDF(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()

	t.Run("renders with store info", func(t *testing.T) {
		f := newQuoteFixture()
		customer := newTestCustomer(t)
		order := newFinalizedOrder(t, customer.ID)
		f.customers.On("FindForUser", ctx, userID).Return(customer, nil)
		f.orders.On("FindByID", ctx, order.ID).Return(order, nil)
		f.renderer.On("RenderQuote", ctx, mock.MatchedBy(func(doc QuoteDocument) bool {
			return doc.Store.Name == "Pozinox SpA" && doc.Order.OrderNumber == order.OrderNumber && doc.Customer != nil
		})).Return([]byte("%PDF-1.4"), nil)

		pdf, name, err := f.svc.RenderPDF(ctx, userID, order.ID)
		require.NoError(t, err)
		assert.Equal(t, []byte("%PDF-1.4"), pdf)
		assert.Equal(t, "cotizacion_POZ20240501001.pdf", name)
	})

	t.Run("disabled without renderer", func(t *testing.T) {
		svc := NewQuoteService(nil, nil, nil, nil, nil, nil, DefaultQuoteServiceConfig(), nil)
		_, _, err := svc.RenderPDF(ctx, userID, uuid.New())
		assert.ErrorIs(t, err, ErrPDFDisabled)
	})
}
