package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	catalogapp "github.com/pozinox/backend/internal/application/catalog"
	identityapp "github.com/pozinox/backend/internal/application/identity"
	partnerapp "github.com/pozinox/backend/internal/application/partner"
	tradeapp "github.com/pozinox/backend/internal/application/trade"
	"github.com/pozinox/backend/internal/domain/catalog"
	"github.com/pozinox/backend/internal/domain/identity"
	"github.com/pozinox/backend/internal/domain/partner"
	"github.com/pozinox/backend/internal/domain/trade"
	"github.com/pozinox/backend/internal/infrastructure/auth"
	"github.com/pozinox/backend/internal/infrastructure/config"
	"github.com/pozinox/backend/internal/infrastructure/persistence"
	"github.com/pozinox/backend/internal/infrastructure/persistence/models"
	"github.com/pozinox/backend/internal/infrastructure/storage"
	"github.com/pozinox/backend/internal/interfaces/http/dto"
	"github.com/pozinox/backend/internal/interfaces/http/middleware"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type fakeQuoteRenderer struct {
	docs []tradeapp.QuoteDocument
}

func (r *fakeQuoteRenderer) RenderQuote(_ context.Context, doc tradeapp.QuoteDocument) ([]byte, error) {
	r.docs = append(r.docs, doc)
	return []byte("%PDF-1.4 quote"), nil
}

// storefront wires real services over an in-memory database
type storefront struct {
	engine     *gin.Engine
	db         *gorm.DB
	jwt        *auth.JWTService
	users      *persistence.GormUserRepository
	categories *persistence.GormCategoryRepository
	products   *persistence.GormProductRepository
	customers  *persistence.GormCustomerRepository
	orders     *persistence.GormOrderRepository
	renderer   *fakeQuoteRenderer
	apiTokens  *identityapp.APITokenService
}

func newStorefront(t *testing.T) *storefront {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(models.AllModels()...))

	jwtService := auth.NewJWTService(config.JWTConfig{
		Secret:                 "test-secret-key-that-is-long-enough",
		AccessTokenExpiration:  15 * time.Minute,
		RefreshTokenExpiration: 24 * time.Hour,
		Issuer:                 "pozinox-test",
		MaxRefreshCount:        5,
	})

	users := persistence.NewGormUserRepository(db)
	categories := persistence.NewGormCategoryRepository(db)
	products := persistence.NewGormProductRepository(db)
	customers := persistence.NewGormCustomerRepository(db)
	orders := persistence.NewGormOrderRepository(db)

	customerService := partnerapp.NewCustomerService(customers, nil)
	productService := catalogapp.NewProductService(products, categories,
		storage.NewMemoryImageStorage("http://images.test"), catalogapp.DefaultProductServiceConfig(), nil)
	categoryService := catalogapp.NewCategoryService(categories, products, nil)
	authService := identityapp.NewAuthService(users, jwtService, auth.NewMemoryRevocationStore(),
		customerService, identityapp.AuthServiceConfig{}, nil)
	apiTokens := identityapp.NewAPITokenService(users, nil)
	renderer := &fakeQuoteRenderer{}
	quoteService := tradeapp.NewQuoteService(orders, products, users, customerService,
		trade.NewOrderNumberGenerator(persistence.NewGormOrderSequence(db)),
		renderer, tradeapp.DefaultQuoteServiceConfig(), nil)
	paymentService := tradeapp.NewPaymentService(orders, customerService, nil, tradeapp.PaymentServiceConfig{}, nil)

	catalogHandler := NewCatalogHandler(productService, categoryService)
	categoryHandler := NewCategoryHandler(categoryService)
	authHandler := NewAuthHandler(authService)
	quoteHandler := NewQuoteHandler(quoteService, paymentService)
	webhookHandler := NewPaymentWebhookHandler(paymentService)
	chatbotHandler := NewChatbotHandler(authService, quoteService, productService)

	engine := gin.New()
	engine.Use(middleware.RequestID())
	api := engine.Group("/api/v1")
	api.GET("/catalog/home", catalogHandler.Home)
	api.GET("/catalog/products", catalogHandler.ListProducts)
	api.GET("/catalog/products/:id", catalogHandler.GetProduct)
	api.GET("/catalog/categories", catalogHandler.ListCategories)
	api.POST("/auth/register", authHandler.Register)
	api.POST("/auth/login", authHandler.Login)
	api.POST("/payments/mercadopago/webhook", webhookHandler.MercadoPago)

	jwtAuth := middleware.JWTAuthMiddleware(jwtService)
	api.GET("/auth/me", jwtAuth, authHandler.Me)

	quotes := api.Group("/quotes", jwtAuth)
	quotes.GET("", quoteHandler.List)
	quotes.POST("", quoteHandler.Create)
	quotes.GET("/:id", quoteHandler.Get)
	quotes.POST("/:id/lines", quoteHandler.AddLine)
	quotes.POST("/:id/finalize", quoteHandler.Finalize)
	quotes.GET("/:id/pdf", quoteHandler.DownloadPDF)
	quotes.POST("/:id/pay", quoteHandler.Pay)

	admin := api.Group("/admin", jwtAuth, middleware.RequireSuperuser())
	admin.DELETE("/categories/:id", categoryHandler.Delete)

	chatbot := api.Group("/chatbot", middleware.APITokenAuth(apiTokens, nil))
	chatbot.GET("/me", chatbotHandler.Me)

	return &storefront{
		engine:     engine,
		db:         db,
		jwt:        jwtService,
		users:      users,
		categories: categories,
		products:   products,
		customers:  customers,
		orders:     orders,
		renderer:   renderer,
		apiTokens:  apiTokens,
	}
}

func (s *storefront) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	return w
}

func (s *storefront) seedUser(t *testing.T, username string, superuser bool) (*identity.User, string) {
	t.Helper()
	user, err := identity.NewUser(username, username+"@pozinox.cl", "acero2024", "Ana", "Rojas")
	require.NoError(t, err)
	user.SetSuperuser(superuser)
	require.NoError(t, s.users.Save(context.Background(), user))
	pair, err := s.jwt.GenerateTokenPair(auth.GenerateTokenInput{
		UserID:      user.ID,
		Username:    user.Username,
		IsSuperuser: superuser,
	})
	require.NoError(t, err)
	return user, pair.AccessToken
}

func (s *storefront) seedProduct(t *testing.T, categoryID uuid.UUID, code string, price int64, active bool) *catalog.Product {
	t.Helper()
	product, err := catalog.NewProduct(code, "Plancha "+code, categoryID, catalog.SteelTypeStainless, decimal.NewFromInt(price))
	require.NoError(t, err)
	product.SetActive(active)
	require.NoError(t, s.products.Save(context.Background(), product))
	return product
}

func (s *storefront) seedCategory(t *testing.T, name string) *catalog.Category {
	t.Helper()
	category, err := catalog.NewCategory(name, "")
	require.NoError(t, err)
	require.NoError(t, s.categories.Save(context.Background(), category))
	return category
}

func decode(t *testing.T, w *httptest.ResponseRecorder) dto.Response {
	t.Helper()
	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

// decodeData re-decodes the data member into out
func decodeData(t *testing.T, w *httptest.ResponseRecorder, out any) {
	t.Helper()
	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.NoError(t, json.Unmarshal(envelope.Data, out))
}

func TestCatalogHandler(t *testing.T) {
	s := newStorefront(t)
	category := s.seedCategory(t, "Planchas")
	visible := s.seedProduct(t, category.ID, "PL-304", 45000, true)
	hidden := s.seedProduct(t, category.ID, "PL-316", 52000, false)

	t.Run("home lists only active products", func(t *testing.T) {
		w := s.do(t, http.MethodGet, "/api/v1/catalog/home", "", nil)
		require.Equal(t, http.StatusOK, w.Code)

		var home catalogapp.HomeResponse
		decodeData(t, w, &home)
		require.Len(t, home.FeaturedProducts, 1)
		assert.Equal(t, visible.ID, home.FeaturedProducts[0].ID)
		require.Len(t, home.Categories, 1)
		assert.Equal(t, "Planchas", home.Categories[0].Name)
	})

	t.Run("product list carries pagination meta", func(t *testing.T) {
		w := s.do(t, http.MethodGet, "/api/v1/catalog/products?category_id="+category.ID.String(), "", nil)
		require.Equal(t, http.StatusOK, w.Code)

		resp := decode(t, w)
		require.NotNil(t, resp.Meta)
		assert.Equal(t, int64(1), resp.Meta.Total)
		assert.Equal(t, 1, resp.Meta.Page)
	})

	t.Run("malformed category filter", func(t *testing.T) {
		w := s.do(t, http.MethodGet, "/api/v1/catalog/products?category_id=nope", "", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("inactive product is not found", func(t *testing.T) {
		w := s.do(t, http.MethodGet, "/api/v1/catalog/products/"+hidden.ID.String(), "", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, dto.ErrCodeNotFound, decode(t, w).Error.Code)
	})

	t.Run("active product", func(t *testing.T) {
		w := s.do(t, http.MethodGet, "/api/v1/catalog/products/"+visible.ID.String(), "", nil)
		require.Equal(t, http.StatusOK, w.Code)

		var product catalogapp.ProductResponse
		decodeData(t, w, &product)
		assert.Equal(t, "PL-304", product.Code)
		assert.True(t, decimal.NewFromInt(45000).Equal(product.UnitPrice))
	})
}

func TestAuthHandler_RegisterAndLogin(t *testing.T) {
	s := newStorefront(t)

	register := map[string]any{
		"username":   "mperez",
		"email":      "MPerez@Example.cl",
		"password":   "acero2024",
		"first_name": "María",
		"last_name":  "Pérez",
	}

	w := s.do(t, http.MethodPost, "/api/v1/auth/register", "", register)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var registered identityapp.AuthResult
	decodeData(t, w, &registered)
	assert.NotEmpty(t, registered.AccessToken)
	assert.Equal(t, "mperez@example.cl", registered.User.Email)

	t.Run("duplicate username", func(t *testing.T) {
		w := s.do(t, http.MethodPost, "/api/v1/auth/register", "", register)
		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, "DUPLICATE_USERNAME", decode(t, w).Error.Code)
	})

	t.Run("validation errors list fields", func(t *testing.T) {
		w := s.do(t, http.MethodPost, "/api/v1/auth/register", "", map[string]any{"username": "x"})
		require.Equal(t, http.StatusBadRequest, w.Code)
		resp := decode(t, w)
		assert.Equal(t, dto.ErrCodeValidation, resp.Error.Code)
		assert.NotEmpty(t, resp.Error.Details)
	})

	t.Run("login by email then me", func(t *testing.T) {
		w := s.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]any{
			"login":    "mperez@example.cl",
			"password": "acero2024",
		})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		var result identityapp.AuthResult
		decodeData(t, w, &result)

		w = s.do(t, http.MethodGet, "/api/v1/auth/me", result.AccessToken, nil)
		require.Equal(t, http.StatusOK, w.Code)
		var me identityapp.UserResponse
		decodeData(t, w, &me)
		assert.Equal(t, "mperez", me.Username)
	})

	t.Run("wrong password", func(t *testing.T) {
		w := s.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]any{
			"login":    "mperez",
			"password": "incorrecta",
		})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("me requires a token", func(t *testing.T) {
		w := s.do(t, http.MethodGet, "/api/v1/auth/me", "", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestCategoryHandler_Delete(t *testing.T) {
	s := newStorefront(t)
	_, adminToken := s.seedUser(t, "admin", true)
	_, customerToken := s.seedUser(t, "cliente", false)
	category := s.seedCategory(t, "Perfiles")
	s.seedProduct(t, category.ID, "PF-100", 12000, true)
	s.seedProduct(t, category.ID, "PF-200", 15000, true)
	path := "/api/v1/admin/categories/" + category.ID.String()

	t.Run("customers are forbidden", func(t *testing.T) {
		w := s.do(t, http.MethodDelete, path, customerToken, nil)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("category with products needs force", func(t *testing.T) {
		w := s.do(t, http.MethodDelete, path, adminToken, nil)
		require.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, "CATEGORY_HAS_PRODUCTS", decode(t, w).Error.Code)

		var preview catalogapp.CategoryDeletion
		decodeData(t, w, &preview)
		assert.Equal(t, int64(2), preview.ProductCount)
		assert.False(t, preview.Deleted)
	})

	t.Run("forced delete", func(t *testing.T) {
		w := s.do(t, http.MethodDelete, path+"?force=true", adminToken, nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var result catalogapp.CategoryDeletion
		decodeData(t, w, &result)
		assert.True(t, result.Deleted)

		w = s.do(t, http.MethodDelete, path, adminToken, nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestQuoteHandler_Flow(t *testing.T) {
	s := newStorefront(t)
	_, token := s.seedUser(t, "constructora", false)
	_, otherToken := s.seedUser(t, "otro", false)
	category := s.seedCategory(t, "Tubos")
	product := s.seedProduct(t, category.ID, "TB-50", 10000, true)

	w := s.do(t, http.MethodPost, "/api/v1/quotes", token, map[string]any{"tax_id": "12.345.678-5"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var quote tradeapp.OrderResponse
	decodeData(t, w, &quote)
	assert.True(t, quote.IsQuote)
	assert.NotEmpty(t, quote.OrderNumber)
	quotePath := "/api/v1/quotes/" + quote.ID.String()

	t.Run("add line recomputes totals", func(t *testing.T) {
		w := s.do(t, http.MethodPost, quotePath+"/lines", token, map[string]any{
			"product_id": product.ID,
			"quantity":   3,
		})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var updated tradeapp.OrderResponse
		decodeData(t, w, &updated)
		require.Len(t, updated.Lines, 1)
		assert.True(t, decimal.NewFromInt(30000).Equal(updated.Subtotal))
		assert.True(t, decimal.NewFromInt(5700).Equal(updated.Tax))
		assert.True(t, decimal.NewFromInt(35700).Equal(updated.Total))
	})

	t.Run("other customers cannot see the quote", func(t *testing.T) {
		w := s.do(t, http.MethodGet, quotePath, otherToken, nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("listing shows the quote", func(t *testing.T) {
		w := s.do(t, http.MethodGet, "/api/v1/quotes", token, nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, int64(1), decode(t, w).Meta.Total)
	})

	t.Run("pdf download", func(t *testing.T) {
		w := s.do(t, http.MethodGet, quotePath+"/pdf", token, nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
		assert.Contains(t, w.Header().Get("Content-Disposition"), "cotizacion_"+quote.OrderNumber+".pdf")
		assert.Equal(t, "%PDF-1.4 quote", w.Body.String())
		require.Len(t, s.renderer.docs, 1)
		assert.Equal(t, quote.OrderNumber, s.renderer.docs[0].Order.OrderNumber)
	})

	t.Run("finalized quote is read-only", func(t *testing.T) {
		w := s.do(t, http.MethodPost, quotePath+"/finalize", token, nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		var finalized tradeapp.OrderResponse
		decodeData(t, w, &finalized)
		assert.False(t, finalized.IsQuote)

		w = s.do(t, http.MethodPost, quotePath+"/lines", token, map[string]any{
			"product_id": product.ID,
			"quantity":   1,
		})
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})

	t.Run("card payment without a gateway", func(t *testing.T) {
		w := s.do(t, http.MethodPost, quotePath+"/pay", token, nil)
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.Equal(t, "PAYMENT_DISABLED", decode(t, w).Error.Code)
	})

	t.Run("malformed quote id", func(t *testing.T) {
		w := s.do(t, http.MethodGet, "/api/v1/quotes/abc", token, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestQuoteHandler_CustomerEmailLinking(t *testing.T) {
	s := newStorefront(t)
	ctx := context.Background()

	// a customer entered by staff, with an order, and no account yet
	seedStaffCustomer := func(t *testing.T, taxID, email, orderNumber string) {
		t.Helper()
		customer, err := partner.NewCustomer(partner.CustomerTypeIndividual, "Empresa", "Andina", taxID, email)
		require.NoError(t, err)
		require.NoError(t, s.customers.Save(ctx, customer))
		order, err := trade.NewQuote(orderNumber, customer.ID)
		require.NoError(t, err)
		order.UpdateNotes("entregar en bodega secreta", "")
		require.NoError(t, s.orders.Save(ctx, order))
	}
	seedStaffCustomer(t, "76.086.428-5", "victima@empresa.cl", "POZ20240501001")

	t.Run("unverified registration cannot take over the customer", func(t *testing.T) {
		w := s.do(t, http.MethodPost, "/api/v1/auth/register", "", map[string]any{
			"username":   "intruso",
			"email":      "victima@empresa.cl",
			"password":   "acero2024",
			"first_name": "Intruso",
			"last_name":  "Anonimo",
			"tax_id":     "11.111.111-1",
		})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		var registered identityapp.AuthResult
		decodeData(t, w, &registered)

		w = s.do(t, http.MethodPost, "/api/v1/quotes", registered.AccessToken, map[string]any{"tax_id": "11.111.111-1"})
		require.Equal(t, http.StatusConflict, w.Code, w.Body.String())
		assert.Equal(t, "CUSTOMER_EMAIL_CLAIMED", decode(t, w).Error.Code)

		w = s.do(t, http.MethodGet, "/api/v1/quotes", registered.AccessToken, nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.NotContains(t, w.Body.String(), "POZ20240501001")
		assert.NotContains(t, w.Body.String(), "bodega secreta")

		customer, err := s.customers.FindByEmail(ctx, "victima@empresa.cl")
		require.NoError(t, err)
		assert.Nil(t, customer.UserID)
	})

	t.Run("verified user inherits the staff-created customer", func(t *testing.T) {
		seedStaffCustomer(t, "12.345.678-5", "compras@andina.cl", "POZ20240501002")
		user, err := identity.NewUser("andina", "compras@andina.cl", "acero2024", "Compras", "Andina")
		require.NoError(t, err)
		user.MarkEmailVerified(time.Now())
		require.NoError(t, s.users.Save(ctx, user))
		pair, err := s.jwt.GenerateTokenPair(auth.GenerateTokenInput{UserID: user.ID, Username: user.Username})
		require.NoError(t, err)

		w := s.do(t, http.MethodPost, "/api/v1/quotes", pair.AccessToken, map[string]any{})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		w = s.do(t, http.MethodGet, "/api/v1/quotes", pair.AccessToken, nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, int64(2), decode(t, w).Meta.Total)
		assert.Contains(t, w.Body.String(), "POZ20240501002")
	})
}

func TestPaymentWebhookHandler_Disabled(t *testing.T) {
	s := newStorefront(t)

	w := s.do(t, http.MethodPost, "/api/v1/payments/mercadopago/webhook?topic=payment&id=123", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestChatbotHandler_APIToken(t *testing.T) {
	s := newStorefront(t)
	user, _ := s.seedUser(t, "integracion", false)

	issued, err := s.apiTokens.Generate(context.Background(), user.ID)
	require.NoError(t, err)

	call := func(token string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/chatbot/me", nil)
		if token != "" {
			req.Header.Set(middleware.APITokenHeader, token)
		}
		w := httptest.NewRecorder()
		s.engine.ServeHTTP(w, req)
		return w
	}

	t.Run("valid token", func(t *testing.T) {
		w := call(issued.Token)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		var me identityapp.UserResponse
		decodeData(t, w, &me)
		assert.Equal(t, user.ID, me.ID)
	})

	t.Run("missing token", func(t *testing.T) {
		assert.Equal(t, http.StatusUnauthorized, call("").Code)
	})

	t.Run("revoked token", func(t *testing.T) {
		require.NoError(t, s.apiTokens.Revoke(context.Background(), user.ID))
		assert.Equal(t, http.StatusUnauthorized, call(issued.Token).Code)
	})
}
