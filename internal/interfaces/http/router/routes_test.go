package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/pozinox/backend/internal/interfaces/http/handler"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubHandlers builds handlers without services. Only routes that fail
// before reaching a service are exercised.
func stubHandlers() Handlers {
	return Handlers{
		Catalog:        handler.NewCatalogHandler(nil, nil),
		Auth:           handler.NewAuthHandler(nil),
		Verification:   handler.NewVerificationHandler(nil),
		APIToken:       handler.NewAPITokenHandler(nil),
		Chatbot:        handler.NewChatbotHandler(nil, nil, nil),
		Quote:          handler.NewQuoteHandler(nil, nil),
		PaymentWebhook: handler.NewPaymentWebhookHandler(nil),
		Notification:   handler.NewNotificationHandler(nil),
		Product:        handler.NewProductHandler(nil),
		Category:       handler.NewCategoryHandler(nil),
		Customer:       handler.NewCustomerHandler(nil),
		User:           handler.NewUserHandler(nil),
		Order:          handler.NewOrderHandler(nil),
		Dashboard:      handler.NewDashboardHandler(nil, nil),
		System:         handler.NewSystemHandler("pozinox", "test", nil),
	}
}

func abortWith(status int) gin.HandlerFunc {
	return func(c *gin.Context) { c.AbortWithStatus(status) }
}

func passHeader(header string, status int) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader(header) == "" {
			c.AbortWithStatus(status)
			return
		}
		c.Next()
	}
}

func newStorefrontEngine(g Guards) *gin.Engine {
	engine := gin.New()
	NewRouter(engine).RegisterGroups(StorefrontGroups(stubHandlers(), g)).Setup()
	return engine
}

func defaultGuards() Guards {
	return Guards{
		JWT:       passHeader("Authorization", http.StatusUnauthorized),
		Superuser: passHeader("X-Admin", http.StatusForbidden),
		APIToken:  abortWith(http.StatusUnauthorized),
	}
}

func TestStorefrontGroups_RouteTable(t *testing.T) {
	engine := newStorefrontEngine(defaultGuards())

	registered := make(map[string]bool)
	for _, route := range engine.Routes() {
		registered[route.Method+" "+route.Path] = true
	}

	expected := []string{
		"GET /api/v1/catalog/home",
		"GET /api/v1/catalog/products",
		"GET /api/v1/catalog/products/:id",
		"GET /api/v1/catalog/categories",
		"POST /api/v1/auth/register",
		"POST /api/v1/auth/login",
		"POST /api/v1/auth/logout",
		"POST /api/v1/auth/refresh",
		"GET /api/v1/auth/me",
		"PUT /api/v1/auth/profile",
		"POST /api/v1/auth/verification/send-code",
		"POST /api/v1/auth/verification/verify-code",
		"POST /api/v1/auth/verification/resend",
		"GET /api/v1/auth/verify-email/:token",
		"POST /api/v1/auth/api-token",
		"POST /api/v1/auth/api-token/validate",
		"DELETE /api/v1/auth/api-token",
		"GET /api/v1/chatbot/me",
		"GET /api/v1/chatbot/orders",
		"GET /api/v1/chatbot/products",
		"GET /api/v1/quotes",
		"POST /api/v1/quotes",
		"GET /api/v1/quotes/:id",
		"POST /api/v1/quotes/:id/lines",
		"PATCH /api/v1/quotes/lines/:lineId",
		"DELETE /api/v1/quotes/lines/:lineId",
		"POST /api/v1/quotes/:id/finalize",
		"POST /api/v1/quotes/:id/payment-method",
		"POST /api/v1/quotes/:id/pay",
		"GET /api/v1/quotes/:id/payment/:outcome",
		"GET /api/v1/quotes/:id/pdf",
		"POST /api/v1/payments/mercadopago/webhook",
		"GET /api/v1/notifications",
		"POST /api/v1/notifications/:id/read",
		"GET /api/v1/admin/dashboard",
		"GET /api/v1/admin/activity",
		"POST /api/v1/admin/products/:id/image",
		"GET /api/v1/admin/categories/:id/delete-preview",
		"DELETE /api/v1/admin/users/:id",
		"POST /api/v1/admin/orders/:id/status",
		"PUT /api/v1/admin/orders/lines/:lineId/discount",
	}
	for _, route := range expected {
		assert.True(t, registered[route], "missing route %s", route)
	}
}

func TestStorefrontGroups_Guards(t *testing.T) {
	engine := newStorefrontEngine(defaultGuards())

	tests := []struct {
		name    string
		method  string
		path    string
		headers map[string]string
		status  int
	}{
		{"quotes need a session", http.MethodGet, "/api/v1/quotes", nil, http.StatusUnauthorized},
		{"notifications need a session", http.MethodGet, "/api/v1/notifications", nil, http.StatusUnauthorized},
		{"profile needs a session", http.MethodPut, "/api/v1/auth/profile", nil, http.StatusUnauthorized},
		{"admin needs a session", http.MethodGet, "/api/v1/admin/dashboard", nil, http.StatusUnauthorized},
		{"admin needs a superuser", http.MethodGet, "/api/v1/admin/dashboard",
			map[string]string{"Authorization": "Bearer x"}, http.StatusForbidden},
		{"chatbot needs an API token", http.MethodGet, "/api/v1/chatbot/me", nil, http.StatusUnauthorized},
		{"malformed admin id reaches the handler", http.MethodGet, "/api/v1/admin/products/abc",
			map[string]string{"Authorization": "Bearer x", "X-Admin": "1"}, http.StatusBadRequest},
		{"refresh is public", http.MethodPost, "/api/v1/auth/refresh", nil, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serveWith(engine, tt.method, tt.path, tt.headers)
			assert.Equal(t, tt.status, w.Code)
		})
	}
}

func TestStorefrontGroups_RateLimits(t *testing.T) {
	var authCalls, codeCalls int
	g := defaultGuards()
	g.AuthLimit = func(c *gin.Context) {
		authCalls++
		c.AbortWithStatus(http.StatusTooManyRequests)
	}
	g.SendCodeLimit = func(c *gin.Context) {
		codeCalls++
		c.AbortWithStatus(http.StatusTooManyRequests)
	}
	engine := newStorefrontEngine(g)

	assert.Equal(t, http.StatusTooManyRequests, serve(engine, http.MethodPost, "/api/v1/auth/login").Code)
	assert.Equal(t, http.StatusTooManyRequests, serve(engine, http.MethodPost, "/api/v1/auth/register").Code)
	assert.Equal(t, http.StatusTooManyRequests, serve(engine, http.MethodPost, "/api/v1/auth/verification/send-code").Code)
	assert.Equal(t, http.StatusBadRequest, serve(engine, http.MethodPost, "/api/v1/auth/verification/verify-code").Code)

	require.Equal(t, 2, authCalls)
	require.Equal(t, 1, codeCalls)
}

func TestStorefrontGroups_OptionalLimits(t *testing.T) {
	engine := newStorefrontEngine(defaultGuards())

	// without limiters the request reaches the handler and fails binding
	assert.Equal(t, http.StatusBadRequest, serve(engine, http.MethodPost, "/api/v1/auth/login").Code)
}

func serveWith(engine *gin.Engine, method, path string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}
