package router

import (
	"github.com/gin-gonic/gin"
	"github.com/pozinox/backend/internal/interfaces/http/handler"
)

// Handlers bundles the HTTP handlers served under the API prefix
type Handlers struct {
	Catalog        *handler.CatalogHandler
	Auth           *handler.AuthHandler
	Verification   *handler.VerificationHandler
	APIToken       *handler.APITokenHandler
	Chatbot        *handler.ChatbotHandler
	Quote          *handler.QuoteHandler
	PaymentWebhook *handler.PaymentWebhookHandler
	Notification   *handler.NotificationHandler
	Product        *handler.ProductHandler
	Category       *handler.CategoryHandler
	Customer       *handler.CustomerHandler
	User           *handler.UserHandler
	Order          *handler.OrderHandler
	Dashboard      *handler.DashboardHandler
	System         *handler.SystemHandler
}

// Guards bundles the access middleware applied per route group.
// JWT, Superuser and APIToken are required; the rate limits are optional.
type Guards struct {
	JWT       gin.HandlerFunc
	Superuser gin.HandlerFunc
	APIToken  gin.HandlerFunc
	// AuthLimit throttles login and registration by client IP
	AuthLimit gin.HandlerFunc
	// SendCodeLimit throttles verification codes by email address
	SendCodeLimit gin.HandlerFunc
}

// with prepends the non-nil middleware to a handler
func with(h gin.HandlerFunc, middleware ...gin.HandlerFunc) []gin.HandlerFunc {
	chain := make([]gin.HandlerFunc, 0, len(middleware)+1)
	for _, m := range middleware {
		if m != nil {
			chain = append(chain, m)
		}
	}
	return append(chain, h)
}

// StorefrontGroups builds the route table of the storefront API
func StorefrontGroups(h Handlers, g Guards) []*DomainGroup {
	catalog := NewDomainGroup("catalog", "/catalog")
	catalog.GET("/home", h.Catalog.Home)
	catalog.GET("/products", h.Catalog.ListProducts)
	catalog.GET("/products/:id", h.Catalog.GetProduct)
	catalog.GET("/categories", h.Catalog.ListCategories)

	auth := NewDomainGroup("auth", "/auth")
	auth.POST("/register", with(h.Auth.Register, g.AuthLimit)...)
	auth.POST("/login", with(h.Auth.Login, g.AuthLimit)...)
	auth.POST("/refresh", h.Auth.Refresh)
	auth.POST("/logout", with(h.Auth.Logout, g.JWT)...)
	auth.GET("/me", with(h.Auth.Me, g.JWT)...)
	auth.PUT("/profile", with(h.Auth.UpdateProfile, g.JWT)...)
	auth.POST("/password", with(h.Auth.ChangePassword, g.JWT)...)
	auth.GET("/verify-email/:token", h.Verification.VerifyLink)
	auth.POST("/api-token", with(h.APIToken.Generate, g.JWT)...)
	auth.DELETE("/api-token", with(h.APIToken.Revoke, g.JWT)...)
	auth.POST("/api-token/validate", h.APIToken.Validate)

	verification := auth.Group("verification", "/verification")
	verification.POST("/send-code", with(h.Verification.SendCode, g.SendCodeLimit)...)
	verification.POST("/verify-code", h.Verification.VerifyCode)
	verification.POST("/resend", with(h.Verification.Resend, g.JWT)...)

	chatbot := NewDomainGroup("chatbot", "/chatbot").Use(g.APIToken)
	chatbot.GET("/me", h.Chatbot.Me)
	chatbot.GET("/orders", h.Chatbot.Orders)
	chatbot.GET("/products", h.Chatbot.Products)

	quotes := NewDomainGroup("quotes", "/quotes").Use(g.JWT)
	quotes.GET("", h.Quote.List)
	quotes.POST("", h.Quote.Create)
	quotes.GET("/:id", h.Quote.Get)
	quotes.POST("/:id/lines", h.Quote.AddLine)
	quotes.PATCH("/lines/:lineId", h.Quote.UpdateLine)
	quotes.DELETE("/lines/:lineId", h.Quote.RemoveLine)
	quotes.POST("/:id/finalize", h.Quote.Finalize)
	quotes.POST("/:id/payment-method", h.Quote.SelectPaymentMethod)
	quotes.POST("/:id/pay", h.Quote.Pay)
	quotes.GET("/:id/payment/:outcome", h.Quote.PaymentReturn)
	quotes.GET("/:id/pdf", h.Quote.DownloadPDF)

	payments := NewDomainGroup("payments", "/payments")
	payments.POST("/mercadopago/webhook", h.PaymentWebhook.MercadoPago)

	notifications := NewDomainGroup("notifications", "/notifications").Use(g.JWT)
	notifications.GET("", h.Notification.List)
	notifications.POST("/:id/read", h.Notification.MarkRead)

	admin := NewDomainGroup("admin", "/admin").Use(g.JWT, g.Superuser)
	admin.GET("/dashboard", h.Dashboard.Get)
	admin.GET("/activity", h.Dashboard.ListActivity)
	admin.GET("/system/info", h.System.GetSystemInfo)

	products := admin.Group("products", "/products")
	products.GET("", h.Product.List)
	products.POST("", h.Product.Create)
	products.GET("/:id", h.Product.Get)
	products.PUT("/:id", h.Product.Update)
	products.DELETE("/:id", h.Product.Delete)
	products.POST("/:id/image", h.Product.UploadImage)
	products.DELETE("/:id/image", h.Product.RemoveImage)

	categories := admin.Group("categories", "/categories")
	categories.GET("", h.Category.List)
	categories.POST("", h.Category.Create)
	categories.GET("/:id", h.Category.Get)
	categories.PUT("/:id", h.Category.Update)
	categories.GET("/:id/delete-preview", h.Category.DeletePreview)
	categories.DELETE("/:id", h.Category.Delete)

	customers := admin.Group("customers", "/customers")
	customers.GET("", h.Customer.List)
	customers.POST("", h.Customer.Create)
	customers.GET("/:id", h.Customer.Get)
	customers.PUT("/:id", h.Customer.Update)
	customers.DELETE("/:id", h.Customer.Delete)

	users := admin.Group("users", "/users")
	users.GET("", h.User.List)
	users.POST("", h.User.Create)
	users.GET("/:id", h.User.Get)
	users.PUT("/:id", h.User.Update)
	users.DELETE("/:id", h.User.Delete)

	orders := admin.Group("orders", "/orders")
	orders.GET("", h.Order.List)
	orders.GET("/:id", h.Order.Get)
	orders.PUT("/:id", h.Order.Update)
	orders.POST("/:id/status", h.Order.ChangeStatus)
	orders.DELETE("/:id", h.Order.Delete)
	orders.PUT("/lines/:lineId/discount", h.Order.SetLineDiscount)

	return []*DomainGroup{catalog, auth, chatbot, quotes, payments, notifications, admin}
}
