package handler

import (
	"github.com/gin-gonic/gin"
	catalogapp "github.com/pozinox/backend/internal/application/catalog"
	identityapp "github.com/pozinox/backend/internal/application/identity"
	tradeapp "github.com/pozinox/backend/internal/application/trade"
)

// ChatbotHandler exposes read-only data to integrations authenticated with
// an API token
type ChatbotHandler struct {
	BaseHandler
	authService    *identityapp.AuthService
	quoteService   *tradeapp.QuoteService
	productService *catalogapp.ProductService
}

// NewChatbotHandler creates a new ChatbotHandler
func NewChatbotHandler(
	authService *identityapp.AuthService,
	quoteService *tradeapp.QuoteService,
	productService *catalogapp.ProductService,
) *ChatbotHandler {
	return &ChatbotHandler{
		authService:    authService,
		quoteService:   quoteService,
		productService: productService,
	}
}

// Me godoc
// @Summary      Token owner
// @Tags         chatbot
// @Produce      json
// @Param        X-API-Token header string true "API token"
// @Success      200 {object} APIResponse[identityapp.UserResponse]
// @Failure      401 {object} ErrorResponse
// @Router       /chatbot/me [get]
func (h *ChatbotHandler) Me(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	user, err := h.authService.Me(c.Request.Context(), userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, user)
}

// Orders lists the token owner's quotes and orders
func (h *ChatbotHandler) Orders(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	var filter tradeapp.QuoteListFilter
	if !h.BindQuery(c, &filter) {
		return
	}
	orders, total, err := h.quoteService.ListForUser(c.Request.Context(), userID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, orders, total, filter.Page, filter.PageSize)
}

// Products searches the active catalog
func (h *ChatbotHandler) Products(c *gin.Context) {
	var filter catalogapp.ProductListFilter
	if !h.BindQuery(c, &filter) {
		return
	}
	categoryID, ok := parseUUIDQuery(c, "category_id")
	if !ok {
		h.BadRequest(c, "Invalid category ID format")
		return
	}
	filter.CategoryID = categoryID

	products, total, err := h.productService.ListPublic(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, products, total, filter.Page, filter.PageSize)
}
