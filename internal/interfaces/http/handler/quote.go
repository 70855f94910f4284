package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	tradeapp "github.com/pozinox/backend/internal/application/trade"
)

// QuoteHandler handles the signed-in customer's quotes, checkout and PDFs
type QuoteHandler struct {
	BaseHandler
	quoteService   *tradeapp.QuoteService
	paymentService *tradeapp.PaymentService
}

// NewQuoteHandler creates a new QuoteHandler
func NewQuoteHandler(quoteService *tradeapp.QuoteService, paymentService *tradeapp.PaymentService) *QuoteHandler {
	return &QuoteHandler{
		quoteService:   quoteService,
		paymentService: paymentService,
	}
}

// List godoc
// @Summary      List my quotes and orders
// @Tags         quotes
// @Produce      json
// @Param        status query string false "Order status"
// @Success      200 {object} APIResponse[[]tradeapp.OrderListItemResponse]
// @Security     BearerAuth
// @Router       /quotes [get]
func (h *QuoteHandler) List(c *gin.Context) {
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

// Create godoc
// @Summary      Open a quote
// @Description  Creates an empty quote with a new order number. A customer record is created from the profile when missing; tax_id is required in that case.
// @Tags         quotes
// @Accept       json
// @Produce      json
// @Param        request body tradeapp.CreateQuoteRequest false "Quote"
// @Success      201 {object} APIResponse[tradeapp.OrderResponse]
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /quotes [post]
func (h *QuoteHandler) Create(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	var req tradeapp.CreateQuoteRequest
	if c.Request.ContentLength != 0 && !h.BindJSON(c, &req) {
		return
	}
	quote, err := h.quoteService.Create(c.Request.Context(), userID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, quote)
}

// Get returns one of the user's quotes or orders
func (h *QuoteHandler) Get(c *gin.Context) {
	userID, orderID, ok := h.userAndOrder(c)
	if !ok {
		return
	}
	quote, err := h.quoteService.Get(c.Request.Context(), userID, orderID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, quote)
}

// AddLine godoc
// @Summary      Add a product to a quote
// @Description  Adding a product already on the quote increases its quantity. The unit price is the current product price.
// @Tags         quotes
// @Accept       json
// @Produce      json
// @Param        id      path string                  true "Quote ID"
// @Param        request body tradeapp.AddLineRequest true "Line"
// @Success      200 {object} APIResponse[tradeapp.OrderResponse]
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /quotes/{id}/lines [post]
func (h *QuoteHandler) AddLine(c *gin.Context) {
	userID, orderID, ok := h.userAndOrder(c)
	if !ok {
		return
	}
	var req tradeapp.AddLineRequest
	if !h.BindJSON(c, &req) {
		return
	}
	quote, err := h.quoteService.AddLine(c.Request.Context(), userID, orderID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, quote)
}

// UpdateLine changes a line quantity; zero removes the line
func (h *QuoteHandler) UpdateLine(c *gin.Context) {
	userID, lineID, ok := h.userAndLine(c)
	if !ok {
		return
	}
	var req tradeapp.UpdateLineRequest
	if !h.BindJSON(c, &req) {
		return
	}
	quote, err := h.quoteService.UpdateLine(c.Request.Context(), userID, lineID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, quote)
}

// RemoveLine deletes a line from a quote
func (h *QuoteHandler) RemoveLine(c *gin.Context) {
	userID, lineID, ok := h.userAndLine(c)
	if !ok {
		return
	}
	quote, err := h.quoteService.RemoveLine(c.Request.Context(), userID, lineID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, quote)
}

// Finalize closes a quote for editing and turns it into a pending order
func (h *QuoteHandler) Finalize(c *gin.Context) {
	userID, orderID, ok := h.userAndOrder(c)
	if !ok {
		return
	}
	var req tradeapp.FinalizeQuoteRequest
	if c.Request.ContentLength != 0 && !h.BindJSON(c, &req) {
		return
	}
	quote, err := h.quoteService.Finalize(c.Request.Context(), userID, orderID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, quote)
}

// SelectPaymentMethod records how a finalized quote will be paid
func (h *QuoteHandler) SelectPaymentMethod(c *gin.Context) {
	userID, orderID, ok := h.userAndOrder(c)
	if !ok {
		return
	}
	var req tradeapp.SelectPaymentMethodRequest
	if !h.BindJSON(c, &req) {
		return
	}
	quote, err := h.quoteService.SelectPaymentMethod(c.Request.Context(), userID, orderID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, quote)
}

// Pay godoc
// @Summary      Start a card payment
// @Description  Creates a Mercado Pago checkout preference for a finalized quote and returns the checkout URL
// @Tags         quotes
// @Produce      json
// @Param        id path string true "Quote ID"
// @Success      200 {object} APIResponse[tradeapp.PaymentRedirect]
// @Failure      409 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Failure      503 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /quotes/{id}/pay [post]
func (h *QuoteHandler) Pay(c *gin.Context) {
	userID, orderID, ok := h.userAndOrder(c)
	if !ok {
		return
	}
	redirect, err := h.paymentService.StartPayment(c.Request.Context(), userID, orderID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, redirect)
}

// PaymentReturn godoc
// @Summary      Checkout return
// @Description  Called when the customer comes back from checkout. The payment is looked up at the gateway before the order is updated.
// @Tags         quotes
// @Produce      json
// @Param        id         path  string true  "Quote ID"
// @Param        outcome    path  string true  "success, failure or pending"
// @Param        payment_id query string false "Gateway payment ID"
// @Success      200 {object} APIResponse[tradeapp.OrderResponse]
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /quotes/{id}/payment/{outcome} [get]
func (h *QuoteHandler) PaymentReturn(c *gin.Context) {
	userID, orderID, ok := h.userAndOrder(c)
	if !ok {
		return
	}
	paymentID := c.Query("payment_id")
	if paymentID == "" {
		paymentID = c.Query("collection_id")
	}
	if paymentID == "null" {
		paymentID = ""
	}

	order, err := h.paymentService.HandleReturn(c.Request.Context(), userID, orderID,
		tradeapp.PaymentOutcome(c.Param("outcome")), paymentID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}

// DownloadPDF godoc
// @Summary      Download a quote as PDF
// @Tags         quotes
// @Produce      application/pdf
// @Param        id path string true "Quote ID"
// @Success      200 {file} binary
// @Failure      404 {object} ErrorResponse
// @Failure      503 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /quotes/{id}/pdf [get]
func (h *QuoteHandler) DownloadPDF(c *gin.Context) {
	userID, orderID, ok := h.userAndOrder(c)
	if !ok {
		return
	}
	pdf, filename, err := h.quoteService.RenderPDF(c.Request.Context(), userID, orderID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, "application/pdf", pdf)
}

func (h *QuoteHandler) userAndOrder(c *gin.Context) (userID, orderID uuid.UUID, ok bool) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return uuid.Nil, uuid.Nil, false
	}
	orderID, ok = parseUUIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid quote ID format")
		return uuid.Nil, uuid.Nil, false
	}
	return userID, orderID, true
}

func (h *QuoteHandler) userAndLine(c *gin.Context) (userID, lineID uuid.UUID, ok bool) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return uuid.Nil, uuid.Nil, false
	}
	lineID, ok = parseUUIDParam(c, "lineId")
	if !ok {
		h.BadRequest(c, "Invalid line ID format")
		return uuid.Nil, uuid.Nil, false
	}
	return userID, lineID, true
}
