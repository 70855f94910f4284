package handler

import (
	"github.com/gin-gonic/gin"
	tradeapp "github.com/pozinox/backend/internal/application/trade"
)

// OrderHandler handles order administration endpoints
type OrderHandler struct {
	BaseHandler
	orderService *tradeapp.OrderService
}

// NewOrderHandler creates a new OrderHandler
func NewOrderHandler(orderService *tradeapp.OrderService) *OrderHandler {
	return &OrderHandler{orderService: orderService}
}

// List godoc
// @Summary      List orders
// @Tags         admin-orders
// @Produce      json
// @Param        search         query string false "Order number"
// @Param        status         query string false "Order status"
// @Param        payment_status query string false "Payment status"
// @Param        customer_id    query string false "Customer ID"
// @Success      200 {object} APIResponse[[]tradeapp.OrderListItemResponse]
// @Security     BearerAuth
// @Router       /admin/orders [get]
func (h *OrderHandler) List(c *gin.Context) {
	var filter tradeapp.OrderListFilter
	if !h.BindQuery(c, &filter) {
		return
	}
	customerID, ok := parseUUIDQuery(c, "customer_id")
	if !ok {
		h.BadRequest(c, "Invalid customer ID format")
		return
	}
	filter.CustomerID = customerID

	orders, total, err := h.orderService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, orders, total, filter.Page, filter.PageSize)
}

// Get returns an order with its lines and customer
func (h *OrderHandler) Get(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid order ID format")
		return
	}
	order, err := h.orderService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}

// ChangeStatus godoc
// @Summary      Change an order status
// @Description  Moves the order along pending, confirmed, preparing, ready, shipped, delivered or to cancelled
// @Tags         admin-orders
// @Accept       json
// @Produce      json
// @Param        id      path string                       true "Order ID"
// @Param        request body tradeapp.ChangeStatusRequest true "New status"
// @Success      200 {object} APIResponse[tradeapp.OrderResponse]
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /admin/orders/{id}/status [post]
func (h *OrderHandler) ChangeStatus(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid order ID format")
		return
	}
	var req tradeapp.ChangeStatusRequest
	if !h.BindJSON(c, &req) {
		return
	}
	order, err := h.orderService.ChangeStatus(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}

// Update edits notes, delivery date, discount and payment method
func (h *OrderHandler) Update(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid order ID format")
		return
	}
	var req tradeapp.UpdateOrderRequest
	if !h.BindJSON(c, &req) {
		return
	}
	order, err := h.orderService.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}

// SetLineDiscount sets a line discount percentage and recomputes totals
func (h *OrderHandler) SetLineDiscount(c *gin.Context) {
	lineID, ok := parseUUIDParam(c, "lineId")
	if !ok {
		h.BadRequest(c, "Invalid line ID format")
		return
	}
	var req tradeapp.SetLineDiscountRequest
	if !h.BindJSON(c, &req) {
		return
	}
	order, err := h.orderService.SetLineDiscount(c.Request.Context(), lineID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}

// Delete removes an order
func (h *OrderHandler) Delete(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid order ID format")
		return
	}
	if err := h.orderService.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
