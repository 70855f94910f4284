package handler

import (
	"github.com/gin-gonic/gin"
	tradeapp "github.com/pozinox/backend/internal/application/trade"
	"github.com/pozinox/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// PaymentWebhookHandler receives Mercado Pago notifications
type PaymentWebhookHandler struct {
	BaseHandler
	paymentService *tradeapp.PaymentService
}

// NewPaymentWebhookHandler creates a new PaymentWebhookHandler
func NewPaymentWebhookHandler(paymentService *tradeapp.PaymentService) *PaymentWebhookHandler {
	return &PaymentWebhookHandler{paymentService: paymentService}
}

// MercadoPago godoc
// @Summary      Mercado Pago webhook
// @Description  Accepts webhook bodies and the legacy query form (topic/id or type/data.id). The payment is fetched from the gateway before the order is updated. Non-2xx answers make the gateway retry.
// @Tags         payments
// @Accept       json
// @Produce      json
// @Success      200 {object} SuccessResponse
// @Failure      503 {object} ErrorResponse
// @Router       /payments/mercadopago/webhook [post]
func (h *PaymentWebhookHandler) MercadoPago(c *gin.Context) {
	var notification tradeapp.PaymentNotification
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&notification); err != nil {
			h.BadRequest(c, "Invalid notification body")
			return
		}
	}
	if notification.Type == "" {
		notification.Type = firstQuery(c, "type", "topic")
	}
	if notification.Data.ID == "" {
		notification.Data.ID = firstQuery(c, "data.id", "id")
	}

	log := logger.GetGinLogger(c)
	log.Info("Payment notification received",
		zap.String("type", notification.Type),
		zap.String("action", notification.Action),
		zap.String("payment_id", notification.Data.ID))

	if err := h.paymentService.HandleWebhook(c.Request.Context(), notification); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, nil)
}

func firstQuery(c *gin.Context, names ...string) string {
	for _, name := range names {
		if v := c.Query(name); v != "" {
			return v
		}
	}
	return ""
}
