package handler

import (
	"github.com/gin-gonic/gin"
	identityapp "github.com/pozinox/backend/internal/application/identity"
)

// NotificationHandler serves the signed-in user's notifications
type NotificationHandler struct {
	BaseHandler
	notificationService *identityapp.NotificationService
}

// NewNotificationHandler creates a new NotificationHandler
func NewNotificationHandler(notificationService *identityapp.NotificationService) *NotificationHandler {
	return &NotificationHandler{notificationService: notificationService}
}

// NotificationList is a page of notifications with the unread count
type NotificationList struct {
	Items  []identityapp.NotificationResponse `json:"items"`
	Unread int64                              `json:"unread"`
}

// List godoc
// @Summary      List my notifications
// @Tags         notifications
// @Produce      json
// @Param        unread query bool false "Only unread notifications"
// @Success      200 {object} APIResponse[NotificationList]
// @Security     BearerAuth
// @Router       /notifications [get]
func (h *NotificationHandler) List(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	var filter identityapp.NotificationListFilter
	if !h.BindQuery(c, &filter) {
		return
	}
	items, total, unread, err := h.notificationService.List(c.Request.Context(), userID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, NotificationList{Items: items, Unread: unread}, total, filter.Page, filter.PageSize)
}

// MarkRead marks one of the user's notifications as read
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid notification ID format")
		return
	}
	notification, err := h.notificationService.MarkRead(c.Request.Context(), userID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, notification)
}
