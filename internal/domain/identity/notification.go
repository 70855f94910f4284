package identity

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pozinox/backend/internal/domain/shared"
)

// NotificationType classifies notifications
type NotificationType string

const (
	NotificationOrderStatus NotificationType = "order_status"
	NotificationPayment     NotificationType = "payment"
	NotificationInfo        NotificationType = "info"
)

// Notification is a message shown to a user in their account
type Notification struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	Type      NotificationType
	Title     string
	Message   string
	Read      bool
	ReadAt    *time.Time
	CreatedAt time.Time
}

// NewNotification creates an unread notification
func NewNotification(userID uuid.UUID, t NotificationType, title, message string) (*Notification, error) {
	if userID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_USER", "Notification recipient is required")
	}
	if strings.TrimSpace(title) == "" {
		return nil, shared.NewDomainError("INVALID_TITLE", "Notification title cannot be empty")
	}
	return &Notification{
		ID:        uuid.New(),
		UserID:    userID,
		Type:      t,
		Title:     title,
		Message:   message,
		CreatedAt: time.Now(),
	}, nil
}

// MarkRead marks the notification read; repeated calls keep the first read time
func (n *Notification) MarkRead(at time.Time) {
	if n.Read {
		return
	}
	n.Read = true
	n.ReadAt = &at
}
