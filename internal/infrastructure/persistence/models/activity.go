package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/pozinox/backend/internal/domain/identity"
)

// ActivityLogModel is the persistence model for an activity log entry.
type ActivityLogModel struct {
	ID           uuid.UUID             `gorm:"type:uuid;primary_key"`
	UserID       *uuid.UUID            `gorm:"type:uuid;index"`
	ActivityType identity.ActivityType `gorm:"type:varchar(20);not null;index"`
	Description  string                `gorm:"type:text;not null"`
	IPAddress    string                `gorm:"type:varchar(45)"`
	CreatedAt    time.Time             `gorm:"not null;index"`
}

// TableName returns the table name for GORM
func (ActivityLogModel) TableName() string {
	return "activity_logs"
}

// ToDomain converts the persistence model to a domain ActivityLog.
func (m *ActivityLogModel) ToDomain() *identity.ActivityLog {
	return &identity.ActivityLog{
		ID:          m.ID,
		UserID:      m.UserID,
		Type:        m.ActivityType,
		Description: m.Description,
		IPAddress:   m.IPAddress,
		CreatedAt:   m.CreatedAt,
	}
}

// ActivityLogModelFromDomain creates a new persistence model from a domain ActivityLog.
func ActivityLogModelFromDomain(a *identity.ActivityLog) *ActivityLogModel {
	return &ActivityLogModel{
		ID:           a.ID,
		UserID:       a.UserID,
		ActivityType: a.Type,
		Description:  a.Description,
		IPAddress:    a.IPAddress,
		CreatedAt:    a.CreatedAt,
	}
}

// NotificationModel is the persistence model for a user notification.
type NotificationModel struct {
	ID               uuid.UUID                 `gorm:"type:uuid;primary_key"`
	UserID           uuid.UUID                 `gorm:"type:uuid;not null;index"`
	NotificationType identity.NotificationType `gorm:"type:varchar(20);not null"`
	Title            string                    `gorm:"type:varchar(200);not null"`
	Message          string                    `gorm:"type:text"`
	Read             bool                      `gorm:"column:is_read;not null"`
	ReadAt           *time.Time
	CreatedAt        time.Time `gorm:"not null;index"`
}

// TableName returns the table name for GORM
func (NotificationModel) TableName() string {
	return "notifications"
}

// ToDomain converts the persistence model to a domain Notification.
func (m *NotificationModel) ToDomain() *identity.Notification {
	return &identity.Notification{
		ID:        m.ID,
		UserID:    m.UserID,
		Type:      m.NotificationType,
		Title:     m.Title,
		Message:   m.Message,
		Read:      m.Read,
		ReadAt:    m.ReadAt,
		CreatedAt: m.CreatedAt,
	}
}

// NotificationModelFromDomain creates a new persistence model from a domain Notification.
func NotificationModelFromDomain(n *identity.Notification) *NotificationModel {
	return &NotificationModel{
		ID:               n.ID,
		UserID:           n.UserID,
		NotificationType: n.Type,
		Title:            n.Title,
		Message:          n.Message,
		Read:             n.Read,
		ReadAt:           n.ReadAt,
		CreatedAt:        n.CreatedAt,
	}
}

// AllModels lists every persistence model, in dependency order, for AutoMigrate.
func AllModels() []interface{} {
	return []interface{}{
		&CategoryModel{},
		&ProductModel{},
		&UserModel{},
		&CustomerModel{},
		&OrderModel{},
		&OrderLineModel{},
		&OrderSequenceModel{},
		&VerificationCodeModel{},
		&EmailVerificationTokenModel{},
		&ActivityLogModel{},
		&NotificationModel{},
	}
}
