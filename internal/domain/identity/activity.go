package identity

import (
	"time"

	"github.com/google/uuid"
)

// ActivityType classifies entries in the activity log
type ActivityType string

const (
	ActivityLogin        ActivityType = "login"
	ActivityLogout       ActivityType = "logout"
	ActivityRegister     ActivityType = "register"
	ActivityCreate       ActivityType = "create"
	ActivityUpdate       ActivityType = "update"
	ActivityDelete       ActivityType = "delete"
	ActivityStatusChange ActivityType = "status_change"
	ActivityPayment      ActivityType = "payment"
	ActivityOther        ActivityType = "other"
)

// ActivityLog is an audit entry. UserID is nil for anonymous or system actions.
type ActivityLog struct {
	ID          uuid.UUID
	UserID      *uuid.UUID
	Type        ActivityType
	Description string
	IPAddress   string
	CreatedAt   time.Time
}

// NewActivityLog creates an entry stamped with the current time
func NewActivityLog(userID *uuid.UUID, activityType ActivityType, description string) *ActivityLog {
	return &ActivityLog{
		ID:          uuid.New(),
		UserID:      userID,
		Type:        activityType,
		Description: description,
		CreatedAt:   time.Now(),
	}
}
