package identity

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pozinox/backend/internal/domain/shared"
)

// UserRepository defines persistence for users
type UserRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*User, error)
	FindByUsername(ctx context.Context, username string) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByAPITokenHash(ctx context.Context, hash string) (*User, error)
	// FindAll supports the "is_superuser", "active" and "user_type" filter keys
	FindAll(ctx context.Context, filter shared.Filter) ([]User, error)
	Count(ctx context.Context, filter shared.Filter) (int64, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	Save(ctx context.Context, user *User) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// VerificationCodeRepository defines persistence for email verification codes
type VerificationCodeRepository interface {
	Create(ctx context.Context, code *VerificationCode) error
	// FindLatestUnused returns the newest code for email that is not marked used
	FindLatestUnused(ctx context.Context, email string) (*VerificationCode, error)
	// InvalidateUnused marks every unused code for email as used
	InvalidateUnused(ctx context.Context, email string) (int64, error)
	Save(ctx context.Context, code *VerificationCode) error
	DeleteCreatedBefore(ctx context.Context, before time.Time) (int64, error)
}

// EmailVerificationTokenRepository defines persistence for link tokens
type EmailVerificationTokenRepository interface {
	Create(ctx context.Context, token *EmailVerificationToken) error
	FindByToken(ctx context.Context, token uuid.UUID) (*EmailVerificationToken, error)
	// InvalidateForUser marks all of the user's unused tokens as used
	InvalidateForUser(ctx context.Context, userID uuid.UUID) error
	Save(ctx context.Context, token *EmailVerificationToken) error
}

// ActivityLogRepository defines persistence for the activity log
type ActivityLogRepository interface {
	Create(ctx context.Context, entry *ActivityLog) error
	// FindAll supports the "user_id" and "type" filter keys
	FindAll(ctx context.Context, filter shared.Filter) ([]ActivityLog, error)
	Count(ctx context.Context, filter shared.Filter) (int64, error)
}

// NotificationRepository defines persistence for notifications
type NotificationRepository interface {
	Create(ctx context.Context, n *Notification) error
	FindByID(ctx context.Context, id uuid.UUID) (*Notification, error)
	FindByUser(ctx context.Context, userID uuid.UUID, filter shared.Filter) ([]Notification, error)
	CountByUser(ctx context.Context, userID uuid.UUID, unreadOnly bool) (int64, error)
	Save(ctx context.Context, n *Notification) error
}
