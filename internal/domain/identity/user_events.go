package identity

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/pozinox/backend/internal/domain/shared"
)

const AggregateTypeUser = "User"

const (
	EventTypeUserCreated       = "UserCreated"
	EventTypeUserEmailVerified = "UserEmailVerified"
	EventTypeUserDeleted       = "UserDeleted"
)

// UserCreatedEvent is published when an account is registered or created by an admin
type UserCreatedEvent struct {
	shared.BaseDomainEvent
	UserID   uuid.UUID `json:"user_id"`
	Username string    `json:"username"`
	Email    string    `json:"email"`
}

func NewUserCreatedEvent(u *User) *UserCreatedEvent {
	return &UserCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeUserCreated, AggregateTypeUser, u.ID),
		UserID:          u.ID,
		Username:        u.Username,
		Email:           u.Email,
	}
}

func (e *UserCreatedEvent) Describe() string {
	return fmt.Sprintf("User %s created", e.Username)
}

// UserEmailVerifiedEvent is published when a link token is consumed
type UserEmailVerifiedEvent struct {
	shared.BaseDomainEvent
	UserID uuid.UUID `json:"user_id"`
	Email  string    `json:"email"`
}

func NewUserEmailVerifiedEvent(u *User) *UserEmailVerifiedEvent {
	return &UserEmailVerifiedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeUserEmailVerified, AggregateTypeUser, u.ID),
		UserID:          u.ID,
		Email:           u.Email,
	}
}

func (e *UserEmailVerifiedEvent) Describe() string {
	return fmt.Sprintf("Email %s verified", e.Email)
}

// UserDeletedEvent is published when an admin removes an account
type UserDeletedEvent struct {
	shared.BaseDomainEvent
	UserID   uuid.UUID `json:"user_id"`
	Username string    `json:"username"`
}

func NewUserDeletedEvent(u *User) *UserDeletedEvent {
	return &UserDeletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeUserDeleted, AggregateTypeUser, u.ID),
		UserID:          u.ID,
		Username:        u.Username,
	}
}

func (e *UserDeletedEvent) Describe() string {
	return fmt.Sprintf("User %s deleted", e.Username)
}
