package identity

import (
	"time"

	"github.com/google/uuid"
	"github.com/pozinox/backend/internal/domain/shared"
)

// EmailVerificationTokenTTL is the lifetime of a verification link
const EmailVerificationTokenTTL = 24 * time.Hour

var ErrTokenInvalid = shared.NewDomainError("VERIFICATION_TOKEN_INVALID", "Verification link is invalid or has expired")

// EmailVerificationToken is a single-use link token that verifies an existing account
type EmailVerificationToken struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	Token     uuid.UUID
	CreatedAt time.Time
	ExpiresAt time.Time
	Used      bool
	UsedAt    *time.Time
}

// NewEmailVerificationToken issues a token for userID valid for 24 hours
func NewEmailVerificationToken(userID uuid.UUID, now time.Time) *EmailVerificationToken {
	return &EmailVerificationToken{
		ID:        uuid.New(),
		UserID:    userID,
		Token:     uuid.New(),
		CreatedAt: now,
		ExpiresAt: now.Add(EmailVerificationTokenTTL),
	}
}

// IsValid reports whether the token is unused and not expired at now
func (t *EmailVerificationToken) IsValid(now time.Time) bool {
	return !t.Used && now.Before(t.ExpiresAt)
}

// Consume marks the token used
func (t *EmailVerificationToken) Consume(now time.Time) error {
	if !t.IsValid(now) {
		return ErrTokenInvalid
	}
	t.Used = true
	t.UsedAt = &now
	return nil
}
