package identity

import (
	"context"

	"github.com/google/uuid"
	partnerapp "github.com/pozinox/backend/internal/application/partner"
	"github.com/pozinox/backend/internal/domain/identity"
	"github.com/pozinox/backend/internal/domain/partner"
	"github.com/pozinox/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// Mailer sends the account emails. Delivery failures are logged by the
// implementation and reported as false.
type Mailer interface {
	SendVerificationCode(ctx context.Context, to, code string) bool
	SendVerificationLink(ctx context.Context, to, name, link string) bool
}

// CustomerLinker creates or links the customer record of a user
type CustomerLinker interface {
	EnsureForUser(ctx context.Context, input partnerapp.EnsureCustomerInput) (*partner.Customer, error)
}

// ActivityRecorder writes activity log entries that are not driven by
// domain events, such as logins
type ActivityRecorder interface {
	Record(ctx context.Context, userID *uuid.UUID, activityType identity.ActivityType, description, ip string)
}

// LinkSender mails a verification link to an existing account
type LinkSender interface {
	SendVerificationLink(ctx context.Context, userID uuid.UUID) (*VerificationLinkResult, error)
}

func publishUserEvents(ctx context.Context, publisher shared.EventPublisher, logger *zap.Logger, user *identity.User) {
	events := user.GetDomainEvents()
	user.ClearDomainEvents()
	if publisher == nil || len(events) == 0 {
		return
	}
	if err := publisher.Publish(ctx, events...); err != nil {
		logger.Warn("Failed to publish user events",
			zap.String("user_id", user.ID.String()),
			zap.Error(err))
	}
}
