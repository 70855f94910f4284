package identity

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/pozinox/backend/internal/domain/identity"
	"github.com/pozinox/backend/internal/domain/shared"
	"github.com/pozinox/backend/internal/domain/trade"
	"github.com/pozinox/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// ActivityService keeps the audit trail. It records domain events as they
// are published and exposes the log to administrators.
type ActivityService struct {
	repo   identity.ActivityLogRepository
	logger *zap.Logger
}

// NewActivityService creates a new ActivityService
func NewActivityService(repo identity.ActivityLogRepository, logger *zap.Logger) *ActivityService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ActivityService{repo: repo, logger: logger}
}

// Record writes an entry. Failures are logged, never returned, so auditing
// cannot break the action being audited.
func (s *ActivityService) Record(ctx context.Context, userID *uuid.UUID, activityType identity.ActivityType, description, ip string) {
	entry := identity.NewActivityLog(userID, activityType, description)
	if ip == "" {
		ip = logger.GetClientIP(ctx)
	}
	entry.IPAddress = ip
	if err := s.repo.Create(ctx, entry); err != nil {
		s.logger.Error("Failed to record activity",
			zap.String("type", string(activityType)),
			zap.Error(err))
	}
}

// Handle records a domain event, attributed to the user in ctx
func (s *ActivityService) Handle(ctx context.Context, event shared.DomainEvent) error {
	var actor *uuid.UUID
	if id, ok := logger.GetUserID(ctx); ok {
		actor = &id
	}

	activityType := activityTypeFor(event.EventType())
	if event.EventType() == identity.EventTypeUserCreated && actor == nil {
		// self-service sign-up
		activityType = identity.ActivityRegister
		id := event.AggregateID()
		actor = &id
	}

	description := event.EventType()
	if described, ok := event.(shared.DescribedEvent); ok {
		description = described.Describe()
	}
	s.Record(ctx, actor, activityType, description, "")
	return nil
}

// EventTypes returns nil: the activity log receives every event
func (s *ActivityService) EventTypes() []string {
	return nil
}

// List retrieves activity entries, newest first
func (s *ActivityService) List(ctx context.Context, filter ActivityListFilter) ([]ActivityLogResponse, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 50
	}

	domainFilter := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		OrderBy:  "created_at",
		OrderDir: "desc",
		Search:   filter.Search,
		Filters:  make(map[string]interface{}),
	}
	if filter.UserID != nil {
		domainFilter.Filters["user_id"] = *filter.UserID
	}
	if filter.Type != "" {
		domainFilter.Filters["type"] = filter.Type
	}

	entries, err := s.repo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.repo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	items := make([]ActivityLogResponse, len(entries))
	for i := range entries {
		items[i] = ToActivityLogResponse(&entries[i])
	}
	return items, total, nil
}

func activityTypeFor(eventType string) identity.ActivityType {
	switch eventType {
	case trade.EventTypeOrderStatusChanged:
		return identity.ActivityStatusChange
	case trade.EventTypeOrderPaid:
		return identity.ActivityPayment
	case identity.EventTypeUserEmailVerified, trade.EventTypeOrderFinalized:
		return identity.ActivityUpdate
	}
	switch {
	case strings.HasSuffix(eventType, "Created"):
		return identity.ActivityCreate
	case strings.HasSuffix(eventType, "Updated"):
		return identity.ActivityUpdate
	case strings.HasSuffix(eventType, "Deleted"):
		return identity.ActivityDelete
	}
	return identity.ActivityOther
}

var _ shared.EventHandler = (*ActivityService)(nil)
