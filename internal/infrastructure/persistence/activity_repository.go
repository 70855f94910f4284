package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/pozinox/backend/internal/domain/identity"
	"github.com/pozinox/backend/internal/domain/shared"
	"github.com/pozinox/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormActivityLogRepository implements ActivityLogRepository using GORM
type GormActivityLogRepository struct {
	db *gorm.DB
}

// NewGormActivityLogRepository creates a new GormActivityLogRepository
func NewGormActivityLogRepository(db *gorm.DB) *GormActivityLogRepository {
	return &GormActivityLogRepository{db: db}
}

// Create appends an entry
func (r *GormActivityLogRepository) Create(ctx context.Context, entry *identity.ActivityLog) error {
	return r.db.WithContext(ctx).Create(models.ActivityLogModelFromDomain(entry)).Error
}

// FindAll lists entries, newest first unless the filter orders otherwise
func (r *GormActivityLogRepository) FindAll(ctx context.Context, filter shared.Filter) ([]identity.ActivityLog, error) {
	var entryModels []models.ActivityLogModel
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.ActivityLogModel{}), filter)
	query = applyPagination(query, filter).Order(orderClause(filter.OrderBy, filter.OrderDir, ActivityLogSortFields, "created_at"))

	if err := query.Find(&entryModels).Error; err != nil {
		return nil, err
	}
	entries := make([]identity.ActivityLog, len(entryModels))
	for i := range entryModels {
		entries[i] = *entryModels[i].ToDomain()
	}
	return entries, nil
}

// Count counts entries matching the filter
func (r *GormActivityLogRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.ActivityLogModel{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *GormActivityLogRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		query = query.Where("LOWER(description) LIKE ?", likePattern(filter.Search))
	}
	for key, value := range filter.Filters {
		switch key {
		case "user_id":
			query = query.Where("user_id = ?", value)
		case "type":
			query = query.Where("activity_type = ?", value)
		}
	}
	return query
}

// GormNotificationRepository implements NotificationRepository using GORM
type GormNotificationRepository struct {
	db *gorm.DB
}

// NewGormNotificationRepository creates a new GormNotificationRepository
func NewGormNotificationRepository(db *gorm.DB) *GormNotificationRepository {
	return &GormNotificationRepository{db: db}
}

// Create stores a notification
func (r *GormNotificationRepository) Create(ctx context.Context, n *identity.Notification) error {
	return r.db.WithContext(ctx).Create(models.NotificationModelFromDomain(n)).Error
}

// FindByID finds a notification by ID
func (r *GormNotificationRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.Notification, error) {
	var model models.NotificationModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByUser lists a user's notifications, newest first.
// The "unread" filter key restricts the list to unread ones.
func (r *GormNotificationRepository) FindByUser(ctx context.Context, userID uuid.UUID, filter shared.Filter) ([]identity.Notification, error) {
	var notificationModels []models.NotificationModel
	query := r.db.WithContext(ctx).Where("user_id = ?", userID)
	if unread, ok := filter.Filters["unread"].(bool); ok && unread {
		query = query.Where("is_read = ?", false)
	}
	query = applyPagination(query, filter).Order("created_at DESC")

	if err := query.Find(&notificationModels).Error; err != nil {
		return nil, err
	}
	notifications := make([]identity.Notification, len(notificationModels))
	for i := range notificationModels {
		notifications[i] = *notificationModels[i].ToDomain()
	}
	return notifications, nil
}

// CountByUser counts a user's notifications
func (r *GormNotificationRepository) CountByUser(ctx context.Context, userID uuid.UUID, unreadOnly bool) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&models.NotificationModel{}).Where("user_id = ?", userID)
	if unreadOnly {
		query = query.Where("is_read = ?", false)
	}
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Save updates a notification
func (r *GormNotificationRepository) Save(ctx context.Context, n *identity.Notification) error {
	return r.db.WithContext(ctx).Save(models.NotificationModelFromDomain(n)).Error
}

var (
	_ identity.ActivityLogRepository  = (*GormActivityLogRepository)(nil)
	_ identity.NotificationRepository = (*GormNotificationRepository)(nil)
)
