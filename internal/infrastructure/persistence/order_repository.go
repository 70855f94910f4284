package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/pozinox/backend/internal/domain/shared"
	"github.com/pozinox/backend/internal/domain/trade"
	"github.com/pozinox/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// ErrOrderModified is returned by SaveWithLock when the stored version has moved on
var ErrOrderModified = shared.NewDomainError("CONCURRENT_MODIFICATION", "The order has been modified by another user")

// GormOrderRepository implements OrderRepository using GORM
type GormOrderRepository struct {
	db *gorm.DB
}

// NewGormOrderRepository creates a new GormOrderRepository
func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

func preloadLines(db *gorm.DB) *gorm.DB {
	return db.Preload("Lines", func(tx *gorm.DB) *gorm.DB {
		return tx.Order("created_at ASC")
	})
}

// FindByID finds an order by ID with its lines
func (r *GormOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*trade.Order, error) {
	var model models.OrderModel
	if err := preloadLines(r.db.WithContext(ctx)).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByOrderNumber finds an order by its number
func (r *GormOrderRepository) FindByOrderNumber(ctx context.Context, orderNumber string) (*trade.Order, error) {
	var model models.OrderModel
	if err := preloadLines(r.db.WithContext(ctx)).
		Where("order_number = ?", orderNumber).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByLineID finds the order that owns a line
func (r *GormOrderRepository) FindByLineID(ctx context.Context, lineID uuid.UUID) (*trade.Order, error) {
	var line models.OrderLineModel
	if err := r.db.WithContext(ctx).Select("order_id").First(&line, "id = ?", lineID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return r.FindByID(ctx, line.OrderID)
}

// FindAll finds all orders matching the filter
func (r *GormOrderRepository) FindAll(ctx context.Context, filter shared.Filter) ([]trade.Order, error) {
	var orderModels []models.OrderModel
	query := r.applyFilter(preloadLines(r.db.WithContext(ctx)).Model(&models.OrderModel{}), filter)
	query = applyPagination(query, filter).Order(orderClause(filter.OrderBy, filter.OrderDir, OrderSortFields, "created_at"))

	if err := query.Find(&orderModels).Error; err != nil {
		return nil, err
	}
	orders := make([]trade.Order, len(orderModels))
	for i := range orderModels {
		orders[i] = *orderModels[i].ToDomain()
	}
	return orders, nil
}

// Count counts orders matching the filter
func (r *GormOrderRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.OrderModel{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// CountByStatus counts orders in a given status
func (r *GormOrderRepository) CountByStatus(ctx context.Context, status trade.OrderStatus) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.OrderModel{}).
		Where("status = ?", status).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Save creates or updates an order and replaces its lines
func (r *GormOrderRepository) Save(ctx context.Context, order *trade.Order) error {
	model := models.OrderModelFromDomain(order)
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Lines").Save(model).Error; err != nil {
			return err
		}
		return replaceLines(tx, order, model.Lines)
	})
}

// SaveWithLock saves with optimistic locking (version check)
func (r *GormOrderRepository) SaveWithLock(ctx context.Context, order *trade.Order) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var current models.OrderModel
		if err := tx.Select("version").First(&current, "id = ?", order.ID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return shared.ErrNotFound
			}
			return err
		}

		if current.Version != order.Version {
			return ErrOrderModified
		}

		order.Version++
		order.UpdatedAt = time.Now()
		model := models.OrderModelFromDomain(order)

		result := tx.Model(&models.OrderModel{}).
			Where("id = ? AND version = ?", order.ID, current.Version).
			Updates(map[string]interface{}{
				"customer_id":           model.CustomerID,
				"status":                model.Status,
				"payment_method":        model.PaymentMethod,
				"payment_status":        model.PaymentStatus,
				"payment_reference":     model.PaymentReference,
				"payment_preference_id": model.PaymentPreferenceID,
				"subtotal":              model.Subtotal,
				"discount":              model.Discount,
				"tax":                   model.Tax,
				"total":                 model.Total,
				"notes":                 model.Notes,
				"internal_notes":        model.InternalNotes,
				"delivery_date":         model.DeliveryDate,
				"finalized_at":          model.FinalizedAt,
				"paid_at":               model.PaidAt,
				"version":               model.Version,
				"updated_at":            model.UpdatedAt,
			})
		if result.Error != nil {
			order.Version--
			return result.Error
		}
		if result.RowsAffected == 0 {
			order.Version--
			return ErrOrderModified
		}

		return replaceLines(tx, order, model.Lines)
	})
}

// replaceLines deletes the stored lines of the order and inserts the current ones.
// Subtotals are recomputed by the line model hook and copied back to the domain.
func replaceLines(tx *gorm.DB, order *trade.Order, lines []models.OrderLineModel) error {
	if err := tx.Where("order_id = ?", order.ID).Delete(&models.OrderLineModel{}).Error; err != nil {
		return err
	}
	if len(lines) == 0 {
		return nil
	}
	for i := range lines {
		lines[i].OrderID = order.ID
	}
	if err := tx.Create(&lines).Error; err != nil {
		return err
	}
	for i := range lines {
		order.Lines[i].Subtotal = lines[i].Subtotal
	}
	return nil
}

// Delete deletes an order and its lines
func (r *GormOrderRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("order_id = ?", id).Delete(&models.OrderLineModel{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&models.OrderModel{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

func (r *GormOrderRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		query = query.Where("LOWER(order_number) LIKE ?", likePattern(filter.Search))
	}
	for key, value := range filter.Filters {
		switch key {
		case "status":
			query = query.Where("status = ?", value)
		case "customer_id":
			query = query.Where("customer_id = ?", value)
		case "payment_status":
			query = query.Where("payment_status = ?", value)
		}
	}
	return query
}

// Ensure GormOrderRepository implements OrderRepository
var _ trade.OrderRepository = (*GormOrderRepository)(nil)
