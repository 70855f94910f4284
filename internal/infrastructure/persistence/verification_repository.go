package persistence

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pozinox/backend/internal/domain/identity"
	"github.com/pozinox/backend/internal/domain/shared"
	"github.com/pozinox/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormVerificationCodeRepository implements VerificationCodeRepository using GORM
type GormVerificationCodeRepository struct {
	db *gorm.DB
}

// NewGormVerificationCodeRepository creates a new GormVerificationCodeRepository
func NewGormVerificationCodeRepository(db *gorm.DB) *GormVerificationCodeRepository {
	return &GormVerificationCodeRepository{db: db}
}

// Create stores a new code
func (r *GormVerificationCodeRepository) Create(ctx context.Context, code *identity.VerificationCode) error {
	return r.db.WithContext(ctx).Create(models.VerificationCodeModelFromDomain(code)).Error
}

// FindLatestUnused returns the newest unused code for an email
func (r *GormVerificationCodeRepository) FindLatestUnused(ctx context.Context, email string) (*identity.VerificationCode, error) {
	var model models.VerificationCodeModel
	if err := r.db.WithContext(ctx).
		Where("email = ? AND used = ?", strings.ToLower(strings.TrimSpace(email)), false).
		Order("created_at DESC").
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// InvalidateUnused marks every unused code for an email as used
func (r *GormVerificationCodeRepository) InvalidateUnused(ctx context.Context, email string) (int64, error) {
	result := r.db.WithContext(ctx).Model(&models.VerificationCodeModel{}).
		Where("email = ? AND used = ?", strings.ToLower(strings.TrimSpace(email)), false).
		Update("used", true)
	return result.RowsAffected, result.Error
}

// Save persists attempts and used flag of an existing code
func (r *GormVerificationCodeRepository) Save(ctx context.Context, code *identity.VerificationCode) error {
	result := r.db.WithContext(ctx).Model(&models.VerificationCodeModel{}).
		Where("id = ?", code.ID).
		Updates(map[string]interface{}{
			"attempts": code.Attempts,
			"used":     code.Used,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// DeleteCreatedBefore purges codes older than the cutoff
func (r *GormVerificationCodeRepository) DeleteCreatedBefore(ctx context.Context, before time.Time) (int64, error) {
	result := r.db.WithContext(ctx).Where("created_at < ?", before).Delete(&models.VerificationCodeModel{})
	return result.RowsAffected, result.Error
}

// GormEmailVerificationTokenRepository implements EmailVerificationTokenRepository using GORM
type GormEmailVerificationTokenRepository struct {
	db *gorm.DB
}

// NewGormEmailVerificationTokenRepository creates a new GormEmailVerificationTokenRepository
func NewGormEmailVerificationTokenRepository(db *gorm.DB) *GormEmailVerificationTokenRepository {
	return &GormEmailVerificationTokenRepository{db: db}
}

// Create stores a new link token
func (r *GormEmailVerificationTokenRepository) Create(ctx context.Context, token *identity.EmailVerificationToken) error {
	return r.db.WithContext(ctx).Create(models.EmailVerificationTokenModelFromDomain(token)).Error
}

// FindByToken finds a link token by its public value
func (r *GormEmailVerificationTokenRepository) FindByToken(ctx context.Context, token uuid.UUID) (*identity.EmailVerificationToken, error) {
	var model models.EmailVerificationTokenModel
	if err := r.db.WithContext(ctx).Where("token = ?", token).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// InvalidateForUser marks all unused tokens of a user as used
func (r *GormEmailVerificationTokenRepository) InvalidateForUser(ctx context.Context, userID uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&models.EmailVerificationTokenModel{}).
		Where("user_id = ? AND used = ?", userID, false).
		Updates(map[string]interface{}{"used": true, "used_at": time.Now()}).Error
}

// Save updates an existing token
func (r *GormEmailVerificationTokenRepository) Save(ctx context.Context, token *identity.EmailVerificationToken) error {
	return r.db.WithContext(ctx).Save(models.EmailVerificationTokenModelFromDomain(token)).Error
}

var (
	_ identity.VerificationCodeRepository       = (*GormVerificationCodeRepository)(nil)
	_ identity.EmailVerificationTokenRepository = (*GormEmailVerificationTokenRepository)(nil)
)
