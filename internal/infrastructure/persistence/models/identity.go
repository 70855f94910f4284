package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/pozinox/backend/internal/domain/identity"
)

// UserModel is the persistence model for the User domain entity.
type UserModel struct {
	AggregateModel
	Username          string `gorm:"type:varchar(150);not null;uniqueIndex"`
	Email             string `gorm:"type:varchar(254);not null;uniqueIndex"`
	FirstName         string `gorm:"type:varchar(150)"`
	LastName          string `gorm:"type:varchar(150)"`
	PasswordHash      string `gorm:"type:varchar(255);not null"`
	IsSuperuser       bool   `gorm:"not null"`
	Active            bool   `gorm:"not null"`
	EmailVerified     bool   `gorm:"not null"`
	EmailVerifiedAt   *time.Time
	LastLoginAt       *time.Time
	UserType          identity.UserType `gorm:"type:varchar(20);not null"`
	Phone             string            `gorm:"type:varchar(20)"`
	Address           string            `gorm:"type:text"`
	Commune           string            `gorm:"type:varchar(100)"`
	City              string            `gorm:"type:varchar(100)"`
	APITokenHash      *string           `gorm:"column:api_token_hash;type:varchar(64);uniqueIndex"`
	APITokenCreatedAt *time.Time        `gorm:"column:api_token_created_at"`
}

// TableName returns the table name for GORM
func (UserModel) TableName() string {
	return "users"
}

// ToDomain converts the persistence model to a domain User entity.
func (m *UserModel) ToDomain() *identity.User {
	user := &identity.User{
		BaseAggregateRoot: m.ToAggregateRoot(),
		Username:          m.Username,
		Email:             m.Email,
		FirstName:         m.FirstName,
		LastName:          m.LastName,
		PasswordHash:      m.PasswordHash,
		IsSuperuser:       m.IsSuperuser,
		Active:            m.Active,
		EmailVerified:     m.EmailVerified,
		EmailVerifiedAt:   m.EmailVerifiedAt,
		LastLoginAt:       m.LastLoginAt,
		Profile: identity.Profile{
			UserType: m.UserType,
			Phone:    m.Phone,
			Address:  m.Address,
			Commune:  m.Commune,
			City:     m.City,
		},
		APITokenCreatedAt: m.APITokenCreatedAt,
	}
	if m.APITokenHash != nil {
		user.APITokenHash = *m.APITokenHash
	}
	return user
}

// FromDomain populates the persistence model from a domain User entity.
// An empty token hash is stored as NULL so the unique index ignores it.
func (m *UserModel) FromDomain(u *identity.User) {
	m.FromDomainAggregateRoot(u.BaseAggregateRoot)
	m.Username = u.Username
	m.Email = u.Email
	m.FirstName = u.FirstName
	m.LastName = u.LastName
	m.PasswordHash = u.PasswordHash
	m.IsSuperuser = u.IsSuperuser
	m.Active = u.Active
	m.EmailVerified = u.EmailVerified
	m.EmailVerifiedAt = u.EmailVerifiedAt
	m.LastLoginAt = u.LastLoginAt
	m.UserType = u.Profile.UserType
	m.Phone = u.Profile.Phone
	m.Address = u.Profile.Address
	m.Commune = u.Profile.Commune
	m.City = u.Profile.City
	m.APITokenHash = nil
	if u.APITokenHash != "" {
		hash := u.APITokenHash
		m.APITokenHash = &hash
	}
	m.APITokenCreatedAt = u.APITokenCreatedAt
}

// UserModelFromDomain creates a new persistence model from a domain User entity.
func UserModelFromDomain(u *identity.User) *UserModel {
	m := &UserModel{}
	m.FromDomain(u)
	return m
}

// VerificationCodeModel is the persistence model for an email verification code.
type VerificationCodeModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key"`
	Email     string    `gorm:"type:varchar(254);not null;index"`
	Code      string    `gorm:"type:varchar(6);not null"`
	Attempts  int       `gorm:"not null"`
	Used      bool      `gorm:"not null"`
	CreatedAt time.Time `gorm:"not null;index"`
}

// TableName returns the table name for GORM
func (VerificationCodeModel) TableName() string {
	return "email_verification_codes"
}

// ToDomain converts the persistence model to a domain VerificationCode.
func (m *VerificationCodeModel) ToDomain() *identity.VerificationCode {
	return &identity.VerificationCode{
		ID:        m.ID,
		Email:     m.Email,
		Code:      m.Code,
		CreatedAt: m.CreatedAt,
		Attempts:  m.Attempts,
		Used:      m.Used,
	}
}

// VerificationCodeModelFromDomain creates a new persistence model from a domain VerificationCode.
func VerificationCodeModelFromDomain(c *identity.VerificationCode) *VerificationCodeModel {
	return &VerificationCodeModel{
		ID:        c.ID,
		Email:     c.Email,
		Code:      c.Code,
		Attempts:  c.Attempts,
		Used:      c.Used,
		CreatedAt: c.CreatedAt,
	}
}

// EmailVerificationTokenModel is the persistence model for a verification link token.
type EmailVerificationTokenModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index"`
	Token     uuid.UUID `gorm:"type:uuid;not null;uniqueIndex"`
	Used      bool      `gorm:"not null"`
	UsedAt    *time.Time
	CreatedAt time.Time `gorm:"not null"`
	ExpiresAt time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (EmailVerificationTokenModel) TableName() string {
	return "email_verification_tokens"
}

// ToDomain converts the persistence model to a domain EmailVerificationToken.
func (m *EmailVerificationTokenModel) ToDomain() *identity.EmailVerificationToken {
	return &identity.EmailVerificationToken{
		ID:        m.ID,
		UserID:    m.UserID,
		Token:     m.Token,
		CreatedAt: m.CreatedAt,
		ExpiresAt: m.ExpiresAt,
		Used:      m.Used,
		UsedAt:    m.UsedAt,
	}
}

// EmailVerificationTokenModelFromDomain creates a new persistence model from a domain token.
func EmailVerificationTokenModelFromDomain(t *identity.EmailVerificationToken) *EmailVerificationTokenModel {
	return &EmailVerificationTokenModel{
		ID:        t.ID,
		UserID:    t.UserID,
		Token:     t.Token,
		Used:      t.Used,
		UsedAt:    t.UsedAt,
		CreatedAt: t.CreatedAt,
		ExpiresAt: t.ExpiresAt,
	}
}
