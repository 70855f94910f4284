package partner

import (
	"time"

	"github.com/google/uuid"
	"github.com/pozinox/backend/internal/domain/partner"
)

// CreateCustomerRequest represents a request to create a customer
type CreateCustomerRequest struct {
	Type           string     `json:"type" binding:"required,oneof=individual business contractor distributor"`
	FirstName      string     `json:"first_name" binding:"required,min=1,max=100"`
	LastName       string     `json:"last_name" binding:"max=100"`
	BusinessName   string     `json:"business_name" binding:"max=200"`
	TaxID          string     `json:"tax_id" binding:"required,max=12"`
	Email          string     `json:"email" binding:"required,email,max=254"`
	Phone          string     `json:"phone" binding:"max=20"`
	AlternatePhone string     `json:"alternate_phone" binding:"max=20"`
	Street         string     `json:"street" binding:"max=500"`
	Commune        string     `json:"commune" binding:"max=100"`
	City           string     `json:"city" binding:"max=100"`
	PostalCode     string     `json:"postal_code" binding:"max=10"`
	UserID         *uuid.UUID `json:"user_id"`
}

// UpdateCustomerRequest represents a request to update a customer.
// Nil fields are left unchanged.
type UpdateCustomerRequest struct {
	Type           *string `json:"type" binding:"omitempty,oneof=individual business contractor distributor"`
	FirstName      *string `json:"first_name" binding:"omitempty,min=1,max=100"`
	LastName       *string `json:"last_name" binding:"omitempty,max=100"`
	BusinessName   *string `json:"business_name" binding:"omitempty,max=200"`
	TaxID          *string `json:"tax_id" binding:"omitempty,max=12"`
	Email          *string `json:"email" binding:"omitempty,email,max=254"`
	Phone          *string `json:"phone" binding:"omitempty,max=20"`
	AlternatePhone *string `json:"alternate_phone" binding:"omitempty,max=20"`
	Street         *string `json:"street" binding:"omitempty,max=500"`
	Commune        *string `json:"commune" binding:"omitempty,max=100"`
	City           *string `json:"city" binding:"omitempty,max=100"`
	PostalCode     *string `json:"postal_code" binding:"omitempty,max=10"`
	Active         *bool   `json:"active"`
}

// CustomerResponse represents a customer in API responses
type CustomerResponse struct {
	ID             uuid.UUID  `json:"id"`
	Type           string     `json:"type"`
	DisplayName    string     `json:"display_name"`
	FirstName      string     `json:"first_name"`
	LastName       string     `json:"last_name"`
	BusinessName   string     `json:"business_name,omitempty"`
	TaxID          string     `json:"tax_id"`
	Email          string     `json:"email"`
	Phone          string     `json:"phone"`
	AlternatePhone string     `json:"alternate_phone"`
	Street         string     `json:"street"`
	Commune        string     `json:"commune"`
	City           string     `json:"city"`
	PostalCode     string     `json:"postal_code"`
	UserID         *uuid.UUID `json:"user_id,omitempty"`
	Active         bool       `json:"active"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// CustomerListFilter represents filter options for the customer list
type CustomerListFilter struct {
	Search   string `form:"search"`
	Type     string `form:"type" binding:"omitempty,oneof=individual business contractor distributor"`
	Active   *bool  `form:"active"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy  string `form:"order_by"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// EnsureCustomerInput carries the profile data used to create a customer for a user
type EnsureCustomerInput struct {
	UserID        uuid.UUID
	FirstName     string
	LastName      string
	Email         string
	EmailVerified bool
	TaxID         string
	Phone         string
	Street        string
	Commune       string
	City          string
}

// ToCustomerResponse converts a domain Customer to CustomerResponse
func ToCustomerResponse(c *partner.Customer) CustomerResponse {
	return CustomerResponse{
		ID:             c.ID,
		Type:           string(c.Type),
		DisplayName:    c.DisplayName(),
		FirstName:      c.FirstName,
		LastName:       c.LastName,
		BusinessName:   c.BusinessName,
		TaxID:          c.TaxID,
		Email:          c.Email,
		Phone:          c.Phone,
		AlternatePhone: c.AlternatePhone,
		Street:         c.Address.Street,
		Commune:        c.Address.Commune,
		City:           c.Address.City,
		PostalCode:     c.Address.PostalCode,
		UserID:         c.UserID,
		Active:         c.Active,
		CreatedAt:      c.CreatedAt,
		UpdatedAt:      c.UpdatedAt,
	}
}
