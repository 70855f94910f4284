package models

import (
	"github.com/google/uuid"
	"github.com/pozinox/backend/internal/domain/partner"
)

// CustomerModel is the persistence model for the Customer domain entity.
type CustomerModel struct {
	AggregateModel
	CustomerType   partner.CustomerType `gorm:"type:varchar(20);not null;index"`
	FirstName      string               `gorm:"type:varchar(100);not null"`
	LastName       string               `gorm:"type:varchar(100)"`
	BusinessName   string               `gorm:"type:varchar(200)"`
	TaxID          string               `gorm:"type:varchar(12);not null;uniqueIndex"`
	Email          string               `gorm:"type:varchar(254);not null;uniqueIndex"`
	Phone          string               `gorm:"type:varchar(20)"`
	AlternatePhone string               `gorm:"type:varchar(20)"`
	Street         string               `gorm:"type:varchar(255)"`
	Commune        string               `gorm:"type:varchar(100)"`
	City           string               `gorm:"type:varchar(100)"`
	PostalCode     string               `gorm:"type:varchar(10)"`
	UserID         *uuid.UUID           `gorm:"type:uuid;uniqueIndex"`
	Active         bool                 `gorm:"not null"`
}

// TableName returns the table name for GORM
func (CustomerModel) TableName() string {
	return "customers"
}

// ToDomain converts the persistence model to a domain Customer entity.
func (m *CustomerModel) ToDomain() *partner.Customer {
	return &partner.Customer{
		BaseAggregateRoot: m.ToAggregateRoot(),
		Type:              m.CustomerType,
		FirstName:         m.FirstName,
		LastName:          m.LastName,
		BusinessName:      m.BusinessName,
		TaxID:             m.TaxID,
		Email:             m.Email,
		Phone:             m.Phone,
		AlternatePhone:    m.AlternatePhone,
		Address: partner.Address{
			Street:     m.Street,
			Commune:    m.Commune,
			City:       m.City,
			PostalCode: m.PostalCode,
		},
		UserID: m.UserID,
		Active: m.Active,
	}
}

// FromDomain populates the persistence model from a domain Customer entity.
func (m *CustomerModel) FromDomain(c *partner.Customer) {
	m.FromDomainAggregateRoot(c.BaseAggregateRoot)
	m.CustomerType = c.Type
	m.FirstName = c.FirstName
	m.LastName = c.LastName
	m.BusinessName = c.BusinessName
	m.TaxID = c.TaxID
	m.Email = c.Email
	m.Phone = c.Phone
	m.AlternatePhone = c.AlternatePhone
	m.Street = c.Address.Street
	m.Commune = c.Address.Commune
	m.City = c.Address.City
	m.PostalCode = c.Address.PostalCode
	m.UserID = c.UserID
	m.Active = c.Active
}

// CustomerModelFromDomain creates a new persistence model from a domain Customer entity.
func CustomerModelFromDomain(c *partner.Customer) *CustomerModel {
	m := &CustomerModel{}
	m.FromDomain(c)
	return m
}
