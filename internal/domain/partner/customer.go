package partner

import (
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/pozinox/backend/internal/domain/shared"
)

// CustomerType represents the kind of buyer
type CustomerType string

const (
	CustomerTypeIndividual  CustomerType = "individual"
	CustomerTypeBusiness    CustomerType = "business"
	CustomerTypeContractor  CustomerType = "contractor"
	CustomerTypeDistributor CustomerType = "distributor"
)

// IsValid reports whether the customer type is known
func (t CustomerType) IsValid() bool {
	switch t {
	case CustomerTypeIndividual, CustomerTypeBusiness, CustomerTypeContractor, CustomerTypeDistributor:
		return true
	}
	return false
}

// Address is a Chilean postal address
type Address struct {
	Street     string
	Commune    string
	City       string
	PostalCode string
}

var (
	emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	phoneRegex = regexp.MustCompile(`^[\d\s\-\(\)\+]+$`)
)

// Customer is a buyer, optionally linked to a user account
type Customer struct {
	shared.BaseAggregateRoot
	Type           CustomerType
	FirstName      string
	LastName       string
	BusinessName   string
	TaxID          string
	Email          string
	Phone          string
	AlternatePhone string
	Address        Address
	UserID         *uuid.UUID
	Active         bool
}

// NewCustomer creates an active customer with a validated RUT and email
func NewCustomer(customerType CustomerType, firstName, lastName, taxID, email string) (*Customer, error) {
	if !customerType.IsValid() {
		return nil, shared.NewDomainError("INVALID_CUSTOMER_TYPE", "Unknown customer type")
	}
	firstName = strings.TrimSpace(firstName)
	if firstName == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "First name cannot be empty")
	}
	rut, err := NormalizeRUT(taxID)
	if err != nil {
		return nil, err
	}
	email, err = normalizeEmail(email)
	if err != nil {
		return nil, err
	}

	return &Customer{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Type:              customerType,
		FirstName:         firstName,
		LastName:          strings.TrimSpace(lastName),
		TaxID:             rut,
		Email:             email,
		Active:            true,
	}, nil
}

// Name returns the customer's name variant
func (c *Customer) Name() PartyName {
	person := IndividualName{FirstName: c.FirstName, LastName: c.LastName}
	if c.Type == CustomerTypeBusiness {
		return BusinessName{LegalName: c.BusinessName, Contact: person}
	}
	return person
}

// DisplayName is the name shown on quotes and in listings
func (c *Customer) DisplayName() string {
	return c.Name().DisplayName()
}

// Update replaces the customer's identifying data
func (c *Customer) Update(customerType CustomerType, firstName, lastName, businessName string) error {
	if !customerType.IsValid() {
		return shared.NewDomainError("INVALID_CUSTOMER_TYPE", "Unknown customer type")
	}
	firstName = strings.TrimSpace(firstName)
	if firstName == "" {
		return shared.NewDomainError("INVALID_NAME", "First name cannot be empty")
	}
	c.Type = customerType
	c.FirstName = firstName
	c.LastName = strings.TrimSpace(lastName)
	c.BusinessName = strings.TrimSpace(businessName)
	c.Touch()
	c.IncrementVersion()
	return nil
}

// ChangeTaxID replaces the RUT
func (c *Customer) ChangeTaxID(taxID string) error {
	rut, err := NormalizeRUT(taxID)
	if err != nil {
		return err
	}
	c.TaxID = rut
	c.Touch()
	c.IncrementVersion()
	return nil
}

// ChangeEmail replaces the contact email
func (c *Customer) ChangeEmail(email string) error {
	email, err := normalizeEmail(email)
	if err != nil {
		return err
	}
	c.Email = email
	c.Touch()
	c.IncrementVersion()
	return nil
}

// SetContact sets phone numbers and address
func (c *Customer) SetContact(phone, alternatePhone string, address Address) error {
	for _, p := range []string{phone, alternatePhone} {
		if p != "" && !phoneRegex.MatchString(p) {
			return shared.NewDomainError("INVALID_PHONE", "Invalid phone number format")
		}
	}
	c.Phone = phone
	c.AlternatePhone = alternatePhone
	c.Address = address
	c.Touch()
	c.IncrementVersion()
	return nil
}

// LinkUser associates the customer with a user account
func (c *Customer) LinkUser(userID uuid.UUID) {
	c.UserID = &userID
	c.Touch()
}

// SetActive toggles the customer
func (c *Customer) SetActive(active bool) {
	c.Active = active
	c.Touch()
	c.IncrementVersion()
}

func normalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if !emailRegex.MatchString(email) {
		return "", shared.NewDomainError("INVALID_EMAIL", "Invalid email format")
	}
	return email, nil
}
