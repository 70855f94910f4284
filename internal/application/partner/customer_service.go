package partner

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/pozinox/backend/internal/domain/partner"
	"github.com/pozinox/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// ErrCustomerProfileIncomplete is returned when a user without a customer
// record has not supplied the RUT needed to create one
var ErrCustomerProfileIncomplete = shared.NewDomainError("CUSTOMER_PROFILE_INCOMPLETE",
	"A RUT is required to create your customer profile")

// ErrCustomerEmailClaimed is returned when an unverified user's email matches
// an existing customer that has not been linked to any account
var ErrCustomerEmailClaimed = shared.NewDomainError("CUSTOMER_EMAIL_CLAIMED",
	"A customer with this email already exists; verify your email to link it")

// CustomerService handles customer-related business operations
type CustomerService struct {
	customerRepo   partner.CustomerRepository
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewCustomerService creates a new CustomerService
func NewCustomerService(customerRepo partner.CustomerRepository, logger *zap.Logger) *CustomerService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CustomerService{
		customerRepo: customerRepo,
		logger:       logger,
	}
}

// SetEventPublisher sets the publisher used for activity logging
func (s *CustomerService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Create creates a new customer
func (s *CustomerService) Create(ctx context.Context, req CreateCustomerRequest) (*CustomerResponse, error) {
	customer, err := partner.NewCustomer(partner.CustomerType(req.Type), req.FirstName, req.LastName, req.TaxID, req.Email)
	if err != nil {
		return nil, err
	}
	if err := s.ensureUnique(ctx, customer.TaxID, customer.Email, uuid.Nil); err != nil {
		return nil, err
	}

	if req.BusinessName != "" {
		if err := customer.Update(customer.Type, customer.FirstName, customer.LastName, req.BusinessName); err != nil {
			return nil, err
		}
	}
	if err := customer.SetContact(req.Phone, req.AlternatePhone, partner.Address{
		Street:     req.Street,
		Commune:    req.Commune,
		City:       req.City,
		PostalCode: req.PostalCode,
	}); err != nil {
		return nil, err
	}
	if req.UserID != nil {
		customer.LinkUser(*req.UserID)
	}

	if err := s.customerRepo.Save(ctx, customer); err != nil {
		return nil, err
	}
	s.publish(ctx, partner.NewCustomerCreatedEvent(customer))

	response := ToCustomerResponse(customer)
	return &response, nil
}

// GetByID retrieves a customer by ID
func (s *CustomerService) GetByID(ctx context.Context, id uuid.UUID) (*CustomerResponse, error) {
	customer, err := s.customerRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	response := ToCustomerResponse(customer)
	return &response, nil
}

// List retrieves customers with filtering and pagination
func (s *CustomerService) List(ctx context.Context, filter CustomerListFilter) ([]CustomerResponse, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	if filter.OrderBy == "" {
		filter.OrderBy = "created_at"
	}
	if filter.OrderDir == "" {
		filter.OrderDir = "desc"
	}

	domainFilter := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		OrderBy:  filter.OrderBy,
		OrderDir: filter.OrderDir,
		Search:   filter.Search,
		Filters:  make(map[string]interface{}),
	}
	if filter.Type != "" {
		domainFilter.Filters["type"] = filter.Type
	}
	if filter.Active != nil {
		domainFilter.Filters["active"] = *filter.Active
	}

	customers, err := s.customerRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.customerRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]CustomerResponse, len(customers))
	for i := range customers {
		responses[i] = ToCustomerResponse(&customers[i])
	}
	return responses, total, nil
}

// Update updates a customer
func (s *CustomerService) Update(ctx context.Context, id uuid.UUID, req UpdateCustomerRequest) (*CustomerResponse, error) {
	customer, err := s.customerRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.TaxID != nil {
		rut, err := partner.NormalizeRUT(*req.TaxID)
		if err != nil {
			return nil, err
		}
		if rut != customer.TaxID {
			if err := s.ensureUnique(ctx, rut, "", customer.ID); err != nil {
				return nil, err
			}
			if err := customer.ChangeTaxID(rut); err != nil {
				return nil, err
			}
		}
	}
	if req.Email != nil && *req.Email != customer.Email {
		if err := s.ensureUnique(ctx, "", *req.Email, customer.ID); err != nil {
			return nil, err
		}
		if err := customer.ChangeEmail(*req.Email); err != nil {
			return nil, err
		}
	}

	if req.Type != nil || req.FirstName != nil || req.LastName != nil || req.BusinessName != nil {
		customerType, first, last, business := customer.Type, customer.FirstName, customer.LastName, customer.BusinessName
		if req.Type != nil {
			customerType = partner.CustomerType(*req.Type)
		}
		if req.FirstName != nil {
			first = *req.FirstName
		}
		if req.LastName != nil {
			last = *req.LastName
		}
		if req.BusinessName != nil {
			business = *req.BusinessName
		}
		if err := customer.Update(customerType, first, last, business); err != nil {
			return nil, err
		}
	}

	if req.Phone != nil || req.AlternatePhone != nil || req.Street != nil || req.Commune != nil || req.City != nil || req.PostalCode != nil {
		phone, alternate, address := customer.Phone, customer.AlternatePhone, customer.Address
		if req.Phone != nil {
			phone = *req.Phone
		}
		if req.AlternatePhone != nil {
			alternate = *req.AlternatePhone
		}
		if req.Street != nil {
			address.Street = *req.Street
		}
		if req.Commune != nil {
			address.Commune = *req.Commune
		}
		if req.City != nil {
			address.City = *req.City
		}
		if req.PostalCode != nil {
			address.PostalCode = *req.PostalCode
		}
		if err := customer.SetContact(phone, alternate, address); err != nil {
			return nil, err
		}
	}

	if req.Active != nil {
		customer.SetActive(*req.Active)
	}

	if err := s.customerRepo.Save(ctx, customer); err != nil {
		return nil, err
	}
	s.publish(ctx, partner.NewCustomerUpdatedEvent(customer))

	response := ToCustomerResponse(customer)
	return &response, nil
}

// Delete removes a customer together with their orders
func (s *CustomerService) Delete(ctx context.Context, id uuid.UUID) error {
	customer, err := s.customerRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.customerRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.publish(ctx, partner.NewCustomerDeletedEvent(customer))
	return nil
}

// FindForUser returns the customer record linked to a user
func (s *CustomerService) FindForUser(ctx context.Context, userID uuid.UUID) (*partner.Customer, error) {
	return s.customerRepo.FindByUserID(ctx, userID)
}

// EnsureForUser returns the customer linked to the user, creating one from
// the user's profile when none exists. An unlinked customer with the same
// email, e.g. one created by an admin, is linked instead of duplicated, but
// only once the user has proven ownership of that email.
func (s *CustomerService) EnsureForUser(ctx context.Context, input EnsureCustomerInput) (*partner.Customer, error) {
	customer, err := s.customerRepo.FindByUserID(ctx, input.UserID)
	if err == nil {
		return customer, nil
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}

	existing, err := s.customerRepo.FindByEmail(ctx, input.Email)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}
	if existing != nil && existing.UserID == nil {
		if !input.EmailVerified {
			s.logger.Warn("Refused to link customer to unverified user",
				zap.String("customer_id", existing.ID.String()),
				zap.String("user_id", input.UserID.String()))
			return nil, ErrCustomerEmailClaimed
		}
		existing.LinkUser(input.UserID)
		if err := s.customerRepo.Save(ctx, existing); err != nil {
			return nil, err
		}
		s.logger.Info("Linked existing customer to user",
			zap.String("customer_id", existing.ID.String()),
			zap.String("user_id", input.UserID.String()))
		return existing, nil
	}

	if input.TaxID == "" {
		return nil, ErrCustomerProfileIncomplete
	}
	customer, err = partner.NewCustomer(partner.CustomerTypeIndividual, input.FirstName, input.LastName, input.TaxID, input.Email)
	if err != nil {
		return nil, err
	}
	if err := s.ensureUnique(ctx, customer.TaxID, customer.Email, uuid.Nil); err != nil {
		return nil, err
	}
	if err := customer.SetContact(input.Phone, "", partner.Address{
		Street:  input.Street,
		Commune: input.Commune,
		City:    input.City,
	}); err != nil {
		return nil, err
	}
	customer.LinkUser(input.UserID)

	if err := s.customerRepo.Save(ctx, customer); err != nil {
		return nil, err
	}
	s.publish(ctx, partner.NewCustomerCreatedEvent(customer))

	s.logger.Info("Created customer for user",
		zap.String("customer_id", customer.ID.String()),
		zap.String("user_id", input.UserID.String()))
	return customer, nil
}

// ensureUnique checks the RUT and email against customers other than exclude
func (s *CustomerService) ensureUnique(ctx context.Context, taxID, email string, exclude uuid.UUID) error {
	if taxID != "" {
		existing, err := s.customerRepo.FindByTaxID(ctx, taxID)
		if err != nil && !errors.Is(err, shared.ErrNotFound) {
			return err
		}
		if existing != nil && existing.ID != exclude {
			return shared.NewDomainError("DUPLICATE_TAX_ID", "A customer with this RUT already exists")
		}
	}
	if email != "" {
		existing, err := s.customerRepo.FindByEmail(ctx, email)
		if err != nil && !errors.Is(err, shared.ErrNotFound) {
			return err
		}
		if existing != nil && existing.ID != exclude {
			return shared.NewDomainError("DUPLICATE_EMAIL", "A customer with this email already exists")
		}
	}
	return nil
}

func (s *CustomerService) publish(ctx context.Context, event shared.DomainEvent) {
	if s.eventPublisher == nil {
		return
	}
	if err := s.eventPublisher.Publish(ctx, event); err != nil {
		s.logger.Warn("Failed to publish customer event", zap.Error(err))
	}
}
