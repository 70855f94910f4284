package identity

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pozinox/backend/internal/domain/identity"
	"github.com/pozinox/backend/internal/domain/shared"
	"go.uber.org/zap"
)

var ErrCannotDeleteSelf = shared.NewDomainError("CANNOT_DELETE_SELF", "You cannot delete your own account")

// UserService handles user management from the admin panel
type UserService struct {
	userRepo       identity.UserRepository
	links          LinkSender
	eventPublisher shared.EventPublisher
	now            func() time.Time
	logger         *zap.Logger
}

// NewUserService creates a new user service
func NewUserService(userRepo identity.UserRepository, logger *zap.Logger) *UserService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UserService{
		userRepo: userRepo,
		now:      time.Now,
		logger:   logger,
	}
}

// SetEventPublisher sets the event publisher for domain events
func (s *UserService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetLinkSender sets the sender used when a new account asks for a verification link
func (s *UserService) SetLinkSender(links LinkSender) {
	s.links = links
}

// List retrieves users with filtering and pagination
func (s *UserService) List(ctx context.Context, filter UserListFilter) ([]UserResponse, int64, error) {
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
	if filter.IsSuperuser != nil {
		domainFilter.Filters["is_superuser"] = *filter.IsSuperuser
	}
	if filter.Active != nil {
		domainFilter.Filters["active"] = *filter.Active
	}
	if filter.UserType != "" {
		domainFilter.Filters["user_type"] = filter.UserType
	}

	users, err := s.userRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.userRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	items := make([]UserResponse, len(users))
	for i := range users {
		items[i] = ToUserResponse(&users[i])
	}
	return items, total, nil
}

// GetByID retrieves a user by ID
func (s *UserService) GetByID(ctx context.Context, id uuid.UUID) (*UserResponse, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	response := ToUserResponse(user)
	return &response, nil
}

// Create creates a user. Admin-created accounts start unverified.
func (s *UserService) Create(ctx context.Context, req CreateUserRequest) (*UserResponse, error) {
	s.logger.Info("Creating new user", zap.String("username", req.Username))

	exists, err := s.userRepo.ExistsByUsername(ctx, req.Username)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrDuplicateUsername
	}
	exists, err = s.userRepo.ExistsByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrDuplicateEmail
	}

	user, err := identity.NewUser(req.Username, req.Email, req.Password, req.FirstName, req.LastName)
	if err != nil {
		return nil, err
	}
	if req.UserType != "" {
		if err := user.SetUserType(identity.UserType(req.UserType)); err != nil {
			return nil, err
		}
	}
	user.UpdateProfile(req.Phone, req.Address, req.Commune, req.City)
	user.SetSuperuser(req.IsSuperuser)

	if err := s.userRepo.Save(ctx, user); err != nil {
		return nil, err
	}
	publishUserEvents(ctx, s.eventPublisher, s.logger, user)

	if req.SendVerification && s.links != nil {
		if _, err := s.links.SendVerificationLink(ctx, user.ID); err != nil {
			s.logger.Warn("Failed to send verification link to new user",
				zap.String("user_id", user.ID.String()),
				zap.Error(err))
		}
	}

	s.logger.Info("User created",
		zap.String("user_id", user.ID.String()),
		zap.String("username", user.Username))

	response := ToUserResponse(user)
	return &response, nil
}

// Update edits a user's account and profile
func (s *UserService) Update(ctx context.Context, id uuid.UUID, req UpdateUserRequest) (*UserResponse, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*req.Email))
		if email != user.Email {
			exists, err := s.userRepo.ExistsByEmail(ctx, email)
			if err != nil {
				return nil, err
			}
			if exists {
				return nil, ErrDuplicateEmail
			}
			if err := user.SetEmail(email); err != nil {
				return nil, err
			}
		}
	}
	if req.FirstName != nil || req.LastName != nil {
		first, last := user.FirstName, user.LastName
		if req.FirstName != nil {
			first = *req.FirstName
		}
		if req.LastName != nil {
			last = *req.LastName
		}
		user.UpdateNames(first, last)
	}
	if req.Password != nil {
		if err := user.SetPassword(*req.Password); err != nil {
			return nil, err
		}
	}
	if req.UserType != nil {
		if err := user.SetUserType(identity.UserType(*req.UserType)); err != nil {
			return nil, err
		}
	}
	if req.IsSuperuser != nil {
		user.SetSuperuser(*req.IsSuperuser)
	}
	if req.Active != nil {
		user.SetActive(*req.Active)
	}
	if req.EmailVerified != nil && *req.EmailVerified {
		user.MarkEmailVerified(s.now())
	}
	applyProfile(user, req.Phone, req.Address, req.Commune, req.City)

	if err := s.userRepo.Save(ctx, user); err != nil {
		return nil, err
	}
	publishUserEvents(ctx, s.eventPublisher, s.logger, user)

	response := ToUserResponse(user)
	return &response, nil
}

// Delete removes a user. Administrators cannot delete themselves.
func (s *UserService) Delete(ctx context.Context, actorID, id uuid.UUID) error {
	if actorID == id {
		return ErrCannotDeleteSelf
	}
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	user.MarkDeleted()
	if err := s.userRepo.Delete(ctx, id); err != nil {
		return err
	}
	publishUserEvents(ctx, s.eventPublisher, s.logger, user)

	s.logger.Info("User deleted",
		zap.String("user_id", id.String()),
		zap.String("username", user.Username))
	return nil
}

// Count returns the number of users
func (s *UserService) Count(ctx context.Context) (int64, error) {
	return s.userRepo.Count(ctx, shared.Filter{Filters: map[string]interface{}{}})
}
