package identity

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	partnerapp "github.com/pozinox/backend/internal/application/partner"
	"github.com/pozinox/backend/internal/domain/identity"
	"github.com/pozinox/backend/internal/domain/partner"
	"github.com/pozinox/backend/internal/domain/shared"
	"github.com/pozinox/backend/internal/infrastructure/auth"
	"go.uber.org/zap"
)

var (
	ErrInvalidCredentials = shared.NewDomainError("INVALID_CREDENTIALS", "Invalid username or password")
	ErrEmailNotVerified   = shared.NewDomainError("EMAIL_NOT_VERIFIED", "Verify your email address before registering")
	ErrDuplicateUsername  = shared.NewDomainError("DUPLICATE_USERNAME", "Username is already taken")
	ErrDuplicateEmail     = shared.NewDomainError("DUPLICATE_EMAIL", "An account with this email already exists")
)

// AuthServiceConfig contains configuration for the auth service
type AuthServiceConfig struct {
	// EmailVerificationRequired makes registration require an email proof
	// and login require a verified account
	EmailVerificationRequired bool
	Now                       func() time.Time
}

// AuthService handles registration, sign-in and the signed-in user's profile
type AuthService struct {
	userRepo       identity.UserRepository
	jwtService     *auth.JWTService
	revocations    auth.RevocationStore
	customers      CustomerLinker
	activity       ActivityRecorder
	eventPublisher shared.EventPublisher
	config         AuthServiceConfig
	logger         *zap.Logger
}

// NewAuthService creates a new authentication service. revocations and
// customers may be nil.
func NewAuthService(
	userRepo identity.UserRepository,
	jwtService *auth.JWTService,
	revocations auth.RevocationStore,
	customers CustomerLinker,
	config AuthServiceConfig,
	logger *zap.Logger,
) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.Now == nil {
		config.Now = time.Now
	}
	return &AuthService{
		userRepo:    userRepo,
		jwtService:  jwtService,
		revocations: revocations,
		customers:   customers,
		config:      config,
		logger:      logger,
	}
}

// SetEventPublisher sets the event publisher for domain events
func (s *AuthService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetActivityRecorder sets where logins and logouts are recorded
func (s *AuthService) SetActivityRecorder(recorder ActivityRecorder) {
	s.activity = recorder
}

// Register creates a customer account and signs it in
func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*AuthResult, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	verified := false
	if req.EmailProof != "" {
		proven, err := s.jwtService.ValidateEmailProof(req.EmailProof)
		if err != nil || proven != email {
			s.logger.Warn("Registration with invalid email proof", zap.String("email", email), zap.Error(err))
			return nil, ErrEmailNotVerified
		}
		verified = true
	}
	if s.config.EmailVerificationRequired && !verified {
		return nil, ErrEmailNotVerified
	}

	var taxID string
	if req.TaxID != "" {
		rut, err := partner.NormalizeRUT(req.TaxID)
		if err != nil {
			return nil, err
		}
		taxID = rut
	}

	exists, err := s.userRepo.ExistsByUsername(ctx, req.Username)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrDuplicateUsername
	}
	exists, err = s.userRepo.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrDuplicateEmail
	}

	user, err := identity.NewUser(req.Username, email, req.Password, req.FirstName, req.LastName)
	if err != nil {
		return nil, err
	}
	user.UpdateProfile(req.Phone, req.Address, req.Commune, req.City)
	if verified {
		user.MarkEmailVerified(s.config.Now())
	}

	if err := s.userRepo.Save(ctx, user); err != nil {
		return nil, err
	}
	publishUserEvents(ctx, s.eventPublisher, s.logger, user)

	if taxID != "" && s.customers != nil {
		if _, err := s.customers.EnsureForUser(ctx, partnerapp.EnsureCustomerInput{
			UserID:        user.ID,
			FirstName:     user.FirstName,
			LastName:      user.LastName,
			Email:         user.Email,
			EmailVerified: user.EmailVerified,
			TaxID:         taxID,
			Phone:         user.Profile.Phone,
			Street:        user.Profile.Address,
			Commune:       user.Profile.Commune,
			City:          user.Profile.City,
		}); err != nil {
			// the customer record is created lazily on the first quote
			s.logger.Warn("Could not create customer at registration",
				zap.String("user_id", user.ID.String()),
				zap.Error(err))
		}
	}

	s.logger.Info("User registered",
		zap.String("user_id", user.ID.String()),
		zap.String("username", user.Username),
		zap.Bool("email_verified", user.EmailVerified))

	return s.issue(user)
}

// Login authenticates with a username or email address
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*AuthResult, error) {
	user, err := s.findForLogin(ctx, req.Login)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			s.logger.Warn("Login for unknown user", zap.String("login", req.Login))
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !user.VerifyPassword(req.Password) {
		s.logger.Warn("Invalid password attempt", zap.String("user_id", user.ID.String()))
		return nil, ErrInvalidCredentials
	}
	if err := user.CanLogin(s.config.EmailVerificationRequired); err != nil {
		return nil, err
	}

	user.RecordLogin(s.config.Now())
	if err := s.userRepo.Save(ctx, user); err != nil {
		s.logger.Error("Failed to record login", zap.Error(err))
	}
	s.record(ctx, &user.ID, identity.ActivityLogin, "User "+user.Username+" signed in", req.IP)

	s.logger.Info("User logged in",
		zap.String("user_id", user.ID.String()),
		zap.String("username", user.Username))

	return s.issue(user)
}

// Logout revokes the presented access token
func (s *AuthService) Logout(ctx context.Context, input LogoutInput) error {
	if s.revocations != nil && input.TokenJTI != "" && input.TokenTTL > 0 {
		if err := s.revocations.RevokeToken(ctx, input.TokenJTI, input.TokenTTL); err != nil {
			s.logger.Error("Failed to revoke token", zap.Error(err))
			return err
		}
	}
	s.record(ctx, &input.UserID, identity.ActivityLogout, "User signed out", input.IP)
	s.logger.Info("User logout", zap.String("user_id", input.UserID.String()))
	return nil
}

// Refresh rotates a refresh token, re-reading the user's current privileges
func (s *AuthService) Refresh(ctx context.Context, req RefreshRequest) (*AuthResult, error) {
	claims, err := s.jwtService.ValidateRefreshToken(req.RefreshToken)
	if err != nil {
		return nil, mapTokenError(err)
	}
	userID, err := claims.GetUserUUID()
	if err != nil {
		return nil, shared.NewDomainError("TOKEN_INVALID", "Invalid user ID in token")
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("TOKEN_INVALID", "User no longer exists")
		}
		return nil, err
	}
	if err := user.CanLogin(s.config.EmailVerificationRequired); err != nil {
		return nil, err
	}

	pair, err := s.jwtService.RefreshTokenPair(req.RefreshToken, tokenInput(user))
	if err != nil {
		return nil, mapTokenError(err)
	}
	return &AuthResult{
		AccessToken:           pair.AccessToken,
		RefreshToken:          pair.RefreshToken,
		AccessTokenExpiresAt:  pair.AccessTokenExpiresAt,
		RefreshTokenExpiresAt: pair.RefreshTokenExpiresAt,
		TokenType:             pair.TokenType,
		User:                  ToUserResponse(user),
	}, nil
}

// Me returns the signed-in user
func (s *AuthService) Me(ctx context.Context, userID uuid.UUID) (*UserResponse, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	response := ToUserResponse(user)
	return &response, nil
}

// UpdateProfile edits the signed-in user's names, email and contact data.
// A changed email must be verified again.
func (s *AuthService) UpdateProfile(ctx context.Context, userID uuid.UUID, req UpdateProfileRequest) (*UserResponse, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
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
	applyProfile(user, req.Phone, req.Address, req.Commune, req.City)

	if err := s.userRepo.Save(ctx, user); err != nil {
		return nil, err
	}
	response := ToUserResponse(user)
	return &response, nil
}

// ChangePassword replaces the password and signs out every other session
func (s *AuthService) ChangePassword(ctx context.Context, userID uuid.UUID, req ChangePasswordRequest) error {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	if !user.VerifyPassword(req.CurrentPassword) {
		return shared.NewDomainError("INVALID_CREDENTIALS", "Current password is incorrect")
	}
	if err := user.SetPassword(req.NewPassword); err != nil {
		return err
	}
	if err := s.userRepo.Save(ctx, user); err != nil {
		return err
	}

	if s.revocations != nil {
		if err := s.revocations.RevokeUserSessions(ctx, user.ID.String(), s.jwtService.GetRefreshTokenExpiration()); err != nil {
			s.logger.Error("Failed to invalidate sessions after password change", zap.Error(err))
		}
	}
	s.logger.Info("User password changed", zap.String("user_id", user.ID.String()))
	return nil
}

func (s *AuthService) findForLogin(ctx context.Context, login string) (*identity.User, error) {
	login = strings.TrimSpace(login)
	user, err := s.userRepo.FindByUsername(ctx, login)
	if err == nil || !errors.Is(err, shared.ErrNotFound) || !strings.Contains(login, "@") {
		return user, err
	}
	return s.userRepo.FindByEmail(ctx, strings.ToLower(login))
}

func (s *AuthService) issue(user *identity.User) (*AuthResult, error) {
	pair, err := s.jwtService.GenerateTokenPair(tokenInput(user))
	if err != nil {
		s.logger.Error("Failed to generate token pair", zap.Error(err))
		return nil, err
	}
	return &AuthResult{
		AccessToken:           pair.AccessToken,
		RefreshToken:          pair.RefreshToken,
		AccessTokenExpiresAt:  pair.AccessTokenExpiresAt,
		RefreshTokenExpiresAt: pair.RefreshTokenExpiresAt,
		TokenType:             pair.TokenType,
		User:                  ToUserResponse(user),
	}, nil
}

func (s *AuthService) record(ctx context.Context, userID *uuid.UUID, activityType identity.ActivityType, description, ip string) {
	if s.activity != nil {
		s.activity.Record(ctx, userID, activityType, description, ip)
	}
}

func tokenInput(user *identity.User) auth.GenerateTokenInput {
	return auth.GenerateTokenInput{
		UserID:      user.ID,
		Username:    user.Username,
		IsSuperuser: user.IsSuperuser,
	}
}

func mapTokenError(err error) error {
	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		return shared.NewDomainError("TOKEN_EXPIRED", "Refresh token has expired")
	case errors.Is(err, auth.ErrMaxRefreshExceeded):
		return shared.NewDomainError("TOKEN_MAX_REFRESH", "Maximum token refresh count exceeded. Please log in again")
	default:
		return shared.NewDomainError("TOKEN_INVALID", "Invalid refresh token")
	}
}

// applyProfile overwrites the profile fields that are set
func applyProfile(user *identity.User, phone, address, commune, city *string) {
	if phone == nil && address == nil && commune == nil && city == nil {
		return
	}
	p := user.Profile
	if phone != nil {
		p.Phone = *phone
	}
	if address != nil {
		p.Address = *address
	}
	if commune != nil {
		p.Commune = *commune
	}
	if city != nil {
		p.City = *city
	}
	user.UpdateProfile(p.Phone, p.Address, p.Commune, p.City)
}
