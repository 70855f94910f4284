package identity

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/pozinox/backend/internal/domain/identity"
	"github.com/pozinox/backend/internal/domain/shared"
	"go.uber.org/zap"
)

var ErrInvalidAPIToken = shared.NewDomainError("INVALID_API_TOKEN", "API token is invalid or has expired")

// APITokenService manages the long-lived tokens used by integrations
type APITokenService struct {
	userRepo identity.UserRepository
	now      func() time.Time
	logger   *zap.Logger
}

// NewAPITokenService creates a new APITokenService
func NewAPITokenService(userRepo identity.UserRepository, logger *zap.Logger) *APITokenService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &APITokenService{userRepo: userRepo, now: time.Now, logger: logger}
}

// Generate issues a new token for the user, replacing the previous one
func (s *APITokenService) Generate(ctx context.Context, userID uuid.UUID) (*APITokenResponse, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	now := s.now()
	token, err := user.IssueAPIToken(now)
	if err != nil {
		return nil, err
	}
	if err := s.userRepo.Save(ctx, user); err != nil {
		return nil, err
	}
	s.logger.Info("API token generated", zap.String("user_id", user.ID.String()))
	return &APITokenResponse{
		Token:     token,
		CreatedAt: now,
		ExpiresAt: *user.APITokenExpiresAt(),
	}, nil
}

// Revoke clears the user's token
func (s *APITokenService) Revoke(ctx context.Context, userID uuid.UUID) error {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	if user.APITokenHash == "" {
		return nil
	}
	user.RevokeAPIToken()
	if err := s.userRepo.Save(ctx, user); err != nil {
		return err
	}
	s.logger.Info("API token revoked", zap.String("user_id", user.ID.String()))
	return nil
}

// Validate reports whether token belongs to an active user and is not expired
func (s *APITokenService) Validate(ctx context.Context, token string) (*APITokenValidation, error) {
	user, err := s.Authenticate(ctx, token)
	if err != nil {
		if errors.Is(err, ErrInvalidAPIToken) {
			return &APITokenValidation{Valid: false}, nil
		}
		return nil, err
	}
	return &APITokenValidation{
		Valid:     true,
		UserID:    &user.ID,
		Username:  user.Username,
		ExpiresAt: user.APITokenExpiresAt(),
	}, nil
}

// Authenticate resolves the user owning token
func (s *APITokenService) Authenticate(ctx context.Context, token string) (*identity.User, error) {
	if token == "" {
		return nil, ErrInvalidAPIToken
	}
	user, err := s.userRepo.FindByAPITokenHash(ctx, identity.HashAPIToken(token))
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, ErrInvalidAPIToken
		}
		return nil, err
	}
	if !user.Active || !user.ValidateAPIToken(token, s.now()) {
		return nil, ErrInvalidAPIToken
	}
	return user, nil
}
