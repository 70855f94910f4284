package identity

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pozinox/backend/internal/domain/identity"
	"github.com/pozinox/backend/internal/domain/shared"
	"github.com/pozinox/backend/internal/infrastructure/auth"
	"github.com/pozinox/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

var ErrCodeNotFound = shared.NewDomainError("CODE_NOT_FOUND", "No pending verification code for this email, request a new one")

// Verification purposes reported on the code metrics
const (
	verificationPurposeCode = "registration_code"
	verificationPurposeLink = "account_link"
)

// VerificationServiceConfig contains configuration for email verification
type VerificationServiceConfig struct {
	// PublicURL is the externally reachable base URL used in mailed links
	PublicURL string
	// ProofTTL is how long a verified email proof can be presented at registration
	ProofTTL time.Duration
	// CodeRetention is how long used and expired codes are kept before purging
	CodeRetention time.Duration
	Now           func() time.Time
}

// VerificationService runs both email verification flows: six-digit codes
// before registration and single-use links for existing accounts
type VerificationService struct {
	userRepo       identity.UserRepository
	codeRepo       identity.VerificationCodeRepository
	tokenRepo      identity.EmailVerificationTokenRepository
	jwtService     *auth.JWTService
	mailer         Mailer
	eventPublisher shared.EventPublisher
	storeMetrics   *telemetry.StoreMetrics
	config         VerificationServiceConfig
	logger         *zap.Logger
}

// NewVerificationService creates a new VerificationService
func NewVerificationService(
	userRepo identity.UserRepository,
	codeRepo identity.VerificationCodeRepository,
	tokenRepo identity.EmailVerificationTokenRepository,
	jwtService *auth.JWTService,
	mailer Mailer,
	config VerificationServiceConfig,
	logger *zap.Logger,
) *VerificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.ProofTTL <= 0 {
		config.ProofTTL = 30 * time.Minute
	}
	if config.CodeRetention <= 0 {
		config.CodeRetention = 24 * time.Hour
	}
	if config.Now == nil {
		config.Now = time.Now
	}
	config.PublicURL = strings.TrimRight(config.PublicURL, "/")
	return &VerificationService{
		userRepo:   userRepo,
		codeRepo:   codeRepo,
		tokenRepo:  tokenRepo,
		jwtService: jwtService,
		mailer:     mailer,
		config:     config,
		logger:     logger,
	}
}

// SetEventPublisher sets the event publisher for domain events
func (s *VerificationService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetStoreMetrics sets the business metrics collector
func (s *VerificationService) SetStoreMetrics(m *telemetry.StoreMetrics) {
	s.storeMetrics = m
}

func (s *VerificationService) recordCode(ctx context.Context, purpose, result string) {
	if s.storeMetrics != nil {
		s.storeMetrics.VerificationCode(ctx, purpose, result)
	}
}

// SendCode issues a new code for email, invalidating earlier unused codes.
// The result reports whether the mail was delivered; the code is stored either way.
func (s *VerificationService) SendCode(ctx context.Context, req SendCodeRequest) (*SendCodeResult, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	exists, err := s.userRepo.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrDuplicateEmail
	}

	if n, err := s.codeRepo.InvalidateUnused(ctx, email); err != nil {
		return nil, err
	} else if n > 0 {
		s.logger.Debug("Invalidated previous verification codes", zap.String("email", email), zap.Int64("count", n))
	}

	now := s.config.Now()
	code, err := identity.NewVerificationCode(email, now)
	if err != nil {
		return nil, err
	}
	if err := s.codeRepo.Create(ctx, code); err != nil {
		return nil, err
	}

	sent := s.mailer.SendVerificationCode(ctx, email, code.Code)
	if !sent {
		s.logger.Warn("Verification code was stored but not delivered", zap.String("email", email))
	}
	s.recordCode(ctx, verificationPurposeCode, telemetry.CodeResultSent)
	return &SendCodeResult{
		Email:     email,
		Sent:      sent,
		ExpiresAt: code.CreatedAt.Add(identity.VerificationCodeTTL),
	}, nil
}

// VerifyCode checks the latest code for the address and returns an email
// proof. Every checked attempt is persisted, failed or not.
func (s *VerificationService) VerifyCode(ctx context.Context, req VerifyCodeRequest) (*VerifyCodeResult, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	code, err := s.codeRepo.FindLatestUnused(ctx, email)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, ErrCodeNotFound
		}
		return nil, err
	}

	verifyErr := code.Verify(req.Code, s.config.Now())
	if err := s.codeRepo.Save(ctx, code); err != nil {
		return nil, err
	}
	if verifyErr != nil {
		s.logger.Info("Verification code rejected",
			zap.String("email", email),
			zap.Int("remaining_attempts", code.RemainingAttempts()),
			zap.Error(verifyErr))
		result := telemetry.CodeResultInvalid
		if errors.Is(verifyErr, identity.ErrCodeExhausted) || code.RemainingAttempts() == 0 {
			result = telemetry.CodeResultExhausted
		}
		s.recordCode(ctx, verificationPurposeCode, result)
		return nil, verifyErr
	}
	s.recordCode(ctx, verificationPurposeCode, telemetry.CodeResultVerified)

	proof, expiresAt, err := s.jwtService.GenerateEmailProof(email, s.config.ProofTTL)
	if err != nil {
		return nil, err
	}
	return &VerifyCodeResult{Email: email, EmailProof: proof, ExpiresAt: expiresAt}, nil
}

// SendVerificationLink mails a fresh link to an unverified account
func (s *VerificationService) SendVerificationLink(ctx context.Context, userID uuid.UUID) (*VerificationLinkResult, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.EmailVerified {
		return &VerificationLinkResult{AlreadyVerified: true}, nil
	}

	if err := s.tokenRepo.InvalidateForUser(ctx, user.ID); err != nil {
		return nil, err
	}
	token := identity.NewEmailVerificationToken(user.ID, s.config.Now())
	if err := s.tokenRepo.Create(ctx, token); err != nil {
		return nil, err
	}

	link := s.config.PublicURL + "/api/v1/auth/verify-email/" + token.Token.String()
	sent := s.mailer.SendVerificationLink(ctx, user.Email, user.FullName(), link)
	if !sent {
		s.logger.Warn("Verification link was stored but not delivered", zap.String("user_id", user.ID.String()))
	}
	s.recordCode(ctx, verificationPurposeLink, telemetry.CodeResultSent)
	return &VerificationLinkResult{Sent: sent}, nil
}

// VerifyLink consumes a link token and marks its account verified
func (s *VerificationService) VerifyLink(ctx context.Context, token uuid.UUID) (*UserResponse, error) {
	stored, err := s.tokenRepo.FindByToken(ctx, token)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, identity.ErrTokenInvalid
		}
		return nil, err
	}

	now := s.config.Now()
	if err := stored.Consume(now); err != nil {
		s.recordCode(ctx, verificationPurposeLink, telemetry.CodeResultInvalid)
		return nil, err
	}

	user, err := s.userRepo.FindByID(ctx, stored.UserID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, identity.ErrTokenInvalid
		}
		return nil, err
	}

	if err := s.tokenRepo.Save(ctx, stored); err != nil {
		return nil, err
	}
	user.MarkEmailVerified(now)
	if err := s.userRepo.Save(ctx, user); err != nil {
		return nil, err
	}
	publishUserEvents(ctx, s.eventPublisher, s.logger, user)
	s.recordCode(ctx, verificationPurposeLink, telemetry.CodeResultVerified)

	s.logger.Info("Email verified", zap.String("user_id", user.ID.String()))
	response := ToUserResponse(user)
	return &response, nil
}

// PurgeCodes deletes codes older than the retention window
func (s *VerificationService) PurgeCodes(ctx context.Context) (int64, error) {
	before := s.config.Now().Add(-s.config.CodeRetention)
	n, err := s.codeRepo.DeleteCreatedBefore(ctx, before)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.logger.Info("Purged verification codes", zap.Int64("count", n))
	}
	return n, nil
}
