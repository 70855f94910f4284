package identity

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	partnerapp "github.com/pozinox/backend/internal/application/partner"
	"github.com/pozinox/backend/internal/domain/identity"
	"github.com/pozinox/backend/internal/domain/partner"
	"github.com/pozinox/backend/internal/domain/shared"
	"github.com/pozinox/backend/internal/infrastructure/auth"
	"github.com/pozinox/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockUserRepository is a mock implementation of identity.UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *MockUserRepository) FindByUsername(ctx context.Context, username string) (*identity.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*identity.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *MockUserRepository) FindByAPITokenHash(ctx context.Context, hash string) (*identity.User, error) {
	args := m.Called(ctx, hash)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *MockUserRepository) FindAll(ctx context.Context, filter shared.Filter) ([]identity.User, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]identity.User), args.Error(1)
}

func (m *MockUserRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockUserRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	args := m.Called(ctx, username)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) Save(ctx context.Context, user *identity.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockCodeRepository is a mock implementation of identity.VerificationCodeRepository
type MockCodeRepository struct {
	mock.Mock
}

func (m *MockCodeRepository) Create(ctx context.Context, code *identity.VerificationCode) error {
	args := m.Called(ctx, code)
	return args.Error(0)
}

func (m *MockCodeRepository) FindLatestUnused(ctx context.Context, email string) (*identity.VerificationCode, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.VerificationCode), args.Error(1)
}

func (m *MockCodeRepository) InvalidateUnused(ctx context.Context, email string) (int64, error) {
	args := m.Called(ctx, email)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockCodeRepository) Save(ctx context.Context, code *identity.VerificationCode) error {
	args := m.Called(ctx, code)
	return args.Error(0)
}

func (m *MockCodeRepository) DeleteCreatedBefore(ctx context.Context, before time.Time) (int64, error) {
	args := m.Called(ctx, before)
	return args.Get(0).(int64), args.Error(1)
}

// MockTokenRepository is a mock implementation of identity.EmailVerificationTokenRepository
type MockTokenRepository struct {
	mock.Mock
}

func (m *MockTokenRepository) Create(ctx context.Context, token *identity.EmailVerificationToken) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

func (m *MockTokenRepository) FindByToken(ctx context.Context, token uuid.UUID) (*identity.EmailVerificationToken, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.EmailVerificationToken), args.Error(1)
}

func (m *MockTokenRepository) InvalidateForUser(ctx context.Context, userID uuid.UUID) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *MockTokenRepository) Save(ctx context.Context, token *identity.EmailVerificationToken) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

// MockActivityRepository is a mock implementation of identity.ActivityLogRepository
type MockActivityRepository struct {
	mock.Mock
}

func (m *MockActivityRepository) Create(ctx context.Context, entry *identity.ActivityLog) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockActivityRepository) FindAll(ctx context.Context, filter shared.Filter) ([]identity.ActivityLog, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]identity.ActivityLog), args.Error(1)
}

func (m *MockActivityRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

// MockNotificationRepository is a mock implementation of identity.NotificationRepository
type MockNotificationRepository struct {
	mock.Mock
}

func (m *MockNotificationRepository) Create(ctx context.Context, n *identity.Notification) error {
	args := m.Called(ctx, n)
	return args.Error(0)
}

func (m *MockNotificationRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.Notification, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.Notification), args.Error(1)
}

func (m *MockNotificationRepository) FindByUser(ctx context.Context, userID uuid.UUID, filter shared.Filter) ([]identity.Notification, error) {
	args := m.Called(ctx, userID, filter)
	return args.Get(0).([]identity.Notification), args.Error(1)
}

func (m *MockNotificationRepository) CountByUser(ctx context.Context, userID uuid.UUID, unreadOnly bool) (int64, error) {
	args := m.Called(ctx, userID, unreadOnly)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockNotificationRepository) Save(ctx context.Context, n *identity.Notification) error {
	args := m.Called(ctx, n)
	return args.Error(0)
}

// MockCustomerRepository implements the lookups of partner.CustomerRepository used here
type MockCustomerRepository struct {
	mock.Mock
	partner.CustomerRepository
}

func (m *MockCustomerRepository) FindByID(ctx context.Context, id uuid.UUID) (*partner.Customer, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*partner.Customer), args.Error(1)
}

// MockCustomerLinker is a mock implementation of CustomerLinker
type MockCustomerLinker struct {
	mock.Mock
}

func (m *MockCustomerLinker) EnsureForUser(ctx context.Context, input partnerapp.EnsureCustomerInput) (*partner.Customer, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*partner.Customer), args.Error(1)
}

// recordingMailer captures what would have been mailed
type recordingMailer struct {
	codes map[string]string
	links map[string]string
	fail  bool
}

func newRecordingMailer() *recordingMailer {
	return &recordingMailer{codes: map[string]string{}, links: map[string]string{}}
}

func (m *recordingMailer) SendVerificationCode(_ context.Context, to, code string) bool {
	m.codes[to] = code
	return !m.fail
}

func (m *recordingMailer) SendVerificationLink(_ context.Context, to, _ string, link string) bool {
	m.links[to] = link
	return !m.fail
}

type recordingPublisher struct {
	events []shared.DomainEvent
}

func (p *recordingPublisher) Publish(_ context.Context, events ...shared.DomainEvent) error {
	p.events = append(p.events, events...)
	return nil
}

func (p *recordingPublisher) types() []string {
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.EventType()
	}
	return out
}

func newTestJWTService() *auth.JWTService {
	return auth.NewJWTService(config.JWTConfig{
		Secret:                 "test-secret-key-that-is-long-enough",
		AccessTokenExpiration:  15 * time.Minute,
		RefreshTokenExpiration: 24 * time.Hour,
		Issuer:                 "pozinox-test",
		MaxRefreshCount:        5,
	})
}

// newTestUser builds an active, unverified customer with password "acero2024"
func newTestUser(t *testing.T, username, email string) *identity.User {
	t.Helper()
	u, err := identity.NewUser(username, email, "acero2024", "Ana", "Rojas")
	require.NoError(t, err)
	u.ClearDomainEvents()
	return u
}
