package identity

import (
	"time"

	"github.com/google/uuid"
	"github.com/pozinox/backend/internal/domain/identity"
)

// ==================== Auth ====================

// RegisterRequest creates a customer account. EmailProof is the token
// returned by the verification code flow and is required when email
// verification is enabled.
type RegisterRequest struct {
	Username   string `json:"username" binding:"required,min=3,max=150"`
	Email      string `json:"email" binding:"required,email,max=254"`
	Password   string `json:"password" binding:"required,min=8,max=72"`
	FirstName  string `json:"first_name" binding:"required,max=150"`
	LastName   string `json:"last_name" binding:"max=150"`
	TaxID      string `json:"tax_id" binding:"max=12"`
	Phone      string `json:"phone" binding:"max=20"`
	Address    string `json:"address" binding:"max=255"`
	Commune    string `json:"commune" binding:"max=100"`
	City       string `json:"city" binding:"max=100"`
	EmailProof string `json:"email_proof"`
}

// LoginRequest authenticates with a username or an email address
type LoginRequest struct {
	Login    string `json:"login" binding:"required,max=254"`
	Password string `json:"password" binding:"required,max=72"`
	IP       string `json:"-"`
}

// RefreshRequest rotates a refresh token
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// LogoutInput identifies the session being closed
type LogoutInput struct {
	UserID   uuid.UUID
	TokenJTI string
	// TokenTTL is the remaining lifetime of the access token
	TokenTTL time.Duration
	IP       string
}

// UpdateProfileRequest edits the signed-in user's profile
type UpdateProfileRequest struct {
	FirstName *string `json:"first_name" binding:"omitempty,max=150"`
	LastName  *string `json:"last_name" binding:"omitempty,max=150"`
	Email     *string `json:"email" binding:"omitempty,email,max=254"`
	Phone     *string `json:"phone" binding:"omitempty,max=20"`
	Address   *string `json:"address" binding:"omitempty,max=255"`
	Commune   *string `json:"commune" binding:"omitempty,max=100"`
	City      *string `json:"city" binding:"omitempty,max=100"`
}

// ChangePasswordRequest replaces the signed-in user's password
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required,min=8,max=72"`
}

// AuthResult is returned by login, registration and refresh
type AuthResult struct {
	AccessToken           string       `json:"access_token"`
	RefreshToken          string       `json:"refresh_token"`
	AccessTokenExpiresAt  time.Time    `json:"access_token_expires_at"`
	RefreshTokenExpiresAt time.Time    `json:"refresh_token_expires_at"`
	TokenType             string       `json:"token_type"`
	User                  UserResponse `json:"user"`
}

// ==================== Verification ====================

// SendCodeRequest asks for a verification code
type SendCodeRequest struct {
	Email string `json:"email" binding:"required,email,max=254"`
}

// VerifyCodeRequest submits a verification code
type VerifyCodeRequest struct {
	Email string `json:"email" binding:"required,email,max=254"`
	Code  string `json:"code" binding:"required,len=6,numeric"`
}

// SendCodeResult reports whether the code mail went out
type SendCodeResult struct {
	Email     string    `json:"email"`
	Sent      bool      `json:"sent"`
	ExpiresAt time.Time `json:"expires_at"`
}

// VerifyCodeResult carries the email proof presented at registration
type VerifyCodeResult struct {
	Email      string    `json:"email"`
	EmailProof string    `json:"email_proof"`
	ExpiresAt  time.Time `json:"expires_at"`
}

// VerificationLinkResult reports whether the link mail went out
type VerificationLinkResult struct {
	Sent            bool `json:"sent"`
	AlreadyVerified bool `json:"already_verified"`
}

// ==================== API tokens ====================

// APITokenResponse returns a freshly generated token. The plain token is
// shown only once.
type APITokenResponse struct {
	Token     string    `json:"token"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// ValidateAPITokenRequest checks a token on behalf of an integration
type ValidateAPITokenRequest struct {
	Token string `json:"token" binding:"required"`
}

// APITokenValidation is the result of validating a token
type APITokenValidation struct {
	Valid     bool       `json:"valid"`
	UserID    *uuid.UUID `json:"user_id,omitempty"`
	Username  string     `json:"username,omitempty"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

// ==================== Users ====================

// CreateUserRequest creates a user from the admin panel
type CreateUserRequest struct {
	Username    string `json:"username" binding:"required,min=3,max=150"`
	Email       string `json:"email" binding:"required,email,max=254"`
	Password    string `json:"password" binding:"required,min=8,max=72"`
	FirstName   string `json:"first_name" binding:"max=150"`
	LastName    string `json:"last_name" binding:"max=150"`
	IsSuperuser bool   `json:"is_superuser"`
	UserType    string `json:"user_type" binding:"omitempty,oneof=customer seller administrator"`
	Phone       string `json:"phone" binding:"max=20"`
	Address     string `json:"address" binding:"max=255"`
	Commune     string `json:"commune" binding:"max=100"`
	City        string `json:"city" binding:"max=100"`
	// SendVerification mails a verification link to the new account
	SendVerification bool `json:"send_verification"`
}

// UpdateUserRequest edits a user from the admin panel
type UpdateUserRequest struct {
	Email         *string `json:"email" binding:"omitempty,email,max=254"`
	FirstName     *string `json:"first_name" binding:"omitempty,max=150"`
	LastName      *string `json:"last_name" binding:"omitempty,max=150"`
	Password      *string `json:"password" binding:"omitempty,min=8,max=72"`
	IsSuperuser   *bool   `json:"is_superuser"`
	Active        *bool   `json:"active"`
	EmailVerified *bool   `json:"email_verified"`
	UserType      *string `json:"user_type" binding:"omitempty,oneof=customer seller administrator"`
	Phone         *string `json:"phone" binding:"omitempty,max=20"`
	Address       *string `json:"address" binding:"omitempty,max=255"`
	Commune       *string `json:"commune" binding:"omitempty,max=100"`
	City          *string `json:"city" binding:"omitempty,max=100"`
}

// UserListFilter represents filter options for listing users
type UserListFilter struct {
	Search      string `form:"search"`
	IsSuperuser *bool  `form:"is_superuser"`
	Active      *bool  `form:"active"`
	UserType    string `form:"user_type" binding:"omitempty,oneof=customer seller administrator"`
	Page        int    `form:"page" binding:"omitempty,min=1"`
	PageSize    int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy     string `form:"order_by"`
	OrderDir    string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// UserResponse represents a user in API responses
type UserResponse struct {
	ID              uuid.UUID  `json:"id"`
	Username        string     `json:"username"`
	Email           string     `json:"email"`
	FirstName       string     `json:"first_name"`
	LastName        string     `json:"last_name"`
	FullName        string     `json:"full_name"`
	IsSuperuser     bool       `json:"is_superuser"`
	Active          bool       `json:"active"`
	EmailVerified   bool       `json:"email_verified"`
	EmailVerifiedAt *time.Time `json:"email_verified_at,omitempty"`
	UserType        string     `json:"user_type"`
	Phone           string     `json:"phone,omitempty"`
	Address         string     `json:"address,omitempty"`
	Commune         string     `json:"commune,omitempty"`
	City            string     `json:"city,omitempty"`
	HasAPIToken     bool       `json:"has_api_token"`
	LastLoginAt     *time.Time `json:"last_login_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// ToUserResponse converts a domain User
func ToUserResponse(u *identity.User) UserResponse {
	return UserResponse{
		ID:              u.ID,
		Username:        u.Username,
		Email:           u.Email,
		FirstName:       u.FirstName,
		LastName:        u.LastName,
		FullName:        u.FullName(),
		IsSuperuser:     u.IsSuperuser,
		Active:          u.Active,
		EmailVerified:   u.EmailVerified,
		EmailVerifiedAt: u.EmailVerifiedAt,
		UserType:        string(u.Profile.UserType),
		Phone:           u.Profile.Phone,
		Address:         u.Profile.Address,
		Commune:         u.Profile.Commune,
		City:            u.Profile.City,
		HasAPIToken:     u.APITokenHash != "",
		LastLoginAt:     u.LastLoginAt,
		CreatedAt:       u.CreatedAt,
		UpdatedAt:       u.UpdatedAt,
	}
}

// ==================== Activity & notifications ====================

// ActivityListFilter represents filter options for the activity log
type ActivityListFilter struct {
	UserID   *uuid.UUID `form:"-"`
	Type     string     `form:"type" binding:"omitempty,oneof=login logout register create update delete status_change payment other"`
	Search   string     `form:"search"`
	Page     int        `form:"page" binding:"omitempty,min=1"`
	PageSize int        `form:"page_size" binding:"omitempty,min=1,max=200"`
}

// ActivityLogResponse represents an activity log entry
type ActivityLogResponse struct {
	ID          uuid.UUID  `json:"id"`
	UserID      *uuid.UUID `json:"user_id,omitempty"`
	Type        string     `json:"type"`
	Description string     `json:"description"`
	IPAddress   string     `json:"ip_address,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// ToActivityLogResponse converts a domain ActivityLog
func ToActivityLogResponse(a *identity.ActivityLog) ActivityLogResponse {
	return ActivityLogResponse{
		ID:          a.ID,
		UserID:      a.UserID,
		Type:        string(a.Type),
		Description: a.Description,
		IPAddress:   a.IPAddress,
		CreatedAt:   a.CreatedAt,
	}
}

// NotificationListFilter represents filter options for a user's notifications
type NotificationListFilter struct {
	Unread   bool `form:"unread"`
	Page     int  `form:"page" binding:"omitempty,min=1"`
	PageSize int  `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// NotificationResponse represents a notification
type NotificationResponse struct {
	ID        uuid.UUID  `json:"id"`
	Type      string     `json:"type"`
	Title     string     `json:"title"`
	Message   string     `json:"message"`
	Read      bool       `json:"read"`
	ReadAt    *time.Time `json:"read_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// ToNotificationResponse converts a domain Notification
func ToNotificationResponse(n *identity.Notification) NotificationResponse {
	return NotificationResponse{
		ID:        n.ID,
		Type:      string(n.Type),
		Title:     n.Title,
		Message:   n.Message,
		Read:      n.Read,
		ReadAt:    n.ReadAt,
		CreatedAt: n.CreatedAt,
	}
}
