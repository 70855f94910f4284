package identity

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"regexp"
	"strings"
	"time"

	"github.com/pozinox/backend/internal/domain/shared"
	"golang.org/x/crypto/bcrypt"
)

// Password cost for bcrypt
const bcryptCost = 12

// APITokenTTL is how long an issued API token stays valid
const APITokenTTL = 30 * 24 * time.Hour

// UserType is the role a user plays in the store
type UserType string

const (
	UserTypeCustomer      UserType = "customer"
	UserTypeSeller        UserType = "seller"
	UserTypeAdministrator UserType = "administrator"
)

// IsValid reports whether the user type is known
func (t UserType) IsValid() bool {
	switch t {
	case UserTypeCustomer, UserTypeSeller, UserTypeAdministrator:
		return true
	}
	return false
}

// Profile holds the contact data attached to a user
type Profile struct {
	UserType UserType
	Phone    string
	Address  string
	Commune  string
	City     string
}

var (
	usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9_\-.@+]+$`)
	emailRegex    = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	letterRegex   = regexp.MustCompile(`[a-zA-Z]`)
	digitRegex    = regexp.MustCompile(`[0-9]`)
)

// User is an account that can sign in to the store
type User struct {
	shared.BaseAggregateRoot
	Username          string
	Email             string
	FirstName         string
	LastName          string
	PasswordHash      string
	IsSuperuser       bool
	Active            bool
	EmailVerified     bool
	EmailVerifiedAt   *time.Time
	LastLoginAt       *time.Time
	Profile           Profile
	APITokenHash      string
	APITokenCreatedAt *time.Time
}

// NewUser creates an active customer account with a hashed password
func NewUser(username, email, password, firstName, lastName string) (*User, error) {
	username = strings.TrimSpace(username)
	if err := validateUsername(username); err != nil {
		return nil, err
	}
	email = strings.ToLower(strings.TrimSpace(email))
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if err := validatePassword(password); err != nil {
		return nil, err
	}
	hash, err := hashPassword(password)
	if err != nil {
		return nil, err
	}

	user := &User{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Username:          username,
		Email:             email,
		FirstName:         strings.TrimSpace(firstName),
		LastName:          strings.TrimSpace(lastName),
		PasswordHash:      hash,
		Active:            true,
		Profile:           Profile{UserType: UserTypeCustomer},
	}
	user.AddDomainEvent(NewUserCreatedEvent(user))

	return user, nil
}

// FullName returns "first last", falling back to the username
func (u *User) FullName() string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		return u.Username
	}
	return name
}

// SetPassword replaces the password
func (u *User) SetPassword(password string) error {
	if err := validatePassword(password); err != nil {
		return err
	}
	hash, err := hashPassword(password)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	u.Touch()
	u.IncrementVersion()
	return nil
}

// VerifyPassword checks a plain password against the stored hash
func (u *User) VerifyPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil
}

// SetEmail changes the email. A changed address must be verified again.
func (u *User) SetEmail(email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if err := validateEmail(email); err != nil {
		return err
	}
	if email != u.Email {
		u.Email = email
		u.EmailVerified = false
		u.EmailVerifiedAt = nil
	}
	u.Touch()
	u.IncrementVersion()
	return nil
}

// UpdateNames changes first and last name
func (u *User) UpdateNames(firstName, lastName string) {
	u.FirstName = strings.TrimSpace(firstName)
	u.LastName = strings.TrimSpace(lastName)
	u.Touch()
	u.IncrementVersion()
}

// UpdateProfile replaces the contact profile, keeping the user type
func (u *User) UpdateProfile(phone, address, commune, city string) {
	u.Profile.Phone = strings.TrimSpace(phone)
	u.Profile.Address = strings.TrimSpace(address)
	u.Profile.Commune = strings.TrimSpace(commune)
	u.Profile.City = strings.TrimSpace(city)
	u.Touch()
	u.IncrementVersion()
}

// SetUserType changes the store role
func (u *User) SetUserType(t UserType) error {
	if !t.IsValid() {
		return shared.NewDomainError("INVALID_USER_TYPE", "Unknown user type")
	}
	u.Profile.UserType = t
	u.Touch()
	u.IncrementVersion()
	return nil
}

// SetSuperuser grants or removes admin panel access
func (u *User) SetSuperuser(superuser bool) {
	u.IsSuperuser = superuser
	u.Touch()
	u.IncrementVersion()
}

// SetActive enables or disables the account
func (u *User) SetActive(active bool) {
	u.Active = active
	u.Touch()
	u.IncrementVersion()
}

// MarkEmailVerified sets the persistent verified flag
func (u *User) MarkEmailVerified(at time.Time) {
	if u.EmailVerified {
		return
	}
	u.EmailVerified = true
	u.EmailVerifiedAt = &at
	u.Touch()
	u.IncrementVersion()
	u.AddDomainEvent(NewUserEmailVerifiedEvent(u))
}

// CanLogin reports why the user may not sign in, or nil.
// Superusers are exempt from the verification requirement.
func (u *User) CanLogin(requireVerifiedEmail bool) error {
	if !u.Active {
		return shared.NewDomainError("ACCOUNT_DISABLED", "Account is disabled")
	}
	if requireVerifiedEmail && !u.EmailVerified && !u.IsSuperuser {
		return shared.NewDomainError("EMAIL_NOT_VERIFIED", "Email address has not been verified")
	}
	return nil
}

// RecordLogin stores the login time
func (u *User) RecordLogin(at time.Time) {
	u.LastLoginAt = &at
	u.Touch()
}

// IssueAPIToken generates a new opaque token, replacing any previous one.
// Only the SHA-256 digest is kept; the plain token is returned once.
func (u *User) IssueAPIToken(now time.Time) (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	token := hex.EncodeToString(buf)
	u.APITokenHash = HashAPIToken(token)
	u.APITokenCreatedAt = &now
	u.Touch()
	return token, nil
}

// ValidateAPIToken checks the token against the stored digest and its age
func (u *User) ValidateAPIToken(token string, now time.Time) bool {
	if u.APITokenHash == "" || u.APITokenCreatedAt == nil || token == "" {
		return false
	}
	if subtle.ConstantTimeCompare([]byte(u.APITokenHash), []byte(HashAPIToken(token))) != 1 {
		return false
	}
	return now.Sub(*u.APITokenCreatedAt) <= APITokenTTL
}

// RevokeAPIToken clears the stored token
func (u *User) RevokeAPIToken() {
	u.APITokenHash = ""
	u.APITokenCreatedAt = nil
	u.Touch()
}

// APITokenExpiresAt returns when the current token stops being valid
func (u *User) APITokenExpiresAt() *time.Time {
	if u.APITokenCreatedAt == nil {
		return nil
	}
	t := u.APITokenCreatedAt.Add(APITokenTTL)
	return &t
}

// MarkDeleted records the deletion event before the repository removes the row
func (u *User) MarkDeleted() {
	u.AddDomainEvent(NewUserDeletedEvent(u))
}

// HashAPIToken returns the hex SHA-256 digest used to look up API tokens
func HashAPIToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

func validateUsername(username string) error {
	if username == "" {
		return shared.NewDomainError("INVALID_USERNAME", "Username cannot be empty")
	}
	if len(username) < 3 {
		return shared.NewDomainError("INVALID_USERNAME", "Username must be at least 3 characters")
	}
	if len(username) > 150 {
		return shared.NewDomainError("INVALID_USERNAME", "Username cannot exceed 150 characters")
	}
	if !usernameRegex.MatchString(username) {
		return shared.NewDomainError("INVALID_USERNAME", "Username can only contain letters, numbers and @.+-_")
	}
	return nil
}

func validatePassword(password string) error {
	if len(password) < 8 {
		return shared.NewDomainError("INVALID_PASSWORD", "Password must be at least 8 characters")
	}
	if len(password) > 72 {
		return shared.NewDomainError("INVALID_PASSWORD", "Password cannot exceed 72 characters")
	}
	if !letterRegex.MatchString(password) || !digitRegex.MatchString(password) {
		return shared.NewDomainError("INVALID_PASSWORD", "Password must contain at least one letter and one number")
	}
	return nil
}

func validateEmail(email string) error {
	if len(email) > 254 {
		return shared.NewDomainError("INVALID_EMAIL", "Email cannot exceed 254 characters")
	}
	if !emailRegex.MatchString(email) {
		return shared.NewDomainError("INVALID_EMAIL", "Invalid email format")
	}
	return nil
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
