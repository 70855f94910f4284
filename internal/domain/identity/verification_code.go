package identity

import (
	"crypto/rand"
	"crypto/subtle"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pozinox/backend/internal/domain/shared"
)

const (
	// VerificationCodeTTL is how long a code can be used after issue
	VerificationCodeTTL = 10 * time.Minute
	// MaxVerificationAttempts is how many attempts a code tolerates
	MaxVerificationAttempts = 5
	verificationCodeDigits  = 6
)

var (
	ErrCodeUsed      = shared.NewDomainError("CODE_USED", "Verification code has already been used")
	ErrCodeExhausted = shared.NewDomainError("CODE_ATTEMPTS_EXCEEDED", "Too many failed attempts, request a new code")
	ErrCodeExpired   = shared.NewDomainError("CODE_EXPIRED", "Verification code has expired")
	ErrCodeMismatch  = shared.NewDomainError("CODE_INVALID", "Verification code is incorrect")
)

// VerificationCode is a six-digit code mailed to prove ownership of an address
type VerificationCode struct {
	ID        uuid.UUID
	Email     string
	Code      string
	CreatedAt time.Time
	Attempts  int
	Used      bool
}

// NewVerificationCode issues a random code for email
func NewVerificationCode(email string, now time.Time) (*VerificationCode, error) {
	code, err := generateNumericCode(verificationCodeDigits)
	if err != nil {
		return nil, err
	}
	return &VerificationCode{
		ID:        uuid.New(),
		Email:     strings.ToLower(strings.TrimSpace(email)),
		Code:      code,
		CreatedAt: now,
	}, nil
}

// IsExpired reports whether the code is past its lifetime at now
func (c *VerificationCode) IsExpired(now time.Time) bool {
	return now.Sub(c.CreatedAt) > VerificationCodeTTL
}

// RemainingAttempts returns how many more attempts the code accepts
func (c *VerificationCode) RemainingAttempts() int {
	if r := MaxVerificationAttempts - c.Attempts; r > 0 {
		return r
	}
	return 0
}

// Verify checks a submitted code. Rejections are checked in order: used,
// attempts exhausted, expired. An expired check does not consume an attempt;
// every other check does, including the successful one.
func (c *VerificationCode) Verify(submitted string, now time.Time) error {
	if c.Used {
		return ErrCodeUsed
	}
	if c.Attempts >= MaxVerificationAttempts {
		return ErrCodeExhausted
	}
	if c.IsExpired(now) {
		return ErrCodeExpired
	}

	c.Attempts++
	if subtle.ConstantTimeCompare([]byte(strings.TrimSpace(submitted)), []byte(c.Code)) != 1 {
		return ErrCodeMismatch
	}
	c.Used = true
	return nil
}

func generateNumericCode(digits int) (string, error) {
	max := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(digits)), nil)
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%0*d", digits, n.Int64()), nil
}
