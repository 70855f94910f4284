package identity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var issuedAt = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func newTestCode(t *testing.T) *VerificationCode {
	t.Helper()
	code, err := NewVerificationCode("Ana@Example.cl", issuedAt)
	require.NoError(t, err)
	return code
}

func TestNewVerificationCode(t *testing.T) {
	code := newTestCode(t)
	assert.Equal(t, "ana@example.cl", code.Email)
	assert.Len(t, code.Code, 6)
	assert.Regexp(t, `^\d{6}$`, code.Code)
	assert.Equal(t, MaxVerificationAttempts, code.RemainingAttempts())
}

func TestVerificationCode_Verify(t *testing.T) {
	t.Run("correct code succeeds once", func(t *testing.T) {
		code := newTestCode(t)
		require.NoError(t, code.Verify(code.Code, issuedAt.Add(time.Minute)))
		assert.True(t, code.Used)

		err := code.Verify(code.Code, issuedAt.Add(2*time.Minute))
		assert.ErrorIs(t, err, ErrCodeUsed)
	})

	t.Run("sixth attempt rejected after five failures even if correct", func(t *testing.T) {
		code := newTestCode(t)
		for i := 0; i < MaxVerificationAttempts; i++ {
			assert.ErrorIs(t, code.Verify("not-it", issuedAt.Add(time.Minute)), ErrCodeMismatch)
		}
		assert.Equal(t, 0, code.RemainingAttempts())

		err := code.Verify(code.Code, issuedAt.Add(time.Minute))
		assert.ErrorIs(t, err, ErrCodeExhausted)
		assert.False(t, code.Used)
	})

	t.Run("fifth attempt may still succeed", func(t *testing.T) {
		code := newTestCode(t)
		for i := 0; i < MaxVerificationAttempts-1; i++ {
			_ = code.Verify("000000x", issuedAt)
		}
		require.NoError(t, code.Verify(code.Code, issuedAt))
	})

	t.Run("expired code rejected even if correct", func(t *testing.T) {
		code := newTestCode(t)
		err := code.Verify(code.Code, issuedAt.Add(10*time.Minute+time.Second))
		assert.ErrorIs(t, err, ErrCodeExpired)
		assert.Equal(t, 0, code.Attempts, "expiry does not consume an attempt")
	})

	t.Run("valid at exactly ten minutes", func(t *testing.T) {
		code := newTestCode(t)
		require.NoError(t, code.Verify(code.Code, issuedAt.Add(10*time.Minute)))
	})

	t.Run("exhaustion checked before expiry", func(t *testing.T) {
		code := newTestCode(t)
		code.Attempts = MaxVerificationAttempts
		assert.ErrorIs(t, code.Verify(code.Code, issuedAt.Add(time.Hour)), ErrCodeExhausted)
	})
}

func TestEmailVerificationToken(t *testing.T) {
	now := issuedAt
	token := NewEmailVerificationToken(newTestUserID(), now)

	assert.True(t, token.IsValid(now))
	assert.True(t, token.IsValid(now.Add(24*time.Hour-time.Nanosecond)))
	assert.False(t, token.IsValid(now.Add(24*time.Hour)))

	assert.ErrorIs(t, token.Consume(now.Add(25*time.Hour)), ErrTokenInvalid)

	require.NoError(t, token.Consume(now.Add(time.Hour)))
	assert.True(t, token.Used)
	require.NotNil(t, token.UsedAt)
	assert.False(t, token.IsValid(now.Add(time.Hour)))
	assert.ErrorIs(t, token.Consume(now.Add(2*time.Hour)), ErrTokenInvalid)
}
