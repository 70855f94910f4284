package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// RevocationStore records JWTs that must be refused before they expire.
// Single tokens are revoked on logout; every session of a customer is
// revoked when the password changes.
type RevocationStore interface {
	// RevokeToken refuses the token with the given JTI for ttl, which should
	// be the token's remaining lifetime
	RevokeToken(ctx context.Context, jti string, ttl time.Duration) error
	IsTokenRevoked(ctx context.Context, jti string) (bool, error)

	// RevokeUserSessions refuses every token issued to userID up to now.
	// ttl should cover the longest token lifetime.
	RevokeUserSessions(ctx context.Context, userID string, ttl time.Duration) error
	// IsSessionRevoked reports whether a token issued at issuedAt predates
	// the user's last revocation. JWT issue times have second precision, so
	// tokens issued within the revocation second stay valid.
	IsSessionRevoked(ctx context.Context, userID string, issuedAt time.Time) (bool, error)
}

const revocationKeyPrefix = "pozinox:revoked:"

// RedisRevocationStore keeps revocations in Redis so every API instance
// sees them
type RedisRevocationStore struct {
	client *redis.Client
	now    func() time.Time
}

// NewRedisRevocationStore creates a revocation store on a shared Redis client
func NewRedisRevocationStore(client *redis.Client) *RedisRevocationStore {
	return &RedisRevocationStore{client: client, now: time.Now}
}

func tokenKey(jti string) string      { return revocationKeyPrefix + "token:" + jti }
func sessionKey(userID string) string { return revocationKeyPrefix + "sessions:" + userID }

func (s *RedisRevocationStore) RevokeToken(ctx context.Context, jti string, ttl time.Duration) error {
	if err := s.client.Set(ctx, tokenKey(jti), 1, ttl).Err(); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}

func (s *RedisRevocationStore) IsTokenRevoked(ctx context.Context, jti string) (bool, error) {
	n, err := s.client.Exists(ctx, tokenKey(jti)).Result()
	if err != nil {
		return false, fmt.Errorf("check token revocation: %w", err)
	}
	return n > 0, nil
}

func (s *RedisRevocationStore) RevokeUserSessions(ctx context.Context, userID string, ttl time.Duration) error {
	if err := s.client.Set(ctx, sessionKey(userID), s.now().Unix(), ttl).Err(); err != nil {
		return fmt.Errorf("revoke sessions of %s: %w", userID, err)
	}
	return nil
}

func (s *RedisRevocationStore) IsSessionRevoked(ctx context.Context, userID string, issuedAt time.Time) (bool, error) {
	revokedAt, err := s.client.Get(ctx, sessionKey(userID)).Int64()
	switch {
	case errors.Is(err, redis.Nil):
		return false, nil
	case err != nil:
		return false, fmt.Errorf("check session revocation of %s: %w", userID, err)
	}
	return issuedAt.Unix() < revokedAt, nil
}

// MemoryRevocationStore is used when Redis is disabled. Revocations are
// lost on restart and are not shared between processes.
type MemoryRevocationStore struct {
	mu       sync.Mutex
	now      func() time.Time
	tokens   map[string]time.Time // jti -> expiry
	sessions map[string]memoryRevocation
}

type memoryRevocation struct {
	at      time.Time
	expires time.Time
}

// NewMemoryRevocationStore creates an empty in-process revocation store
func NewMemoryRevocationStore() *MemoryRevocationStore {
	return &MemoryRevocationStore{
		now:      time.Now,
		tokens:   make(map[string]time.Time),
		sessions: make(map[string]memoryRevocation),
	}
}

func (s *MemoryRevocationStore) RevokeToken(_ context.Context, jti string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	s.prune(now)
	s.tokens[jti] = now.Add(ttl)
	return nil
}

func (s *MemoryRevocationStore) IsTokenRevoked(_ context.Context, jti string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	expires, ok := s.tokens[jti]
	return ok && s.now().Before(expires), nil
}

func (s *MemoryRevocationStore) RevokeUserSessions(_ context.Context, userID string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	s.prune(now)
	s.sessions[userID] = memoryRevocation{at: now, expires: now.Add(ttl)}
	return nil
}

func (s *MemoryRevocationStore) IsSessionRevoked(_ context.Context, userID string, issuedAt time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.sessions[userID]
	if !ok || !s.now().Before(r.expires) {
		return false, nil
	}
	return issuedAt.Unix() < r.at.Unix(), nil
}

// prune drops expired entries; callers hold mu
func (s *MemoryRevocationStore) prune(now time.Time) {
	for jti, expires := range s.tokens {
		if !now.Before(expires) {
			delete(s.tokens, jti)
		}
	}
	for userID, r := range s.sessions {
		if !now.Before(r.expires) {
			delete(s.sessions, userID)
		}
	}
}

var (
	_ RevocationStore = (*RedisRevocationStore)(nil)
	_ RevocationStore = (*MemoryRevocationStore)(nil)
)
