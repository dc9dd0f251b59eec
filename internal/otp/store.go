package otp

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	keyPrefix        = "otp:"
	verifiedSentinel = "verified"
)

// Store keeps pending email-verification codes in Redis with a TTL, so a
// code is scoped to one registration attempt and expires on its own instead
// of living in a process-wide map.
type Store struct {
	rdb         *redis.Client
	codeTTL     time.Duration
	verifiedTTL time.Duration
}

// NewStore creates a Redis-backed OTP store
func NewStore(rdb *redis.Client, codeTTL, verifiedTTL time.Duration) *Store {
	return &Store{
		rdb:         rdb,
		codeTTL:     codeTTL,
		verifiedTTL: verifiedTTL,
	}
}

func key(email string) string {
	return keyPrefix + email
}

// SetCode stores a fresh code for the email, replacing any previous one.
func (s *Store) SetCode(ctx context.Context, email, code string) error {
	if err := s.rdb.Set(ctx, key(email), code, s.codeTTL).Err(); err != nil {
		return fmt.Errorf("failed to store otp code: %w", err)
	}
	return nil
}

// Verify compares the submitted code against the stored one. On a match the
// email is marked verified for the registration window.
func (s *Store) Verify(ctx context.Context, email, code string) (bool, error) {
	stored, err := s.rdb.Get(ctx, key(email)).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read otp code: %w", err)
	}
	if stored != code || code == verifiedSentinel {
		return false, nil
	}

	if err := s.rdb.Set(ctx, key(email), verifiedSentinel, s.verifiedTTL).Err(); err != nil {
		return false, fmt.Errorf("failed to mark email verified: %w", err)
	}
	return true, nil
}

// IsVerified reports whether the email passed verification and the window
// has not expired.
func (s *Store) IsVerified(ctx context.Context, email string) (bool, error) {
	stored, err := s.rdb.Get(ctx, key(email)).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read otp state: %w", err)
	}
	return stored == verifiedSentinel, nil
}

// Clear removes any stored state for the email.
func (s *Store) Clear(ctx context.Context, email string) error {
	if err := s.rdb.Del(ctx, key(email)).Err(); err != nil {
		return fmt.Errorf("failed to clear otp state: %w", err)
	}
	return nil
}
