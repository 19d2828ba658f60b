package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	ErrOTPNotFound = errors.New("OTP not found")
	ErrOTPExpired  = errors.New("OTP expired")
	ErrOTPMismatch = errors.New("invalid OTP")
)

// OTPRecord is a pending email-verification code. Verified flips once the
// user confirms the code; signup requires a verified record.
type OTPRecord struct {
	Code      string    `json:"code"`
	ExpiresAt time.Time `json:"expires_at"`
	Verified  bool      `json:"verified"`
}

// OTPStore holds pending signup verification codes keyed by email.
// Expiry is the store's responsibility, not the caller's.
type OTPStore interface {
	Set(ctx context.Context, email, code string) error
	Verify(ctx context.Context, email, code string) error
	IsVerified(ctx context.Context, email string) (bool, error)
	Delete(ctx context.Context, email string) error
}

// RedisOTPStore keeps OTP records in Redis with a TTL, so codes expire
// even across process restarts.
type RedisOTPStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisOTPStore(rdb *redis.Client, ttl time.Duration) *RedisOTPStore {
	return &RedisOTPStore{rdb: rdb, ttl: ttl}
}

func otpKey(email string) string {
	return "otp:signup:" + email
}

func (s *RedisOTPStore) Set(ctx context.Context, email, code string) error {
	record := OTPRecord{
		Code:      code,
		ExpiresAt: time.Now().Add(s.ttl),
		Verified:  false,
	}

	payload, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal OTP record: %v", err)
	}

	return s.rdb.Set(ctx, otpKey(email), payload, s.ttl).Err()
}

func (s *RedisOTPStore) get(ctx context.Context, email string) (*OTPRecord, error) {
	payload, err := s.rdb.Get(ctx, otpKey(email)).Bytes()
	if err == redis.Nil {
		return nil, ErrOTPNotFound
	}
	if err != nil {
		return nil, err
	}

	var record OTPRecord
	if err := json.Unmarshal(payload, &record); err != nil {
		return nil, fmt.Errorf("failed to unmarshal OTP record: %v", err)
	}
	return &record, nil
}

// Verify checks the submitted code and marks the record verified. The
// record keeps its remaining TTL so a verified signup window still closes.
func (s *RedisOTPStore) Verify(ctx context.Context, email, code string) error {
	record, err := s.get(ctx, email)
	if err != nil {
		return err
	}

	if time.Now().After(record.ExpiresAt) {
		s.rdb.Del(ctx, otpKey(email))
		return ErrOTPExpired
	}

	if record.Code != code {
		return ErrOTPMismatch
	}

	record.Verified = true
	payload, err := json.Marshal(record)
	if err != nil {
		return err
	}

	ttl := time.Until(record.ExpiresAt)
	if ttl <= 0 {
		return ErrOTPExpired
	}
	return s.rdb.Set(ctx, otpKey(email), payload, ttl).Err()
}

func (s *RedisOTPStore) IsVerified(ctx context.Context, email string) (bool, error) {
	record, err := s.get(ctx, email)
	if err != nil {
		return false, err
	}
	return record.Verified, nil
}

func (s *RedisOTPStore) Delete(ctx context.Context, email string) error {
	return s.rdb.Del(ctx, otpKey(email)).Err()
}
