package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const otpKeyPrefix = "otp:code:"

var _ OTPStore = (*RedisOTPStore)(nil)

// RedisOTPStore keeps OTP records in Redis, relying on key TTL for expiry so
// stale codes vanish without a cleanup job
type RedisOTPStore struct {
	client *redis.Client
}

func NewRedisOTPStore(client *redis.Client) *RedisOTPStore {
	return &RedisOTPStore{client: client}
}

func (s *RedisOTPStore) Save(ctx context.Context, rec *OTPRecord, ttl time.Duration) error {
	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal otp record: %w", err)
	}

	if err := s.client.Set(ctx, otpKeyPrefix+rec.SubjectID, payload, ttl).Err(); err != nil {
		return fmt.Errorf("failed to store otp record: %w", err)
	}
	return nil
}

func (s *RedisOTPStore) Find(ctx context.Context, subjectID string) (*OTPRecord, error) {
	payload, err := s.client.Get(ctx, otpKeyPrefix+subjectID).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch otp record: %w", err)
	}

	var rec OTPRecord
	if err := json.Unmarshal(payload, &rec); err != nil {
		return nil, fmt.Errorf("failed to unmarshal otp record: %w", err)
	}
	return &rec, nil
}

func (s *RedisOTPStore) Delete(ctx context.Context, subjectID string) error {
	if err := s.client.Del(ctx, otpKeyPrefix+subjectID).Err(); err != nil {
		return fmt.Errorf("failed to delete otp record: %w", err)
	}
	return nil
}
