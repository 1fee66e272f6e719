package redis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	lockValue    = "LOCK"
	resultPrefix = "RES:"
)

// IdempotencyStore remembers the outcome of requests carrying an
// Idempotency-Key. A key holds either a short-lived lock while the first
// request runs or the stored response afterwards.
type IdempotencyStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewIdempotencyStore(rdb *redis.Client, ttl time.Duration) *IdempotencyStore {
	return &IdempotencyStore{rdb: rdb, ttl: ttl}
}

func (s *IdempotencyStore) AcquireLock(ctx context.Context, key string, lockTTL time.Duration) (bool, error) {
	const op = "redis.IdempotencyStore.AcquireLock"

	ok, err := s.rdb.SetNX(ctx, key, lockValue, lockTTL).Result()
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return ok, nil
}

func (s *IdempotencyStore) SaveResult(ctx context.Context, key string, payload []byte) error {
	const op = "redis.IdempotencyStore.SaveResult"

	if err := s.rdb.Set(ctx, key, resultPrefix+string(payload), s.ttl).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// GetResult returns the stored response for key. It reports false while the
// key is only locked or absent.
func (s *IdempotencyStore) GetResult(ctx context.Context, key string) ([]byte, bool, error) {
	const op = "redis.IdempotencyStore.GetResult"

	v, err := s.rdb.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("%s: %w", op, err)
	}

	payload, ok := strings.CutPrefix(v, resultPrefix)
	if !ok {
		return nil, false, nil
	}
	return []byte(payload), true, nil
}

func (s *IdempotencyStore) Release(ctx context.Context, key string) error {
	const op = "redis.IdempotencyStore.Release"

	if err := s.rdb.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
