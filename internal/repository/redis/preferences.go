package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/kirinyoku/cinebook/internal/flow"
)

// PreferenceStore keeps small per-user settings such as the last selected
// city. Entries never expire; writes are last-write-wins.
type PreferenceStore struct {
	rdb *redis.Client
}

func NewPreferenceStore(rdb *redis.Client) *PreferenceStore {
	return &PreferenceStore{rdb: rdb}
}

// For scopes the store to one owner.
func (s *PreferenceStore) For(owner string) flow.Preferences {
	return ownerPrefs{rdb: s.rdb, owner: owner}
}

type ownerPrefs struct {
	rdb   *redis.Client
	owner string
}

func (p ownerPrefs) Get(ctx context.Context, key string) (string, bool, error) {
	const op = "redis.PreferenceStore.Get"

	v, err := p.rdb.Get(ctx, KeyPreference(p.owner, key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("%s: %w", op, err)
	}

	return v, true, nil
}

func (p ownerPrefs) Set(ctx context.Context, key, value string) error {
	const op = "redis.PreferenceStore.Set"

	if err := p.rdb.Set(ctx, KeyPreference(p.owner, key), value, 0).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}
