package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Hsnnder/real-estatemvp/internal/models"
)

const snapshotKeyPrefix = "listings:snapshot:"

// RedisStore shares snapshots between processes through Redis, so an
// invalidation in one process is seen by all of them.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore creates a store backed by client.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func snapshotKey(view models.View) string {
	return snapshotKeyPrefix + string(view)
}

func (s *RedisStore) Load(ctx context.Context, view models.View) (*Snapshot, error) {
	data, err := s.client.Get(ctx, snapshotKey(view)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get snapshot %s: %w", view, err)
	}
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot %s: %w", view, err)
	}
	return &snap, nil
}

func (s *RedisStore) Save(ctx context.Context, view models.View, snap Snapshot, ttl time.Duration) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot %s: %w", view, err)
	}
	if err := s.client.Set(ctx, snapshotKey(view), data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to store snapshot %s: %w", view, err)
	}
	return nil
}

func (s *RedisStore) Clear(ctx context.Context) error {
	if err := s.client.Del(ctx, snapshotKey(models.ViewAll), snapshotKey(models.ViewActive)).Err(); err != nil {
		return fmt.Errorf("failed to clear snapshots: %w", err)
	}
	return nil
}
