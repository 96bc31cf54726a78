package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const slotKeyPrefix = "relay:" // relay:{slot}

// RedisStore keeps each slot as a JSON document under its own key, without TTL.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (r *RedisStore) Load(ctx context.Context, slot string) (*Snapshot, error) {
	data, err := r.client.Get(ctx, r.slotKey(slot)).Bytes()
	if err == redis.Nil {
		return nil, ErrNoRecord
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get %s: %w", slot, err)
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("failed to unmarshal %s: %w", slot, err)
	}
	return &snap, nil
}

func (r *RedisStore) Save(ctx context.Context, slot string, snap Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", slot, err)
	}
	if err := r.client.Set(ctx, r.slotKey(slot), data, 0).Err(); err != nil {
		return fmt.Errorf("failed to save %s: %w", slot, err)
	}
	return nil
}

func (r *RedisStore) slotKey(slot string) string {
	return slotKeyPrefix + slot
}
