package storage

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"

	"github.com/healthtrack/symptom-agent/internal/domain"
)

// redisStore keeps the blob under StateKey with no expiry; the app
// state survives restarts for as long as the Redis instance does.
type redisStore struct {
	client *redis.Client
}

func newRedisStore(client *redis.Client) *redisStore {
	return &redisStore{client: client}
}

func (s *redisStore) Load(ctx context.Context) ([]byte, error) {
	val, err := s.client.Get(ctx, StateKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, domain.ErrStateNotFound
	}
	if err != nil {
		return nil, err
	}
	return val, nil
}

func (s *redisStore) Save(ctx context.Context, data []byte) error {
	return s.client.Set(ctx, StateKey, data, 0).Err()
}

func (s *redisStore) Close() error {
	return s.client.Close()
}
