package policy

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// redisClient is the subset of redis.UniversalClient the repository uses.
type redisClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
}

// RedisRepository stores each document as a plain string value under prefix+userID.
type RedisRepository struct {
	client redisClient
	prefix string
}

// NewRedisRepository creates a repository over any go-redis client.
func NewRedisRepository(client redisClient, prefix string) *RedisRepository {
	return &RedisRepository{client: client, prefix: prefix}
}

func (r *RedisRepository) Load(ctx context.Context, userID string) ([]byte, error) {
	data, err := r.client.Get(ctx, r.prefix+userID).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}

func (r *RedisRepository) Save(ctx context.Context, userID string, data []byte) error {
	return r.client.Set(ctx, r.prefix+userID, data, 0).Err()
}
