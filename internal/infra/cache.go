package infra

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const revokedPrefix = "auth:revoked:"

// RedisTokenStore keeps the ids of logged-out tokens until they expire.
type RedisTokenStore struct{ rdb *redis.Client }

func NewRedisTokenStore(rdb *redis.Client) *RedisTokenStore { return &RedisTokenStore{rdb: rdb} }

func (s *RedisTokenStore) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	return s.rdb.Set(ctx, revokedPrefix+jti, 1, ttl).Err()
}

func (s *RedisTokenStore) IsRevoked(ctx context.Context, jti string) (bool, error) {
	n, err := s.rdb.Exists(ctx, revokedPrefix+jti).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// RedisCache stores JSON values with a TTL.
type RedisCache struct{ rdb *redis.Client }

func NewRedisCache(rdb *redis.Client) *RedisCache { return &RedisCache{rdb: rdb} }

// Get decodes key into dest. It reports false on a miss.
func (c *RedisCache) Get(ctx context.Context, key string, dest any) (bool, error) {
	raw, err := c.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, json.Unmarshal(raw, dest)
}

func (c *RedisCache) Set(ctx context.Context, key string, v any, ttl time.Duration) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, key, raw, ttl).Err()
}

func (c *RedisCache) Delete(ctx context.Context, keys ...string) error {
	return c.rdb.Del(ctx, keys...).Err()
}
