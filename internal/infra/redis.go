package infra

import (
	"context"
	"errors"
	"time"

	"github.com/bsm/redislock"
	"github.com/redis/go-redis/v9"
)

// NewRedis creates and validates a go-redis client connection.
func NewRedis(redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}

	rdb := redis.NewClient(opts)

	// Validate connectivity at startup
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		return nil, err
	}

	return rdb, nil
}

// ErrLockOcupado is returned when the lock is still held after every retry.
var ErrLockOcupado = errors.New("recurso ocupado, intente nuevamente")

// RedisLocker hands out short-lived distributed locks (bsm/redislock).
type RedisLocker struct {
	locker *redislock.Client
	ttl    time.Duration
}

func NewRedisLocker(rdb *redis.Client, ttl time.Duration) *RedisLocker {
	return &RedisLocker{locker: redislock.New(rdb), ttl: ttl}
}

// Lock blocks up to the lock TTL waiting for key. The returned func releases it.
func (l *RedisLocker) Lock(ctx context.Context, key string) (func(), error) {
	lock, err := l.locker.Obtain(ctx, "lock:"+key, l.ttl, &redislock.Options{
		RetryStrategy: redislock.LimitRetry(redislock.LinearBackoff(50*time.Millisecond), int(l.ttl/(50*time.Millisecond))),
	})
	if errors.Is(err, redislock.ErrNotObtained) {
		return nil, ErrLockOcupado
	}
	if err != nil {
		return nil, err
	}
	return func() {
		// Release on a fresh context: the request may already be cancelled.
		_ = lock.Release(context.Background())
	}, nil
}
