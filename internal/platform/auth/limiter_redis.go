package auth

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisLimiter shares login-attempt counters across instances. Failure
// counts expire with the block window so stale counters never
// accumulate.
type RedisLimiter struct {
	client      *redis.Client
	maxFailures int
	blockFor    time.Duration
}

func NewRedisLimiter(client *redis.Client, maxFailures int, blockFor time.Duration) *RedisLimiter {
	return &RedisLimiter{
		client:      client,
		maxFailures: maxFailures,
		blockFor:    blockFor,
	}
}

func (l *RedisLimiter) countKey(key string) string { return "login_fails:" + key }
func (l *RedisLimiter) blockKey(key string) string { return "login_block:" + key }

func (l *RedisLimiter) Blocked(ctx context.Context, key string) (bool, error) {
	n, err := l.client.Exists(ctx, l.blockKey(key)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (l *RedisLimiter) RecordFailure(ctx context.Context, key string) error {
	count, err := l.client.Incr(ctx, l.countKey(key)).Result()
	if err != nil {
		return err
	}
	if err := l.client.Expire(ctx, l.countKey(key), l.blockFor).Err(); err != nil {
		return err
	}
	if count >= int64(l.maxFailures) {
		return l.client.Set(ctx, l.blockKey(key), "1", l.blockFor).Err()
	}
	return nil
}

func (l *RedisLimiter) Clear(ctx context.Context, key string) error {
	return l.client.Del(ctx, l.countKey(key), l.blockKey(key)).Err()
}
