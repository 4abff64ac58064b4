package accrual

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisRunLock serializes concurrent triggers for the same run date with a
// SET NX key. The TTL is a backstop against a crashed run holding the lock
// forever; the durable same-day guard is the accrual_runs unique index.
type RedisRunLock struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisRunLock(client *redis.Client) *RedisRunLock {
	return &RedisRunLock{client: client, ttl: time.Hour}
}

func (l *RedisRunLock) key(date time.Time) string {
	return fmt.Sprintf("accrual:run:lock:%s", date.Format("20060102"))
}

func (l *RedisRunLock) Acquire(ctx context.Context, date time.Time) (bool, error) {
	return l.client.SetNX(ctx, l.key(date), "1", l.ttl).Result()
}

func (l *RedisRunLock) Release(ctx context.Context, date time.Time) error {
	return l.client.Del(ctx, l.key(date)).Err()
}
