package cron

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const defaultLockTTL = 55 * time.Minute

// Lock makes a cycle exclusive across cron worker replicas.
type Lock interface {
	Acquire(ctx context.Context) (bool, error)
	Release(ctx context.Context) error
}

type redisStore interface {
	SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error)
	Get(ctx context.Context, key string) (string, error)
	DeleteIfEqual(ctx context.Context, key, value string) (bool, error)
}

// RedisLock is a SETNX lease. The stored value names the holder, and Release
// is a compare-and-delete so it never drops a lease another replica took over.
type RedisLock struct {
	client redisStore
	key    string
	ttl    time.Duration
	host   string
	token  string
}

// NewRedisLock builds a lease on key. A zero ttl uses defaultLockTTL; callers
// running long cycles size it with LeaseTTL.
func NewRedisLock(client redisStore, key string, ttl time.Duration) (*RedisLock, error) {
	if client == nil {
		return nil, errors.New("redis client required for lock")
	}
	if key == "" {
		return nil, errors.New("lock key is required")
	}
	if ttl <= 0 {
		ttl = defaultLockTTL
	}
	host, err := os.Hostname()
	if err != nil || host == "" {
		host = "unknown-host"
	}
	return &RedisLock{client: client, key: key, ttl: ttl, host: host}, nil
}

// Acquire takes the lease when nobody holds it.
func (l *RedisLock) Acquire(ctx context.Context) (bool, error) {
	token := l.host + "/" + uuid.NewString()
	ok, err := l.client.SetNX(ctx, l.key, token, l.ttl)
	if err != nil {
		return false, fmt.Errorf("acquire %s: %w", l.key, err)
	}
	if ok {
		l.token = token
	}
	return ok, nil
}

// TTL is how long an acquired lease lasts.
func (l *RedisLock) TTL() time.Duration {
	return l.ttl
}

// Holder returns the value stored by the current lease holder, or "" when
// the lease is free.
func (l *RedisLock) Holder(ctx context.Context) (string, error) {
	value, err := l.client.Get(ctx, l.key)
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	return value, err
}

// Release drops the lease if this instance still owns it. An expired or
// reassigned lease is left alone.
func (l *RedisLock) Release(ctx context.Context) error {
	if l.token == "" {
		return nil
	}
	token := l.token
	l.token = ""
	if _, err := l.client.DeleteIfEqual(ctx, l.key, token); err != nil {
		return fmt.Errorf("release %s: %w", l.key, err)
	}
	return nil
}
