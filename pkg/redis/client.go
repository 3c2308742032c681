// Package redis wraps go-redis with the key layout and the few atomic
// primitives the API guards and the cron lease need.
package redis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dongkoo81/oracle-postgresql-migration/pkg/config"
	"github.com/dongkoo81/oracle-postgresql-migration/pkg/logger"
)

// Keys look like mes:<kind>:<part>...
const keyNamespace = "mes"

var errNotInitialized = errors.New("redis client not initialized")

// INCR and the window expiry must land together, otherwise a crash between
// them leaves a counter that never resets.
var fixedWindowScript = redis.NewScript(`
local n = redis.call("INCR", KEYS[1])
if n == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return n`)

var deleteIfEqualScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
  return redis.call("DEL", KEYS[1])
end
return 0`)

// store is the slice of go-redis the client uses; tests substitute it.
type store interface {
	Ping(ctx context.Context) *redis.StatusCmd
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value any, ttl time.Duration) *redis.StatusCmd
	SetNX(ctx context.Context, key string, value any, ttl time.Duration) *redis.BoolCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
	redis.Scripter
}

type Client struct {
	store store
	raw   *redis.Client
}

// New dials Redis and fails unless it answers a ping.
func New(ctx context.Context, cfg config.RedisConfig, logg *logger.Logger) (*Client, error) {
	opts, err := optionsFromConfig(cfg)
	if err != nil {
		return nil, err
	}
	raw := redis.NewClient(opts)
	if err := raw.Ping(ctx).Err(); err != nil {
		_ = raw.Close()
		return nil, fmt.Errorf("ping redis %s: %w", opts.Addr, err)
	}
	if logg != nil {
		logg.Info(logg.WithField(ctx, "redis_addr", opts.Addr), "redis.connected")
	}
	return &Client{store: raw, raw: raw}, nil
}

// optionsFromConfig prefers MES_REDIS_URL; explicit settings only fill what
// the URL left unset.
func optionsFromConfig(cfg config.RedisConfig) (*redis.Options, error) {
	var opts *redis.Options
	switch {
	case cfg.URL != "":
		parsed, err := redis.ParseURL(cfg.URL)
		if err != nil {
			return nil, fmt.Errorf("parse redis url: %w", err)
		}
		opts = parsed
	case cfg.Address != "":
		opts = &redis.Options{Addr: cfg.Address, Password: cfg.Password}
	default:
		return nil, errors.New("redis url or address is required")
	}

	fill := func(dst *int, v int) {
		if *dst == 0 {
			*dst = v
		}
	}
	fillDur := func(dst *time.Duration, v time.Duration) {
		if *dst == 0 {
			*dst = v
		}
	}
	fill(&opts.DB, cfg.DB)
	fill(&opts.PoolSize, cfg.PoolSize)
	fill(&opts.MinIdleConns, cfg.MinIdleConns)
	fillDur(&opts.DialTimeout, cfg.DialTimeout)
	fillDur(&opts.ReadTimeout, cfg.ReadTimeout)
	fillDur(&opts.WriteTimeout, cfg.WriteTimeout)
	return opts, nil
}

func (c *Client) Get(ctx context.Context, key string) (string, error) {
	if c.store == nil {
		return "", errNotInitialized
	}
	return c.store.Get(ctx, key).Result()
}

func (c *Client) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	if c.store == nil {
		return errNotInitialized
	}
	return c.store.Set(ctx, key, value, ttl).Err()
}

func (c *Client) SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error) {
	if c.store == nil {
		return false, errNotInitialized
	}
	return c.store.SetNX(ctx, key, value, ttl).Result()
}

func (c *Client) Del(ctx context.Context, keys ...string) error {
	if c.store == nil {
		return errNotInitialized
	}
	return c.store.Del(ctx, keys...).Err()
}

// DeleteIfEqual removes key only while it still holds value, in one round trip.
func (c *Client) DeleteIfEqual(ctx context.Context, key, value string) (bool, error) {
	if c.store == nil {
		return false, errNotInitialized
	}
	n, err := deleteIfEqualScript.Run(ctx, c.store, []string{key}, value).Int64()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// FixedWindowAllow counts a hit against scope and reports whether it is
// within limit for the current window.
func (c *Client) FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error) {
	if c.store == nil {
		return false, 0, errNotInitialized
	}
	count, err := fixedWindowScript.Run(ctx, c.store, []string{c.RateLimitKey(scope)}, window.Milliseconds()).Int64()
	if err != nil {
		return false, 0, err
	}
	return count <= limit, count, nil
}

func (c *Client) IdempotencyKey(scope, id string) string {
	return buildKey("idempotency", scope, id)
}

func (c *Client) RateLimitKey(scope string) string {
	return buildKey("rate_limit", scope)
}

func (c *Client) LockKey(parts ...string) string {
	return buildKey(append([]string{"lock"}, parts...)...)
}

func (c *Client) Ping(ctx context.Context) error {
	if c.store == nil {
		return errNotInitialized
	}
	return c.store.Ping(ctx).Err()
}

func (c *Client) Close() error {
	if c.raw == nil {
		return nil
	}
	return c.raw.Close()
}

func buildKey(parts ...string) string {
	clean := make([]string, 0, len(parts)+1)
	clean = append(clean, keyNamespace)
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			clean = append(clean, part)
		}
	}
	return strings.Join(clean, ":")
}
