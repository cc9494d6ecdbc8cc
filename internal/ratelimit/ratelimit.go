// Package ratelimit implements a Redis sliding-window limiter. Each key keeps
// a sorted set of request timestamps; the check and the insert run in one Lua
// script so concurrent API instances share the same window.
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const slidingWindowScript = `
local key    = KEYS[1]
local now    = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local limit  = tonumber(ARGV[3])
local member = ARGV[4]

redis.call('ZREMRANGEBYSCORE', key, 0, now - window)
local count = redis.call('ZCARD', key)

if count >= limit then
	local retry = window
	local oldest = redis.call('ZRANGE', key, 0, 0, 'WITHSCORES')
	if oldest[2] then
		retry = tonumber(oldest[2]) + window - now
	end
	return {0, count, retry}
end

redis.call('ZADD', key, now, member)
redis.call('PEXPIRE', key, window)
return {1, count + 1, 0}
`

// Evaler is the subset of *redis.Client the limiter needs.
type Evaler interface {
	Eval(ctx context.Context, script string, keys []string, args ...any) *redis.Cmd
}

type Config struct {
	// Prefix namespaces keys, e.g. "ratelimit:login:".
	Prefix string
	Limit  int
	Window time.Duration
}

type Result struct {
	Allowed    bool
	Remaining  int
	RetryAfter time.Duration
}

type Limiter struct {
	client Evaler
	cfg    Config
	now    func() time.Time
}

func New(client Evaler, cfg Config) (*Limiter, error) {
	if client == nil {
		return nil, fmt.Errorf("ratelimit: redis client is required")
	}
	if cfg.Limit <= 0 {
		return nil, fmt.Errorf("ratelimit: limit must be positive, got %d", cfg.Limit)
	}
	if cfg.Window <= 0 {
		return nil, fmt.Errorf("ratelimit: window must be positive, got %s", cfg.Window)
	}
	if cfg.Prefix == "" {
		cfg.Prefix = "ratelimit:"
	}
	return &Limiter{client: client, cfg: cfg, now: time.Now}, nil
}

// WithClock returns a copy of l that reads time from now.
func (l *Limiter) WithClock(now func() time.Time) *Limiter {
	c := *l
	c.now = now
	return &c
}

// Allow records one attempt for key and reports whether it fits in the
// current window.
func (l *Limiter) Allow(ctx context.Context, key string) (Result, error) {
	now := l.now().UnixMilli()

	raw, err := l.client.Eval(ctx, slidingWindowScript, []string{l.cfg.Prefix + key},
		now,
		l.cfg.Window.Milliseconds(),
		l.cfg.Limit,
		fmt.Sprintf("%d-%s", now, uuid.NewString()),
	).Result()
	if err != nil {
		return Result{}, fmt.Errorf("redis rate limit check failed: %w", err)
	}

	values, ok := raw.([]any)
	if !ok || len(values) != 3 {
		return Result{}, fmt.Errorf("unexpected rate limit script result %T", raw)
	}
	allowed, _ := values[0].(int64)
	count, _ := values[1].(int64)
	retryMs, _ := values[2].(int64)

	remaining := l.cfg.Limit - int(count)
	if remaining < 0 {
		remaining = 0
	}
	return Result{
		Allowed:    allowed == 1,
		Remaining:  remaining,
		RetryAfter: time.Duration(retryMs) * time.Millisecond,
	}, nil
}

// NewRedisClient builds a client and verifies the connection.
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", addr, err)
	}
	return client, nil
}
