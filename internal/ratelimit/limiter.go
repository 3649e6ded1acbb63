// Package ratelimit implements fixed-window request budgets backed by Redis.
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

type Policy string

const (
	PolicyStandard   Policy = "standard"
	PolicyHeavyWrite Policy = "heavy_write"
)

// Rule allows Limit requests per Window. A Limit of zero or less disables the rule.
type Rule struct {
	Limit  int
	Window time.Duration
}

type Decision struct {
	Allowed    bool
	Limit      int
	Remaining  int
	RetryAfter time.Duration
}

type Limiter interface {
	Allow(ctx context.Context, policy Policy, subject string) (Decision, error)
}

// Counter increments key and sets its expiry on first use, returning the new value.
type Counter interface {
	Incr(ctx context.Context, key string, ttl time.Duration) (int64, error)
}

type WindowLimiter struct {
	counter Counter
	rules   map[Policy]Rule
	now     func() time.Time
}

func NewWindowLimiter(counter Counter, rules map[Policy]Rule) *WindowLimiter {
	return &WindowLimiter{
		counter: counter,
		rules:   rules,
		now:     time.Now,
	}
}

func (l *WindowLimiter) Allow(ctx context.Context, policy Policy, subject string) (Decision, error) {
	rule, ok := l.rules[policy]
	if !ok || rule.Limit <= 0 || rule.Window <= 0 {
		return Decision{Allowed: true}, nil
	}

	now := l.now()
	windowStart := now.Truncate(rule.Window)
	key := fmt.Sprintf("ratelimit:%s:%s:%d", policy, subject, windowStart.Unix())

	count, err := l.counter.Incr(ctx, key, rule.Window)
	if err != nil {
		return Decision{}, fmt.Errorf("incrementing %s: %w", key, err)
	}

	remaining := rule.Limit - int(count)
	if remaining < 0 {
		remaining = 0
	}

	d := Decision{
		Allowed:   count <= int64(rule.Limit),
		Limit:     rule.Limit,
		Remaining: remaining,
	}
	if !d.Allowed {
		d.RetryAfter = windowStart.Add(rule.Window).Sub(now)
	}
	return d, nil
}

type redisCounter struct {
	client redis.Cmdable
}

func NewRedisCounter(client redis.Cmdable) Counter {
	return &redisCounter{client: client}
}

func (c *redisCounter) Incr(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	var incr *redis.IntCmd
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, key)
		pipe.ExpireNX(ctx, key, ttl)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return incr.Val(), nil
}
