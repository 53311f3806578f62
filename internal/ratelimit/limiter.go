package ratelimit

import (
	"context"
	"fmt"
	"time"
)

// Counter is a fixed-window counter store such as Redis.
type Counter interface {
	Incr(ctx context.Context, key string, ttl time.Duration) (int64, error)
	TTL(ctx context.Context, key string) (time.Duration, error)
}

type ActionConfig struct {
	Limit  int64
	Window time.Duration
}

const (
	ActionLogin  = "login"
	ActionUpload = "upload"
	ActionAdmin  = "admin"
)

var DefaultLimits = map[string]ActionConfig{
	ActionLogin:  {Limit: 5, Window: time.Minute},
	ActionUpload: {Limit: 10, Window: time.Minute},
	ActionAdmin:  {Limit: 60, Window: time.Minute},
}

var defaultLimit = ActionConfig{Limit: 100, Window: time.Minute}

type Limiter struct {
	counter Counter
	limits  map[string]ActionConfig
	now     func() time.Time
}

type CheckResult struct {
	Allowed   bool  `json:"allowed"`
	Remaining int64 `json:"remaining"`
	ResetAt   int64 `json:"resetAt"`
	Limit     int64 `json:"limit"`
}

func NewLimiter(counter Counter, limits map[string]ActionConfig) *Limiter {
	if limits == nil {
		limits = DefaultLimits
	}
	return &Limiter{counter: counter, limits: limits, now: time.Now}
}

func (l *Limiter) Check(ctx context.Context, clientID, action string) (*CheckResult, error) {
	config, ok := l.limits[action]
	if !ok {
		config = defaultLimit
	}

	key := fmt.Sprintf("rate:%s:%s", action, clientID)

	count, err := l.counter.Incr(ctx, key, config.Window)
	if err != nil {
		return nil, fmt.Errorf("failed to increment counter: %w", err)
	}

	ttl, err := l.counter.TTL(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("failed to get TTL: %w", err)
	}
	if ttl < 0 {
		ttl = config.Window
	}

	remaining := config.Limit - count
	if remaining < 0 {
		remaining = 0
	}

	return &CheckResult{
		Allowed:   count <= config.Limit,
		Remaining: remaining,
		ResetAt:   l.now().Add(ttl).Unix(),
		Limit:     config.Limit,
	}, nil
}
