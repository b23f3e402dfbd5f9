package ratelimit

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// Class buckets routes into request budgets. Seat holds, cancellations and
// payments share the tightest budget because they contend on the capacity
// counter.
type Class string

const (
	ClassDefault         Class = "default"
	ClassPublic          Class = "public"
	ClassAuth            Class = "auth"
	ClassBooking         Class = "booking"
	ClassBookingCritical Class = "booking_critical"
	ClassAnalytics       Class = "analytics"
	ClassHealth          Class = "health"
)

// Config holds the per-class request budgets over one sliding window
type Config struct {
	Enabled                 bool
	WindowDuration          time.Duration
	DefaultRequests         int
	PublicRequests          int
	AuthRequests            int
	BookingRequests         int
	BookingCriticalRequests int
	AnalyticsRequests       int
	HealthRequests          int
}

// Result reports the outcome of one limit check
type Result struct {
	Allowed   bool
	Limit     int
	Remaining int
	ResetAt   int64
}

// Limiter is a sliding-window rate limiter over a Redis sorted set per
// (client, class) pair
type Limiter struct {
	client *redis.Client
	config *Config
}

func NewLimiter(client *redis.Client, config *Config) *Limiter {
	return &Limiter{client: client, config: config}
}

// Allow records the request and reports whether the client is within its
// budget for the class
func (l *Limiter) Allow(ctx context.Context, clientIP string, class Class) (*Result, error) {
	limit := l.limitFor(class)
	if !l.config.Enabled {
		return &Result{
			Allowed:   true,
			Limit:     limit,
			Remaining: limit,
			ResetAt:   time.Now().Add(l.config.WindowDuration).Unix(),
		}, nil
	}

	key := fmt.Sprintf("busline:ratelimit:%s:%s", clientIP, class)
	return l.check(ctx, key, limit)
}

// check trims expired entries, counts the window and records the request in
// one atomic round trip
func (l *Limiter) check(ctx context.Context, key string, limit int) (*Result, error) {
	now := time.Now()
	windowStart := now.Add(-l.config.WindowDuration)

	script := `
		local key = KEYS[1]
		local window_start = tonumber(ARGV[1])
		local now = tonumber(ARGV[2])
		local limit = tonumber(ARGV[3])
		local window_seconds = tonumber(ARGV[4])

		redis.call('ZREMRANGEBYSCORE', key, '-inf', window_start)

		local count = redis.call('ZCARD', key)
		if count >= limit then
			redis.call('EXPIRE', key, window_seconds)
			return {count, limit - count}
		end

		redis.call('ZADD', key, now, now)
		redis.call('EXPIRE', key, window_seconds)
		return {count + 1, limit - count - 1}
	`

	raw, err := l.client.Eval(ctx, script, []string{key},
		windowStart.UnixMicro(),
		now.UnixMicro(),
		limit,
		int(l.config.WindowDuration.Seconds())).Result()
	if err != nil {
		return nil, fmt.Errorf("rate limit eval failed: %w", err)
	}

	values, ok := raw.([]interface{})
	if !ok || len(values) != 2 {
		return nil, fmt.Errorf("unexpected rate limit response: %v", raw)
	}

	count, _ := strconv.Atoi(fmt.Sprintf("%v", values[0]))
	remaining, _ := strconv.Atoi(fmt.Sprintf("%v", values[1]))
	if remaining < 0 {
		remaining = 0
	}

	return &Result{
		Allowed:   count <= limit,
		Limit:     limit,
		Remaining: remaining,
		ResetAt:   now.Add(l.config.WindowDuration).Unix(),
	}, nil
}

func (l *Limiter) limitFor(class Class) int {
	switch class {
	case ClassPublic:
		return l.config.PublicRequests
	case ClassAuth:
		return l.config.AuthRequests
	case ClassBooking:
		return l.config.BookingRequests
	case ClassBookingCritical:
		return l.config.BookingCriticalRequests
	case ClassAnalytics:
		return l.config.AnalyticsRequests
	case ClassHealth:
		return l.config.HealthRequests
	default:
		return l.config.DefaultRequests
	}
}
