package ratelimit

import (
	"time"

	rate "github.com/wallstreetcn/rate/redis"
)

// Limiter decides whether the caller identified by key may proceed.
type Limiter interface {
	Allow(key string) bool
}

// Setup points the Redis-backed limiters at a Redis server. It must be called
// before any RedisLimiter is used.
// Note: the rate limiter library keeps its own connection, separate from health checks.
func Setup(host string, port int, auth string) error {
	return rate.SetRedis(&rate.ConfigRedis{
		Host: host,
		Port: port,
		Auth: auth,
	})
}

// RedisLimiter allows burst events per interval for each key, with state kept in Redis.
type RedisLimiter struct {
	prefix   string
	interval time.Duration
	burst    int
}

// NewRedis creates a limiter whose Redis keys are prefix+key.
func NewRedis(prefix string, interval time.Duration, burst int) *RedisLimiter {
	return &RedisLimiter{prefix: prefix, interval: interval, burst: burst}
}

// Allow reports whether an event for key may happen now.
func (l *RedisLimiter) Allow(key string) bool {
	return rate.NewLimiter(rate.Every(l.interval), l.burst, l.prefix+key).Allow()
}

// Unlimited allows everything. It is used when no Redis server is configured.
type Unlimited struct{}

// Allow always returns true.
func (Unlimited) Allow(string) bool { return true }
