package health

import (
	"strconv"
	"strings"

	"github.com/go-redis/redis"
)

// Checker reports whether a dependency is reachable.
type Checker interface {
	Check() error
}

// RedisChecker pings Redis.
type RedisChecker struct {
	client *redis.Client
}

// NewRedis creates a Redis checker and verifies connectivity.
func NewRedis(addr, password string, db int) (*RedisChecker, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	c := &RedisChecker{client: client}
	if err := c.Check(); err != nil {
		client.Close()
		return nil, err
	}
	return c, nil
}

// Check pings Redis.
func (c *RedisChecker) Check() error {
	_, err := c.client.Ping().Result()
	return err
}

// Close closes the underlying client.
func (c *RedisChecker) Close() error {
	return c.client.Close()
}

// ParseRedisURI parses a Redis URI in the form "host:port" and returns host and port separately.
// This is needed because the rate limiter package takes host and port as separate config fields.
func ParseRedisURI(uri string) (host string, port int) {
	host = "localhost"
	port = 6379

	if uri == "" {
		return
	}

	parts := strings.Split(uri, ":")
	if len(parts) >= 1 && parts[0] != "" {
		host = parts[0]
	}
	if len(parts) >= 2 {
		if p, err := strconv.Atoi(parts[1]); err == nil {
			port = p
		}
	}
	return
}
