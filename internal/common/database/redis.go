// internal/common/database/redis.go
package database

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"shoplink-workers/internal/common/config"

	"github.com/redis/go-redis/v9"
	gobreaker "github.com/sony/gobreaker/v2"
)

// RedisClient wraps the Redis client
type RedisClient struct {
	Client *redis.Client
}

// NewRedis creates a new Redis client
func NewRedis(cfg config.RedisConfig) (*RedisClient, error) {
	if cfg.Address == "" {
		return nil, fmt.Errorf("redis address is required")
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Address,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 5,
	})

	return &RedisClient{Client: rdb}, nil
}

// Ping tests the Redis connection
func (c *RedisClient) Ping(ctx context.Context) error {
	if err := c.Client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

// Close closes the Redis connection
func (c *RedisClient) Close() error {
	if c.Client != nil {
		return c.Client.Close()
	}
	return nil
}

// RedisVerdictCache stores probe verdicts keyed by URL hash. Calls go
// through a circuit breaker so an unreachable Redis costs one fast error per
// probe instead of a dial timeout.
type RedisVerdictCache struct {
	client  redis.Cmdable
	prefix  string
	ttl     time.Duration
	breaker *gobreaker.CircuitBreaker[string]
}

func NewRedisVerdictCache(client redis.Cmdable, cfg config.VerdictCacheConfig) *RedisVerdictCache {
	failures := uint32(cfg.BreakerFailures)
	if failures == 0 {
		failures = 5
	}
	cooldown := time.Duration(cfg.BreakerTimeoutSeconds) * time.Second
	if cooldown <= 0 {
		cooldown = 30 * time.Second
	}

	return &RedisVerdictCache{
		client: client,
		prefix: cfg.KeyPrefix,
		ttl:    time.Duration(cfg.TTLSeconds) * time.Second,
		breaker: gobreaker.NewCircuitBreaker[string](gobreaker.Settings{
			Name:        "verdict-cache",
			MaxRequests: 1,
			Timeout:     cooldown,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= failures
			},
		}),
	}
}

// Key returns the redis key for url.
func (c *RedisVerdictCache) Key(url string) string {
	sum := sha256.Sum256([]byte(url))
	return c.prefix + hex.EncodeToString(sum[:])
}

// BreakerState is "closed", "half-open" or "open".
func (c *RedisVerdictCache) BreakerState() string {
	return c.breaker.State().String()
}

// GetVerdict reports (verdict, found, err). A missing key is not an error.
func (c *RedisVerdictCache) GetVerdict(ctx context.Context, url string) (bool, bool, error) {
	val, err := c.breaker.Execute(func() (string, error) {
		val, err := c.client.Get(ctx, c.Key(url)).Result()
		if errors.Is(err, redis.Nil) {
			return "", nil
		}
		return val, err
	})
	if err != nil {
		return false, false, fmt.Errorf("verdict cache get: %w", err)
	}
	switch val {
	case "":
		return false, false, nil
	case "1":
		return true, true, nil
	case "0":
		return false, true, nil
	default:
		return false, false, fmt.Errorf("verdict cache get: unexpected value %q", val)
	}
}

func (c *RedisVerdictCache) SetVerdict(ctx context.Context, url string, ok bool) error {
	val := "0"
	if ok {
		val = "1"
	}
	_, err := c.breaker.Execute(func() (string, error) {
		return "", c.client.Set(ctx, c.Key(url), val, c.ttl).Err()
	})
	if err != nil {
		return fmt.Errorf("verdict cache set: %w", err)
	}
	return nil
}
