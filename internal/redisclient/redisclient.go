package redisclient

import (
	"context"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
)

type Client struct {
	redisdb *redis.Client
}

type Config struct {
	Addr     string
	Password string
	DB       int
}

func New(cfg Config) *Client {
	redisdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})

	return &Client{redisdb: redisdb}
}

// Ping checks redis connectivity for the readiness probe.
func (c *Client) Ping(ctx context.Context) error {
	return c.redisdb.Ping(ctx).Err()
}

func (c *Client) Close() error {
	return c.redisdb.Close()
}

// Raw exposes the underlying client to the cohort cache.
func (c *Client) Raw() *redis.Client {
	return c.redisdb
}

// IncrWindow bumps a fixed-window counter. The window starts on the first
// increment; later increments keep the original expiry. It returns the new
// count and the time left in the window.
func (c *Client) IncrWindow(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	pipe := c.redisdb.TxPipeline()

	incr := pipe.Incr(ctx, key)
	pipe.ExpireNX(ctx, key, window)
	ttl := pipe.PTTL(ctx, key)

	if _, err := pipe.Exec(ctx); err != nil {
		return 0, 0, err
	}

	left := ttl.Val()
	if left < 0 {
		left = window
	}

	return incr.Val(), left, nil
}

// NewFromEnvForTest connects to TEST_REDIS_ADDR, or returns nil when it is unset.
func NewFromEnvForTest(ctx context.Context) *Client {
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		return nil
	}

	c := New(Config{Addr: addr, DB: 15})
	if err := c.Ping(ctx); err != nil {
		_ = c.Close()
		return nil
	}

	return c
}
