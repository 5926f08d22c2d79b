package redisclient

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// wakeKey is a lightweight wake channel between the API and the worker.
// The API pushes a token after enqueueing a job; the worker blocks on it
// instead of busy-polling Postgres. The jobs table stays the source of
// truth, so a lost token only delays pickup until the next poll tick.
const wakeKey = "investorportal:jobs:wake"

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

func (c *Client) Ping(ctx context.Context) error {
	return c.redisdb.Ping(ctx).Err()
}

func (c *Client) Close() error {
	return c.redisdb.Close()
}

func (c *Client) Raw() *redis.Client {
	return c.redisdb
}

// NotifyJob wakes any blocked worker. Best effort; callers ignore errors.
func (c *Client) NotifyJob(ctx context.Context, jobID string) error {
	return c.redisdb.LPush(ctx, wakeKey, jobID).Err()
}

// WaitForJob blocks until a wake token arrives or the timeout passes.
// Returns false on timeout so the worker can fall back to its poll tick.
func (c *Client) WaitForJob(ctx context.Context, timeout time.Duration) (bool, error) {
	// BRPOP needs a read deadline longer than the block timeout
	waitClient := c.redisdb.WithTimeout(timeout + 2*time.Second)

	_, err := waitClient.BRPop(ctx, timeout, wakeKey).Result()

	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, err
	}

	return true, nil
}
