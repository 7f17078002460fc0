// Package redis backs the kv.Store interface with a Redis instance.
package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/sendright/ai-backend/internal/storage/kv"
)

// updateRetries bounds the optimistic-locking retry loop in Update.
const updateRetries = 5

// Client wraps the Redis client and implements kv.Store.
type Client struct {
	rdb *redis.Client
}

// New creates a new Redis client from a URI and verifies the connection.
func New(uri string) (*Client, error) {
	opt, err := redis.ParseURL(uri)
	if err != nil {
		return nil, err
	}

	rdb := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &Client{rdb: rdb}, nil
}

// Get retrieves a value by key.
func (c *Client) Get(ctx context.Context, key string) (string, error) {
	val, err := c.rdb.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", kv.ErrNotFound
		}
		return "", err
	}
	return val, nil
}

// Set stores a value with an optional TTL.
func (c *Client) Set(ctx context.Context, key string, value string, ttl time.Duration) error {
	return c.rdb.Set(ctx, key, value, ttl).Err()
}

// Delete removes a key.
func (c *Client) Delete(ctx context.Context, key string) error {
	return c.rdb.Del(ctx, key).Err()
}

// Incr atomically increments the counter at key.
func (c *Client) Incr(ctx context.Context, key string) (int64, error) {
	return c.rdb.Incr(ctx, key).Result()
}

// Update performs a WATCH-guarded read-modify-write of key, retrying a
// bounded number of times when another writer touches the key mid-update.
func (c *Client) Update(ctx context.Context, key string, fn func(current string, exists bool) (string, error)) error {
	txn := func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, key).Result()
		exists := true
		if err != nil {
			if !errors.Is(err, redis.Nil) {
				return err
			}
			current, exists = "", false
		}

		next, err := fn(current, exists)
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, next, 0)
			return nil
		})
		return err
	}

	for i := 0; i < updateRetries; i++ {
		err := c.rdb.Watch(ctx, txn, key)
		if err == nil {
			return nil
		}
		if !errors.Is(err, redis.TxFailedErr) {
			return err
		}
	}
	return fmt.Errorf("update %s: too many conflicts", key)
}

// Close closes the Redis connection.
func (c *Client) Close() error {
	return c.rdb.Close()
}
