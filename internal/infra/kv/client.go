package kv

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// Client wraps Redis as the hosted key-value store for chat records.
type Client struct {
	rdb *redis.Client
}

// Config holds Redis connection configuration.
type Config struct {
	URL      string `yaml:"url"`
	Password string `yaml:"password"`
}

// NewClient creates a new Redis-backed KV client.
func NewClient(cfg Config) (*Client, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}
	if cfg.Password != "" {
		opts.Password = cfg.Password
	}

	rdb := redis.NewClient(opts)

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &Client{rdb: rdb}, nil
}

// Close closes the Redis connection.
func (c *Client) Close() error {
	return c.rdb.Close()
}

// Key helpers
func MessageKey(chatID, messageID string) string {
	return fmt.Sprintf("message:%s:%s", chatID, messageID)
}

func MessagePrefix(chatID string) string {
	return fmt.Sprintf("message:%s:", chatID)
}

func activityKey(chatID, date string) string {
	return fmt.Sprintf("activity:%s:%s", chatID, date)
}

func activityUsersKey(chatID, date string) string {
	return fmt.Sprintf("activity:%s:%s:users", chatID, date)
}

// Get returns the value at key, with found=false for an absent key.
func (c *Client) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := c.rdb.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get failed: %w", err)
	}
	return val, true, nil
}

// Put stores value at key with an optional TTL (0 = no expiry).
func (c *Client) Put(ctx context.Context, key, value string, ttl time.Duration) error {
	if err := c.rdb.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("set failed: %w", err)
	}
	return nil
}

// List scans keys matching prefix starting at cursor. A returned cursor of 0
// means the scan is complete.
func (c *Client) List(ctx context.Context, prefix string, cursor uint64) ([]string, uint64, error) {
	keys, next, err := c.rdb.Scan(ctx, cursor, prefix+"*", 100).Result()
	if err != nil {
		return nil, 0, fmt.Errorf("scan failed: %w", err)
	}
	return keys, next, nil
}

// IncrActivity atomically bumps the per-chat and per-user counters for one
// received message.
func (c *Client) IncrActivity(ctx context.Context, chatID, userID, date string, ttl time.Duration) error {
	pipe := c.rdb.TxPipeline()
	pipe.Incr(ctx, activityKey(chatID, date))
	pipe.Expire(ctx, activityKey(chatID, date), ttl)
	pipe.HIncrBy(ctx, activityUsersKey(chatID, date), userID, 1)
	pipe.Expire(ctx, activityUsersKey(chatID, date), ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("activity incr failed: %w", err)
	}
	return nil
}

// GetActivity returns the day's total and per-user message counts.
func (c *Client) GetActivity(ctx context.Context, chatID, date string) (int64, map[string]int64, error) {
	total, err := c.rdb.Get(ctx, activityKey(chatID, date)).Int64()
	if err == redis.Nil {
		total = 0
	} else if err != nil {
		return 0, nil, fmt.Errorf("activity get failed: %w", err)
	}

	users, err := c.rdb.HGetAll(ctx, activityUsersKey(chatID, date)).Result()
	if err != nil {
		return 0, nil, fmt.Errorf("activity hgetall failed: %w", err)
	}

	perUser := make(map[string]int64, len(users))
	for user, raw := range users {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return 0, nil, fmt.Errorf("invalid counter for %s: %w", user, err)
		}
		perUser[user] = n
	}
	return total, perUser, nil
}

// ClearActivity removes a day's counters, used by the reset-stats command.
func (c *Client) ClearActivity(ctx context.Context, chatID, date string) error {
	return c.rdb.Del(ctx, activityKey(chatID, date), activityUsersKey(chatID, date)).Err()
}
