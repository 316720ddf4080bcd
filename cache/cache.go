// Package cache keeps JSON snapshots of user profiles in redis so hot
// endpoints can skip the database. Entries are keyed per user id, the same
// value access tokens carry as their subject, and invalidated whenever the
// account mutates.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const userKeyPrefix = "user:"

// DefaultTTL covers cached profiles that were stored without an explicit TTL.
const DefaultTTL = 10 * time.Minute

// Config holds redis connection settings.
type Config struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

// New connects a redis client and verifies the connection.
func New(ctx context.Context, cfg Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return client, nil
}

// UserSnapshot is the cached view of a profile. It never carries the
// password hash.
type UserSnapshot struct {
	ID            string `json:"id"`
	Username      string `json:"username"`
	Email         string `json:"email"`
	Role          string `json:"role"`
	Avatar        string `json:"avatar,omitempty"`
	EmailVerified bool   `json:"is_email_verified"`
}

// UserCache stores and invalidates user snapshots.
type UserCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewUserCache(client *redis.Client, ttl time.Duration) *UserCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &UserCache{client: client, ttl: ttl}
}

func userKey(id string) string {
	return userKeyPrefix + id
}

// Set stores the snapshot under user:{id} with the cache TTL.
func (c *UserCache) Set(ctx context.Context, user UserSnapshot) error {
	payload, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("failed to marshal user snapshot: %w", err)
	}

	if err := c.client.Set(ctx, userKey(user.ID), payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to store user snapshot: %w", err)
	}

	return nil
}

// Get returns the cached snapshot, or (nil, nil) on a miss.
func (c *UserCache) Get(ctx context.Context, id string) (*UserSnapshot, error) {
	payload, err := c.client.Get(ctx, userKey(id)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read user snapshot: %w", err)
	}

	var snapshot UserSnapshot
	if err := json.Unmarshal(payload, &snapshot); err != nil {
		return nil, fmt.Errorf("failed to unmarshal user snapshot: %w", err)
	}

	return &snapshot, nil
}

// Delete drops the cached snapshot. Missing keys are not an error.
func (c *UserCache) Delete(ctx context.Context, id string) error {
	if err := c.client.Del(ctx, userKey(id)).Err(); err != nil {
		return fmt.Errorf("failed to invalidate user snapshot: %w", err)
	}
	return nil
}
