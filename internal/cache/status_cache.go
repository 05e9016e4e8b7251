// Package cache holds the Redis-backed event status cache. A nil *StatusCache
// is valid and disables caching, so callers never need to branch on whether
// Redis is configured.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const statusTTL = 5 * time.Second

type StatusCache struct {
	client *redis.Client
}

// NewStatusCache pings Redis with a short timeout and returns nil when the
// server is unreachable; the service then serves uncached reads.
func NewStatusCache(addr string) *StatusCache {
	if addr == "" {
		return nil
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil
	}
	return &StatusCache{client: client}
}

func statusKey(eventID uint) string {
	return fmt.Sprintf("event:%d:status", eventID)
}

func (c *StatusCache) Get(ctx context.Context, eventID uint, dest any) bool {
	if c == nil {
		return false
	}
	raw, err := c.client.Get(ctx, statusKey(eventID)).Bytes()
	if err != nil {
		return false
	}
	return json.Unmarshal(raw, dest) == nil
}

func (c *StatusCache) Set(ctx context.Context, eventID uint, value any) {
	if c == nil {
		return
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return
	}
	c.client.Set(ctx, statusKey(eventID), raw, statusTTL)
}

func (c *StatusCache) Invalidate(ctx context.Context, eventID uint) {
	if c == nil {
		return
	}
	c.client.Del(ctx, statusKey(eventID))
}

func (c *StatusCache) Close() {
	if c == nil {
		return
	}
	c.client.Close()
}
