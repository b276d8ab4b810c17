package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/vitcanteen/canteen-backend/internal/models"
)

// RedisOrderCache stores order lists as JSON with a fixed TTL. Failures are
// logged and treated as misses; the store stays the source of truth.
type RedisOrderCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisOrderCache(rdb *redis.Client, ttl time.Duration) *RedisOrderCache {
	return &RedisOrderCache{rdb: rdb, ttl: ttl}
}

// Connect dials redis and verifies the connection.
func Connect(ctx context.Context, addr, password string) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  500 * time.Millisecond,
		WriteTimeout: 500 * time.Millisecond,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping %s: %w", addr, err)
	}
	return rdb, nil
}

func (c *RedisOrderCache) GetList(ctx context.Context, key string) ([]models.Order, bool) {
	val, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			slog.Warn("order cache read failed", "key", key, "error", err)
		}
		return nil, false
	}

	var orders []models.Order
	if err := json.Unmarshal(val, &orders); err != nil {
		slog.Warn("order cache entry corrupt", "key", key, "error", err)
		return nil, false
	}
	return orders, true
}

func (c *RedisOrderCache) SetList(ctx context.Context, key string, orders []models.Order) {
	data, err := json.Marshal(orders)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, key, data, c.ttl).Err(); err != nil {
		slog.Warn("order cache write failed", "key", key, "error", err)
	}
}

func (c *RedisOrderCache) Invalidate(ctx context.Context, keys ...string) {
	if len(keys) == 0 {
		return
	}
	if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
		slog.Warn("order cache invalidation failed", "keys", keys, "error", err)
	}
}
