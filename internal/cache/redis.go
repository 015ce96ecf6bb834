package cache

import (
	"context"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// Analytics cache keys. These reads are recomputed over the whole reports
// table, so they are cached briefly and dropped on every mutation.
const (
	KeyHeatmap     = "analytics:heatmap"
	KeyLeaderboard = "analytics:leaderboard"
	KeyMetrics     = "analytics:metrics"

	AnalyticsTTL = 30 * time.Second
)

type RedisCache struct {
	client *redis.Client
}

func NewRedisCache(redisURL string) (*RedisCache, error) {
	// Parse redis URL (redis://host:port or redis://host:port/db)
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opts)

	// Test connection
	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	log.Printf("Connected to Redis at %s", redisURL)
	return &RedisCache{client: client}, nil
}

func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, error) {
	return c.client.Get(ctx, key).Bytes()
}

func (c *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return c.client.Set(ctx, key, value, ttl).Err()
}

func (c *RedisCache) Delete(ctx context.Context, keys ...string) error {
	return c.client.Del(ctx, keys...).Err()
}

// InvalidateAnalytics drops every cached analytics projection. Called after
// any report mutation.
func (c *RedisCache) InvalidateAnalytics(ctx context.Context) error {
	return c.Delete(ctx, KeyHeatmap, KeyLeaderboard, KeyMetrics)
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}
