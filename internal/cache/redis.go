package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/soluk/zamboni/internal/rating"
)

// RedisCache stores fetched stat tables between runs so the stats site is
// hit at most once per freshness window.
type RedisCache struct {
	client *redis.Client
}

// NewRedisCache creates a new Redis cache connection.
func NewRedisCache(redisURL string) (*RedisCache, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &RedisCache{client: client}, nil
}

// Close closes the Redis connection.
func (rc *RedisCache) Close() error {
	return rc.client.Close()
}

// Client returns the underlying Redis client.
func (rc *RedisCache) Client() *redis.Client {
	return rc.client
}

// HealthCheck pings Redis to verify the connection.
func (rc *RedisCache) HealthCheck(ctx context.Context) error {
	return rc.client.Ping(ctx).Err()
}

// TableKey builds the cache key for one situation table.
func TableKey(seasonLabel, sit, loc string) string {
	if loc == "" {
		loc = "NA"
	}
	return fmt.Sprintf("nst:%s:%s:%s", sit, loc, seasonLabel)
}

// GetTable returns a cached stat table, or (nil, false) on a miss.
func (rc *RedisCache) GetTable(ctx context.Context, key string) ([]rating.TeamStats, bool) {
	raw, err := rc.client.Get(ctx, key).Result()
	if err != nil {
		return nil, false
	}
	var stats []rating.TeamStats
	if err := json.Unmarshal([]byte(raw), &stats); err != nil {
		return nil, false
	}
	return stats, true
}

// SetTable stores a stat table under key for ttl.
func (rc *RedisCache) SetTable(ctx context.Context, key string, stats []rating.TeamStats, ttl time.Duration) error {
	raw, err := json.Marshal(stats)
	if err != nil {
		return err
	}
	return rc.client.Set(ctx, key, raw, ttl).Err()
}

// Delete removes keys; force-refresh uses it to invalidate stale tables.
func (rc *RedisCache) Delete(ctx context.Context, keys ...string) error {
	return rc.client.Del(ctx, keys...).Err()
}
