package publisher

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

// rebuildStream is the Redis stream downstream consumers watch for fresh
// lookup tables.
const rebuildStream = "lookup.rebuilt"

// RedisStreamPublisher publishes rebuild events to Redis streams
type RedisStreamPublisher struct {
	client *redis.Client
}

// NewRedisStreamPublisher creates a publisher from an existing client
func NewRedisStreamPublisher(client *redis.Client) *RedisStreamPublisher {
	return &RedisStreamPublisher{
		client: client,
	}
}

// RebuildEvent describes one completed lookup-table build.
type RebuildEvent struct {
	RunID        int64     `json:"run_id"`
	SeasonLabel  string    `json:"season_label"`
	TeamCount    int       `json:"team_count"`
	RowCount     int       `json:"row_count"`
	ForceRefresh bool      `json:"force_refresh"`
	CompletedAt  time.Time `json:"completed_at"`
}

// PublishRebuild publishes a rebuild-complete event to the stream
func (rsp *RedisStreamPublisher) PublishRebuild(ctx context.Context, event RebuildEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}

	return rsp.client.XAdd(ctx, &redis.XAddArgs{
		Stream: rebuildStream,
		Values: map[string]interface{}{
			"data":      string(data),
			"timestamp": time.Now().Unix(),
		},
	}).Err()
}
