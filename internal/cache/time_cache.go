package cache

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// ActivityTimeCache tracks elapsed seconds per activity. Totals only ever
// grow: writes go through INCRBY, never SET.
type ActivityTimeCache interface {
	Increment(ctx context.Context, activityID string, seconds int64) (int64, error)
	Total(ctx context.Context, activityID string) (int64, error)
}

type activityTimeCache struct {
	client *redis.Client
}

// NewActivityTimeCache creates a redis-backed activity time cache.
func NewActivityTimeCache(client *redis.Client) ActivityTimeCache {
	return &activityTimeCache{client: client}
}

func (c *activityTimeCache) key(activityID string) string {
	return fmt.Sprintf("activity:%s:time", activityID)
}

func (c *activityTimeCache) Increment(ctx context.Context, activityID string, seconds int64) (int64, error) {
	if seconds < 0 {
		return 0, fmt.Errorf("negative time increment: %d", seconds)
	}
	return c.client.IncrBy(ctx, c.key(activityID), seconds).Result()
}

func (c *activityTimeCache) Total(ctx context.Context, activityID string) (int64, error) {
	total, err := c.client.Get(ctx, c.key(activityID)).Int64()
	if err == redis.Nil {
		return 0, nil
	}
	return total, err
}
