package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"planwise/internal/model"
)

// PlanCache caches whole plan documents so a reload does not refetch from
// the upstream backend. A miss returns (nil, nil).
type PlanCache interface {
	Set(ctx context.Context, doc *model.PlanDocument) error
	Get(ctx context.Context, planID string) (*model.PlanDocument, error)
	Delete(ctx context.Context, planID string) error
}

type planCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewPlanCache creates a redis-backed plan cache.
func NewPlanCache(client *redis.Client) PlanCache {
	return &planCache{
		client: client,
		ttl:    10 * time.Minute,
	}
}

func (c *planCache) key(planID string) string {
	return "plan:" + planID
}

func (c *planCache) Set(ctx context.Context, doc *model.PlanDocument) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.key(doc.ID), data, c.ttl).Err()
}

func (c *planCache) Get(ctx context.Context, planID string) (*model.PlanDocument, error) {
	data, err := c.client.Get(ctx, c.key(planID)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var doc model.PlanDocument
	if err := json.Unmarshal([]byte(data), &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

func (c *planCache) Delete(ctx context.Context, planID string) error {
	return c.client.Del(ctx, c.key(planID)).Err()
}
