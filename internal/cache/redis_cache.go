package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

type RedisPlanCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisPlanCache(client *redis.Client, ttl time.Duration) *RedisPlanCache {
	return &RedisPlanCache{client: client, ttl: ttl}
}

func planKey(tenantID uuid.UUID) string { return "plan:" + tenantID.String() }

func (c *RedisPlanCache) Get(ctx context.Context, tenantID uuid.UUID) (*Plan, bool, error) {
	val, err := c.client.Get(ctx, planKey(tenantID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var p Plan
	if err := json.Unmarshal(val, &p); err != nil {
		return nil, false, err
	}
	return &p, true, nil
}

func (c *RedisPlanCache) Set(ctx context.Context, tenantID uuid.UUID, plan *Plan) error {
	if plan == nil {
		return nil
	}
	payload, err := json.Marshal(plan)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, planKey(tenantID), payload, c.ttl).Err()
}

func (c *RedisPlanCache) Invalidate(ctx context.Context, tenantID uuid.UUID) error {
	return c.client.Del(ctx, planKey(tenantID)).Err()
}
