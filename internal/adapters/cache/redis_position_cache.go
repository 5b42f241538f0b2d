// Package cache holds the live driver-position cache. Position
// reports are written through on every ingest so tracking reads can
// skip the primary store; entries expire so a silent driver's stale
// position ages out on its own.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"dispatch-tracking-service/internal/domain"
)

const DefaultPositionTTL = 5 * time.Minute

type RedisPositionCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisPositionCache(rdb *redis.Client, ttl time.Duration) *RedisPositionCache {
	if ttl <= 0 {
		ttl = DefaultPositionTTL
	}
	return &RedisPositionCache{rdb: rdb, ttl: ttl}
}

func positionKey(driverID string) string {
	return fmt.Sprintf("driver:%s:pos", driverID)
}

func (c *RedisPositionCache) Put(ctx context.Context, driverID string, pos domain.DriverPosition) error {
	b, err := json.Marshal(pos)
	if err != nil {
		return fmt.Errorf("position cache put: marshal: %w", err)
	}
	if err := c.rdb.Set(ctx, positionKey(driverID), b, c.ttl).Err(); err != nil {
		return fmt.Errorf("position cache put: %w", err)
	}
	return nil
}

func (c *RedisPositionCache) Get(ctx context.Context, driverID string) (domain.DriverPosition, bool, error) {
	raw, err := c.rdb.Get(ctx, positionKey(driverID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.DriverPosition{}, false, nil
	}
	if err != nil {
		return domain.DriverPosition{}, false, fmt.Errorf("position cache get: %w", err)
	}

	var pos domain.DriverPosition
	if err := json.Unmarshal(raw, &pos); err != nil {
		return domain.DriverPosition{}, false, fmt.Errorf("position cache get: unmarshal: %w", err)
	}
	return pos, true, nil
}
