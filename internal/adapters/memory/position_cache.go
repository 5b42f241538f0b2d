package memory

import (
	"context"
	"sync"

	"dispatch-tracking-service/internal/domain"
)

type PositionCache struct {
	mu        sync.RWMutex
	positions map[string]domain.DriverPosition
}

func NewPositionCache() *PositionCache {
	return &PositionCache{positions: make(map[string]domain.DriverPosition)}
}

func (c *PositionCache) Put(ctx context.Context, driverID string, pos domain.DriverPosition) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.positions[driverID] = pos
	return nil
}

func (c *PositionCache) Get(ctx context.Context, driverID string) (domain.DriverPosition, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	pos, ok := c.positions[driverID]
	return pos, ok, nil
}
