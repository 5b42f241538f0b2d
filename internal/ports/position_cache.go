package ports

import (
	"context"

	"dispatch-tracking-service/internal/domain"
)

// Port: short-lived cache of the freshest driver position, written
// through on every location report so tracking reads skip the store.
type PositionCache interface {
	Put(ctx context.Context, driverID string, pos domain.DriverPosition) error

	// Get returns the cached position; ok is false on a miss.
	Get(ctx context.Context, driverID string) (pos domain.DriverPosition, ok bool, err error)
}
