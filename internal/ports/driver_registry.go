package ports

import (
	"context"
	"time"

	"dispatch-tracking-service/internal/domain"
)

// Filter for driver listings.
type DriverFilter struct {
	// OnlyAvailable restricts the listing to free drivers that have
	// reported at least one real position (a zero coordinate means
	// "never reported" and is excluded).
	OnlyAvailable bool
}

// Port: driver availability and last-known location.
//
// Reserve is the one operation that must be linearizable: a single
// conditional "flip available to false only if currently true" so two
// concurrent dispatches can never both claim the same driver.
type DriverRegistry interface {
	List(ctx context.Context, filter DriverFilter) ([]domain.Driver, error)
	Get(ctx context.Context, driverID string) (domain.Driver, error)

	// Reserve atomically claims the driver. Returns false when the
	// driver exists but is already reserved.
	Reserve(ctx context.Context, driverID string) (bool, error)

	// Release marks the driver available again. Idempotent.
	Release(ctx context.Context, driverID string) error

	// UpdateLocation applies a position report unless a newer one is
	// already stored. Returns false when the report was stale.
	UpdateLocation(ctx context.Context, driverID string, loc domain.Coordinate, at time.Time) (bool, error)
}
