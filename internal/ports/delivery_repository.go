package ports

import (
	"context"
	"errors"

	"dispatch-tracking-service/internal/domain"
)

// Returned by Update when the stored version no longer matches the
// one the caller read. The caller re-reads and re-applies.
var ErrVersionConflict = errors.New("delivery was modified concurrently")

// Port: persistence for deliveries. A delivery row is the unit of
// consistency; stops are denormalized into it, never stored apart.
type DeliveryRepository interface {
	Create(ctx context.Context, d *domain.Delivery) error
	Get(ctx context.Context, id string) (*domain.Delivery, error)

	// Update persists the delivery iff the stored version equals
	// d.Version, then increments it. ErrVersionConflict otherwise.
	Update(ctx context.Context, d *domain.Delivery) error

	// ActiveByDriver returns the driver's delivery in a non-terminal
	// state, or a not-found failure. At most one can exist.
	ActiveByDriver(ctx context.Context, driverID string) (*domain.Delivery, error)

	// ActiveByCustomer returns the started/in_progress delivery whose
	// stop list contains a stop for the customer.
	ActiveByCustomer(ctx context.Context, customerID string) (*domain.Delivery, error)

	// ListByDriver returns every delivery ever owned by the driver,
	// newest first, terminal ones included.
	ListByDriver(ctx context.Context, driverID string) ([]*domain.Delivery, error)
}
