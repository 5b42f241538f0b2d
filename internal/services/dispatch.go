package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"dispatch-tracking-service/internal/domain"
	"dispatch-tracking-service/internal/geo"
	"dispatch-tracking-service/internal/ports"
)

// Radius of the vendor geofence a driver must be inside to start a
// physical delivery.
const StartRadiusMeters = 500

// How many times a state transition is re-read and re-applied when an
// optimistic update loses to a concurrent writer.
const maxUpdateRetries = 3

// Dispatcher owns the delivery lifecycle: creation with route
// sequencing and driver reservation, the geofenced start, per-stop
// completion, and cancellation. Every transition touches at most one
// delivery and one driver, delivery first.
type Dispatcher struct {
	deliveries ports.DeliveryRepository
	drivers    ports.DriverRegistry
	vendors    ports.VendorDirectory
	now        func() time.Time
}

func NewDispatcher(deliveries ports.DeliveryRepository, drivers ports.DriverRegistry, vendors ports.VendorDirectory) *Dispatcher {
	return &Dispatcher{
		deliveries: deliveries,
		drivers:    drivers,
		vendors:    vendors,
		now:        time.Now,
	}
}

// Create dispatches a driver for a vendor's pending stops.
//
// When rawStops is empty the stop candidates are built from the
// vendor's active subscriptions. Candidates without valid coordinates
// are filtered out; an empty set after filtering fails with
// no_valid_stops. The driver is claimed through the registry's atomic
// reserve, so two concurrent Creates for the same driver cannot both
// succeed.
func (d *Dispatcher) Create(ctx context.Context, vendorID, driverID string, rawStops []StopCandidate) (*domain.Delivery, error) {
	vendor, err := d.vendors.Get(ctx, vendorID)
	if err != nil {
		return nil, fmt.Errorf("create delivery: %w", err)
	}

	if len(rawStops) == 0 {
		subs, err := d.vendors.ActiveSubscriptions(ctx, vendorID)
		if err != nil {
			return nil, fmt.Errorf("create delivery: list subscriptions: %w", err)
		}
		for _, s := range subs {
			rawStops = append(rawStops, StopCandidate{
				CustomerID: s.CustomerID,
				Address:    s.Address,
				Location:   s.Location,
			})
		}
	}

	candidates := make([]StopCandidate, 0, len(rawStops))
	for _, c := range rawStops {
		if c.Location.Valid() && !c.Location.IsZero() {
			candidates = append(candidates, c)
		}
	}
	if len(candidates) == 0 {
		return nil, domain.ErrNoValidStops()
	}

	if _, err := d.drivers.Get(ctx, driverID); err != nil {
		return nil, fmt.Errorf("create delivery: %w", err)
	}

	reserved, err := d.drivers.Reserve(ctx, driverID)
	if err != nil {
		return nil, fmt.Errorf("create delivery: reserve driver: %w", err)
	}
	if !reserved {
		return nil, domain.ErrUnavailable(driverID)
	}

	now := d.now()
	stops, totalMeters, minutes := BuildStops(vendor.Location, candidates, now)

	delivery := &domain.Delivery{
		ID:                  uuid.NewString(),
		VendorID:            vendorID,
		DriverID:            driverID,
		Stops:               stops,
		Status:              domain.DeliveryAssigned,
		TotalDistanceMeters: totalMeters,
		EstimatedMinutes:    minutes,
		Version:             1,
		CreatedAt:           now,
	}

	if err := d.deliveries.Create(ctx, delivery); err != nil {
		// The driver was claimed for a delivery that never existed.
		if relErr := d.drivers.Release(ctx, driverID); relErr != nil {
			return nil, fmt.Errorf("create delivery: persist: %w (release driver: %v)", err, relErr)
		}
		return nil, fmt.Errorf("create delivery: persist: %w", err)
	}

	return delivery, nil
}

// GetDelivery fetches a delivery by id.
func (d *Dispatcher) GetDelivery(ctx context.Context, deliveryID string) (*domain.Delivery, error) {
	dl, err := d.deliveries.Get(ctx, deliveryID)
	if err != nil {
		return nil, fmt.Errorf("get delivery: %w", err)
	}
	return dl, nil
}

// Start moves an assigned delivery to started, gated by the 500 m
// vendor geofence. The out-of-range failure carries the measured
// distance rounded to whole meters.
func (d *Dispatcher) Start(ctx context.Context, deliveryID string, driverLocation domain.Coordinate) (*domain.Delivery, error) {
	if !driverLocation.Valid() {
		return nil, domain.ErrInvalidInput("driver location is not a valid coordinate")
	}

	return d.mutate(ctx, deliveryID, func(dl *domain.Delivery) error {
		if dl.Status != domain.DeliveryAssigned {
			return domain.ErrInvalidTransition(dl.Status, "start")
		}

		vendor, err := d.vendors.Get(ctx, dl.VendorID)
		if err != nil {
			return fmt.Errorf("start delivery: %w", err)
		}

		dist := geo.DistanceMeters(driverLocation, vendor.Location)
		if dist > StartRadiusMeters {
			return domain.ErrOutOfRange(dist, StartRadiusMeters)
		}

		now := d.now()
		dl.Status = domain.DeliveryStarted
		dl.StartedAt = &now
		dl.DriverLocation = &domain.DriverPosition{Location: driverLocation, At: now}
		return nil
	})
}

// CompleteStop records a per-stop outcome. The first stop to leave
// pending promotes the delivery to in_progress; the next pending stop
// becomes out_for_delivery; once every stop is terminal the delivery
// completes and the driver is released.
func (d *Dispatcher) CompleteStop(ctx context.Context, deliveryID, customerID string, delivered bool) (*domain.Delivery, error) {
	result, err := d.mutate(ctx, deliveryID, func(dl *domain.Delivery) error {
		if dl.Status.Terminal() || dl.Status == domain.DeliveryAssigned {
			return domain.ErrInvalidTransition(dl.Status, "complete a stop of")
		}

		stop := dl.StopFor(customerID)
		if stop == nil {
			return domain.ErrNotFound("stop for customer", customerID)
		}
		if stop.Status.Terminal() {
			return domain.ErrInvalidTransition(dl.Status, "re-complete a finished stop of")
		}

		now := d.now()
		if delivered {
			stop.Status = domain.StopDelivered
		} else {
			stop.Status = domain.StopFailed
		}
		stop.DeliveredAt = &now

		if dl.Status == domain.DeliveryStarted {
			dl.Status = domain.DeliveryInProgress
		}
		if next := dl.NextPendingStop(); next != nil {
			next.Status = domain.StopOutForDelivery
		}
		if dl.AllStopsTerminal() {
			dl.Status = domain.DeliveryCompleted
			dl.CompletedAt = &now
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if result.Status == domain.DeliveryCompleted {
		if err := d.drivers.Release(ctx, result.DriverID); err != nil {
			return nil, fmt.Errorf("complete stop: release driver: %w", err)
		}
	}
	return result, nil
}

// Cancel aborts a non-terminal delivery and frees its driver.
func (d *Dispatcher) Cancel(ctx context.Context, deliveryID string) (*domain.Delivery, error) {
	result, err := d.mutate(ctx, deliveryID, func(dl *domain.Delivery) error {
		if dl.Status.Terminal() {
			return domain.ErrInvalidTransition(dl.Status, "cancel")
		}
		now := d.now()
		dl.Status = domain.DeliveryCancelled
		dl.CompletedAt = &now
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := d.drivers.Release(ctx, result.DriverID); err != nil {
		return nil, fmt.Errorf("cancel delivery: release driver: %w", err)
	}
	return result, nil
}

// ProximityResult reports how far a driver's last-known position is
// from a vendor, and whether that is inside the start geofence.
type ProximityResult struct {
	WithinRange    bool
	DistanceMeters float64
}

// CheckProximity measures a driver's last-known position against the
// vendor geofence without changing any state.
func (d *Dispatcher) CheckProximity(ctx context.Context, driverID, vendorID string) (ProximityResult, error) {
	driver, err := d.drivers.Get(ctx, driverID)
	if err != nil {
		return ProximityResult{}, fmt.Errorf("check proximity: %w", err)
	}
	if !driver.HasReported() {
		return ProximityResult{}, domain.ErrInvalidInput("driver has not reported a location yet")
	}

	vendor, err := d.vendors.Get(ctx, vendorID)
	if err != nil {
		return ProximityResult{}, fmt.Errorf("check proximity: %w", err)
	}

	dist := geo.DistanceMeters(driver.Location, vendor.Location)
	return ProximityResult{
		WithinRange:    dist <= StartRadiusMeters,
		DistanceMeters: math.Round(dist),
	}, nil
}

// mutate loads the delivery, applies fn, and persists under the
// repository's optimistic version check, re-reading on conflict.
// Typed failures from fn abort without retrying.
func (d *Dispatcher) mutate(ctx context.Context, deliveryID string, fn func(*domain.Delivery) error) (*domain.Delivery, error) {
	var lastErr error
	for attempt := 0; attempt < maxUpdateRetries; attempt++ {
		dl, err := d.deliveries.Get(ctx, deliveryID)
		if err != nil {
			return nil, fmt.Errorf("load delivery: %w", err)
		}

		if err := fn(dl); err != nil {
			return nil, err
		}

		err = d.deliveries.Update(ctx, dl)
		if err == nil {
			return dl, nil
		}
		if !errors.Is(err, ports.ErrVersionConflict) {
			return nil, fmt.Errorf("update delivery: %w", err)
		}
		lastErr = err
	}
	return nil, fmt.Errorf("update delivery: %w", lastErr)
}
