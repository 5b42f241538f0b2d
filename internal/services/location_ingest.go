package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"dispatch-tracking-service/internal/domain"
	"dispatch-tracking-service/internal/ports"
)

// Ingestor accepts periodic position reports from in-transit drivers
// and republishes them to the driver record, the active delivery, and
// the position cache. Ordering is by report timestamp, never by
// arrival order: stale reports are dropped, not applied.
type Ingestor struct {
	drivers    ports.DriverRegistry
	deliveries ports.DeliveryRepository
	positions  ports.PositionCache
	now        func() time.Time
}

// NewIngestor wires the ingest pipeline. positions may be nil when no
// cache is configured.
func NewIngestor(drivers ports.DriverRegistry, deliveries ports.DeliveryRepository, positions ports.PositionCache) *Ingestor {
	return &Ingestor{
		drivers:    drivers,
		deliveries: deliveries,
		positions:  positions,
		now:        time.Now,
	}
}

// ReportPosition applies one driver position report. The driver record
// and the active delivery (when one is started or in_progress) both
// receive the same timestamp; if either store already holds a newer
// report this one is silently discarded for that store.
func (in *Ingestor) ReportPosition(ctx context.Context, driverID string, loc domain.Coordinate, at time.Time) error {
	if !loc.Valid() {
		return domain.ErrInvalidInput("position report is not a valid coordinate")
	}
	if at.IsZero() {
		at = in.now()
	}

	applied, err := in.drivers.UpdateLocation(ctx, driverID, loc, at)
	if err != nil {
		return fmt.Errorf("report position: %w", err)
	}
	if !applied {
		// A newer report already landed; nothing to republish.
		return nil
	}

	if err := in.mirrorToActiveDelivery(ctx, driverID, loc, at); err != nil {
		return err
	}

	if in.positions != nil {
		pos := domain.DriverPosition{Location: loc, At: at}
		if err := in.positions.Put(ctx, driverID, pos); err != nil {
			// Cache is best-effort; tracking falls back to the store.
			log.Printf("position cache put failed: driver=%s err=%v", driverID, err)
		}
	}

	return nil
}

func (in *Ingestor) mirrorToActiveDelivery(ctx context.Context, driverID string, loc domain.Coordinate, at time.Time) error {
	dl, err := in.deliveries.ActiveByDriver(ctx, driverID)
	if err != nil {
		if domain.KindOf(err) == domain.KindNotFound {
			return nil
		}
		return fmt.Errorf("report position: find active delivery: %w", err)
	}
	if !dl.Status.EnRoute() {
		// Assigned but not yet started: the driver is not underway, so
		// the delivery keeps no position of its own yet.
		return nil
	}
	if dl.DriverLocation != nil && !at.After(dl.DriverLocation.At) {
		return nil
	}

	dl.DriverLocation = &domain.DriverPosition{Location: loc, At: at}
	if err := in.deliveries.Update(ctx, dl); err != nil {
		// Lost to a concurrent transition; the next report will carry
		// a fresher position anyway.
		log.Printf("mirror position skipped: delivery=%s err=%v", dl.ID, err)
	}
	return nil
}
