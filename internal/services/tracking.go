package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"dispatch-tracking-service/internal/domain"
	"dispatch-tracking-service/internal/ports"
)

// Tracker is the read side: resolves the currently relevant delivery
// for a driver or customer and serves its live position and ETA.
type Tracker struct {
	deliveries ports.DeliveryRepository
	drivers    ports.DriverRegistry
	vendors    ports.VendorDirectory
	positions  ports.PositionCache
}

// NewTracker wires the query side. positions may be nil.
func NewTracker(deliveries ports.DeliveryRepository, drivers ports.DriverRegistry, vendors ports.VendorDirectory, positions ports.PositionCache) *Tracker {
	return &Tracker{
		deliveries: deliveries,
		drivers:    drivers,
		vendors:    vendors,
		positions:  positions,
	}
}

// ActiveDeliveryForDriver returns the driver's non-terminal delivery.
func (t *Tracker) ActiveDeliveryForDriver(ctx context.Context, driverID string) (*domain.Delivery, error) {
	dl, err := t.deliveries.ActiveByDriver(ctx, driverID)
	if err != nil {
		return nil, fmt.Errorf("active delivery: %w", err)
	}
	return dl, nil
}

// CustomerTracking is the customer-facing live view of a delivery in
// flight: who is driving, where they were last seen, and when this
// customer's stop is expected.
type CustomerTracking struct {
	DeliveryID       string
	DeliveryStatus   domain.DeliveryStatus
	VendorID         string
	VendorName       string
	DriverID         string
	DriverName       string
	DriverContact    string
	DriverVehicle    string
	DriverLocation   *domain.DriverPosition
	EstimatedArrival time.Time
	DeliveryOrder    int
	StopStatus       domain.StopStatus
}

// TrackingForCustomer locates the started/in_progress delivery holding
// a stop for the customer. The freshest of the cached and persisted
// driver positions wins.
func (t *Tracker) TrackingForCustomer(ctx context.Context, customerID string) (*CustomerTracking, error) {
	dl, err := t.deliveries.ActiveByCustomer(ctx, customerID)
	if err != nil {
		return nil, fmt.Errorf("customer tracking: %w", err)
	}

	stop := dl.StopFor(customerID)
	if stop == nil {
		return nil, domain.ErrNotFound("stop for customer", customerID)
	}

	driver, err := t.drivers.Get(ctx, dl.DriverID)
	if err != nil {
		return nil, fmt.Errorf("customer tracking: %w", err)
	}

	tracking := &CustomerTracking{
		DeliveryID:       dl.ID,
		DeliveryStatus:   dl.Status,
		VendorID:         dl.VendorID,
		DriverID:         driver.ID,
		DriverName:       driver.Name,
		DriverContact:    driver.Contact,
		DriverVehicle:    driver.Vehicle,
		DriverLocation:   dl.DriverLocation,
		EstimatedArrival: stop.EstimatedArrival,
		DeliveryOrder:    stop.DeliveryOrder,
		StopStatus:       stop.Status,
	}

	if vendor, err := t.vendors.Get(ctx, dl.VendorID); err == nil {
		tracking.VendorName = vendor.Name
	}

	if t.positions != nil {
		if pos, ok, err := t.positions.Get(ctx, dl.DriverID); err == nil && ok {
			if tracking.DriverLocation == nil || pos.At.After(tracking.DriverLocation.At) {
				tracking.DriverLocation = &pos
			}
		}
	}

	return tracking, nil
}

// HistoryStop is a stop as shown in driver history: the address is
// display-formatted but the coordinate is preserved untouched.
type HistoryStop struct {
	CustomerID    string
	Address       string
	Location      domain.Coordinate
	DeliveryOrder int
	Status        domain.StopStatus
	DeliveredAt   *time.Time
}

// HistoryEntry is one past or present delivery in a driver's history.
type HistoryEntry struct {
	DeliveryID          string
	VendorID            string
	Status              domain.DeliveryStatus
	CreatedAt           time.Time
	StartedAt           *time.Time
	CompletedAt         *time.Time
	TotalDistanceMeters float64
	EstimatedMinutes    int
	Stops               []HistoryStop
}

// HistoryForDriver returns every delivery the driver has ever owned,
// newest first, terminal ones included.
func (t *Tracker) HistoryForDriver(ctx context.Context, driverID string) ([]HistoryEntry, error) {
	if _, err := t.drivers.Get(ctx, driverID); err != nil {
		return nil, fmt.Errorf("driver history: %w", err)
	}

	list, err := t.deliveries.ListByDriver(ctx, driverID)
	if err != nil {
		return nil, fmt.Errorf("driver history: %w", err)
	}

	sort.SliceStable(list, func(i, j int) bool {
		return list[i].CreatedAt.After(list[j].CreatedAt)
	})

	entries := make([]HistoryEntry, 0, len(list))
	for _, dl := range list {
		stops := make([]HistoryStop, 0, len(dl.Stops))
		for _, s := range dl.Stops {
			stops = append(stops, HistoryStop{
				CustomerID:    s.CustomerID,
				Address:       DisplayAddress(s.Address),
				Location:      s.Location,
				DeliveryOrder: s.DeliveryOrder,
				Status:        s.Status,
				DeliveredAt:   s.DeliveredAt,
			})
		}
		entries = append(entries, HistoryEntry{
			DeliveryID:          dl.ID,
			VendorID:            dl.VendorID,
			Status:              dl.Status,
			CreatedAt:           dl.CreatedAt,
			StartedAt:           dl.StartedAt,
			CompletedAt:         dl.CompletedAt,
			TotalDistanceMeters: dl.TotalDistanceMeters,
			EstimatedMinutes:    dl.EstimatedMinutes,
			Stops:               stops,
		})
	}

	return entries, nil
}

// DisplayAddress normalizes a free-text address for display: trimmed,
// with runs of whitespace collapsed. The geocoded coordinate stays the
// source of truth for routing.
func DisplayAddress(addr string) string {
	return strings.Join(strings.Fields(addr), " ")
}
