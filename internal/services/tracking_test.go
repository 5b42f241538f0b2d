package services

import (
	"context"
	"testing"
	"time"

	"dispatch-tracking-service/internal/adapters/memory"
	"dispatch-tracking-service/internal/domain"
)

func TestActiveDeliveryForDriver(t *testing.T) {
	ctx := context.Background()
	d, drivers, deliveries := newTestDispatcher()
	vendors := memory.NewVendorDirectory(domain.Vendor{ID: "ven-1", Name: "Cotton Kitchen", Location: vendorLoc})
	tracker := NewTracker(deliveries, drivers, vendors, nil)

	if _, err := tracker.ActiveDeliveryForDriver(ctx, "drv-1"); domain.KindOf(err) != domain.KindNotFound {
		t.Fatalf("no active delivery: kind = %q (%v)", domain.KindOf(err), err)
	}

	dl, err := d.Create(ctx, "ven-1", "drv-1", testCandidates())
	if err != nil {
		t.Fatal(err)
	}

	active, err := tracker.ActiveDeliveryForDriver(ctx, "drv-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if active.ID != dl.ID {
		t.Fatalf("active delivery = %q, want %q", active.ID, dl.ID)
	}
}

func TestTrackingForCustomer(t *testing.T) {
	ctx := context.Background()
	d, drivers, deliveries := newTestDispatcher()
	vendors := memory.NewVendorDirectory(domain.Vendor{ID: "ven-1", Name: "Cotton Kitchen", Location: vendorLoc})
	cache := memory.NewPositionCache()
	tracker := NewTracker(deliveries, drivers, vendors, cache)

	// No delivery in flight for this customer yet.
	if _, err := tracker.TrackingForCustomer(ctx, "cust-a"); domain.KindOf(err) != domain.KindNotFound {
		t.Fatalf("kind = %q, want not_found (%v)", domain.KindOf(err), err)
	}

	dl, err := d.Create(ctx, "ven-1", "drv-1", testCandidates())
	if err != nil {
		t.Fatal(err)
	}

	// Assigned is not trackable by customers: the run has not started.
	if _, err := tracker.TrackingForCustomer(ctx, "cust-a"); domain.KindOf(err) != domain.KindNotFound {
		t.Fatalf("assigned delivery should be invisible, got %v", err)
	}

	if _, err := d.Start(ctx, dl.ID, vendorLoc); err != nil {
		t.Fatal(err)
	}

	view, err := tracker.TrackingForCustomer(ctx, "cust-a")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if view.DriverName != "Asha" || view.DriverVehicle != "bike" {
		t.Errorf("driver identity = %q/%q, want Asha/bike", view.DriverName, view.DriverVehicle)
	}
	if view.VendorName != "Cotton Kitchen" {
		t.Errorf("vendor name = %q", view.VendorName)
	}
	stop := dl.StopFor("cust-a")
	if view.DeliveryOrder != stop.DeliveryOrder {
		t.Errorf("delivery order = %d, want %d", view.DeliveryOrder, stop.DeliveryOrder)
	}
	if !view.EstimatedArrival.Equal(stop.EstimatedArrival) {
		t.Errorf("ETA = %v, want %v", view.EstimatedArrival, stop.EstimatedArrival)
	}
	if view.DriverLocation == nil {
		t.Fatal("expected a driver position from the started delivery")
	}

	// A fresher cached position overrides the persisted one.
	fresher := domain.DriverPosition{
		Location: domain.Coordinate{Lat: 19.09, Lon: 72.865},
		At:       view.DriverLocation.At.Add(time.Minute),
	}
	if err := cache.Put(ctx, "drv-1", fresher); err != nil {
		t.Fatal(err)
	}
	view, err = tracker.TrackingForCustomer(ctx, "cust-a")
	if err != nil {
		t.Fatal(err)
	}
	if view.DriverLocation.Location != fresher.Location {
		t.Errorf("position = %+v, want cached %+v", view.DriverLocation.Location, fresher.Location)
	}
}

func TestHistoryForDriverNewestFirst(t *testing.T) {
	ctx := context.Background()
	d, drivers, deliveries := newTestDispatcher()
	vendors := memory.NewVendorDirectory(domain.Vendor{ID: "ven-1", Name: "Cotton Kitchen", Location: vendorLoc})
	tracker := NewTracker(deliveries, drivers, vendors, nil)

	base := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	clock := base
	d.now = func() time.Time { return clock }

	first, err := d.Create(ctx, "ven-1", "drv-1", testCandidates())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := d.Cancel(ctx, first.ID); err != nil {
		t.Fatal(err)
	}

	clock = base.Add(time.Hour)
	second, err := d.Create(ctx, "ven-1", "drv-1", []StopCandidate{
		{CustomerID: "cust-z", Address: "  22   Ring   Road ", Location: domain.Coordinate{Lat: 19.02, Lon: 72.84}},
	})
	if err != nil {
		t.Fatal(err)
	}

	history, err := tracker.HistoryForDriver(ctx, "drv-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(history))
	}
	if history[0].DeliveryID != second.ID || history[1].DeliveryID != first.ID {
		t.Fatalf("history out of order: %q then %q", history[0].DeliveryID, history[1].DeliveryID)
	}
	if history[1].Status != domain.DeliveryCancelled {
		t.Errorf("terminal delivery missing from history: %q", history[1].Status)
	}

	// Addresses are display-formatted, coordinates untouched.
	got := history[0].Stops[0]
	if got.Address != "22 Ring Road" {
		t.Errorf("address = %q, want %q", got.Address, "22 Ring Road")
	}
	if got.Location != (domain.Coordinate{Lat: 19.02, Lon: 72.84}) {
		t.Errorf("coordinate changed: %+v", got.Location)
	}
}

func TestHistoryForUnknownDriver(t *testing.T) {
	ctx := context.Background()
	_, drivers, deliveries := newTestDispatcher()
	vendors := memory.NewVendorDirectory()
	tracker := NewTracker(deliveries, drivers, vendors, nil)

	if _, err := tracker.HistoryForDriver(ctx, "ghost"); domain.KindOf(err) != domain.KindNotFound {
		t.Fatalf("kind = %q, want not_found (%v)", domain.KindOf(err), err)
	}
}

func TestDisplayAddress(t *testing.T) {
	if got := DisplayAddress("  12   Hill\tRoad  "); got != "12 Hill Road" {
		t.Fatalf("DisplayAddress = %q", got)
	}
}
