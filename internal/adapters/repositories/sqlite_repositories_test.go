package repositories

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"dispatch-tracking-service/internal/domain"
	"dispatch-tracking-service/internal/ports"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	// One in-memory database per test, not per pooled connection.
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	if err := InitSchema(db); err != nil {
		t.Fatalf("init schema: %v", err)
	}
	return db
}

func seedTestData(t *testing.T, db *sql.DB) {
	t.Helper()

	seed := `{
		"vendors": [{"id": "ven-1", "name": "Cotton Kitchen", "lat": 19.0760, "lon": 72.8777}],
		"drivers": [
			{"id": "drv-1", "name": "Asha", "contact": "+91-900", "vehicle": "bike", "rating": 4.7, "lat": 19.0761, "lon": 72.8778},
			{"id": "drv-2", "name": "Ravi", "vehicle": "scooter", "rating": 4.1}
		],
		"subscriptions": [
			{"vendor_id": "ven-1", "customer_id": "cust-a", "address": "12 Hill Rd", "lat": 19.05, "lon": 72.83},
			{"vendor_id": "ven-1", "customer_id": "cust-b", "address": "3 Lake View", "lat": 19.11, "lon": 72.86}
		]
	}`

	path := filepath.Join(t.TempDir(), "seed.json")
	if err := os.WriteFile(path, []byte(seed), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := SeedFromJSON(db, path); err != nil {
		t.Fatalf("seed: %v", err)
	}
}

func TestSqliteDriverRegistryReserve(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	seedTestData(t, db)
	reg := NewSqliteDriverRegistry(db)

	ok, err := reg.Reserve(ctx, "drv-1")
	if err != nil || !ok {
		t.Fatalf("first reserve: ok=%v err=%v", ok, err)
	}
	ok, err = reg.Reserve(ctx, "drv-1")
	if err != nil || ok {
		t.Fatalf("second reserve should lose: ok=%v err=%v", ok, err)
	}
	if _, err := reg.Reserve(ctx, "ghost"); domain.KindOf(err) != domain.KindNotFound {
		t.Fatalf("unknown driver: %v", err)
	}

	if err := reg.Release(ctx, "drv-1"); err != nil {
		t.Fatal(err)
	}
	if err := reg.Release(ctx, "drv-1"); err != nil {
		t.Fatalf("release is idempotent: %v", err)
	}
	if ok, _ := reg.Reserve(ctx, "drv-1"); !ok {
		t.Fatal("released driver should be reservable again")
	}
}

func TestSqliteDriverRegistryListOnlyAvailable(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	seedTestData(t, db)
	reg := NewSqliteDriverRegistry(db)

	// drv-2 is available but has never reported a position.
	listed, err := reg.List(ctx, ports.DriverFilter{OnlyAvailable: true})
	if err != nil {
		t.Fatal(err)
	}
	if len(listed) != 1 || listed[0].ID != "drv-1" {
		t.Fatalf("availability listing = %+v, want only drv-1", listed)
	}

	all, err := reg.List(ctx, ports.DriverFilter{})
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 2 {
		t.Fatalf("unfiltered listing has %d drivers, want 2", len(all))
	}
}

func TestSqliteDriverRegistryUpdateLocationMonotonic(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	seedTestData(t, db)
	reg := NewSqliteDriverRegistry(db)

	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	loc1 := domain.Coordinate{Lat: 19.08, Lon: 72.86}
	if ok, err := reg.UpdateLocation(ctx, "drv-2", loc1, base); err != nil || !ok {
		t.Fatalf("first report: ok=%v err=%v", ok, err)
	}

	// Stale report must be dropped, not applied.
	if ok, err := reg.UpdateLocation(ctx, "drv-2", domain.Coordinate{Lat: 1, Lon: 1}, base.Add(-time.Minute)); err != nil || ok {
		t.Fatalf("stale report: ok=%v err=%v", ok, err)
	}

	d, err := reg.Get(ctx, "drv-2")
	if err != nil {
		t.Fatal(err)
	}
	if d.Location != loc1 || !d.LocationAt.Equal(base) {
		t.Fatalf("driver record = %+v at %v, want %+v at %v", d.Location, d.LocationAt, loc1, base)
	}
}

func testDelivery(now time.Time) *domain.Delivery {
	return &domain.Delivery{
		ID:       "dl-1",
		VendorID: "ven-1",
		DriverID: "drv-1",
		Stops: []domain.Stop{
			{CustomerID: "cust-a", Address: "12 Hill Rd", Location: domain.Coordinate{Lat: 19.05, Lon: 72.83}, DeliveryOrder: 1, EstimatedArrival: now.Add(15 * time.Minute), Status: domain.StopPending},
			{CustomerID: "cust-b", Address: "3 Lake View", Location: domain.Coordinate{Lat: 19.11, Lon: 72.86}, DeliveryOrder: 2, EstimatedArrival: now.Add(30 * time.Minute), Status: domain.StopPending},
		},
		Status:              domain.DeliveryAssigned,
		TotalDistanceMeters: 9400,
		EstimatedMinutes:    39,
		Version:             1,
		CreatedAt:           now,
	}
}

func TestSqliteDeliveryRepositoryRoundtrip(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	repo := NewSqliteDeliveryRepository(db)

	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	dl := testDelivery(now)
	if err := repo.Create(ctx, dl); err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := repo.Get(ctx, "dl-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Status != domain.DeliveryAssigned || got.Version != 1 {
		t.Fatalf("got %+v", got)
	}
	if len(got.Stops) != 2 || got.Stops[1].CustomerID != "cust-b" {
		t.Fatalf("stops did not roundtrip: %+v", got.Stops)
	}
	if !got.Stops[0].EstimatedArrival.Equal(now.Add(15 * time.Minute)) {
		t.Fatalf("ETA did not roundtrip: %v", got.Stops[0].EstimatedArrival)
	}
	if got.DriverLocation != nil {
		t.Fatalf("no position was stored, got %+v", got.DriverLocation)
	}

	if _, err := repo.Get(ctx, "ghost"); domain.KindOf(err) != domain.KindNotFound {
		t.Fatalf("unknown delivery: %v", err)
	}
}

func TestSqliteDeliveryRepositoryOptimisticUpdate(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	repo := NewSqliteDeliveryRepository(db)

	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	if err := repo.Create(ctx, testDelivery(now)); err != nil {
		t.Fatal(err)
	}

	first, _ := repo.Get(ctx, "dl-1")
	second, _ := repo.Get(ctx, "dl-1")

	startAt := now.Add(5 * time.Minute)
	first.Status = domain.DeliveryStarted
	first.StartedAt = &startAt
	first.DriverLocation = &domain.DriverPosition{Location: domain.Coordinate{Lat: 19.076, Lon: 72.8777}, At: startAt}
	if err := repo.Update(ctx, first); err != nil {
		t.Fatalf("first update: %v", err)
	}
	if first.Version != 2 {
		t.Fatalf("version = %d, want 2", first.Version)
	}

	// The stale reader must lose.
	second.Status = domain.DeliveryCancelled
	if err := repo.Update(ctx, second); !errors.Is(err, ports.ErrVersionConflict) {
		t.Fatalf("stale update: %v, want version conflict", err)
	}

	got, _ := repo.Get(ctx, "dl-1")
	if got.Status != domain.DeliveryStarted || got.StartedAt == nil || got.DriverLocation == nil {
		t.Fatalf("stored state = %+v", got)
	}
}

func TestSqliteDeliveryRepositoryQueries(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	repo := NewSqliteDeliveryRepository(db)

	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	dl := testDelivery(now)
	if err := repo.Create(ctx, dl); err != nil {
		t.Fatal(err)
	}

	older := testDelivery(now.Add(-time.Hour))
	older.ID = "dl-0"
	older.Status = domain.DeliveryCompleted
	if err := repo.Create(ctx, older); err != nil {
		t.Fatal(err)
	}

	active, err := repo.ActiveByDriver(ctx, "drv-1")
	if err != nil {
		t.Fatal(err)
	}
	if active.ID != "dl-1" {
		t.Fatalf("active = %q, want dl-1", active.ID)
	}
	if _, err := repo.ActiveByDriver(ctx, "ghost"); domain.KindOf(err) != domain.KindNotFound {
		t.Fatalf("no active delivery: %v", err)
	}

	// Customers only see started/in_progress runs.
	if _, err := repo.ActiveByCustomer(ctx, "cust-a"); domain.KindOf(err) != domain.KindNotFound {
		t.Fatalf("assigned run should be invisible: %v", err)
	}
	got, _ := repo.Get(ctx, "dl-1")
	got.Status = domain.DeliveryStarted
	if err := repo.Update(ctx, got); err != nil {
		t.Fatal(err)
	}
	byCustomer, err := repo.ActiveByCustomer(ctx, "cust-a")
	if err != nil {
		t.Fatal(err)
	}
	if byCustomer.ID != "dl-1" {
		t.Fatalf("by customer = %q, want dl-1", byCustomer.ID)
	}

	history, err := repo.ListByDriver(ctx, "drv-1")
	if err != nil {
		t.Fatal(err)
	}
	if len(history) != 2 || history[0].ID != "dl-1" || history[1].ID != "dl-0" {
		t.Fatalf("history order wrong: %+v", history)
	}
}
