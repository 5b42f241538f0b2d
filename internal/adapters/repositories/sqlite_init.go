package repositories

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

// Initialize the SQLite database schema.
func InitSchema(db *sql.DB) error {
	if db == nil {
		return errors.New("init schema: DB is nil")
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	createDriversQuery := `
	CREATE TABLE IF NOT EXISTS drivers (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL DEFAULT '',
		contact TEXT NOT NULL DEFAULT '',
		vehicle TEXT NOT NULL DEFAULT '',
		rating REAL NOT NULL DEFAULT 0,
		available INTEGER NOT NULL DEFAULT 1,
		lat REAL NOT NULL DEFAULT 0,
		lon REAL NOT NULL DEFAULT 0,
		location_at_ms INTEGER NOT NULL DEFAULT 0
	);
	`

	createVendorsQuery := `
	CREATE TABLE IF NOT EXISTS vendors (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL DEFAULT '',
		lat REAL NOT NULL,
		lon REAL NOT NULL
	);
	`

	createSubscriptionsQuery := `
	CREATE TABLE IF NOT EXISTS subscriptions (
		vendor_id TEXT NOT NULL,
		customer_id TEXT NOT NULL,
		address TEXT NOT NULL DEFAULT '',
		lat REAL NOT NULL DEFAULT 0,
		lon REAL NOT NULL DEFAULT 0,
		active INTEGER NOT NULL DEFAULT 1,
		PRIMARY KEY (vendor_id, customer_id)
	);
	`

	// Stops are denormalized into the delivery row as JSON: the
	// delivery is the unit of consistency, there is no stop table.
	createDeliveriesQuery := `
	CREATE TABLE IF NOT EXISTS deliveries (
		id TEXT PRIMARY KEY,
		vendor_id TEXT NOT NULL,
		driver_id TEXT NOT NULL,
		status TEXT NOT NULL,
		stops TEXT NOT NULL,
		total_distance_m REAL NOT NULL DEFAULT 0,
		estimated_minutes INTEGER NOT NULL DEFAULT 0,
		started_at_ms INTEGER,
		completed_at_ms INTEGER,
		driver_lat REAL,
		driver_lon REAL,
		driver_location_at_ms INTEGER,
		version INTEGER NOT NULL,
		created_at_ms INTEGER NOT NULL
	);
	`

	createIndexQuery := `
	CREATE INDEX IF NOT EXISTS idx_deliveries_driver_status
    ON deliveries(driver_id, status);
	`

	statements := []string{
		createDriversQuery,
		createVendorsQuery,
		createSubscriptionsQuery,
		createDeliveriesQuery,
		createIndexQuery,
	}

	for i, stmt := range statements {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("init schema: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init schema: commit tx: %w", err)
	}

	return nil
}

type DriverSeed struct {
	ID      string  `json:"id"`
	Name    string  `json:"name"`
	Contact string  `json:"contact"`
	Vehicle string  `json:"vehicle"`
	Rating  float64 `json:"rating"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
}

type VendorSeed struct {
	ID   string  `json:"id"`
	Name string  `json:"name"`
	Lat  float64 `json:"lat"`
	Lon  float64 `json:"lon"`
}

type SubscriptionSeed struct {
	VendorID   string  `json:"vendor_id"`
	CustomerID string  `json:"customer_id"`
	Address    string  `json:"address"`
	Lat        float64 `json:"lat"`
	Lon        float64 `json:"lon"`
}

type Seed struct {
	Vendors       []VendorSeed       `json:"vendors"`
	Drivers       []DriverSeed       `json:"drivers"`
	Subscriptions []SubscriptionSeed `json:"subscriptions"`
}

// Populate the database with vendor, driver, and subscription data
// from a JSON file. Existing driver rows keep their availability and
// last-known location; only descriptive fields are refreshed.
func SeedFromJSON(db *sql.DB, jsonPath string) error {
	bytes, err := os.ReadFile(jsonPath)
	if err != nil {
		return fmt.Errorf("seed dispatch data: read %q: %w", jsonPath, err)
	}

	var data Seed
	if err := json.Unmarshal(bytes, &data); err != nil {
		return fmt.Errorf("seed dispatch data: parse json: %w", err)
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("seed dispatch data: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, v := range data.Vendors {
		_, err := tx.Exec(`
		INSERT INTO vendors (id, name, lat, lon) VALUES (?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET name = excluded.name, lat = excluded.lat, lon = excluded.lon
		`, v.ID, v.Name, v.Lat, v.Lon)
		if err != nil {
			return fmt.Errorf("seed dispatch data: vendor %q: %w", v.ID, err)
		}
	}

	for _, d := range data.Drivers {
		_, err := tx.Exec(`
		INSERT INTO drivers (id, name, contact, vehicle, rating, lat, lon)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			name = excluded.name, contact = excluded.contact,
			vehicle = excluded.vehicle, rating = excluded.rating
		`, d.ID, d.Name, d.Contact, d.Vehicle, d.Rating, d.Lat, d.Lon)
		if err != nil {
			return fmt.Errorf("seed dispatch data: driver %q: %w", d.ID, err)
		}
	}

	for _, s := range data.Subscriptions {
		_, err := tx.Exec(`
		INSERT INTO subscriptions (vendor_id, customer_id, address, lat, lon, active)
		VALUES (?, ?, ?, ?, ?, 1)
		ON CONFLICT (vendor_id, customer_id) DO UPDATE SET
			address = excluded.address, lat = excluded.lat, lon = excluded.lon, active = 1
		`, s.VendorID, s.CustomerID, s.Address, s.Lat, s.Lon)
		if err != nil {
			return fmt.Errorf("seed dispatch data: subscription %q/%q: %w", s.VendorID, s.CustomerID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("seed dispatch data: commit tx: %w", err)
	}

	return nil
}
