package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"dispatch-tracking-service/internal/domain"
	"dispatch-tracking-service/internal/platform/obs"
	"dispatch-tracking-service/internal/ports"
)

// SQLite backed delivery repository. One row per delivery with the
// stop list denormalized as JSON; updates are optimistic on the
// version column.
type SqliteDeliveryRepository struct {
	DB *sql.DB
}

func NewSqliteDeliveryRepository(db *sql.DB) *SqliteDeliveryRepository {
	return &SqliteDeliveryRepository{DB: db}
}

const deliveryColumns = `id, vendor_id, driver_id, status, stops, total_distance_m, estimated_minutes,
	started_at_ms, completed_at_ms, driver_lat, driver_lon, driver_location_at_ms, version, created_at_ms`

func msOrNull(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UnixMilli()
}

func msToTime(ms sql.NullInt64) *time.Time {
	if !ms.Valid {
		return nil
	}
	t := time.UnixMilli(ms.Int64).UTC()
	return &t
}

func (r *SqliteDeliveryRepository) Create(ctx context.Context, d *domain.Delivery) (err error) {
	defer obs.Time(ctx, "delivery.create")(&err)

	stops, err := json.Marshal(d.Stops)
	if err != nil {
		return fmt.Errorf("create delivery: marshal stops: %w", err)
	}

	var driverLat, driverLon any
	var driverAt any
	if d.DriverLocation != nil {
		driverLat = d.DriverLocation.Location.Lat
		driverLon = d.DriverLocation.Location.Lon
		driverAt = d.DriverLocation.At.UnixMilli()
	}

	_, err = r.DB.ExecContext(ctx, `
	INSERT INTO deliveries (`+deliveryColumns+`)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, d.ID, d.VendorID, d.DriverID, string(d.Status), string(stops),
		d.TotalDistanceMeters, d.EstimatedMinutes,
		msOrNull(d.StartedAt), msOrNull(d.CompletedAt),
		driverLat, driverLon, driverAt,
		d.Version, d.CreatedAt.UnixMilli())
	if err != nil {
		return fmt.Errorf("create delivery: insert: %w", err)
	}
	return nil
}

func scanDelivery(row interface{ Scan(...any) error }) (*domain.Delivery, error) {
	var d domain.Delivery
	var status, stops string
	var startedMs, completedMs, driverAtMs sql.NullInt64
	var driverLat, driverLon sql.NullFloat64
	var createdMs int64

	err := row.Scan(&d.ID, &d.VendorID, &d.DriverID, &status, &stops,
		&d.TotalDistanceMeters, &d.EstimatedMinutes,
		&startedMs, &completedMs, &driverLat, &driverLon, &driverAtMs,
		&d.Version, &createdMs)
	if err != nil {
		return nil, err
	}

	d.Status = domain.DeliveryStatus(status)
	if err := json.Unmarshal([]byte(stops), &d.Stops); err != nil {
		return nil, fmt.Errorf("unmarshal stops: %w", err)
	}
	d.StartedAt = msToTime(startedMs)
	d.CompletedAt = msToTime(completedMs)
	d.CreatedAt = time.UnixMilli(createdMs).UTC()
	if driverLat.Valid && driverLon.Valid && driverAtMs.Valid {
		d.DriverLocation = &domain.DriverPosition{
			Location: domain.Coordinate{Lat: driverLat.Float64, Lon: driverLon.Float64},
			At:       time.UnixMilli(driverAtMs.Int64).UTC(),
		}
	}
	return &d, nil
}

func (r *SqliteDeliveryRepository) Get(ctx context.Context, id string) (*domain.Delivery, error) {
	row := r.DB.QueryRowContext(ctx, `SELECT `+deliveryColumns+` FROM deliveries WHERE id = ?`, id)
	d, err := scanDelivery(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound("delivery", id)
	}
	if err != nil {
		return nil, fmt.Errorf("get delivery: %w", err)
	}
	return d, nil
}

// Update writes the delivery iff the stored version still matches,
// then bumps it. A zero-row update on an existing row means a
// concurrent writer won.
func (r *SqliteDeliveryRepository) Update(ctx context.Context, d *domain.Delivery) (err error) {
	defer obs.Time(ctx, "delivery.update")(&err)

	stops, err := json.Marshal(d.Stops)
	if err != nil {
		return fmt.Errorf("update delivery: marshal stops: %w", err)
	}

	var driverLat, driverLon any
	var driverAt any
	if d.DriverLocation != nil {
		driverLat = d.DriverLocation.Location.Lat
		driverLon = d.DriverLocation.Location.Lon
		driverAt = d.DriverLocation.At.UnixMilli()
	}

	res, err := r.DB.ExecContext(ctx, `
	UPDATE deliveries SET
		status = ?, stops = ?, started_at_ms = ?, completed_at_ms = ?,
		driver_lat = ?, driver_lon = ?, driver_location_at_ms = ?,
		version = version + 1
	WHERE id = ? AND version = ?
	`, string(d.Status), string(stops),
		msOrNull(d.StartedAt), msOrNull(d.CompletedAt),
		driverLat, driverLon, driverAt,
		d.ID, d.Version)
	if err != nil {
		return fmt.Errorf("update delivery: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update delivery: rows affected: %w", err)
	}
	if n > 0 {
		d.Version++
		return nil
	}

	if _, err := r.Get(ctx, d.ID); err != nil {
		return err
	}
	return ports.ErrVersionConflict
}

var nonTerminalStatuses = []any{
	string(domain.DeliveryAssigned),
	string(domain.DeliveryStarted),
	string(domain.DeliveryInProgress),
}

func (r *SqliteDeliveryRepository) ActiveByDriver(ctx context.Context, driverID string) (*domain.Delivery, error) {
	args := append([]any{driverID}, nonTerminalStatuses...)
	row := r.DB.QueryRowContext(ctx, `
	SELECT `+deliveryColumns+` FROM deliveries
	WHERE driver_id = ? AND status IN (?, ?, ?)
	LIMIT 1
	`, args...)

	d, err := scanDelivery(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound("active delivery for driver", driverID)
	}
	if err != nil {
		return nil, fmt.Errorf("active delivery by driver: %w", err)
	}
	return d, nil
}

// ActiveByCustomer scans in-flight deliveries and matches the stop
// list in Go; the stop list is JSON inside the row, not a table.
func (r *SqliteDeliveryRepository) ActiveByCustomer(ctx context.Context, customerID string) (*domain.Delivery, error) {
	rows, err := r.DB.QueryContext(ctx, `
	SELECT `+deliveryColumns+` FROM deliveries
	WHERE status IN (?, ?)
	`, string(domain.DeliveryStarted), string(domain.DeliveryInProgress))
	if err != nil {
		return nil, fmt.Errorf("active delivery by customer: query: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		d, err := scanDelivery(rows)
		if err != nil {
			return nil, fmt.Errorf("active delivery by customer: scan: %w", err)
		}
		if d.StopFor(customerID) != nil {
			return d, nil
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("active delivery by customer: row iteration: %w", err)
	}
	return nil, domain.ErrNotFound("active delivery for customer", customerID)
}

func (r *SqliteDeliveryRepository) ListByDriver(ctx context.Context, driverID string) ([]*domain.Delivery, error) {
	rows, err := r.DB.QueryContext(ctx, `
	SELECT `+deliveryColumns+` FROM deliveries
	WHERE driver_id = ?
	ORDER BY created_at_ms DESC
	`, driverID)
	if err != nil {
		return nil, fmt.Errorf("list deliveries by driver: query: %w", err)
	}
	defer rows.Close()

	var out []*domain.Delivery
	for rows.Next() {
		d, err := scanDelivery(rows)
		if err != nil {
			return nil, fmt.Errorf("list deliveries by driver: scan: %w", err)
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list deliveries by driver: row iteration: %w", err)
	}
	return out, nil
}
