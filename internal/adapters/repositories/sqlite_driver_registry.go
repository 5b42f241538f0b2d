package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"dispatch-tracking-service/internal/domain"
	"dispatch-tracking-service/internal/ports"
)

// SQLite backed driver registry. The reserve path is a single
// conditional UPDATE: the availability check and the flip are one
// statement, so concurrent dispatches serialize on the row.
type SqliteDriverRegistry struct {
	DB *sql.DB
}

func NewSqliteDriverRegistry(db *sql.DB) *SqliteDriverRegistry {
	return &SqliteDriverRegistry{DB: db}
}

const sqliteDriverColumns = `id, name, contact, vehicle, rating, available, lat, lon, location_at_ms`

func scanSqliteDriver(row interface{ Scan(...any) error }) (domain.Driver, error) {
	var d domain.Driver
	var available int
	var locationAtMs int64

	err := row.Scan(&d.ID, &d.Name, &d.Contact, &d.Vehicle, &d.Rating, &available, &d.Location.Lat, &d.Location.Lon, &locationAtMs)
	if err != nil {
		return domain.Driver{}, err
	}
	d.Available = available != 0
	if locationAtMs > 0 {
		d.LocationAt = time.UnixMilli(locationAtMs).UTC()
	}
	return d, nil
}

func (r *SqliteDriverRegistry) List(ctx context.Context, filter ports.DriverFilter) ([]domain.Driver, error) {
	q := `SELECT ` + sqliteDriverColumns + ` FROM drivers`
	if filter.OnlyAvailable {
		// A (0,0) coordinate means "never reported" and is excluded
		// from availability listings.
		q += ` WHERE available = 1 AND NOT (lat = 0 AND lon = 0)`
	}
	q += ` ORDER BY rating DESC, id`

	rows, err := r.DB.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list drivers: query: %w", err)
	}
	defer rows.Close()

	var out []domain.Driver
	for rows.Next() {
		d, err := scanSqliteDriver(rows)
		if err != nil {
			return nil, fmt.Errorf("list drivers: scan: %w", err)
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list drivers: row iteration: %w", err)
	}
	return out, nil
}

func (r *SqliteDriverRegistry) Get(ctx context.Context, driverID string) (domain.Driver, error) {
	row := r.DB.QueryRowContext(ctx, `SELECT `+sqliteDriverColumns+` FROM drivers WHERE id = ?`, driverID)
	d, err := scanSqliteDriver(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Driver{}, domain.ErrNotFound("driver", driverID)
	}
	if err != nil {
		return domain.Driver{}, fmt.Errorf("get driver: %w", err)
	}
	return d, nil
}

// Reserve claims the driver with one conditional update. Zero rows
// affected means either an unknown driver or one already reserved.
func (r *SqliteDriverRegistry) Reserve(ctx context.Context, driverID string) (bool, error) {
	res, err := r.DB.ExecContext(ctx, `UPDATE drivers SET available = 0 WHERE id = ? AND available = 1`, driverID)
	if err != nil {
		return false, fmt.Errorf("reserve driver: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("reserve driver: rows affected: %w", err)
	}
	if n > 0 {
		return true, nil
	}

	if _, err := r.Get(ctx, driverID); err != nil {
		return false, err
	}
	return false, nil
}

func (r *SqliteDriverRegistry) Release(ctx context.Context, driverID string) error {
	res, err := r.DB.ExecContext(ctx, `UPDATE drivers SET available = 1 WHERE id = ?`, driverID)
	if err != nil {
		return fmt.Errorf("release driver: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("release driver: rows affected: %w", err)
	}
	if n == 0 {
		return domain.ErrNotFound("driver", driverID)
	}
	return nil
}

// UpdateLocation applies the report only when it is newer than the
// stored one, guarding against out-of-order delivery of pings.
func (r *SqliteDriverRegistry) UpdateLocation(ctx context.Context, driverID string, loc domain.Coordinate, at time.Time) (bool, error) {
	res, err := r.DB.ExecContext(ctx, `
	UPDATE drivers SET lat = ?, lon = ?, location_at_ms = ?
	WHERE id = ? AND location_at_ms < ?
	`, loc.Lat, loc.Lon, at.UnixMilli(), driverID, at.UnixMilli())
	if err != nil {
		return false, fmt.Errorf("update driver location: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("update driver location: rows affected: %w", err)
	}
	if n > 0 {
		return true, nil
	}

	if _, err := r.Get(ctx, driverID); err != nil {
		return false, err
	}
	return false, nil
}
