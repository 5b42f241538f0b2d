package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"dispatch-tracking-service/internal/domain"
	"dispatch-tracking-service/internal/platform/obs"
	"dispatch-tracking-service/internal/ports"
)

// SQLDriverRegistry is the Postgres variant of the driver registry,
// for deployments where driver rows are shared with the driver
// management service. Schema is managed externally.
type SQLDriverRegistry struct {
	DB *sql.DB
}

func NewSQLDriverRegistry(db *sql.DB) *SQLDriverRegistry {
	return &SQLDriverRegistry{DB: db}
}

func (r *SQLDriverRegistry) List(ctx context.Context, filter ports.DriverFilter) (_ []domain.Driver, err error) {
	defer obs.Time(ctx, "drivers.list")(&err)

	if r.DB == nil {
		return nil, errors.New("driver registry: db is nil")
	}

	q := `
	SELECT id, name, contact, vehicle, rating, available, lat, lon, location_at
	FROM drivers
	`
	if filter.OnlyAvailable {
		q += ` WHERE available AND NOT (lat = 0 AND lon = 0)`
	}
	q += ` ORDER BY rating DESC, id`

	rows, err := r.DB.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list drivers: query: %w", err)
	}
	defer rows.Close()

	var out []domain.Driver
	for rows.Next() {
		var d domain.Driver
		var locationAt sql.NullTime
		if err := rows.Scan(&d.ID, &d.Name, &d.Contact, &d.Vehicle, &d.Rating, &d.Available, &d.Location.Lat, &d.Location.Lon, &locationAt); err != nil {
			return nil, fmt.Errorf("list drivers: scan: %w", err)
		}
		if locationAt.Valid {
			d.LocationAt = locationAt.Time
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list drivers: row iteration: %w", err)
	}
	return out, nil
}

func (r *SQLDriverRegistry) Get(ctx context.Context, driverID string) (domain.Driver, error) {
	var d domain.Driver
	var locationAt sql.NullTime
	err := r.DB.QueryRowContext(ctx, `
	SELECT id, name, contact, vehicle, rating, available, lat, lon, location_at
	FROM drivers WHERE id = $1
	`, driverID).Scan(&d.ID, &d.Name, &d.Contact, &d.Vehicle, &d.Rating, &d.Available, &d.Location.Lat, &d.Location.Lon, &locationAt)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Driver{}, domain.ErrNotFound("driver", driverID)
	}
	if err != nil {
		return domain.Driver{}, fmt.Errorf("get driver: %w", err)
	}
	if locationAt.Valid {
		d.LocationAt = locationAt.Time
	}
	return d, nil
}

// Reserve is one conditional update; the database serializes
// concurrent claims on the row, so exactly one caller wins.
func (r *SQLDriverRegistry) Reserve(ctx context.Context, driverID string) (_ bool, err error) {
	defer obs.Time(ctx, "drivers.reserve")(&err)

	res, err := r.DB.ExecContext(ctx, `
	UPDATE drivers SET available = false WHERE id = $1 AND available
	`, driverID)
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

func (r *SQLDriverRegistry) Release(ctx context.Context, driverID string) error {
	res, err := r.DB.ExecContext(ctx, `UPDATE drivers SET available = true WHERE id = $1`, driverID)
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

func (r *SQLDriverRegistry) UpdateLocation(ctx context.Context, driverID string, loc domain.Coordinate, at time.Time) (bool, error) {
	res, err := r.DB.ExecContext(ctx, `
	UPDATE drivers SET lat = $1, lon = $2, location_at = $3
	WHERE id = $4 AND (location_at IS NULL OR location_at < $3)
	`, loc.Lat, loc.Lon, at, driverID)
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
