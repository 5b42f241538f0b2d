package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"dispatch-tracking-service/internal/domain"
)

// SQLite backed read adapter over the vendor and subscription tables
// maintained by the vendor-management collaborator.
type SqliteVendorDirectory struct {
	DB *sql.DB
}

func NewSqliteVendorDirectory(db *sql.DB) *SqliteVendorDirectory {
	return &SqliteVendorDirectory{DB: db}
}

func (r *SqliteVendorDirectory) Get(ctx context.Context, vendorID string) (domain.Vendor, error) {
	var v domain.Vendor
	err := r.DB.QueryRowContext(ctx, `
	SELECT id, name, lat, lon FROM vendors WHERE id = ?
	`, vendorID).Scan(&v.ID, &v.Name, &v.Location.Lat, &v.Location.Lon)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Vendor{}, domain.ErrNotFound("vendor", vendorID)
	}
	if err != nil {
		return domain.Vendor{}, fmt.Errorf("get vendor: %w", err)
	}
	return v, nil
}

func (r *SqliteVendorDirectory) ActiveSubscriptions(ctx context.Context, vendorID string) ([]domain.Subscription, error) {
	if _, err := r.Get(ctx, vendorID); err != nil {
		return nil, err
	}

	rows, err := r.DB.QueryContext(ctx, `
	SELECT customer_id, address, lat, lon FROM subscriptions
	WHERE vendor_id = ? AND active = 1
	ORDER BY customer_id
	`, vendorID)
	if err != nil {
		return nil, fmt.Errorf("list subscriptions: query: %w", err)
	}
	defer rows.Close()

	var out []domain.Subscription
	for rows.Next() {
		var s domain.Subscription
		if err := rows.Scan(&s.CustomerID, &s.Address, &s.Location.Lat, &s.Location.Lon); err != nil {
			return nil, fmt.Errorf("list subscriptions: scan: %w", err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list subscriptions: row iteration: %w", err)
	}
	return out, nil
}
