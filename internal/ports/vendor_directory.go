package ports

import (
	"context"

	"dispatch-tracking-service/internal/domain"
)

// Port: read-only view of the vendor-management collaborator.
type VendorDirectory interface {
	Get(ctx context.Context, vendorID string) (domain.Vendor, error)

	// ActiveSubscriptions lists the customers currently subscribed to
	// the vendor; used to build stop candidates when the caller does
	// not supply an explicit stop list.
	ActiveSubscriptions(ctx context.Context, vendorID string) ([]domain.Subscription, error)
}
