package memory

import (
	"context"
	"sync"

	"dispatch-tracking-service/internal/domain"
)

type VendorDirectory struct {
	mu            sync.RWMutex
	vendors       map[string]domain.Vendor
	subscriptions map[string][]domain.Subscription
}

func NewVendorDirectory(vendors ...domain.Vendor) *VendorDirectory {
	d := &VendorDirectory{
		vendors:       make(map[string]domain.Vendor, len(vendors)),
		subscriptions: make(map[string][]domain.Subscription),
	}
	for _, v := range vendors {
		d.vendors[v.ID] = v
	}
	return d
}

func (d *VendorDirectory) SetSubscriptions(vendorID string, subs []domain.Subscription) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.subscriptions[vendorID] = subs
}

func (d *VendorDirectory) Get(ctx context.Context, vendorID string) (domain.Vendor, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	v, ok := d.vendors[vendorID]
	if !ok {
		return domain.Vendor{}, domain.ErrNotFound("vendor", vendorID)
	}
	return v, nil
}

func (d *VendorDirectory) ActiveSubscriptions(ctx context.Context, vendorID string) ([]domain.Subscription, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if _, ok := d.vendors[vendorID]; !ok {
		return nil, domain.ErrNotFound("vendor", vendorID)
	}
	return d.subscriptions[vendorID], nil
}
