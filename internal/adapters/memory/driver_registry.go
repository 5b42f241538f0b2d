// Package memory provides mutex-guarded in-memory adapters for every
// port. They back the service tests and small single-process runs.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"dispatch-tracking-service/internal/domain"
	"dispatch-tracking-service/internal/ports"
)

type DriverRegistry struct {
	mu      sync.Mutex
	drivers map[string]*domain.Driver
}

func NewDriverRegistry(seed ...domain.Driver) *DriverRegistry {
	r := &DriverRegistry{drivers: make(map[string]*domain.Driver, len(seed))}
	for _, d := range seed {
		cp := d
		r.drivers[d.ID] = &cp
	}
	return r
}

func (r *DriverRegistry) List(ctx context.Context, filter ports.DriverFilter) ([]domain.Driver, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]domain.Driver, 0, len(r.drivers))
	for _, d := range r.drivers {
		if filter.OnlyAvailable && (!d.Available || !d.HasReported()) {
			continue
		}
		out = append(out, *d)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Rating != out[j].Rating {
			return out[i].Rating > out[j].Rating
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *DriverRegistry) Get(ctx context.Context, driverID string) (domain.Driver, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	d, ok := r.drivers[driverID]
	if !ok {
		return domain.Driver{}, domain.ErrNotFound("driver", driverID)
	}
	return *d, nil
}

// Reserve flips available to false only if it is currently true, under
// the registry lock. The check and the write are one critical section.
func (r *DriverRegistry) Reserve(ctx context.Context, driverID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	d, ok := r.drivers[driverID]
	if !ok {
		return false, domain.ErrNotFound("driver", driverID)
	}
	if !d.Available {
		return false, nil
	}
	d.Available = false
	return true, nil
}

func (r *DriverRegistry) Release(ctx context.Context, driverID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	d, ok := r.drivers[driverID]
	if !ok {
		return domain.ErrNotFound("driver", driverID)
	}
	d.Available = true
	return nil
}

func (r *DriverRegistry) UpdateLocation(ctx context.Context, driverID string, loc domain.Coordinate, at time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	d, ok := r.drivers[driverID]
	if !ok {
		return false, domain.ErrNotFound("driver", driverID)
	}
	if !d.LocationAt.IsZero() && !at.After(d.LocationAt) {
		return false, nil
	}
	d.Location = loc
	d.LocationAt = at
	return true, nil
}
