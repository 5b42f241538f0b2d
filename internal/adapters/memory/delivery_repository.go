package memory

import (
	"context"
	"sync"

	"dispatch-tracking-service/internal/domain"
	"dispatch-tracking-service/internal/ports"
)

type DeliveryRepository struct {
	mu         sync.Mutex
	deliveries map[string]*domain.Delivery
}

func NewDeliveryRepository() *DeliveryRepository {
	return &DeliveryRepository{deliveries: make(map[string]*domain.Delivery)}
}

// clone keeps callers from mutating stored state outside Update.
func clone(d *domain.Delivery) *domain.Delivery {
	cp := *d
	cp.Stops = make([]domain.Stop, len(d.Stops))
	copy(cp.Stops, d.Stops)
	if d.DriverLocation != nil {
		pos := *d.DriverLocation
		cp.DriverLocation = &pos
	}
	return &cp
}

func (r *DeliveryRepository) Create(ctx context.Context, d *domain.Delivery) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.deliveries[d.ID]; exists {
		return domain.ErrInvalidInput("delivery id already exists")
	}
	r.deliveries[d.ID] = clone(d)
	return nil
}

func (r *DeliveryRepository) Get(ctx context.Context, id string) (*domain.Delivery, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	d, ok := r.deliveries[id]
	if !ok {
		return nil, domain.ErrNotFound("delivery", id)
	}
	return clone(d), nil
}

func (r *DeliveryRepository) Update(ctx context.Context, d *domain.Delivery) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.deliveries[d.ID]
	if !ok {
		return domain.ErrNotFound("delivery", d.ID)
	}
	if stored.Version != d.Version {
		return ports.ErrVersionConflict
	}
	d.Version++
	r.deliveries[d.ID] = clone(d)
	return nil
}

func (r *DeliveryRepository) ActiveByDriver(ctx context.Context, driverID string) (*domain.Delivery, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, d := range r.deliveries {
		if d.DriverID == driverID && !d.Status.Terminal() {
			return clone(d), nil
		}
	}
	return nil, domain.ErrNotFound("active delivery for driver", driverID)
}

func (r *DeliveryRepository) ActiveByCustomer(ctx context.Context, customerID string) (*domain.Delivery, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, d := range r.deliveries {
		if !d.Status.EnRoute() {
			continue
		}
		for i := range d.Stops {
			if d.Stops[i].CustomerID == customerID {
				return clone(d), nil
			}
		}
	}
	return nil, domain.ErrNotFound("active delivery for customer", customerID)
}

func (r *DeliveryRepository) ListByDriver(ctx context.Context, driverID string) ([]*domain.Delivery, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []*domain.Delivery
	for _, d := range r.deliveries {
		if d.DriverID == driverID {
			out = append(out, clone(d))
		}
	}
	return out, nil
}
