package domain

import "time"

type DeliveryStatus string

const (
	DeliveryAssigned   DeliveryStatus = "assigned"
	DeliveryStarted    DeliveryStatus = "started"
	DeliveryInProgress DeliveryStatus = "in_progress"
	DeliveryCompleted  DeliveryStatus = "completed"
	DeliveryCancelled  DeliveryStatus = "cancelled"
)

// Terminal reports whether no further transition is permitted.
func (s DeliveryStatus) Terminal() bool {
	return s == DeliveryCompleted || s == DeliveryCancelled
}

// EnRoute reports whether the driver is physically underway, which is
// when location reports are mirrored onto the delivery.
func (s DeliveryStatus) EnRoute() bool {
	return s == DeliveryStarted || s == DeliveryInProgress
}

type StopStatus string

const (
	StopPending        StopStatus = "pending"
	StopOutForDelivery StopStatus = "out_for_delivery"
	StopDelivered      StopStatus = "delivered"
	StopFailed         StopStatus = "failed"
)

// Terminal reports whether the stop has reached its final outcome.
func (s StopStatus) Terminal() bool { return s == StopDelivered || s == StopFailed }

// Stop is one customer destination within a multi-stop delivery run.
// DeliveryOrder is the 1-based visiting position and never changes
// after the route is sequenced.
type Stop struct {
	CustomerID       string     `json:"customer_id"`
	Address          string     `json:"address"`
	Location         Coordinate `json:"location"`
	DeliveryOrder    int        `json:"delivery_order"`
	EstimatedArrival time.Time  `json:"estimated_arrival"`
	Status           StopStatus `json:"status"`
	DeliveredAt      *time.Time `json:"delivered_at,omitempty"`
}

// DriverPosition is a timestamped coordinate as last reported by the
// driver. The delivery keeps its own copy, independent of the driver
// record, so tracking reads never race driver-registry writes.
type DriverPosition struct {
	Location Coordinate `json:"location"`
	At       time.Time  `json:"at"`
}

// Delivery is one dispatch run: a driver visiting an ordered list of
// stops for a vendor. The stop list is created once by the route
// sequencer and never reordered. Version supports optimistic updates.
type Delivery struct {
	ID                  string
	VendorID            string
	DriverID            string
	Stops               []Stop
	Status              DeliveryStatus
	StartedAt           *time.Time
	CompletedAt         *time.Time
	TotalDistanceMeters float64
	EstimatedMinutes    int
	DriverLocation      *DriverPosition
	Version             int64
	CreatedAt           time.Time
}

// StopFor returns the stop addressed to the given customer, or nil.
func (d *Delivery) StopFor(customerID string) *Stop {
	for i := range d.Stops {
		if d.Stops[i].CustomerID == customerID {
			return &d.Stops[i]
		}
	}
	return nil
}

// NextPendingStop returns the pending stop with the lowest visiting
// order, or nil when every stop has left the pending state.
func (d *Delivery) NextPendingStop() *Stop {
	var next *Stop
	for i := range d.Stops {
		s := &d.Stops[i]
		if s.Status != StopPending {
			continue
		}
		if next == nil || s.DeliveryOrder < next.DeliveryOrder {
			next = s
		}
	}
	return next
}

// AllStopsTerminal reports whether every stop is delivered or failed.
func (d *Delivery) AllStopsTerminal() bool {
	for i := range d.Stops {
		if !d.Stops[i].Status.Terminal() {
			return false
		}
	}
	return len(d.Stops) > 0
}
