package domain

import "time"

// Driver is the dispatch-relevant view of a delivery driver.
// Identity, vehicle and rating are owned by the driver-management
// collaborator; this core only flips Available and tracks Location.
type Driver struct {
	ID         string
	Name       string
	Contact    string
	Vehicle    string
	Rating     float64
	Available  bool
	Location   Coordinate
	LocationAt time.Time
}

// HasReported reports whether the driver has ever sent a position.
// A zero coordinate means no report yet and must not be ranked as a
// real position.
func (d Driver) HasReported() bool { return !d.Location.IsZero() }
