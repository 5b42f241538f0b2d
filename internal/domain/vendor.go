package domain

// Vendor is the narrow dispatch view of a vendor: where deliveries
// depart from. Everything else about vendors lives in the vendor
// management collaborator.
type Vendor struct {
	ID       string
	Name     string
	Location Coordinate
}

// Subscription is one active customer subscription for a vendor, used
// to build stop candidates when the caller supplies no explicit stops.
type Subscription struct {
	CustomerID string
	Address    string
	Location   Coordinate
}
