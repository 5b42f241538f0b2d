// Package geo provides great-circle distance math for dispatch
// decisions. Malformed coordinates degrade to a sentinel distance
// instead of an error so that route comparisons never abort on bad
// data; callers must not treat the sentinel as a measurement.
package geo

import (
	"math"

	"dispatch-tracking-service/internal/domain"
)

const earthRadiusKm = 6371

// Sentinel distance returned for invalid input: ranks "unknown" as
// farthest without failing the comparison it sits inside.
const (
	SentinelKilometers = 999.0
	SentinelMeters     = SentinelKilometers * 1000
)

// DistanceKilometers returns the haversine great-circle distance in
// kilometers, or SentinelKilometers when either coordinate is invalid.
func DistanceKilometers(a, b domain.Coordinate) float64 {
	if !a.Valid() || !b.Valid() {
		return SentinelKilometers
	}

	latA := a.Lat * math.Pi / 180
	latB := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLon := (b.Lon - a.Lon) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(latA)*math.Cos(latB)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return earthRadiusKm * c
}

// DistanceMeters returns the haversine great-circle distance in
// meters, or SentinelMeters when either coordinate is invalid.
// The proximity gate uses meters; cost estimates use kilometers. The
// two are separate, explicitly named operations to keep units honest.
func DistanceMeters(a, b domain.Coordinate) float64 {
	if !a.Valid() || !b.Valid() {
		return SentinelMeters
	}
	return DistanceKilometers(a, b) * 1000
}

// IsWithinRadius reports whether b lies within radiusMeters of a.
// The boundary is inclusive.
func IsWithinRadius(a, b domain.Coordinate, radiusMeters float64) bool {
	return DistanceMeters(a, b) <= radiusMeters
}
