package domain

import "math"

// Geographic coordinate (latitude, longitude) in degrees, WGS84.
// The zero value is treated as "never reported", not a real position.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// IsZero reports whether the coordinate is the "never reported" marker.
func (c Coordinate) IsZero() bool { return c.Lat == 0 && c.Lon == 0 }

// Valid reports whether the coordinate is a usable position on Earth.
// NaN, infinite, or out-of-range components make a coordinate unusable.
func (c Coordinate) Valid() bool {
	if math.IsNaN(c.Lat) || math.IsNaN(c.Lon) || math.IsInf(c.Lat, 0) || math.IsInf(c.Lon, 0) {
		return false
	}
	return c.Lat >= -90 && c.Lat <= 90 && c.Lon >= -180 && c.Lon <= 180
}
