package dto

import "time"

type CoordinateResponse struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

type DriverResponse struct {
	ID         string              `json:"id"`
	Name       string              `json:"name"`
	Contact    string              `json:"contact,omitempty"`
	Vehicle    string              `json:"vehicle,omitempty"`
	Rating     float64             `json:"rating"`
	Available  bool                `json:"available"`
	Location   *CoordinateResponse `json:"location,omitempty"`
	LocationAt *time.Time          `json:"location_at,omitempty"`
}

type ListDriversResponse struct {
	Drivers []DriverResponse `json:"drivers"`
}

type ReportLocationRequest struct {
	Lat  float64 `json:"lat"`
	Lon  float64 `json:"lon"`
	AtMs int64   `json:"at_ms,omitempty"`
}

type ProximityResponse struct {
	WithinRange    bool    `json:"within_range"`
	DistanceMeters float64 `json:"distance_meters"`
}
