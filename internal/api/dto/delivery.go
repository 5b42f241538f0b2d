package dto

import "time"

type StopRequest struct {
	CustomerID string  `json:"customer_id"`
	Address    string  `json:"address"`
	Lat        float64 `json:"lat"`
	Lon        float64 `json:"lon"`
}

type CreateDeliveryRequest struct {
	VendorID string        `json:"vendor_id"`
	DriverID string        `json:"driver_id"`
	Stops    []StopRequest `json:"stops,omitempty"`
}

type StartDeliveryRequest struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

type CompleteStopRequest struct {
	// Failed marks the stop as failed instead of delivered.
	Failed bool `json:"failed,omitempty"`
}

type StopResponse struct {
	CustomerID       string             `json:"customer_id"`
	Address          string             `json:"address"`
	Location         CoordinateResponse `json:"location"`
	DeliveryOrder    int                `json:"delivery_order"`
	EstimatedArrival time.Time          `json:"estimated_arrival"`
	Status           string             `json:"status"`
	DeliveredAt      *time.Time         `json:"delivered_at,omitempty"`
}

type DriverPositionResponse struct {
	Location CoordinateResponse `json:"location"`
	At       time.Time          `json:"at"`
}

type DeliveryResponse struct {
	ID                  string                  `json:"id"`
	VendorID            string                  `json:"vendor_id"`
	DriverID            string                  `json:"driver_id"`
	Status              string                  `json:"status"`
	Stops               []StopResponse          `json:"stops"`
	TotalDistanceMeters float64                 `json:"total_distance_meters"`
	EstimatedMinutes    int                     `json:"estimated_minutes"`
	StartedAt           *time.Time              `json:"started_at,omitempty"`
	CompletedAt         *time.Time              `json:"completed_at,omitempty"`
	DriverLocation      *DriverPositionResponse `json:"driver_location,omitempty"`
	CreatedAt           time.Time               `json:"created_at"`
}

type DeliveryHistoryResponse struct {
	Deliveries []DeliveryResponse `json:"deliveries"`
}
