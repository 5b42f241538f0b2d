package dto

import "time"

type CustomerTrackingResponse struct {
	DeliveryID       string                  `json:"delivery_id"`
	DeliveryStatus   string                  `json:"delivery_status"`
	VendorID         string                  `json:"vendor_id"`
	VendorName       string                  `json:"vendor_name,omitempty"`
	DriverID         string                  `json:"driver_id"`
	DriverName       string                  `json:"driver_name"`
	DriverContact    string                  `json:"driver_contact,omitempty"`
	DriverVehicle    string                  `json:"driver_vehicle,omitempty"`
	DriverLocation   *DriverPositionResponse `json:"driver_location,omitempty"`
	EstimatedArrival time.Time               `json:"estimated_arrival"`
	DeliveryOrder    int                     `json:"delivery_order"`
	StopStatus       string                  `json:"stop_status"`
}
