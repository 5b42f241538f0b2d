package handlers

import (
	"dispatch-tracking-service/internal/api/dto"
	"dispatch-tracking-service/internal/domain"
	"dispatch-tracking-service/internal/services"
)

func toCoordinate(c domain.Coordinate) dto.CoordinateResponse {
	return dto.CoordinateResponse{Lat: c.Lat, Lon: c.Lon}
}

func toDriver(d domain.Driver) dto.DriverResponse {
	res := dto.DriverResponse{
		ID:        d.ID,
		Name:      d.Name,
		Contact:   d.Contact,
		Vehicle:   d.Vehicle,
		Rating:    d.Rating,
		Available: d.Available,
	}
	if d.HasReported() {
		loc := toCoordinate(d.Location)
		res.Location = &loc
		at := d.LocationAt
		res.LocationAt = &at
	}
	return res
}

func toPosition(p *domain.DriverPosition) *dto.DriverPositionResponse {
	if p == nil {
		return nil
	}
	return &dto.DriverPositionResponse{Location: toCoordinate(p.Location), At: p.At}
}

func toStop(s domain.Stop) dto.StopResponse {
	return dto.StopResponse{
		CustomerID:       s.CustomerID,
		Address:          s.Address,
		Location:         toCoordinate(s.Location),
		DeliveryOrder:    s.DeliveryOrder,
		EstimatedArrival: s.EstimatedArrival,
		Status:           string(s.Status),
		DeliveredAt:      s.DeliveredAt,
	}
}

func toDelivery(d *domain.Delivery) dto.DeliveryResponse {
	stops := make([]dto.StopResponse, 0, len(d.Stops))
	for _, s := range d.Stops {
		stops = append(stops, toStop(s))
	}
	return dto.DeliveryResponse{
		ID:                  d.ID,
		VendorID:            d.VendorID,
		DriverID:            d.DriverID,
		Status:              string(d.Status),
		Stops:               stops,
		TotalDistanceMeters: d.TotalDistanceMeters,
		EstimatedMinutes:    d.EstimatedMinutes,
		StartedAt:           d.StartedAt,
		CompletedAt:         d.CompletedAt,
		DriverLocation:      toPosition(d.DriverLocation),
		CreatedAt:           d.CreatedAt,
	}
}

func toHistoryEntry(driverID string, e services.HistoryEntry) dto.DeliveryResponse {
	stops := make([]dto.StopResponse, 0, len(e.Stops))
	for _, s := range e.Stops {
		stops = append(stops, dto.StopResponse{
			CustomerID:    s.CustomerID,
			Address:       s.Address,
			Location:      toCoordinate(s.Location),
			DeliveryOrder: s.DeliveryOrder,
			Status:        string(s.Status),
			DeliveredAt:   s.DeliveredAt,
		})
	}
	return dto.DeliveryResponse{
		ID:                  e.DeliveryID,
		VendorID:            e.VendorID,
		DriverID:            driverID,
		Status:              string(e.Status),
		Stops:               stops,
		TotalDistanceMeters: e.TotalDistanceMeters,
		EstimatedMinutes:    e.EstimatedMinutes,
		StartedAt:           e.StartedAt,
		CompletedAt:         e.CompletedAt,
		CreatedAt:           e.CreatedAt,
	}
}

func toCustomerTracking(t *services.CustomerTracking) dto.CustomerTrackingResponse {
	return dto.CustomerTrackingResponse{
		DeliveryID:       t.DeliveryID,
		DeliveryStatus:   string(t.DeliveryStatus),
		VendorID:         t.VendorID,
		VendorName:       t.VendorName,
		DriverID:         t.DriverID,
		DriverName:       t.DriverName,
		DriverContact:    t.DriverContact,
		DriverVehicle:    t.DriverVehicle,
		DriverLocation:   toPosition(t.DriverLocation),
		EstimatedArrival: t.EstimatedArrival,
		DeliveryOrder:    t.DeliveryOrder,
		StopStatus:       string(t.StopStatus),
	}
}
