package handlers

import (
	"net/http"
	"time"

	"dispatch-tracking-service/internal/api/dto"
	"dispatch-tracking-service/internal/domain"
	"dispatch-tracking-service/internal/services"
)

// DeliveryHandler serves the dispatch lifecycle: creation, the
// geofenced start, stop completion and cancellation.
type DeliveryHandler struct {
	Dispatcher *services.Dispatcher
	Ingestor   *services.Ingestor
}

// Create handles POST /deliveries. Stops are optional: when absent the
// vendor's subscriber list supplies the destinations.
func (h *DeliveryHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateDeliveryRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.VendorID == "" || req.DriverID == "" {
		writeError(w, r, http.StatusBadRequest, "vendor_id and driver_id are required")
		return
	}

	stops := make([]services.StopCandidate, 0, len(req.Stops))
	for _, s := range req.Stops {
		stops = append(stops, services.StopCandidate{
			CustomerID: s.CustomerID,
			Address:    s.Address,
			Location:   domain.Coordinate{Lat: s.Lat, Lon: s.Lon},
		})
	}

	dl, err := h.Dispatcher.Create(r.Context(), req.VendorID, req.DriverID, stops)
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, toDelivery(dl))
}

// Get handles GET /deliveries/{id}.
func (h *DeliveryHandler) Get(w http.ResponseWriter, r *http.Request) {
	dl, err := h.Dispatcher.GetDelivery(r.Context(), r.PathValue("id"))
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, toDelivery(dl))
}

// Start handles POST /deliveries/{id}/start. The caller supplies the
// driver's current position, which must be inside the vendor geofence.
func (h *DeliveryHandler) Start(w http.ResponseWriter, r *http.Request) {
	var req dto.StartDeliveryRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}

	loc := domain.Coordinate{Lat: req.Lat, Lon: req.Lon}
	dl, err := h.Dispatcher.Start(r.Context(), r.PathValue("id"), loc)
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, toDelivery(dl))
}

// CompleteStop handles POST /deliveries/{id}/stops/{customerID}/complete.
func (h *DeliveryHandler) CompleteStop(w http.ResponseWriter, r *http.Request) {
	var req dto.CompleteStopRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}

	dl, err := h.Dispatcher.CompleteStop(r.Context(), r.PathValue("id"), r.PathValue("customerID"), !req.Failed)
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, toDelivery(dl))
}

// Cancel handles POST /deliveries/{id}/cancel.
func (h *DeliveryHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	dl, err := h.Dispatcher.Cancel(r.Context(), r.PathValue("id"))
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, toDelivery(dl))
}

// ReportLocation handles POST /deliveries/{id}/location: a position
// report addressed by delivery, resolved to its driver.
func (h *DeliveryHandler) ReportLocation(w http.ResponseWriter, r *http.Request) {
	var req dto.ReportLocationRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}

	dl, err := h.Dispatcher.GetDelivery(r.Context(), r.PathValue("id"))
	if err != nil {
		writeFailure(w, r, err)
		return
	}

	var at time.Time
	if req.AtMs > 0 {
		at = time.UnixMilli(req.AtMs)
	}

	loc := domain.Coordinate{Lat: req.Lat, Lon: req.Lon}
	if err := h.Ingestor.ReportPosition(r.Context(), dl.DriverID, loc, at); err != nil {
		writeFailure(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusAccepted, map[string]string{"status": "accepted"})
}

// Proximity handles GET /proximity?driver_id=&vendor_id=.
func (h *DeliveryHandler) Proximity(w http.ResponseWriter, r *http.Request) {
	driverID := r.URL.Query().Get("driver_id")
	vendorID := r.URL.Query().Get("vendor_id")
	if driverID == "" || vendorID == "" {
		writeError(w, r, http.StatusBadRequest, "driver_id and vendor_id are required")
		return
	}

	result, err := h.Dispatcher.CheckProximity(r.Context(), driverID, vendorID)
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, dto.ProximityResponse{
		WithinRange:    result.WithinRange,
		DistanceMeters: result.DistanceMeters,
	})
}
