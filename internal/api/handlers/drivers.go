package handlers

import (
	"net/http"
	"time"

	"dispatch-tracking-service/internal/api/dto"
	"dispatch-tracking-service/internal/domain"
	"dispatch-tracking-service/internal/ports"
	"dispatch-tracking-service/internal/services"
)

// DriverHandler serves driver listings, lookups and position reports.
type DriverHandler struct {
	Registry ports.DriverRegistry
	Ingestor *services.Ingestor
}

// List handles GET /drivers. Pass only_available=true to see just the
// drivers that can be dispatched right now.
func (h *DriverHandler) List(w http.ResponseWriter, r *http.Request) {
	filter := ports.DriverFilter{
		OnlyAvailable: r.URL.Query().Get("only_available") == "true",
	}

	drivers, err := h.Registry.List(r.Context(), filter)
	if err != nil {
		writeFailure(w, r, err)
		return
	}

	res := dto.ListDriversResponse{Drivers: make([]dto.DriverResponse, 0, len(drivers))}
	for _, d := range drivers {
		res.Drivers = append(res.Drivers, toDriver(d))
	}
	writeJSON(w, r, http.StatusOK, res)
}

// Get handles GET /drivers/{id}.
func (h *DriverHandler) Get(w http.ResponseWriter, r *http.Request) {
	driver, err := h.Registry.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, toDriver(driver))
}

// ReportLocation handles POST /drivers/{id}/location. The timestamp is
// optional; an absent one means "now" on the server clock.
func (h *DriverHandler) ReportLocation(w http.ResponseWriter, r *http.Request) {
	var req dto.ReportLocationRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}

	var at time.Time
	if req.AtMs > 0 {
		at = time.UnixMilli(req.AtMs)
	}

	loc := domain.Coordinate{Lat: req.Lat, Lon: req.Lon}
	if err := h.Ingestor.ReportPosition(r.Context(), r.PathValue("id"), loc, at); err != nil {
		writeFailure(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusAccepted, map[string]string{"status": "accepted"})
}
