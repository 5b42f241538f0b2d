package handlers

import (
	"net/http"

	"dispatch-tracking-service/internal/api/dto"
	"dispatch-tracking-service/internal/services"
)

// TrackingHandler serves the read side: customer live tracking, the
// driver's active delivery and driver history.
type TrackingHandler struct {
	Tracker *services.Tracker
}

// ForCustomer handles GET /tracking/{customerID}.
func (h *TrackingHandler) ForCustomer(w http.ResponseWriter, r *http.Request) {
	tracking, err := h.Tracker.TrackingForCustomer(r.Context(), r.PathValue("customerID"))
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, toCustomerTracking(tracking))
}

// ActiveForDriver handles GET /drivers/{id}/active.
func (h *TrackingHandler) ActiveForDriver(w http.ResponseWriter, r *http.Request) {
	dl, err := h.Tracker.ActiveDeliveryForDriver(r.Context(), r.PathValue("id"))
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, toDelivery(dl))
}

// HistoryForDriver handles GET /drivers/{id}/history, newest first.
func (h *TrackingHandler) HistoryForDriver(w http.ResponseWriter, r *http.Request) {
	driverID := r.PathValue("id")
	entries, err := h.Tracker.HistoryForDriver(r.Context(), driverID)
	if err != nil {
		writeFailure(w, r, err)
		return
	}

	res := dto.DeliveryHistoryResponse{Deliveries: make([]dto.DeliveryResponse, 0, len(entries))}
	for _, e := range entries {
		res.Deliveries = append(res.Deliveries, toHistoryEntry(driverID, e))
	}
	writeJSON(w, r, http.StatusOK, res)
}
