package api

import (
	"net/http"

	"dispatch-tracking-service/internal/api/handlers"
	"dispatch-tracking-service/internal/ports"
	"dispatch-tracking-service/internal/services"
)

// NewRouter wires HTTP handlers with their dependencies and returns an
// http.Handler. This is the API composition root (handlers stay
// unaware of concrete adapters).
func NewRouter(
	dispatcher *services.Dispatcher,
	ingestor *services.Ingestor,
	tracker *services.Tracker,
	registry ports.DriverRegistry,
) http.Handler {
	mux := http.NewServeMux()

	driverHandler := &handlers.DriverHandler{Registry: registry, Ingestor: ingestor}
	deliveryHandler := &handlers.DeliveryHandler{Dispatcher: dispatcher, Ingestor: ingestor}
	trackingHandler := &handlers.TrackingHandler{Tracker: tracker}

	mux.HandleFunc("GET /health", handlers.Health)

	mux.HandleFunc("GET /drivers", driverHandler.List)
	mux.HandleFunc("GET /drivers/{id}", driverHandler.Get)
	mux.HandleFunc("POST /drivers/{id}/location", driverHandler.ReportLocation)
	mux.HandleFunc("GET /drivers/{id}/active", trackingHandler.ActiveForDriver)
	mux.HandleFunc("GET /drivers/{id}/history", trackingHandler.HistoryForDriver)

	mux.HandleFunc("POST /deliveries", deliveryHandler.Create)
	mux.HandleFunc("GET /deliveries/{id}", deliveryHandler.Get)
	mux.HandleFunc("POST /deliveries/{id}/start", deliveryHandler.Start)
	mux.HandleFunc("POST /deliveries/{id}/location", deliveryHandler.ReportLocation)
	mux.HandleFunc("POST /deliveries/{id}/stops/{customerID}/complete", deliveryHandler.CompleteStop)
	mux.HandleFunc("POST /deliveries/{id}/cancel", deliveryHandler.Cancel)

	mux.HandleFunc("GET /proximity", deliveryHandler.Proximity)

	mux.HandleFunc("GET /tracking/{customerID}", trackingHandler.ForCustomer)

	return loggingMiddleware(mux)
}
