package handlers

import (
	"github.com/gorilla/mux"
)

// RegisterRoutes attaches every API endpoint to the router.
func (h *Handlers) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/health", h.HealthCheck).Methods("GET")
	router.HandleFunc("/health/detailed", h.DetailedHealthCheck).Methods("GET")

	api := router.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/properties", h.ListProperties).Methods("GET")
	api.HandleFunc("/properties", h.CreateProperty).Methods("POST")
	api.HandleFunc("/properties/{id}", h.GetProperty).Methods("GET")
	api.HandleFunc("/properties/{id}", h.UpdateProperty).Methods("PUT")
	api.HandleFunc("/properties/{id}", h.DeleteProperty).Methods("DELETE")
	api.HandleFunc("/properties/{id}/enrich", h.EnrichProperty).Methods("POST")

	api.HandleFunc("/enrich", h.EnrichRecord).Methods("POST")

	api.HandleFunc("/enrichment/sources", h.ListSources).Methods("GET")
	api.HandleFunc("/enrichment/sources/{name}", h.UpdateSource).Methods("PATCH")

	api.HandleFunc("/market/updates", h.MarketUpdates).Methods("GET")
}
