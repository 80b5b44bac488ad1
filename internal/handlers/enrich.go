package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"starboard/internal/common/logging"
	"starboard/internal/enrichment"
	"starboard/internal/models"
)

type enrichRequest struct {
	Record  map[string]interface{} `json:"record"`
	Sources []string               `json:"sources,omitempty"`
	Context map[string]interface{} `json:"context,omitempty"`
}

type enrichResponse struct {
	Record  enrichment.Record             `json:"record"`
	Results map[string]*enrichment.Result `json:"results"`
}

// EnrichRecord runs an arbitrary record through the enrichment pipeline.
func (h *Handlers) EnrichRecord(w http.ResponseWriter, r *http.Request) {
	var req enrichRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	if req.Record == nil {
		http.Error(w, "record is required", http.StatusBadRequest)
		return
	}

	enrichCtx := h.enrichmentContext(r, req.Context)

	record, results := h.enricher.Enrich(r.Context(), enrichment.Record(req.Record), req.Sources, enrichCtx)

	writeJSON(w, http.StatusOK, enrichResponse{Record: record, Results: results})
}

// EnrichProperty runs a stored property through the enrichment pipeline and
// persists what comes back.
func (h *Handlers) EnrichProperty(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	property, err := h.storage.GetProperty(id)
	if err != nil {
		http.Error(w, "Failed to get property", http.StatusInternalServerError)
		return
	}
	if property == nil {
		http.Error(w, "Property not found", http.StatusNotFound)
		return
	}

	var req enrichRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid JSON", http.StatusBadRequest)
			return
		}
	}

	enrichCtx := h.enrichmentContext(r, req.Context)

	record, results := h.enricher.Enrich(r.Context(), enrichment.Record(property.ToRecord()), req.Sources, enrichCtx)

	h.applyEnrichedFields(property, record)
	if err := h.storage.UpdateProperty(property); err != nil {
		logging.Warn("Failed to persist enriched property",
			logging.Field{Key: "property_id", Value: id},
			logging.Field{Key: "error", Value: err.Error()},
		)
	}

	if err := h.storage.UpsertPropertyDetails(id, record); err != nil {
		logging.Warn("Failed to persist enriched details",
			logging.Field{Key: "property_id", Value: id},
			logging.Field{Key: "error", Value: err.Error()},
		)
	}

	writeJSON(w, http.StatusOK, enrichResponse{Record: record, Results: results})
}

// enrichmentContext builds the context passed to calculation sources. Market
// averages come from stored aggregates unless the caller supplied their own.
func (h *Handlers) enrichmentContext(r *http.Request, supplied map[string]interface{}) enrichment.Context {
	enrichCtx := enrichment.Context{}
	for key, value := range supplied {
		enrichCtx[key] = value
	}

	if _, ok := enrichCtx["market_avg_price"]; !ok {
		stats, err := h.storage.GetMarketStats(time.Now().AddDate(0, 0, -30))
		if err == nil && stats.PropertyCount > 0 {
			enrichCtx["market_avg_price"] = stats.AveragePrice
		}
	}

	return enrichCtx
}

// applyEnrichedFields folds enriched record values back onto the property
// model where the model has a dedicated field.
func (h *Handlers) applyEnrichedFields(property *models.Property, record enrichment.Record) {
	if lat, ok := numberField(record, "latitude"); ok {
		property.Latitude = lat
	}
	if lng, ok := numberField(record, "longitude"); ok {
		property.Longitude = lng
	}
	if marketValue, ok := numberField(record, "market_value"); ok {
		property.Financials.MarketValue = marketValue
	}
	if yearBuilt, ok := numberField(record, "year_built"); ok && property.Metrics.YearBuilt == 0 {
		property.Metrics.YearBuilt = int(yearBuilt)
	}
	if lotSize, ok := numberField(record, "lot_size"); ok && property.Metrics.LotSize == 0 {
		property.Metrics.LotSize = lotSize
	}
}

func numberField(record enrichment.Record, key string) (float64, bool) {
	switch n := record[key].(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}
