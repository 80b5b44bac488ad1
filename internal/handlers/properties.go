package handlers

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"starboard/internal/models"
	"starboard/internal/storage"
)

const (
	defaultPageSize = 50
	maxPageSize     = 200
)

type propertyListResponse struct {
	Properties []*models.Property `json:"properties"`
	Total      int                `json:"total"`
	Limit      int                `json:"limit"`
	Offset     int                `json:"offset"`
}

func (h *Handlers) ListProperties(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	filters := storage.PropertyFilters{
		PropertyType: query.Get("property_type"),
		ZoningType:   query.Get("zoning_type"),
		City:         query.Get("city"),
		State:        query.Get("state"),
	}

	if raw := query.Get("min_price"); raw != "" {
		value, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			http.Error(w, "Invalid min_price", http.StatusBadRequest)
			return
		}
		filters.MinPrice = value
	}
	if raw := query.Get("max_price"); raw != "" {
		value, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			http.Error(w, "Invalid max_price", http.StatusBadRequest)
			return
		}
		filters.MaxPrice = value
	}

	limit, offset := parsePagination(query.Get("limit"), query.Get("offset"))

	properties, total, err := h.storage.ListPropertiesWithCount(filters, limit, offset)
	if err != nil {
		http.Error(w, "Failed to list properties", http.StatusInternalServerError)
		return
	}

	if properties == nil {
		properties = []*models.Property{}
	}

	writeJSON(w, http.StatusOK, propertyListResponse{
		Properties: properties,
		Total:      total,
		Limit:      limit,
		Offset:     offset,
	})
}

func (h *Handlers) GetProperty(w http.ResponseWriter, r *http.Request) {
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

	writeJSON(w, http.StatusOK, property)
}

func (h *Handlers) CreateProperty(w http.ResponseWriter, r *http.Request) {
	var property models.Property
	if err := json.NewDecoder(r.Body).Decode(&property); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	if property.ID == "" {
		property.ID = uuid.New().String()
	}

	if err := h.storage.CreateProperty(&property); err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint") || strings.Contains(err.Error(), "duplicate key") {
			http.Error(w, "Property already exists", http.StatusConflict)
			return
		}
		http.Error(w, "Failed to create property", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusCreated, property)
}

func (h *Handlers) UpdateProperty(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var property models.Property
	if err := json.NewDecoder(r.Body).Decode(&property); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}
	property.ID = id

	if err := h.storage.UpdateProperty(&property); err != nil {
		if err == sql.ErrNoRows {
			http.Error(w, "Property not found", http.StatusNotFound)
			return
		}
		http.Error(w, "Failed to update property", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, property)
}

func (h *Handlers) DeleteProperty(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	if err := h.storage.DeleteProperty(id); err != nil {
		if err == sql.ErrNoRows {
			http.Error(w, "Property not found", http.StatusNotFound)
			return
		}
		http.Error(w, "Failed to delete property", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func parsePagination(limitRaw, offsetRaw string) (int, int) {
	limit := defaultPageSize
	if limitRaw != "" {
		if n, err := strconv.Atoi(limitRaw); err == nil && n > 0 {
			limit = n
		}
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}

	offset := 0
	if offsetRaw != "" {
		if n, err := strconv.Atoi(offsetRaw); err == nil && n >= 0 {
			offset = n
		}
	}

	return limit, offset
}
