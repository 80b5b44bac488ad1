package handlers

import (
	"encoding/json"
	"net/http"

	"starboard/internal/config"
	"starboard/internal/enrichment"
	"starboard/internal/redis"
	"starboard/internal/storage"
)

type Handlers struct {
	storage  storage.Storage
	cache    *redis.Client // nil when Redis is not configured
	config   *config.Config
	enricher *enrichment.Enricher
}

func New(store storage.Storage, cache *redis.Client, cfg *config.Config, enricher *enrichment.Enricher) *Handlers {
	return &Handlers{
		storage:  store,
		cache:    cache,
		config:   cfg,
		enricher: enricher,
	}
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}
