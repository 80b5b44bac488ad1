package handlers

import (
	"net/http"
	"time"
)

// HealthCheck reports basic liveness backed by a storage ping.
func (h *Handlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	if err := h.storage.Health(); err != nil {
		http.Error(w, "Database unhealthy", http.StatusServiceUnavailable)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().UTC(),
	})
}

// DetailedHealthCheck reports per-component health. Redis being absent is
// reported as disabled, not unhealthy.
func (h *Handlers) DetailedHealthCheck(w http.ResponseWriter, r *http.Request) {
	components := map[string]string{}
	status := "healthy"
	code := http.StatusOK

	if err := h.storage.Health(); err != nil {
		components["database"] = "unhealthy: " + err.Error()
		status = "degraded"
		code = http.StatusServiceUnavailable
	} else {
		components["database"] = "healthy"
	}

	if h.cache == nil {
		components["redis"] = "disabled"
	} else if err := h.cache.Health(); err != nil {
		components["redis"] = "unhealthy: " + err.Error()
		status = "degraded"
		code = http.StatusServiceUnavailable
	} else {
		components["redis"] = "healthy"
	}

	sources := h.enricher.Registry().List()
	enabled := 0
	for _, source := range sources {
		if source.Enabled {
			enabled++
		}
	}

	writeJSON(w, code, map[string]interface{}{
		"status":     status,
		"timestamp":  time.Now().UTC(),
		"components": components,
		"enrichment": map[string]int{
			"sources_registered": len(sources),
			"sources_enabled":    enabled,
		},
	})
}
