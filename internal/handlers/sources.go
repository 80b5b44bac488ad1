package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"starboard/internal/enrichment"
)

type sourceView struct {
	Name     string                `json:"name"`
	Kind     enrichment.SourceKind `json:"kind"`
	Enabled  bool                  `json:"enabled"`
	Priority int                   `json:"priority"`
}

func viewOf(source enrichment.Source) sourceView {
	return sourceView{
		Name:     source.Name,
		Kind:     source.Kind,
		Enabled:  source.Enabled,
		Priority: source.Priority,
	}
}

// ListSources reports every registered enrichment source. Source config is
// withheld because it can carry API credentials.
func (h *Handlers) ListSources(w http.ResponseWriter, r *http.Request) {
	sources := h.enricher.Registry().List()

	views := make([]sourceView, len(sources))
	for i, source := range sources {
		views[i] = viewOf(source)
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"sources": views,
	})
}

type updateSourceRequest struct {
	Enabled *bool `json:"enabled"`
}

// UpdateSource toggles a source on or off.
func (h *Handlers) UpdateSource(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	var req updateSourceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}
	if req.Enabled == nil {
		http.Error(w, "enabled is required", http.StatusBadRequest)
		return
	}

	registry := h.enricher.Registry()
	if err := registry.SetEnabled(name, *req.Enabled); err != nil {
		http.Error(w, "Source not found", http.StatusNotFound)
		return
	}

	source, _ := registry.Get(name)
	writeJSON(w, http.StatusOK, viewOf(source))
}
