package enrichment

import (
	"sort"
	"sync"

	"starboard/internal/common/errors"
)

// Registry holds the configured enrichment sources. It is read-mostly after
// startup and safe for concurrent use by in-flight enrichment calls.
type Registry struct {
	mu      sync.RWMutex
	sources map[string]*registeredSource
	nextSeq int
}

// registeredSource pairs a source with its registration sequence number,
// which breaks priority ties so enrichment order stays deterministic.
type registeredSource struct {
	source Source
	seq    int
}

// NewRegistry creates an empty source registry.
func NewRegistry() *Registry {
	return &Registry{
		sources: make(map[string]*registeredSource),
	}
}

// Register inserts a source or replaces the existing source with the same
// name. A replaced source keeps its original registration position.
func (r *Registry) Register(source Source) error {
	if source.Name == "" {
		return errors.ValidationError("enrichment source name is required")
	}
	if source.Kind == "" {
		return errors.ValidationError("enrichment source kind is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.sources[source.Name]; ok {
		existing.source = source
		return nil
	}

	r.sources[source.Name] = &registeredSource{
		source: source,
		seq:    r.nextSeq,
	}
	r.nextSeq++
	return nil
}

// Get returns the source registered under name.
func (r *Registry) Get(name string) (Source, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, ok := r.sources[name]
	if !ok {
		return Source{}, false
	}
	return entry.source, true
}

// List returns every registered source in registration order, regardless of
// enabled state. Used by the management endpoints.
func (r *Registry) List() []Source {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entries := r.snapshot()
	sources := make([]Source, len(entries))
	for i, entry := range entries {
		sources[i] = entry.source
	}
	return sources
}

// ListActive returns the enabled sources, optionally restricted to the
// requested names, sorted ascending by priority. The sort is stable:
// priority ties preserve registration order.
func (r *Registry) ListActive(requested []string) []Source {
	var requestedSet map[string]struct{}
	if len(requested) > 0 {
		requestedSet = make(map[string]struct{}, len(requested))
		for _, name := range requested {
			requestedSet[name] = struct{}{}
		}
	}

	r.mu.RLock()
	entries := r.snapshot()
	r.mu.RUnlock()

	active := make([]Source, 0, len(entries))
	for _, entry := range entries {
		if !entry.source.Enabled {
			continue
		}
		if requestedSet != nil {
			if _, ok := requestedSet[entry.source.Name]; !ok {
				continue
			}
		}
		active = append(active, entry.source)
	}

	sort.SliceStable(active, func(i, j int) bool {
		return active[i].Priority < active[j].Priority
	})

	return active
}

// SetEnabled flips the enabled flag of a registered source.
func (r *Registry) SetEnabled(name string, enabled bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.sources[name]
	if !ok {
		return errors.NotFoundError("enrichment source " + name)
	}
	entry.source.Enabled = enabled
	return nil
}

// snapshot returns the registered entries ordered by registration sequence.
// Callers must hold at least a read lock.
func (r *Registry) snapshot() []*registeredSource {
	entries := make([]*registeredSource, 0, len(r.sources))
	for _, entry := range r.sources {
		entries = append(entries, entry)
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].seq < entries[j].seq
	})
	return entries
}
