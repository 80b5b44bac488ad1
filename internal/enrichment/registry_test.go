package enrichment

import (
	"testing"
)

func TestRegistry_Register_Validation(t *testing.T) {
	tests := []struct {
		name   string
		source Source
	}{
		{
			name:   "missing name",
			source: Source{Kind: KindAPI},
		},
		{
			name:   "missing kind",
			source: Source{Name: "geocoding"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			registry := NewRegistry()
			if err := registry.Register(tt.source); err == nil {
				t.Error("expected validation error but got none")
			}
		})
	}
}

func TestRegistry_Register_ReplaceKeepsPosition(t *testing.T) {
	registry := NewRegistry()

	mustRegister(t, registry, Source{Name: "a", Kind: KindAPI, Enabled: true, Priority: 1})
	mustRegister(t, registry, Source{Name: "b", Kind: KindAPI, Enabled: true, Priority: 1})

	// Re-register "a" with the same priority; it should still sort before "b"
	// because it keeps its original registration position.
	mustRegister(t, registry, Source{Name: "a", Kind: KindDatabase, Enabled: true, Priority: 1})

	active := registry.ListActive(nil)
	if len(active) != 2 {
		t.Fatalf("expected 2 active sources, got %d", len(active))
	}
	if active[0].Name != "a" || active[1].Name != "b" {
		t.Errorf("expected order [a b], got [%s %s]", active[0].Name, active[1].Name)
	}
	if active[0].Kind != KindDatabase {
		t.Errorf("expected replaced source to have kind %q, got %q", KindDatabase, active[0].Kind)
	}
}

func TestRegistry_ListActive_PriorityOrder(t *testing.T) {
	registry := NewRegistry()

	mustRegister(t, registry, Source{Name: "metrics", Kind: KindCalculation, Enabled: true, Priority: 4})
	mustRegister(t, registry, Source{Name: "geocoding", Kind: KindAPI, Enabled: true, Priority: 1})
	mustRegister(t, registry, Source{Name: "market_data", Kind: KindAPI, Enabled: true, Priority: 3})
	mustRegister(t, registry, Source{Name: "property_details", Kind: KindDatabase, Enabled: true, Priority: 2})

	active := registry.ListActive(nil)

	want := []string{"geocoding", "property_details", "market_data", "metrics"}
	if len(active) != len(want) {
		t.Fatalf("expected %d sources, got %d", len(want), len(active))
	}
	for i, name := range want {
		if active[i].Name != name {
			t.Errorf("position %d: expected %q, got %q", i, name, active[i].Name)
		}
	}
}

func TestRegistry_ListActive_TiesByRegistrationOrder(t *testing.T) {
	registry := NewRegistry()

	mustRegister(t, registry, Source{Name: "first", Kind: KindAPI, Enabled: true, Priority: 2})
	mustRegister(t, registry, Source{Name: "second", Kind: KindAPI, Enabled: true, Priority: 2})
	mustRegister(t, registry, Source{Name: "third", Kind: KindAPI, Enabled: true, Priority: 2})

	active := registry.ListActive(nil)

	want := []string{"first", "second", "third"}
	for i, name := range want {
		if active[i].Name != name {
			t.Errorf("position %d: expected %q, got %q", i, name, active[i].Name)
		}
	}
}

func TestRegistry_ListActive_Subset(t *testing.T) {
	registry := NewRegistry()

	mustRegister(t, registry, Source{Name: "geocoding", Kind: KindAPI, Enabled: true, Priority: 1})
	mustRegister(t, registry, Source{Name: "market_data", Kind: KindAPI, Enabled: true, Priority: 3})
	mustRegister(t, registry, Source{Name: "metrics", Kind: KindCalculation, Enabled: true, Priority: 4})

	active := registry.ListActive([]string{"metrics", "geocoding", "unknown"})

	// Subset selection never changes the priority ordering, and names that
	// match no registered source are silently ignored.
	want := []string{"geocoding", "metrics"}
	if len(active) != len(want) {
		t.Fatalf("expected %d sources, got %d", len(want), len(active))
	}
	for i, name := range want {
		if active[i].Name != name {
			t.Errorf("position %d: expected %q, got %q", i, name, active[i].Name)
		}
	}
}

func TestRegistry_ListActive_SkipsDisabled(t *testing.T) {
	registry := NewRegistry()

	mustRegister(t, registry, Source{Name: "geocoding", Kind: KindAPI, Enabled: true, Priority: 1})
	mustRegister(t, registry, Source{Name: "market_data", Kind: KindAPI, Enabled: false, Priority: 3})

	active := registry.ListActive(nil)
	if len(active) != 1 || active[0].Name != "geocoding" {
		t.Fatalf("expected only geocoding to be active, got %v", names(active))
	}

	// A disabled source stays out even when explicitly requested.
	active = registry.ListActive([]string{"market_data"})
	if len(active) != 0 {
		t.Errorf("expected no active sources, got %v", names(active))
	}
}

func TestRegistry_SetEnabled(t *testing.T) {
	registry := NewRegistry()

	mustRegister(t, registry, Source{Name: "geocoding", Kind: KindAPI, Enabled: true, Priority: 1})

	if err := registry.SetEnabled("geocoding", false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(registry.ListActive(nil)) != 0 {
		t.Error("expected no active sources after disabling")
	}

	if err := registry.SetEnabled("geocoding", true); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(registry.ListActive(nil)) != 1 {
		t.Error("expected one active source after re-enabling")
	}

	if err := registry.SetEnabled("nonexistent", true); err == nil {
		t.Error("expected not found error for unknown source")
	}
}

func TestRegistry_Get(t *testing.T) {
	registry := NewRegistry()

	mustRegister(t, registry, Source{Name: "geocoding", Kind: KindAPI, Enabled: true, Priority: 1})

	source, ok := registry.Get("geocoding")
	if !ok {
		t.Fatal("expected source to be found")
	}
	if source.Kind != KindAPI {
		t.Errorf("expected kind %q, got %q", KindAPI, source.Kind)
	}

	if _, ok := registry.Get("missing"); ok {
		t.Error("expected lookup miss for unknown source")
	}
}

func mustRegister(t *testing.T, registry *Registry, source Source) {
	t.Helper()
	if err := registry.Register(source); err != nil {
		t.Fatalf("register %q: %v", source.Name, err)
	}
}

func names(sources []Source) []string {
	out := make([]string, len(sources))
	for i, s := range sources {
		out[i] = s.Name
	}
	return out
}
