package storage

import (
	"testing"
)

type stubFactory struct{ created bool }

func (f *stubFactory) Create(config StorageConfig) (Storage, error) {
	f.created = true
	return nil, nil
}

func (f *stubFactory) GetType() string { return "stub" }

func TestRegistry(t *testing.T) {
	registry := NewRegistry()
	factory := &stubFactory{}

	if registry.IsRegistered("stub") {
		t.Error("expected empty registry")
	}

	registry.Register("stub", factory)

	if !registry.IsRegistered("stub") {
		t.Error("expected stub to be registered")
	}

	if _, err := registry.Create("stub", GenericConfig{}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if !factory.created {
		t.Error("expected factory to be invoked")
	}

	if _, err := registry.Create("missing", GenericConfig{}); err == nil {
		t.Error("expected error for unregistered type")
	}

	types := registry.GetAvailableTypes()
	if len(types) != 1 || types[0] != "stub" {
		t.Errorf("expected [stub], got %v", types)
	}
}

func TestGenericConfig(t *testing.T) {
	config := GenericConfig{
		"type":              "sqlite",
		"connection_string": "./data.db",
	}

	if config.GetType() != "sqlite" {
		t.Errorf("expected sqlite, got %q", config.GetType())
	}
	if config.GetConnectionString() != "./data.db" {
		t.Errorf("expected ./data.db, got %q", config.GetConnectionString())
	}
	if err := config.Validate(); err != nil {
		t.Errorf("unexpected validation error: %v", err)
	}

	empty := GenericConfig{}
	if empty.GetType() != "unknown" {
		t.Errorf("expected unknown type, got %q", empty.GetType())
	}
	if empty.GetConnectionString() != "" {
		t.Errorf("expected empty connection string, got %q", empty.GetConnectionString())
	}
}
