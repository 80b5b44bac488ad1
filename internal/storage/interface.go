package storage

import (
	"context"
	"time"

	"starboard/internal/models"
)

// Storage is the persistence layer for properties, settings, and request
// logs. Adapters exist for SQLite and PostgreSQL; which one backs a given
// deployment is decided by configuration through the factory.
type Storage interface {
	// Connection management
	Connect(config StorageConfig) error
	Close() error
	Health() error

	// Properties
	CreateProperty(property *models.Property) error
	GetProperty(id string) (*models.Property, error)
	UpdateProperty(property *models.Property) error
	DeleteProperty(id string) error

	// ListPropertiesWithCount retrieves a filtered page of properties along
	// with the total count matching the filters.
	ListPropertiesWithCount(filters PropertyFilters, limit, offset int) ([]*models.Property, int, error)

	// Property detail rows joined in by the enrichment pipeline
	UpsertPropertyDetails(propertyID string, details map[string]interface{}) error

	// LookupFields finds a single row in the named table whose columns match
	// every key/value pair, returned as a column-to-value map. A miss returns
	// an empty map, not an error.
	LookupFields(ctx context.Context, table string, match map[string]interface{}) (map[string]interface{}, error)

	// Settings
	GetSetting(key string) (string, error)
	SetSetting(key, value string) error
	GetAllSettings() (map[string]string, error)

	// Request logs
	CreateAPILog(log *APILog) error

	// GetMarketStats aggregates pricing statistics over properties updated
	// since the given time.
	GetMarketStats(since time.Time) (*models.MarketStats, error)
}

// PropertyFilters narrows property listings. Zero values mean no filter.
type PropertyFilters struct {
	PropertyType string
	ZoningType   string
	City         string
	State        string
	MinPrice     float64
	MaxPrice     float64
}

// APILog records one handled HTTP request.
type APILog struct {
	ID         int64     `json:"id"`
	Method     string    `json:"method"`
	Path       string    `json:"path"`
	StatusCode int       `json:"status_code"`
	DurationMS int64     `json:"duration_ms"`
	ClientIP   string    `json:"client_ip"`
	CreatedAt  time.Time `json:"created_at"`
}

type StorageConfig interface {
	Validate() error
	GetType() string
	GetConnectionString() string
}

type StorageFactory interface {
	Create(config StorageConfig) (Storage, error)
	GetType() string
}

// GenericConfig is a simple map-based implementation of StorageConfig
type GenericConfig map[string]interface{}

func (gc GenericConfig) Validate() error {
	return nil // Basic configs don't need validation
}

func (gc GenericConfig) GetType() string {
	if t, ok := gc["type"].(string); ok {
		return t
	}
	return "unknown"
}

func (gc GenericConfig) GetConnectionString() string {
	if cs, ok := gc["connection_string"].(string); ok {
		return cs
	}
	return ""
}
