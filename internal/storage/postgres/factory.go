package postgres

import (
	"fmt"
	"strconv"

	"starboard/internal/storage"
)

type Factory struct{}

func (f *Factory) Create(config storage.StorageConfig) (storage.Storage, error) {
	switch cfg := config.(type) {
	case *Config:
		return NewAdapter(cfg)
	case storage.GenericConfig:
		parsed, err := configFromGeneric(cfg)
		if err != nil {
			return nil, err
		}
		return NewAdapter(parsed)
	default:
		return nil, fmt.Errorf("invalid config type for PostgreSQL storage")
	}
}

func (f *Factory) GetType() string {
	return "postgres"
}

func configFromGeneric(generic storage.GenericConfig) (*Config, error) {
	// A full URL takes precedence over the discrete fields
	if connStr := generic.GetConnectionString(); connStr != "" {
		return NewConfigFromURL(connStr)
	}

	config := &Config{
		Host:     stringValue(generic, "host"),
		Database: stringValue(generic, "database"),
		Username: stringValue(generic, "username"),
		Password: stringValue(generic, "password"),
		SSLMode:  stringValue(generic, "sslmode"),
	}

	switch port := generic["port"].(type) {
	case int:
		config.Port = port
	case string:
		if n, err := strconv.Atoi(port); err == nil {
			config.Port = n
		}
	}

	return config, nil
}

func stringValue(generic storage.GenericConfig, key string) string {
	if s, ok := generic[key].(string); ok {
		return s
	}
	return ""
}

func init() {
	storage.Register("postgres", &Factory{})
}
