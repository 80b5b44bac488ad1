package storage

import (
	"fmt"

	"starboard/internal/common/errors"
	"starboard/internal/config"
)

// NewStorage creates a storage adapter based on configuration. Adapter
// factories register themselves with the default registry via package init,
// so the backing packages must be imported (typically blank imports in main).
func NewStorage(cfg *config.Config) (Storage, error) {
	switch cfg.DatabaseType {
	case "sqlite":
		return Create("sqlite", GenericConfig{
			"path": cfg.DatabasePath,
		})

	case "postgres", "postgresql":
		if cfg.PostgresURL != "" {
			return Create("postgres", GenericConfig{
				"connection_string": cfg.PostgresURL,
			})
		}
		return Create("postgres", GenericConfig{
			"host":     cfg.PostgresHost,
			"port":     cfg.PostgresPort,
			"database": cfg.PostgresDB,
			"username": cfg.PostgresUser,
			"password": cfg.PostgresPassword,
			"sslmode":  cfg.PostgresSSLMode,
		})

	default:
		return nil, errors.ConfigError(fmt.Sprintf("unsupported database type: %s", cfg.DatabaseType))
	}
}
