package storage

import (
	"fmt"

	"redirector/internal/common/errors"
	"redirector/internal/config"
)

// NewStorage creates the store adapter selected by cfg.DatabaseType from the
// default registry. The adapter package must have been imported for its
// factory to be registered.
func NewStorage(cfg *config.Config) (Storage, error) {
	storageType, storageConfig, err := configFor(cfg)
	if err != nil {
		return nil, err
	}
	return Create(storageType, storageConfig)
}

func configFor(cfg *config.Config) (string, StorageConfig, error) {
	switch cfg.DatabaseType {
	case "memory":
		return "memory", GenericConfig{"type": "memory"}, nil

	case "sqlite":
		return "sqlite", GenericConfig{
			"type": "sqlite",
			"path": cfg.DatabasePath,
		}, nil

	case "postgres", "postgresql":
		return cfg.DatabaseType, GenericConfig{
			"type":     "postgres",
			"host":     cfg.PostgresHost,
			"port":     cfg.PostgresPort,
			"database": cfg.PostgresDB,
			"username": cfg.PostgresUser,
			"password": cfg.PostgresPassword,
			"sslmode":  cfg.PostgresSSLMode,
		}, nil

	default:
		return "", nil, errors.ConfigError(fmt.Sprintf("unsupported database type: %s", cfg.DatabaseType))
	}
}
