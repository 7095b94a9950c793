package postgres

import (
	"fmt"
	"strconv"

	"redirector/internal/storage"
)

type Factory struct{}

func (f *Factory) Create(config storage.StorageConfig) (storage.Storage, error) {
	switch c := config.(type) {
	case *Config:
		return NewAdapter(c)
	case storage.GenericConfig:
		pgConfig := DefaultConfig()
		if v := c.String("host"); v != "" {
			pgConfig.Host = v
		}
		if v := c.String("port"); v != "" {
			port, err := strconv.Atoi(v)
			if err != nil {
				return nil, fmt.Errorf("invalid PostgreSQL port %q", v)
			}
			pgConfig.Port = port
		}
		if v := c.String("database"); v != "" {
			pgConfig.Database = v
		}
		if v := c.String("username"); v != "" {
			pgConfig.Username = v
		}
		pgConfig.Password = c.String("password")
		if v := c.String("sslmode"); v != "" {
			pgConfig.SSLMode = v
		}
		return NewAdapter(pgConfig)
	default:
		return nil, fmt.Errorf("invalid config type for PostgreSQL storage")
	}
}

func (f *Factory) GetType() string {
	return "postgres"
}

func init() {
	storage.Register("postgres", &Factory{}, "postgresql")
}
