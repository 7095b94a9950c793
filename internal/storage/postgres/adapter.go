// Package postgres stores redirect rules in PostgreSQL through the pgx
// database/sql driver.
package postgres

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/stdlib"

	"redirector/internal/storage/sqlstore"
)

const uniqueViolation = "23505"

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS rules (
		seq BIGSERIAL PRIMARY KEY,
		id VARCHAR(64) NOT NULL UNIQUE,
		path TEXT NOT NULL,
		host VARCHAR(255) NOT NULL DEFAULT '',
		version INTEGER NOT NULL DEFAULT 0,
		redirect_url TEXT NOT NULL,
		status_code INTEGER NOT NULL DEFAULT 301,
		utc_start_time BIGINT,
		utc_end_time BIGINT,
		operations TEXT NOT NULL DEFAULT '',
		regex BOOLEAN NOT NULL DEFAULT false,
		last_accessed BIGINT
	)`,
	`CREATE TABLE IF NOT EXISTS hosts (
		seq BIGSERIAL PRIMARY KEY,
		host VARCHAR(255) NOT NULL UNIQUE,
		host_only BOOLEAN NOT NULL DEFAULT false
	)`,
	`CREATE TABLE IF NOT EXISTS versions (
		seq BIGSERIAL PRIMARY KEY,
		id VARCHAR(64) NOT NULL UNIQUE,
		active_version INTEGER NOT NULL DEFAULT 0
	)`,

	// Indexes
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_rules_path_host_version ON rules(path, host, version) WHERE regex = false`,
	`CREATE INDEX IF NOT EXISTS idx_rules_path ON rules(path)`,
	`CREATE INDEX IF NOT EXISTS idx_rules_regex ON rules(regex)`,
}

var dialect = sqlstore.Dialect{
	Name:              "postgres",
	Migrations:        migrations,
	Positional:        true,
	IsUniqueViolation: isUniqueViolation,
}

// Adapter is a sqlstore.Store over PostgreSQL
type Adapter struct {
	*sqlstore.Store
	config *Config
}

func NewAdapter(config *Config) (*Adapter, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid PostgreSQL config: %w", err)
	}

	connConfig, err := config.ConnConfig()
	if err != nil {
		return nil, err
	}

	db := stdlib.OpenDB(*connConfig)
	db.SetMaxOpenConns(config.MaxOpenConns)
	db.SetMaxIdleConns(config.MaxIdleConns)
	db.SetConnMaxLifetime(config.ConnMaxLifetime)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	adapter := &Adapter{
		Store:  sqlstore.New(db, dialect),
		config: config,
	}

	if err := adapter.Migrate(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return adapter, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return stderrors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
