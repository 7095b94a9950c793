// Package sqlite stores redirect rules in a SQLite database file.
package sqlite

import (
	"context"
	"database/sql"
	stderrors "errors"
	"fmt"

	"github.com/mattn/go-sqlite3"

	"redirector/internal/storage/sqlstore"
)

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS rules (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		id TEXT NOT NULL UNIQUE,
		path TEXT NOT NULL,
		host TEXT NOT NULL DEFAULT '',
		version INTEGER NOT NULL DEFAULT 0,
		redirect_url TEXT NOT NULL,
		status_code INTEGER NOT NULL DEFAULT 301,
		utc_start_time INTEGER,
		utc_end_time INTEGER,
		operations TEXT NOT NULL DEFAULT '',
		regex BOOLEAN NOT NULL DEFAULT 0,
		last_accessed INTEGER
	)`,
	`CREATE TABLE IF NOT EXISTS hosts (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		host TEXT NOT NULL UNIQUE,
		host_only BOOLEAN NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE IF NOT EXISTS versions (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		id TEXT NOT NULL UNIQUE,
		active_version INTEGER NOT NULL DEFAULT 0
	)`,

	// Indexes
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_rules_path_host_version ON rules(path, host, version) WHERE regex = 0`,
	`CREATE INDEX IF NOT EXISTS idx_rules_path ON rules(path)`,
	`CREATE INDEX IF NOT EXISTS idx_rules_regex ON rules(regex)`,
}

var dialect = sqlstore.Dialect{
	Name:              "sqlite",
	Migrations:        migrations,
	IsUniqueViolation: isUniqueViolation,
}

// Adapter is a sqlstore.Store over a SQLite database
type Adapter struct {
	*sqlstore.Store
	config *Config
}

func NewAdapter(config *Config) (*Adapter, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid SQLite config: %w", err)
	}

	db, err := sql.Open("sqlite3", config.GetConnectionString())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// a single writer avoids SQLITE_BUSY under concurrent imports
	db.SetMaxOpenConns(1)

	ctx := context.Background()
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
	var sqliteErr sqlite3.Error
	if !stderrors.As(err, &sqliteErr) {
		return false
	}
	return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
		sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
}
