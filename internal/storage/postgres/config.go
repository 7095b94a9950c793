package postgres

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Config describes the PostgreSQL database holding the rules
type Config struct {
	Host     string
	Port     int
	Database string
	Username string
	Password string
	SSLMode  string

	// pool sizing for database/sql; zero picks the defaults below
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

const (
	defaultPort            = 5432
	defaultSSLMode         = "prefer"
	defaultMaxOpenConns    = 25
	defaultMaxIdleConns    = 5
	defaultConnMaxLifetime = 30 * time.Minute
)

func DefaultConfig() *Config {
	return &Config{
		Host:     "localhost",
		Port:     defaultPort,
		Database: "redirector",
		Username: "postgres",
		SSLMode:  defaultSSLMode,
	}
}

// Validate fills in defaults and reports every missing required field at once
func (c *Config) Validate() error {
	var missing []string
	if c.Host == "" {
		missing = append(missing, "host")
	}
	if c.Database == "" {
		missing = append(missing, "database")
	}
	if c.Username == "" {
		missing = append(missing, "username")
	}
	if len(missing) > 0 {
		return fmt.Errorf("PostgreSQL %s required", strings.Join(missing, ", "))
	}

	if c.Port <= 0 {
		c.Port = defaultPort
	}
	if c.SSLMode == "" {
		c.SSLMode = defaultSSLMode
	}
	if c.MaxOpenConns <= 0 {
		c.MaxOpenConns = defaultMaxOpenConns
	}
	if c.MaxIdleConns <= 0 {
		c.MaxIdleConns = defaultMaxIdleConns
	}
	if c.ConnMaxLifetime <= 0 {
		c.ConnMaxLifetime = defaultConnMaxLifetime
	}
	return nil
}

func (c *Config) GetType() string {
	return "postgres"
}

// GetConnectionString returns the postgres:// URL for c
func (c *Config) GetConnectionString() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.Username, c.Password),
		Host:     c.Host + ":" + strconv.Itoa(c.Port),
		Path:     "/" + c.Database,
		RawQuery: url.Values{"sslmode": {c.SSLMode}}.Encode(),
	}
	return u.String()
}

// ConnConfig parses the connection string the way pgx will use it, which
// rejects unknown sslmode values before anything is dialled
func (c *Config) ConnConfig() (*pgx.ConnConfig, error) {
	cc, err := pgx.ParseConfig(c.GetConnectionString())
	if err != nil {
		return nil, fmt.Errorf("invalid PostgreSQL connection settings: %w", err)
	}
	return cc, nil
}

// NewConfigFromURL accepts anything pgx accepts, URL or key=value form
func NewConfigFromURL(connStr string) (*Config, error) {
	pc, err := pgconn.ParseConfig(connStr)
	if err != nil {
		return nil, fmt.Errorf("invalid PostgreSQL URL: %w", err)
	}
	if pc.Database == "" {
		return nil, fmt.Errorf("invalid PostgreSQL URL: missing database name")
	}

	return &Config{
		Host:     pc.Host,
		Port:     int(pc.Port),
		Database: pc.Database,
		Username: pc.User,
		Password: pc.Password,
		SSLMode:  sslModeOf(connStr),
	}, nil
}

// sslModeOf digs sslmode out of the raw string since pgconn only keeps the
// resulting TLS settings
func sslModeOf(connStr string) string {
	if u, err := url.Parse(connStr); err == nil && u.Scheme != "" {
		if mode := u.Query().Get("sslmode"); mode != "" {
			return mode
		}
		return defaultSSLMode
	}
	for _, kv := range strings.Fields(connStr) {
		if mode, ok := strings.CutPrefix(kv, "sslmode="); ok {
			return mode
		}
	}
	return defaultSSLMode
}
