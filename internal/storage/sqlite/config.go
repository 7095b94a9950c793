package sqlite

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// InMemory keeps the database in the process; handy for tests
const InMemory = ":memory:"

var journalModes = map[string]bool{
	"DELETE": true, "TRUNCATE": true, "PERSIST": true,
	"MEMORY": true, "WAL": true, "OFF": true,
}

// Config locates the rules database file
type Config struct {
	Path string
	// BusyTimeout bounds how long a writer waits on a locked file
	BusyTimeout time.Duration
	// JournalMode is passed to go-sqlite3 as _journal_mode
	JournalMode string
}

func DefaultConfig() *Config {
	return &Config{
		Path:        "./redirector.db",
		BusyTimeout: 5 * time.Second,
		JournalMode: "WAL",
	}
}

// Validate requires the parent directory to exist; SQLite creates the file
func (c *Config) Validate() error {
	if c.Path == "" {
		return fmt.Errorf("database path is required")
	}
	if c.JournalMode != "" && !journalModes[strings.ToUpper(c.JournalMode)] {
		return fmt.Errorf("unknown journal mode %q", c.JournalMode)
	}
	if c.Path == InMemory {
		return nil
	}

	dir := filepath.Dir(c.Path)
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return fmt.Errorf("database directory %s does not exist", dir)
	}
	return nil
}

func (c *Config) GetType() string {
	return "sqlite"
}

// GetConnectionString builds the go-sqlite3 DSN
func (c *Config) GetConnectionString() string {
	timeout := c.BusyTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	params := url.Values{}
	params.Set("_busy_timeout", strconv.FormatInt(timeout.Milliseconds(), 10))
	params.Set("_foreign_keys", "on")
	if c.JournalMode != "" && c.Path != InMemory {
		params.Set("_journal_mode", strings.ToUpper(c.JournalMode))
	}
	return "file:" + c.Path + "?" + params.Encode()
}
