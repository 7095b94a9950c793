// Package storage provides the persistence layer for redirect rules, host
// policies and the active rule-set version.
//
// Adapters for an in-process store, SQLite and PostgreSQL implement a single
// Storage interface. Every search takes a list of Conditions that are ANDed
// together; Or groups express alternatives. Results always come back in
// insertion order, which the resolution engine relies on for regex rules.
//
// Example usage:
//
//	store, err := storage.NewStorage(cfg)
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer store.Close()
//
//	rules, err := store.SearchRules(ctx,
//		storage.Or(storage.Eq(storage.AttrPath, "/a"), storage.Eq(storage.AttrPath, "/a/")),
//		storage.Eq(storage.AttrRegex, false),
//	)
package storage

import (
	"context"
	stderrors "errors"
)

var (
	// ErrNotFound is the cause of lookups by id that find nothing
	ErrNotFound = stderrors.New("record not found")
	// ErrConflict is the cause of writes that would store a second
	// non-regex rule for the same path, host and version
	ErrConflict = stderrors.New("rule already exists for path, host and version")
)

// Storage is implemented by every store adapter
type Storage interface {
	// Connection management
	Close() error
	Health(ctx context.Context) error

	// Rules
	SearchRules(ctx context.Context, conds ...Condition) ([]*Rule, error)
	ListRules(ctx context.Context, limit, offset int) ([]*Rule, error)
	CountRules(ctx context.Context) (int, error)
	GetRule(ctx context.Context, id string) (*Rule, error)
	// InsertRule assigns an ID when the rule has none and returns the stored copy
	InsertRule(ctx context.Context, rule *Rule) (*Rule, error)
	UpdateRule(ctx context.Context, rule *Rule) error
	PatchRule(ctx context.Context, id string, patch RulePatch) error
	DeleteRule(ctx context.Context, id string) error
	// DeleteAllRules removes every rule and reports how many were removed
	DeleteAllRules(ctx context.Context) (int, error)

	// Host policies
	SearchHosts(ctx context.Context, conds ...Condition) ([]*HostConfig, error)
	PutHost(ctx context.Context, host *HostConfig) error
	DeleteHost(ctx context.Context, host string) error

	// Versions
	SearchVersions(ctx context.Context, conds ...Condition) ([]*VersionConfig, error)
	PutVersion(ctx context.Context, version *VersionConfig) error
}

// StorageConfig is the adapter specific configuration handed to a factory
type StorageConfig interface {
	Validate() error
	GetType() string
}

// StorageFactory creates a Storage from its configuration
type StorageFactory interface {
	Create(config StorageConfig) (Storage, error)
	GetType() string
}

// GenericConfig is a loosely typed StorageConfig that factories translate
// into their own config type
type GenericConfig map[string]interface{}

func (c GenericConfig) Validate() error { return nil }

func (c GenericConfig) GetType() string {
	if t, ok := c["type"].(string); ok {
		return t
	}
	return ""
}

// String returns the string value stored under key
func (c GenericConfig) String(key string) string {
	v, _ := c[key].(string)
	return v
}
