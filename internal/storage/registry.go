package storage

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"redirector/internal/common/errors"
)

// Registry maps rule store type names to their factories. Adapters register
// themselves from init, so a binary only carries the drivers it imports.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]StorageFactory
	aliases   map[string]string
}

func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[string]StorageFactory),
		aliases:   make(map[string]string),
	}
}

// Register adds factory under name and any aliases. Registering a name twice
// panics, as database/sql does for drivers.
func (r *Registry) Register(name string, factory StorageFactory, aliases ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	name = strings.ToLower(name)
	if _, dup := r.factories[name]; dup {
		panic("storage: Register called twice for " + name)
	}
	r.factories[name] = factory
	for _, alias := range aliases {
		r.aliases[strings.ToLower(alias)] = name
	}
}

// Create opens a store of the named type. Unknown types and invalid configs
// are reported as config errors.
func (r *Registry) Create(name string, config StorageConfig) (Storage, error) {
	r.mu.RLock()
	name = r.canonical(name)
	factory, ok := r.factories[name]
	r.mu.RUnlock()

	if !ok || factory == nil {
		return nil, errors.ConfigError(fmt.Sprintf("storage type %q not registered (available: %s)",
			name, strings.Join(r.Types(), ", ")))
	}

	if err := config.Validate(); err != nil {
		return nil, &errors.AppError{
			Type:    errors.ErrTypeConfig,
			Message: fmt.Sprintf("invalid %s storage config", name),
			Cause:   err,
		}
	}

	return factory.Create(config)
}

// Registered reports whether name or an alias of it has a factory
func (r *Registry) Registered(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.factories[r.canonical(name)]
	return ok
}

// Types returns the registered type names in sorted order, without aliases
func (r *Registry) Types() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	types := make([]string, 0, len(r.factories))
	for name := range r.factories {
		types = append(types, name)
	}
	sort.Strings(types)
	return types
}

// canonical resolves an alias. Callers hold mu.
func (r *Registry) canonical(name string) string {
	name = strings.ToLower(name)
	if target, ok := r.aliases[name]; ok {
		return target
	}
	return name
}

// DefaultRegistry holds the adapters registered by their packages' init
var DefaultRegistry = NewRegistry()

func Register(name string, factory StorageFactory, aliases ...string) {
	DefaultRegistry.Register(name, factory, aliases...)
}

func Create(name string, config StorageConfig) (Storage, error) {
	return DefaultRegistry.Create(name, config)
}
