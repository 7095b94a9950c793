// Package memory is an in-process Storage used for tests and single node
// deployments that do not need persistence.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"redirector/internal/common/errors"
	"redirector/internal/storage"
)

type ruleKey struct {
	path    string
	host    string
	version int
}

// Adapter keeps every table in insertion ordered slices guarded by one lock
type Adapter struct {
	mu       sync.RWMutex
	rules    []*storage.Rule
	index    map[string]int     // rule id -> position in rules
	unique   map[ruleKey]string // non-regex key -> rule id
	hosts    []*storage.HostConfig
	versions []*storage.VersionConfig
	closed   bool
}

func NewAdapter() *Adapter {
	return &Adapter{
		index:  make(map[string]int),
		unique: make(map[ruleKey]string),
	}
}

func (a *Adapter) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.closed = true
	return nil
}

func (a *Adapter) Health(ctx context.Context) error {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.closed {
		return errors.ConnectionError("memory store is closed", nil)
	}
	return ctx.Err()
}

func keyOf(r *storage.Rule) ruleKey {
	return ruleKey{path: r.Path, host: r.Host, version: r.Version}
}

func (a *Adapter) SearchRules(ctx context.Context, conds ...storage.Condition) ([]*storage.Rule, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	a.mu.RLock()
	defer a.mu.RUnlock()

	var out []*storage.Rule
	for _, r := range a.rules {
		ok, err := storage.MatchAll(storage.RuleAttribute(r), conds)
		if err != nil {
			return nil, errors.StoreError("failed to search rules", err)
		}
		if ok {
			out = append(out, r.Clone())
		}
	}
	return out, nil
}

func (a *Adapter) ListRules(ctx context.Context, limit, offset int) ([]*storage.Rule, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	if offset < 0 {
		offset = 0
	}
	if offset >= len(a.rules) {
		return []*storage.Rule{}, nil
	}
	end := len(a.rules)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}

	out := make([]*storage.Rule, 0, end-offset)
	for _, r := range a.rules[offset:end] {
		out = append(out, r.Clone())
	}
	return out, nil
}

func (a *Adapter) CountRules(ctx context.Context) (int, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.rules), nil
}

func (a *Adapter) GetRule(ctx context.Context, id string) (*storage.Rule, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	i, ok := a.index[id]
	if !ok {
		return nil, notFound(id)
	}
	return a.rules[i].Clone(), nil
}

func (a *Adapter) InsertRule(ctx context.Context, rule *storage.Rule) (*storage.Rule, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	stored := rule.Clone()
	if stored.ID == "" {
		stored.ID = uuid.NewString()
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if _, exists := a.index[stored.ID]; exists {
		return nil, errors.ConflictError(fmt.Sprintf("rule %s already exists", stored.ID), nil)
	}
	if !stored.Regex {
		if _, taken := a.unique[keyOf(stored)]; taken {
			return nil, conflict()
		}
		a.unique[keyOf(stored)] = stored.ID
	}

	a.index[stored.ID] = len(a.rules)
	a.rules = append(a.rules, stored)
	return stored.Clone(), nil
}

func (a *Adapter) UpdateRule(ctx context.Context, rule *storage.Rule) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	i, ok := a.index[rule.ID]
	if !ok {
		return notFound(rule.ID)
	}

	updated := rule.Clone()
	if !updated.Regex {
		if owner, taken := a.unique[keyOf(updated)]; taken && owner != updated.ID {
			return conflict()
		}
	}

	old := a.rules[i]
	if !old.Regex {
		delete(a.unique, keyOf(old))
	}
	if !updated.Regex {
		a.unique[keyOf(updated)] = updated.ID
	}
	a.rules[i] = updated
	return nil
}

func (a *Adapter) PatchRule(ctx context.Context, id string, patch storage.RulePatch) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	i, ok := a.index[id]
	if !ok {
		return notFound(id)
	}
	if patch.LastAccessed != nil {
		a.rules[i].LastAccessed = storage.Int64Ptr(*patch.LastAccessed)
	}
	return nil
}

func (a *Adapter) DeleteRule(ctx context.Context, id string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	i, ok := a.index[id]
	if !ok {
		return notFound(id)
	}

	removed := a.rules[i]
	if !removed.Regex {
		delete(a.unique, keyOf(removed))
	}
	a.rules = append(a.rules[:i], a.rules[i+1:]...)

	delete(a.index, id)
	for j := i; j < len(a.rules); j++ {
		a.index[a.rules[j].ID] = j
	}
	return nil
}

func (a *Adapter) DeleteAllRules(ctx context.Context) (int, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	n := len(a.rules)
	a.rules = nil
	a.index = make(map[string]int)
	a.unique = make(map[ruleKey]string)
	return n, nil
}

func (a *Adapter) SearchHosts(ctx context.Context, conds ...storage.Condition) ([]*storage.HostConfig, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	var out []*storage.HostConfig
	for _, h := range a.hosts {
		ok, err := storage.MatchAll(storage.HostAttribute(h), conds)
		if err != nil {
			return nil, errors.StoreError("failed to search hosts", err)
		}
		if ok {
			c := *h
			out = append(out, &c)
		}
	}
	return out, nil
}

// PutHost inserts the host policy or replaces the existing one in place
func (a *Adapter) PutHost(ctx context.Context, host *storage.HostConfig) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	c := *host
	for i, h := range a.hosts {
		if h.Host == host.Host {
			a.hosts[i] = &c
			return nil
		}
	}
	a.hosts = append(a.hosts, &c)
	return nil
}

func (a *Adapter) DeleteHost(ctx context.Context, host string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	for i, h := range a.hosts {
		if h.Host == host {
			a.hosts = append(a.hosts[:i], a.hosts[i+1:]...)
			return nil
		}
	}
	return errors.NotFoundError("host").WithContext("host", host)
}

func (a *Adapter) SearchVersions(ctx context.Context, conds ...storage.Condition) ([]*storage.VersionConfig, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	var out []*storage.VersionConfig
	for _, v := range a.versions {
		ok, err := storage.MatchAll(storage.VersionAttribute(v), conds)
		if err != nil {
			return nil, errors.StoreError("failed to search versions", err)
		}
		if ok {
			c := *v
			out = append(out, &c)
		}
	}
	return out, nil
}

func (a *Adapter) PutVersion(ctx context.Context, version *storage.VersionConfig) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	c := *version
	if c.ID == "" {
		c.ID = storage.DefaultVersionID
	}
	for i, v := range a.versions {
		if v.ID == c.ID {
			a.versions[i] = &c
			return nil
		}
	}
	a.versions = append(a.versions, &c)
	return nil
}

func notFound(id string) error {
	return &errors.AppError{
		Type:    errors.ErrTypeNotFound,
		Message: "rule not found",
		Cause:   storage.ErrNotFound,
		Context: map[string]interface{}{"id": id},
	}
}

func conflict() error {
	return errors.ConflictError("failed to insert rule", storage.ErrConflict)
}
