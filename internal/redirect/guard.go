package redirect

import (
	"context"

	"redirector/internal/storage"
)

// Breaker runs a store call, failing fast when the store is known to be down
type Breaker interface {
	Execute(ctx context.Context, fn func() error) error
}

// Guard returns a Store whose calls all go through breaker
func Guard(store Store, breaker Breaker) Store {
	return &guardedStore{store: store, breaker: breaker}
}

type guardedStore struct {
	store   Store
	breaker Breaker
}

func (g *guardedStore) SearchRules(ctx context.Context, conds ...storage.Condition) (rules []*storage.Rule, err error) {
	err = g.breaker.Execute(ctx, func() error {
		rules, err = g.store.SearchRules(ctx, conds...)
		return err
	})
	return rules, err
}

func (g *guardedStore) PatchRule(ctx context.Context, id string, patch storage.RulePatch) error {
	return g.breaker.Execute(ctx, func() error {
		return g.store.PatchRule(ctx, id, patch)
	})
}

func (g *guardedStore) SearchHosts(ctx context.Context, conds ...storage.Condition) (hosts []*storage.HostConfig, err error) {
	err = g.breaker.Execute(ctx, func() error {
		hosts, err = g.store.SearchHosts(ctx, conds...)
		return err
	})
	return hosts, err
}

func (g *guardedStore) SearchVersions(ctx context.Context, conds ...storage.Condition) (versions []*storage.VersionConfig, err error) {
	err = g.breaker.Execute(ctx, func() error {
		versions, err = g.store.SearchVersions(ctx, conds...)
		return err
	})
	return versions, err
}
