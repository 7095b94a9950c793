package redirect

import (
	"context"

	"redirector/internal/storage"
)

// RuleStore is the part of the rule store the engine reads and touches
type RuleStore interface {
	SearchRules(ctx context.Context, conds ...storage.Condition) ([]*storage.Rule, error)
	PatchRule(ctx context.Context, id string, patch storage.RulePatch) error
}

// HostStore looks up per-host matching policy
type HostStore interface {
	SearchHosts(ctx context.Context, conds ...storage.Condition) ([]*storage.HostConfig, error)
}

// VersionStore looks up the active rule-set version
type VersionStore interface {
	SearchVersions(ctx context.Context, conds ...storage.Condition) ([]*storage.VersionConfig, error)
}

// Store bundles the capabilities the engine needs. storage.Storage satisfies it.
type Store interface {
	RuleStore
	HostStore
	VersionStore
}

var _ Store = storage.Storage(nil)
