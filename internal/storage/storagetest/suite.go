// Package storagetest holds the behaviour every storage.Storage adapter must
// share. Adapter packages run it from their own tests.
package storagetest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"redirector/internal/common/errors"
	"redirector/internal/storage"
)

// Run exercises a fresh store returned by newStore for every subtest
func Run(t *testing.T, newStore func(t *testing.T) storage.Storage) {
	tests := []struct {
		name string
		fn   func(t *testing.T, s storage.Storage)
	}{
		{"InsertAssignsID", testInsertAssignsID},
		{"InsertConflict", testInsertConflict},
		{"RegexRulesAreNotUnique", testRegexRulesAreNotUnique},
		{"SearchKeepsInsertionOrder", testSearchKeepsInsertionOrder},
		{"SearchConditions", testSearchConditions},
		{"NullableColumns", testNullableColumns},
		{"GetUpdateDelete", testGetUpdateDelete},
		{"PatchRule", testPatchRule},
		{"ListCountDeleteAll", testListCountDeleteAll},
		{"Hosts", testHosts},
		{"Versions", testVersions},
		{"Health", testHealth},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newStore(t)
			t.Cleanup(func() { _ = s.Close() })
			tt.fn(t, s)
		})
	}
}

func rule(path, host string, version int) *storage.Rule {
	return &storage.Rule{
		Path:        path,
		Host:        host,
		Version:     version,
		RedirectURL: "/target" + path,
		StatusCode:  storage.DefaultStatusCode,
	}
}

func testInsertAssignsID(t *testing.T, s storage.Storage) {
	ctx := context.Background()

	stored, err := s.InsertRule(ctx, rule("/a", "", 0))
	require.NoError(t, err)
	assert.NotEmpty(t, stored.ID)

	got, err := s.GetRule(ctx, stored.ID)
	require.NoError(t, err)
	assert.Equal(t, stored, got)
}

func testInsertConflict(t *testing.T, s storage.Storage) {
	ctx := context.Background()

	_, err := s.InsertRule(ctx, rule("/a", "example.com", 1))
	require.NoError(t, err)

	_, err = s.InsertRule(ctx, rule("/a", "example.com", 1))
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrTypeConflict))
	assert.ErrorIs(t, err, storage.ErrConflict)

	// any differing key part is a different rule
	_, err = s.InsertRule(ctx, rule("/a", "", 1))
	assert.NoError(t, err)
	_, err = s.InsertRule(ctx, rule("/a", "example.com", 2))
	assert.NoError(t, err)
}

func testRegexRulesAreNotUnique(t *testing.T, s storage.Storage) {
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		r := rule("^/old/(.*)$", "", 0)
		r.Regex = true
		_, err := s.InsertRule(ctx, r)
		require.NoError(t, err)
	}

	rules, err := s.SearchRules(ctx, storage.Eq(storage.AttrRegex, true))
	require.NoError(t, err)
	assert.Len(t, rules, 2)
}

func testSearchKeepsInsertionOrder(t *testing.T, s storage.Storage) {
	ctx := context.Background()

	paths := []string{"/z", "/a", "/m", "/b"}
	for _, p := range paths {
		_, err := s.InsertRule(ctx, rule(p, "", 0))
		require.NoError(t, err)
	}

	rules, err := s.SearchRules(ctx, storage.Eq(storage.AttrVersion, 0))
	require.NoError(t, err)
	require.Len(t, rules, len(paths))
	for i, r := range rules {
		assert.Equal(t, paths[i], r.Path)
	}
}

func testSearchConditions(t *testing.T, s storage.Storage) {
	ctx := context.Background()

	for _, r := range []*storage.Rule{
		rule("/a", "", 0),
		rule("/a/", "", 0),
		rule("/a", "example.com", 0),
		rule("/b", "", 3),
	} {
		_, err := s.InsertRule(ctx, r)
		require.NoError(t, err)
	}

	either, err := s.SearchRules(ctx,
		storage.Or(storage.Eq(storage.AttrPath, "/a"), storage.Eq(storage.AttrPath, "/a/")),
		storage.Eq(storage.AttrRegex, false),
	)
	require.NoError(t, err)
	assert.Len(t, either, 3)

	exact, err := s.SearchRules(ctx, storage.Eq(storage.AttrPath, "/a"), storage.Eq(storage.AttrHost, ""))
	require.NoError(t, err)
	require.Len(t, exact, 1)
	assert.Equal(t, "", exact[0].Host)

	newer, err := s.SearchRules(ctx, storage.Gt(storage.AttrVersion, 0))
	require.NoError(t, err)
	require.Len(t, newer, 1)
	assert.Equal(t, "/b", newer[0].Path)

	ranged, err := s.SearchRules(ctx, storage.Between(storage.AttrVersion, 1, 3))
	require.NoError(t, err)
	assert.Len(t, ranged, 1)

	none, err := s.SearchRules(ctx, storage.Eq(storage.AttrPath, "/missing"))
	require.NoError(t, err)
	assert.Empty(t, none)

	_, err = s.SearchRules(ctx, storage.Eq("nope", 1))
	assert.Error(t, err)
}

func testNullableColumns(t *testing.T, s storage.Storage) {
	ctx := context.Background()

	bounded := rule("/bounded", "", 0)
	bounded.UTCStartTime = storage.Int64Ptr(100)
	bounded.UTCEndTime = storage.Int64Ptr(200)
	bounded.Operations = "qs:preserve=1"
	_, err := s.InsertRule(ctx, bounded)
	require.NoError(t, err)

	_, err = s.InsertRule(ctx, rule("/open", "", 0))
	require.NoError(t, err)

	open, err := s.SearchRules(ctx, storage.Eq(storage.AttrUTCStartTime, nil))
	require.NoError(t, err)
	require.Len(t, open, 1)
	assert.Equal(t, "/open", open[0].Path)
	assert.Nil(t, open[0].UTCEndTime)
	assert.Nil(t, open[0].LastAccessed)

	got, err := s.SearchRules(ctx, storage.Eq(storage.AttrPath, "/bounded"))
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.NotNil(t, got[0].UTCStartTime)
	assert.Equal(t, int64(100), *got[0].UTCStartTime)
	assert.Equal(t, int64(200), *got[0].UTCEndTime)
	assert.Equal(t, "qs:preserve=1", got[0].Operations)
}

func testGetUpdateDelete(t *testing.T, s storage.Storage) {
	ctx := context.Background()

	stored, err := s.InsertRule(ctx, rule("/a", "", 0))
	require.NoError(t, err)
	other, err := s.InsertRule(ctx, rule("/b", "", 0))
	require.NoError(t, err)

	stored.RedirectURL = "/elsewhere"
	stored.UTCEndTime = storage.Int64Ptr(42)
	require.NoError(t, s.UpdateRule(ctx, stored))

	got, err := s.GetRule(ctx, stored.ID)
	require.NoError(t, err)
	assert.Equal(t, "/elsewhere", got.RedirectURL)
	assert.Equal(t, int64(42), *got.UTCEndTime)

	// moving a rule onto another rule's key is a conflict
	other.Path = "/a"
	err = s.UpdateRule(ctx, other)
	assert.True(t, errors.IsType(err, errors.ErrTypeConflict))

	require.NoError(t, s.DeleteRule(ctx, stored.ID))
	_, err = s.GetRule(ctx, stored.ID)
	assert.True(t, errors.IsType(err, errors.ErrTypeNotFound))
	assert.ErrorIs(t, err, storage.ErrNotFound)

	err = s.DeleteRule(ctx, stored.ID)
	assert.True(t, errors.IsType(err, errors.ErrTypeNotFound))

	missing := rule("/c", "", 0)
	missing.ID = "does-not-exist"
	assert.True(t, errors.IsType(s.UpdateRule(ctx, missing), errors.ErrTypeNotFound))

	// the freed key can be reused
	_, err = s.InsertRule(ctx, rule("/a", "", 0))
	assert.NoError(t, err)
}

func testPatchRule(t *testing.T, s storage.Storage) {
	ctx := context.Background()

	stored, err := s.InsertRule(ctx, rule("/a", "", 0))
	require.NoError(t, err)

	require.NoError(t, s.PatchRule(ctx, stored.ID, storage.RulePatch{LastAccessed: storage.Int64Ptr(1700000000000)}))
	require.NoError(t, s.PatchRule(ctx, stored.ID, storage.RulePatch{}))

	got, err := s.GetRule(ctx, stored.ID)
	require.NoError(t, err)
	require.NotNil(t, got.LastAccessed)
	assert.Equal(t, int64(1700000000000), *got.LastAccessed)
	assert.Equal(t, stored.RedirectURL, got.RedirectURL)

	err = s.PatchRule(ctx, "missing", storage.RulePatch{LastAccessed: storage.Int64Ptr(1)})
	assert.True(t, errors.IsType(err, errors.ErrTypeNotFound))
}

func testListCountDeleteAll(t *testing.T, s storage.Storage) {
	ctx := context.Background()

	for _, p := range []string{"/1", "/2", "/3", "/4", "/5"} {
		_, err := s.InsertRule(ctx, rule(p, "", 0))
		require.NoError(t, err)
	}

	count, err := s.CountRules(ctx)
	require.NoError(t, err)
	assert.Equal(t, 5, count)

	page, err := s.ListRules(ctx, 2, 1)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, "/2", page[0].Path)
	assert.Equal(t, "/3", page[1].Path)

	all, err := s.ListRules(ctx, 0, 0)
	require.NoError(t, err)
	assert.Len(t, all, 5)

	beyond, err := s.ListRules(ctx, 10, 10)
	require.NoError(t, err)
	assert.Empty(t, beyond)

	removed, err := s.DeleteAllRules(ctx)
	require.NoError(t, err)
	assert.Equal(t, 5, removed)

	count, err = s.CountRules(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func testHosts(t *testing.T, s storage.Storage) {
	ctx := context.Background()

	require.NoError(t, s.PutHost(ctx, &storage.HostConfig{Host: "a.com", HostOnly: true}))
	require.NoError(t, s.PutHost(ctx, &storage.HostConfig{Host: "b.com"}))
	require.NoError(t, s.PutHost(ctx, &storage.HostConfig{Host: "a.com", HostOnly: false}))

	hosts, err := s.SearchHosts(ctx)
	require.NoError(t, err)
	require.Len(t, hosts, 2)
	assert.Equal(t, "a.com", hosts[0].Host)
	assert.False(t, hosts[0].HostOnly)

	require.NoError(t, s.PutHost(ctx, &storage.HostConfig{Host: "b.com", HostOnly: true}))
	strict, err := s.SearchHosts(ctx, storage.Eq(storage.AttrHostOnly, true))
	require.NoError(t, err)
	require.Len(t, strict, 1)
	assert.Equal(t, "b.com", strict[0].Host)

	require.NoError(t, s.DeleteHost(ctx, "a.com"))
	err = s.DeleteHost(ctx, "a.com")
	assert.True(t, errors.IsType(err, errors.ErrTypeNotFound))

	hosts, err = s.SearchHosts(ctx, storage.Eq(storage.AttrHost, "a.com"))
	require.NoError(t, err)
	assert.Empty(t, hosts)
}

func testVersions(t *testing.T, s storage.Storage) {
	ctx := context.Background()

	active, err := s.SearchVersions(ctx, storage.Gt(storage.AttrActiveVersion, 0))
	require.NoError(t, err)
	assert.Empty(t, active)

	require.NoError(t, s.PutVersion(ctx, &storage.VersionConfig{ActiveVersion: 0}))
	active, err = s.SearchVersions(ctx, storage.Gt(storage.AttrActiveVersion, 0))
	require.NoError(t, err)
	assert.Empty(t, active)

	require.NoError(t, s.PutVersion(ctx, &storage.VersionConfig{ActiveVersion: 4}))
	require.NoError(t, s.PutVersion(ctx, &storage.VersionConfig{ID: "secondary", ActiveVersion: 9}))

	active, err = s.SearchVersions(ctx, storage.Gt(storage.AttrActiveVersion, 0))
	require.NoError(t, err)
	require.Len(t, active, 2)
	assert.Equal(t, storage.DefaultVersionID, active[0].ID)
	assert.Equal(t, 4, active[0].ActiveVersion)
	assert.Equal(t, 9, active[1].ActiveVersion)
}

func testHealth(t *testing.T, s storage.Storage) {
	assert.NoError(t, s.Health(context.Background()))
}
