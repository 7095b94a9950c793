package ingest

import (
	"context"
	"os"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"redirector/internal/common/logging"
	"redirector/internal/storage"
	"redirector/internal/storage/memory"
)

func newImporter(t *testing.T) (*Importer, *memory.Adapter) {
	t.Helper()
	store := memory.NewAdapter()
	return NewImporter(store, WithLogger(logging.NewNopLogger())), store
}

func loadSample(t *testing.T) []Record {
	t.Helper()
	f, err := os.Open("testdata/redirects.csv")
	require.NoError(t, err)
	defer f.Close()

	records, err := DecodeCSV(f)
	require.NoError(t, err)
	require.Len(t, records, 15)
	return records
}

func TestImport_Idempotent(t *testing.T) {
	ctx := context.Background()
	importer, store := newImporter(t)
	records := loadSample(t)

	first, err := importer.Import(ctx, records)
	require.NoError(t, err)
	assert.Equal(t, 15, first.Success)
	assert.Empty(t, first.Skipped)
	assert.Equal(t, "Successfully loaded 15 redirects.", first.Message())

	second, err := importer.Import(ctx, records)
	require.NoError(t, err)
	assert.Equal(t, 0, second.Success)
	require.Len(t, second.Skipped, 15)
	for _, skip := range second.Skipped {
		assert.Equal(t, ReasonDuplicate, skip.Reason)
	}
	assert.Equal(t, "Successfully loaded 0 redirects.", second.Message())

	count, err := store.CountRules(ctx)
	require.NoError(t, err)
	assert.Equal(t, 15, count)
}

func TestImport_EmptyBatch(t *testing.T) {
	importer, _ := newImporter(t)

	for i := 0; i < 2; i++ {
		result, err := importer.Import(context.Background(), nil)
		require.NoError(t, err)
		assert.Equal(t, 0, result.Success)
		assert.NotNil(t, result.Skipped)
		assert.Empty(t, result.Skipped)
	}
}

func TestImport_Validation(t *testing.T) {
	importer, _ := newImporter(t)

	records := []Record{
		{FieldRedirectURL: "/x"},
		{FieldPath: "/a"},
		{FieldPath: "/a", FieldRedirectURL: "/x", FieldVersion: "abc"},
		{FieldPath: "/a%zz", FieldRedirectURL: "/x"},
		{FieldPath: "/ok", FieldRedirectURL: "/x", "extra": "kept"},
	}

	result, err := importer.Import(context.Background(), records)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Success)
	require.Len(t, result.Skipped, 4)

	assert.Equal(t, ReasonMissingPath, result.Skipped[0].Reason)
	assert.Equal(t, ReasonMissingRedirectURL, result.Skipped[1].Reason)
	assert.Equal(t, ReasonVersionNotInteger, result.Skipped[2].Reason)
	assert.Equal(t, "abc", result.Skipped[2].Item[FieldVersion], "skips echo the row as given")
	assert.Contains(t, result.Skipped[3].Reason, "invalid URL")
}

func TestImport_RuleMapping(t *testing.T) {
	ctx := context.Background()
	importer, store := newImporter(t)

	records := []Record{
		{FieldPath: "https://Shop.Example.com/a/./b?x=1", FieldRedirectURL: "/t1"},
		{FieldPath: "//cdn.example.com/c", FieldHost: "Own.Example.com", FieldRedirectURL: "/t2"},
		{FieldPath: "/d", FieldRedirectURL: "/t3", FieldVersion: "4px", FieldStatusCode: "302",
			FieldUTCStartTime: "100", FieldUTCEndTime: "not a time", FieldOperations: "qs:preserve=1"},
		{FieldPath: "/e", FieldRedirectURL: "/t4", FieldStatusCode: "moved"},
		{FieldPath: "^/f/(.*)$", FieldRedirectURL: "/g/$1", FieldIsRegex: "1"},
		{FieldPath: "/h", FieldRedirectURL: "/t5", FieldIsRegex: "0"},
	}

	result, err := importer.Import(ctx, records)
	require.NoError(t, err)
	require.Equal(t, 6, result.Success, result.Skipped)

	rules, err := store.ListRules(ctx, 0, 0)
	require.NoError(t, err)
	require.Len(t, rules, 6)

	assert.Equal(t, "/a/b?x=1", rules[0].Path)
	assert.Equal(t, "shop.example.com", rules[0].Host)

	assert.Equal(t, "/c", rules[1].Path)
	assert.Equal(t, "own.example.com", rules[1].Host, "the row's host wins over the extracted one")

	assert.Equal(t, 4, rules[2].Version)
	assert.Equal(t, 302, rules[2].StatusCode)
	require.NotNil(t, rules[2].UTCStartTime)
	assert.Equal(t, int64(100), *rules[2].UTCStartTime)
	assert.Nil(t, rules[2].UTCEndTime)
	assert.Equal(t, "qs:preserve=1", rules[2].Operations)

	assert.Equal(t, storage.DefaultStatusCode, rules[3].StatusCode)

	assert.True(t, rules[4].Regex)
	assert.Equal(t, "^/f/(.*)$", rules[4].Path, "regex patterns are stored verbatim")

	assert.False(t, rules[5].Regex)
}

func TestImport_DefaultsToActiveVersion(t *testing.T) {
	ctx := context.Background()
	importer, store := newImporter(t)
	require.NoError(t, store.PutVersion(ctx, &storage.VersionConfig{ActiveVersion: 3}))

	result, err := importer.Import(ctx, []Record{
		{FieldPath: "/a", FieldRedirectURL: "/x"},
		{FieldPath: "/a", FieldRedirectURL: "/x", FieldVersion: "0"},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, result.Success)

	rules, err := store.SearchRules(ctx, storage.Eq(storage.AttrPath, "/a"))
	require.NoError(t, err)
	require.Len(t, rules, 2)
	assert.Equal(t, 3, rules[0].Version)
	assert.Equal(t, 0, rules[1].Version)
}

func TestImport_DuplicatesWithinBatch(t *testing.T) {
	importer, _ := newImporter(t)

	row := Record{FieldPath: "/same", FieldRedirectURL: "/x"}
	result, err := importer.Import(context.Background(), []Record{row, row, {FieldPath: "/same/", FieldRedirectURL: "/x"}})
	require.NoError(t, err)
	assert.Equal(t, 2, result.Success, "the slash variant is a different rule")
	require.Len(t, result.Skipped, 1)
	assert.Equal(t, ReasonDuplicate, result.Skipped[0].Reason)
}

func TestImport_ConcurrentBatches(t *testing.T) {
	ctx := context.Background()
	importer, store := newImporter(t)
	records := loadSample(t)

	results := make([]*Result, 4)
	var wg sync.WaitGroup
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			result, err := importer.Import(ctx, records)
			if assert.NoError(t, err) {
				results[i] = result
			}
		}(i)
	}
	wg.Wait()

	loaded := 0
	for _, r := range results {
		require.NotNil(t, r)
		loaded += r.Success
	}
	assert.Equal(t, 15, loaded)

	count, err := store.CountRules(ctx)
	require.NoError(t, err)
	assert.Equal(t, 15, count)
}

func TestImport_CancelledContext(t *testing.T) {
	importer, _ := newImporter(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := importer.Import(ctx, []Record{{FieldPath: "/a", FieldRedirectURL: "/x"}})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestParseLeadingInt(t *testing.T) {
	tests := []struct {
		in   string
		want int64
		ok   bool
	}{
		{"12", 12, true},
		{" 7", 7, true},
		{"-3", -3, true},
		{"+4", 4, true},
		{"12px", 12, true},
		{"1.9", 1, true},
		{"abc", 0, false},
		{"", 0, false},
		{"-", 0, false},
	}
	for _, tt := range tests {
		got, ok := ParseLeadingInt(tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestIsRegex(t *testing.T) {
	for _, v := range []string{"1", " 1", "1.0", "true", "TRUE"} {
		assert.True(t, isRegex(v), v)
	}
	for _, v := range []string{"", "0", "yes", "2"} {
		assert.False(t, isRegex(v), v)
	}
}
