package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"redirector/internal/storage"
	"redirector/internal/storage/storagetest"
)

func TestAdapterConformance(t *testing.T) {
	storagetest.Run(t, func(t *testing.T) storage.Storage {
		return NewAdapter()
	})
}

func TestSearchReturnsCopies(t *testing.T) {
	ctx := context.Background()
	a := NewAdapter()

	stored, err := a.InsertRule(ctx, &storage.Rule{Path: "/a", RedirectURL: "/b", UTCStartTime: storage.Int64Ptr(5)})
	require.NoError(t, err)

	rules, err := a.SearchRules(ctx, storage.Eq(storage.AttrID, stored.ID))
	require.NoError(t, err)
	require.Len(t, rules, 1)

	rules[0].RedirectURL = "/mutated"
	*rules[0].UTCStartTime = 99

	got, err := a.GetRule(ctx, stored.ID)
	require.NoError(t, err)
	assert.Equal(t, "/b", got.RedirectURL)
	assert.Equal(t, int64(5), *got.UTCStartTime)
}

func TestClosedAdapterIsUnhealthy(t *testing.T) {
	a := NewAdapter()
	require.NoError(t, a.Close())
	assert.Error(t, a.Health(context.Background()))
}

func TestFactoryRegistration(t *testing.T) {
	assert.True(t, storage.DefaultRegistry.Registered("memory"))

	s, err := storage.Create("memory", storage.GenericConfig{"type": "memory"})
	require.NoError(t, err)
	assert.IsType(t, &Adapter{}, s)
}
