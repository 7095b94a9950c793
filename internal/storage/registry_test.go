package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"redirector/internal/common/errors"
)

type stubFactory struct{ created int }

func (f *stubFactory) Create(StorageConfig) (Storage, error) {
	f.created++
	return nil, nil
}

func (f *stubFactory) GetType() string { return "stub" }

type badConfig struct{}

func (badConfig) Validate() error { return assert.AnError }
func (badConfig) GetType() string { return "stub" }

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	assert.False(t, r.Registered("memory"))

	_, err := r.Create("memory", GenericConfig{})
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrTypeConfig))

	stub := &stubFactory{}
	r.Register("b", stub, "bee")
	r.Register("A", &stubFactory{})
	assert.Equal(t, []string{"a", "b"}, r.Types())

	assert.True(t, r.Registered("BEE"))
	_, err = r.Create("bee", GenericConfig{})
	require.NoError(t, err)
	assert.Equal(t, 1, stub.created)

	_, err = r.Create("b", badConfig{})
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrTypeConfig))
	assert.ErrorIs(t, err, assert.AnError)
	assert.Equal(t, 1, stub.created)
}

func TestRegistry_DuplicatePanics(t *testing.T) {
	r := NewRegistry()
	r.Register("memory", &stubFactory{})
	assert.Panics(t, func() { r.Register("Memory", &stubFactory{}) })
}
