package redirect

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPatternCache_Rewrite(t *testing.T) {
	c := newPatternCache(16, time.Minute, 50*time.Millisecond)

	tests := []struct {
		pattern, path, replacement string
		want                       string
		matched                    bool
	}{
		{"^/a/(\\d+)$", "/a/42", "/b/$1", "/b/42", true},
		{"/a/", "/x/a/y", "/b/", "/x/b/y", true},
		{"o", "/foo", "0", "/f0o", true},
		{"^/a", "/a", "$&/index", "/a/index", true},
		{"^/a", "/a", "$$", "$", true},
		{"^/zzz", "/a", "/b", "", false},
	}

	for _, tt := range tests {
		got, matched, err := c.rewrite(tt.pattern, tt.path, tt.replacement)
		require.NoError(t, err, tt.pattern)
		assert.Equal(t, tt.matched, matched, tt.pattern)
		assert.Equal(t, tt.want, got, tt.pattern)
	}
}

func TestPatternCache_CachesCompileResults(t *testing.T) {
	c := newPatternCache(2, time.Minute, 0)

	first, err := c.compile("^/a$")
	require.NoError(t, err)
	second, err := c.compile("^/a$")
	require.NoError(t, err)
	assert.Same(t, first, second)

	_, err = c.compile("([")
	assert.Error(t, err)
	_, err = c.compile("([")
	assert.Error(t, err, "compile errors are cached as well")

	_, _, err = c.rewrite("([", "/a", "/b")
	assert.Error(t, err)
}

func TestPatternCache_MatchTimeout(t *testing.T) {
	c := newPatternCache(4, time.Minute, 10*time.Millisecond)

	re, err := c.compile("^(a+)+$")
	require.NoError(t, err)
	assert.Equal(t, 10*time.Millisecond, re.MatchTimeout)
}
