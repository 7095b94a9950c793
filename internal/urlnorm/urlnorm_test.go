package urlnorm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  Result
	}{
		{"bare path", "/a/b", Result{Path: "/a/b"}},
		{"bare path with query", "/a/b?x=1&y=2", Result{Path: "/a/b", Query: "?x=1&y=2"}},
		{"trailing slash kept", "/a/b/", Result{Path: "/a/b/"}},
		{"relative path", "xxx", Result{Path: "/xxx"}},
		{"dot segments", "/a/./b/../c", Result{Path: "/a/c"}},
		{"fragment dropped", "/a#frag", Result{Path: "/a"}},
		{"empty query marker", "/a?", Result{Path: "/a"}},
		{"schemeless", "//Example.COM/p?q=1", Result{Host: "example.com", Path: "/p", Query: "?q=1"}},
		{"absolute https", "https://www.example.com/shop/", Result{Host: "www.example.com", Path: "/shop/"}},
		{"absolute http with port", "http://example.com:8080/x", Result{Host: "example.com:8080", Path: "/x"}},
		{"absolute without path", "https://example.com", Result{Host: "example.com", Path: "/"}},
		{"absolute dot segments", "https://example.com/a/../b", Result{Host: "example.com", Path: "/b"}},
		{"idn host", "https://bücher.example/x", Result{Host: "xn--bcher-kva.example", Path: "/x"}},
		{"other scheme keeps path only", "ftp://files.example.com/pub", Result{Path: "/pub"}},
		{"space is escaped", "/a b", Result{Path: "/a%20b"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Normalize(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	inputs := []string{
		"/a/b",
		"/a/b/?x=1",
		"https://example.com/p%20q?r=%2F",
		"//example.com/shop/item?id=7",
		"relative/path",
	}

	for _, input := range inputs {
		first, err := Normalize(input)
		require.NoError(t, err)

		second, err := Normalize(first.PathWithQuery())
		require.NoError(t, err)

		assert.Empty(t, second.Host, input)
		assert.Equal(t, first.Path, second.Path, input)
		assert.Equal(t, first.Query, second.Query, input)
	}
}

func TestNormalize_Invalid(t *testing.T) {
	for _, input := range []string{"/a%zz", "http://[::1"} {
		_, err := Normalize(input)
		assert.ErrorIs(t, err, ErrInvalidURL, input)
	}
}

func TestSplit(t *testing.T) {
	host, path, query, err := Split("//example.com/a?b=c")
	require.NoError(t, err)
	assert.Equal(t, "example.com", host)
	assert.Equal(t, "/a", path)
	assert.Equal(t, "?b=c", query)
}

func TestTogglePathSlash(t *testing.T) {
	assert.Equal(t, "/a/b/", TogglePathSlash("/a/b"))
	assert.Equal(t, "/a/b", TogglePathSlash("/a/b/"))
	assert.Equal(t, "", TogglePathSlash("/"))
}
