package redirect

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseOperations(t *testing.T) {
	ops := ParseOperations("qs:filter=ref&filter=utm_source&keep=1|noop|tag:a=b=c&flag")

	require.Contains(t, ops, "qs")
	qs := ops["qs"]
	assert.Equal(t, []string{"filter", "keep"}, qs.Keys())
	assert.Equal(t, []string{"ref", "utm_source"}, qs.Values("filter"))
	assert.True(t, qs.IsList("filter"))
	assert.False(t, qs.IsList("keep"))
	assert.Equal(t, "1", qs.Get("keep"))

	require.Contains(t, ops, "noop")
	assert.Empty(t, ops["noop"].Keys())

	tag := ops["tag"]
	assert.Equal(t, "b=c", tag.Get("a"), "value keeps everything after the first '='")
	assert.True(t, tag.Has("flag"))
	assert.Equal(t, "", tag.Get("flag"))
}

func TestParseOperations_Promotion(t *testing.T) {
	single := ParseOperations("qs:filter=a")["qs"]
	assert.False(t, single.IsList("filter"))
	assert.Equal(t, []string{"a"}, single.Values("filter"))

	double := ParseOperations("qs:filter=a&filter=b")["qs"]
	assert.True(t, double.IsList("filter"))
	assert.Equal(t, []string{"a", "b"}, double.Values("filter"))

	triple := ParseOperations("qs:filter=a&filter=b&filter=c")["qs"]
	assert.Equal(t, []string{"a", "b", "c"}, triple.Values("filter"))
}

func TestParseOperations_Empty(t *testing.T) {
	assert.Empty(t, ParseOperations(""))
}

func TestApplyOperations(t *testing.T) {
	tests := []struct {
		name       string
		operations string
		query      string
		want       string
	}{
		{"no qs operation", "other:x=1", "?a=1", "/x"},
		{"preserve", "qs:preserve=1", "?a=1", "/x?a=1"},
		{"preserve without query", "qs:preserve=1", "", "/x"},
		{"preserve zero", "qs:preserve=0", "?a=1", "/x"},
		{"preserve zero wins over filter", "qs:preserve=0&filter=a", "?a=1&b=2", "/x"},
		{"filter single key", "qs:filter=ref", "?ref=abc&id=2", "/x?id=2"},
		{"filter list", "qs:filter=a&filter=b", "?a=1&b=2&c=3", "/x?c=3"},
		{"filter removes everything", "qs:filter=a", "?a=1", "/x"},
		{"filter repeated query key", "qs:filter=ref", "?id=1&ref=x&id=2", "/x?id=1&id=2"},
		{"filter re-encodes", "qs:filter=ref", "?q=a+b&ref=1&s=%2F", "/x?q=a%20b&s=%2F"},
		{"unknown preserve falls through to filter", "qs:preserve=yes&filter=a", "?a=1&b=2", "/x?b=2"},
		{"preserve list falls through to filter", "qs:preserve=1&preserve=0&filter=a", "?a=1&b=2", "/x?b=2"},
		{"qs without arguments", "qs", "?a=1", "/x"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ApplyOperations("/x", ParseOperations(tt.operations), tt.query)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestQuery(t *testing.T) {
	q := ParseQuery("a=1&b=2&a=3&empty&=v&&bad=%zz")

	assert.Equal(t, "1", q.Get("a"))
	assert.Equal(t, "", q.Get("empty"))
	assert.Equal(t, "%zz", q.Get("bad"))
	assert.Equal(t, "a=1&a=3&b=2&empty=&=v&bad=%25zz", q.Encode())

	q.Del("a")
	q.Del("missing")
	assert.Equal(t, "b=2&empty=&=v&bad=%25zz", q.Encode())
}

func TestEscapeComponent(t *testing.T) {
	assert.Equal(t, "AZaz09-_.!~*'()", escapeComponent("AZaz09-_.!~*'()"))
	assert.Equal(t, "a%20b%26c%3Dd%2F%3F", escapeComponent("a b&c=d/?"))
	assert.Equal(t, "%C3%BC", escapeComponent("ü"))
}
