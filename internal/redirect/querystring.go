package redirect

import (
	"net/url"
	"strings"
)

// Query is a parsed query string that remembers key order. Repeated keys are
// grouped under their first position, so "a=1&b=2&a=3" encodes as
// "a=1&a=3&b=2".
type Query struct {
	keys   []string
	values map[string][]string
}

// ParseQuery parses a query string without its leading "?". "+" decodes to a
// space; malformed escapes are kept as written.
func ParseQuery(raw string) *Query {
	q := &Query{values: make(map[string][]string)}
	if raw == "" {
		return q
	}

	for _, pair := range strings.Split(raw, "&") {
		if pair == "" {
			continue
		}
		key, value, _ := strings.Cut(pair, "=")
		q.Add(unescapeComponent(key), unescapeComponent(value))
	}
	return q
}

// Add appends value to key
func (q *Query) Add(key, value string) {
	if _, ok := q.values[key]; !ok {
		q.keys = append(q.keys, key)
	}
	q.values[key] = append(q.values[key], value)
}

// Del removes every value of key
func (q *Query) Del(key string) {
	if _, ok := q.values[key]; !ok {
		return
	}
	delete(q.values, key)
	for i, k := range q.keys {
		if k == key {
			q.keys = append(q.keys[:i], q.keys[i+1:]...)
			break
		}
	}
}

// Get returns the first value of key
func (q *Query) Get(key string) string {
	if vs := q.values[key]; len(vs) > 0 {
		return vs[0]
	}
	return ""
}

// Encode serialises q with encodeURIComponent escaping
func (q *Query) Encode() string {
	var b strings.Builder
	for _, key := range q.keys {
		for _, value := range q.values[key] {
			if b.Len() > 0 {
				b.WriteByte('&')
			}
			b.WriteString(escapeComponent(key))
			b.WriteByte('=')
			b.WriteString(escapeComponent(value))
		}
	}
	return b.String()
}

func unescapeComponent(s string) string {
	s = strings.ReplaceAll(s, "+", " ")
	if decoded, err := url.PathUnescape(s); err == nil {
		return decoded
	}
	return s
}

const upperhex = "0123456789ABCDEF"

// escapeComponent leaves A-Z a-z 0-9 and -_.!~*'() alone and
// percent-encodes every other byte
func escapeComponent(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if isUnreserved(c) {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(upperhex[c>>4])
		b.WriteByte(upperhex[c&15])
	}
	return b.String()
}

func isUnreserved(c byte) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		return true
	}
	switch c {
	case '-', '_', '.', '!', '~', '*', '\'', '(', ')':
		return true
	}
	return false
}
