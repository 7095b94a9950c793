package redirect

import "strings"

// Params is the ordered argument list of one operation. A key seen once holds
// a single value; a second occurrence promotes it to a list.
type Params struct {
	keys   []string
	values map[string][]string
}

func newParams() *Params {
	return &Params{values: make(map[string][]string)}
}

func (p *Params) add(key, value string) {
	if _, ok := p.values[key]; !ok {
		p.keys = append(p.keys, key)
	}
	p.values[key] = append(p.values[key], value)
}

// Has reports whether key was given
func (p *Params) Has(key string) bool {
	_, ok := p.values[key]
	return ok
}

// Get returns the first value of key
func (p *Params) Get(key string) string {
	if vs := p.values[key]; len(vs) > 0 {
		return vs[0]
	}
	return ""
}

// Values returns every value of key in order of appearance
func (p *Params) Values(key string) []string {
	return append([]string(nil), p.values[key]...)
}

// IsList reports whether key occurred more than once
func (p *Params) IsList(key string) bool {
	return len(p.values[key]) > 1
}

// Keys returns the keys in order of first appearance
func (p *Params) Keys() []string {
	return append([]string(nil), p.keys...)
}

// Operations maps an operation name to its parameters
type Operations map[string]*Params

// ParseOperations parses "name[:k=v&k=v]|name..." into Operations. Keys
// without "=" get an empty value. A repeated operation name replaces the
// earlier one.
func ParseOperations(raw string) Operations {
	ops := make(Operations)
	if raw == "" {
		return ops
	}

	for _, op := range strings.Split(raw, "|") {
		name, data, hasData := strings.Cut(op, ":")
		params := newParams()
		ops[name] = params

		if !hasData || data == "" {
			continue
		}
		for _, pair := range strings.Split(data, "&") {
			key, value, _ := strings.Cut(pair, "=")
			params.add(key, value)
		}
	}
	return ops
}

// Operation names
const (
	OpQueryString = "qs"
)

// ApplyOperations rewrites target according to ops. query is the original
// request's query string, with or without its leading "?".
func ApplyOperations(target string, ops Operations, query string) string {
	qs, ok := ops[OpQueryString]
	if !ok {
		return target
	}

	switch preservePolicy(qs) {
	case preserveAll:
		return target + withQuestionMark(query)
	case preserveNone:
		return target
	}

	if !qs.Has("filter") {
		return target
	}

	values := ParseQuery(strings.TrimPrefix(query, "?"))
	for _, key := range qs.Values("filter") {
		values.Del(key)
	}
	if encoded := values.Encode(); encoded != "" {
		return target + "?" + encoded
	}
	return target
}

type preserve int

const (
	preserveUnset preserve = iota
	preserveAll
	preserveNone
)

// preservePolicy reads qs:preserve. Only a single 1 or 0 counts; lists and
// other values leave the policy unset.
func preservePolicy(qs *Params) preserve {
	if !qs.Has("preserve") || qs.IsList("preserve") {
		return preserveUnset
	}
	switch strings.TrimSpace(qs.Get("preserve")) {
	case "1":
		return preserveAll
	case "0":
		return preserveNone
	}
	return preserveUnset
}

func withQuestionMark(query string) string {
	if query == "" || strings.HasPrefix(query, "?") {
		return query
	}
	return "?" + query
}
