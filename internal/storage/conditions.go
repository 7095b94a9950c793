package storage

import (
	"fmt"
	"strconv"
)

// Comparator selects how a Condition compares an attribute with its value
type Comparator string

const (
	CompareEquals      Comparator = "equals"
	CompareGreaterThan Comparator = "greater_than"
	CompareBetween     Comparator = "between"
)

// Rule attributes
const (
	AttrID           = "id"
	AttrPath         = "path"
	AttrHost         = "host"
	AttrVersion      = "version"
	AttrRedirectURL  = "redirectURL"
	AttrStatusCode   = "statusCode"
	AttrUTCStartTime = "utcStartTime"
	AttrUTCEndTime   = "utcEndTime"
	AttrOperations   = "operations"
	AttrRegex        = "regex"
	AttrLastAccessed = "lastAccessed"
)

// HostConfig and VersionConfig attributes
const (
	AttrHostOnly      = "hostOnly"
	AttrActiveVersion = "activeVersion"
)

// Condition is a single attribute test, or an OR group when Any is set.
// Conditions passed side by side to a search are ANDed.
type Condition struct {
	Attribute  string
	Comparator Comparator
	Value      interface{}
	// Upper is the inclusive upper bound for Between
	Upper interface{}
	Any   []Condition
}

// Eq matches records whose attribute equals value. A nil value matches unset attributes.
func Eq(attribute string, value interface{}) Condition {
	return Condition{Attribute: attribute, Comparator: CompareEquals, Value: value}
}

// Gt matches records whose attribute is strictly greater than value
func Gt(attribute string, value interface{}) Condition {
	return Condition{Attribute: attribute, Comparator: CompareGreaterThan, Value: value}
}

// Between matches records whose attribute lies in [lower, upper]
func Between(attribute string, lower, upper interface{}) Condition {
	return Condition{Attribute: attribute, Comparator: CompareBetween, Value: lower, Upper: upper}
}

// Or matches records satisfying at least one of conds
func Or(conds ...Condition) Condition {
	return Condition{Any: conds}
}

// IsGroup reports whether c is an OR group
func (c Condition) IsGroup() bool {
	return len(c.Any) > 0
}

func (c Condition) String() string {
	if c.IsGroup() {
		return fmt.Sprintf("or%v", c.Any)
	}
	if c.Comparator == CompareBetween {
		return fmt.Sprintf("%s between %v and %v", c.Attribute, c.Value, c.Upper)
	}
	return fmt.Sprintf("%s %s %v", c.Attribute, c.Comparator, c.Value)
}

// AttributeFunc looks up an attribute of a record. ok is false for unknown names.
type AttributeFunc func(attribute string) (value interface{}, ok bool)

// MatchAll evaluates conds against a record. Unknown attributes yield an error.
func MatchAll(get AttributeFunc, conds []Condition) (bool, error) {
	for _, c := range conds {
		ok, err := c.Match(get)
		if err != nil || !ok {
			return false, err
		}
	}
	return true, nil
}

// Match evaluates c against a record
func (c Condition) Match(get AttributeFunc) (bool, error) {
	if c.IsGroup() {
		for _, sub := range c.Any {
			ok, err := sub.Match(get)
			if err != nil {
				return false, err
			}
			if ok {
				return true, nil
			}
		}
		return false, nil
	}

	actual, ok := get(c.Attribute)
	if !ok {
		return false, fmt.Errorf("unknown attribute %q", c.Attribute)
	}

	switch c.Comparator {
	case CompareEquals, "":
		if c.Value == nil || actual == nil {
			return c.Value == nil && actual == nil, nil
		}
		cmp, ok := compare(actual, c.Value)
		return ok && cmp == 0, nil
	case CompareGreaterThan:
		if actual == nil || c.Value == nil {
			return false, nil
		}
		cmp, ok := compare(actual, c.Value)
		return ok && cmp > 0, nil
	case CompareBetween:
		if actual == nil || c.Value == nil || c.Upper == nil {
			return false, nil
		}
		lo, okLo := compare(actual, c.Value)
		hi, okHi := compare(actual, c.Upper)
		return okLo && okHi && lo >= 0 && hi <= 0, nil
	default:
		return false, fmt.Errorf("unsupported comparator %q", c.Comparator)
	}
}

// compare orders a against b. ok is false when the two cannot be compared.
func compare(a, b interface{}) (int, bool) {
	if ai, aok := toInt64(a); aok {
		bi, bok := toInt64(b)
		if !bok {
			return 0, false
		}
		switch {
		case ai < bi:
			return -1, true
		case ai > bi:
			return 1, true
		}
		return 0, true
	}

	switch av := a.(type) {
	case string:
		bv, ok := b.(string)
		if !ok {
			return 0, false
		}
		switch {
		case av < bv:
			return -1, true
		case av > bv:
			return 1, true
		}
		return 0, true
	case bool:
		bv, ok := toBool(b)
		if !ok {
			return 0, false
		}
		if av == bv {
			return 0, true
		}
		if !av {
			return -1, true
		}
		return 1, true
	}
	return 0, false
}

func toInt64(v interface{}) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case *int64:
		if n == nil {
			return 0, false
		}
		return *n, true
	case float64:
		return int64(n), true
	}
	return 0, false
}

func toBool(v interface{}) (bool, bool) {
	switch b := v.(type) {
	case bool:
		return b, true
	case string:
		parsed, err := strconv.ParseBool(b)
		return parsed, err == nil
	}
	if n, ok := toInt64(v); ok {
		return n != 0, true
	}
	return false, false
}

// RuleAttribute returns the named attribute of r
func RuleAttribute(r *Rule) AttributeFunc {
	return func(attribute string) (interface{}, bool) {
		switch attribute {
		case AttrID:
			return r.ID, true
		case AttrPath:
			return r.Path, true
		case AttrHost:
			return r.Host, true
		case AttrVersion:
			return r.Version, true
		case AttrRedirectURL:
			return r.RedirectURL, true
		case AttrStatusCode:
			return r.StatusCode, true
		case AttrUTCStartTime:
			return optionalInt64(r.UTCStartTime), true
		case AttrUTCEndTime:
			return optionalInt64(r.UTCEndTime), true
		case AttrOperations:
			return r.Operations, true
		case AttrRegex:
			return r.Regex, true
		case AttrLastAccessed:
			return optionalInt64(r.LastAccessed), true
		}
		return nil, false
	}
}

// HostAttribute returns the named attribute of h
func HostAttribute(h *HostConfig) AttributeFunc {
	return func(attribute string) (interface{}, bool) {
		switch attribute {
		case AttrHost:
			return h.Host, true
		case AttrHostOnly:
			return h.HostOnly, true
		}
		return nil, false
	}
}

// VersionAttribute returns the named attribute of v
func VersionAttribute(v *VersionConfig) AttributeFunc {
	return func(attribute string) (interface{}, bool) {
		switch attribute {
		case AttrID:
			return v.ID, true
		case AttrActiveVersion:
			return v.ActiveVersion, true
		}
		return nil, false
	}
}

func optionalInt64(p *int64) interface{} {
	if p == nil {
		return nil
	}
	return *p
}
