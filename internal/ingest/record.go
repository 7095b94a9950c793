package ingest

import (
	"strconv"
	"strings"
	"unicode"
)

// Column names understood by the importer
const (
	FieldPath         = "path"
	FieldHost         = "host"
	FieldVersion      = "version"
	FieldRedirectURL  = "redirectURL"
	FieldStatusCode   = "statusCode"
	FieldUTCStartTime = "utcStartTime"
	FieldUTCEndTime   = "utcEndTime"
	FieldOperations   = "operations"
	FieldIsRegex      = "isRegex"
)

// Record is one input row keyed by column name. Unknown columns are carried
// along so skips echo the row as it was given.
type Record map[string]string

func (r Record) clone() Record {
	c := make(Record, len(r))
	for k, v := range r {
		c[k] = v
	}
	return c
}

// Skip explains why a row was not loaded
type Skip struct {
	Reason string `json:"reason"`
	Item   Record `json:"item"`
}

// Skip reasons
const (
	ReasonMissingPath        = "missing path"
	ReasonMissingRedirectURL = "missing redirectURL"
	ReasonVersionNotInteger  = "version must be an integer"
	ReasonDuplicate          = "Duplicate record"
	ReasonLockLost           = "lock lost before insert"
)

// ParseLeadingInt reads an optionally signed run of digits after leading
// whitespace and ignores whatever follows, so "12px" is 12 and "abc" fails.
func ParseLeadingInt(s string) (int64, bool) {
	s = strings.TrimLeftFunc(s, unicode.IsSpace)

	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	digits := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digits {
		return 0, false
	}

	n, err := strconv.ParseInt(s[:end], 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

func optionalInt(s string) *int64 {
	if n, ok := ParseLeadingInt(s); ok {
		return &n
	}
	return nil
}

// statusCode falls back to 301 for empty or non-numeric values
func statusCode(s string) int {
	if n, err := strconv.Atoi(strings.TrimSpace(s)); err == nil && n != 0 {
		return n
	}
	return 301
}

// isRegex accepts 1 in any numeric spelling, and true
func isRegex(s string) bool {
	s = strings.TrimSpace(s)
	if strings.EqualFold(s, "true") {
		return true
	}
	f, err := strconv.ParseFloat(s, 64)
	return err == nil && f == 1
}
