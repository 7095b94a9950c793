package sqlstore

import (
	"strconv"
	"strings"
)

// Dialect captures what differs between the SQL engines behind Store
type Dialect struct {
	Name string
	// Migrations are executed in order by Migrate
	Migrations []string
	// Positional switches ? placeholders to $1, $2, ...
	Positional bool
	// IsUniqueViolation recognises the driver's unique constraint error
	IsUniqueViolation func(err error) bool
}

// Rebind rewrites ? placeholders for the dialect
func (d Dialect) Rebind(query string) string {
	if !d.Positional {
		return query
	}

	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteByte(query[i])
	}
	return b.String()
}
