package sqlstore

import (
	"fmt"
	"strings"

	"redirector/internal/storage"
)

var ruleColumns = map[string]string{
	storage.AttrID:           "id",
	storage.AttrPath:         "path",
	storage.AttrHost:         "host",
	storage.AttrVersion:      "version",
	storage.AttrRedirectURL:  "redirect_url",
	storage.AttrStatusCode:   "status_code",
	storage.AttrUTCStartTime: "utc_start_time",
	storage.AttrUTCEndTime:   "utc_end_time",
	storage.AttrOperations:   "operations",
	storage.AttrRegex:        "regex",
	storage.AttrLastAccessed: "last_accessed",
}

var hostColumns = map[string]string{
	storage.AttrHost:     "host",
	storage.AttrHostOnly: "host_only",
}

var versionColumns = map[string]string{
	storage.AttrID:            "id",
	storage.AttrActiveVersion: "active_version",
}

// buildWhere renders conds as a WHERE clause with ? placeholders. Attribute
// names are only ever mapped through columns, never interpolated.
func buildWhere(columns map[string]string, conds []storage.Condition) (string, []interface{}, error) {
	if len(conds) == 0 {
		return "", nil, nil
	}

	var args []interface{}
	parts := make([]string, 0, len(conds))
	for _, c := range conds {
		part, err := renderCondition(columns, c, &args)
		if err != nil {
			return "", nil, err
		}
		parts = append(parts, part)
	}
	return " WHERE " + strings.Join(parts, " AND "), args, nil
}

func renderCondition(columns map[string]string, c storage.Condition, args *[]interface{}) (string, error) {
	if c.IsGroup() {
		parts := make([]string, 0, len(c.Any))
		for _, sub := range c.Any {
			part, err := renderCondition(columns, sub, args)
			if err != nil {
				return "", err
			}
			parts = append(parts, part)
		}
		return "(" + strings.Join(parts, " OR ") + ")", nil
	}

	column, ok := columns[c.Attribute]
	if !ok {
		return "", fmt.Errorf("unknown attribute %q", c.Attribute)
	}

	switch c.Comparator {
	case storage.CompareEquals, "":
		if c.Value == nil {
			return column + " IS NULL", nil
		}
		*args = append(*args, c.Value)
		return column + " = ?", nil
	case storage.CompareGreaterThan:
		*args = append(*args, c.Value)
		return column + " > ?", nil
	case storage.CompareBetween:
		*args = append(*args, c.Value, c.Upper)
		return column + " BETWEEN ? AND ?", nil
	default:
		return "", fmt.Errorf("unsupported comparator %q", c.Comparator)
	}
}
