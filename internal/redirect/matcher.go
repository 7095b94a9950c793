package redirect

import (
	"redirector/internal/storage"
	"redirector/internal/urlnorm"
)

// match describes what a request is looking for once its version and host
// policy are known
type match struct {
	path        string
	host        string
	version     int
	hostOnly    bool
	at          int64
	ignoreSlash bool
}

// candidateConditions selects the non-regex rules stored at m.path, or at
// either slash variant of it when ignoreSlash is set
func candidateConditions(m match) []storage.Condition {
	pathCond := storage.Eq(storage.AttrPath, m.path)
	if m.ignoreSlash {
		pathCond = storage.Or(
			storage.Eq(storage.AttrPath, m.path),
			storage.Eq(storage.AttrPath, urlnorm.TogglePathSlash(m.path)),
		)
	}
	return []storage.Condition{pathCond, storage.Eq(storage.AttrRegex, false)}
}

// pickCandidate filters rules and applies the tie-break. ok is false when the
// caller should fall back to regex rules.
func pickCandidate(rules []*storage.Rule, m match) (*storage.Rule, bool) {
	survivors := filterCandidates(rules, m)

	switch len(survivors) {
	case 1:
		return survivors[0], true
	case 2:
		for _, r := range survivors {
			if r.Path == m.path {
				return r, true
			}
		}
	}
	// none, or an ambiguous set: let regex rules decide
	return nil, false
}

func filterCandidates(rules []*storage.Rule, m match) []*storage.Rule {
	kept := make([]*storage.Rule, 0, len(rules))
	for _, r := range rules {
		switch {
		case r.Version != m.version:
		case m.hostOnly && r.Host != m.host:
		case r.Host != "" && m.host == "":
		case !Active(r, m.at):
		default:
			kept = append(kept, r)
		}
	}
	return filterByHost(kept, m.host)
}

// filterByHost keeps host-agnostic rules and rules for host, and drops the
// host-agnostic ones as soon as any rule names host.
func filterByHost(rules []*storage.Rule, host string) []*storage.Rule {
	hostMatched := false
	for _, r := range rules {
		if r.Host == host {
			hostMatched = true
			break
		}
	}

	kept := make([]*storage.Rule, 0, len(rules))
	for _, r := range rules {
		switch {
		case r.Host == host:
			kept = append(kept, r)
		case r.Host == "" && !hostMatched:
			kept = append(kept, r)
		}
	}
	return kept
}
