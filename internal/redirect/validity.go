package redirect

import "redirector/internal/storage"

// Active reports whether rule's time window contains at (epoch seconds).
// Both bounds are inclusive; a missing or zero bound is unbounded.
func Active(rule *storage.Rule, at int64) bool {
	if start := rule.UTCStartTime; start != nil && *start != 0 && at < *start {
		return false
	}
	if end := rule.UTCEndTime; end != nil && *end != 0 && at > *end {
		return false
	}
	return true
}
