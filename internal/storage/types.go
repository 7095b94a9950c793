package storage

// Rule is a stored redirect mapping. Path holds a normalised path and query,
// or a regular expression when Regex is set.
type Rule struct {
	ID           string `json:"id"`
	Path         string `json:"path"`
	Host         string `json:"host"`
	Version      int    `json:"version"`
	RedirectURL  string `json:"redirectURL"`
	StatusCode   int    `json:"statusCode"`
	UTCStartTime *int64 `json:"utcStartTime,omitempty"` // epoch seconds
	UTCEndTime   *int64 `json:"utcEndTime,omitempty"`   // epoch seconds
	Operations   string `json:"operations,omitempty"`
	Regex        bool   `json:"regex"`
	LastAccessed *int64 `json:"lastAccessed,omitempty"` // epoch millis
}

// DefaultStatusCode is used for rules that do not carry one
const DefaultStatusCode = 301

// Clone returns a deep copy of the rule
func (r *Rule) Clone() *Rule {
	if r == nil {
		return nil
	}
	c := *r
	c.UTCStartTime = cloneInt64(r.UTCStartTime)
	c.UTCEndTime = cloneInt64(r.UTCEndTime)
	c.LastAccessed = cloneInt64(r.LastAccessed)
	return &c
}

// RulePatch is a partial rule update. Nil fields are left untouched.
type RulePatch struct {
	LastAccessed *int64
}

// HostConfig holds the per-host matching policy
type HostConfig struct {
	Host     string `json:"host" validate:"required"`
	HostOnly bool   `json:"hostOnly"`
}

// VersionConfig selects the active rule-set generation
type VersionConfig struct {
	ID            string `json:"id,omitempty"`
	ActiveVersion int    `json:"activeVersion" validate:"gte=0"`
}

// DefaultVersionID is the record PutVersion writes when no ID is given
const DefaultVersionID = "default"

// Int64Ptr returns a pointer to v
func Int64Ptr(v int64) *int64 {
	return &v
}

func cloneInt64(p *int64) *int64 {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
