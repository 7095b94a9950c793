package redirect

import (
	"context"
	"time"

	"github.com/dlclark/regexp2"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"redirector/internal/common/errors"
	"redirector/internal/common/logging"
	"redirector/internal/storage"
)

// compiledPattern caches compile failures too so a bad rule is not
// recompiled on every request
type compiledPattern struct {
	re  *regexp2.Regexp
	err error
}

// patternCache holds compiled regex rules keyed by pattern text
type patternCache struct {
	lru          *expirable.LRU[string, compiledPattern]
	matchTimeout time.Duration
}

func newPatternCache(size int, ttl, matchTimeout time.Duration) *patternCache {
	if size <= 0 {
		size = 1024
	}
	return &patternCache{
		lru:          expirable.NewLRU[string, compiledPattern](size, nil, ttl),
		matchTimeout: matchTimeout,
	}
}

// compile returns the cached pattern, compiling it with ECMAScript semantics
// on a miss
func (c *patternCache) compile(pattern string) (*regexp2.Regexp, error) {
	if cached, ok := c.lru.Get(pattern); ok {
		return cached.re, cached.err
	}

	re, err := regexp2.Compile(pattern, regexp2.ECMAScript)
	if err == nil && c.matchTimeout > 0 {
		re.MatchTimeout = c.matchTimeout
	}
	c.lru.Add(pattern, compiledPattern{re: re, err: err})
	return re, err
}

// rewrite replaces the first match of pattern in path with replacement,
// which may reference capture groups ($1, ${name}, $&). matched is false when
// pattern does not match.
func (c *patternCache) rewrite(pattern, path, replacement string) (result string, matched bool, err error) {
	re, err := c.compile(pattern)
	if err != nil {
		return "", false, err
	}

	ok, err := re.MatchString(path)
	if err != nil || !ok {
		return "", false, err
	}

	result, err = re.Replace(path, replacement, -1, 1)
	if err != nil {
		return "", false, err
	}
	return result, true, nil
}

// matchRegex walks regex rules in store order and returns a copy of the
// first active rule whose pattern matches path, with the rewritten target.
func (e *Engine) matchRegex(ctx context.Context, path string, at int64) (*storage.Rule, error) {
	rules, err := e.store.SearchRules(ctx, storage.Eq(storage.AttrRegex, true))
	if err != nil {
		return nil, errors.StoreError("failed to search regex rules", err)
	}

	for _, rule := range rules {
		target, matched, err := e.patterns.rewrite(rule.Path, path, rule.RedirectURL)
		if err != nil {
			e.logger.Warn("Skipping regex rule",
				logging.Field{Key: "rule_id", Value: rule.ID},
				logging.Field{Key: "pattern", Value: rule.Path},
				logging.Err(err),
			)
			continue
		}
		if !matched || !Active(rule, at) {
			continue
		}

		result := rule.Clone()
		result.RedirectURL = target
		return result, nil
	}
	return nil, nil
}
