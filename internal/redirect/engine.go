package redirect

import (
	"context"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"redirector/internal/common/cache"
	"redirector/internal/common/errors"
	"redirector/internal/common/logging"
	"redirector/internal/storage"
	"redirector/internal/urlnorm"
)

// Request is one resolution query
type Request struct {
	// Path is a bare path, a schemeless URL or an absolute URL
	Path string
	// Host overrides the host extracted from Path when set
	Host string
	// Version pins the rule-set generation; nil uses the active version
	Version *int
	// HostOnly overrides the stored host policy when set
	HostOnly *bool
	// At is the evaluation instant in epoch seconds; zero means now
	At int64
	// MatchQuery appends the request's query string to the path before matching
	MatchQuery bool
	// IgnoreSlash matches the path with and without a trailing slash
	IgnoreSlash bool
}

// Config tunes an Engine
type Config struct {
	TouchInterval     time.Duration
	RegexCacheSize    int
	RegexCacheTTL     time.Duration
	RegexMatchTimeout time.Duration
}

// DefaultConfig returns the engine defaults
func DefaultConfig() Config {
	return Config{
		TouchInterval:     30 * time.Second,
		RegexCacheSize:    1024,
		RegexCacheTTL:     10 * time.Minute,
		RegexMatchTimeout: 50 * time.Millisecond,
	}
}

// Engine resolves requests against a Store. It is safe for concurrent use.
type Engine struct {
	store    Store
	patterns *patternCache
	throttle cache.Cache
	config   Config
	logger   logging.Logger
	now      func() time.Time
	touches  sync.WaitGroup
}

// Option customises an Engine
type Option func(*Engine)

// WithLogger sets the engine's logger
func WithLogger(logger logging.Logger) Option {
	return func(e *Engine) { e.logger = logger }
}

// WithClock replaces time.Now
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithTouchCache sets the cache that throttles lastAccessed writes. Share a
// Redis-backed cache between instances to throttle across them.
func WithTouchCache(c cache.Cache) Option {
	return func(e *Engine) { e.throttle = c }
}

// NewEngine creates an engine reading from store
func NewEngine(store Store, config Config, opts ...Option) *Engine {
	e := &Engine{
		store:    store,
		patterns: newPatternCache(config.RegexCacheSize, config.RegexCacheTTL, config.RegexMatchTimeout),
		config:   config,
		logger:   logging.GetGlobalLogger(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.throttle == nil {
		e.throttle = cache.NewLocalCache(config.TouchInterval, time.Minute)
	}
	return e
}

// Resolve returns the rule req resolves to with its redirectURL rewritten.
// A nil rule with a nil error means no rule matched.
func (e *Engine) Resolve(ctx context.Context, req Request) (*storage.Rule, error) {
	parsed, err := urlnorm.Normalize(req.Path)
	if err != nil {
		return nil, &errors.AppError{Type: errors.ErrTypeValidation, Message: "invalid path", Cause: err}
	}

	host := strings.ToLower(req.Host)
	if host == "" {
		host = parsed.Host
	}

	path := parsed.Path
	if req.MatchQuery {
		path += parsed.Query
	}

	at := req.At
	if at <= 0 {
		at = e.now().Unix()
	}

	var (
		version  int
		hostOnly bool
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		version, err = ResolveVersion(gctx, e.store, req.Version)
		return err
	})
	g.Go(func() error {
		var err error
		hostOnly, err = ResolveHostOnly(gctx, e.store, host, req.HostOnly)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	m := match{
		path:        path,
		host:        host,
		version:     version,
		hostOnly:    hostOnly,
		at:          at,
		ignoreSlash: req.IgnoreSlash,
	}

	rule, err := e.findRule(ctx, m)
	if err != nil || rule == nil {
		return nil, err
	}

	e.touch(rule.ID)

	result := rule.Clone()
	if rule.Operations != "" {
		result.RedirectURL = ApplyOperations(rule.RedirectURL, ParseOperations(rule.Operations), parsed.Query)
	}
	return result, nil
}

func (e *Engine) findRule(ctx context.Context, m match) (*storage.Rule, error) {
	candidates, err := e.store.SearchRules(ctx, candidateConditions(m)...)
	if err != nil {
		return nil, errors.StoreError("failed to search rules", err).WithContext("path", m.path)
	}

	if rule, ok := pickCandidate(candidates, m); ok {
		return rule, nil
	}
	return e.matchRegex(ctx, m.path, m.at)
}
