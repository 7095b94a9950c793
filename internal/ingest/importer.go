package ingest

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"redirector/internal/common/logging"
	"redirector/internal/locks"
	"redirector/internal/redirect"
	"redirector/internal/storage"
	"redirector/internal/urlnorm"
)

// Store is what the importer needs from rule storage
type Store interface {
	redirect.VersionStore
	SearchRules(ctx context.Context, conds ...storage.Condition) ([]*storage.Rule, error)
	InsertRule(ctx context.Context, rule *storage.Rule) (*storage.Rule, error)
}

// Result summarises one import
type Result struct {
	Success int
	Skipped []Skip
}

// Message is the human readable summary returned to clients
func (r *Result) Message() string {
	return fmt.Sprintf("Successfully loaded %d redirects.", r.Success)
}

func (r *Result) skip(reason string, item Record) {
	r.Skipped = append(r.Skipped, Skip{Reason: reason, Item: item})
}

// Importer loads records into a Store
type Importer struct {
	store   Store
	locks   locks.LockManager
	lockTTL time.Duration
	logger  logging.Logger
}

// Option customises an Importer
type Option func(*Importer)

// WithLockManager serialises the dedupe-then-insert step per rule key.
// Without one the importer falls back to an in-process lock.
func WithLockManager(m locks.LockManager) Option {
	return func(im *Importer) { im.locks = m }
}

// WithLockTTL sets how long a per-key lock may be held
func WithLockTTL(ttl time.Duration) Option {
	return func(im *Importer) { im.lockTTL = ttl }
}

// WithLogger sets the importer's logger
func WithLogger(logger logging.Logger) Option {
	return func(im *Importer) { im.logger = logger }
}

// NewImporter creates an importer writing to store
func NewImporter(store Store, opts ...Option) *Importer {
	im := &Importer{
		store:   store,
		lockTTL: 10 * time.Second,
		logger:  logging.GetGlobalLogger(),
	}
	for _, opt := range opts {
		opt(im)
	}
	if im.locks == nil {
		im.locks = locks.NewLocalManager()
	}
	return im
}

// Import loads records in order. Per-row problems become skips; an error is
// returned only when the batch cannot proceed at all.
func (im *Importer) Import(ctx context.Context, records []Record) (*Result, error) {
	result := &Result{Skipped: []Skip{}}

	defaultVersion, err := redirect.ResolveVersion(ctx, im.store, nil)
	if err != nil {
		return nil, err
	}

	for _, record := range records {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		im.importOne(ctx, record, defaultVersion, result)
	}

	im.logger.Info("Import finished",
		logging.Field{Key: "loaded", Value: result.Success},
		logging.Field{Key: "skipped", Value: len(result.Skipped)},
	)
	return result, nil
}

func (im *Importer) importOne(ctx context.Context, record Record, defaultVersion int, result *Result) {
	item := record.clone()

	if strings.TrimSpace(item[FieldPath]) == "" {
		result.skip(ReasonMissingPath, item)
		return
	}
	if strings.TrimSpace(item[FieldRedirectURL]) == "" {
		result.skip(ReasonMissingRedirectURL, item)
		return
	}

	version := defaultVersion
	if raw := item[FieldVersion]; raw != "" {
		n, ok := ParseLeadingInt(raw)
		if !ok {
			result.skip(ReasonVersionNotInteger, item)
			return
		}
		version = int(n)
	}

	rule, err := buildRule(item, version)
	if err != nil {
		result.skip(err.Error(), item)
		return
	}

	// echo the stored form in later skips
	item[FieldPath] = rule.Path
	item[FieldHost] = rule.Host
	item[FieldVersion] = strconv.Itoa(rule.Version)

	lock, err := im.locks.AcquireLock(ctx, lockKey(rule), im.lockTTL)
	if err != nil {
		result.skip(err.Error(), item)
		return
	}
	defer lock.Release(context.Background())

	existing, err := im.store.SearchRules(ctx,
		storage.Eq(storage.AttrPath, rule.Path),
		storage.Eq(storage.AttrHost, rule.Host),
		storage.Eq(storage.AttrVersion, rule.Version),
	)
	if err != nil {
		result.skip(err.Error(), item)
		return
	}
	if len(existing) > 0 {
		result.skip(ReasonDuplicate, item)
		return
	}

	select {
	case <-lock.Lost():
		result.skip(ReasonLockLost, item)
		return
	default:
	}

	if _, err := im.store.InsertRule(ctx, rule); err != nil {
		im.logger.Debug("Rule insert failed", logging.Field{Key: "path", Value: rule.Path}, logging.Err(err))
		result.skip(err.Error(), item)
		return
	}
	result.Success++
}

// buildRule maps a validated row to the stored rule
func buildRule(item Record, version int) (*storage.Rule, error) {
	rule := &storage.Rule{
		Path:         item[FieldPath],
		Host:         item[FieldHost],
		Version:      version,
		RedirectURL:  item[FieldRedirectURL],
		StatusCode:   statusCode(item[FieldStatusCode]),
		UTCStartTime: optionalInt(item[FieldUTCStartTime]),
		UTCEndTime:   optionalInt(item[FieldUTCEndTime]),
		Operations:   item[FieldOperations],
		Regex:        isRegex(item[FieldIsRegex]),
	}
	if err := Canonicalize(rule); err != nil {
		return nil, err
	}
	return rule, nil
}

// Canonicalize puts rule into the form it is stored and matched in. The host
// is lower-cased. Regex patterns are kept verbatim; other paths are
// normalised and contribute their host when rule.Host is empty.
func Canonicalize(rule *storage.Rule) error {
	rule.Host = strings.ToLower(strings.TrimSpace(rule.Host))
	if rule.Regex {
		return nil
	}

	parsed, err := urlnorm.Normalize(rule.Path)
	if err != nil {
		return err
	}
	rule.Path = parsed.PathWithQuery()
	if rule.Host == "" {
		rule.Host = parsed.Host
	}
	return nil
}

func lockKey(rule *storage.Rule) string {
	return fmt.Sprintf("ingest:%d|%s|%s", rule.Version, rule.Host, rule.Path)
}
