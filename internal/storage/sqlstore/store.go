// Package sqlstore implements storage.Storage on database/sql. The sqlite and
// postgres packages wrap it with their driver, schema and error mapping.
package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"math"

	"github.com/google/uuid"

	"redirector/internal/common/errors"
	"redirector/internal/storage"
)

const ruleSelect = `SELECT id, path, host, version, redirect_url, status_code,
	utc_start_time, utc_end_time, operations, regex, last_accessed FROM rules`

type Store struct {
	db      *sql.DB
	dialect Dialect
}

func New(db *sql.DB, dialect Dialect) *Store {
	return &Store{db: db, dialect: dialect}
}

// DB exposes the underlying pool
func (s *Store) DB() *sql.DB {
	return s.db
}

// Migrate runs the dialect's schema statements
func (s *Store) Migrate(ctx context.Context) error {
	for _, query := range s.dialect.Migrations {
		if _, err := s.db.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to execute migration query: %w", err)
		}
	}
	return nil
}

func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *Store) Health(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return errors.ConnectionError(fmt.Sprintf("%s ping failed", s.dialect.Name), err)
	}
	return nil
}

func (s *Store) SearchRules(ctx context.Context, conds ...storage.Condition) ([]*storage.Rule, error) {
	where, args, err := buildWhere(ruleColumns, conds)
	if err != nil {
		return nil, errors.StoreError("failed to search rules", err)
	}
	return s.queryRules(ctx, ruleSelect+where+" ORDER BY seq", args...)
}

func (s *Store) ListRules(ctx context.Context, limit, offset int) ([]*storage.Rule, error) {
	if limit <= 0 {
		limit = math.MaxInt32
	}
	if offset < 0 {
		offset = 0
	}
	return s.queryRules(ctx, ruleSelect+" ORDER BY seq LIMIT ? OFFSET ?", limit, offset)
}

func (s *Store) CountRules(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM rules").Scan(&count); err != nil {
		return 0, errors.StoreError("failed to count rules", err)
	}
	return count, nil
}

func (s *Store) GetRule(ctx context.Context, id string) (*storage.Rule, error) {
	rules, err := s.queryRules(ctx, ruleSelect+" WHERE id = ?", id)
	if err != nil {
		return nil, err
	}
	if len(rules) == 0 {
		return nil, notFound(id)
	}
	return rules[0], nil
}

func (s *Store) InsertRule(ctx context.Context, rule *storage.Rule) (*storage.Rule, error) {
	stored := rule.Clone()
	if stored.ID == "" {
		stored.ID = uuid.NewString()
	}

	query := `INSERT INTO rules (id, path, host, version, redirect_url, status_code,
		utc_start_time, utc_end_time, operations, regex, last_accessed)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := s.db.ExecContext(ctx, s.dialect.Rebind(query),
		stored.ID, stored.Path, stored.Host, stored.Version, stored.RedirectURL, stored.StatusCode,
		nullInt64(stored.UTCStartTime), nullInt64(stored.UTCEndTime), stored.Operations,
		stored.Regex, nullInt64(stored.LastAccessed))
	if err != nil {
		return nil, s.writeError("failed to insert rule", err)
	}
	return stored, nil
}

func (s *Store) UpdateRule(ctx context.Context, rule *storage.Rule) error {
	query := `UPDATE rules SET path = ?, host = ?, version = ?, redirect_url = ?, status_code = ?,
		utc_start_time = ?, utc_end_time = ?, operations = ?, regex = ?, last_accessed = ?
		WHERE id = ?`

	result, err := s.db.ExecContext(ctx, s.dialect.Rebind(query),
		rule.Path, rule.Host, rule.Version, rule.RedirectURL, rule.StatusCode,
		nullInt64(rule.UTCStartTime), nullInt64(rule.UTCEndTime), rule.Operations,
		rule.Regex, nullInt64(rule.LastAccessed), rule.ID)
	if err != nil {
		return s.writeError("failed to update rule", err)
	}
	return expectRow(result, rule.ID)
}

func (s *Store) PatchRule(ctx context.Context, id string, patch storage.RulePatch) error {
	if patch.LastAccessed == nil {
		return nil
	}

	result, err := s.db.ExecContext(ctx, s.dialect.Rebind("UPDATE rules SET last_accessed = ? WHERE id = ?"),
		*patch.LastAccessed, id)
	if err != nil {
		return errors.StoreError("failed to patch rule", err)
	}
	return expectRow(result, id)
}

func (s *Store) DeleteRule(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, s.dialect.Rebind("DELETE FROM rules WHERE id = ?"), id)
	if err != nil {
		return errors.StoreError("failed to delete rule", err)
	}
	return expectRow(result, id)
}

func (s *Store) DeleteAllRules(ctx context.Context) (int, error) {
	result, err := s.db.ExecContext(ctx, "DELETE FROM rules")
	if err != nil {
		return 0, errors.StoreError("failed to delete rules", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, errors.StoreError("failed to read deleted row count", err)
	}
	return int(n), nil
}

func (s *Store) SearchHosts(ctx context.Context, conds ...storage.Condition) ([]*storage.HostConfig, error) {
	where, args, err := buildWhere(hostColumns, conds)
	if err != nil {
		return nil, errors.StoreError("failed to search hosts", err)
	}

	rows, err := s.db.QueryContext(ctx, s.dialect.Rebind("SELECT host, host_only FROM hosts"+where+" ORDER BY seq"), args...)
	if err != nil {
		return nil, errors.StoreError("failed to search hosts", err)
	}
	defer rows.Close()

	var hosts []*storage.HostConfig
	for rows.Next() {
		h := &storage.HostConfig{}
		if err := rows.Scan(&h.Host, &h.HostOnly); err != nil {
			return nil, errors.StoreError("failed to scan host", err)
		}
		hosts = append(hosts, h)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.StoreError("failed to iterate hosts", err)
	}
	return hosts, nil
}

func (s *Store) PutHost(ctx context.Context, host *storage.HostConfig) error {
	query := `INSERT INTO hosts (host, host_only) VALUES (?, ?)
		ON CONFLICT (host) DO UPDATE SET host_only = excluded.host_only`

	if _, err := s.db.ExecContext(ctx, s.dialect.Rebind(query), host.Host, host.HostOnly); err != nil {
		return errors.StoreError("failed to save host", err)
	}
	return nil
}

func (s *Store) DeleteHost(ctx context.Context, host string) error {
	result, err := s.db.ExecContext(ctx, s.dialect.Rebind("DELETE FROM hosts WHERE host = ?"), host)
	if err != nil {
		return errors.StoreError("failed to delete host", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return errors.StoreError("failed to read deleted row count", err)
	}
	if n == 0 {
		return errors.NotFoundError("host").WithContext("host", host)
	}
	return nil
}

func (s *Store) SearchVersions(ctx context.Context, conds ...storage.Condition) ([]*storage.VersionConfig, error) {
	where, args, err := buildWhere(versionColumns, conds)
	if err != nil {
		return nil, errors.StoreError("failed to search versions", err)
	}

	rows, err := s.db.QueryContext(ctx, s.dialect.Rebind("SELECT id, active_version FROM versions"+where+" ORDER BY seq"), args...)
	if err != nil {
		return nil, errors.StoreError("failed to search versions", err)
	}
	defer rows.Close()

	var versions []*storage.VersionConfig
	for rows.Next() {
		v := &storage.VersionConfig{}
		if err := rows.Scan(&v.ID, &v.ActiveVersion); err != nil {
			return nil, errors.StoreError("failed to scan version", err)
		}
		versions = append(versions, v)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.StoreError("failed to iterate versions", err)
	}
	return versions, nil
}

func (s *Store) PutVersion(ctx context.Context, version *storage.VersionConfig) error {
	id := version.ID
	if id == "" {
		id = storage.DefaultVersionID
	}

	query := `INSERT INTO versions (id, active_version) VALUES (?, ?)
		ON CONFLICT (id) DO UPDATE SET active_version = excluded.active_version`

	if _, err := s.db.ExecContext(ctx, s.dialect.Rebind(query), id, version.ActiveVersion); err != nil {
		return errors.StoreError("failed to save version", err)
	}
	return nil
}

func (s *Store) queryRules(ctx context.Context, query string, args ...interface{}) ([]*storage.Rule, error) {
	rows, err := s.db.QueryContext(ctx, s.dialect.Rebind(query), args...)
	if err != nil {
		return nil, errors.StoreError("failed to query rules", err)
	}
	defer rows.Close()

	var rules []*storage.Rule
	for rows.Next() {
		var (
			r                      storage.Rule
			start, end, lastAccess sql.NullInt64
		)
		err := rows.Scan(&r.ID, &r.Path, &r.Host, &r.Version, &r.RedirectURL, &r.StatusCode,
			&start, &end, &r.Operations, &r.Regex, &lastAccess)
		if err != nil {
			return nil, errors.StoreError("failed to scan rule", err)
		}
		r.UTCStartTime = int64Ptr(start)
		r.UTCEndTime = int64Ptr(end)
		r.LastAccessed = int64Ptr(lastAccess)
		rules = append(rules, &r)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.StoreError("failed to iterate rules", err)
	}
	return rules, nil
}

func (s *Store) writeError(msg string, err error) error {
	if s.dialect.IsUniqueViolation != nil && s.dialect.IsUniqueViolation(err) {
		return errors.ConflictError(msg, fmt.Errorf("%w: %v", storage.ErrConflict, err))
	}
	return errors.StoreError(msg, err)
}

func expectRow(result sql.Result, id string) error {
	n, err := result.RowsAffected()
	if err != nil {
		return errors.StoreError("failed to read affected row count", err)
	}
	if n == 0 {
		return notFound(id)
	}
	return nil
}

func notFound(id string) error {
	return &errors.AppError{
		Type:    errors.ErrTypeNotFound,
		Message: "rule not found",
		Cause:   storage.ErrNotFound,
		Context: map[string]interface{}{"id": id},
	}
}

func nullInt64(p *int64) sql.NullInt64 {
	if p == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *p, Valid: true}
}

func int64Ptr(n sql.NullInt64) *int64 {
	if !n.Valid {
		return nil
	}
	return storage.Int64Ptr(n.Int64)
}
