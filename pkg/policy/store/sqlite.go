package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"sentinel-hq/sentinel/pkg/policy"
)

// SQLiteStore persists policies in a SQLite database. It is suitable for
// single-instance deployments that need policies to survive restarts.
//
// The store uses WAL mode for better concurrent read performance and a
// single writer connection, matching SQLite's concurrency model.
type SQLiteStore struct {
	db *sql.DB
}

// SQLiteConfig configures the SQLite policy store.
type SQLiteConfig struct {
	// Path is the database file path. Required.
	Path string

	// BusyTimeout is how long to wait for locks before failing.
	// Default: 5 seconds.
	BusyTimeout time.Duration
}

// NewSQLiteStore opens (or creates) the policy database at the given path.
func NewSQLiteStore(cfg SQLiteConfig) (*SQLiteStore, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("db path cannot be empty")
	}
	if cfg.BusyTimeout == 0 {
		cfg.BusyTimeout = 5 * time.Second
	}

	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_busy_timeout=%d&_synchronous=NORMAL",
		cfg.Path, int(cfg.BusyTimeout.Milliseconds()))

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports a single writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	s := &SQLiteStore{db: db}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return s, nil
}

func (s *SQLiteStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS policies (
		id          TEXT PRIMARY KEY,
		name        TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		severity    TEXT NOT NULL,
		enabled     INTEGER NOT NULL DEFAULT 1,
		conditions  TEXT NOT NULL DEFAULT '[]',
		actions     TEXT NOT NULL DEFAULT '{}',
		provider    TEXT NOT NULL DEFAULT '',
		created_at  INTEGER NOT NULL,
		updated_at  INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_policies_provider ON policies(provider);
	CREATE INDEX IF NOT EXISTS idx_policies_enabled ON policies(enabled);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Get returns the policy with the given ID.
func (s *SQLiteStore) Get(ctx context.Context, id string) (*policy.Policy, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, description, severity, enabled, conditions, actions, provider, created_at, updated_at
		FROM policies WHERE id = ?`, id)

	p, err := scanPolicy(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("policy %q: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load policy %q: %w", id, err)
	}
	return p, nil
}

// List returns the policies matching the filter, ordered by ID.
func (s *SQLiteStore) List(ctx context.Context, filter Filter) ([]*policy.Policy, error) {
	query := `
		SELECT id, name, description, severity, enabled, conditions, actions, provider, created_at, updated_at
		FROM policies`
	var (
		clauses []string
		args    []any
	)
	if filter.EnabledOnly {
		clauses = append(clauses, "enabled = 1")
	}
	if filter.Provider != "" {
		clauses = append(clauses, "(provider = ? OR provider = '')")
		args = append(args, filter.Provider)
	}
	for i, c := range clauses {
		if i == 0 {
			query += " WHERE " + c
		} else {
			query += " AND " + c
		}
	}
	query += " ORDER BY id"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list policies: %w", err)
	}
	defer rows.Close()

	var policies []*policy.Policy
	for rows.Next() {
		p, err := scanPolicy(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan policy: %w", err)
		}
		policies = append(policies, p)
	}
	return policies, rows.Err()
}

// Put validates and upserts a policy.
func (s *SQLiteStore) Put(ctx context.Context, p *policy.Policy) error {
	if err := policy.Validate(p); err != nil {
		return err
	}

	conditions, err := json.Marshal(p.Conditions)
	if err != nil {
		return fmt.Errorf("failed to encode conditions: %w", err)
	}
	actions, err := json.Marshal(p.Actions)
	if err != nil {
		return fmt.Errorf("failed to encode actions: %w", err)
	}

	now := time.Now().UTC().Unix()
	enabled := 0
	if p.Enabled {
		enabled = 1
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO policies (id, name, description, severity, enabled, conditions, actions, provider, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			description = excluded.description,
			severity = excluded.severity,
			enabled = excluded.enabled,
			conditions = excluded.conditions,
			actions = excluded.actions,
			provider = excluded.provider,
			updated_at = excluded.updated_at`,
		p.ID, p.Name, p.Description, string(p.Severity), enabled,
		string(conditions), string(actions), p.Provider, now, now)
	if err != nil {
		return fmt.Errorf("failed to save policy %q: %w", p.ID, err)
	}
	return nil
}

// Delete removes the policy with the given ID.
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM policies WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete policy %q: %w", id, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("policy %q: %w", id, ErrNotFound)
	}
	return nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// scanner abstracts sql.Row and sql.Rows for scanPolicy.
type scanner interface {
	Scan(dest ...any) error
}

func scanPolicy(row scanner) (*policy.Policy, error) {
	var (
		p          policy.Policy
		severity   string
		enabled    int
		conditions string
		actions    string
		createdAt  int64
		updatedAt  int64
	)

	err := row.Scan(&p.ID, &p.Name, &p.Description, &severity, &enabled,
		&conditions, &actions, &p.Provider, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	p.Severity = policy.Severity(severity)
	p.Enabled = enabled != 0
	p.CreatedAt = time.Unix(createdAt, 0).UTC()
	p.UpdatedAt = time.Unix(updatedAt, 0).UTC()

	if err := json.Unmarshal([]byte(conditions), &p.Conditions); err != nil {
		return nil, fmt.Errorf("failed to decode conditions: %w", err)
	}
	if err := json.Unmarshal([]byte(actions), &p.Actions); err != nil {
		return nil, fmt.Errorf("failed to decode actions: %w", err)
	}
	return &p, nil
}
