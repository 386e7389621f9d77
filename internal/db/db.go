package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"
)

var (
	ErrNotFound = errors.New("record not found")
	ErrConflict = errors.New("record already exists")
)

// Store is the MOTK database. All methods are safe for concurrent use.
type Store struct {
	db *sql.DB
}

// Init opens (creating if needed) motk.db under dataDir.
func Init(dataDir string) (*Store, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return Open(filepath.Join(dataDir, "motk.db"))
}

// Open opens the database at path. ":memory:" gives a private in-memory
// database, used by tests.
func Open(path string) (*Store, error) {
	dsn := path + "?_pragma=journal_mode(wal)&_pragma=foreign_keys(on)&_pragma=busy_timeout(5000)"
	if path == ":memory:" {
		dsn = "file::memory:?_pragma=foreign_keys(on)"
	}
	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if path == ":memory:" {
		conn.SetMaxOpenConns(1)
	}

	s := &Store{db: conn}
	if err := s.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *Store) migrate() error {
	migrations := []string{
		`PRAGMA foreign_keys = ON`,
		`CREATE TABLE IF NOT EXISTS organizations (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL UNIQUE,
			status TEXT NOT NULL DEFAULT 'active'
		)`,
		`CREATE TABLE IF NOT EXISTS accounts (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			account_name TEXT NOT NULL UNIQUE,
			display_name TEXT NOT NULL,
			hashed_password TEXT NOT NULL,
			account_type TEXT NOT NULL DEFAULT 'artist',
			organization_id INTEGER NOT NULL REFERENCES organizations(id)
		)`,
		`CREATE TABLE IF NOT EXISTS projects (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL,
			status TEXT NOT NULL DEFAULT 'active',
			organization_id INTEGER NOT NULL REFERENCES organizations(id),
			start_date TEXT,
			end_date TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS project_members (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			project_id INTEGER NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
			account_id INTEGER REFERENCES accounts(id) ON DELETE SET NULL,
			display_name TEXT NOT NULL,
			department TEXT NOT NULL DEFAULT 'Unassigned',
			role TEXT NOT NULL DEFAULT 'Member'
		)`,
		`CREATE TABLE IF NOT EXISTS shots (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL,
			status TEXT NOT NULL DEFAULT 'pending',
			project_id INTEGER NOT NULL REFERENCES projects(id) ON DELETE CASCADE
		)`,
		`CREATE TABLE IF NOT EXISTS assets (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL,
			asset_type TEXT NOT NULL,
			status TEXT NOT NULL DEFAULT 'pending',
			project_id INTEGER NOT NULL REFERENCES projects(id) ON DELETE CASCADE
		)`,
		`CREATE TABLE IF NOT EXISTS tasks (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL,
			status TEXT NOT NULL DEFAULT 'todo',
			start_date TEXT,
			end_date TEXT,
			assigned_to_id INTEGER NOT NULL REFERENCES project_members(id),
			shot_id INTEGER REFERENCES shots(id) ON DELETE CASCADE,
			asset_id INTEGER REFERENCES assets(id) ON DELETE CASCADE,
			CHECK ((shot_id IS NULL) <> (asset_id IS NULL))
		)`,
		`CREATE TABLE IF NOT EXISTS task_dependencies (
			dependent_task_id INTEGER NOT NULL REFERENCES tasks(id) ON DELETE CASCADE,
			dependency_on_task_id INTEGER NOT NULL REFERENCES tasks(id) ON DELETE CASCADE,
			PRIMARY KEY (dependent_task_id, dependency_on_task_id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_projects_org ON projects(organization_id)`,
		`CREATE INDEX IF NOT EXISTS idx_members_project ON project_members(project_id)`,
		`CREATE INDEX IF NOT EXISTS idx_members_account ON project_members(account_id)`,
		`CREATE INDEX IF NOT EXISTS idx_shots_project ON shots(project_id)`,
		`CREATE INDEX IF NOT EXISTS idx_assets_project ON assets(project_id)`,
	}

	for _, m := range migrations {
		if _, err := s.db.Exec(m); err != nil {
			return fmt.Errorf("exec migration: %w", err)
		}
	}
	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Ping reports whether the database answers.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// wrapInsert maps a UNIQUE violation to ErrConflict and a FOREIGN KEY
// violation to ErrNotFound.
func wrapInsert(what string, err error) error {
	msg := err.Error()
	switch {
	case strings.Contains(msg, "UNIQUE constraint failed"):
		return fmt.Errorf("insert %s: %w", what, ErrConflict)
	case strings.Contains(msg, "FOREIGN KEY constraint failed"):
		return fmt.Errorf("insert %s: %w", what, ErrNotFound)
	}
	return fmt.Errorf("insert %s: %w", what, err)
}

// inClause returns "(?,?,?)" and the args for ids.
func inClause(ids []int64) (string, []any) {
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return "(" + strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",") + ")", args
}

func nullString(s *string) any {
	if s == nil || *s == "" {
		return nil
	}
	return *s
}

func stringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	v := ns.String
	return &v
}

func nullInt(p *int64) any {
	if p == nil {
		return nil
	}
	return *p
}

func int64Ptr(ni sql.NullInt64) *int64 {
	if !ni.Valid {
		return nil
	}
	v := ni.Int64
	return &v
}
