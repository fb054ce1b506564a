package history

import (
	"database/sql"
	"fmt"
)

// SchemaVersion is the newest migration this build knows about.
const SchemaVersion = 2

type migration struct {
	version int
	sql     string
}

var migrations = []migration{
	{
		version: 1,
		sql: `
CREATE TABLE IF NOT EXISTS runs (
  id TEXT PRIMARY KEY,
  created_at_utc TEXT NOT NULL,
  repository_owner TEXT NOT NULL DEFAULT '',
  repository_name TEXT NOT NULL DEFAULT '',
  pr_number TEXT NOT NULL DEFAULT '',
  workflow_id TEXT NOT NULL DEFAULT '',
  branch_name TEXT NOT NULL DEFAULT '',
  expectation_commit TEXT NOT NULL DEFAULT '',
  actual_commit TEXT NOT NULL DEFAULT '',
  failure_count INTEGER NOT NULL DEFAULT 0,
  component_count INTEGER NOT NULL DEFAULT 0,
  report_json TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_runs_created_at ON runs(created_at_utc);
CREATE INDEX IF NOT EXISTS idx_runs_branch ON runs(branch_name);
CREATE TABLE IF NOT EXISTS run_components (
  run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
  component_tag_name TEXT NOT NULL,
  failure_count INTEGER NOT NULL,
  PRIMARY KEY (run_id, component_tag_name)
);
`,
	},
	{
		version: 2,
		sql: `
ALTER TABLE runs ADD COLUMN skipped_count INTEGER NOT NULL DEFAULT 0;
ALTER TABLE runs ADD COLUMN duplicate_count INTEGER NOT NULL DEFAULT 0;
CREATE INDEX IF NOT EXISTS idx_run_components_tag ON run_components(component_tag_name);
`,
	},
}

func EnsureSchema(db *sql.DB) error {
	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS schema_migrations (
  version INTEGER PRIMARY KEY,
  applied_at_utc TEXT NOT NULL DEFAULT (CURRENT_TIMESTAMP)
);
`); err != nil {
		return fmt.Errorf("create schema_migrations table: %w", err)
	}

	var current int
	if err := db.QueryRow(`SELECT COALESCE(MAX(version), 0) FROM schema_migrations`).Scan(&current); err != nil {
		return fmt.Errorf("read schema_migrations version: %w", err)
	}
	if current > SchemaVersion {
		return fmt.Errorf("schema version %d is newer than supported version %d", current, SchemaVersion)
	}

	for _, m := range migrations {
		if m.version <= current {
			continue
		}

		tx, err := db.Begin()
		if err != nil {
			return fmt.Errorf("begin migration %d: %w", m.version, err)
		}
		if _, err := tx.Exec(m.sql); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("apply migration %d: %w", m.version, err)
		}
		if _, err := tx.Exec(`INSERT INTO schema_migrations(version) VALUES (?)`, m.version); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("record migration %d: %w", m.version, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration %d: %w", m.version, err)
		}
	}

	return nil
}
