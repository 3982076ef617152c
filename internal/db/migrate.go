package db

import (
	"database/sql"
	"fmt"
	"strings"
)

// Migrate runs all schema migrations. Statements are portable between
// SQLite and Postgres and safe to re-run.
func Migrate(db *sql.DB) error {
	for i, stmt := range migrations {
		if _, err := db.Exec(stmt); err != nil {
			// ALTER TABLE ADD COLUMN is re-run on every start.
			if isDuplicateColumn(err) {
				continue
			}
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	return nil
}

func isDuplicateColumn(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "duplicate column name") || // sqlite
		(strings.Contains(msg, "column") && strings.Contains(msg, "already exists")) // postgres
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS projects (
		id              TEXT PRIMARY KEY,
		user_id         TEXT NOT NULL,
		name            TEXT NOT NULL DEFAULT '',
		objective       TEXT NOT NULL,
		criteria        TEXT NOT NULL DEFAULT '{}',
		plan            TEXT,
		structure       TEXT,
		schedule        TEXT,
		budget          TEXT,
		risk            TEXT,
		kpi_report      TEXT,
		s_curve_report  TEXT,
		consulting_plan TEXT,
		created_at      TEXT NOT NULL,
		updated_at      TEXT NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_projects_user ON projects(user_id, updated_at)`,

	`CREATE TABLE IF NOT EXISTS user_settings (
		user_id    TEXT PRIMARY KEY,
		provider   TEXT NOT NULL DEFAULT '',
		api_key    TEXT NOT NULL DEFAULT '',
		model      TEXT NOT NULL DEFAULT '',
		updated_at TEXT NOT NULL
	)`,

	// Added after the first release.
	`ALTER TABLE user_settings ADD COLUMN language TEXT NOT NULL DEFAULT ''`,

	`CREATE TABLE IF NOT EXISTS history_entries (
		id         TEXT PRIMARY KEY,
		user_id    TEXT NOT NULL,
		feature    TEXT NOT NULL
		           CHECK(feature IN ('chat','translator','generation')),
		seq        INTEGER NOT NULL,
		input      TEXT NOT NULL,
		output     TEXT NOT NULL,
		created_at TEXT NOT NULL
	)`,

	`CREATE UNIQUE INDEX IF NOT EXISTS idx_history_user_feature_seq ON history_entries(user_id, feature, seq)`,
}
