package db

import (
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := OpenDB(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestMigrate_Idempotent(t *testing.T) {
	db := openTestDB(t)

	require.NoError(t, Migrate(db))
	require.NoError(t, Migrate(db))
}

func TestMigrate_CreatesAllTables(t *testing.T) {
	db := openTestDB(t)

	for _, table := range []string{"projects", "user_settings", "history_entries"} {
		var name string
		err := db.QueryRow(`SELECT name FROM sqlite_master WHERE type='table' AND name=?`, table).Scan(&name)
		require.NoError(t, err, "table %s should exist", table)
		assert.Equal(t, table, name)
	}
}

func TestMigrate_HistoryFeatureConstraint(t *testing.T) {
	db := openTestDB(t)

	_, err := db.Exec(`INSERT INTO history_entries (id, user_id, feature, seq, input, output, created_at)
		VALUES ('h1', 'u1', 'gossip', 1, 'in', 'out', '2024-01-01T00:00:00Z')`)
	assert.Error(t, err)
}

// TestMigrate_UpgradeAddsLanguageColumn simulates a database created
// before user_settings.language existed.
func TestMigrate_UpgradeAddsLanguageColumn(t *testing.T) {
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	_, err = db.Exec(`CREATE TABLE user_settings (
		user_id    TEXT PRIMARY KEY,
		provider   TEXT NOT NULL DEFAULT '',
		api_key    TEXT NOT NULL DEFAULT '',
		model      TEXT NOT NULL DEFAULT '',
		updated_at TEXT NOT NULL
	)`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO user_settings (user_id, provider, updated_at) VALUES ('u1', 'openai', '2024-01-01T00:00:00Z')`)
	require.NoError(t, err)

	require.NoError(t, Migrate(db))

	var provider, language string
	require.NoError(t, db.QueryRow(`SELECT provider, language FROM user_settings WHERE user_id = 'u1'`).Scan(&provider, &language))
	assert.Equal(t, "openai", provider)
	assert.Equal(t, "", language)
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, _, err := Open(t.Context(), "mysql", "x")
	assert.ErrorContains(t, err, "unsupported database driver")
}

func TestOpenPostgres_Unreachable(t *testing.T) {
	_, err := OpenPostgres(t.Context(), "postgres://planpilot@127.0.0.1:1/planpilot?sslmode=disable&connect_timeout=1")
	assert.ErrorContains(t, err, "connecting to postgres")
}

func TestDialect_Rebind(t *testing.T) {
	q := `SELECT * FROM projects WHERE user_id = ? AND id = ?`
	assert.Equal(t, q, SQLite.Rebind(q))
	assert.Equal(t, `SELECT * FROM projects WHERE user_id = $1 AND id = $2`, Postgres.Rebind(q))
	assert.Equal(t, "postgres", Postgres.String())
}
