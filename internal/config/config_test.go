package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func env(vars map[string]string) func(string) string {
	return func(k string) string { return vars[k] }
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	dir := t.TempDir()
	cfg, err := Load(filepath.Join(dir, "config.yaml"), env(nil))
	require.NoError(t, err)

	assert.Equal(t, DefaultUserID, cfg.UserID)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, filepath.Join(dir, "planpilot.db"), cfg.Database.DSN)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, filepath.Join(dir, "session.json"), cfg.SessionFile())
	assert.False(t, cfg.Backend.Configured())
}

func TestLoad_HomeFromEnvironment(t *testing.T) {
	dir := t.TempDir()
	cfg, err := Load("", env(map[string]string{"PLANPILOT_HOME": dir}))
	require.NoError(t, err)
	assert.Equal(t, dir, cfg.Dir)
}

func TestLoad_FileThenEnvironment(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yml := `user_id: ana
log_level: debug
database:
  driver: postgres
  dsn: postgres://localhost/planpilot
backend:
  url: https://abc.supabase.co
  anon_key: file-key
server:
  allowed_origins: [https://app.example.com]
llm:
  max_attempts: 5
  requests_per_second: 0.5
`
	require.NoError(t, os.WriteFile(path, []byte(yml), 0o600))

	cfg, err := Load(path, env(map[string]string{
		"PLANPILOT_DB_DSN":           "postgres://db/override",
		"SUPABASE_ANON_KEY":          "env-key",
		"PLANPILOT_ALLOWED_ORIGINS":  "https://a.example, https://b.example ,",
		"PLANPILOT_LLM_MAX_ATTEMPTS": "7",
	}))
	require.NoError(t, err)

	assert.Equal(t, "ana", cfg.UserID)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, "postgres://db/override", cfg.Database.DSN)
	assert.Equal(t, "env-key", cfg.Backend.AnonKey)
	assert.True(t, cfg.Backend.Configured())
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, "primary", cfg.Calendar.CalendarID)

	llmCfg := cfg.LLMSettings(env(map[string]string{"PLANPILOT_LLM_MAX_ATTEMPTS": "7"}))
	assert.Equal(t, 7, llmCfg.MaxAttempts)
	assert.Equal(t, 0.5, llmCfg.RequestsPerSecond)
}

func TestLoad_Invalid(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	require.NoError(t, os.WriteFile(path, []byte("database: [oops"), 0o600))
	_, err := Load(path, env(nil))
	assert.ErrorContains(t, err, "parsing config file")

	require.NoError(t, os.WriteFile(path, []byte("database:\n  driver: mysql\n"), 0o600))
	_, err = Load(path, env(nil))
	assert.ErrorContains(t, err, "mysql")

	_, err = Load(path, env(map[string]string{"PLANPILOT_DB_DRIVER": "sqlite", "PLANPILOT_LOG_LEVEL": "loud"}))
	assert.ErrorContains(t, err, "log_level")
}

func TestParseLevel(t *testing.T) {
	lvl, err := ParseLevel("warn")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelWarn, lvl)

	lvl, err = ParseLevel("DEBUG")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, lvl)
}

func TestSaveRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sub", "config.yaml")

	cfg := Default(filepath.Dir(path))
	cfg.UserID = "bo"
	cfg.Backend.URL = "https://x.example.com"
	require.NoError(t, cfg.Save(path))

	got, err := Load(path, env(nil))
	require.NoError(t, err)
	assert.Equal(t, "bo", got.UserID)
	assert.Equal(t, "https://x.example.com", got.Backend.URL)
}
