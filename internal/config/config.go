// Package config loads ~/.planpilot/config.yaml and applies PLANPILOT_*
// environment overrides.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/alexanderramin/planpilot/internal/backend"
	"github.com/alexanderramin/planpilot/internal/domain"
	"github.com/alexanderramin/planpilot/internal/llm"
)

// DefaultUserID owns local data when no backend session exists.
const DefaultUserID = "local"

type DatabaseConfig struct {
	// Driver is "sqlite" or "postgres".
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn"`
}

type ServerConfig struct {
	Addr           string   `yaml:"addr"`
	JWTSecret      string   `yaml:"jwt_secret"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

type CalendarConfig struct {
	CredentialsFile string `yaml:"credentials_file"`
	TokenFile       string `yaml:"token_file"`
	CalendarID      string `yaml:"calendar_id"`
}

// LLMConfig holds the tunables exposed in the file. Zero values keep the
// llm package defaults.
type LLMConfig struct {
	LogCalls          bool    `yaml:"log_calls"`
	TimeoutMs         int     `yaml:"timeout_ms"`
	MaxAttempts       int     `yaml:"max_attempts"`
	MaxConcurrent     int     `yaml:"max_concurrent"`
	RequestsPerSecond float64 `yaml:"requests_per_second"`
}

type Config struct {
	UserID   string         `yaml:"user_id"`
	LogLevel string         `yaml:"log_level"`
	Database DatabaseConfig `yaml:"database"`
	Backend  backend.Config `yaml:"backend"`
	Server   ServerConfig   `yaml:"server"`
	Calendar CalendarConfig `yaml:"calendar"`
	LLM      LLMConfig      `yaml:"llm"`

	// Dir holds the config file, the local database and stored tokens.
	Dir string `yaml:"-"`
}

// DefaultDir is ~/.planpilot, or ./.planpilot when the home directory is
// unknown.
func DefaultDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".planpilot"
	}
	return filepath.Join(home, ".planpilot")
}

// Default returns the configuration used when no file exists.
func Default(dir string) *Config {
	return &Config{
		UserID:   DefaultUserID,
		LogLevel: "info",
		Database: DatabaseConfig{Driver: "sqlite", DSN: filepath.Join(dir, "planpilot.db")},
		Server:   ServerConfig{Addr: ":8080", AllowedOrigins: []string{"*"}},
		Calendar: CalendarConfig{
			CredentialsFile: filepath.Join(dir, "credentials.json"),
			TokenFile:       filepath.Join(dir, "calendar_token.json"),
			CalendarID:      "primary",
		},
		Dir: dir,
	}
}

// Load reads path over the defaults. A missing file is not an error. An
// empty path means DefaultDir()/config.yaml.
func Load(path string, getenv func(string) string) (*Config, error) {
	if path == "" {
		path = filepath.Join(domain.CoalesceStr(getenv("PLANPILOT_HOME"), DefaultDir()), "config.yaml")
	}
	cfg := Default(filepath.Dir(path))

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("reading config file: %w", err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	cfg.applyEnv(getenv)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(getenv func(string) string) {
	c.UserID = domain.CoalesceStr(getenv("PLANPILOT_USER"), c.UserID)
	c.LogLevel = domain.CoalesceStr(getenv("PLANPILOT_LOG_LEVEL"), c.LogLevel)
	c.Database.Driver = domain.CoalesceStr(getenv("PLANPILOT_DB_DRIVER"), c.Database.Driver)
	c.Database.DSN = domain.CoalesceStr(getenv("PLANPILOT_DB_DSN"), c.Database.DSN)
	c.Backend.URL = domain.CoalesceStr(getenv("PLANPILOT_BACKEND_URL"), getenv("SUPABASE_URL"), c.Backend.URL)
	c.Backend.AnonKey = domain.CoalesceStr(getenv("PLANPILOT_BACKEND_ANON_KEY"), getenv("SUPABASE_ANON_KEY"), c.Backend.AnonKey)
	c.Server.Addr = domain.CoalesceStr(getenv("PLANPILOT_ADDR"), c.Server.Addr)
	c.Server.JWTSecret = domain.CoalesceStr(getenv("PLANPILOT_JWT_SECRET"), c.Server.JWTSecret)
	if v := getenv("PLANPILOT_ALLOWED_ORIGINS"); v != "" {
		c.Server.AllowedOrigins = splitList(v)
	}
	c.Calendar.CalendarID = domain.CoalesceStr(getenv("PLANPILOT_CALENDAR_ID"), c.Calendar.CalendarID)
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Validate rejects values no component can run with.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("database.driver %q: must be sqlite or postgres", c.Database.Driver)
	}
	if c.Database.DSN == "" {
		return fmt.Errorf("database.dsn is required")
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// ParseLevel maps debug, info, warn and error to slog levels.
func ParseLevel(s string) (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return 0, fmt.Errorf("log_level %q: %w", s, err)
	}
	return lvl, nil
}

// Logger builds the text logger every component writes through.
func (c *Config) Logger(w io.Writer) *slog.Logger {
	lvl, err := ParseLevel(c.LogLevel)
	if err != nil {
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl}))
}

// LLMSettings overlays the file tunables on llm defaults, then the
// PLANPILOT_LLM_* environment.
func (c *Config) LLMSettings(getenv func(string) string) llm.Config {
	cfg := llm.DefaultConfig()
	if c.LLM.LogCalls {
		cfg.LogCalls = true
	}
	if c.LLM.TimeoutMs > 0 {
		cfg.TimeoutMs = c.LLM.TimeoutMs
	}
	if c.LLM.MaxAttempts > 0 {
		cfg.MaxAttempts = c.LLM.MaxAttempts
	}
	if c.LLM.MaxConcurrent > 0 {
		cfg.MaxConcurrent = c.LLM.MaxConcurrent
	}
	if c.LLM.RequestsPerSecond > 0 {
		cfg.RequestsPerSecond = c.LLM.RequestsPerSecond
	}
	return llm.ApplyEnv(cfg, getenv)
}

// SessionFile stores the backend session between CLI runs.
func (c *Config) SessionFile() string {
	return filepath.Join(c.Dir, "session.json")
}

// Save writes the configuration as YAML, creating the directory.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
