package llm

import (
	"os"
	"strconv"
	"time"
)

// TaskType identifies the kind of LLM task being performed.
type TaskType string

const (
	TaskGenerate  TaskType = "generate"
	TaskNarrative TaskType = "narrative"
	TaskChat      TaskType = "chat"
	TaskTranslate TaskType = "translate"
)

// TaskConfig holds per-task LLM parameters.
type TaskConfig struct {
	Temperature float64
	MaxTokens   int
	TimeoutMs   int // overrides global if > 0
}

// Endpoints are the base URLs of each provider. Tests point them at
// local servers.
type Endpoints struct {
	Google     string
	OpenAI     string
	OpenRouter string
	Perplexity string
	// Anthropic is empty to use the SDK default.
	Anthropic string
}

// DefaultEndpoints returns the public provider URLs.
func DefaultEndpoints() Endpoints {
	return Endpoints{
		Google:     "https://generativelanguage.googleapis.com",
		OpenAI:     "https://api.openai.com/v1",
		OpenRouter: "https://openrouter.ai/api/v1",
		Perplexity: "https://api.perplexity.ai",
	}
}

// Config holds all configuration for the LLM subsystem.
type Config struct {
	LogCalls          bool
	Endpoints         Endpoints
	TimeoutMs         int
	MaxAttempts       int
	InitialBackoff    time.Duration
	BackoffMultiplier float64
	MaxBackoff        time.Duration
	// MaxConcurrent bounds in-flight calls per client; 0 means unlimited.
	MaxConcurrent int
	// RequestsPerSecond paces calls per client; 0 means unpaced.
	RequestsPerSecond float64
	Tasks             map[TaskType]TaskConfig
}

// DefaultConfig returns a Config with sensible defaults: three attempts
// with backoff starting at one second and doubling.
func DefaultConfig() Config {
	return Config{
		Endpoints:         DefaultEndpoints(),
		TimeoutMs:         60000,
		MaxAttempts:       3,
		InitialBackoff:    time.Second,
		BackoffMultiplier: 2,
		MaxBackoff:        30 * time.Second,
		MaxConcurrent:     3,
		RequestsPerSecond: 2,
		Tasks: map[TaskType]TaskConfig{
			TaskGenerate:  {Temperature: 0.3, MaxTokens: 8192, TimeoutMs: 120000},
			TaskNarrative: {Temperature: 0.5, MaxTokens: 2048},
			TaskChat:      {Temperature: 0.7, MaxTokens: 2048},
			TaskTranslate: {Temperature: 0.1, MaxTokens: 4096},
		},
	}
}

// LoadConfig reads LLM configuration from environment variables,
// falling back to defaults for any unset values.
func LoadConfig() Config {
	return ApplyEnv(DefaultConfig(), os.Getenv)
}

// ApplyEnv overlays PLANPILOT_LLM_* variables read through getenv.
func ApplyEnv(cfg Config, getenv func(string) string) Config {
	if v := getenv("PLANPILOT_LLM_LOG_CALLS"); v != "" {
		cfg.LogCalls, _ = strconv.ParseBool(v)
	}
	if v := getenv("PLANPILOT_LLM_TIMEOUT_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.TimeoutMs = n
		}
	}
	if v := getenv("PLANPILOT_LLM_MAX_ATTEMPTS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.MaxAttempts = n
		}
	}
	if v := getenv("PLANPILOT_LLM_INITIAL_BACKOFF"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d >= 0 {
			cfg.InitialBackoff = d
		}
	}
	if v := getenv("PLANPILOT_LLM_MAX_CONCURRENT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			cfg.MaxConcurrent = n
		}
	}
	if v := getenv("PLANPILOT_LLM_RPS"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f >= 0 {
			cfg.RequestsPerSecond = f
		}
	}
	if v := getenv("PLANPILOT_LLM_GOOGLE_ENDPOINT"); v != "" {
		cfg.Endpoints.Google = v
	}
	if v := getenv("PLANPILOT_LLM_OPENAI_ENDPOINT"); v != "" {
		cfg.Endpoints.OpenAI = v
	}
	if v := getenv("PLANPILOT_LLM_OPENROUTER_ENDPOINT"); v != "" {
		cfg.Endpoints.OpenRouter = v
	}
	if v := getenv("PLANPILOT_LLM_PERPLEXITY_ENDPOINT"); v != "" {
		cfg.Endpoints.Perplexity = v
	}
	if v := getenv("PLANPILOT_LLM_ANTHROPIC_ENDPOINT"); v != "" {
		cfg.Endpoints.Anthropic = v
	}

	applyTaskTimeoutEnv(&cfg, getenv, TaskGenerate, "PLANPILOT_LLM_GENERATE_TIMEOUT_MS")
	applyTaskTimeoutEnv(&cfg, getenv, TaskNarrative, "PLANPILOT_LLM_NARRATIVE_TIMEOUT_MS")
	applyTaskTimeoutEnv(&cfg, getenv, TaskChat, "PLANPILOT_LLM_CHAT_TIMEOUT_MS")
	applyTaskTimeoutEnv(&cfg, getenv, TaskTranslate, "PLANPILOT_LLM_TRANSLATE_TIMEOUT_MS")

	return cfg
}

// TaskTimeout returns the effective timeout for a given task type.
// Uses the task-specific timeout if set, otherwise the global timeout.
func (c Config) TaskTimeout(task TaskType) time.Duration {
	ms := c.TimeoutMs
	if tc, ok := c.Tasks[task]; ok && tc.TimeoutMs > 0 {
		ms = tc.TimeoutMs
	}
	return time.Duration(ms) * time.Millisecond
}

func applyTaskTimeoutEnv(cfg *Config, getenv func(string) string, task TaskType, envName string) {
	v := getenv(envName)
	if v == "" {
		return
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return
	}
	if cfg.Tasks == nil {
		cfg.Tasks = map[TaskType]TaskConfig{}
	}
	tc := cfg.Tasks[task]
	tc.TimeoutMs = n
	cfg.Tasks[task] = tc
}
