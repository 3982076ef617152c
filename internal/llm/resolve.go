package llm

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/planpilot/internal/domain"
)

// ProviderName identifies one supported LLM vendor.
type ProviderName string

const (
	ProviderGoogle     ProviderName = "google"
	ProviderOpenAI     ProviderName = "openai"
	ProviderOpenRouter ProviderName = "openrouter"
	ProviderPerplexity ProviderName = "perplexity"
	ProviderAnthropic  ProviderName = "anthropic"
)

// Providers lists the supported providers; Google is the default.
var Providers = []ProviderName{ProviderGoogle, ProviderOpenAI, ProviderOpenRouter, ProviderPerplexity, ProviderAnthropic}

// ParseProvider resolves a provider name. "gemini" is accepted for Google.
func ParseProvider(s string) (ProviderName, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	if name == "gemini" {
		return ProviderGoogle, nil
	}
	for _, p := range Providers {
		if string(p) == name {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownProvider, s)
}

// envKeys are the variables consulted, in order, for each provider's key.
var envKeys = map[ProviderName][]string{
	ProviderGoogle:     {"GEMINI_API_KEY", "API_KEY"},
	ProviderOpenAI:     {"OPENAI_API_KEY"},
	ProviderOpenRouter: {"OPENROUTER_API_KEY"},
	ProviderPerplexity: {"PERPLEXITY_API_KEY"},
	ProviderAnthropic:  {"ANTHROPIC_API_KEY"},
}

// ResolvedAIConfig is the provider selection for one request. It is built
// once and passed explicitly into every generation call.
type ResolvedAIConfig struct {
	Provider ProviderName
	APIKey   string
	Model    string
}

// Resolve picks provider, key and model from user settings first, then
// the environment, then the provider's default model. A missing or
// placeholder key yields ErrMissingAPIKey.
func Resolve(settings *domain.UserSettings, getenv func(string) string) (ResolvedAIConfig, error) {
	var s domain.UserSettings
	if settings != nil {
		s = *settings
	}

	provider, err := ParseProvider(domain.CoalesceStr(s.Provider, getenv("PLANPILOT_AI_PROVIDER"), string(ProviderGoogle)))
	if err != nil {
		return ResolvedAIConfig{}, err
	}

	candidates := []string{s.APIKey}
	for _, name := range envKeys[provider] {
		candidates = append(candidates, getenv(name))
	}
	var key string
	for _, c := range candidates {
		if c != "" && !IsPlaceholderKey(c) {
			key = c
			break
		}
	}
	if key == "" {
		return ResolvedAIConfig{}, fmt.Errorf("%w for %s (set it in settings or %s)",
			ErrMissingAPIKey, provider, strings.Join(envKeys[provider], " / "))
	}

	return ResolvedAIConfig{
		Provider: provider,
		APIKey:   key,
		Model:    domain.CoalesceStr(s.Model, getenv("PLANPILOT_AI_MODEL"), DefaultModel(provider)),
	}, nil
}

// IsPlaceholderKey reports whether key is an unfilled template value.
func IsPlaceholderKey(key string) bool {
	k := strings.ToLower(strings.TrimSpace(key))
	switch {
	case k == "":
		return true
	case strings.Contains(k, "placeholder"):
		return true
	case strings.HasPrefix(k, "your-") || strings.HasPrefix(k, "your_"):
		return true
	case k == "undefined" || k == "null" || k == "changeme":
		return true
	}
	return false
}
