package llm

import (
	"context"
	"net/http"
	"sort"
	"strings"
	"time"
)

// DefaultModels is the hardcoded model list per provider. The first entry
// is the provider default.
var DefaultModels = map[ProviderName][]string{
	ProviderGoogle:     {"gemini-2.5-flash", "gemini-2.5-pro", "gemini-2.0-flash"},
	ProviderOpenAI:     {"gpt-4o-mini", "gpt-4o", "gpt-4.1-mini"},
	ProviderOpenRouter: {"google/gemini-2.5-flash", "openai/gpt-4o-mini", "anthropic/claude-sonnet-4"},
	ProviderPerplexity: {"sonar", "sonar-pro", "sonar-reasoning"},
	ProviderAnthropic:  {"claude-sonnet-4-5", "claude-haiku-4-5", "claude-opus-4-1"},
}

// DefaultModel returns the default model for p, or "" for an unknown
// provider.
func DefaultModel(p ProviderName) string {
	if models := DefaultModels[p]; len(models) > 0 {
		return models[0]
	}
	return ""
}

// ModelList is the result of a model listing.
type ModelList struct {
	Provider ProviderName `json:"provider"`
	Models   []string     `json:"models"`
	// Fallback is set when the hardcoded list was returned.
	Fallback bool `json:"fallback"`
}

const listModelsTimeout = 10 * time.Second

// ListModels asks the provider for its models. Any failure, and providers
// without a listing endpoint, yield the hardcoded defaults.
func ListModels(ctx context.Context, cfg ResolvedAIConfig, endpoints Endpoints, httpClient *http.Client) ModelList {
	fallback := ModelList{Provider: cfg.Provider, Models: append([]string(nil), DefaultModels[cfg.Provider]...), Fallback: true}
	if cfg.APIKey == "" || IsPlaceholderKey(cfg.APIKey) {
		return fallback
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	ctx, cancel := context.WithTimeout(ctx, listModelsTimeout)
	defer cancel()

	var (
		models []string
		err    error
	)
	switch cfg.Provider {
	case ProviderGoogle:
		models, err = listGeminiModels(ctx, httpClient, cfg.APIKey, endpoints.Google)
	case ProviderOpenAI:
		models, err = listChatModels(ctx, httpClient, ProviderOpenAI, cfg.APIKey, endpoints.OpenAI)
	case ProviderOpenRouter:
		models, err = listChatModels(ctx, httpClient, ProviderOpenRouter, cfg.APIKey, endpoints.OpenRouter)
	default:
		return fallback
	}
	if err != nil || len(models) == 0 {
		return fallback
	}
	sort.Strings(models)
	return ModelList{Provider: cfg.Provider, Models: models}
}

func listGeminiModels(ctx context.Context, client *http.Client, apiKey, endpoint string) ([]string, error) {
	var resp struct {
		Models []struct {
			Name                       string   `json:"name"`
			SupportedGenerationMethods []string `json:"supportedGenerationMethods"`
		} `json:"models"`
	}
	u := strings.TrimRight(endpoint, "/") + "/v1beta/models"
	if err := getJSON(ctx, client, ProviderGoogle, u, map[string]string{"x-goog-api-key": apiKey}, &resp); err != nil {
		return nil, err
	}
	var out []string
	for _, m := range resp.Models {
		supported := len(m.SupportedGenerationMethods) == 0
		for _, method := range m.SupportedGenerationMethods {
			if method == "generateContent" {
				supported = true
			}
		}
		if supported {
			out = append(out, strings.TrimPrefix(m.Name, "models/"))
		}
	}
	return out, nil
}

func listChatModels(ctx context.Context, client *http.Client, provider ProviderName, apiKey, baseURL string) ([]string, error) {
	var resp struct {
		Data []struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	u := strings.TrimRight(baseURL, "/") + "/models"
	if err := getJSON(ctx, client, provider, u, map[string]string{"Authorization": "Bearer " + apiKey}, &resp); err != nil {
		return nil, err
	}
	out := make([]string, 0, len(resp.Data))
	for _, m := range resp.Data {
		if m.ID != "" {
			out = append(out, m.ID)
		}
	}
	return out, nil
}
