package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// Role is the author of a conversation message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Request is one provider completion call. Messages end with the user turn.
type Request struct {
	System      string
	Messages    []Message
	Schema      *Schema
	Temperature float64
	MaxTokens   int
}

// Provider is the single capability every vendor implements: turn a
// prompt (and optional schema) into text.
type Provider interface {
	Name() ProviderName
	Model() string
	Complete(ctx context.Context, req Request) (string, error)
}

// NewProvider selects the provider variant for cfg. It is called once per
// resolved configuration.
func NewProvider(cfg ResolvedAIConfig, endpoints Endpoints, httpClient *http.Client) (Provider, error) {
	if cfg.APIKey == "" || IsPlaceholderKey(cfg.APIKey) {
		return nil, fmt.Errorf("%w for %s", ErrMissingAPIKey, cfg.Provider)
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	switch cfg.Provider {
	case ProviderGoogle:
		return NewGoogleProvider(cfg.APIKey, cfg.Model, endpoints.Google, httpClient), nil
	case ProviderOpenAI:
		return NewOpenAIProvider(cfg.APIKey, cfg.Model, endpoints.OpenAI, httpClient), nil
	case ProviderOpenRouter:
		return NewOpenRouterProvider(cfg.APIKey, cfg.Model, endpoints.OpenRouter, httpClient), nil
	case ProviderPerplexity:
		return NewPerplexityProvider(cfg.APIKey, cfg.Model, endpoints.Perplexity, httpClient), nil
	case ProviderAnthropic:
		return NewAnthropicProvider(cfg.APIKey, cfg.Model, endpoints.Anthropic, httpClient), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, cfg.Provider)
	}
}

// postJSON sends body and decodes a 2xx response into out. Non-2xx
// responses become *StatusError; transport errors pass through unwrapped
// so the retry policy can classify them.
func postJSON(ctx context.Context, client *http.Client, provider ProviderName, url string, headers map[string]string, body, out any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshaling request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	return doJSON(client, provider, req, out)
}

func getJSON(ctx context.Context, client *http.Client, provider ProviderName, url string, headers map[string]string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	return doJSON(client, provider, req, out)
}

func doJSON(client *http.Client, provider ProviderName, req *http.Request, out any) error {
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{Provider: provider, StatusCode: resp.StatusCode, Body: string(respBody)}
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("%w: decoding %s response: %v", ErrInvalidOutput, provider, err)
	}
	return nil
}

// systemWithHint appends the schema prompt hint for providers that cannot
// enforce a schema natively.
func systemWithHint(system string, schema *Schema) string {
	if schema == nil {
		return system
	}
	if system == "" {
		return schema.PromptHint()
	}
	return system + "\n\n" + schema.PromptHint()
}
