package llm

import (
	"context"
	"fmt"
	"net/http"
	"strings"
)

// chatCompletions is the OpenAI-style request shape shared by OpenAI,
// OpenRouter and Perplexity.
type chatCompletions struct {
	name    ProviderName
	apiKey  string
	model   string
	baseURL string
	http    *http.Client
	// nativeSchema sends object schemas as response_format json_schema.
	nativeSchema bool
	headers      map[string]string
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatJSONSchema struct {
	Name   string         `json:"name"`
	Schema map[string]any `json:"schema"`
	Strict bool           `json:"strict"`
}

type chatResponseFormat struct {
	Type       string          `json:"type"`
	JSONSchema *chatJSONSchema `json:"json_schema,omitempty"`
}

type chatRequest struct {
	Model          string              `json:"model"`
	Messages       []chatMessage       `json:"messages"`
	Temperature    float64             `json:"temperature"`
	MaxTokens      int                 `json:"max_tokens,omitempty"`
	ResponseFormat *chatResponseFormat `json:"response_format,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

func (c *chatCompletions) Name() ProviderName { return c.name }
func (c *chatCompletions) Model() string      { return c.model }

func (c *chatCompletions) Complete(ctx context.Context, req Request) (string, error) {
	body := chatRequest{
		Model:       c.model,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	}

	system := req.System
	native := c.nativeSchema && req.Schema != nil && req.Schema.Type == TypeObject
	if native {
		body.ResponseFormat = &chatResponseFormat{
			Type:       "json_schema",
			JSONSchema: &chatJSONSchema{Name: "response", Schema: req.Schema.JSONSchema()},
		}
	} else {
		system = systemWithHint(system, req.Schema)
	}
	if system != "" {
		body.Messages = append(body.Messages, chatMessage{Role: "system", Content: system})
	}
	for _, m := range req.Messages {
		body.Messages = append(body.Messages, chatMessage{Role: string(m.Role), Content: m.Content})
	}

	headers := map[string]string{"Authorization": "Bearer " + c.apiKey}
	for k, v := range c.headers {
		headers[k] = v
	}

	var resp chatResponse
	if err := postJSON(ctx, c.http, c.name, c.baseURL+"/chat/completions", headers, body, &resp); err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: %s returned no choices", ErrInvalidOutput, c.name)
	}
	return resp.Choices[0].Message.Content, nil
}

// OpenAIProvider calls the OpenAI chat completions API.
type OpenAIProvider struct{ chatCompletions }

func NewOpenAIProvider(apiKey, model, baseURL string, httpClient *http.Client) *OpenAIProvider {
	return &OpenAIProvider{chatCompletions{
		name: ProviderOpenAI, apiKey: apiKey, model: model,
		baseURL: strings.TrimRight(baseURL, "/"), http: httpClient, nativeSchema: true,
	}}
}

// OpenRouterProvider calls OpenRouter's OpenAI-compatible endpoint.
type OpenRouterProvider struct{ chatCompletions }

func NewOpenRouterProvider(apiKey, model, baseURL string, httpClient *http.Client) *OpenRouterProvider {
	return &OpenRouterProvider{chatCompletions{
		name: ProviderOpenRouter, apiKey: apiKey, model: model,
		baseURL: strings.TrimRight(baseURL, "/"), http: httpClient, nativeSchema: true,
		headers: map[string]string{"X-Title": "planpilot"},
	}}
}

// PerplexityProvider calls Perplexity chat completions. The schema travels
// as a prompt hint.
type PerplexityProvider struct{ chatCompletions }

func NewPerplexityProvider(apiKey, model, baseURL string, httpClient *http.Client) *PerplexityProvider {
	return &PerplexityProvider{chatCompletions{
		name: ProviderPerplexity, apiKey: apiKey, model: model,
		baseURL: strings.TrimRight(baseURL, "/"), http: httpClient,
	}}
}
