package llm

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// GoogleProvider calls the Gemini generateContent API with a native
// response schema.
type GoogleProvider struct {
	apiKey   string
	model    string
	endpoint string
	http     *http.Client
}

func NewGoogleProvider(apiKey, model, endpoint string, httpClient *http.Client) *GoogleProvider {
	return &GoogleProvider{apiKey: apiKey, model: model, endpoint: strings.TrimRight(endpoint, "/"), http: httpClient}
}

func (p *GoogleProvider) Name() ProviderName { return ProviderGoogle }
func (p *GoogleProvider) Model() string      { return p.model }

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiGenerationConfig struct {
	Temperature      float64        `json:"temperature"`
	MaxOutputTokens  int            `json:"maxOutputTokens,omitempty"`
	ResponseMimeType string         `json:"responseMimeType,omitempty"`
	ResponseSchema   map[string]any `json:"responseSchema,omitempty"`
}

type geminiRequest struct {
	Contents          []geminiContent        `json:"contents"`
	SystemInstruction *geminiContent         `json:"systemInstruction,omitempty"`
	GenerationConfig  geminiGenerationConfig `json:"generationConfig"`
}

type geminiResponse struct {
	Candidates []struct {
		Content      geminiContent `json:"content"`
		FinishReason string        `json:"finishReason"`
	} `json:"candidates"`
}

func (p *GoogleProvider) Complete(ctx context.Context, req Request) (string, error) {
	body := geminiRequest{
		GenerationConfig: geminiGenerationConfig{
			Temperature:     req.Temperature,
			MaxOutputTokens: req.MaxTokens,
		},
	}
	if req.System != "" {
		body.SystemInstruction = &geminiContent{Parts: []geminiPart{{Text: req.System}}}
	}
	for _, m := range req.Messages {
		role := "user"
		if m.Role == RoleAssistant {
			role = "model"
		}
		body.Contents = append(body.Contents, geminiContent{Role: role, Parts: []geminiPart{{Text: m.Content}}})
	}
	if req.Schema != nil {
		body.GenerationConfig.ResponseMimeType = "application/json"
		body.GenerationConfig.ResponseSchema = req.Schema.GeminiSchema()
	}

	u := fmt.Sprintf("%s/v1beta/models/%s:generateContent", p.endpoint, url.PathEscape(p.model))
	var resp geminiResponse
	if err := postJSON(ctx, p.http, ProviderGoogle, u, map[string]string{"x-goog-api-key": p.apiKey}, body, &resp); err != nil {
		return "", err
	}
	if len(resp.Candidates) == 0 {
		return "", fmt.Errorf("%w: gemini returned no candidates", ErrInvalidOutput)
	}
	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		b.WriteString(part.Text)
	}
	return b.String(), nil
}
