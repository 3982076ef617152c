// Package backend talks to the hosted auth and storage service over its
// REST surface (GoTrue-style auth, PostgREST-style tables).
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

var (
	// ErrValidation indicates input rejected locally before any request.
	ErrValidation = errors.New("validation failed")

	// ErrNotAuthenticated indicates a data call without a session.
	ErrNotAuthenticated = errors.New("not signed in")

	// ErrNotFound indicates the requested row does not exist.
	ErrNotFound = errors.New("not found")
)

// APIError is a non-2xx response from the service.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("backend returned status %d: %s", e.StatusCode, e.Message)
}

type Config struct {
	URL     string `yaml:"url"`
	AnonKey string `yaml:"anon_key"`
}

// Configured reports whether both values are present and not template
// placeholders.
func (c Config) Configured() bool {
	return !isPlaceholder(c.URL) && !isPlaceholder(c.AnonKey)
}

func isPlaceholder(s string) bool {
	v := strings.ToLower(strings.TrimSpace(s))
	return v == "" || strings.Contains(v, "placeholder") ||
		strings.Contains(v, "your-project") || strings.HasPrefix(v, "your-") || strings.HasPrefix(v, "your_")
}

// Client is safe for concurrent use. When the configuration is absent
// or a placeholder, every call is a no-op returning zero values.
type Client struct {
	cfg  Config
	http *http.Client
	now  func() time.Time

	mu      sync.RWMutex
	session *Session
}

func NewClient(cfg Config, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	cfg.URL = strings.TrimRight(cfg.URL, "/")
	return &Client{cfg: cfg, http: httpClient, now: time.Now}
}

// Enabled reports whether calls reach the service.
func (c *Client) Enabled() bool { return c.cfg.Configured() }

func (c *Client) do(ctx context.Context, method, path string, query url.Values, headers map[string]string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshaling request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	u := c.cfg.URL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("apikey", c.cfg.AnonKey)
	req.Header.Set("Authorization", "Bearer "+c.bearer())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &APIError{StatusCode: resp.StatusCode, Message: errorMessage(data)}
	}
	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

func (c *Client) bearer() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.session != nil && c.session.AccessToken != "" {
		return c.session.AccessToken
	}
	return c.cfg.AnonKey
}

// errorMessage pulls the human-readable message out of the error shapes
// the service returns.
func errorMessage(body []byte) string {
	var e struct {
		Message          string `json:"message"`
		Msg              string `json:"msg"`
		ErrorDescription string `json:"error_description"`
		Error            string `json:"error"`
	}
	if json.Unmarshal(body, &e) == nil {
		for _, m := range []string{e.Message, e.Msg, e.ErrorDescription, e.Error} {
			if m != "" {
				return m
			}
		}
	}
	s := strings.TrimSpace(string(body))
	if len(s) > 200 {
		s = s[:200] + "..."
	}
	return s
}
