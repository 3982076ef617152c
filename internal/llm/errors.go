package llm

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrMissingAPIKey indicates no usable key was configured for the
	// selected provider. It is never retried.
	ErrMissingAPIKey = errors.New("missing api key")

	// ErrUnknownProvider indicates a provider name outside the supported set.
	ErrUnknownProvider = errors.New("unknown llm provider")

	// ErrProviderUnavailable indicates the provider endpoint is unreachable.
	ErrProviderUnavailable = errors.New("llm provider unavailable")

	// ErrTimeout indicates the LLM request exceeded the configured timeout.
	ErrTimeout = errors.New("llm request timed out")

	// ErrInvalidOutput indicates the LLM response could not be parsed
	// into the expected structured format.
	ErrInvalidOutput = errors.New("invalid llm output format")

	// ErrRetryExhausted indicates all retry attempts have been exhausted.
	ErrRetryExhausted = errors.New("llm retry attempts exhausted")
)

// StatusError is a non-2xx provider response.
type StatusError struct {
	Provider   ProviderName
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	body := e.Body
	if len(body) > 300 {
		body = body[:300] + "..."
	}
	return fmt.Sprintf("%s returned status %d: %s", e.Provider, e.StatusCode, body)
}

// Retriable reports whether the status is a rate limit or a server error.
func (e *StatusError) Retriable() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}
