package llm

import (
	"context"
	"errors"
	"fmt"
	"net"
	"slices"
	"time"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

// GenerateRequest holds the parameters for an LLM generation call.
type GenerateRequest struct {
	Task        TaskType
	System      string
	Prompt      string
	History     []Message
	Schema      *Schema
	Temperature *float64 // nil uses task default
	MaxTokens   *int     // nil uses task default
}

// GenerateResponse holds the result of an LLM generation call.
type GenerateResponse struct {
	Text      string
	Model     string
	Provider  ProviderName
	LatencyMs int64
	Attempts  int
}

// Generator is the generation capability consumed by the planner and
// assistant.
type Generator interface {
	Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error)
}

// Client wraps a Provider with timeouts, retries, a concurrency bound and
// request pacing.
type Client struct {
	provider Provider
	cfg      Config
	observer Observer
	sem      *semaphore.Weighted
	limiter  *rate.Limiter
}

// NewClient creates a Client for p. A nil observer discards events.
func NewClient(p Provider, cfg Config, observer Observer) *Client {
	if observer == nil {
		observer = NoopObserver{}
	}
	c := &Client{provider: p, cfg: cfg, observer: observer}
	if cfg.MaxConcurrent > 0 {
		c.sem = semaphore.NewWeighted(int64(cfg.MaxConcurrent))
	}
	if cfg.RequestsPerSecond > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1)
	}
	return c
}

// Provider returns the wrapped provider.
func (c *Client) Provider() Provider { return c.provider }

func (c *Client) Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error) {
	start := time.Now()

	taskCfg := c.cfg.Tasks[req.Task]
	preq := Request{
		System:      req.System,
		Messages:    append(slices.Clone(req.History), Message{Role: RoleUser, Content: req.Prompt}),
		Schema:      req.Schema,
		Temperature: taskCfg.Temperature,
		MaxTokens:   taskCfg.MaxTokens,
	}
	if req.Temperature != nil {
		preq.Temperature = *req.Temperature
	}
	if req.MaxTokens != nil {
		preq.MaxTokens = *req.MaxTokens
	}

	if c.sem != nil {
		if err := c.sem.Acquire(ctx, 1); err != nil {
			return nil, c.fail(ctx, req.Task, start, 0, err)
		}
		defer c.sem.Release(1)
	}

	maxAttempts := max(c.cfg.MaxAttempts, 1)
	backoff := c.cfg.InitialBackoff
	attempts := 0
	var lastErr error

	for attempts < maxAttempts {
		if attempts > 0 {
			if err := sleepCtx(ctx, backoff); err != nil {
				lastErr = err
				break
			}
			backoff = c.nextBackoff(backoff)
		}
		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				lastErr = err
				break
			}
		}
		attempts++

		text, err := c.attempt(ctx, req.Task, preq)
		if err == nil {
			latency := time.Since(start).Milliseconds()
			c.observer.OnCallComplete(ctx, CallEvent{
				Task:      req.Task,
				Provider:  c.provider.Name(),
				Model:     c.provider.Model(),
				LatencyMs: latency,
				Attempts:  attempts,
				Success:   true,
			})
			return &GenerateResponse{
				Text:      text,
				Model:     c.provider.Model(),
				Provider:  c.provider.Name(),
				LatencyMs: latency,
				Attempts:  attempts,
			}, nil
		}
		lastErr = err

		if ctx.Err() != nil || !isRetriable(err) {
			break
		}
	}

	return nil, c.fail(ctx, req.Task, start, attempts, c.classify(ctx, lastErr, attempts, maxAttempts))
}

func (c *Client) attempt(ctx context.Context, task TaskType, req Request) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.TaskTimeout(task))
	defer cancel()
	return c.provider.Complete(ctx, req)
}

func (c *Client) classify(ctx context.Context, err error, attempts, maxAttempts int) error {
	switch {
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	case ctx.Err() != nil:
		return ctx.Err()
	case !isRetriable(err):
		return err
	case isConnectionError(err):
		return fmt.Errorf("%w: %s after %d attempts: %v", ErrProviderUnavailable, c.provider.Name(), attempts, err)
	case attempts >= maxAttempts:
		return fmt.Errorf("%w after %d attempts: %w", ErrRetryExhausted, attempts, err)
	default:
		return err
	}
}

func (c *Client) fail(ctx context.Context, task TaskType, start time.Time, attempts int, err error) error {
	c.observer.OnCallComplete(ctx, CallEvent{
		Task:      task,
		Provider:  c.provider.Name(),
		Model:     c.provider.Model(),
		LatencyMs: time.Since(start).Milliseconds(),
		Attempts:  attempts,
		Success:   false,
		ErrorCode: errorCode(err),
	})
	return err
}

func (c *Client) nextBackoff(d time.Duration) time.Duration {
	mult := c.cfg.BackoffMultiplier
	if mult < 1 {
		mult = 1
	}
	next := time.Duration(float64(d) * mult)
	if c.cfg.MaxBackoff > 0 && next > c.cfg.MaxBackoff {
		next = c.cfg.MaxBackoff
	}
	return next
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// isRetriable reports whether err is a rate limit, a server error, a
// per-attempt timeout or a transport failure. Client errors, missing
// keys and unparseable output fail immediately.
func isRetriable(err error) bool {
	if err == nil {
		return false
	}
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.Retriable()
	}
	if errors.Is(err, ErrInvalidOutput) || errors.Is(err, ErrMissingAPIKey) || errors.Is(err, ErrUnknownProvider) {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}

func isConnectionError(err error) bool {
	var opErr *net.OpError
	return errors.As(err, &opErr)
}

func errorCode(err error) string {
	var statusErr *StatusError
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrTimeout):
		return "TIMEOUT"
	case errors.Is(err, ErrProviderUnavailable):
		return "UNAVAILABLE"
	case errors.Is(err, ErrInvalidOutput):
		return "INVALID_OUTPUT"
	case errors.As(err, &statusErr):
		return fmt.Sprintf("HTTP_%d", statusErr.StatusCode)
	case errors.Is(err, ErrRetryExhausted):
		return "RETRY_EXHAUSTED"
	case errors.Is(err, context.Canceled):
		return "CANCELED"
	default:
		return "UNKNOWN"
	}
}
