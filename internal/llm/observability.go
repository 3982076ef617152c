package llm

import (
	"context"
	"io"
	"log/slog"
)

// CallEvent records metadata about a single generation.
type CallEvent struct {
	Task      TaskType
	Provider  ProviderName
	Model     string
	LatencyMs int64
	Attempts  int
	Success   bool
	ErrorCode string
}

// Observer receives events about LLM calls for logging and metrics.
type Observer interface {
	OnCallComplete(ctx context.Context, event CallEvent)
}

// SlogObserver writes call events as structured log records.
type SlogObserver struct {
	logger *slog.Logger
}

// NewLogObserver creates an Observer that logs text records to w.
func NewLogObserver(w io.Writer) *SlogObserver {
	return &SlogObserver{
		logger: slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelInfo})),
	}
}

func (o *SlogObserver) OnCallComplete(ctx context.Context, event CallEvent) {
	attrs := []any{
		"task", string(event.Task),
		"provider", string(event.Provider),
		"model", event.Model,
		"latency_ms", event.LatencyMs,
		"attempts", event.Attempts,
		"success", event.Success,
	}
	if event.ErrorCode != "" {
		attrs = append(attrs, "error_code", event.ErrorCode)
	}
	o.logger.InfoContext(ctx, "llm_call", attrs...)
}

// NoopObserver discards all events.
type NoopObserver struct{}

func (NoopObserver) OnCallComplete(context.Context, CallEvent) {}
