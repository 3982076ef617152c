package service

import (
	"bytes"
	"context"
	"sync"
	"testing"

	"github.com/alexanderramin/planpilot/internal/db"
	"github.com/alexanderramin/planpilot/internal/llm"
	"github.com/alexanderramin/planpilot/internal/repository"
	"github.com/alexanderramin/planpilot/internal/testutil"
)

type testRepos struct {
	projects repository.ProjectRepo
	settings repository.SettingsRepo
	history  repository.HistoryRepo
}

func setupRepos(t *testing.T) testRepos {
	t.Helper()
	database := testutil.NewTestDB(t)
	return testRepos{
		projects: repository.NewProjectRepo(database, db.SQLite),
		settings: repository.NewSettingsRepo(database, db.SQLite),
		history:  repository.NewHistoryRepo(database, testutil.NewTestUoW(database), db.SQLite),
	}
}

// scriptedGenerator answers every request with the same text.
type scriptedGenerator struct {
	mu       sync.Mutex
	response string
	err      error
	requests []llm.GenerateRequest
}

func (g *scriptedGenerator) Generate(_ context.Context, req llm.GenerateRequest) (*llm.GenerateResponse, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.requests = append(g.requests, req)
	if g.err != nil {
		return nil, g.err
	}
	return &llm.GenerateResponse{Text: g.response}, nil
}

// fixedFactory hands out gen and records the resolved selection.
func fixedFactory(gen llm.Generator, seen *llm.ResolvedAIConfig) GeneratorFactory {
	return func(cfg llm.ResolvedAIConfig) (llm.Generator, error) {
		if seen != nil {
			*seen = cfg
		}
		return gen, nil
	}
}

func envOf(vars map[string]string) func(string) string {
	return func(k string) string { return vars[k] }
}

// recordingObserver keeps every use-case event.
type recordingObserver struct {
	mu     sync.Mutex
	events []UseCaseEvent
}

func (o *recordingObserver) ObserveUseCase(_ context.Context, e UseCaseEvent) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.events = append(o.events, e)
}

func (o *recordingObserver) last() UseCaseEvent {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.events[len(o.events)-1]
}

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}
