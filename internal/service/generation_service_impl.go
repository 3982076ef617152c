package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"

	"github.com/alexanderramin/planpilot/internal/domain"
	"github.com/alexanderramin/planpilot/internal/intelligence"
	"github.com/alexanderramin/planpilot/internal/llm"
	"github.com/alexanderramin/planpilot/internal/repository"
)

// GeneratorFactory builds a generator for a resolved provider selection.
type GeneratorFactory func(cfg llm.ResolvedAIConfig) (llm.Generator, error)

// NewClientFactory returns the factory used in production: a provider
// from llm.NewProvider wrapped in a retrying llm.Client.
func NewClientFactory(cfg llm.Config, httpClient *http.Client, observer llm.Observer) GeneratorFactory {
	return func(resolved llm.ResolvedAIConfig) (llm.Generator, error) {
		p, err := llm.NewProvider(resolved, cfg.Endpoints, httpClient)
		if err != nil {
			return nil, err
		}
		return llm.NewClient(p, cfg, observer), nil
	}
}

// aiResolver turns stored settings plus the environment into a generator.
type aiResolver struct {
	settings repository.SettingsRepo
	factory  GeneratorFactory
	getenv   func(string) string
}

func (r *aiResolver) resolve(ctx context.Context, userID string) (llm.Generator, llm.ResolvedAIConfig, *domain.UserSettings, error) {
	st, err := r.settings.Get(ctx, userID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, llm.ResolvedAIConfig{}, nil, err
	}
	getenv := r.getenv
	if getenv == nil {
		getenv = os.Getenv
	}
	resolved, err := llm.Resolve(st, getenv)
	if err != nil {
		return nil, llm.ResolvedAIConfig{}, nil, err
	}
	gen, err := r.factory(resolved)
	if err != nil {
		return nil, llm.ResolvedAIConfig{}, nil, err
	}
	return gen, resolved, st, nil
}

// GenerationOption configures the generation and assistant services.
type GenerationOption func(*aiResolver)

// WithGetenv replaces os.Getenv for provider resolution.
func WithGetenv(getenv func(string) string) GenerationOption {
	return func(r *aiResolver) { r.getenv = getenv }
}

type generationService struct {
	ai       *aiResolver
	projects repository.ProjectRepo
	history  HistoryService
	observer UseCaseObserver
}

func NewGenerationService(
	projects repository.ProjectRepo,
	settings repository.SettingsRepo,
	history HistoryService,
	factory GeneratorFactory,
	observer UseCaseObserver,
	opts ...GenerationOption,
) GenerationService {
	ai := &aiResolver{settings: settings, factory: factory}
	for _, opt := range opts {
		opt(ai)
	}
	return &generationService{
		ai:       ai,
		projects: projects,
		history:  history,
		observer: useCaseObserverOrNoop([]UseCaseObserver{observer}),
	}
}

// Run generates one stage, stores it on the project and records a
// generation history entry. The stored project is untouched when
// generation fails. Once the stage is stored, a history failure is only
// reported through the observer.
func (s *generationService) Run(ctx context.Context, userID, projectID string, stage domain.Stage) (result *GenerationResult, err error) {
	fields := map[string]any{"project_id": projectID, "stage": string(stage)}
	done := track(ctx, s.observer, "generate-stage", userID, fields)
	defer func() { done(err) }()

	if _, ok := domain.ParseStage(string(stage)); !ok {
		return nil, fmt.Errorf("%w: %w %q", ErrInvalidInput, intelligence.ErrUnknownStage, stage)
	}

	var project *domain.Project
	if project, err = s.projects.GetByID(ctx, userID, projectID); err != nil {
		return nil, err
	}

	gen, resolved, st, err := s.ai.resolve(ctx, userID)
	if err != nil {
		return nil, err
	}
	fields["provider"] = string(resolved.Provider)
	fields["model"] = resolved.Model

	var opts []intelligence.PlannerOption
	if st != nil && st.Language != "" {
		opts = append(opts, intelligence.WithLanguage(st.Language))
	}
	if err = intelligence.NewPlanner(gen, opts...).Run(ctx, project, stage); err != nil {
		return nil, err
	}

	if err = s.projects.Upsert(ctx, project); err != nil {
		return nil, err
	}

	input := fmt.Sprintf("%s: %s", stage, project.Objective)
	output := fmt.Sprintf("%s generated for %s with %s/%s", stage, project.DisplayName(), resolved.Provider, resolved.Model)
	if herr := s.history.Record(ctx, userID, domain.FeatureGeneration, input, output); herr != nil {
		fields["history_error"] = herr.Error()
	}

	return &GenerationResult{
		Project:  project,
		Stage:    stage,
		Provider: resolved.Provider,
		Model:    resolved.Model,
	}, nil
}

type assistantService struct {
	ai       *aiResolver
	history  HistoryService
	observer UseCaseObserver
}

func NewAssistantService(
	settings repository.SettingsRepo,
	history HistoryService,
	factory GeneratorFactory,
	observer UseCaseObserver,
	opts ...GenerationOption,
) AssistantService {
	ai := &aiResolver{settings: settings, factory: factory}
	for _, opt := range opts {
		opt(ai)
	}
	return &assistantService{
		ai:       ai,
		history:  history,
		observer: useCaseObserverOrNoop([]UseCaseObserver{observer}),
	}
}

func (s *assistantService) Chat(ctx context.Context, userID string, conversation []llm.Message, message string) (reply string, updated []llm.Message, err error) {
	done := track(ctx, s.observer, "chat", userID, map[string]any{"history_len": len(conversation)})
	defer func() { done(err) }()

	gen, _, _, err := s.ai.resolve(ctx, userID)
	if err != nil {
		return "", conversation, err
	}
	reply, updated, err = intelligence.NewAssistant(gen).Chat(ctx, conversation, message)
	if err != nil {
		return "", conversation, err
	}
	if err = s.history.Record(ctx, userID, domain.FeatureChat, message, reply); err != nil {
		return "", conversation, fmt.Errorf("recording chat history: %w", err)
	}
	return reply, updated, nil
}

func (s *assistantService) Translate(ctx context.Context, userID, text, targetLanguage string) (out string, err error) {
	done := track(ctx, s.observer, "translate", userID, map[string]any{"target_language": targetLanguage})
	defer func() { done(err) }()

	gen, _, _, err := s.ai.resolve(ctx, userID)
	if err != nil {
		return "", err
	}
	if out, err = intelligence.NewAssistant(gen).Translate(ctx, text, targetLanguage); err != nil {
		return "", err
	}
	if err = s.history.Record(ctx, userID, domain.FeatureTranslator, text, out); err != nil {
		return "", fmt.Errorf("recording translation history: %w", err)
	}
	return out, nil
}
