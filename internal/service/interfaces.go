package service

import (
	"context"
	"errors"
	"time"

	"github.com/alexanderramin/planpilot/internal/domain"
	"github.com/alexanderramin/planpilot/internal/llm"
)

var (
	// ErrInvalidInput wraps every input rejected before it reaches storage
	// or a provider.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNoSchedule indicates a computation that needs a stored schedule.
	ErrNoSchedule = errors.New("project has no schedule")
)

type ProjectService interface {
	Create(ctx context.Context, p *domain.Project) error
	Get(ctx context.Context, userID, id string) (*domain.Project, error)
	List(ctx context.Context, userID string) ([]*domain.Project, error)
	Update(ctx context.Context, p *domain.Project) error
	Delete(ctx context.Context, userID, id string) error
}

// GenerationResult reports one generated stage.
type GenerationResult struct {
	Project  *domain.Project
	Stage    domain.Stage
	Provider llm.ProviderName
	Model    string
}

type GenerationService interface {
	Run(ctx context.Context, userID, projectID string, stage domain.Stage) (*GenerationResult, error)
}

type AssistantService interface {
	Chat(ctx context.Context, userID string, conversation []llm.Message, message string) (string, []llm.Message, error)
	Translate(ctx context.Context, userID, text, targetLanguage string) (string, error)
}

// KPIResult is an earned-value snapshot with its classification.
type KPIResult struct {
	Snapshot domain.KPISnapshot `json:"snapshot"`
	Health   domain.HealthLevel `json:"health"`
	Signals  []string           `json:"signals"`
	AsOf     time.Time          `json:"asOf"`
}

type KPIService interface {
	Snapshot(ctx context.Context, userID, projectID string, now time.Time) (*KPIResult, error)
}

type SettingsService interface {
	Get(ctx context.Context, userID string) (*domain.UserSettings, error)
	Save(ctx context.Context, s *domain.UserSettings) error
}

type HistoryService interface {
	Record(ctx context.Context, userID string, feature domain.HistoryFeature, input, output string) error
	List(ctx context.Context, userID string, feature domain.HistoryFeature) ([]*domain.HistoryEntry, error)
	Clear(ctx context.Context, userID string, feature domain.HistoryFeature) error
}
