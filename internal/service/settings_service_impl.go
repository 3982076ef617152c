package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/planpilot/internal/domain"
	"github.com/alexanderramin/planpilot/internal/llm"
	"github.com/alexanderramin/planpilot/internal/repository"
)

// DefaultLanguage is used for generated prose when none is set.
const DefaultLanguage = "English"

type settingsService struct {
	settings repository.SettingsRepo
	observer UseCaseObserver
}

func NewSettingsService(settings repository.SettingsRepo, observers ...UseCaseObserver) SettingsService {
	return &settingsService{settings: settings, observer: useCaseObserverOrNoop(observers)}
}

// Get returns the stored settings, or defaults when the user has none.
func (s *settingsService) Get(ctx context.Context, userID string) (*domain.UserSettings, error) {
	st, err := s.settings.Get(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return &domain.UserSettings{UserID: userID, Provider: string(llm.ProviderGoogle), Language: DefaultLanguage}, nil
	}
	if err != nil {
		return nil, err
	}
	if st.Language == "" {
		st.Language = DefaultLanguage
	}
	return st, nil
}

// Save normalizes the provider name and stores the settings. An empty
// provider is kept so the environment decides.
func (s *settingsService) Save(ctx context.Context, st *domain.UserSettings) (err error) {
	done := track(ctx, s.observer, "save-settings", st.UserID, map[string]any{"provider": st.Provider})
	defer func() { done(err) }()

	if st.UserID == "" {
		return fmt.Errorf("%w: owner is required", ErrInvalidInput)
	}
	if strings.TrimSpace(st.Provider) != "" {
		var p llm.ProviderName
		if p, err = llm.ParseProvider(st.Provider); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidInput, err)
		}
		st.Provider = string(p)
	}
	st.APIKey = strings.TrimSpace(st.APIKey)
	st.UpdatedAt = time.Now().UTC()
	return s.settings.Upsert(ctx, st)
}
