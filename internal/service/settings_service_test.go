package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexanderramin/planpilot/internal/domain"
	"github.com/alexanderramin/planpilot/internal/llm"
)

func TestSettingsService_DefaultsWhenMissing(t *testing.T) {
	svc := NewSettingsService(setupRepos(t).settings)
	st, err := svc.Get(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, "google", st.Provider)
	assert.Equal(t, DefaultLanguage, st.Language)
}

func TestSettingsService_SaveNormalizesProvider(t *testing.T) {
	svc := NewSettingsService(setupRepos(t).settings)
	ctx := context.Background()

	require.NoError(t, svc.Save(ctx, &domain.UserSettings{UserID: "u1", Provider: "Gemini", APIKey: " key "}))
	st, err := svc.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "google", st.Provider)
	assert.Equal(t, "key", st.APIKey)

	err = svc.Save(ctx, &domain.UserSettings{UserID: "u1", Provider: "mistral"})
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.ErrorIs(t, err, llm.ErrUnknownProvider)

	assert.ErrorIs(t, svc.Save(ctx, &domain.UserSettings{Provider: "openai"}), ErrInvalidInput)
}

func TestHistoryService_RecordListClear(t *testing.T) {
	svc := NewHistoryService(setupRepos(t).history)
	ctx := context.Background()

	for i := range domain.HistoryLimit + 3 {
		require.NoError(t, svc.Record(ctx, "u1", domain.FeatureTranslator, strings.Repeat("x", i+1), "y"))
	}
	entries, err := svc.List(ctx, "u1", domain.FeatureTranslator)
	require.NoError(t, err)
	assert.Len(t, entries, domain.HistoryLimit)
	assert.Len(t, entries[0].Input, domain.HistoryLimit+3)

	require.NoError(t, svc.Clear(ctx, "u1", domain.FeatureTranslator))
	entries, err = svc.List(ctx, "u1", domain.FeatureTranslator)
	require.NoError(t, err)
	assert.Empty(t, entries)

	assert.ErrorIs(t, svc.Record(ctx, "u1", domain.HistoryFeature("gossip"), "a", "b"), ErrInvalidInput)
}

func TestLogUseCaseObserver_WritesEvent(t *testing.T) {
	var buf syncBuffer
	repos := setupRepos(t)
	svc := NewProjectService(repos.projects, NewLogUseCaseObserver(&buf))

	_ = svc.Create(context.Background(), &domain.Project{UserID: "u7", Objective: ""})

	out := buf.String()
	assert.Contains(t, out, "msg=service_use_case")
	assert.Contains(t, out, "use_case=create-project")
	assert.Contains(t, out, "user_id=u7")
	assert.Contains(t, out, "success=false")
	assert.Contains(t, out, "level=ERROR")
}

func TestNewLogUseCaseObserver_NilWriterIsNoop(t *testing.T) {
	assert.IsType(t, NoopUseCaseObserver{}, NewLogUseCaseObserver(nil))
	assert.IsType(t, NoopUseCaseObserver{}, NewSlogUseCaseObserver(nil))
}
