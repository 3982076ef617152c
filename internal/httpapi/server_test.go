package httpapi

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexanderramin/planpilot/internal/db"
	"github.com/alexanderramin/planpilot/internal/domain"
	"github.com/alexanderramin/planpilot/internal/llm"
	"github.com/alexanderramin/planpilot/internal/repository"
	"github.com/alexanderramin/planpilot/internal/service"
	"github.com/alexanderramin/planpilot/internal/testutil"
)

var (
	testSecret = []byte("test-secret")
	testNow    = time.Date(2024, 3, 31, 12, 0, 0, 0, time.UTC)
)

type stubGenerator struct {
	text string
	err  error
}

func (g stubGenerator) Generate(context.Context, llm.GenerateRequest) (*llm.GenerateResponse, error) {
	if g.err != nil {
		return nil, g.err
	}
	return &llm.GenerateResponse{Text: g.text}, nil
}

type fixture struct {
	handler  http.Handler
	projects repository.ProjectRepo
	auth     Auth
}

func newFixture(t *testing.T, gen llm.Generator, env map[string]string) fixture {
	t.Helper()
	database := testutil.NewTestDB(t)
	projects := repository.NewProjectRepo(database, db.SQLite)
	settings := repository.NewSettingsRepo(database, db.SQLite)
	history := service.NewHistoryService(repository.NewHistoryRepo(database, testutil.NewTestUoW(database), db.SQLite))

	factory := func(llm.ResolvedAIConfig) (llm.Generator, error) { return gen, nil }
	getenv := func(k string) string { return env[k] }

	srv := NewServer(Services{
		Projects:   service.NewProjectService(projects),
		Generation: service.NewGenerationService(projects, settings, history, factory, nil, service.WithGetenv(getenv)),
		KPIs:       service.NewKPIService(projects),
	}, Options{
		JWTSecret: testSecret,
		Now:       func() time.Time { return testNow },
	})
	return fixture{handler: srv.Handler(), projects: projects, auth: NewAuth(testSecret)}
}

func (f fixture) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if s, ok := body.(string); ok {
			buf.WriteString(s)
		} else {
			require.NoError(t, json.NewEncoder(&buf).Encode(body))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

func (f fixture) token(t *testing.T, userID string) string {
	t.Helper()
	tok, err := f.auth.IssueToken(userID, time.Hour, time.Now())
	require.NoError(t, err)
	return tok
}

func errorBody(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body["error"]
}

func TestHealth(t *testing.T) {
	f := newFixture(t, stubGenerator{}, nil)
	rec := f.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestComputeKPIs(t *testing.T) {
	f := newFixture(t, stubGenerator{}, nil)
	body := map[string]any{
		"tasks":  testutil.ScenarioSchedule(),
		"budget": domain.Budget{BudgetItems: testutil.ScenarioBudget()},
		"now":    "2024-03-31",
	}
	rec := f.do(t, http.MethodPost, "/api/kpis", "", body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp kpiResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 8050.0, resp.Snapshot.BudgetAtCompletion)
	assert.Equal(t, 0.93, resp.Snapshot.SPI)
	assert.Equal(t, domain.HealthAtRisk, resp.Health)
}

func TestComputeKPIs_BadInput(t *testing.T) {
	f := newFixture(t, stubGenerator{}, nil)

	rec := f.do(t, http.MethodPost, "/api/kpis", "", "{not json")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, errorBody(t, rec), "invalid json")

	rec = f.do(t, http.MethodPost, "/api/kpis", "", map[string]any{"tasks": []any{}, "now": "31/03/2024"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestComputeKPIs_EmptyIsNeutral(t *testing.T) {
	f := newFixture(t, stubGenerator{}, nil)
	rec := f.do(t, http.MethodPost, "/api/kpis", "", map[string]any{"tasks": []any{}})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp kpiResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 1.0, resp.Snapshot.SPI)
	assert.Equal(t, 1.0, resp.Snapshot.CPI)
}

func TestBuildTimeline(t *testing.T) {
	f := newFixture(t, stubGenerator{}, nil)

	rec := f.do(t, http.MethodPost, "/api/timeline", "", map[string]any{
		"tasks": testutil.ScenarioSchedule(),
		"scale": "months",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var chart struct {
		Scale string            `json:"scale"`
		Bars  []json.RawMessage `json:"bars"`
		Paths []json.RawMessage `json:"paths"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &chart))
	assert.Equal(t, "months", chart.Scale)
	assert.Len(t, chart.Bars, 3)
	assert.Len(t, chart.Paths, 1)

	rec = f.do(t, http.MethodPost, "/api/timeline", "", map[string]any{
		"tasks":    testutil.ScenarioSchedule(),
		"expanded": []string{},
	})
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &chart))
	assert.Len(t, chart.Bars, 1, "collapsed project hides its children")

	rec = f.do(t, http.MethodPost, "/api/timeline", "", map[string]any{"tasks": []any{}, "scale": "fortnights"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestEncodeWAV(t *testing.T) {
	f := newFixture(t, stubGenerator{}, nil)
	pcm := []byte{0x01, 0x00, 0xff, 0x7f}

	rec := f.do(t, http.MethodPost, "/api/audio/wav", "", map[string]any{
		"audio":      base64.StdEncoding.EncodeToString(pcm),
		"sampleRate": 16000,
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "audio/wav", rec.Header().Get("Content-Type"))
	assert.Equal(t, 44+len(pcm), rec.Body.Len())
	assert.Equal(t, "RIFF", rec.Body.String()[:4])

	rec = f.do(t, http.MethodPost, "/api/audio/wav", "", map[string]any{
		"audio": base64.StdEncoding.EncodeToString([]byte{1, 2, 3}),
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestProjectsRequireToken(t *testing.T) {
	f := newFixture(t, stubGenerator{}, nil)

	rec := f.do(t, http.MethodGet, "/api/projects", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = f.do(t, http.MethodGet, "/api/projects", "garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	expired, err := f.auth.IssueToken("u1", -time.Minute, time.Now())
	require.NoError(t, err)
	rec = f.do(t, http.MethodGet, "/api/projects", expired, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	other, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "u1",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString([]byte("another-secret"))
	require.NoError(t, err)
	rec = f.do(t, http.MethodGet, "/api/projects", other, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestProjectLifecycle(t *testing.T) {
	f := newFixture(t, stubGenerator{}, nil)
	ana := f.token(t, "ana")
	bo := f.token(t, "bo")

	rec := f.do(t, http.MethodPut, "/api/projects/p1", ana, map[string]any{
		"objective": "Launch a newsletter",
		"criteria":  map[string]string{"currency": "EUR"},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = f.do(t, http.MethodPut, "/api/projects/p1", ana, map[string]any{
		"objective": "Launch a newsletter",
		"name":      "Newsletter",
		"schedule":  testutil.ScenarioSchedule(),
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = f.do(t, http.MethodGet, "/api/projects/p1", ana, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var got projectDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "Newsletter", got.Name)
	assert.Len(t, got.Schedule, 3)

	rec = f.do(t, http.MethodGet, "/api/projects", ana, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var list []projectDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Len(t, list, 1)

	rec = f.do(t, http.MethodGet, "/api/projects/p1", bo, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = f.do(t, http.MethodPut, "/api/projects/p1", bo, map[string]any{"objective": "hijack"})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = f.do(t, http.MethodGet, "/api/projects/p1/kpis?now=2024-03-31", ana, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = f.do(t, http.MethodDelete, "/api/projects/p1", ana, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = f.do(t, http.MethodGet, "/api/projects/p1", ana, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPutProject_Validation(t *testing.T) {
	f := newFixture(t, stubGenerator{}, nil)
	rec := f.do(t, http.MethodPut, "/api/projects/p1", f.token(t, "ana"), map[string]any{"objective": "  "})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, errorBody(t, rec), "objective")
}

func TestPutProject_NewProjectWithBrokenSchedule(t *testing.T) {
	f := newFixture(t, stubGenerator{}, nil)
	body := map[string]any{
		"objective": "Open a bakery",
		"schedule": []map[string]any{
			{"id": "t1", "name": "Fit out", "type": "task", "project": "ghost", "start": "2024-03-01", "end": "2024-03-05"},
		},
	}
	rec := f.do(t, http.MethodPut, "/api/projects/p1", f.token(t, "ana"), body)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, errorBody(t, rec), "ghost")

	_, err := f.projects.GetByID(context.Background(), "ana", "p1")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestProjectKPIs_NoSchedule(t *testing.T) {
	f := newFixture(t, stubGenerator{}, nil)
	require.NoError(t, f.projects.Upsert(context.Background(), testutil.NewTestProject("ana", "x", func(p *domain.Project) { p.ID = "p1" })))

	rec := f.do(t, http.MethodGet, "/api/projects/p1/kpis", f.token(t, "ana"), nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGenerate(t *testing.T) {
	plan := `{"summary":"Ship it","phases":[{"name":"Build","description":"b","deliverables":["app"]}]}`

	tests := []struct {
		name       string
		gen        llm.Generator
		env        map[string]string
		stage      string
		wantStatus int
	}{
		{"success", stubGenerator{text: plan}, map[string]string{"GEMINI_API_KEY": "g"}, "plan", http.StatusOK},
		{"missing key", stubGenerator{text: plan}, nil, "plan", http.StatusBadRequest},
		{"provider down", stubGenerator{err: llm.ErrRetryExhausted}, map[string]string{"GEMINI_API_KEY": "g"}, "plan", http.StatusBadGateway},
		{"unparseable output", stubGenerator{text: "I cannot help"}, map[string]string{"GEMINI_API_KEY": "g"}, "plan", http.StatusBadGateway},
		{"unknown stage", stubGenerator{text: plan}, map[string]string{"GEMINI_API_KEY": "g"}, "poem", http.StatusBadRequest},
		{"kpi report without schedule", stubGenerator{text: plan}, map[string]string{"GEMINI_API_KEY": "g"}, "kpiReport", http.StatusBadRequest},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t, tc.gen, tc.env)
			require.NoError(t, f.projects.Upsert(context.Background(),
				testutil.NewTestProject("ana", "Open a studio", func(p *domain.Project) { p.ID = "p1" })))

			rec := f.do(t, http.MethodPost, "/api/projects/p1/generate/"+tc.stage, f.token(t, "ana"), nil)
			require.Equal(t, tc.wantStatus, rec.Code, rec.Body.String())
			if tc.wantStatus == http.StatusOK {
				var resp generateResponse
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
				assert.Equal(t, "google", resp.Provider)
				require.NotNil(t, resp.Project.Plan)
				assert.Equal(t, "Ship it", resp.Project.Plan.Summary)
			}
		})
	}
}

func TestCORSPreflight(t *testing.T) {
	f := newFixture(t, stubGenerator{}, nil)
	req := httptest.NewRequest(http.MethodOptions, "/api/projects", nil)
	req.Header.Set("Origin", "https://app.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	req.Header.Set("Access-Control-Request-Headers", "authorization")
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusBadGateway, statusFor(&llm.StatusError{StatusCode: 500}))
	assert.Equal(t, http.StatusNotFound, statusFor(repository.ErrNotFound))
	assert.Equal(t, http.StatusInternalServerError, statusFor(assert.AnError))
}
