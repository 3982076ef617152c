package backend

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexanderramin/planpilot/internal/domain"
)

func newHTTPTestServer(t *testing.T, handler http.Handler) *httptest.Server {
	t.Helper()

	var srv *httptest.Server
	func() {
		defer func() {
			if r := recover(); r != nil {
				t.Skipf("skipping HTTP integration test: local listener unavailable (%v)", r)
			}
		}()
		srv = httptest.NewServer(handler)
	}()
	return srv
}

var testNow = time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

func signToken(t *testing.T, sub, email string, exp time.Time) string {
	t.Helper()
	claims := Claims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sub,
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("server-secret"))
	require.NoError(t, err)
	return tok
}

func newTestClient(t *testing.T, srv *httptest.Server) *Client {
	t.Helper()
	c := NewClient(Config{URL: srv.URL + "/", AnonKey: "anon-key"}, srv.Client())
	c.now = func() time.Time { return testNow }
	return c
}

func TestConfig_Configured(t *testing.T) {
	assert.False(t, Config{}.Configured())
	assert.False(t, Config{URL: "https://your-project.supabase.co", AnonKey: "abc"}.Configured())
	assert.False(t, Config{URL: "https://x.example.com", AnonKey: "placeholder-anon-key"}.Configured())
	assert.True(t, Config{URL: "https://x.example.com", AnonKey: "eyJhbGciOi"}.Configured())
}

func TestValidateCredentials(t *testing.T) {
	confirm := "secret1"
	mismatch := "secret2"

	tests := []struct {
		name     string
		email    string
		password string
		confirm  *string
		wantErr  bool
	}{
		{"valid", "ana@example.com", "secret1", nil, false},
		{"valid with confirm", "ana@example.com", "secret1", &confirm, false},
		{"empty email", "  ", "secret1", nil, true},
		{"malformed email", "not-an-email", "secret1", nil, true},
		{"short password", "ana@example.com", "12345", nil, true},
		{"mismatch", "ana@example.com", "secret1", &mismatch, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateCredentials(tt.email, tt.password, tt.confirm)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrValidation)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestUnconfiguredClientIsNoop(t *testing.T) {
	c := NewClient(Config{URL: "https://your-project.supabase.co", AnonKey: "your-anon-key"}, nil)
	ctx := context.Background()

	s, err := c.SignIn(ctx, "ana@example.com", "secret1")
	assert.NoError(t, err)
	assert.Nil(t, s)

	projects, err := c.ListProjects(ctx)
	assert.NoError(t, err)
	assert.Empty(t, projects)

	p, err := c.GetProject(ctx, "p1")
	assert.NoError(t, err)
	assert.Nil(t, p)

	assert.NoError(t, c.UpsertProject(ctx, &domain.Project{ID: "p1"}))
	assert.NoError(t, c.DeleteProject(ctx, "p1"))
	assert.NoError(t, c.SaveSettings(ctx, &domain.UserSettings{}))
	assert.NoError(t, c.SignOut(ctx))
}

func TestUnconfiguredClientStillValidates(t *testing.T) {
	c := NewClient(Config{}, nil)
	_, err := c.SignUp(context.Background(), "ana@example.com", "secret1", "secret9")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestSignInStoresSessionFromClaims(t *testing.T) {
	token := signToken(t, "user-1", "ana@example.com", testNow.Add(time.Hour))

	srv := newHTTPTestServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/v1/token", r.URL.Path)
		assert.Equal(t, "password", r.URL.Query().Get("grant_type"))
		assert.Equal(t, "anon-key", r.Header.Get("apikey"))

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "ana@example.com", body["email"])

		json.NewEncoder(w).Encode(map[string]any{
			"access_token":  token,
			"refresh_token": "refresh",
			"expires_in":    3600,
		})
	}))
	defer srv.Close()

	c := newTestClient(t, srv)
	s, err := c.SignIn(context.Background(), " ana@example.com ", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "user-1", s.User.ID)
	assert.Equal(t, "ana@example.com", s.User.Email)
	assert.True(t, s.ExpiresAt.Equal(testNow.Add(time.Hour)))

	u, err := c.CurrentUser()
	require.NoError(t, err)
	assert.Equal(t, "user-1", u.ID)
}

func TestSignInRejectedSurfacesMessage(t *testing.T) {
	srv := newHTTPTestServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":"invalid_grant","error_description":"Invalid login credentials"}`))
	}))
	defer srv.Close()

	_, err := newTestClient(t, srv).SignIn(context.Background(), "ana@example.com", "secret1")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Equal(t, "Invalid login credentials", apiErr.Message)
}

func TestSignUpWithoutSessionReturnsNil(t *testing.T) {
	srv := newHTTPTestServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/v1/signup", r.URL.Path)
		w.Write([]byte(`{"id":"user-1","email":"ana@example.com"}`))
	}))
	defer srv.Close()

	s, err := newTestClient(t, srv).SignUp(context.Background(), "ana@example.com", "secret1", "secret1")
	require.NoError(t, err)
	assert.Nil(t, s)
}

func TestDataCallsNeedSession(t *testing.T) {
	srv := newHTTPTestServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected")
	}))
	defer srv.Close()

	c := newTestClient(t, srv)
	_, err := c.ListProjects(context.Background())
	assert.ErrorIs(t, err, ErrNotAuthenticated)
	assert.True(t, IsAuthError(err))

	c.SetSession(&Session{AccessToken: signToken(t, "u", "", testNow.Add(-time.Minute)), ExpiresAt: testNow.Add(-time.Minute)})
	_, err = c.ListProjects(context.Background())
	assert.ErrorIs(t, err, ErrNotAuthenticated)
}

func TestProjectRoundTrip(t *testing.T) {
	token := signToken(t, "user-1", "ana@example.com", testNow.Add(time.Hour))
	var stored []projectRow

	mux := http.NewServeMux()
	mux.HandleFunc("POST /rest/v1/projects", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer "+token, r.Header.Get("Authorization"))
		assert.Contains(t, r.Header.Get("Prefer"), "resolution=merge-duplicates")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&stored))
		w.WriteHeader(http.StatusCreated)
	})
	mux.HandleFunc("GET /rest/v1/projects", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "eq.user-1", q.Get("user_id"))
		if q.Get("id") == "eq.missing" {
			w.Write([]byte(`[]`))
			return
		}
		json.NewEncoder(w).Encode(stored)
	})
	mux.HandleFunc("DELETE /rest/v1/projects", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "eq.p1", r.URL.Query().Get("id"))
		w.WriteHeader(http.StatusNoContent)
	})
	srv := newHTTPTestServer(t, mux)
	defer srv.Close()

	c := newTestClient(t, srv)
	c.SetSession(&Session{AccessToken: token, ExpiresAt: testNow.Add(time.Hour)})
	ctx := context.Background()

	p := &domain.Project{
		ID:        "p1",
		Objective: "Open a bakery",
		Criteria:  domain.Criteria{Currency: "EUR"},
		Budget:    &domain.Budget{BudgetItems: []domain.BudgetItem{{LaborCost: 100}}},
	}
	require.NoError(t, c.UpsertProject(ctx, p))
	require.Len(t, stored, 1)
	assert.Equal(t, "user-1", stored[0].UserID)
	assert.True(t, testNow.Equal(stored[0].UpdatedAt))

	got, err := c.GetProject(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, "Open a bakery", got.Objective)
	assert.Equal(t, 100.0, got.Budget.BudgetItems[0].LaborCost)

	_, err = c.GetProject(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	list, err := c.ListProjects(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, c.DeleteProject(ctx, "p1"))

	err = c.UpsertProject(ctx, &domain.Project{ID: "p2", UserID: "someone-else"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSettingsAndSignOut(t *testing.T) {
	token := signToken(t, "user-1", "", testNow.Add(time.Hour))
	var loggedOut bool

	mux := http.NewServeMux()
	mux.HandleFunc("GET /rest/v1/user_settings", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"user_id":"user-1","provider":"openai","api_key":"sk-1234","model":"gpt-4o-mini","language":"English","updated_at":"2024-03-01T00:00:00Z"}]`))
	})
	mux.HandleFunc("POST /rest/v1/user_settings", func(w http.ResponseWriter, r *http.Request) {
		var rows []settingsRow
		require.NoError(t, json.NewDecoder(r.Body).Decode(&rows))
		assert.Equal(t, "user-1", rows[0].UserID)
		assert.Equal(t, "anthropic", rows[0].Provider)
		w.WriteHeader(http.StatusCreated)
	})
	mux.HandleFunc("POST /auth/v1/logout", func(w http.ResponseWriter, r *http.Request) {
		loggedOut = true
		w.WriteHeader(http.StatusNoContent)
	})
	srv := newHTTPTestServer(t, mux)
	defer srv.Close()

	c := newTestClient(t, srv)
	c.SetSession(&Session{AccessToken: token})
	ctx := context.Background()

	s, err := c.GetSettings(ctx)
	require.NoError(t, err)
	assert.Equal(t, "sk-1234", s.APIKey)
	assert.Equal(t, "English", s.Language)

	require.NoError(t, c.SaveSettings(ctx, &domain.UserSettings{Provider: "anthropic"}))

	require.NoError(t, c.SignOut(ctx))
	assert.True(t, loggedOut)
	assert.Nil(t, c.Session())
}

func TestDecodeAccessToken(t *testing.T) {
	claims, err := DecodeAccessToken(signToken(t, "user-9", "z@example.com", testNow))
	require.NoError(t, err)
	assert.Equal(t, "user-9", claims.Subject)
	assert.Equal(t, "z@example.com", claims.Email)

	_, err = DecodeAccessToken("not-a-token")
	assert.Error(t, err)
}
