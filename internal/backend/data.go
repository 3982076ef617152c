package backend

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/alexanderramin/planpilot/internal/domain"
)

// projectRow is the wire shape of a row in the projects table. Stage
// outputs are jsonb columns.
type projectRow struct {
	ID             string                 `json:"id"`
	UserID         string                 `json:"user_id"`
	Name           string                 `json:"name"`
	Objective      string                 `json:"objective"`
	Criteria       domain.Criteria        `json:"criteria"`
	Plan           *domain.ProjectPlan    `json:"plan"`
	Structure      *domain.WBS            `json:"structure"`
	Schedule       []domain.Task          `json:"schedule"`
	Budget         *domain.Budget         `json:"budget"`
	Risk           *domain.RiskRegister   `json:"risk"`
	KPIReport      *domain.KPIReport      `json:"kpi_report"`
	SCurveReport   *domain.SCurveReport   `json:"s_curve_report"`
	ConsultingPlan *domain.ConsultingPlan `json:"consulting_plan"`
	CreatedAt      time.Time              `json:"created_at"`
	UpdatedAt      time.Time              `json:"updated_at"`
}

func toRow(p *domain.Project) projectRow {
	return projectRow{
		ID: p.ID, UserID: p.UserID, Name: p.Name, Objective: p.Objective, Criteria: p.Criteria,
		Plan: p.Plan, Structure: p.Structure, Schedule: p.Schedule, Budget: p.Budget, Risk: p.Risk,
		KPIReport: p.KPIReport, SCurveReport: p.SCurveReport, ConsultingPlan: p.ConsultingPlan,
		CreatedAt: p.CreatedAt, UpdatedAt: p.UpdatedAt,
	}
}

func (r projectRow) project() *domain.Project {
	return &domain.Project{
		ID: r.ID, UserID: r.UserID, Name: r.Name, Objective: r.Objective, Criteria: r.Criteria,
		Plan: r.Plan, Structure: r.Structure, Schedule: r.Schedule, Budget: r.Budget, Risk: r.Risk,
		KPIReport: r.KPIReport, SCurveReport: r.SCurveReport, ConsultingPlan: r.ConsultingPlan,
		CreatedAt: r.CreatedAt, UpdatedAt: r.UpdatedAt,
	}
}

type settingsRow struct {
	UserID    string    `json:"user_id"`
	Provider  string    `json:"provider"`
	APIKey    string    `json:"api_key"`
	Model     string    `json:"model"`
	Language  string    `json:"language"`
	UpdatedAt time.Time `json:"updated_at"`
}

var upsertHeaders = map[string]string{"Prefer": "resolution=merge-duplicates,return=minimal"}

// ListProjects returns the signed-in user's projects, newest first.
func (c *Client) ListProjects(ctx context.Context) ([]*domain.Project, error) {
	if !c.Enabled() {
		return nil, nil
	}
	uid, err := c.requireUser()
	if err != nil {
		return nil, err
	}

	var rows []projectRow
	query := url.Values{
		"select":  {"*"},
		"user_id": {"eq." + uid},
		"order":   {"updated_at.desc"},
	}
	if err := c.do(ctx, http.MethodGet, "/rest/v1/projects", query, nil, nil, &rows); err != nil {
		return nil, fmt.Errorf("listing projects: %w", err)
	}
	out := make([]*domain.Project, len(rows))
	for i, r := range rows {
		out[i] = r.project()
	}
	return out, nil
}

func (c *Client) GetProject(ctx context.Context, id string) (*domain.Project, error) {
	if !c.Enabled() {
		return nil, nil
	}
	uid, err := c.requireUser()
	if err != nil {
		return nil, err
	}

	var rows []projectRow
	query := url.Values{
		"select":  {"*"},
		"id":      {"eq." + id},
		"user_id": {"eq." + uid},
	}
	if err := c.do(ctx, http.MethodGet, "/rest/v1/projects", query, nil, nil, &rows); err != nil {
		return nil, fmt.Errorf("getting project %s: %w", id, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("project %s: %w", id, ErrNotFound)
	}
	return rows[0].project(), nil
}

// UpsertProject replaces the whole row. The owner is always the
// signed-in user.
func (c *Client) UpsertProject(ctx context.Context, p *domain.Project) error {
	if !c.Enabled() {
		return nil
	}
	uid, err := c.requireUser()
	if err != nil {
		return err
	}
	if p.UserID != "" && p.UserID != uid {
		return fmt.Errorf("project %s: %w", p.ID, ErrNotFound)
	}

	row := toRow(p)
	row.UserID = uid
	if row.CreatedAt.IsZero() {
		row.CreatedAt = c.now().UTC()
	}
	row.UpdatedAt = c.now().UTC()
	if err := c.do(ctx, http.MethodPost, "/rest/v1/projects", nil, upsertHeaders, []projectRow{row}, nil); err != nil {
		return fmt.Errorf("upserting project %s: %w", p.ID, err)
	}
	return nil
}

func (c *Client) DeleteProject(ctx context.Context, id string) error {
	if !c.Enabled() {
		return nil
	}
	uid, err := c.requireUser()
	if err != nil {
		return err
	}
	query := url.Values{"id": {"eq." + id}, "user_id": {"eq." + uid}}
	if err := c.do(ctx, http.MethodDelete, "/rest/v1/projects", query, nil, nil, nil); err != nil {
		return fmt.Errorf("deleting project %s: %w", id, err)
	}
	return nil
}

// GetSettings returns nil without error when the user has none stored.
func (c *Client) GetSettings(ctx context.Context) (*domain.UserSettings, error) {
	if !c.Enabled() {
		return nil, nil
	}
	uid, err := c.requireUser()
	if err != nil {
		return nil, err
	}

	var rows []settingsRow
	query := url.Values{"select": {"*"}, "user_id": {"eq." + uid}}
	if err := c.do(ctx, http.MethodGet, "/rest/v1/user_settings", query, nil, nil, &rows); err != nil {
		return nil, fmt.Errorf("getting settings: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	r := rows[0]
	return &domain.UserSettings{
		UserID: r.UserID, Provider: r.Provider, APIKey: r.APIKey,
		Model: r.Model, Language: r.Language, UpdatedAt: r.UpdatedAt,
	}, nil
}

func (c *Client) SaveSettings(ctx context.Context, s *domain.UserSettings) error {
	if !c.Enabled() {
		return nil
	}
	uid, err := c.requireUser()
	if err != nil {
		return err
	}
	row := settingsRow{
		UserID: uid, Provider: s.Provider, APIKey: s.APIKey,
		Model: s.Model, Language: s.Language, UpdatedAt: c.now().UTC(),
	}
	if err := c.do(ctx, http.MethodPost, "/rest/v1/user_settings", nil, upsertHeaders, []settingsRow{row}, nil); err != nil {
		return fmt.Errorf("saving settings: %w", err)
	}
	return nil
}

// IsAuthError reports whether err means the session is missing or was
// rejected by the service.
func IsAuthError(err error) bool {
	if errors.Is(err, ErrNotAuthenticated) {
		return true
	}
	var apiErr *APIError
	return errors.As(err, &apiErr) && (apiErr.StatusCode == http.StatusUnauthorized || apiErr.StatusCode == http.StatusForbidden)
}
