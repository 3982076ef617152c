package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/alexanderramin/planpilot/internal/db"
	"github.com/alexanderramin/planpilot/internal/domain"
)

// SQLProjectRepo implements ProjectRepo. Stage outputs are JSON text
// columns; a missing stage is NULL.
type SQLProjectRepo struct {
	queryer
}

func NewProjectRepo(conn db.DBTX, dialect db.Dialect) *SQLProjectRepo {
	return &SQLProjectRepo{queryer{db: conn, dialect: dialect}}
}

const projectColumns = `id, user_id, name, objective, criteria, plan, structure, schedule, budget,
	risk, kpi_report, s_curve_report, consulting_plan, created_at, updated_at`

func (r *SQLProjectRepo) Upsert(ctx context.Context, p *domain.Project) error {
	args, err := projectArgs(p)
	if err != nil {
		return err
	}
	query := `INSERT INTO projects (` + projectColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			name = excluded.name,
			objective = excluded.objective,
			criteria = excluded.criteria,
			plan = excluded.plan,
			structure = excluded.structure,
			schedule = excluded.schedule,
			budget = excluded.budget,
			risk = excluded.risk,
			kpi_report = excluded.kpi_report,
			s_curve_report = excluded.s_curve_report,
			consulting_plan = excluded.consulting_plan,
			updated_at = excluded.updated_at
		WHERE projects.user_id = excluded.user_id`
	res, err := r.db.ExecContext(ctx, r.q(query), args...)
	if err != nil {
		return fmt.Errorf("upserting project: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		// The id exists but belongs to someone else.
		return fmt.Errorf("project %s: %w", p.ID, ErrNotFound)
	}
	return nil
}

func (r *SQLProjectRepo) GetByID(ctx context.Context, userID, id string) (*domain.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects WHERE user_id = ? AND id = ?`
	p, err := scanProject(r.db.QueryRowContext(ctx, r.q(query), userID, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("project %s: %w", id, ErrNotFound)
	}
	return p, err
}

func (r *SQLProjectRepo) ListByUser(ctx context.Context, userID string) ([]*domain.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects WHERE user_id = ? ORDER BY updated_at DESC, id`
	rows, err := r.db.QueryContext(ctx, r.q(query), userID)
	if err != nil {
		return nil, fmt.Errorf("listing projects: %w", err)
	}
	defer rows.Close()

	var projects []*domain.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

func (r *SQLProjectRepo) Delete(ctx context.Context, userID, id string) error {
	res, err := r.db.ExecContext(ctx, r.q(`DELETE FROM projects WHERE user_id = ? AND id = ?`), userID, id)
	if err != nil {
		return fmt.Errorf("deleting project: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting project: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("project %s: %w", id, ErrNotFound)
	}
	return nil
}

func projectArgs(p *domain.Project) ([]any, error) {
	criteria, err := json.Marshal(p.Criteria)
	if err != nil {
		return nil, fmt.Errorf("encoding criteria: %w", err)
	}

	var schedule any
	if len(p.Schedule) > 0 {
		data, err := json.Marshal(p.Schedule)
		if err != nil {
			return nil, fmt.Errorf("encoding schedule: %w", err)
		}
		schedule = string(data)
	}

	var encErr error
	args := []any{
		p.ID, p.UserID, p.Name, p.Objective, string(criteria),
		nullableJSON(p.Plan, &encErr),
		nullableJSON(p.Structure, &encErr),
		schedule,
		nullableJSON(p.Budget, &encErr),
		nullableJSON(p.Risk, &encErr),
		nullableJSON(p.KPIReport, &encErr),
		nullableJSON(p.SCurveReport, &encErr),
		nullableJSON(p.ConsultingPlan, &encErr),
		formatTime(p.CreatedAt),
		formatTime(p.UpdatedAt),
	}
	if encErr != nil {
		return nil, fmt.Errorf("encoding stage output: %w", encErr)
	}
	return args, nil
}

func scanProject(row rowScanner) (*domain.Project, error) {
	var (
		p                                       domain.Project
		criteria, createdAt, updatedAt          string
		plan, structure, schedule, budget, risk sql.NullString
		kpiReport, sCurveReport, consultingPlan sql.NullString
	)
	err := row.Scan(
		&p.ID, &p.UserID, &p.Name, &p.Objective, &criteria,
		&plan, &structure, &schedule, &budget, &risk,
		&kpiReport, &sCurveReport, &consultingPlan,
		&createdAt, &updatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning project: %w", err)
	}

	if err := json.Unmarshal([]byte(criteria), &p.Criteria); err != nil {
		return nil, fmt.Errorf("decoding criteria: %w", err)
	}
	if schedule.Valid && schedule.String != "" {
		if err := json.Unmarshal([]byte(schedule.String), &p.Schedule); err != nil {
			return nil, fmt.Errorf("decoding schedule: %w", err)
		}
	}

	if p.Plan, err = unmarshalNullable[domain.ProjectPlan](plan, "plan"); err != nil {
		return nil, err
	}
	if p.Structure, err = unmarshalNullable[domain.WBS](structure, "structure"); err != nil {
		return nil, err
	}
	if p.Budget, err = unmarshalNullable[domain.Budget](budget, "budget"); err != nil {
		return nil, err
	}
	if p.Risk, err = unmarshalNullable[domain.RiskRegister](risk, "risk"); err != nil {
		return nil, err
	}
	if p.KPIReport, err = unmarshalNullable[domain.KPIReport](kpiReport, "kpi_report"); err != nil {
		return nil, err
	}
	if p.SCurveReport, err = unmarshalNullable[domain.SCurveReport](sCurveReport, "s_curve_report"); err != nil {
		return nil, err
	}
	if p.ConsultingPlan, err = unmarshalNullable[domain.ConsultingPlan](consultingPlan, "consulting_plan"); err != nil {
		return nil, err
	}

	if p.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	if p.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, fmt.Errorf("parsing updated_at: %w", err)
	}
	return &p, nil
}
