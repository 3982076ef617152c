package intelligence

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/planpilot/internal/domain"
	"github.com/alexanderramin/planpilot/internal/kpi"
	"github.com/alexanderramin/planpilot/internal/llm"
)

var (
	// ErrEmptyResult indicates the provider answered with a well-formed
	// but unusable artifact, such as an empty WBS. It is not retried.
	ErrEmptyResult = errors.New("generation returned an empty result")

	// ErrMissingPrerequisite indicates a stage needs an earlier output
	// that the project does not have yet.
	ErrMissingPrerequisite = errors.New("missing prerequisite stage")

	// ErrUnknownStage indicates a stage name outside domain.Stages.
	ErrUnknownStage = errors.New("unknown stage")
)

// Planner generates each planning artifact of a project through a
// Generator. It keeps no state between calls.
type Planner struct {
	gen      llm.Generator
	language string
	now      func() time.Time
}

// PlannerOption configures a Planner.
type PlannerOption func(*Planner)

// WithLanguage asks for prose fields in the given language.
func WithLanguage(lang string) PlannerOption {
	return func(p *Planner) { p.language = lang }
}

// WithClock overrides the reference time for KPI and S-curve reports.
func WithClock(now func() time.Time) PlannerOption {
	return func(p *Planner) { p.now = now }
}

func NewPlanner(gen llm.Generator, opts ...PlannerOption) *Planner {
	p := &Planner{gen: gen, now: time.Now}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run generates stage and stores the output on project. On error the
// project is left as it was.
func (p *Planner) Run(ctx context.Context, project *domain.Project, stage domain.Stage) error {
	switch stage {
	case domain.StagePlan:
		return keep(&project.Plan)(p.Plan(ctx, project))
	case domain.StageStructure:
		return keep(&project.Structure)(p.Structure(ctx, project))
	case domain.StageSchedule:
		return keep(&project.Schedule)(p.Schedule(ctx, project))
	case domain.StageBudget:
		return keep(&project.Budget)(p.Budget(ctx, project))
	case domain.StageRisk:
		return keep(&project.Risk)(p.Risks(ctx, project))
	case domain.StageKPIReport:
		return keep(&project.KPIReport)(p.KPIReport(ctx, project))
	case domain.StageSCurveReport:
		return keep(&project.SCurveReport)(p.SCurveReport(ctx, project))
	case domain.StageConsultingPlan:
		return keep(&project.ConsultingPlan)(p.ConsultingPlan(ctx, project))
	default:
		return fmt.Errorf("%w: %q", ErrUnknownStage, stage)
	}
}

// keep returns a setter that writes v into dst only when err is nil.
func keep[T any](dst *T) func(T, error) error {
	return func(v T, err error) error {
		if err != nil {
			return err
		}
		*dst = v
		return nil
	}
}

func (p *Planner) Plan(ctx context.Context, project *domain.Project) (*domain.ProjectPlan, error) {
	out, err := generate[domain.ProjectPlan](ctx, p, domain.StagePlan, project, "", planSchema)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(out.Summary) == "" && len(out.Phases) == 0 {
		return nil, fmt.Errorf("%w: plan has no summary or phases", ErrEmptyResult)
	}
	return &out, nil
}

func (p *Planner) Structure(ctx context.Context, project *domain.Project) (*domain.WBS, error) {
	out, err := generate[domain.WBS](ctx, p, domain.StageStructure, project, "", structureSchema)
	if err != nil {
		return nil, err
	}
	if out.Count() == 0 {
		return nil, fmt.Errorf("%w: work breakdown has no nodes", ErrEmptyResult)
	}
	return &out, nil
}

type scheduleResponse struct {
	Tasks []domain.Task `json:"tasks"`
}

// Schedule generates a task list, normalizes field-level slips and rejects
// structural violations.
func (p *Planner) Schedule(ctx context.Context, project *domain.Project) ([]domain.Task, error) {
	out, err := generate[scheduleResponse](ctx, p, domain.StageSchedule, project, "", scheduleSchema)
	if err != nil {
		return nil, err
	}
	if len(out.Tasks) == 0 {
		return nil, fmt.Errorf("%w: schedule has no tasks", ErrEmptyResult)
	}
	tasks := domain.NormalizeSchedule(out.Tasks)
	if err := domain.ValidateSchedule(tasks); err != nil {
		return nil, fmt.Errorf("%w: %w", llm.ErrInvalidOutput, err)
	}
	return tasks, nil
}

func (p *Planner) Budget(ctx context.Context, project *domain.Project) (*domain.Budget, error) {
	out, err := generate[domain.Budget](ctx, p, domain.StageBudget, project, "", budgetSchema)
	if err != nil {
		return nil, err
	}
	if out.Empty() {
		return nil, fmt.Errorf("%w: budget has no items", ErrEmptyResult)
	}
	return &out, nil
}

func (p *Planner) Risks(ctx context.Context, project *domain.Project) (*domain.RiskRegister, error) {
	out, err := generate[domain.RiskRegister](ctx, p, domain.StageRisk, project, "", riskSchema)
	if err != nil {
		return nil, err
	}
	if len(out.Risks) == 0 {
		return nil, fmt.Errorf("%w: risk register is empty", ErrEmptyResult)
	}
	for i := range out.Risks {
		if out.Risks[i].ID == "" {
			out.Risks[i].ID = fmt.Sprintf("R%d", i+1)
		}
	}
	return &out, nil
}

type narrativeResponse struct {
	Narrative       string   `json:"narrative"`
	Recommendations []string `json:"recommendations"`
}

// KPIReport computes the snapshot locally and asks the provider only for
// the narrative around it.
func (p *Planner) KPIReport(ctx context.Context, project *domain.Project) (*domain.KPIReport, error) {
	if len(project.Schedule) == 0 {
		return nil, fmt.Errorf("%w: kpi report needs a schedule", ErrMissingPrerequisite)
	}
	now := p.now()
	snap := kpi.CalculateKPIs(project.Schedule, project.Budget, now)
	health := kpi.Health(snap)

	extra := dataBlock("Earned-value snapshot", snap) +
		fmt.Sprintf("\nHealth: %s\nSignals: %s\n", health, strings.Join(kpi.Signals(snap), "; "))
	out, err := generate[narrativeResponse](ctx, p, domain.StageKPIReport, project, extra, narrativeSchema)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(out.Narrative) == "" {
		return nil, fmt.Errorf("%w: kpi narrative is empty", ErrEmptyResult)
	}
	return &domain.KPIReport{
		Snapshot:        snap,
		Health:          health,
		Narrative:       out.Narrative,
		Recommendations: out.Recommendations,
		GeneratedAt:     now.UTC(),
	}, nil
}

// SCurveReport computes the planned curve locally and asks the provider
// only for the narrative.
func (p *Planner) SCurveReport(ctx context.Context, project *domain.Project) (*domain.SCurveReport, error) {
	if len(project.Schedule) == 0 {
		return nil, fmt.Errorf("%w: s-curve report needs a schedule", ErrMissingPrerequisite)
	}
	points := kpi.SCurve(project.Schedule, project.Budget, kpi.DefaultSCurveStep)

	out, err := generate[narrativeResponse](ctx, p, domain.StageSCurveReport, project, dataBlock("Planned S-curve", points), narrativeSchema)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(out.Narrative) == "" {
		return nil, fmt.Errorf("%w: s-curve narrative is empty", ErrEmptyResult)
	}
	return &domain.SCurveReport{
		Points:      points,
		Narrative:   out.Narrative,
		GeneratedAt: p.now().UTC(),
	}, nil
}

func (p *Planner) ConsultingPlan(ctx context.Context, project *domain.Project) (*domain.ConsultingPlan, error) {
	out, err := generate[domain.ConsultingPlan](ctx, p, domain.StageConsultingPlan, project, "", consultingSchema)
	if err != nil {
		return nil, err
	}
	if len(out.Sections) == 0 {
		return nil, fmt.Errorf("%w: consulting plan has no sections", ErrEmptyResult)
	}
	return &out, nil
}

func generate[T any](ctx context.Context, p *Planner, stage domain.Stage, project *domain.Project, extra string, schema *llm.Schema) (T, error) {
	var zero T
	if strings.TrimSpace(project.Objective) == "" {
		return zero, fmt.Errorf("%w: project objective is empty", ErrMissingPrerequisite)
	}

	resp, err := p.gen.Generate(ctx, llm.GenerateRequest{
		Task:   llm.TaskGenerate,
		System: systemPrompt(p.language),
		Prompt: stagePrompt(stage, project, extra),
		Schema: schema,
	})
	if err != nil {
		return zero, fmt.Errorf("llm %s generation failed: %w", stage, err)
	}

	out, err := llm.ExtractWithSchema[T](resp.Text, schema)
	if err != nil {
		return zero, fmt.Errorf("failed to extract %s: %w", stage, err)
	}
	return out, nil
}
