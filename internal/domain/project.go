package domain

import (
	"fmt"
	"strings"
	"time"
)

// Criteria are the user-supplied constraints a project is planned against.
type Criteria struct {
	Location   string `json:"location,omitempty"`
	StartDate  string `json:"startDate,omitempty"`
	EndDate    string `json:"endDate,omitempty"`
	Currency   string `json:"currency,omitempty"`
	Budget     string `json:"budget,omitempty"`
	Duration   string `json:"duration,omitempty"`
	BudgetType string `json:"budgetType,omitempty"`
}

// Project is the persisted aggregate: objective, criteria and every
// generated stage output. It is replaced as a whole on save.
type Project struct {
	ID        string
	UserID    string
	Name      string
	Objective string
	Criteria  Criteria

	Plan           *ProjectPlan
	Structure      *WBS
	Schedule       []Task
	Budget         *Budget
	Risk           *RiskRegister
	KPIReport      *KPIReport
	SCurveReport   *SCurveReport
	ConsultingPlan *ConsultingPlan

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Validate checks the fields required before a project can be stored.
func (p *Project) Validate() error {
	if strings.TrimSpace(p.Objective) == "" {
		return fmt.Errorf("objective is required")
	}
	if p.UserID == "" {
		return fmt.Errorf("owner is required")
	}
	if p.Criteria.StartDate != "" && p.Criteria.EndDate != "" {
		start, err := parseOptionalDate(p.Criteria.StartDate)
		if err != nil {
			return fmt.Errorf("start date: %w", err)
		}
		end, err := parseOptionalDate(p.Criteria.EndDate)
		if err != nil {
			return fmt.Errorf("end date: %w", err)
		}
		if end.Before(start) {
			return fmt.Errorf("end date %s is before start date %s", p.Criteria.EndDate, p.Criteria.StartDate)
		}
	}
	return nil
}

// DisplayName falls back to a shortened objective when no name was given.
func (p *Project) DisplayName() string {
	if p.Name != "" {
		return p.Name
	}
	obj := strings.TrimSpace(p.Objective)
	if len(obj) > 40 {
		return obj[:40] + "…"
	}
	return obj
}

// HasStage reports whether the given stage output is present.
func (p *Project) HasStage(s Stage) bool {
	switch s {
	case StagePlan:
		return p.Plan != nil
	case StageStructure:
		return p.Structure != nil
	case StageSchedule:
		return len(p.Schedule) > 0
	case StageBudget:
		return p.Budget != nil
	case StageRisk:
		return p.Risk != nil
	case StageKPIReport:
		return p.KPIReport != nil
	case StageSCurveReport:
		return p.SCurveReport != nil
	case StageConsultingPlan:
		return p.ConsultingPlan != nil
	default:
		return false
	}
}

type ProjectPlan struct {
	Summary string  `json:"summary"`
	Phases  []Phase `json:"phases"`
}

type Phase struct {
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	Deliverables []string `json:"deliverables"`
}

// WBS is a hierarchical work breakdown structure.
type WBS struct {
	Nodes []WBSNode `json:"nodes"`
}

type WBSNode struct {
	Code        string    `json:"code"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Children    []WBSNode `json:"children,omitempty"`
}

// Count returns the number of nodes in the whole tree.
func (w *WBS) Count() int {
	if w == nil {
		return 0
	}
	var walk func(nodes []WBSNode) int
	walk = func(nodes []WBSNode) int {
		n := len(nodes)
		for _, c := range nodes {
			n += walk(c.Children)
		}
		return n
	}
	return walk(w.Nodes)
}

type RiskRegister struct {
	Risks []Risk `json:"risks"`
}

type Risk struct {
	ID          string          `json:"id"`
	Description string          `json:"description"`
	Category    string          `json:"category"`
	Probability RiskProbability `json:"probability"`
	Impact      RiskProbability `json:"impact"`
	Mitigation  string          `json:"mitigation"`
	Owner       string          `json:"owner"`
}

// KPISnapshot holds earned-value metrics derived from a schedule and budget.
type KPISnapshot struct {
	OverallProgress        float64 `json:"overallProgress"`
	ScheduleVariance       float64 `json:"scheduleVariance"`
	CostVariance           float64 `json:"costVariance"`
	SPI                    float64 `json:"spi"`
	CPI                    float64 `json:"cpi"`
	BudgetAtCompletion     float64 `json:"budgetAtCompletion"`
	PlannedDuration        int     `json:"plannedDuration"`
	PlannedValue           float64 `json:"plannedValue"`
	EarnedValue            float64 `json:"earnedValue"`
	ActualCost             float64 `json:"actualCost"`
	PercentDurationElapsed float64 `json:"percentDurationElapsed"`
}

// KPIReport caches a snapshot next to the generated narrative.
type KPIReport struct {
	Snapshot        KPISnapshot `json:"snapshot"`
	Health          HealthLevel `json:"health"`
	Narrative       string      `json:"narrative"`
	Recommendations []string    `json:"recommendations"`
	GeneratedAt     time.Time   `json:"generatedAt"`
}

type SCurvePoint struct {
	Date           string  `json:"date"`
	PlannedPercent float64 `json:"plannedPercent"`
	PlannedValue   float64 `json:"plannedValue"`
}

type SCurveReport struct {
	Points      []SCurvePoint `json:"points"`
	Narrative   string        `json:"narrative"`
	GeneratedAt time.Time     `json:"generatedAt"`
}

type ConsultingPlan struct {
	Sections []ConsultingSection `json:"sections"`
}

type ConsultingSection struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}
