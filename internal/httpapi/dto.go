package httpapi

import (
	"time"

	"github.com/alexanderramin/planpilot/internal/domain"
)

// projectDTO is the JSON shape of a project; stage keys match the stage
// names.
type projectDTO struct {
	ID             string                 `json:"id"`
	Name           string                 `json:"name"`
	Objective      string                 `json:"objective"`
	Criteria       domain.Criteria        `json:"criteria"`
	Plan           *domain.ProjectPlan    `json:"plan,omitempty"`
	Structure      *domain.WBS            `json:"structure,omitempty"`
	Schedule       []domain.Task          `json:"schedule,omitempty"`
	Budget         *domain.Budget         `json:"budget,omitempty"`
	Risk           *domain.RiskRegister   `json:"risk,omitempty"`
	KPIReport      *domain.KPIReport      `json:"kpiReport,omitempty"`
	SCurveReport   *domain.SCurveReport   `json:"sCurveReport,omitempty"`
	ConsultingPlan *domain.ConsultingPlan `json:"consultingPlan,omitempty"`
	CreatedAt      time.Time              `json:"createdAt"`
	UpdatedAt      time.Time              `json:"updatedAt"`
}

func toDTO(p *domain.Project) projectDTO {
	return projectDTO{
		ID: p.ID, Name: p.Name, Objective: p.Objective, Criteria: p.Criteria,
		Plan: p.Plan, Structure: p.Structure, Schedule: p.Schedule, Budget: p.Budget, Risk: p.Risk,
		KPIReport: p.KPIReport, SCurveReport: p.SCurveReport, ConsultingPlan: p.ConsultingPlan,
		CreatedAt: p.CreatedAt, UpdatedAt: p.UpdatedAt,
	}
}

func (d projectDTO) project() *domain.Project {
	return &domain.Project{
		ID: d.ID, Name: d.Name, Objective: d.Objective, Criteria: d.Criteria,
		Plan: d.Plan, Structure: d.Structure, Schedule: d.Schedule, Budget: d.Budget, Risk: d.Risk,
		KPIReport: d.KPIReport, SCurveReport: d.SCurveReport, ConsultingPlan: d.ConsultingPlan,
	}
}
