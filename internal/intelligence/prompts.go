package intelligence

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/alexanderramin/planpilot/internal/datemath"
	"github.com/alexanderramin/planpilot/internal/domain"
)

const plannerPreamble = `You are a senior project management consultant.
You produce structured planning artifacts for the project described below.
Output ONLY a JSON object matching the requested schema. Use strict JSON
numeric literals (0.5, never .5) and no markdown fences.`

var stageInstructions = map[domain.Stage]string{
	domain.StagePlan: `Write a project plan: a short summary and 3 to 7 sequential
phases, each with a description and concrete deliverables.`,

	domain.StageStructure: `Write a work breakdown structure with outline codes
(1, 1.1, 1.1.1). Cover the full scope in at most three levels.`,

	domain.StageSchedule: `Write a schedule as a flat task list. Group tasks under
rows of type "project" by setting each child's "project" field to the
project row id. Use "milestone" rows for zero-length checkpoints (start
equals end). Dates are YYYY-MM-DD and must fall inside the project window
when one is given. Dependencies reference earlier task ids. Progress is 0
for a new plan. Cost is the planned cost of each task.`,

	domain.StageBudget: `Write a budget as line items with labor hours, labor cost,
materials cost and a contingency percentage. Amounts are plain numbers in
the project currency.`,

	domain.StageRisk: `Write a risk register of 5 to 12 risks with probability and
impact rated Low, Medium or High, a mitigation plan and an owner role.`,

	domain.StageKPIReport: `Interpret the earned-value snapshot below for a project
sponsor. Explain schedule and cost performance, name the drivers and give
three to five recommendations. Do not recompute the numbers.`,

	domain.StageSCurveReport: `Interpret the planned S-curve below: where value is
concentrated, the steepest period and what it means for cash flow and
staffing. Do not recompute the numbers.`,

	domain.StageConsultingPlan: `Write a consulting engagement plan with sections for
context, objectives, approach, governance, deliverables and next steps.`,
}

// projectContext renders the objective, criteria and every earlier stage
// output that informs the next one.
func projectContext(p *domain.Project) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Objective: %s\n", strings.TrimSpace(p.Objective))
	if p.Name != "" {
		fmt.Fprintf(&b, "Name: %s\n", p.Name)
	}

	c := p.Criteria
	criteria := []struct{ label, value string }{
		{"Location", c.Location},
		{"Start date", c.StartDate},
		{"End date", c.EndDate},
		{"Duration", c.Duration},
		{"Budget", c.Budget},
		{"Budget type", c.BudgetType},
		{"Currency", c.Currency},
	}
	for _, cr := range criteria {
		if cr.value != "" {
			fmt.Fprintf(&b, "%s: %s\n", cr.label, cr.value)
		}
	}

	if p.Plan != nil {
		b.WriteString("\nPlan summary: ")
		b.WriteString(p.Plan.Summary)
		b.WriteString("\nPhases:\n")
		for _, ph := range p.Plan.Phases {
			fmt.Fprintf(&b, "- %s: %s\n", ph.Name, ph.Description)
		}
	}
	if p.Structure != nil {
		b.WriteString("\nWork breakdown:\n")
		writeWBS(&b, p.Structure.Nodes, 0)
	}
	if len(p.Schedule) > 0 {
		b.WriteString("\nSchedule:\n")
		for _, t := range p.Schedule {
			fmt.Fprintf(&b, "- %s %s (%s) %s..%s\n", t.ID, t.Name, t.Type,
				datemath.FormatDate(t.Start), datemath.FormatDate(t.End))
		}
	}
	if !p.Budget.Empty() {
		fmt.Fprintf(&b, "\nBudget total: %.2f across %d items\n", p.Budget.Total(), len(p.Budget.BudgetItems))
	}
	return b.String()
}

func writeWBS(b *strings.Builder, nodes []domain.WBSNode, depth int) {
	for _, n := range nodes {
		fmt.Fprintf(b, "%s- %s %s\n", strings.Repeat("  ", depth), n.Code, n.Name)
		writeWBS(b, n.Children, depth+1)
	}
}

func stagePrompt(stage domain.Stage, p *domain.Project, extra string) string {
	var b strings.Builder
	b.WriteString(stageInstructions[stage])
	b.WriteString("\n\n")
	b.WriteString(projectContext(p))
	if extra != "" {
		b.WriteString("\n")
		b.WriteString(extra)
	}
	return b.String()
}

func systemPrompt(language string) string {
	if language == "" {
		return plannerPreamble
	}
	return plannerPreamble + "\nWrite all prose fields in " + language + "."
}

// dataBlock embeds locally computed values as indented JSON.
func dataBlock(label string, v any) string {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return ""
	}
	return label + ":\n" + string(data)
}

const chatSystemPrompt = `You are PlanPilot, a practical project management assistant.
Answer concisely in markdown. When the user asks for a plan, prefer
numbered steps with owners and dates.`

const translateSystemPrompt = `You are a professional translator. Translate the
user's text faithfully, keeping markdown formatting, numbers and proper
nouns. Output only the translation.`
