package formatter

import (
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/planpilot/internal/datemath"
	"github.com/alexanderramin/planpilot/internal/domain"
)

// FormatProjectList renders one row per project with its stage coverage.
func FormatProjectList(projects []*domain.Project, now time.Time) string {
	if len(projects) == 0 {
		return Dim("No projects yet. Create one with: planpilot project new") + "\n"
	}
	rows := make([][]string, 0, len(projects))
	for _, p := range projects {
		done := 0
		for _, s := range domain.Stages {
			if p.HasStage(s) {
				done++
			}
		}
		rows = append(rows, []string{
			Dim(shortID(p.ID)),
			TruncateText(p.DisplayName(), 40),
			fmt.Sprintf("%d/%d", done, len(domain.Stages)),
			RelativeTime(p.UpdatedAt, now),
		})
	}
	return RenderTable([]string{"ID", "PROJECT", "STAGES", "UPDATED"}, rows)
}

// FormatProjectDetail renders the objective, criteria and which stages
// have been generated.
func FormatProjectDetail(p *domain.Project) string {
	var b strings.Builder
	b.WriteString(Header(p.DisplayName()))
	b.WriteString("\n")
	fmt.Fprintf(&b, "%s %s\n", Dim("ID:"), p.ID)
	fmt.Fprintf(&b, "%s %s\n", Dim("Objective:"), p.Objective)

	c := p.Criteria
	for _, kv := range [][2]string{
		{"Location", c.Location},
		{"Start", c.StartDate},
		{"End", c.EndDate},
		{"Budget", strings.TrimSpace(c.Budget + " " + c.Currency)},
		{"Budget type", c.BudgetType},
		{"Duration", c.Duration},
	} {
		if kv[1] != "" {
			fmt.Fprintf(&b, "%s %s\n", Dim(kv[0]+":"), kv[1])
		}
	}

	b.WriteString("\n")
	for _, s := range domain.Stages {
		mark := Dim("○")
		if p.HasStage(s) {
			mark = StyleGreen.Render("●")
		}
		fmt.Fprintf(&b, "%s %s\n", mark, s)
	}
	return b.String()
}

// FormatStage renders one generated stage. A stage that is absent yields
// a hint instead.
func FormatStage(p *domain.Project, stage domain.Stage) string {
	if !p.HasStage(stage) {
		return Dim(fmt.Sprintf("Stage %s has not been generated yet.", stage)) + "\n"
	}
	currency := p.Criteria.Currency
	switch stage {
	case domain.StagePlan:
		return FormatPlan(p.Plan)
	case domain.StageStructure:
		return Header("Work breakdown") + "\n" + RenderWBS(p.Structure)
	case domain.StageSchedule:
		return FormatSchedule(p.Schedule)
	case domain.StageBudget:
		return FormatBudget(p.Budget, currency)
	case domain.StageRisk:
		return FormatRisks(p.Risk)
	case domain.StageKPIReport:
		r := p.KPIReport
		return FormatKPIs(r.Snapshot, r.Health, nil, r.GeneratedAt, currency) + "\n" + formatNarrative(r.Narrative, r.Recommendations)
	case domain.StageSCurveReport:
		return FormatSCurve(p.SCurveReport)
	case domain.StageConsultingPlan:
		return FormatConsulting(p.ConsultingPlan)
	}
	return ""
}

func FormatPlan(plan *domain.ProjectPlan) string {
	var b strings.Builder
	b.WriteString(Header("Plan"))
	b.WriteString("\n")
	if plan.Summary != "" {
		b.WriteString(plan.Summary)
		b.WriteString("\n")
	}
	for i, ph := range plan.Phases {
		fmt.Fprintf(&b, "\n%s %s\n", StyleBlue.Render(fmt.Sprintf("%d.", i+1)), Bold(ph.Name))
		if ph.Description != "" {
			fmt.Fprintf(&b, "   %s\n", ph.Description)
		}
		for _, d := range ph.Deliverables {
			fmt.Fprintf(&b, "   %s %s\n", Dim("-"), d)
		}
	}
	return b.String()
}

// FormatSchedule lists tasks with dates, duration and progress. Child
// tasks are indented under their project row.
func FormatSchedule(tasks []domain.Task) string {
	rows := make([][]string, 0, len(tasks))
	for _, t := range tasks {
		name := t.Name
		switch {
		case t.IsProject():
			name = Bold(name)
		case t.Type == domain.TaskTypeMilestone:
			name = "  " + StylePurple.Render("◆ ") + name
		case t.HasParent():
			name = "  " + name
		}
		days := ""
		if !t.Start.IsZero() && !t.End.IsZero() {
			days = fmt.Sprintf("%d", datemath.DayDiff(t.Start, t.End)+1)
		}
		rows = append(rows, []string{
			Dim(t.ID),
			name,
			datemath.FormatDate(t.Start),
			datemath.FormatDate(t.End),
			days,
			fmt.Sprintf("%d%%", t.Progress),
			strings.Join(t.Dependencies, ","),
		})
	}
	return Header("Schedule") + "\n" + Table{
		Headers: []string{"ID", "TASK", "START", "END", "DAYS", "DONE", "DEPENDS"},
		Rows:    rows,
		Right:   map[int]bool{4: true, 5: true},
	}.Render()
}

func FormatBudget(budget *domain.Budget, currency string) string {
	rows := make([][]string, 0, len(budget.BudgetItems)+1)
	for _, item := range budget.BudgetItems {
		rows = append(rows, []string{
			item.Category,
			TruncateText(item.Description, 36),
			Money(item.LaborCost, ""),
			Money(item.MaterialsCost, ""),
			fmt.Sprintf("%.0f%%", item.ContingencyPercent),
			Money(item.Total(), ""),
		})
	}
	rows = append(rows, []string{Bold("Total"), "", "", "", "", Bold(Money(budget.Total(), currency))})
	return Header("Budget") + "\n" + Table{
		Headers: []string{"CATEGORY", "DESCRIPTION", "LABOR", "MATERIALS", "CONT.", "TOTAL"},
		Rows:    rows,
		Right:   map[int]bool{2: true, 3: true, 4: true, 5: true},
	}.Render()
}

func FormatRisks(reg *domain.RiskRegister) string {
	rows := make([][]string, 0, len(reg.Risks))
	for _, r := range reg.Risks {
		rows = append(rows, []string{
			r.ID,
			TruncateText(r.Description, 40),
			LevelStyle(r.Probability).Render(string(r.Probability)),
			LevelStyle(r.Impact).Render(string(r.Impact)),
			TruncateText(r.Mitigation, 40),
			r.Owner,
		})
	}
	return Header("Risks") + "\n" + RenderTable(
		[]string{"ID", "RISK", "PROB.", "IMPACT", "MITIGATION", "OWNER"}, rows)
}

// FormatSCurve prints the planned curve as a bar per point.
func FormatSCurve(r *domain.SCurveReport) string {
	var b strings.Builder
	b.WriteString(Header("S-curve"))
	b.WriteString("\n")
	for _, pt := range r.Points {
		fmt.Fprintf(&b, "%s  %s\n", Dim(pt.Date), RenderProgress(pt.PlannedPercent, 30))
	}
	b.WriteString("\n")
	b.WriteString(formatNarrative(r.Narrative, nil))
	return b.String()
}

func FormatConsulting(c *domain.ConsultingPlan) string {
	var b strings.Builder
	b.WriteString(Header("Consulting plan"))
	b.WriteString("\n")
	for _, s := range c.Sections {
		fmt.Fprintf(&b, "\n%s\n%s\n", Bold(s.Title), s.Content)
	}
	return b.String()
}

func formatNarrative(narrative string, recs []string) string {
	var b strings.Builder
	b.WriteString(narrative)
	b.WriteString("\n")
	for _, r := range recs {
		fmt.Fprintf(&b, "%s %s\n", StyleGreen.Render("→"), r)
	}
	return b.String()
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
