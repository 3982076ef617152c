// Package export flattens KPI snapshots and risk registers into CSV.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/alexanderramin/planpilot/internal/datemath"
	"github.com/alexanderramin/planpilot/internal/domain"
)

// WriteKPICSV writes one metric,value row per snapshot field.
func WriteKPICSV(w io.Writer, s domain.KPISnapshot, health domain.HealthLevel) error {
	rows := [][]string{
		{"metric", "value"},
		{"overall_progress", num(s.OverallProgress)},
		{"planned_duration_days", strconv.Itoa(s.PlannedDuration)},
		{"percent_duration_elapsed", num(s.PercentDurationElapsed)},
		{"budget_at_completion", num(s.BudgetAtCompletion)},
		{"planned_value", num(s.PlannedValue)},
		{"earned_value", num(s.EarnedValue)},
		{"actual_cost", num(s.ActualCost)},
		{"schedule_variance", num(s.ScheduleVariance)},
		{"cost_variance", num(s.CostVariance)},
		{"spi", num(s.SPI)},
		{"cpi", num(s.CPI)},
		{"health", string(health)},
	}
	return writeAll(w, rows)
}

// WriteRiskCSV writes one row per risk.
func WriteRiskCSV(w io.Writer, reg *domain.RiskRegister) error {
	rows := [][]string{{"id", "description", "category", "probability", "impact", "mitigation", "owner"}}
	if reg != nil {
		for _, r := range reg.Risks {
			rows = append(rows, []string{
				r.ID, r.Description, r.Category,
				string(r.Probability), string(r.Impact),
				r.Mitigation, r.Owner,
			})
		}
	}
	return writeAll(w, rows)
}

// WriteScheduleCSV writes one row per task.
func WriteScheduleCSV(w io.Writer, tasks []domain.Task) error {
	rows := [][]string{{"id", "name", "type", "project", "start", "end", "progress", "cost", "resource", "dependencies"}}
	for _, t := range tasks {
		rows = append(rows, []string{
			t.ID, t.Name, string(t.Type), t.Project,
			datemath.FormatDate(t.Start), datemath.FormatDate(t.End),
			strconv.Itoa(t.Progress), num(t.Cost), t.Resource, strings.Join(t.Dependencies, ";"),
		})
	}
	return writeAll(w, rows)
}

func writeAll(w io.Writer, rows [][]string) error {
	cw := csv.NewWriter(w)
	if err := cw.WriteAll(rows); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	return nil
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
