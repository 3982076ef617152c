package formatter

import (
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/planpilot/internal/domain"
	"github.com/alexanderramin/planpilot/internal/kpi"
)

// FormatKPIs renders an earned-value snapshot with its health badge and
// signals.
func FormatKPIs(s domain.KPISnapshot, health domain.HealthLevel, signals []string, asOf time.Time, currency string) string {
	var b strings.Builder

	b.WriteString(Header("Earned value"))
	b.WriteString("\n")
	fmt.Fprintf(&b, "%s  %s\n\n", HealthIndicator(health), Dim("as of "+asOf.Format("2006-01-02")))

	fmt.Fprintf(&b, "Progress   %s\n", RenderProgress(s.OverallProgress, 20))
	fmt.Fprintf(&b, "Elapsed    %s  %s\n\n", RenderProgress(s.PercentDurationElapsed, 20),
		Dim(fmt.Sprintf("of %d days", s.PlannedDuration)))

	rows := [][]string{
		{"BAC", Money(s.BudgetAtCompletion, currency)},
		{"PV", Money(s.PlannedValue, currency)},
		{"EV", Money(s.EarnedValue, currency)},
		{"AC", Money(s.ActualCost, currency)},
		{"SV", Signed(s.ScheduleVariance, currency)},
		{"CV", Signed(s.CostVariance, currency)},
		{"SPI", indexStyle(s.SPI)},
		{"CPI", indexStyle(s.CPI)},
	}
	b.WriteString(Table{Headers: []string{"METRIC", "VALUE"}, Rows: rows, Right: map[int]bool{1: true}}.Render())

	if len(signals) > 0 {
		b.WriteString("\n")
		for _, sig := range signals {
			fmt.Fprintf(&b, "%s %s\n", StyleYellow.Render("!"), sig)
		}
	}
	return b.String()
}

func indexStyle(v float64) string {
	switch {
	case v >= kpi.OnTrackIndex:
		return StyleGreen.Render(Ratio(v))
	case v >= kpi.CriticalIndex:
		return StyleYellow.Render(Ratio(v))
	default:
		return StyleRed.Render(Ratio(v))
	}
}
