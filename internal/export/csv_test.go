package export

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"github.com/alexanderramin/planpilot/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readCSV(t *testing.T, data []byte) [][]string {
	t.Helper()
	rows, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	require.NoError(t, err)
	return rows
}

func TestWriteKPICSV(t *testing.T) {
	var buf bytes.Buffer
	s := domain.KPISnapshot{OverallProgress: 46.7, BudgetAtCompletion: 8050, PlannedDuration: 60, SPI: 0.93, CPI: 0.93}
	require.NoError(t, WriteKPICSV(&buf, s, domain.HealthAtRisk))

	rows := readCSV(t, buf.Bytes())
	assert.Equal(t, []string{"metric", "value"}, rows[0])

	values := map[string]string{}
	for _, r := range rows[1:] {
		values[r[0]] = r[1]
	}
	assert.Equal(t, "46.7", values["overall_progress"])
	assert.Equal(t, "8050", values["budget_at_completion"])
	assert.Equal(t, "60", values["planned_duration_days"])
	assert.Equal(t, "0.93", values["spi"])
	assert.Equal(t, "at_risk", values["health"])
}

func TestWriteRiskCSV(t *testing.T) {
	var buf bytes.Buffer
	reg := &domain.RiskRegister{Risks: []domain.Risk{{
		ID: "R1", Description: "Permit delay, possibly \"long\"", Category: "Legal",
		Probability: domain.ProbabilityHigh, Impact: domain.ProbabilityMedium,
		Mitigation: "File early", Owner: "PM",
	}}}
	require.NoError(t, WriteRiskCSV(&buf, reg))

	rows := readCSV(t, buf.Bytes())
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"R1", "Permit delay, possibly \"long\"", "Legal", "High", "Medium", "File early", "PM"}, rows[1])

	buf.Reset()
	require.NoError(t, WriteRiskCSV(&buf, nil))
	assert.Len(t, readCSV(t, buf.Bytes()), 1)
}

func TestWriteScheduleCSV(t *testing.T) {
	var buf bytes.Buffer
	tasks := []domain.Task{{
		ID: "t2", Name: "Pour", Type: domain.TaskTypeTask, Project: "p1",
		Start: time.Date(2024, 3, 16, 0, 0, 0, 0, time.UTC), End: time.Date(2024, 3, 30, 0, 0, 0, 0, time.UTC),
		Progress: 10, Cost: 1200.5, Resource: "crew", Dependencies: []string{"t1", "t0"},
	}}
	require.NoError(t, WriteScheduleCSV(&buf, tasks))

	rows := readCSV(t, buf.Bytes())
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"t2", "Pour", "task", "p1", "2024-03-16", "2024-03-30", "10", "1200.5", "crew", "t1;t0"}, rows[1])
}
