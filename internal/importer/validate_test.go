package importer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptrInt(i int) *int           { return &i }
func ptrFloat(f float64) *float64 { return &f }

func validMinimalSchema() *ImportSchema {
	return &ImportSchema{
		Project: ProjectImport{Name: "Bakery", Objective: "Open a bakery"},
	}
}

func validFullSchema() *ImportSchema {
	return &ImportSchema{
		Project: ProjectImport{
			Name:       "Bakery",
			Objective:  "Open a bakery",
			StartDate:  "2024-03-01",
			EndDate:    "2024-06-30",
			Currency:   "eur",
			BudgetType: "fixed",
		},
		Tasks: []TaskImport{
			{Ref: "p1", Name: "Launch", Type: "project", Start: "2024-03-01", End: "2024-04-30"},
			{Ref: "t1", Name: "Lease", ParentRef: "p1", Start: "2024-03-01", End: "2024-03-15", Progress: ptrInt(100), Cost: ptrFloat(1200)},
			{Ref: "t2", Name: "Fit-out", ParentRef: "p1", Start: "2024-03-16", End: "2024-04-20", DependsOn: []string{"t1"}},
			{Ref: "m1", Name: "Opening day", Type: "milestone", Start: "2024-04-30", End: "2024-04-30", DependsOn: []string{"t2"}},
		},
		BudgetItems: []BudgetItemImport{
			{Category: "Fit-out", LaborCost: 5000, MaterialsCost: 2000, ContingencyPercent: 15},
		},
	}
}

func TestValidateImportSchema_ValidMinimal(t *testing.T) {
	assert.Empty(t, ValidateImportSchema(validMinimalSchema()))
}

func TestValidateImportSchema_ValidFull(t *testing.T) {
	assert.Empty(t, ValidateImportSchema(validFullSchema()))
}

func TestValidateImportSchema_Errors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*ImportSchema)
		want   string
	}{
		{"missing objective", func(s *ImportSchema) { s.Project.Objective = " " }, "project.objective is required"},
		{"bad start date", func(s *ImportSchema) { s.Project.StartDate = "03/01/2024" }, "project.start_date: invalid date format"},
		{"end before start", func(s *ImportSchema) { s.Project.EndDate = "2024-01-01" }, "is before start_date"},
		{"missing ref", func(s *ImportSchema) { s.Tasks[1].Ref = "" }, "tasks[1].ref is required"},
		{"duplicate ref", func(s *ImportSchema) { s.Tasks[2].Ref = "t1" }, `duplicate ref "t1"`},
		{"missing name", func(s *ImportSchema) { s.Tasks[1].Name = "" }, `task "t1": name is required`},
		{"bad type", func(s *ImportSchema) { s.Tasks[1].Type = "epic" }, `invalid type "epic"`},
		{"task ends early", func(s *ImportSchema) { s.Tasks[1].End = "2024-02-01" }, `task "t1": end "2024-02-01" is before start`},
		{"progress range", func(s *ImportSchema) { s.Tasks[1].Progress = ptrInt(120) }, "progress 120 outside [0,100]"},
		{"negative cost", func(s *ImportSchema) { s.Tasks[1].Cost = ptrFloat(-1) }, "cost must be >= 0"},
		{"unknown parent", func(s *ImportSchema) { s.Tasks[1].ParentRef = "p9" }, `parent_ref "p9" not found`},
		{"parent not project", func(s *ImportSchema) { s.Tasks[2].ParentRef = "t1" }, `parent_ref "t1" is not a project task`},
		{"unknown dependency", func(s *ImportSchema) { s.Tasks[2].DependsOn = []string{"zz"} }, `depends_on "zz" not found`},
		{"self dependency", func(s *ImportSchema) { s.Tasks[2].DependsOn = []string{"t2"} }, "depends on itself"},
		{"budget category", func(s *ImportSchema) { s.BudgetItems[0].Category = "" }, "budget_items[0].category is required"},
		{"budget amounts", func(s *ImportSchema) { s.BudgetItems[0].LaborCost = -5 }, "amounts must be >= 0"},
		{"contingency range", func(s *ImportSchema) { s.BudgetItems[0].ContingencyPercent = 150 }, "contingency_percent 150.00 outside [0,100]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := validFullSchema()
			tt.mutate(s)
			errs := ValidateImportSchema(s)
			require.NotEmpty(t, errs)
			assert.True(t, containsError(errs, tt.want), "want %q in %v", tt.want, errs)
		})
	}
}

func TestValidateImportSchema_CollectsAllErrors(t *testing.T) {
	s := validFullSchema()
	s.Project.Objective = ""
	s.Tasks[1].Progress = ptrInt(-1)
	s.BudgetItems[0].Category = ""

	assert.Len(t, ValidateImportSchema(s), 3)
}

func TestParseImportSchema(t *testing.T) {
	s, err := ParseImportSchema([]byte(`{
		"project": {"name": "Bakery", "objective": "Open a bakery"},
		"tasks": [{"ref": "t1", "name": "Lease", "start": "2024-03-01", "end": "2024-03-15", "progress": 40}],
		"budget_items": [{"category": "Rent", "labor_cost": 100}]
	}`))
	require.NoError(t, err)
	assert.Equal(t, "Open a bakery", s.Project.Objective)
	require.Len(t, s.Tasks, 1)
	assert.Equal(t, 40, *s.Tasks[0].Progress)
	assert.Equal(t, 100.0, s.BudgetItems[0].LaborCost)

	_, err = ParseImportSchema([]byte(`{"project":`))
	assert.ErrorContains(t, err, "parsing import file")
}

func containsError(errs []error, substr string) bool {
	for _, err := range errs {
		if strings.Contains(err.Error(), substr) {
			return true
		}
	}
	return false
}
