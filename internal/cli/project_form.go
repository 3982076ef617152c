package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/alexanderramin/planpilot/internal/cli/formatter"
	"github.com/alexanderramin/planpilot/internal/datemath"
	"github.com/alexanderramin/planpilot/internal/domain"
)

// projectFormValues are the fields collected by "project new".
type projectFormValues struct {
	Name       string
	Objective  string
	Location   string
	StartDate  string
	EndDate    string
	Budget     string
	Currency   string
	BudgetType string
	Duration   string
}

func (v projectFormValues) project(userID string) *domain.Project {
	return &domain.Project{
		UserID:    userID,
		Name:      strings.TrimSpace(v.Name),
		Objective: strings.TrimSpace(v.Objective),
		Criteria: domain.Criteria{
			Location:   strings.TrimSpace(v.Location),
			StartDate:  strings.TrimSpace(v.StartDate),
			EndDate:    strings.TrimSpace(v.EndDate),
			Currency:   strings.ToUpper(strings.TrimSpace(v.Currency)),
			Budget:     strings.TrimSpace(v.Budget),
			Duration:   strings.TrimSpace(v.Duration),
			BudgetType: strings.TrimSpace(v.BudgetType),
		},
	}
}

// planpilotHuhTheme matches huh forms to the formatter palette.
func planpilotHuhTheme() *huh.Theme {
	t := huh.ThemeBase()

	t.Focused.Title = lipgloss.NewStyle().Foreground(formatter.ColorHeader).Bold(true)
	t.Focused.SelectSelector = lipgloss.NewStyle().Foreground(formatter.ColorHeader)
	t.Focused.SelectedOption = lipgloss.NewStyle().Foreground(formatter.ColorGreen)
	t.Focused.UnselectedOption = lipgloss.NewStyle().Foreground(formatter.ColorFg)
	t.Focused.TextInput.Cursor = lipgloss.NewStyle().Foreground(formatter.ColorHeader)
	t.Focused.TextInput.Prompt = lipgloss.NewStyle().Foreground(formatter.ColorHeader)
	t.Focused.TextInput.Text = lipgloss.NewStyle().Foreground(formatter.ColorFg)
	t.Focused.TextInput.Placeholder = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Focused.Description = lipgloss.NewStyle().Foreground(formatter.ColorDim)

	t.Blurred.Title = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.TextInput.Prompt = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.TextInput.Text = lipgloss.NewStyle().Foreground(formatter.ColorDim)

	return t
}

func dateInput(title string, value *string) *huh.Input {
	return huh.NewInput().
		Title(title).
		Placeholder("2025-06-30").
		Value(value).
		Validate(validateOptionalDate)
}

// projectForm collects the objective first, then the optional criteria.
func projectForm(v *projectFormValues) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewText().
				Title("Objective").
				Description("What should this project achieve?").
				Value(&v.Objective).
				Validate(validateRequired("objective")),
			huh.NewInput().Title("Name (optional)").Value(&v.Name),
		),
		huh.NewGroup(
			huh.NewInput().Title("Location").Value(&v.Location),
			dateInput("Start date (YYYY-MM-DD, blank for none)", &v.StartDate),
			dateInput("End date (YYYY-MM-DD, blank for none)", &v.EndDate).
				Validate(func(s string) error { return validateEndDate(v.StartDate, s) }),
			huh.NewInput().Title("Duration").Placeholder("6 months").Value(&v.Duration),
		),
		huh.NewGroup(
			huh.NewInput().Title("Budget").Placeholder("50000").Value(&v.Budget).Validate(validateOptionalAmount),
			huh.NewInput().Title("Currency").Placeholder("EUR").Value(&v.Currency),
			huh.NewSelect[string]().
				Title("Budget type").
				Options(
					huh.NewOption("unspecified", ""),
					huh.NewOption("fixed", "fixed"),
					huh.NewOption("flexible", "flexible"),
					huh.NewOption("estimate", "estimate"),
				).
				Value(&v.BudgetType),
		),
	).WithTheme(planpilotHuhTheme()).WithShowHelp(false)
}

func runProjectForm(v *projectFormValues) error {
	if err := projectForm(v).Run(); err != nil {
		return fmt.Errorf("project form: %w", err)
	}
	return nil
}

func validateRequired(field string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", field)
		}
		return nil
	}
}

func validateOptionalDate(s string) error {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	if _, err := datemath.ParseDate(strings.TrimSpace(s)); err != nil {
		return err
	}
	return nil
}

func validateEndDate(start, end string) error {
	if err := validateOptionalDate(end); err != nil {
		return err
	}
	if strings.TrimSpace(start) == "" || strings.TrimSpace(end) == "" {
		return nil
	}
	s, err := datemath.ParseDate(strings.TrimSpace(start))
	if err != nil {
		return nil
	}
	e, _ := datemath.ParseDate(strings.TrimSpace(end))
	if e.Before(s) {
		return fmt.Errorf("end date is before start date")
	}
	return nil
}

func validateOptionalAmount(s string) error {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", ""))
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v < 0 {
		return fmt.Errorf("enter a non-negative number")
	}
	return nil
}
