package formatter

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/alexanderramin/planpilot/internal/domain"
)

// Gruvbox-inspired color palette, shared with the Gantt bar colors.
var (
	ColorGreen  = lipgloss.Color("#8ec07c")
	ColorYellow = lipgloss.Color("#fabd2f")
	ColorRed    = lipgloss.Color("#fb4934")
	ColorBlue   = lipgloss.Color("#83a598")
	ColorPurple = lipgloss.Color("#d3869b")
	ColorDim    = lipgloss.Color("#928374")
	ColorFg     = lipgloss.Color("#ebdbb2")
	ColorHeader = lipgloss.Color("#fe8019")
)

var (
	StyleGreen      = lipgloss.NewStyle().Foreground(ColorGreen)
	StyleYellow     = lipgloss.NewStyle().Foreground(ColorYellow)
	StyleYellowBold = lipgloss.NewStyle().Foreground(ColorYellow).Bold(true)
	StyleRed        = lipgloss.NewStyle().Foreground(ColorRed)
	StyleBlue       = lipgloss.NewStyle().Foreground(ColorBlue)
	StylePurple     = lipgloss.NewStyle().Foreground(ColorPurple)
	StyleDim        = lipgloss.NewStyle().Foreground(ColorDim)
	StyleFg         = lipgloss.NewStyle().Foreground(ColorFg)
	StyleHeader     = lipgloss.NewStyle().Foreground(ColorHeader).Bold(true)
	StyleBold       = lipgloss.NewStyle().Foreground(ColorFg).Bold(true)
)

// HealthStyle maps a health level to its color.
func HealthStyle(h domain.HealthLevel) lipgloss.Style {
	switch h {
	case domain.HealthCritical:
		return StyleRed
	case domain.HealthAtRisk:
		return StyleYellow
	case domain.HealthOnTrack:
		return StyleGreen
	default:
		return StyleDim
	}
}

// HealthIndicator renders a colored badge such as "● AT RISK".
func HealthIndicator(h domain.HealthLevel) string {
	label := strings.ToUpper(strings.ReplaceAll(string(h), "_", " "))
	if label == "" {
		label = "UNKNOWN"
	}
	return HealthStyle(h).Render("● " + label)
}

// LevelStyle colors Low, Medium and High ratings.
func LevelStyle(p domain.RiskProbability) lipgloss.Style {
	switch p {
	case domain.ProbabilityHigh:
		return StyleRed
	case domain.ProbabilityMedium:
		return StyleYellow
	case domain.ProbabilityLow:
		return StyleGreen
	default:
		return StyleDim
	}
}

// Header renders an upper-cased section title with an underline.
func Header(text string) string {
	upper := strings.ToUpper(text)
	line := strings.Repeat("─", lipgloss.Width(upper))
	return fmt.Sprintf("%s\n%s", StyleHeader.Render(upper), StyleDim.Render(line))
}

func Dim(text string) string {
	return StyleDim.Render(text)
}

func Bold(text string) string {
	return StyleBold.Render(text)
}
