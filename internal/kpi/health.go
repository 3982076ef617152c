package kpi

import "github.com/alexanderramin/planpilot/internal/domain"

const (
	// OnTrackIndex is the SPI/CPI floor for an on-track project.
	OnTrackIndex = 0.95
	// CriticalIndex is the SPI/CPI value below which a project is critical.
	CriticalIndex = 0.8
)

// Health classifies a snapshot by its performance indices.
func Health(s Snapshot) domain.HealthLevel {
	switch {
	case s.SPI < CriticalIndex || s.CPI < CriticalIndex:
		return domain.HealthCritical
	case s.SPI >= OnTrackIndex && s.CPI >= OnTrackIndex:
		return domain.HealthOnTrack
	default:
		return domain.HealthAtRisk
	}
}

// Signals lists human-readable reasons behind a non-green health level.
func Signals(s Snapshot) []string {
	var out []string
	switch {
	case s.SPI < CriticalIndex:
		out = append(out, "schedule is far behind plan")
	case s.SPI < OnTrackIndex:
		out = append(out, "schedule is slipping")
	}
	switch {
	case s.CPI < CriticalIndex:
		out = append(out, "cost is far over plan")
	case s.CPI < OnTrackIndex:
		out = append(out, "cost is running over")
	}
	if s.PercentDurationElapsed >= 100 && s.OverallProgress < 100 {
		out = append(out, "planned window has ended with work remaining")
	}
	return out
}
