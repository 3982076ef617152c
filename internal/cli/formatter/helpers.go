package formatter

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// RenderBox wraps content in a rounded border.
func RenderBox(title, content string) string {
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorDim).
		Padding(0, 1)

	if title != "" {
		content = StyleHeader.Render(title) + "\n\n" + content
	}
	return box.Render(content)
}

// Money formats an amount with thousands separators and an optional
// currency code suffix.
func Money(v float64, currency string) string {
	neg := v < 0
	if neg {
		v = -v
	}
	whole := fmt.Sprintf("%.2f", v)
	intPart, frac := whole[:len(whole)-3], whole[len(whole)-3:]

	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	out := b.String() + frac
	if neg {
		out = "-" + out
	}
	if currency != "" {
		out += " " + currency
	}
	return out
}

// Ratio formats an index such as SPI with two decimals.
func Ratio(v float64) string {
	return fmt.Sprintf("%.2f", v)
}

// Signed colors a variance green when non-negative and red otherwise.
func Signed(v float64, currency string) string {
	s := Money(v, currency)
	if v < 0 {
		return StyleRed.Render(s)
	}
	if v > 0 {
		s = "+" + s
	}
	return StyleGreen.Render(s)
}

// TruncateText shortens s to max display columns with an ellipsis.
func TruncateText(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	if max <= 1 {
		return "…"
	}
	return string(r[:max-1]) + "…"
}

// RelativeTime renders a timestamp as "today", "yesterday", "3d ago" or
// a date for anything older than a month.
func RelativeTime(t, now time.Time) string {
	if t.IsZero() {
		return "-"
	}
	days := int(now.Sub(t).Hours() / 24)
	switch {
	case days <= 0:
		return "today"
	case days == 1:
		return "yesterday"
	case days < 30:
		return fmt.Sprintf("%dd ago", days)
	default:
		return t.Format("2006-01-02")
	}
}
