package datemath

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestDayDiff(t *testing.T) {
	tests := []struct {
		name string
		a, b time.Time
		want int
	}{
		{"same day", date(2024, 1, 1), date(2024, 1, 1), 0},
		{"fifteen days", date(2024, 1, 1), date(2024, 1, 16), 15},
		{"backwards", date(2024, 1, 16), date(2024, 1, 1), -15},
		{"leap year", date(2024, 2, 28), date(2024, 3, 1), 2},
		{"ignores wall clock", date(2024, 3, 1).Add(23 * time.Hour), date(2024, 3, 2).Add(time.Hour), 1},
		{"two months", date(2024, 3, 1), date(2024, 4, 30), 60},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DayDiff(tt.a, tt.b))
		})
	}
}

func TestDayDiff_AcrossDaylightSaving(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}
	// 2024-03-10 is the spring-forward day in New York.
	a := time.Date(2024, 3, 9, 0, 0, 0, 0, loc)
	b := time.Date(2024, 3, 11, 0, 0, 0, 0, loc)
	assert.Equal(t, 2, DayDiff(a, b))
}

func TestStartOfISOWeek(t *testing.T) {
	// 2024-03-03 is a Sunday; its ISO week starts Monday 2024-02-26.
	assert.Equal(t, date(2024, 2, 26), StartOfISOWeek(date(2024, 3, 3)))
	assert.Equal(t, date(2024, 3, 4), StartOfISOWeek(date(2024, 3, 4)))
	assert.Equal(t, date(2024, 3, 4), StartOfISOWeek(date(2024, 3, 6)))
}

func TestStartOfMonthAndQuarter(t *testing.T) {
	assert.Equal(t, date(2024, 5, 1), StartOfMonth(date(2024, 5, 19)))
	assert.Equal(t, date(2024, 4, 1), StartOfQuarter(date(2024, 5, 19)))
	assert.Equal(t, date(2024, 1, 1), StartOfQuarter(date(2024, 3, 31)))
	assert.Equal(t, date(2024, 10, 1), StartOfQuarter(date(2024, 12, 1)))
}

func TestParseDate(t *testing.T) {
	got, err := ParseDate("2024-03-15")
	require.NoError(t, err)
	assert.Equal(t, date(2024, 3, 15), got)

	got, err = ParseDate("2024-03-15T08:30:00Z")
	require.NoError(t, err)
	assert.Equal(t, 8, got.Hour())

	_, err = ParseDate("15/03/2024")
	assert.Error(t, err)
}

func TestFormatDate(t *testing.T) {
	assert.Equal(t, "", FormatDate(time.Time{}))
	assert.Equal(t, "2024-03-15", FormatDate(date(2024, 3, 15)))
}

func TestMinMax(t *testing.T) {
	lo, hi, ok := MinMax(date(2024, 3, 5), time.Time{}, date(2024, 1, 2), date(2024, 6, 1))
	require.True(t, ok)
	assert.Equal(t, date(2024, 1, 2), lo)
	assert.Equal(t, date(2024, 6, 1), hi)

	_, _, ok = MinMax(time.Time{})
	assert.False(t, ok)
}
