package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestWeekStart_TruncatesToMonday(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"monday stays", "2026-01-05", "2026-01-05"},
		{"wednesday", "2026-01-07", "2026-01-05"},
		{"sunday belongs to previous monday", "2026-01-11", "2026-01-05"},
		{"across month boundary", "2026-02-01", "2026-01-26"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in, err := ParseDate(tc.in)
			require.NoError(t, err)
			require.Equal(t, tc.want, WeekStart(in).Format(DateLayout))
		})
	}
}

func TestWeekStart_StripsTimeOfDay(t *testing.T) {
	in := time.Date(2026, 1, 7, 15, 30, 45, 0, time.UTC)
	got := WeekStart(in)
	require.Equal(t, "2026-01-05", got.Format(DateLayout))
	require.Equal(t, 0, got.Hour())
}

func TestWeekRange(t *testing.T) {
	start, end, err := WeekRange("2026-01-05")
	require.NoError(t, err)
	require.Equal(t, "2026-01-05", start)
	require.Equal(t, "2026-01-11", end)
}

func TestWeekRange_InvalidDate(t *testing.T) {
	_, _, err := WeekRange("not-a-date")
	require.Error(t, err)
}

func TestParseDate_RejectsOtherLayouts(t *testing.T) {
	_, err := ParseDate("05/01/2026")
	require.Error(t, err)

	_, err = ParseDate("2026-1-5")
	require.Error(t, err)
}

func TestIsPastWeek(t *testing.T) {
	require.True(t, IsPastWeek("2025-12-29", "2026-01-05"))
	require.False(t, IsPastWeek("2026-01-05", "2026-01-05"))
	require.False(t, IsPastWeek("2026-01-12", "2026-01-05"))
}
