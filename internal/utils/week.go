package utils

import (
	"fmt"
	"time"
)

// DateLayout is the wire and storage format for calendar dates.
const DateLayout = "2006-01-02"

// ParseDate parses a YYYY-MM-DD date string.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return t, nil
}

// WeekStart returns the Monday of the week containing t, truncated to
// midnight.
func WeekStart(t time.Time) time.Time {
	t = time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	offset := int(t.Weekday()) - int(time.Monday)
	if offset < 0 {
		offset += 7
	}
	return t.AddDate(0, 0, -offset)
}

// CurrentWeekStart returns the Monday of the current week.
func CurrentWeekStart() time.Time {
	return WeekStart(time.Now())
}

// WeekEnd returns the Sunday (week start + 6 days) for a given week start.
func WeekEnd(weekStart time.Time) time.Time {
	return weekStart.AddDate(0, 0, 6)
}

// WeekRange returns the inclusive [start, end] date strings for the week
// commencing on the given date.
func WeekRange(weekCommencing string) (string, string, error) {
	start, err := ParseDate(weekCommencing)
	if err != nil {
		return "", "", err
	}
	return start.Format(DateLayout), WeekEnd(start).Format(DateLayout), nil
}

// IsPastWeek reports whether weekStarting falls strictly before the given
// current week start. Both arguments are YYYY-MM-DD week-start dates, which
// order lexically.
func IsPastWeek(weekStarting, currentWeekStart string) bool {
	return weekStarting < currentWeekStart
}
