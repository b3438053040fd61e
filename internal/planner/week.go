package planner

import (
	"fmt"
	"time"
)

// DateLayout is the storage and wire format of a planned date.
const DateLayout = time.DateOnly

// DaysPerWeek is the length of the planning grid.
const DaysPerWeek = 7

// ParseDate parses a YYYY-MM-DD date as UTC midnight.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", s)
	}
	return t, nil
}

// FormatDate renders t as YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// Day drops the clock part of t, keeping its calendar date.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// WeekStart returns the Monday of the week containing t.
func WeekStart(t time.Time) time.Time {
	day := Day(t)
	offset := (int(day.Weekday()) + 6) % 7
	return day.AddDate(0, 0, -offset)
}

// WeekEnd returns the Sunday closing the week that starts at weekStart.
func WeekEnd(weekStart time.Time) time.Time {
	return WeekStart(weekStart).AddDate(0, 0, DaysPerWeek-1)
}

// CurrentWeek returns the start of the week containing now.
func CurrentWeek(now time.Time) time.Time {
	return WeekStart(now)
}

// ShiftWeek moves a week start by n weeks.
func ShiftWeek(weekStart time.Time, n int) time.Time {
	return WeekStart(weekStart).AddDate(0, 0, DaysPerWeek*n)
}

// StepDay moves a day cursor by n days and returns the new day together with
// the start of the week that now owns it.
func StepDay(day time.Time, n int) (time.Time, time.Time) {
	next := Day(day).AddDate(0, 0, n)
	return next, WeekStart(next)
}

// WeekDays lists the seven dates of the week starting at weekStart.
func WeekDays(weekStart time.Time) []time.Time {
	start := WeekStart(weekStart)
	days := make([]time.Time, DaysPerWeek)
	for i := range days {
		days[i] = start.AddDate(0, 0, i)
	}
	return days
}

// DayOffset is the whole number of days from a to b.
func DayOffset(a, b time.Time) int {
	return int(Day(b).Sub(Day(a)).Hours() / 24)
}
