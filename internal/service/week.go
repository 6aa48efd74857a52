package service

import "time"

// DaysPerWeek is the calendar span the scheduler renders.
const DaysPerWeek = 7

// WeekStart returns the Monday-aligned start (00:00 UTC) of the week
// containing ref.
func WeekStart(ref time.Time) time.Time {
	day := StartOfDay(ref)
	// time.Weekday puts Sunday at 0; shift so Monday is 0.
	offset := (int(day.Weekday()) + 6) % 7
	return day.AddDate(0, 0, -offset)
}

// NextWeek shifts a reference date one week forward.
func NextWeek(ref time.Time) time.Time {
	return ref.AddDate(0, 0, DaysPerWeek)
}

// PreviousWeek shifts a reference date one week back.
func PreviousWeek(ref time.Time) time.Time {
	return ref.AddDate(0, 0, -DaysPerWeek)
}

// StartOfDay truncates a time to its UTC calendar date.
func StartOfDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// SameDay reports whether two times fall on the same UTC calendar date.
func SameDay(a, b time.Time) bool {
	return StartOfDay(a).Equal(StartOfDay(b))
}
