package util

import "time"

// StartOfMonth returns the first instant of the month containing t, in UTC.
func StartOfMonth(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// EndOfMonth returns the last instant of the month containing t, in UTC.
func EndOfMonth(t time.Time) time.Time {
	t = t.UTC()
	// Day 0 of the next month is the last day of this month.
	return time.Date(t.Year(), t.Month()+1, 0, 23, 59, 59, 999999999, time.UTC)
}

// DayKey truncates t to its UTC calendar day and formats it as YYYY-MM-DD.
func DayKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}
