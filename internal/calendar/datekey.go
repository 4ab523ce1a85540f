// Package calendar derives month grids from event collections and owns the
// canonical YYYY-MM-DD day-key format used to bucket events by day.
package calendar

import (
	"fmt"
	"strings"
	"time"
)

// KeyLayout is the time layout of a day-key.
const KeyLayout = "2006-01-02"

// ToKey formats t as a zero-padded YYYY-MM-DD key from its own year, month and day.
func ToKey(t time.Time) string {
	y, m, d := t.Date()
	return fmt.Sprintf("%04d-%02d-%02d", y, int(m), d)
}

// DayKey returns the key for calendar components with a 0-based month.
// Out-of-range values are normalised the way time.Date does.
func DayKey(year, month0, day int) string {
	return ToKey(time.Date(year, time.Month(month0+1), day, 0, 0, 0, 0, time.Local))
}

// ParseKey splits a day-key back into year, 0-based month and day.
func ParseKey(key string) (year, month0, day int, err error) {
	t, err := time.ParseInLocation(KeyLayout, key, time.Local)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("parse day key %q: %w", key, err)
	}
	return t.Year(), int(t.Month()) - 1, t.Day(), nil
}

// Normalize maps a stored date to its day-key. Plain dates are taken as-is and
// RFC 3339 instants are converted to local time first. ok is false when s is
// neither.
func Normalize(s string) (key string, ok bool) {
	s = strings.TrimSpace(s)
	if t, err := time.ParseInLocation(KeyLayout, s, time.Local); err == nil {
		return ToKey(t), true
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return ToKey(t.In(time.Local)), true
	}
	return "", false
}

// DaysIn returns the number of days in the 0-based month.
func DaysIn(year, month0 int) int {
	// Day 0 of the following month is the last day of this one.
	return time.Date(year, time.Month(month0+2), 0, 0, 0, 0, 0, time.Local).Day()
}

// FirstWeekday returns the weekday of the 1st, 0 = Sunday.
func FirstWeekday(year, month0 int) int {
	return int(time.Date(year, time.Month(month0+1), 1, 0, 0, 0, 0, time.Local).Weekday())
}

// Shift moves a (year, 0-based month) pair by delta months, rolling the year over.
func Shift(year, month0, delta int) (int, int) {
	t := time.Date(year, time.Month(month0+1+delta), 1, 0, 0, 0, 0, time.Local)
	return t.Year(), int(t.Month()) - 1
}

// MonthName returns the English month name for a 0-based month.
func MonthName(month0 int) string {
	_, m := Shift(2000, month0, 0)
	return time.Month(m + 1).String()
}
