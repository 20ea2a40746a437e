// Package schedule provides the temporal and availability utilities used by
// the planner, validator, and advisor. All dates flow through the system in
// day.month.year textual form and must be parsed and formatted consistently
// to avoid locale drift.
package schedule

import (
	"fmt"
	"time"
)

// DateLayout is the textual date form used throughout the system.
const DateLayout = "2.1.2006"

// weekdayAbbrevs maps Go weekdays to the two-letter abbreviations used in
// staff work day lists, starting from Sunday.
var weekdayAbbrevs = [7]string{"So", "Mo", "Di", "Mi", "Do", "Fr", "Sa"}

// ParseDate parses a day.month.year date string.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse date %q: %w", s, err)
	}
	return t, nil
}

// FormatDate renders a date in day.month.year form.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// WeekdayAbbrev returns the two-letter weekday abbreviation for a date.
func WeekdayAbbrev(t time.Time) string {
	return weekdayAbbrevs[int(t.Weekday())]
}

// MondayOf returns the Monday of the week containing the given date.
func MondayOf(t time.Time) time.Time {
	offset := (int(t.Weekday()) + 6) % 7
	return t.AddDate(0, 0, -offset)
}

// WeekDates returns the 7 consecutive dates of the week containing the given
// date, starting Monday.
func WeekDates(t time.Time) []time.Time {
	monday := MondayOf(t)
	dates := make([]time.Time, 7)
	for i := range dates {
		dates[i] = monday.AddDate(0, 0, i)
	}
	return dates
}

// parseClock parses an HH:MM time of day into minutes since midnight.
func parseClock(s string) (int, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, fmt.Errorf("failed to parse time %q: %w", s, err)
	}
	return t.Hour()*60 + t.Minute(), nil
}

// WindowMinutes returns the duration in minutes of a start/end clock window,
// handling wraparound past midnight (e.g. 22:00 to 06:00 is 480 minutes).
func WindowMinutes(start, end string) (int, error) {
	startMin, err := parseClock(start)
	if err != nil {
		return 0, err
	}
	endMin, err := parseClock(end)
	if err != nil {
		return 0, err
	}

	minutes := endMin - startMin
	if minutes <= 0 {
		minutes += 24 * 60
	}
	return minutes, nil
}
