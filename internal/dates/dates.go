// Package dates converts between request date strings, stored instants and
// rendered calendar days.
//
// A calendar day is stored as 12:00:00 UTC of that day and always rendered
// from its UTC fields, so the day a client sent is the day it gets back no
// matter which zone the process runs in.
package dates

import (
	"fmt"
	"time"
)

const (
	// InputLayout is the only accepted calendar date format.
	InputLayout = "2006-01-02"
	// RenderLayout matches the "Mon Jan 01 2024" style clients expect.
	RenderLayout = "Mon Jan 02 2006"

	anchorHour = 12
)

// ParseCalendarDate parses a YYYY-MM-DD string and anchors it at UTC noon.
func ParseCalendarDate(s string) (time.Time, error) {
	day, err := time.ParseInLocation(InputLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse calendar date %q: %w", s, err)
	}
	return anchor(day.Year(), day.Month(), day.Day()), nil
}

// Today returns the calendar day of now, read in now's own location, anchored
// at UTC noon. Passing time.Now() yields the server's local calendar day.
func Today(now time.Time) time.Time {
	return anchor(now.Year(), now.Month(), now.Day())
}

// StartOfDay is the first second of the instant's UTC calendar day.
func StartOfDay(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// EndOfDay is the last whole second of the instant's UTC calendar day.
func EndOfDay(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 23, 59, 59, 0, time.UTC)
}

// RenderCalendarDate formats a stored instant as a human-readable day.
func RenderCalendarDate(t time.Time) string {
	return t.UTC().Format(RenderLayout)
}

// FormatCalendarDate formats a stored instant back into YYYY-MM-DD.
func FormatCalendarDate(t time.Time) string {
	return t.UTC().Format(InputLayout)
}

func anchor(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, anchorHour, 0, 0, 0, time.UTC)
}
