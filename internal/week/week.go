// Package week converts calendar dates into Monday–Sunday week ranges.
//
// Weeks are plain calendar dates. Every value returned here is midnight UTC
// of the day it names, so two ranges computed from the same date compare
// equal with == regardless of the server's local zone.
package week

import (
	"errors"
	"fmt"
	"time"
)

// ISOLayout is the yyyy-mm-dd layout used for every date crossing the API.
const ISOLayout = "2006-01-02"

var ErrInvalidDate = errors.New("invalid date, use YYYY-MM-DD")

// Range is a Monday-to-Sunday week. Start and End are both midnight UTC.
type Range struct {
	Start time.Time
	End   time.Time
}

// ParseISO parses a strict yyyy-mm-dd string into midnight UTC of that day.
func ParseISO(s string) (time.Time, error) {
	if len(s) != len(ISOLayout) {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	t, err := time.Parse(ISOLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return t, nil
}

// ISO formats the calendar date of t as yyyy-mm-dd.
func ISO(t time.Time) string {
	return t.Format(ISOLayout)
}

// Date drops the clock and zone of t, keeping the calendar date as seen in
// t's own location.
func Date(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Bounds returns the week containing the calendar date of t.
// Sunday (weekday 0) belongs to the week that started six days earlier.
func Bounds(t time.Time) Range {
	day := Date(t)
	back := (int(day.Weekday()) + 6) % 7
	start := day.AddDate(0, 0, -back)
	return Range{Start: start, End: start.AddDate(0, 0, 6)}
}

// BoundsISO is Bounds for a yyyy-mm-dd string.
func BoundsISO(s string) (Range, error) {
	t, err := ParseISO(s)
	if err != nil {
		return Range{}, err
	}
	return Bounds(t), nil
}

// KeyISO returns the Monday of the week containing s, as yyyy-mm-dd.
func KeyISO(s string) (string, error) {
	r, err := BoundsISO(s)
	if err != nil {
		return "", err
	}
	return ISO(r.Start), nil
}

// Current returns the week that contains "today" in loc.
func Current(now time.Time, loc *time.Location) Range {
	if loc == nil {
		loc = time.UTC
	}
	return Bounds(now.In(loc))
}

// EndOfDay is the last representable instant of the Sunday.
func (r Range) EndOfDay() time.Time {
	return r.End.AddDate(0, 0, 1).Add(-time.Nanosecond)
}

// Contains reports whether the calendar date of t falls inside the week.
func (r Range) Contains(t time.Time) bool {
	d := Date(t)
	return !d.Before(r.Start) && !d.After(r.End)
}

// StartISO and EndISO are shorthands used by templates and JSON views.
func (r Range) StartISO() string { return ISO(r.Start) }
func (r Range) EndISO() string   { return ISO(r.End) }

// FormatRange renders "3 Nov – 9 Nov", adding the end year when the week
// spans two calendar years ("29 Dec – 4 Jan, 2026").
func FormatRange(r Range) string {
	out := fmt.Sprintf("%d %s – %d %s",
		r.Start.Day(), r.Start.Format("Jan"),
		r.End.Day(), r.End.Format("Jan"))
	if r.Start.Year() != r.End.Year() {
		out += fmt.Sprintf(", %d", r.End.Year())
	}
	return out
}

// FormatRangeISO is FormatRange for a yyyy-mm-dd string; an unparsable
// input yields "".
func FormatRangeISO(s string) string {
	r, err := BoundsISO(s)
	if err != nil {
		return ""
	}
	return FormatRange(r)
}
