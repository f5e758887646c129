package utils

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ParseDate accepts a calendar date (2006-01-02) or an RFC3339 timestamp.
// Calendar dates are interpreted at midnight in loc.
func ParseDate(value string, loc *time.Location) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, fmt.Errorf("date is empty")
	}
	if t, err := time.ParseInLocation(DateLayout, value, loc); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q", value)
	}
	return t, nil
}

// ParseUTCOffset turns "+05:30" style offsets into a fixed zone.
func ParseUTCOffset(offset string) (*time.Location, error) {
	offset = strings.TrimSpace(offset)
	if offset == "" || offset == "Z" {
		return time.UTC, nil
	}
	sign := 1
	switch offset[0] {
	case '+':
	case '-':
		sign = -1
	default:
		return nil, fmt.Errorf("offset %q must start with + or -", offset)
	}
	hh, mm, ok := strings.Cut(offset[1:], ":")
	if !ok {
		return nil, fmt.Errorf("offset %q must look like +hh:mm", offset)
	}
	hours, err := strconv.Atoi(hh)
	if err != nil || hours > 14 {
		return nil, fmt.Errorf("invalid hours in offset %q", offset)
	}
	minutes, err := strconv.Atoi(mm)
	if err != nil || minutes > 59 {
		return nil, fmt.Errorf("invalid minutes in offset %q", offset)
	}
	return time.FixedZone("UTC"+offset, sign*(hours*3600+minutes*60)), nil
}

// CalendarDaysBetween counts UTC calendar days from start to end.
func CalendarDaysBetween(start, end time.Time) int {
	s := start.UTC()
	e := end.UTC()
	sd := time.Date(s.Year(), s.Month(), s.Day(), 0, 0, 0, 0, time.UTC)
	ed := time.Date(e.Year(), e.Month(), e.Day(), 0, 0, 0, 0, time.UTC)
	return int(ed.Sub(sd).Hours() / 24)
}

// EndOfDay returns the last instant of t's calendar day in loc.
func EndOfDay(t time.Time, loc *time.Location) time.Time {
	local := t.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 23, 59, 59, int(time.Second-time.Nanosecond), loc)
}
