package compliance

import (
	"strings"
	"time"
)

const DateLayout = "2006-01-02"

// ParseDate accepts a calendar date (2006-01-02) or an RFC3339 timestamp and
// returns UTC midnight of that calendar day. field names the input in the error.
func ParseDate(field string, raw string) (time.Time, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return time.Time{}, &InvalidDateError{Field: field, Value: raw}
	}

	if parsed, err := time.Parse(DateLayout, value); err == nil {
		return parsed, nil
	}
	if parsed, err := time.Parse(time.RFC3339, value); err == nil {
		return DateOnly(parsed), nil
	}
	return time.Time{}, &InvalidDateError{Field: field, Value: raw}
}

// ParseOptionalDate treats nil and blank input as absent.
func ParseOptionalDate(field string, raw *string) (*time.Time, error) {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return nil, nil
	}
	parsed, err := ParseDate(field, *raw)
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}

// DateOnly drops the clock part, keeping the calendar day as seen in t's location.
func DateOnly(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func FormatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(DateLayout)
}

// DaysBetween counts calendar days from from to to; negative when to is earlier.
func DaysBetween(from time.Time, to time.Time) int {
	return int((DateOnly(to).Unix() - DateOnly(from).Unix()) / 86400)
}

// AddMonths adds calendar months, clamping the day to the last day of the
// target month (Jan 31 + 1 month = Feb 28/29).
func AddMonths(t time.Time, months int) time.Time {
	year, month, day := t.Date()
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC).AddDate(0, months, 0)
	last := daysIn(first.Year(), first.Month())
	if day > last {
		day = last
	}
	return time.Date(first.Year(), first.Month(), day, 0, 0, 0, 0, time.UTC)
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
