package normalize

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ISOLayout is the canonical local timestamp: no zone, second precision.
const ISOLayout = "2006-01-02T15:04:05"

var (
	ErrInvalidDate = errors.New("invalid date")
	ErrInvalidTime = errors.New("invalid time")
)

var (
	dateLayouts = []string{"02/01/2006", "02-01-2006", "2/1/2006", "2-1-2006", time.DateOnly}
	timeLayouts = []string{"15:04:05", "15:04"}
)

// ParseLocalDateTime parses a DD/MM/YYYY or DD-MM-YYYY date plus an optional
// HH:MM[:SS] time. Statement times carry no zone, so the result is a wall-clock
// value in UTC.
func ParseLocalDateTime(datePart, timePart string) (time.Time, error) {
	d, err := parseDate(datePart)
	if err != nil {
		return time.Time{}, err
	}

	timePart = strings.TrimSpace(timePart)
	if timePart == "" {
		return d, nil
	}

	for _, layout := range timeLayouts {
		t, err := time.Parse(layout, timePart)
		if err == nil {
			return d.Add(time.Duration(t.Hour())*time.Hour +
				time.Duration(t.Minute())*time.Minute +
				time.Duration(t.Second())*time.Second), nil
		}
	}

	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidTime, timePart)
}

// ToISOLocalDateTime is ParseLocalDateTime formatted as YYYY-MM-DDTHH:MM:SS.
func ToISOLocalDateTime(datePart, timePart string) (string, error) {
	t, err := ParseLocalDateTime(datePart, timePart)
	if err != nil {
		return "", err
	}

	return FormatISO(t), nil
}

// ParseCombinedDateTime parses a single "date time" field such as
// "2024-01-15 10:30:45.123" or "15/01/2024 10:30". A fractional-seconds suffix
// is dropped. When combined is empty, fallbackDate is parsed as a plain date.
func ParseCombinedDateTime(combined, fallbackDate string) (time.Time, error) {
	combined = strings.TrimSpace(combined)
	if combined == "" {
		return ParseLocalDateTime(fallbackDate, "")
	}

	combined = strings.Replace(combined, "T", " ", 1)
	if i := strings.IndexByte(combined, '.'); i > 0 && strings.Contains(combined[:i], ":") {
		combined = combined[:i]
	}

	if z := strings.IndexAny(combined, "Z+"); z > 0 {
		combined = combined[:z]
	}

	datePart, timePart, _ := strings.Cut(combined, " ")

	return ParseLocalDateTime(datePart, timePart)
}

// FormatISO renders t in ISOLayout.
func FormatISO(t time.Time) string {
	return t.Format(ISOLayout)
}

// ParseISO parses an ISOLayout timestamp, accepting a bare date.
func ParseISO(s string) (time.Time, error) {
	if t, err := time.Parse(ISOLayout, s); err == nil {
		return t, nil
	}

	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}

	return t, nil
}

func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("%w: empty", ErrInvalidDate)
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}

	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
}
