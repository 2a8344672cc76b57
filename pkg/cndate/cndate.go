// Package cndate formats and parses Chinese-style calendar dates
// (e.g. 2025年11月02日) as they appear in transcript titles and URLs.
package cndate

import (
	"errors"
	"fmt"
	"regexp"
	"time"
)

// ErrNoDate indicates no Chinese date string was found in the input.
var ErrNoDate = errors.New("no Chinese date found")

// datePattern accepts 1- or 2-digit month and day.
var datePattern = regexp.MustCompile(`(\d{4})年(\d{1,2})月(\d{1,2})日`)

// Format renders a date as YYYY年MM月DD日 with zero-padded month and day.
func Format(t time.Time) string {
	return fmt.Sprintf("%04d年%02d月%02d日", t.Year(), t.Month(), t.Day())
}

// FormatMonth renders a year-month group heading as YYYY年MM月.
func FormatMonth(t time.Time) string {
	return fmt.Sprintf("%04d年%02d月", t.Year(), t.Month())
}

// Parse extracts the first Chinese date found in s, truncated to midnight
// local time. Returns ErrNoDate if s contains none, or a wrapped error for
// an impossible calendar date.
func Parse(s string) (time.Time, error) {
	match := datePattern.FindStringSubmatch(s)
	if match == nil {
		return time.Time{}, ErrNoDate
	}

	var year, month, day int

	fmt.Sscanf(match[1], "%d", &year)
	fmt.Sscanf(match[2], "%d", &month)
	fmt.Sscanf(match[3], "%d", &day)

	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.Local)
	// time.Date normalizes overflow (e.g. 13月); reject anything that moved.
	if t.Year() != year || int(t.Month()) != month || t.Day() != day {
		return time.Time{}, fmt.Errorf("invalid date %s: %w", match[0], ErrNoDate)
	}

	return t, nil
}

// Contains reports whether s contains a Chinese date string.
func Contains(s string) bool {
	return datePattern.MatchString(s)
}
