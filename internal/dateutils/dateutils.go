// Package dateutils provides the date layouts and parsers used by the source
// adapters. Parsed dates are always calendar days in UTC.
package dateutils

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// Date layouts found in supplier exports
const (
	DateLayoutISO      = "2006-01-02"
	DateLayoutCompact  = "20060102"
	DateLayoutDMY      = "02/01/2006"
	DateLayoutDMYShort = "2/1/2006"
	DateLayoutFull     = "2006-01-02 15:04:05"
	DateLayoutMinutes  = "2006-01-02 15:04"
	DateLayoutISOT     = "2006-01-02T15:04:05"
)

// dateTimeFormats are accepted wherever an ISO date or date-time may appear.
var dateTimeFormats = []string{
	DateLayoutISO,
	DateLayoutFull,
	DateLayoutMinutes,
	DateLayoutISOT,
	time.RFC3339,
	time.RFC3339Nano,
	"2006-01-02 15:04:05Z07:00",
}

var whitespace = regexp.MustCompile(`\s+`)

// CleanDateString trims and collapses whitespace.
func CleanDateString(dateStr string) string {
	return whitespace.ReplaceAllString(strings.TrimSpace(dateStr), " ")
}

// ParseISODate parses a strict YYYY-MM-DD date.
func ParseISODate(dateStr string) (time.Time, error) {
	return parseWith(dateStr, DateLayoutISO)
}

// ParseISODateTime parses an ISO date or date-time and keeps the calendar day
// as written, whatever the offset.
func ParseISODateTime(dateStr string) (time.Time, error) {
	return parseWith(dateStr, dateTimeFormats...)
}

// ParseDayMonthYear parses DD/MM/YYYY, single-digit day and month included.
func ParseDayMonthYear(dateStr string) (time.Time, error) {
	return parseWith(dateStr, DateLayoutDMY, DateLayoutDMYShort)
}

func parseWith(dateStr string, layouts ...string) (time.Time, error) {
	clean := CleanDateString(dateStr)
	if clean == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, clean); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
		}
	}
	return time.Time{}, fmt.Errorf("unable to parse date: %s", dateStr)
}

// ToISODate formats a time.Time value as an ISO date (YYYY-MM-DD)
func ToISODate(date time.Time) string {
	return date.Format(DateLayoutISO)
}

// ToCompact formats date as YYYYMMDD, the form embedded in invoice numbers.
func ToCompact(date time.Time) string {
	return date.Format(DateLayoutCompact)
}
