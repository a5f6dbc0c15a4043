// Package localtime converts raw localized date-time strings to absolute
// instants and instants back to local calendar-date strings.
//
// All recharge and ticket timestamps originate from spreadsheet exports in
// Brazilian local time. This package is the single authority for what
// "local day" means: every calendar-date decision in the reconciliation
// core goes through the business location defined here.
package localtime

import (
	"fmt"
	"strings"
	"time"
)

// BusinessZone is the IANA name of the business timezone.
const BusinessZone = "America/Sao_Paulo"

// DateFormat is the canonical local calendar-date layout.
const DateFormat = "2006-01-02"

var businessLocation = mustLoadLocation(BusinessZone)

func mustLoadLocation(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		// The tz database ships with the Go toolchain; failure here means a
		// broken build environment, not bad input.
		panic(fmt.Sprintf("localtime: cannot load location %s: %v", name, err))
	}
	return loc
}

// Location returns the business timezone location.
func Location() *time.Location {
	return businessLocation
}

// layouts accepted for raw spreadsheet timestamps, tried in order.
var layouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"02/01/2006 15:04:05", // Brazilian day-first convention
	"02/01/2006 15:04",
	"02/01/2006",
	"2006-01-02",
}

// Parse converts a raw localized date-time string to an absolute instant.
// Layouts without a zone offset are interpreted in the business timezone.
func Parse(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("time string cannot be empty")
	}

	var lastErr error
	for _, layout := range layouts {
		if t, err := time.ParseInLocation(layout, s, businessLocation); err == nil {
			return t, nil
		} else {
			lastErr = err
		}
	}

	return time.Time{}, fmt.Errorf("unable to parse time '%s': %w", s, lastErr)
}

// DateString converts an instant back to its YYYY-MM-DD local calendar-date
// string in the business timezone.
func DateString(t time.Time) string {
	return t.In(businessLocation).Format(DateFormat)
}

// ParseDate parses a bare YYYY-MM-DD calendar date as local midnight.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	t, err := time.ParseInLocation(DateFormat, s, businessLocation)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid calendar date '%s': %w", s, err)
	}
	return t, nil
}

// Midnight truncates an instant to local midnight of its calendar day.
func Midnight(t time.Time) time.Time {
	local := t.In(businessLocation)
	year, month, day := local.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, businessLocation)
}

// SameDay reports whether two instants fall on the same local calendar day.
func SameDay(a, b time.Time) bool {
	return DateString(a) == DateString(b)
}
