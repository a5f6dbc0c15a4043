// Package calendar implements the lottery draw calendar and the eligibility
// window derivation built on top of it.
//
// The calendar is fixed by the business rules, not by configuration: draws
// happen every day except Sundays, December 25 and January 1, and the
// submission cutoff is 20:00 local time except on December 24 and
// December 31, when it moves up to 16:00. All calendar-day decisions use
// the business timezone from pkg/localtime.
package calendar

import (
	"time"

	"ticket-reconciliation-service/pkg/errors"
	"ticket-reconciliation-service/pkg/localtime"
)

const (
	// StandardCutoffHour is the regular local hour after which a recharge
	// counts as late for its own calendar day.
	StandardCutoffHour = 20

	// EarlyCutoffHour applies on December 24 and December 31.
	EarlyCutoffHour = 16

	// maxDrawDateScan bounds the forward search for a draw-eligible day.
	// The holiday set guarantees a valid day well within two weeks; running
	// off this bound means the calendar itself is corrupted.
	maxDrawDateScan = 14
)

// IsNoDrawDay reports whether no lottery draw occurs on the given date:
// Sundays, December 25 and January 1, in any year.
func IsNoDrawDay(date time.Time) bool {
	local := date.In(localtime.Location())

	if local.Weekday() == time.Sunday {
		return true
	}

	month, day := local.Month(), local.Day()
	if month == time.December && day == 25 {
		return true
	}
	if month == time.January && day == 1 {
		return true
	}

	return false
}

// IsEarlyCutoffDay reports whether the date uses the 16:00 cutoff:
// December 24 and December 31.
func IsEarlyCutoffDay(date time.Time) bool {
	local := date.In(localtime.Location())
	month, day := local.Month(), local.Day()
	return month == time.December && (day == 24 || day == 31)
}

// CutoffHour returns the local hour after which a recharge is treated as
// late for the given calendar day.
func CutoffHour(date time.Time) int {
	if IsEarlyCutoffDay(date) {
		return EarlyCutoffHour
	}
	return StandardCutoffHour
}

// NextValidDrawDate scans forward day by day, including fromDate itself,
// and returns local midnight of the first draw-eligible date. The scan is
// bounded; exceeding the bound is a fatal calendar invariant violation, not
// a recoverable condition.
func NextValidDrawDate(fromDate time.Time) (time.Time, error) {
	candidate := localtime.Midnight(fromDate)

	for i := 0; i < maxDrawDateScan; i++ {
		if !IsNoDrawDay(candidate) {
			return candidate, nil
		}
		candidate = candidate.AddDate(0, 0, 1)
	}

	return time.Time{}, errors.CalendarError(
		errors.CodeDrawDateScanExceeded,
		"no draw-eligible date within 14 days of "+localtime.DateString(fromDate),
	).WithContext("from_date", localtime.DateString(fromDate))
}
