package calendar

import (
	"fmt"
	"time"

	"ticket-reconciliation-service/pkg/localtime"
)

// EligibilityWindow is the pair of calendar days on which a ticket may
// legally claim a recharge, plus the instant the claim right expires.
// Derived per recharge and never stored long-term.
type EligibilityWindow struct {
	Day1         time.Time `json:"day1"`
	Day2         time.Time `json:"day2"`
	ExpiresAt    time.Time `json:"expiresAt"`
	IsLateCutoff bool      `json:"isLateCutoff"`
}

// ComputeWindow derives the eligibility window from one recharge instant.
// A zero instant yields no window. Errors are fatal calendar invariant
// violations from the bounded draw-date scan.
//
// The late-cutoff classification always uses the fixed 20:00 boundary even
// on early-cutoff days; CutoffHour only governs the window's expiry hour.
// The asymmetry is intentional: a 20:00 recharge on December 24 still
// belongs to the 24th, but its window expires at 16:00 on the expiry day.
func ComputeWindow(rechargeAt time.Time) (*EligibilityWindow, error) {
	if rechargeAt.IsZero() {
		return nil, nil
	}

	local := rechargeAt.In(localtime.Location())
	isLateCutoff := local.Hour() >= StandardCutoffHour

	rechargeDate := localtime.Midnight(rechargeAt)
	day1Raw := rechargeDate
	if isLateCutoff {
		day1Raw = rechargeDate.AddDate(0, 0, 1)
	}

	day1, err := NextValidDrawDate(day1Raw)
	if err != nil {
		return nil, err
	}

	// day2 is resolved relative to day1, not the raw candidate, so
	// consecutive holiday skips compound correctly.
	day2, err := NextValidDrawDate(day1.AddDate(0, 0, 1))
	if err != nil {
		return nil, err
	}

	expiresAt := time.Date(
		day2.Year(), day2.Month(), day2.Day(),
		CutoffHour(day2), 0, 0, 0,
		localtime.Location(),
	)

	return &EligibilityWindow{
		Day1:         day1,
		Day2:         day2,
		ExpiresAt:    expiresAt,
		IsLateCutoff: isLateCutoff,
	}, nil
}

// Day1String returns day1 as a YYYY-MM-DD local calendar-date string.
func (w *EligibilityWindow) Day1String() string {
	return localtime.DateString(w.Day1)
}

// Day2String returns day2 as a YYYY-MM-DD local calendar-date string.
func (w *EligibilityWindow) Day2String() string {
	return localtime.DateString(w.Day2)
}

// MatchesDrawDate reports whether a requested draw date (YYYY-MM-DD) equals
// day1 or day2. The boolean result reports a day2 match.
func (w *EligibilityWindow) MatchesDrawDate(drawDate string) (matches bool, isDay2 bool) {
	switch drawDate {
	case w.Day1String():
		return true, false
	case w.Day2String():
		return true, true
	default:
		return false, false
	}
}

// IsExpiredAt reports whether the claim right has expired at the given
// instant. Registration exactly at the expiry instant is already expired.
func (w *EligibilityWindow) IsExpiredAt(t time.Time) bool {
	return !t.Before(w.ExpiresAt)
}

// String returns a short representation of the window.
func (w *EligibilityWindow) String() string {
	return fmt.Sprintf("Window{Day1: %s, Day2: %s, ExpiresAt: %s, Late: %t}",
		w.Day1String(), w.Day2String(), w.ExpiresAt.Format(time.RFC3339), w.IsLateCutoff)
}
