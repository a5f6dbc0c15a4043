package calendar

import (
	"testing"
	"time"

	"ticket-reconciliation-service/pkg/localtime"
)

func localInstant(year int, month time.Month, day, hour, minute int) time.Time {
	return time.Date(year, month, day, hour, minute, 0, 0, localtime.Location())
}

func TestComputeWindowRegularAfternoon(t *testing.T) {
	// Monday 14:00: day1 is the same Monday, day2 the Tuesday after.
	window, err := ComputeWindow(localInstant(2024, time.March, 4, 14, 0))
	if err != nil {
		t.Fatalf("ComputeWindow returned error: %v", err)
	}
	if window == nil {
		t.Fatal("expected a window, got nil")
	}

	if window.IsLateCutoff {
		t.Error("14:00 recharge should not be late-cutoff")
	}
	if got := window.Day1String(); got != "2024-03-04" {
		t.Errorf("day1 = %s, want 2024-03-04", got)
	}
	if got := window.Day2String(); got != "2024-03-05" {
		t.Errorf("day2 = %s, want 2024-03-05", got)
	}

	wantExpiry := localInstant(2024, time.March, 5, 20, 0)
	if !window.ExpiresAt.Equal(wantExpiry) {
		t.Errorf("expiresAt = %s, want %s", window.ExpiresAt, wantExpiry)
	}
}

func TestComputeWindowLateSaturday(t *testing.T) {
	// Saturday 21:00 is late-cutoff; the raw day1 lands on Sunday and must
	// skip to Monday, pushing day2 to Tuesday.
	window, err := ComputeWindow(localInstant(2024, time.March, 9, 21, 0))
	if err != nil {
		t.Fatalf("ComputeWindow returned error: %v", err)
	}

	if !window.IsLateCutoff {
		t.Error("21:00 recharge should be late-cutoff")
	}
	if got := window.Day1String(); got != "2024-03-11" {
		t.Errorf("day1 = %s, want 2024-03-11", got)
	}
	if got := window.Day2String(); got != "2024-03-12" {
		t.Errorf("day2 = %s, want 2024-03-12", got)
	}

	wantExpiry := localInstant(2024, time.March, 12, 20, 0)
	if !window.ExpiresAt.Equal(wantExpiry) {
		t.Errorf("expiresAt = %s, want %s", window.ExpiresAt, wantExpiry)
	}
}

func TestComputeWindowEarlyCutoffExpiryDay(t *testing.T) {
	// Monday December 23, 2024, 14:00: day2 is Christmas Eve, so the window
	// expires at 16:00 rather than 20:00.
	window, err := ComputeWindow(localInstant(2024, time.December, 23, 14, 0))
	if err != nil {
		t.Fatalf("ComputeWindow returned error: %v", err)
	}

	if got := window.Day1String(); got != "2024-12-23" {
		t.Errorf("day1 = %s, want 2024-12-23", got)
	}
	if got := window.Day2String(); got != "2024-12-24" {
		t.Errorf("day2 = %s, want 2024-12-24", got)
	}

	wantExpiry := localInstant(2024, time.December, 24, 16, 0)
	if !window.ExpiresAt.Equal(wantExpiry) {
		t.Errorf("expiresAt = %s, want %s", window.ExpiresAt, wantExpiry)
	}
}

func TestComputeWindowLateCutoffClassificationIsFixed(t *testing.T) {
	// 20:00 exactly on December 24 is still classified late against the
	// fixed 20:00 boundary even though the 24th's own cutoff hour is 16.
	window, err := ComputeWindow(localInstant(2024, time.December, 24, 20, 0))
	if err != nil {
		t.Fatalf("ComputeWindow returned error: %v", err)
	}

	if !window.IsLateCutoff {
		t.Error("20:00 on December 24 should be classified late-cutoff")
	}

	// day1 rolls to the 25th and skips the holiday to the 26th.
	if got := window.Day1String(); got != "2024-12-26" {
		t.Errorf("day1 = %s, want 2024-12-26", got)
	}
	if got := window.Day2String(); got != "2024-12-27" {
		t.Errorf("day2 = %s, want 2024-12-27", got)
	}
}

func TestComputeWindowEarlyEveningBeforeCutoff(t *testing.T) {
	// 17:00 on December 24 is before the fixed 20:00 boundary; the recharge
	// keeps the 24th as day1 and day2 skips Christmas.
	window, err := ComputeWindow(localInstant(2024, time.December, 24, 17, 0))
	if err != nil {
		t.Fatalf("ComputeWindow returned error: %v", err)
	}

	if window.IsLateCutoff {
		t.Error("17:00 recharge should not be late-cutoff")
	}
	if got := window.Day1String(); got != "2024-12-24" {
		t.Errorf("day1 = %s, want 2024-12-24", got)
	}
	if got := window.Day2String(); got != "2024-12-26" {
		t.Errorf("day2 = %s, want 2024-12-26", got)
	}
}

func TestComputeWindowZeroInstant(t *testing.T) {
	window, err := ComputeWindow(time.Time{})
	if err != nil {
		t.Fatalf("ComputeWindow returned error: %v", err)
	}
	if window != nil {
		t.Errorf("expected nil window for zero instant, got %v", window)
	}
}

func TestMatchesDrawDate(t *testing.T) {
	window, err := ComputeWindow(localInstant(2024, time.March, 4, 14, 0))
	if err != nil {
		t.Fatalf("ComputeWindow returned error: %v", err)
	}

	matches, isDay2 := window.MatchesDrawDate("2024-03-04")
	if !matches || isDay2 {
		t.Errorf("day1 match = (%v, %v), want (true, false)", matches, isDay2)
	}

	matches, isDay2 = window.MatchesDrawDate("2024-03-05")
	if !matches || !isDay2 {
		t.Errorf("day2 match = (%v, %v), want (true, true)", matches, isDay2)
	}

	matches, _ = window.MatchesDrawDate("2024-03-06")
	if matches {
		t.Error("unrelated date should not match")
	}

	matches, _ = window.MatchesDrawDate("")
	if matches {
		t.Error("empty date should not match")
	}
}

func TestIsExpiredAt(t *testing.T) {
	window, err := ComputeWindow(localInstant(2024, time.March, 4, 14, 0))
	if err != nil {
		t.Fatalf("ComputeWindow returned error: %v", err)
	}

	before := localInstant(2024, time.March, 5, 19, 59)
	if window.IsExpiredAt(before) {
		t.Error("one minute before expiry should not be expired")
	}

	// Registration exactly at the expiry instant is already expired.
	if !window.IsExpiredAt(window.ExpiresAt) {
		t.Error("the expiry instant itself should be expired")
	}

	after := localInstant(2024, time.March, 5, 20, 1)
	if !window.IsExpiredAt(after) {
		t.Error("after expiry should be expired")
	}
}
