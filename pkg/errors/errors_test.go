package errors

import (
	"fmt"
	"strings"
	"testing"
)

func TestServiceErrorError(t *testing.T) {
	plain := New(CategoryGateway, CodeFetchFailed, "fetch failed")
	if plain.Error() != "fetch failed" {
		t.Errorf("Error() = %q", plain.Error())
	}

	wrapped := Wrap(fmt.Errorf("connection refused"), CategoryGateway, CodeFetchFailed, "fetch failed")
	if !strings.Contains(wrapped.Error(), "connection refused") {
		t.Errorf("wrapped Error() should include the cause, got %q", wrapped.Error())
	}
	if wrapped.Unwrap() == nil {
		t.Error("Unwrap should return the cause")
	}
}

func TestWrapNil(t *testing.T) {
	if Wrap(nil, CategoryGateway, CodeFetchFailed, "whatever") != nil {
		t.Error("wrapping nil should return nil")
	}
}

func TestIsFatal(t *testing.T) {
	tests := []struct {
		category Category
		want     bool
	}{
		{CategoryCalendar, true},
		{CategoryInternal, true},
		{CategoryGateway, false},
		{CategoryConfiguration, false},
		{CategoryValidation, false},
	}

	for _, tt := range tests {
		err := New(tt.category, CodeUnexpected, "test")
		if got := err.IsFatal(); got != tt.want {
			t.Errorf("IsFatal(%s) = %v, want %v", tt.category, got, tt.want)
		}
	}
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		category Category
		want     int
	}{
		{CategoryGateway, 2},
		{CategoryValidation, 3},
		{CategoryConfiguration, 4},
		{CategoryCalendar, 5},
		{CategoryInternal, 5},
	}

	for _, tt := range tests {
		err := New(tt.category, CodeUnexpected, "test")
		if got := err.ExitCode(); got != tt.want {
			t.Errorf("ExitCode(%s) = %d, want %d", tt.category, got, tt.want)
		}
	}
}

func TestCalendarError(t *testing.T) {
	err := CalendarError(CodeDrawDateScanExceeded, "no draw-eligible date within 14 days")

	if err.Category != CategoryCalendar {
		t.Errorf("category = %s, want calendar", err.Category)
	}
	if !err.IsFatal() {
		t.Error("calendar errors must be fatal")
	}
	if !IsCalendarInvariant(err) {
		t.Error("IsCalendarInvariant should report true")
	}
	if !strings.Contains(err.Error(), "calendar invariant violated") {
		t.Errorf("message = %q", err.Error())
	}
}

func TestGatewayError(t *testing.T) {
	cause := fmt.Errorf("open failed")
	err := GatewayError(CodeFileNotFound, "tickets.csv", cause)

	if err.Category != CategoryGateway {
		t.Errorf("category = %s, want gateway", err.Category)
	}
	if err.Context["source"] != "tickets.csv" {
		t.Errorf("context source = %v", err.Context["source"])
	}
	if !strings.Contains(err.Error(), "tickets.csv") {
		t.Errorf("message should name the source, got %q", err.Error())
	}
}

func TestAsServiceError(t *testing.T) {
	base := GatewayError(CodeFetchFailed, "recharges.csv", nil)
	wrapped := fmt.Errorf("loading collections: %w", base)

	extracted, ok := AsServiceError(wrapped)
	if !ok {
		t.Fatal("AsServiceError should find the ServiceError through the chain")
	}
	if extracted.Code != CodeFetchFailed {
		t.Errorf("code = %s", extracted.Code)
	}

	if _, ok := AsServiceError(fmt.Errorf("plain")); ok {
		t.Error("plain errors should not be extracted")
	}
	if IsCalendarInvariant(fmt.Errorf("plain")) {
		t.Error("plain errors are not calendar invariants")
	}
}

func TestWithContext(t *testing.T) {
	err := New(CategoryValidation, CodeInvalidValue, "bad field").
		WithContext("field", "draw_date").
		WithContext("value", "not-a-date")

	if err.Context["field"] != "draw_date" || err.Context["value"] != "not-a-date" {
		t.Errorf("context = %v", err.Context)
	}
}

func TestSummary(t *testing.T) {
	errs := []*ServiceError{
		GatewayError(CodeFetchFailed, "a.csv", nil),
		GatewayError(CodeFileNotFound, "b.csv", nil),
		New(CategoryConfiguration, CodeInvalidConfig, "bad config"),
	}

	summary := NewSummary(errs)
	if summary.Total != 3 {
		t.Errorf("total = %d, want 3", summary.Total)
	}
	if summary.ByCategory[CategoryGateway] != 2 {
		t.Errorf("gateway count = %d, want 2", summary.ByCategory[CategoryGateway])
	}
	if summary.ExitCode() != 4 {
		t.Errorf("exit code = %d, want 4 (highest priority)", summary.ExitCode())
	}

	empty := NewSummary(nil)
	if empty.ExitCode() != 0 {
		t.Errorf("empty summary exit code = %d, want 0", empty.ExitCode())
	}
	if empty.Error() != "no errors" {
		t.Errorf("empty summary message = %q", empty.Error())
	}
}
