package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestParsePresetStatus(t *testing.T) {
	tests := []struct {
		raw        string
		want       TicketStatus
		recognized bool
	}{
		{"valid", StatusValid, true},
		{"VALIDO", StatusValid, true},
		{"  Confirmado ", StatusValid, true},
		{"ok", StatusValid, true},
		{"invalid", StatusInvalid, true},
		{"rejeitado", StatusInvalid, true},
		{"NEGADO", StatusInvalid, true},
		{"", StatusUnknown, false},
		{"pending", StatusUnknown, false},
		{"maybe", StatusUnknown, false},
	}

	for _, tt := range tests {
		got, recognized := ParsePresetStatus(tt.raw)
		if got != tt.want || recognized != tt.recognized {
			t.Errorf("ParsePresetStatus(%q) = (%s, %v), want (%s, %v)",
				tt.raw, got, recognized, tt.want, tt.recognized)
		}
	}
}

func TestIsWellFormedAccountID(t *testing.T) {
	tests := []struct {
		id   string
		want bool
	}{
		{"1234567890", true},
		{" 1234567890 ", true},
		{"123456789", false},
		{"12345678901", false},
		{"12345abcde", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := IsWellFormedAccountID(tt.id); got != tt.want {
			t.Errorf("IsWellFormedAccountID(%q) = %v, want %v", tt.id, got, tt.want)
		}
	}
}

func TestCompositeKey(t *testing.T) {
	key := NewCompositeKey(" web ", " 1234567890 ")
	if key.Platform != "web" || key.AccountID != "1234567890" {
		t.Errorf("key not trimmed: %+v", key)
	}
	if key.String() != "web:1234567890" {
		t.Errorf("key string = %s, want web:1234567890", key.String())
	}

	// Same account on different platforms yields distinct keys.
	other := NewCompositeKey("android", "1234567890")
	if key == other {
		t.Error("keys on different platforms must differ")
	}
}

func TestRechargeEventValidate(t *testing.T) {
	at := time.Date(2024, time.March, 4, 10, 0, 0, 0, time.UTC)

	valid := NewRechargeEvent("web", "1234567890", "RC1", at, decimal.NewFromInt(10))
	if err := valid.Validate(); err != nil {
		t.Errorf("valid recharge rejected: %v", err)
	}

	tests := []struct {
		name     string
		recharge *RechargeEvent
	}{
		{"empty account", NewRechargeEvent("web", "", "RC1", at, decimal.NewFromInt(10))},
		{"short account", NewRechargeEvent("web", "12345", "RC1", at, decimal.NewFromInt(10))},
		{"empty recharge id", NewRechargeEvent("web", "1234567890", "", at, decimal.NewFromInt(10))},
		{"zero time", NewRechargeEvent("web", "1234567890", "RC1", time.Time{}, decimal.NewFromInt(10))},
		{"zero amount", NewRechargeEvent("web", "1234567890", "RC1", at, decimal.Zero)},
		{"negative amount", NewRechargeEvent("web", "1234567890", "RC1", at, decimal.NewFromInt(-5))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.recharge.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestTicketEntryValidate(t *testing.T) {
	at := time.Date(2024, time.March, 4, 10, 0, 0, 0, time.UTC)

	valid := NewTicketEntry("web", "1234567890", "TK1", at, "2024-03-04")
	if err := valid.Validate(); err != nil {
		t.Errorf("valid ticket rejected: %v", err)
	}

	noNumber := NewTicketEntry("web", "1234567890", "", at, "2024-03-04")
	if err := noNumber.Validate(); err == nil {
		t.Error("empty ticket number should be rejected")
	}

	badDate := NewTicketEntry("web", "1234567890", "TK1", at, "04/03/2024")
	if err := badDate.Validate(); err == nil {
		t.Error("non-canonical draw date should be rejected")
	}
}

func TestTicketEntryHasAccountID(t *testing.T) {
	at := time.Date(2024, time.March, 4, 10, 0, 0, 0, time.UTC)

	if !NewTicketEntry("web", "1234567890", "TK1", at, "").HasAccountID() {
		t.Error("expected HasAccountID true")
	}
	if NewTicketEntry("web", "   ", "TK1", at, "").HasAccountID() {
		t.Error("whitespace account id should count as missing")
	}
}

func TestRechargeEventJSONRoundTrip(t *testing.T) {
	at := time.Date(2024, time.March, 4, 10, 30, 0, 0, time.UTC)
	amount, _ := decimal.NewFromString("25.50")
	original := NewRechargeEvent("web", "1234567890", "RC1", at, amount)

	data, err := json.Marshal(original)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var decoded RechargeEvent
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}

	if !original.Equals(&decoded) {
		t.Errorf("round trip changed the event: %s != %s", original, &decoded)
	}
}

func TestSnapshotRecharge(t *testing.T) {
	at := time.Date(2024, time.March, 4, 10, 0, 0, 0, time.UTC)
	recharge := NewRechargeEvent("web", "1234567890", "RC1", at, decimal.NewFromInt(10))

	snapshot := SnapshotRecharge(recharge, true, false)
	if !snapshot.IsDay2 || snapshot.IsLateCutoff {
		t.Errorf("annotations = (day2=%v, late=%v), want (true, false)", snapshot.IsDay2, snapshot.IsLateCutoff)
	}
	if snapshot.Identity() != "web:1234567890:RC1" {
		t.Errorf("identity = %s", snapshot.Identity())
	}
}

func TestNewMatchedResult(t *testing.T) {
	at := time.Date(2024, time.March, 4, 10, 0, 0, 0, time.UTC)
	ticket := NewTicketEntry("web", "1234567890", "TK1", at.Add(time.Hour), "2024-03-04")
	recharge := NewRechargeEvent("web", "1234567890", "RC1", at, decimal.NewFromInt(10))

	result := NewMatchedResult(ticket, SnapshotRecharge(recharge, true, false), "matched")
	if result.Status != StatusValid {
		t.Errorf("status = %s, want VALID", result.Status)
	}
	if !result.IsDay2 {
		t.Error("result should inherit the day2 annotation")
	}
	if result.MatchedRecharge == nil {
		t.Error("result should carry the snapshot")
	}
}
