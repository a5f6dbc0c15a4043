// Package models defines the event and result types of the reconciliation
// core: recharge events, ticket entries, their composite partition key, and
// per-ticket validation results.
package models

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"

	"ticket-reconciliation-service/pkg/localtime"

	"github.com/shopspring/decimal"
)

// TicketStatus is the verdict assigned to a ticket by a validation run.
type TicketStatus string

const (
	// StatusValid marks a ticket backed by a consumed, unexpired recharge.
	StatusValid TicketStatus = "VALID"
	// StatusInvalid marks a ticket with no legitimate backing recharge.
	StatusInvalid TicketStatus = "INVALID"
	// StatusUnknown marks a ticket the run could not classify.
	StatusUnknown TicketStatus = "UNKNOWN"
)

// String returns the string representation of TicketStatus.
func (s TicketStatus) String() string {
	return string(s)
}

// IsValid checks if the status is a recognized verdict.
func (s TicketStatus) IsValid() bool {
	return s == StatusValid || s == StatusInvalid || s == StatusUnknown
}

// Pre-set verdict vocabulary. Upstream sheets occasionally carry a manual
// verdict in Portuguese or English; a recognized synonym short-circuits
// validation for that ticket.
var (
	validSynonyms = map[string]bool{
		"valid": true, "valido": true, "válido": true, "ok": true, "confirmado": true,
	}
	invalidSynonyms = map[string]bool{
		"invalid": true, "invalido": true, "inválido": true, "rejeitado": true, "negado": true,
	}
)

// ParsePresetStatus resolves a raw source status against the accepted
// synonym vocabulary. The boolean reports whether the value was recognized.
func ParsePresetStatus(raw string) (TicketStatus, bool) {
	normalized := strings.ToLower(strings.TrimSpace(raw))
	if normalized == "" {
		return StatusUnknown, false
	}
	if validSynonyms[normalized] {
		return StatusValid, true
	}
	if invalidSynonyms[normalized] {
		return StatusInvalid, true
	}
	return StatusUnknown, false
}

// accountIDPattern matches the 10-digit account identifiers issued upstream.
var accountIDPattern = regexp.MustCompile(`^\d{10}$`)

// IsWellFormedAccountID reports whether an account id has the expected
// 10-digit shape. Cross-platform collisions of loosely formatted ids are
// foreseeable, so the gateway rejects anything else before the core sees it.
func IsWellFormedAccountID(id string) bool {
	return accountIDPattern.MatchString(strings.TrimSpace(id))
}

// CompositeKey identifies the partition a ticket or recharge belongs to.
// Tickets and recharges with different platforms never match even when the
// account ids collide.
type CompositeKey struct {
	Platform  string
	AccountID string
}

// NewCompositeKey builds a partition key from platform and account id.
func NewCompositeKey(platform, accountID string) CompositeKey {
	return CompositeKey{
		Platform:  strings.TrimSpace(platform),
		AccountID: strings.TrimSpace(accountID),
	}
}

// String returns the canonical string form of the key.
func (k CompositeKey) String() string {
	return k.Platform + ":" + k.AccountID
}

// RechargeEvent represents one account top-up, immutable once constructed.
// Identity is (Platform, AccountID, RechargeID); duplicates are assumed
// unique upstream and are not deduplicated here.
type RechargeEvent struct {
	Platform   string          `json:"platform"`
	AccountID  string          `json:"accountId"`
	RechargeID string          `json:"rechargeId"`
	OccurredAt time.Time       `json:"occurredAt"`
	Amount     decimal.Decimal `json:"amount"`
}

// NewRechargeEvent creates a new RechargeEvent instance.
func NewRechargeEvent(platform, accountID, rechargeID string, occurredAt time.Time, amount decimal.Decimal) *RechargeEvent {
	return &RechargeEvent{
		Platform:   strings.TrimSpace(platform),
		AccountID:  strings.TrimSpace(accountID),
		RechargeID: strings.TrimSpace(rechargeID),
		OccurredAt: occurredAt,
		Amount:     amount,
	}
}

// Key returns the composite partition key of the recharge.
func (r *RechargeEvent) Key() CompositeKey {
	return NewCompositeKey(r.Platform, r.AccountID)
}

// Validate performs basic validation on the RechargeEvent.
func (r *RechargeEvent) Validate() error {
	if strings.TrimSpace(r.AccountID) == "" {
		return fmt.Errorf("recharge account id cannot be empty")
	}

	if !IsWellFormedAccountID(r.AccountID) {
		return fmt.Errorf("recharge account id must be 10 digits: %s", r.AccountID)
	}

	if strings.TrimSpace(r.RechargeID) == "" {
		return fmt.Errorf("recharge id cannot be empty")
	}

	if r.OccurredAt.IsZero() {
		return fmt.Errorf("recharge time cannot be zero")
	}

	if !r.Amount.IsPositive() {
		return fmt.Errorf("recharge amount must be positive, got %s", r.Amount.String())
	}

	return nil
}

// String returns a string representation of the RechargeEvent.
func (r *RechargeEvent) String() string {
	return fmt.Sprintf("Recharge{Platform: %s, Account: %s, ID: %s, Amount: %s, At: %s}",
		r.Platform, r.AccountID, r.RechargeID, r.Amount.String(), r.OccurredAt.Format(time.RFC3339))
}

// MarshalJSON implements custom JSON marshaling for RechargeEvent.
func (r *RechargeEvent) MarshalJSON() ([]byte, error) {
	type Alias RechargeEvent
	return json.Marshal(&struct {
		Amount     string `json:"amount"`
		OccurredAt string `json:"occurredAt"`
		*Alias
	}{
		Amount:     r.Amount.String(),
		OccurredAt: r.OccurredAt.Format(time.RFC3339),
		Alias:      (*Alias)(r),
	})
}

// UnmarshalJSON implements custom JSON unmarshaling for RechargeEvent.
func (r *RechargeEvent) UnmarshalJSON(data []byte) error {
	type Alias RechargeEvent
	aux := &struct {
		Amount     string `json:"amount"`
		OccurredAt string `json:"occurredAt"`
		*Alias
	}{
		Alias: (*Alias)(r),
	}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	var err error
	r.Amount, err = decimal.NewFromString(aux.Amount)
	if err != nil {
		return fmt.Errorf("invalid amount format: %w", err)
	}

	r.OccurredAt, err = time.Parse(time.RFC3339, aux.OccurredAt)
	if err != nil {
		return fmt.Errorf("invalid recharge time format: %w", err)
	}

	return nil
}

// Equals compares two RechargeEvent instances by identity and content.
func (r *RechargeEvent) Equals(other *RechargeEvent) bool {
	if other == nil {
		return false
	}

	return r.Platform == other.Platform &&
		r.AccountID == other.AccountID &&
		r.RechargeID == other.RechargeID &&
		r.Amount.Equal(other.Amount) &&
		r.OccurredAt.Equal(other.OccurredAt)
}

// TicketEntry represents one lottery-ticket registration, immutable.
// TicketNumber is the de-duplication key for skip-self checks.
type TicketEntry struct {
	Platform          string    `json:"platform"`
	AccountID         string    `json:"accountId"`
	TicketNumber      string    `json:"ticketNumber"`
	RegisteredAt      time.Time `json:"registeredAt"`
	RequestedDrawDate string    `json:"requestedDrawDate"` // YYYY-MM-DD local calendar date
	SourceStatus      string    `json:"sourceStatus,omitempty"`
}

// NewTicketEntry creates a new TicketEntry instance.
func NewTicketEntry(platform, accountID, ticketNumber string, registeredAt time.Time, requestedDrawDate string) *TicketEntry {
	return &TicketEntry{
		Platform:          strings.TrimSpace(platform),
		AccountID:         strings.TrimSpace(accountID),
		TicketNumber:      strings.TrimSpace(ticketNumber),
		RegisteredAt:      registeredAt,
		RequestedDrawDate: strings.TrimSpace(requestedDrawDate),
	}
}

// Key returns the composite partition key of the ticket.
func (t *TicketEntry) Key() CompositeKey {
	return NewCompositeKey(t.Platform, t.AccountID)
}

// HasAccountID reports whether the ticket carries a non-empty account id.
func (t *TicketEntry) HasAccountID() bool {
	return strings.TrimSpace(t.AccountID) != ""
}

// Validate performs basic validation on the TicketEntry.
func (t *TicketEntry) Validate() error {
	if strings.TrimSpace(t.TicketNumber) == "" {
		return fmt.Errorf("ticket number cannot be empty")
	}

	if t.RegisteredAt.IsZero() {
		return fmt.Errorf("ticket registration time cannot be zero")
	}

	if t.RequestedDrawDate != "" {
		if _, err := localtime.ParseDate(t.RequestedDrawDate); err != nil {
			return fmt.Errorf("invalid requested draw date: %w", err)
		}
	}

	return nil
}

// String returns a string representation of the TicketEntry.
func (t *TicketEntry) String() string {
	return fmt.Sprintf("Ticket{Platform: %s, Account: %s, Number: %s, DrawDate: %s, At: %s}",
		t.Platform, t.AccountID, t.TicketNumber, t.RequestedDrawDate, t.RegisteredAt.Format(time.RFC3339))
}

// MatchedRecharge is the snapshot of the recharge that backed a valid
// ticket, annotated with how the window was claimed.
type MatchedRecharge struct {
	Platform     string          `json:"platform"`
	AccountID    string          `json:"accountId"`
	RechargeID   string          `json:"rechargeId"`
	OccurredAt   time.Time       `json:"occurredAt"`
	Amount       decimal.Decimal `json:"amount"`
	IsDay2       bool            `json:"isDay2"`
	IsLateCutoff bool            `json:"isLateCutoff"`
}

// SnapshotRecharge captures a recharge into an immutable match snapshot.
func SnapshotRecharge(r *RechargeEvent, isDay2, isLateCutoff bool) *MatchedRecharge {
	return &MatchedRecharge{
		Platform:     r.Platform,
		AccountID:    r.AccountID,
		RechargeID:   r.RechargeID,
		OccurredAt:   r.OccurredAt,
		Amount:       r.Amount,
		IsDay2:       isDay2,
		IsLateCutoff: isLateCutoff,
	}
}

// Identity returns the recharge identity triple of the snapshot.
func (m *MatchedRecharge) Identity() string {
	return m.Platform + ":" + m.AccountID + ":" + m.RechargeID
}

// ValidationResult is the verdict for one ticket in one validation run.
// Created once and never mutated afterward.
type ValidationResult struct {
	Ticket          *TicketEntry     `json:"ticket"`
	Status          TicketStatus     `json:"status"`
	Reason          string           `json:"reason"`
	MatchedRecharge *MatchedRecharge `json:"matchedRecharge,omitempty"`
	IsDay2          bool             `json:"isDay2"`
}

// NewValidationResult creates a result without a matched recharge.
func NewValidationResult(ticket *TicketEntry, status TicketStatus, reason string) *ValidationResult {
	return &ValidationResult{
		Ticket: ticket,
		Status: status,
		Reason: reason,
	}
}

// NewMatchedResult creates a valid result carrying the matched recharge.
func NewMatchedResult(ticket *TicketEntry, match *MatchedRecharge, reason string) *ValidationResult {
	return &ValidationResult{
		Ticket:          ticket,
		Status:          StatusValid,
		Reason:          reason,
		MatchedRecharge: match,
		IsDay2:          match.IsDay2,
	}
}

// String returns a short representation of the result.
func (v *ValidationResult) String() string {
	return fmt.Sprintf("Result{Ticket: %s, Status: %s, Reason: %s}",
		v.Ticket.TicketNumber, v.Status, v.Reason)
}
