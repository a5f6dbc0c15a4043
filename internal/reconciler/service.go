// Package reconciler drives batch validation of tickets against recharges
// and aggregates run-level statistics.
//
// The orchestrator owns no I/O: callers hand it two already-parsed event
// collections and receive a deterministic, input-ordered outcome. Batching
// exists for responsiveness and cancellation granularity only; results are
// identical for any batch size.
package reconciler

import (
	"fmt"
	"time"

	"ticket-reconciliation-service/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Config holds configuration options for the validation orchestrator.
type Config struct {
	// BatchSize is the number of tickets processed between cancellation
	// checks and progress notifications.
	BatchSize int

	// ProgressReporting enables interval progress logging for long runs.
	ProgressReporting bool
}

// DefaultConfig returns the default orchestrator configuration.
func DefaultConfig() *Config {
	return &Config{
		BatchSize:         200,
		ProgressReporting: false,
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.BatchSize <= 0 {
		return fmt.Errorf("batch size must be positive, got %d", c.BatchSize)
	}
	return nil
}

// Stats aggregates verdict counts for one validation run. Day2Valid is a
// sub-count of Valid.
type Stats struct {
	Total       int             `json:"total"`
	Valid       int             `json:"valid"`
	Invalid     int             `json:"invalid"`
	Unknown     int             `json:"unknown"`
	Day2Valid   int             `json:"day2_valid"`
	AmountValid decimal.Decimal `json:"amount_valid"`
}

// record accumulates one result into the stats.
func (s *Stats) record(result *models.ValidationResult) {
	s.Total++
	switch result.Status {
	case models.StatusValid:
		s.Valid++
		if result.IsDay2 {
			s.Day2Valid++
		}
		if result.MatchedRecharge != nil {
			s.AmountValid = s.AmountValid.Add(result.MatchedRecharge.Amount)
		}
	case models.StatusInvalid:
		s.Invalid++
	default:
		s.Unknown++
	}
}

// ValidationOutcome is the complete result of one validation run. Results
// are in the same order as the input ticket sequence.
type ValidationOutcome struct {
	RunID       string                     `json:"run_id"`
	Results     []*models.ValidationResult `json:"results"`
	Stats       Stats                      `json:"stats"`
	ProcessedAt time.Time                  `json:"processed_at"`
	Duration    time.Duration              `json:"duration"`
}

func newOutcome(capacity int) *ValidationOutcome {
	return &ValidationOutcome{
		RunID:       uuid.NewString(),
		Results:     make([]*models.ValidationResult, 0, capacity),
		ProcessedAt: time.Now(),
		Stats:       Stats{AmountValid: decimal.Zero},
	}
}
