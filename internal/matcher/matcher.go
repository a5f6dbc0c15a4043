// Package matcher implements the ticket-to-recharge matching engine.
//
// Matching is partitioned: a ticket is only ever compared against recharges
// and sibling tickets sharing its composite key (platform + account id).
// Within a partition the engine offers recharges oldest-first and accepts
// the first one whose eligibility window admits the ticket, which gives
// FIFO consumption without a global assignment solve. Each recharge backs
// at most one ticket per validation run.
//
// The oldest-first early-exit strategy is correct here only because windows
// span at most two draw days and rarely overlap within one account; it is
// not a general bipartite matching. That limitation is accepted, not
// worked around.
package matcher

import (
	"fmt"
	"time"

	"ticket-reconciliation-service/internal/calendar"
	"ticket-reconciliation-service/internal/models"
	"ticket-reconciliation-service/pkg/logger"
)

// Engine resolves individual tickets against their recharge partitions.
type Engine struct {
	rechargeIndex *RechargeIndex
	ticketIndex   *TicketIndex
	logger        logger.Logger
}

// NewEngine creates a matching engine.
func NewEngine() *Engine {
	return &Engine{
		logger: logger.GetGlobalLogger().WithComponent("matcher"),
	}
}

// LoadRecharges partitions recharges into the engine.
func (e *Engine) LoadRecharges(recharges []*models.RechargeEvent) {
	e.rechargeIndex = NewRechargeIndex(recharges)
}

// LoadTickets partitions tickets into the engine.
func (e *Engine) LoadTickets(tickets []*models.TicketEntry) {
	e.ticketIndex = NewTicketIndex(tickets)
}

// RechargeStats returns partition statistics for the loaded recharges.
func (e *Engine) RechargeStats() IndexStats {
	if e.rechargeIndex == nil {
		return IndexStats{}
	}
	return e.rechargeIndex.Stats()
}

// TicketStats returns partition statistics for the loaded tickets.
func (e *Engine) TicketStats() IndexStats {
	if e.ticketIndex == nil {
		return IndexStats{}
	}
	return e.ticketIndex.Stats()
}

// FindMatch resolves one ticket against its partition and returns the
// matched recharge snapshot, or nil when no candidate passes. The recharge
// partition must be sorted ascending by occurrence instant and pre-filtered
// to the ticket's composite key. A non-nil error is a fatal calendar
// invariant violation.
func (e *Engine) FindMatch(
	ticket *models.TicketEntry,
	partitionRecharges []*models.RechargeEvent,
	partitionTickets []*models.TicketEntry,
) (*models.MatchedRecharge, error) {

	for _, candidate := range partitionRecharges {
		// Temporal precedence: the recharge must strictly precede the ticket.
		if !candidate.OccurredAt.Before(ticket.RegisteredAt) {
			continue
		}

		window, err := calendar.ComputeWindow(candidate.OccurredAt)
		if err != nil {
			return nil, err
		}
		if window == nil {
			continue
		}

		if window.IsExpiredAt(ticket.RegisteredAt) {
			continue
		}

		matches, isDay2 := window.MatchesDrawDate(ticket.RequestedDrawDate)
		if !matches {
			continue
		}

		if e.isConsumed(candidate, window, ticket, partitionTickets) {
			continue
		}

		return models.SnapshotRecharge(candidate, isDay2, window.IsLateCutoff), nil
	}

	return nil, nil
}

// isConsumed reports whether some earlier ticket in the partition already
// claims the candidate recharge: a different ticket registered after the
// recharge and before the current ticket, whose requested draw date also
// falls inside the same window. The check is re-derived per call rather
// than tracked in a ledger; O(partition²) per run is acceptable at the
// partition sizes seen in practice.
func (e *Engine) isConsumed(
	recharge *models.RechargeEvent,
	window *calendar.EligibilityWindow,
	ticket *models.TicketEntry,
	partitionTickets []*models.TicketEntry,
) bool {
	for _, other := range partitionTickets {
		if other.TicketNumber == ticket.TicketNumber {
			continue
		}
		if !recharge.OccurredAt.Before(other.RegisteredAt) {
			continue
		}
		if !other.RegisteredAt.Before(ticket.RegisteredAt) {
			continue
		}
		if claimed, _ := window.MatchesDrawDate(other.RequestedDrawDate); claimed {
			return true
		}
	}
	return false
}

// ValidateTicket produces the verdict for one ticket. Both indexes must be
// loaded. A non-nil error is a fatal calendar invariant violation; every
// other failure is absorbed into the result's status and reason.
func (e *Engine) ValidateTicket(ticket *models.TicketEntry) (*models.ValidationResult, error) {
	if status, recognized := models.ParsePresetStatus(ticket.SourceStatus); recognized {
		return models.NewValidationResult(ticket, status,
			fmt.Sprintf("pre-set source verdict: %s", ticket.SourceStatus)), nil
	}

	if !ticket.HasAccountID() {
		return models.NewValidationResult(ticket, models.StatusInvalid,
			"missing account id"), nil
	}

	if ticket.RegisteredAt.IsZero() {
		return models.NewValidationResult(ticket, models.StatusInvalid,
			"missing registration time"), nil
	}

	key := ticket.Key()
	partitionRecharges := e.rechargeIndex.Get(key)
	if len(partitionRecharges) == 0 {
		return models.NewValidationResult(ticket, models.StatusInvalid,
			fmt.Sprintf("no recharge for platform %s account %s", ticket.Platform, ticket.AccountID)), nil
	}

	if !hasEarlierRecharge(partitionRecharges, ticket.RegisteredAt) {
		return models.NewValidationResult(ticket, models.StatusInvalid,
			"ticket precedes any recharge"), nil
	}

	partitionTickets := e.ticketIndex.Get(key)
	match, err := e.FindMatch(ticket, partitionRecharges, partitionTickets)
	if err != nil {
		return nil, err
	}

	if match != nil {
		reason := fmt.Sprintf("backed by recharge of %s", match.Amount.String())
		if match.IsDay2 {
			reason += " (day-2 claim)"
		}
		return models.NewMatchedResult(ticket, match, reason), nil
	}

	reason, err := e.diagnoseNoMatch(ticket, partitionRecharges)
	if err != nil {
		return nil, err
	}
	return models.NewValidationResult(ticket, models.StatusInvalid, reason), nil
}

// diagnoseNoMatch re-derives the windows of every temporally-eligible
// recharge to explain why nothing matched: every window already expired,
// the requested draw date fits no window, or an earlier ticket consumed
// the only fitting recharge.
func (e *Engine) diagnoseNoMatch(
	ticket *models.TicketEntry,
	partitionRecharges []*models.RechargeEvent,
) (string, error) {

	allExpired := true
	anyDateMatch := false
	sawWindow := false

	for _, candidate := range partitionRecharges {
		if !candidate.OccurredAt.Before(ticket.RegisteredAt) {
			continue
		}

		window, err := calendar.ComputeWindow(candidate.OccurredAt)
		if err != nil {
			return "", err
		}
		if window == nil {
			continue
		}
		sawWindow = true

		if !window.IsExpiredAt(ticket.RegisteredAt) {
			allExpired = false
		}
		if matches, _ := window.MatchesDrawDate(ticket.RequestedDrawDate); matches {
			anyDateMatch = true
		}
	}

	switch {
	case sawWindow && allExpired:
		return "all candidate recharge windows had already expired", nil
	case !anyDateMatch:
		return "draw date doesn't match eligibility window", nil
	default:
		return "recharge already consumed by an earlier ticket", nil
	}
}

func hasEarlierRecharge(recharges []*models.RechargeEvent, registeredAt time.Time) bool {
	for _, recharge := range recharges {
		if recharge.OccurredAt.Before(registeredAt) {
			return true
		}
	}
	return false
}
