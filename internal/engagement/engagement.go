// Package engagement computes set-overlap statistics between the accounts
// that recharged and the accounts that registered tickets. It is a pure
// reporting layer, independent of the matching engine.
package engagement

import (
	"sort"
	"time"

	"ticket-reconciliation-service/internal/models"
	"ticket-reconciliation-service/pkg/localtime"
)

// Stats holds the aggregate engagement numbers for one collection pair.
type Stats struct {
	// UniqueRechargers is the number of distinct account ids with at least
	// one recharge.
	UniqueRechargers int `json:"unique_rechargers"`

	// UniqueCreators is the number of distinct account ids with at least
	// one ticket.
	UniqueCreators int `json:"unique_creators"`

	// Participants is the size of the intersection of both sets.
	Participants int `json:"participants"`

	// RechargersWithoutTickets counts accounts that recharged but never
	// registered a ticket.
	RechargersWithoutTickets int `json:"rechargers_without_tickets"`

	// MultiRechargeNoTicket counts accounts with more than one recharge
	// and zero tickets.
	MultiRechargeNoTicket int `json:"multi_recharge_no_ticket"`
}

// DailyStats pairs one local calendar date with that day's engagement.
type DailyStats struct {
	Date  string `json:"date"` // YYYY-MM-DD
	Stats Stats  `json:"stats"`
}

// Analyze computes aggregate engagement over the full collections.
func Analyze(tickets []*models.TicketEntry, recharges []*models.RechargeEvent) *Stats {
	rechargeCounts := make(map[string]int)
	for _, recharge := range recharges {
		if recharge.AccountID == "" {
			continue
		}
		rechargeCounts[recharge.AccountID]++
	}

	creators := make(map[string]bool)
	for _, ticket := range tickets {
		if ticket.AccountID == "" {
			continue
		}
		creators[ticket.AccountID] = true
	}

	stats := &Stats{
		UniqueRechargers: len(rechargeCounts),
		UniqueCreators:   len(creators),
	}

	for accountID, count := range rechargeCounts {
		if creators[accountID] {
			stats.Participants++
			continue
		}
		stats.RechargersWithoutTickets++
		if count > 1 {
			stats.MultiRechargeNoTicket++
		}
	}

	return stats
}

// AnalyzeDaily buckets both collections by local calendar date once, then
// computes the same aggregate per day for a trailing window of days ending
// at the given reference instant. Days are returned oldest first; days
// without any activity carry zero stats.
func AnalyzeDaily(
	tickets []*models.TicketEntry,
	recharges []*models.RechargeEvent,
	days int,
	until time.Time,
) []DailyStats {

	if days <= 0 {
		return nil
	}

	ticketsByDay := make(map[string][]*models.TicketEntry)
	for _, ticket := range tickets {
		day := localtime.DateString(ticket.RegisteredAt)
		ticketsByDay[day] = append(ticketsByDay[day], ticket)
	}

	rechargesByDay := make(map[string][]*models.RechargeEvent)
	for _, recharge := range recharges {
		day := localtime.DateString(recharge.OccurredAt)
		rechargesByDay[day] = append(rechargesByDay[day], recharge)
	}

	lastDay := localtime.Midnight(until)
	results := make([]DailyStats, 0, days)

	for offset := days - 1; offset >= 0; offset-- {
		day := lastDay.AddDate(0, 0, -offset)
		key := localtime.DateString(day)

		results = append(results, DailyStats{
			Date:  key,
			Stats: *Analyze(ticketsByDay[key], rechargesByDay[key]),
		})
	}

	return results
}

// ActiveDays returns the sorted list of local calendar dates with at least
// one ticket or recharge.
func ActiveDays(tickets []*models.TicketEntry, recharges []*models.RechargeEvent) []string {
	seen := make(map[string]bool)
	for _, ticket := range tickets {
		seen[localtime.DateString(ticket.RegisteredAt)] = true
	}
	for _, recharge := range recharges {
		seen[localtime.DateString(recharge.OccurredAt)] = true
	}

	days := make([]string, 0, len(seen))
	for day := range seen {
		days = append(days, day)
	}
	sort.Strings(days)
	return days
}
