package matcher

import (
	"sort"

	"ticket-reconciliation-service/internal/models"
)

// RechargeIndex partitions recharge events by composite key. Each partition
// holds a new slice sorted ascending by occurrence instant (FIFO offer
// order); the caller's input slice is never reordered.
type RechargeIndex struct {
	ByKey        map[models.CompositeKey][]*models.RechargeEvent
	AllRecharges []*models.RechargeEvent
}

// TicketIndex partitions ticket entries by composite key, sorted ascending
// by registration instant within each partition.
type TicketIndex struct {
	ByKey      map[models.CompositeKey][]*models.TicketEntry
	AllTickets []*models.TicketEntry
}

// NewRechargeIndex builds a partition index over the given recharges.
func NewRechargeIndex(recharges []*models.RechargeEvent) *RechargeIndex {
	index := &RechargeIndex{
		ByKey:        make(map[models.CompositeKey][]*models.RechargeEvent),
		AllRecharges: recharges,
	}

	for _, recharge := range recharges {
		key := recharge.Key()
		index.ByKey[key] = append(index.ByKey[key], recharge)
	}

	for key, partition := range index.ByKey {
		sorted := make([]*models.RechargeEvent, len(partition))
		copy(sorted, partition)
		sort.SliceStable(sorted, func(i, j int) bool {
			return sorted[i].OccurredAt.Before(sorted[j].OccurredAt)
		})
		index.ByKey[key] = sorted
	}

	return index
}

// NewTicketIndex builds a partition index over the given tickets.
func NewTicketIndex(tickets []*models.TicketEntry) *TicketIndex {
	index := &TicketIndex{
		ByKey:      make(map[models.CompositeKey][]*models.TicketEntry),
		AllTickets: tickets,
	}

	for _, ticket := range tickets {
		key := ticket.Key()
		index.ByKey[key] = append(index.ByKey[key], ticket)
	}

	for key, partition := range index.ByKey {
		sorted := make([]*models.TicketEntry, len(partition))
		copy(sorted, partition)
		sort.SliceStable(sorted, func(i, j int) bool {
			return sorted[i].RegisteredAt.Before(sorted[j].RegisteredAt)
		})
		index.ByKey[key] = sorted
	}

	return index
}

// Get returns the sorted recharge partition for a key, or nil.
func (ri *RechargeIndex) Get(key models.CompositeKey) []*models.RechargeEvent {
	return ri.ByKey[key]
}

// Get returns the sorted ticket partition for a key, or nil.
func (ti *TicketIndex) Get(key models.CompositeKey) []*models.TicketEntry {
	return ti.ByKey[key]
}

// Stats returns partition statistics for the recharge index.
func (ri *RechargeIndex) Stats() IndexStats {
	return IndexStats{
		TotalEvents:     len(ri.AllRecharges),
		TotalPartitions: len(ri.ByKey),
	}
}

// Stats returns partition statistics for the ticket index.
func (ti *TicketIndex) Stats() IndexStats {
	return IndexStats{
		TotalEvents:     len(ti.AllTickets),
		TotalPartitions: len(ti.ByKey),
	}
}

// IndexStats provides statistics about a partition index.
type IndexStats struct {
	TotalEvents     int
	TotalPartitions int
}
