package reconciler

import (
	"context"
	"time"

	"ticket-reconciliation-service/internal/matcher"
	"ticket-reconciliation-service/internal/models"
	"ticket-reconciliation-service/pkg/errors"
	"ticket-reconciliation-service/pkg/logger"
)

// Progress reports batch-level progress of a validation run.
type Progress struct {
	Processed int
	Total     int
	Valid     int
	Invalid   int
	Unknown   int
}

// ProgressCallback is invoked after each completed batch.
type ProgressCallback func(Progress)

// Orchestrator validates full ticket collections in batches.
type Orchestrator struct {
	config            *Config
	logger            logger.Logger
	progressCallbacks []ProgressCallback
}

// NewOrchestrator creates a validation orchestrator.
func NewOrchestrator(config *Config) (*Orchestrator, error) {
	if config == nil {
		config = DefaultConfig()
	}

	if err := config.Validate(); err != nil {
		return nil, errors.ConfigurationError(errors.CodeInvalidConfig, "orchestrator", err)
	}

	return &Orchestrator{
		config: config,
		logger: logger.GetGlobalLogger().WithComponent("orchestrator"),
	}, nil
}

// AddProgressCallback registers a callback invoked at batch boundaries.
func (o *Orchestrator) AddProgressCallback(callback ProgressCallback) {
	o.progressCallbacks = append(o.progressCallbacks, callback)
}

// ValidateAll validates every ticket against the recharge collection and
// returns results in input order.
//
// Tickets are processed in fixed-size batches with a cancellation check at
// each batch boundary; an in-flight batch always runs to completion. The
// outcome is deterministic regardless of batch size. A calendar invariant
// violation aborts the whole run rather than producing a silently-wrong
// window.
func (o *Orchestrator) ValidateAll(
	ctx context.Context,
	tickets []*models.TicketEntry,
	recharges []*models.RechargeEvent,
) (*ValidationOutcome, error) {

	startTime := time.Now()

	engine := matcher.NewEngine()
	engine.LoadTickets(tickets)
	engine.LoadRecharges(recharges)

	o.logger.WithFields(logger.Fields{
		"tickets":             len(tickets),
		"recharges":           len(recharges),
		"ticket_partitions":   engine.TicketStats().TotalPartitions,
		"recharge_partitions": engine.RechargeStats().TotalPartitions,
		"batch_size":          o.config.BatchSize,
	}).Info("Starting validation run")

	var tracker *logger.ProgressTracker
	if o.config.ProgressReporting {
		tracker = logger.NewProgressTracker("validate_tickets", int64(len(tickets)), o.logger)
	}

	outcome := newOutcome(len(tickets))

	for start := 0; start < len(tickets); start += o.config.BatchSize {
		if err := ctx.Err(); err != nil {
			o.logger.WithError(err).Warn("Validation run cancelled at batch boundary")
			return nil, err
		}

		end := start + o.config.BatchSize
		if end > len(tickets) {
			end = len(tickets)
		}

		for _, ticket := range tickets[start:end] {
			result, err := engine.ValidateTicket(ticket)
			if err != nil {
				o.logger.WithError(err).Error("Validation run aborted")
				return nil, err
			}

			outcome.Results = append(outcome.Results, result)
			outcome.Stats.record(result)
		}

		if tracker != nil {
			tracker.Update(int64(end))
		}
		o.notifyProgress(len(tickets), &outcome.Stats)
	}

	if tracker != nil {
		tracker.Done()
	}

	outcome.Duration = time.Since(startTime)

	o.logger.WithFields(logger.Fields{
		"run_id":     outcome.RunID,
		"total":      outcome.Stats.Total,
		"valid":      outcome.Stats.Valid,
		"invalid":    outcome.Stats.Invalid,
		"unknown":    outcome.Stats.Unknown,
		"day2_valid": outcome.Stats.Day2Valid,
		"duration":   outcome.Duration.Round(time.Millisecond),
	}).Info("Validation run completed")

	return outcome, nil
}

func (o *Orchestrator) notifyProgress(total int, stats *Stats) {
	if len(o.progressCallbacks) == 0 {
		return
	}

	progress := Progress{
		Processed: stats.Total,
		Total:     total,
		Valid:     stats.Valid,
		Invalid:   stats.Invalid,
		Unknown:   stats.Unknown,
	}

	for _, callback := range o.progressCallbacks {
		callback(progress)
	}
}
