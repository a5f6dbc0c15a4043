package logger

import (
	"fmt"
	"sync"
	"time"
)

// ProgressTracker logs progress of long validation runs at a fixed interval
// instead of once per ticket.
type ProgressTracker struct {
	logger      Logger
	operation   string
	total       int64
	current     int64
	startTime   time.Time
	lastLogTime time.Time
	logInterval time.Duration
	mutex       sync.Mutex
}

// NewProgressTracker creates a tracker for an operation over total items.
func NewProgressTracker(operation string, total int64, log Logger) *ProgressTracker {
	if log == nil {
		log = GetGlobalLogger()
	}

	tracker := &ProgressTracker{
		logger:      log.WithComponent("progress"),
		operation:   operation,
		total:       total,
		startTime:   time.Now(),
		lastLogTime: time.Now(),
		logInterval: 5 * time.Second,
	}

	tracker.logger.WithFields(Fields{
		"operation": operation,
		"total":     total,
	}).Info("Starting operation")

	return tracker
}

// Update records the current item count and logs if the interval elapsed.
func (p *ProgressTracker) Update(current int64) {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	p.current = current
	if time.Since(p.lastLogTime) < p.logInterval {
		return
	}
	p.lastLogTime = time.Now()

	percent := 0.0
	if p.total > 0 {
		percent = float64(p.current) / float64(p.total) * 100
	}

	p.logger.WithFields(Fields{
		"operation": p.operation,
		"processed": p.current,
		"total":     p.total,
		"percent":   fmt.Sprintf("%.1f", percent),
		"elapsed":   time.Since(p.startTime).Round(time.Millisecond),
	}).Info("Operation progress")
}

// Done logs the final counts and total elapsed time.
func (p *ProgressTracker) Done() {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	p.logger.WithFields(Fields{
		"operation": p.operation,
		"processed": p.current,
		"total":     p.total,
		"elapsed":   time.Since(p.startTime).Round(time.Millisecond),
	}).Info("Operation completed")
}
