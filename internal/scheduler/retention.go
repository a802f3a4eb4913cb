package scheduler

import (
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/pulseboard/pulseboard/internal/store"
)

// RetentionGC periodically deletes checks older than the retention window.
// Failures are logged; the next scheduled sweep retries. Targets are never
// touched.
type RetentionGC struct {
	store *store.Store
	days  int
	cron  *cron.Cron

	// test hook: called after each sweep with the deleted row count.
	sweepHook func(deleted int64)
}

// NewRetentionGC creates a RetentionGC with the given window in days and a
// standard cron schedule (validated at config load).
func NewRetentionGC(st *store.Store, days int, schedule string) (*RetentionGC, error) {
	gc := &RetentionGC{
		store: st,
		days:  days,
		cron:  cron.New(),
	}
	if _, err := gc.cron.AddFunc(schedule, gc.Sweep); err != nil {
		return nil, err
	}
	return gc, nil
}

// Start runs one sweep immediately, then follows the cron schedule.
func (gc *RetentionGC) Start() {
	gc.Sweep()
	gc.cron.Start()
}

// Stop stops the schedule and waits for a running sweep to finish.
func (gc *RetentionGC) Stop() {
	ctx := gc.cron.Stop()
	<-ctx.Done()
}

// Sweep deletes all checks past the retention window in one statement.
func (gc *RetentionGC) Sweep() {
	cutoff := time.Now().UTC().AddDate(0, 0, -gc.days)
	deleted, err := gc.store.DeleteChecksBefore(cutoff)
	if err != nil {
		log.Printf("[retention] sweep failed: %v", err)
		return
	}
	if deleted > 0 {
		log.Printf("[retention] deleted %d checks older than %s", deleted, cutoff.Format(time.RFC3339))
	}
	if gc.sweepHook != nil {
		gc.sweepHook(deleted)
	}
}
