package cron

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// HistoryPurger is the subset of the history store the retention job
// needs. Defined here so the job does not depend on a concrete store.
type HistoryPurger interface {
	PurgeIdle(cutoff time.Time) (int, error)
}

// RetentionJob deletes conversation histories whose last turn is older
// than MaxIdle. Abandoned intakes accumulate otherwise; the export sink
// is never touched.
type RetentionJob struct {
	Store        HistoryPurger
	MaxIdle      time.Duration
	Logger       *slog.Logger
	ScheduleExpr string // empty = default "0 * * * *"

	// now is overridable in tests.
	now func() time.Time
}

var _ Job = (*RetentionJob)(nil)

// Name implements Job.
func (j *RetentionJob) Name() string { return "history_retention" }

// Schedule implements Job.
func (j *RetentionJob) Schedule() string {
	if j.ScheduleExpr != "" {
		return j.ScheduleExpr
	}
	return "0 * * * *"
}

// Run purges histories idle longer than MaxIdle.
func (j *RetentionJob) Run(ctx context.Context) error {
	if ctx.Err() != nil {
		return fmt.Errorf("cron: retention sweep cancelled: %w", ctx.Err())
	}

	now := time.Now
	if j.now != nil {
		now = j.now
	}

	purged, err := j.Store.PurgeIdle(now().Add(-j.MaxIdle))
	if err != nil {
		return fmt.Errorf("cron: retention sweep: %w", err)
	}
	if purged > 0 {
		j.Logger.Info("cron: purged idle histories", "count", purged, "max_idle", j.MaxIdle)
	}
	return nil
}
