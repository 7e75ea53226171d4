package reconcile

import (
	"context"
	"errors"
	"log"
	"time"

	"laundry-booking-backend/config"
	"laundry-booking-backend/internal/clock"
)

// Runner triggers the reconciliation job on a fixed interval.
type Runner struct {
	cfg   *config.ReconcilerConfig
	job   *Job
	clock clock.Clock
}

// NewRunner creates an interval runner for the given job.
func NewRunner(cfg *config.ReconcilerConfig, job *Job, clk clock.Clock) *Runner {
	return &Runner{cfg: cfg, job: job, clock: clk}
}

// Run starts the reconciliation loop and blocks until ctx is cancelled.
func (r *Runner) Run(ctx context.Context) {
	if !r.cfg.Enabled {
		log.Println("Reconciler is disabled. Not starting.")
		return
	}
	log.Println("Starting reconciler...")

	r.runOnce(ctx)

	timer := time.NewTimer(r.cfg.Interval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Reconciler shutting down.")
			return
		case <-timer.C:
			r.runOnce(ctx)
			timer.Reset(r.cfg.Interval)
		}
	}
}

func (r *Runner) runOnce(ctx context.Context) {
	report, err := r.job.Run(ctx, r.clock.Now())
	if err != nil {
		if errors.Is(err, ErrAlreadyRunning) {
			log.Println("Reconciliation skipped: previous run still in flight.")
			return
		}
		log.Printf("Reconciliation run failed: %v", err)
		return
	}
	if report.Completed > 0 || report.RemindersSent > 0 || report.Failed > 0 {
		log.Printf("Reconciliation: completed=%d reminders=%d failed=%d",
			report.Completed, report.RemindersSent, report.Failed)
	}
}
