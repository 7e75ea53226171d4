package reconcile

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"laundry-booking-backend/internal/booking"
	"laundry-booking-backend/internal/model"
	"laundry-booking-backend/internal/store"
)

const (
	// reminderWindow is how far ahead of a reservation's start a reminder
	// is produced.
	reminderWindow = 15 * time.Minute
	// reminderLookback is the dedup window: no second reminder goes to the
	// same recipient within it.
	reminderLookback = 20 * time.Minute
)

// ErrAlreadyRunning is returned when a run is requested while a previous
// run is still in flight.
var ErrAlreadyRunning = errors.New("reconciliation already running")

// Report counts what a single reconciliation run changed.
type Report struct {
	Completed     int `json:"completed"`
	RemindersSent int `json:"reminders_sent"`
	Failed        int `json:"failed"`
}

// Job is the idempotent reconciliation unit of work: it finalizes expired
// reservations and emits upcoming-start reminders. The trigger mechanism
// (timer or HTTP) lives elsewhere.
type Job struct {
	store    store.Store
	svc      *booking.Service
	notifier booking.Notifier

	mu sync.Mutex
}

// NewJob creates a reconciliation job.
func NewJob(s store.Store, svc *booking.Service, n booking.Notifier) *Job {
	return &Job{store: s, svc: svc, notifier: n}
}

// Run performs one reconciliation sweep at the given instant. Each
// reservation is processed independently; one failure does not abort the
// rest. Re-running with the same now and no intervening writes changes
// nothing. At most one run is in flight at a time.
func (j *Job) Run(ctx context.Context, now time.Time) (Report, error) {
	if !j.mu.TryLock() {
		return Report{}, ErrAlreadyRunning
	}
	defer j.mu.Unlock()

	var report Report

	expired, err := j.store.ExpiredReservations(ctx, now)
	if err != nil {
		return report, err
	}
	for _, r := range expired {
		if err := j.svc.Complete(ctx, r.ID); err != nil {
			// Another worker may have finished it first; that is not a failure.
			if booking.KindOf(err) == booking.KindInvalidTransition {
				continue
			}
			log.Printf("reconcile: completing reservation %s: %v", r.ID, err)
			report.Failed++
			continue
		}
		report.Completed++
	}

	upcoming, err := j.store.UpcomingReservations(ctx, now, now.Add(reminderWindow))
	if err != nil {
		return report, err
	}
	for _, r := range upcoming {
		seen, err := j.store.HasRecentNotification(ctx, r.CustomerID, model.NotifReservationReminder, now.Add(-reminderLookback))
		if err != nil {
			log.Printf("reconcile: reminder lookup for reservation %s: %v", r.ID, err)
			report.Failed++
			continue
		}
		if seen {
			continue
		}
		j.notifier.Notify(ctx, r.CustomerID, model.NotifReservationReminder,
			"Reservation starting soon",
			"Your reservation starts at "+r.Start.Format(time.RFC3339)+".")
		report.RemindersSent++
	}

	return report, nil
}
