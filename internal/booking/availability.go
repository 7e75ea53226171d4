package booking

import (
	"context"
	"time"

	"laundry-booking-backend/internal/model"
	"laundry-booking-backend/internal/store"
)

// AvailabilityChecker decides whether a proposed interval on a machine
// collides with an existing reservation, applying the conflict margin.
type AvailabilityChecker struct {
	store store.Store
}

// NewAvailabilityChecker creates a checker backed by the given store.
func NewAvailabilityChecker(s store.Store) *AvailabilityChecker {
	return &AvailabilityChecker{store: s}
}

// CheckConflict returns the first reservation whose margin-widened interval
// overlaps [start, end), or nil when the slot is free. A reservation abutting
// exactly at the margin boundary is not a conflict.
//
// A nil result is only safe to book when the check and the insert share a
// transaction holding the machine row; Service.Create provides that.
func (a *AvailabilityChecker) CheckConflict(ctx context.Context, machineID string, start, end time.Time) (*model.Reservation, error) {
	if !start.Before(end) {
		return nil, errValidation("reservation start must be before its end")
	}

	conflict, err := a.store.FindConflict(ctx, machineID, start, end)
	if err != nil {
		return nil, errStore("conflict check", err)
	}
	return conflict, nil
}
