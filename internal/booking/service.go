package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"laundry-booking-backend/internal/clock"
	"laundry-booking-backend/internal/model"
	"laundry-booking-backend/internal/store"
)

// Notifier is the outbound notification port. Dispatch is fire-and-forget
// with an at-least-once contract; the core never waits on delivery.
type Notifier interface {
	Notify(ctx context.Context, recipientID string, category model.NotificationCategory, title, body string)
}

// Service drives the reservation lifecycle: create, cancel, complete.
type Service struct {
	store    store.Store
	clock    clock.Clock
	notifier Notifier
}

// NewService creates the reservation lifecycle service.
func NewService(s store.Store, clk clock.Clock, n Notifier) *Service {
	return &Service{store: s, clock: clk, notifier: n}
}

// Create books a machine for one cycle starting at start. The conflict check
// and the insert run in a single transaction with the machine row locked, so
// two overlapping requests for the same machine cannot both succeed.
func (s *Service) Create(ctx context.Context, actor Actor, customerID, machineID string, start time.Time) (*model.Reservation, error) {
	if err := authorize(actor, ActionCreate, nil, ""); err != nil {
		return nil, err
	}
	if actor.Role == model.RoleCustomer && actor.ID != customerID {
		return nil, errUnauthorized("customers may only book for themselves")
	}
	if start.IsZero() {
		return nil, errValidation("reservation start is required")
	}

	customer, err := s.store.GetUser(ctx, customerID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, errNotFound("customer", customerID)
		}
		return nil, errStore("fetch customer", err)
	}

	var reservation *model.Reservation
	err = s.store.Transaction(ctx, func(tx store.Store) error {
		machine, err := tx.GetMachineForUpdate(ctx, machineID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return errNotFound("machine", machineID)
			}
			return errStore("fetch machine", err)
		}
		if machine.Status != model.MachineAvailable {
			return errMachineUnavailable(machineID)
		}

		end := start.Add(machine.Kind.CycleDuration())
		conflict, err := NewAvailabilityChecker(tx).CheckConflict(ctx, machineID, start, end)
		if err != nil {
			return err
		}
		if conflict != nil {
			return errSlotConflict(conflict.Start, conflict.End)
		}

		r := &model.Reservation{
			ID:         uuid.NewString(),
			CustomerID: customer.ID,
			MachineID:  machineID,
			Start:      start,
			End:        end,
			Status:     model.ReservationInProgress,
		}
		if err := tx.CreateReservation(ctx, r); err != nil {
			return errStore("insert reservation", err)
		}

		if err := NewMachineSync(tx).OnReservationActive(ctx, machineID); err != nil {
			return err
		}

		reservation = r
		return nil
	})
	if err != nil {
		return nil, asCoreError(err)
	}

	s.notifier.Notify(ctx, customer.ID, model.NotifReservationCreated,
		"Reservation confirmed",
		fmt.Sprintf("Your machine is booked from %s to %s.",
			reservation.Start.Format(time.RFC3339), reservation.End.Format(time.RFC3339)))

	return reservation, nil
}

// Cancel moves an in-progress reservation to CANCELLED. Customers may cancel
// their own, operators may cancel on machines they own but must give a
// reason, administrators may cancel unconditionally.
func (s *Service) Cancel(ctx context.Context, actor Actor, reservationID, reason string) error {
	reservation, err := s.store.GetReservation(ctx, reservationID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return errNotFound("reservation", reservationID)
		}
		return errStore("fetch reservation", err)
	}
	if reservation.Status != model.ReservationInProgress {
		return errInvalidTransition(fmt.Sprintf("reservation %s is already %s", reservationID, reservation.Status))
	}

	ownerID, err := s.machineOwner(ctx, reservation.MachineID)
	if err != nil {
		return err
	}
	if err := authorize(actor, ActionCancel, reservation, ownerID); err != nil {
		return err
	}
	if actor.Role == model.RoleOperator && reason == "" {
		return errValidation("operators must supply a cancellation reason")
	}

	err = s.store.Transaction(ctx, func(tx store.Store) error {
		ok, err := tx.TransitionReservation(ctx, reservationID, model.ReservationInProgress, model.ReservationCancelled)
		if err != nil {
			return errStore("cancel reservation", err)
		}
		if !ok {
			return errInvalidTransition(fmt.Sprintf("reservation %s is no longer in progress", reservationID))
		}
		return NewMachineSync(tx).OnReservationEnded(ctx, reservation.MachineID)
	})
	if err != nil {
		return asCoreError(err)
	}

	if actor.ID != reservation.CustomerID {
		body := "Your reservation was cancelled."
		if reason != "" {
			body = fmt.Sprintf("Your reservation was cancelled: %s", reason)
		}
		s.notifier.Notify(ctx, reservation.CustomerID, model.NotifReservationCancelled,
			"Reservation cancelled", body)
	}

	return nil
}

// Complete moves an expired in-progress reservation to DONE and frees its
// machine. It is system-only and never externally triggered.
func (s *Service) Complete(ctx context.Context, reservationID string) error {
	reservation, err := s.store.GetReservation(ctx, reservationID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return errNotFound("reservation", reservationID)
		}
		return errStore("fetch reservation", err)
	}
	if reservation.Status != model.ReservationInProgress {
		return errInvalidTransition(fmt.Sprintf("reservation %s is already %s", reservationID, reservation.Status))
	}
	if s.clock.Now().Before(reservation.End) {
		return errValidation(fmt.Sprintf("reservation %s has not ended yet", reservationID))
	}

	err = s.store.Transaction(ctx, func(tx store.Store) error {
		ok, err := tx.TransitionReservation(ctx, reservationID, model.ReservationInProgress, model.ReservationDone)
		if err != nil {
			return errStore("complete reservation", err)
		}
		if !ok {
			return errInvalidTransition(fmt.Sprintf("reservation %s is no longer in progress", reservationID))
		}
		return NewMachineSync(tx).OnReservationEnded(ctx, reservation.MachineID)
	})
	return asCoreError(err)
}

// machineOwner walks the machine -> laundromat -> owner chain explicitly.
func (s *Service) machineOwner(ctx context.Context, machineID string) (string, error) {
	machine, err := s.store.GetMachine(ctx, machineID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return "", errNotFound("machine", machineID)
		}
		return "", errStore("fetch machine", err)
	}
	laundromat, err := s.store.GetLaundromat(ctx, machine.LaundromatID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return "", errNotFound("laundromat", machine.LaundromatID)
		}
		return "", errStore("fetch laundromat", err)
	}
	return laundromat.OwnerID, nil
}

// asCoreError passes structured errors through and wraps anything else as a
// transient store failure, so transaction plumbing errors stay retryable.
func asCoreError(err error) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return errStore("transaction", err)
}
