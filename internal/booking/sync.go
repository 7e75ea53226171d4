package booking

import (
	"context"

	"laundry-booking-backend/internal/model"
	"laundry-booking-backend/internal/store"
)

// MachineSync keeps a machine's availability flag consistent with its
// active reservations. It recomputes from the authoritative reservation set
// rather than blindly flipping the flag, so a drifted flag heals itself.
type MachineSync struct {
	store store.Store
}

// NewMachineSync creates a sync backed by the given store.
func NewMachineSync(s store.Store) *MachineSync {
	return &MachineSync{store: s}
}

// OnReservationActive marks the machine as in use.
func (m *MachineSync) OnReservationActive(ctx context.Context, machineID string) error {
	if err := m.store.SetMachineStatus(ctx, machineID, model.MachineInUse); err != nil {
		return errStore("mark machine busy", err)
	}
	return nil
}

// OnReservationEnded frees the machine, but only when no other active
// reservation remains on it. Machines in maintenance are left untouched.
func (m *MachineSync) OnReservationEnded(ctx context.Context, machineID string) error {
	machine, err := m.store.GetMachine(ctx, machineID)
	if err != nil {
		return errStore("fetch machine for sync", err)
	}
	if machine.Status == model.MachineMaintenance {
		return nil
	}

	active, err := m.store.CountActiveReservations(ctx, machineID)
	if err != nil {
		return errStore("count active reservations", err)
	}
	if active > 0 {
		return nil
	}

	if err := m.store.SetMachineStatus(ctx, machineID, model.MachineAvailable); err != nil {
		return errStore("free machine", err)
	}
	return nil
}
