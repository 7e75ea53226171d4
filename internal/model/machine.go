package model

import "time"

// MachineKind determines the fixed cycle duration of a machine.
type MachineKind string

const (
	KindWasher MachineKind = "WASHER"
	KindDryer  MachineKind = "DRYER"
)

// CycleDuration returns how long one cycle on this kind of machine takes.
func (k MachineKind) CycleDuration() time.Duration {
	if k == KindDryer {
		return 30 * time.Minute
	}
	return 45 * time.Minute
}

// MachineStatus is the availability flag of a machine.
type MachineStatus string

const (
	MachineAvailable   MachineStatus = "AVAILABLE"
	MachineInUse       MachineStatus = "IN_USE"
	MachineMaintenance MachineStatus = "MAINTENANCE"
)

// Machine represents a bookable washer or dryer. Status is mutated only by
// the state sync (on reservation create/end) or an explicit maintenance toggle.
type Machine struct {
	ID           string        `gorm:"primaryKey;size:36"`
	LaundromatID string        `gorm:"index;size:36;not null"`
	Kind         MachineKind   `gorm:"size:16;not null"`
	Status       MachineStatus `gorm:"size:16;not null"`
	Price        float64       `gorm:"not null"`
	CreatedAt    time.Time
	UpdatedAt    time.Time

	// Associations
	Laundromat Laundromat `gorm:"constraint:OnDelete:CASCADE"`
}
