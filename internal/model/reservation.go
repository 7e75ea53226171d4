package model

import "time"

// ReservationStatus is the lifecycle state of a reservation.
// DONE and CANCELLED are terminal.
type ReservationStatus string

const (
	ReservationInProgress ReservationStatus = "IN_PROGRESS"
	ReservationDone       ReservationStatus = "DONE"
	ReservationCancelled  ReservationStatus = "CANCELLED"
)

// ConflictMargin is the buffer added to both ends of a reservation's
// interval when checking for overlap, absorbing clock skew and turnaround.
const ConflictMargin = 5 * time.Minute

// Reservation is a booking of one machine for one cycle. End is derived
// from Start plus the machine kind's cycle duration and never set directly.
type Reservation struct {
	ID         string            `gorm:"primaryKey;size:36"`
	CustomerID string            `gorm:"index;size:36;not null"`
	MachineID  string            `gorm:"size:36;not null;index:idx_reservations_machine_window,priority:1"`
	Start      time.Time         `gorm:"not null;index:idx_reservations_machine_window,priority:2"`
	End        time.Time         `gorm:"not null"`
	Status     ReservationStatus `gorm:"size:16;not null;index:idx_reservations_machine_window,priority:3"`
	PaymentID  *string           `gorm:"size:36"`
	CreatedAt  time.Time
	UpdatedAt  time.Time

	// Associations
	Machine Machine `gorm:"foreignKey:MachineID"`
}
