package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"laundry-booking-backend/internal/model"
)

// ErrNotFound is returned when a requested entity does not exist.
var ErrNotFound = errors.New("record not found")

// Store defines the persistence port for all database operations.
type Store interface {
	// DB exposes the underlying handle for read-only listing handlers
	// and the notification worker pool.
	DB() *gorm.DB

	// Transaction runs fn against a store bound to a single transaction.
	// Everything fn does commits or rolls back atomically.
	Transaction(ctx context.Context, fn func(tx Store) error) error

	GetUser(ctx context.Context, id string) (*model.User, error)
	GetLaundromat(ctx context.Context, id string) (*model.Laundromat, error)

	// GetMachineForUpdate locks the machine row for the duration of the
	// surrounding transaction, serializing concurrent bookings per machine.
	GetMachineForUpdate(ctx context.Context, id string) (*model.Machine, error)
	GetMachine(ctx context.Context, id string) (*model.Machine, error)
	SetMachineStatus(ctx context.Context, id string, status model.MachineStatus) error

	GetReservation(ctx context.Context, id string) (*model.Reservation, error)
	CreateReservation(ctx context.Context, r *model.Reservation) error
	// FindConflict returns the first non-cancelled reservation on the machine
	// whose margin-widened interval overlaps [start, end), or nil.
	FindConflict(ctx context.Context, machineID string, start, end time.Time) (*model.Reservation, error)
	// TransitionReservation flips status from one value to another and
	// reports whether any row matched. A false result means the reservation
	// was not in the expected state.
	TransitionReservation(ctx context.Context, id string, from, to model.ReservationStatus) (bool, error)
	CountActiveReservations(ctx context.Context, machineID string) (int64, error)
	ExpiredReservations(ctx context.Context, now time.Time) ([]model.Reservation, error)
	UpcomingReservations(ctx context.Context, from, to time.Time) ([]model.Reservation, error)

	CreateNotification(ctx context.Context, n *model.Notification) error
	HasRecentNotification(ctx context.Context, recipientID string, category model.NotificationCategory, since time.Time) (bool, error)
}

// gormStore implements the Store interface using GORM.
type gormStore struct {
	db      *gorm.DB
	timeout time.Duration
}

const defaultQueryTimeout = 5 * time.Second

// NewGormStore creates a new GORM-backed store. Every query runs under the
// given timeout; zero selects a 5 second default.
func NewGormStore(db *gorm.DB, timeout time.Duration) Store {
	if timeout <= 0 {
		timeout = defaultQueryTimeout
	}
	return &gormStore{db: db, timeout: timeout}
}

func (s *gormStore) DB() *gorm.DB {
	return s.db
}

func (s *gormStore) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.timeout)
}

func (s *gormStore) Transaction(ctx context.Context, fn func(tx Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormStore{db: tx, timeout: s.timeout})
	})
}

func (s *gormStore) GetUser(ctx context.Context, id string) (*model.User, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	var u model.User
	if err := s.db.WithContext(ctx).First(&u, "id = ?", id).Error; err != nil {
		return nil, translate(err, "user")
	}
	return &u, nil
}

func (s *gormStore) GetLaundromat(ctx context.Context, id string) (*model.Laundromat, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	var l model.Laundromat
	if err := s.db.WithContext(ctx).First(&l, "id = ?", id).Error; err != nil {
		return nil, translate(err, "laundromat")
	}
	return &l, nil
}

func (s *gormStore) GetMachine(ctx context.Context, id string) (*model.Machine, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	var m model.Machine
	if err := s.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		return nil, translate(err, "machine")
	}
	return &m, nil
}

func (s *gormStore) GetMachineForUpdate(ctx context.Context, id string) (*model.Machine, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	q := s.db.WithContext(ctx)
	// SQLite has no SELECT ... FOR UPDATE; its writer lock covers us in tests.
	if s.db.Dialector.Name() == "postgres" {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var m model.Machine
	if err := q.First(&m, "id = ?", id).Error; err != nil {
		return nil, translate(err, "machine")
	}
	return &m, nil
}

func (s *gormStore) SetMachineStatus(ctx context.Context, id string, status model.MachineStatus) error {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	res := s.db.WithContext(ctx).Model(&model.Machine{}).
		Where("id = ?", id).
		Update("status", status)
	if res.Error != nil {
		return fmt.Errorf("failed to set machine %s status: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("machine %s: %w", id, ErrNotFound)
	}
	return nil
}

func (s *gormStore) GetReservation(ctx context.Context, id string) (*model.Reservation, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	var r model.Reservation
	if err := s.db.WithContext(ctx).First(&r, "id = ?", id).Error; err != nil {
		return nil, translate(err, "reservation")
	}
	return &r, nil
}

func (s *gormStore) CreateReservation(ctx context.Context, r *model.Reservation) error {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	if err := s.db.WithContext(ctx).Create(r).Error; err != nil {
		return fmt.Errorf("failed to create reservation: %w", err)
	}
	return nil
}

func (s *gormStore) FindConflict(ctx context.Context, machineID string, start, end time.Time) (*model.Reservation, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	var r model.Reservation
	err := s.db.WithContext(ctx).
		Where("machine_id = ? AND status <> ?", machineID, model.ReservationCancelled).
		Where("start < ? AND \"end\" > ?", end.Add(model.ConflictMargin), start.Add(-model.ConflictMargin)).
		First(&r).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("conflict query for machine %s failed: %w", machineID, err)
	}
	return &r, nil
}

func (s *gormStore) TransitionReservation(ctx context.Context, id string, from, to model.ReservationStatus) (bool, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	res := s.db.WithContext(ctx).Model(&model.Reservation{}).
		Where("id = ? AND status = ?", id, from).
		Update("status", to)
	if res.Error != nil {
		return false, fmt.Errorf("failed to transition reservation %s: %w", id, res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (s *gormStore) CountActiveReservations(ctx context.Context, machineID string) (int64, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	var count int64
	err := s.db.WithContext(ctx).Model(&model.Reservation{}).
		Where("machine_id = ? AND status = ?", machineID, model.ReservationInProgress).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("active reservation count for machine %s failed: %w", machineID, err)
	}
	return count, nil
}

func (s *gormStore) ExpiredReservations(ctx context.Context, now time.Time) ([]model.Reservation, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	var list []model.Reservation
	err := s.db.WithContext(ctx).
		Where("status = ? AND \"end\" < ?", model.ReservationInProgress, now).
		Find(&list).Error
	if err != nil {
		return nil, fmt.Errorf("expired reservation query failed: %w", err)
	}
	return list, nil
}

func (s *gormStore) UpcomingReservations(ctx context.Context, from, to time.Time) ([]model.Reservation, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	var list []model.Reservation
	err := s.db.WithContext(ctx).
		Where("status = ? AND start >= ? AND start <= ?", model.ReservationInProgress, from, to).
		Find(&list).Error
	if err != nil {
		return nil, fmt.Errorf("upcoming reservation query failed: %w", err)
	}
	return list, nil
}

func (s *gormStore) CreateNotification(ctx context.Context, n *model.Notification) error {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	if err := s.db.WithContext(ctx).Create(n).Error; err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}
	return nil
}

func (s *gormStore) HasRecentNotification(ctx context.Context, recipientID string, category model.NotificationCategory, since time.Time) (bool, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	var count int64
	err := s.db.WithContext(ctx).Model(&model.Notification{}).
		Where("recipient_id = ? AND category = ? AND created_at >= ?", recipientID, category, since).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("notification lookback query failed: %w", err)
	}
	return count > 0, nil
}

func translate(err error, what string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s: %w", what, ErrNotFound)
	}
	return fmt.Errorf("failed to fetch %s: %w", what, err)
}
