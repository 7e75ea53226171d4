package store

import (
	"context"
	"database/sql/driver"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"laundry-booking-backend/internal/model"
)

// A helper function to create a mock database connection.
func newTestDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn: db,
	}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	return gormDB, mock
}

// Any is a helper for sqlmock to match any argument.
type Any struct{}

// Match satisfies the sqlmock.Argument interface
func (a Any) Match(v driver.Value) bool {
	return true
}

func TestFindConflict(t *testing.T) {
	machineID := "machine-1"
	start := time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC)
	end := start.Add(45 * time.Minute)

	t.Run("no overlapping reservation", func(t *testing.T) {
		gormDB, mock := newTestDB(t)
		s := NewGormStore(gormDB, time.Second)

		mock.ExpectQuery(`SELECT \* FROM "reservations" WHERE machine_id = \$1 AND status <> \$2 AND \(?start < \$3 AND "end" > \$4\)?.*LIMIT \$[0-9]+`).
			WithArgs(machineID, string(model.ReservationCancelled),
				end.Add(model.ConflictMargin), start.Add(-model.ConflictMargin), 1).
			WillReturnRows(sqlmock.NewRows([]string{"id"}))

		conflict, err := s.FindConflict(context.Background(), machineID, start, end)
		require.NoError(t, err)
		assert.Nil(t, conflict)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("overlap found", func(t *testing.T) {
		gormDB, mock := newTestDB(t)
		s := NewGormStore(gormDB, time.Second)

		mock.ExpectQuery(`SELECT \* FROM "reservations" WHERE machine_id = \$1 AND status <> \$2`).
			WithArgs(machineID, string(model.ReservationCancelled), Any{}, Any{}, 1).
			WillReturnRows(sqlmock.NewRows([]string{"id", "machine_id", "status", "start", "end"}).
				AddRow("res-9", machineID, string(model.ReservationInProgress), start, end))

		conflict, err := s.FindConflict(context.Background(), machineID, start, end)
		require.NoError(t, err)
		require.NotNil(t, conflict)
		assert.Equal(t, "res-9", conflict.ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestTransitionReservation(t *testing.T) {
	t.Run("matching row transitions", func(t *testing.T) {
		gormDB, mock := newTestDB(t)
		s := NewGormStore(gormDB, time.Second)

		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE "reservations" SET .* WHERE id = \$[0-9]+ AND status = \$[0-9]+`).
			WithArgs(string(model.ReservationDone), Any{}, "res-1", string(model.ReservationInProgress)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		ok, err := s.TransitionReservation(context.Background(), "res-1",
			model.ReservationInProgress, model.ReservationDone)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("terminal state matches nothing", func(t *testing.T) {
		gormDB, mock := newTestDB(t)
		s := NewGormStore(gormDB, time.Second)

		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE "reservations" SET .* WHERE id = \$[0-9]+ AND status = \$[0-9]+`).
			WithArgs(string(model.ReservationCancelled), Any{}, "res-1", string(model.ReservationInProgress)).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectCommit()

		ok, err := s.TransitionReservation(context.Background(), "res-1",
			model.ReservationInProgress, model.ReservationCancelled)
		require.NoError(t, err)
		assert.False(t, ok)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGetMachineForUpdateLocksRowOnPostgres(t *testing.T) {
	gormDB, mock := newTestDB(t)
	s := NewGormStore(gormDB, time.Second)

	mock.ExpectQuery(`SELECT \* FROM "machines" WHERE id = \$1.*FOR UPDATE`).
		WithArgs("machine-1", 1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "status", "kind"}).
			AddRow("machine-1", string(model.MachineAvailable), string(model.KindWasher)))

	m, err := s.GetMachineForUpdate(context.Background(), "machine-1")
	require.NoError(t, err)
	assert.Equal(t, model.MachineAvailable, m.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHasRecentNotification(t *testing.T) {
	gormDB, mock := newTestDB(t)
	s := NewGormStore(gormDB, time.Second)

	since := time.Date(2025, 3, 10, 9, 40, 0, 0, time.UTC)

	mock.ExpectQuery(`SELECT count\(\*\) FROM "notifications" WHERE recipient_id = \$1 AND category = \$2 AND created_at >= \$3`).
		WithArgs("user-1", string(model.NotifReservationReminder), since).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	seen, err := s.HasRecentNotification(context.Background(), "user-1", model.NotifReservationReminder, since)
	require.NoError(t, err)
	assert.True(t, seen)
	assert.NoError(t, mock.ExpectationsWereMet())
}
