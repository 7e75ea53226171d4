package reconcile

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"laundry-booking-backend/internal/booking"
	"laundry-booking-backend/internal/clock"
	"laundry-booking-backend/internal/db"
	"laundry-booking-backend/internal/model"
	"laundry-booking-backend/internal/notification"
	"laundry-booking-backend/internal/store"
)

type jobEnv struct {
	db    *gorm.DB
	store store.Store
	clock *clock.Fixed
	job   *Job

	customer model.User
	site     model.Laundromat
	washer   model.Machine
	dryer    model.Machine
}

func newJobEnv(t *testing.T) *jobEnv {
	t.Helper()

	gormDB, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.Migrate(gormDB))

	env := &jobEnv{
		db:    gormDB,
		store: store.NewGormStore(gormDB, 5*time.Second),
		clock: clock.NewFixed(time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC)),
	}

	// The real notifier (without a push pool) so reminder rows land in the
	// store and the dedup lookback sees them.
	notifier := notification.NewService(env.store, env.clock, nil)
	svc := booking.NewService(env.store, env.clock, notifier)
	env.job = NewJob(env.store, svc, notifier)

	env.customer = model.User{ID: uuid.NewString(), Name: "Alice", Role: model.RoleCustomer}
	require.NoError(t, gormDB.Create(&env.customer).Error)
	operator := model.User{ID: uuid.NewString(), Name: "Olga", Role: model.RoleOperator}
	require.NoError(t, gormDB.Create(&operator).Error)

	env.site = model.Laundromat{ID: uuid.NewString(), Name: "Suds Central", OwnerID: operator.ID}
	require.NoError(t, gormDB.Create(&env.site).Error)

	env.washer = model.Machine{
		ID: uuid.NewString(), LaundromatID: env.site.ID,
		Kind: model.KindWasher, Status: model.MachineAvailable, Price: 12,
	}
	env.dryer = model.Machine{
		ID: uuid.NewString(), LaundromatID: env.site.ID,
		Kind: model.KindDryer, Status: model.MachineAvailable, Price: 8,
	}
	require.NoError(t, gormDB.Create(&env.washer).Error)
	require.NoError(t, gormDB.Create(&env.dryer).Error)

	return env
}

func (e *jobEnv) seedReservation(t *testing.T, machineID string, start, end time.Time, busy bool) model.Reservation {
	t.Helper()
	r := model.Reservation{
		ID: uuid.NewString(), CustomerID: e.customer.ID, MachineID: machineID,
		Start: start, End: end, Status: model.ReservationInProgress,
	}
	require.NoError(t, e.db.Create(&r).Error)
	if busy {
		require.NoError(t, e.db.Model(&model.Machine{}).Where("id = ?", machineID).
			Update("status", model.MachineInUse).Error)
	}
	return r
}

func (e *jobEnv) machineStatus(t *testing.T, id string) model.MachineStatus {
	t.Helper()
	var m model.Machine
	require.NoError(t, e.db.First(&m, "id = ?", id).Error)
	return m.Status
}

func tat(hour, min int) time.Time {
	return time.Date(2025, 3, 10, hour, min, 0, 0, time.UTC)
}

func TestRunCompletesExpiredAndSendsReminder(t *testing.T) {
	env := newJobEnv(t)
	ctx := context.Background()

	expired := env.seedReservation(t, env.washer.ID, tat(9, 5), tat(9, 50), true)
	upcoming := env.seedReservation(t, env.dryer.ID, tat(10, 10), tat(10, 40), true)

	report, err := env.job.Run(ctx, tat(10, 0))
	require.NoError(t, err)
	assert.Equal(t, 1, report.Completed)
	assert.Equal(t, 1, report.RemindersSent)
	assert.Equal(t, 0, report.Failed)

	var stored model.Reservation
	require.NoError(t, env.db.First(&stored, "id = ?", expired.ID).Error)
	assert.Equal(t, model.ReservationDone, stored.Status)
	assert.Equal(t, model.MachineAvailable, env.machineStatus(t, env.washer.ID))

	// The upcoming one is untouched and its machine stays busy.
	require.NoError(t, env.db.First(&stored, "id = ?", upcoming.ID).Error)
	assert.Equal(t, model.ReservationInProgress, stored.Status)
	assert.Equal(t, model.MachineInUse, env.machineStatus(t, env.dryer.ID))

	var reminders []model.Notification
	require.NoError(t, env.db.Where("category = ?", model.NotifReservationReminder).Find(&reminders).Error)
	require.Len(t, reminders, 1)
	assert.Equal(t, env.customer.ID, reminders[0].RecipientID)
}

func TestRunIsIdempotent(t *testing.T) {
	env := newJobEnv(t)
	ctx := context.Background()

	env.seedReservation(t, env.washer.ID, tat(9, 5), tat(9, 50), true)
	env.seedReservation(t, env.dryer.ID, tat(10, 10), tat(10, 40), true)

	first, err := env.job.Run(ctx, tat(10, 0))
	require.NoError(t, err)
	require.Equal(t, 1, first.Completed)
	require.Equal(t, 1, first.RemindersSent)

	// One minute later, nothing new: completion already happened and the
	// reminder falls inside the 20-minute lookback.
	env.clock.Set(tat(10, 1))
	second, err := env.job.Run(ctx, tat(10, 1))
	require.NoError(t, err)
	assert.Equal(t, 0, second.Completed)
	assert.Equal(t, 0, second.RemindersSent)
	assert.Equal(t, 0, second.Failed)
}

func TestRunSkipsReservationsOutsideReminderWindow(t *testing.T) {
	env := newJobEnv(t)

	env.seedReservation(t, env.dryer.ID, tat(10, 20), tat(10, 50), true)

	report, err := env.job.Run(context.Background(), tat(10, 0))
	require.NoError(t, err)
	assert.Equal(t, 0, report.RemindersSent)
}

func TestRunDeduplicatesRemindersPerRecipient(t *testing.T) {
	env := newJobEnv(t)

	env.seedReservation(t, env.washer.ID, tat(10, 5), tat(10, 50), true)
	env.seedReservation(t, env.dryer.ID, tat(10, 10), tat(10, 40), true)

	report, err := env.job.Run(context.Background(), tat(10, 0))
	require.NoError(t, err)
	assert.Equal(t, 1, report.RemindersSent)
}

func TestRunContinuesPastFailures(t *testing.T) {
	env := newJobEnv(t)

	// A reservation pointing at a machine that no longer exists cannot be
	// completed; the sweep must still finish the healthy one.
	broken := env.seedReservation(t, uuid.NewString(), tat(9, 0), tat(9, 30), false)
	env.seedReservation(t, env.washer.ID, tat(9, 5), tat(9, 50), true)

	report, err := env.job.Run(context.Background(), tat(10, 0))
	require.NoError(t, err)
	assert.Equal(t, 1, report.Completed)
	assert.Equal(t, 1, report.Failed)

	var stored model.Reservation
	require.NoError(t, env.db.First(&stored, "id = ?", broken.ID).Error)
	assert.Equal(t, model.ReservationInProgress, stored.Status)
}

func TestRunRefusesConcurrentRuns(t *testing.T) {
	env := newJobEnv(t)

	env.job.mu.Lock()
	_, err := env.job.Run(context.Background(), tat(10, 0))
	env.job.mu.Unlock()

	assert.ErrorIs(t, err, ErrAlreadyRunning)
}
