package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/parking-spot-reservation/internal/model"
	"github.com/iliyamo/parking-spot-reservation/internal/service"
)

var day = time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)

func hour(h int) time.Time { return day.Add(time.Duration(h) * time.Hour) }

func TestFindActiveByCodePrefersEarliestStart(t *testing.T) {
	ctx := context.Background()
	s := New()
	sp := s.AddSpot(model.ParkingSpot{SpotNumber: 1, IsActive: true})
	later := s.AddReservation(model.Reservation{Code: "111111", SpotID: sp.ID, StartTime: hour(14), EndTime: hour(15), ReservationDate: day, Status: model.StatusConfirmed})
	earlier := s.AddReservation(model.Reservation{Code: "111111", SpotID: sp.ID, StartTime: hour(9), EndTime: hour(10), ReservationDate: day, Status: model.StatusPending})
	s.AddReservation(model.Reservation{Code: "111111", SpotID: sp.ID, StartTime: hour(7), EndTime: hour(8), ReservationDate: day, Status: model.StatusCancelled})

	r, err := s.FindActiveByCode(ctx, "111111", hour(6))
	require.NoError(t, err)
	assert.Equal(t, earlier.ID, r.ID)
	require.NotNil(t, r.Spot)

	r, err = s.FindActiveByCode(ctx, "111111", hour(11))
	require.NoError(t, err)
	assert.Equal(t, later.ID, r.ID)

	_, err = s.FindActiveByCode(ctx, "111111", hour(16))
	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestTransitionStatusIsConditional(t *testing.T) {
	ctx := context.Background()
	s := New()
	r := s.AddReservation(model.Reservation{Status: model.StatusConfirmed, ReservationDate: day})

	ok, err := s.TransitionStatus(ctx, r.ID, hour(8), model.StatusCancelled, model.StatusPending)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = s.TransitionStatus(ctx, r.ID, hour(9), model.StatusCancelled, model.ActiveStatuses...)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 1, s.StatusChanges(r.ID))
	got, err := s.GetReservation(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, hour(9), got.UpdatedAt)

	ok, err = s.TransitionStatus(ctx, 404, hour(9), model.StatusCancelled, model.ActiveStatuses...)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestUpdateUserCodeConflicts(t *testing.T) {
	ctx := context.Background()
	s := New()
	a := s.AddUser(model.User{Code: "111111", IsActive: true})
	b := s.AddUser(model.User{IsActive: true})

	assert.ErrorIs(t, s.UpdateUserCode(ctx, b.ID, "111111", hour(8)), service.ErrConflict)
	assert.ErrorIs(t, s.UpdateUserCode(ctx, 404, "222222", hour(8)), service.ErrNotFound)
	require.NoError(t, s.UpdateUserCode(ctx, a.ID, "111111", hour(8)), "keeping your own code is fine")

	u, err := s.GetUser(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, hour(8), u.UpdatedAt)

	inUse, err := s.CodeInUse(ctx, "111111")
	require.NoError(t, err)
	assert.True(t, inUse)
}

func TestAllocateUnknownOwner(t *testing.T) {
	s := New()
	called := false
	err := s.Allocate(context.Background(), 404, func(service.AllocationTx) error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, service.ErrNotFound)
	assert.False(t, called)
}

func TestAllocateSeesLockedSpotsInOrder(t *testing.T) {
	s := New()
	s.AddSpot(model.ParkingSpot{SpotNumber: 2, IsActive: true})
	s.AddSpot(model.ParkingSpot{SpotNumber: 1, IsActive: true})
	s.AddSpot(model.ParkingSpot{SpotNumber: 3})
	u := s.AddUser(model.User{Code: "111111", IsActive: true})

	err := s.Allocate(context.Background(), u.ID, func(tx service.AllocationTx) error {
		assert.Equal(t, u.ID, tx.Owner().ID)
		spots := tx.Spots()
		require.Len(t, spots, 2)
		assert.Equal(t, 1, spots[0].SpotNumber)
		assert.Equal(t, 2, spots[1].SpotNumber)
		return nil
	})
	require.NoError(t, err)
}

func TestNextConfirmedOnSpotWindow(t *testing.T) {
	ctx := context.Background()
	s := New()
	sp := s.AddSpot(model.ParkingSpot{SpotNumber: 1, IsActive: true})
	s.AddReservation(model.Reservation{SpotID: sp.ID, StartTime: hour(10), EndTime: hour(11), ReservationDate: day, Status: model.StatusPending})
	want := s.AddReservation(model.Reservation{SpotID: sp.ID, StartTime: hour(10).Add(30 * time.Minute), EndTime: hour(11), ReservationDate: day, Status: model.StatusConfirmed})

	r, err := s.NextConfirmedOnSpot(ctx, 1, hour(10), hour(11))
	require.NoError(t, err)
	assert.Equal(t, want.ID, r.ID)

	_, err = s.NextConfirmedOnSpot(ctx, 1, hour(9), hour(10).Add(30*time.Minute))
	assert.ErrorIs(t, err, service.ErrNotFound, "upper bound is exclusive")

	_, err = s.NextConfirmedOnSpot(ctx, 9, hour(9), hour(12))
	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestPurgeExpiredNotifications(t *testing.T) {
	ctx := context.Background()
	s := New()
	n := model.Notification{RecipientUserID: 1, CreatedAt: hour(0), ExpiresAt: hour(24)}
	require.NoError(t, s.CreateNotification(ctx, &n))
	assert.NotZero(t, n.ID)

	c, err := s.PurgeExpiredNotifications(ctx, hour(23))
	require.NoError(t, err)
	assert.Zero(t, c)

	c, err = s.PurgeExpiredNotifications(ctx, hour(24))
	require.NoError(t, err)
	assert.EqualValues(t, 1, c)
}

func TestDailyLimitIgnoresCode(t *testing.T) {
	ctx := context.Background()
	s := New()
	owner := s.AddUser(model.User{Code: "222222", IsActive: true})
	s.AddSpot(model.ParkingSpot{SpotNumber: 1, IsActive: true})
	s.AddReservation(model.Reservation{OwnerID: owner.ID, Code: "111111", ReservationDate: day,
		StartTime: hour(9), EndTime: hour(10), Status: model.StatusCompleted})

	err := s.Allocate(ctx, owner.ID, func(tx service.AllocationTx) error {
		held, err := tx.HasReservationOnDay(ctx, owner.ID, day)
		require.NoError(t, err)
		assert.True(t, held, "a reservation under an older code still counts")

		held, err = tx.HasReservationOnDay(ctx, owner.ID, day.AddDate(0, 0, 1))
		require.NoError(t, err)
		assert.False(t, held)
		return nil
	})
	require.NoError(t, err)
}
