package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/parking-spot-reservation/internal/model"
	"github.com/iliyamo/parking-spot-reservation/internal/repository/memory"
	"github.com/iliyamo/parking-spot-reservation/internal/service"
)

func TestGetOccupancyStats(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	spots := seedSpots(store)
	stats := service.NewOccupancyStats(store, service.NewCalendar(nil))

	add := func(spot, fromH, fromM, toH, toM int, st model.ReservationStatus) {
		store.AddReservation(model.Reservation{
			OwnerID: uint64(spot), SpotID: spotByNumber(spots, spot).ID,
			StartTime: at(tuesday, fromH, fromM), EndTime: at(tuesday, toH, toM),
			ReservationDate: tuesday, Status: st,
		})
	}
	add(1, 9, 0, 11, 0, model.StatusConfirmed)
	add(2, 10, 30, 12, 0, model.StatusPending)
	add(3, 10, 0, 11, 0, model.StatusCancelled)

	hours, err := stats.GetOccupancyStats(ctx, at(tuesday, 15, 0))
	require.NoError(t, err)
	require.Len(t, hours, service.LastHour-service.FirstHour)
	assert.Equal(t, service.FirstHour, hours[0].Hour)
	assert.Equal(t, service.LastHour-1, hours[len(hours)-1].Hour)

	byHour := map[int]service.HourlyOccupancy{}
	for _, h := range hours {
		byHour[h.Hour] = h
	}
	assert.Equal(t, 0, byHour[8].Occupied)
	assert.Equal(t, 1, byHour[9].Occupied)
	assert.Equal(t, 2, byHour[10].Occupied)
	assert.Equal(t, 1, byHour[11].Occupied, "11:00 end does not count for the 11 slot of spot 1")
	assert.Equal(t, 0, byHour[12].Occupied)

	assert.Equal(t, 2, byHour[10].Available)
	assert.InDelta(t, 50.0, byHour[10].OccupancyRate, 1e-9)
	assert.InDelta(t, 0.0, byHour[6].OccupancyRate, 1e-9)
}

func TestGetOccupancyStatsWithoutSpots(t *testing.T) {
	stats := service.NewOccupancyStats(memory.New(), service.NewCalendar(nil))
	hours, err := stats.GetOccupancyStats(context.Background(), tuesday)
	require.NoError(t, err)
	for _, h := range hours {
		assert.Zero(t, h.Available)
		assert.Zero(t, h.OccupancyRate)
	}

	_, err = stats.GetOccupancyStats(context.Background(), model.Reservation{}.StartTime)
	assert.ErrorIs(t, err, service.ErrValidation)
}
