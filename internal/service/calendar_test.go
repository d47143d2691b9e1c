package service_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/parking-spot-reservation/internal/service"
)

func TestCalendarUTC(t *testing.T) {
	cal := service.NewCalendar(nil)
	assert.Equal(t, time.UTC, cal.Location())

	ts := time.Date(2024, 1, 2, 23, 59, 0, 0, time.UTC)
	assert.Equal(t, tuesday, cal.Day(ts))
	assert.Equal(t, tuesday.AddDate(0, 0, 1), cal.NextDay(tuesday))
	assert.Equal(t, at(tuesday, 9, 0), cal.At(tuesday, 9))
	assert.Equal(t, "2024-01-02", cal.FormatDate(tuesday))

	assert.True(t, cal.IsBlackout(sunday))
	assert.True(t, cal.IsBlackout(at(sunday, 23, 59)))
	assert.False(t, cal.IsBlackout(monday))
}

func TestCalendarLocation(t *testing.T) {
	plus3 := time.FixedZone("UTC+3", 3*60*60)
	cal := service.NewCalendar(plus3)

	// 22:30 UTC on Saturday is already Sunday at UTC+3.
	sat := time.Date(2024, 1, 6, 22, 30, 0, 0, time.UTC)
	assert.True(t, cal.IsBlackout(sat))
	assert.Equal(t, time.Date(2024, 1, 6, 21, 0, 0, 0, time.UTC), cal.Day(sat))
	assert.Equal(t, "2024-01-07", cal.FormatDate(cal.Day(sat)))
	assert.Equal(t, time.UTC, cal.Day(sat).Location())
}

func TestCalendarParseDate(t *testing.T) {
	cal := service.NewCalendar(nil)

	d, err := cal.ParseDate("2024-01-02")
	require.NoError(t, err)
	assert.Equal(t, tuesday, d)

	d, err = cal.ParseDate("2024-01-02T15:04:05Z")
	require.NoError(t, err)
	assert.Equal(t, tuesday, d)

	_, err = cal.ParseDate("02/01/2024")
	require.ErrorIs(t, err, service.ErrValidation)
}

func TestCalendarParseTimeOn(t *testing.T) {
	cal := service.NewCalendar(time.FixedZone("UTC+1", 60*60))
	day, err := cal.ParseDate("2024-01-02")
	require.NoError(t, err)

	got, err := cal.ParseTimeOn(day, "09:30")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 1, 2, 8, 30, 0, 0, time.UTC), got)

	got, err = cal.ParseTimeOn(day, "2024-01-02T10:00:00+02:00")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 1, 2, 8, 0, 0, 0, time.UTC), got)

	_, err = cal.ParseTimeOn(day, "9am")
	require.ErrorIs(t, err, service.ErrValidation)
}
