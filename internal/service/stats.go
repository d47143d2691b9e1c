package service

import (
	"context"
	"time"
)

// Opening hours covered by the occupancy report, as [FirstHour, LastHour).
const (
	FirstHour = 6
	LastHour  = 22
)

// HourlyOccupancy is the reservation load of one hour slot.
type HourlyOccupancy struct {
	Hour          int
	Occupied      int
	Available     int
	OccupancyRate float64
}

// OccupancyStats reports per-hour load against the active spot count.
type OccupancyStats struct {
	store Store
	cal   Calendar
}

// NewOccupancyStats returns an OccupancyStats over store.
func NewOccupancyStats(store Store, cal Calendar) *OccupancyStats {
	if store == nil {
		panic("nil store passed to NewOccupancyStats")
	}
	return &OccupancyStats{store: store, cal: cal}
}

// GetOccupancyStats counts, for every hour slot of the opening hours on
// date, the non-terminal reservations overlapping it.
func (s *OccupancyStats) GetOccupancyStats(ctx context.Context, date time.Time) ([]HourlyOccupancy, error) {
	if date.IsZero() {
		return nil, invalid("date", "is required")
	}
	capacity, err := s.store.CountActiveSpots(ctx)
	if err != nil {
		return nil, persistence("count active spots", err)
	}
	day := s.cal.Day(date)
	rs, err := s.store.ListDayReservations(ctx, day)
	if err != nil {
		return nil, persistence("list day reservations", err)
	}

	out := make([]HourlyOccupancy, 0, LastHour-FirstHour)
	for h := FirstHour; h < LastHour; h++ {
		from, to := s.cal.At(day, h), s.cal.At(day, h+1)
		occupied := 0
		for _, r := range rs {
			if r.Overlaps(from, to) {
				occupied++
			}
		}
		hs := HourlyOccupancy{Hour: h, Occupied: occupied, Available: capacity - occupied}
		if hs.Available < 0 {
			hs.Available = 0
		}
		if capacity > 0 {
			hs.OccupancyRate = float64(occupied) / float64(capacity) * 100
		}
		out = append(out, hs)
	}
	return out, nil
}
