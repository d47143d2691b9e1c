package service

import (
	"context"
	"time"

	"github.com/iliyamo/parking-spot-reservation/internal/model"
)

// SpotAvailability pairs a spot with whether a window is free on it.
type SpotAvailability struct {
	Spot      model.ParkingSpot
	Available bool
}

// Allocator finds free spots for a window. Spots are always considered in
// ascending spot number, so the lowest numbered free spot wins.
type Allocator struct {
	store Store
	cal   Calendar
}

// NewAllocator returns an Allocator over store using cal for day buckets.
func NewAllocator(store Store, cal Calendar) *Allocator {
	if store == nil {
		panic("nil store passed to NewAllocator")
	}
	return &Allocator{store: store, cal: cal}
}

// FindAvailableSpot returns the first active spot with no conflicting
// reservation for [start, end) on date, or nil when there is none. Sundays
// return nil without touching the store.
func (a *Allocator) FindAvailableSpot(ctx context.Context, date, start, end time.Time) (*model.ParkingSpot, error) {
	if a.cal.IsBlackout(date) {
		return nil, nil
	}
	if err := validateWindow(start, end); err != nil {
		return nil, err
	}
	spots, err := a.store.ListActiveSpots(ctx)
	if err != nil {
		return nil, persistence("list active spots", err)
	}
	return a.firstFree(ctx, a.store, spots, a.cal.Day(date), start, end)
}

// ListAvailableSpots reports every active spot, in allocation order, with
// whether [start, end) is free on it. Sundays yield an empty list.
func (a *Allocator) ListAvailableSpots(ctx context.Context, date, start, end time.Time) ([]SpotAvailability, error) {
	if a.cal.IsBlackout(date) {
		return []SpotAvailability{}, nil
	}
	if err := validateWindow(start, end); err != nil {
		return nil, err
	}
	spots, err := a.store.ListActiveSpots(ctx)
	if err != nil {
		return nil, persistence("list active spots", err)
	}
	day := a.cal.Day(date)
	out := make([]SpotAvailability, 0, len(spots))
	for _, sp := range spots {
		n, err := a.store.CountSpotConflicts(ctx, sp.ID, day, start, end)
		if err != nil {
			return nil, persistence("count spot conflicts", err)
		}
		out = append(out, SpotAvailability{Spot: sp, Available: n == 0})
	}
	return out, nil
}

// firstFree scans spots in the given order. Callers pass spots sorted by
// spot number.
func (a *Allocator) firstFree(ctx context.Context, cc ConflictCounter, spots []model.ParkingSpot, day, start, end time.Time) (*model.ParkingSpot, error) {
	for i := range spots {
		if !spots[i].IsActive {
			continue
		}
		n, err := cc.CountSpotConflicts(ctx, spots[i].ID, day, start, end)
		if err != nil {
			return nil, persistence("count spot conflicts", err)
		}
		if n == 0 {
			sp := spots[i]
			return &sp, nil
		}
	}
	return nil, nil
}

func validateWindow(start, end time.Time) error {
	if start.IsZero() || end.IsZero() {
		return invalid("window", "start and end are required")
	}
	if !start.Before(end) {
		return invalid("window", "start must be before end")
	}
	return nil
}
