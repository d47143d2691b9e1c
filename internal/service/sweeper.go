package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/iliyamo/parking-spot-reservation/internal/log"
	"github.com/iliyamo/parking-spot-reservation/internal/scheduler"
)

// DefaultSweepInterval is the cadence of the expiry sweep.
const DefaultSweepInterval = 30 * time.Minute

// Sweeper completes confirmed reservations whose window has passed.
type Sweeper struct {
	store ReservationStore
	clock Clock
}

// NewSweeper returns a Sweeper over store.
func NewSweeper(store ReservationStore, clock Clock) *Sweeper {
	if store == nil || clock == nil {
		panic("nil dependency passed to NewSweeper")
	}
	return &Sweeper{store: store, clock: clock}
}

// CompleteExpired transitions every confirmed reservation with an end time
// before now to completed. Running it again without new expiries changes
// nothing.
func (s *Sweeper) CompleteExpired(ctx context.Context) (int64, error) {
	n, err := s.store.CompleteExpired(ctx, s.clock.Now())
	if err != nil {
		return 0, persistence("complete expired reservations", err)
	}
	if n > 0 {
		log.Info(ctx, "reservations completed", slog.Int64("count", n))
	}
	return n, nil
}

// Register schedules the sweep on sch: once when sch starts, then every
// interval. A non-positive interval falls back to DefaultSweepInterval.
func (s *Sweeper) Register(sch *scheduler.Scheduler, every time.Duration) error {
	if every <= 0 {
		every = DefaultSweepInterval
	}
	return sch.Add(scheduler.Job{
		Name:       "complete-expired-reservations",
		Every:      every,
		RunOnStart: true,
		Run: func(ctx context.Context) error {
			_, err := s.CompleteExpired(ctx)
			return err
		},
	})
}
