package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/iliyamo/parking-spot-reservation/internal/log"
	"github.com/iliyamo/parking-spot-reservation/internal/model"
)

// ArrivalResult is the outcome of an arrival check at the entrance.
type ArrivalResult struct {
	Allowed     bool
	Reservation *model.Reservation
}

// Lifecycle owns the reservation state machine.
type Lifecycle struct {
	store  Store
	alloc  *Allocator
	clock  Clock
	cal    Calendar
	events EventPublisher
}

// LifecycleOption configures optional Lifecycle collaborators.
type LifecycleOption func(*Lifecycle)

// WithEventPublisher publishes reservation transitions to p.
func WithEventPublisher(p EventPublisher) LifecycleOption {
	return func(l *Lifecycle) { l.events = p }
}

// NewLifecycle wires a Lifecycle. Day buckets follow the allocator's
// calendar.
func NewLifecycle(store Store, alloc *Allocator, clock Clock, opts ...LifecycleOption) *Lifecycle {
	if store == nil || alloc == nil || clock == nil {
		panic("nil dependency passed to NewLifecycle")
	}
	l := &Lifecycle{store: store, alloc: alloc, clock: clock, cal: alloc.cal}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// CreateReservation books the lowest numbered free spot for [start, end) on
// date and returns the confirmed reservation with its spot resolved.
func (l *Lifecycle) CreateReservation(ctx context.Context, ownerID uint64, date, start, end time.Time) (model.Reservation, error) {
	if ownerID == 0 {
		return model.Reservation{}, invalid("owner_id", "is required")
	}
	if date.IsZero() {
		return model.Reservation{}, invalid("date", "is required")
	}
	if l.cal.IsBlackout(date) {
		return model.Reservation{}, ErrBlackoutDay
	}
	if err := validateWindow(start, end); err != nil {
		return model.Reservation{}, err
	}
	day := l.cal.Day(date)
	if start.Before(day) || end.After(l.cal.NextDay(day)) {
		return model.Reservation{}, invalid("window", "must fall within the reservation date")
	}
	now := l.clock.Now()
	if !end.After(now) {
		return model.Reservation{}, invalid("window", "has already ended")
	}

	var created model.Reservation
	err := l.store.Allocate(ctx, ownerID, func(tx AllocationTx) error {
		owner := tx.Owner()
		if owner.Code == "" {
			return invalid("owner", "has no pass code assigned")
		}
		exists, err := tx.HasReservationOnDay(ctx, ownerID, day)
		if err != nil {
			return persistence("check daily limit", err)
		}
		if exists {
			return ErrDailyLimitExceeded
		}
		spot, err := l.alloc.firstFree(ctx, tx, tx.Spots(), day, start, end)
		if err != nil {
			return err
		}
		if spot == nil {
			return ErrNoAvailability
		}
		created = model.Reservation{
			OwnerID:         ownerID,
			Code:            owner.Code,
			SpotID:          spot.ID,
			StartTime:       start.UTC(),
			EndTime:         end.UTC(),
			ReservationDate: day,
			Status:          model.StatusConfirmed,
			CreatedAt:       now,
			UpdatedAt:       now,
		}
		if err := tx.CreateReservation(ctx, &created); err != nil {
			return persistence("create reservation", err)
		}
		created.Spot = spot
		return nil
	})
	if err != nil {
		return model.Reservation{}, persistence("allocate", err)
	}
	log.Info(ctx, "reservation created",
		log.ID("reservation_id", created.ID),
		log.ID("owner_id", ownerID),
		log.ID("spot_id", created.SpotID))
	publishReservation(ctx, l.events, EventReservationCreated, created)
	return created, nil
}

// CancelReservation is the self-service cancellation. A reservation owned
// by someone else is reported as not found.
func (l *Lifecycle) CancelReservation(ctx context.Context, id, requesterID uint64) (model.Reservation, error) {
	r, err := l.store.GetReservation(ctx, id)
	if err != nil {
		return model.Reservation{}, persistence("get reservation", err)
	}
	if r.OwnerID != requesterID {
		return model.Reservation{}, NotFound("reservation", id)
	}
	return l.cancel(ctx, r)
}

// CancelReservationAsOperator cancels without an ownership check. It is
// reserved for on-site staff.
func (l *Lifecycle) CancelReservationAsOperator(ctx context.Context, id uint64) (model.Reservation, error) {
	r, err := l.store.GetReservation(ctx, id)
	if err != nil {
		return model.Reservation{}, persistence("get reservation", err)
	}
	return l.cancel(ctx, r)
}

func (l *Lifecycle) cancel(ctx context.Context, r model.Reservation) (model.Reservation, error) {
	if r.Status.IsTerminal() {
		return model.Reservation{}, ErrAlreadyTerminal
	}
	now := l.clock.Now()
	if !now.Before(r.StartTime) {
		return model.Reservation{}, ErrAlreadyStarted
	}
	ok, err := l.store.TransitionStatus(ctx, r.ID, now, model.StatusCancelled, model.ActiveStatuses...)
	if err != nil {
		return model.Reservation{}, persistence("cancel reservation", err)
	}
	if !ok {
		// lost a race with another transition
		return model.Reservation{}, ErrAlreadyTerminal
	}
	r.Status = model.StatusCancelled
	publishReservation(ctx, l.events, EventReservationCancelled, r)
	return r, nil
}

// MarkCompleted forces a reservation to completed. Absent and terminal
// reservations are left alone and report false.
func (l *Lifecycle) MarkCompleted(ctx context.Context, id uint64) (bool, error) {
	r, err := l.store.GetReservation(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, persistence("get reservation", err)
	}
	if r.Status.IsTerminal() {
		return false, nil
	}
	ok, err := l.store.TransitionStatus(ctx, id, l.clock.Now(), model.StatusCompleted, model.ActiveStatuses...)
	if err != nil {
		return false, persistence("complete reservation", err)
	}
	if ok {
		r.Status = model.StatusCompleted
		publishReservation(ctx, l.events, EventReservationCompleted, r)
	}
	return ok, nil
}

// ConfirmArrival checks whether the holder of reservation id may enter.
// Only confirmed reservations are allowed; nothing is modified.
func (l *Lifecycle) ConfirmArrival(ctx context.Context, id uint64) (ArrivalResult, error) {
	r, found, err := l.activeReservation(ctx, id)
	if err != nil || !found {
		return ArrivalResult{}, err
	}
	return ArrivalResult{Allowed: r.Status == model.StatusConfirmed, Reservation: &r}, nil
}

// CancelExpiredArrival cancels a confirmed reservation whose holder did not
// show up in time. Unlike CancelReservation it applies after the start.
func (l *Lifecycle) CancelExpiredArrival(ctx context.Context, id uint64) (ArrivalResult, error) {
	r, found, err := l.activeReservation(ctx, id)
	if err != nil || !found {
		return ArrivalResult{}, err
	}
	if r.Status != model.StatusConfirmed {
		return ArrivalResult{Reservation: &r}, nil
	}
	ok, err := l.store.TransitionStatus(ctx, id, l.clock.Now(), model.StatusCancelled, model.StatusConfirmed)
	if err != nil {
		return ArrivalResult{}, persistence("cancel expired arrival", err)
	}
	if !ok {
		return ArrivalResult{}, nil
	}
	r.Status = model.StatusCancelled
	publishReservation(ctx, l.events, EventReservationArrivalCancelled, r)
	return ArrivalResult{Allowed: true, Reservation: &r}, nil
}

// activeReservation loads a non-terminal reservation. found is false when
// the reservation is absent or terminal.
func (l *Lifecycle) activeReservation(ctx context.Context, id uint64) (model.Reservation, bool, error) {
	r, err := l.store.GetReservation(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return model.Reservation{}, false, nil
	}
	if err != nil {
		return model.Reservation{}, false, persistence("get reservation", err)
	}
	if r.Status.IsTerminal() {
		return model.Reservation{}, false, nil
	}
	return r, true, nil
}

// LookupByCode resolves a pass code to the spot of its active reservation.
// Cancelled, completed and already ended reservations never match.
func (l *Lifecycle) LookupByCode(ctx context.Context, code string) (uint64, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return 0, invalid("code", "is required")
	}
	r, err := l.store.FindActiveByCode(ctx, code, l.clock.Now())
	if err != nil {
		return 0, persistence("find reservation by code", err)
	}
	return r.SpotID, nil
}

// ListOwnerReservations returns the owner's non-terminal reservations.
func (l *Lifecycle) ListOwnerReservations(ctx context.Context, ownerID uint64) ([]model.Reservation, error) {
	rs, err := l.store.ListOwnerReservations(ctx, ownerID)
	if err != nil {
		return nil, persistence("list owner reservations", err)
	}
	return rs, nil
}
