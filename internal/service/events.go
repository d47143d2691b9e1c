package service

import (
	"context"
	"time"

	"github.com/iliyamo/parking-spot-reservation/internal/log"
	"github.com/iliyamo/parking-spot-reservation/internal/model"
)

// Reservation event names.
const (
	EventReservationCreated          = "reservation.created"
	EventReservationCancelled        = "reservation.cancelled"
	EventReservationArrivalCancelled = "reservation.arrival_cancelled"
	EventReservationCompleted        = "reservation.completed"
)

// EventPublisher fans domain events out to downstream consumers. Publish
// failures never fail the operation that produced the event.
type EventPublisher interface {
	PublishReservation(ctx context.Context, event string, r model.Reservation) error
	PublishNotification(ctx context.Context, n model.Notification) error
}

// Debouncer suppresses repeats of the same key within a window. Allow
// returns true the first time a key is seen in the window; Release forgets
// a key so the next Allow succeeds again.
type Debouncer interface {
	Allow(ctx context.Context, key string, window time.Duration) (bool, error)
	Release(ctx context.Context, key string) error
}

func publishReservation(ctx context.Context, p EventPublisher, event string, r model.Reservation) {
	if p == nil {
		return
	}
	if err := p.PublishReservation(ctx, event, r); err != nil {
		log.Warn(ctx, "publishing reservation event failed",
			log.ID("reservation_id", r.ID), log.Err("error", err))
	}
}

func publishNotification(ctx context.Context, p EventPublisher, n model.Notification) {
	if p == nil {
		return
	}
	if err := p.PublishNotification(ctx, n); err != nil {
		log.Warn(ctx, "publishing notification failed",
			log.ID("notification_id", n.ID), log.Err("error", err))
	}
}
