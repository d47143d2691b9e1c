package service

import (
	"context"
	"time"

	"github.com/iliyamo/parking-spot-reservation/internal/model"
)

// Stores report absent rows with an error matching ErrNotFound (see
// NotFound) and unique-key collisions with an error wrapping ErrConflict.
// Times passed in and returned are UTC.

// SpotStore reads parking spots.
type SpotStore interface {
	// ListActiveSpots returns active spots ordered by ascending spot number.
	ListActiveSpots(ctx context.Context) ([]model.ParkingSpot, error)
	GetSpot(ctx context.Context, id uint64) (model.ParkingSpot, error)
	CountActiveSpots(ctx context.Context) (int, error)
}

// ConflictCounter counts reservations that would collide with a new
// window on one spot.
type ConflictCounter interface {
	// CountSpotConflicts counts reservations on spotID in the bucket day
	// whose status is not terminal and whose window overlaps [start, end).
	CountSpotConflicts(ctx context.Context, spotID uint64, day, start, end time.Time) (int, error)
}

// ReservationStore reads and transitions reservations.
type ReservationStore interface {
	ConflictCounter

	GetReservation(ctx context.Context, id uint64) (model.Reservation, error)
	// ListOwnerReservations returns the owner's non-terminal reservations
	// ordered by day then start time.
	ListOwnerReservations(ctx context.Context, ownerID uint64) ([]model.Reservation, error)
	// ListDayReservations returns the non-terminal reservations of a bucket.
	ListDayReservations(ctx context.Context, day time.Time) ([]model.Reservation, error)
	// FindActiveByCode returns the earliest starting pending or confirmed
	// reservation carrying code whose window has not ended at now.
	FindActiveByCode(ctx context.Context, code string, now time.Time) (model.Reservation, error)
	// LatestStartedOnSpot returns the non-terminal reservation on the spot
	// with the latest start time not after now.
	LatestStartedOnSpot(ctx context.Context, spotNumber int, now time.Time) (model.Reservation, error)
	// NextConfirmedOnSpot returns the earliest confirmed reservation on the
	// spot starting in [from, to).
	NextConfirmedOnSpot(ctx context.Context, spotNumber int, from, to time.Time) (model.Reservation, error)
	// HasUpcomingReservation reports whether the owner holds a non-terminal
	// reservation that has not ended at now.
	HasUpcomingReservation(ctx context.Context, ownerID uint64, now time.Time) (bool, error)
	// TransitionStatus moves the reservation to `to` at now only if its
	// current status is one of from, and reports whether a row changed.
	TransitionStatus(ctx context.Context, id uint64, now time.Time, to model.ReservationStatus, from ...model.ReservationStatus) (bool, error)
	// CompleteExpired moves every confirmed reservation ending before now
	// to completed and returns how many changed.
	CompleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// UserStore reads users and maintains their pass codes.
type UserStore interface {
	GetUser(ctx context.Context, id uint64) (model.User, error)
	ListActiveUsers(ctx context.Context) ([]model.User, error)
	CodeInUse(ctx context.Context, code string) (bool, error)
	UpdateUserCode(ctx context.Context, id uint64, code string, now time.Time) error
}

// NotificationStore is the durable notification sink.
type NotificationStore interface {
	CreateNotification(ctx context.Context, n *model.Notification) error
	// ListNotifications returns the user's newest notifications first.
	ListNotifications(ctx context.Context, userID uint64, limit int) ([]model.Notification, error)
	CountUnread(ctx context.Context, userID uint64) (int, error)
	MarkNotificationRead(ctx context.Context, id, userID uint64) (model.Notification, error)
	MarkAllNotificationsRead(ctx context.Context, userID uint64) (int64, error)
	DeleteNotification(ctx context.Context, id, userID uint64) error
	PurgeExpiredNotifications(ctx context.Context, now time.Time) (int64, error)
}

// AllocationTx is the view of the store inside the allocation critical
// section. Owner and Spots were loaded under lock; all calls share one
// transaction.
type AllocationTx interface {
	ConflictCounter

	Owner() model.User
	// Spots returns the locked active spots by ascending spot number.
	Spots() []model.ParkingSpot
	// HasReservationOnDay reports whether the owner holds a non-cancelled
	// reservation in the bucket day, whatever code it carries.
	HasReservationOnDay(ctx context.Context, ownerID uint64, day time.Time) (bool, error)
	CreateReservation(ctx context.Context, r *model.Reservation) error
}

// Store is the persistent state the engine runs against.
type Store interface {
	SpotStore
	ReservationStore
	UserStore
	NotificationStore

	// Allocate locks the owner and every active spot, in ascending spot
	// number order, and runs fn. The transaction commits when fn returns
	// nil and rolls back otherwise; fn's error is returned unchanged.
	Allocate(ctx context.Context, ownerID uint64, fn func(tx AllocationTx) error) error
}
