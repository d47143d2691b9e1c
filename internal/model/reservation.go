package model

import "time"

// ReservationStatus is the state of a reservation. Cancelled and completed
// are terminal.
type ReservationStatus string

const (
	StatusPending   ReservationStatus = "pending"
	StatusConfirmed ReservationStatus = "confirmed"
	StatusCancelled ReservationStatus = "cancelled"
	StatusCompleted ReservationStatus = "completed"
)

// IsTerminal reports whether no further transition is allowed.
func (s ReservationStatus) IsTerminal() bool {
	return s == StatusCancelled || s == StatusCompleted
}

// Valid reports whether s is one of the known statuses.
func (s ReservationStatus) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCancelled, StatusCompleted:
		return true
	}
	return false
}

// ActiveStatuses lists the non-terminal statuses.
var ActiveStatuses = []ReservationStatus{StatusPending, StatusConfirmed}

// Reservation records a user's claim on a parking spot for a time window
// within one calendar day.
//
// Fields:
//  ID              – primary key identifier.
//  OwnerID         – user who holds the reservation.
//  Code            – the owner's pass code at creation time.
//  SpotID          – allocated parking spot.
//  Spot            – the allocated spot when resolved by the store.
//  StartTime       – start of the window (inclusive).
//  EndTime         – end of the window (exclusive).
//  ReservationDate – start instant of the day bucket the reservation
//                    belongs to.
//  Status          – current lifecycle state.
//  CreatedAt       – creation timestamp.
//  UpdatedAt       – last update timestamp.
type Reservation struct {
	ID              uint64            // reservations.id
	OwnerID         uint64            // reservations.owner_id
	Code            string            // reservations.code
	SpotID          uint64            // reservations.spot_id
	Spot            *ParkingSpot      // joined from parking_spots (optional)
	StartTime       time.Time         // reservations.start_time
	EndTime         time.Time         // reservations.end_time
	ReservationDate time.Time         // reservations.reservation_date
	Status          ReservationStatus // reservations.status
	CreatedAt       time.Time         // reservations.created_at
	UpdatedAt       time.Time         // reservations.updated_at
}

// Overlaps reports whether the reservation's half-open window intersects
// [start, end).
func (r Reservation) Overlaps(start, end time.Time) bool {
	return r.StartTime.Before(end) && r.EndTime.After(start)
}
