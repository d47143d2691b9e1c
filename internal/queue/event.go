// Package queue defines message payloads exchanged over the message broker
// and the RabbitMQ publisher and consumer that move them.
package queue

import (
	"time"

	"github.com/iliyamo/parking-spot-reservation/internal/model"
)

// Durable queues the service publishes to.
const (
	ReservationQueue  = "parking.reservations"
	NotificationQueue = "parking.notifications"
)

// ReservationEvent is published on every reservation lifecycle transition.
// It carries enough for downstream consumers to log or notify without
// querying the primary database.
type ReservationEvent struct {
	Event           string `json:"event"`
	ReservationID   uint64 `json:"reservation_id"`
	OwnerID         uint64 `json:"owner_id"`
	Code            string `json:"code"`
	SpotID          uint64 `json:"spot_id"`
	SpotNumber      int    `json:"spot_number,omitempty"`
	SpotName        string `json:"spot_name,omitempty"`
	ReservationDate string `json:"reservation_date"`
	StartsAt        string `json:"starts_at"`
	EndsAt          string `json:"ends_at"`
	Status          string `json:"status"`
	OccurredAt      string `json:"occurred_at"`
}

// NotificationEvent is published for every notification the reconciler
// persists. The external delivery layer consumes it.
type NotificationEvent struct {
	NotificationID       uint64  `json:"notification_id"`
	RecipientUserID      uint64  `json:"recipient_user_id"`
	Kind                 string  `json:"kind"`
	Title                string  `json:"title"`
	Message              string  `json:"message"`
	RelatedReservationID *uint64 `json:"related_reservation_id,omitempty"`
	RelatedSpotNumber    *int    `json:"related_spot_number,omitempty"`
	CreatedAt            string  `json:"created_at"`
	ExpiresAt            string  `json:"expires_at"`
}

// NewReservationEvent builds the payload for r.
func NewReservationEvent(event string, r model.Reservation, at time.Time) ReservationEvent {
	ev := ReservationEvent{
		Event:           event,
		ReservationID:   r.ID,
		OwnerID:         r.OwnerID,
		Code:            r.Code,
		SpotID:          r.SpotID,
		ReservationDate: r.ReservationDate.UTC().Format(time.RFC3339),
		StartsAt:        r.StartTime.UTC().Format(time.RFC3339),
		EndsAt:          r.EndTime.UTC().Format(time.RFC3339),
		Status:          string(r.Status),
		OccurredAt:      at.UTC().Format(time.RFC3339),
	}
	if r.Spot != nil {
		ev.SpotNumber = r.Spot.SpotNumber
		ev.SpotName = r.Spot.Name
	}
	return ev
}

// NewNotificationEvent builds the payload for n.
func NewNotificationEvent(n model.Notification) NotificationEvent {
	return NotificationEvent{
		NotificationID:       n.ID,
		RecipientUserID:      n.RecipientUserID,
		Kind:                 string(n.Kind),
		Title:                n.Title,
		Message:              n.Message,
		RelatedReservationID: n.RelatedReservationID,
		RelatedSpotNumber:    n.RelatedSpotNumber,
		CreatedAt:            n.CreatedAt.UTC().Format(time.RFC3339),
		ExpiresAt:            n.ExpiresAt.UTC().Format(time.RFC3339),
	}
}
