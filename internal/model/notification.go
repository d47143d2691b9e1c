package model

import "time"

// NotificationKind classifies a notification for the delivery layer.
type NotificationKind string

const (
	KindVehicleRetention     NotificationKind = "vehicle_retention"
	KindSpotOccupied         NotificationKind = "spot_occupied"
	KindReservationCancelled NotificationKind = "reservation_cancelled"
	KindGeneral              NotificationKind = "general"
)

// NotificationTTL is how long a notification lives before it may be purged.
const NotificationTTL = 24 * time.Hour

// Notification is a message addressed to one user, stored in the
// `notifications` table until ExpiresAt.
//
// Fields:
//  ID                   – primary key identifier.
//  RecipientUserID      – user the notification is addressed to.
//  Kind                 – notification category.
//  Title, Message       – human readable content.
//  RelatedReservationID – reservation that triggered it, if any.
//  RelatedSpotNumber    – spot that triggered it, if any.
//  Read                 – whether the recipient marked it read.
//  CreatedAt            – creation timestamp.
//  ExpiresAt            – CreatedAt + NotificationTTL.
type Notification struct {
	ID                   uint64           // notifications.id
	RecipientUserID      uint64           // notifications.recipient_user_id
	Kind                 NotificationKind // notifications.kind
	Title                string           // notifications.title
	Message              string           // notifications.message
	RelatedReservationID *uint64          // notifications.related_reservation_id (nullable)
	RelatedSpotNumber    *int             // notifications.related_spot_number (nullable)
	Read                 bool             // notifications.is_read
	CreatedAt            time.Time        // notifications.created_at
	ExpiresAt            time.Time        // notifications.expires_at
}
