package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/iliyamo/parking-spot-reservation/internal/log"
	"github.com/iliyamo/parking-spot-reservation/internal/model"
)

const (
	// LookaheadWindow bounds how far ahead the next reservation is searched.
	LookaheadWindow = 30 * time.Minute
	// ReleaseNoticeWindow is how close the next start must be for a freed
	// spot to be announced.
	ReleaseNoticeWindow = 5 * time.Minute
)

// OccupancyReport is a presence sensor reading for one spot. Occupied is a
// pointer so a missing reading can be told apart from false.
type OccupancyReport struct {
	SpotNumber int
	Occupied   *bool
}

// ReconcileResult echoes what a report triggered.
type ReconcileResult struct {
	Notifications        []model.Notification
	Count                int
	CurrentReservationID *uint64
	NextReservationID    *uint64
}

// ReconcilerStore is what the reconciler reads and writes.
type ReconcilerStore interface {
	ReservationStore
	NotificationStore
}

// Reconciler compares sensor reports with the reservation ledger and
// notifies the users affected by a mismatch. It keeps no state between
// reports; repeats are only suppressed through an optional Debouncer.
type Reconciler struct {
	store    ReconcilerStore
	clock    Clock
	events   EventPublisher
	debounce Debouncer
	window   time.Duration
}

// ReconcilerOption configures optional Reconciler collaborators.
type ReconcilerOption func(*Reconciler)

// WithNotificationPublisher hands every created notification to p.
func WithNotificationPublisher(p EventPublisher) ReconcilerOption {
	return func(r *Reconciler) { r.events = p }
}

// WithDebouncer suppresses a repeated (kind, reservation) notification
// within window. A nil debouncer or a non-positive window disables it.
func WithDebouncer(d Debouncer, window time.Duration) ReconcilerOption {
	return func(r *Reconciler) {
		r.debounce = d
		r.window = window
	}
}

// NewReconciler returns a Reconciler over store.
func NewReconciler(store ReconcilerStore, clock Clock, opts ...ReconcilerOption) *Reconciler {
	if store == nil || clock == nil {
		panic("nil dependency passed to NewReconciler")
	}
	r := &Reconciler{store: store, clock: clock}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ReportOccupancy evaluates one sensor report.
//
// An occupied spot whose current reservation has already ended triggers a
// vehicle_retention notice to that reservation's owner, and a spot_occupied
// notice to the owner of the next reservation if one starts within
// LookaheadWindow. A free spot whose next reservation starts within
// ReleaseNoticeWindow triggers a general "spot available" notice.
func (rc *Reconciler) ReportOccupancy(ctx context.Context, rep OccupancyReport) (ReconcileResult, error) {
	if rep.SpotNumber <= 0 {
		return ReconcileResult{}, invalid("spot_number", "is required")
	}
	if rep.Occupied == nil {
		return ReconcileResult{}, invalid("occupied", "must be a boolean")
	}
	occupied := *rep.Occupied
	now := rc.clock.Now()

	current, err := optional(rc.store.LatestStartedOnSpot(ctx, rep.SpotNumber, now))
	if err != nil {
		return ReconcileResult{}, persistence("find current reservation", err)
	}
	next, err := optional(rc.store.NextConfirmedOnSpot(ctx, rep.SpotNumber, now, now.Add(LookaheadWindow)))
	if err != nil {
		return ReconcileResult{}, persistence("find next reservation", err)
	}

	res := ReconcileResult{Notifications: []model.Notification{}}
	if current != nil {
		res.CurrentReservationID = &current.ID
	}
	if next != nil {
		res.NextReservationID = &next.ID
	}

	switch {
	case occupied && current != nil && current.EndTime.Before(now):
		log.Warn(ctx, "spot occupied past reservation end",
			slog.Int("spot_number", rep.SpotNumber), log.ID("reservation_id", current.ID))
		if err := rc.emit(ctx, &res, *current, rep.SpotNumber, model.KindVehicleRetention,
			"Your reservation has ended",
			fmt.Sprintf("Your reservation at spot %d has ended. Please move your vehicle as soon as possible.", rep.SpotNumber),
		); err != nil {
			return ReconcileResult{}, err
		}
		if next != nil {
			if err := rc.emit(ctx, &res, *next, rep.SpotNumber, model.KindSpotOccupied,
				"Your spot is temporarily occupied",
				fmt.Sprintf("Spot %d is still occupied by another vehicle. Please wait a few minutes for instructions from the parking staff.", rep.SpotNumber),
			); err != nil {
				return ReconcileResult{}, err
			}
		}
	case !occupied && next != nil && !next.StartTime.After(now.Add(ReleaseNoticeWindow)):
		if err := rc.emit(ctx, &res, *next, rep.SpotNumber, model.KindGeneral,
			"Your spot is available",
			fmt.Sprintf("Spot %d is now available. You can park whenever you are ready.", rep.SpotNumber),
		); err != nil {
			return ReconcileResult{}, err
		}
	}
	res.Count = len(res.Notifications)
	return res, nil
}

func (rc *Reconciler) emit(ctx context.Context, res *ReconcileResult, r model.Reservation, spotNumber int, kind model.NotificationKind, title, msg string) error {
	key, ok := rc.allow(ctx, kind, r.ID)
	if !ok {
		return nil
	}
	now := rc.clock.Now()
	resID := r.ID
	spot := spotNumber
	n := model.Notification{
		RecipientUserID:      r.OwnerID,
		Kind:                 kind,
		Title:                title,
		Message:              msg,
		RelatedReservationID: &resID,
		RelatedSpotNumber:    &spot,
		CreatedAt:            now,
		ExpiresAt:            now.Add(model.NotificationTTL),
	}
	if err := rc.store.CreateNotification(ctx, &n); err != nil {
		rc.release(ctx, key)
		return persistence("create notification", err)
	}
	publishNotification(ctx, rc.events, n)
	res.Notifications = append(res.Notifications, n)
	return nil
}

// allow fails open: a debouncer error never drops a notification. The
// returned key is empty when nothing was claimed.
func (rc *Reconciler) allow(ctx context.Context, kind model.NotificationKind, reservationID uint64) (string, bool) {
	if rc.debounce == nil || rc.window <= 0 {
		return "", true
	}
	key := fmt.Sprintf("%s:%d", kind, reservationID)
	ok, err := rc.debounce.Allow(ctx, key, rc.window)
	if err != nil {
		log.Warn(ctx, "debounce check failed", slog.String("key", key), log.Err("error", err))
		return "", true
	}
	if !ok {
		log.Debug(ctx, "notification debounced", slog.String("key", key))
		return "", false
	}
	return key, true
}

// release gives back a claimed key after the notification failed to
// persist, so the sensor's retry is not swallowed.
func (rc *Reconciler) release(ctx context.Context, key string) {
	if key == "" {
		return
	}
	if err := rc.debounce.Release(ctx, key); err != nil {
		log.Warn(ctx, "debounce release failed", slog.String("key", key), log.Err("error", err))
	}
}

// optional turns a not-found lookup into a nil result.
func optional(r model.Reservation, err error) (*model.Reservation, error) {
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}
