package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/iliyamo/parking-spot-reservation/internal/log"
	"github.com/iliyamo/parking-spot-reservation/internal/model"
	"github.com/iliyamo/parking-spot-reservation/internal/scheduler"
)

// InboxPageSize is the number of notifications returned by Inbox.List.
const InboxPageSize = 50

// InboxPage is a user's latest notifications with the unread total.
type InboxPage struct {
	Items  []model.Notification
	Unread int
}

// Inbox exposes a user's notifications and purges expired ones.
type Inbox struct {
	store NotificationStore
	clock Clock
}

func NewInbox(store NotificationStore, clock Clock) *Inbox {
	if store == nil || clock == nil {
		panic("nil dependency passed to NewInbox")
	}
	return &Inbox{store: store, clock: clock}
}

func (in *Inbox) List(ctx context.Context, userID uint64) (InboxPage, error) {
	items, err := in.store.ListNotifications(ctx, userID, InboxPageSize)
	if err != nil {
		return InboxPage{}, persistence("list notifications", err)
	}
	unread, err := in.store.CountUnread(ctx, userID)
	if err != nil {
		return InboxPage{}, persistence("count unread notifications", err)
	}
	return InboxPage{Items: items, Unread: unread}, nil
}

// MarkRead marks one of the user's notifications read. Notifications of
// other users are reported as not found.
func (in *Inbox) MarkRead(ctx context.Context, id, userID uint64) (model.Notification, error) {
	n, err := in.store.MarkNotificationRead(ctx, id, userID)
	if err != nil {
		return model.Notification{}, persistence("mark notification read", err)
	}
	return n, nil
}

func (in *Inbox) MarkAllRead(ctx context.Context, userID uint64) (int64, error) {
	n, err := in.store.MarkAllNotificationsRead(ctx, userID)
	if err != nil {
		return 0, persistence("mark all notifications read", err)
	}
	return n, nil
}

func (in *Inbox) Delete(ctx context.Context, id, userID uint64) error {
	if err := in.store.DeleteNotification(ctx, id, userID); err != nil {
		return persistence("delete notification", err)
	}
	return nil
}

// PurgeExpired deletes notifications whose ExpiresAt has passed.
func (in *Inbox) PurgeExpired(ctx context.Context) (int64, error) {
	n, err := in.store.PurgeExpiredNotifications(ctx, in.clock.Now())
	if err != nil {
		return 0, persistence("purge notifications", err)
	}
	if n > 0 {
		log.Info(ctx, "expired notifications purged", slog.Int64("count", n))
	}
	return n, nil
}

// Register schedules PurgeExpired on sch every interval.
func (in *Inbox) Register(sch *scheduler.Scheduler, every time.Duration) error {
	if every <= 0 {
		every = time.Hour
	}
	return sch.Add(scheduler.Job{
		Name:  "purge-expired-notifications",
		Every: every,
		Run: func(ctx context.Context) error {
			_, err := in.PurgeExpired(ctx)
			return err
		},
	})
}
