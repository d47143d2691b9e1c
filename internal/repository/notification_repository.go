package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/iliyamo/parking-spot-reservation/internal/model"
)

// NotificationRepo provides access to the `notifications` table.
type NotificationRepo struct{ q queryer }

// NewNotificationRepo returns a NotificationRepo bound to q.
func NewNotificationRepo(q queryer) *NotificationRepo { return &NotificationRepo{q: q} }

const notificationColumns = `id, recipient_user_id, kind, title, message, related_reservation_id,
       related_spot_number, is_read, created_at, expires_at`

func scanNotification(sc rowScanner) (model.Notification, error) {
	var (
		n     model.Notification
		kind  string
		resID sql.NullInt64
		spot  sql.NullInt32
	)
	err := sc.Scan(&n.ID, &n.RecipientUserID, &kind, &n.Title, &n.Message, &resID, &spot,
		&n.Read, &n.CreatedAt, &n.ExpiresAt)
	if err != nil {
		return model.Notification{}, err
	}
	n.Kind = model.NotificationKind(kind)
	if resID.Valid {
		v := uint64(resID.Int64)
		n.RelatedReservationID = &v
	}
	if spot.Valid {
		v := int(spot.Int32)
		n.RelatedSpotNumber = &v
	}
	return n, nil
}

// CreateNotification appends n and fills its ID.
func (r *NotificationRepo) CreateNotification(ctx context.Context, n *model.Notification) error {
	var resID, spot any
	if n.RelatedReservationID != nil {
		resID = *n.RelatedReservationID
	}
	if n.RelatedSpotNumber != nil {
		spot = *n.RelatedSpotNumber
	}
	res, err := r.q.ExecContext(ctx, `
INSERT INTO notifications (recipient_user_id, kind, title, message, related_reservation_id,
                           related_spot_number, is_read, created_at, expires_at)
VALUES (?,?,?,?,?,?,?,?,?)`,
		n.RecipientUserID, string(n.Kind), n.Title, n.Message, resID, spot, n.Read,
		n.CreatedAt.UTC(), n.ExpiresAt.UTC())
	if err != nil {
		return fmt.Errorf("insert notification: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	n.ID = uint64(id)
	return nil
}

// ListNotifications returns the user's newest notifications first.
func (r *NotificationRepo) ListNotifications(ctx context.Context, userID uint64, limit int) ([]model.Notification, error) {
	rows, err := r.q.QueryContext(ctx, `SELECT `+notificationColumns+`
FROM notifications WHERE recipient_user_id = ?
ORDER BY created_at DESC, id DESC LIMIT ?`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("query notifications: %w", err)
	}
	defer rows.Close()
	out := []model.Notification{}
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

// CountUnread counts the user's unread notifications.
func (r *NotificationRepo) CountUnread(ctx context.Context, userID uint64) (int, error) {
	var n int
	err := r.q.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM notifications WHERE recipient_user_id = ? AND is_read = 0`, userID).Scan(&n)
	return n, err
}

// MarkNotificationRead marks one notification of the user as read and
// returns it.
func (r *NotificationRepo) MarkNotificationRead(ctx context.Context, id, userID uint64) (model.Notification, error) {
	if _, err := r.q.ExecContext(ctx,
		`UPDATE notifications SET is_read = 1 WHERE id = ? AND recipient_user_id = ?`, id, userID); err != nil {
		return model.Notification{}, fmt.Errorf("mark notification read: %w", err)
	}
	n, err := scanNotification(r.q.QueryRowContext(ctx, `SELECT `+notificationColumns+`
FROM notifications WHERE id = ? AND recipient_user_id = ? LIMIT 1`, id, userID))
	if err != nil {
		return model.Notification{}, translate(err, "notification", id)
	}
	return n, nil
}

// MarkAllNotificationsRead marks every unread notification of the user.
func (r *NotificationRepo) MarkAllNotificationsRead(ctx context.Context, userID uint64) (int64, error) {
	res, err := r.q.ExecContext(ctx,
		`UPDATE notifications SET is_read = 1 WHERE recipient_user_id = ? AND is_read = 0`, userID)
	if err != nil {
		return 0, fmt.Errorf("mark all notifications read: %w", err)
	}
	return res.RowsAffected()
}

// DeleteNotification removes one notification of the user.
func (r *NotificationRepo) DeleteNotification(ctx context.Context, id, userID uint64) error {
	res, err := r.q.ExecContext(ctx,
		`DELETE FROM notifications WHERE id = ? AND recipient_user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("delete notification: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return translate(sql.ErrNoRows, "notification", id)
	}
	return nil
}

// PurgeExpiredNotifications deletes notifications expired at now.
func (r *NotificationRepo) PurgeExpiredNotifications(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.q.ExecContext(ctx, `DELETE FROM notifications WHERE expires_at <= ?`, now.UTC())
	if err != nil {
		return 0, fmt.Errorf("purge notifications: %w", err)
	}
	return res.RowsAffected()
}
