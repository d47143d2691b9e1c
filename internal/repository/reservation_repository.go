package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/iliyamo/parking-spot-reservation/internal/model"
)

// ReservationRepo provides access to the `reservations` table. Reads join
// `parking_spots` so every returned reservation has its spot resolved.
type ReservationRepo struct{ q queryer }

// NewReservationRepo returns a ReservationRepo bound to q.
func NewReservationRepo(q queryer) *ReservationRepo { return &ReservationRepo{q: q} }

const reservationSelect = `
SELECT r.id, r.owner_id, r.code, r.spot_id, r.start_time, r.end_time, r.reservation_date,
       r.status, r.created_at, r.updated_at,
       s.id, s.spot_number, s.name, s.location, s.is_active, s.created_at
FROM reservations r
JOIN parking_spots s ON s.id = r.spot_id`

const activeStatusSQL = `('pending','confirmed')`

func scanReservation(sc rowScanner) (model.Reservation, error) {
	var (
		res    model.Reservation
		sp     model.ParkingSpot
		status string
	)
	err := sc.Scan(&res.ID, &res.OwnerID, &res.Code, &res.SpotID, &res.StartTime, &res.EndTime,
		&res.ReservationDate, &status, &res.CreatedAt, &res.UpdatedAt,
		&sp.ID, &sp.SpotNumber, &sp.Name, &sp.Location, &sp.IsActive, &sp.CreatedAt)
	if err != nil {
		return model.Reservation{}, err
	}
	res.Status = model.ReservationStatus(status)
	res.Spot = &sp
	return res, nil
}

func (r *ReservationRepo) queryList(ctx context.Context, query string, args ...any) ([]model.Reservation, error) {
	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.Reservation{}
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, res)
	}
	return out, rows.Err()
}

func (r *ReservationRepo) queryOne(ctx context.Context, entity string, key any, query string, args ...any) (model.Reservation, error) {
	res, err := scanReservation(r.q.QueryRowContext(ctx, query, args...))
	if err != nil {
		return model.Reservation{}, translate(err, entity, key)
	}
	return res, nil
}

// CountSpotConflicts counts non-terminal reservations on a spot in the day
// bucket whose window overlaps [start, end).
func (r *ReservationRepo) CountSpotConflicts(ctx context.Context, spotID uint64, day, start, end time.Time) (int, error) {
	var n int
	err := r.q.QueryRowContext(ctx, `
SELECT COUNT(*) FROM reservations
WHERE spot_id = ? AND reservation_date = ?
  AND status IN `+activeStatusSQL+`
  AND start_time < ? AND end_time > ?`,
		spotID, day.UTC(), end.UTC(), start.UTC()).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count spot conflicts: %w", err)
	}
	return n, nil
}

// HasReservationOnDay reports whether the owner holds a non-cancelled
// reservation in the day bucket.
func (r *ReservationRepo) HasReservationOnDay(ctx context.Context, ownerID uint64, day time.Time) (bool, error) {
	var n int
	err := r.q.QueryRowContext(ctx, `
SELECT COUNT(*) FROM reservations
WHERE owner_id = ? AND reservation_date = ? AND status <> 'cancelled'`,
		ownerID, day.UTC()).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("check daily reservation: %w", err)
	}
	return n > 0, nil
}

// CreateReservation inserts res and fills its ID.
func (r *ReservationRepo) CreateReservation(ctx context.Context, res *model.Reservation) error {
	out, err := r.q.ExecContext(ctx, `
INSERT INTO reservations (owner_id, code, spot_id, start_time, end_time, reservation_date, status, created_at, updated_at)
VALUES (?,?,?,?,?,?,?,?,?)`,
		res.OwnerID, res.Code, res.SpotID, res.StartTime.UTC(), res.EndTime.UTC(),
		res.ReservationDate.UTC(), string(res.Status), res.CreatedAt.UTC(), res.UpdatedAt.UTC())
	if err != nil {
		return translate(err, "reservation", nil)
	}
	id, err := out.LastInsertId()
	if err != nil {
		return err
	}
	res.ID = uint64(id)
	return nil
}

// GetReservation fetches a reservation by id.
func (r *ReservationRepo) GetReservation(ctx context.Context, id uint64) (model.Reservation, error) {
	return r.queryOne(ctx, "reservation", id, reservationSelect+` WHERE r.id = ? LIMIT 1`, id)
}

// ListOwnerReservations returns the owner's non-terminal reservations by
// day then start.
func (r *ReservationRepo) ListOwnerReservations(ctx context.Context, ownerID uint64) ([]model.Reservation, error) {
	return r.queryList(ctx, reservationSelect+`
WHERE r.owner_id = ? AND r.status IN `+activeStatusSQL+`
ORDER BY r.reservation_date ASC, r.start_time ASC`, ownerID)
}

// ListDayReservations returns the non-terminal reservations of a bucket.
func (r *ReservationRepo) ListDayReservations(ctx context.Context, day time.Time) ([]model.Reservation, error) {
	return r.queryList(ctx, reservationSelect+`
WHERE r.reservation_date = ? AND r.status IN `+activeStatusSQL+`
ORDER BY r.start_time ASC`, day.UTC())
}

// FindActiveByCode returns the earliest active reservation with code that
// has not ended at now.
func (r *ReservationRepo) FindActiveByCode(ctx context.Context, code string, now time.Time) (model.Reservation, error) {
	return r.queryOne(ctx, "reservation with code", code, reservationSelect+`
WHERE r.code = ? AND r.status IN `+activeStatusSQL+` AND r.end_time >= ?
ORDER BY r.start_time ASC LIMIT 1`, code, now.UTC())
}

// LatestStartedOnSpot returns the non-terminal reservation on the spot with
// the latest start not after now.
func (r *ReservationRepo) LatestStartedOnSpot(ctx context.Context, spotNumber int, now time.Time) (model.Reservation, error) {
	return r.queryOne(ctx, "current reservation on spot", spotNumber, reservationSelect+`
WHERE s.spot_number = ? AND r.status IN `+activeStatusSQL+` AND r.start_time <= ?
ORDER BY r.start_time DESC LIMIT 1`, spotNumber, now.UTC())
}

// NextConfirmedOnSpot returns the earliest confirmed reservation on the
// spot starting in [from, to).
func (r *ReservationRepo) NextConfirmedOnSpot(ctx context.Context, spotNumber int, from, to time.Time) (model.Reservation, error) {
	return r.queryOne(ctx, "next reservation on spot", spotNumber, reservationSelect+`
WHERE s.spot_number = ? AND r.status = 'confirmed' AND r.start_time >= ? AND r.start_time < ?
ORDER BY r.start_time ASC LIMIT 1`, spotNumber, from.UTC(), to.UTC())
}

// HasUpcomingReservation reports whether the owner holds a non-terminal
// reservation that has not ended at now.
func (r *ReservationRepo) HasUpcomingReservation(ctx context.Context, ownerID uint64, now time.Time) (bool, error) {
	var n int
	err := r.q.QueryRowContext(ctx, `
SELECT COUNT(*) FROM reservations
WHERE owner_id = ? AND status IN `+activeStatusSQL+` AND end_time >= ?`,
		ownerID, now.UTC()).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("check upcoming reservation: %w", err)
	}
	return n > 0, nil
}

// TransitionStatus is a conditional update: the row changes only while its
// status is one of from.
func (r *ReservationRepo) TransitionStatus(ctx context.Context, id uint64, now time.Time, to model.ReservationStatus, from ...model.ReservationStatus) (bool, error) {
	if len(from) == 0 {
		return false, nil
	}
	in, args := statusArgs(from)
	args = append([]any{string(to), now.UTC(), id}, args...)
	res, err := r.q.ExecContext(ctx,
		`UPDATE reservations SET status = ?, updated_at = ? WHERE id = ? AND status IN (`+in+`)`,
		args...)
	if err != nil {
		return false, fmt.Errorf("transition reservation %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// CompleteExpired bulk-completes confirmed reservations ending before now.
func (r *ReservationRepo) CompleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.q.ExecContext(ctx,
		`UPDATE reservations SET status = 'completed', updated_at = ? WHERE status = 'confirmed' AND end_time < ?`,
		now.UTC(), now.UTC())
	if err != nil {
		return 0, fmt.Errorf("complete expired reservations: %w", err)
	}
	return res.RowsAffected()
}
