package repository

import (
	"context"
	"fmt"

	"github.com/iliyamo/parking-spot-reservation/internal/model"
)

// SpotRepo provides access to the `parking_spots` table.
type SpotRepo struct{ q queryer }

// NewSpotRepo returns a SpotRepo bound to q.
func NewSpotRepo(q queryer) *SpotRepo { return &SpotRepo{q: q} }

const spotColumns = `id, spot_number, name, location, is_active, created_at`

func scanSpot(sc rowScanner) (model.ParkingSpot, error) {
	var sp model.ParkingSpot
	err := sc.Scan(&sp.ID, &sp.SpotNumber, &sp.Name, &sp.Location, &sp.IsActive, &sp.CreatedAt)
	return sp, err
}

// ListActiveSpots returns active spots by ascending spot number.
func (r *SpotRepo) ListActiveSpots(ctx context.Context) ([]model.ParkingSpot, error) {
	return r.listActive(ctx, "")
}

// lockActiveSpots is ListActiveSpots with row locks, taken in spot number
// order. It only makes sense inside a transaction.
func (r *SpotRepo) lockActiveSpots(ctx context.Context) ([]model.ParkingSpot, error) {
	return r.listActive(ctx, " FOR UPDATE")
}

func (r *SpotRepo) listActive(ctx context.Context, suffix string) ([]model.ParkingSpot, error) {
	rows, err := r.q.QueryContext(ctx,
		`SELECT `+spotColumns+` FROM parking_spots WHERE is_active = 1 ORDER BY spot_number ASC`+suffix)
	if err != nil {
		return nil, fmt.Errorf("query active spots: %w", err)
	}
	defer rows.Close()
	out := []model.ParkingSpot{}
	for rows.Next() {
		sp, err := scanSpot(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, sp)
	}
	return out, rows.Err()
}

// GetSpot fetches a spot by id.
func (r *SpotRepo) GetSpot(ctx context.Context, id uint64) (model.ParkingSpot, error) {
	sp, err := scanSpot(r.q.QueryRowContext(ctx,
		`SELECT `+spotColumns+` FROM parking_spots WHERE id = ? LIMIT 1`, id))
	if err != nil {
		return model.ParkingSpot{}, translate(err, "spot", id)
	}
	return sp, nil
}

// CountActiveSpots returns the capacity of the pool.
func (r *SpotRepo) CountActiveSpots(ctx context.Context) (int, error) {
	var n int
	err := r.q.QueryRowContext(ctx, `SELECT COUNT(*) FROM parking_spots WHERE is_active = 1`).Scan(&n)
	return n, err
}

// Seed inserts spots that do not exist yet, keyed by spot number, and
// returns how many were added.
func (r *SpotRepo) Seed(ctx context.Context, spots []model.ParkingSpot) (int64, error) {
	var added int64
	for _, sp := range spots {
		res, err := r.q.ExecContext(ctx,
			`INSERT IGNORE INTO parking_spots (spot_number, name, location, is_active) VALUES (?,?,?,?)`,
			sp.SpotNumber, sp.Name, sp.Location, sp.IsActive)
		if err != nil {
			return added, fmt.Errorf("seed spot %d: %w", sp.SpotNumber, err)
		}
		n, _ := res.RowsAffected()
		added += n
	}
	return added, nil
}
