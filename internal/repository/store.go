package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/iliyamo/parking-spot-reservation/internal/model"
	"github.com/iliyamo/parking-spot-reservation/internal/service"
)

// Store bundles the table repositories over one *sql.DB and implements
// service.Store.
type Store struct {
	db *sql.DB

	*SpotRepo
	*ReservationRepo
	*UserRepo
	*NotificationRepo
}

var _ service.Store = (*Store)(nil)

// NewStore wires every repository to db.
func NewStore(db *sql.DB) *Store {
	if db == nil {
		panic("nil db passed to NewStore")
	}
	return &Store{
		db:               db,
		SpotRepo:         NewSpotRepo(db),
		ReservationRepo:  NewReservationRepo(db),
		UserRepo:         NewUserRepo(db),
		NotificationRepo: NewNotificationRepo(db),
	}
}

// DB exposes the underlying handle for health checks and migrations.
func (s *Store) DB() *sql.DB { return s.db }

// Allocate runs fn inside a READ COMMITTED transaction that holds a row
// lock on the owner and on every active spot. Concurrent allocations
// therefore serialize on the spot rows, and the conflict counts fn reads
// cannot be invalidated before commit.
func (s *Store) Allocate(ctx context.Context, ownerID uint64, fn func(tx service.AllocationTx) error) error {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return fmt.Errorf("begin allocation: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	owner, err := NewUserRepo(tx).lockUser(ctx, ownerID)
	if err != nil {
		return err
	}
	spots, err := NewSpotRepo(tx).lockActiveSpots(ctx)
	if err != nil {
		return err
	}
	if err := fn(&allocTx{ReservationRepo: NewReservationRepo(tx), owner: owner, spots: spots}); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit allocation: %w", err)
	}
	committed = true
	return nil
}

type allocTx struct {
	*ReservationRepo
	owner model.User
	spots []model.ParkingSpot
}

func (t *allocTx) Owner() model.User           { return t.owner }
func (t *allocTx) Spots() []model.ParkingSpot { return t.spots }
