// Package memory is an in-process implementation of service.Store. It is
// used by tests and by the memory store driver for local development;
// data does not survive a restart.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/iliyamo/parking-spot-reservation/internal/model"
	"github.com/iliyamo/parking-spot-reservation/internal/service"
)

// Store keeps every table in maps guarded by mu. allocMu serializes
// Allocate calls, which is the whole critical section of allocation.
type Store struct {
	mu      sync.RWMutex
	allocMu sync.Mutex

	spots         map[uint64]model.ParkingSpot
	users         map[uint64]model.User
	reservations  map[uint64]model.Reservation
	notifications map[uint64]model.Notification
	transitions   map[uint64]int

	nextSpot, nextUser, nextReservation, nextNotification uint64
}

var _ service.Store = (*Store)(nil)

// New returns an empty store.
func New() *Store {
	return &Store{
		spots:         map[uint64]model.ParkingSpot{},
		users:         map[uint64]model.User{},
		reservations:  map[uint64]model.Reservation{},
		notifications: map[uint64]model.Notification{},
		transitions:   map[uint64]int{},
	}
}

// AddSpot stores sp, assigning an ID when sp.ID is zero.
func (s *Store) AddSpot(sp model.ParkingSpot) model.ParkingSpot {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sp.ID == 0 {
		s.nextSpot++
		sp.ID = s.nextSpot
	} else if sp.ID > s.nextSpot {
		s.nextSpot = sp.ID
	}
	s.spots[sp.ID] = sp
	return sp
}

// AddUser stores u, assigning an ID when u.ID is zero.
func (s *Store) AddUser(u model.User) model.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u.ID == 0 {
		s.nextUser++
		u.ID = s.nextUser
	} else if u.ID > s.nextUser {
		s.nextUser = u.ID
	}
	s.users[u.ID] = u
	return u
}

// AddReservation stores r as is, assigning an ID when r.ID is zero. It
// bypasses every rule and exists for seeding.
func (s *Store) AddReservation(r model.Reservation) model.Reservation {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.insertReservation(&r)
	return r
}

// StatusChanges reports how many status transitions reservation id went
// through.
func (s *Store) StatusChanges(id uint64) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.transitions[id]
}

// Reservations returns every stored reservation ordered by ID.
func (s *Store) Reservations() []model.Reservation {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Reservation, 0, len(s.reservations))
	for _, r := range s.reservations {
		out = append(out, s.withSpot(r))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *Store) insertReservation(r *model.Reservation) {
	if r.ID == 0 {
		s.nextReservation++
		r.ID = s.nextReservation
	} else if r.ID > s.nextReservation {
		s.nextReservation = r.ID
	}
	stored := *r
	stored.Spot = nil
	s.reservations[r.ID] = stored
}

func (s *Store) withSpot(r model.Reservation) model.Reservation {
	if sp, ok := s.spots[r.SpotID]; ok {
		r.Spot = &sp
	}
	return r
}

func (s *Store) spotIDByNumber(number int) (uint64, bool) {
	for _, sp := range s.spots {
		if sp.SpotNumber == number {
			return sp.ID, true
		}
	}
	return 0, false
}

// ---- spots ----

func (s *Store) ListActiveSpots(_ context.Context) ([]model.ParkingSpot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.activeSpots(), nil
}

func (s *Store) activeSpots() []model.ParkingSpot {
	out := make([]model.ParkingSpot, 0, len(s.spots))
	for _, sp := range s.spots {
		if sp.IsActive {
			out = append(out, sp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SpotNumber < out[j].SpotNumber })
	return out
}

func (s *Store) GetSpot(_ context.Context, id uint64) (model.ParkingSpot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sp, ok := s.spots[id]
	if !ok {
		return model.ParkingSpot{}, service.NotFound("spot", id)
	}
	return sp, nil
}

func (s *Store) CountActiveSpots(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.activeSpots()), nil
}

// ---- reservations ----

func (s *Store) CountSpotConflicts(_ context.Context, spotID uint64, day, start, end time.Time) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.countConflicts(spotID, day, start, end), nil
}

func (s *Store) countConflicts(spotID uint64, day, start, end time.Time) int {
	n := 0
	for _, r := range s.reservations {
		if r.SpotID == spotID && r.ReservationDate.Equal(day) &&
			!r.Status.IsTerminal() && r.Overlaps(start, end) {
			n++
		}
	}
	return n
}

func (s *Store) GetReservation(_ context.Context, id uint64) (model.Reservation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.reservations[id]
	if !ok {
		return model.Reservation{}, service.NotFound("reservation", id)
	}
	return s.withSpot(r), nil
}

func (s *Store) ListOwnerReservations(_ context.Context, ownerID uint64) ([]model.Reservation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []model.Reservation{}
	for _, r := range s.reservations {
		if r.OwnerID == ownerID && !r.Status.IsTerminal() {
			out = append(out, s.withSpot(r))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].ReservationDate.Equal(out[j].ReservationDate) {
			return out[i].ReservationDate.Before(out[j].ReservationDate)
		}
		return out[i].StartTime.Before(out[j].StartTime)
	})
	return out, nil
}

func (s *Store) ListDayReservations(_ context.Context, day time.Time) ([]model.Reservation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []model.Reservation{}
	for _, r := range s.reservations {
		if r.ReservationDate.Equal(day) && !r.Status.IsTerminal() {
			out = append(out, s.withSpot(r))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime.Before(out[j].StartTime) })
	return out, nil
}

func (s *Store) FindActiveByCode(_ context.Context, code string, now time.Time) (model.Reservation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var best *model.Reservation
	for _, r := range s.reservations {
		if r.Code != code || r.Status.IsTerminal() || r.EndTime.Before(now) {
			continue
		}
		if best == nil || r.StartTime.Before(best.StartTime) {
			r := r
			best = &r
		}
	}
	if best == nil {
		return model.Reservation{}, service.NotFound("reservation with code", code)
	}
	return s.withSpot(*best), nil
}

func (s *Store) LatestStartedOnSpot(_ context.Context, spotNumber int, now time.Time) (model.Reservation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	spotID, ok := s.spotIDByNumber(spotNumber)
	if !ok {
		return model.Reservation{}, service.NotFound("spot number", spotNumber)
	}
	var best *model.Reservation
	for _, r := range s.reservations {
		if r.SpotID != spotID || r.Status.IsTerminal() || r.StartTime.After(now) {
			continue
		}
		if best == nil || r.StartTime.After(best.StartTime) {
			r := r
			best = &r
		}
	}
	if best == nil {
		return model.Reservation{}, service.NotFound("current reservation on spot", spotNumber)
	}
	return s.withSpot(*best), nil
}

func (s *Store) NextConfirmedOnSpot(_ context.Context, spotNumber int, from, to time.Time) (model.Reservation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	spotID, ok := s.spotIDByNumber(spotNumber)
	if !ok {
		return model.Reservation{}, service.NotFound("spot number", spotNumber)
	}
	var best *model.Reservation
	for _, r := range s.reservations {
		if r.SpotID != spotID || r.Status != model.StatusConfirmed ||
			r.StartTime.Before(from) || !r.StartTime.Before(to) {
			continue
		}
		if best == nil || r.StartTime.Before(best.StartTime) {
			r := r
			best = &r
		}
	}
	if best == nil {
		return model.Reservation{}, service.NotFound("next reservation on spot", spotNumber)
	}
	return s.withSpot(*best), nil
}

func (s *Store) HasUpcomingReservation(_ context.Context, ownerID uint64, now time.Time) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, r := range s.reservations {
		if r.OwnerID == ownerID && !r.Status.IsTerminal() && !r.EndTime.Before(now) {
			return true, nil
		}
	}
	return false, nil
}

func (s *Store) TransitionStatus(_ context.Context, id uint64, now time.Time, to model.ReservationStatus, from ...model.ReservationStatus) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.reservations[id]
	if !ok {
		return false, nil
	}
	for _, f := range from {
		if r.Status == f {
			r.Status = to
			r.UpdatedAt = now
			s.reservations[id] = r
			s.transitions[id]++
			return true, nil
		}
	}
	return false, nil
}

func (s *Store) CompleteExpired(_ context.Context, now time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for id, r := range s.reservations {
		if r.Status == model.StatusConfirmed && r.EndTime.Before(now) {
			r.Status = model.StatusCompleted
			r.UpdatedAt = now
			s.reservations[id] = r
			s.transitions[id]++
			n++
		}
	}
	return n, nil
}

// ---- users ----

func (s *Store) GetUser(_ context.Context, id uint64) (model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return model.User{}, service.NotFound("user", id)
	}
	return u, nil
}

func (s *Store) ListActiveUsers(_ context.Context) ([]model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []model.User{}
	for _, u := range s.users {
		if u.IsActive {
			out = append(out, u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) CodeInUse(_ context.Context, code string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.Code == code {
			return true, nil
		}
	}
	return false, nil
}

func (s *Store) UpdateUserCode(_ context.Context, id uint64, code string, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return service.NotFound("user", id)
	}
	for _, other := range s.users {
		if other.ID != id && other.Code == code {
			return service.ErrConflict
		}
	}
	u.Code = code
	u.UpdatedAt = now
	s.users[id] = u
	return nil
}

// ---- notifications ----

func (s *Store) CreateNotification(_ context.Context, n *model.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextNotification++
	n.ID = s.nextNotification
	s.notifications[n.ID] = *n
	return nil
}

func (s *Store) ListNotifications(_ context.Context, userID uint64, limit int) ([]model.Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []model.Notification{}
	for _, n := range s.notifications {
		if n.RecipientUserID == userID {
			out = append(out, n)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *Store) CountUnread(_ context.Context, userID uint64) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c := 0
	for _, n := range s.notifications {
		if n.RecipientUserID == userID && !n.Read {
			c++
		}
	}
	return c, nil
}

func (s *Store) MarkNotificationRead(_ context.Context, id, userID uint64) (model.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.notifications[id]
	if !ok || n.RecipientUserID != userID {
		return model.Notification{}, service.NotFound("notification", id)
	}
	n.Read = true
	s.notifications[id] = n
	return n, nil
}

func (s *Store) MarkAllNotificationsRead(_ context.Context, userID uint64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var c int64
	for id, n := range s.notifications {
		if n.RecipientUserID == userID && !n.Read {
			n.Read = true
			s.notifications[id] = n
			c++
		}
	}
	return c, nil
}

func (s *Store) DeleteNotification(_ context.Context, id, userID uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.notifications[id]
	if !ok || n.RecipientUserID != userID {
		return service.NotFound("notification", id)
	}
	delete(s.notifications, id)
	return nil
}

func (s *Store) PurgeExpiredNotifications(_ context.Context, now time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var c int64
	for id, n := range s.notifications {
		if !n.ExpiresAt.After(now) {
			delete(s.notifications, id)
			c++
		}
	}
	return c, nil
}

// ---- allocation ----

// Allocate holds allocMu for the duration of fn. Writes made by fn are
// applied directly; fn must not fail after CreateReservation.
func (s *Store) Allocate(ctx context.Context, ownerID uint64, fn func(tx service.AllocationTx) error) error {
	s.allocMu.Lock()
	defer s.allocMu.Unlock()

	s.mu.RLock()
	owner, ok := s.users[ownerID]
	spots := s.activeSpots()
	s.mu.RUnlock()
	if !ok {
		return service.NotFound("user", ownerID)
	}
	return fn(&allocTx{s: s, owner: owner, spots: spots})
}

type allocTx struct {
	s     *Store
	owner model.User
	spots []model.ParkingSpot
}

func (t *allocTx) Owner() model.User { return t.owner }

func (t *allocTx) Spots() []model.ParkingSpot { return t.spots }

func (t *allocTx) CountSpotConflicts(ctx context.Context, spotID uint64, day, start, end time.Time) (int, error) {
	return t.s.CountSpotConflicts(ctx, spotID, day, start, end)
}

func (t *allocTx) HasReservationOnDay(_ context.Context, ownerID uint64, day time.Time) (bool, error) {
	t.s.mu.RLock()
	defer t.s.mu.RUnlock()
	for _, r := range t.s.reservations {
		if r.OwnerID == ownerID && r.ReservationDate.Equal(day) &&
			r.Status != model.StatusCancelled {
			return true, nil
		}
	}
	return false, nil
}

func (t *allocTx) CreateReservation(_ context.Context, r *model.Reservation) error {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	t.s.insertReservation(r)
	return nil
}
