package service_test

import (
	"context"
	"sync"
	"time"

	"github.com/iliyamo/parking-spot-reservation/internal/model"
	"github.com/iliyamo/parking-spot-reservation/internal/repository/memory"
	"github.com/iliyamo/parking-spot-reservation/internal/service"
)

// Monday 2024-01-01. Tuesday is the default reservation day.
var (
	monday  = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	tuesday = monday.AddDate(0, 0, 1)
	sunday  = monday.AddDate(0, 0, 6)
)

func at(day time.Time, hour, minute int) time.Time {
	return day.Add(time.Duration(hour)*time.Hour + time.Duration(minute)*time.Minute)
}

type manualClock struct {
	mu  sync.Mutex
	now time.Time
}

func newClock(t time.Time) *manualClock { return &manualClock{now: t} }

func (c *manualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *manualClock) Set(t time.Time) {
	c.mu.Lock()
	c.now = t
	c.mu.Unlock()
}

// seedSpots adds four active spots numbered 1 to 4, inserted out of order.
func seedSpots(s *memory.Store) []model.ParkingSpot {
	var out []model.ParkingSpot
	for _, sp := range []model.ParkingSpot{
		{SpotNumber: 3, Name: "B1", Location: "Level 1, Section B", IsActive: true},
		{SpotNumber: 1, Name: "A1", Location: "Level 1, Section A", IsActive: true},
		{SpotNumber: 4, Name: "B2", Location: "Level 1, Section B", IsActive: true},
		{SpotNumber: 2, Name: "A2", Location: "Level 1, Section A", IsActive: true},
	} {
		out = append(out, s.AddSpot(sp))
	}
	return out
}

func spotByNumber(spots []model.ParkingSpot, n int) model.ParkingSpot {
	for _, sp := range spots {
		if sp.SpotNumber == n {
			return sp
		}
	}
	panic("no such spot")
}

func addCustomer(s *memory.Store, code string) model.User {
	return s.AddUser(model.User{
		Name:     "driver " + code,
		Email:    code + "@example.com",
		Code:     code,
		Role:     model.RoleCustomer,
		IsActive: true,
	})
}

type recordedEvent struct {
	Name          string
	ReservationID uint64
	Status        model.ReservationStatus
}

// recordingPublisher captures every published event.
type recordingPublisher struct {
	mu            sync.Mutex
	events        []recordedEvent
	notifications []model.Notification
	err           error
}

func (p *recordingPublisher) PublishReservation(_ context.Context, event string, r model.Reservation) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, recordedEvent{Name: event, ReservationID: r.ID, Status: r.Status})
	return p.err
}

func (p *recordingPublisher) PublishNotification(_ context.Context, n model.Notification) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.notifications = append(p.notifications, n)
	return p.err
}

func (p *recordingPublisher) names() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Name)
	}
	return out
}

var _ service.EventPublisher = (*recordingPublisher)(nil)
