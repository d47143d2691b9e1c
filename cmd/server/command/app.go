package command

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/parking-spot-reservation/internal/config"
	"github.com/iliyamo/parking-spot-reservation/internal/database"
	"github.com/iliyamo/parking-spot-reservation/internal/debounce"
	"github.com/iliyamo/parking-spot-reservation/internal/handler"
	"github.com/iliyamo/parking-spot-reservation/internal/log"
	"github.com/iliyamo/parking-spot-reservation/internal/model"
	"github.com/iliyamo/parking-spot-reservation/internal/queue"
	"github.com/iliyamo/parking-spot-reservation/internal/repository"
	"github.com/iliyamo/parking-spot-reservation/internal/repository/memory"
	"github.com/iliyamo/parking-spot-reservation/internal/scheduler"
	"github.com/iliyamo/parking-spot-reservation/internal/service"
)

// app holds the wired services shared by the commands.
type app struct {
	cfg      config.Config
	db       *sql.DB // nil with the memory store
	rdb      *redis.Client
	store    service.Store
	calendar service.Calendar

	allocator  *service.Allocator
	lifecycle  *service.Lifecycle
	sweeper    *service.Sweeper
	reconciler *service.Reconciler
	stats      *service.OccupancyStats
	inbox      *service.Inbox
	codes      *service.CodeIssuer
}

func newApp(ctx context.Context, cfg config.Config) (*app, error) {
	a := &app{cfg: cfg, calendar: service.NewCalendar(cfg.DayLocation)}

	switch cfg.StoreDriver {
	case config.DriverMemory:
		a.store = seededMemoryStore(ctx)
	default:
		db, err := database.Open(ctx, cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
		if err != nil {
			return nil, fmt.Errorf("connecting to database: %w", err)
		}
		a.db = db
		a.store = repository.NewStore(db)
	}

	a.rdb = config.NewRedisClient(ctx)
	if a.rdb == nil {
		log.Warn(ctx, "redis unavailable; rate limit, cache and debounce disabled")
	}

	// Only set when enabled: a nil *queue.Publisher in the interface would
	// not compare equal to nil.
	var events service.EventPublisher
	if cfg.EventsEnabled {
		events = queue.NewPublisher(cfg.RabbitURL)
	}
	var debouncer service.Debouncer
	if a.rdb != nil {
		debouncer = debounce.NewRedis(a.rdb, "")
	}

	clock := service.SystemClock{}
	a.allocator = service.NewAllocator(a.store, a.calendar)
	a.lifecycle = service.NewLifecycle(a.store, a.allocator, clock, service.WithEventPublisher(events))
	a.sweeper = service.NewSweeper(a.store, clock)
	a.reconciler = service.NewReconciler(a.store, clock,
		service.WithNotificationPublisher(events),
		service.WithDebouncer(debouncer, cfg.OccupancyDebounce),
	)
	a.stats = service.NewOccupancyStats(a.store, a.calendar)
	a.inbox = service.NewInbox(a.store, clock)
	a.codes = service.NewCodeIssuer(a.store, a.store, clock)
	return a, nil
}

// registerJobs adds the background jobs to sch.
func (a *app) registerJobs(sch *scheduler.Scheduler) error {
	if err := a.sweeper.Register(sch, a.cfg.SweepInterval); err != nil {
		return err
	}
	if err := a.inbox.Register(sch, a.cfg.NotificationPurgeInterval); err != nil {
		return err
	}
	if a.cfg.CodeRotationInterval > 0 {
		if err := a.codes.Register(sch, a.cfg.CodeRotationInterval); err != nil {
			return err
		}
	}
	return nil
}

// pinger returns the database for health checks, or nil without one.
func (a *app) pinger() handler.Pinger {
	if a.db == nil {
		return nil
	}
	return a.db
}

// Close releases the database and Redis connections.
func (a *app) Close() {
	if a.rdb != nil {
		_ = a.rdb.Close()
	}
	if a.db != nil {
		_ = a.db.Close()
	}
}

// seededMemoryStore returns a memory store with the default spots and one
// demo customer, so the server is usable without MySQL.
func seededMemoryStore(ctx context.Context) *memory.Store {
	st := memory.New()
	for _, sp := range database.DefaultSpots {
		st.AddSpot(sp)
	}
	u := st.AddUser(model.User{
		Name:     "Demo Customer",
		Email:    "demo@example.com",
		Code:     "123456",
		Role:     model.RoleCustomer,
		IsActive: true,
	})
	log.Info(ctx, "memory store seeded",
		slog.Int("spots", len(database.DefaultSpots)), log.ID("demo_user_id", u.ID))
	return st
}
