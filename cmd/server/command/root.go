// Package command provides the root and sub-commands of the parking
// reservation server. The root command serves the HTTP API and runs the
// background jobs; the sub-commands are one-shot maintenance actions.
//
//	./server                      # serve
//	./server sweep                # complete expired reservations once
//	./server db migrate|seed      # create schema, seed spots
//	./server codes assign         # give pass codes to users lacking one
//	./server token --user 1       # mint an access token
//	./server hash-key <key>       # bcrypt a device key
package command

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/spf13/cobra"

	"github.com/iliyamo/parking-spot-reservation/internal/config"
	"github.com/iliyamo/parking-spot-reservation/internal/handler"
	"github.com/iliyamo/parking-spot-reservation/internal/log"
	"github.com/iliyamo/parking-spot-reservation/internal/middleware"
	"github.com/iliyamo/parking-spot-reservation/internal/queue"
	"github.com/iliyamo/parking-spot-reservation/internal/router"
	"github.com/iliyamo/parking-spot-reservation/internal/scheduler"
)

var envFile string

var rootCmd = &cobra.Command{
	Use:   "server",
	Short: "Parking spot reservation server",
	Long: `Parking spot reservation server.
It books the lowest numbered free spot for a time window, drives the
reservation lifecycle from entrance devices, completes expired
reservations in the background and reconciles presence sensor reports
with the reservation ledger.`,
	SilenceUsage: true,
	RunE:         serve,
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(loadEnv)
	rootCmd.PersistentFlags().StringVarP(&envFile, "env-file", "e", ".env", "dotenv file to load")
}

// loadEnv loads the dotenv file if present. Variables already set in the
// environment win.
func loadEnv() {
	if envFile == "" {
		return
	}
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "loading %s: %v\n", envFile, err)
	}
}

func serve(cmd *cobra.Command, _ []string) error {
	cfg := config.Load()
	log.Setup(cfg.Env)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	sch := scheduler.New()
	if err := a.registerJobs(sch); err != nil {
		return err
	}
	if err := sch.Start(ctx); err != nil {
		return fmt.Errorf("starting scheduler: %w", err)
	}
	defer sch.Stop()

	if cfg.NotificationConsumerEnabled {
		go func() {
			if err := queue.StartNotificationConsumer(ctx, cfg.RabbitURL, cfg.NotificationAuditLog); err != nil && !errors.Is(err, context.Canceled) {
				log.Error(ctx, "notification consumer stopped", log.Err("error", err))
			}
		}()
	}

	e := newEcho(cfg, a)
	addr := ":" + cfg.Port
	errCh := make(chan error, 1)
	go func() {
		log.Info(ctx, "listening", slog.String("addr", addr), slog.String("env", cfg.Env),
			slog.String("store", cfg.StoreDriver))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	log.Info(context.Background(), "shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}

// newEcho builds the HTTP server with every route group registered.
func newEcho(cfg config.Config, a *app) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.JSONSerializer = handler.JSONSerializer{}
	e.Use(echomw.Recover())
	e.Use(echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
		LogMethod:   true,
		LogURI:      true,
		LogStatus:   true,
		LogLatency:  true,
		LogRemoteIP: true,
		LogError:    true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
			attrs := []slog.Attr{
				slog.String("method", v.Method),
				slog.String("uri", v.URI),
				slog.Int("status", v.Status),
				slog.Duration("latency", v.Latency),
				slog.String("remote_ip", v.RemoteIP),
			}
			if v.Error != nil {
				attrs = append(attrs, log.Err("error", v.Error))
			}
			log.Info(c.Request().Context(), "request", attrs...)
			return nil
		},
	}))

	cal := a.calendar
	router.RegisterRoutes(e, a.pinger())
	router.RegisterCustomer(e,
		handler.NewReservationHandler(a.lifecycle, a.allocator, a.stats, cal),
		handler.NewNotificationHandler(a.inbox),
		cfg.JWTSecret,
		middleware.NewRedisCache(cfg.Cache, a.rdb),
	)
	router.RegisterOperator(e, handler.NewOperatorHandler(a.lifecycle, a.sweeper, cal), cfg.JWTSecret)
	router.RegisterDevice(e,
		handler.NewDeviceHandler(a.lifecycle, a.reconciler, cal),
		cfg.DeviceKeyHash,
		middleware.NewTokenBucket(cfg.RateLimit, a.rdb),
	)
	return e
}
