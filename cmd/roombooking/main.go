package main

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

	"github.com/google/uuid"

	"github.com/example/room-booking/internal/application"
	"github.com/example/room-booking/internal/config"
	httptransport "github.com/example/room-booking/internal/http"
	"github.com/example/room-booking/internal/logging"
	"github.com/example/room-booking/internal/maintenance"
	"github.com/example/room-booking/internal/persistence/sqlite"
	"github.com/example/room-booking/internal/persistence/sqlite/migration"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := logging.New(os.Stdout, cfg.LogLevel)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("room booking service stopped", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	storage, err := sqlite.Open(migration.DefaultSQLiteConfig(cfg.SQLitePath), logger)
	if err != nil {
		return fmt.Errorf("failed to open storage: %w", err)
	}
	defer func() {
		if cerr := storage.Close(); cerr != nil {
			logger.Error("failed to close storage", "error", cerr)
		}
	}()

	if err := storage.Migrate(ctx); err != nil {
		return err
	}

	passwords, err := application.NewPasswordScheme(cfg.PasswordScheme)
	if err != nil {
		return err
	}

	if cfg.SeedDefaults {
		application.Bootstrap(ctx, newSeederAdapter(storage, storage), passwords, logger)
	}

	svc := newServices(cfg, storage, passwords, time.Now, logger)
	svc.restoreSession(ctx)

	runner, err := newMaintenanceRunner(cfg, svc, logger)
	if err != nil {
		return err
	}
	runner.Start()
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := runner.Stop(stopCtx); err != nil {
			logger.Error("maintenance jobs did not stop in time", "error", err)
		}
	}()

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           svc.handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("failed to shutdown server", "error", err)
		}
	}()

	logger.Info("room booking API listening", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server encountered error: %w", err)
	}
	return nil
}

type services struct {
	auth     *application.AuthService
	users    *application.UserService
	rooms    *application.RoomService
	bookings *application.BookingService
	handler  http.Handler
	logger   *slog.Logger
}

func newServices(cfg config.Config, storage *sqlite.Storage, passwords application.PasswordScheme, now func() time.Time, logger *slog.Logger) *services {
	users := newUserRepositoryAdapter(storage)
	tokens := application.NewTokenIssuer([]byte(cfg.SessionSecret), cfg.SessionTTL, now, uuid.NewString)

	auth := application.NewAuthServiceWithLogger(users, storage, passwords, tokens, logger)
	svc := &services{
		auth:     auth,
		users:    application.NewUserServiceWithLogger(users, passwords, auth, uuid.NewString, logger),
		rooms:    application.NewRoomServiceWithLogger(newRoomRepositoryAdapter(storage), logger),
		bookings: application.NewBookingServiceWithLogger(newBookingRepositoryAdapter(storage), newBookingID, now, cfg.MaxAdvanceDays, logger),
		logger:   logger,
	}

	today := func() string { return now().Format("2006-01-02") }
	svc.handler = httptransport.NewRouter(httptransport.RouterConfig{
		Auth:           httptransport.NewAuthHandler(svc.auth, svc.users, logger),
		Rooms:          httptransport.NewRoomHandler(svc.rooms, svc.bookings, today, logger),
		Bookings:       httptransport.NewBookingHandler(svc.bookings, logger),
		Sessions:       svc.auth,
		AllowedOrigins: cfg.AllowedOrigins,
		Logger:         logger,
	})
	return svc
}

// restoreSession loads the session persisted by a previous run. The auth
// service logs the outcome; a store failure is not fatal.
func (s *services) restoreSession(ctx context.Context) {
	if _, err := s.auth.RestoreSession(ctx); err != nil && !errors.Is(err, application.ErrNotFound) && !errors.Is(err, application.ErrSessionExpired) {
		s.logger.Warn("continuing without a restored session", "error", err)
	}
}

func newMaintenanceRunner(cfg config.Config, svc *services, logger *slog.Logger) (*maintenance.Runner, error) {
	runner := maintenance.NewRunner(logger)
	if _, err := runner.Add(cfg.SweepSchedule, maintenance.SessionSweep(svc.auth)); err != nil {
		return nil, err
	}
	if cfg.CancelledRetention > 0 {
		if _, err := runner.Add(cfg.SweepSchedule, maintenance.CancelledPurge(svc.bookings, cfg.CancelledRetention)); err != nil {
			return nil, err
		}
	}
	return runner, nil
}

// newBookingID returns a time-ordered UUIDv7.
func newBookingID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}
