package sqlite

import (
	"context"
	"embed"
	"fmt"
	"log/slog"

	"github.com/example/room-booking/internal/persistence/sqlite/migration"
)

//go:embed migrations/*.sql
var schemaFS embed.FS

const schemaDir = "migrations"

// Storage bundles the SQLite repositories over one connection pool. It is
// created once by the caller and handed to the services that need it.
type Storage struct {
	*UserRepository
	*RoomRepository
	*BookingRepository
	*StateRepository

	pool   *ConnectionPool
	logger *slog.Logger
}

// Open connects to the database described by config. The schema is not
// touched until Migrate is called.
func Open(config migration.SQLiteConfig, logger *slog.Logger) (*Storage, error) {
	if logger == nil {
		logger = slog.Default()
	}
	pool, err := NewConnectionPool(config)
	if err != nil {
		return nil, err
	}
	return &Storage{
		UserRepository:    NewUserRepository(pool),
		RoomRepository:    NewRoomRepository(pool),
		BookingRepository: NewBookingRepository(pool),
		StateRepository:   NewStateRepository(pool),
		pool:              pool,
		logger:            logger,
	}, nil
}

// Migrate creates or upgrades the schema. It is idempotent.
func (s *Storage) Migrate(ctx context.Context) error {
	manager := migration.NewMigrationManager(
		migration.NewFileScanner(schemaFS),
		migration.NewSQLiteExecutor(s.pool.DB()),
		schemaDir,
		s.logger,
	)
	if err := manager.RunMigrations(ctx); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}
	return nil
}

// Ping checks that the database is reachable.
func (s *Storage) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Close releases the connection pool.
func (s *Storage) Close() error {
	return s.pool.Close()
}
